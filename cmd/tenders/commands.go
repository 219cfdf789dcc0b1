package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nurpe/oil-tenders/internal/model"
	"github.com/nurpe/oil-tenders/internal/service"
)

func newDashboardCommand(current func() *app) *cobra.Command {
	var flags filterFlags
	var section string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Print the dashboard views as JSON",
		Long: "Print the dashboard views as JSON. Without filter flags the filter " +
			"saved under --profile is applied.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := current()
			displayUnit, err := flags.displayUnit()
			if err != nil {
				return err
			}
			result, err := a.service.Dashboard(cmd.Context(), service.DashboardInput{
				Principal: a.principal,
				Filter:    flags.state(),
				Unit:      displayUnit,
			})
			if err != nil {
				return err
			}
			if section == "" {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			view, err := dashboardSection(result, section)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), view)
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&section, "section", "", "print one view only: "+strings.Join(sectionNames, ", "))
	return cmd
}

var sectionNames = []string{
	"summary", "series", "calendar", "products", "countries", "funnel", "scatter",
	"basins", "flows", "map", "companies", "near_deadline",
}

func dashboardSection(result *service.DashboardResult, name string) (any, error) {
	d := result.Dashboard
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "summary":
		return d.Summary, nil
	case "series":
		return d.Series, nil
	case "calendar":
		return d.Calendar, nil
	case "products":
		return d.Products, nil
	case "countries":
		return d.Countries, nil
	case "funnel":
		return d.Funnel, nil
	case "scatter":
		return d.Scatter, nil
	case "basins":
		return d.Basins, nil
	case "flows":
		return d.Flows, nil
	case "map":
		return d.Map, nil
	case "companies":
		return d.Companies, nil
	case "near_deadline", "deadlines":
		return d.NearDeadline, nil
	default:
		return nil, fmt.Errorf("unknown section %q", name)
	}
}

func newOptionsCommand(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "Print the filter dropdown values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			choices, err := current().service.Choices(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), choices)
		},
	}
}

func newExportCommand(current func() *app) *cobra.Command {
	var (
		flags  filterFlags
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the dashboard to an Excel or PDF file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := current()
			displayUnit, err := flags.displayUnit()
			if err != nil {
				return err
			}
			exportFormat, err := parseFormat(format)
			if err != nil {
				return err
			}
			result, err := a.service.Export(cmd.Context(), service.ExportInput{
				Principal: a.principal,
				Filter:    flags.state(),
				Unit:      displayUnit,
				Format:    exportFormat,
			})
			if err != nil {
				return err
			}

			path := out
			if path == "" {
				path = result.FileName
			} else if strings.HasSuffix(path, string(filepath.Separator)) {
				path = filepath.Join(path, result.FileName)
			}
			if err := writeFile(path, result.Content); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&format, "format", "xlsx", "xlsx or pdf")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file or directory ending in a separator (default: generated name)")
	return cmd
}

func parseFormat(raw string) (model.ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "xlsx", "excel":
		return model.ExportFormatXLSX, nil
	case "pdf":
		return model.ExportFormatPDF, nil
	default:
		return "", fmt.Errorf("unknown export format %q", raw)
	}
}

func newFetchCommand(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Fetch offers and store them for --offline use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := current()
			count, err := a.snapshot.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			offers, fetchedAt := a.snapshot.Offers()
			if err := a.store.SaveOffers(cmd.Context(), offers); err != nil {
				return err
			}
			a.log.Info().Int("offers", count).Msg("offers stored")
			fmt.Fprintf(cmd.OutOrStdout(), "%d offers fetched at %s\n", count, fetchedAt.Format("2006-01-02 15:04:05"))
			return nil
		},
	}
}

func newFiltersCommand(current func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filters",
		Short: "Manage the filter saved under --profile",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the saved filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := current()
			state, err := a.service.GetFilter(cmd.Context(), a.principal)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), state)
		},
	}

	var flags filterFlags
	saveCmd := &cobra.Command{
		Use:   "save",
		Short: "Save the given filter, replacing the previous one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := current()
			state, err := a.service.SaveFilter(cmd.Context(), a.principal, flags.state())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), state)
		},
	}
	flags.bind(saveCmd)
	_ = saveCmd.Flags().MarkHidden("unit")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the saved filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := current()
			return a.service.ClearFilter(cmd.Context(), a.principal)
		},
	}

	cmd.AddCommand(showCmd, saveCmd, clearCmd)
	return cmd
}
