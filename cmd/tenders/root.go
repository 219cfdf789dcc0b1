package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nurpe/oil-tenders/internal/config"
	"github.com/nurpe/oil-tenders/internal/excel"
	"github.com/nurpe/oil-tenders/internal/filter"
	"github.com/nurpe/oil-tenders/internal/logger"
	"github.com/nurpe/oil-tenders/internal/model"
	"github.com/nurpe/oil-tenders/internal/pdf"
	"github.com/nurpe/oil-tenders/internal/service"
	"github.com/nurpe/oil-tenders/internal/source"
	"github.com/nurpe/oil-tenders/internal/store/sqlite"
	"github.com/nurpe/oil-tenders/internal/unit"
)

type app struct {
	cfg       *config.Config
	log       zerolog.Logger
	store     *sqlite.Store
	snapshot  *source.Snapshot
	service   *service.DashboardService
	principal model.Principal
}

type rootOptions struct {
	file      string
	storePath string
	profile   string
	offline   bool
	verbose   bool
}

type filterFlags struct {
	product string
	country string
	company string
	from    string
	to      string
	unit    string
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.product, "product", "", "product substring")
	cmd.Flags().StringVar(&f.country, "country", "", "country substring, matched against origin and destination")
	cmd.Flags().StringVar(&f.company, "company", "", "company substring")
	cmd.Flags().StringVar(&f.from, "from", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.to, "to", "", "last day, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.unit, "unit", "", "display unit: m3 or bbl")
}

func (f *filterFlags) state() filter.State {
	return filter.State{
		Product: f.product,
		Country: f.country,
		Company: f.company,
		From:    f.from,
		To:      f.to,
	}
}

func (f *filterFlags) displayUnit() (unit.Unit, error) {
	if strings.TrimSpace(f.unit) == "" {
		return "", nil
	}
	return unit.Parse(f.unit)
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	var a *app

	root := &cobra.Command{
		Use:           "tenders",
		Short:         "Oil and gas tender dashboard from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			built, err := newApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			a = built
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a != nil {
				return a.store.Close()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.file, "file", "", "read offers from a JSON file instead of the API")
	root.PersistentFlags().StringVar(&opts.storePath, "store", "", "sqlite file for saved filters and cached offers (default LOCAL_STORE_PATH)")
	root.PersistentFlags().StringVar(&opts.profile, "profile", "default", "name the saved filter is stored under")
	root.PersistentFlags().BoolVar(&opts.offline, "offline", false, "use the cached offers without calling the API")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")

	current := func() *app { return a }
	root.AddCommand(
		newDashboardCommand(current),
		newOptionsCommand(current),
		newExportCommand(current),
		newFetchCommand(current),
		newFiltersCommand(current),
	)
	return root
}

func newApp(opts *rootOptions, stderr io.Writer) (*app, error) {
	cfg, err := config.LoadLocal()
	if err != nil {
		return nil, err
	}

	env := "production"
	if opts.verbose {
		env = "development"
	}
	log := logger.NewWithWriter(env, stderr)
	if !opts.verbose {
		log = log.Level(zerolog.WarnLevel)
	}

	storePath := opts.storePath
	if storePath == "" {
		storePath = cfg.Local.StorePath
	}
	st, err := sqlite.New(storePath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	var fetcher source.Fetcher
	if opts.file != "" {
		fetcher = fileFetcher{path: opts.file}
	} else {
		fetcher = cachedFetcher{
			upstream: source.NewClient(source.Config{
				BaseURL:         cfg.Offers.APIBase,
				DesiredTotal:    cfg.Offers.DesiredTotal,
				PageSize:        cfg.Offers.PageSize,
				Timeout:         cfg.Offers.Timeout,
				RateLimitPerSec: cfg.Offers.RateLimitPerSec,
				MaxRetries:      cfg.Offers.MaxRetries,
			}),
			cache:   st,
			offline: opts.offline,
			log:     log,
		}
	}
	snapshot := source.NewSnapshot(fetcher, cfg.Offers.DesiredTotal)

	return &app{
		cfg:       cfg,
		log:       log,
		store:     st,
		snapshot:  snapshot,
		service:   service.NewDashboardService(snapshot, st, nil, excel.NewGenerator(), pdf.NewGenerator(), cfg.Dashboard.SourceUnit),
		principal: model.LocalPrincipal(opts.profile),
	}, nil
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func writeFile(path string, content []byte) error {
	return os.WriteFile(path, content, 0o644)
}
