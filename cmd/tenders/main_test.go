package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const offersJSON = `{"items": [
	{"id": "1", "product": "Gasoil Grado 3", "country": "Argentina", "company": "YPF", "volume": "1.000,0", "date": "2024-03-01"},
	{"id": "2", "product": "Crudo Medanito", "country": "Chile", "company": "ENAP", "volume": 500, "status": "awarded", "date": "2024-04-01"},
	{"id": "3", "product": "Gasoil", "country": "Chile", "company": "ENAP", "volume": 250, "date": "2024-04-20", "deadline": "2024-07-01"}
]}`

type cli struct {
	dir   string
	file  string
	store string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	dir := t.TempDir()
	file := filepath.Join(dir, "offers.json")
	require.NoError(t, os.WriteFile(file, []byte(offersJSON), 0o644))
	return &cli{dir: dir, file: file, store: filepath.Join(dir, "tenders.db")}
}

func (c *cli) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--store", c.store}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDashboardSummaryFromFile(t *testing.T) {
	c := newCLI(t)

	out, err := c.run(t, "--file", c.file, "dashboard", "--section", "summary")
	require.NoError(t, err)

	var summary map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 1750.0, summary["tendered_volume"])
	assert.Equal(t, 3.0, summary["total_offers"])
	assert.Equal(t, 1.0, summary["awarded_offers"])
}

func TestDashboardCalendarSection(t *testing.T) {
	c := newCLI(t)

	out, err := c.run(t, "--file", c.file, "dashboard", "--section", "calendar")
	require.NoError(t, err)

	var days []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &days))
	require.Len(t, days, 3)
	assert.Equal(t, "2024-03-01", days[0]["date"])
	assert.Equal(t, 1.0, days[0]["count"])
}

func TestDashboardRejectsUnknownSectionAndUnit(t *testing.T) {
	c := newCLI(t)

	_, err := c.run(t, "--file", c.file, "dashboard", "--section", "pie")
	assert.ErrorContains(t, err, "unknown section")

	_, err = c.run(t, "--file", c.file, "dashboard", "--unit", "litres")
	assert.Error(t, err)
}

func TestSavedFilterAppliesToDashboard(t *testing.T) {
	c := newCLI(t)

	_, err := c.run(t, "--file", c.file, "filters", "save", "--country", "chile")
	require.NoError(t, err)

	out, err := c.run(t, "filters", "show")
	require.NoError(t, err)
	assert.JSONEq(t, `{"country":"chile"}`, out)

	out, err = c.run(t, "--file", c.file, "dashboard")
	require.NoError(t, err)
	var result struct {
		OfferCount int `json:"offer_count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 2, result.OfferCount)

	out, err = c.run(t, "--file", c.file, "--profile", "other", "dashboard")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 3, result.OfferCount)

	_, err = c.run(t, "filters", "clear")
	require.NoError(t, err)
	out, err = c.run(t, "filters", "show")
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, out)
}

func TestExportWritesFile(t *testing.T) {
	c := newCLI(t)
	target := filepath.Join(c.dir, "report.xlsx")

	out, err := c.run(t, "--file", c.file, "export", "--product", "gasoil", "-o", target)
	require.NoError(t, err)
	assert.Contains(t, out, target)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("PK")))

	_, err = c.run(t, "--file", c.file, "export", "--format", "csv")
	assert.ErrorContains(t, err, "unknown export format")
}

func TestOfflineUsesFetchedOffers(t *testing.T) {
	c := newCLI(t)

	_, err := c.run(t, "--offline", "options")
	assert.ErrorContains(t, err, "no cached offers")

	out, err := c.run(t, "--file", c.file, "fetch")
	require.NoError(t, err)
	assert.Contains(t, out, "3 offers fetched")

	out, err = c.run(t, "--offline", "options")
	require.NoError(t, err)
	var choices struct {
		Companies []string `json:"companies"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &choices))
	assert.Equal(t, []string{"ENAP", "YPF"}, choices.Companies)
}
