package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/oil-tenders/internal/aggregate"
	"github.com/nurpe/oil-tenders/internal/filter"
	"github.com/nurpe/oil-tenders/internal/model"
	"github.com/nurpe/oil-tenders/internal/unit"
)

func sampleReport(t *testing.T) aggregate.Report {
	t.Helper()
	offers := []model.Offer{
		model.NewOffer(map[string]any{
			"id": "a1", "product": "Gasoil Grado 3", "country": "Argentina", "company": "YPF",
			"basin": "Neuquina", "delivery_location": "Puerto Rosales", "volume": 120.5,
			"price": 610.0, "date": "2024-03-01", "deadline": "2024-06-01T00:00:00Z",
		}),
		model.NewOffer(map[string]any{
			"id": "a2", "product": "Crudo Medanito", "country": "Chile", "company": "ENAP",
			"basin": "Golfo San Jorge", "volume": 80.0, "status": "awarded", "date": "2024-03-05",
		}),
	}
	d, err := aggregate.Build(t.Context(), offers, aggregate.Options{
		Unit: unit.CubicMeter,
		Now:  time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return aggregate.Report{
		Dashboard:   d,
		Filter:      filter.State{Country: "a"},
		OfferCount:  len(offers),
		FetchedAt:   time.Date(2024, 4, 30, 8, 0, 0, 0, time.UTC),
		GeneratedAt: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestGenerateWritesOneSheetPerView(t *testing.T) {
	content, err := NewGenerator().Generate(sampleReport(t))
	require.NoError(t, err)

	file, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer file.Close()

	assert.Equal(t, []string{
		SheetSummary, SheetSeries, SheetProducts, SheetCountries, SheetFunnel,
		SheetBasins, SheetFlows, SheetMap, SheetCompanies, SheetDeadlines, SheetScatter,
	}, file.GetSheetList())

	country, err := file.GetCellValue(SheetSummary, "B2")
	require.NoError(t, err)
	assert.Equal(t, "a", country)
	product, err := file.GetCellValue(SheetSummary, "B1")
	require.NoError(t, err)
	assert.Equal(t, "Todos", product)
	generated, err := file.GetCellValue(SheetSummary, "B7")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01 09:30:00", generated)

	rows, err := file.GetRows(SheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"Volumen licitado, m³", "200.5"}, rows[9])

	products, err := file.GetRows(SheetProducts)
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "Gasoil Grado 3", products[1][0])
	assert.Equal(t, "120.5", products[1][2])

	funnel, err := file.GetRows(SheetFunnel)
	require.NoError(t, err)
	assert.Equal(t, []string{"Etapa", "Ofertas"}, funnel[0])
	assert.Len(t, funnel, 4)

	deadlines, err := file.GetRows(SheetDeadlines)
	require.NoError(t, err)
	require.Len(t, deadlines, 2)
	assert.Equal(t, "a1", deadlines[1][0])
}

func TestGenerateEmptyReport(t *testing.T) {
	content, err := NewGenerator().Generate(aggregate.Report{Dashboard: aggregate.Dashboard{Unit: unit.Barrel}})
	require.NoError(t, err)

	file, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer file.Close()

	rows, err := file.GetRows(SheetCompanies)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Volumen, bbl", rows[0][1])
}

func TestSanitizeSheetName(t *testing.T) {
	assert.Equal(t, "Hoja", sanitizeSheetName("  "))
	assert.Equal(t, "Cuencas - Norte-Sur", sanitizeSheetName("Cuencas - Norte/Sur"))
	assert.Len(t, []rune(sanitizeSheetName("Vencimientos de ofertas adjudicadas y activas")), 31)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.235, round(1.23456, 3))
	assert.Equal(t, -2.5, round(-2.4999, 2))
}
