package excel

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/oil-tenders/internal/aggregate"
	"github.com/nurpe/oil-tenders/internal/unit"
)

// Sheet names, in workbook order.
const (
	SheetSummary   = "Resumen"
	SheetSeries    = "Serie temporal"
	SheetProducts  = "Productos"
	SheetCountries = "Países"
	SheetFunnel    = "Embudo"
	SheetBasins    = "Cuencas"
	SheetFlows     = "Flujos"
	SheetMap       = "Mapa"
	SheetCompanies = "Empresas"
	SheetDeadlines = "Vencimientos"
	SheetScatter   = "Dispersión"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

type table struct {
	headers []string
	widths  []float64
	rows    [][]interface{}
}

func (g *Generator) Generate(report aggregate.Report) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	headerStyle, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	file.SetSheetName("Sheet1", SheetSummary)
	if err := g.writeSummary(file, SheetSummary, report, headerStyle); err != nil {
		return nil, err
	}

	d := report.Dashboard
	suffix := strings.TrimSpace(unit.Suffix(d.Unit))
	volumeHeader := fmt.Sprintf("Volumen, %s", suffix)

	sheets := []struct {
		name  string
		table table
	}{
		{SheetSeries, seriesTable(d, suffix)},
		{SheetProducts, productsTable(d, volumeHeader)},
		{SheetCountries, countriesTable(d, suffix)},
		{SheetFunnel, funnelTable(d)},
		{SheetBasins, basinsTable(d, volumeHeader)},
		{SheetFlows, flowsTable(d, volumeHeader)},
		{SheetMap, mapTable(d, volumeHeader)},
		{SheetCompanies, companiesTable(d, volumeHeader)},
		{SheetDeadlines, deadlinesTable(d)},
		{SheetScatter, scatterTable(d, volumeHeader)},
	}
	for _, sheet := range sheets {
		name := sanitizeSheetName(sheet.name)
		if _, err := file.NewSheet(name); err != nil {
			return nil, err
		}
		if err := writeTable(file, name, 1, sheet.table, headerStyle); err != nil {
			return nil, err
		}
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, report aggregate.Report, headerStyle int) error {
	s := report.Dashboard.Summary
	suffix := strings.TrimSpace(unit.Suffix(report.Dashboard.Unit))

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Producto")
	set("B1", orAll(report.Filter.Product))
	set("A2", "País")
	set("B2", orAll(report.Filter.Country))
	set("A3", "Empresa")
	set("B3", orAll(report.Filter.Company))
	set("A4", "Desde")
	set("B4", orAll(report.Filter.From))
	set("A5", "Hasta")
	set("B5", orAll(report.Filter.To))
	set("A6", "Datos obtenidos")
	set("B6", formatDateTime(report.FetchedAt))
	set("A7", "Generado")
	set("B7", formatDateTime(report.GeneratedAt))

	return writeTable(file, sheet, 9, table{
		headers: []string{"Indicador", "Valor"},
		widths:  []float64{32, 20},
		rows: [][]interface{}{
			{fmt.Sprintf("Volumen licitado, %s", suffix), round(s.TenderedVolume, 3)},
			{fmt.Sprintf("Volumen adjudicado, %s", suffix), round(s.AwardedVolume, 3)},
			{"Precio promedio", round(s.AvgPrice, 2)},
			{"Ofertas activas", s.ActiveOffers},
			{"Ofertas adjudicadas", s.AwardedOffers},
			{"Ofertas totales", s.TotalOffers},
			{"Tasa de adjudicación", round(s.AwardRate, 4)},
			{"Ofertas en el filtro", report.OfferCount},
		},
	}, headerStyle)
}

func writeTable(file *excelize.File, sheet string, startRow int, t table, headerStyle int) error {
	for i, header := range t.headers {
		cell, err := excelize.CoordinatesToCellName(i+1, startRow)
		if err != nil {
			return err
		}
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}
	if len(t.headers) > 0 {
		first, _ := excelize.CoordinatesToCellName(1, startRow)
		last, _ := excelize.CoordinatesToCellName(len(t.headers), startRow)
		if err := file.SetCellStyle(sheet, first, last, headerStyle); err != nil {
			return err
		}
	}

	for r, row := range t.rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, startRow+1+r)
			if err != nil {
				return err
			}
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	for i, width := range t.widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		_ = file.SetColWidth(sheet, col, col, width)
	}
	return nil
}

func seriesTable(d aggregate.Dashboard, suffix string) table {
	t := table{
		headers: []string{"Fecha", fmt.Sprintf("Licitado, %s", suffix), fmt.Sprintf("Adjudicado, %s", suffix)},
		widths:  []float64{14, 18, 18},
	}
	for _, p := range d.Series {
		t.rows = append(t.rows, []interface{}{p.Date, round(p.Tendered, 3), round(p.Awarded, 3)})
	}
	return t
}

func productsTable(d aggregate.Dashboard, volumeHeader string) table {
	t := table{
		headers: []string{"Producto", "Etiqueta", volumeHeader},
		widths:  []float64{45, 24, 18},
	}
	for _, p := range d.Products {
		t.rows = append(t.rows, []interface{}{p.Product, p.Label, round(p.Volume, 3)})
	}
	return t
}

func countriesTable(d aggregate.Dashboard, suffix string) table {
	t := table{
		headers: []string{"País", fmt.Sprintf("Oferta, %s", suffix), fmt.Sprintf("Destino, %s", suffix)},
		widths:  []float64{28, 18, 18},
	}
	for _, c := range d.Countries {
		t.rows = append(t.rows, []interface{}{c.Country, round(c.Offering, 3), round(c.Destination, 3)})
	}
	return t
}

func funnelTable(d aggregate.Dashboard) table {
	t := table{
		headers: []string{"Etapa", "Ofertas"},
		widths:  []float64{20, 12},
	}
	for _, stage := range d.Funnel {
		t.rows = append(t.rows, []interface{}{stage.Name, stage.Value})
	}
	return t
}

func basinsTable(d aggregate.Dashboard, volumeHeader string) table {
	t := table{
		headers: []string{"Cuenca", "Grupo", volumeHeader},
		widths:  []float64{32, 18, 18},
	}
	for _, b := range d.Basins {
		t.rows = append(t.rows, []interface{}{b.Basin, b.Group.String(), round(b.Volume, 3)})
	}
	return t
}

func flowsTable(d aggregate.Dashboard, volumeHeader string) table {
	t := table{
		headers: []string{"Cuenca", "Entrega", "Grupo", volumeHeader},
		widths:  []float64{32, 28, 18, 18},
	}
	for _, l := range d.Flows {
		t.rows = append(t.rows, []interface{}{l.Source, l.Target, l.Group.String(), round(l.Value, 3)})
	}
	return t
}

func mapTable(d aggregate.Dashboard, volumeHeader string) table {
	t := table{
		headers: []string{"Cuenca", "Longitud", "Latitud", "Ubicada", volumeHeader},
		widths:  []float64{32, 12, 12, 10, 18},
	}
	for _, p := range d.Map {
		resolved := "No"
		if p.Resolved {
			resolved = "Sí"
		}
		t.rows = append(t.rows, []interface{}{p.Name, p.Coordinates.Lon(), p.Coordinates.Lat(), resolved, round(p.Value, 3)})
	}
	return t
}

func companiesTable(d aggregate.Dashboard, volumeHeader string) table {
	t := table{
		headers: []string{"Empresa", volumeHeader, "Participación, %", "Ofertas"},
		widths:  []float64{40, 18, 16, 10},
	}
	for _, c := range d.Companies {
		t.rows = append(t.rows, []interface{}{c.Company, round(c.Volume, 3), round(c.Percent*100, 2), c.Offers})
	}
	return t
}

func deadlinesTable(d aggregate.Dashboard) table {
	t := table{
		headers: []string{"ID", "Título", "Vencimiento", "Producto", "País"},
		widths:  []float64{38, 36, 24, 28, 18},
	}
	for _, item := range d.NearDeadline {
		t.rows = append(t.rows, []interface{}{item.ID, item.Title, item.Deadline, item.Product, item.Country})
	}
	return t
}

func scatterTable(d aggregate.Dashboard, volumeHeader string) table {
	t := table{
		headers: []string{"Precio", volumeHeader, "Estado"},
		widths:  []float64{14, 18, 14},
	}
	for _, p := range d.Scatter {
		t.rows = append(t.rows, []interface{}{p.Price, round(p.Volume, 3), string(p.Status)})
	}
	return t
}

func sanitizeSheetName(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Hoja"
	}

	replacer := strings.NewReplacer(
		"[", "-",
		"]", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"/", "-",
		"\\", "-",
	)
	value = replacer.Replace(value)
	value = strings.TrimSpace(value)
	if value == "" {
		return "Hoja"
	}
	if runes := []rune(value); len(runes) > 31 {
		value = string(runes[:31])
	}
	return value
}

func orAll(value string) string {
	if strings.TrimSpace(value) == "" {
		return "Todos"
	}
	return value
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

func round(value float64, precision int) float64 {
	pow := math.Pow(10, float64(precision))
	return math.Round(value*pow) / pow
}
