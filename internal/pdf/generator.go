package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/oil-tenders/internal/aggregate"
	"github.com/nurpe/oil-tenders/internal/unit"
)

// Generator renders the dashboard as a landscape A4 report. Text goes
// through the cp1252 translator so Spanish accents survive the core font.
type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

func (g *Generator) Generate(report aggregate.Report) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	d := report.Dashboard
	suffix := strings.TrimSpace(unit.Suffix(d.Unit))

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, tr("Licitaciones de petróleo y gas"), "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Generado %s, datos obtenidos %s",
		formatDateTime(report.GeneratedAt),
		formatDateTime(report.FetchedAt),
	)), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, tr(describeFilter(report)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	section(pdf, g.fontName, tr, "Indicadores")
	s := d.Summary
	widths := []float64{90, 50}
	drawTableRow(pdf, g.fontName, tr, []string{"Indicador", "Valor"}, widths, true)
	for _, row := range [][]string{
		{fmt.Sprintf("Volumen licitado, %s", suffix), formatAmount(s.TenderedVolume, 2)},
		{fmt.Sprintf("Volumen adjudicado, %s", suffix), formatAmount(s.AwardedVolume, 2)},
		{"Precio promedio", formatAmount(s.AvgPrice, 2)},
		{"Ofertas activas", fmt.Sprint(s.ActiveOffers)},
		{"Ofertas adjudicadas", fmt.Sprint(s.AwardedOffers)},
		{"Ofertas totales", fmt.Sprint(s.TotalOffers)},
		{"Tasa de adjudicación", fmt.Sprintf("%.1f%%", s.AwardRate*100)},
	} {
		drawTableRow(pdf, g.fontName, tr, row, widths, false)
	}
	pdf.Ln(4)

	section(pdf, g.fontName, tr, "Embudo")
	widths = []float64{60, 30}
	drawTableRow(pdf, g.fontName, tr, []string{"Etapa", "Ofertas"}, widths, true)
	for _, stage := range d.Funnel {
		drawTableRow(pdf, g.fontName, tr, []string{stage.Name, fmt.Sprint(stage.Value)}, widths, false)
	}
	pdf.Ln(4)

	if len(d.Products) > 0 {
		section(pdf, g.fontName, tr, "Volumen por producto")
		widths = []float64{120, 50, 50}
		drawTableRow(pdf, g.fontName, tr, []string{"Producto", "Etiqueta", fmt.Sprintf("Volumen, %s", suffix)}, widths, true)
		for _, p := range d.Products {
			drawTableRow(pdf, g.fontName, tr, []string{p.Product, p.Label, formatAmount(p.Volume, 2)}, widths, false)
		}
		pdf.Ln(4)
	}

	if len(d.Countries) > 0 {
		section(pdf, g.fontName, tr, "Volumen por país")
		widths = []float64{80, 50, 50}
		drawTableRow(pdf, g.fontName, tr, []string{"País", fmt.Sprintf("Oferta, %s", suffix), fmt.Sprintf("Destino, %s", suffix)}, widths, true)
		for _, c := range d.Countries {
			drawTableRow(pdf, g.fontName, tr, []string{c.Country, formatAmount(c.Offering, 2), formatAmount(c.Destination, 2)}, widths, false)
		}
		pdf.Ln(4)
	}

	if len(d.Basins) > 0 {
		section(pdf, g.fontName, tr, "Volumen por cuenca")
		widths = []float64{80, 50, 50}
		drawTableRow(pdf, g.fontName, tr, []string{"Cuenca", "Grupo", fmt.Sprintf("Volumen, %s", suffix)}, widths, true)
		for _, b := range d.Basins {
			drawTableRow(pdf, g.fontName, tr, []string{b.Basin, b.Group.String(), formatAmount(b.Volume, 2)}, widths, false)
		}
		pdf.Ln(4)
	}

	if len(d.Companies) > 0 {
		section(pdf, g.fontName, tr, "Empresas")
		widths = []float64{110, 50, 40, 30}
		drawTableRow(pdf, g.fontName, tr, []string{"Empresa", fmt.Sprintf("Volumen, %s", suffix), "Participación", "Ofertas"}, widths, true)
		for _, c := range d.Companies {
			drawTableRow(pdf, g.fontName, tr, []string{
				c.Company,
				formatAmount(c.Volume, 2),
				fmt.Sprintf("%.1f%%", c.Percent*100),
				fmt.Sprint(c.Offers),
			}, widths, false)
		}
		pdf.Ln(4)
	}

	if len(d.NearDeadline) > 0 {
		section(pdf, g.fontName, tr, "Próximos vencimientos")
		widths = []float64{90, 50, 70, 45}
		drawTableRow(pdf, g.fontName, tr, []string{"Título", "Vencimiento", "Producto", "País"}, widths, true)
		for _, item := range d.NearDeadline {
			drawTableRow(pdf, g.fontName, tr, []string{
				item.Title,
				formatDeadline(item.Deadline),
				safeValue(item.Product),
				safeValue(item.Country),
			}, widths, false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, fontName string, tr func(string) string, title string) {
	pdf.SetFont(fontName, "B", 12)
	pdf.CellFormat(0, 8, tr(title), "", 1, "L", false, 0, "")
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, tr func(string) string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 && !header && numeric(col) {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, tr(fit(pdf, col, widths[i])), "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

// fit shortens text that would overflow its cell.
func fit(pdf *gofpdf.Fpdf, text string, width float64) string {
	limit := width - 2
	if pdf.GetStringWidth(text) <= limit {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

func numeric(value string) bool {
	value = strings.TrimSuffix(value, "%")
	if value == "" {
		return false
	}
	for _, r := range value {
		if (r < '0' || r > '9') && r != '.' && r != '-' {
			return false
		}
	}
	return true
}

func describeFilter(report aggregate.Report) string {
	f := report.Filter
	parts := []string{fmt.Sprintf("%d ofertas", report.OfferCount)}
	add := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", label, value))
		}
	}
	add("producto", f.Product)
	add("país", f.Country)
	add("empresa", f.Company)
	add("desde", f.From)
	add("hasta", f.To)
	return strings.Join(parts, ", ")
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatAmount(value float64, precision int) string {
	format := fmt.Sprintf("%%.%df", precision)
	return fmt.Sprintf(format, value)
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("02.01.2006 15:04")
}

func formatDeadline(value string) string {
	if len(value) >= 10 {
		if t, err := time.Parse("2006-01-02", value[:10]); err == nil {
			return t.Format("02.01.2006")
		}
	}
	return safeValue(value)
}
