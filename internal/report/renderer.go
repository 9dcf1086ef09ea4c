// Package report renders approved project versions into the internal and
// client-facing progress report documents.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/straye-as/progress-api/internal/domain"
	"github.com/straye-as/progress-api/internal/ledger"
)

// Variant selects the audience of a report document
type Variant string

const (
	// VariantInternal lists every blockage
	VariantInternal Variant = "internal"
	// VariantClient lists client-side blockages only
	VariantClient Variant = "client"
)

// Renderer builds progress report PDFs
type Renderer struct {
	companyName string
	now         func() time.Time
}

func NewRenderer(companyName string) *Renderer {
	if strings.TrimSpace(companyName) == "" {
		companyName = "Straye"
	}
	return &Renderer{companyName: companyName, now: time.Now}
}

// Render produces the document for one variant. urls maps photo storage keys
// to resolved download URLs, linked from the photo listing.
func (r *Renderer) Render(v *domain.ProjectVersion, variant Variant, urls map[string]string) ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("no project version to render")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("%s - Daily Progress Report", v.ProjectName), true)
	pdf.SetAuthor(r.companyName, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	p := &page{Fpdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	r.header(p, v, variant)
	r.summary(p, v)
	r.quantities(p, v)
	r.blockages(p, v, variant)
	r.photos(p, v, urls)

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// page writes cp1252 text through the core fonts
type page struct {
	*gofpdf.Fpdf
	tr func(string) string
}

func (p *page) cell(w, h float64, txt, border string, ln int, align string, fill bool, link int, linkStr string) {
	p.CellFormat(w, h, p.tr(txt), border, ln, align, fill, link, linkStr)
}

func (p *page) multi(w, h float64, txt, border, align string, fill bool) {
	p.MultiCell(w, h, p.tr(txt), border, align, fill)
}

// FileName returns the download name of a rendered document
func FileName(v *domain.ProjectVersion, variant Variant) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		}
		return '_'
	}, v.ProjectName)
	return fmt.Sprintf("%s-v%d-%s.pdf", name, v.VersionNumber, variant)
}

func (r *Renderer) header(p *page, v *domain.ProjectVersion, variant Variant) {
	p.SetFont("Helvetica", "B", 18)
	p.cell(0, 10, v.ProjectName, "", 1, "L", false, 0, "")

	title := "Daily Progress Report"
	if variant == VariantInternal {
		title += " (internal)"
	}
	p.SetFont("Helvetica", "", 12)
	p.cell(0, 7, title, "", 1, "L", false, 0, "")

	p.SetFont("Helvetica", "", 10)
	p.cell(0, 6, "Client: "+orNA(v.ClientName), "", 1, "L", false, 0, "")
	p.cell(0, 6, "Site: "+orNA(v.SiteLocation), "", 1, "L", false, 0, "")
	p.cell(0, 6, "Project manager: "+orNA(v.ProjectManagerName), "", 1, "L", false, 0, "")
	p.cell(0, 6, "Report date: "+formatDate(v.YesterdayReportCreatedAt), "", 1, "L", false, 0, "")
	p.cell(0, 6, "Estimated completion: "+formatDate(v.EstimatedEndDate), "", 1, "L", false, 0, "")
	p.cell(0, 6, "Generated: "+r.now().UTC().Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	p.Ln(4)
}

func (r *Renderer) summary(p *page, v *domain.ProjectVersion) {
	p.SetFont("Helvetica", "B", 12)
	p.cell(0, 8, fmt.Sprintf("Overall progress: %d%%", ledger.OverallProgress(v.Sheet1)), "", 1, "L", false, 0, "")
	p.Ln(2)
}

func (r *Renderer) quantities(p *page, v *domain.ProjectVersion) {
	widths := []float64{62, 16, 22, 22, 22, 23, 23}
	headers := []string{"Item", "Unit", "Quantity", "Supplied", "Installed", "% Supplied", "% Installed"}

	p.SetFont("Helvetica", "B", 9)
	p.SetFillColor(230, 230, 230)
	for i, h := range headers {
		p.cell(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	p.Ln(-1)

	row := func(name, unit string, qty, sup, ins float64, pSup, pIns int, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		p.SetFont("Helvetica", style, 9)
		cells := []string{
			truncate(name, 38), unit,
			formatQty(qty), formatQty(sup), formatQty(ins),
			fmt.Sprintf("%d%%", ledger.ClampPercent(pSup)),
			fmt.Sprintf("%d%%", ledger.ClampPercent(pIns)),
		}
		for i, c := range cells {
			align := "R"
			if i < 2 {
				align = "L"
			}
			p.cell(widths[i], 6, c, "1", 0, align, false, 0, "")
		}
		p.Ln(-1)
	}

	for _, item := range v.Sheet1 {
		row(item.ItemName, item.Unit, item.TotalQuantity, item.TotalSupplied, item.TotalInstalled,
			item.PercentSupplied, item.PercentInstalled, true)
		for _, sub := range item.SubItems {
			row("  "+sub.SubItemName, sub.Unit, sub.TotalQuantity, sub.TotalSupplied, sub.TotalInstalled,
				sub.PercentSupplied, sub.PercentInstalled, false)
		}
	}
	p.Ln(4)
}

func (r *Renderer) blockages(p *page, v *domain.ProjectVersion, variant Variant) {
	p.SetFont("Helvetica", "B", 12)
	p.cell(0, 8, "Open issues", "", 1, "L", false, 0, "")
	p.SetFont("Helvetica", "", 9)

	listed := 0
	for _, item := range v.Sheet1 {
		for _, b := range item.Blockages {
			if b.Status != domain.BlockageStatusOpen {
				continue
			}
			if variant == VariantClient && b.Type != domain.BlockageTypeClient {
				continue
			}
			line := fmt.Sprintf("[%s/%s] %s - %s: %s (opened %s, weather: %s)",
				b.Type, b.Severity, item.ItemName, orNA(b.Category), b.Description,
				b.OpenDate.Format("02/01/2006"), orNA(b.WeatherReport))
			p.multi(0, 5, line, "", "L", false)
			listed++
		}
	}
	if listed == 0 {
		p.cell(0, 6, "No open issues.", "", 1, "L", false, 0, "")
	}
	p.Ln(4)
}

func (r *Renderer) photos(p *page, v *domain.ProjectVersion, urls map[string]string) {
	var lines [][2]string
	for _, item := range v.Sheet1 {
		for _, pr := range item.ProgressReports {
			for _, ph := range pr.Photos {
				lines = append(lines, [2]string{fmt.Sprintf("%s - %s: %s", item.ItemName, pr.Description, ph.FileName), urls[ph.StorageKey]})
			}
		}
	}
	if len(lines) == 0 {
		return
	}

	p.SetFont("Helvetica", "B", 12)
	p.cell(0, 8, "Progress photos", "", 1, "L", false, 0, "")
	p.SetFont("Helvetica", "", 9)
	for _, l := range lines {
		p.cell(0, 5, truncate(l[0], 110), "", 1, "L", false, 0, l[1])
	}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "N/A"
	}
	return t.UTC().Format("02/01/2006")
}

func formatQty(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "~"
}
