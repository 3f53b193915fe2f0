package export

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"voicera-console/internal/calls"
)

type PDFOptions struct {
	Title       string
	Subtitle    string
	GeneratedAt time.Time
	Location    *time.Location
}

// Column widths in millimetres for landscape A4; they follow header order.
var pdfWidths = []float64{40, 32, 22, 30, 30, 36, 18, 24, 20, 22}

// WritePDF renders rows as a paginated table. The header row repeats on
// every page.
func WritePDF(w io.Writer, rows []calls.Row, opts PDFOptions) error {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	if opts.Title == "" {
		opts.Title = "Call History"
	}
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now()
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(opts.Title, true)
	pdf.SetAutoPageBreak(true, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	tableHeader := func() {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range header {
			pdf.CellFormat(pdfWidths[i], 7, h, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 7.5)
	}
	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			tableHeader()
		}
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont("Helvetica", "I", 7)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, tr(opts.Title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	if opts.Subtitle != "" {
		pdf.CellFormat(0, 5, tr(opts.Subtitle), "", 1, "L", false, 0, "")
	}
	meta := fmt.Sprintf("Generated %s - %d calls", opts.GeneratedAt.In(loc).Format("2006-01-02 15:04 MST"), len(rows))
	pdf.CellFormat(0, 5, meta, "", 1, "L", false, 0, "")
	pdf.Ln(3)

	tableHeader()
	for _, r := range rows {
		for i, v := range record(r, loc) {
			pdf.CellFormat(pdfWidths[i], 6, tr(truncate(v, pdfWidths[i])), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(rows) == 0 {
		pdf.CellFormat(0, 6, "No calls match the current filters.", "1", 1, "C", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("export: render pdf: %w", err)
	}
	return nil
}

// truncate keeps a cell on one line; roughly 0.55 characters per millimetre
// at the body font size.
func truncate(s string, width float64) string {
	limit := int(width * 0.55)
	r := []rune(s)
	if limit < 4 || len(r) <= limit {
		return s
	}
	return string(r[:limit-3]) + "..."
}
