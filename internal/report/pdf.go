package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
)

// Renderer produces PDF reports. It holds no per-document state and is safe
// for concurrent use; each Render call builds its own fpdf document.
type Renderer struct {
	pageSize string
	font     string
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithPageSize overrides the default A4 page size.
func WithPageSize(size string) RendererOption {
	return func(r *Renderer) {
		if size != "" {
			r.pageSize = size
		}
	}
}

// NewRenderer creates a Renderer.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{pageSize: "A4", font: "Arial"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render returns the PDF bytes for doc.
func (r *Renderer) Render(doc Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", r.pageSize, "")
	pdf.SetTitle(ReportTitle, true)
	pdf.SetCreator("subsidy", true)
	if !doc.GeneratedAt.IsZero() {
		pdf.SetCreationDate(doc.GeneratedAt)
	}
	// Core fonts are cp1252; applicant names may not be.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont(r.font, "B", 16)
	pdf.CellFormat(0, 10, ReportTitle, "", 1, "C", false, 0, "")

	r.section(pdf, tr, "Input Details", InputLines(doc))
	pdf.Ln(5)
	r.section(pdf, tr, "Subsidy Calculation Result", ResultLines(doc.Result))

	if doc.ID != uuid.Nil {
		pdf.Ln(5)
		pdf.SetFont(r.font, "I", 8)
		pdf.CellFormat(0, 6, "Reference: "+doc.ID.String(), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) section(pdf *fpdf.Fpdf, tr func(string) string, heading string, lines []Line) {
	pdf.SetFont(r.font, "B", 12)
	pdf.CellFormat(0, 10, heading, "", 1, "L", false, 0, "")
	pdf.SetFont(r.font, "", 11)
	for _, l := range lines {
		pdf.CellFormat(0, 8, tr(l.Label+": "+l.Value), "", 1, "L", false, 0, "")
	}
}
