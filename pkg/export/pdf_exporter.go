package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders statements and receipts with gofpdf.
type PDFExporter struct {
	clock func() time.Time
}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{clock: time.Now}
}

// Render lays the dataset out as a landscape table under title.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.SetFont("Arial", "", 8)
		pdf.CellFormat(0, 5, "Generated "+e.clock().UTC().Format(time.RFC1123), "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}

	pdf.SetFont("Arial", "B", 9)
	colWidth := 277.0 / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, row[header], "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(data.Rows) == 0 {
		pdf.CellFormat(277, 7, "No records", "1", 1, "C", false, 0, "")
	}

	return output(pdf)
}

// Receipt is a single-payment document.
type Receipt struct {
	Number      string
	IssuedTo    string
	Email       string
	Description string
	Method      string
	Status      string
	Reference   string
	Currency    string
	Amount      float64
	PaidAt      time.Time
}

// RenderReceipt draws a one-page receipt as label/value rows.
func (e *PDFExporter) RenderReceipt(r Receipt) ([]byte, error) {
	if r.Number == "" {
		return nil, fmt.Errorf("receipt number required")
	}
	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 15, 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "PAYMENT RECEIPT", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 8)
	pdf.CellFormat(0, 5, "Receipt "+r.Number, "", 1, "C", false, 0, "")
	pdf.Ln(6)

	paid := "-"
	if !r.PaidAt.IsZero() {
		paid = r.PaidAt.UTC().Format("02 Jan 2006 15:04 MST")
	}
	rows := [][2]string{
		{"Issued to", r.IssuedTo},
		{"Email", r.Email},
		{"Description", r.Description},
		{"Method", r.Method},
		{"Status", strings.ToUpper(r.Status)},
		{"Reference", r.Reference},
		{"Date", paid},
		{"Amount", fmt.Sprintf("%s %.2f", r.Currency, r.Amount)},
	}
	for _, row := range rows {
		value := row[1]
		if value == "" {
			value = "-"
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(40, 8, row[0], "B", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 8, value, "B", 1, "", false, 0, "")
	}

	return output(pdf)
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
