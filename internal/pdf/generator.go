package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/certify-dev/practices-service/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() (*Generator, error) {
	return &Generator{fontName: "Helvetica"}, nil
}

// Generate renders the payment quote for a practice with a frozen price
// breakdown. The submitter attaches this summary to the bank transfer.
func (g *Generator) Generate(doc model.QuoteDocument) ([]byte, error) {
	breakdown := doc.Practice.Breakdown
	if breakdown == nil {
		return nil, fmt.Errorf("practice %s has no frozen price breakdown", doc.Practice.ID)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "Certification Practice - Payment Quote", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Practice %s", doc.Practice.ID), "", 1, "C", false, 0, "")
	if doc.Practice.SubmittedToPaymentAt != nil {
		pdf.CellFormat(0, 6, fmt.Sprintf("Quoted on %s", formatDate(*doc.Practice.SubmittedToPaymentAt)), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Selection", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)

	contractType := doc.ContractType.Name
	if contractType == "" {
		contractType = "-"
	}
	selectionLines := []string{
		fmt.Sprintf("Contract type: %s", contractType),
		fmt.Sprintf("Quantity: %d", doc.Practice.Quantity),
		fmt.Sprintf("Contract value: %s", formatAmount(doc.Practice.ContractValue, 2)),
		fmt.Sprintf("ODCEC convention: %s", yesNo(doc.Practice.IsOdcec)),
		fmt.Sprintf("Renewal: %s", yesNo(doc.Practice.IsRenewal)),
	}
	if breakdown.ConventionCode != nil {
		selectionLines = append(selectionLines, fmt.Sprintf("Convention code: %s", *breakdown.ConventionCode))
	}
	for _, line := range selectionLines {
		pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Price breakdown", "", 1, "L", false, 0, "")

	headers := []string{"Item", "Amount (EUR)"}
	colWidths := []float64{120, 60}
	drawTableRow(pdf, g.fontName, headers, colWidths, true)

	rows := [][]string{
		{"Base amount", formatAmount(breakdown.BaseAmount, 2)},
		{"Contract-value surcharge", formatAmount(breakdown.SurchargeAmount, 2)},
	}
	if breakdown.OdcecAdjustedAmount != nil {
		rows = append(rows, []string{"ODCEC tier amount", formatAmount(*breakdown.OdcecAdjustedAmount, 2)})
	}
	if breakdown.RenewalDiscountApplied {
		rows = append(rows, []string{"Renewal discount", "-50%"})
	}
	if breakdown.ConventionDiscountPercentage != nil {
		rows = append(rows, []string{"Convention discount", fmt.Sprintf("-%s%%", formatAmount(*breakdown.ConventionDiscountPercentage, 0))})
	}
	rows = append(rows,
		[]string{"Net before VAT", formatAmount(breakdown.NetBeforeVAT, 2)},
		[]string{fmt.Sprintf("VAT (%s%%)", formatAmount(breakdown.VATRate, 0)), formatAmount(breakdown.VATAmount, 2)},
	)
	for _, row := range rows {
		drawTableRow(pdf, g.fontName, row, colWidths, false)
	}

	pdf.Ln(2)
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Total due: %s EUR", formatAmount(breakdown.GrossTotal, 2)), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func formatAmount(value float64, precision int) string {
	format := fmt.Sprintf("%%.%df", precision)
	return fmt.Sprintf(format, value)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006")
}
