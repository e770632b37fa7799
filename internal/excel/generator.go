package excel

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/certify-dev/practices-service/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate builds the commission register: one summary sheet plus a detail
// sheet per status present in the period.
func (g *Generator) Generate(register model.PracticeRegister) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Summary"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, register); err != nil {
		return nil, err
	}

	for _, group := range register.Groups {
		sheetName := sheetNameForStatus(group.Status)
		file.NewSheet(sheetName)
		if err := g.writeDetail(file, sheetName, group); err != nil {
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

func (g *Generator) writeSummary(file *excelize.File, sheet string, register model.PracticeRegister) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Period start")
	set("B1", formatDate(register.PeriodStart))
	set("A2", "Period end")
	set("B2", formatDate(register.PeriodEnd))
	set("A3", "Practices")
	set("B3", register.TotalPractices)
	set("A4", "Gross total, EUR")
	set("B4", formatAmount(register.TotalGross))

	tableRow := 6
	set(fmt.Sprintf("A%d", tableRow), "Status")
	set(fmt.Sprintf("B%d", tableRow), "Practices")
	set(fmt.Sprintf("C%d", tableRow), "Gross total, EUR")

	for i, group := range register.Groups {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), string(group.Status))
		set(fmt.Sprintf("B%d", row), len(group.Practices))
		set(fmt.Sprintf("C%d", row), formatAmount(sumGross(group.Practices)))
	}

	_ = file.SetColWidth(sheet, "A", "A", 28)
	_ = file.SetColWidth(sheet, "B", "B", 14)
	_ = file.SetColWidth(sheet, "C", "C", 18)
	return nil
}

func (g *Generator) writeDetail(file *excelize.File, sheet string, group model.RegisterGroup) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{
		"Practice",
		"Submitter",
		"Quantity",
		"Reviewer",
		"Net before VAT, EUR",
		"Gross total, EUR",
		"Created",
		"Resolved",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	for i, practice := range group.Practices {
		row := 2 + i
		set(fmt.Sprintf("A%d", row), practice.ID.String())
		set(fmt.Sprintf("B%d", row), practice.SubmitterID.String())
		set(fmt.Sprintf("C%d", row), practice.Quantity)
		if practice.AssignedReviewerID != nil {
			set(fmt.Sprintf("D%d", row), practice.AssignedReviewerID.String())
		}
		if practice.Breakdown != nil {
			set(fmt.Sprintf("E%d", row), formatAmount(practice.Breakdown.NetBeforeVAT))
			set(fmt.Sprintf("F%d", row), formatAmount(practice.Breakdown.GrossTotal))
		}
		set(fmt.Sprintf("G%d", row), formatDateTime(practice.CreatedAt))
		if practice.ResolvedAt != nil {
			set(fmt.Sprintf("H%d", row), formatDateTime(*practice.ResolvedAt))
		}
	}

	_ = file.SetColWidth(sheet, "A", "B", 38)
	_ = file.SetColWidth(sheet, "C", "C", 10)
	_ = file.SetColWidth(sheet, "D", "D", 38)
	_ = file.SetColWidth(sheet, "E", "F", 18)
	_ = file.SetColWidth(sheet, "G", "H", 20)
	return nil
}

// sheetNameForStatus keeps names inside the 31-character sheet limit.
func sheetNameForStatus(status model.PracticeStatus) string {
	words := strings.Fields(strings.ToLower(strings.ReplaceAll(string(status), "_", " ")))
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	name := strings.Join(words, " ")
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

func sumGross(practices []model.Practice) float64 {
	total := 0.0
	for _, practice := range practices {
		if practice.Breakdown != nil {
			total += practice.Breakdown.GrossTotal
		}
	}
	return total
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatAmount(value float64) string {
	return fmt.Sprintf("%.2f", value)
}
