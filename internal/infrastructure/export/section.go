// Package export writes dashboard sections to spreadsheets.
package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/format"
)

// Worksheet layout: one header row, one row per bill, then the total row
const (
	headerRow = 1
	firstRow  = 2

	colDate         = "A"
	colType         = "B"
	colName         = "C"
	colAmount       = "D"
	colVAT          = "E"
	colPct          = "F"
	colEmail        = "G"
	colCommentary   = "H"
	colCommentAdmin = "I"
	colFile         = "J"
)

var headers = []struct {
	col   string
	title string
	width float64
}{
	{colDate, "Date", 12},
	{colType, "Type", 22},
	{colName, "Nom", 28},
	{colAmount, "Montant TTC", 14},
	{colVAT, "TVA", 10},
	{colPct, "%", 6},
	{colEmail, "Employé", 28},
	{colCommentary, "Commentaire", 36},
	{colCommentAdmin, "Commentaire admin", 36},
	{colFile, "Justificatif", 48},
}

// SectionExporter writes the bills of one status section to an xlsx workbook
type SectionExporter struct {
	logger *zap.Logger
}

// NewSectionExporter creates a SectionExporter
func NewSectionExporter(logger *zap.Logger) *SectionExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SectionExporter{logger: logger}
}

// FileName is the download name of a section export
func FileName(status entity.Status, now time.Time) string {
	return fmt.Sprintf("billed-%s-%s.xlsx", status, now.Format("2006-01-02"))
}

// Write renders the bills with status visible to viewer as a workbook on w
// and returns the number of bill rows written.
func (e *SectionExporter) Write(ctx context.Context, w io.Writer, bills []entity.Bill, status entity.Status, viewer format.Viewer) (int, error) {
	if !status.IsValid() {
		return 0, fmt.Errorf("unknown status %q", status)
	}
	selected := format.FilteredBills(bills, status, viewer)

	file := excelize.NewFile()
	defer file.Close()

	sheet := format.FormatStatus(status)
	if err := file.SetSheetName(file.GetSheetName(0), sheet); err != nil {
		return 0, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := e.writeHeader(file, sheet); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	for i, bill := range selected {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := e.writeBill(file, sheet, firstRow+i, bill); err != nil {
			return 0, fmt.Errorf("failed to write bill %s: %w", bill.ID, err)
		}
	}

	if len(selected) > 0 {
		if err := e.writeTotal(file, sheet, firstRow+len(selected)); err != nil {
			return 0, fmt.Errorf("failed to write total: %w", err)
		}
	}

	if err := file.Write(w); err != nil {
		return 0, fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("Section exported",
		zap.String("status", status.String()),
		zap.Int("bill_count", len(selected)))
	return len(selected), nil
}

func (e *SectionExporter) writeHeader(file *excelize.File, sheet string) error {
	style, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"0D5AE5"}},
	})
	if err != nil {
		return err
	}

	for _, h := range headers {
		cell := fmt.Sprintf("%s%d", h.col, headerRow)
		if err := file.SetCellValue(sheet, cell, h.title); err != nil {
			return err
		}
		if err := file.SetColWidth(sheet, h.col, h.col, h.width); err != nil {
			return err
		}
	}
	first := fmt.Sprintf("%s%d", headers[0].col, headerRow)
	last := fmt.Sprintf("%s%d", headers[len(headers)-1].col, headerRow)
	return file.SetCellStyle(sheet, first, last, style)
}

func (e *SectionExporter) writeBill(file *excelize.File, sheet string, row int, bill entity.Bill) error {
	display := format.FormatBillForDisplay(bill)
	values := []struct {
		col   string
		value interface{}
	}{
		{colDate, format.FormatDate(bill.Date)},
		{colType, bill.Type},
		{colName, bill.Name},
		{colAmount, bill.Amount},
		{colVAT, bill.VAT},
		{colPct, bill.Pct},
		{colEmail, bill.Email},
		{colCommentary, bill.Commentary},
		{colCommentAdmin, display.CommentAdmin()},
		{colFile, display.DisplayFileURL},
	}
	for _, v := range values {
		cell := fmt.Sprintf("%s%d", v.col, row)
		if err := file.SetCellValue(sheet, cell, v.value); err != nil {
			return err
		}
	}
	return nil
}

func (e *SectionExporter) writeTotal(file *excelize.File, sheet string, row int) error {
	if err := file.SetCellValue(sheet, fmt.Sprintf("%s%d", colName, row), "Total"); err != nil {
		return err
	}
	formula := fmt.Sprintf("SUM(%s%d:%s%d)", colAmount, firstRow, colAmount, row-1)
	return file.SetCellFormula(sheet, fmt.Sprintf("%s%d", colAmount, row), formula)
}
