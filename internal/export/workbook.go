// Package export writes approvals to an Excel workbook.
package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/approvals-console/internal/domain/entity"
	"github.com/garyjia/approvals-console/internal/extract"
)

// SheetName is the worksheet holding the approvals
const SheetName = "Approvals"

// Headers is the header row, in column order
var Headers = []string{
	"ID",
	"Category",
	"Status",
	"Account",
	"Description",
	"Requested On",
	"Rejection Reason",
	"Details",
}

// WorkbookWriter writes approvals to .xlsx files
type WorkbookWriter struct {
	logger *zap.Logger
}

// NewWorkbookWriter creates a new workbook writer
func NewWorkbookWriter(logger *zap.Logger) *WorkbookWriter {
	return &WorkbookWriter{logger: logger}
}

// WriteWorkbook writes one row per approval to path
func (w *WorkbookWriter) WriteWorkbook(path string, approvals []*entity.Approval) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &Headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		w.setStyle(f, "A1", cellName(len(Headers), 1), style)
	}

	for i, a := range approvals {
		cell := cellName(1, i+2)
		if err := f.SetSheetRow(SheetName, cell, &[]interface{}{
			a.ID,
			extract.HumanizeIdentifier(a.Category.String()),
			a.Status.String(),
			a.Username,
			a.Description,
			a.Timestamp.Format("2006-01-02 15:04"),
			a.RejectionReason,
			details(a.ExtraFields),
		}); err != nil {
			return fmt.Errorf("failed to write row for approval %s: %w", a.ID, err)
		}
	}

	if style, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}}); err == nil && len(approvals) > 0 {
		w.setStyle(f, "A2", cellName(len(Headers), len(approvals)+1), style)
	}
	w.setColWidth(f, "E", 40)
	w.setColWidth(f, "H", 48)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	w.logger.Info("Approvals exported", zap.String("path", path), zap.Int("rows", len(approvals)))
	return nil
}

// details flattens extra fields into "Label: Value" lines
func details(fields entity.Fields) string {
	lines := make([]string, 0, fields.Len())
	for _, field := range fields {
		lines = append(lines, field.Label+": "+field.Value)
	}
	return strings.Join(lines, "\n")
}

func (w *WorkbookWriter) setStyle(f *excelize.File, from, to string, style int) {
	if err := f.SetCellStyle(SheetName, from, to, style); err != nil {
		w.logger.Warn("Failed to set cell style", zap.String("range", from+":"+to), zap.Error(err))
	}
}

func (w *WorkbookWriter) setColWidth(f *excelize.File, col string, width float64) {
	if err := f.SetColWidth(SheetName, col, col, width); err != nil {
		w.logger.Warn("Failed to set column width", zap.String("column", col), zap.Error(err))
	}
}

func cellName(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "A1"
	}
	return name
}
