package export

import (
	"fmt"
	"io"
	"strconv"

	"lottery/domain/entities"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the winners
const SheetName = "Winners"

// XLSXExporter writes results as an Excel workbook
type XLSXExporter struct{}

// NewXLSXExporter creates a new xlsx exporter
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// ContentType returns the xlsx MIME type
func (e *XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// FileExtension returns "xlsx"
func (e *XLSXExporter) FileExtension() string {
	return "xlsx"
}

// Export writes a single-sheet workbook: a bold header row, then one row per
// winner in draw order
func (e *XLSXExporter) Export(w io.Writer, result *entities.DrawResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header, rows := table(result)

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := setRow(f, 1, header); err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return fmt.Errorf("failed to resolve last column: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, row := range rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		// Rank is numeric so the sheet sorts correctly
		cells[0] = i + 1
		if err := setRowCells(f, i+2, cells); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(SheetName, "B", lastCol, 20); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, rowNum int, values []string) error {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return setRowCells(f, rowNum, cells)
}

func setRowCells(f *excelize.File, rowNum int, cells []any) error {
	if err := f.SetSheetRow(SheetName, "A"+strconv.Itoa(rowNum), &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", rowNum, err)
	}
	return nil
}
