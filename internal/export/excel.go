package export

import (
	"fmt"
	"os"
	"path/filepath"

	apperrors "sjsage522/newsextractor/pkg/errors"

	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the name of the single worksheet
const DefaultSheet = "News"

// ExcelWriter writes .xlsx workbooks with excelize
type ExcelWriter struct {
	Sheet string
}

// NewExcelWriter creates a writer using DefaultSheet
func NewExcelWriter() *ExcelWriter {
	return &ExcelWriter{Sheet: DefaultSheet}
}

// Write implements SpreadsheetWriter. The workbook is saved to a temporary
// file in the destination directory and renamed over path, so path either
// keeps its previous content or holds the complete new workbook.
func (w *ExcelWriter) Write(header []string, rows [][]any, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := w.Sheet
	if sheet == "" {
		sheet = DefaultSheet
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return apperrors.NewExport("excel", "name sheet", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return apperrors.NewExport("excel", "write header", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return apperrors.NewExport("excel", "address row", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return apperrors.NewExport("excel", fmt.Sprintf("write row %d", i+1), err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*.xlsx")
	if err != nil {
		return apperrors.NewExport("excel", "create "+path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := f.WriteTo(tmp); err != nil {
		tmp.Close()
		return apperrors.NewExport("excel", "write "+path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return apperrors.NewExport("excel", "sync "+path, err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.NewExport("excel", "close "+path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return apperrors.NewExport("excel", "rename to "+path, err)
	}
	return nil
}
