package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"enrollscope/pkg/contracts/domain"
)

const (
	rankingSheet    = "Ranking"
	timeSeriesSheet = "Time Series"
)

// ExcelWriter builds xlsx workbooks from aggregation results.
type ExcelWriter struct{}

// NewExcelWriter creates an Excel writer.
func NewExcelWriter() *ExcelWriter {
	return &ExcelWriter{}
}

// WriteWorkbook streams a two-sheet workbook: the full ranked table and the
// time-series table. Either slice may be empty; headers are always written.
func (e *ExcelWriter) WriteWorkbook(w io.Writer, ranking []domain.InstitutionRank, series []domain.TimeSeriesPoint) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", rankingSheet)
	if _, err := f.NewSheet(timeSeriesSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	for col, header := range rankingHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(rankingSheet, cell, header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	for i, row := range ranking {
		if err := setRow(f, rankingSheet, i+2, row.Rank, row.Institution, row.Value, row.MarketShare); err != nil {
			return err
		}
	}

	for col, header := range timeSeriesHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(timeSeriesSheet, cell, header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	for i, point := range series {
		if err := setRow(f, timeSeriesSheet, i+2, point.Year, point.DimensionValue, point.Value); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// setRow writes one 1-based row of values starting at column A.
func setRow(f *excelize.File, sheet string, row int, values ...interface{}) error {
	for col, value := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to write cell %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}
