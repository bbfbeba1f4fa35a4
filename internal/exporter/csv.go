package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"enrollscope/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// rankingHeaders are the columns of the exported ranked table.
var rankingHeaders = []string{"rank", "institution", "value", "market_share_percent"}

// timeSeriesHeaders are the columns of the exported time-series table.
var timeSeriesHeaders = []string{"year", "dimension_value", "value"}

// CSVWriter emits UTF-8 CSV with a BOM prefix for Excel compatibility.
type CSVWriter struct{}

// NewCSVWriter creates a CSV writer.
func NewCSVWriter() *CSVWriter {
	return &CSVWriter{}
}

// WriteRanking writes the full ranked institutional table.
func (c *CSVWriter) WriteRanking(w io.Writer, ranking []domain.InstitutionRank) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(rankingHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for _, row := range ranking {
		record := []string{
			strconv.Itoa(row.Rank),
			row.Institution,
			strconv.Itoa(row.Value),
			strconv.FormatFloat(row.MarketShare, 'f', 2, 64),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write ranking row %d: %w", row.Rank, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteTimeSeries writes the long-form time-series table.
func (c *CSVWriter) WriteTimeSeries(w io.Writer, series []domain.TimeSeriesPoint) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(timeSeriesHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, point := range series {
		record := []string{
			strconv.Itoa(point.Year),
			point.DimensionValue,
			strconv.Itoa(point.Value),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write series row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// SaveRankingCSV writes the ranked table to a file, creating parent
// directories as needed.
func (c *CSVWriter) SaveRankingCSV(path string, ranking []domain.InstitutionRank) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := c.WriteRanking(file, ranking); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
