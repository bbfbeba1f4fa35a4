package datasource

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"enrollscope/internal/dataset"
)

// ReadCSV reads the raw dataset into records keyed by cleaned header names.
// Exact duplicate rows are dropped so the cached set is de-duplicated.
func ReadCSV(path string) ([]dataset.RawRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}

	// Remove UTF-8 BOM if present (common in Excel-produced CSVs).
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		content = content[3:]
	}

	reader := csv.NewReader(strings.NewReader(string(content)))
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i, h := range header {
		header[i] = cleanHeader(h)
	}

	var records []dataset.RawRecord
	seen := make(map[string]bool)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		key := strings.Join(row, "\x1f")
		if seen[key] {
			continue
		}
		seen[key] = true

		rec := make(dataset.RawRecord, len(header))
		for i, h := range header {
			if i < len(row) {
				rec[h] = row[i]
			}
		}
		records = append(records, rec)
	}

	return records, nil
}

// cleanHeader trims whitespace and stray quotes from a column name.
func cleanHeader(h string) string {
	h = strings.TrimSpace(h)
	return strings.ReplaceAll(h, `"`, "")
}
