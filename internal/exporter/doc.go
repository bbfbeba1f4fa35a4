// Package exporter renders aggregation results as downloadable files.
//
// CSVWriter emits UTF-8 CSV with a BOM prefix so Excel opens accented
// Portuguese names correctly. ExcelWriter builds a two-sheet workbook
// (ranking + time series) with excelize. Both write to an io.Writer so
// the HTTP layer can stream directly into the response; SaveRankingCSV
// is the file-path convenience used by the CLI.
package exporter
