package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"enrollscope/pkg/contracts/domain"
)

var sampleRanking = []domain.InstitutionRank{
	{Rank: 1, Institution: "UFRGS", Value: 300, MarketShare: 75},
	{Rank: 2, Institution: "PUCRS", Value: 100, MarketShare: 25},
}

var sampleSeries = []domain.TimeSeriesPoint{
	{Year: 2019, DimensionValue: "Computing", Value: 100},
	{Year: 2020, DimensionValue: "Computing", Value: 121},
}

func TestCSVWriter_WriteRanking(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter().WriteRanking(&buf, sampleRanking))

	out := buf.Bytes()
	require.True(t, bytes.HasPrefix(out, []byte{0xEF, 0xBB, 0xBF}))

	rows, err := csv.NewReader(bytes.NewReader(out[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"rank", "institution", "value", "market_share_percent"}, rows[0])
	assert.Equal(t, []string{"1", "UFRGS", "300", "75.00"}, rows[1])
	assert.Equal(t, []string{"2", "PUCRS", "100", "25.00"}, rows[2])
}

func TestCSVWriter_WriteTimeSeries(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter().WriteTimeSeries(&buf, sampleSeries))

	rows, err := csv.NewReader(bytes.NewReader(buf.Bytes()[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"2019", "Computing", "100"}, rows[1])
	assert.Equal(t, []string{"2020", "Computing", "121"}, rows[2])
}

func TestCSVWriter_SaveRankingCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", "ranking.csv")
	require.NoError(t, NewCSVWriter().SaveRankingCSV(path, sampleRanking))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "UFRGS")
}

func TestExcelWriter_WriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExcelWriter().WriteWorkbook(&buf, sampleRanking, sampleSeries))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	institution, err := f.GetCellValue("Ranking", "B2")
	require.NoError(t, err)
	assert.Equal(t, "UFRGS", institution)

	year, err := f.GetCellValue("Time Series", "A3")
	require.NoError(t, err)
	assert.Equal(t, "2020", year)
}

func TestExcelWriter_EmptyTables(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExcelWriter().WriteWorkbook(&buf, nil, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Ranking", "A1")
	require.NoError(t, err)
	assert.Equal(t, "rank", header)
}
