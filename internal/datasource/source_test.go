package datasource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enrollscope/internal/dataset"
)

const sampleCSV = `year,state,municipality,COREDE,IES,Status Jurídico,program,evaluation_area,knowledge_area,doctoral,professional_doctoral,masters,professional_masters
2020,RS,Porto Alegre,Metropolitano,UFRGS,Public,Computing,Computer Science,Exact Sciences,100,0,50,10
2021,RS,Porto Alegre,Metropolitano,UFRGS,Public,Computing,Computer Science,Exact Sciences,110,0,55,12
2021,RS,Porto Alegre,Metropolitano,UFRGS,Public,Computing,Computer Science,Exact Sciences,110,0,55,12
`

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "enrollment.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCSV_StripsBOMAndDeduplicates(t *testing.T) {
	path := writeTempCSV(t, "\xEF\xBB\xBF"+sampleCSV)

	raw, err := ReadCSV(path)
	require.NoError(t, err)

	// Three data rows, two identical; duplicates are dropped.
	require.Len(t, raw, 2)
	assert.Equal(t, "2020", raw[0]["year"])
	assert.Equal(t, "UFRGS", raw[0]["IES"])
}

func TestReadCSV_CleansQuotedHeaders(t *testing.T) {
	path := writeTempCSV(t, "\" year \",\"IES\"\n2019,UFSM\n")

	raw, err := ReadCSV(path)
	require.NoError(t, err)
	require.Len(t, raw, 1)
	assert.Equal(t, "2019", raw[0]["year"])
	assert.Equal(t, "UFSM", raw[0]["IES"])
}

func TestReadCSV_MissingFile(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}

func TestSource_RecordsBeforeLoad(t *testing.T) {
	src := New("unused.csv", dataset.NewNormalizer(nil), nil, nil)

	_, err := src.Records()
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.True(t, src.LoadedAt().IsZero())
}

func TestSource_LoadAndRecords(t *testing.T) {
	path := writeTempCSV(t, sampleCSV)
	src := New(path, dataset.NewNormalizer(nil), nil, nil)

	require.NoError(t, src.Load())

	records, err := src.Records()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 2020, records[0].Year)
	assert.True(t, records[0].YearValid)
	assert.Equal(t, "UFRGS", records[0].Institution)
	assert.Equal(t, 160, records[0].TotalEnrolled())
	assert.False(t, src.LoadedAt().IsZero())
}

func TestSource_LoadFailureKeepsSnapshot(t *testing.T) {
	path := writeTempCSV(t, sampleCSV)
	src := New(path, dataset.NewNormalizer(nil), nil, nil)
	require.NoError(t, src.Load())

	require.NoError(t, os.Remove(path))
	assert.Error(t, src.Load())

	// Previous snapshot still served.
	records, err := src.Records()
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestSource_SubscribeNotifiedOnLoad(t *testing.T) {
	path := writeTempCSV(t, sampleCSV)
	src := New(path, dataset.NewNormalizer(nil), nil, nil)

	var got int
	src.Subscribe(func(recordCount int) { got = recordCount })

	require.NoError(t, src.Load())
	assert.Equal(t, 2, got)
}
