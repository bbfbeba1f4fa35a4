package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enrollscope/pkg/contracts/domain"
)

func TestRankInstitutions_SharesAndRanks(t *testing.T) {
	records := []domain.EnrollmentRecord{
		rec(2020, "A", 300),
		rec(2020, "B", 100),
		rec(2020, "C", 0),
	}

	ranking := RankInstitutions(records, domain.MetricDoctoral)
	require.Len(t, ranking, 3)

	assert.Equal(t, domain.InstitutionRank{Rank: 1, Institution: "A", Value: 300, MarketShare: 75.00}, ranking[0])
	assert.Equal(t, domain.InstitutionRank{Rank: 2, Institution: "B", Value: 100, MarketShare: 25.00}, ranking[1])
	assert.Equal(t, domain.InstitutionRank{Rank: 3, Institution: "C", Value: 0, MarketShare: 0.00}, ranking[2])
}

func TestRankInstitutions_SharesSumToHundred(t *testing.T) {
	records := []domain.EnrollmentRecord{
		rec(2020, "A", 17),
		rec(2020, "B", 23),
		rec(2020, "C", 31),
		rec(2020, "D", 5),
		rec(2020, "E", 124),
	}

	ranking := RankInstitutions(records, domain.MetricDoctoral)
	require.NotEmpty(t, ranking)

	sum := 0.0
	for _, row := range ranking {
		sum += row.MarketShare
	}
	assert.InDelta(t, 100.0, sum, 0.1, "2-decimal per-row rounding tolerance")
}

func TestRankInstitutions_SumsAcrossRecords(t *testing.T) {
	records := []domain.EnrollmentRecord{
		rec(2019, "A", 10),
		rec(2020, "A", 15),
		rec(2020, "B", 5),
	}

	ranking := RankInstitutions(records, domain.MetricDoctoral)
	require.Len(t, ranking, 2)
	assert.Equal(t, 25, ranking[0].Value)
	assert.Equal(t, "A", ranking[0].Institution)
}

func TestRankInstitutions_TiesBrokenByName(t *testing.T) {
	records := []domain.EnrollmentRecord{
		rec(2020, "Zeta", 10),
		rec(2020, "Alfa", 10),
	}

	ranking := RankInstitutions(records, domain.MetricDoctoral)
	require.Len(t, ranking, 2)
	assert.Equal(t, "Alfa", ranking[0].Institution)
	assert.Equal(t, 1, ranking[0].Rank)
	assert.Equal(t, "Zeta", ranking[1].Institution)
	assert.Equal(t, 2, ranking[1].Rank)
}

func TestRankInstitutions_ZeroGrandTotal(t *testing.T) {
	records := []domain.EnrollmentRecord{
		rec(2020, "A", 0),
		rec(2020, "B", 0),
	}

	ranking := RankInstitutions(records, domain.MetricDoctoral)
	require.Len(t, ranking, 2)
	for _, row := range ranking {
		assert.Equal(t, 0.0, row.MarketShare, "zero grand total must not divide by zero")
	}
}

func TestRankInstitutions_Empty(t *testing.T) {
	assert.Empty(t, RankInstitutions(nil, domain.MetricDoctoral))
}
