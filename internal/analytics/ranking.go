package analytics

import (
	"math"
	"sort"

	"enrollscope/pkg/contracts/domain"
)

// RankInstitutions groups records by institution, sums the metric, computes
// each institution's market share of the grand total (percent, rounded to 2
// decimals) and assigns ranks 1..K in descending metric order. Ties are
// broken by institution name so the ordering is deterministic.
func RankInstitutions(records []domain.EnrollmentRecord, metric domain.Metric) []domain.InstitutionRank {
	sums := make(map[string]int)
	for _, rec := range records {
		sums[rec.Institution] += metric.ValueOf(rec)
	}
	if len(sums) == 0 {
		return nil
	}

	grandTotal := 0
	for _, v := range sums {
		grandTotal += v
	}

	ranking := make([]domain.InstitutionRank, 0, len(sums))
	for institution, value := range sums {
		ranking = append(ranking, domain.InstitutionRank{
			Institution: institution,
			Value:       value,
			MarketShare: marketShare(value, grandTotal),
		})
	}

	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Value != ranking[j].Value {
			return ranking[i].Value > ranking[j].Value
		}
		return ranking[i].Institution < ranking[j].Institution
	})

	for i := range ranking {
		ranking[i].Rank = i + 1
	}

	return ranking
}

// marketShare returns value/total as a percentage rounded to 2 decimal
// places. A zero grand total yields 0 for every row.
func marketShare(value, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(value)/float64(total)*100*100) / 100
}
