package analytics

import (
	"math"
	"sort"

	"enrollscope/pkg/contracts/domain"
)

// GrowthRate computes the compound annual growth rate of the time series
// collapsed to one total per year:
//
//	(last/first)^(1/(lastYear-firstYear)) - 1
//
// The degenerate cases return exactly 0 rather than an error: fewer than two
// distinct years, a zero first-year total, or identical first and last years.
func GrowthRate(series []domain.TimeSeriesPoint) float64 {
	totals := make(map[int]int)
	for _, p := range series {
		totals[p.Year] += p.Value
	}
	if len(totals) < 2 {
		return 0
	}

	years := make([]int, 0, len(totals))
	for year := range totals {
		years = append(years, year)
	}
	sort.Ints(years)

	firstYear, lastYear := years[0], years[len(years)-1]
	first, last := totals[firstYear], totals[lastYear]

	if first == 0 || firstYear == lastYear {
		return 0
	}

	span := float64(lastYear - firstYear)
	return math.Pow(float64(last)/float64(first), 1/span) - 1
}
