package analytics

import (
	"log/slog"
	"sort"

	"enrollscope/pkg/contracts/domain"
)

// Aggregator runs the filter/aggregate/rank pipeline. It carries no state
// across calls; the record set is shared read-only.
type Aggregator struct {
	logger *slog.Logger
}

// NewAggregator creates an aggregator. A nil logger falls back to the default.
func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		logger: logger.With(slog.String("component", "aggregator")),
	}
}

// Aggregate applies the filter spec and produces the time series, growth
// rate and institutional ranking. An empty filtered set yields empty tables
// and a zero growth rate.
func (a *Aggregator) Aggregate(records []domain.EnrollmentRecord, spec domain.FilterSpec) domain.AggregationResult {
	filtered := Filter(records, spec)

	a.logger.Debug("aggregating filtered records",
		slog.Int("input_count", len(records)),
		slog.Int("filtered_count", len(filtered)),
		slog.String("dimension", string(spec.Dimension)),
		slog.String("metric", string(spec.Metric)))

	series := TimeSeries(filtered, spec.Dimension, spec.Metric)
	ranking := RankInstitutions(filtered, spec.Metric)

	top := ranking
	if len(top) > domain.TopRankingLimit {
		top = top[:domain.TopRankingLimit]
	}

	return domain.AggregationResult{
		TimeSeries: series,
		GrowthRate: GrowthRate(series),
		Ranking:    ranking,
		TopRanking: top,
	}
}

// Filter retains records whose year lies within the spec's inclusive range
// and whose categorical fields pass every non-empty allowed set. Records
// with a missing year never pass the year filter.
func Filter(records []domain.EnrollmentRecord, spec domain.FilterSpec) []domain.EnrollmentRecord {
	filtered := make([]domain.EnrollmentRecord, 0, len(records))
	for _, rec := range records {
		if !rec.YearValid || rec.Year < spec.YearFrom || rec.Year > spec.YearTo {
			continue
		}
		if !inSet(rec.State, spec.States) {
			continue
		}
		if !inSet(rec.Municipality, spec.Municipalities) {
			continue
		}
		if !inSet(rec.RegionalZone, spec.RegionalZones) {
			continue
		}
		if !inSet(rec.Institution, spec.Institutions) {
			continue
		}
		if !inSet(rec.LegalStatus, spec.LegalStatuses) {
			continue
		}
		filtered = append(filtered, rec)
	}
	return filtered
}

// inSet reports whether value is allowed. An empty set means the constraint
// is skipped entirely.
func inSet(value string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, v := range allowed {
		if v == value {
			return true
		}
	}
	return false
}

// TimeSeries groups records by (year, dimension value) and sums the metric.
// Rows are ordered by year, then dimension value.
func TimeSeries(records []domain.EnrollmentRecord, dim domain.Dimension, metric domain.Metric) []domain.TimeSeriesPoint {
	type key struct {
		year  int
		value string
	}

	sums := make(map[key]int)
	for _, rec := range records {
		k := key{year: rec.Year, value: dim.ValueOf(rec)}
		sums[k] += metric.ValueOf(rec)
	}

	series := make([]domain.TimeSeriesPoint, 0, len(sums))
	for k, total := range sums {
		series = append(series, domain.TimeSeriesPoint{
			Year:           k.year,
			DimensionValue: k.value,
			Value:          total,
		})
	}

	sort.Slice(series, func(i, j int) bool {
		if series[i].Year != series[j].Year {
			return series[i].Year < series[j].Year
		}
		return series[i].DimensionValue < series[j].DimensionValue
	})

	return series
}
