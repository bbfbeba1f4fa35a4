package domain

import "fmt"

// EnrollmentRecord is the Single Source of Truth for one row of the
// graduate-program enrollment dataset after normalization. All aggregation,
// export and API layers consume this structure; none of them reach back into
// the raw columnar source.
//
// Normalization guarantees:
//   - RegionalZone, Institution and LegalStatus are never empty strings
//     (defaults "NA" / "Not informed" are applied instead).
//   - The four enrollment counts are non-negative; null source cells become 0.
//   - YearValid is false when the source year could not be parsed; such
//     records are excluded from year-range bounds and year filtering, but are
//     not dropped from the dataset.
type EnrollmentRecord struct {
	// Year is the academic year. Only meaningful when YearValid is true.
	Year int `json:"year"`

	// YearValid reports whether the source year was parseable as an integer.
	YearValid bool `json:"year_valid"`

	// Geographic join keys.
	State        string `json:"state"`
	Municipality string `json:"municipality"`
	// RegionalZone is the sub-state development region (COREDE). Defaults to
	// "NA" when the source has no usable column or value.
	RegionalZone string `json:"regional_zone"`

	// Institution identifies the degree-granting institution (IES).
	Institution string `json:"institution"`
	// LegalStatus categorizes the institution (public, private, ...).
	LegalStatus string `json:"legal_status"`

	// Categorical analysis dimensions.
	Program        string `json:"program"`
	EvaluationArea string `json:"evaluation_area"`
	KnowledgeArea  string `json:"knowledge_area"`

	// Enrollment counts. Always >= 0 after normalization.
	Doctoral             int `json:"doctoral"`
	ProfessionalDoctoral int `json:"professional_doctoral"`
	Masters              int `json:"masters"`
	ProfessionalMasters  int `json:"professional_masters"`
}

// TotalEnrolled is the derived metric: the sum of the four enrollment counts.
func (r EnrollmentRecord) TotalEnrolled() int {
	return r.Doctoral + r.ProfessionalDoctoral + r.Masters + r.ProfessionalMasters
}

// Default literals applied by normalization for absent or null values.
const (
	DefaultRegionalZone = "NA"
	DefaultNotInformed  = "Not informed"
)

// Dimension is the categorical axis the time series is broken out by.
type Dimension string

const (
	DimensionProgram        Dimension = "program"
	DimensionEvaluationArea Dimension = "evaluation_area"
	DimensionKnowledgeArea  Dimension = "knowledge_area"
)

// Dimensions lists every valid analysis dimension.
func Dimensions() []Dimension {
	return []Dimension{DimensionProgram, DimensionEvaluationArea, DimensionKnowledgeArea}
}

// ParseDimension converts a string to a Dimension.
func ParseDimension(s string) (Dimension, error) {
	switch Dimension(s) {
	case DimensionProgram, DimensionEvaluationArea, DimensionKnowledgeArea:
		return Dimension(s), nil
	}
	return "", fmt.Errorf("unknown dimension: %q", s)
}

// ValueOf returns the record's value on this dimension.
func (d Dimension) ValueOf(r EnrollmentRecord) string {
	switch d {
	case DimensionProgram:
		return r.Program
	case DimensionEvaluationArea:
		return r.EvaluationArea
	case DimensionKnowledgeArea:
		return r.KnowledgeArea
	}
	return ""
}

// Metric selects which enrollment count is aggregated. TotalEnrolled is
// derived per record before grouping; the other four map to raw columns.
type Metric string

const (
	MetricDoctoral             Metric = "doctoral"
	MetricProfessionalDoctoral Metric = "professional_doctoral"
	MetricMasters              Metric = "masters"
	MetricProfessionalMasters  Metric = "professional_masters"
	MetricTotalEnrolled        Metric = "total_enrolled"
)

// Metrics lists every valid metric choice.
func Metrics() []Metric {
	return []Metric{
		MetricDoctoral,
		MetricProfessionalDoctoral,
		MetricMasters,
		MetricProfessionalMasters,
		MetricTotalEnrolled,
	}
}

// ParseMetric converts a string to a Metric.
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case MetricDoctoral, MetricProfessionalDoctoral, MetricMasters,
		MetricProfessionalMasters, MetricTotalEnrolled:
		return Metric(s), nil
	}
	return "", fmt.Errorf("unknown metric: %q", s)
}

// ValueOf returns the record's value for this metric.
func (m Metric) ValueOf(r EnrollmentRecord) int {
	switch m {
	case MetricDoctoral:
		return r.Doctoral
	case MetricProfessionalDoctoral:
		return r.ProfessionalDoctoral
	case MetricMasters:
		return r.Masters
	case MetricProfessionalMasters:
		return r.ProfessionalMasters
	case MetricTotalEnrolled:
		return r.TotalEnrolled()
	}
	return 0
}

// FilterSpec describes one user interaction: a year range, optional
// categorical restrictions, and the chosen dimension and metric.
// An empty allowed set means the corresponding constraint is skipped
// entirely; all constraints are ANDed.
type FilterSpec struct {
	YearFrom int `json:"year_from"`
	YearTo   int `json:"year_to"`

	States         []string `json:"states,omitempty"`
	Municipalities []string `json:"municipalities,omitempty"`
	RegionalZones  []string `json:"regional_zones,omitempty"`
	Institutions   []string `json:"institutions,omitempty"`
	LegalStatuses  []string `json:"legal_statuses,omitempty"`

	Dimension Dimension `json:"dimension"`
	Metric    Metric    `json:"metric"`
}

// TimeSeriesPoint is one row of the long-form time-series table:
// the summed metric for a (year, dimension value) pair.
type TimeSeriesPoint struct {
	Year           int    `json:"year"`
	DimensionValue string `json:"dimension_value"`
	Value          int    `json:"value"`
}

// InstitutionRank is one row of the ranked institutional table.
type InstitutionRank struct {
	Rank        int     `json:"rank"`
	Institution string  `json:"institution"`
	Value       int     `json:"value"`
	// MarketShare is the institution's share of the grand total across the
	// current filtered view, as a percentage rounded to 2 decimal places.
	MarketShare float64 `json:"market_share_percent"`
}

// AggregationResult is the output of one filter/aggregate/rank pass.
// It is derived per interaction and never stored.
type AggregationResult struct {
	// TimeSeries is ordered by year, then dimension value.
	TimeSeries []TimeSeriesPoint `json:"time_series"`

	// GrowthRate is the compound annual growth rate of the per-year totals,
	// fractional (0.0521 == 5.21%). Exactly 0 for the degenerate cases:
	// fewer than two distinct years, a zero first-year total, or identical
	// first and last years.
	GrowthRate float64 `json:"growth_rate"`

	// Ranking is the full ranked institutional table, descending by value.
	Ranking []InstitutionRank `json:"ranking"`

	// TopRanking is the display view: the first TopRankingLimit rows of
	// Ranking.
	TopRanking []InstitutionRank `json:"top_ranking"`
}

// TopRankingLimit is the fixed display cutoff for the ranked view. The full
// table stays available for export.
const TopRankingLimit = 15
