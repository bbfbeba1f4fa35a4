package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"enrollscope/internal/analytics"
	"enrollscope/internal/datasource"
	"enrollscope/internal/exporter"
	"enrollscope/internal/infrastructure"
	"enrollscope/pkg/contracts/domain"
)

// DataProvider is the read side of the dataset cache.
type DataProvider interface {
	Records() ([]domain.EnrollmentRecord, error)
	LoadedAt() time.Time
}

// ExportFormat selects the export file type.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
)

// ParseExportFormat converts a query-string value to an ExportFormat.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(s) {
	case FormatCSV, FormatXLSX:
		return ExportFormat(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FilterOptions describes the selectable values for the interaction surface:
// the distinct values of every filterable column plus the dataset year bounds.
type FilterOptions struct {
	YearMin int `json:"year_min"`
	YearMax int `json:"year_max"`

	States         []string `json:"states"`
	Municipalities []string `json:"municipalities"`
	RegionalZones  []string `json:"regional_zones"`
	Institutions   []string `json:"institutions"`
	LegalStatuses  []string `json:"legal_statuses"`

	Dimensions []domain.Dimension `json:"dimensions"`
	Metrics    []domain.Metric    `json:"metrics"`
}

// AnalyticsService runs filter/aggregate/rank interactions against the
// cached dataset. Results are derived per call and never stored.
type AnalyticsService struct {
	data       DataProvider
	aggregator *analytics.Aggregator
	csv        *exporter.CSVWriter
	excel      *exporter.ExcelWriter
	logger     *slog.Logger
	metrics    *infrastructure.Metrics
}

// NewAnalyticsService creates the service. Metrics may be nil (CLI usage).
func NewAnalyticsService(data DataProvider, aggregator *analytics.Aggregator, logger *slog.Logger, metrics *infrastructure.Metrics) *AnalyticsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsService{
		data:       data,
		aggregator: aggregator,
		csv:        exporter.NewCSVWriter(),
		excel:      exporter.NewExcelWriter(),
		logger:     logger.With(slog.String("component", "analytics_service")),
		metrics:    metrics,
	}
}

// Aggregate runs one interaction: filter, aggregate, rank.
func (s *AnalyticsService) Aggregate(ctx context.Context, spec domain.FilterSpec) (domain.AggregationResult, error) {
	records, err := s.records()
	if err != nil {
		return domain.AggregationResult{}, err
	}

	start := time.Now()
	result := s.aggregator.Aggregate(records, spec)
	elapsed := time.Since(start)

	if s.metrics != nil {
		s.metrics.AggregationDuration.WithLabelValues(string(spec.Metric)).Observe(elapsed.Seconds())
	}

	s.logger.InfoContext(ctx, "aggregation completed",
		slog.String("dimension", string(spec.Dimension)),
		slog.String("metric", string(spec.Metric)),
		slog.Int("series_points", len(result.TimeSeries)),
		slog.Int("ranked_institutions", len(result.Ranking)),
		slog.String("duration", elapsed.String()))

	return result, nil
}

// FilterOptions returns the distinct values per filterable column and the
// year bounds over records with a valid year.
func (s *AnalyticsService) FilterOptions(ctx context.Context) (FilterOptions, error) {
	records, err := s.records()
	if err != nil {
		return FilterOptions{}, err
	}

	states := make(map[string]bool)
	municipalities := make(map[string]bool)
	zones := make(map[string]bool)
	institutions := make(map[string]bool)
	statuses := make(map[string]bool)

	opts := FilterOptions{
		Dimensions: domain.Dimensions(),
		Metrics:    domain.Metrics(),
	}

	first := true
	for _, rec := range records {
		states[rec.State] = true
		municipalities[rec.Municipality] = true
		zones[rec.RegionalZone] = true
		institutions[rec.Institution] = true
		statuses[rec.LegalStatus] = true

		if !rec.YearValid {
			continue
		}
		if first {
			opts.YearMin, opts.YearMax = rec.Year, rec.Year
			first = false
			continue
		}
		if rec.Year < opts.YearMin {
			opts.YearMin = rec.Year
		}
		if rec.Year > opts.YearMax {
			opts.YearMax = rec.Year
		}
	}

	opts.States = sortedKeys(states)
	opts.Municipalities = sortedKeys(municipalities)
	opts.RegionalZones = sortedKeys(zones)
	opts.Institutions = sortedKeys(institutions)
	opts.LegalStatuses = sortedKeys(statuses)

	return opts, nil
}

// ExportRanking aggregates and streams the full ranked table in the given
// format. The xlsx workbook also carries the time-series sheet.
func (s *AnalyticsService) ExportRanking(ctx context.Context, spec domain.FilterSpec, format ExportFormat, w io.Writer) error {
	result, err := s.Aggregate(ctx, spec)
	if err != nil {
		return err
	}

	switch format {
	case FormatCSV:
		err = s.csv.WriteRanking(w, result.Ranking)
	case FormatXLSX:
		err = s.excel.WriteWorkbook(w, result.Ranking, result.TimeSeries)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return fmt.Errorf("failed to export ranking: %w", err)
	}

	s.logger.InfoContext(ctx, "ranking exported",
		slog.String("format", string(format)),
		slog.Int("row_count", len(result.Ranking)))
	return nil
}

func (s *AnalyticsService) records() ([]domain.EnrollmentRecord, error) {
	records, err := s.data.Records()
	if errors.Is(err, datasource.ErrNotLoaded) {
		return nil, ErrDatasetNotLoaded
	}
	if err != nil {
		return nil, err
	}
	return records, nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		if k == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
