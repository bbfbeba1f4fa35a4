package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "enrollscope/internal/errors"
	"enrollscope/internal/services"
	"enrollscope/pkg/contracts/domain"
)

// AnalyticsReader is the service surface the handler depends on.
type AnalyticsReader interface {
	Aggregate(ctx context.Context, spec domain.FilterSpec) (domain.AggregationResult, error)
	FilterOptions(ctx context.Context) (services.FilterOptions, error)
	ExportRanking(ctx context.Context, spec domain.FilterSpec, format services.ExportFormat, w io.Writer) error
}

// AggregateRequest is the body of POST /api/analytics/aggregate.
type AggregateRequest struct {
	YearFrom int `json:"year_from" validate:"required,min=1900,max=2200"`
	YearTo   int `json:"year_to" validate:"required,min=1900,max=2200,gtefield=YearFrom"`

	States         []string `json:"states"`
	Municipalities []string `json:"municipalities"`
	RegionalZones  []string `json:"regional_zones"`
	Institutions   []string `json:"institutions"`
	LegalStatuses  []string `json:"legal_statuses"`

	Dimension string `json:"dimension" validate:"required,oneof=program evaluation_area knowledge_area"`
	Metric    string `json:"metric" validate:"required,oneof=doctoral professional_doctoral masters professional_masters total_enrolled"`
}

// ToFilterSpec converts a validated request into the domain filter spec.
func (req AggregateRequest) ToFilterSpec() domain.FilterSpec {
	return domain.FilterSpec{
		YearFrom:       req.YearFrom,
		YearTo:         req.YearTo,
		States:         req.States,
		Municipalities: req.Municipalities,
		RegionalZones:  req.RegionalZones,
		Institutions:   req.Institutions,
		LegalStatuses:  req.LegalStatuses,
		Dimension:      domain.Dimension(req.Dimension),
		Metric:         domain.Metric(req.Metric),
	}
}

// AggregateResponse is the body of a successful aggregate call. The ranked
// table is truncated to the display view; the full table stays available
// through the export endpoint.
type AggregateResponse struct {
	TimeSeries      []domain.TimeSeriesPoint `json:"time_series"`
	GrowthRate      float64                  `json:"growth_rate"`
	TopRanking      []domain.InstitutionRank `json:"top_ranking"`
	RankingRowCount int                      `json:"ranking_row_count"`
}

// AnalyticsHandler serves the analytics endpoints.
type AnalyticsHandler struct {
	service    AnalyticsReader
	errHandler *apierrors.ErrorHandler
	validate   *validator.Validate
	logger     *slog.Logger
}

// NewAnalyticsHandler creates the handler.
func NewAnalyticsHandler(service AnalyticsReader, errHandler *apierrors.ErrorHandler, logger *slog.Logger) *AnalyticsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsHandler{
		service:    service,
		errHandler: errHandler,
		validate:   validator.New(),
		logger:     logger.With(slog.String("component", "analytics_handler")),
	}
}

// Routes registers the analytics endpoints.
func (h *AnalyticsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/aggregate", h.HandleAggregate)
	r.Get("/filters", h.HandleFilters)
	r.Get("/ranking/export", h.HandleExport)
	return r
}

// HandleAggregate runs one interaction.
func (h *AnalyticsHandler) HandleAggregate(w http.ResponseWriter, r *http.Request) {
	var req AggregateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.errHandler.HandleError(w, r, validationError(err))
		return
	}

	result, err := h.service.Aggregate(r.Context(), req.ToFilterSpec())
	if err != nil {
		h.errHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, AggregateResponse{
		TimeSeries:      result.TimeSeries,
		GrowthRate:      result.GrowthRate,
		TopRanking:      result.TopRanking,
		RankingRowCount: len(result.Ranking),
	})
}

// HandleFilters returns the selectable values for the interaction surface.
func (h *AnalyticsHandler) HandleFilters(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.FilterOptions(r.Context())
	if err != nil {
		h.errHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, opts)
}

// HandleExport streams the full ranked table. The filter spec arrives in the
// query string; list filters are comma separated.
func (h *AnalyticsHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	format, err := services.ParseExportFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.errHandler.HandleError(w, r,
			apierrors.ErrValidation("format", "must be csv or xlsx"))
		return
	}

	spec, err := specFromQuery(r)
	if err != nil {
		h.errHandler.HandleError(w, r, err)
		return
	}

	filename := fmt.Sprintf("ranking_%s.%s", time.Now().Format("20060102_150405"), format)
	switch format {
	case services.FormatCSV:
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	case services.FormatXLSX:
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))

	if err := h.service.ExportRanking(r.Context(), spec, format, w); err != nil {
		// Headers are already written; log rather than render a problem.
		h.logger.ErrorContext(r.Context(), "export failed",
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
	}
}

// specFromQuery builds a FilterSpec from export query parameters.
func specFromQuery(r *http.Request) (domain.FilterSpec, error) {
	q := r.URL.Query()

	yearFrom, err := strconv.Atoi(q.Get("year_from"))
	if err != nil {
		return domain.FilterSpec{}, apierrors.ErrValidation("year_from", "must be an integer")
	}
	yearTo, err := strconv.Atoi(q.Get("year_to"))
	if err != nil {
		return domain.FilterSpec{}, apierrors.ErrValidation("year_to", "must be an integer")
	}
	if yearTo < yearFrom {
		return domain.FilterSpec{}, apierrors.ErrValidation("year_to", "must not be before year_from")
	}

	dimension, err := domain.ParseDimension(q.Get("dimension"))
	if err != nil {
		return domain.FilterSpec{}, apierrors.ErrValidation("dimension", err.Error())
	}
	metric, err := domain.ParseMetric(q.Get("metric"))
	if err != nil {
		return domain.FilterSpec{}, apierrors.ErrValidation("metric", err.Error())
	}

	return domain.FilterSpec{
		YearFrom:       yearFrom,
		YearTo:         yearTo,
		States:         splitParam(q.Get("states")),
		Municipalities: splitParam(q.Get("municipalities")),
		RegionalZones:  splitParam(q.Get("regional_zones")),
		Institutions:   splitParam(q.Get("institutions")),
		LegalStatuses:  splitParam(q.Get("legal_statuses")),
		Dimension:      dimension,
		Metric:         metric,
	}, nil
}

// splitParam splits a comma-separated query value; empty means no filter.
func splitParam(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	return values
}

// validationError flattens validator/v10 field errors into the API error.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.InvalidRequestWithError(err)
	}

	details := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: fmt.Sprintf("failed %q validation", fe.Tag()),
		})
	}
	return apierrors.NewValidationErrors(details)
}
