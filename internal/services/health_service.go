package services

import (
	"context"
	"log/slog"
	"time"
)

// HealthStatus is the health endpoint payload.
type HealthStatus struct {
	Status      string    `json:"status"`
	RecordCount int       `json:"record_count"`
	LoadedAt    time.Time `json:"loaded_at,omitempty"`
}

// HealthService reports dataset readiness.
type HealthService struct {
	data   DataProvider
	logger *slog.Logger
}

// NewHealthService creates the health service.
func NewHealthService(data DataProvider, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		data:   data,
		logger: logger.With(slog.String("component", "health_service")),
	}
}

// Check returns "healthy" once the dataset has loaded, "loading" before.
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	records, err := s.data.Records()
	if err != nil {
		return HealthStatus{Status: "loading"}
	}
	return HealthStatus{
		Status:      "healthy",
		RecordCount: len(records),
		LoadedAt:    s.data.LoadedAt(),
	}
}
