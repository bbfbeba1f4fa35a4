package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enrollscope/internal/datasource"
	"enrollscope/internal/services"
	"enrollscope/pkg/contracts/domain"
)

type healthStub struct {
	records  []domain.EnrollmentRecord
	loadedAt time.Time
}

func (s *healthStub) Records() ([]domain.EnrollmentRecord, error) {
	if s.loadedAt.IsZero() {
		return nil, datasource.ErrNotLoaded
	}
	return s.records, nil
}

func (s *healthStub) LoadedAt() time.Time { return s.loadedAt }

func TestHandleHealthz_Loading(t *testing.T) {
	handler := NewHealthHandler(services.NewHealthService(&healthStub{}, nil))

	w := httptest.NewRecorder()
	handler.HandleHealthz(w, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHandleHealthz_Healthy(t *testing.T) {
	stub := &healthStub{
		records:  []domain.EnrollmentRecord{{Year: 2020, YearValid: true}},
		loadedAt: time.Now(),
	}
	handler := NewHealthHandler(services.NewHealthService(stub, nil))

	w := httptest.NewRecorder()
	handler.HandleHealthz(w, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var status services.HealthStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, 1, status.RecordCount)
}
