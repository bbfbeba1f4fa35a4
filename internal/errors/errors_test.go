package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	err := New(http.StatusBadRequest, "INVALID_REQUEST", "bad input")

	assert.Equal(t, "bad input", err.Error())
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "INVALID_REQUEST", err.ErrorCode)
}

func TestErrValidation(t *testing.T) {
	err := ErrValidation("metric", "unknown metric")

	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	detail, ok := err.Details.(ValidationError)
	require.True(t, ok)
	assert.Equal(t, "metric", detail.Field)
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	problem := NewProblemDetails(
		http.StatusNotFound,
		TypeNotFound,
		"Not Found",
		"nothing here",
		"/api/analytics/aggregate",
	).WithExtension("trace_id", "abc-123")

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, TypeNotFound, decoded["type"])
	assert.Equal(t, "Not Found", decoded["title"])
	assert.Equal(t, float64(http.StatusNotFound), decoded["status"])
	assert.Equal(t, "nothing here", decoded["detail"])
	assert.Equal(t, "abc-123", decoded["trace_id"])
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "api validation error",
			err:        ErrValidation("dimension", "unknown dimension"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
		},
		{
			name:       "not found text",
			err:        errors.New("ranking not found"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
		},
		{
			name:       "dataset not loaded",
			err:        errors.New("dataset not loaded"),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeDatasetNotLoaded,
		},
		{
			name:       "generic error",
			err:        fmt.Errorf("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	handler := NewErrorHandler(nil, false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/test", nil)

			handler.HandleError(w, r, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)

			var decoded map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
			assert.Equal(t, tt.wantType, decoded["type"])
		})
	}
}

func TestErrorHandler_NotFound(t *testing.T) {
	handler := NewErrorHandler(nil, false)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/missing", nil)

	handler.NotFound(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
