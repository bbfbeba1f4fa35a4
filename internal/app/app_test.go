package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enrollscope/internal/config"
	"enrollscope/internal/infrastructure"
	handlers "enrollscope/internal/transport/http"
)

const appTestCSV = `year,state,municipality,COREDE,IES,Status Jurídico,program,evaluation_area,knowledge_area,doctoral,professional_doctoral,masters,professional_masters
2019,RS,Porto Alegre,Metropolitano,UFRGS,Public,Computing,Computer Science,Exact Sciences,100,0,0,0
2020,RS,Porto Alegre,Metropolitano,UFRGS,Public,Computing,Computer Science,Exact Sciences,121,0,0,0
`

func testApplication(t *testing.T) *Application {
	t.Helper()
	infrastructure.ResetLoggerForTesting()

	path := filepath.Join(t.TempDir(), "enrollment.csv")
	require.NoError(t, os.WriteFile(path, []byte(appTestCSV), 0o644))

	cfg := config.Default()
	cfg.Dataset.Path = path
	cfg.Security.RateLimit.Enabled = false
	cfg.Logging.Level = "error"

	app, err := newApplication(cfg)
	require.NoError(t, err)
	return app
}

func TestApplication_HealthzBeforeLoad(t *testing.T) {
	app := testApplication(t)

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestApplication_AggregateEndToEnd(t *testing.T) {
	app := testApplication(t)
	require.NoError(t, app.DataSource.Load())

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := `{"year_from":2019,"year_to":2020,"dimension":"program","metric":"doctoral"}`
	w = httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/analytics/aggregate", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code)

	var resp handlers.AggregateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.InDelta(t, 0.21, resp.GrowthRate, 1e-9)
	require.Len(t, resp.TopRanking, 1)
	assert.Equal(t, "UFRGS", resp.TopRanking[0].Institution)
}

func TestApplication_FiltersAndMetricsRoutes(t *testing.T) {
	app := testApplication(t)
	require.NoError(t, app.DataSource.Load())

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/analytics/filters", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestApplication_UnknownRoute(t *testing.T) {
	app := testApplication(t)

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApplication_RunStopsOnContextCancel(t *testing.T) {
	app := testApplication(t)
	app.Server.Addr = "127.0.0.1:0"
	app.Config.Dataset.WatchReload = false

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	cancel()
	assert.NoError(t, <-done)
}
