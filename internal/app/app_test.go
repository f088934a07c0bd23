package app

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vcpulse/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	cfg.Paths.WebDir = t.TempDir()
	return cfg
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func writeDataset(t *testing.T, cfg *config.Config) {
	t.Helper()
	content := "name,category_list,funding_total_usd,funding_rounds,status,country,primary_category,founded_year,first_funding_year\n" +
		"Acme,Software,5000000,3,operating,USA,Software,2010,2012\n" +
		"Bolt,Finance,2000000,1,acquired,GBR,Finance,2013,2014\n"
	require.NoError(t, os.WriteFile(cfg.DatasetPath(), []byte(content), 0644))
}

func TestNewWithoutDatasetIsNotFatal(t *testing.T) {
	cfg := testConfig(t)

	application, err := New(cfg, testLogger())
	require.NoError(t, err)
	assert.NotNil(t, application.Router)

	// The API reports the dataset as unavailable rather than failing.
	rec := httptest.NewRecorder()
	application.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/overview", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthzServesBeforeDataset(t *testing.T) {
	application, err := New(testConfig(t), testLogger())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	application.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, false, health["dataset_loaded"])
}

func TestAPIRoutesServeLoadedDataset(t *testing.T) {
	cfg := testConfig(t)
	writeDataset(t, cfg)

	application, err := New(cfg, testLogger())
	require.NoError(t, err)

	for _, path := range []string{
		"/api/overview",
		"/api/companies/top",
		"/api/countries/top",
		"/api/markets/top?n=5",
		"/api/categories/distribution",
		"/api/trends",
		"/api/status",
		"/api/rounds",
		"/api/correlations",
	} {
		rec := httptest.NewRecorder()
		application.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, "path %s", path)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	application, err := New(testConfig(t), testLogger())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	application.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStaticFilesServed(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Paths.WebDir, "index.html"), []byte("<html></html>"), 0644))

	application, err := New(cfg, testLogger())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	application.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<html>")
}
