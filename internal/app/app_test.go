package app

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ghgreport/internal/config"
	"ghgreport/internal/services"
)

func newTestApplication(t *testing.T) *Application {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{Port: 8000},
		Security: config.SecurityConfig{
			EnableCORS:     true,
			AllowedOrigins: []string{"*"},
		},
		Assets: config.AssetsConfig{TempDir: t.TempDir()},
	}

	app := &Application{
		Config:        cfg,
		Logger:        slog.Default(),
		ReportService: services.NewReportService(cfg.Assets, slog.Default()),
		Registry:      prometheus.NewRegistry(),
	}
	app.Router = app.setupRouter()
	app.Server = app.createServer()
	return app
}

func TestApplication_HealthRoutes(t *testing.T) {
	app := newTestApplication(t)

	tests := []struct {
		path     string
		contains string
	}{
		{"/", "running"},
		{"/health", "healthy"},
		{"/api/version", Version},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}

func TestApplication_MetricsEndpoint(t *testing.T) {
	app := newTestApplication(t)

	// Drive one request through the chain so the counters have a sample
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ghgreport_http_requests_total")
}

func TestApplication_CORSPreflight(t *testing.T) {
	app := newTestApplication(t)

	req := httptest.NewRequest(http.MethodOptions, "/generate-report", nil)
	req.Header.Set("Origin", "https://frontend.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()

	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestApplication_GenerateReportRoute(t *testing.T) {
	app := newTestApplication(t)

	req := httptest.NewRequest(http.MethodPost, "/generate-report", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
}

func TestApplication_UnknownRoute(t *testing.T) {
	app := newTestApplication(t)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")
	assert.True(t, json.Valid(rec.Body.Bytes()))
}

func TestApplication_GenerateReport_EndToEnd(t *testing.T) {
	app := newTestApplication(t)

	payload := map[string]string{
		"company_name":         "주식회사 테스트",
		"selected_report_year": "2024",
		"base_year":            "2021",
		"report_sales":         "50000",
		"report_employees":     "250",
		"word_table1_csv": "구분,세부구분,보고대상연도 배출량(tCO2eq),기준연도 배출량(tCO2eq),전년도 배출량(tCO2eq)\n" +
			"Scope 1,고정연소,400,350,380\n" +
			"Scope 1,합계,400,350,380\n" +
			"Scope 2,전력,300,250,280\n" +
			"Scope 2,합계,300,250,280\n" +
			"총합,,700,600,660",
		"word_table3_csv": "사업장,소재지\n서울사업장,서울",
		"word_chart1_csv": "Scope,기준연도,전년도,보고대상연도\nScope 1,350,380,400\nScope 2,250,280,300",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/generate-report", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.Router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "2024_emission_report.docx")

	// A DOCX response is a ZIP archive
	data := rec.Body.Bytes()
	require.GreaterOrEqual(t, len(data), 4)
	assert.Equal(t, []byte{'P', 'K', 0x03, 0x04}, data[:4])

	// The per-request work directory is gone after the response
	entries, err := os.ReadDir(app.Config.Assets.TempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestApplication_RequestTimeoutWired(t *testing.T) {
	app := newTestApplication(t)
	app.Config.Server.RequestTimeout = time.Second
	app.Registry = prometheus.NewRegistry()
	app.Router = app.setupRouter()

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestApplication_ServerConfig(t *testing.T) {
	app := newTestApplication(t)

	assert.Equal(t, ":8000", app.Server.Addr)
	assert.Equal(t, app.Router, app.Server.Handler)
}
