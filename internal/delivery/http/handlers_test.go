package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	delivery "github.com/smartcity/dashboard/internal/delivery/http"
	"github.com/smartcity/dashboard/internal/domain"
	"github.com/smartcity/dashboard/internal/metrics"
	"github.com/smartcity/dashboard/internal/observability"
	"github.com/smartcity/dashboard/internal/repository/postgres"
	"github.com/smartcity/dashboard/internal/service"
	"github.com/smartcity/dashboard/internal/store"
)

type testApp struct {
	app    *fiber.App
	store  *store.Store
	ingest *service.IngestService
}

func newTestApp(t *testing.T, repo service.DataRepository) *testApp {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC))
	logger := zap.NewNop()
	m := observability.NewMetricsForTesting()

	st := store.New(domain.SampleKPIs(), domain.SampleWeather(), clock)
	derived := metrics.NewDerived(st, m, logger)
	t.Cleanup(derived.Close)

	ingestSvc := service.NewIngestService(st, repo, m, logger, service.WithClock(clock))
	dashboardSvc := service.NewDashboardService(st, derived, clock)

	app := fiber.New(fiber.Config{ErrorHandler: delivery.ErrorHandler})
	delivery.SetupRoutes(app, dashboardSvc, ingestSvc, repo, logger)
	return &testApp{app: app, store: st, ingest: ingestSvc}
}

func uploadRequest(t *testing.T, fileName, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = io.WriteString(part, content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, []byte) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func decode(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestHealthCheck(t *testing.T) {
	ta := newTestApp(t, postgres.NewMockRepository())

	code, body := do(t, ta.app, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", decode(t, body)["status"])
}

type downRepo struct{ *postgres.MockRepository }

func (downRepo) Health(ctx context.Context) error { return errors.New("connection refused") }

func TestHealthCheck_DatabaseDown(t *testing.T) {
	ta := newTestApp(t, downRepo{postgres.NewMockRepository()})

	code, body := do(t, ta.app, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", decode(t, body)["status"])
}

func TestGetDashboard(t *testing.T) {
	ta := newTestApp(t, postgres.NewMockRepository())

	code, body := do(t, ta.app, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil))
	require.Equal(t, http.StatusOK, code)

	out := decode(t, body)
	assert.Equal(t, true, out["success"])
	data := out["data"].(map[string]any)
	assert.Len(t, data["traffic"], 7)
	assert.Len(t, data["power"], 8)
	assert.Len(t, data["modal"], 4)
	assert.Equal(t, "No CSV uploaded", data["upload_label"])
	avg := data["average_congestion"].(map[string]any)
	assert.Equal(t, "6.47", avg["display"])
}

func TestGetKPIsAndWeather(t *testing.T) {
	ta := newTestApp(t, postgres.NewMockRepository())

	_, body := do(t, ta.app, httptest.NewRequest(http.MethodGet, "/api/v1/kpis", nil))
	kpis := decode(t, body)["data"].(map[string]any)
	assert.Equal(t, "12.3M", kpis["population"])
	assert.Equal(t, float64(78), kpis["avgAQI"])

	_, body = do(t, ta.app, httptest.NewRequest(http.MethodGet, "/api/v1/weather", nil))
	weather := decode(t, body)["data"].(map[string]any)
	assert.Equal(t, "Partly Cloudy", weather["today"].(map[string]any)["condition"])
}

func TestUpload_ReplacesSeries(t *testing.T) {
	ta := newTestApp(t, postgres.NewMockRepository())

	code, body := do(t, ta.app, uploadRequest(t, "power.csv", "hour,usage\n01,90\n02,n/a\n"))
	require.Equal(t, http.StatusOK, code)

	res := decode(t, body)["data"].(map[string]any)
	assert.Equal(t, "replaced", res["outcome"])
	assert.Equal(t, "power", res["series"])
	assert.Equal(t, float64(2), res["rows"])
	assert.Equal(t, float64(1), res["non_numeric"])

	// NaN renders as null
	code, body = do(t, ta.app, httptest.NewRequest(http.MethodGet, "/api/v1/series/power", nil))
	require.Equal(t, http.StatusOK, code)
	records := decode(t, body)["data"].([]any)
	require.Len(t, records, 2)
	assert.Equal(t, map[string]any{"hour": "01", "usage": float64(90)}, records[0])
	assert.Equal(t, map[string]any{"hour": "02", "usage": nil}, records[1])

	_, body = do(t, ta.app, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil))
	data := decode(t, body)["data"].(map[string]any)
	assert.Equal(t, "Loaded: power.csv", data["upload_label"])
	assert.Len(t, data["traffic"], 7)
}

func TestUpload_TrafficUpdatesCongestion(t *testing.T) {
	ta := newTestApp(t, postgres.NewMockRepository())

	code, _ := do(t, ta.app, uploadRequest(t, "t.csv", "day,congestIndex\nMon,6\nTue,x\n"))
	require.Equal(t, http.StatusOK, code)

	_, body := do(t, ta.app, httptest.NewRequest(http.MethodGet, "/api/v1/metrics/congestion", nil))
	avg := decode(t, body)["data"].(map[string]any)
	assert.Equal(t, "3.00", avg["display"])
	assert.Equal(t, float64(2), avg["records"])
}

func TestUpload_UnrecognizedIsIgnored(t *testing.T) {
	ta := newTestApp(t, postgres.NewMockRepository())

	code, body := do(t, ta.app, uploadRequest(t, "x.csv", "a,b\n1,2\n"))
	require.Equal(t, http.StatusOK, code)

	res := decode(t, body)["data"].(map[string]any)
	assert.Equal(t, "ignored", res["outcome"])
	assert.NotEmpty(t, res["warning"])
	assert.Equal(t, domain.SamplePower(), ta.store.Power())
	assert.Equal(t, "Loaded: x.csv", ta.store.Status().Display())
}

func TestUpload_NoFile(t *testing.T) {
	ta := newTestApp(t, postgres.NewMockRepository())

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("note", "nothing attached"))
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())

	code, resp := do(t, ta.app, req)
	assert.Equal(t, http.StatusBadRequest, code)
	out := decode(t, resp)
	assert.Equal(t, true, out["error"])
	assert.False(t, ta.store.Status().Uploaded)
}

func TestGetSeries_CSVRoundTrip(t *testing.T) {
	ta := newTestApp(t, postgres.NewMockRepository())

	code, body := do(t, ta.app, httptest.NewRequest(http.MethodGet, "/api/v1/series/modal?format=csv", nil))
	require.Equal(t, http.StatusOK, code)
	assert.True(t, strings.HasPrefix(string(body), "mode,share\nPrivate,62\n"))

	code, resp := do(t, ta.app, uploadRequest(t, "modal.csv", string(body)))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "replaced", decode(t, resp)["data"].(map[string]any)["outcome"])
	assert.Equal(t, domain.SampleModal(), ta.store.Modal())
}

func TestGetSeries_Errors(t *testing.T) {
	ta := newTestApp(t, postgres.NewMockRepository())

	code, _ := do(t, ta.app, httptest.NewRequest(http.MethodGet, "/api/v1/series/rainfall", nil))
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, ta.app, httptest.NewRequest(http.MethodGet, "/api/v1/series/power?format=xml", nil))
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestGetUploads(t *testing.T) {
	ta := newTestApp(t, postgres.NewMockRepository())

	for _, name := range []string{"a.csv", "b.csv", "c.csv"} {
		code, _ := do(t, ta.app, uploadRequest(t, name, "hour,usage\n01,1\n"))
		require.Equal(t, http.StatusOK, code)
	}
	ta.ingest.WaitBackground()

	_, body := do(t, ta.app, httptest.NewRequest(http.MethodGet, "/api/v1/uploads?limit=2", nil))
	out := decode(t, body)
	assert.Equal(t, float64(2), out["count"])

	_, body = do(t, ta.app, httptest.NewRequest(http.MethodGet, "/api/v1/uploads?limit=0", nil))
	assert.Equal(t, float64(1), decode(t, body)["count"])

	_, body = do(t, ta.app, httptest.NewRequest(http.MethodGet, "/api/v1/uploads", nil))
	assert.Equal(t, float64(3), decode(t, body)["count"])
}

func TestMetricsEndpoint(t *testing.T) {
	ta := newTestApp(t, postgres.NewMockRepository())

	code, body := do(t, ta.app, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "go_goroutines")
}
