package busboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/theoremus-urban-solutions/busboard/arrivals"
	"github.com/theoremus-urban-solutions/busboard/config"
	"github.com/theoremus-urban-solutions/busboard/gtfsrt"
	"github.com/theoremus-urban-solutions/busboard/internal/feedtest"
	"github.com/theoremus-urban-solutions/busboard/metrics"
	"github.com/theoremus-urban-solutions/busboard/utils"
)

var fixedNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type stubArrivals struct {
	results []arrivals.StopResult
	panics  bool
	gotIDs  []string
}

func (s *stubArrivals) ResolveAll(_ context.Context, stopIDs []string) []arrivals.StopResult {
	s.gotIDs = stopIDs
	if s.panics {
		panic("boom")
	}
	return s.results
}

type stubVehicles struct {
	positions map[string]*arrivals.VehiclePosition
	err       error
}

func (s *stubVehicles) Lookup(_ context.Context, id string) (*arrivals.VehiclePosition, error) {
	if s.err != nil {
		return nil, s.err
	}
	if pos, ok := s.positions[id]; ok {
		return pos, nil
	}
	return nil, fmt.Errorf("%w: %s", arrivals.ErrVehicleNotFound, id)
}

type stubWeather struct {
	body     json.RawMessage
	location string
	days     int
}

func (s *stubWeather) FetchForecast(_ context.Context, location string, days int) json.RawMessage {
	s.location, s.days = location, days
	return s.body
}

func testConfig() *config.AppConfig {
	cfg := config.Default()
	cfg.Server.Environment = config.EnvTest
	cfg.Server.Version = "1.2.3"
	cfg.GTFSRT.StopIDs = []string{"A", "B"}
	return &cfg
}

func newTestServer(t *testing.T, cfg *config.AppConfig, deps Deps) http.Handler {
	t.Helper()
	s := NewServer(cfg, nil, deps)
	s.now = func() time.Time { return fixedNow }
	return s.Routes()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestArrivals_ReturnsStopsAndTimestamp(t *testing.T) {
	stub := &stubArrivals{results: []arrivals.StopResult{
		{StopID: "A", Arrivals: []arrivals.StopArrival{{
			Route:                "X-1",
			ScheduledArrivalTime: utils.Timestamp(fixedNow.Add(5 * time.Minute)),
			StopID:               "A",
			MinutesUntilArrival:  5,
			VehicleID:            "V1",
		}}},
		{StopID: "B", Arrivals: []arrivals.StopArrival{}, Error: "HTTP 503 from x", ErrorKind: gtfsrt.KindFetch},
	}}
	h := newTestServer(t, testConfig(), Deps{Arrivals: stub})

	rec := get(t, h, "/api/arrivals")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, []string{"A", "B"}, stub.gotIDs)
	assert.JSONEq(t, `{
		"stops": [
			{"stopId": "A", "arrivals": [{
				"route": "X-1",
				"scheduledArrivalTime": "2024-03-01T09:05:00.000Z",
				"stopId": "A",
				"minutesUntilArrival": 5,
				"vehicleId": "V1"
			}]},
			{"stopId": "B", "arrivals": [], "error": "HTTP 503 from x", "errorKind": "fetch"}
		],
		"timestamp": "2024-03-01T09:00:00.000Z"
	}`, rec.Body.String())
}

func TestArrivals_PanicReturns500(t *testing.T) {
	h := newTestServer(t, testConfig(), Deps{Arrivals: &stubArrivals{panics: true}})

	rec := get(t, h, "/api/arrivals")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch arrivals"}`, rec.Body.String())
}

func TestArrivals_EndToEndFeedFailure(t *testing.T) {
	upstream := feedtest.NewServer(t, http.StatusServiceUnavailable, nil)
	cfg := testConfig()
	cfg.GTFSRT.StopIDs = []string{"A"}
	cfg.GTFSRT.TripUpdatesURL = upstream.URL
	cfg.GTFSRT.VehiclePositionsURL = upstream.URL
	cfg.Server.MetricsEnabled = false

	s := NewFromConfig(cfg, nil)
	rec := get(t, s.Routes(), "/api/arrivals")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Stops []arrivals.StopResult `json:"stops"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Stops, 1)
	assert.Equal(t, "A", body.Stops[0].StopID)
	assert.Empty(t, body.Stops[0].Arrivals)
	assert.NotEmpty(t, body.Stops[0].Error)
	assert.Equal(t, gtfsrt.KindFetch, body.Stops[0].ErrorKind)
}

func TestVehicle_Found(t *testing.T) {
	bearing := float32(180)
	h := newTestServer(t, testConfig(), Deps{Vehicles: &stubVehicles{positions: map[string]*arrivals.VehiclePosition{
		"V1": {Latitude: -36.5, Longitude: 174.5, Bearing: &bearing},
	}}})

	rec := get(t, h, "/api/vehicle/V1")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"latitude":-36.5,"longitude":174.5,"bearing":180}`, rec.Body.String())
}

func TestVehicle_NotFound(t *testing.T) {
	h := newTestServer(t, testConfig(), Deps{Vehicles: &stubVehicles{}})

	rec := get(t, h, "/api/vehicle/V404")

	require.Equal(t, http.StatusNotFound, rec.Code)
	var body utils.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Vehicle not found", body.Error)
	assert.Equal(t, "V404", body.SearchedID)
	assert.NotEmpty(t, body.Message)
}

func TestVehicle_FeedFailure(t *testing.T) {
	h := newTestServer(t, testConfig(), Deps{Vehicles: &stubVehicles{
		err: &gtfsrt.FetchError{URL: "http://vp", StatusCode: 500},
	}})

	rec := get(t, h, "/api/vehicle/V1")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch vehicle position"}`, rec.Body.String())
}

func TestWeather(t *testing.T) {
	tests := []struct {
		name         string
		target       string
		body         json.RawMessage
		wantStatus   int
		wantLocation string
		wantDays     int
	}{
		{"defaults", "/api/weather", json.RawMessage(`{"ok":true}`), http.StatusOK, "Auckland", 3},
		{"overrides", "/api/weather?q=Wellington&days=7", json.RawMessage(`{"ok":true}`), http.StatusOK, "Wellington", 7},
		{"upstream failure", "/api/weather", nil, http.StatusInternalServerError, "Auckland", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubWeather{body: tt.body}
			h := newTestServer(t, testConfig(), Deps{Weather: stub})

			rec := get(t, h, tt.target)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantLocation, stub.location)
			assert.Equal(t, tt.wantDays, stub.days)
			if tt.body != nil {
				assert.JSONEq(t, string(tt.body), rec.Body.String())
			} else {
				assert.JSONEq(t, `{"error":"Failed to fetch weather"}`, rec.Body.String())
			}
		})
	}
}

func TestWeather_InvalidDays(t *testing.T) {
	for _, days := range []string{"0", "15", "three"} {
		stub := &stubWeather{body: json.RawMessage(`{}`)}
		h := newTestServer(t, testConfig(), Deps{Weather: stub})

		rec := get(t, h, "/api/weather?days="+days)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "days=%s", days)
		assert.Empty(t, stub.location, "upstream must not be called for days=%s", days)
	}
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, testConfig(), Deps{})

	rec := get(t, h, "/health")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"status": "OK",
		"timestamp": "2024-03-01T09:00:00.000Z",
		"environment": "test",
		"version": "1.2.3"
	}`, rec.Body.String())
}

func TestHealth_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Server.HealthCheckEnabled = false
	h := newTestServer(t, cfg, Deps{})

	assert.Equal(t, http.StatusNotFound, get(t, h, "/health").Code)
}

func TestMetrics_RecordsRoutePattern(t *testing.T) {
	cfg := testConfig()
	cfg.Server.MetricsEnabled = true
	m := metrics.NewCollector()
	h := newTestServer(t, cfg, Deps{Vehicles: &stubVehicles{}, Metrics: m})

	get(t, h, "/api/vehicle/V1")
	get(t, h, "/api/vehicle/V2")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/api/vehicle/{vehicleId}", "404")))

	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "busboard_http_requests_total")
}

func TestMetrics_DisabledRoute(t *testing.T) {
	cfg := testConfig()
	cfg.Server.MetricsEnabled = false
	h := newTestServer(t, cfg, Deps{Metrics: metrics.NewCollector()})

	assert.Equal(t, http.StatusNotFound, get(t, h, "/metrics").Code)
}

func TestRequestID(t *testing.T) {
	h := newTestServer(t, testConfig(), Deps{})

	rec := get(t, h, "/health")
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestCORS_AllowedOrigin(t *testing.T) {
	h := newTestServer(t, testConfig(), Deps{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAnnounceEndpoints_DevelopmentOnly(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Environment = config.EnvDevelopment
	cfg.Server.Port = 4000
	core, logs := observer.New(zap.InfoLevel)

	NewServer(cfg, zap.New(core), Deps{}).announceEndpoints()

	var urls []string
	for _, e := range logs.FilterMessage("endpoint").All() {
		urls = append(urls, e.ContextMap()["url"].(string))
	}
	assert.Equal(t, []string{
		"http://localhost:4000/api/arrivals",
		"http://localhost:4000/api/vehicle/{vehicleId}",
		"http://localhost:4000/api/weather",
		"http://localhost:4000/health",
	}, urls)

	core, logs = observer.New(zap.InfoLevel)
	NewServer(testConfig(), zap.New(core), Deps{}).announceEndpoints()
	assert.Zero(t, logs.Len())
}
