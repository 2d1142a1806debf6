package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/wiedertv/BizAway-code-challenge/internal/adapters/http"
	"github.com/wiedertv/BizAway-code-challenge/internal/adapters/memory"
	natsadapter "github.com/wiedertv/BizAway-code-challenge/internal/adapters/nats"
	"github.com/wiedertv/BizAway-code-challenge/internal/core/domain"
	"github.com/wiedertv/BizAway-code-challenge/internal/core/usecases"
)

// ---- Mocks ----

type mockGateway struct {
	calls   atomic.Int32
	fetchFn func(ctx context.Context, route domain.RouteKey) ([]domain.Trip, error)
}

func (m *mockGateway) FetchTrips(ctx context.Context, route domain.RouteKey) ([]domain.Trip, error) {
	m.calls.Add(1)
	if m.fetchFn != nil {
		return m.fetchFn(ctx, route)
	}
	return nil, nil
}

type mockProbe struct {
	checkFn func(ctx context.Context, name string) domain.ProbeResult
}

func (m *mockProbe) Check(ctx context.Context, name string) domain.ProbeResult {
	if m.checkFn != nil {
		return m.checkFn(ctx, name)
	}
	return domain.ProbeResult{Name: name, Status: domain.ProbeUp}
}

// ---- Helpers ----

var sampleTrips = []domain.Trip{
	{ID: "1", Origin: "SYD", Destination: "GRU", Cost: 1000, Duration: 10, Type: "flight", DisplayName: "from SYD to GRU by flight"},
	{ID: "2", Origin: "SYD", Destination: "GRU", Cost: 500, Duration: 20, Type: "train", DisplayName: "from SYD to GRU by train"},
}

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true, ErrorHandler: handler.ErrorHandler})
	handler.SetupRoutes(app, deps, handler.RouterConfig{CORSOrigins: "*", RateLimitMax: 1000, RateLimitWindow: 60})
	return app
}

func makeDeps(gw *mockGateway, opts ...func(*handler.Dependencies)) *handler.Dependencies {
	if gw == nil {
		gw = &mockGateway{}
	}
	d := &handler.Dependencies{
		Search:     usecases.NewSearchService(gw, memory.NewResultCache()),
		SavedTrips: usecases.NewSavedTripService(memory.NewSavedTripRepository(), nil),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

type envelope[T any] struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
	Meta    struct {
		RequestID  string              `json:"request_id"`
		Timestamp  string              `json:"timestamp"`
		Pagination *handler.Pagination `json:"pagination"`
	} `json:"meta"`
}

func decode[T any](t *testing.T, body io.Reader) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

// ---- Search ----

func TestSearchTrips_Success(t *testing.T) {
	gw := &mockGateway{fetchFn: func(ctx context.Context, route domain.RouteKey) ([]domain.Trip, error) {
		return sampleTrips, nil
	}}
	app := setupApp(makeDeps(gw))

	req := httptest.NewRequest("GET", "/v1/trips/search?origin=syd&destination=GRU&sort_by=cheapest", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "public, max-age=60" {
		t.Errorf("unexpected Cache-Control %q", cc)
	}
	if resp.Header.Get("ETag") == "" {
		t.Error("expected ETag header")
	}

	env := decode[envelope[[]domain.Trip]](t, resp.Body)
	if env.Status != 200 || env.Message == "" || env.Meta.RequestID == "" || env.Meta.Timestamp == "" {
		t.Errorf("unexpected envelope %+v", env)
	}
	if len(env.Data) != 2 || env.Data[0].ID != "2" || env.Data[1].ID != "1" {
		t.Errorf("expected cheapest first, got %+v", env.Data)
	}
	if env.Data[0].DisplayName != "from SYD to GRU by train" {
		t.Errorf("display_name not rendered: %+v", env.Data[0])
	}
}

func TestSearchTrips_ETagNotModified(t *testing.T) {
	gw := &mockGateway{fetchFn: func(ctx context.Context, route domain.RouteKey) ([]domain.Trip, error) {
		return sampleTrips, nil
	}}
	app := setupApp(makeDeps(gw))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/trips/search?origin=SYD&destination=GRU&sort_by=fastest", nil), -1)
	etag := resp.Header.Get("ETag")

	req := httptest.NewRequest("GET", "/v1/trips/search?origin=SYD&destination=GRU&sort_by=fastest", nil)
	req.Header.Set("If-None-Match", etag)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 304 {
		t.Errorf("expected 304, got %d", resp.StatusCode)
	}
	if gw.calls.Load() != 1 {
		t.Errorf("expected second request served from cache, got %d calls", gw.calls.Load())
	}
}

func TestSearchTrips_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"unsupported origin", "origin=XXX&destination=GRU&sort_by=cheapest"},
		{"missing destination", "origin=SYD&sort_by=cheapest"},
		{"missing sort_by", "origin=SYD&destination=GRU"},
		{"unknown sort_by", "origin=SYD&destination=GRU&sort_by=scenic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &mockGateway{}
			app := setupApp(makeDeps(gw))

			resp, err := app.Test(httptest.NewRequest("GET", "/v1/trips/search?"+tt.query, nil), -1)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != 400 {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
			apiErr := decode[handler.APIError](t, resp.Body)
			if apiErr.Code != "bad_request" || apiErr.RequestID == "" {
				t.Errorf("unexpected error body %+v", apiErr)
			}
			if gw.calls.Load() != 0 {
				t.Error("gateway must not be called for invalid input")
			}
		})
	}
}

func TestSearchTrips_UpstreamFailureIsGeneric(t *testing.T) {
	gw := &mockGateway{fetchFn: func(ctx context.Context, route domain.RouteKey) ([]domain.Trip, error) {
		return nil, &domain.UpstreamError{Status: 503, Body: "internal secret detail"}
	}}
	app := setupApp(makeDeps(gw))

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/trips/search?origin=SYD&destination=GRU&sort_by=cheapest", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 502 {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
	body := string(readBody(t, resp.Body))
	if strings.Contains(body, "secret") || strings.Contains(body, "503") {
		t.Errorf("upstream detail leaked: %s", body)
	}
	if !strings.Contains(body, "upstream_unavailable") {
		t.Errorf("expected upstream_unavailable code, got %s", body)
	}
	if cc := resp.Header.Get("Cache-Control"); strings.Contains(cc, "max-age=60") {
		t.Errorf("failures must not be cacheable, got %q", cc)
	}
}

func TestSearchTrips_LegacyAliasDeprecated(t *testing.T) {
	gw := &mockGateway{fetchFn: func(ctx context.Context, route domain.RouteKey) ([]domain.Trip, error) {
		return sampleTrips, nil
	}}
	app := setupApp(makeDeps(gw))

	resp, err := app.Test(httptest.NewRequest("GET", "/trips/search?origin=SYD&destination=GRU&sort_by=fastest", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Deprecation") != "true" || resp.Header.Get("Sunset") == "" {
		t.Error("expected deprecation headers")
	}
	if link := resp.Header.Get("Link"); !strings.Contains(link, `</v1/trips/search>; rel="successor-version"`) {
		t.Errorf("unexpected Link %q", link)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	app := setupApp(makeDeps(nil))

	req := httptest.NewRequest("GET", "/v1/trips/search?origin=XXX&destination=GRU&sort_by=cheapest", nil)
	req.Header.Set("X-Request-ID", "trace-123")
	resp, _ := app.Test(req, -1)

	if resp.Header.Get("X-Request-ID") != "trace-123" {
		t.Errorf("expected request id echoed, got %q", resp.Header.Get("X-Request-ID"))
	}
	if apiErr := decode[handler.APIError](t, resp.Body); apiErr.RequestID != "trace-123" {
		t.Errorf("expected request id in error body, got %q", apiErr.RequestID)
	}
}

// ---- Saved trips ----

const snapshotJSON = `{"trip_id":"t-1","origin":"SYD","destination":"GRU","cost":625,"duration":5,"type":"flight","display_name":"from SYD to GRU by flight"}`

func saveTrip(t *testing.T, app *fiber.App, session string) (*domain.SavedTrip, string) {
	t.Helper()
	req := httptest.NewRequest("POST", "/v1/saved-trips", strings.NewReader(snapshotJSON))
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set("x-session-id", session)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}
	env := decode[envelope[domain.SavedTrip]](t, resp.Body)
	return &env.Data, resp.Header.Get("x-session-id")
}

func TestSaveTrip_GeneratesSession(t *testing.T) {
	app := setupApp(makeDeps(nil))

	saved, session := saveTrip(t, app, "")
	if session == "" {
		t.Fatal("expected generated session header")
	}
	if saved.SessionID != session || saved.ID == "" || saved.TripID != "t-1" {
		t.Errorf("unexpected saved trip %+v", saved)
	}

	_, echoed := saveTrip(t, app, "my-session")
	if echoed != "my-session" {
		t.Errorf("expected supplied session echoed, got %q", echoed)
	}
}

func TestSaveTrip_InvalidBody(t *testing.T) {
	app := setupApp(makeDeps(nil))

	for _, body := range []string{`not json`, `{"trip_id":"t","origin":"SYD","destination":"GRU","cost":-5,"duration":1,"type":"flight","display_name":"x"}`} {
		req := httptest.NewRequest("POST", "/v1/saved-trips", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-session-id", "s")
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != 400 {
			t.Errorf("expected 400 for %q, got %d", body, resp.StatusCode)
		}
	}
}

func TestListSavedTrips(t *testing.T) {
	app := setupApp(makeDeps(nil))
	for i := 0; i < 3; i++ {
		saveTrip(t, app, "s1")
	}
	saveTrip(t, app, "s2")

	req := httptest.NewRequest("GET", "/v1/saved-trips?limit=2", nil)
	req.Header.Set("x-session-id", "s1")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if link := resp.Header.Get("Link"); !strings.Contains(link, `rel="next"`) {
		t.Errorf("expected next link, got %q", link)
	}
	if cc := resp.Header.Get("Cache-Control"); !strings.Contains(cc, "no-store") {
		t.Errorf("expected session data to be uncacheable, got %q", cc)
	}

	env := decode[envelope[[]domain.SavedTrip]](t, resp.Body)
	if len(env.Data) != 2 {
		t.Errorf("expected page of 2, got %d", len(env.Data))
	}
	if env.Meta.Pagination == nil || env.Meta.Pagination.Total != 3 {
		t.Errorf("expected total 3, got %+v", env.Meta.Pagination)
	}
}

func TestListSavedTrips_MissingSession(t *testing.T) {
	app := setupApp(makeDeps(nil))
	resp, err := app.Test(httptest.NewRequest("GET", "/v1/saved-trips", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 400 {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestDeleteSavedTrip(t *testing.T) {
	app := setupApp(makeDeps(nil))
	saved, _ := saveTrip(t, app, "owner")

	del := func(session string) int {
		req := httptest.NewRequest("DELETE", "/v1/saved-trips/"+saved.ID, nil)
		req.Header.Set("x-session-id", session)
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatal(err)
		}
		return resp.StatusCode
	}

	if code := del("intruder"); code != 404 {
		t.Errorf("expected 404 for foreign session, got %d", code)
	}
	if code := del("owner"); code != 204 {
		t.Errorf("expected 204, got %d", code)
	}
	if code := del("owner"); code != 404 {
		t.Errorf("expected 404 after delete, got %d", code)
	}
}

// ---- Health ----

func TestHealth(t *testing.T) {
	app := setupApp(makeDeps(nil))
	resp, err := app.Test(httptest.NewRequest("GET", "/v1/health", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestReady_NothingConfigured(t *testing.T) {
	app := setupApp(makeDeps(nil))
	resp, err := app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("expected 200 with in-memory storage, got %d", resp.StatusCode)
	}
}

func TestReady_EventRelayDisconnected(t *testing.T) {
	deps := makeDeps(nil, func(d *handler.Dependencies) { d.Events = natsadapter.NewSubscriber(nil) })
	app := setupApp(deps)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
	var body struct {
		Checks map[string]domain.ProbeResult `json:"checks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Checks["nats"].Status != domain.ProbeDown {
		t.Errorf("expected nats down, got %+v", body.Checks["nats"])
	}
}

func TestDetailedHealth_ProbeDown(t *testing.T) {
	probe := &mockProbe{checkFn: func(ctx context.Context, name string) domain.ProbeResult {
		return domain.ProbeResult{Name: name, Status: domain.ProbeDown, Detail: map[string]any{"status_code": 401}}
	}}
	gw := &mockGateway{}
	app := setupApp(makeDeps(gw, func(d *handler.Dependencies) { d.TripsProbe = probe }))

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/health/detailed", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
	var body struct {
		Checks map[string]domain.ProbeResult `json:"checks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Checks["trips_api"].Status != domain.ProbeDown {
		t.Errorf("expected trips_api down, got %+v", body.Checks["trips_api"])
	}
	if gw.calls.Load() != 0 {
		t.Error("the probe must not go through search")
	}
}

// ---- GraphQL / WebSocket ----

func TestGraphQL_Trips(t *testing.T) {
	gw := &mockGateway{fetchFn: func(ctx context.Context, route domain.RouteKey) ([]domain.Trip, error) {
		return sampleTrips, nil
	}}
	app := setupApp(makeDeps(gw))

	q := `{"query":"{ trips(origin: \"SYD\", destination: \"GRU\", sort_by: FASTEST) { id cost display_name } }"}`
	req := httptest.NewRequest("POST", "/graphql", strings.NewReader(q))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}

	var result struct {
		Data struct {
			Trips []struct {
				ID          string  `json:"id"`
				Cost        float64 `json:"cost"`
				DisplayName string  `json:"display_name"`
			} `json:"trips"`
		} `json:"data"`
		Errors []any `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors %v", result.Errors)
	}
	if len(result.Data.Trips) != 2 || result.Data.Trips[0].ID != "1" {
		t.Errorf("expected fastest first, got %+v", result.Data.Trips)
	}
}

func TestGraphQL_SearchFailureIsGeneric(t *testing.T) {
	gw := &mockGateway{fetchFn: func(ctx context.Context, route domain.RouteKey) ([]domain.Trip, error) {
		return nil, &domain.UpstreamError{Status: 500, Body: "secret"}
	}}
	app := setupApp(makeDeps(gw))

	q := `{"query":"{ trips(origin: \"SYD\", destination: \"GRU\") { id } }"}`
	req := httptest.NewRequest("POST", "/graphql", strings.NewReader(q))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)

	body := string(readBody(t, resp.Body))
	if !strings.Contains(body, "trip search failed") || strings.Contains(body, "secret") {
		t.Errorf("unexpected body %s", body)
	}
}

func TestWebSocket_RequiresUpgrade(t *testing.T) {
	app := setupApp(makeDeps(nil))
	resp, err := app.Test(httptest.NewRequest("GET", "/ws?session=s", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUpgradeRequired {
		t.Errorf("expected 426, got %d", resp.StatusCode)
	}
}
