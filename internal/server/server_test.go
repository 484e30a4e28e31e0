package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/sendrec/showcase/internal/catalog"
	"github.com/sendrec/showcase/internal/media"
	"github.com/sendrec/showcase/internal/server"
)

// --- Mock types ---

type mockPinger struct{ err error }

func (m *mockPinger) Ping(ctx context.Context) error { return m.err }

type mockStorage struct{}

func (m *mockStorage) MediaURL(ctx context.Context, key string) (string, error) {
	return "https://storage.example.com/showcase/" + key, nil
}

const testCatalog = `
hero:
  low_res: /hero-480p.mp4
  high_res: /hero-1080p.mp4
carousels:
  testimonials:
    - url: https://cdn.example.com/a.mp4
      title: A
    - url: https://cdn.example.com/b.mp4
      title: B
`

// --- Helpers ---

func newServerWithoutDB() *server.Server {
	return server.New(server.Config{})
}

func newServerWithSPA(webFS fstest.MapFS) *server.Server {
	return server.New(server.Config{WebFS: webFS})
}

func newServerWithDB(t *testing.T) (*server.Server, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	t.Cleanup(func() { mock.Close() })

	hub := media.NewHub()
	t.Cleanup(func() { _ = hub.Close() })

	srv := server.New(server.Config{
		DB:               mock,
		Pinger:           &mockPinger{err: nil},
		Storage:          &mockStorage{},
		Hub:              hub,
		BaseURL:          "https://localhost:8080",
		S3PublicEndpoint: "https://storage.example.com",
	})
	return srv, mock
}

func newServerWithCatalog(t *testing.T, cfg server.Config) *server.Server {
	t.Helper()
	src, err := catalog.ParseFile([]byte(testCatalog))
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}
	hub := media.NewHub()
	t.Cleanup(func() { _ = hub.Close() })
	cfg.Catalog = src
	cfg.Hub = hub
	return server.New(cfg)
}

func testWebFS() fstest.MapFS {
	return fstest.MapFS{
		"index.html":     {Data: []byte("<html>app</html>")},
		"assets/app.js":  {Data: []byte("console.log('app')")},
		"assets/app.css": {Data: []byte("body{}")},
	}
}

func executeRequest(srv *server.Server, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func executeRequestWithBody(srv *server.Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

// --- Health Endpoint (no DB) ---

func TestHealthEndpointReturnsOK(t *testing.T) {
	srv := newServerWithoutDB()
	rec := executeRequest(srv, http.MethodGet, "/api/health")

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	expected := `{"status":"ok"}`
	if rec.Body.String() != expected {
		t.Errorf("expected body %q, got %q", expected, rec.Body.String())
	}
}

func TestHealthEndpointContentType(t *testing.T) {
	srv := newServerWithoutDB()
	rec := executeRequest(srv, http.MethodGet, "/api/health")

	contentType := rec.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("expected Content-Type %q, got %q", "application/json", contentType)
	}
}

// --- Health Endpoint (with DB) ---

func TestHealthEndpointWithPingSuccess(t *testing.T) {
	srv := server.New(server.Config{
		Pinger: &mockPinger{err: nil},
	})
	rec := executeRequest(srv, http.MethodGet, "/api/health")

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	expected := `{"status":"ok"}`
	if rec.Body.String() != expected {
		t.Errorf("expected body %q, got %q", expected, rec.Body.String())
	}
}

func TestHealthEndpointWithPingFailure(t *testing.T) {
	srv := server.New(server.Config{
		Pinger: &mockPinger{err: errors.New("connection refused")},
	})
	rec := executeRequest(srv, http.MethodGet, "/api/health")

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rec.Code)
	}

	expected := `{"status":"unhealthy","error":"database unreachable"}`
	if rec.Body.String() != expected {
		t.Errorf("expected body %q, got %q", expected, rec.Body.String())
	}
}

// --- Server without a catalog ---

func TestNilDBStillRegistersHealthEndpoint(t *testing.T) {
	srv := newServerWithoutDB()
	rec := executeRequest(srv, http.MethodGet, "/api/health")

	if rec.Code != http.StatusOK {
		t.Errorf("health endpoint should be accessible without DB, got status %d", rec.Code)
	}
}

func TestNilDBShowcaseRoutesNotRegistered(t *testing.T) {
	srv := newServerWithoutDB()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/carousels/home"},
		{http.MethodPost, "/api/mounts"},
		{http.MethodGet, "/api/mounts/some-id"},
		{http.MethodPost, "/api/mounts/some-id/slots/0/select"},
		{http.MethodPost, "/api/hero"},
		{http.MethodGet, "/showcase/home"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			rec := executeRequest(srv, route.method, route.path)
			if rec.Code != http.StatusNotFound && rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("expected 404 for %s %s without catalog, got %d", route.method, route.path, rec.Code)
			}
		})
	}
}

// --- Server with DB: Postgres catalog ---

func TestCarouselRouteUsesPostgresCatalog(t *testing.T) {
	srv, mock := newServerWithDB(t)

	mock.ExpectQuery(`SELECT title, video_url, object_key, thumbnail_key`).
		WithArgs("home").
		WillReturnRows(pgxmock.NewRows([]string{"title", "video_url", "object_key", "thumbnail_key"}).
			AddRow("Intro", (*string)(nil), strPtr("carousel/intro.mp4"), (*string)(nil)))

	rec := executeRequest(srv, http.MethodGet, "/api/carousels/home")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "https://storage.example.com/showcase/carousel/intro.mp4") {
		t.Errorf("expected presigned URL in body, got %s", rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet pgxmock expectations: %v", err)
	}
}

func TestMountRouteCatalogFailure(t *testing.T) {
	srv, mock := newServerWithDB(t)

	mock.ExpectQuery(`SELECT title, video_url, object_key, thumbnail_key`).
		WithArgs("home").
		WillReturnError(errors.New("connection refused"))

	rec := executeRequestWithBody(srv, http.MethodPost, "/api/mounts", `{"carousel":"home"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 on catalog failure, got %d", rec.Code)
	}
}

// --- Server with a file catalog ---

func TestMountAndSelectFlow(t *testing.T) {
	srv := newServerWithCatalog(t, server.Config{})

	rec := executeRequestWithBody(srv, http.MethodPost, "/api/mounts", `{"carousel":"testimonials"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var mount struct {
		ID    string `json:"id"`
		Slots []struct {
			Muted  bool `json:"isMuted"`
			Active bool `json:"isActive"`
		} `json:"slots"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &mount); err != nil {
		t.Fatal(err)
	}
	if len(mount.Slots) != 4 {
		t.Fatalf("expected 4 slots, got %d", len(mount.Slots))
	}

	rec = executeRequest(srv, http.MethodPost, "/api/mounts/"+mount.ID+"/slots/1/select")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &mount); err != nil {
		t.Fatal(err)
	}
	for i, s := range mount.Slots {
		wantMuted := i != 1
		if s.Muted != wantMuted || s.Active != !wantMuted {
			t.Errorf("slot %d: muted=%v active=%v", i, s.Muted, s.Active)
		}
	}

	if rec := executeRequest(srv, http.MethodDelete, "/api/mounts/"+mount.ID); rec.Code != http.StatusNoContent {
		t.Errorf("expected 204 on unmount, got %d", rec.Code)
	}
}

func TestHeroTapFlow(t *testing.T) {
	srv := newServerWithCatalog(t, server.Config{})

	rec := executeRequest(srv, http.MethodPost, "/api/hero")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var hero struct {
		ID    string `json:"id"`
		State string `json:"state"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &hero); err != nil {
		t.Fatal(err)
	}
	rec = executeRequest(srv, http.MethodPost, "/api/hero/"+hero.ID+"/tap")
	if err := json.Unmarshal(rec.Body.Bytes(), &hero); err != nil {
		t.Fatal(err)
	}
	if hero.State != "high_res_playing" {
		t.Errorf("expected high_res_playing, got %q", hero.State)
	}
}

func TestShowcasePageCarriesNonce(t *testing.T) {
	srv := newServerWithCatalog(t, server.Config{})

	rec := executeRequest(srv, http.MethodGet, "/showcase/testimonials")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	csp := rec.Header().Get("Content-Security-Policy")
	start := strings.Index(csp, "'nonce-")
	if start < 0 {
		t.Fatalf("no nonce in CSP: %s", csp)
	}
	nonce := csp[start+len("'nonce-"):]
	nonce = nonce[:strings.Index(nonce, "'")]
	if !strings.Contains(rec.Body.String(), `<script nonce="`+nonce+`">`) {
		t.Error("expected inline script to carry the CSP nonce")
	}
}

func TestMountRoutesRateLimited(t *testing.T) {
	srv := newServerWithCatalog(t, server.Config{})

	var lastCode int
	for i := 0; i < 30; i++ {
		rec := executeRequestWithBody(srv, http.MethodPost, "/api/mounts", `{"carousel":"testimonials"}`)
		lastCode = rec.Code
		if lastCode == http.StatusTooManyRequests {
			return
		}
	}

	t.Errorf("expected 429 after bursts, last status %d", lastCode)
}

func TestCORSPreflight(t *testing.T) {
	srv := newServerWithCatalog(t, server.Config{AllowedOrigins: []string{"https://tutor.example.com"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/mounts", nil)
	req.Header.Set("Origin", "https://tutor.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://tutor.example.com" {
		t.Errorf("expected allowed origin header, got %q", got)
	}
}

// --- Ambient endpoints ---

func TestMetricsEndpoint(t *testing.T) {
	srv := newServerWithCatalog(t, server.Config{})
	executeRequestWithBody(srv, http.MethodPost, "/api/mounts", `{"carousel":"testimonials"}`)

	rec := executeRequest(srv, http.MethodGet, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "showcase_active_mounts") {
		t.Error("expected showcase_active_mounts in metrics output")
	}
}

func TestLimitsEndpoint(t *testing.T) {
	srv := newServerWithoutDB()
	rec := executeRequest(srv, http.MethodGet, "/api/limits")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var limits map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &limits); err != nil {
		t.Fatal(err)
	}
	if limits["title"] != 500 {
		t.Errorf("expected title limit 500, got %d", limits["title"])
	}
}

func TestDocsRoutes(t *testing.T) {
	if rec := executeRequest(newServerWithoutDB(), http.MethodGet, "/api/docs/openapi.yaml"); rec.Code != http.StatusNotFound {
		t.Errorf("expected docs disabled by default, got %d", rec.Code)
	}
	srv := server.New(server.Config{EnableDocs: true})
	rec := executeRequest(srv, http.MethodGet, "/api/docs/openapi.yaml")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "/api/mounts/{id}/slots/{slot}/select") {
		t.Error("expected the OpenAPI document to describe the select route")
	}
}

func strPtr(s string) *string { return &s }

// --- SPA File Server ---

func TestSPAServesExistingFiles(t *testing.T) {
	srv := newServerWithSPA(testWebFS())
	rec := executeRequest(srv, http.MethodGet, "/assets/app.js")

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200 for existing file, got %d", rec.Code)
	}

	expected := "console.log('app')"
	if rec.Body.String() != expected {
		t.Errorf("expected body %q, got %q", expected, rec.Body.String())
	}
}

func TestSPAFallbackToIndexForUnknownPaths(t *testing.T) {
	srv := newServerWithSPA(testWebFS())
	rec := executeRequest(srv, http.MethodGet, "/dashboard/settings")

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200 for SPA fallback, got %d", rec.Code)
	}

	expected := "<html>app</html>"
	body := rec.Body.String()
	if body != expected {
		t.Errorf("expected index.html content %q, got %q", expected, body)
	}
}

func TestSPAServesIndexForRootPath(t *testing.T) {
	srv := newServerWithSPA(testWebFS())
	rec := executeRequest(srv, http.MethodGet, "/")

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200 for root path, got %d", rec.Code)
	}

	expected := "<html>app</html>"
	body := rec.Body.String()
	if body != expected {
		t.Errorf("expected index.html content %q, got %q", expected, body)
	}
}

func TestSPAServesCorrectContentTypeForJS(t *testing.T) {
	srv := newServerWithSPA(testWebFS())
	rec := executeRequest(srv, http.MethodGet, "/assets/app.js")

	contentType := rec.Header().Get("Content-Type")
	expected := "text/javascript; charset=utf-8"
	if contentType != expected {
		t.Errorf("expected Content-Type %q for JS file, got %q", expected, contentType)
	}
}

func TestSPAServesCorrectContentTypeForCSS(t *testing.T) {
	srv := newServerWithSPA(testWebFS())
	rec := executeRequest(srv, http.MethodGet, "/assets/app.css")

	contentType := rec.Header().Get("Content-Type")
	expected := "text/css; charset=utf-8"
	if contentType != expected {
		t.Errorf("expected Content-Type %q for CSS file, got %q", expected, contentType)
	}
}

func TestSPAFallbackForDeeplyNestedPaths(t *testing.T) {
	srv := newServerWithSPA(testWebFS())
	rec := executeRequest(srv, http.MethodGet, "/some/deeply/nested/route")

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200 for SPA fallback on nested path, got %d", rec.Code)
	}

	expected := "<html>app</html>"
	body := rec.Body.String()
	if body != expected {
		t.Errorf("expected index.html content for nested path, got %q", body)
	}
}

// --- Route Registration (no SPA FS) ---

func TestUnknownRouteReturns404WithoutSPA(t *testing.T) {
	srv := newServerWithoutDB()
	rec := executeRequest(srv, http.MethodGet, "/unknown")

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown route without SPA, got %d", rec.Code)
	}
}

func TestHealthEndpointWrongMethodReturnsMethodNotAllowed(t *testing.T) {
	srv := newServerWithoutDB()
	rec := executeRequest(srv, http.MethodPost, "/api/health")

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for POST /api/health, got %d", rec.Code)
	}
}

// --- SPA does not intercept API routes ---

func TestSPADoesNotInterceptHealthEndpoint(t *testing.T) {
	srv := newServerWithSPA(testWebFS())
	rec := executeRequest(srv, http.MethodGet, "/api/health")

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200 for health endpoint with SPA, got %d", rec.Code)
	}

	expected := `{"status":"ok"}`
	if rec.Body.String() != expected {
		t.Errorf("expected health JSON, got %q", rec.Body.String())
	}
}

func TestSPAReturnsJSON404ForUnknownAPIPaths(t *testing.T) {
	srv := newServerWithSPA(testWebFS())
	rec := executeRequest(srv, http.MethodGet, "/api/mounts/unknown")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown API path, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON error, got Content-Type %q", ct)
	}
}

func TestSPACacheHeaders(t *testing.T) {
	srv := newServerWithSPA(testWebFS())

	if got := executeRequest(srv, http.MethodGet, "/carousel/home").Header().Get("Cache-Control"); got != "no-cache" {
		t.Errorf("expected no-cache on index fallback, got %q", got)
	}
	if got := executeRequest(srv, http.MethodGet, "/assets/app.js").Header().Get("Cache-Control"); !strings.Contains(got, "immutable") {
		t.Errorf("expected immutable caching on assets, got %q", got)
	}
}
