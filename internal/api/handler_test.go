package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/runtimecfg/internal/definition"
	"github.com/eugenenazirov/runtimecfg/internal/runtimeconfig"
)

var testEnv = runtimeconfig.MapEnviron{
	"SUPABASE_URL":          "https://x.test",
	"SUPABASE_KEY":          "abc",
	"SPOTIFY_CLIENT_ID":     "id1",
	"SPOTIFY_CLIENT_SECRET": "secret1",
}

func newTestHandler(t *testing.T, def definition.Definition, opts ...HandlerOption) *Handler {
	t.Helper()

	rc, err := runtimeconfig.Resolve(def, testEnv)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	return NewHandler(def, rc, opts...)
}

func setupTestRouter(t *testing.T, def definition.Definition) (http.Handler, time.Time) {
	t.Helper()

	now := time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)
	handler := newTestHandler(t, def, WithClock(func() time.Time { return now }))
	logger := zaptest.NewLogger(t)
	router := NewRouter(handler, logger, WithLogging(false))

	return router, now
}

func get(router http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRequestIDHelpers(t *testing.T) {
	ctx := contextWithRequestID(context.Background(), "abc")
	if got := requestIDFromContext(ctx); got != "abc" {
		t.Fatalf("expected abc, got %s", got)
	}
	resp := httptest.NewRecorder()
	writeInternalError(resp, assertError("boom"))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 status, got %d", resp.Code)
	}
}

type assertError string

func (a assertError) Error() string { return string(a) }

func TestHealthEndpoint(t *testing.T) {
	router, now := setupTestRouter(t, definition.Standard())

	rec := get(router, "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		Status    string    `json:"status"`
		Timestamp time.Time `json:"timestamp"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if body.Status != "ok" {
		t.Fatalf("expected status ok, got %s", body.Status)
	}
	if !body.Timestamp.Equal(now) {
		t.Fatalf("expected timestamp %s, got %s", now, body.Timestamp)
	}
}

func TestRuntimeConfigExposesPublicSectionOnly(t *testing.T) {
	router, _ := setupTestRouter(t, definition.Standard())

	rec := get(router, "/api/runtime-config")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret1") || strings.Contains(rec.Body.String(), "spotifyClientSecret") {
		t.Fatalf("private value leaked into response: %s", rec.Body.String())
	}

	var body struct {
		Public map[string]string `json:"public"`
		App    struct {
			CompatibilityDate string   `json:"compatibilityDate"`
			Modules           []string `json:"modules"`
			Auth              *struct {
				RedirectOptions definition.RedirectOptions `json:"redirectOptions"`
			} `json:"auth"`
		} `json:"app"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	want := map[string]string{
		"supabaseUrl":     "https://x.test",
		"supabaseKey":     "abc",
		"spotifyClientId": "id1",
	}
	if len(body.Public) != len(want) {
		t.Fatalf("expected %d public keys, got %v", len(want), body.Public)
	}
	for k, v := range want {
		if body.Public[k] != v {
			t.Fatalf("expected %s=%s, got %s", k, v, body.Public[k])
		}
	}
	if body.App.CompatibilityDate != "2024-11-01" {
		t.Fatalf("unexpected compatibility date %q", body.App.CompatibilityDate)
	}
	if body.App.Auth == nil || body.App.Auth.RedirectOptions.Callback != "/confirm" {
		t.Fatalf("expected redirect options in response, got %+v", body.App.Auth)
	}
	if body.App.Auth.RedirectOptions.Exclude == nil {
		t.Fatalf("expected exclude list to encode as an empty array")
	}
}

func TestRuntimeConfigWithoutAuth(t *testing.T) {
	router, _ := setupTestRouter(t, definition.WithoutAuth())

	rec := get(router, "/api/runtime-config")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body["public"]) != 0 {
		t.Fatalf("expected empty public section, got %v", body["public"])
	}
	if _, ok := body["app"]["auth"]; ok {
		t.Fatalf("expected auth block to be omitted")
	}
}

func TestRuntimeConfigUnresolved(t *testing.T) {
	handler := NewHandler(definition.Standard(), nil)
	router := NewRouter(handler, zaptest.NewLogger(t), WithLogging(false))

	if rec := get(router, "/api/runtime-config"); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
}

func TestRedirectEndpoint(t *testing.T) {
	def := definition.Standard()
	def.Auth.RedirectOptions.Exclude = []string{"/about"}
	router, _ := setupTestRouter(t, def)

	tests := []struct {
		path    string
		guarded bool
	}{
		{"/", false},
		{"/confirm", false},
		{"/about", false},
		{"/playlists", true},
	}
	for _, tt := range tests {
		rec := get(router, "/api/redirect?path="+tt.path)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200 for %s, got %d", tt.path, rec.Code)
		}

		var body redirectResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if body.Guarded != tt.guarded {
			t.Fatalf("expected guarded=%v for %s, got %v", tt.guarded, tt.path, body.Guarded)
		}
		if tt.guarded && body.Login != "/" {
			t.Fatalf("expected login route for guarded path, got %q", body.Login)
		}
	}
}

func TestRedirectEndpointRequiresPath(t *testing.T) {
	router, _ := setupTestRouter(t, definition.Standard())

	rec := get(router, "/api/redirect")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Suggestion == "" {
		t.Fatalf("expected suggestion in error response")
	}
}

func TestRedirectEndpointAuthDisabled(t *testing.T) {
	router, _ := setupTestRouter(t, definition.WithoutAuth())

	rec := get(router, "/api/redirect?path=/playlists")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 when auth is disabled, got %d", rec.Code)
	}

	var body redirectResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Guarded || body.Reason == "" {
		t.Fatalf("expected unguarded path with reason, got %+v", body)
	}
}

func TestCorsPreflight(t *testing.T) {
	router, _ := setupTestRouter(t, definition.Standard())

	req := httptest.NewRequest(http.MethodOptions, "/api/runtime-config", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatalf("expected Access-Control-Allow-Origin header to be set")
	}
}

func TestRequestIDPropagation(t *testing.T) {
	router, _ := setupTestRouter(t, definition.Standard())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "test-request-id")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "test-request-id" {
		t.Fatalf("expected X-Request-ID header to be echoed, got %s", got)
	}

	rec = get(router, "/api/health")
	if got := rec.Header().Get("X-Request-ID"); len(got) != 36 {
		t.Fatalf("expected generated UUID request ID, got %q", got)
	}
}
