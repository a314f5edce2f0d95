package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func TestSessionIssuesAndReusesCookie(t *testing.T) {
	var seen []string
	h := Session(time.Hour, true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, SessionIDFromContext(r.Context()))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %d, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != SessionCookieName || !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteLaxMode {
		t.Fatalf("cookie = %+v", c)
	}
	if seen[0] == "" || seen[0] != c.Value {
		t.Fatalf("context id = %q, cookie = %q", seen[0], c.Value)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: c.Value})
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen[1] != c.Value {
		t.Fatalf("second request id = %q, want %q", seen[1], c.Value)
	}

	forged := httptest.NewRequest(http.MethodGet, "/", nil)
	forged.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "../../etc"})
	h.ServeHTTP(httptest.NewRecorder(), forged)
	if seen[2] == "../../etc" || seen[2] == "" {
		t.Fatalf("forged cookie accepted: %q", seen[2])
	}
}

func TestRequestIDPropagates(t *testing.T) {
	var got string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = RequestIDFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got != "abc-123" || rr.Header().Get("X-Request-ID") != "abc-123" {
		t.Fatalf("request id = %q, header = %q", got, rr.Header().Get("X-Request-ID"))
	}

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if got == "" || got == "abc-123" {
		t.Fatalf("minted request id = %q", got)
	}

	unsafe := httptest.NewRequest(http.MethodGet, "/", nil)
	unsafe.Header.Set("X-Request-ID", "bad id!")
	h.ServeHTTP(httptest.NewRecorder(), unsafe)
	if got == "bad id!" {
		t.Fatal("request id with unsafe characters was kept")
	}
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://app.example.com"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	pre := httptest.NewRequest(http.MethodOptions, "/generate", nil)
	pre.Header.Set("Origin", "https://app.example.com")
	pre.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, pre)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "https://app.example.com" {
		t.Fatalf("allow origin = %q", rr.Header().Get("Access-Control-Allow-Origin"))
	}
	if rr.Header().Get("Access-Control-Max-Age") != corsMaxAge {
		t.Fatalf("max age = %q, want %q", rr.Header().Get("Access-Control-Max-Age"), corsMaxAge)
	}

	foreign := httptest.NewRequest(http.MethodPost, "/generate", nil)
	foreign.Header.Set("Origin", "https://evil.example.com")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, foreign)
	if rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("foreign origin must not be allowed")
	}
	if rr.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want handler status", rr.Code)
	}
}

type recordingObserver struct {
	mu      sync.Mutex
	started int
	routes  []string
	status  []int
}

func (o *recordingObserver) RequestStarted() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started++
}

func (o *recordingObserver) ObserveHTTP(_ string, route string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.routes = append(o.routes, route)
	o.status = append(o.status, status)
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	obs := &recordingObserver{}
	r := chi.NewRouter()
	r.Use(Metrics(obs))
	r.Get("/api/templates/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/templates/abc", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	if obs.started != 2 {
		t.Fatalf("started = %d, want 2", obs.started)
	}
	if obs.routes[0] != "/api/templates/{id}" || obs.status[0] != http.StatusNotFound {
		t.Fatalf("first observation = %q %d", obs.routes[0], obs.status[0])
	}
	if obs.routes[1] != "unmatched" {
		t.Fatalf("second route = %q, want unmatched", obs.routes[1])
	}
}
