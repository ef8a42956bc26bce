package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/api/v1/drafts/{draftID}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		req := httptest.NewRequest("GET", "/api/v1/drafts/"+id, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	got := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/drafts/{draftID}", "404"))
	if got != 3 {
		t.Errorf("expected 3 requests under the route pattern, got %v", got)
	}
}

func TestStatusWriter_Hijack(t *testing.T) {
	sw := &statusWriter{ResponseWriter: httptest.NewRecorder(), status: 200}
	if _, _, err := sw.Hijack(); err == nil {
		t.Error("recorder cannot hijack; expected an error")
	}
}
