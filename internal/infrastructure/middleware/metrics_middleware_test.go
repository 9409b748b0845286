package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type recordedRequest struct {
	method  string
	route   string
	status  string
	seconds float64
}

type fakeHTTPRecorder struct {
	requests []recordedRequest
}

func (f *fakeHTTPRecorder) RecordHTTPRequest(method, route, status string, seconds float64) {
	f.requests = append(f.requests, recordedRequest{method, route, status, seconds})
}

func TestMetricsMiddleware_RecordsTemplateRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := &fakeHTTPRecorder{}

	router := gin.New()
	router.Use(MetricsMiddleware(recorder))
	router.GET("/channels/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/channels/42", nil))

	if len(recorder.requests) != 1 {
		t.Fatalf("recorded %d requests, want 1", len(recorder.requests))
	}
	got := recorder.requests[0]
	if got.method != "GET" {
		t.Errorf("method = %q, want GET", got.method)
	}
	if got.route != "/channels/:id" {
		t.Errorf("route = %q, want the template path, not the raw URL", got.route)
	}
	if got.status != "200" {
		t.Errorf("status = %q, want 200", got.status)
	}
	if got.seconds < 0 {
		t.Errorf("seconds = %v, want >= 0", got.seconds)
	}
}

func TestMetricsMiddleware_UnmatchedRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := &fakeHTTPRecorder{}

	router := gin.New()
	router.Use(MetricsMiddleware(recorder))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if len(recorder.requests) != 1 {
		t.Fatalf("recorded %d requests, want 1", len(recorder.requests))
	}
	got := recorder.requests[0]
	if got.route != "unmatched" {
		t.Errorf("route = %q, want unmatched", got.route)
	}
	if got.status != "404" {
		t.Errorf("status = %q, want 404", got.status)
	}
}
