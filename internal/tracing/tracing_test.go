package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(context.Background(), &Config{Enabled: false})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown() error = %v", err)
	}
	if Tracer() == nil {
		t.Error("Tracer() = nil after Init")
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1, sdktrace.AlwaysSample().Description()},
		{2, sdktrace.AlwaysSample().Description()},
		{0, sdktrace.NeverSample().Description()},
		{-1, sdktrace.NeverSample().Description()},
		{0.25, sdktrace.TraceIDRatioBased(0.25).Description()},
	}
	for _, tt := range tests {
		if got := sampler(tt.rate).Description(); got != tt.want {
			t.Errorf("sampler(%v) = %q, want %q", tt.rate, got, tt.want)
		}
	}
}

func TestFlowSpans_NoopProvider(t *testing.T) {
	ctx, flow := StartFlowSpan(context.Background(), "resize")
	itemCtx, item := StartItemSpan(ctx, "a.png", 0)
	if itemCtx == nil {
		t.Fatal("StartItemSpan() returned nil context")
	}
	EndSpan(item, errors.New("decode failed"))
	EndSpan(flow, nil)

	if trace.SpanFromContext(ctx).IsRecording() {
		t.Error("span is recording without a configured provider")
	}
}

func TestSpanRoute(t *testing.T) {
	tests := map[string]string{
		"/api/images":                          "/api/images",
		"/api/images/42":                       "/api/images/{id}",
		"/api/images/42/edit":                  "/api/images/{id}/edit",
		"/api/images/42/render/w_100,q_80.jpg": "/api/images/{id}/render/{transforms}",
		"/api/upload":                          "/api/upload",
	}
	for in, want := range tests {
		if got := spanRoute(in); got != want {
			t.Errorf("spanRoute(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHTTPMiddleware_Filter(t *testing.T) {
	tests := map[string]bool{
		"/health":       false,
		"/health/ready": false,
		"/metrics":      false,
		"/api/upload":   true,
	}
	for path, want := range tests {
		r := httptest.NewRequest(http.MethodGet, path, nil)
		if got := traced(r); got != want {
			t.Errorf("traced(%s) = %v, want %v", path, got, want)
		}
	}

	h := HTTPMiddleware(DefaultServiceName)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/images/1", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
}
