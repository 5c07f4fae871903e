package tracing

import (
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HTTPMiddleware opens a server span per request. Probe and scrape
// endpoints are not traced.
func HTTPMiddleware(serviceName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, serviceName,
			otelhttp.WithFilter(traced),
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + spanRoute(r.URL.Path)
			}),
		)
	}
}

func traced(r *http.Request) bool {
	return r.URL.Path != "/metrics" && !strings.HasPrefix(r.URL.Path, "/health")
}

// spanRoute keeps span names low-cardinality: image ids and render
// transform strings become placeholders.
func spanRoute(path string) string {
	parts := strings.Split(path, "/")
	for i := 1; i < len(parts); i++ {
		switch parts[i-1] {
		case "images":
			if parts[i] != "" {
				parts[i] = "{id}"
			}
		case "render":
			parts[i] = "{transforms}"
		}
	}
	return strings.Join(parts, "/")
}
