package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Pinger is anything that can report its own reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// RedisPinger adapts a go-redis client.
func RedisPinger(client *redis.Client) Pinger {
	return PingFunc(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

type ComponentHealth struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Latency int64  `json:"latency_ms"`
	Error   string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status       Status            `json:"status"`
	Components   []ComponentHealth `json:"components,omitempty"`
	LatencyP95Ms int64             `json:"latency_p95_ms,omitempty"`
	Timestamp    time.Time         `json:"timestamp"`
}

type Checker struct {
	components map[string]Pinger
	timeout    time.Duration
	latency    func() int64
}

func NewChecker() *Checker {
	return &Checker{components: make(map[string]Pinger), timeout: 5 * time.Second}
}

// With registers a named component. A nil pinger is ignored so optional
// dependencies can be passed through unconditionally.
func (c *Checker) With(name string, p Pinger) *Checker {
	if p != nil {
		c.components[name] = p
	}
	return c
}

// WithLatency reports the value of fn as the API's p95 request latency.
func (c *Checker) WithLatency(fn func() int64) *Checker {
	c.latency = fn
	return c
}

func (c *Checker) CheckAll(ctx context.Context) HealthResponse {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		components = make([]ComponentHealth, 0, len(c.components))
	)

	for name, p := range c.components {
		wg.Add(1)
		go func(name string, p Pinger) {
			defer wg.Done()
			comp := check(ctx, name, p)
			mu.Lock()
			components = append(components, comp)
			mu.Unlock()
		}(name, p)
	}
	wg.Wait()

	sort.Slice(components, func(i, j int) bool { return components[i].Name < components[j].Name })

	status := StatusHealthy
	for _, comp := range components {
		if comp.Status == StatusUnhealthy {
			status = StatusUnhealthy
			break
		}
	}

	resp := HealthResponse{
		Status:     status,
		Components: components,
		Timestamp:  time.Now(),
	}
	if c.latency != nil {
		resp.LatencyP95Ms = c.latency()
	}
	return resp
}

func check(ctx context.Context, name string, p Pinger) ComponentHealth {
	start := time.Now()
	err := p.Ping(ctx)
	comp := ComponentHealth{
		Name:    name,
		Status:  StatusHealthy,
		Latency: time.Since(start).Milliseconds(),
	}
	if err != nil {
		comp.Status = StatusUnhealthy
		comp.Error = err.Error()
	}
	return comp
}

func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}
}

func ReadinessHandler(checker *Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := checker.CheckAll(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if resp.Status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func HealthHandler(checker *Checker) http.HandlerFunc {
	return ReadinessHandler(checker)
}
