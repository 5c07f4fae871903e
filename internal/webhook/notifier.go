// Package webhook delivers signed library events to HTTP endpoints. Events
// are queued in memory and posted by a background worker so callers never
// wait on a receiver.
package webhook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/Ashivkar123/Image-Resizer/internal/logger"
	"github.com/Ashivkar123/Image-Resizer/internal/metrics"
	"github.com/Ashivkar123/Image-Resizer/internal/version"
)

const (
	DefaultTimeout     = 10 * time.Second
	DefaultMaxAttempts = 4
	DefaultQueueSize   = 256
	maxResponseBody    = 1024
)

type Config struct {
	Endpoints   []string
	Secret      string
	Timeout     time.Duration
	MaxAttempts int
	QueueSize   int
	// Events limits delivery to these types; empty means all.
	Events []string
}

type delivery struct {
	endpoint string
	event    *Event
	payload  []byte
	log      *slog.Logger
}

type Notifier struct {
	cfg     Config
	client  *http.Client
	breaker *CircuitBreaker
	backoff func(attempt int) time.Duration
	events  map[string]bool

	mu     sync.RWMutex
	closed bool
	queue  chan delivery

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

type Option func(*Notifier)

func WithHTTPClient(c *http.Client) Option {
	return func(n *Notifier) {
		n.client = c
	}
}

// WithBackoff replaces the delay between attempts.
func WithBackoff(f func(attempt int) time.Duration) Option {
	return func(n *Notifier) {
		n.backoff = f
	}
}

func WithCircuitBreaker(cb *CircuitBreaker) Option {
	return func(n *Notifier) {
		n.breaker = cb
	}
}

// New starts the delivery worker. Close stops it.
func New(cfg Config, opts ...Option) *Notifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	n := &Notifier{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: NewCircuitBreaker(5, 5*time.Minute),
		backoff: calculateBackoff,
		queue:   make(chan delivery, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	if len(cfg.Events) > 0 {
		n.events = make(map[string]bool, len(cfg.Events))
		for _, e := range cfg.Events {
			n.events[e] = true
		}
	}
	for _, opt := range opts {
		opt(n)
	}

	go n.run()
	return n
}

// calculateBackoff doubles from one second with ±25% jitter, capped at a
// minute.
func calculateBackoff(attempt int) time.Duration {
	d := time.Second << uint(attempt)
	if d > time.Minute || d <= 0 {
		d = time.Minute
	}
	jitter := time.Duration((rand.Float64()*0.5 - 0.25) * float64(d))
	return d + jitter
}

// Notify queues event for every endpoint. It never blocks: when the queue
// is full or the notifier is closed the event is dropped and counted.
func (n *Notifier) Notify(ctx context.Context, event *Event) {
	if n.events != nil && !n.events[event.Type] {
		return
	}

	log := logger.FromContext(ctx).With("event_type", event.Type, "event_id", event.ID)
	payload, err := event.Marshal()
	if err != nil {
		log.Error("failed to marshal webhook event", "error", err)
		return
	}

	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		metrics.RecordWebhookDropped("closed")
		return
	}

	for _, endpoint := range n.cfg.Endpoints {
		select {
		case n.queue <- delivery{endpoint: endpoint, event: event, payload: payload, log: log.With("webhook_url", endpoint)}:
		default:
			metrics.RecordWebhookDropped("queue_full")
			log.Warn("webhook queue full, dropping event", "webhook_url", endpoint)
		}
	}
}

// Close stops accepting events and waits for queued deliveries until ctx
// ends, after which in-flight attempts are abandoned.
func (n *Notifier) Close(ctx context.Context) error {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()

	select {
	case <-n.done:
		return nil
	case <-ctx.Done():
		n.cancel()
		<-n.done
		return ctx.Err()
	}
}

func (n *Notifier) run() {
	defer close(n.done)
	defer n.cancel()

	for d := range n.queue {
		n.deliver(d)
	}
}

var errPermanent = errors.New("permanent failure")

func (n *Notifier) deliver(d delivery) {
	for attempt := 1; attempt <= n.cfg.MaxAttempts; attempt++ {
		if n.ctx.Err() != nil {
			metrics.RecordWebhookDropped("shutdown")
			return
		}
		if !n.breaker.Allow(d.endpoint) {
			metrics.RecordWebhookDropped("circuit_open")
			d.log.Warn("webhook circuit open, dropping event")
			return
		}

		start := time.Now()
		code, err := n.send(d)
		elapsed := time.Since(start).Seconds()
		if err == nil {
			n.breaker.RecordSuccess(d.endpoint)
			metrics.RecordWebhookDelivery("success", elapsed)
			d.log.Debug("webhook delivered", "response_code", code, "attempt", attempt)
			return
		}

		n.breaker.RecordFailure(d.endpoint)
		if errors.Is(err, errPermanent) || attempt == n.cfg.MaxAttempts {
			metrics.RecordWebhookDelivery("failed", elapsed)
			d.log.Warn("webhook delivery failed", "response_code", code, "attempts", attempt, "error", err)
			return
		}

		metrics.RecordWebhookDelivery("retry", elapsed)
		wait := n.backoff(attempt - 1)
		d.log.Info("webhook delivery will retry", "response_code", code, "attempt", attempt, "retry_delay", wait, "error", err)

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-n.ctx.Done():
			timer.Stop()
		}
	}
}

func (n *Notifier) send(d delivery) (int, error) {
	req, err := http.NewRequestWithContext(n.ctx, http.MethodPost, d.endpoint, bytes.NewReader(d.payload))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errPermanent, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-ID", d.event.ID)
	req.Header.Set("X-Webhook-Event", d.event.Type)
	req.Header.Set("User-Agent", version.UserAgent("webhook"))
	if n.cfg.Secret != "" {
		req.Header.Set(SignatureHeader, Sign(d.payload, n.cfg.Secret, time.Now()))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return 0, err
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	_ = resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return resp.StatusCode, nil
	case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return resp.StatusCode, fmt.Errorf("status %d: %s", resp.StatusCode, body)
	default:
		return resp.StatusCode, fmt.Errorf("%w: status %d: %s", errPermanent, resp.StatusCode, body)
	}
}
