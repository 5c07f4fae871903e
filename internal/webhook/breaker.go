package webhook

import (
	"sync"
	"time"
)

type circuitState int

const (
	stateClosed circuitState = iota
	stateOpen
	stateHalfOpen
)

func (s circuitState) String() string {
	switch s {
	case stateOpen:
		return "open"
	case stateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

type endpointHealth struct {
	failures    int
	lastFailure time.Time
	state       circuitState
}

// CircuitBreaker stops deliveries to an endpoint after threshold
// consecutive failures. After cooldown one probe is let through; its result
// closes or reopens the circuit.
type CircuitBreaker struct {
	mu        sync.Mutex
	endpoints map[string]*endpointHealth
	threshold int
	cooldown  time.Duration
	now       func() time.Time
}

func NewCircuitBreaker(threshold int, cooldown time.Duration) *CircuitBreaker {
	if threshold < 1 {
		threshold = 5
	}
	return &CircuitBreaker{
		endpoints: make(map[string]*endpointHealth),
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

func (cb *CircuitBreaker) Allow(endpoint string) bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	h, ok := cb.endpoints[endpoint]
	if !ok || h.state == stateClosed {
		return true
	}
	if h.state == stateOpen && cb.now().Sub(h.lastFailure) >= cb.cooldown {
		h.state = stateHalfOpen
		return true
	}
	return false
}

func (cb *CircuitBreaker) RecordSuccess(endpoint string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	delete(cb.endpoints, endpoint)
}

func (cb *CircuitBreaker) RecordFailure(endpoint string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	h, ok := cb.endpoints[endpoint]
	if !ok {
		h = &endpointHealth{}
		cb.endpoints[endpoint] = h
	}
	h.failures++
	h.lastFailure = cb.now()

	if h.state == stateHalfOpen || h.failures >= cb.threshold {
		h.state = stateOpen
	}
}

func (cb *CircuitBreaker) State(endpoint string) string {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if h, ok := cb.endpoints[endpoint]; ok {
		return h.state.String()
	}
	return stateClosed.String()
}
