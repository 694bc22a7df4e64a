package circuitbreaker

import (
	"sync"
	"time"
)

// Registry hands out one breaker per target URL. It outlives a single run,
// so in watch mode a target that kept failing in earlier passes starts the
// next pass already open.
type Registry struct {
	mutex     sync.RWMutex
	breakers  map[string]*CircuitBreaker
	threshold int
	timeout   time.Duration
}

func NewRegistry(threshold int, timeout time.Duration) *Registry {
	return &Registry{
		breakers:  make(map[string]*CircuitBreaker),
		threshold: threshold,
		timeout:   timeout,
	}
}

func (r *Registry) Breaker(target string) *CircuitBreaker {
	r.mutex.RLock()
	cb, exists := r.breakers[target]
	r.mutex.RUnlock()

	if exists {
		return cb
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	// Double-check: another worker may have created it
	if cb, exists = r.breakers[target]; exists {
		return cb
	}

	cb = NewCircuitBreaker(r.threshold, r.timeout)
	r.breakers[target] = cb
	return cb
}

func (r *Registry) Stats() map[string]State {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	stats := make(map[string]State, len(r.breakers))
	for target, cb := range r.breakers {
		stats[target] = cb.State()
	}
	return stats
}
