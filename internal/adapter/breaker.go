package adapter

import (
	"sync"
	"time"
)

// breaker is a minimal circuit breaker guarding one store host. After
// failureThreshold consecutive transport failures the circuit opens for
// cooldown; the first call after the cooldown probes the host again.
type breaker struct {
	mu        sync.Mutex
	failures  int
	openUntil time.Time

	failureThreshold int
	cooldown         time.Duration
	now              func() time.Time
}

func newBreaker(failureThreshold int, cooldown time.Duration) *breaker {
	return &breaker{
		failureThreshold: failureThreshold,
		cooldown:         cooldown,
		now:              time.Now,
	}
}

// allow reports whether a request may be issued.
func (b *breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.now().After(b.openUntil)
}

// success resets the failure count and closes the circuit.
func (b *breaker) success() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.openUntil = time.Time{}
}

// failure records a transport failure and opens the circuit once the
// threshold is reached.
func (b *breaker) failure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	if b.failures >= b.failureThreshold {
		b.openUntil = b.now().Add(b.cooldown)
		b.failures = 0
	}
}
