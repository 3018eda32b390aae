package sensor

import (
	"sync"
	"time"

	"dhtsense/internal/dht"
)

// Status tracks sampler outcomes across polls. Safe for concurrent use.
type Status struct {
	mu          sync.RWMutex
	last        dht.Reading
	lastSuccess time.Time
	lastAttempt time.Time
	lastErr     error
	failures    int
	reads       uint64
	errors      uint64
}

// Snapshot is a point-in-time copy of Status.
type Snapshot struct {
	Last                dht.Reading
	LastSuccess         time.Time
	LastAttempt         time.Time
	LastError           error
	ConsecutiveFailures int
	Reads               uint64
	Errors              uint64
}

func NewStatus() *Status { return &Status{} }

func (s *Status) RecordSuccess(r dht.Reading, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = r
	s.lastSuccess = at
	s.lastAttempt = at
	s.lastErr = nil
	s.failures = 0
	s.reads++
}

func (s *Status) RecordFailure(err error, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAttempt = at
	s.lastErr = err
	s.failures++
	s.errors++
}

func (s *Status) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Last:                s.last,
		LastSuccess:         s.lastSuccess,
		LastAttempt:         s.lastAttempt,
		LastError:           s.lastErr,
		ConsecutiveFailures: s.failures,
		Reads:               s.reads,
		Errors:              s.errors,
	}
}

// Healthy reports whether a read succeeded within staleAfter of now.
func (sn Snapshot) Healthy(now time.Time, staleAfter time.Duration) bool {
	return !sn.LastSuccess.IsZero() && now.Sub(sn.LastSuccess) <= staleAfter
}
