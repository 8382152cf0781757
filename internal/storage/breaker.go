package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stwalsh4118/asrun/internal/logger"
)

// BreakerState is the state of a BreakerStore
type BreakerState int

const (
	// BreakerClosed passes fetches through
	BreakerClosed BreakerState = iota
	// BreakerOpen rejects fetches until the cooldown elapses
	BreakerOpen
	// BreakerHalfOpen lets a single trial fetch through
	BreakerHalfOpen
)

// String returns the string representation of BreakerState
func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// ErrStoreUnavailable is returned while the breaker is open
var ErrStoreUnavailable = errors.New("object store unavailable")

// BreakerStore wraps an ObjectStore and stops calling it after threshold
// consecutive backend failures. Missing objects, invalid keys and caller
// cancellation do not count as failures.
type BreakerStore struct {
	next      ObjectStore
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	mu            sync.Mutex
	state         BreakerState
	failures      int
	lastFailure   time.Time
	trialInFlight bool
}

// NewBreakerStore wraps next. threshold < 1 is treated as 1.
func NewBreakerStore(next ObjectStore, threshold int, cooldown time.Duration) *BreakerStore {
	if threshold < 1 {
		threshold = 1
	}
	return &BreakerStore{
		next:      next,
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// GetObject fetches through the wrapped store unless the breaker is open.
// While half-open only the first caller reaches the store; the rest get
// ErrStoreUnavailable until that fetch settles the state.
func (b *BreakerStore) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	trial, ok := b.allow()
	if !ok {
		return nil, ErrStoreUnavailable
	}

	data, err := b.next.GetObject(ctx, bucket, key)
	switch {
	case err != nil && countsAsFailure(ctx, err):
		b.recordFailure(err)
		return nil, err
	case err != nil && ctx.Err() != nil:
		// cancellation says nothing about the backend
		if trial {
			b.releaseTrial()
		}
	default:
		b.recordSuccess()
	}
	return data, err
}

// State returns the current state, moving an expired open breaker to half-open
func (b *BreakerStore) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.expireLocked()
	return b.state
}

// allow reports whether a fetch may proceed and whether it is the half-open
// trial fetch
func (b *BreakerStore) allow() (trial, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.expireLocked()

	switch b.state {
	case BreakerOpen:
		return false, false
	case BreakerHalfOpen:
		if b.trialInFlight {
			return false, false
		}
		b.trialInFlight = true
		return true, true
	default:
		return false, true
	}
}

func (b *BreakerStore) releaseTrial() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trialInFlight = false
}

func (b *BreakerStore) expireLocked() {
	if b.state == BreakerOpen && b.now().Sub(b.lastFailure) >= b.cooldown {
		b.state = BreakerHalfOpen
		b.failures = 0
	}
}

func (b *BreakerStore) recordFailure(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.trialInFlight = false
	b.failures++
	b.lastFailure = b.now()
	if b.state == BreakerHalfOpen || b.failures >= b.threshold {
		if b.state != BreakerOpen {
			logger.Log.Warn().
				Err(err).
				Int("failures", b.failures).
				Dur("cooldown", b.cooldown).
				Msg("Object store breaker opened")
		}
		b.state = BreakerOpen
	}
}

func (b *BreakerStore) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerHalfOpen {
		logger.Log.Info().Msg("Object store breaker closed")
	}
	b.state = BreakerClosed
	b.failures = 0
	b.trialInFlight = false
}

func countsAsFailure(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	return !IsObjectNotFound(err) && !errors.Is(err, ErrInvalidKey)
}
