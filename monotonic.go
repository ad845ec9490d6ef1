// Package nano64 - monotonic.go implements the strictly increasing generator.
//
// # Algorithm
//
// The generator remembers the last (timestamp, random) pair it handed out.
// A request for a later millisecond samples a fresh random value; a request
// for the same or an earlier millisecond reuses the last timestamp and
// increments the random field. When the random field is saturated the
// request fails with an *OverflowError and the state is left untouched, so
// the next millisecond resumes normally.
//
// Freshly sampled randoms keep IDs unpredictable across milliseconds; the
// increment inside one millisecond keeps them strictly ordered.

package nano64

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultMaxOverflowWait bounds how long OverflowWait blocks for the clock to
// leave a saturated millisecond.
const DefaultMaxOverflowWait = 10 * time.Millisecond

// OverflowPolicy selects what the clock-driven methods do when a millisecond
// is saturated.
type OverflowPolicy int

const (
	// OverflowReturnError returns an *OverflowError immediately.
	OverflowReturnError OverflowPolicy = iota

	// OverflowWait blocks until the clock passes the saturated millisecond,
	// bounded by MaxOverflowWait and the caller's context.
	OverflowWait
)

// String returns the policy name.
func (p OverflowPolicy) String() string {
	switch p {
	case OverflowReturnError:
		return "return-error"
	case OverflowWait:
		return "wait"
	default:
		return fmt.Sprintf("OverflowPolicy(%d)", int(p))
	}
}

// MonotonicConfig holds configuration options for a MonotonicGenerator.
//
// The zero value is usable; DefaultMonotonicConfig spells out the defaults.
type MonotonicConfig struct {
	// Random supplies the random field on the first ID of each millisecond.
	// Default: CryptoRandom
	Random RandomSource

	// Clock supplies the current time for GenerateNow and friends.
	// Default: SystemClock
	Clock Clock

	// OverflowPolicy applies to the clock-driven methods (GenerateNow,
	// GenerateNowWithContext, GenerateBatch). Generate with an explicit
	// timestamp always returns the error.
	// Default: OverflowReturnError
	OverflowPolicy OverflowPolicy

	// MaxOverflowWait bounds the wait under OverflowWait. Zero means
	// DefaultMaxOverflowWait.
	MaxOverflowWait time.Duration

	// EnableMetrics determines whether to collect internal metrics.
	// Default: true
	EnableMetrics bool
}

// DefaultMonotonicConfig returns a MonotonicConfig with production-ready defaults:
//   - Random: CryptoRandom
//   - Clock: SystemClock
//   - OverflowPolicy: OverflowReturnError
//   - MaxOverflowWait: 10ms
//   - EnableMetrics: true
func DefaultMonotonicConfig() MonotonicConfig {
	return MonotonicConfig{
		Random:          CryptoRandom,
		Clock:           SystemClock,
		OverflowPolicy:  OverflowReturnError,
		MaxOverflowWait: DefaultMaxOverflowWait,
		EnableMetrics:   true,
	}
}

// Validate checks the configuration and returns a *ConfigError if it is invalid.
func (c *MonotonicConfig) Validate() error {
	if c.OverflowPolicy != OverflowReturnError && c.OverflowPolicy != OverflowWait {
		return newConfigError(
			"OverflowPolicy",
			fmt.Sprintf("%d", int(c.OverflowPolicy)),
			"unknown policy",
			"must be OverflowReturnError or OverflowWait",
		)
	}
	if c.MaxOverflowWait < 0 {
		return newConfigError(
			"MaxOverflowWait",
			c.MaxOverflowWait.String(),
			"must be non-negative",
			"duration must be >= 0",
		)
	}
	return nil
}

// Metrics holds runtime counters of a MonotonicGenerator.
type Metrics struct {
	Generated        int64 // Total IDs successfully generated
	SequenceOverflow int64 // Requests rejected (or delayed) because the millisecond was saturated
	ClockBackward    int64 // Requests whose timestamp was before the last one handed out
	RandomFailures   int64 // Requests that failed because the random source failed
	WaitTimeUs       int64 // Total time spent waiting under OverflowWait (microseconds)
}

// MonotonicGenerator produces strictly increasing IDs.
//
// # Thread Safety
//
// MonotonicGenerator is safe for concurrent use. Every state transition
// happens under one mutex, so two callers never build on the same previous
// state and no two successful calls return the same ID.
//
// # Clock Regression
//
// If the requested timestamp is earlier than the last one handed out, the
// generator keeps the last timestamp and increments the random field. IDs
// stay ordered; their timestamp runs slightly ahead of the wall clock until
// real time catches up.
type MonotonicGenerator struct {
	mu            sync.Mutex // Protects lastTimestamp, lastRandom, initialized
	lastTimestamp int64
	lastRandom    uint32
	initialized   bool

	rng     RandomSource
	clock   Clock
	policy  OverflowPolicy
	maxWait time.Duration
	metrics bool

	generated        atomic.Int64
	sequenceOverflow atomic.Int64
	clockBackward    atomic.Int64
	randomFailures   atomic.Int64
	waitTimeUs       atomic.Int64
}

// NewMonotonic creates a MonotonicGenerator.
//
// Example:
//
//	cfg := nano64.DefaultMonotonicConfig()
//	cfg.OverflowPolicy = nano64.OverflowWait
//	gen, err := nano64.NewMonotonic(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	id, err := gen.GenerateNow()
func NewMonotonic(cfg MonotonicConfig) (*MonotonicGenerator, error) {
	if err := (&cfg).Validate(); err != nil {
		return nil, err
	}
	maxWait := cfg.MaxOverflowWait
	if maxWait == 0 {
		maxWait = DefaultMaxOverflowWait
	}
	return &MonotonicGenerator{
		rng:     orDefaultRandom(cfg.Random),
		clock:   orDefaultClock(cfg.Clock),
		policy:  cfg.OverflowPolicy,
		maxWait: maxWait,
		metrics: cfg.EnableMetrics,
	}, nil
}

// Generate returns the next ID for an explicit timestamp.
//
// Returns:
//   - *RangeError (ErrTimestampOutOfRange) if timestamp is outside [0, MaxTimestamp]
//   - *OverflowError (ErrSequenceOverflow) if the millisecond is saturated
//   - *RandomSourceError (ErrRandomSourceFailure) if the random source fails
//
// On any error the generator state is unchanged.
//
// Performance: ~50ns per call when the random field increments, plus one
// random-source call per new millisecond.
func (g *MonotonicGenerator) Generate(timestamp int64) (ID, error) {
	return g.generate(timestamp, nil)
}

// generate serializes one transition. A nil rng uses the generator's source.
func (g *MonotonicGenerator) generate(timestamp int64, rng RandomSource) (ID, error) {
	if rng == nil {
		rng = g.rng
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.generateLocked(timestamp, rng)
}

// generateLocked must be called with g.mu held.
func (g *MonotonicGenerator) generateLocked(timestamp int64, rng RandomSource) (ID, error) {
	if timestamp < 0 || timestamp > MaxTimestamp {
		return 0, newTimestampRangeError(timestamp)
	}

	// New millisecond: fresh random value
	if !g.initialized || timestamp > g.lastTimestamp {
		r, err := sampleRandom(rng)
		if err != nil {
			g.count(&g.randomFailures, 1)
			return 0, err
		}
		g.lastTimestamp = timestamp
		g.lastRandom = r
		g.initialized = true
		g.count(&g.generated, 1)
		return compose(timestamp, r), nil
	}

	// Same or earlier millisecond: increment within the last one
	if timestamp < g.lastTimestamp {
		g.count(&g.clockBackward, 1)
	}
	if g.lastRandom >= MaxRandom {
		g.count(&g.sequenceOverflow, 1)
		return 0, newOverflowError(g.lastTimestamp, timestamp, 0)
	}
	g.lastRandom++
	g.count(&g.generated, 1)
	return compose(g.lastTimestamp, g.lastRandom), nil
}

// GenerateNow returns the next ID for the generator's clock.
func (g *MonotonicGenerator) GenerateNow() (ID, error) {
	return g.GenerateNowWithContext(context.Background())
}

// GenerateNowWithContext returns the next ID for the generator's clock,
// applying the configured OverflowPolicy.
//
// Under OverflowWait a saturated millisecond blocks until the clock moves
// past it. The wait gives up with an *OverflowError after MaxOverflowWait and
// with ErrContextCanceled when ctx is done.
//
// Example:
//
//	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
//	defer cancel()
//	id, err := gen.GenerateNowWithContext(ctx)
func (g *MonotonicGenerator) GenerateNowWithContext(ctx context.Context) (ID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	select {
	case <-ctx.Done():
		return 0, ErrContextCanceled
	default:
	}

	return g.nextLocked(ctx)
}

// nextLocked generates from the clock and applies the overflow policy.
// Must be called with g.mu held.
func (g *MonotonicGenerator) nextLocked(ctx context.Context) (ID, error) {
	requested := g.clock.NowMillis()
	id, err := g.generateLocked(requested, g.rng)
	if err == nil || g.policy != OverflowWait || !IsOverflowError(err) {
		return id, err
	}

	now, err := g.waitNextMillisLocked(ctx, requested)
	if err != nil {
		return 0, err
	}
	return g.generateLocked(now, g.rng)
}

// waitNextMillisLocked waits until the clock passes lastTimestamp.
//
// Uses the hybrid approach: sleep for most of the gap, then yield-spin for
// the final stretch. Must be called with g.mu held.
func (g *MonotonicGenerator) waitNextMillisLocked(ctx context.Context, requested int64) (int64, error) {
	waitStart := time.Now()
	defer func() {
		g.count(&g.waitTimeUs, time.Since(waitStart).Microseconds())
	}()

	for {
		now := g.clock.NowMillis()
		if now > g.lastTimestamp {
			return now, nil
		}

		waited := time.Since(waitStart)
		if waited >= g.maxWait {
			return 0, newOverflowError(g.lastTimestamp, requested, waited)
		}

		// Sleep only if the gap is significant (>100µs); leave 50µs for
		// sleep inaccuracy and never sleep past the wait budget
		sleep := time.Duration(g.lastTimestamp+1-now)*time.Millisecond - 50*time.Microsecond
		if budget := g.maxWait - waited; sleep > budget {
			sleep = budget
		}
		if sleep > 100*time.Microsecond {
			timer := time.NewTimer(sleep)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return 0, ErrContextCanceled
			}
			continue
		}

		select {
		case <-ctx.Done():
			return 0, ErrContextCanceled
		default:
		}
		runtime.Gosched()
	}
}

// GenerateBatch generates count IDs from the generator's clock under a
// single lock acquisition.
//
// If an error occurs part-way (overflow under OverflowReturnError, random
// source failure, context cancellation) the IDs generated so far are
// returned together with the error.
//
// Example:
//
//	ids, err := gen.GenerateBatch(ctx, 1000)
//	if err != nil {
//	    // ids may contain a partial batch
//	    log.Printf("batch stopped after %d IDs: %v", len(ids), err)
//	}
func (g *MonotonicGenerator) GenerateBatch(ctx context.Context, count int) ([]ID, error) {
	if count <= 0 {
		return []ID{}, nil
	}

	ids := make([]ID, 0, count)

	g.mu.Lock()
	defer g.mu.Unlock()

	for i := 0; i < count; i++ {
		// Check context cancellation periodically (every 100 IDs)
		if i%100 == 0 {
			select {
			case <-ctx.Done():
				return ids, ErrContextCanceled
			default:
			}
		}

		id, err := g.nextLocked(ctx)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// State returns the last timestamp and random value handed out. ok is false
// before the first successful generation (or after Reset).
func (g *MonotonicGenerator) State() (timestamp int64, random uint32, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastTimestamp, g.lastRandom, g.initialized
}

// Seed replaces the generator's state with the components of last, so the
// next ID sorts after it. Use it to resume ordering from a persisted ID
// after a restart.
//
// Example:
//
//	var last nano64.ID
//	db.QueryRow("SELECT MAX(id) FROM events").Scan(&last)
//	gen.Seed(last)
func (g *MonotonicGenerator) Seed(last ID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastTimestamp = last.Timestamp()
	g.lastRandom = last.Random()
	g.initialized = true
}

// Reset returns the generator to its initial, unseeded state.
func (g *MonotonicGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastTimestamp = 0
	g.lastRandom = 0
	g.initialized = false
}

// Policy returns the configured overflow policy.
func (g *MonotonicGenerator) Policy() OverflowPolicy {
	return g.policy
}

// GetMetrics returns a snapshot of current metrics.
//
// Performance: ~5ns per call (5 atomic loads)
// Thread-safe: Yes, uses atomic operations
//
// Example:
//
//	m := gen.GetMetrics()
//	if m.SequenceOverflow > 0 {
//	    log.Printf("saturated %d times", m.SequenceOverflow)
//	}
func (g *MonotonicGenerator) GetMetrics() Metrics {
	return Metrics{
		Generated:        g.generated.Load(),
		SequenceOverflow: g.sequenceOverflow.Load(),
		ClockBackward:    g.clockBackward.Load(),
		RandomFailures:   g.randomFailures.Load(),
		WaitTimeUs:       g.waitTimeUs.Load(),
	}
}

// ResetMetrics resets all metrics counters to zero.
//
// This is primarily useful for testing. In production, metrics should
// typically be monotonically increasing for accurate rate calculation.
func (g *MonotonicGenerator) ResetMetrics() {
	g.generated.Store(0)
	g.sequenceOverflow.Store(0)
	g.clockBackward.Store(0)
	g.randomFailures.Store(0)
	g.waitTimeUs.Store(0)
}

func (g *MonotonicGenerator) count(c *atomic.Int64, n int64) {
	if g.metrics {
		c.Add(n)
	}
}
