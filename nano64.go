// Package nano64 generates compact, time-sortable 64-bit identifiers.
//
// # Overview
//
// A Nano64 ID is a single uint64 that is:
//   - Sortable by time (IDs generated later compare greater)
//   - Compact (8 bytes, 17 hex characters)
//   - Generated without coordination (no node IDs, no central allocator)
//   - Optionally strictly monotonic within one process
//   - Optionally encrypted so the creation time is not publicly visible
//
// # ID Structure (64 bits)
//
//	┌──────────────────────────────────────────────────────┬─────────────────────┐
//	│        44 bits: Timestamp (ms since Unix epoch)      │  20 bits: Random    │
//	│        0 .. 2^44-1  (through year ~2527)             │  0 .. 1,048,575     │
//	└──────────────────────────────────────────────────────┴─────────────────────┘
//
// Byte order is big-endian everywhere, so byte-wise comparison of
// ID.Bytes(), lexicographic comparison of ID.Hex() and numeric comparison of
// the uint64 all agree.
//
// # Collisions
//
// Non-monotonic IDs draw 20 fresh random bits per call. Two IDs collide only
// when they share a millisecond and a random value; for n IDs in one
// millisecond the collision probability is roughly n²/2^21. Use a
// MonotonicGenerator when a single process needs guaranteed uniqueness.
//
// # Usage
//
//	// Random ID for the current time
//	id, err := nano64.GenerateDefault()
//	fmt.Println(id.Hex()) // 199C01B6659-5861C
//
//	// Strictly increasing IDs from one generator
//	gen, err := nano64.NewMonotonic(nano64.DefaultMonotonicConfig())
//	id, err := gen.GenerateNow()
//
//	// Encrypted IDs that hide the timestamp
//	factory, err := nano64.NewEncryptionFactory(key, nil, nil)
//	enc, err := factory.GenerateEncryptedNow()
//	fmt.Println(enc.Hex()) // 72 hex characters
package nano64

import (
	"sync"
	"time"
)

const (
	// Epoch is the zero point of the timestamp field: the Unix epoch, in milliseconds.
	Epoch int64 = 0

	// TimestampBits is the number of bits allocated to the millisecond timestamp.
	TimestampBits = 44

	// RandomBits is the number of bits allocated to the random field.
	RandomBits = 20

	// TimestampShift positions the timestamp above the random field.
	TimestampShift = RandomBits

	// MaxTimestamp is the largest encodable timestamp (2^44 - 1 ms after the epoch).
	MaxTimestamp = 1<<TimestampBits - 1

	// MaxRandom is the largest random value (2^20 - 1).
	MaxRandom = 1<<RandomBits - 1

	// HexLen is the length of the canonical hex form TTTTTTTTTTT-RRRRR.
	HexLen = 17

	// ByteLen is the length of the binary form.
	ByteLen = 8
)

const (
	timestampMask = uint64(MaxTimestamp)
	randomMask    = uint64(MaxRandom)
)

// ============================================================================
// Bit Layout
// ============================================================================

// Encode packs a timestamp and random value into an ID.
//
// Returns a *RangeError (ErrTimestampOutOfRange) if timestamp is negative or
// above MaxTimestamp, and a *RangeError (ErrRandomOutOfRange) if random is
// above MaxRandom.
//
// Example:
//
//	id, err := nano64.Encode(1234567890123, 0x12345)
//	// id.Hex() == "11F71FB04CB-12345"
func Encode(timestamp int64, random uint32) (ID, error) {
	if timestamp < 0 || timestamp > MaxTimestamp {
		return 0, newTimestampRangeError(timestamp)
	}
	if random > MaxRandom {
		return 0, newRandomRangeError(random)
	}
	return compose(timestamp, random), nil
}

// Decode splits an ID into its timestamp and random fields. It never fails:
// every uint64 has a well-defined decoding.
func Decode(id ID) (timestamp int64, random uint32) {
	return id.Timestamp(), id.Random()
}

// compose assumes both fields are in range.
func compose(timestamp int64, random uint32) ID {
	return ID((uint64(timestamp)&timestampMask)<<TimestampShift | uint64(random)&randomMask)
}

// MinForTimestamp returns the smallest ID of the given millisecond.
//
// Together with MaxForTimestamp it bounds a time range in byte-ordered
// stores: every ID minted in [from, to] sorts inside
// [MinForTimestamp(from), MaxForTimestamp(to)].
func MinForTimestamp(timestamp int64) (ID, error) {
	return Encode(timestamp, 0)
}

// MaxForTimestamp returns the largest ID of the given millisecond.
func MaxForTimestamp(timestamp int64) (ID, error) {
	return Encode(timestamp, MaxRandom)
}

// Compare compares two IDs as unsigned 64-bit numbers.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
func Compare(a, b ID) int {
	return a.Compare(b)
}

// Equal reports whether two IDs are identical.
func Equal(a, b ID) bool {
	return a == b
}

// ============================================================================
// Random Generation
// ============================================================================

// Generate creates an ID for the given timestamp with a freshly sampled
// random field. A nil rng uses CryptoRandom.
//
// Example:
//
//	id, err := nano64.Generate(time.Now().UnixMilli(), nil)
func Generate(timestamp int64, rng RandomSource) (ID, error) {
	if timestamp < 0 || timestamp > MaxTimestamp {
		return 0, newTimestampRangeError(timestamp)
	}
	r, err := sampleRandom(orDefaultRandom(rng))
	if err != nil {
		return 0, err
	}
	return compose(timestamp, r), nil
}

// GenerateNow creates an ID for the current wall-clock time.
func GenerateNow(rng RandomSource) (ID, error) {
	return Generate(SystemClock.NowMillis(), rng)
}

// GenerateAt creates an ID for the given time.
func GenerateAt(t time.Time, rng RandomSource) (ID, error) {
	return Generate(t.UnixMilli(), rng)
}

// GenerateDefault creates an ID for the current time using CryptoRandom.
func GenerateDefault() (ID, error) {
	return GenerateNow(CryptoRandom)
}

// MustGenerate generates an ID for the current time and panics on error.
func MustGenerate() ID {
	id, err := GenerateDefault()
	if err != nil {
		panic(err)
	}
	return id
}

// ============================================================================
// Default Monotonic Generator
// ============================================================================

// Default monotonic generator for package-level functions.
//
// # Lazy Initialization
//
// The default generator is created on first use via sync.Once. Applications
// that need isolated ordering domains (per tenant, per table) should create
// their own MonotonicGenerator with NewMonotonic instead.
var (
	defaultMonotonic     *MonotonicGenerator
	defaultMonotonicOnce sync.Once
	defaultMonotonicErr  error
)

func initDefaultMonotonic() {
	defaultMonotonic, defaultMonotonicErr = NewMonotonic(DefaultMonotonicConfig())
}

// DefaultMonotonic returns the generator shared by the package-level
// monotonic functions.
func DefaultMonotonic() (*MonotonicGenerator, error) {
	defaultMonotonicOnce.Do(initDefaultMonotonic)
	return defaultMonotonic, defaultMonotonicErr
}

// GenerateMonotonic creates a strictly increasing ID for the given
// timestamp using the default generator. A nil rng uses the generator's own
// source.
func GenerateMonotonic(timestamp int64, rng RandomSource) (ID, error) {
	gen, err := DefaultMonotonic()
	if err != nil {
		return 0, err
	}
	return gen.generate(timestamp, rng)
}

// GenerateMonotonicNow creates a strictly increasing ID for the current time
// using the default generator.
func GenerateMonotonicNow(rng RandomSource) (ID, error) {
	gen, err := DefaultMonotonic()
	if err != nil {
		return 0, err
	}
	return gen.generate(gen.clock.NowMillis(), rng)
}

// GenerateMonotonicDefault creates a strictly increasing ID for the current
// time using the default generator and CryptoRandom.
func GenerateMonotonicDefault() (ID, error) {
	return GenerateMonotonicNow(nil)
}
