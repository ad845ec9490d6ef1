// Package nano64 - rand.go defines the injectable randomness and clock capabilities.
//
// Generation only ever needs two things from the outside world: uniformly
// distributed bits and the current time in milliseconds. Both are modeled as
// single-method interfaces so tests can substitute deterministic versions.

package nano64

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

// RandomSource returns an unsigned integer with the given number of random
// low bits (1 to 32). Implementations must be safe for concurrent use when
// shared between goroutines.
type RandomSource interface {
	Random(bits int) (uint32, error)
}

// RandomFunc adapts an ordinary function to the RandomSource interface.
//
// Example:
//
//	fixed := nano64.RandomFunc(func(bits int) (uint32, error) { return 0x12345, nil })
//	id, _ := nano64.Generate(1234567890123, fixed)
type RandomFunc func(bits int) (uint32, error)

// Random calls f(bits).
func (f RandomFunc) Random(bits int) (uint32, error) {
	return f(bits)
}

// CryptoRandom is the default RandomSource backed by crypto/rand.
var CryptoRandom RandomSource = cryptoRandom{reader: rand.Reader}

type cryptoRandom struct {
	reader io.Reader
}

// Random reads 4 bytes from the underlying reader and masks them to bits.
func (c cryptoRandom) Random(bits int) (uint32, error) {
	if bits < 1 || bits > 32 {
		return 0, &RandomSourceError{Bits: bits, Err: fmt.Errorf("bits must be 1-32, got %d", bits)}
	}

	var buf [4]byte
	if _, err := io.ReadFull(c.reader, buf[:]); err != nil {
		return 0, &RandomSourceError{Bits: bits, Err: err}
	}

	v := binary.BigEndian.Uint32(buf[:])
	if bits < 32 {
		v &= (1 << bits) - 1
	}
	return v, nil
}

// Clock reports the current time in milliseconds since the Unix epoch.
type Clock interface {
	NowMillis() int64
}

// ClockFunc adapts an ordinary function to the Clock interface.
type ClockFunc func() int64

// NowMillis calls f().
func (f ClockFunc) NowMillis() int64 {
	return f()
}

// SystemClock is the default Clock backed by time.Now.
var SystemClock Clock = ClockFunc(func() int64 {
	return time.Now().UnixMilli()
})

// sampleRandom draws a 20-bit value from rng, wrapping any failure.
func sampleRandom(rng RandomSource) (uint32, error) {
	v, err := rng.Random(RandomBits)
	if err != nil {
		if _, ok := err.(*RandomSourceError); ok {
			return 0, err
		}
		return 0, &RandomSourceError{Bits: RandomBits, Err: err}
	}
	return v & MaxRandom, nil
}

func orDefaultRandom(rng RandomSource) RandomSource {
	if rng == nil {
		return CryptoRandom
	}
	return rng
}

func orDefaultClock(clock Clock) Clock {
	if clock == nil {
		return SystemClock
	}
	return clock
}
