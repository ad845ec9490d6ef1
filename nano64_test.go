package nano64

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fixedRandom returns v for every call.
func fixedRandom(v uint32) RandomSource {
	return RandomFunc(func(bits int) (uint32, error) { return v, nil })
}

// failingRandom always fails.
var failingRandom = RandomFunc(func(bits int) (uint32, error) {
	return 0, errors.New("entropy exhausted")
})

// ============================================================================
// Encode / Decode
// ============================================================================

func TestEncode(t *testing.T) {
	tests := []struct {
		name      string
		timestamp int64
		random    uint32
		wantHex   string
		wantErr   error
	}{
		{"zero", 0, 0, "00000000000-00000", nil},
		{"known vector", 1234567890123, 0x12345, "11F71FB04CB-12345", nil},
		{"max fields", MaxTimestamp, MaxRandom, "FFFFFFFFFFF-FFFFF", nil},
		{"max timestamp zero random", MaxTimestamp, 0, "FFFFFFFFFFF-00000", nil},
		{"negative timestamp", -1, 0, "", ErrTimestampOutOfRange},
		{"timestamp overflow", MaxTimestamp + 1, 0, "", ErrTimestampOutOfRange},
		{"random overflow", 0, MaxRandom + 1, "", ErrRandomOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := Encode(tt.timestamp, tt.random)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Encode() error = %v, want %v", err, tt.wantErr)
				}
				if !IsRangeError(err) {
					t.Errorf("Encode() error should be *RangeError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if got := id.Hex(); got != tt.wantHex {
				t.Errorf("Encode().Hex() = %s, want %s", got, tt.wantHex)
			}

			ts, r := Decode(id)
			if ts != tt.timestamp || r != tt.random {
				t.Errorf("Decode() = (%d, %d), want (%d, %d)", ts, r, tt.timestamp, tt.random)
			}
		})
	}
}

func TestDecode_AnyValue(t *testing.T) {
	v := ID(0x123456789ABCDEF0)
	ts, r := Decode(v)
	if ts != 0x123456789AB {
		t.Errorf("timestamp = %X, want 123456789AB", ts)
	}
	if r != 0xCDEF0 {
		t.Errorf("random = %X, want CDEF0", r)
	}

	back, err := Encode(ts, r)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if back != v {
		t.Errorf("Encode(Decode(v)) = %X, want %X", uint64(back), uint64(v))
	}
}

func TestRangeError_Fields(t *testing.T) {
	_, err := Encode(MaxTimestamp+5, 0)
	rangeErr, ok := GetRangeError(err)
	if !ok {
		t.Fatalf("GetRangeError() ok = false for %v", err)
	}
	if rangeErr.Field != "timestamp" || rangeErr.Value != MaxTimestamp+5 || rangeErr.Max != MaxTimestamp {
		t.Errorf("RangeError = %+v", rangeErr)
	}
}

func TestMinMaxForTimestamp(t *testing.T) {
	const ts = 1759864645209

	lo, err := MinForTimestamp(ts)
	if err != nil {
		t.Fatalf("MinForTimestamp() error = %v", err)
	}
	hi, err := MaxForTimestamp(ts)
	if err != nil {
		t.Fatalf("MaxForTimestamp() error = %v", err)
	}

	if lo.Timestamp() != ts || lo.Random() != 0 {
		t.Errorf("MinForTimestamp() = %#v", lo)
	}
	if hi.Timestamp() != ts || hi.Random() != MaxRandom {
		t.Errorf("MaxForTimestamp() = %#v", hi)
	}
	if uint64(hi)-uint64(lo) != MaxRandom {
		t.Errorf("range width = %d, want %d", uint64(hi)-uint64(lo), MaxRandom)
	}

	if _, err := MinForTimestamp(-1); !errors.Is(err, ErrTimestampOutOfRange) {
		t.Errorf("MinForTimestamp(-1) error = %v, want ErrTimestampOutOfRange", err)
	}
}

func TestCompare(t *testing.T) {
	a, _ := Encode(1000, 5)
	b, _ := Encode(1000, 6)
	c, _ := Encode(1001, 0)

	tests := []struct {
		x, y ID
		want int
	}{
		{a, a, 0},
		{a, b, -1},
		{b, a, 1},
		{b, c, -1},
		{c, a, 1},
		{ID(0), ID(^uint64(0)), -1},
	}

	for _, tt := range tests {
		if got := Compare(tt.x, tt.y); got != tt.want {
			t.Errorf("Compare(%s, %s) = %d, want %d", tt.x, tt.y, got, tt.want)
		}
	}

	if !Equal(a, a) || Equal(a, b) {
		t.Error("Equal() mismatch")
	}
}

// ============================================================================
// Random Generation
// ============================================================================

func TestGenerate(t *testing.T) {
	id, err := Generate(1234567890123, fixedRandom(0x12345))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got := id.Hex(); got != "11F71FB04CB-12345" {
		t.Errorf("Generate().Hex() = %s, want 11F71FB04CB-12345", got)
	}
}

func TestGenerate_MasksRandom(t *testing.T) {
	id, err := Generate(42, fixedRandom(0xFFFFFFFF))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if id.Random() != MaxRandom {
		t.Errorf("Random() = %X, want %X", id.Random(), MaxRandom)
	}
	if id.Timestamp() != 42 {
		t.Errorf("Timestamp() = %d, want 42", id.Timestamp())
	}
}

func TestGenerate_Errors(t *testing.T) {
	if _, err := Generate(-5, nil); !errors.Is(err, ErrTimestampOutOfRange) {
		t.Errorf("Generate(-5) error = %v, want ErrTimestampOutOfRange", err)
	}
	if _, err := Generate(MaxTimestamp+1, nil); !errors.Is(err, ErrTimestampOutOfRange) {
		t.Errorf("Generate(MaxTimestamp+1) error = %v, want ErrTimestampOutOfRange", err)
	}

	_, err := Generate(1, failingRandom)
	if !errors.Is(err, ErrRandomSourceFailure) {
		t.Fatalf("Generate() with failing rng error = %v, want ErrRandomSourceFailure", err)
	}
	var srcErr *RandomSourceError
	if !errors.As(err, &srcErr) || srcErr.Bits != RandomBits {
		t.Errorf("error should be *RandomSourceError with Bits=%d, got %v", RandomBits, err)
	}
}

func TestGenerateDefault(t *testing.T) {
	before := time.Now().UnixMilli()
	id, err := GenerateDefault()
	if err != nil {
		t.Fatalf("GenerateDefault() error = %v", err)
	}
	after := time.Now().UnixMilli()

	if ts := id.Timestamp(); ts < before || ts > after {
		t.Errorf("Timestamp() = %d, want in [%d, %d]", ts, before, after)
	}
	if len(id.Hex()) != HexLen {
		t.Errorf("len(Hex()) = %d, want %d", len(id.Hex()), HexLen)
	}
}

func TestGenerateAt(t *testing.T) {
	at := time.Date(2025, 10, 7, 12, 0, 0, 0, time.UTC)
	id, err := GenerateAt(at, fixedRandom(7))
	if err != nil {
		t.Fatalf("GenerateAt() error = %v", err)
	}
	if !id.Time().Equal(at) {
		t.Errorf("Time() = %v, want %v", id.Time(), at)
	}
}

func TestCryptoRandom_Bits(t *testing.T) {
	for _, bits := range []int{1, 8, 20, 31, 32} {
		for i := 0; i < 100; i++ {
			v, err := CryptoRandom.Random(bits)
			if err != nil {
				t.Fatalf("Random(%d) error = %v", bits, err)
			}
			if bits < 32 && v >= 1<<bits {
				t.Fatalf("Random(%d) = %d, exceeds range", bits, v)
			}
		}
	}

	for _, bits := range []int{0, -1, 33} {
		if _, err := CryptoRandom.Random(bits); !errors.Is(err, ErrRandomSourceFailure) {
			t.Errorf("Random(%d) error = %v, want ErrRandomSourceFailure", bits, err)
		}
	}
}

// ============================================================================
// Package-level Monotonic Functions
// ============================================================================

func TestGenerateMonotonicDefault(t *testing.T) {
	var prev ID
	for i := 0; i < 1000; i++ {
		id, err := GenerateMonotonicDefault()
		if IsOverflowError(err) {
			time.Sleep(time.Millisecond)
			continue
		}
		if err != nil {
			t.Fatalf("GenerateMonotonicDefault() error = %v", err)
		}
		if i > 0 && id <= prev {
			t.Fatalf("ID %d not increasing: %s <= %s", i, id, prev)
		}
		prev = id
	}
}

func TestGenerateMonotonic_Concurrent(t *testing.T) {
	const goroutines = 8
	const perGoroutine = 500

	var mu sync.Mutex
	seen := make(map[ID]bool, goroutines*perGoroutine)
	var wg sync.WaitGroup

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]ID, 0, perGoroutine)
			for i := 0; i < perGoroutine; i++ {
				id, err := GenerateMonotonicNow(nil)
				if IsOverflowError(err) {
					time.Sleep(time.Millisecond)
					continue
				}
				if err != nil {
					t.Errorf("GenerateMonotonicNow() error = %v", err)
					return
				}
				local = append(local, id)
			}
			mu.Lock()
			for _, id := range local {
				if seen[id] {
					t.Errorf("duplicate ID %s", id)
				}
				seen[id] = true
			}
			mu.Unlock()
		}()
	}
	wg.Wait()
}

// ============================================================================
// Benchmarks
// ============================================================================

func BenchmarkGenerateDefault(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = GenerateDefault()
	}
}

func BenchmarkEncode(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = Encode(int64(i), uint32(i)&MaxRandom)
	}
}
