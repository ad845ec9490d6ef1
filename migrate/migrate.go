// Package migrate converts between Nano64 IDs and the wider time-ordered
// identifiers systems usually migrate from: ULIDs and UUIDv7.
//
// All three share a millisecond Unix timestamp in their leading bits, so the
// conversion keeps creation time and ordering. Nano64 carries only 20 random
// bits against 80 (ULID) or 74 (UUIDv7), so:
//
//   - ID → ULID/UUIDv7 → ID is always lossless.
//   - ULID/UUIDv7 → ID keeps the timestamp and the first 20 random bits. The
//     Strict variants reject inputs whose remaining bits are not zero, which
//     is exactly the set of values produced by ToULID/ToUUIDv7.
//
// # Layout
//
//	ULID    [ms:48][r:20][zero:60]
//	UUIDv7  [ms:48][ver:4=7][r19..8:12][var:2=10][zero:6][r7..0:8][zero:48]
package migrate

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/sxyafiq/nano64"
)

var (
	// ErrNotUUIDv7 is returned when a UUID is not version 7 with the RFC 4122 variant.
	ErrNotUUIDv7 = errors.New("not a UUIDv7")

	// ErrLossyConversion is returned by the Strict functions when the input
	// carries random bits a Nano64 ID cannot hold.
	ErrLossyConversion = errors.New("conversion would drop random bits")
)

// ============================================================================
// ULID
// ============================================================================

// ToULID returns the ULID with the same timestamp and the random field in
// the top 20 entropy bits.
//
// Example:
//
//	u := migrate.ToULID(id)
//	fmt.Println(u.String()) // 26 Crockford base32 characters
func ToULID(id nano64.ID) ulid.ULID {
	var u ulid.ULID
	// Nano64 timestamps are 44 bits, always inside ULID's 48-bit range
	_ = u.SetTime(uint64(id.Timestamp()))

	r := id.Random()
	entropy := make([]byte, 10)
	entropy[0] = byte(r >> 12)
	entropy[1] = byte(r >> 4)
	entropy[2] = byte(r << 4)
	_ = u.SetEntropy(entropy)
	return u
}

// FromULID returns the ID with the ULID's timestamp and the first 20 bits of
// its entropy. The remaining 60 entropy bits are dropped.
//
// Returns nano64.ErrTimestampOutOfRange if the ULID time does not fit in 44 bits.
func FromULID(u ulid.ULID) (nano64.ID, error) {
	ms := u.Time()
	if ms > nano64.MaxTimestamp {
		return 0, fmt.Errorf("migrate: ULID time %d: %w", ms, nano64.ErrTimestampOutOfRange)
	}
	e := u.Entropy()
	r := uint32(e[0])<<12 | uint32(e[1])<<4 | uint32(e[2])>>4
	return nano64.Encode(int64(ms), r)
}

// FromULIDStrict is FromULID but fails with ErrLossyConversion unless the
// dropped entropy bits are all zero.
func FromULIDStrict(u ulid.ULID) (nano64.ID, error) {
	e := u.Entropy()
	if e[2]&0x0F != 0 || !allZero(e[3:]) {
		return 0, fmt.Errorf("migrate: ULID %s: %w", u, ErrLossyConversion)
	}
	return FromULID(u)
}

// ParseULID parses a ULID string and converts it with FromULID.
func ParseULID(s string) (nano64.ID, error) {
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return 0, fmt.Errorf("migrate: parse ULID %q: %w", s, err)
	}
	return FromULID(u)
}

// ============================================================================
// UUIDv7
// ============================================================================

// ToUUIDv7 returns a version 7 UUID with the same timestamp. The 20-bit
// random field fills rand_a (12 bits) and the first byte after the variant.
func ToUUIDv7(id nano64.ID) uuid.UUID {
	var u uuid.UUID
	var ms [8]byte
	binary.BigEndian.PutUint64(ms[:], uint64(id.Timestamp()))
	copy(u[0:6], ms[2:8])

	r := id.Random()
	u[6] = 0x70 | byte(r>>16)&0x0F
	u[7] = byte(r >> 8)
	u[8] = 0x80
	u[9] = byte(r)
	return u
}

// FromUUIDv7 returns the ID with the UUID's timestamp and the 20 random bits
// placed there by ToUUIDv7. Other random bits are dropped.
//
// Returns ErrNotUUIDv7 for any other version or variant.
func FromUUIDv7(u uuid.UUID) (nano64.ID, error) {
	if u.Version() != 7 || u.Variant() != uuid.RFC4122 {
		return 0, fmt.Errorf("migrate: %s (version %d): %w", u, u.Version(), ErrNotUUIDv7)
	}
	ms := binary.BigEndian.Uint64(u[0:8]) >> 16
	if ms > nano64.MaxTimestamp {
		return 0, fmt.Errorf("migrate: UUIDv7 time %d: %w", ms, nano64.ErrTimestampOutOfRange)
	}
	r := uint32(u[6]&0x0F)<<16 | uint32(u[7])<<8 | uint32(u[9])
	return nano64.Encode(int64(ms), r)
}

// FromUUIDv7Strict is FromUUIDv7 but fails with ErrLossyConversion unless
// the dropped random bits are all zero.
func FromUUIDv7Strict(u uuid.UUID) (nano64.ID, error) {
	if u[8]&0x3F != 0 || !allZero(u[10:]) {
		return 0, fmt.Errorf("migrate: UUID %s: %w", u, ErrLossyConversion)
	}
	return FromUUIDv7(u)
}

// ParseUUIDv7 parses a UUID string and converts it with FromUUIDv7.
func ParseUUIDv7(s string) (nano64.ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return 0, fmt.Errorf("migrate: parse UUID %q: %w", s, err)
	}
	return FromUUIDv7(u)
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
