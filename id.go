// Package nano64 - id.go provides the ID type with its encodings and utility methods.
//
// The ID type wraps the packed uint64 and provides the canonical hex and
// byte forms, auxiliary encodings, database integration, JSON marshaling,
// component extraction, comparison and time-based partitioning.

package nano64

import (
	"database/sql/driver"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ID is a Nano64 identifier: a 44-bit millisecond timestamp above a 20-bit
// random field.
//
// # Representations
//
//   - Uint64: the canonical value
//   - Hex: 17-char uppercase TTTTTTTTTTT-RRRRR (also String, Text and JSON form)
//   - Bytes: 8 bytes big-endian (also Binary form)
//   - Decimal, Base2, Base32, Base36, Base58, Base62, Base64, Base64URL
//
// All of Uint64, Hex and Bytes preserve ordering: comparing two IDs in any
// of those forms gives the same answer as Compare.
//
// # Interface Implementations
//
//   - json.Marshaler/Unmarshaler: canonical hex string
//   - encoding.TextMarshaler/Unmarshaler: canonical hex
//   - encoding.BinaryMarshaler/Unmarshaler: 8 bytes big-endian
//   - sql.Scanner/driver.Valuer: INTEGER column (int64 bit pattern)
//   - fmt.Stringer and fmt.GoStringer
//
// Example:
//
//	id, _ := nano64.GenerateDefault()
//	fmt.Println(id.Hex())       // 199C01B6659-5861C
//	fmt.Println(id.Timestamp()) // 1759864645209
//	fmt.Println(id.Time())      // 2025-10-07 ...
type ID uint64

// ============================================================================
// Basic Conversions
// ============================================================================

// Uint64 returns the ID as a uint64.
func (id ID) Uint64() uint64 {
	return uint64(id)
}

// Int64 returns the ID reinterpreted as an int64 (same bit pattern).
//
// Until the timestamp reaches bit 43 (year ~2248) the value is non-negative,
// so signed ordering still matches ID ordering.
func (id ID) Int64() int64 {
	return int64(id)
}

// String returns the canonical hex form. It implements fmt.Stringer.
func (id ID) String() string {
	return id.Hex()
}

// GoString returns a debug representation with all components.
func (id ID) GoString() string {
	return fmt.Sprintf("nano64.ID{value=%d, timestamp=%d, random=%d}",
		uint64(id), id.Timestamp(), id.Random())
}

// IsZero reports whether the ID is the zero value.
func (id ID) IsZero() bool {
	return id == 0
}

// ============================================================================
// Canonical Forms
// ============================================================================

// Hex returns the canonical 17-character form: 11 uppercase hex digits of
// timestamp, '-', 5 uppercase hex digits of random.
//
// Example:
//
//	nano64.ID(0x123456789ABCDEF0).Hex() // "123456789AB-CDEF0"
func (id ID) Hex() string {
	return encodeCanonicalHex(uint64(id))
}

// Bytes returns the ID as 8 bytes big-endian.
//
// Big-endian ordering makes byte-wise comparison equivalent to numeric
// comparison, so the result can be used directly as a key in byte-ordered
// stores (LSM trees, B-trees over BLOB keys).
func (id ID) Bytes() [ByteLen]byte {
	var b [ByteLen]byte
	binary.BigEndian.PutUint64(b[:], uint64(id))
	return b
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (id ID) MarshalBinary() ([]byte, error) {
	b := id.Bytes()
	return b[:], nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
// Returns ErrInvalidLength if data is not exactly 8 bytes.
func (id *ID) UnmarshalBinary(data []byte) error {
	v, err := ParseBytes(data)
	if err != nil {
		return err
	}
	*id = v
	return nil
}

// ============================================================================
// Auxiliary Encodings
// ============================================================================

// Decimal returns the base-10 representation of the uint64 value.
func (id ID) Decimal() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Base2 returns a binary string representation (debugging).
func (id ID) Base2() string {
	return strconv.FormatUint(uint64(id), 2)
}

// Base32 returns a z-base-32 encoded string.
//
// Characteristics:
//   - Length: up to 13 characters
//   - Avoids visually similar characters
func (id ID) Base32() string {
	return encodeBase32(uint64(id))
}

// Base36 returns a base36 encoded string (0-9, a-z).
func (id ID) Base36() string {
	return strconv.FormatUint(uint64(id), 36)
}

// Base58 returns a Bitcoin-style base58 encoded string.
//
// Note: Base58 and Base62 do not preserve ordering across different lengths.
func (id ID) Base58() string {
	return encodeBase58(uint64(id))
}

// Base62 returns a URL-safe base62 encoded string (0-9, a-z, A-Z).
func (id ID) Base62() string {
	return encodeBase62(uint64(id))
}

// Base64 returns the 8 bytes in standard base64.
func (id ID) Base64() string {
	b := id.Bytes()
	return base64.StdEncoding.EncodeToString(b[:])
}

// Base64URL returns the 8 bytes in URL-safe base64.
func (id ID) Base64URL() string {
	b := id.Bytes()
	return base64.URLEncoding.EncodeToString(b[:])
}

// ============================================================================
// JSON Marshaling
// ============================================================================

// MarshalJSON implements json.Marshaler.
//
// The ID is written as its canonical hex string. A JSON number would lose
// precision in JavaScript above 2^53, which every current ID exceeds.
//
// Example:
//
//	type Event struct {
//	    ID nano64.ID `json:"id"`
//	}
//	// Marshals as: {"id":"199C01B6659-5861C"}
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.Hex())
}

// UnmarshalJSON implements json.Unmarshaler.
//
// Accepts a hex string (canonical or bare 16 digits), a decimal string, or
// a JSON number.
func (id *ID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("invalid JSON data for nano64 ID: empty")
	}

	if data[0] != '"' {
		v, err := strconv.ParseUint(string(data), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid nano64 ID: %w", err)
		}
		*id = ID(v)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid nano64 ID: %w", err)
	}
	v, err := ParseString(s)
	if err != nil {
		return err
	}
	*id = v
	return nil
}

// ============================================================================
// Text Marshaling (for XML, YAML, etc.)
// ============================================================================

// MarshalText implements encoding.TextMarshaler using the canonical hex form.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	v, err := ParseHex(string(text))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

// ============================================================================
// SQL Database Integration
// ============================================================================

// Scan implements sql.Scanner for reading from database.
//
// Supported types:
//   - int64: INTEGER/BIGINT columns (bit pattern reinterpreted)
//   - []byte: 8-byte BLOB keys, or hex/decimal text
//   - string: hex or decimal text
//   - nil: zero ID
//
// Example:
//
//	var id nano64.ID
//	err := db.QueryRow("SELECT id FROM events WHERE name = ?", name).Scan(&id)
func (id *ID) Scan(value interface{}) error {
	if value == nil {
		*id = 0
		return nil
	}

	switch v := value.(type) {
	case int64:
		*id = ID(uint64(v))
	case []byte:
		if len(v) == ByteLen {
			*id = FromBytes([ByteLen]byte(v))
			return nil
		}
		parsed, err := ParseString(string(v))
		if err != nil {
			return err
		}
		*id = parsed
	case string:
		parsed, err := ParseString(v)
		if err != nil {
			return err
		}
		*id = parsed
	default:
		return fmt.Errorf("cannot scan %T into nano64.ID", value)
	}

	return nil
}

// Value implements driver.Valuer for writing to database.
//
// Returns the int64 bit pattern, which sorts correctly in signed INTEGER
// columns for all timestamps before ~2248. Store id.Bytes() in a BLOB
// column instead if the full range must sort correctly.
//
// Recommended schema:
//
//	-- SQLite
//	CREATE TABLE events (id INTEGER PRIMARY KEY, ...);
//
//	-- PostgreSQL / MySQL
//	CREATE TABLE events (id BIGINT PRIMARY KEY, ...);
func (id ID) Value() (driver.Value, error) {
	return int64(id), nil
}

// ============================================================================
// Parsing Functions
// ============================================================================

// ParseHex parses the canonical hex form.
//
// Accepts the 17-character form with '-' at index 11, the bare 16-digit
// form, an optional 0x prefix and either letter case. Anything else returns
// a *ParseError matching ErrInvalidHexFormat.
//
// Example:
//
//	id, err := nano64.ParseHex("123456789AB-CDEF0")
func ParseHex(s string) (ID, error) {
	v, err := decodeCanonicalHex(s)
	if err != nil {
		return 0, err
	}
	return ID(v), nil
}

// MustParseHex is like ParseHex but panics on error.
func MustParseHex(s string) ID {
	id, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return id
}

// ParseBytes parses 8 big-endian bytes. Any other length returns a
// *ParseError matching ErrInvalidLength.
func ParseBytes(b []byte) (ID, error) {
	if len(b) != ByteLen {
		return 0, newParseError(fmt.Sprintf("%d bytes", len(b)), "bytes",
			fmt.Sprintf("must be exactly %d bytes", ByteLen), ErrInvalidLength)
	}
	return ID(binary.BigEndian.Uint64(b)), nil
}

// FromBytes converts a fixed 8-byte array. It cannot fail.
func FromBytes(b [ByteLen]byte) ID {
	return ID(binary.BigEndian.Uint64(b[:]))
}

// FromUint64 converts a raw uint64. Every value is a valid ID.
func FromUint64(v uint64) ID {
	return ID(v)
}

// ParseDecimal parses a base-10 string.
func ParseDecimal(s string) (ID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidDecimal
	}
	return ID(v), nil
}

// ParseString parses either the hex form (16 or 17 characters, optional 0x)
// or a decimal string. Hex is tried first when the length matches.
func ParseString(s string) (ID, error) {
	if n := len(trimHexPrefix(s)); n == hexDigits || n == HexLen || len(s) != n {
		return ParseHex(s)
	}
	return ParseDecimal(s)
}

// ParseBase2 parses a binary string into an ID.
func ParseBase2(s string) (ID, error) {
	v, err := strconv.ParseUint(s, 2, 64)
	if err != nil {
		return 0, ErrInvalidBase2
	}
	return ID(v), nil
}

// ParseBase32 parses a z-base-32 string into an ID.
func ParseBase32(s string) (ID, error) {
	v, err := decodeBase32(s)
	if err != nil {
		return 0, err
	}
	return ID(v), nil
}

// ParseBase36 parses a base36 string into an ID.
func ParseBase36(s string) (ID, error) {
	v, err := strconv.ParseUint(s, 36, 64)
	if err != nil {
		return 0, ErrInvalidBase36
	}
	return ID(v), nil
}

// ParseBase58 parses a Bitcoin-style base58 string into an ID.
func ParseBase58(s string) (ID, error) {
	v, err := decodeBase58(s)
	if err != nil {
		return 0, err
	}
	return ID(v), nil
}

// ParseBase62 parses a URL-safe base62 string into an ID.
func ParseBase62(s string) (ID, error) {
	v, err := decodeBase62(s)
	if err != nil {
		return 0, err
	}
	return ID(v), nil
}

// ParseBase64 parses a standard base64 string of 8 bytes into an ID.
func ParseBase64(s string) (ID, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil || len(b) != ByteLen {
		return 0, ErrInvalidBase64
	}
	return FromBytes([ByteLen]byte(b)), nil
}

// ParseBase64URL parses a URL-safe base64 string of 8 bytes into an ID.
func ParseBase64URL(s string) (ID, error) {
	b, err := base64.URLEncoding.DecodeString(s)
	if err != nil || len(b) != ByteLen {
		return 0, ErrInvalidBase64
	}
	return FromBytes([ByteLen]byte(b)), nil
}

// ============================================================================
// ID Information Extraction
// ============================================================================

// Timestamp returns the timestamp field: milliseconds since the Unix epoch.
func (id ID) Timestamp() int64 {
	return int64((uint64(id) >> TimestampShift) & timestampMask)
}

// Random returns the 20-bit random (or sequence) field.
func (id ID) Random() uint32 {
	return uint32(uint64(id) & randomMask)
}

// Components returns both fields.
func (id ID) Components() (timestamp int64, random uint32) {
	return id.Timestamp(), id.Random()
}

// Time returns the timestamp field as a time.Time.
func (id ID) Time() time.Time {
	return time.UnixMilli(id.Timestamp() + Epoch)
}

// Age returns the duration since the ID's timestamp.
func (id ID) Age() time.Duration {
	return time.Since(id.Time())
}

// ============================================================================
// Comparison
// ============================================================================

// Before reports whether id sorts before other.
func (id ID) Before(other ID) bool {
	return id < other
}

// After reports whether id sorts after other.
func (id ID) After(other ID) bool {
	return id > other
}

// Equal reports whether two IDs are identical.
func (id ID) Equal(other ID) bool {
	return id == other
}

// Compare returns the ordering of two IDs.
//
// Returns:
//   - -1 if id < other
//   - 0 if id == other
//   - 1 if id > other
//
// The timestamp dominates; the random field breaks ties within one
// millisecond.
func (id ID) Compare(other ID) int {
	if id < other {
		return -1
	}
	if id > other {
		return 1
	}
	return 0
}

// ============================================================================
// Partitioning
// ============================================================================

// Shard maps the ID onto one of numShards partitions.
//
// The low bits are random, so plain modulo spreads IDs evenly even within
// one millisecond.
func (id ID) Shard(numShards uint64) uint64 {
	if numShards == 0 {
		return 0
	}
	return uint64(id) % numShards
}

// ShardByTime returns the index of the time bucket containing the ID's
// timestamp, for time-series partitioning.
//
// Example:
//
//	day := id.ShardByTime(24 * time.Hour)
//	table := fmt.Sprintf("events_%d", day)
func (id ID) ShardByTime(bucketSize time.Duration) int64 {
	ms := bucketSize.Milliseconds()
	if ms <= 0 {
		return 0
	}
	return id.Timestamp() / ms
}

// ============================================================================
// Formatting
// ============================================================================

// Format returns the ID rendered in the named encoding.
//
// Supported formats:
//   - "hex", "x", "": canonical hex (default)
//   - "decimal", "dec", "d"
//   - "binary", "bin", "b"
//   - "base32", "b32", "32"
//   - "base36", "b36", "36"
//   - "base58", "b58", "58"
//   - "base62", "b62", "62"
//   - "base64", "b64", "64"
//   - "base64url", "b64url"
func (id ID) Format(format string) string {
	switch format {
	case "decimal", "dec", "d":
		return id.Decimal()
	case "binary", "bin", "b":
		return id.Base2()
	case "base32", "b32", "32":
		return id.Base32()
	case "base36", "b36", "36":
		return id.Base36()
	case "base58", "b58", "58":
		return id.Base58()
	case "base62", "b62", "62":
		return id.Base62()
	case "base64", "b64", "64":
		return id.Base64()
	case "base64url", "b64url":
		return id.Base64URL()
	default:
		return id.Hex()
	}
}

// ParseFormat parses s in the named encoding (same names as Format).
func ParseFormat(s, format string) (ID, error) {
	switch format {
	case "decimal", "dec", "d":
		return ParseDecimal(s)
	case "binary", "bin", "b":
		return ParseBase2(s)
	case "base32", "b32", "32":
		return ParseBase32(s)
	case "base36", "b36", "36":
		return ParseBase36(s)
	case "base58", "b58", "58":
		return ParseBase58(s)
	case "base62", "b62", "62":
		return ParseBase62(s)
	case "base64", "b64", "64":
		return ParseBase64(s)
	case "base64url", "b64url":
		return ParseBase64URL(s)
	default:
		return ParseHex(s)
	}
}

// IDWithFormat wraps an ID with a custom format for JSON marshaling.
//
// Example:
//
//	formatted := nano64.IDWithFormat{ID: id, Format: "base62"}
//	json.Marshal(formatted) // Outputs a base62 string
type IDWithFormat struct {
	ID     ID
	Format string
}

// MarshalJSON marshals the ID using the specified format.
func (idf IDWithFormat) MarshalJSON() ([]byte, error) {
	return json.Marshal(idf.ID.Format(idf.Format))
}
