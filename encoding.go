// Package nano64 - encoding.go provides the encoders and decoders behind the
// canonical hex form and the auxiliary text encodings.
//
// # Performance Optimizations
//
//   - Bitshifting for power-of-2 bases (Base32, Hex)
//   - Pre-computed lookup tables for O(1) character-to-value mapping
//   - Fixed-size stack buffers for the fixed-width forms
//
// # Supported Encodings
//
//   - Canonical hex: 17 chars, TTTTTTTTTTT-RRRRR, uppercase
//   - Base32: 5 bits/char, z-base-32 alphabet
//   - Base58: Bitcoin-style, no confusing characters (0, O, I, l)
//   - Base62: URL-safe alphanumeric
//
// # Thread Safety
//
// All functions in this file are safe for concurrent use. The lookup tables
// are built once at package init time and are read-only afterwards.
package nano64

import (
	"errors"
	"math"
)

// Maximum string lengths for each auxiliary encoding (for uint64).
// These limits bound the work done on hostile input.
const (
	MaxBase32Len = 13 // ceil(64 / 5)
	MaxBase58Len = 11 // ceil(log58(2^64))
	MaxBase62Len = 11 // ceil(log62(2^64))
)

// Encoding errors returned when parsing invalid auxiliary encodings.
var (
	ErrInvalidBase2    = errors.New("invalid base2 encoding")
	ErrInvalidBase32   = errors.New("invalid base32 encoding")
	ErrInvalidBase36   = errors.New("invalid base36 encoding")
	ErrInvalidBase58   = errors.New("invalid base58 encoding")
	ErrInvalidBase62   = errors.New("invalid base62 encoding")
	ErrInvalidBase64   = errors.New("invalid base64 encoding")
	ErrInvalidDecimal  = errors.New("invalid decimal encoding")
	ErrStringTooLong   = errors.New("encoded string exceeds maximum length")
	ErrIntegerOverflow = errors.New("decoded value would overflow uint64")
)

// hexSplit is the index of the separator in the canonical form: 11 timestamp
// nibbles precede it, 5 random nibbles follow.
const (
	hexSplit     = 11
	hexSeparator = '-'
	hexDigits    = 16
)

// Base32 uses the z-base-32 character set.
// Avoids visually similar characters: 0/O, 1/I/l.
const encodeBase32Map = "ybndrfg8ejkmcpqxot1uwisza345h769"

// Base58 uses the Bitcoin alphabet.
const encodeBase58Map = "123456789abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"

// Base62 uses standard alphanumeric characters (URL-safe).
const encodeBase62Map = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Hex digits are emitted uppercase; decoding accepts both cases.
const encodeHexMap = "0123456789ABCDEF"

// Decode maps provide O(1) character-to-value lookups.
// 0xFF marks an invalid character.
var (
	decodeBase32Map [256]byte
	decodeBase58Map [256]byte
	decodeBase62Map [256]byte
	decodeHexMap    [256]byte
)

func init() {
	for i := 0; i < 256; i++ {
		decodeBase32Map[i] = 0xFF
		decodeBase58Map[i] = 0xFF
		decodeBase62Map[i] = 0xFF
		decodeHexMap[i] = 0xFF
	}

	for i := 0; i < len(encodeBase32Map); i++ {
		decodeBase32Map[encodeBase32Map[i]] = byte(i)
	}
	for i := 0; i < len(encodeBase58Map); i++ {
		decodeBase58Map[encodeBase58Map[i]] = byte(i)
	}
	for i := 0; i < len(encodeBase62Map); i++ {
		decodeBase62Map[encodeBase62Map[i]] = byte(i)
	}

	// Hex accepts upper and lower case
	for i := 0; i < len(encodeHexMap); i++ {
		decodeHexMap[encodeHexMap[i]] = byte(i)
		if encodeHexMap[i] >= 'A' && encodeHexMap[i] <= 'F' {
			decodeHexMap[encodeHexMap[i]+32] = byte(i)
		}
	}
}

// ============================================================================
// Canonical Hex
// ============================================================================

// encodeCanonicalHex renders v as TTTTTTTTTTT-RRRRR.
//
// The 16 nibbles are written from the least significant end into a fixed
// buffer, skipping the separator slot, so the result needs one allocation.
func encodeCanonicalHex(v uint64) string {
	var b [HexLen]byte
	b[hexSplit] = hexSeparator
	for i := HexLen - 1; i >= 0; i-- {
		if i == hexSplit {
			continue
		}
		b[i] = encodeHexMap[v&0x0F]
		v >>= 4
	}
	return string(b[:])
}

// decodeCanonicalHex parses the canonical form, with or without the
// separator, with an optional 0x prefix, in either case.
func decodeCanonicalHex(s string) (uint64, error) {
	orig := s
	s = trimHexPrefix(s)

	switch len(s) {
	case hexDigits:
	case HexLen:
		if s[hexSplit] != hexSeparator {
			return 0, newParseError(orig, "hex", "separator must be at position 11", ErrInvalidHexFormat)
		}
		s = s[:hexSplit] + s[hexSplit+1:]
	default:
		return 0, newParseError(orig, "hex", "must be 16 hex digits, optionally split 11-5 by '-'", ErrInvalidHexFormat)
	}

	var v uint64
	for i := 0; i < len(s); i++ {
		d := decodeHexMap[s[i]]
		if d == 0xFF {
			return 0, newParseError(orig, "hex", "contains non-hex characters", ErrInvalidHexFormat)
		}
		v = v<<4 | uint64(d)
	}
	return v, nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// encodeHexBytes renders b as uppercase hex with no separators.
func encodeHexBytes(b []byte) string {
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[2*i] = encodeHexMap[c>>4]
		out[2*i+1] = encodeHexMap[c&0x0F]
	}
	return string(out)
}

// decodeHexBytes decodes an even-length hex string into dst, which must be
// exactly len(s)/2 bytes. It reports false on any non-hex character.
func decodeHexBytes(dst []byte, s string) bool {
	for i := 0; i < len(dst); i++ {
		hi := decodeHexMap[s[2*i]]
		lo := decodeHexMap[s[2*i+1]]
		if hi == 0xFF || lo == 0xFF {
			return false
		}
		dst[i] = hi<<4 | lo
	}
	return true
}

// ============================================================================
// Auxiliary Encodings
// ============================================================================

// encodeBase32 encodes v to z-base-32 using bitshifting.
//
// Base32 uses 5 bits per character (2^5 = 32), so each digit is a mask and
// a shift rather than a division.
func encodeBase32(v uint64) string {
	if v < 32 {
		return string(encodeBase32Map[v])
	}

	var b [MaxBase32Len]byte
	i := len(b)
	for v > 0 {
		i--
		b[i] = encodeBase32Map[v&0x1F]
		v >>= 5
	}
	return string(b[i:])
}

// decodeBase32 decodes a z-base-32 string to uint64 using the lookup table.
func decodeBase32(s string) (uint64, error) {
	if len(s) == 0 {
		return 0, ErrInvalidBase32
	}
	if len(s) > MaxBase32Len {
		return 0, ErrStringTooLong
	}

	var v uint64
	const maxSafeValue = math.MaxUint64 >> 5 // largest value whose shift does not drop bits

	for i := 0; i < len(s); i++ {
		d := decodeBase32Map[s[i]]
		if d == 0xFF {
			return 0, ErrInvalidBase32
		}
		if v > maxSafeValue {
			return 0, ErrIntegerOverflow
		}
		v = v<<5 | uint64(d)
	}
	return v, nil
}

// encodeBase58 encodes v to the Bitcoin-style base58 alphabet.
//
// 58 is not a power of two, so digits come from division; the lookup table
// and a fixed buffer keep it to one allocation.
func encodeBase58(v uint64) string {
	return encodeDivisive(v, encodeBase58Map)
}

// decodeBase58 decodes a base58 string to uint64.
func decodeBase58(s string) (uint64, error) {
	return decodeDivisive(s, MaxBase58Len, 58, &decodeBase58Map, ErrInvalidBase58)
}

// encodeBase62 encodes v to URL-safe base62.
func encodeBase62(v uint64) string {
	return encodeDivisive(v, encodeBase62Map)
}

// decodeBase62 decodes a base62 string to uint64.
func decodeBase62(s string) (uint64, error) {
	return decodeDivisive(s, MaxBase62Len, 62, &decodeBase62Map, ErrInvalidBase62)
}

func encodeDivisive(v uint64, alphabet string) string {
	base := uint64(len(alphabet))
	if v < base {
		return string(alphabet[v])
	}

	var b [MaxBase58Len]byte
	i := len(b)
	for v > 0 {
		i--
		b[i] = alphabet[v%base]
		v /= base
	}
	return string(b[i:])
}

func decodeDivisive(s string, maxLen int, base uint64, table *[256]byte, invalid error) (uint64, error) {
	if len(s) == 0 {
		return 0, invalid
	}
	if len(s) > maxLen {
		return 0, ErrStringTooLong
	}

	var v uint64
	for i := 0; i < len(s); i++ {
		d := uint64(table[s[i]])
		if d == 0xFF {
			return 0, invalid
		}
		// v*base + d must not exceed MaxUint64
		if v > (math.MaxUint64-d)/base {
			return 0, ErrIntegerOverflow
		}
		v = v*base + d
	}
	return v, nil
}
