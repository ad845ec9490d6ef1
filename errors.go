// Package nano64 - errors.go provides the error taxonomy with rich context.
//
// Every failure is reported through a sentinel (usable with errors.Is) and,
// where extra detail helps debugging, a typed error carrying that detail
// (usable with errors.As). None of these errors are fatal; the library never
// retries or logs on its own.

package nano64

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors. Typed errors below unwrap to one of these.
var (
	// ErrTimestampOutOfRange is returned when a timestamp is negative or does
	// not fit in the 44-bit timestamp field.
	ErrTimestampOutOfRange = errors.New("timestamp out of range")

	// ErrRandomOutOfRange is returned when a caller-supplied random value does
	// not fit in the 20-bit random field.
	ErrRandomOutOfRange = errors.New("random value out of range")

	// ErrInvalidHexFormat is returned for hex input of the wrong length or
	// containing non-hex characters.
	ErrInvalidHexFormat = errors.New("invalid hex format")

	// ErrInvalidLength is returned when byte input is not exactly 8 bytes.
	ErrInvalidLength = errors.New("invalid byte length")

	// ErrInvalidKeyLength is returned when an encryption key is not 32 bytes.
	ErrInvalidKeyLength = errors.New("invalid key length")

	// ErrInvalidEnvelopeLength is returned when an encrypted payload is not
	// the fixed envelope size.
	ErrInvalidEnvelopeLength = errors.New("invalid encrypted envelope length")

	// ErrDecryptionFailed is returned when the authentication tag does not
	// verify: the envelope was tampered with or sealed under another key.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrSequenceOverflow is returned in monotonic mode when all 2^20 random
	// values of one millisecond have been handed out.
	ErrSequenceOverflow = errors.New("sequence overflow")

	// ErrRandomSourceFailure is returned when the random source (or the nonce
	// reader) fails.
	ErrRandomSourceFailure = errors.New("random source failure")

	// ErrInvalidConfig is returned when a MonotonicConfig fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrContextCanceled is returned when a context is done while waiting out
	// a sequence overflow.
	ErrContextCanceled = errors.New("context canceled")
)

// ============================================================================
// Custom Error Types
// ============================================================================

// RangeError reports a timestamp or random value that does not fit its field.
//
// Example usage:
//
//	if _, err := nano64.Encode(ts, r); err != nil {
//	    var rangeErr *nano64.RangeError
//	    if errors.As(err, &rangeErr) {
//	        log.Printf("%s=%d exceeds [%d, %d]", rangeErr.Field, rangeErr.Value, rangeErr.Min, rangeErr.Max)
//	    }
//	}
type RangeError struct {
	// Field is "timestamp" or "random".
	Field string

	// Value is the rejected value.
	Value int64

	// Min and Max are the inclusive bounds of the field.
	Min int64
	Max int64
}

// Error implements the error interface.
func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %d exceeds the %d-bit range [%d, %d]",
		e.Field, e.Value, e.bits(), e.Min, e.Max)
}

// Unwrap returns the matching sentinel for errors.Is() compatibility.
func (e *RangeError) Unwrap() error {
	if e.Field == fieldRandom {
		return ErrRandomOutOfRange
	}
	return ErrTimestampOutOfRange
}

func (e *RangeError) bits() int {
	if e.Field == fieldRandom {
		return RandomBits
	}
	return TimestampBits
}

const (
	fieldTimestamp = "timestamp"
	fieldRandom    = "random"
)

// ParseError reports input that could not be decoded.
type ParseError struct {
	// Input is the rejected input, truncated to 80 characters.
	Input string

	// Format names the representation being parsed ("hex", "bytes", "envelope", ...).
	Format string

	// Reason is a human-readable explanation.
	Reason string

	// Err is the sentinel this error unwraps to.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: cannot parse %s %q: %s", e.Err, e.Format, e.Input, e.Reason)
}

// Unwrap returns the underlying sentinel for errors.Is() compatibility.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// OverflowError reports exhaustion of the random field within one millisecond.
//
// The generator does not wait on its own unless configured with OverflowWait;
// callers typically retry on the next millisecond:
//
//	id, err := gen.Generate(ts)
//	if overflowErr, ok := nano64.GetOverflowError(err); ok {
//	    log.Printf("millisecond %d exhausted", overflowErr.Timestamp)
//	}
type OverflowError struct {
	// Timestamp is the saturated millisecond.
	Timestamp int64

	// RequestedTimestamp is the timestamp the caller asked for. It is lower
	// than Timestamp when the clock moved backward.
	RequestedTimestamp int64

	// MaxRandom is the largest random value of the field.
	MaxRandom uint32

	// WaitDuration is how long the generator waited before giving up
	// (zero unless OverflowWait was in effect).
	WaitDuration time.Duration
}

// Error implements the error interface.
func (e *OverflowError) Error() string {
	return fmt.Sprintf("sequence overflow: generated >%d IDs in 1ms (timestamp=%d, requested=%d, waited=%v)",
		e.MaxRandom, e.Timestamp, e.RequestedTimestamp, e.WaitDuration)
}

// Unwrap returns the underlying error for errors.Is() compatibility.
func (e *OverflowError) Unwrap() error {
	return ErrSequenceOverflow
}

// RandomSourceError wraps a failure of an injected RandomSource or of the
// nonce reader.
type RandomSourceError struct {
	// Bits is the number of bits requested (0 for nonce reads).
	Bits int

	// Err is the error reported by the source.
	Err error
}

// Error implements the error interface.
func (e *RandomSourceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("random source failure (bits=%d)", e.Bits)
	}
	return fmt.Sprintf("random source failure (bits=%d): %v", e.Bits, e.Err)
}

// Unwrap exposes both ErrRandomSourceFailure and the source's own error.
func (e *RandomSourceError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRandomSourceFailure}
	}
	return []error{ErrRandomSourceFailure, e.Err}
}

// KeyLengthError reports an AES key of the wrong size.
type KeyLengthError struct {
	// Length is the rejected key length in bytes.
	Length int
}

// Error implements the error interface.
func (e *KeyLengthError) Error() string {
	return fmt.Sprintf("AES-256 key must be %d bytes, got %d", KeySize, e.Length)
}

// Unwrap returns the underlying error for errors.Is() compatibility.
func (e *KeyLengthError) Unwrap() error {
	return ErrInvalidKeyLength
}

// ConfigError represents a configuration validation error.
//
// Example usage:
//
//	if _, err := nano64.NewMonotonic(cfg); err != nil {
//	    var configErr *nano64.ConfigError
//	    if errors.As(err, &configErr) {
//	        log.Printf("invalid %s=%s: %s", configErr.Field, configErr.Value, configErr.Reason)
//	    }
//	}
type ConfigError struct {
	// Field is the name of the configuration field that failed validation.
	Field string

	// Value is the invalid value (as string for logging).
	Value string

	// Reason is a human-readable explanation of why the value is invalid.
	Reason string

	// Constraint describes the valid range or constraint.
	Constraint string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s=%s (%s) - %s",
		e.Field, e.Value, e.Reason, e.Constraint)
}

// Unwrap returns the underlying error for errors.Is() compatibility.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// ============================================================================
// Error Helper Functions
// ============================================================================

// IsRangeError checks if an error is or wraps a RangeError.
func IsRangeError(err error) bool {
	var rangeErr *RangeError
	return errors.As(err, &rangeErr)
}

// IsParseError checks if an error is or wraps a ParseError.
func IsParseError(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}

// IsOverflowError checks if an error is or wraps an OverflowError.
//
// Example:
//
//	if _, err := gen.GenerateNow(); nano64.IsOverflowError(err) {
//	    time.Sleep(time.Millisecond)
//	}
func IsOverflowError(err error) bool {
	var overflowErr *OverflowError
	return errors.As(err, &overflowErr)
}

// IsConfigError checks if an error is or wraps a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// GetRangeError extracts the RangeError from an error chain.
func GetRangeError(err error) (*RangeError, bool) {
	var rangeErr *RangeError
	if errors.As(err, &rangeErr) {
		return rangeErr, true
	}
	return nil, false
}

// GetParseError extracts the ParseError from an error chain.
func GetParseError(err error) (*ParseError, bool) {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return parseErr, true
	}
	return nil, false
}

// GetOverflowError extracts the OverflowError from an error chain.
//
// Returns the OverflowError and true if found, nil and false otherwise.
func GetOverflowError(err error) (*OverflowError, bool) {
	var overflowErr *OverflowError
	if errors.As(err, &overflowErr) {
		return overflowErr, true
	}
	return nil, false
}

// GetConfigError extracts the ConfigError from an error chain.
func GetConfigError(err error) (*ConfigError, bool) {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr, true
	}
	return nil, false
}

// ============================================================================
// Error Constructor Helpers
// ============================================================================

func newTimestampRangeError(ts int64) *RangeError {
	return &RangeError{Field: fieldTimestamp, Value: ts, Min: 0, Max: MaxTimestamp}
}

func newRandomRangeError(r uint32) *RangeError {
	return &RangeError{Field: fieldRandom, Value: int64(r), Min: 0, Max: MaxRandom}
}

// newParseError truncates long inputs so error strings stay bounded.
func newParseError(input, format, reason string, sentinel error) *ParseError {
	if len(input) > 80 {
		input = input[:77] + "..."
	}
	return &ParseError{Input: input, Format: format, Reason: reason, Err: sentinel}
}

func newConfigError(field, value, reason, constraint string) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Reason:     reason,
		Constraint: constraint,
	}
}

func newOverflowError(ts, requested int64, waited time.Duration) *OverflowError {
	return &OverflowError{
		Timestamp:          ts,
		RequestedTimestamp: requested,
		MaxRandom:          MaxRandom,
		WaitDuration:       waited,
	}
}
