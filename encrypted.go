// Package nano64 - encrypted.go seals IDs in AES-256-GCM envelopes.
//
// A plain ID exposes its creation time to anyone who can read it. The
// EncryptionFactory hides it: every ID is sealed with a fresh 12-byte nonce
// and the envelope is what leaves the process.
//
// # Envelope Layout (36 bytes)
//
//	┌──────────────┬──────────────────────┬──────────────────────┐
//	│ nonce (12)   │ ciphertext (8)       │ GCM tag (16)         │
//	└──────────────┴──────────────────────┴──────────────────────┘
//
// The hex form is 72 uppercase characters. Envelopes carry no ordering:
// two encryptions of the same ID differ.

package nano64

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32

	// NonceSize is the GCM nonce length in bytes.
	NonceSize = 12

	// TagSize is the GCM authentication tag length in bytes.
	TagSize = 16

	// PayloadSize is the envelope length: nonce, ciphertext and tag.
	PayloadSize = NonceSize + ByteLen + TagSize

	// EncryptedHexLen is the length of the envelope's hex form.
	EncryptedHexLen = PayloadSize * 2
)

// EncryptionFactory produces and opens encrypted IDs under one key.
//
// # Thread Safety
//
// EncryptionFactory is safe for concurrent use. The AEAD is immutable after
// construction and every call draws its own nonce.
type EncryptionFactory struct {
	aead  cipher.AEAD
	clock Clock
	rng   RandomSource
	nonce io.Reader
}

// NewEncryptionFactory creates a factory for a 32-byte AES-256 key.
//
// Nil clock and rng default to SystemClock and CryptoRandom. Nonces always
// come from crypto/rand regardless of rng.
//
// Returns a *KeyLengthError (ErrInvalidKeyLength) for any other key length.
//
// Example:
//
//	key := make([]byte, nano64.KeySize)
//	rand.Read(key)
//	factory, err := nano64.NewEncryptionFactory(key, nil, nil)
//	enc, err := factory.GenerateEncryptedNow()
//	fmt.Println(enc.Hex()) // 72 hex characters
func NewEncryptionFactory(key []byte, clock Clock, rng RandomSource) (*EncryptionFactory, error) {
	if len(key) != KeySize {
		return nil, &KeyLengthError{Length: len(key)}
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyLength, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("nano64: initialize GCM: %w", err)
	}

	return &EncryptionFactory{
		aead:  aead,
		clock: orDefaultClock(clock),
		rng:   orDefaultRandom(rng),
		nonce: rand.Reader,
	}, nil
}

// EncryptedFactory is an alias of NewEncryptionFactory.
func EncryptedFactory(key []byte, clock Clock, rng RandomSource) (*EncryptionFactory, error) {
	return NewEncryptionFactory(key, clock, rng)
}

// Encrypt seals an existing ID under a fresh nonce.
//
// Returns a *RandomSourceError (ErrRandomSourceFailure) if the nonce cannot
// be read.
func (f *EncryptionFactory) Encrypt(id ID) (EncryptedID, error) {
	var out EncryptedID
	out.id = id

	nonce := out.payload[:NonceSize]
	if _, err := io.ReadFull(f.nonce, nonce); err != nil {
		return EncryptedID{}, &RandomSourceError{Err: err}
	}

	plain := id.Bytes()
	// Seal appends ciphertext and tag after the nonce, in place
	f.aead.Seal(out.payload[NonceSize:NonceSize], nonce, plain[:], nil)
	return out, nil
}

// GenerateEncrypted generates an ID for timestamp and seals it.
func (f *EncryptionFactory) GenerateEncrypted(timestamp int64) (EncryptedID, error) {
	id, err := Generate(timestamp, f.rng)
	if err != nil {
		return EncryptedID{}, err
	}
	return f.Encrypt(id)
}

// GenerateEncryptedNow generates an ID for the factory's clock and seals it.
func (f *EncryptionFactory) GenerateEncryptedNow() (EncryptedID, error) {
	return f.GenerateEncrypted(f.clock.NowMillis())
}

// FromEncryptedBytes opens a 36-byte envelope.
//
// Returns:
//   - *ParseError (ErrInvalidEnvelopeLength) if b is not exactly 36 bytes
//   - ErrDecryptionFailed if the tag does not verify (tampered or wrong key)
func (f *EncryptionFactory) FromEncryptedBytes(b []byte) (EncryptedID, error) {
	if len(b) != PayloadSize {
		return EncryptedID{}, newParseError(fmt.Sprintf("%d bytes", len(b)), "envelope",
			fmt.Sprintf("must be exactly %d bytes", PayloadSize), ErrInvalidEnvelopeLength)
	}

	var out EncryptedID
	copy(out.payload[:], b)

	var plain [ByteLen]byte
	if _, err := f.aead.Open(plain[:0], out.payload[:NonceSize], out.payload[NonceSize:], nil); err != nil {
		return EncryptedID{}, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	out.id = FromBytes(plain)
	return out, nil
}

// FromEncryptedHex opens the 72-character hex form of an envelope.
//
// An optional 0x prefix and either letter case are accepted.
//
// Returns:
//   - *ParseError (ErrInvalidEnvelopeLength) for any length other than 72
//   - *ParseError (ErrInvalidHexFormat) for non-hex characters
//   - ErrDecryptionFailed if the tag does not verify
func (f *EncryptionFactory) FromEncryptedHex(s string) (EncryptedID, error) {
	h := trimHexPrefix(s)
	if len(h) != EncryptedHexLen {
		return EncryptedID{}, newParseError(s, "envelope",
			fmt.Sprintf("must be %d hex characters, got %d", EncryptedHexLen, len(h)), ErrInvalidEnvelopeLength)
	}

	var b [PayloadSize]byte
	if !decodeHexBytes(b[:], h) {
		return EncryptedID{}, newParseError(s, "envelope", "contains non-hex characters", ErrInvalidHexFormat)
	}
	return f.FromEncryptedBytes(b[:])
}

// EncryptedID pairs a plaintext ID with the envelope that seals it.
//
// The zero value is not a valid envelope.
type EncryptedID struct {
	id      ID
	payload [PayloadSize]byte
}

// ID returns the plaintext identifier.
func (e EncryptedID) ID() ID {
	return e.id
}

// Bytes returns the 36-byte envelope.
func (e EncryptedID) Bytes() [PayloadSize]byte {
	return e.payload
}

// Hex returns the envelope as 72 uppercase hex characters.
func (e EncryptedID) Hex() string {
	return encodeHexBytes(e.payload[:])
}

// String returns the envelope hex. It never reveals the plaintext.
func (e EncryptedID) String() string {
	return e.Hex()
}

// MarshalText implements encoding.TextMarshaler with the envelope hex.
func (e EncryptedID) MarshalText() ([]byte, error) {
	return []byte(e.Hex()), nil
}

// MarshalJSON implements json.Marshaler with the envelope hex.
func (e EncryptedID) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Hex())
}
