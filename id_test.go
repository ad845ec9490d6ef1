package nano64

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

// testID is a fixed ID with distinct nibbles in every position.
const testID = ID(0x123456789ABCDEF0)

// TestIDEncodings tests all encoding formats
func TestIDEncodings(t *testing.T) {
	id, err := GenerateDefault()
	if err != nil {
		t.Fatalf("GenerateDefault() error = %v", err)
	}

	tests := []struct {
		name   string
		encode func(ID) string
		decode func(string) (ID, error)
	}{
		{"String", ID.String, ParseString},
		{"Hex", ID.Hex, ParseHex},
		{"Decimal", ID.Decimal, ParseDecimal},
		{"Base2", ID.Base2, ParseBase2},
		{"Base32", ID.Base32, ParseBase32},
		{"Base36", ID.Base36, ParseBase36},
		{"Base58", ID.Base58, ParseBase58},
		{"Base62", ID.Base62, ParseBase62},
		{"Base64", ID.Base64, ParseBase64},
		{"Base64URL", ID.Base64URL, ParseBase64URL},
	}

	for _, value := range []ID{0, 1, testID, id, ID(^uint64(0))} {
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				encoded := tt.encode(value)
				decoded, err := tt.decode(encoded)
				if err != nil {
					t.Fatalf("%s decode error = %v (encoded: %s)", tt.name, err, encoded)
				}
				if decoded != value {
					t.Errorf("%s: decoded = %d, want %d (encoded: %s)",
						tt.name, decoded, value, encoded)
				}
			})
		}
	}
}

func TestIDHex(t *testing.T) {
	tests := []struct {
		id   ID
		want string
	}{
		{0, "00000000000-00000"},
		{testID, "123456789AB-CDEF0"},
		{ID(^uint64(0)), "FFFFFFFFFFF-FFFFF"},
		{ID(1), "00000000000-00001"},
		{ID(1 << 20), "00000000001-00000"},
	}

	for _, tt := range tests {
		if got := tt.id.Hex(); got != tt.want {
			t.Errorf("Hex() = %s, want %s", got, tt.want)
		}
		if got := tt.id.String(); got != tt.want {
			t.Errorf("String() = %s, want %s", got, tt.want)
		}
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ID
		wantErr bool
	}{
		{"canonical", "123456789AB-CDEF0", testID, false},
		{"no separator", "123456789ABCDEF0", testID, false},
		{"lowercase", "123456789ab-cdef0", testID, false},
		{"0x prefix", "0x123456789ABCDEF0", testID, false},
		{"0X prefix with separator", "0X123456789AB-CDEF0", testID, false},
		{"all zero", "0000000000000000", 0, false},
		{"empty", "", 0, true},
		{"too short", "123456789AB-CDEF", 0, true},
		{"too long", "123456789AB-CDEF01", 0, true},
		{"separator misplaced", "1234567890-ABCDEF", 0, true},
		{"non-hex", "123456789AB-CDEFG", 0, true},
		{"non-hex no separator", "123456789ABCDEFZ", 0, true},
		{"only prefix", "0x", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHex(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidHexFormat) {
					t.Fatalf("ParseHex(%q) error = %v, want ErrInvalidHexFormat", tt.input, err)
				}
				if !IsParseError(err) {
					t.Errorf("ParseHex(%q) error should be *ParseError, got %T", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseHex(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseHex(%q) = %X, want %X", tt.input, uint64(got), uint64(tt.want))
			}
		})
	}
}

func TestMustParseHex_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParseHex() should panic on invalid input")
		}
	}()
	MustParseHex("nope")
}

func TestIDBytes(t *testing.T) {
	b := testID.Bytes()
	want := [ByteLen]byte{0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC, 0xDE, 0xF0}
	if b != want {
		t.Errorf("Bytes() = %X, want %X", b, want)
	}

	if got := FromBytes(b); got != testID {
		t.Errorf("FromBytes() = %X, want %X", uint64(got), uint64(testID))
	}

	got, err := ParseBytes(b[:])
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	if got != testID {
		t.Errorf("ParseBytes() = %X, want %X", uint64(got), uint64(testID))
	}

	for _, n := range []int{0, 7, 9, 16} {
		if _, err := ParseBytes(make([]byte, n)); !errors.Is(err, ErrInvalidLength) {
			t.Errorf("ParseBytes(%d bytes) error = %v, want ErrInvalidLength", n, err)
		}
	}
}

func TestIDOrderingAcrossForms(t *testing.T) {
	ids := []ID{0, 1, 0xFFFFF, 1 << 20, testID, ID(^uint64(0) - 1), ID(^uint64(0))}

	for i := 1; i < len(ids); i++ {
		a, b := ids[i-1], ids[i]
		if a.Compare(b) != -1 {
			t.Errorf("Compare(%s, %s) != -1", a, b)
		}
		if a.Hex() >= b.Hex() {
			t.Errorf("Hex order broken: %s >= %s", a.Hex(), b.Hex())
		}
		ab, bb := a.Bytes(), b.Bytes()
		if string(ab[:]) >= string(bb[:]) {
			t.Errorf("Bytes order broken: %X >= %X", ab, bb)
		}
	}
}

// TestIDJSON tests JSON marshaling
func TestIDJSON(t *testing.T) {
	type payload struct {
		ID   ID     `json:"id"`
		Name string `json:"name"`
	}

	data, err := json.Marshal(payload{ID: testID, Name: "x"})
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if want := `{"id":"123456789AB-CDEF0","name":"x"}`; string(data) != want {
		t.Errorf("json.Marshal() = %s, want %s", data, want)
	}

	var decoded payload
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if decoded.ID != testID {
		t.Errorf("decoded ID = %s, want %s", decoded.ID, testID)
	}
}

func TestIDUnmarshalJSON_Forms(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ID
		wantErr bool
	}{
		{"hex string", `"123456789AB-CDEF0"`, testID, false},
		{"bare hex string", `"123456789abcdef0"`, testID, false},
		{"decimal string", `"1311768467463790320"`, testID, false},
		{"number", `1311768467463790320`, testID, false},
		{"garbage string", `"hello"`, 0, true},
		{"negative number", `-1`, 0, true},
		{"bool", `true`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			err := json.Unmarshal([]byte(tt.input), &id)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Unmarshal(%s) should fail", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", tt.input, err)
			}
			if id != tt.want {
				t.Errorf("Unmarshal(%s) = %s, want %s", tt.input, id, tt.want)
			}
		})
	}
}

func TestIDText(t *testing.T) {
	text, err := testID.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText() error = %v", err)
	}
	if string(text) != "123456789AB-CDEF0" {
		t.Errorf("MarshalText() = %s", text)
	}

	var id ID
	if err := id.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText() error = %v", err)
	}
	if id != testID {
		t.Errorf("UnmarshalText() = %s, want %s", id, testID)
	}

	if err := id.UnmarshalText([]byte("bad")); !errors.Is(err, ErrInvalidHexFormat) {
		t.Errorf("UnmarshalText(bad) error = %v, want ErrInvalidHexFormat", err)
	}
}

// TestIDBinary tests binary marshaling
func TestIDBinary(t *testing.T) {
	data, err := testID.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary() error = %v", err)
	}
	if len(data) != ByteLen {
		t.Errorf("MarshalBinary() length = %d, want %d", len(data), ByteLen)
	}

	var id ID
	if err := id.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary() error = %v", err)
	}
	if id != testID {
		t.Errorf("UnmarshalBinary() = %s, want %s", id, testID)
	}

	if err := id.UnmarshalBinary([]byte{1, 2, 3}); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("UnmarshalBinary(short) error = %v, want ErrInvalidLength", err)
	}
}

func TestIDSQL(t *testing.T) {
	v, err := testID.Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	if v.(int64) != int64(testID) {
		t.Errorf("Value() = %v, want %d", v, int64(testID))
	}

	b := testID.Bytes()
	tests := []struct {
		name    string
		src     interface{}
		want    ID
		wantErr bool
	}{
		{"int64", int64(testID), testID, false},
		{"negative int64 bit pattern", int64(-1), ID(^uint64(0)), false},
		{"blob", b[:], testID, false},
		{"hex text", "123456789AB-CDEF0", testID, false},
		{"hex bytes", []byte("123456789AB-CDEF0"), testID, false},
		{"decimal text", "1311768467463790320", testID, false},
		{"nil", nil, 0, false},
		{"float", 1.5, 0, true},
		{"garbage", "hello", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := ID(99)
			err := id.Scan(tt.src)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Scan(%v) should fail", tt.src)
				}
				return
			}
			if err != nil {
				t.Fatalf("Scan(%v) error = %v", tt.src, err)
			}
			if id != tt.want {
				t.Errorf("Scan(%v) = %s, want %s", tt.src, id, tt.want)
			}
		})
	}
}

// TestIDComponents tests component extraction
func TestIDComponents(t *testing.T) {
	ts, r := testID.Components()
	if ts != 0x123456789AB || r != 0xCDEF0 {
		t.Errorf("Components() = (%X, %X), want (123456789AB, CDEF0)", ts, r)
	}

	id, _ := Encode(1759864645209, 0x5861C)
	if id.Timestamp() != 1759864645209 {
		t.Errorf("Timestamp() = %d", id.Timestamp())
	}
	if id.Random() != 0x5861C {
		t.Errorf("Random() = %X", id.Random())
	}
	if got := id.Time().UnixMilli(); got != 1759864645209 {
		t.Errorf("Time().UnixMilli() = %d", got)
	}
	if !strings.Contains(id.GoString(), "random=362012") {
		t.Errorf("GoString() = %s", id.GoString())
	}
	if !ID(0).IsZero() || id.IsZero() {
		t.Error("IsZero() mismatch")
	}
}

// TestIDComparison tests comparison methods
func TestIDComparison(t *testing.T) {
	a, _ := Encode(1000, 1)
	b, _ := Encode(1000, 2)

	if !a.Before(b) || a.After(b) {
		t.Error("a should be before b")
	}
	if !b.After(a) || b.Before(a) {
		t.Error("b should be after a")
	}
	if !a.Equal(a) || a.Equal(b) {
		t.Error("Equal() mismatch")
	}
	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Error("Compare() mismatch")
	}
}

// TestIDAge tests age calculation
func TestIDAge(t *testing.T) {
	id, _ := GenerateAt(time.Now().Add(-time.Second), nil)
	age := id.Age()
	if age < time.Second || age > 5*time.Second {
		t.Errorf("Age() = %v, want ~1s", age)
	}
}

// TestIDSharding tests sharding methods
func TestIDSharding(t *testing.T) {
	counts := make([]int, 8)
	for i := 0; i < 8000; i++ {
		id, _ := Generate(1000, nil)
		shard := id.Shard(8)
		if shard >= 8 {
			t.Fatalf("Shard(8) = %d, out of range", shard)
		}
		counts[shard]++
	}
	for i, c := range counts {
		if c == 0 {
			t.Errorf("shard %d received no IDs", i)
		}
	}

	if testID.Shard(0) != 0 {
		t.Error("Shard(0) should return 0")
	}

	day := 24 * time.Hour
	id, _ := Encode(3*day.Milliseconds()+5, 0)
	if got := id.ShardByTime(day); got != 3 {
		t.Errorf("ShardByTime(24h) = %d, want 3", got)
	}
	if got := id.ShardByTime(0); got != 0 {
		t.Errorf("ShardByTime(0) = %d, want 0", got)
	}
}

// TestIDFormat tests the Format method
func TestIDFormat(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"", testID.Hex()},
		{"hex", testID.Hex()},
		{"decimal", testID.Decimal()},
		{"d", testID.Decimal()},
		{"binary", testID.Base2()},
		{"base32", testID.Base32()},
		{"base36", testID.Base36()},
		{"base58", testID.Base58()},
		{"base62", testID.Base62()},
		{"base64", testID.Base64()},
		{"base64url", testID.Base64URL()},
		{"unknown", testID.Hex()},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			got := testID.Format(tt.format)
			if got != tt.want {
				t.Errorf("Format(%q) = %s, want %s", tt.format, got, tt.want)
			}
			back, err := ParseFormat(got, tt.format)
			if err != nil {
				t.Fatalf("ParseFormat(%q, %q) error = %v", got, tt.format, err)
			}
			if back != testID {
				t.Errorf("ParseFormat(%q, %q) = %s, want %s", got, tt.format, back, testID)
			}
		})
	}

	data, err := json.Marshal(IDWithFormat{ID: testID, Format: "base62"})
	if err != nil {
		t.Fatalf("json.Marshal(IDWithFormat) error = %v", err)
	}
	if want := `"` + testID.Base62() + `"`; string(data) != want {
		t.Errorf("IDWithFormat JSON = %s, want %s", data, want)
	}
}

// TestInvalidEncodings tests error handling for invalid encodings
func TestInvalidEncodings(t *testing.T) {
	tests := []struct {
		name    string
		decode  func(string) (ID, error)
		input   string
		wantErr error
	}{
		{"Base32 invalid char", ParseBase32, "0OIl", ErrInvalidBase32},
		{"Base32 empty", ParseBase32, "", ErrInvalidBase32},
		{"Base32 too long", ParseBase32, "yyyyyyyyyyyyyy", ErrStringTooLong},
		{"Base32 overflow", ParseBase32, "9999999999999", ErrIntegerOverflow},
		{"Base58 invalid char", ParseBase58, "0OIl", ErrInvalidBase58},
		{"Base58 overflow", ParseBase58, "ZZZZZZZZZZZ", ErrIntegerOverflow},
		{"Base62 invalid char", ParseBase62, "!!", ErrInvalidBase62},
		{"Base62 too long", ParseBase62, "000000000000", ErrStringTooLong},
		{"Base64 wrong length", ParseBase64, "AAAA", ErrInvalidBase64},
		{"Decimal overflow", ParseDecimal, "18446744073709551616", ErrInvalidDecimal},
		{"Base36 invalid", ParseBase36, "!", ErrInvalidBase36},
		{"Base2 invalid", ParseBase2, "102", ErrInvalidBase2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.decode(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("decode(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

// ============================================================================
// Benchmarks
// ============================================================================

func BenchmarkIDEncodings(b *testing.B) {
	b.Run("Hex", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = testID.Hex()
		}
	})
	b.Run("Bytes", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = testID.Bytes()
		}
	})
	b.Run("Base58", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = testID.Base58()
		}
	})
	b.Run("Base62", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = testID.Base62()
		}
	})
}

func BenchmarkIDParsing(b *testing.B) {
	hex := testID.Hex()
	b.Run("Hex", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _ = ParseHex(hex)
		}
	})
	bytes := testID.Bytes()
	b.Run("Bytes", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = ParseBytes(bytes[:])
		}
	})
}
