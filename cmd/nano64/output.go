package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sxyafiq/nano64"
)

// idInfo is the structured view of an ID printed by parse and decrypt.
type idInfo struct {
	Hex       string    `json:"hex" yaml:"hex"`
	Decimal   string    `json:"decimal" yaml:"decimal"`
	Timestamp int64     `json:"timestamp" yaml:"timestamp"`
	Time      time.Time `json:"time" yaml:"time"`
	Random    uint32    `json:"random" yaml:"random"`
	Base62    string    `json:"base62" yaml:"base62"`
	Base58    string    `json:"base58" yaml:"base58"`
	Base32    string    `json:"base32" yaml:"base32"`
	Bytes     string    `json:"bytes" yaml:"bytes"`
	Age       string    `json:"age" yaml:"age"`
	Encrypted string    `json:"encrypted,omitempty" yaml:"encrypted,omitempty"`
}

func newIDInfo(id nano64.ID) idInfo {
	ts, r := id.Components()
	b := id.Bytes()
	return idInfo{
		Hex:       id.Hex(),
		Decimal:   id.Decimal(),
		Timestamp: ts,
		Time:      id.Time().UTC(),
		Random:    r,
		Base62:    id.Base62(),
		Base58:    id.Base58(),
		Base32:    id.Base32(),
		Bytes:     fmt.Sprintf("%X", b[:]),
		Age:       id.Age().Round(time.Millisecond).String(),
	}
}

// writeInfo renders info as text, json or yaml.
func writeInfo(w io.Writer, info idInfo, output string) error {
	switch strings.ToLower(output) {
	case "json":
		return writeJSON(w, info)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(info); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		fmt.Fprintf(w, "Nano64 ID: %s\n", info.Hex)
		fmt.Fprintf(w, "\n")
		fmt.Fprintf(w, "Components:\n")
		fmt.Fprintf(w, "  Timestamp:  %s (%d ms since epoch)\n", info.Time.Format(time.RFC3339Nano), info.Timestamp)
		fmt.Fprintf(w, "  Random:     %d (0x%05X)\n", info.Random, info.Random)
		fmt.Fprintf(w, "\n")
		fmt.Fprintf(w, "Encodings:\n")
		fmt.Fprintf(w, "  Hex:        %s\n", info.Hex)
		fmt.Fprintf(w, "  Decimal:    %s\n", info.Decimal)
		fmt.Fprintf(w, "  Base62:     %s\n", info.Base62)
		fmt.Fprintf(w, "  Base58:     %s\n", info.Base58)
		fmt.Fprintf(w, "  Base32:     %s\n", info.Base32)
		fmt.Fprintf(w, "  Bytes:      %s\n", info.Bytes)
		if info.Encrypted != "" {
			fmt.Fprintf(w, "  Encrypted:  %s\n", info.Encrypted)
		}
		fmt.Fprintf(w, "\n")
		fmt.Fprintf(w, "Age:          %s\n", info.Age)
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", output)
	}
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// parseIDFlexible accepts the canonical hex form, decimal, or any of the
// compact encodings, tried in that order.
func parseIDFlexible(s string) (nano64.ID, error) {
	if id, err := nano64.ParseString(s); err == nil {
		return id, nil
	}
	if id, err := nano64.ParseBase62(s); err == nil {
		return id, nil
	}
	if id, err := nano64.ParseBase58(s); err == nil {
		return id, nil
	}
	id, err := nano64.ParseBase32(s)
	if err != nil {
		return 0, fmt.Errorf("unable to parse ID %q", s)
	}
	return id, nil
}

// parseIDAs parses s in the named encoding, or flexibly when format is "auto".
func parseIDAs(s, format string) (nano64.ID, error) {
	if format == "" || format == "auto" {
		return parseIDFlexible(s)
	}
	id, err := nano64.ParseFormat(s, strings.ToLower(format))
	if err != nil {
		return 0, fmt.Errorf("unable to parse ID %q as %s: %w", s, format, err)
	}
	return id, nil
}
