// Nano64 CLI - Command-line tool for Nano64 ID generation and utilities
//
// Usage:
//
//	nano64 generate [flags]          Generate IDs
//	nano64 parse <id>                Parse and inspect an ID
//	nano64 encode <id> <format>      Convert an ID to a different format
//	nano64 encrypt [id]              Seal an ID in an AES-256-GCM envelope
//	nano64 decrypt <envelope>        Open an envelope
//	nano64 keygen                    Generate a random encryption key
//	nano64 bench                     Measure throughput and collisions
//	nano64 version                   Show version information
//
// Configuration is read from $HOME/.nano64/config.yaml (or --config), then
// NANO64_* environment variables, then flags.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
