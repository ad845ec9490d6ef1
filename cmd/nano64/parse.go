package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (c *cli) newParseCmd() *cobra.Command {
	var output, from string

	cmd := &cobra.Command{
		Use:     "parse <id>",
		Aliases: []string{"p"},
		Short:   "Parse and inspect an ID",
		Example: `  nano64 parse 199C01B6659-5861C
  nano64 parse 0x199C01B66595861C --output json
  nano64 parse 1845351830215034396 --from decimal --output yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDAs(args[0], from)
			if err != nil {
				return err
			}
			c.logger.Debug("parsed ID", "input", args[0], "id", id)
			return writeInfo(cmd.OutOrStdout(), newIDInfo(id), output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, json, yaml")
	cmd.Flags().StringVar(&from, "from", "auto", "input encoding: auto, hex, decimal, base32, base58, base62, base64, ...")
	return cmd
}

func (c *cli) newEncodeCmd() *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:     "encode <id> <format>",
		Aliases: []string{"enc", "e"},
		Short:   "Convert an ID between encodings",
		Long: `Convert a Nano64 ID to a different encoding.

Formats:
  hex, x              Canonical hex (TTTTTTTTTTT-RRRRR)
  decimal, dec        Unsigned decimal
  base62, b62         URL-safe Base62
  base58, b58         Bitcoin-style Base58
  base32, b32         z-base-32
  base36, b36         Lowercase Base36
  base64, b64         Standard Base64
  base64url, b64url   URL-safe Base64
  binary, bin         Binary string`,
		Example: `  nano64 encode 199C01B6659-5861C base62
  nano64 encode 2cjJjOgPrlO hex --from base62`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDAs(args[0], from)
			if err != nil {
				return err
			}
			if !knownFormat(args[1]) {
				return fmt.Errorf("unknown format %q", args[1])
			}
			fmt.Fprintln(cmd.OutOrStdout(), id.Format(strings.ToLower(args[1])))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "auto", "input encoding")
	return cmd
}

func knownFormat(format string) bool {
	switch strings.ToLower(format) {
	case "hex", "x",
		"decimal", "dec", "d",
		"binary", "bin", "b",
		"base32", "b32", "32",
		"base36", "b36", "36",
		"base58", "b58", "58",
		"base62", "b62", "62",
		"base64", "b64", "64",
		"base64url", "b64url":
		return true
	}
	return false
}
