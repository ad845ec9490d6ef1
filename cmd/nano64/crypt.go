package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sxyafiq/nano64"
)

func (c *cli) factory() (*nano64.EncryptionFactory, error) {
	key, err := c.cfg.KeyBytes()
	if err != nil {
		return nil, err
	}
	return nano64.NewEncryptionFactory(key, nil, nil)
}

func (c *cli) newEncryptCmd() *cobra.Command {
	var from string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "encrypt [id]",
		Short: "Seal an ID (or a freshly generated one) in an AES-256-GCM envelope",
		Long: `Encrypt a Nano64 ID into a 72-character hex envelope.

The envelope is nonce(12) || ciphertext(8) || tag(16); every call uses a
fresh nonce, so encrypting the same ID twice gives different envelopes.
Without an argument a new ID is generated from the current time.`,
		Example: `  nano64 encrypt --key 000102...1F
  NANO64_KEY=$(nano64 keygen) nano64 encrypt 199C01B6659-5861C`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := c.factory()
			if err != nil {
				return err
			}

			var enc nano64.EncryptedID
			if len(args) == 1 {
				id, perr := parseIDAs(args[0], from)
				if perr != nil {
					return perr
				}
				enc, err = f.Encrypt(id)
			} else {
				enc, err = f.GenerateEncryptedNow()
			}
			if err != nil {
				return fmt.Errorf("error encrypting ID: %w", err)
			}

			c.logger.Debug("encrypted ID", "id", enc.ID())
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), struct {
					ID        nano64.ID          `json:"id"`
					Encrypted nano64.EncryptedID `json:"encrypted"`
				}{enc.ID(), enc})
			}
			fmt.Fprintln(cmd.OutOrStdout(), enc.Hex())
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "auto", "input encoding of the ID argument")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output the ID and envelope as JSON")
	return cmd
}

func (c *cli) newDecryptCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "decrypt <envelope>",
		Short: "Open an AES-256-GCM envelope and inspect the ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := c.factory()
			if err != nil {
				return err
			}
			enc, err := f.FromEncryptedHex(args[0])
			if err != nil {
				return err
			}
			info := newIDInfo(enc.ID())
			info.Encrypted = enc.Hex()
			return writeInfo(cmd.OutOrStdout(), info, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, json, yaml")
	return cmd
}

func (c *cli) newKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a random AES-256 key as 64 hex characters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key := make([]byte, nano64.KeySize)
			if _, err := rand.Read(key); err != nil {
				return &nano64.RandomSourceError{Err: err}
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(key))
			return nil
		},
	}
}
