package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

// cli holds state shared by every command after PersistentPreRunE runs.
type cli struct {
	configPath string
	debug      bool

	cfg    *Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "nano64",
		Short: "Nano64 CLI - compact 64-bit time-ordered ID generator",
		Long: `Nano64 IDs pack a 44-bit millisecond timestamp and 20 random bits into
a single 64-bit value that sorts by creation time.

Examples:
  # Generate a single ID
  nano64 generate

  # Generate 10 monotonic IDs in Base62
  nano64 generate --count 10 --monotonic --format base62

  # Inspect an ID
  nano64 parse 199C01B6659-5861C

  # Seal an ID with AES-256-GCM
  nano64 encrypt --key "$(nano64 keygen)"`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default is $HOME/.nano64/config.yaml)")
	flags.String("key", "", "AES-256 key as 64 hex characters (or NANO64_KEY)")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.BoolVar(&c.debug, "debug", false, "shorthand for --log-level debug")

	rootCmd.AddCommand(
		c.newGenerateCmd(),
		c.newParseCmd(),
		c.newEncodeCmd(),
		c.newEncryptCmd(),
		c.newDecryptCmd(),
		c.newKeygenCmd(),
		c.newBenchCmd(),
		c.newVersionCmd(),
	)

	return rootCmd
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	level := cfg.GetLogLevel()
	if c.debug {
		level = slog.LevelDebug
	}
	c.logger = slog.New(tint.NewHandler(cmd.ErrOrStderr(), &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    !isTerminal(cmd.ErrOrStderr()),
	}))
	slog.SetDefault(c.logger)

	c.logger.Debug("configuration loaded",
		"config", c.configPath,
		"format", cfg.Format,
		"overflow_wait", cfg.OverflowWait,
		"key_set", cfg.Key != "")
	return nil
}

func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func (c *cli) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "nano64 CLI version %s\n", version)
		},
	}
}
