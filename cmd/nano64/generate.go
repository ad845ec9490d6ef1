package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sxyafiq/nano64"
)

type generateOptions struct {
	count     int
	monotonic bool
	timestamp int64
	format    string
	json      bool
}

func (c *cli) newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen", "g"},
		Short:   "Generate Nano64 IDs",
		Example: `  nano64 generate
  nano64 generate --count 1000 --monotonic --format base62
  nano64 generate --timestamp 1759864645209 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runGenerate(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&opts.count, "count", "n", 1, "number of IDs to generate")
	f.BoolVarP(&opts.monotonic, "monotonic", "m", false, "generate strictly increasing IDs")
	f.Int64Var(&opts.timestamp, "timestamp", -1, "use this millisecond timestamp instead of the clock")
	f.StringVarP(&opts.format, "format", "f", "", "output format: hex, decimal, base32, base36, base58, base62, base64, base64url, binary")
	f.BoolVar(&opts.json, "json", false, "output as JSON with full details")

	return cmd
}

func (c *cli) runGenerate(cmd *cobra.Command, opts *generateOptions) error {
	if opts.count < 1 {
		return fmt.Errorf("--count must be at least 1, got %d", opts.count)
	}
	format := opts.format
	if format == "" {
		format = c.cfg.Format
	}

	next, err := c.idSource(opts)
	if err != nil {
		return err
	}

	ids := make([]nano64.ID, opts.count)
	start := time.Now()
	for i := range ids {
		if ids[i], err = next(); err != nil {
			return fmt.Errorf("error generating ID %d of %d: %w", i+1, opts.count, err)
		}
	}
	duration := time.Since(start)

	out := cmd.OutOrStdout()
	if opts.json {
		return writeGenerateJSON(out, ids, duration, format, opts.monotonic)
	}
	for _, id := range ids {
		fmt.Fprintln(out, id.Format(strings.ToLower(format)))
	}

	// Show performance stats for large batches
	if opts.count > 100 {
		c.logger.Info("generated IDs",
			"count", opts.count,
			"duration", duration,
			"rate_per_sec", int64(float64(opts.count)/duration.Seconds()))
	}
	return nil
}

// idSource returns the generation function selected by opts.
func (c *cli) idSource(opts *generateOptions) (func() (nano64.ID, error), error) {
	if !opts.monotonic {
		if opts.timestamp >= 0 {
			return func() (nano64.ID, error) { return nano64.Generate(opts.timestamp, nil) }, nil
		}
		return nano64.GenerateDefault, nil
	}

	cfg := nano64.DefaultMonotonicConfig()
	if c.cfg.OverflowWait {
		cfg.OverflowPolicy = nano64.OverflowWait
	}
	if opts.timestamp >= 0 {
		cfg.Clock = nano64.ClockFunc(func() int64 { return opts.timestamp })
		// A frozen clock never moves forward, so waiting cannot help.
		cfg.OverflowPolicy = nano64.OverflowReturnError
	}
	gen, err := nano64.NewMonotonic(cfg)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("monotonic generator ready", "policy", gen.Policy())
	return gen.GenerateNow, nil
}

func writeGenerateJSON(w io.Writer, ids []nano64.ID, duration time.Duration, format string, monotonic bool) error {
	type idEntry struct {
		ID        nano64.IDWithFormat `json:"id"`
		Hex       string              `json:"hex"`
		Timestamp time.Time           `json:"timestamp"`
		Random    uint32              `json:"random"`
	}

	type output struct {
		Count      int       `json:"count"`
		Monotonic  bool      `json:"monotonic"`
		Format     string    `json:"format"`
		Duration   string    `json:"duration"`
		RatePerSec float64   `json:"rate_per_sec"`
		IDs        []idEntry `json:"ids"`
	}

	entries := make([]idEntry, len(ids))
	for i, id := range ids {
		entries[i] = idEntry{
			ID:        nano64.IDWithFormat{ID: id, Format: strings.ToLower(format)},
			Hex:       id.Hex(),
			Timestamp: id.Time().UTC(),
			Random:    id.Random(),
		}
	}

	rate := 0.0
	if s := duration.Seconds(); s > 0 {
		rate = float64(len(ids)) / s
	}
	return writeJSON(w, output{
		Count:      len(ids),
		Monotonic:  monotonic,
		Format:     format,
		Duration:   duration.String(),
		RatePerSec: rate,
		IDs:        entries,
	})
}
