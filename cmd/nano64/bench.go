package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sxyafiq/nano64"
)

// timeCheckInterval is how many IDs a worker generates between clock reads.
const timeCheckInterval = 1000

type benchOptions struct {
	duration   time.Duration
	goroutines int
	monotonic  bool
	track      bool
	limit      int64
}

// benchResult summarises one bench run.
type benchResult struct {
	Elapsed    time.Duration
	Generated  int64
	Unique     int64
	Collisions int64

	// Busiest millisecond and how many IDs (and collisions) it held.
	PeakMillis     int64
	PeakCount      int64
	PeakCollisions int64

	// Millisecond with the most collisions.
	WorstMillis     int64
	WorstCollisions int64

	Metrics *nano64.Metrics
}

// Rate returns IDs per second.
func (r benchResult) Rate() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Generated) / r.Elapsed.Seconds()
}

func (c *cli) newBenchCmd() *cobra.Command {
	opts := &benchOptions{}

	cmd := &cobra.Command{
		Use:     "bench",
		Aliases: []string{"benchmark", "b"},
		Short:   "Measure generation throughput and random-field collisions",
		Long: `Generate IDs as fast as possible from several goroutines for a fixed
duration, then report the rate, the number of duplicate IDs, and how the
busiest millisecond compares with the birthday bound for 2^20 random values.

Monotonic mode shares one generator, so it should report zero collisions.`,
		Example: `  nano64 bench --duration 2s
  nano64 bench --goroutines 8 --monotonic
  nano64 bench --track=false --duration 10s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.logger.Info("starting benchmark",
				"duration", opts.duration,
				"goroutines", opts.goroutines,
				"monotonic", opts.monotonic,
				"track_collisions", opts.track)

			res, err := runBench(cmd.Context(), opts)
			if err != nil {
				return err
			}
			printBenchResult(cmd.OutOrStdout(), opts, res)
			return nil
		},
	}

	f := cmd.Flags()
	f.DurationVarP(&opts.duration, "duration", "d", time.Second, "how long to generate for")
	f.IntVarP(&opts.goroutines, "goroutines", "g", runtime.GOMAXPROCS(0), "number of concurrent generators")
	f.BoolVarP(&opts.monotonic, "monotonic", "m", false, "use one shared monotonic generator")
	f.BoolVar(&opts.track, "track", true, "keep every ID to count collisions")
	f.Int64Var(&opts.limit, "limit", 20_000_000, "stop after this many IDs when tracking (0 for no limit)")
	return cmd
}

// runBench fans generation out over opts.goroutines workers until the
// duration elapses, ctx is done, or the tracking limit is reached.
func runBench(ctx context.Context, opts *benchOptions) (benchResult, error) {
	if opts.goroutines < 1 {
		return benchResult{}, fmt.Errorf("--goroutines must be at least 1, got %d", opts.goroutines)
	}
	if opts.duration <= 0 {
		return benchResult{}, fmt.Errorf("--duration must be positive, got %s", opts.duration)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	next := func(context.Context) (nano64.ID, error) { return nano64.GenerateDefault() }
	var gen *nano64.MonotonicGenerator
	if opts.monotonic {
		cfg := nano64.DefaultMonotonicConfig()
		cfg.OverflowPolicy = nano64.OverflowWait
		var err error
		if gen, err = nano64.NewMonotonic(cfg); err != nil {
			return benchResult{}, err
		}
		next = gen.GenerateNowWithContext
	}

	ctx, cancel := context.WithTimeout(ctx, opts.duration)
	defer cancel()

	var total atomic.Int64
	perWorker := make([][]nano64.ID, opts.goroutines)
	g, ctx := errgroup.WithContext(ctx)
	start := time.Now()

	for w := 0; w < opts.goroutines; w++ {
		g.Go(func() error {
			var local []nano64.ID
			defer func() { perWorker[w] = local }()

			for {
				for i := 0; i < timeCheckInterval; i++ {
					id, err := next(ctx)
					if err != nil {
						if ctx.Err() != nil {
							return nil
						}
						return err
					}
					if opts.track {
						local = append(local, id)
					}
				}
				n := total.Add(timeCheckInterval)
				if ctx.Err() != nil || (opts.track && opts.limit > 0 && n >= opts.limit) {
					return nil
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		return benchResult{}, fmt.Errorf("benchmark failed: %w", err)
	}

	res := benchResult{Elapsed: time.Since(start)}
	if opts.track {
		analyzeIDs(&res, perWorker)
	} else {
		res.Generated = total.Load()
	}
	if gen != nil {
		m := gen.GetMetrics()
		res.Metrics = &m
	}
	return res, nil
}

// analyzeIDs counts duplicates overall and per millisecond.
func analyzeIDs(res *benchResult, perWorker [][]nano64.ID) {
	var n int
	for _, ids := range perWorker {
		n += len(ids)
	}

	seen := make(map[nano64.ID]struct{}, n)
	perMillis := make(map[int64]int64)
	collisionsPerMillis := make(map[int64]int64)

	for _, ids := range perWorker {
		for _, id := range ids {
			ts := id.Timestamp()
			perMillis[ts]++
			if _, dup := seen[id]; dup {
				res.Collisions++
				collisionsPerMillis[ts]++
				continue
			}
			seen[id] = struct{}{}
		}
	}

	res.Generated = int64(n)
	res.Unique = int64(len(seen))

	for ts, count := range perMillis {
		if count > res.PeakCount || (count == res.PeakCount && ts < res.PeakMillis) {
			res.PeakMillis, res.PeakCount = ts, count
		}
	}
	res.PeakCollisions = collisionsPerMillis[res.PeakMillis]

	for ts, count := range collisionsPerMillis {
		if count > res.WorstCollisions || (count == res.WorstCollisions && ts < res.WorstMillis) {
			res.WorstMillis, res.WorstCollisions = ts, count
		}
	}
}

// expectedCollisions is the birthday approximation n²/2R for n IDs drawn
// in one millisecond from R = 2^20 random values.
func expectedCollisions(n int64) float64 {
	const r = float64(nano64.MaxRandom + 1)
	f := float64(n)
	return f * f / (2 * r)
}

// safeRatePerMillis is the per-millisecond rate at which the collision
// risk is about 1%.
func safeRatePerMillis() float64 {
	const r = float64(nano64.MaxRandom + 1)
	return math.Sqrt(2 * r * 0.01)
}

func printBenchResult(w io.Writer, opts *benchOptions, res benchResult) {
	fmt.Fprintf(w, "Benchmark (%d goroutines, monotonic=%v)\n", opts.goroutines, opts.monotonic)
	fmt.Fprintf(w, "  Duration:       %v\n", res.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "  Generated:      %d IDs\n", res.Generated)
	fmt.Fprintf(w, "  Rate:           %.0f IDs/sec (%.2f IDs/ms)\n", res.Rate(), res.Rate()/1000)

	if res.Metrics != nil {
		fmt.Fprintf(w, "  Overflows:      %d (waited %v)\n",
			res.Metrics.SequenceOverflow, time.Duration(res.Metrics.WaitTimeUs)*time.Microsecond)
		fmt.Fprintf(w, "  Clock backward: %d\n", res.Metrics.ClockBackward)
	}

	if !opts.track {
		return
	}

	collisionPct := 0.0
	if res.Generated > 0 {
		collisionPct = float64(res.Collisions) / float64(res.Generated) * 100
	}
	fmt.Fprintf(w, "  Unique:         %d\n", res.Unique)
	fmt.Fprintf(w, "  Collisions:     %d (%.6f%%)\n", res.Collisions, collisionPct)
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Peak millisecond:\n")
	fmt.Fprintf(w, "  Timestamp:      %d (%d IDs, %d collisions)\n", res.PeakMillis, res.PeakCount, res.PeakCollisions)
	if res.WorstCollisions > 0 {
		fmt.Fprintf(w, "  Worst ms:       %d (%d collisions)\n", res.WorstMillis, res.WorstCollisions)
	}

	expected := expectedCollisions(res.PeakCount)
	safe := safeRatePerMillis()
	fmt.Fprintf(w, "  Expected:       %.2f collisions at %d IDs/ms\n", expected, res.PeakCount)
	if expected > 0 && res.PeakCollisions > 0 {
		fmt.Fprintf(w, "  Observed/exp.:  %.1fx\n", float64(res.PeakCollisions)/expected)
	}
	fmt.Fprintf(w, "  Safe rate:      ~%.0f IDs/ms for 1%% risk (peak is %.1fx)\n", safe, float64(res.PeakCount)/safe)
}
