// Package campaign runs the independent trials of a randomized validation
// campaign on a bounded team of goroutines.
//
// Trials must be independent: each one owns its random stream and writes
// only its own result slot. Callers fold the per-trial results in trial
// order afterwards, so a campaign's report never depends on the number of
// jobs or on goroutine scheduling.
package campaign

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/dsnet/golib/unitconv"
	"golang.org/x/sync/errgroup"
)

// Options controls trial execution.
type Options struct {
	// Name labels progress log lines.
	Name string

	// Jobs is the number of trials run simultaneously.
	// Values <= 0 default to runtime.NumCPU().
	Jobs int

	// Logger receives progress reports. Nil discards them.
	Logger *slog.Logger

	// ProgressInterval is the period of progress reports. Zero disables them.
	ProgressInterval time.Duration
}

func (o Options) jobs() int {
	if o.Jobs <= 0 {
		return runtime.NumCPU()
	}
	return o.Jobs
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

// ForEachTrial calls run once for every trial index in [0, trials).
//
// Returns the context error if the campaign was cancelled; trials that had
// not started by then are skipped.
func ForEachTrial(ctx context.Context, trials int, opts Options, run func(trial int)) error {
	logger := opts.logger()
	var completed atomic.Int64

	stopProgress := startProgress(logger, opts, trials, &completed)
	defer stopProgress()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.jobs())

	for i := 0; i < trials; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			run(i)
			completed.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// startProgress periodically logs the trial rate until the returned stop
// function is called.
func startProgress(logger *slog.Logger, opts Options, total int, completed *atomic.Int64) func() {
	if opts.ProgressInterval <= 0 {
		return func() {}
	}

	done := make(chan struct{})
	printerDone := make(chan struct{})
	go func() {
		defer close(printerDone)
		ticker := time.NewTicker(opts.ProgressInterval)
		defer ticker.Stop()
		startTime := time.Now()
		lastTime := startTime
		lastCount := int64(0)
		for {
			select {
			case <-done:
				return
			case curTime := <-ticker.C:
				cur := completed.Load()
				rate := float64(cur-lastCount) / curTime.Sub(lastTime).Seconds()
				lastTime = curTime
				lastCount = cur

				logger.Info("campaign progress",
					"campaign", opts.Name,
					"elapsed", curTime.Sub(startTime).Round(time.Second),
					"trials_per_second", unitconv.FormatPrefix(rate, unitconv.SI, 0),
					"completed", cur,
					"total", total,
				)
			}
		}
	}()

	return func() {
		close(done)
		<-printerDone
	}
}
