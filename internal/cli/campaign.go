package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/semithue/internal/store"
)

// CampaignOptions holds the flags shared by fuzz and metamorphic.
type CampaignOptions struct {
	Trials   int
	MinLen   int
	MaxLen   int
	Samples  int
	Seed     uint64
	Jobs     int
	Progress time.Duration
	Database string

	// RunIDGenerator allows overriding the run ID generator (for testing).
	// If nil, defaults to store.UUIDv7Generator.
	RunIDGenerator store.RunIDGenerator
}

func (o *CampaignOptions) addFlags(cmd *cobra.Command, trials, minLen, maxLen, samples int, seed uint64) {
	cmd.Flags().IntVar(&o.Trials, "trials", trials, "number of random trials")
	cmd.Flags().IntVar(&o.MinLen, "min-len", minLen, "minimum length of random words")
	cmd.Flags().IntVar(&o.MaxLen, "max-len", maxLen, "maximum length of random words")
	cmd.Flags().IntVar(&o.Samples, "samples", samples, "maximum failures to show")
	cmd.Flags().Uint64Var(&o.Seed, "seed", seed, "random seed")
	cmd.Flags().IntVarP(&o.Jobs, "jobs", "j", runtime.NumCPU(), "parallel workers (results do not depend on it)")
	cmd.Flags().DurationVar(&o.Progress, "progress", 15*time.Second, "progress log interval")
	cmd.Flags().StringVar(&o.Database, "db", "", "SQLite database to record the run in (optional)")
}

// openStore opens the run store named by --db.
func (o *CampaignOptions) openStore() (*store.Store, error) {
	var opts []store.Option
	if o.RunIDGenerator != nil {
		opts = append(opts, store.WithRunIDGenerator(o.RunIDGenerator))
	}
	return store.Open(o.Database, opts...)
}

// campaignContext returns a context cancelled on SIGINT or SIGTERM, so a
// long campaign stops between trials.
func campaignContext(cmd *cobra.Command, logger *slog.Logger) (context.Context, context.CancelFunc) {
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, stopping campaign", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
