package campaign

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForEachTrial_RunsEveryTrialOnce(t *testing.T) {
	for _, jobs := range []int{0, 1, 4, 16} {
		counts := make([]int32, 500)
		err := ForEachTrial(context.Background(), len(counts), Options{Jobs: jobs}, func(trial int) {
			atomic.AddInt32(&counts[trial], 1)
		})
		require.NoError(t, err)
		for i, c := range counts {
			assert.Equal(t, int32(1), c, "trial %d with jobs=%d", i, jobs)
		}
	}
}

func TestForEachTrial_ZeroTrials(t *testing.T) {
	called := false
	err := ForEachTrial(context.Background(), 0, Options{}, func(int) { called = true })
	require.NoError(t, err)
	assert.False(t, called)
}

func TestForEachTrial_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var mu sync.Mutex
	ran := 0

	err := ForEachTrial(ctx, 1000, Options{Jobs: 1}, func(trial int) {
		mu.Lock()
		defer mu.Unlock()
		ran++
		if trial == 10 {
			cancel()
		}
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, ran, 1000)
}

func TestForEachTrial_LogsProgress(t *testing.T) {
	var mu sync.Mutex
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&lockedWriter{mu: &mu, w: &buf}, nil))

	opts := Options{Name: "slow", Jobs: 2, Logger: logger, ProgressInterval: 5 * time.Millisecond}
	err := ForEachTrial(context.Background(), 10, opts, func(int) {
		time.Sleep(5 * time.Millisecond)
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, buf.String(), "campaign progress")
	assert.Contains(t, buf.String(), "campaign=slow")
}

type lockedWriter struct {
	mu *sync.Mutex
	w  *bytes.Buffer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
