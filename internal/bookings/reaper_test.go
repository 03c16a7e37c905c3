package bookings

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dinely/pkg/logger"
)

// sweepRecorder counts the sweeps the reaper triggers. The embedded Service
// stays nil; the reaper only calls SweepExpired.
type sweepRecorder struct {
	Service
	mu    sync.Mutex
	calls int
}

func (r *sweepRecorder) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return 0, nil
}

func (r *sweepRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestReaperSweepsOnInterval(t *testing.T) {
	recorder := &sweepRecorder{}
	reaper := NewReaper(recorder, &ReaperConfig{SweepInterval: 10 * time.Millisecond}, logger.GetDefault())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reaper.Start(ctx)
	require.Eventually(t, func() bool {
		return recorder.count() >= 2
	}, time.Second, 5*time.Millisecond)
	reaper.Stop()

	// Let any in-flight sweep finish before sampling.
	time.Sleep(20 * time.Millisecond)
	settled := recorder.count()
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, settled, recorder.count(), "reaper must not sweep after Stop")
}

func TestReaperStopsOnContextCancel(t *testing.T) {
	recorder := &sweepRecorder{}
	reaper := NewReaper(recorder, &ReaperConfig{SweepInterval: 10 * time.Millisecond}, logger.GetDefault())

	ctx, cancel := context.WithCancel(context.Background())
	reaper.Start(ctx)
	cancel()

	time.Sleep(30 * time.Millisecond)
	settled := recorder.count()
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, settled, recorder.count())
}
