package bookings

import (
	"context"
	"time"

	"dinely/pkg/logger"
)

// Reaper periodically releases expired seat holds. Derived availability
// already ignores expired locks, so the sweep only settles rows; it never
// races the admission path.
type Reaper struct {
	service Service
	config  *ReaperConfig
	log     *logger.Logger
	done    chan struct{}
}

type ReaperConfig struct {
	SweepInterval time.Duration
}

func DefaultReaperConfig() *ReaperConfig {
	return &ReaperConfig{
		SweepInterval: 1 * time.Minute,
	}
}

func NewReaper(service Service, config *ReaperConfig, log *logger.Logger) *Reaper {
	if config == nil {
		config = DefaultReaperConfig()
	}
	return &Reaper{
		service: service,
		config:  config,
		log:     log,
		done:    make(chan struct{}),
	}
}

// Start launches the sweep loop. It returns immediately.
func (r *Reaper) Start(ctx context.Context) {
	go r.run(ctx)
	r.log.Info("expired hold reaper started", "interval", r.config.SweepInterval)
}

// Stop signals the sweep loop to exit.
func (r *Reaper) Stop() {
	close(r.done)
	r.log.Info("expired hold reaper stopped")
}

func (r *Reaper) run(ctx context.Context) {
	ticker := time.NewTicker(r.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.sweep(ctx)
		case <-r.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (r *Reaper) sweep(ctx context.Context) {
	count, err := r.service.SweepExpired(ctx, time.Now())
	if err != nil {
		r.log.ErrorWithContext(ctx, "expiry sweep failed", err, nil)
		return
	}
	if count > 0 {
		r.log.InfoWithContext(ctx, "expiry sweep released holds",
			map[string]interface{}{"count": count})
	}
}
