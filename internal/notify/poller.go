package notify

import (
	"context"
	"log/slog"
	"time"
)

// Poller is the single process-wide background task that drives change
// detection. On every tick it runs each registered detector and broadcasts
// detected changes to the hub. Exactly one poller must run per process;
// a second instance would double-broadcast every change.
type Poller struct {
	registry *DetectorRegistry
	hub      *Hub
	interval time.Duration
	backoff  time.Duration
	logger   *slog.Logger
}

// NewPoller creates a poller with the given cadence. backoff is slept after
// an unexpected failure of a whole tick before the loop resumes.
func NewPoller(registry *DetectorRegistry, hub *Hub, interval, backoff time.Duration, logger *slog.Logger) *Poller {
	return &Poller{
		registry: registry,
		hub:      hub,
		interval: interval,
		backoff:  backoff,
		logger:   logger.With("component", "poller"),
	}
}

// Run blocks until ctx is cancelled. Per-project detection failures degrade
// that project's tick only; a failure of the tick machinery itself is
// recovered with a bounded backoff sleep. The only way out is cancellation,
// which the shutdown sequence must await.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("starting change poller",
		"interval", p.interval,
		"backoff", p.backoff,
	)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("change poller stopped")
			return ctx.Err()
		case <-ticker.C:
			if ok := p.safeTick(ctx); !ok {
				select {
				case <-ctx.Done():
					p.logger.Info("change poller stopped")
					return ctx.Err()
				case <-time.After(p.backoff):
				}
			}
		}
	}
}

// safeTick runs one tick, converting a panic in the loop's own control logic
// into a logged failure instead of terminating the task.
func (p *Poller) safeTick(ctx context.Context) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("poll tick panicked", "panic", r)
			ok = false
		}
	}()

	p.tick(ctx)
	return true
}

// tick polls every registered project once. Detector failures are logged and
// swallowed so one project's broken datastore never affects another's
// notifications.
func (p *Poller) tick(ctx context.Context) {
	for _, detector := range p.registry.Detectors() {
		if ctx.Err() != nil {
			return
		}

		changed, parameters, err := detector.Detect(ctx)
		if err != nil {
			p.logger.Warn("change detection failed",
				"project", detector.Project(),
				"error", err,
			)
			continue
		}
		if !changed || len(parameters) == 0 {
			continue
		}

		p.logger.Debug("parameter values changed",
			"project", detector.Project(),
			"parameters", parameters,
		)
		if err := p.hub.Broadcast(detector.Project(), ParameterValuesChanged(parameters)); err != nil {
			p.logger.Warn("broadcast failed",
				"project", detector.Project(),
				"error", err,
			)
		}
	}
}
