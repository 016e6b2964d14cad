package gateway

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// DefaultPingInterval is the cadence of background liveness checks.
const DefaultPingInterval = 15 * time.Second

// Pinger tracks the liveness of one external service. Reads consult Alive()
// to short-circuit to "absent" instead of timing out against a dead service.
type Pinger struct {
	name     string
	interval time.Duration
	ping     func(ctx context.Context) error

	alive   atomic.Bool
	checkCh chan struct{}
}

// NewPinger creates a pinger that starts optimistic (alive) so the first
// request is attempted before the first background check completes.
func NewPinger(name string, interval time.Duration, ping func(ctx context.Context) error) *Pinger {
	p := &Pinger{
		name:     name,
		interval: interval,
		ping:     ping,
		checkCh:  make(chan struct{}, 1),
	}
	p.alive.Store(true)
	return p
}

// Alive reports the last known liveness of the service.
func (p *Pinger) Alive() bool {
	return p.alive.Load()
}

// CheckNow schedules an immediate liveness check. Non-blocking; a check
// already pending absorbs the request.
func (p *Pinger) CheckNow() {
	select {
	case p.checkCh <- struct{}{}:
	default:
	}
}

// Run pings at the configured cadence and on demand until ctx is cancelled.
func (p *Pinger) Run(ctx context.Context) {
	p.check(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.check(ctx)
		case <-p.checkCh:
			p.check(ctx)
		}
	}
}

func (p *Pinger) check(ctx context.Context) {
	err := p.ping(ctx)
	was := p.alive.Swap(err == nil)

	switch {
	case err != nil && was:
		slog.Warn("service went down", "service", p.name, "err", err)
	case err == nil && !was:
		slog.Info("service is back up", "service", p.name)
	}
}
