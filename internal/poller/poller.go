// Package poller drives a snapshot source on a fixed cadence and hands each
// outcome to a single consumer.
package poller

import (
	"context"
	"time"

	"codeberg.org/mutker/zensensors/internal/collector"
	"codeberg.org/mutker/zensensors/internal/errors"
	"codeberg.org/mutker/zensensors/internal/logger"
	"codeberg.org/mutker/zensensors/internal/sensor"
)

// DefaultInterval is the fixed polling cadence.
const DefaultInterval = 250 * time.Millisecond

// Result is the outcome of one poll cycle. Exactly one of Snapshot and Err is set.
type Result struct {
	Snapshot *sensor.Snapshot
	Err      error
	At       time.Time
	Duration time.Duration
}

// Poller calls its source from a single goroutine. Results are delivered
// through a one-slot mailbox; an unread result is replaced by a newer one.
type Poller struct {
	source   collector.Source
	interval time.Duration
	log      logger.Logger
	results  chan Result
	lastCode errors.ErrorCode
}

type Option func(*Poller)

// WithInterval overrides DefaultInterval.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(p *Poller) {
		p.log = l
	}
}

func New(source collector.Source, opts ...Option) *Poller {
	p := &Poller{
		source:   source,
		interval: DefaultInterval,
		log:      logger.Default(),
		results:  make(chan Result, 1),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Results returns the mailbox. It is closed when Run returns.
func (p *Poller) Results() <-chan Result {
	return p.results
}

// Run polls immediately and then once per interval until ctx is done.
// Ticks that elapse while a poll is still running are dropped.
func (p *Poller) Run(ctx context.Context) error {
	defer close(p.results)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.log.Debug().Dur("interval", p.interval).Msg("Poller started")

	for {
		p.poll(ctx)

		select {
		case <-ctx.Done():
			p.log.Debug().Msg("Poller stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	start := time.Now()
	snapshot, err := p.source.Fetch(ctx)
	if ctx.Err() != nil {
		// shutting down; the outcome of an interrupted poll is meaningless
		return
	}

	res := Result{
		Snapshot: snapshot,
		Err:      err,
		At:       start,
		Duration: time.Since(start),
	}
	if err != nil {
		res.Snapshot = nil
	}

	if res.Duration > p.interval {
		p.log.Warn().
			Dur("duration", res.Duration).
			Dur("interval", p.interval).
			Msg("Poll overran interval, skipping missed ticks")
	}

	p.report(err)
	p.deliver(res)
}

// report logs an error once per run of identical error codes, and logs
// recovery when the run ends.
func (p *Poller) report(err error) {
	code := errors.CodeOf(err)
	if err != nil && code == "" {
		code = errors.ErrInternal
	}

	if code == p.lastCode {
		return
	}

	switch {
	case err == nil:
		p.log.Info().Str("previous_error", string(p.lastCode)).Msg("Sensor readings recovered")
	default:
		var appErr errors.Error
		if errors.As(err, &appErr) {
			p.log.ErrorWithContext(appErr, "poller", "fetch").Msg("Sensor poll failed")
		} else {
			p.log.Error().Err(err).Msg("Sensor poll failed")
		}
	}

	p.lastCode = code
}

func (p *Poller) deliver(res Result) {
	select {
	case p.results <- res:
		return
	default:
	}

	// Consumer is behind: drop the stale result.
	select {
	case <-p.results:
		p.log.Debug().Msg("Dropped unread result")
	default:
	}

	select {
	case p.results <- res:
	default:
	}
}
