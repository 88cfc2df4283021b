// Package clock publishes the wall clock and current shift period to
// subscribers on a fixed tick.
package clock

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ehr/shifthandoff/internal/domain/status"
)

const (
	Topic     = "clock"
	EventTick = "clock.tick"
)

// Publisher delivers tick events.
type Publisher interface {
	Emit(ctx context.Context, topic, eventType, resourceID string, data interface{}) error
}

// Reading is the clock as shown to clients.
type Reading struct {
	Now         time.Time          `json:"now"`
	ShiftPeriod status.ShiftPeriod `json:"shift_period"`
	TimeZone    string             `json:"time_zone"`
}

// Clock reads time in the facility time zone.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

func New(loc *time.Location) *Clock {
	if loc == nil {
		loc = time.Local
	}
	return &Clock{loc: loc, now: time.Now}
}

// SetNow replaces the time source.
func (c *Clock) SetNow(now func() time.Time) {
	c.now = now
}

func (c *Clock) Location() *time.Location {
	return c.loc
}

// Now returns the current time in the facility time zone.
func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

func (c *Clock) Read() Reading {
	now := c.Now()
	return Reading{
		Now:         now,
		ShiftPeriod: status.ShiftPeriodAt(now),
		TimeZone:    c.loc.String(),
	}
}

// Ticker publishes a Reading every interval until its context ends.
type Ticker struct {
	clock    *Clock
	pub      Publisher
	interval time.Duration
	logger   zerolog.Logger
}

func NewTicker(c *Clock, pub Publisher, interval time.Duration, logger zerolog.Logger) *Ticker {
	return &Ticker{
		clock:    c,
		pub:      pub,
		interval: interval,
		logger:   logger.With().Str("component", "clock").Logger(),
	}
}

// Run blocks, publishing ticks until ctx is cancelled. The shift period
// change is logged once per transition.
func (t *Ticker) Run(ctx context.Context) {
	tk := time.NewTicker(t.interval)
	defer tk.Stop()

	last := t.clock.Read().ShiftPeriod
	t.logger.Debug().Dur("interval", t.interval).Str("shift_period", string(last)).Msg("clock started")
	for {
		select {
		case <-ctx.Done():
			t.logger.Debug().Msg("clock stopped")
			return
		case <-tk.C:
			r := t.clock.Read()
			if r.ShiftPeriod != last {
				t.logger.Info().Str("from", string(last)).Str("to", string(r.ShiftPeriod)).Msg("shift period changed")
				last = r.ShiftPeriod
			}
			if err := t.pub.Emit(ctx, Topic, EventTick, "", r); err != nil {
				t.logger.Warn().Err(err).Msg("failed to publish tick")
			}
		}
	}
}
