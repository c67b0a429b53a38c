package framework

import (
	"context"
	"time"

	"github.com/golang/glog"
)

// DefaultInterval is used when a Loop is created without an interval.
const DefaultInterval = 100 * time.Millisecond

// Loop runs a Controller repeatedly at its own cadence.
// The pause is taken after each iteration completes, so an iteration
// which sleeps internally delays the next one instead of piling up ticks.
type Loop struct {
	Interval   time.Duration
	Controller Controller

	name string
}

// NewLoop creates a Loop.
func NewLoop(name string, interval time.Duration, ctl Controller) *Loop {
	return &Loop{name: name, Interval: interval, Controller: ctl}
}

// Name implements Named.
func (l *Loop) Name() string {
	return l.name
}

// Run implements Runnable.
// It stops with ctx.Err() when the context is done, or with the first
// error returned by the controller.
func (l *Loop) Run(ctx context.Context) error {
	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := l.Controller.Control(ctx); err != nil {
			if !stopped(err) {
				glog.Errorf("Loop[%s] controller error: %v", l.name, err)
			}
			return err
		}
		if err := Sleep(ctx, interval); err != nil {
			return err
		}
	}
}
