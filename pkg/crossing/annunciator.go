package crossing

import (
	"context"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/crossing/pkg/framework"
	"github.com/robotalks/crossing/pkg/hw"
)

// Pattern is the warning output selected for one annunciator cycle.
type Pattern int

// Patterns in priority order, lowest first.
const (
	PatternIdle Pattern = iota
	PatternApproach
	PatternCollision
)

// String implements fmt.Stringer.
func (p Pattern) String() string {
	switch p {
	case PatternCollision:
		return "collision"
	case PatternApproach:
		return "approach"
	}
	return "idle"
}

// SelectPattern picks the pattern for s: collision over approach over idle.
func SelectPattern(s Snapshot) Pattern {
	switch {
	case s.Collision:
		return PatternCollision
	case s.Approaching():
		return PatternApproach
	}
	return PatternIdle
}

// Annunciator drives the warning lights and the buzzer.
type Annunciator struct {
	Device hw.Device
	State  *State
	Lights [2]string
	Buzzer string

	// Flashes is the number of flashes in a collision burst, each
	// FlashInterval on then FlashInterval off.
	Flashes       int
	FlashInterval time.Duration
	// AlternateInterval is the half period of the approach pattern.
	AlternateInterval time.Duration

	phase   bool
	pattern Pattern
}

// Control implements framework.Controller.
func (a *Annunciator) Control(ctx context.Context) error {
	pattern := SelectPattern(a.State.Snapshot())
	if pattern != a.pattern {
		glog.V(1).Infof("annunciator %s -> %s", a.pattern, pattern)
		a.pattern = pattern
	}
	switch pattern {
	case PatternCollision:
		return a.burst(ctx)
	case PatternApproach:
		return a.alternate(ctx)
	}
	return a.Off()
}

// Off forces lights and buzzer off. Every output is attempted even
// when an earlier one fails.
func (a *Annunciator) Off() error {
	var errs fx.AggregatedError
	errs.Add(
		a.write(a.Buzzer, false),
		a.write(a.Lights[0], false),
		a.write(a.Lights[1], false),
	)
	return errs.Aggregate()
}

// burst runs the whole collision pattern from one decision; state
// changes during the burst are not observed.
func (a *Annunciator) burst(ctx context.Context) error {
	if err := a.write(a.Buzzer, true); err != nil {
		return err
	}
	for i := 0; i < a.Flashes; i++ {
		if err := a.lights(true, true); err != nil {
			return err
		}
		if err := fx.Sleep(ctx, a.FlashInterval); err != nil {
			return err
		}
		if err := a.lights(false, false); err != nil {
			return err
		}
		if err := fx.Sleep(ctx, a.FlashInterval); err != nil {
			return err
		}
	}
	return a.Off()
}

func (a *Annunciator) alternate(ctx context.Context) error {
	a.phase = !a.phase
	if err := a.write(a.Buzzer, false); err != nil {
		return err
	}
	if err := a.lights(a.phase, !a.phase); err != nil {
		return err
	}
	return fx.Sleep(ctx, a.AlternateInterval)
}

func (a *Annunciator) lights(first, second bool) error {
	if err := a.write(a.Lights[0], first); err != nil {
		return err
	}
	return a.write(a.Lights[1], second)
}

func (a *Annunciator) write(line string, on bool) error {
	return hw.NewAccessError("write", line, a.Device.WriteOutput(line, on))
}
