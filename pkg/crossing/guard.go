package crossing

import (
	"context"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/crossing/pkg/framework"
	"github.com/robotalks/crossing/pkg/hw"
)

// Guard maps the approach flags onto the gate position.
// The gate closes as soon as a train approaches and opens only after
// both sides stayed clear for the settle delay.
type Guard struct {
	Device      hw.Device
	State       *State
	ClosedAngle int
	OpenAngle   int
	Settle      time.Duration
}

// Control implements framework.Controller.
func (g *Guard) Control(ctx context.Context) error {
	snap := g.State.Snapshot()
	if snap.Approaching() {
		if snap.Gate == GateClosed {
			return nil
		}
		return g.commandIf(GateClosed, Snapshot.Approaching)
	}
	if snap.Gate == GateOpen {
		return nil
	}
	if err := fx.Sleep(ctx, g.Settle); err != nil {
		return err
	}
	return g.commandIf(GateOpen, func(s Snapshot) bool { return !s.Approaching() })
}

// Command moves the gate regardless of the crossing state.
func (g *Guard) Command(pos GatePosition) error {
	return g.commandIf(pos, nil)
}

// commandIf moves the gate when cond holds on the state re-read under
// the lock, so the open angle is never written while a train approaches.
func (g *Guard) commandIf(pos GatePosition, cond func(Snapshot) bool) (err error) {
	g.State.Update(func(s *Snapshot) {
		if cond != nil && !cond(*s) {
			return
		}
		angle := g.OpenAngle
		if pos == GateClosed {
			angle = g.ClosedAngle
		}
		glog.V(1).Infof("gate %s (%d degrees)", pos, angle)
		if err = g.Device.SetServoAngle(angle); err != nil {
			err = hw.NewAccessError("set duty cycle", "servo", err)
			return
		}
		s.Gate = pos
	})
	return
}
