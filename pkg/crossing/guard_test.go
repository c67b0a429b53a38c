package crossing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/crossing/pkg/hw"
	"github.com/robotalks/crossing/pkg/hw/sim"
)

func newTestGuard() (*Guard, *sim.Device) {
	dev := sim.New(testLines)
	return &Guard{
		Device:      dev,
		State:       NewState(),
		ClosedAngle: 90,
		OpenAngle:   180,
		Settle:      20 * time.Millisecond,
	}, dev
}

func TestGuardClosesImmediately(t *testing.T) {
	g, dev := newTestGuard()
	g.State.Update(func(s *Snapshot) { s.ApproachLeft = true })
	start := time.Now()
	require.NoError(t, g.Control(context.Background()))
	require.True(t, time.Since(start) < g.Settle)
	require.Equal(t, 90, dev.ServoAngle())
	require.Equal(t, GateClosed, g.State.Snapshot().Gate)

	// no repeated commands while closed
	require.NoError(t, g.Control(context.Background()))
	require.Equal(t, []int{90}, dev.ServoHistory())
}

func TestGuardOpensAfterSettle(t *testing.T) {
	g, dev := newTestGuard()
	g.State.Update(func(s *Snapshot) { s.ApproachRight = true })
	require.NoError(t, g.Control(context.Background()))
	g.State.Update(func(s *Snapshot) { s.ApproachRight = false })

	start := time.Now()
	require.NoError(t, g.Control(context.Background()))
	require.True(t, time.Since(start) >= g.Settle)
	require.Equal(t, 180, dev.ServoAngle())
	require.Equal(t, GateOpen, g.State.Snapshot().Gate)

	require.NoError(t, g.Control(context.Background()))
	require.Equal(t, []int{90, 180}, dev.ServoHistory())
}

func TestGuardNeverOpensWhileApproaching(t *testing.T) {
	g, dev := newTestGuard()
	require.NoError(t, g.Command(GateClosed))

	done := make(chan error, 1)
	go func() { done <- g.Control(context.Background()) }()
	// a train shows up during the settle delay
	time.Sleep(g.Settle / 4)
	g.State.Update(func(s *Snapshot) { s.ApproachLeft = true })
	require.NoError(t, <-done)

	require.Equal(t, []int{90}, dev.ServoHistory())
	require.Equal(t, GateClosed, g.State.Snapshot().Gate)
}

func TestGuardCanceledDuringSettle(t *testing.T) {
	g, dev := newTestGuard()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Equal(t, context.Canceled, g.Control(ctx))
	require.Equal(t, -1, dev.ServoAngle())
}

func TestGuardServoFailure(t *testing.T) {
	g, dev := newTestGuard()
	dev.FailLine(testLines.Servo, errors.New("EBUSY"))
	g.State.Update(func(s *Snapshot) { s.ApproachLeft = true })
	err := g.Control(context.Background())
	require.True(t, hw.IsAccessError(err))
	require.Equal(t, GateUnknown, g.State.Snapshot().Gate)
}
