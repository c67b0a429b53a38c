package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/crossing/pkg/cli/sh"
	"github.com/robotalks/crossing/pkg/hw"
	"github.com/robotalks/crossing/pkg/hw/sim"
)

var testLines = hw.Lines{
	Sensors: [hw.NumSensors]string{"17", "27", "22", "23"},
	Lights:  [2]string{"5", "6"},
	Buzzer:  "13",
	Servo:   "pwm0",
}

func TestSetCommand(t *testing.T) {
	dev := sim.New(testLines)
	s := sh.New().Attach(nil, dev)

	require.NoError(t, s.Shell.Process("sim.set", "3", "on"))
	on, err := dev.ReadInput("22")
	require.NoError(t, err)
	require.True(t, on)

	require.NoError(t, s.Shell.Process("sim.set", "3", "off"))
	require.Error(t, s.Shell.Process("sim.set", "5", "on"))
	require.Error(t, s.Shell.Process("sim.set", "1", "maybe"))
	on, err = dev.ReadInput("22")
	require.NoError(t, err)
	require.False(t, on)
}

// wrapped hides the concrete simulated device.
type wrapped struct {
	*sim.Device
}

func TestPlayLeftPass(t *testing.T) {
	dev := sim.New(testLines)
	done := make(chan error, 1)
	go func() { done <- Play(dev, passes["left"], 20*time.Millisecond) }()

	var seen [][hw.NumSensors]bool
	timeout := time.After(2 * time.Second)
	for {
		select {
		case err := <-done:
			require.NoError(t, err)
			for n := 1; n <= hw.NumSensors; n++ {
				on, err := dev.ReadInput(testLines.Sensors[n-1])
				require.NoError(t, err)
				require.False(t, on)
			}
			// the final step holds all four sensors
			require.Contains(t, seen, [hw.NumSensors]bool{true, true, true, true})
			return
		case <-timeout:
			t.Fatal("pass did not finish")
		case <-time.After(time.Millisecond):
			var sample [hw.NumSensors]bool
			for n, line := range testLines.Sensors {
				sample[n], _ = dev.ReadInput(line)
			}
			seen = append(seen, sample)
		}
	}
}

func TestCommandsNeedSimulation(t *testing.T) {
	dev := sim.New(testLines)
	s := sh.New().Attach(nil, wrapped{dev})
	require.Error(t, s.Shell.Process("sim.set", "1", "on"))
	on, err := dev.ReadInput("17")
	require.NoError(t, err)
	require.False(t, on)
}
