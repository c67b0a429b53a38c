package sim

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/crossing/pkg/cli/sh"
	"github.com/robotalks/crossing/pkg/hw/sim"
)

// DefaultPassInterval is the pause between sensor changes of sim.pass.
const DefaultPassInterval = 300 * time.Millisecond

// Sequences of sensors held high while a train passes.
var passes = map[string][][]int{
	"left":  {{1}, {1, 2}, {1, 2, 4}, {1, 2, 4, 3}},
	"right": {{3}, {3, 4}, {3, 4, 2}, {3, 4, 2, 1}},
}

// MustBeSimulated wraps command func requires the simulation backend.
func MustBeSimulated(fn func(c *ishell.Context, dev *sim.Device)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		dev, ok := sh.ShellFrom(c).Device.(*sim.Device)
		if !ok {
			c.Err(fmt.Errorf("not running on the simulation backend"))
			return
		}
		fn(c, dev)
	}
}

// Play drives the sensors through steps, each held for interval,
// then clears them.
func Play(dev *sim.Device, steps [][]int, interval time.Duration) error {
	for _, sensors := range steps {
		dev.ClearSensors()
		for _, n := range sensors {
			if err := dev.SetSensor(n, true); err != nil {
				return err
			}
		}
		time.Sleep(interval)
	}
	dev.ClearSensors()
	return nil
}

var (
	// SetCmd sets a simulated sensor.
	SetCmd = ishell.Cmd{
		Name:    "sim.set",
		Aliases: []string{"ss"},
		Help:    "SENSOR(1-4) on|off",
		Func: MustBeSimulated(func(c *ishell.Context, dev *sim.Device) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("SENSOR and on|off required"))
				return
			}
			num, err := strconv.Atoi(c.Args[0])
			if err != nil {
				c.Err(fmt.Errorf("Invalid SENSOR: %v", err))
				return
			}
			var on bool
			switch c.Args[1] {
			case "on", "1", "high":
				on = true
			case "off", "0", "low":
			default:
				c.Err(fmt.Errorf("Invalid level %q", c.Args[1]))
				return
			}
			if err := dev.SetSensor(num, on); err != nil {
				c.Err(err)
			}
		}),
	}

	// ClearCmd clears all simulated sensors.
	ClearCmd = ishell.Cmd{
		Name: "sim.clear",
		Help: "set all sensors low",
		Func: MustBeSimulated(func(c *ishell.Context, dev *sim.Device) {
			dev.ClearSensors()
		}),
	}

	// PassCmd plays a legal train traversal.
	PassCmd = ishell.Cmd{
		Name:    "sim.pass",
		Aliases: []string{"sp"},
		Help:    "left|right [INTERVAL(ms)]",
		Func: MustBeSimulated(func(c *ishell.Context, dev *sim.Device) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("direction required"))
				return
			}
			steps, ok := passes[c.Args[0]]
			if !ok {
				c.Err(fmt.Errorf("Invalid direction %q", c.Args[0]))
				return
			}
			interval := DefaultPassInterval
			if len(c.Args) > 1 {
				ms, err := strconv.Atoi(c.Args[1])
				if err != nil || ms <= 0 {
					c.Err(fmt.Errorf("Invalid INTERVAL %q", c.Args[1]))
					return
				}
				interval = time.Duration(ms) * time.Millisecond
			}
			if err := Play(dev, steps, interval); err != nil {
				c.Err(err)
			}
		}),
	}

	// StatusCmd prints the simulated outputs.
	StatusCmd = ishell.Cmd{
		Name: "sim.status",
		Help: "show simulated outputs and gate angle",
		Func: MustBeSimulated(func(c *ishell.Context, dev *sim.Device) {
			outputs := dev.Outputs()
			lines := make([]string, 0, len(outputs))
			for line := range outputs {
				lines = append(lines, line)
			}
			sort.Strings(lines)
			for _, line := range lines {
				c.Printf("GPIO %s = %v\n", line, outputs[line])
			}
			c.Printf("servo = %d degrees\n", dev.ServoAngle())
		}),
	}
)

func init() {
	sh.AddCmds(
		&SetCmd,
		&ClearCmd,
		&PassCmd,
		&StatusCmd,
	)
}
