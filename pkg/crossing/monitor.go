package crossing

import (
	"context"
	"io"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/crossing/pkg/hw"
)

// Sample is one reading of all sensors, indexed by sensor number - 1.
type Sample [hw.NumSensors]bool

// Rising returns the 1-based numbers of sensors which went low to high
// from prev to s, in sensor order.
func (s Sample) Rising(prev Sample) []int {
	var sensors []int
	for n := range s {
		if s[n] && !prev[n] {
			sensors = append(sensors, n+1)
		}
	}
	return sensors
}

// Event describes one processed sensor activation.
type Event struct {
	Sensor   int
	From, To Stage
	Outcome  Outcome
	Incident *Incident
}

// Monitor polls the sensors and runs the traversal sequence.
type Monitor struct {
	Device  hw.Device
	State   *State
	Sensors [hw.NumSensors]string
	Console io.Writer
	// Events receives processed activations if set. Sends never block.
	Events chan<- Event

	last Sample
}

// NewMonitor creates a Monitor.
func NewMonitor(dev hw.Device, state *State, sensors [hw.NumSensors]string) *Monitor {
	return &Monitor{Device: dev, State: state, Sensors: sensors}
}

// Read samples all sensors.
func (m *Monitor) Read() (Sample, error) {
	var s Sample
	for n, line := range m.Sensors {
		val, err := m.Device.ReadInput(line)
		if err != nil {
			return s, hw.NewAccessError("read", line, err)
		}
		s[n] = val
	}
	return s, nil
}

// Control implements framework.Controller.
// Nothing is read or processed while a reset is in progress.
func (m *Monitor) Control(ctx context.Context) error {
	if m.State.Snapshot().ResetInProgress {
		return nil
	}
	sample, err := m.Read()
	if err != nil {
		return err
	}
	now := time.Now()
	var events []Event
	m.State.Update(func(s *Snapshot) {
		if s.ResetInProgress {
			return
		}
		if s.Resync {
			s.Resync = false
			m.last = sample
			return
		}
		for _, sensor := range sample.Rising(m.last) {
			ev := Event{Sensor: sensor, From: s.Stage}
			ev.Outcome = s.Advance(sensor, now)
			ev.To, ev.Incident = s.Stage, s.Incident
			events = append(events, ev)
		}
		m.last = sample
	})
	for _, ev := range events {
		m.report(ev)
	}
	return nil
}

func (m *Monitor) report(ev Event) {
	announce(m.Console, "Sensor %d activated.", ev.Sensor)
	glog.V(1).Infof("sequence %s -> %s on sensor %d: %s", ev.From, ev.To, ev.Sensor, ev.Outcome)
	switch ev.Outcome {
	case OutcomeViolation:
		glog.Warning(&SequenceViolation{Incident: ev.Incident})
		announce(m.Console, "Collision detected.")
	case OutcomeComplete:
		announce(m.Console, "Full sequence completed. Crossing guard up, LEDs stopped flashing.")
	case OutcomeHalfLeft, OutcomeHalfRight:
		announce(m.Console, "Half sequence completed. Crossing guard down, LEDs flashing.")
	}
	if m.Events != nil {
		select {
		case m.Events <- ev:
		default:
		}
	}
}
