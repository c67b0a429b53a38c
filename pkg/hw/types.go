// Package hw defines the hardware capability the crossing controller
// depends on, and the pieces shared by its backends.
package hw

import (
	"fmt"
	"io"
)

// Device is the minimal hardware I/O capability of a crossing.
// Any error returned is an *AccessError and must be treated as fatal.
type Device interface {
	io.Closer
	// ReadInput reads the level of a digital input line.
	ReadInput(line string) (bool, error)
	// WriteOutput drives a digital output line.
	WriteOutput(line string, on bool) error
	// SetServoAngle positions the gate servo, angle in degrees 0..180.
	SetServoAngle(degrees int) error
}

// NumSensors is the number of track sensors at a crossing.
const NumSensors = 4

// Lines identifies the physical lines wired to the crossing.
// Sensors are ordered: left approach, left leave, right approach, right leave.
type Lines struct {
	Sensors [NumSensors]string
	Lights  [2]string
	Buzzer  string
	Servo   string
}

// Outputs lists all digital output lines.
func (l Lines) Outputs() []string {
	return []string{l.Lights[0], l.Lights[1], l.Buzzer}
}

// Validate checks every line is assigned and no line is used twice.
func (l Lines) Validate() error {
	seen := make(map[string]string)
	check := func(role, line string) error {
		if line == "" {
			return fmt.Errorf("line for %s not specified", role)
		}
		if other, ok := seen[line]; ok {
			return fmt.Errorf("line %q used by both %s and %s", line, other, role)
		}
		seen[line] = role
		return nil
	}
	for n, line := range l.Sensors {
		if err := check(fmt.Sprintf("sensor %d", n+1), line); err != nil {
			return err
		}
	}
	for n, line := range l.Lights {
		if err := check(fmt.Sprintf("light %d", n+1), line); err != nil {
			return err
		}
	}
	if err := check("buzzer", l.Buzzer); err != nil {
		return err
	}
	return check("servo", l.Servo)
}
