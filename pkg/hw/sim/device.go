// Package sim provides a simulated crossing backend which keeps
// in-memory mirrors of every line and reports state transitions
// instead of touching hardware.
package sim

import (
	"fmt"
	"io"
	"sync"

	"github.com/golang/glog"
	"github.com/tiendc/go-deepcopy"

	"github.com/robotalks/crossing/pkg/hw"
)

// Device is the simulated hw.Device.
type Device struct {
	// Console receives a line per state transition, if set.
	Console io.Writer

	lines   hw.Lines
	lock    sync.Mutex
	inputs  map[string]bool
	outputs map[string]bool
	servo   int
	history []int
	faults  map[string]error
	closed  bool
}

// New creates a simulated device for the lines.
func New(lines hw.Lines) *Device {
	d := &Device{
		lines:   lines,
		inputs:  make(map[string]bool),
		outputs: make(map[string]bool),
		servo:   -1,
		faults:  make(map[string]error),
	}
	for _, line := range lines.Sensors {
		d.inputs[line] = false
	}
	for _, line := range lines.Outputs() {
		d.outputs[line] = false
	}
	return d
}

// Lines returns the lines the device was created with.
func (d *Device) Lines() hw.Lines {
	return d.lines
}

// ReadInput implements hw.Device.
func (d *Device) ReadInput(line string) (bool, error) {
	d.lock.Lock()
	defer d.lock.Unlock()
	if err := d.check("read", line); err != nil {
		return false, err
	}
	val, ok := d.inputs[line]
	if !ok {
		return false, hw.NewAccessError("read", line, hw.ErrUnknownLine)
	}
	return val, nil
}

// WriteOutput implements hw.Device.
func (d *Device) WriteOutput(line string, on bool) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if err := d.check("write", line); err != nil {
		return err
	}
	prev, ok := d.outputs[line]
	if !ok {
		return hw.NewAccessError("write", line, hw.ErrUnknownLine)
	}
	d.outputs[line] = on
	glog.V(4).Infof("GPIO %s set to %v", line, on)
	if prev != on {
		d.report("GPIO %s set to %s", line, level(on))
	}
	return nil
}

// SetServoAngle implements hw.Device.
func (d *Device) SetServoAngle(degrees int) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if err := d.check("set duty cycle", d.lines.Servo); err != nil {
		return err
	}
	degrees = hw.ClampAngle(degrees)
	d.history = append(d.history, degrees)
	if d.servo != degrees {
		pulse := hw.DefaultServoTiming.Pulse(degrees)
		d.report("Setting servo at PWM %s to angle %d (pulse %v)", d.lines.Servo, degrees, pulse)
	}
	d.servo = degrees
	return nil
}

// Close implements hw.Device.
func (d *Device) Close() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if !d.closed {
		d.closed = true
		d.report("Cleaning up simulated lines")
	}
	return nil
}

// SetInput sets the level of an input line.
func (d *Device) SetInput(line string, on bool) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if _, ok := d.inputs[line]; !ok {
		return fmt.Errorf("%q is not an input line: %w", line, hw.ErrUnknownLine)
	}
	if d.inputs[line] != on {
		d.report("Input %s is now %s", line, level(on))
	}
	d.inputs[line] = on
	return nil
}

// SetSensor sets the level of a sensor by its 1-based number.
func (d *Device) SetSensor(num int, on bool) error {
	if num < 1 || num > hw.NumSensors {
		return fmt.Errorf("sensor number %d out of range 1..%d", num, hw.NumSensors)
	}
	return d.SetInput(d.lines.Sensors[num-1], on)
}

// ClearSensors sets all sensors low.
func (d *Device) ClearSensors() {
	for n := 1; n <= hw.NumSensors; n++ {
		d.SetSensor(n, false)
	}
}

// Output returns the level last written to an output line.
func (d *Device) Output(line string) bool {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.outputs[line]
}

// Outputs returns a copy of all output levels.
func (d *Device) Outputs() map[string]bool {
	d.lock.Lock()
	defer d.lock.Unlock()
	var out map[string]bool
	if err := deepcopy.Copy(&out, d.outputs); err != nil {
		panic(err)
	}
	return out
}

// ServoAngle returns the last commanded angle, -1 if never commanded.
func (d *Device) ServoAngle() int {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.servo
}

// ServoHistory returns a copy of all commanded angles in order.
func (d *Device) ServoHistory() []int {
	d.lock.Lock()
	defer d.lock.Unlock()
	var history []int
	if err := deepcopy.Copy(&history, d.history); err != nil {
		panic(err)
	}
	return history
}

// FailLine makes every later access to line fail with err.
// A nil err clears the fault.
func (d *Device) FailLine(line string, err error) {
	d.lock.Lock()
	defer d.lock.Unlock()
	if err == nil {
		delete(d.faults, line)
		return
	}
	d.faults[line] = err
}

func (d *Device) check(op, line string) error {
	if d.closed {
		return hw.NewAccessError(op, line, hw.ErrClosed)
	}
	if err := d.faults[line]; err != nil {
		return hw.NewAccessError(op, line, err)
	}
	return nil
}

func (d *Device) report(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	glog.V(1).Info(msg)
	if d.Console != nil {
		fmt.Fprintln(d.Console, msg)
	}
}

func level(on bool) string {
	if on {
		return "1"
	}
	return "0"
}
