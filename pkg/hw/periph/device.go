// Package periph implements the crossing hardware on periph.io, which
// drives GPIO lines and PWM through the host drivers (sysfs, bcm283x, ...).
// Lines are addressed by their periph names, e.g. "GPIO17".
package periph

import (
	"fmt"
	"sync"

	"github.com/golang/glog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	fx "github.com/robotalks/crossing/pkg/framework"
	"github.com/robotalks/crossing/pkg/hw"
)

// Device is the periph.io backed hw.Device.
type Device struct {
	Timing hw.ServoTiming

	lines hw.Lines
	pins  map[string]gpio.PinIO
	servo gpio.PinIO
	lock  sync.Mutex
}

// Open initializes the host drivers and configures all lines.
func Open(lines hw.Lines) (*Device, error) {
	if err := lines.Validate(); err != nil {
		return nil, err
	}
	if _, err := host.Init(); err != nil {
		return nil, hw.NewAccessError("init", "host", err)
	}
	return New(lines)
}

// New configures lines already registered in gpioreg:
// sensors as inputs, lights and buzzer as low outputs.
func New(lines hw.Lines) (*Device, error) {
	d := &Device{
		Timing: hw.DefaultServoTiming,
		lines:  lines,
		pins:   make(map[string]gpio.PinIO),
	}
	for _, line := range lines.Sensors {
		pin, err := lookup(line)
		if err != nil {
			return nil, err
		}
		glog.V(1).Infof("Initializing GPIO pin %s as in", pin.Name())
		if err := pin.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
			return nil, hw.NewAccessError("configure input", line, err)
		}
		d.pins[line] = pin
	}
	for _, line := range lines.Outputs() {
		pin, err := lookup(line)
		if err != nil {
			return nil, err
		}
		glog.V(1).Infof("Initializing GPIO pin %s as out", pin.Name())
		if err := pin.Out(gpio.Low); err != nil {
			return nil, hw.NewAccessError("configure output", line, err)
		}
		d.pins[line] = pin
	}
	servo, err := lookup(lines.Servo)
	if err != nil {
		return nil, err
	}
	glog.V(1).Infof("Initializing PWM on %s", servo.Name())
	d.servo = servo
	return d, nil
}

func lookup(line string) (gpio.PinIO, error) {
	pin := gpioreg.ByName(line)
	if pin == nil {
		return nil, hw.NewAccessError("open", line, hw.ErrUnknownLine)
	}
	return pin, nil
}

// ReadInput implements hw.Device.
func (d *Device) ReadInput(line string) (bool, error) {
	pin, err := d.pin("read", line)
	if err != nil {
		return false, err
	}
	return pin.Read() == gpio.High, nil
}

// WriteOutput implements hw.Device.
func (d *Device) WriteOutput(line string, on bool) error {
	pin, err := d.pin("write", line)
	if err != nil {
		return err
	}
	level := gpio.Low
	if on {
		level = gpio.High
	}
	return hw.NewAccessError("write", line, pin.Out(level))
}

// SetServoAngle implements hw.Device.
func (d *Device) SetServoAngle(degrees int) error {
	d.lock.Lock()
	servo := d.servo
	d.lock.Unlock()
	if servo == nil {
		return hw.NewAccessError("set duty cycle", d.lines.Servo, hw.ErrClosed)
	}
	duty := gpio.Duty(d.Timing.Duty(degrees, int64(gpio.DutyMax)))
	freq := physic.Frequency(d.Timing.Frequency()) * physic.Hertz
	glog.V(4).Infof("servo %s angle %d duty %s", d.lines.Servo, degrees, duty)
	return hw.NewAccessError("set duty cycle", d.lines.Servo, servo.PWM(duty, freq))
}

// Close drives outputs low and halts all lines.
func (d *Device) Close() error {
	d.lock.Lock()
	pins, servo := d.pins, d.servo
	d.pins, d.servo = nil, nil
	d.lock.Unlock()
	var errs fx.AggregatedError
	for _, line := range d.lines.Outputs() {
		if pin := pins[line]; pin != nil {
			errs.Add(hw.NewAccessError("write", line, pin.Out(gpio.Low)))
		}
	}
	for line, pin := range pins {
		glog.V(1).Infof("Cleaning up GPIO pin %s", line)
		errs.Add(hw.NewAccessError("halt", line, pin.Halt()))
	}
	if servo != nil {
		glog.V(1).Infof("Cleaning up PWM on %s", servo.Name())
		errs.Add(hw.NewAccessError("halt", d.lines.Servo, servo.Halt()))
	}
	return errs.Aggregate()
}

func (d *Device) pin(op, line string) (gpio.PinIO, error) {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.pins == nil {
		return nil, hw.NewAccessError(op, line, hw.ErrClosed)
	}
	pin, ok := d.pins[line]
	if !ok {
		return nil, hw.NewAccessError(op, line, fmt.Errorf("%w: not configured", hw.ErrUnknownLine))
	}
	return pin, nil
}
