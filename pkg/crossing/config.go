package crossing

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/robotalks/crossing/pkg/env"
	"github.com/robotalks/crossing/pkg/hw"
)

// Config defines the configuration of a crossing controller.
type Config struct {
	// ID names the crossing in logs, defaults to the machine id.
	ID    string
	Lines hw.Lines

	SensorPeriod      time.Duration
	GuardPeriod       time.Duration
	AnnunciatorPeriod time.Duration
	OperatorPeriod    time.Duration

	GateSettle  time.Duration
	ResetSettle time.Duration
	ClosedAngle int
	OpenAngle   int

	Flashes           int
	FlashInterval     time.Duration
	AlternateInterval time.Duration

	// PINHash is the bcrypt hash of the operator PIN, empty for none.
	PINHash string
}

var defaultConfig = Config{
	Lines: hw.Lines{
		Sensors: [hw.NumSensors]string{"GPIO17", "GPIO27", "GPIO22", "GPIO23"},
		Lights:  [2]string{"GPIO5", "GPIO6"},
		Buzzer:  "GPIO13",
		Servo:   "GPIO18",
	},

	SensorPeriod:      100 * time.Millisecond,
	GuardPeriod:       10 * time.Millisecond,
	AnnunciatorPeriod: 100 * time.Millisecond,
	OperatorPeriod:    time.Second,

	GateSettle:  time.Second,
	ResetSettle: 500 * time.Millisecond,
	ClosedAngle: 90,
	OpenAngle:   180,

	Flashes:           10,
	FlashInterval:     100 * time.Millisecond,
	AlternateInterval: 500 * time.Millisecond,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	c := &defaultConfig
	flag.StringVar(&c.ID, "id", c.ID, "Crossing ID, defaults to the machine id.")
	flag.StringVar(&c.Lines.Sensors[0], "sensor1", c.Lines.Sensors[0], "Line of sensor 1 (train approach from left).")
	flag.StringVar(&c.Lines.Sensors[1], "sensor2", c.Lines.Sensors[1], "Line of sensor 2 (train leave from left).")
	flag.StringVar(&c.Lines.Sensors[2], "sensor3", c.Lines.Sensors[2], "Line of sensor 3 (train approach from right).")
	flag.StringVar(&c.Lines.Sensors[3], "sensor4", c.Lines.Sensors[3], "Line of sensor 4 (train leave from right).")
	flag.StringVar(&c.Lines.Lights[0], "light1", c.Lines.Lights[0], "Line of warning light 1.")
	flag.StringVar(&c.Lines.Lights[1], "light2", c.Lines.Lights[1], "Line of warning light 2.")
	flag.StringVar(&c.Lines.Buzzer, "buzzer", c.Lines.Buzzer, "Line of the buzzer.")
	flag.StringVar(&c.Lines.Servo, "servo", c.Lines.Servo, "PWM capable line of the gate servo.")
	flag.DurationVar(&c.SensorPeriod, "sensor-period", c.SensorPeriod, "Sensor poll period.")
	flag.DurationVar(&c.GuardPeriod, "guard-period", c.GuardPeriod, "Gate check period.")
	flag.DurationVar(&c.AnnunciatorPeriod, "annunciator-period", c.AnnunciatorPeriod, "Pause between annunciator cycles.")
	flag.DurationVar(&c.OperatorPeriod, "operator-period", c.OperatorPeriod, "Collision poll period of the operator console.")
	flag.DurationVar(&c.GateSettle, "gate-settle", c.GateSettle, "Delay before opening the gate once clear.")
	flag.DurationVar(&c.ResetSettle, "reset-settle", c.ResetSettle, "Delay holding off sensors after an operator reset.")
	flag.IntVar(&c.ClosedAngle, "gate-closed", c.ClosedAngle, "Servo angle (degrees) of the closed gate.")
	flag.IntVar(&c.OpenAngle, "gate-open", c.OpenAngle, "Servo angle (degrees) of the open gate.")
	flag.IntVar(&c.Flashes, "flashes", c.Flashes, "Number of flashes in a collision burst.")
	flag.DurationVar(&c.FlashInterval, "flash-interval", c.FlashInterval, "On and off time of a collision flash.")
	flag.DurationVar(&c.AlternateInterval, "alternate-interval", c.AlternateInterval, "Half period of the approach pattern.")
	flag.StringVar(&c.PINHash, "pin-hash", c.PINHash, "bcrypt hash of the operator PIN required to reset.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := c.Lines.Validate(); err != nil {
		return err
	}
	for _, angle := range []int{c.ClosedAngle, c.OpenAngle} {
		if angle != hw.ClampAngle(angle) {
			return fmt.Errorf("gate angle %d out of range %d..%d", angle, hw.MinAngle, hw.MaxAngle)
		}
	}
	if c.ClosedAngle == c.OpenAngle {
		return fmt.Errorf("open and closed gate angles must differ")
	}
	if c.Flashes < 0 {
		return fmt.Errorf("flashes must not be negative")
	}
	return nil
}

// NewController creates a controller on dev using the config.
// console receives operator facing messages, it may be nil.
func (c *Config) NewController(dev hw.Device, ack Acknowledger, console io.Writer) (*Controller, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	id := c.ID
	if id == "" {
		id = env.MachineID()
	}
	state := NewState()
	monitor := NewMonitor(dev, state, c.Lines.Sensors)
	monitor.Console = console
	return &Controller{
		ID:      id,
		Config:  c,
		Device:  dev,
		State:   state,
		Console: console,
		Monitor: monitor,
		Guard: &Guard{
			Device:      dev,
			State:       state,
			ClosedAngle: c.ClosedAngle,
			OpenAngle:   c.OpenAngle,
			Settle:      c.GateSettle,
		},
		Annunciator: &Annunciator{
			Device:            dev,
			State:             state,
			Lights:            c.Lines.Lights,
			Buzzer:            c.Lines.Buzzer,
			Flashes:           c.Flashes,
			FlashInterval:     c.FlashInterval,
			AlternateInterval: c.AlternateInterval,
		},
		Operator: &Operator{
			State:    state,
			Ack:      ack,
			Verifier: PINVerifier{Hash: c.PINHash},
			Settle:   c.ResetSettle,
			Console:  console,
		},
	}, nil
}
