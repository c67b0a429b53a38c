package periph

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"

	fx "github.com/robotalks/crossing/pkg/framework"
	"github.com/robotalks/crossing/pkg/hw"
)

func registerPins(t *testing.T, prefix string, base int) (hw.Lines, map[string]*gpiotest.Pin) {
	pins := make(map[string]*gpiotest.Pin)
	name := func(n int) string {
		pinName := fmt.Sprintf("%s%d", prefix, n)
		pin := &gpiotest.Pin{N: pinName, Num: base + n}
		require.NoError(t, gpioreg.Register(pin))
		t.Cleanup(func() { gpioreg.Unregister(pinName) })
		pins[pinName] = pin
		return pinName
	}
	lines := hw.Lines{
		Sensors: [hw.NumSensors]string{name(1), name(2), name(3), name(4)},
		Lights:  [2]string{name(5), name(6)},
		Buzzer:  name(7),
		Servo:   name(8),
	}
	return lines, pins
}

func TestDevice(t *testing.T) {
	lines, pins := registerPins(t, "TESTDEV", 9100)
	pins[lines.Lights[0]].L = gpio.High

	d, err := New(lines)
	require.NoError(t, err)
	require.Equal(t, gpio.Low, pins[lines.Lights[0]].L)

	pins[lines.Sensors[2]].L = gpio.High
	val, err := d.ReadInput(lines.Sensors[2])
	require.NoError(t, err)
	require.True(t, val)
	val, err = d.ReadInput(lines.Sensors[0])
	require.NoError(t, err)
	require.False(t, val)

	require.NoError(t, d.WriteOutput(lines.Buzzer, true))
	require.Equal(t, gpio.High, pins[lines.Buzzer].L)

	_, err = d.ReadInput("NOPE")
	require.True(t, hw.IsAccessError(err))
	require.True(t, errors.Is(err, hw.ErrUnknownLine))

	require.NoError(t, d.SetServoAngle(180))
	servo := pins[lines.Servo]
	require.Equal(t, gpio.Duty(int64(gpio.DutyMax)/10), servo.D)
	require.Equal(t, 50*physic.Hertz, servo.F)

	require.NoError(t, d.Close())
	require.Equal(t, gpio.Low, pins[lines.Buzzer].L)
	require.True(t, errors.Is(d.WriteOutput(lines.Buzzer, true), hw.ErrClosed))
	require.True(t, errors.Is(d.SetServoAngle(90), hw.ErrClosed))
}

func TestNewUnknownLine(t *testing.T) {
	lines, _ := registerPins(t, "TESTUNK", 9200)
	lines.Buzzer = "TESTUNK_MISSING"
	_, err := New(lines)
	require.True(t, hw.IsAccessError(err))
}

func TestRegisterPinsRepeatedly(t *testing.T) {
	for n := 0; n < 2; n++ {
		t.Run(fmt.Sprintf("pass%d", n), func(t *testing.T) {
			lines, _ := registerPins(t, "TESTREP", 9300)
			d, err := New(lines)
			require.NoError(t, err)
			require.NoError(t, d.Close())
		})
	}
	require.Nil(t, gpioreg.ByName("TESTREP1"))
}

func TestCloseAggregatesErrors(t *testing.T) {
	lines, pins := registerPins(t, "TESTAGG", 9400)
	d, err := New(lines)
	require.NoError(t, err)
	d.pins[lines.Lights[0]] = failingPin{PinIO: pins[lines.Lights[0]]}
	d.pins[lines.Lights[1]] = failingPin{PinIO: pins[lines.Lights[1]]}

	err = d.Close()
	var errs *fx.AggregatedError
	require.True(t, errors.As(err, &errs))
	// each failing light fails both the low write and the halt
	require.Len(t, errs.Errors, 4)
	require.True(t, hw.IsAccessError(err))
	require.Equal(t, gpio.Low, pins[lines.Buzzer].L)
}

type failingPin struct {
	gpio.PinIO
}

func (p failingPin) Out(gpio.Level) error { return errors.New("EIO") }
func (p failingPin) Halt() error          { return errors.New("EIO") }
