package crossing

import (
	"sync"
	"time"

	"github.com/robotalks/crossing/pkg/hw"
	"github.com/robotalks/crossing/pkg/hw/sim"
)

var testLines = hw.Lines{
	Sensors: [hw.NumSensors]string{"17", "27", "22", "23"},
	Lights:  [2]string{"5", "6"},
	Buzzer:  "13",
	Servo:   "pwm0",
}

func testConfig() *Config {
	c := NewConfig()
	c.ID = "test"
	c.Lines = testLines
	c.SensorPeriod = 5 * time.Millisecond
	c.GuardPeriod = 2 * time.Millisecond
	c.AnnunciatorPeriod = 5 * time.Millisecond
	c.OperatorPeriod = 10 * time.Millisecond
	c.GateSettle = 30 * time.Millisecond
	c.ResetSettle = 30 * time.Millisecond
	c.Flashes = 2
	c.FlashInterval = 5 * time.Millisecond
	c.AlternateInterval = 10 * time.Millisecond
	return c
}

type outputWrite struct {
	line string
	on   bool
}

// recorder keeps every output write in order.
type recorder struct {
	*sim.Device

	lock   sync.Mutex
	writes []outputWrite
}

func newRecorder() *recorder {
	return &recorder{Device: sim.New(testLines)}
}

func (r *recorder) WriteOutput(line string, on bool) error {
	r.lock.Lock()
	r.writes = append(r.writes, outputWrite{line: line, on: on})
	r.lock.Unlock()
	return r.Device.WriteOutput(line, on)
}

func (r *recorder) Writes() []outputWrite {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]outputWrite(nil), r.writes...)
}

func (r *recorder) wasOn(line string) bool {
	for _, w := range r.Writes() {
		if w.line == line && w.on {
			return true
		}
	}
	return false
}

// setSensors drives the sensors to exactly the listed numbers.
func setSensors(dev *sim.Device, on ...int) {
	dev.ClearSensors()
	for _, n := range on {
		dev.SetSensor(n, true)
	}
}
