package hw

import "time"

// Servo angle limits in degrees.
const (
	MinAngle = 0
	MaxAngle = 180
)

// ServoTiming describes the pulse envelope of a hobby servo.
type ServoTiming struct {
	Period   time.Duration
	MinPulse time.Duration
	MaxPulse time.Duration
}

// DefaultServoTiming is the usual 50Hz servo with 1ms..2ms pulses.
var DefaultServoTiming = ServoTiming{
	Period:   20 * time.Millisecond,
	MinPulse: time.Millisecond,
	MaxPulse: 2 * time.Millisecond,
}

// ClampAngle limits degrees to MinAngle..MaxAngle.
func ClampAngle(degrees int) int {
	if degrees < MinAngle {
		return MinAngle
	}
	if degrees > MaxAngle {
		return MaxAngle
	}
	return degrees
}

// Pulse maps an angle linearly onto the pulse width.
func (t ServoTiming) Pulse(degrees int) time.Duration {
	span := t.MaxPulse - t.MinPulse
	return t.MinPulse + span*time.Duration(ClampAngle(degrees))/MaxAngle
}

// Duty returns the pulse width as a fraction of full scale.
// full is the value representing 100% duty, e.g. gpio.DutyMax.
func (t ServoTiming) Duty(degrees int, full int64) int64 {
	return int64(t.Pulse(degrees)) * full / int64(t.Period)
}

// Frequency returns the PWM frequency in Hz.
func (t ServoTiming) Frequency() int64 {
	return int64(time.Second / t.Period)
}
