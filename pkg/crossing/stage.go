package crossing

import "fmt"

// Stage marks the progress of one train traversal through the sensors.
type Stage int

// Stages of a traversal. StageComplete is transient and folds back
// to StageIdle as soon as it is reached.
const (
	StageIdle Stage = iota
	StageLeftApproach
	StageLeftApproachConfirmed
	StageLeftLeavePartial
	StageRightApproach
	StageRightApproachConfirmed
	StageRightLeavePartial
	StageComplete
)

var stageNames = [...]string{
	StageIdle:                   "Idle",
	StageLeftApproach:           "LeftApproach",
	StageLeftApproachConfirmed:  "LeftApproachConfirmed",
	StageLeftLeavePartial:       "LeftLeavePartial",
	StageRightApproach:          "RightApproach",
	StageRightApproachConfirmed: "RightApproachConfirmed",
	StageRightLeavePartial:      "RightLeavePartial",
	StageComplete:               "Complete",
}

// String implements fmt.Stringer.
func (s Stage) String() string {
	if s >= 0 && int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Outcome is the effect of one sensor activation on the crossing.
type Outcome int

// Outcomes of Advance.
const (
	// OutcomeProgress moves to the next stage with no flag change.
	OutcomeProgress Outcome = iota
	// OutcomeHalfLeft confirms a train approaching from the left.
	OutcomeHalfLeft
	// OutcomeHalfRight confirms a train approaching from the right.
	OutcomeHalfRight
	// OutcomeComplete finishes a traversal, both approach flags clear.
	OutcomeComplete
	// OutcomeViolation is a sensor out of the expected order.
	OutcomeViolation
)

var outcomeNames = [...]string{
	OutcomeProgress:  "progress",
	OutcomeHalfLeft:  "half sequence (left)",
	OutcomeHalfRight: "half sequence (right)",
	OutcomeComplete:  "full sequence",
	OutcomeViolation: "sequence violation",
}

// String implements fmt.Stringer.
func (o Outcome) String() string {
	if o >= 0 && int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Sensor numbers, 1-based as wired.
const (
	SensorLeftApproach  = 1
	SensorLeftLeave     = 2
	SensorRightApproach = 3
	SensorRightLeave    = 4
)

// transitions is the only path a stage may advance on.
// Any sensor missing from a stage's row is a violation.
var transitions = map[Stage]map[int]Stage{
	StageIdle: {
		SensorLeftApproach:  StageLeftApproach,
		SensorRightApproach: StageRightApproach,
	},
	StageLeftApproach:           {SensorLeftLeave: StageLeftApproachConfirmed},
	StageLeftApproachConfirmed:  {SensorRightLeave: StageLeftLeavePartial},
	StageLeftLeavePartial:       {SensorRightApproach: StageComplete},
	StageRightApproach:          {SensorRightLeave: StageRightApproachConfirmed},
	StageRightApproachConfirmed: {SensorLeftLeave: StageRightLeavePartial},
	StageRightLeavePartial:      {SensorLeftApproach: StageComplete},
}

// Advance looks up the stage following an activation of sensor.
// On a violation the returned stage is StageIdle.
func Advance(stage Stage, sensor int) (Stage, Outcome) {
	next, ok := transitions[stage][sensor]
	if !ok {
		return StageIdle, OutcomeViolation
	}
	switch next {
	case StageLeftApproachConfirmed:
		return next, OutcomeHalfLeft
	case StageRightApproachConfirmed:
		return next, OutcomeHalfRight
	case StageComplete:
		return next, OutcomeComplete
	}
	return next, OutcomeProgress
}
