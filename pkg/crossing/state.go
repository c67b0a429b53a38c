package crossing

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// GatePosition is the last position commanded to the gate.
type GatePosition int

// Gate positions.
const (
	GateUnknown GatePosition = iota
	GateOpen
	GateClosed
)

// String implements fmt.Stringer.
func (p GatePosition) String() string {
	switch p {
	case GateOpen:
		return "open"
	case GateClosed:
		return "closed"
	}
	return "unknown"
}

// Incident records a detected sequence violation.
// It is immutable once created.
type Incident struct {
	ID     string
	Sensor int
	Stage  Stage
	At     time.Time
}

func newIncident(sensor int, stage Stage, at time.Time) *Incident {
	return &Incident{ID: uuid.New().String(), Sensor: sensor, Stage: stage, At: at}
}

// String implements fmt.Stringer.
func (i *Incident) String() string {
	return fmt.Sprintf("incident %s: sensor %d during %s", i.ID, i.Sensor, i.Stage)
}

// Snapshot is a consistent copy of the crossing state.
type Snapshot struct {
	ApproachLeft    bool
	ApproachRight   bool
	Collision       bool
	Stage           Stage
	ResetInProgress bool
	// Resync asks the sensor monitor to take its next sample as the
	// baseline without interpreting edges.
	Resync bool
	// Incident is the fault behind Collision, if any.
	Incident *Incident
	// Gate is maintained by the guard.
	Gate GatePosition
}

// Approaching tells whether a train is confirmed near either side.
func (s Snapshot) Approaching() bool {
	return s.ApproachLeft || s.ApproachRight
}

// Advance applies an activation of sensor and returns the outcome.
// A completed traversal leaves the stage at StageIdle.
func (s *Snapshot) Advance(sensor int, now time.Time) Outcome {
	from := s.Stage
	next, outcome := Advance(from, sensor)
	switch outcome {
	case OutcomeHalfLeft:
		s.ApproachLeft = true
	case OutcomeHalfRight:
		s.ApproachRight = true
	case OutcomeComplete:
		s.ApproachLeft, s.ApproachRight = false, false
		next = StageIdle
	case OutcomeViolation:
		s.Collision = true
		if s.Incident == nil {
			s.Incident = newIncident(sensor, from, now)
		}
	}
	s.Stage = next
	return outcome
}

// String implements fmt.Stringer.
func (s Snapshot) String() string {
	return fmt.Sprintf("stage=%s left=%v right=%v collision=%v reset=%v gate=%s",
		s.Stage, s.ApproachLeft, s.ApproachRight, s.Collision, s.ResetInProgress, s.Gate)
}

// State guards the single crossing record shared by all tasks.
// Fields are only reachable through Snapshot and Update.
type State struct {
	lock sync.Mutex
	snap Snapshot
}

// NewState creates the state with everything clear and StageIdle.
func NewState() *State {
	return &State{}
}

// Snapshot returns a consistent copy of the state.
func (s *State) Snapshot() Snapshot {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.snap
}

// Update applies fn under the lock and returns the resulting state.
// fn must be short and must not call back into the State.
func (s *State) Update(fn func(*Snapshot)) Snapshot {
	s.lock.Lock()
	defer s.lock.Unlock()
	fn(&s.snap)
	return s.snap
}
