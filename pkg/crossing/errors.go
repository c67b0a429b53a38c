package crossing

import (
	"errors"
	"fmt"
	"io"

	"github.com/golang/glog"
)

var (
	// ErrBadPIN indicates an acknowledgement with a wrong operator PIN.
	ErrBadPIN = errors.New("operator PIN rejected")
	// ErrNoAcknowledger indicates the operator console has no ack source.
	ErrNoAcknowledger = errors.New("no acknowledgement source")
)

// SequenceViolation reports a sensor activation out of the expected
// order. It is not fatal: the crossing raises Collision until an
// operator resets it.
type SequenceViolation struct {
	Incident *Incident
}

// Error implements error.
func (e *SequenceViolation) Error() string {
	if e.Incident == nil {
		return "sequence violation"
	}
	return fmt.Sprintf("sequence violation: %s", e.Incident)
}

// announce logs a user visible message and mirrors it to the console.
func announce(console io.Writer, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	glog.Info(msg)
	if console != nil {
		fmt.Fprintln(console, msg)
	}
}
