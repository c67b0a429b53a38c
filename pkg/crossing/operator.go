package crossing

import (
	"context"
	"io"
	"time"

	"github.com/golang/glog"
	"golang.org/x/crypto/bcrypt"

	fx "github.com/robotalks/crossing/pkg/framework"
)

// Ack is an operator acknowledgement of a collision.
type Ack struct {
	Operator string
	PIN      string
	At       time.Time
}

// Acknowledger blocks until an operator acknowledges the incident.
// incident may be nil when the fault carries no record.
type Acknowledger interface {
	Acknowledge(ctx context.Context, incident *Incident) (Ack, error)
}

// AckChan is a channel backed Acknowledger.
type AckChan chan Ack

// Acknowledge implements Acknowledger.
func (c AckChan) Acknowledge(ctx context.Context, incident *Incident) (Ack, error) {
	select {
	case <-ctx.Done():
		return Ack{}, ctx.Err()
	case ack := <-c:
		return ack, nil
	}
}

// HashPIN produces the bcrypt hash accepted by PINVerifier.
func HashPIN(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// PINVerifier checks operator PINs against a bcrypt hash.
// An empty hash accepts any acknowledgement.
type PINVerifier struct {
	Hash string
}

// Verify returns ErrBadPIN if pin does not match.
func (v PINVerifier) Verify(pin string) error {
	if v.Hash == "" {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(v.Hash), []byte(pin)); err != nil {
		return ErrBadPIN
	}
	return nil
}

// Operator waits for a collision, obtains an acknowledgement and
// performs the two-phase reset.
type Operator struct {
	State    *State
	Ack      Acknowledger
	Verifier PINVerifier
	Settle   time.Duration
	Console  io.Writer
}

// Control implements framework.Controller.
func (o *Operator) Control(ctx context.Context) error {
	snap := o.State.Snapshot()
	if !snap.Collision {
		return nil
	}
	if o.Ack == nil {
		return ErrNoAcknowledger
	}
	if snap.Incident != nil {
		announce(o.Console, "Collision detected (%s)! Acknowledge to reset.", snap.Incident)
	} else {
		announce(o.Console, "Collision detected! Acknowledge to reset.")
	}
	for {
		ack, err := o.Ack.Acknowledge(ctx, snap.Incident)
		if err != nil {
			return err
		}
		if err := o.Verifier.Verify(ack.PIN); err != nil {
			glog.Warningf("reset by %q refused: %v", ack.Operator, err)
			announce(o.Console, "Reset refused: %v", err)
			continue
		}
		glog.Infof("collision acknowledged by %q", ack.Operator)
		return o.Reset(ctx)
	}
}

// Reset clears the fault in two phases: flags are cleared and the
// monitor is held off, then after the settle delay it resumes with a
// fresh sensor baseline. Resetting a clear crossing changes nothing.
func (o *Operator) Reset(ctx context.Context) error {
	o.State.Update(func(s *Snapshot) {
		s.Collision = false
		s.ApproachLeft, s.ApproachRight = false, false
		s.Incident = nil
		s.Stage = StageIdle
		s.ResetInProgress = true
		s.Resync = true
	})
	announce(o.Console, "Manual reset initiated. Please wait...")
	err := fx.Sleep(ctx, o.Settle)
	o.State.Update(func(s *Snapshot) {
		s.ResetInProgress = false
	})
	if err != nil {
		return err
	}
	announce(o.Console, "System reset. Resuming normal operation...")
	return nil
}
