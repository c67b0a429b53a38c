package sh

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/robotalks/crossing/pkg/crossing"
	fx "github.com/robotalks/crossing/pkg/framework"
	"github.com/robotalks/crossing/pkg/hw"
)

// Shell provides the ishell backed operator console. It is the
// crossing.Acknowledger of the controller: a collision is cleared by
// the reset command.
type Shell struct {
	// Operator is recorded with each acknowledgement.
	Operator string

	Shell      *ishell.Shell
	Controller *crossing.Controller
	Device     hw.Device

	acks    crossing.AckChan
	lock    sync.Mutex
	pending *crossing.Incident
	waiting bool
	exited  bool
}

const (
	shellKey = "$shell"
	prompt   = "crossing > "
)

var (
	commands = []*ishell.Cmd{
		&ResetCmd,
		&StatusCmd,
		&ExitCmd,
	}
)

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New() *Shell {
	s := &Shell{
		Operator: os.Getenv("USER"),
		Shell:    ishell.New(),
		acks:     make(crossing.AckChan),
	}
	if s.Operator == "" {
		s.Operator = "operator"
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(prompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// Attach binds the controller and device the commands operate on.
func (s *Shell) Attach(ctl *crossing.Controller, dev hw.Device) *Shell {
	s.Controller, s.Device = ctl, dev
	return s
}

// Acknowledge implements crossing.Acknowledger.
func (s *Shell) Acknowledge(ctx context.Context, incident *crossing.Incident) (crossing.Ack, error) {
	s.lock.Lock()
	s.pending, s.waiting = incident, true
	s.lock.Unlock()
	defer func() {
		s.lock.Lock()
		s.pending, s.waiting = nil, false
		s.lock.Unlock()
	}()
	s.Shell.Println("Type 'reset [PIN]' to acknowledge the collision.")
	return s.acks.Acknowledge(ctx, incident)
}

// Pending tells whether an acknowledgement is awaited and for which incident.
func (s *Shell) Pending() (*crossing.Incident, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.pending, s.waiting
}

// Submit hands an acknowledgement to the waiting operator console.
// It fails if nothing waits for one.
func (s *Shell) Submit(ack crossing.Ack) error {
	if _, waiting := s.Pending(); !waiting {
		return fmt.Errorf("no collision to acknowledge")
	}
	select {
	case s.acks <- ack:
		return nil
	case <-time.After(time.Second):
		return fmt.Errorf("acknowledgement not taken")
	}
}

// Exited tells whether the operator left with the exit command.
func (s *Shell) Exited() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.exited
}

// Run runs the interactive shell until ctx is done or the operator
// exits, which returns nil. When the input ends without exit, e.g. no
// terminal attached, the crossing keeps running and Run waits for ctx.
func (s *Shell) Run(ctx context.Context) error {
	err := fx.RunWithContextCancel(ctx, s.Shell.Close, func() error {
		s.Shell.Run()
		return nil
	})
	if err != nil {
		return err
	}
	if s.Exited() {
		glog.V(1).Info("shell exited")
		return nil
	}
	glog.Warning("operator console input closed, collisions can not be acknowledged until restart")
	<-ctx.Done()
	return ctx.Err()
}

var (
	// ResetCmd acknowledges a collision.
	ResetCmd = ishell.Cmd{
		Name:    "reset",
		Aliases: []string{"r"},
		Help:    "[PIN] acknowledge a collision and reset the crossing",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			ack := crossing.Ack{Operator: s.Operator, At: time.Now()}
			if len(c.Args) > 0 {
				ack.PIN = c.Args[0]
			}
			if err := s.Submit(ack); err != nil {
				c.Err(err)
			}
		},
	}

	// ExitCmd stops the crossing and leaves the shell.
	ExitCmd = ishell.Cmd{
		Name: "exit",
		Help: "stop the crossing and exit",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			s.lock.Lock()
			s.exited = true
			s.lock.Unlock()
			if s.Controller != nil {
				s.Controller.Stop()
			}
			c.Stop()
		},
	}

	// StatusCmd prints the crossing state.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"s"},
		Help:    "show the crossing state",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			if s.Controller == nil {
				c.Err(fmt.Errorf("no crossing attached"))
				return
			}
			snap := s.Controller.State.Snapshot()
			c.Printf("crossing %s: %s\n", s.Controller.ID, snap)
			if snap.Incident != nil {
				c.Printf("%s at %s\n", snap.Incident, snap.Incident.At.Format(time.RFC3339))
			}
		},
	}
)
