package crossing

import (
	"context"
	"io"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/crossing/pkg/framework"
	"github.com/robotalks/crossing/pkg/hw"
)

// Controller runs the four crossing tasks against one device and
// leaves the outputs safe when it stops.
type Controller struct {
	ID      string
	Config  *Config
	Device  hw.Device
	State   *State
	Console io.Writer
	// HandleSignals stops the controller on SIGINT/SIGTERM.
	HandleSignals bool

	Monitor     *Monitor
	Guard       *Guard
	Annunciator *Annunciator
	Operator    *Operator

	lock   sync.Mutex
	runner *fx.Runner
}

// Runnables returns the periodic tasks with their configured cadence.
func (c *Controller) Runnables() []fx.Runnable {
	return []fx.Runnable{
		fx.NewLoop("sensors", c.Config.SensorPeriod, c.Monitor),
		fx.NewLoop("guard", c.Config.GuardPeriod, c.Guard),
		fx.NewLoop("annunciator", c.Config.AnnunciatorPeriod, c.Annunciator),
		fx.NewLoop("operator", c.Config.OperatorPeriod, c.Operator),
	}
}

// Run implements Runnable.
// It returns nil after ctx is canceled, or the fatal error which stopped
// the tasks. Outputs are forced safe on every path: lights and buzzer
// off, the gate open after a requested stop and closed after a failure.
func (c *Controller) Run(ctx context.Context) error {
	glog.Infof("crossing %s starting", c.ID)
	runner := fx.NewRunnerWith(ctx)
	c.setRunner(runner)
	defer c.setRunner(nil)
	if err := c.initOutputs(); err != nil {
		glog.Errorf("crossing %s init failed: %v", c.ID, err)
		runner.Stop()
		return c.finish(err)
	}

	if c.HandleSignals {
		runner.HandleSignals()
	}
	runner.Go(c.Runnables()...)
	err := runner.Wait()
	if err != nil {
		glog.Errorf("crossing %s stopped on error: %v", c.ID, err)
	} else {
		glog.Infof("crossing %s stop requested", c.ID)
	}
	return c.finish(err)
}

// Stop requests a running controller to stop the same way a
// termination signal does. It has no effect when not running.
func (c *Controller) Stop() {
	c.lock.Lock()
	runner := c.runner
	c.lock.Unlock()
	if runner != nil {
		runner.Stop()
	}
}

func (c *Controller) setRunner(runner *fx.Runner) {
	c.lock.Lock()
	c.runner = runner
	c.lock.Unlock()
}

// Shutdown forces the outputs into the safe state. After a failure the
// gate is closed, otherwise it is opened.
func (c *Controller) Shutdown(failed bool) error {
	var errs fx.AggregatedError
	errs.Add(c.Annunciator.Off())
	gate := GateOpen
	if failed {
		gate = GateClosed
	}
	errs.Add(c.Guard.Command(gate))
	if err := errs.Aggregate(); err != nil {
		glog.Errorf("crossing %s shutdown: %v", c.ID, err)
		return err
	}
	announce(c.Console, "Crossing %s stopped, lights and buzzer off, gate %s.", c.ID, gate)
	return nil
}

func (c *Controller) initOutputs() error {
	if err := c.Annunciator.Off(); err != nil {
		return err
	}
	return c.Guard.Command(GateOpen)
}

func (c *Controller) finish(err error) error {
	var errs fx.AggregatedError
	errs.Add(err, c.Shutdown(err != nil))
	return errs.Aggregate()
}
