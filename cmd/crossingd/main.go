package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/crossing/pkg/cli/sh"
	"github.com/robotalks/crossing/pkg/crossing"
	"github.com/robotalks/crossing/pkg/hw"
	"github.com/robotalks/crossing/pkg/hw/periph"
	"github.com/robotalks/crossing/pkg/hw/sim"

	_ "github.com/robotalks/crossing/pkg/cli/cmds/sim"
)

var (
	simulate = flag.Bool("sim", false, "run against the simulated device")
	hashPIN  = flag.String("hash-pin", "", "print the bcrypt hash of PIN for -pin-hash and exit")
)

func init() {
	crossing.SetupFlags()
}

func openDevice(lines hw.Lines) (hw.Device, error) {
	if *simulate {
		dev := sim.New(lines)
		dev.Console = os.Stdout
		return dev, nil
	}
	dev, err := periph.Open(lines)
	if err != nil {
		return nil, err
	}
	return dev, nil
}

func run() error {
	conf := crossing.NewConfig()
	if err := conf.Validate(); err != nil {
		return err
	}
	dev, err := openDevice(conf.Lines)
	if err != nil {
		return err
	}
	defer dev.Close()

	shell := sh.New()
	ctl, err := conf.NewController(dev, shell, os.Stdout)
	if err != nil {
		return err
	}
	ctl.HandleSignals = true
	shell.Attach(ctl, dev)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// the exit command stops the crossing, end of input does not
	go func() {
		if err := shell.Run(ctx); err != nil && ctx.Err() == nil {
			glog.Errorf("operator console: %v", err)
		}
	}()
	return ctl.Run(ctx)
}

func main() {
	flag.Parse()
	defer glog.Flush()

	if *hashPIN != "" {
		hash, err := crossing.HashPIN(*hashPIN)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	if err := run(); err != nil {
		glog.Errorf("crossing failed: %v", err)
		glog.Flush()
		os.Exit(1)
	}
}
