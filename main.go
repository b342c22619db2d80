// Copyright (c) 2016-2023 The Decred developers.

package main

import (
	"context"
	"errors"
	"io"
	"os"
	"runtime"

	flags "github.com/jessevdk/go-flags"

	"github.com/decred/clvecadd/cl"
	"github.com/decred/clvecadd/compute"
	"github.com/decred/clvecadd/vecadd"
)

var (
	cfg *config
)

func clvecaddMain() error {
	// Load configuration and parse command line.  This function also
	// initializes logging and configures it accordingly.
	tcfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	cfg = tcfg
	defer func() {
		if logRotator != nil {
			logRotator.Close()
		}
	}()

	// Show version at startup.
	mainLog.Infof("Version %s (Go version %s %s/%s)", version(),
		runtime.Version(), runtime.GOOS, runtime.GOARCH)

	return run(shutdownListener(), cl.New(), cfg, os.Stdout)
}

// run lists the devices or performs a single run on rt as selected by cfg,
// writing the report to out.
func run(ctx context.Context, rt compute.Runtime, cfg *config, out io.Writer) error {
	if cfg.ListDevices {
		return vecadd.ListDevices(out, rt, cfg.deviceType)
	}

	source, err := vecadd.LoadKernel(cfg.Kernel)
	if err != nil {
		mainLog.Errorf("%v", err)
		return err
	}
	if cfg.Kernel != "" {
		mainLog.Infof("Using kernel source %s", cfg.Kernel)
	}

	_, err = vecadd.Run(ctx, rt, &vecadd.Config{
		Selector: cfg.selector(),
		Source:   source,
		Out:      out,
		Verify:   cfg.Verify,
	})
	if err != nil {
		mainLog.Errorf("Run failed: %v", err)
		return err
	}

	return nil
}

// exitCode maps the error returned by clvecaddMain to the process exit
// status.  A help request is not a failure.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var e *flags.Error
	if errors.As(err, &e) && e.Type == flags.ErrHelp {
		return 0
	}
	return 1
}

func main() {
	// Work around defer not working after os.Exit()
	if err := clvecaddMain(); err != nil {
		os.Exit(exitCode(err))
	}
}
