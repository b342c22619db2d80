// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers

package main

import (
	"context"
	"os"
	"os/signal"
)

// interruptSignals defines the signals that are handled to do a clean
// shutdown.  Conditional compilation is used to also include SIGTERM on Unix.
var interruptSignals = []os.Signal{os.Interrupt}

// shutdownListener listens for OS Signals such as SIGINT (Ctrl+C) and
// cancels the returned context when one is received.  Signals received after
// that are logged and otherwise ignored, so the deferred releases of the run
// in progress still complete.
func shutdownListener() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		interruptChannel := make(chan os.Signal, 1)
		signal.Notify(interruptChannel, interruptSignals...)

		// Listen for the initial shutdown signal.
		sig := <-interruptChannel
		mainLog.Infof("Received signal (%s).  Shutting down...", sig)

		cancel()

		// Listen for repeated signals and display a message so the user
		// knows the shutdown is in progress and the process is not hung.
		for sig := range interruptChannel {
			mainLog.Infof("Received signal (%s).  Already shutting down...",
				sig)
		}
	}()
	return ctx
}
