// Copyright (c) 2016-2023 The Decred developers.

package compute

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPlatforms indicates the runtime exposes no platforms at all.
	ErrNoPlatforms = errors.New("no platforms found")

	// ErrNoDevices indicates the selected platform has no matching devices.
	ErrNoDevices = errors.New("no devices found")

	// ErrDeviceIndex indicates a selection index outside of the
	// enumerated range.
	ErrDeviceIndex = errors.New("selection index out of range")
)

// BuildError is returned by Program.Build when the program source does not
// compile for the device.
type BuildError struct {
	Device string
	Log    string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("program build failed for %s: %s", e.Device, e.Log)
}
