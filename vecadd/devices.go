// Copyright (c) 2016-2023 The Decred developers.

package vecadd

import (
	"fmt"
	"io"

	"github.com/decred/clvecadd/compute"
)

// ListDevices writes one line per device of every platform, numbered across
// platforms in enumeration order.  Enumeration failures are treated as empty
// lists, the same as in Run.
func ListDevices(w io.Writer, rt compute.Runtime, t compute.DeviceType) error {
	platforms, err := rt.Platforms()
	if err != nil {
		log.Errorf("Could not get platforms: %v", err)
		platforms = nil
	}
	if len(platforms) == 0 {
		fmt.Fprintln(w, "No platforms found. Check OpenCL installation!")
		return compute.ErrNoPlatforms
	}

	deviceListIndex := 0
	for _, p := range platforms {
		devices, err := p.Devices(t)
		if err != nil {
			log.Errorf("Could not get devices for platform %q: %v",
				p.Name(), err)
			continue
		}
		for _, d := range devices {
			fmt.Fprintf(w, "DEV #%d: %s / %s (%s)\n", deviceListIndex,
				p.Name(), d.Name(), d.Type())
			deviceListIndex++
		}
	}
	return nil
}
