// Copyright (c) 2016-2023 The Decred developers.

package compute

import (
	"fmt"
	"strings"
)

// Selector chooses the platform and device a job runs on.  The zero value
// selects the first platform and the first device of any type.
type Selector struct {
	// PlatformIndex is the position of the platform in the runtime's
	// platform list.
	PlatformIndex int

	// DeviceIndex is the position of the device among the devices that
	// survive Type and Match filtering.
	DeviceIndex int

	// Type restricts device enumeration.  Zero means DeviceTypeAll.
	Type DeviceType

	// Match, when set, must return true for a device to be selectable.
	Match func(Device) bool
}

// FirstAvailable returns the positional first-platform, first-device policy.
func FirstAvailable() Selector {
	return Selector{Type: DeviceTypeAll}
}

// NameContains returns a Match predicate accepting devices whose name
// contains substr, ignoring case.
func NameContains(substr string) func(Device) bool {
	substr = strings.ToLower(substr)
	return func(d Device) bool {
		return strings.Contains(strings.ToLower(d.Name()), substr)
	}
}

// DeviceType returns the device type enumeration is restricted to.
func (s Selector) DeviceType() DeviceType {
	if s.Type == 0 {
		return DeviceTypeAll
	}
	return s.Type
}

// SelectPlatform picks a platform from ps.
func (s Selector) SelectPlatform(ps []Platform) (Platform, error) {
	if len(ps) == 0 {
		return nil, ErrNoPlatforms
	}
	if s.PlatformIndex < 0 || s.PlatformIndex >= len(ps) {
		return nil, fmt.Errorf("platform %d of %d: %w", s.PlatformIndex,
			len(ps), ErrDeviceIndex)
	}
	return ps[s.PlatformIndex], nil
}

// Filter returns the devices of ds accepted by Match, in order.
func (s Selector) Filter(ds []Device) []Device {
	if s.Match == nil {
		return ds
	}
	var out []Device
	for _, d := range ds {
		if s.Match(d) {
			out = append(out, d)
			continue
		}
		log.Debugf("Device %q rejected by selection filter", d.Name())
	}
	return out
}

// SelectDevice picks a device from the already filtered list ds.
func (s Selector) SelectDevice(ds []Device) (Device, error) {
	if len(ds) == 0 {
		return nil, ErrNoDevices
	}
	if s.DeviceIndex < 0 || s.DeviceIndex >= len(ds) {
		return nil, fmt.Errorf("device %d of %d: %w", s.DeviceIndex,
			len(ds), ErrDeviceIndex)
	}
	return ds[s.DeviceIndex], nil
}
