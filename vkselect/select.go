package vkselect

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

var (
	// ErrNoDevices means the instance reported no physical devices at
	// all.
	ErrNoDevices = errors.New("no physical devices with Vulkan support")
	// ErrNoSuitableDevice means devices were present but none satisfied
	// the requirements.
	ErrNoSuitableDevice = errors.New("failed to find a suitable GPU")
)

// Suitable reports whether the profiled device satisfies every
// requirement. Checks short-circuit in a fixed order; nothing is
// scored or ranked.
func Suitable(profile DeviceProfile, req Requirements) bool {
	if !req.Classes.Allows(profile.Class) {
		return false
	}

	if !hasQueueOps(profile, req.QueueOps) {
		return false
	}

	for _, name := range req.Extensions {
		if !profile.HasExtension(name) {
			return false
		}
	}

	if req.NeedSwapchain {
		if !profile.HasExtension(khr_swapchain.ExtensionName) {
			return false
		}
		if len(profile.SurfaceFormats) == 0 || len(profile.PresentModes) == 0 {
			return false
		}
	}

	if req.SamplerAnisotropy && (profile.Features == nil || !profile.Features.SamplerAnisotropy) {
		return false
	}

	indices := ResolveQueues(profile, req.NeedPresent)
	if req.NeedPresent {
		return indices.Valid()
	}
	return indices.HasGraphics()
}

// hasQueueOps reports whether a single queue family supports every
// requested operation at once. A zero mask passes trivially.
func hasQueueOps(profile DeviceProfile, ops core1_0.QueueFlags) bool {
	if ops == 0 {
		return true
	}
	for _, family := range profile.Families {
		if family.Count > 0 && family.Flags&ops == ops {
			return true
		}
	}
	return false
}

// Select returns the index of the first profile satisfying the
// requirements. Profiles are scanned in order, so the result is
// deterministic for a given input. Returns NoFamily and
// ErrNoSuitableDevice when nothing qualifies.
func Select(profiles []DeviceProfile, req Requirements) (int, error) {
	for i, profile := range profiles {
		if Suitable(profile, req) {
			return i, nil
		}
	}
	return NoFamily, ErrNoSuitableDevice
}

// Enumerate lists the instance's physical devices in driver order.
// Returns ErrNoDevices when the list comes back empty.
func Enumerate(instanceDriver core1_0.CoreInstanceDriver) ([]core1_0.PhysicalDevice, error) {
	devices, _, err := instanceDriver.EnumeratePhysicalDevices()
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, ErrNoDevices
	}
	return devices, nil
}

// Selection is the outcome of a successful pick: the chosen device,
// its profile, and the queue families to build the logical device on.
type Selection struct {
	Device  core1_0.PhysicalDevice
	Profile DeviceProfile
	Queues  QueueIndices
}

// Picker wires the selection pipeline to a live instance. Leave
// SurfaceExtension nil to pick without a surface in scope.
type Picker struct {
	InstanceDriver   core1_0.CoreInstanceDriver
	SurfaceExtension khr_surface.ExtensionDriver
	Surface          khr_surface.Surface
	Log              logrus.FieldLogger
}

// Pick enumerates, profiles, and filters devices in driver order and
// returns the first suitable one. The first error from a device query
// aborts the scan.
func (p Picker) Pick(req Requirements) (Selection, error) {
	log := p.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	devices, err := Enumerate(p.InstanceDriver)
	if err != nil {
		return Selection{}, err
	}

	for i, device := range devices {
		profile, err := Snapshot(p.InstanceDriver, device, p.SurfaceExtension, p.Surface)
		if err != nil {
			return Selection{}, errors.Wrapf(err, "probing device %d", i)
		}

		if !Suitable(profile, req) {
			log.Debugf("device %d (%s) does not meet requirements", i, profile.Name)
			continue
		}

		queues := ResolveQueues(profile, req.NeedPresent)
		log.Infof("found suitable device: %s", profile.Name)
		log.Debugf("device %d: %d queue families, graphics family %d, present family %d",
			i, len(profile.Families), queues.Graphics, queues.Present)
		return Selection{Device: device, Profile: profile, Queues: queues}, nil
	}

	return Selection{}, ErrNoSuitableDevice
}
