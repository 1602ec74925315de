package vkselect

import (
	"github.com/vkngwrapper/core/v3/core1_0"
)

// DeviceClassMask restricts selection to a set of physical device types,
// one bit per core1_0.PhysicalDeviceType. The zero mask accepts any type.
type DeviceClassMask uint32

const (
	ClassIntegrated DeviceClassMask = 1 << core1_0.PhysicalDeviceTypeIntegratedGPU
	ClassDiscrete   DeviceClassMask = 1 << core1_0.PhysicalDeviceTypeDiscreteGPU
	ClassVirtual    DeviceClassMask = 1 << core1_0.PhysicalDeviceTypeVirtualGPU
	ClassCPU        DeviceClassMask = 1 << core1_0.PhysicalDeviceTypeCPU

	ClassAny DeviceClassMask = 0
)

// Allows reports whether a device of the given type passes the mask.
// Devices reporting the "other" type never pass, even under ClassAny.
func (m DeviceClassMask) Allows(class core1_0.PhysicalDeviceType) bool {
	if class == core1_0.PhysicalDeviceTypeOther {
		return false
	}
	if m == ClassAny {
		return true
	}
	return m&(1<<uint(class)) != 0
}

// Requirements describes what an application needs from a physical device.
// Masks are OR-combinable; zero-valued fields impose no constraint.
type Requirements struct {
	// Classes restricts the acceptable device types.
	Classes DeviceClassMask
	// QueueOps must all be supported by a single queue family.
	QueueOps core1_0.QueueFlags
	// Extensions must every one be present on the device.
	Extensions []string
	// NeedPresent requires some queue family able to present to the
	// surface the device was profiled against.
	NeedPresent bool
	// NeedSwapchain requires the swapchain extension plus at least one
	// surface format and one present mode.
	NeedSwapchain bool
	// SamplerAnisotropy requires the anisotropic filtering feature.
	SamplerAnisotropy bool
}
