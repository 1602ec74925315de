// Package vkselect picks a physical device that satisfies an
// application's declared requirements. Device capabilities are
// snapshotted into plain DeviceProfile values first, so the filtering
// and queue-family resolution logic runs on pure data and stays
// testable without a Vulkan driver.
package vkselect

import (
	"github.com/google/uuid"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
)

// QueueFamily is one queue family of a profiled device.
type QueueFamily struct {
	Index int
	Count int
	Flags core1_0.QueueFlags
	// CanPresent is only meaningful when the profile was taken against
	// a surface.
	CanPresent bool
}

func (f QueueFamily) IsGraphics() bool {
	return f.Flags&core1_0.QueueGraphics != 0
}

func (f QueueFamily) IsCompute() bool {
	return f.Flags&core1_0.QueueCompute != 0
}

func (f QueueFamily) IsTransfer() bool {
	return f.Flags&core1_0.QueueTransfer != 0
}

// MemoryType mirrors one entry of the device's memory type array.
type MemoryType struct {
	Flags     core1_0.MemoryPropertyFlags
	HeapIndex int
}

// MemoryHeap mirrors one entry of the device's memory heap array.
type MemoryHeap struct {
	Size  int
	Flags core1_0.MemoryHeapFlags
}

// DeviceProfile is a read-only snapshot of one physical device's
// capabilities. All fields are plain data; nothing here keeps the
// device or instance alive.
type DeviceProfile struct {
	Name              string
	Class             core1_0.PhysicalDeviceType
	APIVersion        common.APIVersion
	DriverVersion     common.Version
	VendorID          uint32
	DeviceID          uint32
	PipelineCacheUUID uuid.UUID

	Families   []QueueFamily
	Extensions map[string]struct{}
	Features   *core1_0.PhysicalDeviceFeatures

	MemoryTypes []MemoryType
	MemoryHeaps []MemoryHeap

	// Surface scope, populated only when a surface was supplied to
	// Snapshot.
	SurfaceCapabilities *khr_surface.SurfaceCapabilities
	SurfaceFormats      []khr_surface.SurfaceFormat
	PresentModes        []khr_surface.PresentMode
}

// HasExtension reports whether the device advertises the named
// extension. Names match exactly.
func (p DeviceProfile) HasExtension(name string) bool {
	_, ok := p.Extensions[name]
	return ok
}

// Snapshot probes one physical device into a DeviceProfile using
// read-only queries. Pass a nil surfaceExtension to profile without a
// surface in scope; presentation and swapchain fields are then left
// empty.
func Snapshot(instanceDriver core1_0.CoreInstanceDriver, device core1_0.PhysicalDevice, surfaceExtension khr_surface.ExtensionDriver, surface khr_surface.Surface) (DeviceProfile, error) {
	properties, err := instanceDriver.GetPhysicalDeviceProperties(device)
	if err != nil {
		return DeviceProfile{}, err
	}

	profile := DeviceProfile{
		Name:              properties.DeviceName,
		Class:             properties.DeviceType,
		APIVersion:        properties.APIVersion,
		DriverVersion:     properties.DriverVersion,
		VendorID:          properties.VendorID,
		DeviceID:          properties.DeviceID,
		PipelineCacheUUID: properties.PipelineCacheUUID,
		Features:          instanceDriver.GetPhysicalDeviceFeatures(device),
	}

	for familyIndex, family := range instanceDriver.GetPhysicalDeviceQueueFamilyProperties(device) {
		profileFamily := QueueFamily{
			Index: familyIndex,
			Count: family.QueueCount,
			Flags: family.QueueFlags,
		}

		if surfaceExtension != nil {
			supported, _, err := surfaceExtension.GetPhysicalDeviceSurfaceSupport(surface, device, familyIndex)
			if err != nil {
				return DeviceProfile{}, err
			}
			profileFamily.CanPresent = supported
		}

		profile.Families = append(profile.Families, profileFamily)
	}

	extensions, _, err := instanceDriver.EnumerateDeviceExtensionProperties(device)
	if err != nil {
		return DeviceProfile{}, err
	}
	profile.Extensions = make(map[string]struct{}, len(extensions))
	for name := range extensions {
		profile.Extensions[name] = struct{}{}
	}

	memoryProperties := instanceDriver.GetPhysicalDeviceMemoryProperties(device)
	for _, memoryType := range memoryProperties.MemoryTypes {
		profile.MemoryTypes = append(profile.MemoryTypes, MemoryType{
			Flags:     memoryType.PropertyFlags,
			HeapIndex: memoryType.HeapIndex,
		})
	}
	for _, memoryHeap := range memoryProperties.MemoryHeaps {
		profile.MemoryHeaps = append(profile.MemoryHeaps, MemoryHeap{
			Size:  memoryHeap.Size,
			Flags: memoryHeap.Flags,
		})
	}

	if surfaceExtension != nil {
		profile.SurfaceCapabilities, _, err = surfaceExtension.GetPhysicalDeviceSurfaceCapabilities(surface, device)
		if err != nil {
			return DeviceProfile{}, err
		}
		profile.SurfaceFormats, _, err = surfaceExtension.GetPhysicalDeviceSurfaceFormats(surface, device)
		if err != nil {
			return DeviceProfile{}, err
		}
		profile.PresentModes, _, err = surfaceExtension.GetPhysicalDeviceSurfacePresentModes(surface, device)
		if err != nil {
			return DeviceProfile{}, err
		}
	}

	return profile, nil
}
