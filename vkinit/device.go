package vkinit

import (
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_portability_subset"

	"github.com/vkwalk/vkwalk/vkselect"
)

// Device is the logical device built from a selection, with its queue
// handles already fetched. The buffer and image helpers hang off it.
type Device struct {
	Driver         core1_0.CoreDeviceDriver
	PhysicalDevice core1_0.PhysicalDevice
	GraphicsQueue  core1_0.Queue
	PresentQueue   core1_0.Queue

	instanceDriver core1_0.CoreInstanceDriver
}

// NewDevice creates a logical device with one queue per distinct
// family in the selection, enabling the given extensions and features.
// The portability subset extension is added whenever the device
// advertises it. The present queue stays zero when the selection had
// no presentation scope.
func NewDevice(instanceDriver core1_0.CoreInstanceDriver, selection vkselect.Selection, extensions []string, features *core1_0.PhysicalDeviceFeatures) (*Device, error) {
	queues := selection.Queues

	uniqueQueueFamilies := []int{queues.Graphics}
	if queues.Present != vkselect.NoFamily && queues.Present != queues.Graphics {
		uniqueQueueFamilies = append(uniqueQueueFamilies, queues.Present)
	}

	var queueOptions []core1_0.DeviceQueueCreateInfo
	queuePriority := float32(1.0)
	for _, family := range uniqueQueueFamilies {
		queueOptions = append(queueOptions, core1_0.DeviceQueueCreateInfo{
			QueueFamilyIndex: family,
			QueuePriorities:  []float32{queuePriority},
		})
	}

	extensionNames := make([]string, len(extensions))
	copy(extensionNames, extensions)

	if selection.Profile.HasExtension(khr_portability_subset.ExtensionName) {
		extensionNames = append(extensionNames, khr_portability_subset.ExtensionName)
	}

	deviceDriver, _, err := instanceDriver.CreateDevice(selection.Device, nil, core1_0.DeviceCreateInfo{
		QueueCreateInfos:      queueOptions,
		EnabledFeatures:       features,
		EnabledExtensionNames: extensionNames,
	})
	if err != nil {
		return nil, err
	}

	device := &Device{
		Driver:         deviceDriver,
		PhysicalDevice: selection.Device,
		GraphicsQueue:  deviceDriver.GetQueue(queues.Graphics, 0),
		instanceDriver: instanceDriver,
	}
	if queues.Present != vkselect.NoFamily {
		device.PresentQueue = deviceDriver.GetQueue(queues.Present, 0)
	}
	return device, nil
}

func (d *Device) Destroy() {
	if d == nil || d.Driver == nil {
		return
	}
	d.Driver.DestroyDevice(nil)
}
