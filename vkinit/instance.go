package vkinit

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_portability_enumeration"
)

// InstanceOptions names the application to the driver and selects the
// instance-level extensions and layers to enable.
type InstanceOptions struct {
	AppName    string
	AppVersion common.Version
	// APIVersion defaults to Vulkan 1.2 when zero.
	APIVersion common.APIVersion
	// Extensions are the window-system extensions the stage needs,
	// usually from sdl.Window.VulkanGetInstanceExtensions.
	Extensions []string
	// Layers are verified against the driver before use.
	Layers []string
	Debug  bool
}

// Instance bundles the created instance driver with its debug
// messenger so teardown runs in the right order.
type Instance struct {
	Driver core1_0.CoreInstanceDriver

	debugDriver    ext_debug_utils.ExtensionDriver
	debugMessenger ext_debug_utils.DebugUtilsMessenger
}

// NewInstance verifies every requested extension and layer against
// what the driver offers, opts into portability enumeration when
// present, and creates the instance. With Debug set, validation
// messages flow into the logger from instance creation onward.
func NewInstance(globalDriver core1_0.GlobalDriver, options InstanceOptions, logger logrus.FieldLogger) (*Instance, error) {
	apiVersion := options.APIVersion
	if apiVersion == 0 {
		apiVersion = common.Vulkan1_2
	}

	createInfo := core1_0.InstanceCreateInfo{
		ApplicationName:    options.AppName,
		ApplicationVersion: options.AppVersion,
		EngineName:         "No Engine",
		EngineVersion:      common.CreateVersion(1, 0, 0),
		APIVersion:         apiVersion,
	}

	available, _, err := globalDriver.AvailableExtensions()
	if err != nil {
		return nil, err
	}
	logger.Debugf("found %d supported instance extensions", len(available))

	requested := options.Extensions
	if options.Debug {
		requested = append(requested, ext_debug_utils.ExtensionName)
	}
	for _, name := range requested {
		_, supported := available[name]
		if !supported {
			return nil, errors.Newf("instance extension %s not available", name)
		}
		createInfo.EnabledExtensionNames = append(createInfo.EnabledExtensionNames, name)
	}

	// Keeps instance creation working on portability implementations
	// such as MoltenVK.
	_, enumerationSupported := available[khr_portability_enumeration.ExtensionName]
	if enumerationSupported {
		createInfo.EnabledExtensionNames = append(createInfo.EnabledExtensionNames, khr_portability_enumeration.ExtensionName)
		createInfo.Flags |= khr_portability_enumeration.InstanceCreateEnumeratePortability
	}

	if len(options.Layers) > 0 {
		availableLayers, _, err := globalDriver.AvailableLayers()
		if err != nil {
			return nil, err
		}
		logger.Debugf("found %d supported layers", len(availableLayers))

		for _, name := range options.Layers {
			_, supported := availableLayers[name]
			if !supported {
				return nil, errors.Newf("layer %s not available, install the LunarG Vulkan SDK", name)
			}
			createInfo.EnabledLayerNames = append(createInfo.EnabledLayerNames, name)
		}
	}

	messengerOptions := debugMessengerOptions(logger)
	if options.Debug {
		// Chained so instance creation and destruction are covered too.
		createInfo.Next = messengerOptions
	}

	instance := &Instance{}
	instance.Driver, _, err = globalDriver.CreateInstance(nil, createInfo)
	if err != nil {
		return nil, err
	}

	if options.Debug {
		instance.debugDriver = ext_debug_utils.CreateExtensionDriverFromCoreDriver(instance.Driver)
		instance.debugMessenger, _, err = instance.debugDriver.CreateDebugUtilsMessenger(nil, messengerOptions)
		if err != nil {
			instance.Driver.DestroyInstance(nil)
			return nil, err
		}
	}

	return instance, nil
}

func debugMessengerOptions(logger logrus.FieldLogger) ext_debug_utils.DebugUtilsMessengerCreateInfo {
	return ext_debug_utils.DebugUtilsMessengerCreateInfo{
		MessageSeverity: ext_debug_utils.SeverityError | ext_debug_utils.SeverityWarning,
		MessageType:     ext_debug_utils.TypeGeneral | ext_debug_utils.TypeValidation | ext_debug_utils.TypePerformance,
		UserCallback: func(msgType ext_debug_utils.DebugUtilsMessageTypeFlags, severity ext_debug_utils.DebugUtilsMessageSeverityFlags, data *ext_debug_utils.DebugUtilsMessengerCallbackData) bool {
			entry := logger.WithField("messageType", msgType.String())
			switch {
			case severity&ext_debug_utils.SeverityError != 0:
				entry.Error(data.Message)
			case severity&ext_debug_utils.SeverityWarning != 0:
				entry.Warning(data.Message)
			default:
				entry.Debug(data.Message)
			}
			return false
		},
	}
}

// Destroy tears down the debug messenger and then the instance. Safe
// to call on a partially built value.
func (i *Instance) Destroy() {
	if i == nil {
		return
	}
	if i.debugMessenger.Initialized() {
		i.debugDriver.DestroyDebugUtilsMessenger(i.debugMessenger, nil)
	}
	if i.Driver != nil {
		i.Driver.DestroyInstance(nil)
	}
}
