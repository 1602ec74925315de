package main

import (
	"os"
	"runtime"

	log "github.com/sirupsen/logrus"
	"github.com/vkngwrapper/core/v3"
	"github.com/vkngwrapper/core/v3/core1_0"

	"github.com/vkwalk/vkwalk/vkinit"
	"github.com/vkwalk/vkwalk/vkselect"
)

// Stage 2: pick a GPU that can run graphics and transfer work, bring up
// a logical device with a single graphics queue, and tear it down again.

func run() error {
	cfg, err := vkinit.ParseConfig("02_logical_device", os.Args[1:])
	if err != nil {
		return err
	}
	logger := vkinit.NewLogger(cfg)

	globalDriver, err := core.CreateSystemDriver()
	if err != nil {
		return err
	}

	instance, err := vkinit.NewInstance(globalDriver, vkinit.InstanceOptions{
		AppName: "02_logical_device",
		Layers:  cfg.ValidationLayers(),
		Debug:   cfg.Debug,
	}, logger)
	if err != nil {
		return err
	}
	defer instance.Destroy()

	picker := vkselect.Picker{
		InstanceDriver: instance.Driver,
		Log:            logger,
	}
	selection, err := picker.Pick(vkselect.Requirements{
		Classes:  vkselect.ClassDiscrete | vkselect.ClassIntegrated,
		QueueOps: core1_0.QueueGraphics | core1_0.QueueTransfer,
	})
	if err != nil {
		return err
	}

	device, err := vkinit.NewDevice(instance.Driver, selection, nil, nil)
	if err != nil {
		return err
	}
	defer device.Destroy()

	logger.Infof("logical device up on %s, graphics queue family %d",
		selection.Profile.Name, selection.Queues.Graphics)

	return nil
}

func main() {
	runtime.LockOSThread()

	err := run()
	if err != nil {
		log.Fatalf("%+v", err)
	}
}
