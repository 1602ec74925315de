package main

import (
	"context"
	"os"
	"runtime"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/vkngwrapper/core/v3"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"golang.org/x/sync/errgroup"

	"github.com/vkwalk/vkwalk/vkinit"
	"github.com/vkwalk/vkwalk/vkselect"
)

// Stage 1: create an instance without a window, probe every physical
// device on the machine, and print a capability report for each one.

func run() error {
	cfg, err := vkinit.ParseConfig("01_instance", os.Args[1:])
	if err != nil {
		return err
	}
	logger := vkinit.NewLogger(cfg)

	globalDriver, err := core.CreateSystemDriver()
	if err != nil {
		return errors.Wrap(err, "loading the Vulkan runtime")
	}

	instance, err := vkinit.NewInstance(globalDriver, vkinit.InstanceOptions{
		AppName: "01_instance",
		Layers:  cfg.ValidationLayers(),
		Debug:   cfg.Debug,
	}, logger)
	if err != nil {
		return err
	}
	defer instance.Destroy()

	devices, err := vkselect.Enumerate(instance.Driver)
	if err != nil {
		return err
	}
	logger.Infof("enumerated %d physical device(s)", len(devices))

	// Probe devices in parallel. Each goroutine writes its own slot so
	// the report keeps the enumeration order.
	profiles := make([]vkselect.DeviceProfile, len(devices))
	group, _ := errgroup.WithContext(context.Background())
	for i := range devices {
		idx := i
		group.Go(func() error {
			profile, err := vkselect.Snapshot(instance.Driver, devices[idx], nil, khr_surface.Surface{})
			if err != nil {
				return errors.Wrapf(err, "probing device %d", idx)
			}
			profiles[idx] = profile
			return nil
		})
	}
	err = group.Wait()
	if err != nil {
		return err
	}

	vkselect.WriteReport(os.Stdout, profiles)
	return nil
}

func main() {
	runtime.LockOSThread()

	err := run()
	if err != nil {
		log.Fatalf("%+v", err)
	}
}
