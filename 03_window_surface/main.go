package main

import (
	"os"
	"runtime"

	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/v3"
	"github.com/vkngwrapper/core/v3/core1_0"

	"github.com/vkwalk/vkwalk/vkinit"
	"github.com/vkwalk/vkwalk/vkselect"
)

// Stage 3: open a window, create a surface for it, and bring up a
// logical device whose queues can both render and present to it.

func run() error {
	cfg, err := vkinit.ParseConfig("03_window_surface", os.Args[1:])
	if err != nil {
		return err
	}
	logger := vkinit.NewLogger(cfg)

	window, err := vkinit.NewWindow("Window surface", 800, 600, false)
	if err != nil {
		return err
	}
	defer sdl.Quit()
	defer window.Destroy()

	globalDriver, err := core.CreateDriverFromProcAddr(sdl.VulkanGetVkGetInstanceProcAddr())
	if err != nil {
		return err
	}

	instance, err := vkinit.NewInstance(globalDriver, vkinit.InstanceOptions{
		AppName:    "03_window_surface",
		Extensions: window.VulkanGetInstanceExtensions(),
		Layers:     cfg.ValidationLayers(),
		Debug:      cfg.Debug,
	}, logger)
	if err != nil {
		return err
	}
	defer instance.Destroy()

	surfaceExtension, surface, err := vkinit.NewSurface(instance.Driver, window)
	if err != nil {
		return err
	}
	defer surfaceExtension.DestroySurface(surface, nil)

	picker := vkselect.Picker{
		InstanceDriver:   instance.Driver,
		SurfaceExtension: surfaceExtension,
		Surface:          surface,
		Log:              logger,
	}
	selection, err := picker.Pick(vkselect.Requirements{
		Classes:     vkselect.ClassDiscrete | vkselect.ClassIntegrated,
		QueueOps:    core1_0.QueueGraphics,
		NeedPresent: true,
	})
	if err != nil {
		return err
	}

	device, err := vkinit.NewDevice(instance.Driver, selection, nil, nil)
	if err != nil {
		return err
	}
	defer device.Destroy()

	logger.Infof("graphics on family %d, presenting on family %d",
		selection.Queues.Graphics, selection.Queues.Present)

	// Nothing to draw yet. Pump events until the window closes.
appLoop:
	for {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch event.(type) {
			case *sdl.QuitEvent:
				break appLoop
			}
		}
		sdl.Delay(16)
	}

	return nil
}

func main() {
	runtime.LockOSThread()

	err := run()
	if err != nil {
		log.Fatalf("%+v", err)
	}
}
