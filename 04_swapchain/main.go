package main

import (
	"os"
	"runtime"

	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/v3"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/vkwalk/vkwalk/vkinit"
	"github.com/vkwalk/vkwalk/vkselect"
)

// Stage 4: extend device selection with swapchain support and build a
// swapchain with an image view per image.

func run() error {
	cfg, err := vkinit.ParseConfig("04_swapchain", os.Args[1:])
	if err != nil {
		return err
	}
	logger := vkinit.NewLogger(cfg)

	window, err := vkinit.NewWindow("Swapchain", 800, 600, false)
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
		AppName:    "04_swapchain",
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
		Classes:       vkselect.ClassDiscrete | vkselect.ClassIntegrated,
		QueueOps:      core1_0.QueueGraphics,
		NeedPresent:   true,
		NeedSwapchain: true,
	})
	if err != nil {
		return err
	}

	device, err := vkinit.NewDevice(instance.Driver, selection, []string{khr_swapchain.ExtensionName}, nil)
	if err != nil {
		return err
	}
	defer device.Destroy()

	drawableW, drawableH := window.VulkanGetDrawableSize()
	swapchain, err := vkinit.CreateSwapchain(device, surfaceExtension, surface, selection.Queues, int(drawableW), int(drawableH))
	if err != nil {
		return err
	}
	defer swapchain.Destroy(device)

	logger.Infof("swapchain up: %d images, format %s, extent %dx%d",
		len(swapchain.Images), swapchain.Format, swapchain.Extent.Width, swapchain.Extent.Height)

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
