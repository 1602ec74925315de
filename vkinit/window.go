package vkinit

import (
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	vkng_sdl2 "github.com/vkngwrapper/integrations/sdl2/v3"
)

// NewWindow initializes SDL video and opens a Vulkan-capable window.
func NewWindow(title string, width, height int, resizable bool) (*sdl.Window, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, err
	}

	var flags uint32 = sdl.WINDOW_SHOWN | sdl.WINDOW_VULKAN
	if resizable {
		flags |= sdl.WINDOW_RESIZABLE
	}

	return sdl.CreateWindow(title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, int32(width), int32(height), flags)
}

// NewSurface creates the window surface along with the extension
// driver that manages it.
func NewSurface(instanceDriver core1_0.CoreInstanceDriver, window *sdl.Window) (khr_surface.ExtensionDriver, khr_surface.Surface, error) {
	surfaceExtension := khr_surface.CreateExtensionDriverFromCoreDriver(instanceDriver)
	surface, err := vkng_sdl2.CreateSurface(instanceDriver.Instance(), surfaceExtension, window)
	if err != nil {
		return nil, khr_surface.Surface{}, err
	}
	return surfaceExtension, surface, nil
}
