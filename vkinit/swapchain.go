package vkinit

import (
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/vkwalk/vkwalk/vkselect"
)

// SupportDetails is what the surface offers a device: capabilities,
// pixel formats, and presentation modes.
type SupportDetails struct {
	Capabilities *khr_surface.SurfaceCapabilities
	Formats      []khr_surface.SurfaceFormat
	PresentModes []khr_surface.PresentMode
}

// QuerySwapchainSupport fetches the surface capabilities, formats, and
// present modes the device offers for the surface.
func QuerySwapchainSupport(surfaceExtension khr_surface.ExtensionDriver, surface khr_surface.Surface, device core1_0.PhysicalDevice) (SupportDetails, error) {
	var details SupportDetails
	var err error

	details.Capabilities, _, err = surfaceExtension.GetPhysicalDeviceSurfaceCapabilities(surface, device)
	if err != nil {
		return details, err
	}
	details.Formats, _, err = surfaceExtension.GetPhysicalDeviceSurfaceFormats(surface, device)
	if err != nil {
		return details, err
	}
	details.PresentModes, _, err = surfaceExtension.GetPhysicalDeviceSurfacePresentModes(surface, device)
	return details, err
}

// ChooseSurfaceFormat prefers an 8-bit RGBA or BGRA normalized format
// with the sRGB nonlinear color space. A single undefined entry means
// the surface has no preference and the RGBA default wins; otherwise,
// when nothing matches, the first listed format is used. available
// must not be empty.
func ChooseSurfaceFormat(available []khr_surface.SurfaceFormat) khr_surface.SurfaceFormat {
	if len(available) == 1 && available[0].Format == core1_0.FormatUndefined {
		return khr_surface.SurfaceFormat{
			Format:     core1_0.FormatR8G8B8A8UnsignedNormalized,
			ColorSpace: khr_surface.ColorSpaceSRGBNonlinear,
		}
	}

	for _, format := range available {
		if (format.Format == core1_0.FormatR8G8B8A8UnsignedNormalized || format.Format == core1_0.FormatB8G8R8A8UnsignedNormalized) &&
			format.ColorSpace == khr_surface.ColorSpaceSRGBNonlinear {
			return format
		}
	}

	return available[0]
}

// ChoosePresentMode returns mailbox when offered, else FIFO, which
// every conformant driver provides.
func ChoosePresentMode(available []khr_surface.PresentMode) khr_surface.PresentMode {
	for _, presentMode := range available {
		if presentMode == khr_surface.PresentModeMailbox {
			return presentMode
		}
	}
	return khr_surface.PresentModeFIFO
}

// ChooseExtent returns the surface's current extent, or the drawable
// size clamped to the surface bounds when the surface leaves the size
// to the swapchain.
func ChooseExtent(capabilities *khr_surface.SurfaceCapabilities, drawableWidth, drawableHeight int) core1_0.Extent2D {
	if capabilities.CurrentExtent.Width != -1 {
		return capabilities.CurrentExtent
	}

	width := drawableWidth
	height := drawableHeight

	if width < capabilities.MinImageExtent.Width {
		width = capabilities.MinImageExtent.Width
	}
	if width > capabilities.MaxImageExtent.Width {
		width = capabilities.MaxImageExtent.Width
	}
	if height < capabilities.MinImageExtent.Height {
		height = capabilities.MinImageExtent.Height
	}
	if height > capabilities.MaxImageExtent.Height {
		height = capabilities.MaxImageExtent.Height
	}

	return core1_0.Extent2D{Width: width, Height: height}
}

// Swapchain bundles the swapchain handle with its images, views, and
// the extension driver managing it.
type Swapchain struct {
	Extension khr_swapchain.ExtensionDriver
	Handle    khr_swapchain.Swapchain
	Images    []core1_0.Image
	Views     []core1_0.ImageView
	Format    core1_0.Format
	Extent    core1_0.Extent2D
}

// CreateSwapchain builds a swapchain for the surface: one more image
// than the surface minimum (clamped to the maximum when bounded),
// concurrent sharing only when graphics and presentation live on
// different families, and a 2D color view per image.
func CreateSwapchain(device *Device, surfaceExtension khr_surface.ExtensionDriver, surface khr_surface.Surface, queues vkselect.QueueIndices, drawableWidth, drawableHeight int) (*Swapchain, error) {
	swapchainExtension := khr_swapchain.CreateExtensionDriverFromCoreDriver(device.Driver)

	support, err := QuerySwapchainSupport(surfaceExtension, surface, device.PhysicalDevice)
	if err != nil {
		return nil, err
	}

	surfaceFormat := ChooseSurfaceFormat(support.Formats)
	presentMode := ChoosePresentMode(support.PresentModes)
	extent := ChooseExtent(support.Capabilities, drawableWidth, drawableHeight)

	imageCount := support.Capabilities.MinImageCount + 1
	if support.Capabilities.MaxImageCount > 0 && support.Capabilities.MaxImageCount < imageCount {
		imageCount = support.Capabilities.MaxImageCount
	}

	sharingMode := core1_0.SharingModeExclusive
	var queueFamilyIndices []int
	if queues.Graphics != queues.Present {
		sharingMode = core1_0.SharingModeConcurrent
		queueFamilyIndices = append(queueFamilyIndices, queues.Graphics, queues.Present)
	}

	handle, _, err := swapchainExtension.CreateSwapchain(nil, khr_swapchain.SwapchainCreateInfo{
		Surface: surface,

		MinImageCount:    imageCount,
		ImageFormat:      surfaceFormat.Format,
		ImageColorSpace:  surfaceFormat.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       core1_0.ImageUsageColorAttachment,

		ImageSharingMode:   sharingMode,
		QueueFamilyIndices: queueFamilyIndices,

		PreTransform:   support.Capabilities.CurrentTransform,
		CompositeAlpha: khr_surface.CompositeAlphaOpaque,
		PresentMode:    presentMode,
		Clipped:        true,
	})
	if err != nil {
		return nil, err
	}

	swapchain := &Swapchain{
		Extension: swapchainExtension,
		Handle:    handle,
		Format:    surfaceFormat.Format,
		Extent:    extent,
	}

	swapchain.Images, _, err = swapchainExtension.GetSwapchainImages(handle)
	if err != nil {
		swapchain.Destroy(device)
		return nil, err
	}

	for _, image := range swapchain.Images {
		view, err := device.CreateImageView(image, swapchain.Format, core1_0.ImageAspectColor, 1)
		if err != nil {
			swapchain.Destroy(device)
			return nil, err
		}
		swapchain.Views = append(swapchain.Views, view)
	}

	return swapchain, nil
}

// Destroy releases the image views and the swapchain handle. Images
// belong to the swapchain and go with it.
func (s *Swapchain) Destroy(device *Device) {
	if s == nil {
		return
	}
	for _, view := range s.Views {
		device.Driver.DestroyImageView(view, nil)
	}
	s.Views = nil
	s.Images = nil
	if s.Handle.Initialized() {
		s.Extension.DestroySwapchain(s.Handle, nil)
		s.Handle = khr_swapchain.Swapchain{}
	}
}
