package vkinit_test

import (
	"testing"

	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"

	"github.com/vkwalk/vkwalk/vkinit"
)

func TestChooseSurfaceFormatUndefined(t *testing.T) {
	available := []khr_surface.SurfaceFormat{
		{Format: core1_0.FormatUndefined, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear},
	}

	format := vkinit.ChooseSurfaceFormat(available)
	if format.Format != core1_0.FormatR8G8B8A8UnsignedNormalized {
		t.Errorf("expected the preferred format when the surface has no preference, got %s", format.Format)
	}
	if format.ColorSpace != khr_surface.ColorSpaceSRGBNonlinear {
		t.Errorf("expected sRGB nonlinear color space, got %d", format.ColorSpace)
	}
}

func TestChooseSurfaceFormatPreferred(t *testing.T) {
	available := []khr_surface.SurfaceFormat{
		{Format: core1_0.FormatB8G8R8A8SRGB, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear},
		{Format: core1_0.FormatB8G8R8A8UnsignedNormalized, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear},
	}

	format := vkinit.ChooseSurfaceFormat(available)
	if format.Format != core1_0.FormatB8G8R8A8UnsignedNormalized {
		t.Errorf("expected the first matching unorm format, got %s", format.Format)
	}
}

func TestChooseSurfaceFormatFallback(t *testing.T) {
	available := []khr_surface.SurfaceFormat{
		{Format: core1_0.FormatB8G8R8A8SRGB, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear},
		{Format: core1_0.FormatR8G8B8A8SRGB, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear},
	}

	format := vkinit.ChooseSurfaceFormat(available)
	if format.Format != core1_0.FormatB8G8R8A8SRGB {
		t.Errorf("expected the first available format as fallback, got %s", format.Format)
	}
}

func TestChoosePresentMode(t *testing.T) {
	withMailbox := []khr_surface.PresentMode{
		khr_surface.PresentModeFIFO,
		khr_surface.PresentModeMailbox,
	}
	if mode := vkinit.ChoosePresentMode(withMailbox); mode != khr_surface.PresentModeMailbox {
		t.Errorf("expected mailbox when available, got %s", mode)
	}

	fifoOnly := []khr_surface.PresentMode{khr_surface.PresentModeFIFO}
	if mode := vkinit.ChoosePresentMode(fifoOnly); mode != khr_surface.PresentModeFIFO {
		t.Errorf("expected fifo, got %s", mode)
	}

	if mode := vkinit.ChoosePresentMode(nil); mode != khr_surface.PresentModeFIFO {
		t.Errorf("expected fifo as the guaranteed fallback, got %s", mode)
	}
}

func TestChooseExtentCurrent(t *testing.T) {
	capabilities := &khr_surface.SurfaceCapabilities{
		CurrentExtent: core1_0.Extent2D{Width: 640, Height: 480},
	}

	extent := vkinit.ChooseExtent(capabilities, 1024, 768)
	if extent.Width != 640 || extent.Height != 480 {
		t.Errorf("expected the surface's fixed extent, got %dx%d", extent.Width, extent.Height)
	}
}

func TestChooseExtentClamped(t *testing.T) {
	capabilities := &khr_surface.SurfaceCapabilities{
		CurrentExtent:  core1_0.Extent2D{Width: -1, Height: -1},
		MinImageExtent: core1_0.Extent2D{Width: 100, Height: 100},
		MaxImageExtent: core1_0.Extent2D{Width: 800, Height: 600},
	}

	extent := vkinit.ChooseExtent(capabilities, 1920, 50)
	if extent.Width != 800 {
		t.Errorf("expected width clamped to 800, got %d", extent.Width)
	}
	if extent.Height != 100 {
		t.Errorf("expected height clamped to 100, got %d", extent.Height)
	}

	extent = vkinit.ChooseExtent(capabilities, 640, 480)
	if extent.Width != 640 || extent.Height != 480 {
		t.Errorf("expected the drawable size unchanged, got %dx%d", extent.Width, extent.Height)
	}
}
