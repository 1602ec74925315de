package vkselect_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/vkwalk/vkwalk/vkselect"
)

func graphicsFamily(index int, flags core1_0.QueueFlags, canPresent bool) vkselect.QueueFamily {
	return vkselect.QueueFamily{Index: index, Count: 1, Flags: flags, CanPresent: canPresent}
}

func testProfile(class core1_0.PhysicalDeviceType, families []vkselect.QueueFamily, extensions ...string) vkselect.DeviceProfile {
	extensionSet := make(map[string]struct{}, len(extensions))
	for _, name := range extensions {
		extensionSet[name] = struct{}{}
	}
	return vkselect.DeviceProfile{
		Name:       "test device",
		Class:      class,
		Families:   families,
		Extensions: extensionSet,
		Features:   &core1_0.PhysicalDeviceFeatures{},
	}
}

func TestSuitableDeviceClass(t *testing.T) {
	families := []vkselect.QueueFamily{graphicsFamily(0, core1_0.QueueGraphics, false)}

	tests := []struct {
		name  string
		class core1_0.PhysicalDeviceType
		mask  vkselect.DeviceClassMask
		want  bool
	}{
		{"discrete against discrete mask", core1_0.PhysicalDeviceTypeDiscreteGPU, vkselect.ClassDiscrete, true},
		{"discrete against combined mask", core1_0.PhysicalDeviceTypeDiscreteGPU, vkselect.ClassDiscrete | vkselect.ClassIntegrated, true},
		{"integrated against discrete mask", core1_0.PhysicalDeviceTypeIntegratedGPU, vkselect.ClassDiscrete, false},
		{"cpu against any", core1_0.PhysicalDeviceTypeCPU, vkselect.ClassAny, true},
		{"other against any", core1_0.PhysicalDeviceTypeOther, vkselect.ClassAny, false},
		{"other against every class bit", core1_0.PhysicalDeviceTypeOther, vkselect.ClassDiscrete | vkselect.ClassIntegrated | vkselect.ClassVirtual | vkselect.ClassCPU, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := testProfile(tt.class, families)
			got := vkselect.Suitable(profile, vkselect.Requirements{Classes: tt.mask})
			if got != tt.want {
				t.Errorf("Suitable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSuitableQueueOperations(t *testing.T) {
	tests := []struct {
		name     string
		families []vkselect.QueueFamily
		ops      core1_0.QueueFlags
		want     bool
	}{
		{
			"exact match",
			[]vkselect.QueueFamily{graphicsFamily(0, core1_0.QueueGraphics|core1_0.QueueTransfer, false)},
			core1_0.QueueGraphics | core1_0.QueueTransfer,
			true,
		},
		{
			"superset satisfies subset",
			[]vkselect.QueueFamily{graphicsFamily(0, core1_0.QueueGraphics|core1_0.QueueTransfer, false)},
			core1_0.QueueGraphics,
			true,
		},
		{
			"missing compute bit",
			[]vkselect.QueueFamily{graphicsFamily(0, core1_0.QueueGraphics|core1_0.QueueTransfer, false)},
			core1_0.QueueGraphics | core1_0.QueueCompute,
			false,
		},
		{
			"split across families does not count",
			[]vkselect.QueueFamily{
				graphicsFamily(0, core1_0.QueueGraphics, false),
				graphicsFamily(1, core1_0.QueueCompute, false),
			},
			core1_0.QueueGraphics | core1_0.QueueCompute,
			false,
		},
		{
			"zero mask always passes",
			[]vkselect.QueueFamily{graphicsFamily(0, core1_0.QueueGraphics, false)},
			0,
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := testProfile(core1_0.PhysicalDeviceTypeDiscreteGPU, tt.families)
			got := vkselect.Suitable(profile, vkselect.Requirements{QueueOps: tt.ops})
			if got != tt.want {
				t.Errorf("Suitable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSuitableExtensions(t *testing.T) {
	families := []vkselect.QueueFamily{graphicsFamily(0, core1_0.QueueGraphics, false)}
	required := []string{khr_swapchain.ExtensionName, "VK_KHR_maintenance1"}

	missingOne := testProfile(core1_0.PhysicalDeviceTypeDiscreteGPU, families, khr_swapchain.ExtensionName)
	if vkselect.Suitable(missingOne, vkselect.Requirements{Extensions: required}) {
		t.Error("device missing a required extension must not be suitable")
	}

	allPlusExtras := testProfile(core1_0.PhysicalDeviceTypeDiscreteGPU, families,
		khr_swapchain.ExtensionName, "VK_KHR_maintenance1", "VK_EXT_memory_budget")
	if !vkselect.Suitable(allPlusExtras, vkselect.Requirements{Extensions: required}) {
		t.Error("device with every required extension must be suitable")
	}
}

func TestSuitableSwapchainSupport(t *testing.T) {
	families := []vkselect.QueueFamily{graphicsFamily(0, core1_0.QueueGraphics, true)}
	format := khr_surface.SurfaceFormat{Format: core1_0.FormatB8G8R8A8SRGB, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear}
	req := vkselect.Requirements{NeedSwapchain: true}

	tests := []struct {
		name       string
		extensions []string
		formats    []khr_surface.SurfaceFormat
		modes      []khr_surface.PresentMode
		want       bool
	}{
		{"extension missing", nil, []khr_surface.SurfaceFormat{format}, []khr_surface.PresentMode{khr_surface.PresentModeFIFO}, false},
		{"no present modes", []string{khr_swapchain.ExtensionName}, []khr_surface.SurfaceFormat{format}, nil, false},
		{"no surface formats", []string{khr_swapchain.ExtensionName}, nil, []khr_surface.PresentMode{khr_surface.PresentModeFIFO}, false},
		{"formats and modes present", []string{khr_swapchain.ExtensionName}, []khr_surface.SurfaceFormat{format}, []khr_surface.PresentMode{khr_surface.PresentModeFIFO}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := testProfile(core1_0.PhysicalDeviceTypeDiscreteGPU, families, tt.extensions...)
			profile.SurfaceFormats = tt.formats
			profile.PresentModes = tt.modes
			got := vkselect.Suitable(profile, req)
			if got != tt.want {
				t.Errorf("Suitable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSuitableSamplerAnisotropy(t *testing.T) {
	families := []vkselect.QueueFamily{graphicsFamily(0, core1_0.QueueGraphics, false)}
	req := vkselect.Requirements{SamplerAnisotropy: true}

	profile := testProfile(core1_0.PhysicalDeviceTypeDiscreteGPU, families)
	if vkselect.Suitable(profile, req) {
		t.Error("device without the feature must not be suitable")
	}

	profile.Features = &core1_0.PhysicalDeviceFeatures{SamplerAnisotropy: true}
	if !vkselect.Suitable(profile, req) {
		t.Error("device with the feature must be suitable")
	}

	profile.Features = nil
	if vkselect.Suitable(profile, req) {
		t.Error("device with no feature data must not be suitable")
	}
}

func TestSelectFirstFit(t *testing.T) {
	families := []vkselect.QueueFamily{graphicsFamily(0, core1_0.QueueGraphics, false)}
	profiles := []vkselect.DeviceProfile{
		testProfile(core1_0.PhysicalDeviceTypeIntegratedGPU, families),
		testProfile(core1_0.PhysicalDeviceTypeOther, families),
		testProfile(core1_0.PhysicalDeviceTypeDiscreteGPU, families),
	}

	index, err := vkselect.Select(profiles, vkselect.Requirements{})
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if index != 0 {
		t.Errorf("Select() = %d, want first qualifying index 0", index)
	}
}

func TestSelectNoMatch(t *testing.T) {
	families := []vkselect.QueueFamily{graphicsFamily(0, core1_0.QueueCompute, false)}
	profiles := []vkselect.DeviceProfile{
		testProfile(core1_0.PhysicalDeviceTypeDiscreteGPU, families),
		testProfile(core1_0.PhysicalDeviceTypeOther, families),
	}

	index, err := vkselect.Select(profiles, vkselect.Requirements{QueueOps: core1_0.QueueGraphics})
	if !errors.Is(err, vkselect.ErrNoSuitableDevice) {
		t.Fatalf("Select() error = %v, want ErrNoSuitableDevice", err)
	}
	if index != vkselect.NoFamily {
		t.Errorf("Select() = %d, want %d", index, vkselect.NoFamily)
	}

	index, err = vkselect.Select(nil, vkselect.Requirements{})
	if !errors.Is(err, vkselect.ErrNoSuitableDevice) {
		t.Fatalf("Select(nil) error = %v, want ErrNoSuitableDevice", err)
	}
	if index != vkselect.NoFamily {
		t.Errorf("Select(nil) = %d, want %d", index, vkselect.NoFamily)
	}
}

func TestSuitableZeroValueProfile(t *testing.T) {
	// A zero profile has nil maps, nil features, and the "other" class.
	// It must be rejected without panicking.
	if vkselect.Suitable(vkselect.DeviceProfile{}, vkselect.Requirements{}) {
		t.Error("zero profile must not be suitable")
	}
	if vkselect.Suitable(vkselect.DeviceProfile{Class: core1_0.PhysicalDeviceTypeDiscreteGPU}, vkselect.Requirements{
		Extensions:        []string{khr_swapchain.ExtensionName},
		NeedSwapchain:     true,
		SamplerAnisotropy: true,
	}) {
		t.Error("empty discrete profile must not satisfy non-trivial requirements")
	}
}
