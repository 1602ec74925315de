package vkselect_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"

	"github.com/vkwalk/vkwalk/vkselect"
)

func TestWriteReport(t *testing.T) {
	profile := testProfile(core1_0.PhysicalDeviceTypeDiscreteGPU, []vkselect.QueueFamily{
		graphicsFamily(0, core1_0.QueueGraphics|core1_0.QueueCompute|core1_0.QueueTransfer, true),
		{Index: 1, Count: 2, Flags: core1_0.QueueTransfer | core1_0.QueueSparseBinding},
	})
	profile.Name = "Test GPU 1000"
	profile.APIVersion = common.Vulkan1_2
	profile.VendorID = 0x10de
	profile.MemoryTypes = []vkselect.MemoryType{
		{Flags: core1_0.MemoryPropertyDeviceLocal, HeapIndex: 0},
		{Flags: core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent, HeapIndex: 1},
	}
	profile.MemoryHeaps = []vkselect.MemoryHeap{
		{Size: 8 << 30, Flags: core1_0.MemoryHeapDeviceLocal},
		{Size: 16 << 30},
	}

	var buf bytes.Buffer
	vkselect.WriteReport(&buf, []vkselect.DeviceProfile{profile})
	report := buf.String()

	for _, want := range []string{
		"device (0) Test GPU 1000",
		"discrete GPU",
		"api: 1.2.0",
		"vendor: 0x10de",
		"queue families: (2)",
		"graphics, compute, transfer",
		"queue (1) count: (2)",
		"dev local",
		"host visible, host coherent",
		"heap (1) size: (17179869184)",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestWriteReportMultipleDevices(t *testing.T) {
	families := []vkselect.QueueFamily{graphicsFamily(0, core1_0.QueueGraphics, false)}
	profiles := []vkselect.DeviceProfile{
		testProfile(core1_0.PhysicalDeviceTypeIntegratedGPU, families),
		testProfile(core1_0.PhysicalDeviceTypeCPU, families),
	}

	var buf bytes.Buffer
	vkselect.WriteReport(&buf, profiles)
	report := buf.String()

	if !strings.Contains(report, "device (0)") || !strings.Contains(report, "device (1)") {
		t.Errorf("report must cover every device in order:\n%s", report)
	}
	if !strings.Contains(report, "integrated GPU") || !strings.Contains(report, "CPU") {
		t.Errorf("report must name each device class:\n%s", report)
	}
}
