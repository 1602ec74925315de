package vkselect

import (
	"fmt"
	"io"
	"strings"

	"github.com/vkngwrapper/core/v3/core1_0"
)

// Queue and memory bits reported by newer drivers that core1_0 has no
// constants for. Only used to label report output.
const (
	queueVideoDecode core1_0.QueueFlags = 0x00000020
	queueVideoEncode core1_0.QueueFlags = 0x00000040
	queueOpticalFlow core1_0.QueueFlags = 0x00000100

	memoryDeviceCoherentAMD core1_0.MemoryPropertyFlags = 0x00000040
	memoryDeviceUncachedAMD core1_0.MemoryPropertyFlags = 0x00000080
	memoryRDMACapableNV     core1_0.MemoryPropertyFlags = 0x00000100
)

// WriteReport prints a capability summary of each profile, one block
// per device, in the order given.
func WriteReport(w io.Writer, profiles []DeviceProfile) {
	for i, profile := range profiles {
		fmt.Fprintf(w, "[+] device (%d) %s  type: %s  api: %s  driver: %s\n",
			i, profile.Name, deviceClassString(profile.Class),
			formatVersion(uint32(profile.APIVersion)), formatVersion(uint32(profile.DriverVersion)))
		fmt.Fprintf(w, "        vendor: 0x%x  device: 0x%x  pipeline cache UUID: %s\n",
			profile.VendorID, profile.DeviceID, profile.PipelineCacheUUID)
		fmt.Fprintf(w, "        queue families: (%d) memory types: (%d) heap types: (%d) extensions: (%d)\n",
			len(profile.Families), len(profile.MemoryTypes), len(profile.MemoryHeaps), len(profile.Extensions))

		for _, family := range profile.Families {
			fmt.Fprintf(w, "        queue (%d) count: (%d) flags: 0x%x (%s)\n",
				family.Index, family.Count, uint32(family.Flags), strings.Join(queueFlagNames(family.Flags), ", "))
		}
		for j, memoryType := range profile.MemoryTypes {
			fmt.Fprintf(w, "        memory (%d) heap: (%d) flags: 0x%x (%s)\n",
				j, memoryType.HeapIndex, uint32(memoryType.Flags), strings.Join(memoryFlagNames(memoryType.Flags), ", "))
		}
		for j, heap := range profile.MemoryHeaps {
			fmt.Fprintf(w, "        heap (%d) size: (%d) flags: 0x%x (%s)\n",
				j, heap.Size, uint32(heap.Flags), strings.Join(heapFlagNames(heap.Flags), ", "))
		}
	}
}

func deviceClassString(class core1_0.PhysicalDeviceType) string {
	switch class {
	case core1_0.PhysicalDeviceTypeIntegratedGPU:
		return "integrated GPU"
	case core1_0.PhysicalDeviceTypeDiscreteGPU:
		return "discrete GPU"
	case core1_0.PhysicalDeviceTypeVirtualGPU:
		return "virtual GPU"
	case core1_0.PhysicalDeviceTypeCPU:
		return "CPU"
	default:
		return "other"
	}
}

func formatVersion(version uint32) string {
	return fmt.Sprintf("%d.%d.%d", version>>22, (version>>12)&0x3ff, version&0xfff)
}

func queueFlagNames(flags core1_0.QueueFlags) []string {
	var names []string
	if flags&core1_0.QueueGraphics != 0 {
		names = append(names, "graphics")
	}
	if flags&core1_0.QueueCompute != 0 {
		names = append(names, "compute")
	}
	if flags&core1_0.QueueTransfer != 0 {
		names = append(names, "transfer")
	}
	if flags&core1_0.QueueSparseBinding != 0 {
		names = append(names, "sparse")
	}
	if flags&core1_0.QueueProtected != 0 {
		names = append(names, "protected")
	}
	if flags&queueVideoDecode != 0 {
		names = append(names, "video decode")
	}
	if flags&queueVideoEncode != 0 {
		names = append(names, "video encode")
	}
	if flags&queueOpticalFlow != 0 {
		names = append(names, "optical flow")
	}
	return names
}

func memoryFlagNames(flags core1_0.MemoryPropertyFlags) []string {
	var names []string
	if flags&core1_0.MemoryPropertyDeviceLocal != 0 {
		names = append(names, "dev local")
	}
	if flags&core1_0.MemoryPropertyHostVisible != 0 {
		names = append(names, "host visible")
	}
	if flags&core1_0.MemoryPropertyHostCoherent != 0 {
		names = append(names, "host coherent")
	}
	if flags&core1_0.MemoryPropertyHostCached != 0 {
		names = append(names, "host cached")
	}
	if flags&core1_0.MemoryPropertyLazilyAllocated != 0 {
		names = append(names, "lazy alloc")
	}
	if flags&core1_0.MemoryPropertyProtected != 0 {
		names = append(names, "protected")
	}
	if flags&memoryDeviceCoherentAMD != 0 {
		names = append(names, "AMD dev coherent")
	}
	if flags&memoryDeviceUncachedAMD != 0 {
		names = append(names, "AMD dev uncached")
	}
	if flags&memoryRDMACapableNV != 0 {
		names = append(names, "rdma")
	}
	return names
}

func heapFlagNames(flags core1_0.MemoryHeapFlags) []string {
	var names []string
	if flags&core1_0.MemoryHeapDeviceLocal != 0 {
		names = append(names, "dev local")
	}
	if flags&core1_0.MemoryHeapMultiInstance != 0 {
		names = append(names, "multi instance")
	}
	return names
}
