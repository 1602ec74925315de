package vkselect_test

import (
	"testing"

	"github.com/vkngwrapper/core/v3/core1_0"

	"github.com/vkwalk/vkwalk/vkselect"
)

func TestResolveQueuesSeparateFamilies(t *testing.T) {
	profile := testProfile(core1_0.PhysicalDeviceTypeDiscreteGPU, []vkselect.QueueFamily{
		graphicsFamily(0, core1_0.QueueGraphics, false),
		{Index: 1, Count: 1, CanPresent: true},
	})

	indices := vkselect.ResolveQueues(profile, true)
	if indices.Graphics != 0 || indices.Present != 1 {
		t.Errorf("ResolveQueues() = {%d %d}, want {0 1}", indices.Graphics, indices.Present)
	}
	if !indices.Valid() {
		t.Error("indices with both slots filled must be valid")
	}
}

func TestResolveQueuesSharedFamily(t *testing.T) {
	profile := testProfile(core1_0.PhysicalDeviceTypeDiscreteGPU, []vkselect.QueueFamily{
		graphicsFamily(0, core1_0.QueueGraphics, true),
	})

	indices := vkselect.ResolveQueues(profile, true)
	if indices.Graphics != 0 || indices.Present != 0 {
		t.Errorf("ResolveQueues() = {%d %d}, want {0 0}", indices.Graphics, indices.Present)
	}
}

func TestResolveQueuesKeepsFirstMatch(t *testing.T) {
	// Family 1 could serve both slots, but family 0 already satisfied
	// the graphics condition and must stay recorded.
	profile := testProfile(core1_0.PhysicalDeviceTypeDiscreteGPU, []vkselect.QueueFamily{
		graphicsFamily(0, core1_0.QueueGraphics, false),
		graphicsFamily(1, core1_0.QueueGraphics, true),
	})

	indices := vkselect.ResolveQueues(profile, true)
	if indices.Graphics != 0 {
		t.Errorf("graphics family = %d, want first match 0", indices.Graphics)
	}
	if indices.Present != 1 {
		t.Errorf("present family = %d, want 1", indices.Present)
	}
}

func TestResolveQueuesSkipsEmptyFamilies(t *testing.T) {
	profile := testProfile(core1_0.PhysicalDeviceTypeDiscreteGPU, []vkselect.QueueFamily{
		{Index: 0, Count: 0, Flags: core1_0.QueueGraphics},
		graphicsFamily(1, core1_0.QueueGraphics, false),
	})

	indices := vkselect.ResolveQueues(profile, false)
	if indices.Graphics != 1 {
		t.Errorf("graphics family = %d, want 1 (family 0 has no queues)", indices.Graphics)
	}
}

func TestResolveQueuesUnresolved(t *testing.T) {
	profile := testProfile(core1_0.PhysicalDeviceTypeDiscreteGPU, []vkselect.QueueFamily{
		graphicsFamily(0, core1_0.QueueCompute|core1_0.QueueTransfer, false),
	})

	indices := vkselect.ResolveQueues(profile, true)
	if indices.Graphics != vkselect.NoFamily || indices.Present != vkselect.NoFamily {
		t.Errorf("ResolveQueues() = {%d %d}, want both %d", indices.Graphics, indices.Present, vkselect.NoFamily)
	}
	if indices.Valid() || indices.HasGraphics() {
		t.Error("unresolved indices must not report valid")
	}

	empty := vkselect.ResolveQueues(vkselect.DeviceProfile{}, true)
	if empty.Valid() {
		t.Error("profile with no families must resolve nothing")
	}
}

func TestResolveQueuesGraphicsOnlyScope(t *testing.T) {
	profile := testProfile(core1_0.PhysicalDeviceTypeDiscreteGPU, []vkselect.QueueFamily{
		graphicsFamily(0, core1_0.QueueGraphics|core1_0.QueueCompute, false),
	})

	indices := vkselect.ResolveQueues(profile, false)
	if !indices.HasGraphics() {
		t.Error("graphics-capable family must resolve when presentation is out of scope")
	}
	if indices.Valid() {
		t.Error("present slot must stay unresolved without a surface in scope")
	}
}
