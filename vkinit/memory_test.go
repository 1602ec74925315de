package vkinit

import (
	"testing"

	"github.com/vkngwrapper/core/v3/core1_0"
)

func TestFindMemoryTypeFirstFit(t *testing.T) {
	memoryTypes := []core1_0.MemoryType{
		{PropertyFlags: core1_0.MemoryPropertyDeviceLocal},
		{PropertyFlags: core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent},
		{PropertyFlags: core1_0.MemoryPropertyDeviceLocal | core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent},
	}

	index, err := findMemoryType(memoryTypes, 0b111, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if index != 1 {
		t.Errorf("expected the first matching type at index 1, got %d", index)
	}
}

func TestFindMemoryTypeHonorsFilter(t *testing.T) {
	memoryTypes := []core1_0.MemoryType{
		{PropertyFlags: core1_0.MemoryPropertyDeviceLocal},
		{PropertyFlags: core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent},
		{PropertyFlags: core1_0.MemoryPropertyDeviceLocal | core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent},
	}

	index, err := findMemoryType(memoryTypes, 0b101, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if index != 2 {
		t.Errorf("expected index 1 skipped by the requirement mask, got %d", index)
	}
}

func TestFindMemoryTypeNoMatch(t *testing.T) {
	memoryTypes := []core1_0.MemoryType{
		{PropertyFlags: core1_0.MemoryPropertyDeviceLocal},
	}

	_, err := findMemoryType(memoryTypes, 0b1, core1_0.MemoryPropertyHostVisible)
	if err == nil {
		t.Error("expected an error when no type has the requested properties")
	}

	_, err = findMemoryType(memoryTypes, 0, core1_0.MemoryPropertyDeviceLocal)
	if err == nil {
		t.Error("expected an error when the requirement mask excludes every type")
	}
}
