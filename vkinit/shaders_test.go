package vkinit_test

import (
	"testing"

	"github.com/vkwalk/vkwalk/vkinit"
)

func TestBytecode(t *testing.T) {
	// SPIR-V magic number in little-endian byte order.
	words := vkinit.Bytecode([]byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00})
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(words))
	}
	if words[0] != 0x07230203 {
		t.Errorf("expected magic word 0x07230203, got 0x%08x", words[0])
	}
	if words[1] != 0x00010000 {
		t.Errorf("expected version word 0x00010000, got 0x%08x", words[1])
	}
}

func TestBytecodeEmpty(t *testing.T) {
	if words := vkinit.Bytecode(nil); len(words) != 0 {
		t.Errorf("expected no words for empty input, got %d", len(words))
	}
}
