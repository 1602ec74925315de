package vkinit

import (
	"github.com/vkngwrapper/core/v3/core1_0"
)

// Bytecode reassembles raw SPIR-V bytes into the little-endian words the
// shader module create call expects.
func Bytecode(b []byte) []uint32 {
	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] = 0
		byteCode[i] |= uint32(b[byteIndex])
		byteCode[i] |= uint32(b[byteIndex+1]) << 8
		byteCode[i] |= uint32(b[byteIndex+2]) << 16
		byteCode[i] |= uint32(b[byteIndex+3]) << 24
	}

	return byteCode
}

// CreateShaderModule builds a shader module from raw SPIR-V bytes.
func (d *Device) CreateShaderModule(spirv []byte) (core1_0.ShaderModule, error) {
	module, _, err := d.Driver.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{
		Code: Bytecode(spirv),
	})
	return module, err
}
