package vkg

import (
	"os"
	"unsafe"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// ShaderModule is a loaded SPIR-V module. It implements cgin.ShaderModule.
type ShaderModule struct {
	Device         *Device
	Description    string
	VKShaderModule vk.ShaderModule
}

// LoadShaderModuleFromFile loads a compiled SPIR-V file.
func (d *Device) LoadShaderModuleFromFile(file string) (*ShaderModule, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrap(err, "read shader")
	}
	s, err := d.CreateShaderModule(data)
	if err != nil {
		return nil, errors.Wrapf(err, "shader %s", file)
	}
	s.Description = file
	return s, nil
}

// CreateShaderModule creates a module from SPIR-V code.
func (d *Device) CreateShaderModule(code []byte) (*ShaderModule, error) {
	words, err := spirvWords(code)
	if err != nil {
		return nil, err
	}

	var module vk.ShaderModule
	err = vk.Error(vk.CreateShaderModule(d.VKDevice, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    words,
	}, nil, &module))
	if err != nil {
		return nil, errors.Wrap(err, "create shader module")
	}
	return &ShaderModule{Device: d, VKShaderModule: module}, nil
}

func (s *ShaderModule) VKPipelineShaderStageCreateInfo(stage vk.ShaderStageFlagBits, entryPoint string) vk.PipelineShaderStageCreateInfo {
	return vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  stage,
		Module: s.VKShaderModule,
		PName:  safeString(entryPoint),
	}
}

func (s *ShaderModule) Destroy() {
	vk.DestroyShaderModule(s.Device.VKDevice, s.VKShaderModule, nil)
}

const spirvMagic = 0x07230203

var errBadSPIRV = errors.New("not a SPIR-V module")

// spirvWords reinterprets code as 32 bit words without copying.
func spirvWords(code []byte) ([]uint32, error) {
	if len(code) < 4 || len(code)%4 != 0 {
		return nil, errBadSPIRV
	}
	words := unsafe.Slice((*uint32)(unsafe.Pointer(&code[0])), len(code)/4)
	if words[0] != spirvMagic {
		return nil, errBadSPIRV
	}
	return words, nil
}
