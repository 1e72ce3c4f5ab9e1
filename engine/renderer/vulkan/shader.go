package vulkan

import (
	"fmt"
	"os"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/volren/engine/core"
)

/**
 * @brief Represents a single shader stage loaded from a compiled SPIR-V
 * binary.
 */
type VulkanShaderStage struct {
	/** @brief The internal shader module handle. */
	Handle vk.ShaderModule
	/** @brief The pipeline shader stage creation info. */
	ShaderStageCreateInfo vk.PipelineShaderStageCreateInfo
}

// NewShaderModule loads `assets/shaders/<name>.<typeStr>.spv` and wraps it in
// a pipeline stage. typeStr is "vert" or "frag".
func NewShaderModule(context *VulkanContext, name string, typeStr string, shaderStageFlag vk.ShaderStageFlagBits) (*VulkanShaderStage, error) {
	fileName := fmt.Sprintf("assets/shaders/%s.%s.spv", name, typeStr)

	code, err := os.ReadFile(fileName)
	if err != nil {
		core.LogError("unable to read shader module %s: %v", fileName, err)
		return nil, err
	}
	if len(code) == 0 || len(code)%4 != 0 {
		err := fmt.Errorf("shader module %s is not valid SPIR-V", fileName)
		core.LogError(err.Error())
		return nil, err
	}

	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code)),
		PCode:    sliceUint32(code),
	}
	createInfo.Deref()

	stage := &VulkanShaderStage{}
	if res := vk.CreateShaderModule(context.Device.LogicalDevice, &createInfo, context.Allocator, &stage.Handle); res != vk.Success {
		err := fmt.Errorf("vkCreateShaderModule failed for %s: %s", fileName, VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}

	stage.ShaderStageCreateInfo = vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  shaderStageFlag,
		Module: stage.Handle,
		PName:  "main\x00",
	}
	stage.ShaderStageCreateInfo.Deref()

	return stage, nil
}

func (s *VulkanShaderStage) Destroy(context *VulkanContext) {
	if s.Handle != vk.NullShaderModule {
		vk.DestroyShaderModule(context.Device.LogicalDevice, s.Handle, context.Allocator)
		s.Handle = vk.NullShaderModule
	}
}

func sliceUint32(data []byte) []uint32 {
	return unsafe.Slice((*uint32)(unsafe.Pointer(&data[0])), len(data)/4)
}
