package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/volren/engine/core"
	"github.com/spaghettifunk/volren/engine/renderer/metadata"
)

type FacePassKind int

const (
	// FaceEntry rasterizes the faces nearest the eye: back faces are culled
	// and the depth test keeps the closest fragment.
	FaceEntry FacePassKind = iota
	// FaceExit rasterizes the faces farthest from the eye: front faces are
	// culled and the depth test keeps the farthest fragment.
	FaceExit
)

// FacePass draws the proxy cube into an off-screen half-float target,
// writing the interpolated box coordinate of each covered pixel. Pixels the
// cube does not cover stay at the (0,0,0) clear value, which the composite
// shader reads as "no intersection".
type FacePass struct {
	Kind       FacePassKind
	Renderpass *VulkanRenderpass
	Pipeline   *VulkanPipeline

	UniformBuffer *VulkanBuffer

	descriptorSetLayout vk.DescriptorSetLayout
	descriptorPool      vk.DescriptorPool
	descriptorSet       vk.DescriptorSet

	stages []*VulkanShaderStage
}

func NewFacePass(context *VulkanContext, kind FacePassKind, width, height uint32) (*FacePass, error) {
	pass := &FacePass{Kind: kind}

	clearDepth := float32(1.0)
	depthCompare := vk.CompareOpLess
	cullMode := vk.CullModeBackBit
	if kind == FaceExit {
		clearDepth = 0.0
		depthCompare = vk.CompareOpGreater
		cullMode = vk.CullModeFrontBit
	}

	var err error
	pass.Renderpass, err = RenderpassCreate(context, 0, 0, float32(width), float32(height), RenderpassConfig{
		ColorFormat: FaceTargetFormat,
		Samples:     vk.SampleCount1Bit,
		ClearColor:  [4]float32{0, 0, 0, 0},
		ClearDepth:  clearDepth,
		HasDepth:    true,
		FinalLayout: vk.ImageLayoutShaderReadOnlyOptimal,
	})
	if err != nil {
		return nil, err
	}

	vert, err := NewShaderModule(context, "face", "vert", vk.ShaderStageVertexBit)
	if err != nil {
		return nil, err
	}
	frag, err := NewShaderModule(context, "face", "frag", vk.ShaderStageFragmentBit)
	if err != nil {
		vert.Destroy(context)
		return nil, err
	}
	pass.stages = []*VulkanShaderStage{vert, frag}

	if err := pass.createDescriptors(context); err != nil {
		return nil, err
	}

	pass.UniformBuffer, err = UniformBufferCreate(context, vk.DeviceSize(unsafe.Sizeof(metadata.MVPUniform{})))
	if err != nil {
		return nil, err
	}
	pass.writeDescriptorSet(context)

	attributes := []vk.VertexInputAttributeDescription{
		{Location: 0, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: 0},
		{Location: 1, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: 12},
	}

	pass.Pipeline, err = NewGraphicsPipeline(context, &VulkanPipelineConfig{
		Renderpass:           pass.Renderpass,
		Stride:               metadata.CubeVertexStride,
		Attributes:           attributes,
		DescriptorSetLayouts: []vk.DescriptorSetLayout{pass.descriptorSetLayout},
		Stages: []vk.PipelineShaderStageCreateInfo{
			vert.ShaderStageCreateInfo,
			frag.ShaderStageCreateInfo,
		},
		Viewport: vk.Viewport{
			X: 0, Y: 0,
			Width:    float32(width),
			Height:   float32(height),
			MinDepth: 0, MaxDepth: 1,
		},
		Scissor: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: vk.Extent2D{Width: width, Height: height},
		},
		CullMode:       cullMode,
		DepthCompareOp: depthCompare,
		DepthTest:      true,
		DepthWrite:     true,
		Samples:        vk.SampleCount1Bit,
	})
	if err != nil {
		return nil, err
	}

	return pass, nil
}

func (p *FacePass) createDescriptors(context *VulkanContext) error {
	binding := vk.DescriptorSetLayoutBinding{
		Binding:         0,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
	}
	binding.Deref()

	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: 1,
		PBindings:    []vk.DescriptorSetLayoutBinding{binding},
	}
	layoutInfo.Deref()

	if res := vk.CreateDescriptorSetLayout(context.Device.LogicalDevice, &layoutInfo, context.Allocator, &p.descriptorSetLayout); res != vk.Success {
		return fmt.Errorf("failed to create face pass descriptor set layout: %s", VulkanResultString(res))
	}

	poolSize := vk.DescriptorPoolSize{
		Type:            vk.DescriptorTypeUniformBuffer,
		DescriptorCount: 1,
	}
	poolSize.Deref()

	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		PoolSizeCount: 1,
		PPoolSizes:    []vk.DescriptorPoolSize{poolSize},
		MaxSets:       1,
	}
	poolInfo.Deref()

	if res := vk.CreateDescriptorPool(context.Device.LogicalDevice, &poolInfo, context.Allocator, &p.descriptorPool); res != vk.Success {
		return fmt.Errorf("failed to create face pass descriptor pool: %s", VulkanResultString(res))
	}

	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     p.descriptorPool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{p.descriptorSetLayout},
	}
	allocInfo.Deref()

	sets := make([]vk.DescriptorSet, 1)
	if res := vk.AllocateDescriptorSets(context.Device.LogicalDevice, &allocInfo, &sets[0]); res != vk.Success {
		return fmt.Errorf("failed to allocate face pass descriptor set: %s", VulkanResultString(res))
	}
	p.descriptorSet = sets[0]
	return nil
}

func (p *FacePass) writeDescriptorSet(context *VulkanContext) {
	bufferInfo := vk.DescriptorBufferInfo{
		Buffer: p.UniformBuffer.Handle,
		Offset: 0,
		Range:  vk.DeviceSize(unsafe.Sizeof(metadata.MVPUniform{})),
	}
	bufferInfo.Deref()

	write := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          p.descriptorSet,
		DstBinding:      0,
		DstArrayElement: 0,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		DescriptorCount: 1,
		PBufferInfo:     []vk.DescriptorBufferInfo{bufferInfo},
	}
	write.Deref()

	vk.UpdateDescriptorSets(context.Device.LogicalDevice, 1, []vk.WriteDescriptorSet{write}, 0, nil)
}

// UpdateUniforms pushes the current model-view-projection matrix. Both
// passes share the same matrix every frame.
func (p *FacePass) UpdateUniforms(context *VulkanContext, mvp *metadata.MVPUniform) error {
	return p.UniformBuffer.LoadData(context, 0, mvp.Bytes())
}

// Record draws the cube into the given framebuffer. The command buffer must
// already be recording.
func (p *FacePass) Record(commandBuffer *VulkanCommandBuffer, framebuffer *VulkanFramebuffer, width, height uint32, vertexBuffer, indexBuffer *VulkanBuffer, indexCount uint32) {
	p.Renderpass.W = float32(width)
	p.Renderpass.H = float32(height)
	p.Renderpass.RenderpassBegin(commandBuffer, framebuffer.Handle)

	p.Pipeline.Bind(commandBuffer, vk.PipelineBindPointGraphics)

	viewport := vk.Viewport{
		X: 0, Y: 0,
		Width:    float32(width),
		Height:   float32(height),
		MinDepth: 0, MaxDepth: 1,
	}
	viewport.Deref()
	vk.CmdSetViewport(commandBuffer.Handle, 0, 1, []vk.Viewport{viewport})

	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{Width: width, Height: height},
	}
	scissor.Deref()
	vk.CmdSetScissor(commandBuffer.Handle, 0, 1, []vk.Rect2D{scissor})

	vk.CmdBindVertexBuffers(commandBuffer.Handle, 0, 1, []vk.Buffer{vertexBuffer.Handle}, []vk.DeviceSize{0})
	vk.CmdBindIndexBuffer(commandBuffer.Handle, indexBuffer.Handle, 0, vk.IndexTypeUint16)
	vk.CmdBindDescriptorSets(commandBuffer.Handle, vk.PipelineBindPointGraphics, p.Pipeline.PipelineLayout, 0, 1, []vk.DescriptorSet{p.descriptorSet}, 0, nil)
	vk.CmdDrawIndexed(commandBuffer.Handle, indexCount, 1, 0, 0, 0)

	p.Renderpass.RenderpassEnd(commandBuffer)
}

func (p *FacePass) Destroy(context *VulkanContext) {
	if p.Pipeline != nil {
		p.Pipeline.Destroy(context)
		p.Pipeline = nil
	}
	for _, stage := range p.stages {
		stage.Destroy(context)
	}
	p.stages = nil
	if p.UniformBuffer != nil {
		p.UniformBuffer.Destroy(context)
		p.UniformBuffer = nil
	}
	if p.descriptorPool != vk.NullDescriptorPool {
		vk.DestroyDescriptorPool(context.Device.LogicalDevice, p.descriptorPool, context.Allocator)
		p.descriptorPool = vk.NullDescriptorPool
	}
	if p.descriptorSetLayout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(context.Device.LogicalDevice, p.descriptorSetLayout, context.Allocator)
		p.descriptorSetLayout = vk.NullDescriptorSetLayout
	}
	if p.Renderpass != nil {
		p.Renderpass.RenderpassDestroy(context)
		p.Renderpass = nil
	}
	core.LogDebug("face pass destroyed")
}
