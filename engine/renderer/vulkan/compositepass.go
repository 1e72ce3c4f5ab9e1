package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/volren/engine/core"
	"github.com/spaghettifunk/volren/engine/renderer/metadata"
)

// CompositePass marches rays through the volume between the entry and exit
// coordinates and writes the blended result to the swapchain. Bindings:
//
//	0: shading uniforms
//	1: entry face texture
//	2: exit face texture
//	3: volume (3D, R16F)
//	4: transfer function lookup (1D, RGBA8)
type CompositePass struct {
	Renderpass *VulkanRenderpass
	Pipeline   *VulkanPipeline

	UniformBuffer *VulkanBuffer

	VolumeImage  *VulkanImage
	LUTImage     *VulkanImage
	volumeSample vk.Sampler
	lutSample    vk.Sampler

	descriptorSetLayout vk.DescriptorSetLayout
	descriptorPool      vk.DescriptorPool
	descriptorSet       vk.DescriptorSet

	stages []*VulkanShaderStage
}

func NewCompositePass(context *VulkanContext, width, height uint32) (*CompositePass, error) {
	pass := &CompositePass{}

	samples := context.SampleCountFlag()
	var err error
	pass.Renderpass, err = RenderpassCreate(context, 0, 0, float32(width), float32(height), RenderpassConfig{
		ColorFormat: context.Swapchain.ImageFormat.Format,
		Samples:     samples,
		ClearColor:  [4]float32{0, 0, 0, 1},
		HasDepth:    false,
		FinalLayout: vk.ImageLayoutPresentSrc,
		Resolve:     context.SampleCount > 1,
	})
	if err != nil {
		return nil, err
	}

	vert, err := NewShaderModule(context, "composite", "vert", vk.ShaderStageVertexBit)
	if err != nil {
		return nil, err
	}
	frag, err := NewShaderModule(context, "composite", "frag", vk.ShaderStageFragmentBit)
	if err != nil {
		vert.Destroy(context)
		return nil, err
	}
	pass.stages = []*VulkanShaderStage{vert, frag}

	if err := pass.createDescriptors(context); err != nil {
		return nil, err
	}

	pass.UniformBuffer, err = UniformBufferCreate(context, vk.DeviceSize(unsafe.Sizeof(metadata.ShadingUniforms{})))
	if err != nil {
		return nil, err
	}

	pass.volumeSample, err = SamplerCreate(context, vk.SamplerAddressModeClampToEdge)
	if err != nil {
		return nil, err
	}
	pass.lutSample, err = SamplerCreate(context, vk.SamplerAddressModeClampToEdge)
	if err != nil {
		return nil, err
	}

	attributes := []vk.VertexInputAttributeDescription{
		{Location: 0, Binding: 0, Format: vk.FormatR32g32Sfloat, Offset: 0},
		{Location: 1, Binding: 0, Format: vk.FormatR32g32Sfloat, Offset: 8},
	}

	pass.Pipeline, err = NewGraphicsPipeline(context, &VulkanPipelineConfig{
		Renderpass:           pass.Renderpass,
		Stride:               metadata.QuadVertexStride,
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
		CullMode:    vk.CullModeNone,
		DepthTest:   false,
		DepthWrite:  false,
		Samples:     samples,
		BlendEnable: true,
	})
	if err != nil {
		return nil, err
	}

	return pass, nil
}

func (p *CompositePass) createDescriptors(context *VulkanContext) error {
	bindings := []vk.DescriptorSetLayoutBinding{
		{
			Binding:         0,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		},
		{
			Binding:         1,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		},
		{
			Binding:         2,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		},
		{
			Binding:         3,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		},
		{
			Binding:         4,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		},
	}
	for i := range bindings {
		bindings[i].Deref()
	}

	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}
	layoutInfo.Deref()

	if res := vk.CreateDescriptorSetLayout(context.Device.LogicalDevice, &layoutInfo, context.Allocator, &p.descriptorSetLayout); res != vk.Success {
		return fmt.Errorf("failed to create composite descriptor set layout: %s", VulkanResultString(res))
	}

	poolSizes := []vk.DescriptorPoolSize{
		{Type: vk.DescriptorTypeUniformBuffer, DescriptorCount: 1},
		{Type: vk.DescriptorTypeCombinedImageSampler, DescriptorCount: 4},
	}
	for i := range poolSizes {
		poolSizes[i].Deref()
	}

	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
		MaxSets:       1,
	}
	poolInfo.Deref()

	if res := vk.CreateDescriptorPool(context.Device.LogicalDevice, &poolInfo, context.Allocator, &p.descriptorPool); res != vk.Success {
		return fmt.Errorf("failed to create composite descriptor pool: %s", VulkanResultString(res))
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
		return fmt.Errorf("failed to allocate composite descriptor set: %s", VulkanResultString(res))
	}
	p.descriptorSet = sets[0]
	return nil
}

// SetVolume uploads the volume as a 3D R16F texture.
func (p *CompositePass) SetVolume(context *VulkanContext, dims [3]uint32, halfBits []uint16) error {
	if p.VolumeImage != nil {
		p.VolumeImage.Destroy(context)
	}

	var err error
	p.VolumeImage, err = ImageCreate(context, ImageCreateConfig{
		ImageType:  vk.ImageType3d,
		ViewType:   vk.ImageViewType3d,
		Width:      dims[0],
		Height:     dims[1],
		Depth:      dims[2],
		Format:     vk.FormatR16Sfloat,
		Usage:      vk.ImageUsageFlags(vk.ImageUsageSampledBit | vk.ImageUsageTransferDstBit),
		Aspect:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
		CreateView: true,
	})
	if err != nil {
		return err
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(&halfBits[0])), len(halfBits)*2)
	return p.VolumeImage.UploadData(context, data)
}

// SetTransferFunction uploads the color lookup as a 1D RGBA8 texture. Called
// again whenever the configuration is hot reloaded.
func (p *CompositePass) SetTransferFunction(context *VulkanContext, pix []uint8) error {
	if p.LUTImage != nil {
		p.LUTImage.Destroy(context)
	}

	var err error
	p.LUTImage, err = ImageCreate(context, ImageCreateConfig{
		ImageType:  vk.ImageType1d,
		ViewType:   vk.ImageViewType1d,
		Width:      uint32(len(pix) / 4),
		Height:     1,
		Format:     vk.FormatR8g8b8a8Unorm,
		Usage:      vk.ImageUsageFlags(vk.ImageUsageSampledBit | vk.ImageUsageTransferDstBit),
		Aspect:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
		CreateView: true,
	})
	if err != nil {
		return err
	}
	return p.LUTImage.UploadData(context, pix)
}

// SetUniforms pushes the shading block for the next frame.
func (p *CompositePass) SetUniforms(context *VulkanContext, uniforms *metadata.ShadingUniforms) error {
	return p.UniformBuffer.LoadData(context, 0, uniforms.Bytes())
}

// ChangeBoundFaceTextures rebinds the entry and exit textures and rewrites
// the whole descriptor set. Must be called once after creation and again
// after every resize, outside a frame.
func (p *CompositePass) ChangeBoundFaceTextures(context *VulkanContext, entry, exit *FaceTarget) {
	imageInfos := []vk.DescriptorImageInfo{
		{
			Sampler:     entry.Sampler,
			ImageView:   entry.Color.View,
			ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
		},
		{
			Sampler:     exit.Sampler,
			ImageView:   exit.Color.View,
			ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
		},
		{
			Sampler:     p.volumeSample,
			ImageView:   p.VolumeImage.View,
			ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
		},
		{
			Sampler:     p.lutSample,
			ImageView:   p.LUTImage.View,
			ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
		},
	}
	for i := range imageInfos {
		imageInfos[i].Deref()
	}

	bufferInfo := vk.DescriptorBufferInfo{
		Buffer: p.UniformBuffer.Handle,
		Offset: 0,
		Range:  vk.DeviceSize(unsafe.Sizeof(metadata.ShadingUniforms{})),
	}
	bufferInfo.Deref()

	writes := []vk.WriteDescriptorSet{
		{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          p.descriptorSet,
			DstBinding:      0,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			PBufferInfo:     []vk.DescriptorBufferInfo{bufferInfo},
		},
	}
	for i, info := range imageInfos {
		writes = append(writes, vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          p.descriptorSet,
			DstBinding:      uint32(i + 1),
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			PImageInfo:      []vk.DescriptorImageInfo{info},
		})
	}
	for i := range writes {
		writes[i].Deref()
	}

	vk.UpdateDescriptorSets(context.Device.LogicalDevice, uint32(len(writes)), writes, 0, nil)
}

// Record draws the fullscreen quad into the given swapchain framebuffer.
func (p *CompositePass) Record(commandBuffer *VulkanCommandBuffer, framebuffer *VulkanFramebuffer, width, height uint32, vertexBuffer, indexBuffer *VulkanBuffer, indexCount uint32) {
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

func (p *CompositePass) Destroy(context *VulkanContext) {
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
	if p.VolumeImage != nil {
		p.VolumeImage.Destroy(context)
		p.VolumeImage = nil
	}
	if p.LUTImage != nil {
		p.LUTImage.Destroy(context)
		p.LUTImage = nil
	}
	if p.volumeSample != vk.NullSampler {
		vk.DestroySampler(context.Device.LogicalDevice, p.volumeSample, context.Allocator)
		p.volumeSample = vk.NullSampler
	}
	if p.lutSample != vk.NullSampler {
		vk.DestroySampler(context.Device.LogicalDevice, p.lutSample, context.Allocator)
		p.lutSample = vk.NullSampler
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
	core.LogDebug("composite pass destroyed")
}
