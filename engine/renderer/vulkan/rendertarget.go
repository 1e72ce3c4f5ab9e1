package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/volren/engine/core"
)

// FaceTargetFormat is the color format of the entry and exit face buffers.
// Half floats keep the interpolated box coordinates at enough precision for
// the ray marcher to subtract them without banding.
const FaceTargetFormat = vk.FormatR16g16b16a16Sfloat

// FaceTarget is one off-screen rasterization destination: a sampled color
// image holding box coordinates plus a private depth buffer.
type FaceTarget struct {
	Color       *VulkanImage
	Depth       *VulkanImage
	Framebuffer *VulkanFramebuffer
	Sampler     vk.Sampler
}

// RenderTargetManager owns every image whose size follows the framebuffer:
// the entry and exit face targets and, when multisampling is on, the
// transient color buffer the composite pass resolves from. All of them are
// dropped and rebuilt on resize.
type RenderTargetManager struct {
	Entry *FaceTarget
	Exit  *FaceTarget

	// Multisampled color target for the on-screen pass, nil when the sample
	// count is 1.
	MSAAColor *VulkanImage

	Width  uint32
	Height uint32
}

func NewRenderTargetManager(context *VulkanContext, entryPass, exitPass *VulkanRenderpass, width, height uint32) (*RenderTargetManager, error) {
	m := &RenderTargetManager{}
	if err := m.create(context, entryPass, exitPass, width, height); err != nil {
		m.Destroy(context)
		return nil, err
	}
	return m, nil
}

// Resize recreates every size-dependent image. A zero dimension means the
// window is minimized and the targets are left alone.
func (m *RenderTargetManager) Resize(context *VulkanContext, entryPass, exitPass *VulkanRenderpass, width, height uint32) error {
	if width == 0 || height == 0 {
		core.LogDebug("render target resize skipped for zero extent %dx%d", width, height)
		return nil
	}
	if width == m.Width && height == m.Height {
		return nil
	}
	m.Destroy(context)
	return m.create(context, entryPass, exitPass, width, height)
}

func (m *RenderTargetManager) create(context *VulkanContext, entryPass, exitPass *VulkanRenderpass, width, height uint32) error {
	var err error
	if m.Entry, err = newFaceTarget(context, entryPass, width, height); err != nil {
		return err
	}
	if m.Exit, err = newFaceTarget(context, exitPass, width, height); err != nil {
		return err
	}

	if context.SampleCount > 1 {
		m.MSAAColor, err = ImageCreate(context, ImageCreateConfig{
			ImageType:  vk.ImageType2d,
			ViewType:   vk.ImageViewType2d,
			Width:      width,
			Height:     height,
			Format:     context.Swapchain.ImageFormat.Format,
			Samples:    context.SampleCountFlag(),
			Usage:      vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit | vk.ImageUsageTransientAttachmentBit),
			Aspect:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			CreateView: true,
		})
		if err != nil {
			return err
		}
	}

	m.Width = width
	m.Height = height
	return nil
}

func newFaceTarget(context *VulkanContext, renderpass *VulkanRenderpass, width, height uint32) (*FaceTarget, error) {
	target := &FaceTarget{}

	var err error
	target.Color, err = ImageCreate(context, ImageCreateConfig{
		ImageType:  vk.ImageType2d,
		ViewType:   vk.ImageViewType2d,
		Width:      width,
		Height:     height,
		Format:     FaceTargetFormat,
		Usage:      vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit | vk.ImageUsageSampledBit),
		Aspect:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
		CreateView: true,
	})
	if err != nil {
		return nil, err
	}

	target.Depth, err = ImageCreate(context, ImageCreateConfig{
		ImageType:  vk.ImageType2d,
		ViewType:   vk.ImageViewType2d,
		Width:      width,
		Height:     height,
		Format:     context.Device.DepthFormat,
		Usage:      vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		Aspect:     vk.ImageAspectFlags(vk.ImageAspectDepthBit),
		CreateView: true,
	})
	if err != nil {
		target.Color.Destroy(context)
		return nil, err
	}

	target.Framebuffer, err = FramebufferCreate(context, renderpass, width, height,
		[]vk.ImageView{target.Color.View, target.Depth.View})
	if err != nil {
		target.Depth.Destroy(context)
		target.Color.Destroy(context)
		return nil, err
	}

	target.Sampler, err = SamplerCreate(context, vk.SamplerAddressModeClampToEdge)
	if err != nil {
		target.Framebuffer.Destroy(context)
		target.Depth.Destroy(context)
		target.Color.Destroy(context)
		return nil, err
	}

	return target, nil
}

func (m *RenderTargetManager) Destroy(context *VulkanContext) {
	if m.Entry != nil {
		m.Entry.destroy(context)
		m.Entry = nil
	}
	if m.Exit != nil {
		m.Exit.destroy(context)
		m.Exit = nil
	}
	if m.MSAAColor != nil {
		m.MSAAColor.Destroy(context)
		m.MSAAColor = nil
	}
	m.Width = 0
	m.Height = 0
}

func (t *FaceTarget) destroy(context *VulkanContext) {
	if t.Sampler != vk.NullSampler {
		vk.DestroySampler(context.Device.LogicalDevice, t.Sampler, context.Allocator)
		t.Sampler = vk.NullSampler
	}
	if t.Framebuffer != nil {
		t.Framebuffer.Destroy(context)
		t.Framebuffer = nil
	}
	if t.Depth != nil {
		t.Depth.Destroy(context)
		t.Depth = nil
	}
	if t.Color != nil {
		t.Color.Destroy(context)
		t.Color = nil
	}
}
