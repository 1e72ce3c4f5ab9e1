package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/volren/engine/core"
)

type VulkanRenderPassState int

const (
	READY VulkanRenderPassState = iota
	RECORDING
	IN_RENDER_PASS
	RECORDING_ENDED
	SUBMITTED
	NOT_ALLOCATED
)

// RenderpassConfig describes the attachments of a pass. The face passes
// render into an off-screen color target with a private depth buffer; the
// composite pass renders into the swapchain, optionally through a
// multisampled attachment resolved on store.
type RenderpassConfig struct {
	ColorFormat vk.Format
	Samples     vk.SampleCountFlagBits
	ClearColor  [4]float32
	// Depth buffer clear value. Entry faces clear to 1.0 and keep the
	// nearest fragment, exit faces clear to 0.0 and keep the farthest.
	ClearDepth float32
	HasDepth   bool
	// Layout the color attachment transitions to when the pass ends.
	FinalLayout vk.ImageLayout
	// When samples > 1, a single-sample resolve attachment is appended and
	// written on store.
	Resolve bool
}

type VulkanRenderpass struct {
	Handle     vk.RenderPass
	X, Y, W, H float32
	Config     RenderpassConfig
	State      VulkanRenderPassState
}

func RenderpassCreate(context *VulkanContext, x, y, w, h float32, config RenderpassConfig) (*VulkanRenderpass, error) {
	outRenderpass := &VulkanRenderpass{
		X:      x,
		Y:      y,
		W:      w,
		H:      h,
		Config: config,
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint: vk.PipelineBindPointGraphics,
	}

	attachmentDescriptions := make([]vk.AttachmentDescription, 0, 3)

	colorAttachment := vk.AttachmentDescription{
		Format:         config.ColorFormat,
		Samples:        config.Samples,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    config.FinalLayout,
	}
	if config.Resolve {
		// The multisampled image is transient, only the resolve target
		// survives the pass.
		colorAttachment.FinalLayout = vk.ImageLayoutColorAttachmentOptimal
	}
	colorAttachment.Deref()
	attachmentDescriptions = append(attachmentDescriptions, colorAttachment)

	colorAttachmentReference := []vk.AttachmentReference{
		{
			Attachment: 0,
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		},
	}
	subpass.ColorAttachmentCount = 1
	subpass.PColorAttachments = colorAttachmentReference

	if config.Resolve {
		resolveAttachment := vk.AttachmentDescription{
			Format:         config.ColorFormat,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpDontCare,
			StoreOp:        vk.AttachmentStoreOpStore,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    config.FinalLayout,
		}
		resolveAttachment.Deref()
		attachmentDescriptions = append(attachmentDescriptions, resolveAttachment)

		resolveReference := []vk.AttachmentReference{
			{
				Attachment: uint32(len(attachmentDescriptions) - 1),
				Layout:     vk.ImageLayoutColorAttachmentOptimal,
			},
		}
		subpass.PResolveAttachments = resolveReference
	}

	if config.HasDepth {
		depthAttachment := vk.AttachmentDescription{
			Format:         context.Device.DepthFormat,
			Samples:        config.Samples,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpDontCare,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
		}
		depthAttachment.Deref()
		attachmentDescriptions = append(attachmentDescriptions, depthAttachment)

		depthAttachmentReference := vk.AttachmentReference{
			Attachment: uint32(len(attachmentDescriptions) - 1),
			Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
		}
		depthAttachmentReference.Deref()
		subpass.PDepthStencilAttachment = &depthAttachmentReference
	}
	subpass.Deref()

	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit) | vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentReadBit) | vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
	}
	dependency.Deref()

	renderpassCreateInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachmentDescriptions)),
		PAttachments:    attachmentDescriptions,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}
	renderpassCreateInfo.Deref()

	var pRenderPass vk.RenderPass
	if res := vk.CreateRenderPass(context.Device.LogicalDevice, &renderpassCreateInfo, context.Allocator, &pRenderPass); res != vk.Success {
		err := fmt.Errorf("failed to create render pass: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}
	outRenderpass.Handle = pRenderPass
	return outRenderpass, nil
}

func (vr *VulkanRenderpass) RenderpassDestroy(context *VulkanContext) {
	if vr.Handle != nil {
		vk.DestroyRenderPass(context.Device.LogicalDevice, vr.Handle, context.Allocator)
		vr.Handle = nil
	}
}

func (vr *VulkanRenderpass) RenderpassBegin(commandBuffer *VulkanCommandBuffer, frameBuffer vk.Framebuffer) {
	beginInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  vr.Handle,
		Framebuffer: frameBuffer,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{
				X: int32(vr.X),
				Y: int32(vr.Y),
			},
			Extent: vk.Extent2D{
				Width:  uint32(vr.W),
				Height: uint32(vr.H),
			},
		},
	}
	beginInfo.Deref()

	clearValues := make([]vk.ClearValue, 0, 3)

	var colorClear vk.ClearValue
	colorClear.SetColor(vr.Config.ClearColor[:])
	clearValues = append(clearValues, colorClear)

	if vr.Config.Resolve {
		// Resolve target is DontCare on load but still needs a slot.
		clearValues = append(clearValues, colorClear)
	}
	if vr.Config.HasDepth {
		var depthClear vk.ClearValue
		depthClear.SetDepthStencil(vr.Config.ClearDepth, 0)
		clearValues = append(clearValues, depthClear)
	}

	beginInfo.ClearValueCount = uint32(len(clearValues))
	beginInfo.PClearValues = clearValues

	vk.CmdBeginRenderPass(commandBuffer.Handle, &beginInfo, vk.SubpassContentsInline)
	commandBuffer.State = COMMAND_BUFFER_STATE_IN_RENDER_PASS
}

func (vr *VulkanRenderpass) RenderpassEnd(commandBuffer *VulkanCommandBuffer) {
	vk.CmdEndRenderPass(commandBuffer.Handle)
	commandBuffer.State = COMMAND_BUFFER_STATE_RECORDING
}
