package vulkan

import (
	"fmt"
	"math"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/volren/engine/core"
	"github.com/spaghettifunk/volren/engine/platform"
	"github.com/spaghettifunk/volren/engine/renderer/metadata"
)

// VulkanRenderer drives the three passes of a frame: the entry and exit
// face rasterizations into off-screen targets, then the ray-marching
// composite onto the swapchain image. The face passes always run before the
// composite pass in the same command buffer, so a single submission keeps
// them ordered.
type VulkanRenderer struct {
	platform                *platform.Platform
	FrameNumber             uint64
	context                 *VulkanContext
	cachedFramebufferWidth  uint32
	cachedFramebufferHeight uint32

	entryPass     *FacePass
	exitPass      *FacePass
	compositePass *CompositePass
	renderTargets *RenderTargetManager

	cubeVertexBuffer *VulkanBuffer
	cubeIndexBuffer  *VulkanBuffer
	quadVertexBuffer *VulkanBuffer
	quadIndexBuffer  *VulkanBuffer
	cubeIndexCount   uint32
	quadIndexCount   uint32

	debug          bool
	debugMessenger vk.DebugReportCallback
}

func New(p *platform.Platform, sampleCount uint32) *VulkanRenderer {
	return &VulkanRenderer{
		platform:    p,
		FrameNumber: 0,
		context: &VulkanContext{
			FramebufferWidth:  0,
			FramebufferHeight: 0,
			Allocator:         nil,
			SampleCount:       sampleCount,
		},
		debug: true,
	}
}

func (vr *VulkanRenderer) Initialize(appName string, appWidth, appHeight uint32) error {
	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		core.LogFatal("GetInstanceProcAddress is nil")
		return fmt.Errorf("GetInstanceProcAddress is nil")
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		core.LogFatal("failed to initialize vk: %s", err)
		return err
	}

	vr.context.FramebufferWidth = appWidth
	vr.context.FramebufferHeight = appHeight

	// Setup Vulkan instance.
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(appName),
		PEngineName:        VulkanSafeString("Volren"),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	// Obtain a list of required extensions
	requiredExtensions := []string{"VK_KHR_surface"}
	requiredExtensions = append(requiredExtensions, vr.platform.GetRequiredExtensionNames()...)

	if runtime.GOOS == "darwin" {
		requiredExtensions = append(requiredExtensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
	}

	if vr.debug {
		requiredExtensions = append(requiredExtensions, vk.ExtDebugReportExtensionName)
	}

	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(requiredExtensions)

	// Validation layers, only on debug builds.
	requiredValidationLayerNames := []string{}
	if vr.debug {
		requiredValidationLayerNames = []string{"VK_LAYER_KHRONOS_validation"}

		if runtime.GOOS == "darwin" {
			createInfo.Flags |= 1
		}

		var availableLayerCount uint32
		if res := vk.EnumerateInstanceLayerProperties(&availableLayerCount, nil); res != vk.Success {
			return fmt.Errorf("failed to enumerate instance layers: %s", VulkanResultString(res))
		}
		availableLayers := make([]vk.LayerProperties, availableLayerCount)
		if res := vk.EnumerateInstanceLayerProperties(&availableLayerCount, availableLayers); res != vk.Success {
			return fmt.Errorf("failed to enumerate instance layers: %s", VulkanResultString(res))
		}

		for _, required := range requiredValidationLayerNames {
			found := false
			for j := range availableLayers {
				availableLayers[j].Deref()
				end := findFirstZero(availableLayers[j].LayerName[:])
				if required == vk.ToString(availableLayers[j].LayerName[:end+1]) {
					found = true
					break
				}
			}
			if !found {
				core.LogWarn("validation layer %s not available, continuing without validation", required)
				requiredValidationLayerNames = nil
				break
			}
		}
	}

	createInfo.EnabledLayerCount = uint32(len(requiredValidationLayerNames))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(requiredValidationLayerNames)

	if res := vk.CreateInstance(&createInfo, vr.context.Allocator, &vr.context.Instance); res != vk.Success {
		err := fmt.Errorf("failed to create the Vulkan instance: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	if err := vk.InitInstance(vr.context.Instance); err != nil {
		core.LogError(err.Error())
		return err
	}

	core.LogInfo("Vulkan Instance created.")

	if vr.debug {
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit),
			PfnCallback: dbgCallbackFunc,
		}

		var dbg vk.DebugReportCallback
		if err := vk.Error(vk.CreateDebugReportCallback(vr.context.Instance, &debugCreateInfo, nil, &dbg)); err != nil {
			core.LogWarn("vk.CreateDebugReportCallback failed with %s", err)
		} else {
			vr.debugMessenger = dbg
		}
	}

	// Surface
	if err := CreateVulkanSurface(vr.platform, vr.context); err != nil {
		core.LogError("Failed to create platform surface!")
		return err
	}

	// Device creation
	if err := DeviceCreate(vr.context); err != nil {
		core.LogError("Failed to create device!")
		return err
	}

	// Swapchain
	sc, err := SwapchainCreate(vr.context, vr.context.FramebufferWidth, vr.context.FramebufferHeight)
	if err != nil {
		return err
	}
	vr.context.Swapchain = sc

	// Passes.
	vr.entryPass, err = NewFacePass(vr.context, FaceEntry, vr.context.FramebufferWidth, vr.context.FramebufferHeight)
	if err != nil {
		return err
	}
	vr.exitPass, err = NewFacePass(vr.context, FaceExit, vr.context.FramebufferWidth, vr.context.FramebufferHeight)
	if err != nil {
		return err
	}
	vr.compositePass, err = NewCompositePass(vr.context, vr.context.FramebufferWidth, vr.context.FramebufferHeight)
	if err != nil {
		return err
	}

	// Render targets.
	vr.renderTargets, err = NewRenderTargetManager(vr.context, vr.entryPass.Renderpass, vr.exitPass.Renderpass,
		vr.context.FramebufferWidth, vr.context.FramebufferHeight)
	if err != nil {
		return err
	}

	// Swapchain framebuffers.
	vr.context.Swapchain.Framebuffers = make([]*VulkanFramebuffer, vr.context.Swapchain.ImageCount)
	if err := vr.regenerateFramebuffers(); err != nil {
		return err
	}

	// Geometry.
	if err := vr.createGeometryBuffers(); err != nil {
		return err
	}

	// Create command buffers.
	if err := vr.createCommandBuffers(); err != nil {
		return err
	}

	// Create sync objects.
	vr.context.ImageAvailableSemaphores = make([]vk.Semaphore, vr.context.Swapchain.MaxFramesInFlight)
	vr.context.QueueCompleteSemaphores = make([]vk.Semaphore, vr.context.Swapchain.MaxFramesInFlight)
	vr.context.InFlightFences = make([]*VulkanFence, vr.context.Swapchain.MaxFramesInFlight)

	for i := 0; i < int(vr.context.Swapchain.MaxFramesInFlight); i++ {
		semaphoreCreateInfo := vk.SemaphoreCreateInfo{
			SType: vk.StructureTypeSemaphoreCreateInfo,
		}

		if res := vk.CreateSemaphore(vr.context.Device.LogicalDevice, &semaphoreCreateInfo, vr.context.Allocator, &vr.context.ImageAvailableSemaphores[i]); res != vk.Success {
			err := fmt.Errorf("failed to create semaphore on image available")
			core.LogError(err.Error())
			return err
		}
		if res := vk.CreateSemaphore(vr.context.Device.LogicalDevice, &semaphoreCreateInfo, vr.context.Allocator, &vr.context.QueueCompleteSemaphores[i]); res != vk.Success {
			err := fmt.Errorf("failed to create semaphore on queue complete")
			core.LogError(err.Error())
			return err
		}

		// Create the fence in a signaled state so the first frame does not
		// wait on a submission that never happened.
		f, err := NewFence(vr.context, true)
		if err != nil {
			core.LogError(err.Error())
			return err
		}
		vr.context.InFlightFences[i] = f
	}

	vr.context.ImagesInFlight = make([]*VulkanFence, vr.context.Swapchain.ImageCount)

	core.LogInfo("Vulkan renderer initialized successfully.")
	return nil
}

// SetVolume uploads the scalar field as a 3D texture. Must be called after
// Initialize and before the first frame.
func (vr *VulkanRenderer) SetVolume(dims [3]uint32, halfBits []uint16) error {
	if err := vr.compositePass.SetVolume(vr.context, dims, halfBits); err != nil {
		return err
	}
	vr.rebindCompositeInputs()
	return nil
}

// SetTransferFunction uploads the color lookup texture. Safe to call between
// frames when the configuration changes.
func (vr *VulkanRenderer) SetTransferFunction(pix []uint8) error {
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)
	if err := vr.compositePass.SetTransferFunction(vr.context, pix); err != nil {
		return err
	}
	vr.rebindCompositeInputs()
	return nil
}

func (vr *VulkanRenderer) rebindCompositeInputs() {
	if vr.compositePass.VolumeImage == nil || vr.compositePass.LUTImage == nil {
		// Not everything is bound yet; the final upload rebinds.
		return
	}
	vr.compositePass.ChangeBoundFaceTextures(vr.context, vr.renderTargets.Entry, vr.renderTargets.Exit)
}

// Resized records the new framebuffer extent. The swapchain is recreated
// lazily on the next frame.
func (vr *VulkanRenderer) Resized(width, height uint32) {
	vr.cachedFramebufferWidth = width
	vr.cachedFramebufferHeight = height
	vr.context.FramebufferSizeGeneration++

	core.LogInfo("renderer resized: w/h/gen: %d/%d/%d", width, height, vr.context.FramebufferSizeGeneration)
}

// DrawFrame renders one frame. Transient conditions (surface out of date,
// swapchain mid-recreation) come back as core.ErrSwapchainBooting or
// core.ErrSurfaceOutdated so the caller can skip the frame; anything else is
// fatal.
func (vr *VulkanRenderer) DrawFrame(mvp *metadata.MVPUniform, shading *metadata.ShadingUniforms) error {
	device := vr.context.Device

	if vr.context.RecreatingSwapchain {
		result := vk.DeviceWaitIdle(device.LogicalDevice)
		if !VulkanResultIsSuccess(result) {
			return resultToError(result)
		}
		return core.ErrSwapchainBooting
	}

	// A resize invalidates the swapchain and every framebuffer-sized target.
	if vr.context.FramebufferSizeGeneration != vr.context.FramebufferSizeLastGeneration {
		result := vk.DeviceWaitIdle(device.LogicalDevice)
		if !VulkanResultIsSuccess(result) {
			return resultToError(result)
		}
		if err := vr.recreateSwapchain(); err != nil {
			return err
		}
		return core.ErrSwapchainBooting
	}

	// Wait for the execution of the current frame to complete.
	if !vr.context.InFlightFences[vr.context.CurrentFrame].FenceWait(vr.context, math.MaxUint64) {
		core.LogWarn("in-flight fence wait failure")
		return core.ErrSwapchainBooting
	}

	imageIndex, err := vr.context.Swapchain.SwapchainAcquireNextImageIndex(vr.context, math.MaxUint64,
		vr.context.ImageAvailableSemaphores[vr.context.CurrentFrame], vk.NullFence)
	if err != nil {
		return err
	}
	vr.context.ImageIndex = imageIndex

	// Per-frame uniforms. Both face passes share the matrix.
	if err := vr.entryPass.UpdateUniforms(vr.context, mvp); err != nil {
		return err
	}
	if err := vr.exitPass.UpdateUniforms(vr.context, mvp); err != nil {
		return err
	}
	if err := vr.compositePass.SetUniforms(vr.context, shading); err != nil {
		return err
	}

	commandBuffer := vr.context.GraphicsCommandBuffers[vr.context.ImageIndex]
	commandBuffer.Reset()
	if err := commandBuffer.Begin(false, false, false); err != nil {
		return err
	}

	width := vr.context.FramebufferWidth
	height := vr.context.FramebufferHeight

	// Entry faces, then exit faces, then the march between them.
	vr.entryPass.Record(commandBuffer, vr.renderTargets.Entry.Framebuffer, width, height,
		vr.cubeVertexBuffer, vr.cubeIndexBuffer, vr.cubeIndexCount)
	vr.exitPass.Record(commandBuffer, vr.renderTargets.Exit.Framebuffer, width, height,
		vr.cubeVertexBuffer, vr.cubeIndexBuffer, vr.cubeIndexCount)
	vr.compositePass.Record(commandBuffer, vr.context.Swapchain.Framebuffers[vr.context.ImageIndex], width, height,
		vr.quadVertexBuffer, vr.quadIndexBuffer, vr.quadIndexCount)

	if err := commandBuffer.End(); err != nil {
		return err
	}

	// Make sure the previous frame is not still using this image.
	if vr.context.ImagesInFlight[vr.context.ImageIndex] != nil {
		vr.context.ImagesInFlight[vr.context.ImageIndex].FenceWait(vr.context, math.MaxUint64)
	}
	vr.context.ImagesInFlight[vr.context.ImageIndex] = vr.context.InFlightFences[vr.context.CurrentFrame]

	if err := vr.context.InFlightFences[vr.context.CurrentFrame].FenceReset(vr.context); err != nil {
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{commandBuffer.Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{vr.context.QueueCompleteSemaphores[vr.context.CurrentFrame]},
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{vr.context.ImageAvailableSemaphores[vr.context.CurrentFrame]},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
	}

	if result := vk.QueueSubmit(vr.context.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, vr.context.InFlightFences[vr.context.CurrentFrame].Handle); result != vk.Success {
		err := fmt.Errorf("vkQueueSubmit failed with result: %s", VulkanResultString(result))
		core.LogError(err.Error())
		return resultToError(result)
	}
	commandBuffer.UpdateSubmitted()

	if err := vr.context.Swapchain.SwapchainPresent(vr.context, vr.context.Device.PresentQueue,
		vr.context.QueueCompleteSemaphores[vr.context.CurrentFrame], vr.context.ImageIndex); err != nil {
		return err
	}

	vr.FrameNumber++
	return nil
}

func (vr *VulkanRenderer) Shutdown() error {
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)

	// Destroy in the opposite order of creation.
	for i := 0; i < int(vr.context.Swapchain.MaxFramesInFlight); i++ {
		if vr.context.ImageAvailableSemaphores[i] != vk.NullSemaphore {
			vk.DestroySemaphore(vr.context.Device.LogicalDevice, vr.context.ImageAvailableSemaphores[i], vr.context.Allocator)
			vr.context.ImageAvailableSemaphores[i] = vk.NullSemaphore
		}
		if vr.context.QueueCompleteSemaphores[i] != vk.NullSemaphore {
			vk.DestroySemaphore(vr.context.Device.LogicalDevice, vr.context.QueueCompleteSemaphores[i], vr.context.Allocator)
			vr.context.QueueCompleteSemaphores[i] = vk.NullSemaphore
		}
		vr.context.InFlightFences[i].FenceDestroy(vr.context)
	}
	vr.context.ImageAvailableSemaphores = nil
	vr.context.QueueCompleteSemaphores = nil
	vr.context.InFlightFences = nil
	vr.context.ImagesInFlight = nil

	for i := range vr.context.GraphicsCommandBuffers {
		if vr.context.GraphicsCommandBuffers[i].Handle != nil {
			vr.context.GraphicsCommandBuffers[i].Free(vr.context, vr.context.Device.GraphicsCommandPool)
		}
	}
	vr.context.GraphicsCommandBuffers = nil

	for _, buffer := range []*VulkanBuffer{vr.cubeVertexBuffer, vr.cubeIndexBuffer, vr.quadVertexBuffer, vr.quadIndexBuffer} {
		if buffer != nil {
			buffer.Destroy(vr.context)
		}
	}

	if vr.renderTargets != nil {
		vr.renderTargets.Destroy(vr.context)
	}
	if vr.compositePass != nil {
		vr.compositePass.Destroy(vr.context)
	}
	if vr.exitPass != nil {
		vr.exitPass.Destroy(vr.context)
	}
	if vr.entryPass != nil {
		vr.entryPass.Destroy(vr.context)
	}

	vr.context.Swapchain.SwapchainDestroy(vr.context)

	core.LogDebug("Destroying Vulkan device...")
	DeviceDestroy(vr.context)

	core.LogDebug("Destroying Vulkan surface...")
	if vr.context.Surface != vk.NullSurface {
		vk.DestroySurface(vr.context.Instance, vr.context.Surface, vr.context.Allocator)
		vr.context.Surface = vk.NullSurface
	}

	if vr.debug && vr.debugMessenger != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(vr.context.Instance, vr.debugMessenger, vr.context.Allocator)
	}

	core.LogDebug("Destroying Vulkan instance...")
	vk.DestroyInstance(vr.context.Instance, vr.context.Allocator)

	return nil
}

func (vr *VulkanRenderer) createGeometryBuffers() error {
	cubeVerts := metadata.CubeVertexData()
	_, cubeIdx := metadata.CubeMesh()
	quadVerts := metadata.QuadVertexData()
	_, quadIdx := metadata.QuadMesh()

	var err error
	vr.cubeVertexBuffer, err = DeviceLocalBufferCreate(vr.context, vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit), float32Bytes(cubeVerts))
	if err != nil {
		return err
	}
	vr.cubeIndexBuffer, err = DeviceLocalBufferCreate(vr.context, vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit), uint16Bytes(cubeIdx))
	if err != nil {
		return err
	}
	vr.quadVertexBuffer, err = DeviceLocalBufferCreate(vr.context, vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit), float32Bytes(quadVerts))
	if err != nil {
		return err
	}
	vr.quadIndexBuffer, err = DeviceLocalBufferCreate(vr.context, vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit), uint16Bytes(quadIdx))
	if err != nil {
		return err
	}

	vr.cubeIndexCount = uint32(len(cubeIdx))
	vr.quadIndexCount = uint32(len(quadIdx))
	return nil
}

func (vr *VulkanRenderer) createCommandBuffers() error {
	if len(vr.context.GraphicsCommandBuffers) == 0 {
		vr.context.GraphicsCommandBuffers = make([]*VulkanCommandBuffer, vr.context.Swapchain.ImageCount)
	}
	for i := 0; i < int(vr.context.Swapchain.ImageCount); i++ {
		if vr.context.GraphicsCommandBuffers[i] != nil && vr.context.GraphicsCommandBuffers[i].Handle != nil {
			vr.context.GraphicsCommandBuffers[i].Free(vr.context, vr.context.Device.GraphicsCommandPool)
		}
		cb, err := NewVulkanCommandBuffer(vr.context, vr.context.Device.GraphicsCommandPool, true)
		if err != nil {
			return err
		}
		vr.context.GraphicsCommandBuffers[i] = cb
	}

	core.LogDebug("Vulkan command buffers created.")
	return nil
}

// regenerateFramebuffers rebuilds the per-image composite framebuffers. With
// multisampling the MSAA target is the rendered attachment and the swapchain
// image the resolve destination.
func (vr *VulkanRenderer) regenerateFramebuffers() error {
	swapchain := vr.context.Swapchain
	for i := 0; i < int(swapchain.ImageCount); i++ {
		var attachments []vk.ImageView
		if vr.context.SampleCount > 1 {
			attachments = []vk.ImageView{vr.renderTargets.MSAAColor.View, swapchain.Views[i]}
		} else {
			attachments = []vk.ImageView{swapchain.Views[i]}
		}
		fb, err := FramebufferCreate(vr.context, vr.compositePass.Renderpass,
			vr.context.FramebufferWidth, vr.context.FramebufferHeight, attachments)
		if err != nil {
			core.LogError("failed to create composite framebuffer")
			return err
		}
		swapchain.Framebuffers[i] = fb
	}
	return nil
}

func (vr *VulkanRenderer) recreateSwapchain() error {
	if vr.context.RecreatingSwapchain {
		core.LogDebug("recreateSwapchain called when already recreating, booting")
		return core.ErrSwapchainBooting
	}

	if vr.cachedFramebufferWidth == 0 || vr.cachedFramebufferHeight == 0 {
		core.LogDebug("recreateSwapchain called with a zero dimension, booting")
		return core.ErrSwapchainBooting
	}

	vr.context.RecreatingSwapchain = true

	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)

	for i := range vr.context.ImagesInFlight {
		vr.context.ImagesInFlight[i] = nil
	}

	// Requery support, the surface capabilities changed with the window.
	DeviceQuerySwapchainSupport(vr.context.Device.PhysicalDevice, vr.context.Surface, &vr.context.Device.SwapchainSupport)
	DeviceDetectDepthFormat(vr.context.Device)

	sc, err := vr.context.Swapchain.SwapchainRecreate(vr.context, vr.cachedFramebufferWidth, vr.cachedFramebufferHeight)
	if err != nil {
		vr.context.RecreatingSwapchain = false
		return err
	}
	vr.context.Swapchain = sc

	vr.context.FramebufferWidth = vr.cachedFramebufferWidth
	vr.context.FramebufferHeight = vr.cachedFramebufferHeight
	vr.cachedFramebufferWidth = 0
	vr.cachedFramebufferHeight = 0

	vr.context.FramebufferSizeLastGeneration = vr.context.FramebufferSizeGeneration

	// Face targets and the MSAA buffer follow the framebuffer size.
	if err := vr.renderTargets.Resize(vr.context, vr.entryPass.Renderpass, vr.exitPass.Renderpass,
		vr.context.FramebufferWidth, vr.context.FramebufferHeight); err != nil {
		vr.context.RecreatingSwapchain = false
		return err
	}

	// The composite pass samples the new face textures.
	vr.rebindCompositeInputs()

	vr.context.Swapchain.Framebuffers = make([]*VulkanFramebuffer, vr.context.Swapchain.ImageCount)
	if err := vr.regenerateFramebuffers(); err != nil {
		vr.context.RecreatingSwapchain = false
		return err
	}

	if err := vr.createCommandBuffers(); err != nil {
		vr.context.RecreatingSwapchain = false
		return err
	}

	vr.context.RecreatingSwapchain = false
	return nil
}

func findFirstZero(arr []byte) int {
	for i, b := range arr {
		if b == 0 {
			return i
		}
	}
	return 0
}

func float32Bytes(data []float32) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*4)
}

func uint16Bytes(data []uint16) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*2)
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("ERROR: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogInfo("INFORMATION: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
