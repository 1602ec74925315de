package main

import (
	"bytes"
	"embed"
	"encoding/binary"
	"image/png"
	"math"
	"os"
	"runtime"
	"unsafe"

	"github.com/g3n/engine/loader/obj"
	"github.com/google/uuid"
	"github.com/loov/hrtime"
	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/v3"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	vkngmath "github.com/vkngwrapper/math"

	"github.com/vkwalk/vkwalk/vkinit"
	"github.com/vkwalk/vkwalk/vkselect"
)

//go:embed shaders images meshes
var fileSystem embed.FS

const maxFramesInFlight = 3

// maxBoundTextures caps the sampler descriptor pool.
const maxBoundTextures = 16

const pipelineCacheFile = "pipeline_cache_data.bin"

// Stage 8: a textured mesh rendered in two subpasses. Subpass 0 draws
// the mesh into an intermediate color attachment plus depth, subpass 1
// reads both as input attachments and composites a fullscreen triangle
// into the swapchain image. Pipelines build from a disk-backed pipeline
// cache that is validated against the device before reuse.

type Vertex struct {
	Position vkngmath.Vec3[float32]
	Color    vkngmath.Vec3[float32]
	TexCoord vkngmath.Vec2[float32]
}

// ViewProjection matches the uniform block at set 0, binding 0 of the
// mesh vertex shader.
type ViewProjection struct {
	View vkngmath.Mat4x4[float32]
	Proj vkngmath.Mat4x4[float32]
}

func getVertexBindingDescription() []core1_0.VertexInputBindingDescription {
	v := Vertex{}
	return []core1_0.VertexInputBindingDescription{
		{
			Binding:   0,
			Stride:    int(unsafe.Sizeof(v)),
			InputRate: core1_0.VertexInputRateVertex,
		},
	}
}

func getVertexAttributeDescriptions() []core1_0.VertexInputAttributeDescription {
	v := Vertex{}
	return []core1_0.VertexInputAttributeDescription{
		{
			Binding:  0,
			Location: 0,
			Format:   core1_0.FormatR32G32B32SignedFloat,
			Offset:   int(unsafe.Offsetof(v.Position)),
		},
		{
			Binding:  0,
			Location: 1,
			Format:   core1_0.FormatR32G32B32SignedFloat,
			Offset:   int(unsafe.Offsetof(v.Color)),
		},
		{
			Binding:  0,
			Location: 2,
			Format:   core1_0.FormatR32G32SignedFloat,
			Offset:   int(unsafe.Offsetof(v.TexCoord)),
		},
	}
}

type subpassApp struct {
	cfg    vkinit.Config
	logger *log.Logger

	window *sdl.Window

	instance         *vkinit.Instance
	surfaceExtension khr_surface.ExtensionDriver
	surface          khr_surface.Surface

	selection vkselect.Selection
	device    *vkinit.Device

	swapchain *vkinit.Swapchain

	renderPass core1_0.RenderPass

	uniformSetLayout core1_0.DescriptorSetLayout
	samplerSetLayout core1_0.DescriptorSetLayout
	inputSetLayout   core1_0.DescriptorSetLayout

	pipelineCache core1_0.PipelineCache

	meshPipelineLayout        core1_0.PipelineLayout
	meshPipeline              core1_0.Pipeline
	compositionPipelineLayout core1_0.PipelineLayout
	compositionPipeline       core1_0.Pipeline

	framebuffers   []core1_0.Framebuffer
	commandPool    core1_0.CommandPool
	commandBuffers []core1_0.CommandBuffer

	colorImage       core1_0.Image
	colorImageMemory core1_0.DeviceMemory
	colorImageView   core1_0.ImageView

	depthImage       core1_0.Image
	depthImageMemory core1_0.DeviceMemory
	depthImageView   core1_0.ImageView

	textureImage       core1_0.Image
	textureImageMemory core1_0.DeviceMemory
	textureImageView   core1_0.ImageView
	textureSampler     core1_0.Sampler

	texturePool core1_0.DescriptorPool
	textureSet  core1_0.DescriptorSet

	vertices []Vertex
	indices  []uint32

	vertexBuffer       core1_0.Buffer
	vertexBufferMemory core1_0.DeviceMemory
	indexBuffer        core1_0.Buffer
	indexBufferMemory  core1_0.DeviceMemory

	uniformBuffers       []core1_0.Buffer
	uniformBuffersMemory []core1_0.DeviceMemory

	descriptorPool core1_0.DescriptorPool
	descriptorSets []core1_0.DescriptorSet
	inputSet       core1_0.DescriptorSet

	imageAvailableSemaphore []core1_0.Semaphore
	renderFinishedSemaphore []core1_0.Semaphore
	inFlightFence           []core1_0.Fence
	imagesInFlight          []core1_0.Fence
	currentFrame            int
}

func (app *subpassApp) Run() error {
	err := app.initWindow()
	if err != nil {
		return err
	}

	err = app.initVulkan()
	if err != nil {
		return err
	}
	defer app.cleanup()

	return app.mainLoop()
}

func (app *subpassApp) initWindow() error {
	window, err := vkinit.NewWindow("Subpasses", 1366, 768, true)
	if err != nil {
		return err
	}
	app.window = window
	return nil
}

func (app *subpassApp) initVulkan() error {
	globalDriver, err := core.CreateDriverFromProcAddr(sdl.VulkanGetVkGetInstanceProcAddr())
	if err != nil {
		return err
	}

	app.instance, err = vkinit.NewInstance(globalDriver, vkinit.InstanceOptions{
		AppName:    "08_subpasses",
		Extensions: app.window.VulkanGetInstanceExtensions(),
		Layers:     app.cfg.ValidationLayers(),
		Debug:      app.cfg.Debug,
	}, app.logger)
	if err != nil {
		return err
	}

	app.surfaceExtension, app.surface, err = vkinit.NewSurface(app.instance.Driver, app.window)
	if err != nil {
		return err
	}

	picker := vkselect.Picker{
		InstanceDriver:   app.instance.Driver,
		SurfaceExtension: app.surfaceExtension,
		Surface:          app.surface,
		Log:              app.logger,
	}
	app.selection, err = picker.Pick(vkselect.Requirements{
		Classes:           vkselect.ClassDiscrete | vkselect.ClassIntegrated,
		QueueOps:          core1_0.QueueGraphics,
		NeedPresent:       true,
		NeedSwapchain:     true,
		SamplerAnisotropy: true,
	})
	if err != nil {
		return err
	}

	app.device, err = vkinit.NewDevice(app.instance.Driver, app.selection, []string{khr_swapchain.ExtensionName}, &core1_0.PhysicalDeviceFeatures{
		SamplerAnisotropy: true,
	})
	if err != nil {
		return err
	}

	err = app.createSwapchain()
	if err != nil {
		return err
	}

	err = app.createRenderPass()
	if err != nil {
		return err
	}

	err = app.createDescriptorSetLayouts()
	if err != nil {
		return err
	}

	err = app.createPipelineCache()
	if err != nil {
		return err
	}

	err = app.createGraphicsPipelines()
	if err != nil {
		return err
	}

	err = app.createCommandPool()
	if err != nil {
		return err
	}

	err = app.createColorResources()
	if err != nil {
		return err
	}

	err = app.createDepthResources()
	if err != nil {
		return err
	}

	err = app.createFramebuffers()
	if err != nil {
		return err
	}

	err = app.createTextureImage()
	if err != nil {
		return err
	}

	err = app.createTextureImageView()
	if err != nil {
		return err
	}

	err = app.createTextureSampler()
	if err != nil {
		return err
	}

	err = app.createTextureDescriptor()
	if err != nil {
		return err
	}

	err = app.loadModel()
	if err != nil {
		return err
	}

	err = app.createVertexBuffer()
	if err != nil {
		return err
	}

	err = app.createIndexBuffer()
	if err != nil {
		return err
	}

	err = app.createUniformBuffers()
	if err != nil {
		return err
	}

	err = app.createDescriptorPool()
	if err != nil {
		return err
	}

	err = app.createDescriptorSets()
	if err != nil {
		return err
	}

	err = app.createInputDescriptorSet()
	if err != nil {
		return err
	}

	err = app.createCommandBuffers()
	if err != nil {
		return err
	}

	return app.createSyncObjects()
}

func (app *subpassApp) createSwapchain() error {
	w, h := app.window.VulkanGetDrawableSize()
	swapchain, err := vkinit.CreateSwapchain(app.device, app.surfaceExtension, app.surface, app.selection.Queues, int(w), int(h))
	if err != nil {
		return err
	}
	app.swapchain = swapchain
	return nil
}

func (app *subpassApp) createRenderPass() error {
	depthFormat, err := app.device.FindDepthFormat()
	if err != nil {
		return err
	}

	renderPass, _, err := app.device.Driver.CreateRenderPass(nil, core1_0.RenderPassCreateInfo{
		Attachments: []core1_0.AttachmentDescription{
			{
				Format:         app.swapchain.Format,
				Samples:        core1_0.Samples1,
				LoadOp:         core1_0.AttachmentLoadOpClear,
				StoreOp:        core1_0.AttachmentStoreOpStore,
				StencilLoadOp:  core1_0.AttachmentLoadOpDontCare,
				StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
				InitialLayout:  core1_0.ImageLayoutUndefined,
				FinalLayout:    khr_swapchain.ImageLayoutPresentSrc,
			},
			{
				Format:         core1_0.FormatR8G8B8A8UnsignedNormalized,
				Samples:        core1_0.Samples1,
				LoadOp:         core1_0.AttachmentLoadOpClear,
				StoreOp:        core1_0.AttachmentStoreOpDontCare,
				StencilLoadOp:  core1_0.AttachmentLoadOpDontCare,
				StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
				InitialLayout:  core1_0.ImageLayoutUndefined,
				FinalLayout:    core1_0.ImageLayoutShaderReadOnlyOptimal,
			},
			{
				Format:         depthFormat,
				Samples:        core1_0.Samples1,
				LoadOp:         core1_0.AttachmentLoadOpClear,
				StoreOp:        core1_0.AttachmentStoreOpDontCare,
				StencilLoadOp:  core1_0.AttachmentLoadOpDontCare,
				StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
				InitialLayout:  core1_0.ImageLayoutUndefined,
				FinalLayout:    core1_0.ImageLayoutShaderReadOnlyOptimal,
			},
		},
		Subpasses: []core1_0.SubpassDescription{
			{
				PipelineBindPoint: core1_0.PipelineBindPointGraphics,
				ColorAttachments: []core1_0.AttachmentReference{
					{
						Attachment: 1,
						Layout:     core1_0.ImageLayoutColorAttachmentOptimal,
					},
				},
				DepthStencilAttachment: &core1_0.AttachmentReference{
					Attachment: 2,
					Layout:     core1_0.ImageLayoutDepthStencilAttachmentOptimal,
				},
			},
			{
				PipelineBindPoint: core1_0.PipelineBindPointGraphics,
				InputAttachments: []core1_0.AttachmentReference{
					{
						Attachment: 1,
						Layout:     core1_0.ImageLayoutShaderReadOnlyOptimal,
					},
					{
						Attachment: 2,
						Layout:     core1_0.ImageLayoutShaderReadOnlyOptimal,
					},
				},
				ColorAttachments: []core1_0.AttachmentReference{
					{
						Attachment: 0,
						Layout:     core1_0.ImageLayoutColorAttachmentOptimal,
					},
				},
			},
		},
		SubpassDependencies: []core1_0.SubpassDependency{
			{
				SrcSubpass: core1_0.SubpassExternal,
				DstSubpass: 0,

				SrcStageMask:  core1_0.PipelineStageColorAttachmentOutput | core1_0.PipelineStageEarlyFragmentTests,
				SrcAccessMask: 0,

				DstStageMask:  core1_0.PipelineStageColorAttachmentOutput | core1_0.PipelineStageEarlyFragmentTests,
				DstAccessMask: core1_0.AccessColorAttachmentWrite | core1_0.AccessDepthStencilAttachmentWrite,
			},
			{
				SrcSubpass: 0,
				DstSubpass: 1,

				SrcStageMask:  core1_0.PipelineStageColorAttachmentOutput | core1_0.PipelineStageLateFragmentTests,
				SrcAccessMask: core1_0.AccessColorAttachmentWrite | core1_0.AccessDepthStencilAttachmentWrite,

				DstStageMask:  core1_0.PipelineStageFragmentShader,
				DstAccessMask: core1_0.AccessInputAttachmentRead,
			},
			{
				SrcSubpass: 1,
				DstSubpass: core1_0.SubpassExternal,

				SrcStageMask:  core1_0.PipelineStageColorAttachmentOutput,
				SrcAccessMask: core1_0.AccessColorAttachmentWrite,

				DstStageMask:  core1_0.PipelineStageBottomOfPipe,
				DstAccessMask: core1_0.AccessMemoryRead,
			},
		},
	})
	if err != nil {
		return err
	}
	app.renderPass = renderPass

	return nil
}

func (app *subpassApp) createDescriptorSetLayouts() error {
	var err error
	app.uniformSetLayout, _, err = app.device.Driver.CreateDescriptorSetLayout(nil, core1_0.DescriptorSetLayoutCreateInfo{
		Bindings: []core1_0.DescriptorSetLayoutBinding{
			{
				Binding:         0,
				DescriptorType:  core1_0.DescriptorTypeUniformBuffer,
				DescriptorCount: 1,

				StageFlags: core1_0.StageVertex,
			},
		},
	})
	if err != nil {
		return err
	}

	app.samplerSetLayout, _, err = app.device.Driver.CreateDescriptorSetLayout(nil, core1_0.DescriptorSetLayoutCreateInfo{
		Bindings: []core1_0.DescriptorSetLayoutBinding{
			{
				Binding:         0,
				DescriptorType:  core1_0.DescriptorTypeCombinedImageSampler,
				DescriptorCount: 1,

				StageFlags: core1_0.StageFragment,
			},
		},
	})
	if err != nil {
		return err
	}

	app.inputSetLayout, _, err = app.device.Driver.CreateDescriptorSetLayout(nil, core1_0.DescriptorSetLayoutCreateInfo{
		Bindings: []core1_0.DescriptorSetLayoutBinding{
			{
				Binding:         0,
				DescriptorType:  core1_0.DescriptorTypeInputAttachment,
				DescriptorCount: 1,

				StageFlags: core1_0.StageFragment,
			},
			{
				Binding:         1,
				DescriptorType:  core1_0.DescriptorTypeInputAttachment,
				DescriptorCount: 1,

				StageFlags: core1_0.StageFragment,
			},
		},
	})
	return err
}

func (app *subpassApp) createPipelineCache() error {
	initialData, err := app.loadPipelineCacheData()
	if err != nil {
		return err
	}

	app.pipelineCache, _, err = app.device.Driver.CreatePipelineCache(nil, core1_0.PipelineCacheCreateInfo{
		InitialData: initialData,
	})
	return err
}

// loadPipelineCacheData reads the cache file and validates its header
// against the selected device. Stale or foreign cache data is discarded
// so the next run starts from a freshly-populated file.
func (app *subpassApp) loadPipelineCacheData() ([]byte, error) {
	cacheData, err := os.ReadFile(pipelineCacheFile)
	if os.IsNotExist(err) {
		app.logger.Infof("pipeline cache miss, building pipelines cold")
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	if !app.validatePipelineCache(cacheData) {
		return app.discardPipelineCache()
	}

	app.logger.Infof("pipeline cache hit, %d bytes", len(cacheData))
	return cacheData, nil
}

// validatePipelineCache reports whether the cache header names the
// selected device.
func (app *subpassApp) validatePipelineCache(cacheData []byte) bool {
	var headerLength uint32
	var cacheHeaderVersion core1_0.PipelineCacheHeaderVersion
	var vendorID, deviceID uint32
	var cacheUUID uuid.UUID

	cacheReader := bytes.NewReader(cacheData)

	err := binary.Read(cacheReader, common.ByteOrder, &headerLength)
	if err != nil {
		return false
	}

	err = binary.Read(cacheReader, common.ByteOrder, &cacheHeaderVersion)
	if err != nil {
		return false
	}

	err = binary.Read(cacheReader, common.ByteOrder, &vendorID)
	if err != nil {
		return false
	}

	err = binary.Read(cacheReader, common.ByteOrder, &deviceID)
	if err != nil {
		return false
	}

	err = binary.Read(cacheReader, common.ByteOrder, &cacheUUID)
	if err != nil {
		return false
	}

	badCache := false

	if headerLength <= 0 {
		badCache = true
		app.logger.Warnf("bad pipeline cache header length: 0x%x", headerLength)
	}

	if cacheHeaderVersion != core1_0.PipelineCacheHeaderVersion1 {
		badCache = true
		app.logger.Warnf("unsupported pipeline cache header version: 0x%x", cacheHeaderVersion)
	}

	if vendorID != app.selection.Profile.VendorID {
		badCache = true
		app.logger.Warnf("pipeline cache vendor ID mismatch: cache contains 0x%x, driver expects 0x%x", vendorID, app.selection.Profile.VendorID)
	}

	if deviceID != app.selection.Profile.DeviceID {
		badCache = true
		app.logger.Warnf("pipeline cache device ID mismatch: cache contains 0x%x, driver expects 0x%x", deviceID, app.selection.Profile.DeviceID)
	}

	if cacheUUID != app.selection.Profile.PipelineCacheUUID {
		badCache = true
		app.logger.Warnf("pipeline cache UUID mismatch: cache contains %s, driver expects %s", cacheUUID.String(), app.selection.Profile.PipelineCacheUUID.String())
	}

	return !badCache
}

func (app *subpassApp) discardPipelineCache() ([]byte, error) {
	app.logger.Warnf("deleting pipeline cache %s to repopulate", pipelineCacheFile)
	// Not important if this fails, the file is rewritten on shutdown.
	_ = os.Remove(pipelineCacheFile)
	return nil, nil
}

func (app *subpassApp) savePipelineCache() error {
	cacheData, _, err := app.device.Driver.GetPipelineCacheData(app.pipelineCache)
	if err != nil {
		return err
	}

	err = os.WriteFile(pipelineCacheFile, cacheData, 0666)
	if err != nil {
		return err
	}

	app.logger.Infof("pipeline cache written to %s, %d bytes", pipelineCacheFile, len(cacheData))
	return nil
}

func (app *subpassApp) createGraphicsPipelines() error {
	meshVertBytes, err := fileSystem.ReadFile("shaders/mesh_vert.spv")
	if err != nil {
		return err
	}

	meshVertShader, err := app.device.CreateShaderModule(meshVertBytes)
	if err != nil {
		return err
	}
	defer app.device.Driver.DestroyShaderModule(meshVertShader, nil)

	meshFragBytes, err := fileSystem.ReadFile("shaders/mesh_frag.spv")
	if err != nil {
		return err
	}

	meshFragShader, err := app.device.CreateShaderModule(meshFragBytes)
	if err != nil {
		return err
	}
	defer app.device.Driver.DestroyShaderModule(meshFragShader, nil)

	compositeVertBytes, err := fileSystem.ReadFile("shaders/composite_vert.spv")
	if err != nil {
		return err
	}

	compositeVertShader, err := app.device.CreateShaderModule(compositeVertBytes)
	if err != nil {
		return err
	}
	defer app.device.Driver.DestroyShaderModule(compositeVertShader, nil)

	compositeFragBytes, err := fileSystem.ReadFile("shaders/composite_frag.spv")
	if err != nil {
		return err
	}

	compositeFragShader, err := app.device.CreateShaderModule(compositeFragBytes)
	if err != nil {
		return err
	}
	defer app.device.Driver.DestroyShaderModule(compositeFragShader, nil)

	inputAssembly := &core1_0.PipelineInputAssemblyStateCreateInfo{
		Topology:               core1_0.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: false,
	}

	viewport := &core1_0.PipelineViewportStateCreateInfo{
		Viewports: []core1_0.Viewport{
			{
				X:        0,
				Y:        0,
				Width:    float32(app.swapchain.Extent.Width),
				Height:   float32(app.swapchain.Extent.Height),
				MinDepth: 0,
				MaxDepth: 1,
			},
		},
		Scissors: []core1_0.Rect2D{
			{
				Offset: core1_0.Offset2D{X: 0, Y: 0},
				Extent: app.swapchain.Extent,
			},
		},
	}

	meshRasterization := &core1_0.PipelineRasterizationStateCreateInfo{
		DepthClampEnable:        false,
		RasterizerDiscardEnable: false,

		PolygonMode: core1_0.PolygonModeFill,
		CullMode:    core1_0.CullModeBack,
		FrontFace:   core1_0.FrontFaceCounterClockwise,

		DepthBiasEnable: false,

		LineWidth: 1.0,
	}

	// The fullscreen triangle winds clockwise in framebuffer space, so
	// the composition pass disables culling instead of flipping.
	compositionRasterization := &core1_0.PipelineRasterizationStateCreateInfo{
		DepthClampEnable:        false,
		RasterizerDiscardEnable: false,

		PolygonMode: core1_0.PolygonModeFill,
		CullMode:    core1_0.CullModeNone,
		FrontFace:   core1_0.FrontFaceCounterClockwise,

		DepthBiasEnable: false,

		LineWidth: 1.0,
	}

	multisample := &core1_0.PipelineMultisampleStateCreateInfo{
		SampleShadingEnable:  false,
		RasterizationSamples: core1_0.Samples1,
		MinSampleShading:     1.0,
	}

	depthStencil := &core1_0.PipelineDepthStencilStateCreateInfo{
		DepthTestEnable:       true,
		DepthWriteEnable:      true,
		DepthCompareOp:        core1_0.CompareOpLess,
		DepthBoundsTestEnable: false,
		StencilTestEnable:     false,
	}

	colorBlend := &core1_0.PipelineColorBlendStateCreateInfo{
		LogicOpEnabled: false,
		LogicOp:        core1_0.LogicOpCopy,

		BlendConstants: [4]float32{0, 0, 0, 0},
		Attachments: []core1_0.PipelineColorBlendAttachmentState{
			{
				BlendEnabled:   false,
				ColorWriteMask: core1_0.ColorComponentRed | core1_0.ColorComponentGreen | core1_0.ColorComponentBlue | core1_0.ColorComponentAlpha,
			},
		},
	}

	app.meshPipelineLayout, _, err = app.device.Driver.CreatePipelineLayout(nil, core1_0.PipelineLayoutCreateInfo{
		SetLayouts: []core1_0.DescriptorSetLayout{
			app.uniformSetLayout,
			app.samplerSetLayout,
		},
		PushConstantRanges: []core1_0.PushConstantRange{
			{
				StageFlags: core1_0.StageVertex,
				Offset:     0,
				Size:       int(unsafe.Sizeof(vkngmath.Mat4x4[float32]{})),
			},
		},
	})
	if err != nil {
		return err
	}

	app.compositionPipelineLayout, _, err = app.device.Driver.CreatePipelineLayout(nil, core1_0.PipelineLayoutCreateInfo{
		SetLayouts: []core1_0.DescriptorSetLayout{
			app.inputSetLayout,
		},
	})
	if err != nil {
		return err
	}

	pipelines, _, err := app.device.Driver.CreateGraphicsPipelines(&app.pipelineCache, nil,
		core1_0.GraphicsPipelineCreateInfo{
			Stages: []core1_0.PipelineShaderStageCreateInfo{
				{
					Stage:  core1_0.StageVertex,
					Module: meshVertShader,
					Name:   "main",
				},
				{
					Stage:  core1_0.StageFragment,
					Module: meshFragShader,
					Name:   "main",
				},
			},
			VertexInputState: &core1_0.PipelineVertexInputStateCreateInfo{
				VertexBindingDescriptions:   getVertexBindingDescription(),
				VertexAttributeDescriptions: getVertexAttributeDescriptions(),
			},
			InputAssemblyState: inputAssembly,
			ViewportState:      viewport,
			RasterizationState: meshRasterization,
			MultisampleState:   multisample,
			DepthStencilState:  depthStencil,
			ColorBlendState:    colorBlend,
			Layout:             app.meshPipelineLayout,
			RenderPass:         app.renderPass,
			Subpass:            0,
			BasePipelineIndex:  -1,
		},
		core1_0.GraphicsPipelineCreateInfo{
			Stages: []core1_0.PipelineShaderStageCreateInfo{
				{
					Stage:  core1_0.StageVertex,
					Module: compositeVertShader,
					Name:   "main",
				},
				{
					Stage:  core1_0.StageFragment,
					Module: compositeFragShader,
					Name:   "main",
				},
			},
			VertexInputState:   &core1_0.PipelineVertexInputStateCreateInfo{},
			InputAssemblyState: inputAssembly,
			ViewportState:      viewport,
			RasterizationState: compositionRasterization,
			MultisampleState:   multisample,
			ColorBlendState:    colorBlend,
			Layout:             app.compositionPipelineLayout,
			RenderPass:         app.renderPass,
			Subpass:            1,
			BasePipelineIndex:  -1,
		},
	)
	if err != nil {
		return err
	}
	app.meshPipeline = pipelines[0]
	app.compositionPipeline = pipelines[1]

	return nil
}

func (app *subpassApp) createCommandPool() error {
	pool, _, err := app.device.Driver.CreateCommandPool(nil, core1_0.CommandPoolCreateInfo{
		Flags:            core1_0.CommandPoolCreateResetBuffer,
		QueueFamilyIndex: app.selection.Queues.Graphics,
	})
	if err != nil {
		return err
	}
	app.commandPool = pool

	return nil
}

func (app *subpassApp) createColorResources() error {
	var err error
	app.colorImage, app.colorImageMemory, err = app.device.CreateImage(
		app.swapchain.Extent.Width,
		app.swapchain.Extent.Height,
		1,
		core1_0.Samples1,
		core1_0.FormatR8G8B8A8UnsignedNormalized,
		core1_0.ImageTilingOptimal,
		core1_0.ImageUsageColorAttachment|core1_0.ImageUsageInputAttachment,
		core1_0.MemoryPropertyDeviceLocal)
	if err != nil {
		return err
	}

	app.colorImageView, err = app.device.CreateImageView(app.colorImage, core1_0.FormatR8G8B8A8UnsignedNormalized, core1_0.ImageAspectColor, 1)
	return err
}

func (app *subpassApp) createDepthResources() error {
	depthFormat, err := app.device.FindDepthFormat()
	if err != nil {
		return err
	}

	app.depthImage, app.depthImageMemory, err = app.device.CreateImage(
		app.swapchain.Extent.Width,
		app.swapchain.Extent.Height,
		1,
		core1_0.Samples1,
		depthFormat,
		core1_0.ImageTilingOptimal,
		core1_0.ImageUsageDepthStencilAttachment|core1_0.ImageUsageInputAttachment,
		core1_0.MemoryPropertyDeviceLocal)
	if err != nil {
		return err
	}

	app.depthImageView, err = app.device.CreateImageView(app.depthImage, depthFormat, core1_0.ImageAspectDepth, 1)
	return err
}

func (app *subpassApp) createFramebuffers() error {
	for _, imageView := range app.swapchain.Views {
		framebuffer, _, err := app.device.Driver.CreateFramebuffer(nil, core1_0.FramebufferCreateInfo{
			RenderPass: app.renderPass,
			Layers:     1,
			Attachments: []core1_0.ImageView{
				imageView,
				app.colorImageView,
				app.depthImageView,
			},
			Width:  app.swapchain.Extent.Width,
			Height: app.swapchain.Extent.Height,
		})
		if err != nil {
			return err
		}

		app.framebuffers = append(app.framebuffers, framebuffer)
	}

	return nil
}

func (app *subpassApp) createTextureImage() error {
	imageBytes, err := fileSystem.ReadFile("images/default.png")
	if err != nil {
		return err
	}

	decodedImage, err := png.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return err
	}
	imageBounds := decodedImage.Bounds().Size()
	imageSize := imageBounds.X * imageBounds.Y * 4

	stagingBuffer, stagingMemory, err := app.device.CreateBuffer(imageSize, core1_0.BufferUsageTransferSrc, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	if stagingBuffer.Initialized() {
		defer app.device.Driver.DestroyBuffer(stagingBuffer, nil)
	}
	if stagingMemory.Initialized() {
		defer app.device.Driver.FreeMemory(stagingMemory, nil)
	}

	if err != nil {
		return err
	}

	pixelData := make([]byte, 0, imageSize)
	for y := 0; y < imageBounds.Y; y++ {
		for x := 0; x < imageBounds.X; x++ {
			r, g, b, a := decodedImage.At(x, y).RGBA()
			pixelData = append(pixelData, byte(r), byte(g), byte(b), byte(a))
		}
	}

	err = vkinit.WriteData(app.device.Driver, stagingMemory, 0, pixelData)
	if err != nil {
		return err
	}

	app.textureImage, app.textureImageMemory, err = app.device.CreateImage(imageBounds.X, imageBounds.Y, 1,
		core1_0.Samples1,
		core1_0.FormatR8G8B8A8SRGB,
		core1_0.ImageTilingOptimal,
		core1_0.ImageUsageTransferDst|core1_0.ImageUsageSampled,
		core1_0.MemoryPropertyDeviceLocal)
	if err != nil {
		return err
	}

	err = app.device.TransitionImageLayout(app.commandPool, app.textureImage, core1_0.FormatR8G8B8A8SRGB, core1_0.ImageLayoutUndefined, core1_0.ImageLayoutTransferDstOptimal, 1)
	if err != nil {
		return err
	}

	err = app.device.CopyBufferToImage(app.commandPool, stagingBuffer, app.textureImage, imageBounds.X, imageBounds.Y)
	if err != nil {
		return err
	}

	return app.device.TransitionImageLayout(app.commandPool, app.textureImage, core1_0.FormatR8G8B8A8SRGB, core1_0.ImageLayoutTransferDstOptimal, core1_0.ImageLayoutShaderReadOnlyOptimal, 1)
}

func (app *subpassApp) createTextureImageView() error {
	var err error
	app.textureImageView, err = app.device.CreateImageView(app.textureImage, core1_0.FormatR8G8B8A8SRGB, core1_0.ImageAspectColor, 1)
	return err
}

func (app *subpassApp) createTextureSampler() error {
	properties, err := app.instance.Driver.GetPhysicalDeviceProperties(app.selection.Device)
	if err != nil {
		return err
	}

	app.textureSampler, _, err = app.device.Driver.CreateSampler(nil, core1_0.SamplerCreateInfo{
		MagFilter:    core1_0.FilterLinear,
		MinFilter:    core1_0.FilterLinear,
		AddressModeU: core1_0.SamplerAddressModeRepeat,
		AddressModeV: core1_0.SamplerAddressModeRepeat,
		AddressModeW: core1_0.SamplerAddressModeRepeat,

		AnisotropyEnable: true,
		MaxAnisotropy:    properties.Limits.MaxSamplerAnisotropy,

		BorderColor: core1_0.BorderColorIntOpaqueBlack,

		UnnormalizedCoordinates: false,

		CompareEnable: false,
		CompareOp:     core1_0.CompareOpAlways,

		MipmapMode: core1_0.SamplerMipmapModeLinear,
		MipLodBias: 0,
		MinLod:     0,
		MaxLod:     1,
	})
	return err
}

func (app *subpassApp) createTextureDescriptor() error {
	var err error
	app.texturePool, _, err = app.device.Driver.CreateDescriptorPool(nil, core1_0.DescriptorPoolCreateInfo{
		MaxSets: maxBoundTextures,
		PoolSizes: []core1_0.DescriptorPoolSize{
			{
				Type:            core1_0.DescriptorTypeCombinedImageSampler,
				DescriptorCount: maxBoundTextures,
			},
		},
	})
	if err != nil {
		return err
	}

	sets, _, err := app.device.Driver.AllocateDescriptorSets(core1_0.DescriptorSetAllocateInfo{
		DescriptorPool: app.texturePool,
		SetLayouts: []core1_0.DescriptorSetLayout{
			app.samplerSetLayout,
		},
	})
	if err != nil {
		return err
	}
	app.textureSet = sets[0]

	return app.device.Driver.UpdateDescriptorSets([]core1_0.WriteDescriptorSet{
		{
			DstSet:          app.textureSet,
			DstBinding:      0,
			DstArrayElement: 0,

			DescriptorType: core1_0.DescriptorTypeCombinedImageSampler,

			ImageInfo: []core1_0.DescriptorImageInfo{
				{
					ImageView:   app.textureImageView,
					Sampler:     app.textureSampler,
					ImageLayout: core1_0.ImageLayoutShaderReadOnlyOptimal,
				},
			},
		},
	}, nil)
}

func (app *subpassApp) addVertex(decoder *obj.Decoder, uniqueVertices map[int]uint32, face obj.Face, faceIndex int) {
	vertInd := face.Vertices[faceIndex]
	index, vertexExists := uniqueVertices[vertInd]

	if !vertexExists {
		vert := Vertex{Position: vkngmath.Vec3[float32]{
			decoder.Vertices[vertInd*3],
			decoder.Vertices[vertInd*3+1],
			decoder.Vertices[vertInd*3+2],
		}, Color: vkngmath.Vec3[float32]{1, 1, 1}}

		uvInd := face.Uvs[faceIndex]
		vert.TexCoord = vkngmath.Vec2[float32]{
			decoder.Uvs[uvInd*2],
			1.0 - decoder.Uvs[uvInd*2+1],
		}

		index = uint32(len(app.vertices))
		app.vertices = append(app.vertices, vert)
		uniqueVertices[vertInd] = index
	}

	app.indices = append(app.indices, index)
}

func (app *subpassApp) loadModel() error {
	meshFile, err := fileSystem.Open("meshes/cube.obj")
	if err != nil {
		return err
	}
	defer meshFile.Close()

	matFile, err := fileSystem.Open("meshes/cube.mtl")
	if err != nil {
		return err
	}
	defer matFile.Close()

	decoder, err := obj.DecodeReader(meshFile, matFile)
	if err != nil {
		return err
	}

	uniqueVertices := make(map[int]uint32)

	for _, decodedObj := range decoder.Objects {
		for _, face := range decodedObj.Faces {
			// We need to triangularize faces
			for i := 2; i < len(face.Vertices); i++ {
				app.addVertex(decoder, uniqueVertices, face, 0)
				app.addVertex(decoder, uniqueVertices, face, i-1)
				app.addVertex(decoder, uniqueVertices, face, i)
			}
		}
	}

	app.logger.Debugf("mesh loaded, %d vertices, %d indices", len(app.vertices), len(app.indices))

	return nil
}

func (app *subpassApp) createVertexBuffer() error {
	bufferSize := binary.Size(app.vertices)

	stagingBuffer, stagingBufferMemory, err := app.device.CreateBuffer(bufferSize, core1_0.BufferUsageTransferSrc, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	if stagingBuffer.Initialized() {
		defer app.device.Driver.DestroyBuffer(stagingBuffer, nil)
	}
	if stagingBufferMemory.Initialized() {
		defer app.device.Driver.FreeMemory(stagingBufferMemory, nil)
	}

	if err != nil {
		return err
	}

	err = vkinit.WriteData(app.device.Driver, stagingBufferMemory, 0, app.vertices)
	if err != nil {
		return err
	}

	app.vertexBuffer, app.vertexBufferMemory, err = app.device.CreateBuffer(bufferSize, core1_0.BufferUsageTransferDst|core1_0.BufferUsageVertexBuffer, core1_0.MemoryPropertyDeviceLocal)
	if err != nil {
		return err
	}

	return app.device.CopyBuffer(app.commandPool, stagingBuffer, app.vertexBuffer, bufferSize)
}

func (app *subpassApp) createIndexBuffer() error {
	bufferSize := binary.Size(app.indices)

	stagingBuffer, stagingBufferMemory, err := app.device.CreateBuffer(bufferSize, core1_0.BufferUsageTransferSrc, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	if stagingBuffer.Initialized() {
		defer app.device.Driver.DestroyBuffer(stagingBuffer, nil)
	}
	if stagingBufferMemory.Initialized() {
		defer app.device.Driver.FreeMemory(stagingBufferMemory, nil)
	}

	if err != nil {
		return err
	}

	err = vkinit.WriteData(app.device.Driver, stagingBufferMemory, 0, app.indices)
	if err != nil {
		return err
	}

	app.indexBuffer, app.indexBufferMemory, err = app.device.CreateBuffer(bufferSize, core1_0.BufferUsageTransferDst|core1_0.BufferUsageIndexBuffer, core1_0.MemoryPropertyDeviceLocal)
	if err != nil {
		return err
	}

	return app.device.CopyBuffer(app.commandPool, stagingBuffer, app.indexBuffer, bufferSize)
}

func (app *subpassApp) createUniformBuffers() error {
	bufferSize := int(unsafe.Sizeof(ViewProjection{}))

	for i := 0; i < len(app.swapchain.Images); i++ {
		buffer, memory, err := app.device.CreateBuffer(bufferSize, core1_0.BufferUsageUniformBuffer, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
		if err != nil {
			return err
		}

		app.uniformBuffers = append(app.uniformBuffers, buffer)
		app.uniformBuffersMemory = append(app.uniformBuffersMemory, memory)
	}

	return nil
}

func (app *subpassApp) createDescriptorPool() error {
	var err error
	app.descriptorPool, _, err = app.device.Driver.CreateDescriptorPool(nil, core1_0.DescriptorPoolCreateInfo{
		MaxSets: len(app.swapchain.Images) + 1,
		PoolSizes: []core1_0.DescriptorPoolSize{
			{
				Type:            core1_0.DescriptorTypeUniformBuffer,
				DescriptorCount: len(app.swapchain.Images),
			},
			{
				Type:            core1_0.DescriptorTypeInputAttachment,
				DescriptorCount: 2,
			},
		},
	})
	return err
}

func (app *subpassApp) createDescriptorSets() error {
	var allocLayouts []core1_0.DescriptorSetLayout
	for i := 0; i < len(app.swapchain.Images); i++ {
		allocLayouts = append(allocLayouts, app.uniformSetLayout)
	}

	var err error
	app.descriptorSets, _, err = app.device.Driver.AllocateDescriptorSets(core1_0.DescriptorSetAllocateInfo{
		DescriptorPool: app.descriptorPool,
		SetLayouts:     allocLayouts,
	})
	if err != nil {
		return err
	}

	for i := 0; i < len(app.swapchain.Images); i++ {
		err = app.device.Driver.UpdateDescriptorSets([]core1_0.WriteDescriptorSet{
			{
				DstSet:          app.descriptorSets[i],
				DstBinding:      0,
				DstArrayElement: 0,

				DescriptorType: core1_0.DescriptorTypeUniformBuffer,

				BufferInfo: []core1_0.DescriptorBufferInfo{
					{
						Buffer: app.uniformBuffers[i],
						Offset: 0,
						Range:  int(unsafe.Sizeof(ViewProjection{})),
					},
				},
			},
		}, nil)
		if err != nil {
			return err
		}
	}

	return nil
}

func (app *subpassApp) createInputDescriptorSet() error {
	sets, _, err := app.device.Driver.AllocateDescriptorSets(core1_0.DescriptorSetAllocateInfo{
		DescriptorPool: app.descriptorPool,
		SetLayouts: []core1_0.DescriptorSetLayout{
			app.inputSetLayout,
		},
	})
	if err != nil {
		return err
	}
	app.inputSet = sets[0]

	return app.device.Driver.UpdateDescriptorSets([]core1_0.WriteDescriptorSet{
		{
			DstSet:          app.inputSet,
			DstBinding:      0,
			DstArrayElement: 0,

			DescriptorType: core1_0.DescriptorTypeInputAttachment,

			ImageInfo: []core1_0.DescriptorImageInfo{
				{
					ImageView:   app.colorImageView,
					ImageLayout: core1_0.ImageLayoutShaderReadOnlyOptimal,
				},
			},
		},
		{
			DstSet:          app.inputSet,
			DstBinding:      1,
			DstArrayElement: 0,

			DescriptorType: core1_0.DescriptorTypeInputAttachment,

			ImageInfo: []core1_0.DescriptorImageInfo{
				{
					ImageView:   app.depthImageView,
					ImageLayout: core1_0.ImageLayoutShaderReadOnlyOptimal,
				},
			},
		},
	}, nil)
}

func (app *subpassApp) createCommandBuffers() error {
	buffers, _, err := app.device.Driver.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        app.commandPool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: len(app.swapchain.Images),
	})
	if err != nil {
		return err
	}
	app.commandBuffers = buffers

	return nil
}

func (app *subpassApp) recordCommandBuffer(imageIndex int) error {
	buffer := app.commandBuffers[imageIndex]

	_, err := app.device.Driver.BeginCommandBuffer(buffer, core1_0.CommandBufferBeginInfo{
		Flags: core1_0.CommandBufferUsageOneTimeSubmit,
	})
	if err != nil {
		return err
	}

	err = app.device.Driver.CmdBeginRenderPass(buffer, core1_0.SubpassContentsInline,
		core1_0.RenderPassBeginInfo{
			RenderPass:  app.renderPass,
			Framebuffer: app.framebuffers[imageIndex],
			RenderArea: core1_0.Rect2D{
				Offset: core1_0.Offset2D{X: 0, Y: 0},
				Extent: app.swapchain.Extent,
			},
			ClearValues: []core1_0.ClearValue{
				core1_0.ClearValueFloat{0, 0, 0, 1},
				core1_0.ClearValueFloat{0, 0, 0, 1},
				core1_0.ClearValueDepthStencil{Depth: 1.0, Stencil: 0},
			},
		})
	if err != nil {
		return err
	}

	app.device.Driver.CmdBindPipeline(buffer, core1_0.PipelineBindPointGraphics, app.meshPipeline)
	app.device.Driver.CmdBindVertexBuffers(buffer, 0, []core1_0.Buffer{app.vertexBuffer}, []int{0})
	app.device.Driver.CmdBindIndexBuffer(buffer, app.indexBuffer, 0, core1_0.IndexTypeUInt32)
	app.device.Driver.CmdBindDescriptorSets(buffer, core1_0.PipelineBindPointGraphics, app.meshPipelineLayout, 0, []core1_0.DescriptorSet{
		app.descriptorSets[imageIndex],
		app.textureSet,
	}, nil)

	currentTime := hrtime.Now().Seconds()
	timePeriod := math.Mod(currentTime, 4.0)

	var model vkngmath.Mat4x4[float32]
	model.SetRotationZ(timePeriod * math.Pi / 2.0)

	pushBuf := &bytes.Buffer{}
	err = binary.Write(pushBuf, common.ByteOrder, &model)
	if err != nil {
		return err
	}
	app.device.Driver.CmdPushConstants(buffer, app.meshPipelineLayout, core1_0.StageVertex, 0, pushBuf.Bytes())

	app.device.Driver.CmdDrawIndexed(buffer, len(app.indices), 1, 0, 0, 0)

	app.device.Driver.CmdNextSubpass(buffer, core1_0.SubpassContentsInline)

	app.device.Driver.CmdBindPipeline(buffer, core1_0.PipelineBindPointGraphics, app.compositionPipeline)
	app.device.Driver.CmdBindDescriptorSets(buffer, core1_0.PipelineBindPointGraphics, app.compositionPipelineLayout, 0, []core1_0.DescriptorSet{
		app.inputSet,
	}, nil)
	app.device.Driver.CmdDraw(buffer, 3, 1, 0, 0)

	app.device.Driver.CmdEndRenderPass(buffer)

	_, err = app.device.Driver.EndCommandBuffer(buffer)
	return err
}

func (app *subpassApp) createSyncObjects() error {
	for i := 0; i < maxFramesInFlight; i++ {
		semaphore, _, err := app.device.Driver.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
		if err != nil {
			return err
		}

		app.imageAvailableSemaphore = append(app.imageAvailableSemaphore, semaphore)

		fence, _, err := app.device.Driver.CreateFence(nil, core1_0.FenceCreateInfo{
			Flags: core1_0.FenceCreateSignaled,
		})
		if err != nil {
			return err
		}

		app.inFlightFence = append(app.inFlightFence, fence)
	}

	for i := 0; i < len(app.swapchain.Images); i++ {
		semaphore, _, err := app.device.Driver.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
		if err != nil {
			return err
		}

		app.renderFinishedSemaphore = append(app.renderFinishedSemaphore, semaphore)

		app.imagesInFlight = append(app.imagesInFlight, core1_0.Fence{})
	}

	return nil
}

func (app *subpassApp) updateUniformBuffer(currentImage int) error {
	vp := ViewProjection{}
	vp.View.SetLookAt(
		&vkngmath.Vec3[float32]{X: 2, Y: 2, Z: 2},
		&vkngmath.Vec3[float32]{X: 0, Y: 0, Z: 0},
		&vkngmath.Vec3[float32]{X: 0, Y: 0, Z: 1},
	)

	aspectRatio := float32(app.swapchain.Extent.Width) / float32(app.swapchain.Extent.Height)

	near := float32(0.1)
	far := float32(10.0)
	fovy := math.Pi / 4.0

	vp.Proj.SetPerspective(fovy, aspectRatio, near, far)

	return vkinit.WriteData(app.device.Driver, app.uniformBuffersMemory[currentImage], 0, &vp)
}

func (app *subpassApp) drawFrame() error {
	fences := []core1_0.Fence{app.inFlightFence[app.currentFrame]}

	_, err := app.device.Driver.WaitForFences(true, common.NoTimeout, fences...)
	if err != nil {
		return err
	}

	imageIndex, res, err := app.swapchain.Extension.AcquireNextImage(app.swapchain.Handle, common.NoTimeout, &app.imageAvailableSemaphore[app.currentFrame], nil)
	if res == khr_swapchain.VKErrorOutOfDate {
		return app.recreateSwapchain()
	} else if err != nil {
		return err
	}

	if app.imagesInFlight[imageIndex].Initialized() {
		_, err := app.device.Driver.WaitForFences(true, common.NoTimeout, app.imagesInFlight[imageIndex])
		if err != nil {
			return err
		}
	}
	app.imagesInFlight[imageIndex] = app.inFlightFence[app.currentFrame]

	_, err = app.device.Driver.ResetFences(fences...)
	if err != nil {
		return err
	}

	err = app.updateUniformBuffer(imageIndex)
	if err != nil {
		return err
	}

	err = app.recordCommandBuffer(imageIndex)
	if err != nil {
		return err
	}

	_, err = app.device.Driver.QueueSubmit(app.device.GraphicsQueue, &app.inFlightFence[app.currentFrame],
		core1_0.SubmitInfo{
			WaitSemaphores:   []core1_0.Semaphore{app.imageAvailableSemaphore[app.currentFrame]},
			WaitDstStageMask: []core1_0.PipelineStageFlags{core1_0.PipelineStageColorAttachmentOutput},
			CommandBuffers:   []core1_0.CommandBuffer{app.commandBuffers[imageIndex]},
			SignalSemaphores: []core1_0.Semaphore{app.renderFinishedSemaphore[imageIndex]},
		},
	)
	if err != nil {
		return err
	}

	res, err = app.swapchain.Extension.QueuePresent(app.device.PresentQueue, khr_swapchain.PresentInfo{
		WaitSemaphores: []core1_0.Semaphore{app.renderFinishedSemaphore[imageIndex]},
		Swapchains:     []khr_swapchain.Swapchain{app.swapchain.Handle},
		ImageIndices:   []int{imageIndex},
	})
	if res == khr_swapchain.VKErrorOutOfDate || res == khr_swapchain.VKSuboptimal {
		return app.recreateSwapchain()
	} else if err != nil {
		return err
	}

	app.currentFrame = (app.currentFrame + 1) % maxFramesInFlight

	return nil
}

func (app *subpassApp) recreateSwapchain() error {
	w, h := app.window.VulkanGetDrawableSize()
	if w == 0 || h == 0 {
		return nil
	}
	if (app.window.GetFlags() & sdl.WINDOW_MINIMIZED) != 0 {
		return nil
	}

	_, err := app.device.Driver.DeviceWaitIdle()
	if err != nil {
		return err
	}

	app.cleanupSwapchain()

	err = app.createSwapchain()
	if err != nil {
		return err
	}

	err = app.createRenderPass()
	if err != nil {
		return err
	}

	err = app.createGraphicsPipelines()
	if err != nil {
		return err
	}

	err = app.createColorResources()
	if err != nil {
		return err
	}

	err = app.createDepthResources()
	if err != nil {
		return err
	}

	err = app.createFramebuffers()
	if err != nil {
		return err
	}

	err = app.createUniformBuffers()
	if err != nil {
		return err
	}

	err = app.createDescriptorPool()
	if err != nil {
		return err
	}

	err = app.createDescriptorSets()
	if err != nil {
		return err
	}

	err = app.createInputDescriptorSet()
	if err != nil {
		return err
	}

	err = app.createCommandBuffers()
	if err != nil {
		return err
	}

	app.imagesInFlight = []core1_0.Fence{}
	for i := 0; i < len(app.swapchain.Images); i++ {
		app.imagesInFlight = append(app.imagesInFlight, core1_0.Fence{})
	}

	return nil
}

func (app *subpassApp) cleanupSwapchain() {
	for _, framebuffer := range app.framebuffers {
		app.device.Driver.DestroyFramebuffer(framebuffer, nil)
	}
	app.framebuffers = []core1_0.Framebuffer{}

	if len(app.commandBuffers) > 0 {
		app.device.Driver.FreeCommandBuffers(app.commandBuffers...)
		app.commandBuffers = []core1_0.CommandBuffer{}
	}

	if app.meshPipeline.Initialized() {
		app.device.Driver.DestroyPipeline(app.meshPipeline, nil)
		app.meshPipeline = core1_0.Pipeline{}
	}

	if app.compositionPipeline.Initialized() {
		app.device.Driver.DestroyPipeline(app.compositionPipeline, nil)
		app.compositionPipeline = core1_0.Pipeline{}
	}

	if app.meshPipelineLayout.Initialized() {
		app.device.Driver.DestroyPipelineLayout(app.meshPipelineLayout, nil)
		app.meshPipelineLayout = core1_0.PipelineLayout{}
	}

	if app.compositionPipelineLayout.Initialized() {
		app.device.Driver.DestroyPipelineLayout(app.compositionPipelineLayout, nil)
		app.compositionPipelineLayout = core1_0.PipelineLayout{}
	}

	if app.renderPass.Initialized() {
		app.device.Driver.DestroyRenderPass(app.renderPass, nil)
		app.renderPass = core1_0.RenderPass{}
	}

	if app.colorImageView.Initialized() {
		app.device.Driver.DestroyImageView(app.colorImageView, nil)
		app.colorImageView = core1_0.ImageView{}
	}

	if app.colorImage.Initialized() {
		app.device.Driver.DestroyImage(app.colorImage, nil)
		app.colorImage = core1_0.Image{}
	}

	if app.colorImageMemory.Initialized() {
		app.device.Driver.FreeMemory(app.colorImageMemory, nil)
		app.colorImageMemory = core1_0.DeviceMemory{}
	}

	if app.depthImageView.Initialized() {
		app.device.Driver.DestroyImageView(app.depthImageView, nil)
		app.depthImageView = core1_0.ImageView{}
	}

	if app.depthImage.Initialized() {
		app.device.Driver.DestroyImage(app.depthImage, nil)
		app.depthImage = core1_0.Image{}
	}

	if app.depthImageMemory.Initialized() {
		app.device.Driver.FreeMemory(app.depthImageMemory, nil)
		app.depthImageMemory = core1_0.DeviceMemory{}
	}

	app.swapchain.Destroy(app.device)

	for i := 0; i < len(app.uniformBuffers); i++ {
		app.device.Driver.DestroyBuffer(app.uniformBuffers[i], nil)
	}
	app.uniformBuffers = app.uniformBuffers[:0]

	for i := 0; i < len(app.uniformBuffersMemory); i++ {
		app.device.Driver.FreeMemory(app.uniformBuffersMemory[i], nil)
	}
	app.uniformBuffersMemory = app.uniformBuffersMemory[:0]

	if app.descriptorPool.Initialized() {
		app.device.Driver.DestroyDescriptorPool(app.descriptorPool, nil)
		app.descriptorPool = core1_0.DescriptorPool{}
	}
}

func (app *subpassApp) cleanup() {
	if app.device != nil {
		app.cleanupSwapchain()

		if app.pipelineCache.Initialized() {
			app.device.Driver.DestroyPipelineCache(app.pipelineCache, nil)
		}

		if app.textureSampler.Initialized() {
			app.device.Driver.DestroySampler(app.textureSampler, nil)
		}

		if app.textureImageView.Initialized() {
			app.device.Driver.DestroyImageView(app.textureImageView, nil)
		}

		if app.textureImage.Initialized() {
			app.device.Driver.DestroyImage(app.textureImage, nil)
		}

		if app.textureImageMemory.Initialized() {
			app.device.Driver.FreeMemory(app.textureImageMemory, nil)
		}

		if app.texturePool.Initialized() {
			app.device.Driver.DestroyDescriptorPool(app.texturePool, nil)
		}

		if app.inputSetLayout.Initialized() {
			app.device.Driver.DestroyDescriptorSetLayout(app.inputSetLayout, nil)
		}

		if app.samplerSetLayout.Initialized() {
			app.device.Driver.DestroyDescriptorSetLayout(app.samplerSetLayout, nil)
		}

		if app.uniformSetLayout.Initialized() {
			app.device.Driver.DestroyDescriptorSetLayout(app.uniformSetLayout, nil)
		}

		if app.indexBuffer.Initialized() {
			app.device.Driver.DestroyBuffer(app.indexBuffer, nil)
		}

		if app.indexBufferMemory.Initialized() {
			app.device.Driver.FreeMemory(app.indexBufferMemory, nil)
		}

		if app.vertexBuffer.Initialized() {
			app.device.Driver.DestroyBuffer(app.vertexBuffer, nil)
		}

		if app.vertexBufferMemory.Initialized() {
			app.device.Driver.FreeMemory(app.vertexBufferMemory, nil)
		}

		for _, fence := range app.inFlightFence {
			app.device.Driver.DestroyFence(fence, nil)
		}

		for _, semaphore := range app.renderFinishedSemaphore {
			app.device.Driver.DestroySemaphore(semaphore, nil)
		}

		for _, semaphore := range app.imageAvailableSemaphore {
			app.device.Driver.DestroySemaphore(semaphore, nil)
		}

		if app.commandPool.Initialized() {
			app.device.Driver.DestroyCommandPool(app.commandPool, nil)
		}
	}

	app.device.Destroy()

	if app.surface.Initialized() {
		app.surfaceExtension.DestroySurface(app.surface, nil)
	}

	app.instance.Destroy()

	if app.window != nil {
		app.window.Destroy()
	}
	sdl.Quit()
}

func (app *subpassApp) mainLoop() error {
	rendering := true

appLoop:
	for {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch e := event.(type) {
			case *sdl.QuitEvent:
				break appLoop
			case *sdl.WindowEvent:
				switch e.Event {
				case sdl.WINDOWEVENT_MINIMIZED:
					rendering = false
				case sdl.WINDOWEVENT_RESTORED:
					rendering = true
				case sdl.WINDOWEVENT_RESIZED:
					w, h := app.window.GetSize()
					if w > 0 && h > 0 {
						rendering = true
						err := app.recreateSwapchain()
						if err != nil {
							return err
						}
					} else {
						rendering = false
					}
				}
			}
		}
		if rendering {
			err := app.drawFrame()
			if err != nil {
				return err
			}
		}
	}

	_, err := app.device.Driver.DeviceWaitIdle()
	if err != nil {
		return err
	}

	return app.savePipelineCache()
}

func main() {
	runtime.LockOSThread()

	cfg, err := vkinit.ParseConfig("08_subpasses", os.Args[1:])
	if err != nil {
		log.Fatalf("%+v", err)
	}

	app := &subpassApp{
		cfg:    cfg,
		logger: vkinit.NewLogger(cfg),
	}

	err = app.Run()
	if err != nil {
		log.Fatalf("%+v", err)
	}
}
