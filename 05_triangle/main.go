package main

import (
	"embed"
	"os"
	"runtime"

	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/v3"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/vkwalk/vkwalk/vkinit"
	"github.com/vkwalk/vkwalk/vkselect"
)

//go:embed shaders
var fileSystem embed.FS

const maxFramesInFlight = 2

// Stage 5: the first triangle. The vertex positions live in the vertex
// shader, so the pipeline binds no vertex input at all.

type triangleApp struct {
	cfg    vkinit.Config
	logger *log.Logger

	window *sdl.Window

	instance         *vkinit.Instance
	surfaceExtension khr_surface.ExtensionDriver
	surface          khr_surface.Surface

	selection vkselect.Selection
	device    *vkinit.Device

	swapchain *vkinit.Swapchain

	renderPass       core1_0.RenderPass
	pipelineLayout   core1_0.PipelineLayout
	graphicsPipeline core1_0.Pipeline

	framebuffers   []core1_0.Framebuffer
	commandPool    core1_0.CommandPool
	commandBuffers []core1_0.CommandBuffer

	imageAvailableSemaphore []core1_0.Semaphore
	renderFinishedSemaphore []core1_0.Semaphore
	inFlightFence           []core1_0.Fence
	imagesInFlight          []core1_0.Fence
	currentFrame            int
}

func (app *triangleApp) Run() error {
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

func (app *triangleApp) initWindow() error {
	window, err := vkinit.NewWindow("Triangle", 800, 600, true)
	if err != nil {
		return err
	}
	app.window = window
	return nil
}

func (app *triangleApp) initVulkan() error {
	globalDriver, err := core.CreateDriverFromProcAddr(sdl.VulkanGetVkGetInstanceProcAddr())
	if err != nil {
		return err
	}

	app.instance, err = vkinit.NewInstance(globalDriver, vkinit.InstanceOptions{
		AppName:    "05_triangle",
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
		Classes:       vkselect.ClassDiscrete | vkselect.ClassIntegrated,
		QueueOps:      core1_0.QueueGraphics,
		NeedPresent:   true,
		NeedSwapchain: true,
	})
	if err != nil {
		return err
	}

	app.device, err = vkinit.NewDevice(app.instance.Driver, app.selection, []string{khr_swapchain.ExtensionName}, nil)
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

	err = app.createGraphicsPipeline()
	if err != nil {
		return err
	}

	err = app.createFramebuffers()
	if err != nil {
		return err
	}

	err = app.createCommandPool()
	if err != nil {
		return err
	}

	err = app.createCommandBuffers()
	if err != nil {
		return err
	}

	return app.createSyncObjects()
}

func (app *triangleApp) createSwapchain() error {
	w, h := app.window.VulkanGetDrawableSize()
	swapchain, err := vkinit.CreateSwapchain(app.device, app.surfaceExtension, app.surface, app.selection.Queues, int(w), int(h))
	if err != nil {
		return err
	}
	app.swapchain = swapchain
	return nil
}

func (app *triangleApp) createRenderPass() error {
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
		},
		Subpasses: []core1_0.SubpassDescription{
			{
				PipelineBindPoint: core1_0.PipelineBindPointGraphics,
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

				SrcStageMask:  core1_0.PipelineStageColorAttachmentOutput,
				SrcAccessMask: 0,

				DstStageMask:  core1_0.PipelineStageColorAttachmentOutput,
				DstAccessMask: core1_0.AccessColorAttachmentWrite,
			},
		},
	})
	if err != nil {
		return err
	}
	app.renderPass = renderPass

	return nil
}

func (app *triangleApp) createGraphicsPipeline() error {
	vertShaderBytes, err := fileSystem.ReadFile("shaders/vert.spv")
	if err != nil {
		return err
	}

	vertShader, err := app.device.CreateShaderModule(vertShaderBytes)
	if err != nil {
		return err
	}
	defer app.device.Driver.DestroyShaderModule(vertShader, nil)

	fragShaderBytes, err := fileSystem.ReadFile("shaders/frag.spv")
	if err != nil {
		return err
	}

	fragShader, err := app.device.CreateShaderModule(fragShaderBytes)
	if err != nil {
		return err
	}
	defer app.device.Driver.DestroyShaderModule(fragShader, nil)

	vertexInput := &core1_0.PipelineVertexInputStateCreateInfo{}

	inputAssembly := &core1_0.PipelineInputAssemblyStateCreateInfo{
		Topology:               core1_0.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: false,
	}

	vertStage := core1_0.PipelineShaderStageCreateInfo{
		Stage:  core1_0.StageVertex,
		Module: vertShader,
		Name:   "main",
	}

	fragStage := core1_0.PipelineShaderStageCreateInfo{
		Stage:  core1_0.StageFragment,
		Module: fragShader,
		Name:   "main",
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

	rasterization := &core1_0.PipelineRasterizationStateCreateInfo{
		DepthClampEnable:        false,
		RasterizerDiscardEnable: false,

		PolygonMode: core1_0.PolygonModeFill,
		CullMode:    core1_0.CullModeBack,
		FrontFace:   core1_0.FrontFaceClockwise,

		DepthBiasEnable: false,

		LineWidth: 1.0,
	}

	multisample := &core1_0.PipelineMultisampleStateCreateInfo{
		SampleShadingEnable:  false,
		RasterizationSamples: core1_0.Samples1,
		MinSampleShading:     1.0,
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

	app.pipelineLayout, _, err = app.device.Driver.CreatePipelineLayout(nil, core1_0.PipelineLayoutCreateInfo{})
	if err != nil {
		return err
	}

	pipelines, _, err := app.device.Driver.CreateGraphicsPipelines(nil, nil,
		core1_0.GraphicsPipelineCreateInfo{
			Stages: []core1_0.PipelineShaderStageCreateInfo{
				vertStage,
				fragStage,
			},
			VertexInputState:   vertexInput,
			InputAssemblyState: inputAssembly,
			ViewportState:      viewport,
			RasterizationState: rasterization,
			MultisampleState:   multisample,
			ColorBlendState:    colorBlend,
			Layout:             app.pipelineLayout,
			RenderPass:         app.renderPass,
			Subpass:            0,
			BasePipelineIndex:  -1,
		},
	)
	if err != nil {
		return err
	}
	app.graphicsPipeline = pipelines[0]

	return nil
}

func (app *triangleApp) createFramebuffers() error {
	for _, imageView := range app.swapchain.Views {
		framebuffer, _, err := app.device.Driver.CreateFramebuffer(nil, core1_0.FramebufferCreateInfo{
			RenderPass: app.renderPass,
			Layers:     1,
			Attachments: []core1_0.ImageView{
				imageView,
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

func (app *triangleApp) createCommandPool() error {
	pool, _, err := app.device.Driver.CreateCommandPool(nil, core1_0.CommandPoolCreateInfo{
		QueueFamilyIndex: app.selection.Queues.Graphics,
	})
	if err != nil {
		return err
	}
	app.commandPool = pool

	return nil
}

func (app *triangleApp) createCommandBuffers() error {
	buffers, _, err := app.device.Driver.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        app.commandPool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: len(app.swapchain.Images),
	})
	if err != nil {
		return err
	}
	app.commandBuffers = buffers

	for bufferIdx, buffer := range buffers {
		_, err = app.device.Driver.BeginCommandBuffer(buffer, core1_0.CommandBufferBeginInfo{})
		if err != nil {
			return err
		}

		err = app.device.Driver.CmdBeginRenderPass(buffer, core1_0.SubpassContentsInline,
			core1_0.RenderPassBeginInfo{
				RenderPass:  app.renderPass,
				Framebuffer: app.framebuffers[bufferIdx],
				RenderArea: core1_0.Rect2D{
					Offset: core1_0.Offset2D{X: 0, Y: 0},
					Extent: app.swapchain.Extent,
				},
				ClearValues: []core1_0.ClearValue{
					core1_0.ClearValueFloat{0, 0, 0, 1},
				},
			})
		if err != nil {
			return err
		}

		app.device.Driver.CmdBindPipeline(buffer, core1_0.PipelineBindPointGraphics, app.graphicsPipeline)
		app.device.Driver.CmdDraw(buffer, 3, 1, 0, 0)
		app.device.Driver.CmdEndRenderPass(buffer)

		_, err = app.device.Driver.EndCommandBuffer(buffer)
		if err != nil {
			return err
		}
	}

	return nil
}

func (app *triangleApp) createSyncObjects() error {
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

func (app *triangleApp) drawFrame() error {
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

func (app *triangleApp) recreateSwapchain() error {
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

	err = app.createGraphicsPipeline()
	if err != nil {
		return err
	}

	err = app.createFramebuffers()
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

func (app *triangleApp) cleanupSwapchain() {
	for _, framebuffer := range app.framebuffers {
		app.device.Driver.DestroyFramebuffer(framebuffer, nil)
	}
	app.framebuffers = []core1_0.Framebuffer{}

	if len(app.commandBuffers) > 0 {
		app.device.Driver.FreeCommandBuffers(app.commandBuffers...)
		app.commandBuffers = []core1_0.CommandBuffer{}
	}

	if app.graphicsPipeline.Initialized() {
		app.device.Driver.DestroyPipeline(app.graphicsPipeline, nil)
		app.graphicsPipeline = core1_0.Pipeline{}
	}

	if app.pipelineLayout.Initialized() {
		app.device.Driver.DestroyPipelineLayout(app.pipelineLayout, nil)
		app.pipelineLayout = core1_0.PipelineLayout{}
	}

	if app.renderPass.Initialized() {
		app.device.Driver.DestroyRenderPass(app.renderPass, nil)
		app.renderPass = core1_0.RenderPass{}
	}

	app.swapchain.Destroy(app.device)
}

func (app *triangleApp) cleanup() {
	if app.device != nil {
		app.cleanupSwapchain()

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

func (app *triangleApp) mainLoop() error {
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
	return err
}

func main() {
	runtime.LockOSThread()

	cfg, err := vkinit.ParseConfig("05_triangle", os.Args[1:])
	if err != nil {
		log.Fatalf("%+v", err)
	}

	app := &triangleApp{
		cfg:    cfg,
		logger: vkinit.NewLogger(cfg),
	}

	err = app.Run()
	if err != nil {
		log.Fatalf("%+v", err)
	}
}
