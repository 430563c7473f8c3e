package vkg

import (
	"time"

	"github.com/pkg/errors"
	"github.com/vulkan-go/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"

	cgin "github.com/Daniel-JSmith/cgin1"
)

var (
	ErrNoDevice         = errors.New("no device with a graphics and compute queue")
	ErrNoDescriptorPool = errors.New("descriptor pool not created")
	ErrNoSwapchain      = errors.New("context has no swapchain")
)

// Options configures a Context.
type Options struct {
	AppName string
	// Validation enables the Khronos validation layer when it is installed.
	Validation bool
	// PoolBlockSize is the size of each device memory block, DefaultBlockSize when zero.
	PoolBlockSize uint64
	// Resolution compute work is dispatched over, the swapchain extent when zero.
	Resolution vk.Extent2D
}

// Context owns a device and everything the render graph allocates from it. It
// implements cgin.Device. Every pass runs on a single queue family that supports
// both graphics and compute.
type Context struct {
	Instance       *Instance
	PhysicalDevice *PhysicalDevice
	Device         *Device

	Queue        *Queue
	PresentQueue *Queue

	CommandPool    *CommandPool
	Memory         *MemoryPool
	DescriptorPool *DescriptorPool
	PipelineCache  *PipelineCache

	Window    *glfw.Window
	Surface   vk.Surface
	Swapchain *Swapchain

	resolution   vk.Extent2D
	acquireFence *Fence
}

var _ cgin.Device = (*Context)(nil)

// InitializeForGLFW points Vulkan at the loader GLFW found. glfw.Init must be called first.
func InitializeForGLFW() error {
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	return errors.Wrap(vk.Init(), "init vulkan")
}

// NewComputeContext creates a headless context. Vulkan must be initialized, see
// InitializeForComputeOnly.
func NewComputeContext(opts *Options) (*Context, error) {
	if opts == nil {
		opts = &Options{}
	}
	c := &Context{resolution: opts.Resolution}
	if err := c.init(opts, nil); err != nil {
		c.Destroy()
		return nil, err
	}
	return c, nil
}

// NewWindowContext creates a context presenting to window. The window must have been
// created with the glfw.NoAPI client hint, see InitializeForGLFW.
func NewWindowContext(window *glfw.Window, opts *Options) (*Context, error) {
	if opts == nil {
		opts = &Options{}
	}
	c := &Context{Window: window, resolution: opts.Resolution}
	if err := c.init(opts, window.GetRequiredInstanceExtensions()); err != nil {
		c.Destroy()
		return nil, err
	}
	return c, nil
}

func (c *Context) init(opts *Options, instanceExtensions []string) error {
	app := &App{Name: opts.AppName, EngineName: "cgin"}
	for _, ext := range instanceExtensions {
		app.EnableExtension(ext)
	}
	if opts.Validation {
		if err := app.EnableDebugging(); err != nil {
			cgin.Logger().Warn("validation unavailable", "err", err)
			opts.Validation = false
		}
	}

	var err error
	c.Instance, err = app.CreateInstance()
	if err != nil {
		return err
	}
	if opts.Validation {
		if err := c.Instance.UseDefaultDebugCallback(); err != nil {
			cgin.Logger().Warn("debug callback unavailable", "err", err)
		}
	}

	if c.Window != nil {
		surface, err := c.Window.CreateWindowSurface(c.Instance.VKInstance, nil)
		if err != nil {
			return errors.Wrap(err, "create window surface")
		}
		c.Surface = vk.SurfaceFromPointer(surface)
	}

	work, present, err := c.selectDevice()
	if err != nil {
		return err
	}

	families := QueueFamilySlice{work}
	var deviceExtensions []string
	if present != nil {
		if present.Index != work.Index {
			families = append(families, present)
		}
		deviceExtensions = []string{"VK_KHR_swapchain"}
	}
	c.Device, err = c.PhysicalDevice.CreateLogicalDeviceWithOptions(families, &CreateDeviceOptions{
		EnabledExtensions: deviceExtensions,
	})
	if err != nil {
		return err
	}

	c.Queue = c.Device.GetQueue(work)
	c.PresentQueue = c.Queue
	if present != nil && present.Index != work.Index {
		c.PresentQueue = c.Device.GetQueue(present)
	}

	if c.CommandPool, err = c.Device.CreateCommandPool(work); err != nil {
		return err
	}
	c.Memory = c.Device.CreateMemoryPool(opts.PoolBlockSize)
	if c.PipelineCache, err = c.Device.CreatePipelineCache(); err != nil {
		return err
	}
	if c.acquireFence, err = c.Device.CreateFence(false); err != nil {
		return err
	}

	if c.Window != nil {
		return c.createSwapchain(nil)
	}
	return nil
}

// selectQueueFamilies picks a family for all pass work and, when presentSupport is not
// nil, a family able to present. Presenting from the work family is preferred.
func selectQueueFamilies(families QueueFamilySlice, presentSupport func(*QueueFamily) bool) (work, present *QueueFamily, ok bool) {
	candidates := families.FilterGraphicsAndCompute()
	if len(candidates) == 0 {
		return nil, nil, false
	}
	if presentSupport == nil {
		return candidates[0], nil, true
	}
	for _, q := range candidates {
		if presentSupport(q) {
			return q, q, true
		}
	}
	presenters := families.Filter(presentSupport)
	if len(presenters) == 0 {
		return nil, nil, false
	}
	return candidates[0], presenters[0], true
}

func (c *Context) selectDevice() (work, present *QueueFamily, err error) {
	devices, err := c.Instance.PhysicalDevices()
	if err != nil {
		return nil, nil, err
	}

	var presentSupport func(*QueueFamily) bool
	if c.Window != nil {
		presentSupport = func(q *QueueFamily) bool { return q.SupportsPresent(c.Surface) }
	}

	for _, pd := range devices {
		families, err := pd.QueueFamilies()
		if err != nil {
			return nil, nil, err
		}
		work, present, ok := selectQueueFamilies(families, presentSupport)
		if !ok {
			continue
		}
		c.PhysicalDevice = pd
		cgin.Logger().Info("device selected", "device", pd.DeviceName, "queueFamily", work.Index)
		return work, present, nil
	}
	return nil, nil, ErrNoDevice
}

func (c *Context) createSwapchain(old *Swapchain) error {
	width, height := c.Window.GetFramebufferSize()
	swapchain, err := c.Device.CreateSwapchain(c.Surface, c.Queue, c.PresentQueue, &CreateSwapchainOptions{
		OldSwapchain: old,
		ActualSize:   vk.Extent2D{Width: uint32(width), Height: uint32(height)},
	})
	if err != nil {
		return err
	}
	c.Swapchain = swapchain
	cgin.Logger().Info("swapchain created", "width", swapchain.Extent.Width, "height", swapchain.Extent.Height)
	return nil
}

// CreateDescriptorPool replaces the descriptor pool. Size it with cgin.DescriptorPoolSizes
// over every pass before the first pass is registered.
func (c *Context) CreateDescriptorPool(sizes []vk.DescriptorPoolSize, maxSets int) error {
	if c.DescriptorPool != nil {
		c.DescriptorPool.Destroy()
		c.DescriptorPool = nil
	}
	pool, err := c.Device.CreateDescriptorPool(sizes, maxSets)
	if err != nil {
		return err
	}
	c.DescriptorPool = pool
	return nil
}

// LoadShader loads a compiled SPIR-V file.
func (c *Context) LoadShader(path string) (*ShaderModule, error) {
	return c.Device.LoadShaderModuleFromFile(path)
}

// SwapchainImages returns the swapchain images, owned by the swapchain.
func (c *Context) SwapchainImages() ([]*Image, error) {
	if c.Swapchain == nil {
		return nil, ErrNoSwapchain
	}
	return c.Swapchain.Images()
}

// AcquireNextImage blocks until a swapchain image is available and returns its index.
func (c *Context) AcquireNextImage() (int, error) {
	if c.Swapchain == nil {
		return 0, ErrNoSwapchain
	}
	if err := c.Device.ResetFences(c.acquireFence); err != nil {
		return 0, err
	}
	index, err := c.Swapchain.AcquireNextImage(c.acquireFence)
	if err != nil {
		return 0, err
	}
	return index, c.Device.WaitForFences(true, cgin.WaitForever, c.acquireFence)
}

// Present waits for the given fences, typically those of the present pass for index,
// then queues the image for display.
func (c *Context) Present(index int, wait ...cgin.Fence) error {
	if c.Swapchain == nil {
		return ErrNoSwapchain
	}
	if err := c.WaitForFences(cgin.WaitForever, wait...); err != nil {
		return err
	}
	return c.Swapchain.Present(c.PresentQueue, index)
}

func (c *Context) WaitIdle() error {
	if c.Device == nil {
		return nil
	}
	return c.Device.WaitIdle()
}

// Destroy releases everything the context created. Resources and passes must be
// destroyed first.
func (c *Context) Destroy() {
	if c.Device != nil {
		c.Device.WaitIdle()
		if c.acquireFence != nil {
			c.acquireFence.Destroy()
		}
		if c.DescriptorPool != nil {
			c.DescriptorPool.Destroy()
		}
		if c.PipelineCache != nil {
			c.PipelineCache.Destroy()
		}
		if c.Memory != nil {
			c.Memory.Destroy()
		}
		if c.Swapchain != nil {
			c.Swapchain.Destroy()
		}
		if c.CommandPool != nil {
			c.CommandPool.Destroy()
		}
		c.Device.Destroy()
		c.Device = nil
	}
	if c.Instance != nil {
		if c.Surface != vk.NullSurface {
			vk.DestroySurface(c.Instance.VKInstance, c.Surface, nil)
		}
		c.Instance.Destroy()
		c.Instance = nil
	}
}

func (c *Context) CreateFence(signaled bool) (cgin.Fence, error) {
	f, err := c.Device.CreateFence(signaled)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func fences(fs []cgin.Fence) []*Fence {
	ret := make([]*Fence, 0, len(fs))
	for _, f := range fs {
		if f != nil {
			ret = append(ret, f.(*Fence))
		}
	}
	return ret
}

func (c *Context) WaitForFences(timeout time.Duration, fs ...cgin.Fence) error {
	return c.Device.WaitForFences(true, timeout, fences(fs)...)
}

func (c *Context) ResetFences(fs ...cgin.Fence) error {
	return c.Device.ResetFences(fences(fs)...)
}

func (c *Context) AllocateCommandBuffer() (cgin.CommandBuffer, error) {
	cmd, err := c.CommandPool.AllocateBuffer()
	if err != nil {
		return nil, err
	}
	return cmd, nil
}

func (c *Context) Submit(cmd cgin.CommandBuffer, fence cgin.Fence) error {
	if fence == nil {
		return c.Queue.submit(vk.NullFence, []*CommandBuffer{cmd.(*CommandBuffer)})
	}
	return c.Queue.SubmitWithFence(fence.(*Fence), cmd.(*CommandBuffer))
}

func (c *Context) ExecuteInstant(record func(cmd cgin.CommandBuffer)) error {
	cmd, err := c.CommandPool.AllocateBuffer()
	if err != nil {
		return err
	}
	defer c.CommandPool.FreeBuffer(cmd)

	if err := cmd.BeginOneTime(); err != nil {
		return err
	}
	record(cmd)
	if err := cmd.End(); err != nil {
		return err
	}
	return c.Queue.SubmitWaitIdle(cmd)
}

func (c *Context) CreateBuffer(size uint64, usage vk.BufferUsageFlags, properties vk.MemoryPropertyFlags) (cgin.DeviceBuffer, error) {
	b, err := c.Memory.CreateBuffer(size, usage, properties)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (c *Context) CreateImage(info cgin.ImageInfo) (cgin.DeviceImage, error) {
	img, err := c.Memory.CreateImage(info)
	if err != nil {
		return nil, err
	}
	return img, nil
}

func (c *Context) CreateDescriptorSetLayout(bindings []vk.DescriptorSetLayoutBinding) (cgin.DescriptorSetLayout, error) {
	l, err := c.Device.CreateDescriptorSetLayout(bindings)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (c *Context) AllocateDescriptorSet(layout cgin.DescriptorSetLayout) (cgin.DescriptorSet, error) {
	if c.DescriptorPool == nil {
		return nil, ErrNoDescriptorPool
	}
	set, err := c.DescriptorPool.Allocate(layout.(*DescriptorSetLayout))
	if err != nil {
		return nil, err
	}
	return set, nil
}

func (c *Context) UpdateDescriptorSet(set cgin.DescriptorSet, writes []cgin.DescriptorWrite) {
	set.(*DescriptorSet).Write(writes)
}

func (c *Context) CreatePipelineLayout(layout cgin.DescriptorSetLayout) (cgin.PipelineLayout, error) {
	l, err := c.Device.CreatePipelineLayout(layout.(*DescriptorSetLayout))
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (c *Context) CreateComputePipeline(layout cgin.PipelineLayout, shader cgin.ShaderModule, entryPoint string) (cgin.Pipeline, error) {
	p, err := c.PipelineCache.CreateComputePipeline(layout.(*PipelineLayout), shader.(*ShaderModule), entryPoint)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (c *Context) CreateGraphicsPipeline(desc *cgin.GraphicsPipelineDesc) (cgin.Pipeline, error) {
	p, err := c.PipelineCache.CreateGraphicsPipeline(GraphicsPipelineConfigFromDesc(desc))
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (c *Context) CreateRenderPass(desc *cgin.RenderPassDesc) (cgin.RenderPass, error) {
	rp, err := c.Device.CreateRenderPass(desc)
	if err != nil {
		return nil, err
	}
	return rp, nil
}

func (c *Context) CreateFramebuffer(renderPass cgin.RenderPass, attachments []cgin.DeviceImage, extent vk.Extent2D) (cgin.Framebuffer, error) {
	images := make([]*Image, len(attachments))
	for i, a := range attachments {
		images[i] = a.(*Image)
	}
	fb, err := renderPass.(*RenderPass).CreateFramebuffer(images, extent)
	if err != nil {
		return nil, err
	}
	return fb, nil
}

func (c *Context) RenderResolution() vk.Extent2D {
	if c.resolution.Width != 0 && c.resolution.Height != 0 {
		return c.resolution
	}
	if c.Swapchain != nil {
		return c.Swapchain.Extent
	}
	return vk.Extent2D{Width: 1, Height: 1}
}
