package vkg

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// ErrOutOfDate is returned when the swapchain no longer matches its surface.
var ErrOutOfDate = errors.New("swapchain out of date")

type Swapchain struct {
	Extent      vk.Extent2D
	Format      vk.Format
	Device      *Device
	VKSwapchain vk.Swapchain

	images []*Image
}

func (s *Swapchain) Destroy() {
	for _, img := range s.images {
		img.Destroy()
	}
	s.images = nil
	vk.DestroySwapchain(s.Device.VKDevice, s.VKSwapchain, nil)
}

// Images returns the swapchain images wrapped with views. They are owned by the swapchain.
func (s *Swapchain) Images() ([]*Image, error) {
	if s.images != nil {
		return s.images, nil
	}

	var imageCount uint32
	err := vk.Error(vk.GetSwapchainImages(s.Device.VKDevice, s.VKSwapchain, &imageCount, nil))
	if err != nil {
		return nil, errors.Wrap(err, "get swapchain images")
	}

	swapchainImages := make([]vk.Image, imageCount)
	err = vk.Error(vk.GetSwapchainImages(s.Device.VKDevice, s.VKSwapchain, &imageCount, swapchainImages))
	if err != nil {
		return nil, errors.Wrap(err, "get swapchain images")
	}

	ret := make([]*Image, 0, imageCount)
	for _, image := range swapchainImages {
		img, err := s.Device.WrapImage(image, s.Format, s.Extent)
		if err != nil {
			for _, r := range ret {
				r.Destroy()
			}
			return nil, err
		}
		ret = append(ret, img)
	}
	s.images = ret
	return ret, nil
}

// AcquireNextImage returns the index of the next presentable image, fence is
// signaled once the image can be written.
func (s *Swapchain) AcquireNextImage(fence *Fence) (int, error) {
	var imageIndex uint32
	res := vk.AcquireNextImage(s.Device.VKDevice, s.VKSwapchain, vk.MaxUint64, vk.NullSemaphore, fence.VKFence, &imageIndex)
	if res == vk.ErrorOutOfDate {
		return 0, ErrOutOfDate
	}
	if res == vk.Suboptimal {
		return int(imageIndex), nil
	}
	if err := vk.Error(res); err != nil {
		return 0, errors.Wrap(err, "acquire next image")
	}
	return int(imageIndex), nil
}

// Present queues image index for display on queue.
func (s *Swapchain) Present(queue *Queue, index int) error {
	presentInfo := vk.PresentInfo{
		SType:          vk.StructureTypePresentInfo,
		SwapchainCount: 1,
		PSwapchains:    []vk.Swapchain{s.VKSwapchain},
		PImageIndices:  []uint32{uint32(index)},
	}

	res := vk.QueuePresent(queue.VKQueue, &presentInfo)
	if res == vk.ErrorOutOfDate || res == vk.Suboptimal {
		return ErrOutOfDate
	}
	return errors.Wrap(vk.Error(res), "queue present")
}

type CreateSwapchainOptions struct {
	OldSwapchain              *Swapchain
	ActualSize                vk.Extent2D
	DesiredNumSwapchainImages int
}

func (p *Device) DefaultNumSwapchainImages(surface vk.Surface) (int, error) {
	caps, err := p.PhysicalDevice.GetSurfaceCapabilities(surface)
	if err != nil {
		return 0, err
	}
	return int(caps.MinImageCount) + 1, nil
}

// CreateSwapchain creates a swapchain whose images can be presented and blitted into.
func (p *Device) CreateSwapchain(surface vk.Surface, graphicsQueue, presentQueue *Queue, options *CreateSwapchainOptions) (*Swapchain, error) {
	if options == nil {
		options = &CreateSwapchainOptions{}
	}

	modes, err := p.PhysicalDevice.GetSurfacePresentModes(surface)
	if err != nil {
		return nil, err
	}

	presentMode := vk.PresentModeFifo
	m := modes.Filter(vk.PresentModeMailbox)
	if len(m) > 0 {
		presentMode = m[0]
	}

	formats, err := p.PhysicalDevice.GetSurfaceFormats(surface)
	if err != nil {
		return nil, err
	}
	if len(formats) == 0 {
		return nil, errors.New("surface reports no formats")
	}

	format := formats[0]
	format.Deref()
	formats.Filter(func(f vk.SurfaceFormat) bool {
		f.Deref()
		if f.Format == vk.FormatB8g8r8a8Unorm {
			format = f
			return true
		}
		return false
	})

	caps, err := p.PhysicalDevice.GetSurfaceCapabilities(surface)
	if err != nil {
		return nil, err
	}

	var swapchainSize vk.Extent2D
	caps.CurrentExtent.Deref()
	if caps.CurrentExtent.Width == vk.MaxUint32 {
		swapchainSize = options.ActualSize
		if swapchainSize.Width == 0 {
			caps.MinImageExtent.Deref()
			swapchainSize = caps.MinImageExtent
		}
	} else {
		swapchainSize = caps.CurrentExtent
	}

	desiredSwapChainImages := options.DesiredNumSwapchainImages
	if desiredSwapChainImages == 0 {
		desiredSwapChainImages = int(caps.MinImageCount) + 1
	}
	if caps.MaxImageCount > 0 && desiredSwapChainImages > int(caps.MaxImageCount) {
		desiredSwapChainImages = int(caps.MaxImageCount)
	}

	createInfo := &vk.SwapchainCreateInfo{
		SType:           vk.StructureTypeSwapchainCreateInfo,
		Surface:         surface,
		MinImageCount:   uint32(desiredSwapChainImages),
		ImageFormat:     format.Format,
		ImageColorSpace: format.ColorSpace,
		ImageExtent:     swapchainSize,
		PresentMode:     presentMode,
		// present passes blit into swapchain images
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit | vk.ImageUsageTransferDstBit),
		ImageArrayLayers: 1,
		Clipped:          vk.True,
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		OldSwapchain:     vk.NullSwapchain,
	}
	if options.OldSwapchain != nil {
		createInfo.OldSwapchain = options.OldSwapchain.VKSwapchain
	}

	if graphicsQueue.QueueFamily.Index != presentQueue.QueueFamily.Index {
		createInfo.QueueFamilyIndexCount = 2
		createInfo.PQueueFamilyIndices = []uint32{uint32(graphicsQueue.QueueFamily.Index), uint32(presentQueue.QueueFamily.Index)}
		createInfo.ImageSharingMode = vk.SharingModeConcurrent
	} else {
		createInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	var swapchain vk.Swapchain
	err = vk.Error(vk.CreateSwapchain(p.VKDevice, createInfo, nil, &swapchain))
	if err != nil {
		return nil, errors.Wrap(err, "create swapchain")
	}

	return &Swapchain{
		VKSwapchain: swapchain,
		Device:      p,
		Extent:      swapchainSize,
		Format:      format.Format,
	}, nil
}
