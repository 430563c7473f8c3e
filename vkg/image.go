package vkg

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	cgin "github.com/Daniel-JSmith/cgin1"
)

// Image is a 2D image with a view and a sampler. It implements cgin.DeviceImage.
type Image struct {
	Device   *Device
	VKImage  vk.Image
	VKFormat vk.Format
	Extent   vk.Extent2D
	Aspect   vk.ImageAspectFlags

	View      *ImageView
	VKSampler vk.Sampler

	// owned images are destroyed along with their memory, wrapped ones only lose the view and sampler
	owned  bool
	memory *Suballocation
	pool   *MemoryPool
}

var _ cgin.DeviceImage = (*Image)(nil)

// CreateImageWithOptions creates an image with no memory bound to it.
func (d *Device) CreateImageWithOptions(extent vk.Extent2D, format vk.Format, tiling vk.ImageTiling, usage vk.ImageUsageFlags) (*Image, error) {
	imageInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Extent: vk.Extent3D{
			Width:  extent.Width,
			Height: extent.Height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Format:        format,
		Tiling:        tiling,
		InitialLayout: vk.ImageLayoutUndefined,
		Usage:         usage,
		Samples:       vk.SampleCount1Bit,
		SharingMode:   vk.SharingModeExclusive,
	}

	var image vk.Image
	err := vk.Error(vk.CreateImage(d.VKDevice, &imageInfo, nil, &image))
	if err != nil {
		return nil, errors.Wrap(err, "create image")
	}
	return &Image{Device: d, VKImage: image, VKFormat: format, Extent: extent, owned: true}, nil
}

// CreateImage creates an image bound to pooled memory, along with its view and sampler.
func (m *MemoryPool) CreateImage(info cgin.ImageInfo) (*Image, error) {
	img, err := m.Device.CreateImageWithOptions(info.Extent, info.Format, vk.ImageTilingOptimal, info.Usage)
	if err != nil {
		return nil, err
	}
	img.Aspect = info.Aspect

	mem, err := m.Allocate(img.VKMemoryRequirements(), info.Properties, vk.ImageTilingOptimal)
	if err != nil {
		img.Destroy()
		return nil, errors.Wrap(err, "allocate image memory")
	}
	img.memory, img.pool = mem, m

	err = vk.Error(vk.BindImageMemory(m.Device.VKDevice, img.VKImage, mem.Memory().VKDeviceMemory, vk.DeviceSize(mem.Offset)))
	if err != nil {
		img.Destroy()
		return nil, errors.Wrap(err, "bind image memory")
	}

	if err := img.createViewAndSampler(); err != nil {
		img.Destroy()
		return nil, err
	}
	return img, nil
}

// WrapImage adopts an image owned elsewhere, such as a swapchain image. Destroy
// releases only the view and sampler created here.
func (d *Device) WrapImage(image vk.Image, format vk.Format, extent vk.Extent2D) (*Image, error) {
	img := &Image{
		Device:   d,
		VKImage:  image,
		VKFormat: format,
		Extent:   extent,
		Aspect:   vk.ImageAspectFlags(vk.ImageAspectColorBit),
	}
	if err := img.createViewAndSampler(); err != nil {
		img.Destroy()
		return nil, err
	}
	return img, nil
}

func (i *Image) VKMemoryRequirements() vk.MemoryRequirements {
	var memRequirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(i.Device.VKDevice, i.VKImage, &memRequirements)
	return memRequirements
}

func (i *Image) createViewAndSampler() error {
	var err error
	i.View, err = i.CreateImageViewWithAspectMask(i.Aspect)
	if err != nil {
		return err
	}

	samplerInfo := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterNearest,
		MinFilter:               vk.FilterNearest,
		MipmapMode:              vk.SamplerMipmapModeNearest,
		AddressModeU:            vk.SamplerAddressModeRepeat,
		AddressModeV:            vk.SamplerAddressModeRepeat,
		AddressModeW:            vk.SamplerAddressModeRepeat,
		AnisotropyEnable:        vk.False,
		MaxAnisotropy:           1,
		CompareEnable:           vk.False,
		BorderColor:             vk.BorderColorFloatOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
	}
	err = vk.Error(vk.CreateSampler(i.Device.VKDevice, &samplerInfo, nil, &i.VKSampler))
	return errors.Wrap(err, "create sampler")
}

func (i *Image) subresourceRange(aspect vk.ImageAspectFlags) vk.ImageSubresourceRange {
	return vk.ImageSubresourceRange{
		AspectMask: aspect,
		LevelCount: 1,
		LayerCount: 1,
	}
}

func (i *Image) subresourceLayers() vk.ImageSubresourceLayers {
	return vk.ImageSubresourceLayers{
		AspectMask: i.Aspect,
		LayerCount: 1,
	}
}

// DSInfo describes the image for a descriptor write in the given layout.
func (i *Image) DSInfo(layout vk.ImageLayout) vk.DescriptorImageInfo {
	return vk.DescriptorImageInfo{
		Sampler:     i.VKSampler,
		ImageView:   i.View.VKImageView,
		ImageLayout: layout,
	}
}

func (i *Image) Destroy() {
	var noSampler vk.Sampler
	if i.VKSampler != noSampler {
		vk.DestroySampler(i.Device.VKDevice, i.VKSampler, nil)
		i.VKSampler = noSampler
	}
	if i.View != nil {
		i.View.Destroy()
		i.View = nil
	}
	if !i.owned {
		return
	}
	vk.DestroyImage(i.Device.VKDevice, i.VKImage, nil)
	if i.pool != nil {
		i.pool.Free(i.memory)
		i.memory, i.pool = nil, nil
	}
}

type ImageView struct {
	Device      *Device
	VKImageView vk.ImageView
}

func (i *ImageView) Destroy() {
	vk.DestroyImageView(i.Device.VKDevice, i.VKImageView, nil)
}

func (i *Image) CreateImageViewWithAspectMask(mask vk.ImageAspectFlags) (*ImageView, error) {
	createInfo := &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    i.VKImage,
		ViewType: vk.ImageViewType2d,
		Format:   i.VKFormat,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleR,
			G: vk.ComponentSwizzleG,
			B: vk.ComponentSwizzleB,
			A: vk.ComponentSwizzleA,
		},
		SubresourceRange: i.subresourceRange(mask),
	}

	var view vk.ImageView
	err := vk.Error(vk.CreateImageView(i.Device.VKDevice, createInfo, nil, &view))
	if err != nil {
		return nil, errors.Wrap(err, "create image view")
	}
	return &ImageView{Device: i.Device, VKImageView: view}, nil
}
