package cgin

import (
	units "github.com/docker/go-units"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

var imageOperationUsage = map[Operation]vk.ImageUsageFlags{
	ColorAttachmentOutput:  vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
	ColorSampler:           vk.ImageUsageFlags(vk.ImageUsageSampledBit),
	DepthSampler:           vk.ImageUsageFlags(vk.ImageUsageSampledBit),
	TransferSource:         vk.ImageUsageFlags(vk.ImageUsageTransferSrcBit),
	TransferDestination:    vk.ImageUsageFlags(vk.ImageUsageTransferDstBit),
	PrepareForPresentation: vk.ImageUsageFlags(vk.ImageUsageTransferSrcBit),
	Present:                vk.ImageUsageFlags(vk.ImageUsageTransferSrcBit),
	ShaderStorageImage:     vk.ImageUsageFlags(vk.ImageUsageStorageBit),
	DepthBuffer:            vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
	ClearOutsideRenderPass: vk.ImageUsageFlags(vk.ImageUsageTransferDstBit),
}

// ImageUsage returns the usage flags and view aspect an image used for operations is
// created with. It panics on an operation images do not support.
func ImageUsage(operations []Operation) (vk.ImageUsageFlags, vk.ImageAspectFlags) {
	var usage vk.ImageUsageFlags
	var aspect vk.ImageAspectFlags
	for _, op := range operations {
		usage |= lookup(imageOperationUsage, op, "image usage")
		aspect |= Access{Operation: op}.AspectMask()
	}
	return usage, aspect
}

// ImageConfig holds what an image is built from.
type ImageConfig struct {
	Extent vk.Extent2D
	Format vk.Format
	// Pixels, tightly packed in Format, are uploaded when the image is initialized.
	Pixels []byte
}

// Image is a 2D image with a view and a sampler.
type Image struct {
	resourceBase
	extent  vk.Extent2D
	format  vk.Format
	pixels  []byte
	foreign bool
	handle  DeviceImage
}

// NewImage configures an image the render graph owns, memory is allocated by Initialize.
func NewImage(cfg ImageConfig) *Image {
	img := &Image{
		resourceBase: newResourceBase(PreferDevice),
		extent:       cfg.Extent,
		format:       cfg.Format,
		pixels:       cfg.Pixels,
	}
	if cfg.Pixels != nil {
		img.operations[TransferDestination] = struct{}{}
	}
	return img
}

// NewForeignImage wraps an image owned elsewhere, such as a swapchain image.
// Destroy releases the handle but the image itself belongs to its owner.
func NewForeignImage(handle DeviceImage, format vk.Format, extent vk.Extent2D) *Image {
	return &Image{
		resourceBase: newResourceBase(PreferDevice),
		extent:       extent,
		format:       format,
		foreign:      true,
		handle:       handle,
	}
}

func (i *Image) Extent() vk.Extent2D {
	return i.extent
}

func (i *Image) Format() vk.Format {
	return i.format
}

// Foreign reports whether the image is owned outside the render graph.
func (i *Image) Foreign() bool {
	return i.foreign
}

// Handle returns the device image, nil before Initialize for owned images.
func (i *Image) Handle() DeviceImage {
	return i.handle
}

func (i *Image) Initialize(dev Device) error {
	if err := i.begin(dev); err != nil {
		return err
	}
	if i.foreign {
		return nil
	}

	usage, aspect := ImageUsage(i.Operations())
	if usage == 0 {
		return ErrUnusedResource
	}

	handle, err := dev.CreateImage(ImageInfo{
		Extent:     i.extent,
		Format:     i.format,
		Usage:      usage,
		Aspect:     aspect,
		Properties: memoryProperties[i.property],
	})
	if err != nil {
		return errors.Wrap(err, "create image")
	}
	i.handle = handle

	Logger().Debug("image initialized",
		"width", i.extent.Width,
		"height", i.extent.Height,
		"operations", i.Operations())

	if i.pixels == nil {
		return nil
	}
	pixels := i.pixels
	i.pixels = nil
	return i.upload(pixels)
}

func (i *Image) upload(pixels []byte) error {
	staging, err := i.dev.CreateBuffer(uint64(len(pixels)),
		BufferUsage(PreferHost, []Operation{TransferSource}),
		memoryProperties[PreferHost])
	if err != nil {
		return errors.Wrap(err, "create staging buffer")
	}
	defer staging.Destroy()

	if err := staging.Write(pixels); err != nil {
		return errors.Wrap(err, "write staging buffer")
	}

	Logger().Debug("uploading image", "size", units.BytesSize(float64(len(pixels))))

	dst := Access{Operation: TransferDestination, Stage: StageTransfer}
	err = i.dev.ExecuteInstant(func(cmd CommandBuffer) {
		i.PrepareForInitialAccess(cmd, dst)
		cmd.CopyBufferToImage(staging, i.handle, dst.Layout(), i.extent)
	})
	return errors.Wrap(err, "copy pixels to image")
}

func (i *Image) DescriptorWrite(binding int, access Access) DescriptorWrite {
	return DescriptorWrite{
		Binding: binding,
		Type:    access.DescriptorType(),
		Image:   i.handle,
		Layout:  access.Layout(),
	}
}

func (i *Image) PrepareForInitialAccess(cmd CommandBuffer, access Access) {
	i.InsertBarrier(cmd, InitialAccess, access)
}

func (i *Image) InsertBarrier(cmd CommandBuffer, prev, curr Access) {
	b := i.barrier(prev, curr)
	b.OldLayout = prev.Layout()
	b.NewLayout = curr.Layout()
	b.Aspect = curr.AspectMask()
	cmd.ImageBarrier(i.handle, b)
}

// AttachmentDescription describes the image as a render pass attachment written by
// access. Without blending the previous contents are cleared.
func (i *Image) AttachmentDescription(access Access, blend bool) vk.AttachmentDescription {
	desc := vk.AttachmentDescription{
		Format:         i.format,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    access.Layout(),
	}
	if blend {
		desc.LoadOp = vk.AttachmentLoadOpLoad
		desc.InitialLayout = access.Layout()
	}
	return desc
}

func (i *Image) Destroy() {
	if i.handle != nil {
		i.handle.Destroy()
		i.handle = nil
	}
}
