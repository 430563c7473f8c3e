package cgin

import (
	"time"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// fakeDevice is an in-memory Device. Buffers are byte slices, commands are recorded
// and only buffer copies are carried out.
type fakeDevice struct {
	resolution vk.Extent2D
	// waitErr is returned by every fence wait when set.
	waitErr error

	events      []string
	fences      []*fakeFence
	cmds        []*fakeCmd
	submits     []*fakeCmd
	instants    []*fakeCmd
	buffers     []*fakeBuffer
	images      []*fakeImage
	setLayouts  []*fakeSetLayout
	sets        []*fakeSet
	renderPass  []*RenderPassDesc
	framebuffer [][]DeviceImage
	graphics    []*GraphicsPipelineDesc
	compute     int
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{resolution: vk.Extent2D{Width: 640, Height: 480}}
}

type fakeHandle struct{ destroyed bool }

func (h *fakeHandle) Destroy() { h.destroyed = true }

type fakeFence struct {
	fakeHandle
	signaled bool
}

type fakeSetLayout struct {
	fakeHandle
	bindings []vk.DescriptorSetLayoutBinding
}

type fakeSet struct {
	layout *fakeSetLayout
	writes []DescriptorWrite
}

type fakeBuffer struct {
	fakeHandle
	usage vk.BufferUsageFlags
	props vk.MemoryPropertyFlags
	mem   []byte
}

func (b *fakeBuffer) Size() uint64 { return uint64(len(b.mem)) }

func (b *fakeBuffer) hostVisible() bool {
	return b.props&vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit) != 0
}

func (b *fakeBuffer) Write(data []byte) error {
	if !b.hostVisible() {
		return errors.New("buffer not mapped")
	}
	copy(b.mem, data)
	return nil
}

func (b *fakeBuffer) Read(p []byte) error {
	if !b.hostVisible() {
		return errors.New("buffer not mapped")
	}
	copy(p, b.mem)
	return nil
}

type fakeImage struct {
	fakeHandle
	info ImageInfo
}

// command is one recorded command. Only the fields meaningful for op are set.
type command struct {
	op       string
	barrier  Barrier
	image    DeviceImage
	buffer   DeviceBuffer
	layout   vk.ImageLayout
	clears   []ClearValue
	count    int
	x, y, z  int
	pipeline Pipeline
}

type fakeCmd struct {
	fakeHandle
	recording bool
	ended     bool
	commands  []command
}

func (d *fakeDevice) CreateFence(signaled bool) (Fence, error) {
	f := &fakeFence{signaled: signaled}
	d.fences = append(d.fences, f)
	return f, nil
}

func (d *fakeDevice) WaitForFences(timeout time.Duration, fences ...Fence) error {
	d.events = append(d.events, "wait")
	if d.waitErr != nil {
		return d.waitErr
	}
	for _, f := range fences {
		if !f.(*fakeFence).signaled {
			return errors.New("fence never signaled")
		}
	}
	return nil
}

func (d *fakeDevice) ResetFences(fences ...Fence) error {
	d.events = append(d.events, "reset")
	for _, f := range fences {
		f.(*fakeFence).signaled = false
	}
	return nil
}

func (d *fakeDevice) AllocateCommandBuffer() (CommandBuffer, error) {
	c := &fakeCmd{}
	d.cmds = append(d.cmds, c)
	return c, nil
}

// Submit completes the work immediately.
func (d *fakeDevice) Submit(cmd CommandBuffer, fence Fence) error {
	d.events = append(d.events, "submit")
	d.submits = append(d.submits, cmd.(*fakeCmd))
	fence.(*fakeFence).signaled = true
	return nil
}

func (d *fakeDevice) ExecuteInstant(record func(cmd CommandBuffer)) error {
	c := &fakeCmd{recording: true}
	record(c)
	c.recording = false
	d.instants = append(d.instants, c)
	return nil
}

func (d *fakeDevice) CreateBuffer(size uint64, usage vk.BufferUsageFlags, properties vk.MemoryPropertyFlags) (DeviceBuffer, error) {
	b := &fakeBuffer{usage: usage, props: properties, mem: make([]byte, size)}
	d.buffers = append(d.buffers, b)
	return b, nil
}

func (d *fakeDevice) CreateImage(info ImageInfo) (DeviceImage, error) {
	img := &fakeImage{info: info}
	d.images = append(d.images, img)
	return img, nil
}

func (d *fakeDevice) CreateDescriptorSetLayout(bindings []vk.DescriptorSetLayoutBinding) (DescriptorSetLayout, error) {
	l := &fakeSetLayout{bindings: bindings}
	d.setLayouts = append(d.setLayouts, l)
	return l, nil
}

func (d *fakeDevice) AllocateDescriptorSet(layout DescriptorSetLayout) (DescriptorSet, error) {
	s := &fakeSet{layout: layout.(*fakeSetLayout)}
	d.sets = append(d.sets, s)
	return s, nil
}

func (d *fakeDevice) UpdateDescriptorSet(set DescriptorSet, writes []DescriptorWrite) {
	s := set.(*fakeSet)
	s.writes = append(s.writes, writes...)
}

func (d *fakeDevice) CreatePipelineLayout(layout DescriptorSetLayout) (PipelineLayout, error) {
	return &fakeHandle{}, nil
}

func (d *fakeDevice) CreateComputePipeline(layout PipelineLayout, shader ShaderModule, entryPoint string) (Pipeline, error) {
	d.compute++
	return &fakeHandle{}, nil
}

func (d *fakeDevice) CreateGraphicsPipeline(desc *GraphicsPipelineDesc) (Pipeline, error) {
	d.graphics = append(d.graphics, desc)
	return &fakeHandle{}, nil
}

func (d *fakeDevice) CreateRenderPass(desc *RenderPassDesc) (RenderPass, error) {
	d.renderPass = append(d.renderPass, desc)
	return &fakeHandle{}, nil
}

func (d *fakeDevice) CreateFramebuffer(renderPass RenderPass, attachments []DeviceImage, extent vk.Extent2D) (Framebuffer, error) {
	d.framebuffer = append(d.framebuffer, attachments)
	return &fakeHandle{}, nil
}

func (d *fakeDevice) RenderResolution() vk.Extent2D {
	return d.resolution
}

func (c *fakeCmd) record(cmd command) {
	if !c.recording {
		panic("command recorded outside Begin/End: " + cmd.op)
	}
	c.commands = append(c.commands, cmd)
}

func (c *fakeCmd) Begin() error {
	c.recording = true
	c.commands = nil
	return nil
}

func (c *fakeCmd) End() error {
	c.recording = false
	c.ended = true
	return nil
}

func (c *fakeCmd) Recorded() int {
	return len(c.commands)
}

func (c *fakeCmd) MemoryBarrier(b Barrier) {
	c.record(command{op: "MemoryBarrier", barrier: b})
}

func (c *fakeCmd) ImageBarrier(image DeviceImage, b Barrier) {
	c.record(command{op: "ImageBarrier", image: image, barrier: b})
}

func (c *fakeCmd) CopyBuffer(src, dst DeviceBuffer, size uint64) {
	c.record(command{op: "CopyBuffer", buffer: dst, count: int(size)})
	copy(dst.(*fakeBuffer).mem[:size], src.(*fakeBuffer).mem[:size])
}

func (c *fakeCmd) CopyBufferToImage(src DeviceBuffer, dst DeviceImage, layout vk.ImageLayout, extent vk.Extent2D) {
	c.record(command{op: "CopyBufferToImage", buffer: src, image: dst, layout: layout})
}

func (c *fakeCmd) ClearColorImage(image DeviceImage, layout vk.ImageLayout) {
	c.record(command{op: "ClearColorImage", image: image, layout: layout})
}

func (c *fakeCmd) BlitImage(src DeviceImage, srcLayout vk.ImageLayout, srcExtent vk.Extent2D, dst DeviceImage, dstLayout vk.ImageLayout, dstExtent vk.Extent2D) {
	c.record(command{op: "BlitImage", image: dst, layout: dstLayout})
}

func (c *fakeCmd) BeginRenderPass(renderPass RenderPass, framebuffer Framebuffer, extent vk.Extent2D, clears []ClearValue) {
	c.record(command{op: "BeginRenderPass", clears: clears})
}

func (c *fakeCmd) EndRenderPass() {
	c.record(command{op: "EndRenderPass"})
}

func (c *fakeCmd) BindPipeline(bindPoint vk.PipelineBindPoint, pipeline Pipeline) {
	c.record(command{op: "BindPipeline", pipeline: pipeline})
}

func (c *fakeCmd) BindDescriptorSet(bindPoint vk.PipelineBindPoint, layout PipelineLayout, set DescriptorSet) {
	c.record(command{op: "BindDescriptorSet"})
}

func (c *fakeCmd) BindVertexBuffer(buffer DeviceBuffer) {
	c.record(command{op: "BindVertexBuffer", buffer: buffer})
}

func (c *fakeCmd) BindIndexBuffer(buffer DeviceBuffer, indexType vk.IndexType) {
	c.record(command{op: "BindIndexBuffer", buffer: buffer})
}

func (c *fakeCmd) DrawIndexed(indexCount int) {
	c.record(command{op: "DrawIndexed", count: indexCount})
}

func (c *fakeCmd) Dispatch(x, y, z int) {
	c.record(command{op: "Dispatch", x: x, y: y, z: z})
}

// ops lists the recorded operations in order.
func (c *fakeCmd) ops() []string {
	ops := make([]string, len(c.commands))
	for i, cmd := range c.commands {
		ops[i] = cmd.op
	}
	return ops
}

// barriers returns the recorded barrier commands.
func (c *fakeCmd) barriers() []command {
	var out []command
	for _, cmd := range c.commands {
		if cmd.op == "MemoryBarrier" || cmd.op == "ImageBarrier" {
			out = append(out, cmd)
		}
	}
	return out
}

// cmdOf returns the command buffer a pass records into.
func cmdOf(p Pass) *fakeCmd {
	return p.base().cmd.(*fakeCmd)
}

// barrierFor is the barrier InsertBarrier records for an access pair.
func barrierFor(prev, curr Access) Barrier {
	return Barrier{
		SrcAccess: prev.AccessMask(),
		DstAccess: curr.AccessMask(),
		SrcStage:  prev.StageMask(),
		DstStage:  curr.StageMask(),
	}
}

// imageBarrierFor adds the layout transition and aspect to barrierFor.
func imageBarrierFor(prev, curr Access) Barrier {
	b := barrierFor(prev, curr)
	b.OldLayout = prev.Layout()
	b.NewLayout = curr.Layout()
	b.Aspect = curr.AspectMask()
	return b
}
