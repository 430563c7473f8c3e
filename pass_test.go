package cgin

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func newTestImage(t *testing.T, format vk.Format) *Image {
	t.Helper()
	return NewImage(ImageConfig{Extent: vk.Extent2D{Width: 64, Height: 32}, Format: format})
}

func initAll(t *testing.T, dev Device, resources ...Resource) {
	t.Helper()
	for _, r := range resources {
		require.NoError(t, r.Initialize(dev))
	}
}

// countingBarriers is a barrier callback that records nothing.
func countingBarriers(calls *int) BarrierFunc {
	return func(cmd CommandBuffer, pass Pass) { *calls++ }
}

func TestPassConstruction(t *testing.T) {
	dev := newFakeDevice()
	img := newTestImage(t, vk.FormatR8g8b8a8Unorm)
	ubo := NewBuffer(BufferConfig{Size: 16, Property: PreferHost})

	p, err := NewComputePass(dev, "blend", &fakeHandle{}, []ResourceUse{
		Bind(img, Access{ShaderStorageImage, StageComputeShader}, 0),
		Bind(ubo, Access{UniformBuffer, StageComputeShader}, 1),
		Use(img, Access{TransferSource, StageTransfer}),
	})
	require.NoError(t, err)

	require.Len(t, dev.fences, 1)
	assert.True(t, dev.fences[0].signaled, "idle fence starts signaled")
	assert.Equal(t, Fence(dev.fences[0]), p.Fence())

	require.Len(t, dev.setLayouts, 1)
	bindings := dev.setLayouts[0].bindings
	require.Len(t, bindings, 2)
	assert.Equal(t, vk.DescriptorTypeStorageImage, bindings[0].DescriptorType)
	assert.Equal(t, vk.DescriptorTypeUniformBuffer, bindings[1].DescriptorType)

	assert.Equal(t, []Operation{TransferSource, ShaderStorageImage}, img.Operations())
	assert.Equal(t, []Operation{UniformBuffer}, ubo.Operations())
	assert.Len(t, dev.cmds, 1)
	assert.False(t, p.Prepared())
}

func TestPassStateMachine(t *testing.T) {
	dev := newFakeDevice()
	img := newTestImage(t, vk.FormatR8g8b8a8Unorm)
	p, err := NewClearPass(dev, "clear", img)
	require.NoError(t, err)
	initAll(t, dev, img)

	assert.True(t, errors.Is(p.Execute(), ErrNotPrepared))

	calls := 0
	require.NoError(t, p.PrepareExecution(countingBarriers(&calls)))
	assert.Equal(t, 1, calls)
	assert.True(t, p.Prepared())
	assert.True(t, errors.Is(p.PrepareExecution(countingBarriers(&calls)), ErrAlreadyPrepared))
	assert.Equal(t, 1, calls)

	dev.events = nil
	require.NoError(t, p.Execute())
	require.NoError(t, p.Execute())
	assert.Equal(t, []string{"wait", "reset", "submit", "wait", "reset", "submit"}, dev.events)
	assert.Len(t, dev.submits, 2)

	lost := errors.New("device lost")
	dev.waitErr = lost
	err = p.Execute()
	assert.True(t, errors.Is(err, ErrFenceWait))
	assert.True(t, errors.Is(err, lost))
	assert.Contains(t, err.Error(), "device lost")
}

func TestClearPassRecording(t *testing.T) {
	dev := newFakeDevice()
	img := newTestImage(t, vk.FormatR8g8b8a8Unorm)
	p, err := NewClearPass(dev, "clear", img)
	require.NoError(t, err)
	initAll(t, dev, img)

	require.NoError(t, NewGraph(nil).RegisterPasses([]DependencyList{{Pass: p}}))

	cmd := cmdOf(p)
	assert.True(t, cmd.ended)
	assert.Equal(t, []string{"ImageBarrier", "ClearColorImage"}, cmd.ops())
	assert.Equal(t, vk.ImageLayoutTransferDstOptimal, cmd.commands[1].layout)
	assert.Equal(t, imageBarrierFor(InitialAccess, ClearAccess), cmd.commands[0].barrier)
}

func TestComputePassRecording(t *testing.T) {
	dev := newFakeDevice()
	img := newTestImage(t, vk.FormatR8g8b8a8Unorm)
	p, err := NewComputePass(dev, "compute", &fakeHandle{}, []ResourceUse{
		Bind(img, Access{ShaderStorageImage, StageComputeShader}, 0),
	})
	require.NoError(t, err)
	initAll(t, dev, img)

	require.NoError(t, NewGraph(nil).RegisterPasses([]DependencyList{{Pass: p}}))

	cmd := cmdOf(p)
	assert.Equal(t, []string{"ImageBarrier", "BindPipeline", "BindDescriptorSet", "Dispatch"}, cmd.ops())
	dispatch := cmd.commands[3]
	assert.Equal(t, [3]int{640/16 + 1, 480/16 + 1, 1}, [3]int{dispatch.x, dispatch.y, dispatch.z})
	assert.Equal(t, 1, dev.compute)

	require.Len(t, dev.sets, 1)
	writes := dev.sets[0].writes
	require.Len(t, writes, 1)
	assert.Equal(t, vk.ImageLayoutGeneral, writes[0].Layout)
	assert.Equal(t, img.Handle(), writes[0].Image)
}

func TestGroupCount(t *testing.T) {
	x, y, z := GroupCount(vk.Extent2D{Width: 16, Height: 15})
	assert.Equal(t, []int{2, 1, 1}, []int{x, y, z})
}

type testVertices []float32

func (v testVertices) Bytes() []byte { return make([]byte, len(v)*4) }

func (v testVertices) BindingDescription() vk.VertexInputBindingDescription {
	return vk.VertexInputBindingDescription{Binding: 0, Stride: 12, InputRate: vk.VertexInputRateVertex}
}

func (v testVertices) AttributeDescriptions() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{{Location: 0, Binding: 0, Format: vk.FormatR32g32b32Sfloat}}
}

func newTestGeometry() *Geometry {
	return NewGeometry(make(testVertices, 9), IndexSliceUint16{0, 1, 2}, vk.FrontFaceCounterClockwise)
}

func TestDrawPassRecording(t *testing.T) {
	dev := newFakeDevice()
	geometry := newTestGeometry()
	color := newTestImage(t, vk.FormatR8g8b8a8Unorm)
	accum := newTestImage(t, vk.FormatR8g8b8a8Unorm)
	depth := newTestImage(t, vk.FormatD32Sfloat)
	ubo := NewBuffer(BufferConfig{Size: 16, Property: PreferHost})

	p, err := NewDrawPass(dev, "draw", geometry, &fakeHandle{}, &fakeHandle{}, []ResourceUse{
		Bind(ubo, Access{UniformBuffer, StageVertexShader}, 0),
		Use(color, Access{ColorAttachmentOutput, StageFragmentShader}),
		Use(depth, Access{DepthBuffer, StageFragmentShader}),
		Use(accum, Access{ColorAttachmentOutput, StageFragmentShader}).WithBlend(),
	})
	require.NoError(t, err)
	initAll(t, dev, geometry.Vertices, geometry.Indices, color, accum, depth, ubo)

	require.NoError(t, NewGraph(nil).RegisterPasses([]DependencyList{{Pass: p}}))

	require.Len(t, dev.renderPass, 1)
	rp := dev.renderPass[0]
	require.Len(t, rp.Attachments, 3)
	assert.Equal(t, []vk.AttachmentReference{
		{Attachment: 0, Layout: vk.ImageLayoutColorAttachmentOptimal},
		{Attachment: 2, Layout: vk.ImageLayoutColorAttachmentOptimal},
	}, rp.Color)
	require.NotNil(t, rp.Depth)
	assert.Equal(t, uint32(1), rp.Depth.Attachment)
	assert.Equal(t, vk.AttachmentLoadOpLoad, rp.Attachments[2].LoadOp)
	assert.Equal(t, []DeviceImage{color.Handle(), depth.Handle(), accum.Handle()}, dev.framebuffer[0])

	require.Len(t, dev.graphics, 1)
	gp := dev.graphics[0]
	assert.Equal(t, []bool{false, true}, gp.Blend)
	assert.True(t, gp.DepthTest)
	assert.Equal(t, vk.CullModeBackBit, gp.CullMode)
	assert.Equal(t, vk.FrontFaceCounterClockwise, gp.FrontFace)
	assert.Equal(t, vk.Extent2D{Width: 64, Height: 32}, gp.Extent)

	cmd := cmdOf(p)
	assert.Equal(t, []string{
		"MemoryBarrier", "ImageBarrier", "ImageBarrier", "ImageBarrier",
		"BeginRenderPass", "BindPipeline", "BindVertexBuffer", "BindDescriptorSet",
		"BindIndexBuffer", "DrawIndexed", "EndRenderPass",
	}, cmd.ops())
	begin := cmd.commands[4]
	assert.Equal(t, []ClearValue{{}, {Depth: 1, IsDepth: true}, {}}, begin.clears)
	assert.Equal(t, 3, cmd.commands[9].count)
}

func TestDrawPassAttachmentErrors(t *testing.T) {
	dev := newFakeDevice()
	geometry := newTestGeometry()
	ubo := NewBuffer(BufferConfig{Size: 16, Property: PreferHost})
	noop := func(CommandBuffer, Pass) {}

	tests := []struct {
		name string
		uses []ResourceUse
		err  error
	}{
		{"no outputs", []ResourceUse{Bind(ubo, Access{UniformBuffer, StageVertexShader}, 0)}, ErrNoAttachments},
		{"buffer output", []ResourceUse{Use(ubo, Access{ColorAttachmentOutput, StageFragmentShader})}, ErrNotAnImage},
		{"two depth outputs", []ResourceUse{
			Use(newTestImage(t, vk.FormatD32Sfloat), Access{DepthBuffer, StageFragmentShader}),
			Use(newTestImage(t, vk.FormatD32Sfloat), Access{DepthBuffer, StageFragmentShader}),
		}, ErrMultipleDepthAttachments},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewDrawPass(dev, tt.name, geometry, &fakeHandle{}, &fakeHandle{}, tt.uses)
			require.NoError(t, err)
			assert.True(t, errors.Is(p.PrepareExecution(noop), tt.err))
			assert.False(t, p.Prepared())
		})
	}
}

func TestPresentPassRecording(t *testing.T) {
	dev := newFakeDevice()
	source := newTestImage(t, vk.FormatR8g8b8a8Unorm)
	target := NewForeignImage(&fakeImage{}, vk.FormatB8g8r8a8Unorm, vk.Extent2D{Width: 64, Height: 32})
	p, err := NewPresentPass(dev, "present", source, target)
	require.NoError(t, err)
	initAll(t, dev, source, target)
	assert.Equal(t, target, p.Target())

	calls := 0
	require.NoError(t, p.PrepareExecution(countingBarriers(&calls)))
	assert.Equal(t, 1, calls)

	cmd := cmdOf(p)
	assert.Equal(t, []string{"ImageBarrier", "BlitImage", "ImageBarrier"}, cmd.ops())
	transferDst := Access{TransferDestination, StageTransfer}
	assert.Equal(t, imageBarrierFor(InitialAccess, transferDst), cmd.commands[0].barrier)
	assert.Equal(t, vk.ImageLayoutTransferDstOptimal, cmd.commands[1].layout)
	assert.Equal(t, imageBarrierFor(transferDst, PresentTargetAccess), cmd.commands[2].barrier)
	assert.Equal(t, vk.ImageLayoutPresentSrc, cmd.commands[2].barrier.NewLayout)
}

func TestPassDestroy(t *testing.T) {
	dev := newFakeDevice()
	img := newTestImage(t, vk.FormatR8g8b8a8Unorm)
	p, err := NewComputePass(dev, "compute", &fakeHandle{}, []ResourceUse{
		Bind(img, Access{ShaderStorageImage, StageComputeShader}, 0),
	})
	require.NoError(t, err)
	initAll(t, dev, img)
	require.NoError(t, p.PrepareExecution(func(CommandBuffer, Pass) {}))

	p.Destroy()
	assert.True(t, dev.fences[0].destroyed)
	assert.True(t, dev.cmds[0].destroyed)
	assert.True(t, dev.setLayouts[0].destroyed)
}

func TestDescriptorPoolSizes(t *testing.T) {
	dev := newFakeDevice()
	img := newTestImage(t, vk.FormatR8g8b8a8Unorm)
	ubo := NewBuffer(BufferConfig{Size: 16, Property: PreferHost})
	a, err := NewComputePass(dev, "a", &fakeHandle{}, []ResourceUse{
		Bind(img, Access{ShaderStorageImage, StageComputeShader}, 0),
		Bind(ubo, Access{UniformBuffer, StageComputeShader}, 1),
	})
	require.NoError(t, err)
	b, err := NewComputePass(dev, "b", &fakeHandle{}, []ResourceUse{
		Bind(img, Access{ShaderStorageImage, StageComputeShader}, 0),
		Use(ubo, Access{TransferDestination, StageTransfer}),
	})
	require.NoError(t, err)

	assert.Equal(t, []vk.DescriptorPoolSize{
		{Type: vk.DescriptorTypeStorageImage, DescriptorCount: 2},
		{Type: vk.DescriptorTypeUniformBuffer, DescriptorCount: 1},
	}, DescriptorPoolSizes([]Pass{a, b}))
}
