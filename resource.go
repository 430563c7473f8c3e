package cgin

import (
	"sort"

	vk "github.com/vulkan-go/vulkan"
)

// AccessProperty says where a resource's memory should live.
type AccessProperty int

const (
	// PreferHost keeps the memory host visible, writes are plain mapped copies.
	PreferHost AccessProperty = iota
	// PreferDevice keeps the memory device local, writes go through a staging buffer.
	PreferDevice
)

var memoryProperties = map[AccessProperty]vk.MemoryPropertyFlags{
	PreferHost:   vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit),
	PreferDevice: vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
}

// Resource is a buffer or an image whose uses are tracked by the render graph.
// Buffer and Image are the only implementations.
type Resource interface {
	// Initialize allocates the resource, it must be called exactly once, after every pass
	// using the resource has been constructed and before any of them executes.
	Initialize(dev Device) error
	Destroy()

	// LayoutBinding describes the descriptor binding for an access to this resource.
	LayoutBinding(binding int, access Access) vk.DescriptorSetLayoutBinding
	// DescriptorWrite points a binding at this resource.
	DescriptorWrite(binding int, access Access) DescriptorWrite

	// PrepareForInitialAccess synchronizes the first real use of the resource.
	PrepareForInitialAccess(cmd CommandBuffer, access Access)
	// InsertBarrier orders prev before curr. An inaccurate prev is not detected.
	InsertBarrier(cmd CommandBuffer, prev, curr Access)

	// RegisterUse records that a pass with the given idle fence uses the resource.
	RegisterUse(fence Fence, access Access)
	// WaitForReady blocks until every pass that ever used the resource is idle.
	WaitForReady() error

	// Operations returns every operation declared against the resource, sorted.
	Operations() []Operation

	resource() *resourceBase
}

type resourceBase struct {
	dev         Device
	property    AccessProperty
	operations  map[Operation]struct{}
	fences      []Fence
	initialized bool
}

func newResourceBase(property AccessProperty, operations ...Operation) resourceBase {
	r := resourceBase{
		property:   property,
		operations: make(map[Operation]struct{}),
	}
	for _, op := range operations {
		r.operations[op] = struct{}{}
	}
	return r
}

func (r *resourceBase) resource() *resourceBase {
	return r
}

func (r *resourceBase) RegisterUse(fence Fence, access Access) {
	r.fences = append(r.fences, fence)
	r.operations[access.Operation] = struct{}{}
}

func (r *resourceBase) Operations() []Operation {
	ops := make([]Operation, 0, len(r.operations))
	for op := range r.operations {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}

// Property returns where the resource's memory lives.
func (r *resourceBase) Property() AccessProperty {
	return r.property
}

func (r *resourceBase) WaitForReady() error {
	if !r.initialized {
		return ErrNotInitialized
	}
	if len(r.fences) == 0 {
		return nil
	}
	if err := r.dev.WaitForFences(WaitForever, r.fences...); err != nil {
		return fenceWait("resource", err)
	}
	return nil
}

func (r *resourceBase) LayoutBinding(binding int, access Access) vk.DescriptorSetLayoutBinding {
	return vk.DescriptorSetLayoutBinding{
		Binding:         uint32(binding),
		DescriptorType:  access.DescriptorType(),
		DescriptorCount: 1,
		StageFlags:      access.ShaderStage(),
	}
}

// begin marks the resource initialized, it fails on a second call.
func (r *resourceBase) begin(dev Device) error {
	if r.initialized {
		return ErrAlreadyInitialized
	}
	r.dev = dev
	r.initialized = true
	return nil
}

func (r *resourceBase) barrier(prev, curr Access) Barrier {
	return Barrier{
		SrcAccess: prev.AccessMask(),
		DstAccess: curr.AccessMask(),
		SrcStage:  prev.StageMask(),
		DstStage:  curr.StageMask(),
	}
}

func (p AccessProperty) String() string {
	switch p {
	case PreferHost:
		return "PreferHost"
	case PreferDevice:
		return "PreferDevice"
	}
	return "AccessProperty(?)"
}
