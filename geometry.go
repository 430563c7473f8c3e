package cgin

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// BufferObject is anything that can be copied into a buffer.
type BufferObject interface {
	Bytes() []byte
}

// IndexSource provides index data and the index width.
type IndexSource interface {
	BufferObject
	Len() int
	IndexType() vk.IndexType
}

// VertexSource provides vertex data and how it is laid out.
type VertexSource interface {
	BufferObject
	BindingDescription() vk.VertexInputBindingDescription
	AttributeDescriptions() []vk.VertexInputAttributeDescription
}

type IndexSliceUint16 []uint16

func (i IndexSliceUint16) Bytes() []byte {
	if len(i) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&i[0])), len(i)*2)
}

func (i IndexSliceUint16) Len() int {
	return len(i)
}

func (i IndexSliceUint16) IndexType() vk.IndexType {
	return vk.IndexTypeUint16
}

type IndexSliceUint32 []uint32

func (i IndexSliceUint32) Bytes() []byte {
	if len(i) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&i[0])), len(i)*4)
}

func (i IndexSliceUint32) Len() int {
	return len(i)
}

func (i IndexSliceUint32) IndexType() vk.IndexType {
	return vk.IndexTypeUint32
}

// Geometry is an indexed triangle mesh held in device local buffers. Its buffers are
// resources the owner initializes along with the rest, see Resources.
type Geometry struct {
	Vertices   *Buffer
	Indices    *Buffer
	IndexCount int
	IndexType  vk.IndexType
	FrontFace  vk.FrontFace
	Binding    vk.VertexInputBindingDescription
	Attributes []vk.VertexInputAttributeDescription
}

// NewGeometry configures vertex and index buffers holding the given data.
func NewGeometry(vertices VertexSource, indices IndexSource, frontFace vk.FrontFace) *Geometry {
	vb := vertices.Bytes()
	ib := indices.Bytes()
	return &Geometry{
		Vertices: NewBuffer(BufferConfig{
			Size:       uint64(len(vb)),
			Property:   PreferDevice,
			Operations: []Operation{VertexBuffer},
			Data:       vb,
		}),
		Indices: NewBuffer(BufferConfig{
			Size:       uint64(len(ib)),
			Property:   PreferDevice,
			Operations: []Operation{IndexBuffer},
			Data:       ib,
		}),
		IndexCount: indices.Len(),
		IndexType:  indices.IndexType(),
		FrontFace:  frontFace,
		Binding:    vertices.BindingDescription(),
		Attributes: vertices.AttributeDescriptions(),
	}
}

// Resources returns the geometry's buffers.
func (g *Geometry) Resources() []Resource {
	return []Resource{g.Vertices, g.Indices}
}
