package glbackend

import (
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/hubastard/lightsky/engine/core"
	"github.com/pkg/errors"
)

type glMesh struct {
	vao, vbo, ebo uint32
	indexCount    int
	usage         uint32
	vboBytes      int
	eboBytes      int
}

func (m *glMesh) IndexCount() int { return m.indexCount }

func (r *RendererGL) CreateMesh(desc core.MeshDesc) (core.Mesh, error) {
	if desc.Layout.Stride <= 0 {
		return nil, errors.New("create mesh: vertex layout stride must be positive")
	}
	m := &glMesh{usage: gl.STATIC_DRAW}
	if desc.Dynamic {
		m.usage = gl.DYNAMIC_DRAW
	}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	m.vboBytes = len(desc.Vertices) * 4
	gl.BufferData(gl.ARRAY_BUFFER, m.vboBytes, ptrOrNil(desc.Vertices), m.usage)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	m.eboBytes = len(desc.Indices) * 4
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, m.eboBytes, ptrOrNil(desc.Indices), m.usage)
	m.indexCount = len(desc.Indices)

	for _, a := range desc.Layout.Attributes {
		if a.Type != core.AttribFloat32 {
			gl.BindVertexArray(0)
			r.DeleteMesh(m)
			return nil, errors.Errorf("create mesh: attribute %d has unsupported type", a.Location)
		}
		gl.EnableVertexAttribArray(uint32(a.Location))
		gl.VertexAttribPointer(uint32(a.Location), int32(a.Size), gl.FLOAT, false, int32(desc.Layout.Stride), unsafe.Pointer(uintptr(a.Offset)))
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if err := r.CheckError(); err != nil {
		r.DeleteMesh(m)
		return nil, errors.Wrap(err, "create mesh")
	}
	r.meshes[m] = struct{}{}
	return m, nil
}

func (r *RendererGL) UpdateMesh(mm core.Mesh, vertices []float32, indices []uint32) error {
	m, ok := mm.(*glMesh)
	if !ok || m.vao == 0 {
		return errors.New("update mesh: foreign or deleted mesh")
	}
	gl.BindVertexArray(m.vao)
	defer gl.BindVertexArray(0)

	vb, ib := len(vertices)*4, len(indices)*4
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	if vb > m.vboBytes {
		gl.BufferData(gl.ARRAY_BUFFER, vb, ptrOrNil(vertices), m.usage)
		m.vboBytes = vb
	} else if vb > 0 {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, vb, gl.Ptr(vertices))
	}
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	if ib > m.eboBytes {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, ib, ptrOrNil(indices), m.usage)
		m.eboBytes = ib
	} else if ib > 0 {
		gl.BufferSubData(gl.ELEMENT_ARRAY_BUFFER, 0, ib, gl.Ptr(indices))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	m.indexCount = len(indices)
	return r.CheckError()
}

func (r *RendererGL) DeleteMesh(mm core.Mesh) {
	m, ok := mm.(*glMesh)
	if !ok || m.vao == 0 {
		return
	}
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteBuffers(1, &m.ebo)
	gl.DeleteVertexArrays(1, &m.vao)
	m.vao, m.vbo, m.ebo = 0, 0, 0
	delete(r.meshes, m)
}

// ptrOrNil avoids gl.Ptr's panic on empty slices.
func ptrOrNil[T float32 | uint32](s []T) unsafe.Pointer {
	if len(s) == 0 {
		return nil
	}
	return gl.Ptr(s)
}
