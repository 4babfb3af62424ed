package collision

import (
	"errors"
	"log"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ColMesh is immutable triangle collision geometry with a whole-mesh
// bounding box for early rejection and a BVH for candidate queries.
//
// A mesh may be shared read-only by any number of bodies. Sharing is
// tracked with an explicit reference count: NewColMesh and the loaders
// hand out a mesh with one reference owned by the caller, Retain adds
// an owner and Release drops one. The geometry is freed exactly once,
// when the last owner releases it.
//
// By default triangles stay in local space and a mesh is positioned by
// offsetting the query shape (position-only placement, the cheap path
// for level geometry). SetDynamic enables a second world-space
// triangle buffer that UpdateTransform refreshes from a full matrix
// each frame.
type ColMesh struct {
	tris      []Triangle // local-space triangles, never mutated after load
	worldTris []Triangle // world-space copy, only when dynamic

	center mgl32.Vec3 // bounding box center (world space when dynamic)
	half   mgl32.Vec3 // bounding box half-extents

	root    *bvhNode
	dynamic bool
	refs    int
}

// NewColMesh builds a collision mesh from triangles. Triangles with a
// zero normal get one computed from their winding. The mesh keeps the
// slice; callers must not mutate it afterwards.
func NewColMesh(tris []Triangle) (*ColMesh, error) {
	if len(tris) == 0 {
		return nil, errors.New("collision: mesh has no triangles")
	}
	for i := range tris {
		if tris[i].Normal == (mgl32.Vec3{}) {
			tris[i] = NewTriangle(tris[i].V0, tris[i].V1, tris[i].V2)
		}
	}
	m := &ColMesh{tris: tris, refs: 1}
	m.center, m.half = triangleBounds(tris)
	m.root = buildBVH(tris)
	return m, nil
}

// Len returns the number of triangles, or 0 after the geometry has
// been freed.
func (m *ColMesh) Len() int {
	return len(m.tris)
}

// Bounds returns the bounding box center and half-extents. For a
// dynamic mesh these are in world space.
func (m *ColMesh) Bounds() (center, half mgl32.Vec3) {
	return m.center, m.half
}

// Retain adds an owner to the mesh.
func (m *ColMesh) Retain() *ColMesh {
	m.refs++
	return m
}

// Release drops one owner. When the last owner releases, the geometry
// is freed; further use reports no triangles and no contacts.
func (m *ColMesh) Release() {
	if m.refs <= 0 {
		log.Printf("collision: release of already-freed mesh")
		return
	}
	m.refs--
	if m.refs == 0 {
		m.tris = nil
		m.worldTris = nil
		m.root = nil
	}
}

// SetDynamic switches the mesh between position-only placement and
// full-transform mode. Enabling allocates the world-space buffer,
// initialized to the local geometry; disabling drops it and restores
// the local-space bounds and BVH.
func (m *ColMesh) SetDynamic(dynamic bool) {
	if dynamic == m.dynamic {
		return
	}
	m.dynamic = dynamic
	if dynamic {
		m.worldTris = make([]Triangle, len(m.tris))
		copy(m.worldTris, m.tris)
		return
	}
	m.worldTris = nil
	m.center, m.half = triangleBounds(m.tris)
	m.root = buildBVH(m.tris)
}

// UpdateTransform transforms a dynamic mesh into world space and
// recomputes its bounds and BVH. Call once per frame before collision
// tests. A static mesh is left untouched.
func (m *ColMesh) UpdateTransform(mat mgl32.Mat4) {
	if !m.dynamic || m.worldTris == nil {
		log.Printf("collision: UpdateTransform on a mesh not set to dynamic mode")
		return
	}
	rot := mat.Mat3()
	for i, t := range m.tris {
		n := rot.Mul3x1(t.Normal)
		if l := n.Len(); l > 0 {
			n = n.Mul(1 / l)
		}
		m.worldTris[i] = Triangle{
			V0:     mat.Mul4x1(t.V0.Vec4(1)).Vec3(),
			V1:     mat.Mul4x1(t.V1.Vec4(1)).Vec3(),
			V2:     mat.Mul4x1(t.V2.Vec4(1)).Vec3(),
			Normal: n,
		}
	}
	m.center, m.half = triangleBounds(m.worldTris)
	m.root = buildBVH(m.worldTris)
}

// triangles returns the buffer collision tests should read: the
// world-space copy for a dynamic mesh, the local geometry otherwise.
func (m *ColMesh) triangles() []Triangle {
	if m.dynamic && m.worldTris != nil {
		return m.worldTris
	}
	return m.tris
}

func triangleBounds(tris []Triangle) (center, half mgl32.Vec3) {
	if len(tris) == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	min := mgl32.Vec3{math32.MaxFloat32, math32.MaxFloat32, math32.MaxFloat32}
	max := min.Mul(-1)
	for _, t := range tris {
		for _, v := range [3]mgl32.Vec3{t.V0, t.V1, t.V2} {
			for i := 0; i < 3; i++ {
				if v[i] < min[i] {
					min[i] = v[i]
				}
				if v[i] > max[i] {
					max[i] = v[i]
				}
			}
		}
	}
	return min.Add(max).Mul(0.5), max.Sub(min).Mul(0.5)
}
