package collision

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ShapeKind identifies a collision shape variant.
type ShapeKind int

const (
	KindNone ShapeKind = iota
	KindSphere
	KindBox
	KindCapsule
	KindMesh
)

func (k ShapeKind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindBox:
		return "box"
	case KindCapsule:
		return "capsule"
	case KindMesh:
		return "mesh"
	default:
		return "none"
	}
}

// Shape is a closed tagged variant over the supported collision
// primitives. Use the New* constructors: they validate parameters so
// that bad geometry is rejected at configuration time, never during a
// collision test. Shapes carry geometry only - velocity and mass live
// on the owning body.
type Shape struct {
	Kind       ShapeKind
	Radius     float32    // sphere and capsule sweep radius
	HalfHeight float32    // capsule center segment half height
	Half       mgl32.Vec3 // box half-extents
	Mesh       *ColMesh   // shared, read-only triangle geometry
}

// ErrNilMesh is returned when a mesh shape is built without geometry.
var ErrNilMesh = errors.New("collision: nil mesh")

// NewSphere returns a sphere shape of the given radius.
func NewSphere(radius float32) (Shape, error) {
	if radius <= 0 {
		return Shape{}, fmt.Errorf("collision: sphere radius must be positive, got %g", radius)
	}
	return Shape{Kind: KindSphere, Radius: radius}, nil
}

// NewBox returns an axis-aligned box shape with the given half-extents.
func NewBox(hx, hy, hz float32) (Shape, error) {
	if hx <= 0 || hy <= 0 || hz <= 0 {
		return Shape{}, fmt.Errorf("collision: box half-extents must be positive, got (%g, %g, %g)", hx, hy, hz)
	}
	return Shape{Kind: KindBox, Half: mgl32.Vec3{hx, hy, hz}}, nil
}

// NewCapsule returns a capsule shape. The capsule is a segment from
// (0, -halfHeight, 0) to (0, +halfHeight, 0) in local space, swept by a
// sphere of the given radius.
func NewCapsule(halfHeight, radius float32) (Shape, error) {
	if halfHeight <= 0 {
		return Shape{}, fmt.Errorf("collision: capsule half height must be positive, got %g", halfHeight)
	}
	if radius <= 0 {
		return Shape{}, fmt.Errorf("collision: capsule radius must be positive, got %g", radius)
	}
	return Shape{Kind: KindCapsule, Radius: radius, HalfHeight: halfHeight}, nil
}

// NewMeshShape returns a triangle-mesh shape referencing a loaded
// ColMesh. The mesh may be shared by any number of shapes; the caller
// keeps responsibility for the reference count.
func NewMeshShape(mesh *ColMesh) (Shape, error) {
	if mesh == nil {
		return Shape{}, ErrNilMesh
	}
	if mesh.Len() == 0 {
		return Shape{}, errors.New("collision: mesh has no triangles")
	}
	return Shape{Kind: KindMesh, Mesh: mesh}, nil
}

// halfExtents returns the half-extents of the shape's bounding box,
// used for whole-mesh early rejection.
func (s Shape) halfExtents() mgl32.Vec3 {
	switch s.Kind {
	case KindSphere:
		return mgl32.Vec3{s.Radius, s.Radius, s.Radius}
	case KindBox:
		return s.Half
	case KindCapsule:
		return mgl32.Vec3{s.Radius, s.HalfHeight + s.Radius, s.Radius}
	default:
		return mgl32.Vec3{}
	}
}
