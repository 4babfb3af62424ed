package collision

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const testTol = 1e-4

func almostEq(a, b float32) bool {
	return math32.Abs(a-b) < testTol
}

func vecAlmostEq(a, b mgl32.Vec3) bool {
	return almostEq(a[0], b[0]) && almostEq(a[1], b[1]) && almostEq(a[2], b[2])
}

func mustSphere(t *testing.T, r float32) Shape {
	t.Helper()
	s, err := NewSphere(r)
	if err != nil {
		t.Fatalf("NewSphere(%g) failed: %v", r, err)
	}
	return s
}

func mustBox(t *testing.T, hx, hy, hz float32) Shape {
	t.Helper()
	s, err := NewBox(hx, hy, hz)
	if err != nil {
		t.Fatalf("NewBox(%g, %g, %g) failed: %v", hx, hy, hz, err)
	}
	return s
}

func mustCapsule(t *testing.T, halfHeight, radius float32) Shape {
	t.Helper()
	s, err := NewCapsule(halfHeight, radius)
	if err != nil {
		t.Fatalf("NewCapsule(%g, %g) failed: %v", halfHeight, radius, err)
	}
	return s
}

// floorTris builds a flat quad at y=0 spanning [-size, size] on X and Z
// with normals pointing up.
func floorTris(size float32) []Triangle {
	return []Triangle{
		NewTriangle(
			mgl32.Vec3{-size, 0, -size},
			mgl32.Vec3{-size, 0, size},
			mgl32.Vec3{size, 0, size},
		),
		NewTriangle(
			mgl32.Vec3{-size, 0, -size},
			mgl32.Vec3{size, 0, size},
			mgl32.Vec3{size, 0, -size},
		),
	}
}

func mustMesh(t *testing.T, tris []Triangle) Shape {
	t.Helper()
	m, err := NewColMesh(tris)
	if err != nil {
		t.Fatalf("NewColMesh failed: %v", err)
	}
	s, err := NewMeshShape(m)
	if err != nil {
		t.Fatalf("NewMeshShape failed: %v", err)
	}
	return s
}

func TestSphereSphere(t *testing.T) {
	a := mustSphere(t, 1)
	b := mustSphere(t, 1)

	res, ok := Test(a, mgl32.Vec3{0, 0, 0}, b, mgl32.Vec3{1.5, 0, 0})
	if !ok {
		t.Fatal("Expected contact for overlapping spheres")
	}
	if !almostEq(res.Depth, 0.5) {
		t.Errorf("Expected depth 0.5, got %g", res.Depth)
	}
	if !vecAlmostEq(res.Normal, mgl32.Vec3{-1, 0, 0}) {
		t.Errorf("Expected normal (-1, 0, 0), got %v", res.Normal)
	}
	if !vecAlmostEq(res.Point, mgl32.Vec3{0.5, 0, 0}) {
		t.Errorf("Expected contact point (0.5, 0, 0), got %v", res.Point)
	}

	if _, ok := Test(a, mgl32.Vec3{0, 0, 0}, b, mgl32.Vec3{2.5, 0, 0}); ok {
		t.Error("Expected no contact for separated spheres")
	}

	// Touching exactly is not a contact: no positive depth.
	if _, ok := Test(a, mgl32.Vec3{0, 0, 0}, b, mgl32.Vec3{2, 0, 0}); ok {
		t.Error("Expected no contact for exactly touching spheres")
	}
}

func TestSphereSphereCoincident(t *testing.T) {
	a := mustSphere(t, 1)
	b := mustSphere(t, 0.5)

	res, ok := Test(a, mgl32.Vec3{2, 3, 4}, b, mgl32.Vec3{2, 3, 4})
	if !ok {
		t.Fatal("Expected contact for coincident spheres")
	}
	if !almostEq(res.Depth, 1.5) {
		t.Errorf("Expected depth 1.5 (radius sum), got %g", res.Depth)
	}
	if l := res.Normal.Len(); !almostEq(l, 1) {
		t.Errorf("Expected unit normal, got length %g", l)
	}
}

func TestSphereBox(t *testing.T) {
	sphere := mustSphere(t, 0.5)
	box := mustBox(t, 1, 1, 1)

	// Sphere resting on the top face.
	res, ok := Test(sphere, mgl32.Vec3{0, 1.3, 0}, box, mgl32.Vec3{0, 0, 0})
	if !ok {
		t.Fatal("Expected contact for sphere on box face")
	}
	if !almostEq(res.Depth, 0.2) {
		t.Errorf("Expected depth 0.2, got %g", res.Depth)
	}
	if !vecAlmostEq(res.Normal, mgl32.Vec3{0, 1, 0}) {
		t.Errorf("Expected normal (0, 1, 0), got %v", res.Normal)
	}
	if !vecAlmostEq(res.Point, mgl32.Vec3{0, 1, 0}) {
		t.Errorf("Expected contact point (0, 1, 0), got %v", res.Point)
	}

	if _, ok := Test(sphere, mgl32.Vec3{0, 2, 0}, box, mgl32.Vec3{0, 0, 0}); ok {
		t.Error("Expected no contact for separated sphere and box")
	}
}

func TestSphereBoxCenterInside(t *testing.T) {
	sphere := mustSphere(t, 0.5)
	box := mustBox(t, 2, 2, 2)

	// Center inside the box, nearest the +X face.
	res, ok := Test(sphere, mgl32.Vec3{1.5, 0, 0}, box, mgl32.Vec3{0, 0, 0})
	if !ok {
		t.Fatal("Expected contact for sphere center inside box")
	}
	if !vecAlmostEq(res.Normal, mgl32.Vec3{1, 0, 0}) {
		t.Errorf("Expected pushout along +X, got %v", res.Normal)
	}
	if !almostEq(res.Depth, 1.0) {
		t.Errorf("Expected depth 1.0 (face distance plus radius), got %g", res.Depth)
	}
}

func TestBoxBox(t *testing.T) {
	a := mustBox(t, 1, 1, 1)
	b := mustBox(t, 1, 1, 1)

	// Overlap smallest on X.
	res, ok := Test(a, mgl32.Vec3{0, 0, 0}, b, mgl32.Vec3{1.8, 0.5, 0})
	if !ok {
		t.Fatal("Expected contact for overlapping boxes")
	}
	if !almostEq(res.Depth, 0.2) {
		t.Errorf("Expected depth 0.2 on the X axis, got %g", res.Depth)
	}
	if !vecAlmostEq(res.Normal, mgl32.Vec3{-1, 0, 0}) {
		t.Errorf("Expected normal (-1, 0, 0), got %v", res.Normal)
	}

	if _, ok := Test(a, mgl32.Vec3{0, 0, 0}, b, mgl32.Vec3{2.5, 0, 0}); ok {
		t.Error("Expected no contact for separated boxes")
	}
}

func TestCapsuleCapsule(t *testing.T) {
	a := mustCapsule(t, 1, 0.5)
	b := mustCapsule(t, 1, 0.5)

	res, ok := Test(a, mgl32.Vec3{0, 0, 0}, b, mgl32.Vec3{0.8, 0.5, 0})
	if !ok {
		t.Fatal("Expected contact for overlapping capsules")
	}
	if !almostEq(res.Depth, 0.2) {
		t.Errorf("Expected depth 0.2, got %g", res.Depth)
	}
	if !vecAlmostEq(res.Normal, mgl32.Vec3{-1, 0, 0}) {
		t.Errorf("Expected normal (-1, 0, 0), got %v", res.Normal)
	}

	// Offset along Y alone never collides while the segments overlap in
	// radius reach.
	if _, ok := Test(a, mgl32.Vec3{0, 0, 0}, b, mgl32.Vec3{0, 3.1, 0}); ok {
		t.Error("Expected no contact for capsules stacked out of reach")
	}
}

func TestCapsuleSphere(t *testing.T) {
	capsule := mustCapsule(t, 1, 0.5)
	sphere := mustSphere(t, 0.5)

	// Sphere beside the middle of the capsule segment.
	res, ok := Test(capsule, mgl32.Vec3{0, 0, 0}, sphere, mgl32.Vec3{0.8, 0.7, 0})
	if !ok {
		t.Fatal("Expected contact for sphere beside capsule")
	}
	if !almostEq(res.Depth, 0.2) {
		t.Errorf("Expected depth 0.2, got %g", res.Depth)
	}
	if !vecAlmostEq(res.Normal, mgl32.Vec3{-1, 0, 0}) {
		t.Errorf("Expected normal (-1, 0, 0) toward the capsule, got %v", res.Normal)
	}
}

func TestSphereMesh(t *testing.T) {
	mesh := mustMesh(t, floorTris(5))
	defer mesh.Mesh.Release()
	sphere := mustSphere(t, 0.5)

	res, ok := Test(sphere, mgl32.Vec3{0.25, 0.3, 0.25}, mesh, mgl32.Vec3{0, 0, 0})
	if !ok {
		t.Fatal("Expected contact for sphere touching floor mesh")
	}
	if !almostEq(res.Depth, 0.2) {
		t.Errorf("Expected depth 0.2, got %g", res.Depth)
	}
	if !vecAlmostEq(res.Normal, mgl32.Vec3{0, 1, 0}) {
		t.Errorf("Expected normal (0, 1, 0), got %v", res.Normal)
	}

	// The mesh body position offsets the whole floor.
	res, ok = Test(sphere, mgl32.Vec3{0, 2.3, 0}, mesh, mgl32.Vec3{0, 2, 0})
	if !ok {
		t.Fatal("Expected contact against the offset floor")
	}
	if !almostEq(res.Depth, 0.2) {
		t.Errorf("Expected depth 0.2 against offset floor, got %g", res.Depth)
	}
	if !almostEq(res.Point[1], 2) {
		t.Errorf("Expected contact point at floor height 2, got %v", res.Point)
	}
}

func TestMeshEarlyOut(t *testing.T) {
	mesh := mustMesh(t, floorTris(5))
	defer mesh.Mesh.Release()
	sphere := mustSphere(t, 0.5)

	// Far outside the mesh bounding box.
	if _, ok := Test(sphere, mgl32.Vec3{100, 100, 100}, mesh, mgl32.Vec3{0, 0, 0}); ok {
		t.Error("Expected no contact far from the mesh")
	}
}

func TestCapsuleMesh(t *testing.T) {
	mesh := mustMesh(t, floorTris(5))
	defer mesh.Mesh.Release()
	capsule := mustCapsule(t, 1, 0.5)

	// Capsule standing on the floor: lower cap penetrates by 0.2.
	res, ok := Test(capsule, mgl32.Vec3{0, 1.3, 0}, mesh, mgl32.Vec3{0, 0, 0})
	if !ok {
		t.Fatal("Expected contact for capsule standing on floor mesh")
	}
	if !almostEq(res.Depth, 0.2) {
		t.Errorf("Expected depth 0.2, got %g", res.Depth)
	}
	if !vecAlmostEq(res.Normal, mgl32.Vec3{0, 1, 0}) {
		t.Errorf("Expected normal (0, 1, 0), got %v", res.Normal)
	}

	// Deeper overlap reports greater depth.
	deeper, ok := Test(capsule, mgl32.Vec3{0, 1.2, 0}, mesh, mgl32.Vec3{0, 0, 0})
	if !ok {
		t.Fatal("Expected contact for lower capsule")
	}
	if deeper.Depth <= res.Depth {
		t.Errorf("Expected depth to grow with penetration: %g then %g", res.Depth, deeper.Depth)
	}
}

func TestBoxMesh(t *testing.T) {
	mesh := mustMesh(t, floorTris(5))
	defer mesh.Mesh.Release()
	box := mustBox(t, 2, 0.5, 2)

	// The box is approximated by a sphere of its smallest half-extent.
	res, ok := Test(box, mgl32.Vec3{0, 0.3, 0}, mesh, mgl32.Vec3{0, 0, 0})
	if !ok {
		t.Fatal("Expected contact for box overlapping floor mesh")
	}
	if !almostEq(res.Depth, 0.2) {
		t.Errorf("Expected depth 0.2, got %g", res.Depth)
	}
	if !vecAlmostEq(res.Normal, mgl32.Vec3{0, 1, 0}) {
		t.Errorf("Expected normal (0, 1, 0), got %v", res.Normal)
	}
}

func TestMeshMeshUnsupported(t *testing.T) {
	a := mustMesh(t, floorTris(5))
	defer a.Mesh.Release()
	b := mustMesh(t, floorTris(5))
	defer b.Mesh.Release()

	if _, ok := Test(a, mgl32.Vec3{}, b, mgl32.Vec3{}); ok {
		t.Error("Expected mesh vs mesh to report no contact")
	}
}

func TestPairSymmetry(t *testing.T) {
	mesh := mustMesh(t, floorTris(5))
	defer mesh.Mesh.Release()

	shapes := []struct {
		name  string
		shape Shape
		pos   mgl32.Vec3
	}{
		{"sphere", mustSphere(t, 0.6), mgl32.Vec3{0, 0.4, 0}},
		{"box", mustBox(t, 0.5, 0.5, 0.5), mgl32.Vec3{0.3, 0.4, 0.1}},
		{"capsule", mustCapsule(t, 0.5, 0.4), mgl32.Vec3{-0.2, 0.6, 0}},
		{"mesh", mesh, mgl32.Vec3{0, 0, 0}},
	}

	for i, a := range shapes {
		for j, b := range shapes {
			if i == j {
				continue
			}
			fwd, okF := Test(a.shape, a.pos, b.shape, b.pos)
			rev, okR := Test(b.shape, b.pos, a.shape, a.pos)
			if okF != okR {
				t.Errorf("%s vs %s: asymmetric contact report %v / %v", a.name, b.name, okF, okR)
				continue
			}
			if !okF {
				continue
			}
			if !almostEq(fwd.Depth, rev.Depth) {
				t.Errorf("%s vs %s: depth %g != reversed depth %g", a.name, b.name, fwd.Depth, rev.Depth)
			}
			if !vecAlmostEq(fwd.Normal, rev.Normal.Mul(-1)) {
				t.Errorf("%s vs %s: normal %v is not the negation of %v", a.name, b.name, fwd.Normal, rev.Normal)
			}
		}
	}
}
