package collision

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// epsilon guards divisions by near-zero distances in degenerate
// configurations (coincident centers, contact exactly on a surface).
const epsilon = 1e-4

// Test runs the narrow-phase intersection test for a pair of shapes at
// the given world positions. It reports false when the shapes do not
// overlap, when the penetration depth would not be positive, or when
// the pairing is unsupported (mesh vs mesh). The result normal points
// from b toward a; swapping the arguments negates the normal and
// preserves the depth.
func Test(a Shape, posA mgl32.Vec3, b Shape, posB mgl32.Vec3) (Result, bool) {
	switch {
	case a.Kind == KindSphere && b.Kind == KindSphere:
		return sphereSphere(a.Radius, posA, b.Radius, posB)

	case a.Kind == KindSphere && b.Kind == KindBox:
		return boxSphere(b.Half, posB, a.Radius, posA)
	case a.Kind == KindBox && b.Kind == KindSphere:
		return flip(boxSphere(a.Half, posA, b.Radius, posB))

	case a.Kind == KindBox && b.Kind == KindBox:
		return boxBox(a.Half, posA, b.Half, posB)

	case a.Kind == KindCapsule && b.Kind == KindSphere:
		return capsuleSphere(a, posA, b.Radius, posB)
	case a.Kind == KindSphere && b.Kind == KindCapsule:
		return flip(capsuleSphere(b, posB, a.Radius, posA))

	case a.Kind == KindCapsule && b.Kind == KindBox:
		return capsuleBox(a, posA, b.Half, posB)
	case a.Kind == KindBox && b.Kind == KindCapsule:
		return flip(capsuleBox(b, posB, a.Half, posA))

	case a.Kind == KindCapsule && b.Kind == KindCapsule:
		return capsuleCapsule(a, posA, b, posB)

	case b.Kind == KindMesh && a.Kind != KindMesh && a.Kind != KindNone:
		return shapeMesh(a, posA, b.Mesh, posB)
	case a.Kind == KindMesh && b.Kind != KindMesh && b.Kind != KindNone:
		return flip(shapeMesh(b, posB, a.Mesh, posA))
	}

	// Mesh vs mesh and anything involving KindNone are non-events.
	return Result{}, false
}

func flip(r Result, ok bool) (Result, bool) {
	r.Normal = r.Normal.Mul(-1)
	return r, ok
}

// sphereSphere reports a contact when the center distance is below the
// summed radii. Normal points from b toward a; depth is the radius sum
// minus the center distance.
func sphereSphere(ra float32, posA mgl32.Vec3, rb float32, posB mgl32.Vec3) (Result, bool) {
	d := posA.Sub(posB)
	distSq := d.Dot(d)
	sum := ra + rb
	if distSq >= sum*sum {
		return Result{}, false
	}

	dist := math32.Sqrt(distSq)
	var r Result
	if dist > 0 {
		r.Normal = d.Mul(1 / dist)
		r.Depth = sum - dist
	} else {
		// Centers coincide exactly; any direction separates.
		r.Normal = mgl32.Vec3{0, 1, 0}
		r.Depth = sum
	}
	r.Point = posB.Add(r.Normal.Mul(rb))
	return r, true
}

// boxBox is the axis-aligned overlap test. The minimum-overlap axis
// becomes the contact normal (pointing from b toward a).
func boxBox(halfA, posA, halfB, posB mgl32.Vec3) (Result, bool) {
	d := posA.Sub(posB)

	ox := halfA[0] + halfB[0] - math32.Abs(d[0])
	if ox <= 0 {
		return Result{}, false
	}
	oy := halfA[1] + halfB[1] - math32.Abs(d[1])
	if oy <= 0 {
		return Result{}, false
	}
	oz := halfA[2] + halfB[2] - math32.Abs(d[2])
	if oz <= 0 {
		return Result{}, false
	}

	var r Result
	switch {
	case ox <= oy && ox <= oz:
		r.Depth = ox
		r.Normal = mgl32.Vec3{sign(d[0]), 0, 0}
	case oy <= oz:
		r.Depth = oy
		r.Normal = mgl32.Vec3{0, sign(d[1]), 0}
	default:
		r.Depth = oz
		r.Normal = mgl32.Vec3{0, 0, sign(d[2])}
	}
	r.Point = posA.Add(posB).Mul(0.5)
	return r, true
}

// boxSphere clamps the sphere center to the box to find the closest
// point. Normal points from the box toward the sphere.
func boxSphere(half, posBox mgl32.Vec3, radius float32, posSphere mgl32.Vec3) (Result, bool) {
	closest := mgl32.Vec3{
		clamp(posSphere[0], posBox[0]-half[0], posBox[0]+half[0]),
		clamp(posSphere[1], posBox[1]-half[1], posBox[1]+half[1]),
		clamp(posSphere[2], posBox[2]-half[2], posBox[2]+half[2]),
	}

	d := posSphere.Sub(closest)
	distSq := d.Dot(d)
	if distSq >= radius*radius {
		return Result{}, false
	}

	var r Result
	r.Point = closest
	dist := math32.Sqrt(distSq)
	if dist > 0 {
		r.Depth = radius - dist
		r.Normal = d.Mul(1 / dist)
		return r, true
	}

	// Sphere center is inside the box: push out along the face with the
	// smallest separation.
	minD := float32(math32.MaxFloat32)
	for axis := 0; axis < 3; axis++ {
		pos := posBox[axis] + half[axis] - posSphere[axis]
		if pos < minD {
			minD = pos
			r.Normal = mgl32.Vec3{}
			r.Normal[axis] = 1
		}
		neg := posSphere[axis] - (posBox[axis] - half[axis])
		if neg < minD {
			minD = neg
			r.Normal = mgl32.Vec3{}
			r.Normal[axis] = -1
		}
	}
	r.Depth = minD + radius
	return r, true
}

// segmentPointY returns the point on a capsule's vertical center
// segment closest to the target.
func segmentPointY(pos mgl32.Vec3, halfHeight float32, target mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{pos[0], clamp(target[1], pos[1]-halfHeight, pos[1]+halfHeight), pos[2]}
}

// capsuleSphere reduces to sphere vs sphere from the closest point on
// the capsule segment. Normal points from the sphere toward the
// capsule.
func capsuleSphere(c Shape, posCap mgl32.Vec3, radius float32, posSphere mgl32.Vec3) (Result, bool) {
	seg := segmentPointY(posCap, c.HalfHeight, posSphere)
	return sphereSphere(c.Radius, seg, radius, posSphere)
}

// capsuleBox reduces to sphere vs box from the closest segment point.
// Normal points from the box toward the capsule.
func capsuleBox(c Shape, posCap, half, posBox mgl32.Vec3) (Result, bool) {
	seg := segmentPointY(posCap, c.HalfHeight, posBox)
	return boxSphere(half, posBox, c.Radius, seg)
}

// capsuleCapsule finds the closest points between two vertical
// segments by alternating clamps, then tests the swept spheres.
// Normal points from b toward a.
func capsuleCapsule(a Shape, posA mgl32.Vec3, b Shape, posB mgl32.Vec3) (Result, bool) {
	// Both segments are vertical, so closest points follow from
	// clamping the Y coordinates against each other.
	ay := clamp(posB[1], posA[1]-a.HalfHeight, posA[1]+a.HalfHeight)
	by := clamp(ay, posB[1]-b.HalfHeight, posB[1]+b.HalfHeight)
	ay = clamp(by, posA[1]-a.HalfHeight, posA[1]+a.HalfHeight)

	closestA := mgl32.Vec3{posA[0], ay, posA[2]}
	closestB := mgl32.Vec3{posB[0], by, posB[2]}
	return sphereSphere(a.Radius, closestA, b.Radius, closestB)
}

// shapeMesh tests a primitive shape against a triangle mesh: reject
// with the whole-mesh bounding box, collect BVH candidates, and keep
// the deepest per-triangle contact. Normal points from the mesh toward
// the primitive.
func shapeMesh(s Shape, pos mgl32.Vec3, mesh *ColMesh, meshPos mgl32.Vec3) (Result, bool) {
	if mesh == nil || mesh.Len() == 0 {
		return Result{}, false
	}

	// For a static mesh the triangles are in local space and the query
	// shape is offset instead; a dynamic mesh is already in world space.
	local := pos
	if !mesh.dynamic {
		local = pos.Sub(meshPos)
	}

	half := s.halfExtents()
	center, mhalf := mesh.Bounds()
	d := local.Sub(center)
	sum := half.Add(mhalf)
	if math32.Abs(d[0]) >= sum[0] || math32.Abs(d[1]) >= sum[1] || math32.Abs(d[2]) >= sum[2] {
		return Result{}, false
	}

	// A box is approximated by a sphere of its smallest half-extent; a
	// capsule by a sphere at the segment point nearest each triangle.
	radius := s.Radius
	if s.Kind == KindBox {
		radius = math32.Min(s.Half[0], math32.Min(s.Half[1], s.Half[2]))
	}

	queryHalf := mgl32.Vec3{radius, radius, radius}
	if s.Kind == KindCapsule {
		queryHalf[1] += s.HalfHeight
	}
	box := aabb{Min: local.Sub(queryHalf), Max: local.Add(queryHalf)}
	candidates := mesh.root.query(box, nil)

	tris := mesh.triangles()
	var best Result
	hit := false
	for _, idx := range candidates {
		tri := tris[idx]
		probe := local
		if s.Kind == KindCapsule {
			probe = segmentPointY(local, s.HalfHeight, tri.centroid())
		}
		if r, ok := sphereTriangle(probe, radius, tri); ok && r.Depth > best.Depth {
			best = r
			hit = true
		}
	}
	if !hit {
		return Result{}, false
	}
	if !mesh.dynamic {
		best.Point = best.Point.Add(meshPos)
	}
	return best, true
}

func sign(v float32) float32 {
	if v >= 0 {
		return 1
	}
	return -1
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
