package collision

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Triangle is a single collision triangle with a precomputed unit
// normal.
type Triangle struct {
	V0, V1, V2 mgl32.Vec3
	Normal     mgl32.Vec3
}

// NewTriangle builds a triangle and computes its face normal from the
// winding order of the vertices.
func NewTriangle(v0, v1, v2 mgl32.Vec3) Triangle {
	n := v1.Sub(v0).Cross(v2.Sub(v0))
	if l := n.Len(); l > 0 {
		n = n.Mul(1 / l)
	}
	return Triangle{V0: v0, V1: v1, V2: v2, Normal: n}
}

func (t Triangle) centroid() mgl32.Vec3 {
	return t.V0.Add(t.V1).Add(t.V2).Mul(1.0 / 3.0)
}

// closestPointOnTriangle finds the closest point on a triangle to
// point p (Ericson's barycentric region walk).
func closestPointOnTriangle(p, a, b, c mgl32.Vec3) mgl32.Vec3 {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)

	// Vertex region outside A
	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	// Vertex region outside B
	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	// Edge region AB
	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return a.Add(ab.Mul(v))
	}

	// Vertex region outside C
	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	// Edge region AC
	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return a.Add(ac.Mul(w))
	}

	// Edge region BC
	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.Add(c.Sub(b).Mul(w))
	}

	// Face region
	denom := 1.0 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return a.Add(ab.Mul(v)).Add(ac.Mul(w))
}

// sphereTriangle tests a sphere against one triangle. The returned
// normal points from the triangle toward the sphere center.
func sphereTriangle(center mgl32.Vec3, radius float32, tri Triangle) (Result, bool) {
	closest := closestPointOnTriangle(center, tri.V0, tri.V1, tri.V2)

	diff := center.Sub(closest)
	distSq := diff.Dot(diff)
	if distSq >= radius*radius {
		return Result{}, false
	}

	dist := math32.Sqrt(distSq)
	if dist < epsilon {
		// Center sits on the triangle; push along the face normal.
		return Result{Normal: tri.Normal, Depth: radius, Point: closest}, true
	}
	return Result{
		Normal: diff.Mul(1 / dist),
		Depth:  radius - dist,
		Point:  closest,
	}, true
}
