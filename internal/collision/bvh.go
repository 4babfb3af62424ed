package collision

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Bounding volume hierarchy over triangle indices, used to narrow a
// mesh test down to the triangles near the query shape.

const (
	bvhLeafSize = 4
	bvhMaxDepth = 20
)

type aabb struct {
	Min, Max mgl32.Vec3
}

func (a aabb) intersects(b aabb) bool {
	return a.Min[0] <= b.Max[0] && a.Max[0] >= b.Min[0] &&
		a.Min[1] <= b.Max[1] && a.Max[1] >= b.Min[1] &&
		a.Min[2] <= b.Max[2] && a.Max[2] >= b.Min[2]
}

type bvhNode struct {
	bounds aabb
	left   *bvhNode
	right  *bvhNode
	tris   []int // triangle indices, leaf nodes only
}

func buildBVH(tris []Triangle) *bvhNode {
	if len(tris) == 0 {
		return nil
	}
	indices := make([]int, len(tris))
	for i := range indices {
		indices[i] = i
	}
	return buildBVHNode(tris, indices, 0)
}

func buildBVHNode(tris []Triangle, indices []int, depth int) *bvhNode {
	node := &bvhNode{bounds: indexBounds(tris, indices)}

	if len(indices) <= bvhLeafSize || depth > bvhMaxDepth {
		node.tris = indices
		return node
	}

	// Split on the longest axis around the mean centroid.
	size := node.bounds.Max.Sub(node.bounds.Min)
	axis := 0
	if size[1] > size[0] {
		axis = 1
	}
	if size[2] > size[axis] {
		axis = 2
	}

	mid := partitionTriangles(tris, indices, axis)
	if mid == 0 || mid == len(indices) {
		// Degenerate split, keep as leaf.
		node.tris = indices
		return node
	}

	node.left = buildBVHNode(tris, indices[:mid], depth+1)
	node.right = buildBVHNode(tris, indices[mid:], depth+1)
	return node
}

func indexBounds(tris []Triangle, indices []int) aabb {
	b := aabb{
		Min: mgl32.Vec3{math32.MaxFloat32, math32.MaxFloat32, math32.MaxFloat32},
		Max: mgl32.Vec3{-math32.MaxFloat32, -math32.MaxFloat32, -math32.MaxFloat32},
	}
	for _, idx := range indices {
		t := &tris[idx]
		for _, v := range [3]mgl32.Vec3{t.V0, t.V1, t.V2} {
			for i := 0; i < 3; i++ {
				if v[i] < b.Min[i] {
					b.Min[i] = v[i]
				}
				if v[i] > b.Max[i] {
					b.Max[i] = v[i]
				}
			}
		}
	}
	return b
}

func partitionTriangles(tris []Triangle, indices []int, axis int) int {
	center := float32(0)
	for _, idx := range indices {
		center += tris[idx].centroid()[axis]
	}
	center /= float32(len(indices))

	left := 0
	right := len(indices) - 1
	for left <= right {
		if tris[indices[left]].centroid()[axis] < center {
			left++
		} else {
			indices[left], indices[right] = indices[right], indices[left]
			right--
		}
	}
	return left
}

// query appends to dst the indices of all triangles whose bounds
// intersect the query box.
func (n *bvhNode) query(box aabb, dst []int) []int {
	if n == nil || !n.bounds.intersects(box) {
		return dst
	}
	if n.tris != nil {
		return append(dst, n.tris...)
	}
	dst = n.left.query(box, dst)
	return n.right.query(box, dst)
}
