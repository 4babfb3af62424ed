package collision

import "github.com/go-gl/mathgl/mgl32"

// Result describes a single narrow-phase contact.
//
// Normal is unit length and points from the second shape toward the
// first (from "other" toward "self"), so pushing the first shape along
// Normal by Depth separates the pair. A Result only exists for Depth
// greater than zero; tests report "no contact" instead of producing a
// zero-depth result.
type Result struct {
	Normal mgl32.Vec3
	Depth  float32
	Point  mgl32.Vec3 // approximate contact point in world space
}
