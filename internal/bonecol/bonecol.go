// Package bonecol queries collision shapes attached to the joints of
// an animated skeleton. It does not simulate anything: a caller poses
// the skeleton, then asks which bone a probe shape hits, typically for
// hit detection against an animated character.
package bonecol

import (
	"github.com/go-gl/mathgl/mgl32"

	"phys3d/internal/collision"
)

// NoBone is the bone index reported when nothing is hit.
const NoBone = -1

// PoseSource provides the current world-ignorant pose of a skeleton:
// per-joint translation and rotation in model space.
type PoseSource interface {
	JointTransform(joint int) (pos mgl32.Vec3, rot mgl32.Quat)
}

// BoneShape attaches a collision shape to a skeleton joint at a local
// offset. A shape of KindNone marks a bone with no collision.
type BoneShape struct {
	Shape  collision.Shape
	Offset mgl32.Vec3
	Joint  int
}

// Data is the bone collision set for one model, indexed by bone.
type Data struct {
	Bones []BoneShape
}

// Hit is a contact with a specific bone. The embedded result normal
// points from the bone shape toward the probe.
type Hit struct {
	collision.Result
	Bone int
}

// WorldShape places a bone shape in world space for a posed model at
// modelPos with uniform scale. The shape dimensions scale with the
// model; rotation applies to the joint offset only, since the
// primitive shapes are symmetric enough for hit detection.
func WorldShape(pose PoseSource, modelPos mgl32.Vec3, modelScale float32, bone BoneShape) (collision.Shape, mgl32.Vec3) {
	jointPos, jointRot := pose.JointTransform(bone.Joint)

	s := bone.Shape
	s.Radius *= modelScale
	s.HalfHeight *= modelScale
	s.Half = s.Half.Mul(modelScale)

	local := jointPos.Add(jointRot.Rotate(bone.Offset))
	return s, modelPos.Add(local.Mul(modelScale))
}

// Test probes every bone of a posed model and returns the deepest
// contact. The second return is false when no bone is hit; the hit
// bone index is otherwise within the data set, never NoBone.
func Test(pose PoseSource, modelPos mgl32.Vec3, modelScale float32, d *Data, probe collision.Shape, probePos mgl32.Vec3) (Hit, bool) {
	best := Hit{Bone: NoBone}
	for i, bone := range d.Bones {
		if bone.Shape.Kind == collision.KindNone {
			continue
		}
		shape, pos := WorldShape(pose, modelPos, modelScale, bone)
		res, ok := collision.Test(probe, probePos, shape, pos)
		if !ok {
			continue
		}
		if best.Bone == NoBone || res.Depth > best.Depth {
			best = Hit{Result: res, Bone: i}
		}
	}
	return best, best.Bone != NoBone
}
