package bonecol

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Joint is one joint's transform in a keyframe.
type Joint struct {
	Pos mgl32.Vec3
	Rot mgl32.Quat
}

// Clip is a baked skeletal animation: a fixed set of joints sampled at
// regular keyframes. Posing between keyframes interpolates, so bone
// collision follows the animation smoothly instead of snapping.
type Clip struct {
	frames [][]Joint
	joints int
}

// NewClip builds a clip from keyframes. Every frame must pose the same
// number of joints.
func NewClip(frames [][]Joint) (*Clip, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("bonecol: clip has no frames")
	}
	joints := len(frames[0])
	for i, f := range frames {
		if len(f) != joints {
			return nil, fmt.Errorf("bonecol: frame %d has %d joints, frame 0 has %d", i, len(f), joints)
		}
	}
	return &Clip{frames: frames, joints: joints}, nil
}

// Frames returns the number of keyframes.
func (c *Clip) Frames() int { return len(c.frames) }

// Joints returns the number of joints per frame.
func (c *Clip) Joints() int { return c.joints }

// Pose samples the clip at a fractional frame, wrapping around the
// clip length, and returns it as a PoseSource. Positions lerp and
// rotations nlerp between the surrounding keyframes.
func (c *Clip) Pose(frame float32) PoseSource {
	n := float32(len(c.frames))
	frame = math32.Mod(frame, n)
	if frame < 0 {
		frame += n
	}

	i := int(frame)
	t := frame - float32(i)
	j := (i + 1) % len(c.frames)
	return &clipPose{a: c.frames[i], b: c.frames[j], t: t}
}

type clipPose struct {
	a, b []Joint
	t    float32
}

// JointTransform interpolates one joint between the two keyframes. An
// out-of-range joint index poses at the origin with no rotation.
func (p *clipPose) JointTransform(joint int) (mgl32.Vec3, mgl32.Quat) {
	if joint < 0 || joint >= len(p.a) {
		return mgl32.Vec3{}, mgl32.QuatIdent()
	}
	a, b := p.a[joint], p.b[joint]
	pos := a.Pos.Add(b.Pos.Sub(a.Pos).Mul(p.t))
	rot := mgl32.QuatNlerp(a.Rot, b.Rot, p.t)
	return pos, rot
}
