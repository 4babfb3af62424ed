package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"phys3d/internal/collision"
)

// Transform is the hook a body uses to drive an external object (a
// render node, a game entity). When a body has a Target, the world
// writes the body position through it after every change.
type Transform interface {
	Position() mgl32.Vec3
	SetPosition(mgl32.Vec3)
}

// Response selects what happens to a body's velocity when it collides.
type Response int

const (
	// ResponseNothing detects and reports contacts but leaves position
	// and velocity alone.
	ResponseNothing Response = iota
	// ResponseStop zeroes the velocity on contact.
	ResponseStop
	// ResponseSlide removes the velocity component into the contact,
	// keeping tangential motion.
	ResponseSlide
	// ResponseBounce reflects the velocity component into the contact,
	// scaled by restitution.
	ResponseBounce
)

func (r Response) String() string {
	switch r {
	case ResponseNothing:
		return "nothing"
	case ResponseStop:
		return "stop"
	case ResponseSlide:
		return "slide"
	case ResponseBounce:
		return "bounce"
	}
	return fmt.Sprintf("Response(%d)", int(r))
}

// Callback is invoked for each contact a body takes part in. The
// result normal points from other toward self.
type Callback func(self, other *Body, res collision.Result)

// BodyConfig describes a body to add to a world. Zero values are
// meaningful (zero gravity, response nothing, group 0 collides with
// nothing), so use DefaultBody for the common starting point.
type BodyConfig struct {
	Name  string
	Shape collision.Shape

	Position mgl32.Vec3
	Velocity mgl32.Vec3

	// Mass must be positive. It weighs pushout and impulse exchange
	// between two moving bodies.
	Mass float32

	// Restitution is the fraction of approach speed kept on a bounce,
	// in [0, 1].
	Restitution float32

	// Gravity is subtracted from the Y velocity every tick.
	Gravity float32

	// Friction is subtracted from the speed magnitude every tick,
	// preserving direction; a body slower than its friction stops.
	// Zero disables damping. Must not be negative.
	Friction float32

	// Mask is the collision group bitmask. Two bodies interact only if
	// their masks share a bit.
	Mask uint32

	Response Response

	// Enabled bodies move and resolve; disabled bodies never move but
	// still obstruct enabled ones.
	Enabled bool

	OnCollision Callback

	// Target, when set, mirrors the body position to an external
	// transform.
	Target Transform
}

// DefaultBody returns a config for a unit-mass enabled body with half
// its bounce energy kept, in group 1, with no gravity.
func DefaultBody(shape collision.Shape) BodyConfig {
	return BodyConfig{
		Shape:       shape,
		Mass:        1,
		Restitution: 0.5,
		Mask:        1,
		Response:    ResponseBounce,
		Enabled:     true,
	}
}

// Body is a simulated object owned by a World. Exported fields may be
// set freely between steps; the shape is managed through SetShape so
// mesh reference counts stay balanced.
type Body struct {
	world *World
	id    uint64
	shape collision.Shape
	dead  bool

	Name     string
	Position mgl32.Vec3
	Velocity mgl32.Vec3

	Mass        float32
	Restitution float32
	Gravity     float32
	Friction    float32
	Mask        uint32
	Response    Response
	Enabled     bool

	OnCollision Callback
	Target      Transform
}

// ID returns the world-unique body id.
func (b *Body) ID() uint64 { return b.id }

// Shape returns the body's collision shape.
func (b *Body) Shape() collision.Shape { return b.shape }

// SetShape swaps the body's collision shape. Mesh shapes are retained
// by the body and released when replaced or when the body is removed.
// Swapping to a mesh shape is rejected if it would form a mesh-mesh
// pair with another body in the world.
func (b *Body) SetShape(s collision.Shape) error {
	if s.Kind == collision.KindNone {
		return fmt.Errorf("physics: body %q: shape has no kind", b.Name)
	}
	if s.Kind == collision.KindMesh && b.world != nil {
		if err := b.world.checkMeshPair(b.Mask, b); err != nil {
			return err
		}
	}
	if s.Kind == collision.KindMesh {
		s.Mesh.Retain()
	}
	if b.shape.Kind == collision.KindMesh {
		b.shape.Mesh.Release()
	}
	b.shape = s
	return nil
}

// SetBounceEnergy sets restitution from a percentage of kinetic energy
// kept per bounce, clamped to [0, 100].
func (b *Body) SetBounceEnergy(percent float32) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	b.Restitution = percent / 100
}

// SetPosition moves the body and mirrors the new position to the
// target transform, if any.
func (b *Body) SetPosition(pos mgl32.Vec3) {
	b.Position = pos
	if b.Target != nil {
		b.Target.SetPosition(pos)
	}
}

// applyFriction shortens the velocity by the friction amount along its
// own direction, stopping the body once it is slower than that.
func (b *Body) applyFriction() {
	speed := b.Velocity.Len()
	if speed <= b.Friction {
		b.Velocity = mgl32.Vec3{}
		return
	}
	b.Velocity = b.Velocity.Mul((speed - b.Friction) / speed)
}

func (b *Body) applyConfig(cfg BodyConfig) {
	b.Name = cfg.Name
	b.Position = cfg.Position
	b.Velocity = cfg.Velocity
	b.Mass = cfg.Mass
	b.Restitution = cfg.Restitution
	b.Gravity = cfg.Gravity
	b.Friction = cfg.Friction
	b.Mask = cfg.Mask
	b.Response = cfg.Response
	b.Enabled = cfg.Enabled
	b.OnCollision = cfg.OnCollision
	b.Target = cfg.Target
}
