package physics

import (
	"github.com/go-gl/mathgl/mgl32"

	"phys3d/internal/collision"
)

// MinBounceSpeed is the rebound speed below which a body under gravity
// settles instead of bouncing forever.
const MinBounceSpeed = 0.01

// resolvePair handles one contact. Callbacks fire first, each side
// seeing the normal pointing toward itself, then positions and
// velocities are corrected. A body removed by a callback takes no part
// in the correction.
func (w *World) resolvePair(a, b *Body, res collision.Result) {
	flipped := res
	flipped.Normal = res.Normal.Mul(-1)

	if a.OnCollision != nil {
		a.OnCollision(a, b, res)
	}
	if b.OnCollision != nil {
		b.OnCollision(b, a, flipped)
	}
	if a.dead || b.dead {
		return
	}

	moveA := a.movable()
	moveB := b.movable()
	switch {
	case moveA && moveB:
		resolveDynamicPair(a, b, res)
	case moveA:
		resolveStatic(a, res.Normal, res.Depth)
	case moveB:
		resolveStatic(b, flipped.Normal, res.Depth)
	}
}

// movable reports whether resolution may change this body. Disabled
// bodies are obstacles, mesh bodies anchor their geometry, and
// ResponseNothing opts out of correction entirely.
func (b *Body) movable() bool {
	return b.Enabled && b.Response != ResponseNothing && b.shape.Kind != collision.KindMesh
}

// resolveStatic pushes a body out of an immovable obstacle and applies
// its velocity response. The normal points toward the body.
func resolveStatic(b *Body, normal mgl32.Vec3, depth float32) {
	b.SetPosition(b.Position.Add(normal.Mul(depth)))
	b.applyVelocityResponse(normal, b.Restitution)
}

// resolveDynamicPair separates two moving bodies, heavier one moving
// less, and exchanges velocity. When both bounce, a single impulse
// conserves momentum; otherwise each body applies its own response.
func resolveDynamicPair(a, b *Body, res collision.Result) {
	total := a.Mass + b.Mass
	a.SetPosition(a.Position.Add(res.Normal.Mul(res.Depth * b.Mass / total)))
	b.SetPosition(b.Position.Sub(res.Normal.Mul(res.Depth * a.Mass / total)))

	if a.Response == ResponseBounce && b.Response == ResponseBounce {
		rel := a.Velocity.Sub(b.Velocity)
		vn := rel.Dot(res.Normal)
		if vn >= 0 {
			return
		}
		e := a.Restitution
		if b.Restitution < e {
			e = b.Restitution
		}
		j := -(1 + e) * vn / (1/a.Mass + 1/b.Mass)
		a.Velocity = a.Velocity.Add(res.Normal.Mul(j / a.Mass))
		b.Velocity = b.Velocity.Sub(res.Normal.Mul(j / b.Mass))
		return
	}

	e := a.Restitution
	if b.Restitution < e {
		e = b.Restitution
	}
	a.applyVelocityResponse(res.Normal, e)
	b.applyVelocityResponse(res.Normal.Mul(-1), e)
}

// applyVelocityResponse adjusts the body velocity for a contact whose
// normal points toward the body, using the given restitution.
func (b *Body) applyVelocityResponse(normal mgl32.Vec3, restitution float32) {
	switch b.Response {
	case ResponseStop:
		b.Velocity = mgl32.Vec3{}
	case ResponseSlide:
		if vn := b.Velocity.Dot(normal); vn < 0 {
			b.Velocity = b.Velocity.Sub(normal.Mul(vn))
		}
	case ResponseBounce:
		vn := b.Velocity.Dot(normal)
		if vn >= 0 {
			return
		}
		b.Velocity = b.Velocity.Sub(normal.Mul((1 + restitution) * vn))
		// Under gravity a shrinking rebound eventually settles.
		if b.Gravity != 0 {
			if out := b.Velocity.Dot(normal); out < MinBounceSpeed {
				b.Velocity = b.Velocity.Sub(normal.Mul(out))
			}
		}
	}
}
