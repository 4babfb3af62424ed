package physics

import (
	"errors"
	"fmt"
	"log"

	"phys3d/internal/collision"
)

// DefaultMaxBodies is the world capacity used when NewWorld is given a
// non-positive limit.
const DefaultMaxBodies = 64

var (
	// ErrWorldFull reports that the world is at its body capacity.
	ErrWorldFull = errors.New("physics: world is full")
	// ErrMeshPair reports an attempt to create two mesh bodies whose
	// groups overlap. Mesh-mesh contacts are not supported.
	ErrMeshPair = errors.New("physics: mesh body would collide with another mesh body")
)

// World steps a set of bodies with a fixed tick: integrate velocities,
// then test and resolve every interacting pair. Bodies are processed
// in creation order, so a simulation replayed from the same initial
// state produces identical results.
//
// A World is not safe for concurrent use.
type World struct {
	bodies    []*Body
	maxBodies int
	nextID    uint64

	stepping bool
	pending  []*Body // removals requested during Step

	meshPairWarned map[[2]uint64]bool
}

// NewWorld creates an empty world holding at most maxBodies bodies.
// Non-positive values fall back to DefaultMaxBodies.
func NewWorld(maxBodies int) *World {
	if maxBodies <= 0 {
		maxBodies = DefaultMaxBodies
	}
	return &World{
		bodies:         make([]*Body, 0, maxBodies),
		maxBodies:      maxBodies,
		meshPairWarned: make(map[[2]uint64]bool),
	}
}

// Len returns the number of bodies in the world.
func (w *World) Len() int { return len(w.bodies) }

// Bodies returns the live bodies in creation order. The slice is
// shared; do not modify it.
func (w *World) Bodies() []*Body { return w.bodies }

// AddBody validates the config and adds a body to the world. The shape
// must have a kind, the mass must be positive and restitution within
// [0, 1]. A mesh body is rejected when its group mask overlaps an
// existing mesh body, since mesh-mesh contacts are not supported. Mesh
// shapes are retained; the world drops its reference on removal.
func (w *World) AddBody(cfg BodyConfig) (*Body, error) {
	if len(w.bodies) >= w.maxBodies {
		return nil, ErrWorldFull
	}
	if cfg.Shape.Kind == collision.KindNone {
		return nil, fmt.Errorf("physics: body %q: shape has no kind", cfg.Name)
	}
	if cfg.Mass <= 0 {
		return nil, fmt.Errorf("physics: body %q: mass %g is not positive", cfg.Name, cfg.Mass)
	}
	if cfg.Restitution < 0 || cfg.Restitution > 1 {
		return nil, fmt.Errorf("physics: body %q: restitution %g outside [0, 1]", cfg.Name, cfg.Restitution)
	}
	if cfg.Friction < 0 {
		return nil, fmt.Errorf("physics: body %q: friction %g is negative", cfg.Name, cfg.Friction)
	}
	if cfg.Shape.Kind == collision.KindMesh {
		if cfg.Shape.Mesh == nil || cfg.Shape.Mesh.Len() == 0 {
			return nil, fmt.Errorf("physics: body %q: mesh shape without geometry", cfg.Name)
		}
		if err := w.checkMeshPair(cfg.Mask, nil); err != nil {
			return nil, fmt.Errorf("physics: body %q: %w", cfg.Name, err)
		}
		cfg.Shape.Mesh.Retain()
	}

	w.nextID++
	b := &Body{world: w, id: w.nextID, shape: cfg.Shape}
	b.applyConfig(cfg)
	w.bodies = append(w.bodies, b)
	if b.Target != nil {
		b.Target.SetPosition(b.Position)
	}
	return b, nil
}

// RemoveBody takes a body out of the world and releases its mesh
// reference, if any. Safe to call from a collision callback: during a
// step the removal is deferred until the step finishes, and the body
// takes no further part in it.
func (w *World) RemoveBody(b *Body) {
	if b == nil || b.world != w || b.dead {
		return
	}
	b.dead = true
	if w.stepping {
		w.pending = append(w.pending, b)
		return
	}
	w.removeNow(b)
}

func (w *World) removeNow(b *Body) {
	for i, other := range w.bodies {
		if other == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}
	if b.shape.Kind == collision.KindMesh {
		b.shape.Mesh.Release()
	}
	b.world = nil
	b.shape = collision.Shape{}
}

// checkMeshPair reports ErrMeshPair if a mesh shape with the given
// mask would pair with an existing mesh body other than skip.
func (w *World) checkMeshPair(mask uint32, skip *Body) error {
	for _, other := range w.bodies {
		if other == skip || other.dead {
			continue
		}
		if other.shape.Kind == collision.KindMesh && other.Mask&mask != 0 {
			return fmt.Errorf("%w (group overlap with %q)", ErrMeshPair, other.Name)
		}
	}
	return nil
}

// Step advances the simulation one fixed tick. Enabled bodies first
// integrate gravity and velocity, then every pair sharing a group bit
// is tested and resolved in creation order. Disabled bodies never move
// but still obstruct enabled ones; two disabled bodies are skipped.
// Friction damps each enabled body's speed after resolution.
func (w *World) Step() {
	w.stepping = true

	for _, b := range w.bodies {
		if !b.Enabled || b.dead {
			continue
		}
		b.Velocity[1] -= b.Gravity
		b.SetPosition(b.Position.Add(b.Velocity))
	}

	for i := 0; i < len(w.bodies); i++ {
		a := w.bodies[i]
		if a.dead {
			continue
		}
		for j := i + 1; j < len(w.bodies); j++ {
			b := w.bodies[j]
			if b.dead {
				continue
			}
			if !a.Enabled && !b.Enabled {
				continue
			}
			if a.Mask&b.Mask == 0 {
				continue
			}
			if a.shape.Kind == collision.KindMesh && b.shape.Kind == collision.KindMesh {
				// Masks can be edited to form this pair after AddBody.
				w.warnMeshPair(a, b)
				continue
			}
			res, ok := collision.Test(a.shape, a.Position, b.shape, b.Position)
			if !ok {
				continue
			}
			w.resolvePair(a, b, res)
		}
	}

	for _, b := range w.bodies {
		if b.Enabled && !b.dead && b.Friction > 0 {
			b.applyFriction()
		}
	}

	w.stepping = false
	for _, b := range w.pending {
		w.removeNow(b)
	}
	w.pending = w.pending[:0]
}

func (w *World) warnMeshPair(a, b *Body) {
	key := [2]uint64{a.id, b.id}
	if w.meshPairWarned[key] {
		return
	}
	w.meshPairWarned[key] = true
	log.Printf("Physics: skipping unsupported mesh-mesh pair %q / %q", a.Name, b.Name)
}
