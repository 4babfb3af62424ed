// Package worldfile builds physics worlds from YAML descriptions, so
// test scenes and demos can be tweaked without recompiling.
package worldfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"phys3d/internal/collision"
	"phys3d/internal/physics"
)

// File is the top-level document.
type File struct {
	MaxBodies int       `yaml:"max_bodies"`
	Bodies    []BodyDef `yaml:"bodies"`
}

// ShapeDef describes a collision shape. Kind selects which of the
// remaining fields apply; mesh paths are relative to the world file.
type ShapeDef struct {
	Kind       string     `yaml:"kind"`
	Radius     float32    `yaml:"radius"`
	HalfHeight float32    `yaml:"half_height"`
	Half       [3]float32 `yaml:"half"`
	Mesh       string     `yaml:"mesh"`
}

// BodyDef describes one body. Optional fields are pointers so absent
// keys fall back to defaults (mass 1, half bounce energy, enabled).
// restitution (0..1) and bounce_energy (percent, 0..100) set the same
// coefficient; a body may use one or the other, never both.
type BodyDef struct {
	Name     string     `yaml:"name"`
	Shape    ShapeDef   `yaml:"shape"`
	Position [3]float32 `yaml:"position"`
	Velocity [3]float32 `yaml:"velocity"`

	Mass         *float32 `yaml:"mass"`
	Restitution  *float32 `yaml:"restitution"`
	BounceEnergy *float32 `yaml:"bounce_energy"`
	Gravity      float32  `yaml:"gravity"`
	Friction     float32  `yaml:"friction"`
	Group        *uint32  `yaml:"group"`
	Response     string   `yaml:"response"`
	Enabled      *bool    `yaml:"enabled"`
}

// Load reads a YAML world from r and builds it. Mesh paths resolve
// relative to the process working directory; prefer LoadFile when the
// world comes from disk.
func Load(r io.Reader) (*physics.World, error) {
	return load(r, ".")
}

// LoadFile reads a YAML world file and builds it. Mesh paths resolve
// relative to the file's directory.
func LoadFile(path string) (*physics.World, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("worldfile: %w", err)
	}
	defer f.Close()

	w, err := load(f, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("worldfile: %s: %w", path, err)
	}
	return w, nil
}

func load(r io.Reader, dir string) (*physics.World, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("worldfile: decode: %w", err)
	}
	return file.Build(dir)
}

// Build creates the world. Meshes referenced by several bodies load
// once and are shared.
func (f *File) Build(dir string) (*physics.World, error) {
	w := physics.NewWorld(f.MaxBodies)

	meshes := make(map[string]*collision.ColMesh)
	defer func() {
		// The world retains what it uses; drop the loader references.
		for _, m := range meshes {
			m.Release()
		}
	}()

	for i, def := range f.Bodies {
		cfg, err := def.config(dir, meshes)
		if err != nil {
			return nil, fmt.Errorf("worldfile: body %d (%s): %w", i, def.Name, err)
		}
		if _, err := w.AddBody(cfg); err != nil {
			return nil, fmt.Errorf("worldfile: body %d (%s): %w", i, def.Name, err)
		}
	}
	return w, nil
}

func (d *BodyDef) config(dir string, meshes map[string]*collision.ColMesh) (physics.BodyConfig, error) {
	shape, err := d.Shape.build(dir, meshes)
	if err != nil {
		return physics.BodyConfig{}, err
	}

	cfg := physics.DefaultBody(shape)
	cfg.Name = d.Name
	cfg.Position = d.Position
	cfg.Velocity = d.Velocity
	cfg.Gravity = d.Gravity
	cfg.Friction = d.Friction

	if d.Mass != nil {
		cfg.Mass = *d.Mass
	}
	if d.Restitution != nil && d.BounceEnergy != nil {
		return physics.BodyConfig{}, fmt.Errorf("restitution and bounce_energy are the same coefficient, set only one")
	}
	if d.Restitution != nil {
		cfg.Restitution = *d.Restitution
	}
	if d.BounceEnergy != nil {
		if *d.BounceEnergy < 0 || *d.BounceEnergy > 100 {
			return physics.BodyConfig{}, fmt.Errorf("bounce_energy %g outside [0, 100]", *d.BounceEnergy)
		}
		cfg.Restitution = *d.BounceEnergy / 100
	}
	if d.Group != nil {
		cfg.Mask = *d.Group
	}
	if d.Enabled != nil {
		cfg.Enabled = *d.Enabled
	}
	if d.Response != "" {
		resp, err := parseResponse(d.Response)
		if err != nil {
			return physics.BodyConfig{}, err
		}
		cfg.Response = resp
	}
	return cfg, nil
}

func (s *ShapeDef) build(dir string, meshes map[string]*collision.ColMesh) (collision.Shape, error) {
	switch strings.ToLower(s.Kind) {
	case "sphere":
		return collision.NewSphere(s.Radius)
	case "box":
		return collision.NewBox(s.Half[0], s.Half[1], s.Half[2])
	case "capsule":
		return collision.NewCapsule(s.HalfHeight, s.Radius)
	case "mesh":
		if s.Mesh == "" {
			return collision.Shape{}, fmt.Errorf("mesh shape without a mesh path")
		}
		path := s.Mesh
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		m, ok := meshes[path]
		if !ok {
			var err error
			m, err = collision.LoadColMeshFile(path)
			if err != nil {
				return collision.Shape{}, err
			}
			meshes[path] = m
		}
		return collision.NewMeshShape(m)
	}
	return collision.Shape{}, fmt.Errorf("unknown shape kind %q", s.Kind)
}

func parseResponse(s string) (physics.Response, error) {
	switch strings.ToLower(s) {
	case "nothing":
		return physics.ResponseNothing, nil
	case "stop":
		return physics.ResponseStop, nil
	case "slide":
		return physics.ResponseSlide, nil
	case "bounce":
		return physics.ResponseBounce, nil
	}
	return 0, fmt.Errorf("unknown response %q", s)
}
