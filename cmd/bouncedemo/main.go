// Interactive viewer for physics worlds: steps a world at a fixed 60
// ticks per second and draws the bodies with raylib. Pass a world YAML
// file to load it, or run with no arguments for a built-in scene.
package main

import (
	"log"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"phys3d/internal/collision"
	"phys3d/internal/physics"
	"phys3d/internal/worldfile"
)

func main() {
	var (
		w   *physics.World
		err error
	)
	if len(os.Args) > 1 {
		w, err = worldfile.LoadFile(os.Args[1])
		if err != nil {
			log.Fatalf("bouncedemo: %v", err)
		}
	} else {
		w, err = builtinScene()
		if err != nil {
			log.Fatalf("bouncedemo: %v", err)
		}
	}

	rl.InitWindow(1280, 720, "bouncedemo")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	camera := rl.Camera3D{
		Position:   rl.NewVector3(12, 10, 12),
		Target:     rl.NewVector3(0, 2, 0),
		Up:         rl.NewVector3(0, 1, 0),
		Fovy:       45,
		Projection: rl.CameraPerspective,
	}

	paused := false
	for !rl.WindowShouldClose() {
		if rl.IsKeyPressed(rl.KeySpace) {
			paused = !paused
		}
		if !paused || rl.IsKeyPressed(rl.KeyRight) {
			w.Step()
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)
		rl.BeginMode3D(camera)
		rl.DrawGrid(20, 1)
		for _, b := range w.Bodies() {
			drawBody(b)
		}
		rl.EndMode3D()
		rl.DrawFPS(10, 10)
		rl.DrawText("space: pause  right: single step", 10, 36, 18, rl.DarkGray)
		rl.EndDrawing()
	}
}

func drawBody(b *physics.Body) {
	pos := rl.NewVector3(b.Position[0], b.Position[1], b.Position[2])
	color := rl.Maroon
	if !b.Enabled {
		color = rl.Gray
	}

	s := b.Shape()
	switch s.Kind {
	case collision.KindSphere:
		rl.DrawSphere(pos, s.Radius, color)
	case collision.KindBox:
		rl.DrawCube(pos, s.Half[0]*2, s.Half[1]*2, s.Half[2]*2, color)
	case collision.KindCapsule:
		top := rl.NewVector3(b.Position[0], b.Position[1]+s.HalfHeight, b.Position[2])
		bottom := rl.NewVector3(b.Position[0], b.Position[1]-s.HalfHeight, b.Position[2])
		rl.DrawCapsule(bottom, top, s.Radius, 12, 6, color)
	case collision.KindMesh:
		center, half := s.Mesh.Bounds()
		boxPos := rl.NewVector3(b.Position[0]+center[0], b.Position[1]+center[1], b.Position[2]+center[2])
		rl.DrawCubeWires(boxPos, half[0]*2, half[1]*2, half[2]*2, color)
	}
}

// builtinScene drops a few bouncing spheres and a sliding capsule onto
// a static floor box.
func builtinScene() (*physics.World, error) {
	w := physics.NewWorld(16)

	floor, err := collision.NewBox(10, 1, 10)
	if err != nil {
		return nil, err
	}
	floorCfg := physics.DefaultBody(floor)
	floorCfg.Name = "floor"
	floorCfg.Enabled = false
	if _, err := w.AddBody(floorCfg); err != nil {
		return nil, err
	}

	sphere, err := collision.NewSphere(0.5)
	if err != nil {
		return nil, err
	}
	for i := 0; i < 5; i++ {
		cfg := physics.DefaultBody(sphere)
		cfg.Name = "ball"
		cfg.Position = [3]float32{float32(i-2) * 1.5, 5 + float32(i)*0.5, 0}
		cfg.Gravity = 0.01
		cfg.Restitution = 0.8
		if _, err := w.AddBody(cfg); err != nil {
			return nil, err
		}
	}

	capsule, err := collision.NewCapsule(0.6, 0.4)
	if err != nil {
		return nil, err
	}
	capCfg := physics.DefaultBody(capsule)
	capCfg.Name = "slider"
	capCfg.Position = [3]float32{-6, 4, 3}
	capCfg.Velocity = [3]float32{0.05, 0, 0}
	capCfg.Gravity = 0.01
	capCfg.Friction = 0.0005
	capCfg.Response = physics.ResponseSlide
	if _, err := w.AddBody(capCfg); err != nil {
		return nil, err
	}

	return w, nil
}
