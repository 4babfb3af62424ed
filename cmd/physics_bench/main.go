// Benchmark for world stepping at various body counts
package main

import (
	"fmt"
	"math/rand"
	"time"

	"phys3d/internal/collision"
	"phys3d/internal/physics"
)

func main() {
	// Test various body counts
	testCounts := []int{16, 64, 256, 1024, 4096}

	fmt.Printf("%6s %12s %10s\n", "bodies", "step", "contacts")
	for _, count := range testCounts {
		benchStep(count)
	}
}

func benchStep(count int) {
	rng := rand.New(rand.NewSource(42)) // Consistent results

	// Spawn in a cube, size scales with count to keep density reasonable
	spawnSize := float32(50.0) + float32(count)/100.0

	w := physics.NewWorld(count)
	contacts := 0
	for i := 0; i < count; i++ {
		sphere, err := collision.NewSphere(0.5 + rng.Float32()*0.5)
		if err != nil {
			panic(err)
		}
		cfg := physics.DefaultBody(sphere)
		cfg.Name = fmt.Sprintf("sphere-%d", i)
		cfg.Position = [3]float32{
			rng.Float32()*spawnSize - spawnSize/2,
			rng.Float32()*spawnSize - spawnSize/2,
			rng.Float32()*spawnSize - spawnSize/2,
		}
		cfg.Velocity = [3]float32{
			rng.Float32()*0.2 - 0.1,
			rng.Float32()*0.2 - 0.1,
			rng.Float32()*0.2 - 0.1,
		}
		cfg.OnCollision = func(self, other *physics.Body, res collision.Result) {
			contacts++
		}
		if _, err := w.AddBody(cfg); err != nil {
			panic(err)
		}
	}

	// Warm up
	w.Step()

	const iterations = 10
	contacts = 0
	start := time.Now()
	for i := 0; i < iterations; i++ {
		w.Step()
	}
	elapsed := time.Since(start) / iterations

	fmt.Printf("%6d %12s %10d\n", count, elapsed, contacts/iterations)
}
