package collision

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl32"
)

// The .colmesh container: a fixed little-endian header followed by one
// record per triangle (three vertices plus the face normal, twelve
// float32 each). The header carries the mesh bounding box so tools can
// inspect a file without walking the triangles; the loader recomputes
// it anyway.

const (
	colMeshMagic   = 0x4D4C4F43 // "COLM"
	colMeshVersion = 1
)

type colMeshHeader struct {
	Magic   uint32
	Version uint32
	Count   uint32
	Flags   uint32
	Min     [3]float32
	Max     [3]float32
}

type colMeshTriangle struct {
	V0, V1, V2 [3]float32
	Normal     [3]float32
}

// LoadColMesh reads a .colmesh stream. The returned mesh has one
// reference owned by the caller.
func LoadColMesh(r io.Reader) (*ColMesh, error) {
	var hdr colMeshHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("colmesh: read header: %w", err)
	}
	if hdr.Magic != colMeshMagic {
		return nil, fmt.Errorf("colmesh: bad magic 0x%08X", hdr.Magic)
	}
	if hdr.Version != colMeshVersion {
		return nil, fmt.Errorf("colmesh: unsupported version %d", hdr.Version)
	}
	if hdr.Count == 0 {
		return nil, fmt.Errorf("colmesh: file has no triangles")
	}

	// The count is untrusted input: read in bounded chunks so a corrupt
	// header fails with a read error instead of a giant allocation.
	const chunk = 4096
	remaining := int(hdr.Count)
	tris := make([]Triangle, 0, min(remaining, chunk))
	raw := make([]colMeshTriangle, min(remaining, chunk))
	for remaining > 0 {
		batch := raw[:min(remaining, chunk)]
		if err := binary.Read(r, binary.LittleEndian, batch); err != nil {
			return nil, fmt.Errorf("colmesh: read %d triangles: %w", hdr.Count, err)
		}
		for _, t := range batch {
			tris = append(tris, Triangle{
				V0:     mgl32.Vec3(t.V0),
				V1:     mgl32.Vec3(t.V1),
				V2:     mgl32.Vec3(t.V2),
				Normal: mgl32.Vec3(t.Normal),
			})
		}
		remaining -= len(batch)
	}
	return NewColMesh(tris)
}

// LoadColMeshFile reads a .colmesh file from disk.
func LoadColMeshFile(path string) (*ColMesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("colmesh: %w", err)
	}
	defer f.Close()

	m, err := LoadColMesh(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("colmesh: %s: %w", path, err)
	}
	return m, nil
}

// WriteColMesh writes triangles in the .colmesh format. Triangles with
// a zero normal get one computed from their winding first.
func WriteColMesh(w io.Writer, tris []Triangle) error {
	if len(tris) == 0 {
		return fmt.Errorf("colmesh: nothing to write")
	}

	for i := range tris {
		if tris[i].Normal == (mgl32.Vec3{}) {
			tris[i] = NewTriangle(tris[i].V0, tris[i].V1, tris[i].V2)
		}
	}
	center, half := triangleBounds(tris)
	min := center.Sub(half)
	max := center.Add(half)

	hdr := colMeshHeader{
		Magic:   colMeshMagic,
		Version: colMeshVersion,
		Count:   uint32(len(tris)),
		Min:     [3]float32(min),
		Max:     [3]float32(max),
	}
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return fmt.Errorf("colmesh: write header: %w", err)
	}

	raw := make([]colMeshTriangle, len(tris))
	for i, t := range tris {
		raw[i] = colMeshTriangle{
			V0:     [3]float32(t.V0),
			V1:     [3]float32(t.V1),
			V2:     [3]float32(t.V2),
			Normal: [3]float32(t.Normal),
		}
	}
	if err := binary.Write(w, binary.LittleEndian, raw); err != nil {
		return fmt.Errorf("colmesh: write triangles: %w", err)
	}
	return nil
}
