package bonecol

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl32"

	"phys3d/internal/collision"
)

// The .boncol container: a fixed little-endian header and one record
// per bone. Shape dimensions go in the three params; unused params and
// the reserved field are zero.

const (
	bonColMagic   = 0x4C434E42 // "BNCL"
	bonColVersion = 1
)

// Bone shape type codes as stored on disk.
const (
	bonColNone    = 0
	bonColSphere  = 1
	bonColCapsule = 2
	bonColBox     = 3
)

type bonColHeader struct {
	Magic    uint32
	Version  uint32
	Count    uint32
	Reserved uint32
}

type bonColBone struct {
	Type     uint8
	Joint    uint8
	Pad      [2]uint8
	Param1   float32
	Param2   float32
	Param3   float32
	OffX     float32
	OffY     float32
	OffZ     float32
	Reserved float32
}

// Load reads a .boncol stream.
func Load(r io.Reader) (*Data, error) {
	var hdr bonColHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("boncol: read header: %w", err)
	}
	if hdr.Magic != bonColMagic {
		return nil, fmt.Errorf("boncol: bad magic 0x%08X", hdr.Magic)
	}
	if hdr.Version != bonColVersion {
		return nil, fmt.Errorf("boncol: unsupported version %d", hdr.Version)
	}

	// The count is untrusted input: read in bounded chunks so a corrupt
	// header fails with a read error instead of a giant allocation.
	const chunk = 4096
	remaining := int(hdr.Count)
	d := &Data{Bones: make([]BoneShape, 0, min(remaining, chunk))}
	raw := make([]bonColBone, min(remaining, chunk))
	for remaining > 0 {
		batch := raw[:min(remaining, chunk)]
		if err := binary.Read(r, binary.LittleEndian, batch); err != nil {
			return nil, fmt.Errorf("boncol: read %d bones: %w", hdr.Count, err)
		}
		for _, b := range batch {
			shape, err := boneShapeFromRecord(b)
			if err != nil {
				return nil, fmt.Errorf("boncol: bone %d: %w", len(d.Bones), err)
			}
			d.Bones = append(d.Bones, BoneShape{
				Shape:  shape,
				Offset: mgl32.Vec3{b.OffX, b.OffY, b.OffZ},
				Joint:  int(b.Joint),
			})
		}
		remaining -= len(batch)
	}
	return d, nil
}

// LoadFile reads a .boncol file from disk.
func LoadFile(path string) (*Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("boncol: %w", err)
	}
	defer f.Close()

	d, err := Load(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("boncol: %s: %w", path, err)
	}
	return d, nil
}

// Write writes a bone collision set in the .boncol format.
func Write(w io.Writer, d *Data) error {
	hdr := bonColHeader{
		Magic:   bonColMagic,
		Version: bonColVersion,
		Count:   uint32(len(d.Bones)),
	}
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return fmt.Errorf("boncol: write header: %w", err)
	}

	raw := make([]bonColBone, len(d.Bones))
	for i, b := range d.Bones {
		rec, err := recordFromBoneShape(b)
		if err != nil {
			return fmt.Errorf("boncol: bone %d: %w", i, err)
		}
		raw[i] = rec
	}
	if err := binary.Write(w, binary.LittleEndian, raw); err != nil {
		return fmt.Errorf("boncol: write bones: %w", err)
	}
	return nil
}

func boneShapeFromRecord(b bonColBone) (collision.Shape, error) {
	switch b.Type {
	case bonColNone:
		return collision.Shape{}, nil
	case bonColSphere:
		return collision.NewSphere(b.Param1)
	case bonColCapsule:
		return collision.NewCapsule(b.Param2, b.Param1)
	case bonColBox:
		return collision.NewBox(b.Param1, b.Param2, b.Param3)
	}
	return collision.Shape{}, fmt.Errorf("unknown shape type %d", b.Type)
}

func recordFromBoneShape(b BoneShape) (bonColBone, error) {
	if b.Joint < 0 || b.Joint > 255 {
		return bonColBone{}, fmt.Errorf("joint %d outside uint8 range", b.Joint)
	}
	rec := bonColBone{
		Joint: uint8(b.Joint),
		OffX:  b.Offset[0],
		OffY:  b.Offset[1],
		OffZ:  b.Offset[2],
	}
	switch b.Shape.Kind {
	case collision.KindNone:
		rec.Type = bonColNone
	case collision.KindSphere:
		rec.Type = bonColSphere
		rec.Param1 = b.Shape.Radius
	case collision.KindCapsule:
		rec.Type = bonColCapsule
		rec.Param1 = b.Shape.Radius
		rec.Param2 = b.Shape.HalfHeight
	case collision.KindBox:
		rec.Type = bonColBox
		rec.Param1 = b.Shape.Half[0]
		rec.Param2 = b.Shape.Half[1]
		rec.Param3 = b.Shape.Half[2]
	default:
		return bonColBone{}, fmt.Errorf("shape kind %v cannot be stored", b.Shape.Kind)
	}
	return rec, nil
}
