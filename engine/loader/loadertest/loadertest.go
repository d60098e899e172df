// Package loadertest builds small glTF assets in memory for tests.
package loadertest

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// Names of the nodes in the Chair asset.
const (
	SceneName = "Chair"
	FrameNode = "chair"
	SeatNode  = "seat"
	LegsNode  = "legs"
)

// MeshNodeCount is how many mesh nodes the Chair asset decodes into:
// the single-primitive seat plus one child per primitive of the legs.
const MeshNodeCount = 3

// SeatColor is the base color factor of the seat material.
var SeatColor = [4]float32{0.8, 0.2, 0.2, 1}

// triangle geometry shared by every primitive: positions, normals, uint16 indices.
func buffer() []byte {
	var b bytes.Buffer
	positions := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	normals := [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}}
	indices := []uint16{0, 1, 2, 0}
	_ = binary.Write(&b, binary.LittleEndian, positions)
	_ = binary.Write(&b, binary.LittleEndian, normals)
	_ = binary.Write(&b, binary.LittleEndian, indices)
	return b.Bytes()
}

func document(bufferURI string, byteLength int, seat [4]float32) map[string]any {
	prim := func(material int) map[string]any {
		p := map[string]any{
			"attributes": map[string]int{"POSITION": 0, "NORMAL": 1},
			"indices":    2,
		}
		if material >= 0 {
			p["material"] = material
		}
		return p
	}

	buf := map[string]any{"byteLength": byteLength}
	if bufferURI != "" {
		buf["uri"] = bufferURI
	}

	return map[string]any{
		"asset":  map[string]any{"version": "2.0", "generator": "loadertest"},
		"scene":  0,
		"scenes": []any{map[string]any{"name": SceneName, "nodes": []int{0}}},
		"nodes": []any{
			map[string]any{"name": FrameNode, "children": []int{1, 2}},
			map[string]any{"name": SeatNode, "mesh": 0, "translation": []float32{0, 0.5, 0}},
			map[string]any{"name": LegsNode, "mesh": 1, "scale": []float32{1, 2, 1}},
		},
		"meshes": []any{
			map[string]any{"name": "seat_mesh", "primitives": []any{prim(0)}},
			map[string]any{"name": "legs_mesh", "primitives": []any{prim(1), prim(-1)}},
		},
		"materials": []any{
			map[string]any{"name": "fabric", "pbrMetallicRoughness": map[string]any{"baseColorFactor": seat, "metallicFactor": 0}},
			map[string]any{"name": "wood"},
		},
		"accessors": []any{
			map[string]any{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3", "min": []float32{0, 0, 0}, "max": []float32{1, 1, 0}},
			map[string]any{"bufferView": 1, "componentType": 5126, "count": 3, "type": "VEC3"},
			map[string]any{"bufferView": 2, "componentType": 5123, "count": 3, "type": "SCALAR"},
		},
		"bufferViews": []any{
			map[string]any{"buffer": 0, "byteOffset": 0, "byteLength": 36},
			map[string]any{"buffer": 0, "byteOffset": 36, "byteLength": 36},
			map[string]any{"buffer": 0, "byteOffset": 72, "byteLength": 6},
		},
		"buffers": []any{buf},
	}
}

// ChairGLB returns a binary glTF container holding the Chair asset.
func ChairGLB() []byte {
	bin := buffer()
	js, _ := json.Marshal(document("", len(bin), SeatColor))
	return GLB(js, bin)
}

// ChairGLBWithSeatColor returns the Chair asset as a GLB whose seat material
// uses seat as its base color factor.
func ChairGLBWithSeatColor(seat [4]float32) []byte {
	bin := buffer()
	js, _ := json.Marshal(document("", len(bin), seat))
	return GLB(js, bin)
}

// ChairGLTF returns the Chair asset as glTF JSON with the buffer embedded as a data URI.
func ChairGLTF() []byte {
	bin := buffer()
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(bin)
	js, _ := json.Marshal(document(uri, len(bin), SeatColor))
	return js
}

// ChairGLTFExternal returns the Chair asset as glTF JSON referencing an external
// buffer file, together with that file's contents.
func ChairGLTFExternal(bufferName string) ([]byte, []byte) {
	bin := buffer()
	js, _ := json.Marshal(document(bufferName, len(bin), SeatColor))
	return js, bin
}

// GLB wraps a JSON chunk and an optional binary chunk in a GLB container.
func GLB(jsonChunk, binChunk []byte) []byte {
	pad := func(b []byte, with byte) []byte {
		for len(b)%4 != 0 {
			b = append(b, with)
		}
		return b
	}
	jsonChunk = pad(append([]byte(nil), jsonChunk...), ' ')
	binChunk = pad(append([]byte(nil), binChunk...), 0)

	total := 12 + 8 + len(jsonChunk)
	if len(binChunk) > 0 {
		total += 8 + len(binChunk)
	}

	var out bytes.Buffer
	_ = binary.Write(&out, binary.LittleEndian, []uint32{0x46546C67, 2, uint32(total)})
	_ = binary.Write(&out, binary.LittleEndian, []uint32{uint32(len(jsonChunk)), 0x4E4F534A})
	out.Write(jsonChunk)
	if len(binChunk) > 0 {
		_ = binary.Write(&out, binary.LittleEndian, []uint32{uint32(len(binChunk)), 0x004E4942})
		out.Write(binChunk)
	}
	return out.Bytes()
}

// WriteFile writes data to name inside dir and returns the full path.
func WriteFile(tb testing.TB, dir, name string, data []byte) string {
	tb.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		tb.Fatalf("write %s: %v", p, err)
	}
	return p
}
