package loader

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// TextureSummary describes one texture referenced by a material.
type TextureSummary struct {
	Material string
	Slot     string
	MimeType string
	Width    int
	Height   int
	// DecodeError is set when the image bytes could not be decoded.
	DecodeError string
}

// Summary describes a decoded model for reporting.
type Summary struct {
	Name      string
	Nodes     int
	Meshes    int
	Vertices  int
	Triangles int
	Materials []string
	Textures  []TextureSummary
	BoundsMin mgl32.Vec3
	BoundsMax mgl32.Vec3
}

func summarize(root scene.Node) *Summary {
	s := &Summary{Name: root.Name()}
	seen := make(map[material.Material]bool)
	first := true

	root.Traverse(func(n scene.Node) {
		s.Nodes++
		m := n.Mesh()
		if m == nil {
			return
		}
		s.Meshes++
		s.Vertices += len(m.Vertices)
		s.Triangles += m.TriangleCount()

		world := n.WorldMatrix()
		for c := 0; c < 8; c++ {
			corner := m.BoundsMin
			for k := 0; k < 3; k++ {
				if c&(1<<k) != 0 {
					corner[k] = m.BoundsMax[k]
				}
			}
			p := world.Mul4x1(corner.Vec4(1)).Vec3()
			if first {
				s.BoundsMin, s.BoundsMax, first = p, p, false
				continue
			}
			for k := 0; k < 3; k++ {
				s.BoundsMin[k] = min(s.BoundsMin[k], p[k])
				s.BoundsMax[k] = max(s.BoundsMax[k], p[k])
			}
		}

		if m.Material == nil || seen[m.Material] {
			return
		}
		seen[m.Material] = true
		s.Materials = append(s.Materials, m.Material.Name())
		s.addTexture(m.Material.Name(), "diffuse", m.Material.DiffuseTexture())
		s.addTexture(m.Material.Name(), "normal", m.Material.NormalTexture())
	})
	return s
}

func (s *Summary) addTexture(mat, slot string, tex *common.ImportedTexture) {
	if tex == nil {
		return
	}
	ts := TextureSummary{Material: mat, Slot: slot, MimeType: tex.MimeType}
	if _, w, h, err := tex.Decode(); err != nil {
		ts.DecodeError = err.Error()
	} else {
		ts.Width, ts.Height = int(w), int(h)
	}
	s.Textures = append(s.Textures, ts)
}
