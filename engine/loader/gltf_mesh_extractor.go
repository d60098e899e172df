package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser gltfParser
}

// gltfMeshExtractor converts glTF mesh primitives into scene meshes.
// Materials are not attached here; the importer binds them after extraction.
type gltfMeshExtractor interface {
	// ExtractMesh extracts a single mesh by index, one scene.Mesh per primitive.
	//
	// Parameters:
	//   - meshIndex: the index of the mesh to extract
	//
	// Returns:
	//   - []*scene.Mesh: one mesh per primitive
	//   - []int: the glTF material index of each primitive, or -1 when unset
	//   - error: error if extraction fails
	ExtractMesh(meshIndex int) ([]*scene.Mesh, []int, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

// newGLTFMeshExtractor creates a new mesh extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfMeshExtractor: the mesh extractor
func newGLTFMeshExtractor(parser gltfParser) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser}
}

func (e *gltfMeshExtractorImpl) ExtractMesh(meshIndex int) ([]*scene.Mesh, []int, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, nil, errNoDocument
	}
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return nil, nil, fmt.Errorf("mesh index %d out of range", meshIndex)
	}

	mesh := &doc.Meshes[meshIndex]
	meshes := make([]*scene.Mesh, 0, len(mesh.Primitives))
	materials := make([]int, 0, len(mesh.Primitives))

	for primIdx := range mesh.Primitives {
		prim := &mesh.Primitives[primIdx]
		m, err := e.extractPrimitive(prim, primitiveName(mesh.Name, meshIndex, primIdx, len(mesh.Primitives)))
		if err != nil {
			return nil, nil, fmt.Errorf("mesh %d primitive %d: %w", meshIndex, primIdx, err)
		}
		meshes = append(meshes, m)

		matIdx := -1
		if prim.Material != nil {
			matIdx = *prim.Material
		}
		materials = append(materials, matIdx)
	}

	return meshes, materials, nil
}

func primitiveName(meshName string, meshIndex, primIndex, primCount int) string {
	name := meshName
	if name == "" {
		name = fmt.Sprintf("mesh_%d", meshIndex)
	}
	if primCount > 1 {
		name = fmt.Sprintf("%s_prim%d", name, primIndex)
	}
	return name
}

// extractPrimitive extracts a single triangle-list primitive.
func (e *gltfMeshExtractorImpl) extractPrimitive(prim *gltfPrimitive, name string) (*scene.Mesh, error) {
	if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
		return nil, fmt.Errorf("unsupported primitive mode: %d (only triangles supported)", *prim.Mode)
	}

	posAccessor, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("primitive has no POSITION attribute")
	}
	positions, err := e.parser.ReadVec3Accessor(posAccessor)
	if err != nil {
		return nil, fmt.Errorf("failed to read positions: %w", err)
	}

	vertexCount := len(positions)
	vertices := make([]common.Vertex, vertexCount)
	for i, pos := range positions {
		vertices[i].Position = pos
	}

	hasNormals := false
	if normalAccessor, ok := prim.Attributes["NORMAL"]; ok {
		normals, err := e.parser.ReadVec3Accessor(normalAccessor)
		if err != nil {
			return nil, fmt.Errorf("failed to read normals: %w", err)
		}
		for i := range min(len(normals), vertexCount) {
			vertices[i].Normal = normals[i]
		}
		hasNormals = true
	}

	// Non-float (normalized integer) texcoords are left at zero; they only feed texture lookups.
	if uvAccessor, ok := prim.Attributes["TEXCOORD_0"]; ok {
		if uvs, err := e.parser.ReadVec2Accessor(uvAccessor); err == nil {
			for i := range min(len(uvs), vertexCount) {
				vertices[i].UV = uvs[i]
			}
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = e.parser.ReadIndicesAccessor(*prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("failed to read indices: %w", err)
		}
		for _, idx := range indices {
			if int(idx) >= vertexCount {
				return nil, fmt.Errorf("index %d exceeds vertex count %d", idx, vertexCount)
			}
		}
	} else {
		indices = make([]uint32, vertexCount)
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	indices = indices[:len(indices)-len(indices)%3]

	if !hasNormals {
		generateNormals(vertices, indices)
	}

	bmin, bmax := boundingBox(positions)

	return &scene.Mesh{
		Name:      name,
		Vertices:  vertices,
		Indices:   indices,
		BoundsMin: bmin,
		BoundsMax: bmax,
	}, nil
}

// generateNormals computes smooth, area-weighted vertex normals from triangle geometry.
func generateNormals(vertices []common.Vertex, indices []uint32) {
	acc := make([]mgl32.Vec3, len(vertices))
	for t := 0; t+2 < len(indices); t += 3 {
		i0, i1, i2 := indices[t], indices[t+1], indices[t+2]
		p0 := mgl32.Vec3(vertices[i0].Position)
		p1 := mgl32.Vec3(vertices[i1].Position)
		p2 := mgl32.Vec3(vertices[i2].Position)
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		acc[i0] = acc[i0].Add(n)
		acc[i1] = acc[i1].Add(n)
		acc[i2] = acc[i2].Add(n)
	}
	for i, n := range acc {
		if n.Len() > 0 {
			vertices[i].Normal = n.Normalize()
		} else {
			vertices[i].Normal = [3]float32{0, 1, 0}
		}
	}
}

func boundingBox(positions [][3]float32) (mgl32.Vec3, mgl32.Vec3) {
	if len(positions) == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	bmin, bmax := mgl32.Vec3(positions[0]), mgl32.Vec3(positions[0])
	for _, p := range positions[1:] {
		for k := 0; k < 3; k++ {
			bmin[k] = min(bmin[k], p[k])
			bmax[k] = max(bmax[k], p[k])
		}
	}
	return bmin, bmax
}
