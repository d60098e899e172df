package loader

import (
	"context"
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct{}

// gltfImporter orchestrates a full glTF/GLB import: it runs the parser and the
// extractors and assembles the result into a scene-graph subtree.
type gltfImporter interface {
	// Import decodes data into a scene-graph subtree rooted at a fresh node.
	//
	// Parameters:
	//   - ctx: context for fetching external resources
	//   - src: the raw asset and how to resolve its external references
	//
	// Returns:
	//   - scene.Node: the root of the imported subtree
	//   - error: error if import fails
	Import(ctx context.Context, src source) (scene.Node, error)
}

var _ gltfImporter = &gltfImporterImpl{}

// newGLTFImporter creates a new glTF importer.
//
// Returns:
//   - gltfImporter: the importer
func newGLTFImporter() gltfImporter {
	return &gltfImporterImpl{}
}

func (imp *gltfImporterImpl) Import(ctx context.Context, src source) (scene.Node, error) {
	parser := newGLTFParser(src.fetch)
	if err := parser.Parse(ctx, src.data, src.isGLB); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", src.name, err)
	}

	doc := parser.Document()
	if len(doc.ExtensionsRequired) > 0 {
		return nil, fmt.Errorf("%s requires unsupported extensions %v", src.name, doc.ExtensionsRequired)
	}

	b := &gltfTreeBuilder{
		ctx:       ctx,
		doc:       doc,
		meshes:    newGLTFMeshExtractor(parser),
		materials: newGLTFMaterialExtractor(parser),
		matCache:  make(map[int]material.Material),
		visiting:  make(map[int]bool),
	}

	roots, err := b.sceneRoots()
	if err != nil {
		return nil, err
	}

	children := make([]scene.Node, 0, len(roots))
	for _, idx := range roots {
		n, err := b.buildNode(idx)
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}

	return scene.NewNode(
		scene.WithName(gltfExtractModelName(doc, src.name)),
		scene.WithChildren(children...),
	), nil
}

// gltfTreeBuilder converts glTF node indices into scene nodes for a single import.
type gltfTreeBuilder struct {
	ctx       context.Context
	doc       *gltfDocument
	meshes    gltfMeshExtractor
	materials gltfMaterialExtractor
	matCache  map[int]material.Material
	visiting  map[int]bool
}

// sceneRoots returns the root node indices of the default scene. Documents without
// scenes fall back to every node that is nobody's child.
func (b *gltfTreeBuilder) sceneRoots() ([]int, error) {
	doc := b.doc
	if len(doc.Scenes) > 0 {
		idx := 0
		if doc.Scene != nil {
			idx = *doc.Scene
		}
		if idx < 0 || idx >= len(doc.Scenes) {
			return nil, fmt.Errorf("default scene index %d out of range", idx)
		}
		return doc.Scenes[idx].Nodes, nil
	}

	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []int
	for i, child := range isChild {
		if !child {
			roots = append(roots, i)
		}
	}
	return roots, nil
}

func (b *gltfTreeBuilder) buildNode(index int) (scene.Node, error) {
	if index < 0 || index >= len(b.doc.Nodes) {
		return nil, fmt.Errorf("node index %d out of range", index)
	}
	if b.visiting[index] {
		return nil, fmt.Errorf("node %d is part of a cycle", index)
	}
	b.visiting[index] = true
	defer delete(b.visiting, index)

	gn := &b.doc.Nodes[index]
	pos, rot, scale := gltfNodeTRS(gn)
	opts := []scene.NodeBuilderOption{
		scene.WithName(common.Coalesce(gn.Name, fmt.Sprintf("node_%d", index))),
		scene.WithPosition(pos),
		scene.WithRotation(rot),
		scene.WithScale(scale),
	}

	var children []scene.Node

	if gn.Mesh != nil {
		meshes, matIdx, err := b.meshes.ExtractMesh(*gn.Mesh)
		if err != nil {
			return nil, err
		}
		for i, m := range meshes {
			if m.Material, err = b.material(matIdx[i]); err != nil {
				return nil, err
			}
		}

		// A single primitive makes the node itself a mesh node; several become mesh children.
		if len(meshes) == 1 {
			opts = append(opts, scene.WithMesh(meshes[0]))
		} else {
			for _, m := range meshes {
				children = append(children, scene.NewNode(scene.WithName(m.Name), scene.WithMesh(m)))
			}
		}
	}

	for _, c := range gn.Children {
		child, err := b.buildNode(c)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	opts = append(opts, scene.WithChildren(children...))
	return scene.NewNode(opts...), nil
}

// material returns the shared Material for a glTF material index.
// Primitives without a material each get their own default instance.
func (b *gltfTreeBuilder) material(index int) (material.Material, error) {
	if index < 0 {
		return material.FromImported(defaultImportedMaterial()), nil
	}
	if m, ok := b.matCache[index]; ok {
		return m, nil
	}

	im, err := b.materials.ExtractMaterial(b.ctx, index)
	if err != nil {
		return nil, err
	}
	m := material.FromImported(im)
	b.matCache[index] = m
	return m, nil
}

// gltfNodeTRS resolves a node's local transform from either its matrix or its TRS properties.
func gltfNodeTRS(n *gltfNode) (mgl32.Vec3, mgl32.Quat, mgl32.Vec3) {
	if n.Matrix != nil {
		return common.DecomposeTRS(mgl32.Mat4(*n.Matrix))
	}

	pos := mgl32.Vec3{}
	rot := mgl32.QuatIdent()
	scale := mgl32.Vec3{1, 1, 1}
	if n.Translation != nil {
		pos = *n.Translation
	}
	if n.Rotation != nil {
		r := *n.Rotation
		rot = mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}.Normalize()
	}
	if n.Scale != nil {
		scale = *n.Scale
	}
	return pos, rot, scale
}

// gltfExtractModelName derives a model name from the default scene name or a fallback.
func gltfExtractModelName(doc *gltfDocument, fallback string) string {
	if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
		if name := doc.Scenes[*doc.Scene].Name; name != "" {
			return name
		}
	}
	return common.Coalesce(fallback, "unnamed_model")
}
