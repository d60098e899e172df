package material

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
)

// material is the implementation of the Material interface.
type material struct {
	mu             *sync.Mutex
	name           string
	baseColor      common.Color
	metallic       float32
	roughness      float32
	diffuseTexture *common.ImportedTexture
	normalTexture  *common.ImportedTexture
	version        uint64
}

// Material defines the interface for a render material, encapsulating the surface
// properties a mesh is drawn with.
//
// Surface properties are set at load time. The base color is the only mutable
// property: it is overwritten in place by color changes and read by the renderer
// every frame, so all accessors are safe for concurrent use.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Color retrieves the current albedo/diffuse color of the material.
	//
	// Returns:
	//   - common.Color: the base color
	Color() common.Color

	// SetColor overwrites the albedo/diffuse color of the material in place.
	//
	// Parameters:
	//   - c: the new base color
	SetColor(c common.Color)

	// SetRGB overwrites the red, green and blue channels of the base color and
	// keeps its alpha, so translucent materials stay translucent.
	//
	// Parameters:
	//   - c: the color whose R, G and B are applied; its A is ignored
	SetRGB(c common.Color)

	// Snapshot returns the base color together with the version it belongs to,
	// read under one lock so a concurrent SetColor cannot split the pair.
	//
	// Returns:
	//   - common.Color: the base color
	//   - uint64: the version of that color
	Snapshot() (common.Color, uint64)

	// Version returns a counter that increments on every SetColor and SetRGB.
	// Renderers compare it against their cached value to decide whether to re-upload uniforms.
	//
	// Returns:
	//   - uint64: the current version
	Version() uint64

	// Metallic retrieves the metallic factor of the material.
	// A value of 0.0 represents a dielectric surface, 1.0 represents a fully metallic surface.
	//
	// Returns:
	//   - float32: the metallic factor
	Metallic() float32

	// Roughness retrieves the roughness factor of the material.
	// A value of 0.0 represents a perfectly smooth surface, 1.0 represents a fully rough surface.
	//
	// Returns:
	//   - float32: the roughness factor
	Roughness() float32

	// DiffuseTexture retrieves the diffuse/albedo texture data reference, or nil if none is set.
	//
	// Returns:
	//   - *common.ImportedTexture: the diffuse texture, or nil
	DiffuseTexture() *common.ImportedTexture

	// NormalTexture retrieves the normal map texture data reference, or nil if none is set.
	//
	// Returns:
	//   - *common.ImportedTexture: the normal texture, or nil
	NormalTexture() *common.ImportedTexture
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		mu:        &sync.Mutex{},
		baseColor: common.White,
		metallic:  0.0,
		roughness: 1.0,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// FromImported builds a Material from the properties decoded by a model importer.
//
// Parameters:
//   - im: the imported material description
//
// Returns:
//   - Material: a new Material instance
func FromImported(im common.ImportedMaterial) Material {
	return NewMaterial(
		WithName(im.Name),
		WithBaseColor(common.ColorFromVec4(im.BaseColor)),
		WithMetallic(im.Metallic),
		WithRoughness(im.Roughness),
		WithDiffuseTexture(im.DiffuseTexture),
		WithNormalTexture(im.NormalTexture),
	)
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Color() common.Color {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.baseColor
}

func (m *material) SetColor(c common.Color) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baseColor = c
	m.version++
}

func (m *material) SetRGB(c common.Color) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baseColor.R, m.baseColor.G, m.baseColor.B = c.R, c.G, c.B
	m.version++
}

func (m *material) Snapshot() (common.Color, uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.baseColor, m.version
}

func (m *material) Version() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version
}

func (m *material) Metallic() float32 {
	return m.metallic
}

func (m *material) Roughness() float32 {
	return m.roughness
}

func (m *material) DiffuseTexture() *common.ImportedTexture {
	return m.diffuseTexture
}

func (m *material) NormalTexture() *common.ImportedTexture {
	return m.normalTexture
}
