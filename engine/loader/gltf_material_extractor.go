package loader

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/Carmen-Shannon/oxy-viewer/common"
)

// gltfMaterialExtractorImpl is the implementation of the gltfMaterialExtractor interface.
type gltfMaterialExtractorImpl struct {
	parser gltfParser
}

// gltfMaterialExtractor extracts material factors and texture bytes from a parsed glTF document.
type gltfMaterialExtractor interface {
	// ExtractMaterial extracts a single material by index, loading any referenced texture data.
	//
	// Parameters:
	//   - ctx: context for fetching external images
	//   - materialIndex: the index of the material in the document
	//
	// Returns:
	//   - common.ImportedMaterial: the extracted material
	//   - error: error if extraction fails
	ExtractMaterial(ctx context.Context, materialIndex int) (common.ImportedMaterial, error)
}

var _ gltfMaterialExtractor = &gltfMaterialExtractorImpl{}

// newGLTFMaterialExtractor creates a new material extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfMaterialExtractor: the material extractor
func newGLTFMaterialExtractor(parser gltfParser) gltfMaterialExtractor {
	return &gltfMaterialExtractorImpl{parser: parser}
}

// defaultImportedMaterial matches the glTF defaults for a primitive without a material.
func defaultImportedMaterial() common.ImportedMaterial {
	return common.ImportedMaterial{
		Name:      "default",
		BaseColor: [4]float32{1, 1, 1, 1},
		Metallic:  1.0,
		Roughness: 1.0,
	}
}

func (e *gltfMaterialExtractorImpl) ExtractMaterial(ctx context.Context, materialIndex int) (common.ImportedMaterial, error) {
	doc := e.parser.Document()
	if doc == nil {
		return common.ImportedMaterial{}, errNoDocument
	}
	if materialIndex < 0 || materialIndex >= len(doc.Materials) {
		return common.ImportedMaterial{}, fmt.Errorf("material index %d out of range", materialIndex)
	}

	mat := &doc.Materials[materialIndex]
	result := defaultImportedMaterial()
	result.Name = mat.Name

	if pbr := mat.PbrMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			result.BaseColor = *pbr.BaseColorFactor
		}
		if pbr.MetallicFactor != nil {
			result.Metallic = *pbr.MetallicFactor
		}
		if pbr.RoughnessFactor != nil {
			result.Roughness = *pbr.RoughnessFactor
		}
		if pbr.BaseColorTexture != nil {
			tex, err := e.loadTexture(ctx, pbr.BaseColorTexture.Index, "diffuse")
			if err != nil {
				return common.ImportedMaterial{}, fmt.Errorf("material %q: base color texture: %w", mat.Name, err)
			}
			result.DiffuseTexture = tex
		}
	}

	if mat.NormalTexture != nil {
		tex, err := e.loadTexture(ctx, mat.NormalTexture.Index, "normal")
		if err != nil {
			return common.ImportedMaterial{}, fmt.Errorf("material %q: normal texture: %w", mat.Name, err)
		}
		result.NormalTexture = tex
	}

	return result, nil
}

// loadTexture resolves a glTF texture index into an ImportedTexture holding the encoded image bytes.
// Images come from a buffer view (GLB), a data URI, or an external URI fetched next to the document.
func (e *gltfMaterialExtractorImpl) loadTexture(ctx context.Context, textureIndex int, slot string) (*common.ImportedTexture, error) {
	doc := e.parser.Document()
	if textureIndex < 0 || textureIndex >= len(doc.Textures) {
		return nil, fmt.Errorf("texture index %d out of range", textureIndex)
	}

	tex := &doc.Textures[textureIndex]
	if tex.Source == nil {
		return nil, nil
	}
	if *tex.Source < 0 || *tex.Source >= len(doc.Images) {
		return nil, fmt.Errorf("image index %d out of range", *tex.Source)
	}

	img := &doc.Images[*tex.Source]
	result := &common.ImportedTexture{
		Name:     common.Coalesce(img.Name, slot),
		MimeType: img.MimeType,
	}

	switch {
	case img.BufferView != nil:
		data, err := e.parser.BufferViewData(*img.BufferView)
		if err != nil {
			return nil, fmt.Errorf("failed to read image buffer view: %w", err)
		}
		result.Data = append([]byte(nil), data...)
	case img.URI != "":
		data, err := e.parser.Resource(ctx, img.URI)
		if err != nil {
			return nil, fmt.Errorf("failed to load image %q: %w", img.URI, err)
		}
		result.Data = data
		if result.MimeType == "" {
			result.MimeType = mimeFromURI(img.URI)
		}
	default:
		return nil, nil
	}

	return result, nil
}

func mimeFromURI(uri string) string {
	if rest, ok := strings.CutPrefix(uri, "data:"); ok {
		mime, _, _ := strings.Cut(rest, ";")
		return mime
	}
	switch strings.ToLower(path.Ext(uri)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return ""
	}
}
