package renderer

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/material"
	"go.uber.org/zap"
)

// textureCache decodes each imported texture once, however many meshes share it.
// Not safe for concurrent use; backends call it with their own lock held.
type textureCache struct {
	logger  *zap.Logger
	decoded map[*common.ImportedTexture]common.TextureStagingData
}

func newTextureCache(logger *zap.Logger) *textureCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &textureCache{
		logger:  logger,
		decoded: make(map[*common.ImportedTexture]common.TextureStagingData),
	}
}

// baseColor returns the pixels the material's base colour is multiplied by.
// Materials without a texture, and textures that fail to decode, get common.WhiteTexel.
func (c *textureCache) baseColor(m material.Material) common.TextureStagingData {
	if m == nil {
		return common.WhiteTexel
	}
	tex := m.DiffuseTexture()
	if tex == nil {
		return common.WhiteTexel
	}
	if staged, ok := c.decoded[tex]; ok {
		return staged
	}

	staged := common.WhiteTexel
	pixels, w, h, err := tex.Decode()
	if err != nil {
		c.logger.Warn("base colour texture not decodable, drawing untextured",
			zap.String("material", m.Name()), zap.Error(err))
	} else {
		staged = common.TextureStagingData{Pixels: pixels, Width: w, Height: h}
	}
	c.decoded[tex] = staged
	return staged
}

// prune drops decoded textures no longer referenced by live.
func (c *textureCache) prune(live map[*common.ImportedTexture]struct{}) {
	for tex := range c.decoded {
		if _, ok := live[tex]; !ok {
			delete(c.decoded, tex)
		}
	}
}

func (c *textureCache) clear() {
	clear(c.decoded)
}
