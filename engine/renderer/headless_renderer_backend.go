package renderer

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"go.uber.org/zap"
)

// headlessRendererBackendImpl draws nothing. It keeps what a GPU backend would have
// uploaded (frame uniforms, material colors, base colour textures) so callers can
// observe it.
type headlessRendererBackendImpl struct {
	mu *sync.Mutex

	width       int
	height      int
	presentMode PresentMode

	textures *textureCache

	lastFrame    GPUFrameUniform
	lastColors   map[uint64]common.Color
	lastTextures map[uint64]common.TextureStagingData
	materials    map[uint64]*materialState
}

var _ RendererBackend = &headlessRendererBackendImpl{}

func newHeadlessRendererBackend(logger *zap.Logger) *headlessRendererBackendImpl {
	return &headlessRendererBackendImpl{
		mu:           &sync.Mutex{},
		textures:     newTextureCache(logger),
		lastColors:   make(map[uint64]common.Color),
		lastTextures: make(map[uint64]common.TextureStagingData),
		materials:    make(map[uint64]*materialState),
	}
}

func (b *headlessRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.width, b.height = width, height
}

func (b *headlessRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.presentMode = mode
}

func (b *headlessRendererBackendImpl) DrawFrame(frame Frame) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastFrame = frameUniform(frame)

	seen := make(map[uint64]struct{}, len(frame.Drawables))
	live := make(map[*common.ImportedTexture]struct{})
	draws := 0
	for _, d := range frame.Drawables {
		if d.Mesh == nil || len(d.Mesh.Indices) == 0 {
			continue
		}
		seen[d.NodeID] = struct{}{}

		state, ok := b.materials[d.NodeID]
		if !ok {
			state = &materialState{}
			b.materials[d.NodeID] = state
		}
		u, version := objectUniform(d)
		if state.stale(version) {
			b.lastColors[d.NodeID] = common.ColorFromVec4(u.Material.BaseColor)
		}
		if m := d.Mesh.Material; m != nil && m.DiffuseTexture() != nil {
			live[m.DiffuseTexture()] = struct{}{}
		}
		b.lastTextures[d.NodeID] = b.textures.baseColor(d.Mesh.Material)
		draws++
	}

	for id := range b.materials {
		if _, ok := seen[id]; !ok {
			delete(b.materials, id)
			delete(b.lastColors, id)
			delete(b.lastTextures, id)
		}
	}
	b.textures.prune(live)
	return draws, nil
}

func (b *headlessRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.lastColors)
	clear(b.lastTextures)
	clear(b.materials)
	b.textures.clear()
}
