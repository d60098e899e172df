package loader

import (
	"context"

	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
)

// loaderBackend decodes a fetched asset into a scene-graph subtree.
// Concrete implementations (e.g., gltfLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Decode builds a scene-graph subtree from the asset bytes.
	//
	// Parameters:
	//   - ctx: context for fetching external resources referenced by the asset
	//   - src: the fetched asset
	//
	// Returns:
	//   - scene.Node: the root of the decoded subtree
	//   - error: error if decoding fails
	Decode(ctx context.Context, src source) (scene.Node, error)
}
