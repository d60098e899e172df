package model

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
)

type registry struct {
	mu   *sync.Mutex
	node scene.Node
	sets uint64
}

// Registry is a single slot holding the root node of the currently loaded model.
//
// The slot does not own the node: the scene graph does. An empty slot is the
// expected state before the first successful load and after a failed one.
type Registry interface {
	// Set stores node as the current model, replacing any previous one.
	// Setting nil is equivalent to Clear.
	//
	// Parameters:
	//   - node: the loaded model root
	Set(node scene.Node)

	// Get returns the current model.
	//
	// Returns:
	//   - scene.Node: the model root, or nil when empty
	//   - bool: true if a model is registered
	Get() (scene.Node, bool)

	// Clear empties the slot.
	//
	// Returns:
	//   - scene.Node: the node that was registered, or nil
	Clear() scene.Node

	// Generation counts how many times a model has been registered.
	//
	// Returns:
	//   - uint64: the number of successful Set calls with a non-nil node
	Generation() uint64
}

var _ Registry = &registry{}

// NewRegistry creates an empty Registry.
//
// Returns:
//   - Registry: a new, empty registry
func NewRegistry() Registry {
	return &registry{
		mu: &sync.Mutex{},
	}
}

func (r *registry) Set(node scene.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.node = node
	if node != nil {
		r.sets++
	}
}

func (r *registry) Get() (scene.Node, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.node, r.node != nil
}

func (r *registry) Clear() scene.Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.node
	r.node = nil
	return prev
}

func (r *registry) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sets
}
