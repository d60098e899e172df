package loader

import (
	"context"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
)

// LoadState is the lifecycle state of a Result.
type LoadState int

const (
	// StatePending means the load has not completed yet.
	StatePending LoadState = iota

	// StateSucceeded means the load produced a node.
	StateSucceeded

	// StateFailed means the load produced an error.
	StateFailed
)

func (s LoadState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type result struct {
	mu        *sync.Mutex
	id        string
	url       string
	state     LoadState
	node      scene.Node
	err       error
	done      chan struct{}
	callbacks []func(scene.Node, error)
}

// Result is the single-shot outcome of one Load call. It starts pending and
// completes exactly once, either with a node or with an error. There is no retry:
// a failed Result stays failed.
//
// Results can be polled (State, Node, Err), awaited (Done, Wait) or subscribed
// to (OnComplete). All methods are safe for concurrent use.
type Result interface {
	// ID returns the unique identifier of the load request.
	//
	// Returns:
	//   - string: the request ID
	ID() string

	// URL returns the location that was requested.
	//
	// Returns:
	//   - string: the requested path or URL
	URL() string

	// State returns the current lifecycle state.
	//
	// Returns:
	//   - LoadState: pending, succeeded or failed
	State() LoadState

	// Node returns the loaded root node, or nil unless the state is StateSucceeded.
	//
	// Returns:
	//   - scene.Node: the decoded subtree root
	Node() scene.Node

	// Err returns the failure reason, or nil unless the state is StateFailed.
	//
	// Returns:
	//   - error: the load error
	Err() error

	// Done returns a channel that is closed when the result completes, after any
	// callbacks registered before completion have returned.
	//
	// Returns:
	//   - <-chan struct{}: the completion channel
	Done() <-chan struct{}

	// Wait blocks until the result completes or ctx ends.
	//
	// Parameters:
	//   - ctx: bounds the wait; it does not cancel the load
	//
	// Returns:
	//   - scene.Node: the loaded node on success
	//   - error: the load error, or ctx.Err() if the wait was abandoned
	Wait(ctx context.Context) (scene.Node, error)

	// OnComplete registers fn to run exactly once with the outcome. If the result has
	// already completed, fn runs immediately on the calling goroutine; otherwise it
	// runs on the goroutine that completes the load.
	//
	// Parameters:
	//   - fn: the completion callback
	OnComplete(fn func(scene.Node, error))
}

var _ Result = &result{}

func newResult(id, url string) *result {
	return &result{
		mu:   &sync.Mutex{},
		id:   id,
		url:  url,
		done: make(chan struct{}),
	}
}

// complete settles the result. Only the first call has any effect.
func (r *result) complete(node scene.Node, err error) bool {
	r.mu.Lock()
	if r.state != StatePending {
		r.mu.Unlock()
		return false
	}
	if err != nil {
		r.state = StateFailed
		r.err = err
	} else {
		r.state = StateSucceeded
		r.node = node
	}
	callbacks := r.callbacks
	r.callbacks = nil
	node, err = r.node, r.err
	r.mu.Unlock()

	for _, fn := range callbacks {
		fn(node, err)
	}
	// Waiters wake only after every registered callback has run.
	close(r.done)
	return true
}

func (r *result) ID() string {
	return r.id
}

func (r *result) URL() string {
	return r.url
}

func (r *result) State() LoadState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *result) Node() scene.Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.node
}

func (r *result) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *result) Done() <-chan struct{} {
	return r.done
}

func (r *result) Wait(ctx context.Context) (scene.Node, error) {
	select {
	case <-r.done:
		return r.Node(), r.Err()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *result) OnComplete(fn func(scene.Node, error)) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	if r.state == StatePending {
		r.callbacks = append(r.callbacks, fn)
		r.mu.Unlock()
		return
	}
	node, err := r.node, r.err
	r.mu.Unlock()
	fn(node, err)
}
