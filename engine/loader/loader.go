package loader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrLoaderClosed is reported by Results requested after Close.
var ErrLoaderClosed = errors.New("loader closed")

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu      *sync.Mutex
	logger  *zap.Logger
	client  *http.Client
	backend loaderBackend
	workers int
	pool    worker.DynamicWorkerPool
	taskID  int
	closed  bool
	pending map[*result]struct{}
}

// Loader fetches and decodes 3D model assets into scene-graph subtrees.
//
// Load is asynchronous: fetch and decode run on the loader's worker pool and the
// caller receives a pending Result immediately. Every Load call completes its
// Result exactly once. There is no retry, timeout or progress reporting.
type Loader interface {
	// Load starts loading the asset at url and returns its pending Result.
	// url may be a filesystem path, a file:// URL or an http(s):// URL naming a .glb or .gltf asset.
	//
	// Parameters:
	//   - url: the asset location
	//
	// Returns:
	//   - Result: the single-shot outcome of the load
	Load(url string) Result

	// LoadContext is Load with a context that cancels the in-flight fetch.
	//
	// Parameters:
	//   - ctx: cancels the fetch and decode
	//   - url: the asset location
	//
	// Returns:
	//   - Result: the single-shot outcome of the load
	LoadContext(ctx context.Context, url string) Result

	// LoadSync fetches and decodes on the calling goroutine.
	//
	// Parameters:
	//   - ctx: cancels the fetch
	//   - url: the asset location
	//
	// Returns:
	//   - scene.Node: the decoded subtree root
	//   - error: error if loading fails
	LoadSync(ctx context.Context, url string) (scene.Node, error)

	// Inspect decodes the asset synchronously and summarizes its contents.
	//
	// Parameters:
	//   - ctx: cancels the fetch
	//   - url: the asset location
	//
	// Returns:
	//   - *Summary: node, mesh, material and texture statistics
	//   - error: error if loading fails
	Inspect(ctx context.Context, url string) (*Summary, error)

	// Close stops the worker pool. Every load still pending, and every load
	// requested afterwards, fails with ErrLoaderClosed.
	Close()
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:      &sync.Mutex{},
		logger:  zap.NewNop(),
		client:  http.DefaultClient,
		workers: 1,
		pending: make(map[*result]struct{}),
	}

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend()
	}

	for _, option := range options {
		option(l)
	}

	// Initialize the pool after options so WithWorkers can override the default.
	l.pool = worker.NewDynamicWorkerPool(l.workers, 16, 1*time.Second)
	return l
}

func (l *loader) Load(url string) Result {
	return l.LoadContext(context.Background(), url)
}

func (l *loader) LoadContext(ctx context.Context, url string) Result {
	res := newResult(uuid.NewString(), url)
	log := l.logger.With(zap.String("url", url), zap.String("request", res.id))

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		res.complete(nil, ErrLoaderClosed)
		return res
	}
	id := l.taskID
	l.taskID++
	l.pending[res] = struct{}{}
	l.mu.Unlock()

	res.OnComplete(func(scene.Node, error) {
		l.mu.Lock()
		delete(l.pending, res)
		l.mu.Unlock()
	})

	log.Debug("load queued")
	l.pool.SubmitTask(worker.Task{
		ID:      id,
		Payload: url,
		Do: func() (any, error) {
			start := time.Now()
			node, err := l.LoadSync(ctx, url)
			if err != nil {
				log.Debug("load failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
			} else {
				log.Debug("load decoded", zap.Duration("elapsed", time.Since(start)))
			}
			res.complete(node, err)
			return node, err
		},
	})
	return res
}

func (l *loader) LoadSync(ctx context.Context, url string) (node scene.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			node, err = nil, fmt.Errorf("failed to load %s: decoder panic: %v", url, r)
		}
	}()

	src, err := openSource(ctx, l.client, url)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", url, err)
	}

	node, err = l.backend.Decode(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", url, err)
	}
	return node, nil
}

func (l *loader) Inspect(ctx context.Context, url string) (*Summary, error) {
	node, err := l.LoadSync(ctx, url)
	if err != nil {
		return nil, err
	}
	return summarize(node), nil
}

func (l *loader) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.pool.ClearTaskQueue()
	l.pool.Stop()

	pending := make([]*result, 0, len(l.pending))
	for res := range l.pending {
		pending = append(pending, res)
	}
	l.mu.Unlock()

	// Completion callbacks take l.mu, so settle outside the lock.
	for _, res := range pending {
		res.complete(nil, ErrLoaderClosed)
	}
}
