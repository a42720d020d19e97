// Package runtime provides an in-process implementation of the model runtime
// manager contract. It keeps a catalog of registered model aliases, tracks
// which artifacts have been "downloaded", and hands out reference-counted
// handles. It stands in for an external runtime daemon in local development
// and tests.
package runtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/cogfoundry/forge/core"
	"github.com/cogfoundry/forge/logging"
)

// Interface compliance (compile-time assertion).
var _ core.RuntimeManager = (*Manager)(nil)

type artifact struct {
	alias    string
	metadata core.Metadata
	cached   bool
	refs     int
}

// Options configure the in-process runtime manager.
type Options struct {
	Logger logging.Logger
}

// Manager is a volatile core.RuntimeManager. Safe for concurrent use.
type Manager struct {
	mu      sync.Mutex
	models  map[string]*artifact // alias -> artifact
	handles map[string]string    // handle id -> alias
	logger  logging.Logger
}

// NewManager constructs an empty runtime manager.
func NewManager(optFns ...func(o *Options)) *Manager {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Manager{
		models:  make(map[string]*artifact),
		handles: make(map[string]string),
		logger:  opts.Logger,
	}
}

// RegisterModel adds an alias to the catalog. Metadata is attached to every
// handle loaded from the alias; the conventional "model" key names the
// provider-side model to use for inference.
func (m *Manager) RegisterModel(alias string, metadata core.Metadata) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.models[alias] = &artifact{alias: alias, metadata: metadata.Clone()}
}

// DownloadModel marks the alias as cached. Unknown aliases fail with
// NotFoundError (kind "model").
func (m *Manager) DownloadModel(_ context.Context, alias string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.models[alias]
	if !ok {
		return &core.NotFoundError{Kind: "model", ID: alias}
	}
	if !a.cached {
		a.cached = true
		m.logger.Debug("model artifact downloaded", "alias", alias)
	}
	return nil
}

// LoadModel returns a fresh handle for a registered alias. The artifact must
// have been downloaded first.
func (m *Manager) LoadModel(_ context.Context, alias string) (core.ModelHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.models[alias]
	if !ok || !a.cached {
		return core.ModelHandle{}, &core.NotFoundError{Kind: "model", ID: alias}
	}
	a.refs++
	metadata := a.metadata.Clone()
	if metadata == nil {
		metadata = core.Metadata{}
	}
	metadata["alias"] = core.String(alias)
	handle := core.ModelHandle{ID: core.NewID("model"), Metadata: metadata}
	m.handles[handle.ID] = alias
	return handle, nil
}

// UnloadModel releases a handle. Unknown handle ids are an error; callers
// treat unload failures as non-fatal.
func (m *Manager) UnloadModel(_ context.Context, handleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	alias, ok := m.handles[handleID]
	if !ok {
		return fmt.Errorf("model handle %s is not loaded", handleID)
	}
	delete(m.handles, handleID)
	if a, ok := m.models[alias]; ok && a.refs > 0 {
		a.refs--
	}
	return nil
}

// LoadedCount returns the number of live handles.
func (m *Manager) LoadedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handles)
}
