// Package registry holds the active package snapshot. A load or reload builds a
// complete new snapshot and atomically swaps it in; any load error leaves the
// previous snapshot active. In-flight requests keep the snapshot they started with.
package registry

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/viant/reframe/internal/clock"
	"github.com/viant/reframe/model/types"
)

// ErrNotLoaded is returned when no package was loaded yet
var ErrNotLoaded = types.NewError(types.KindConfig, "no package loaded")

// Registry is the engine workflow registry
type Registry struct {
	loader  *Loader
	active  atomic.Pointer[Snapshot]
	mux     sync.Mutex
	version int64
	lastURL string
}

// Snapshot returns the active snapshot or nil
func (r *Registry) Snapshot() *Snapshot {
	return r.active.Load()
}

// Load builds a snapshot from a package descriptor URL and activates it
func (r *Registry) Load(ctx context.Context, URL string) (*Snapshot, error) {
	r.mux.Lock()
	defer r.mux.Unlock()
	snapshot, err := r.loader.Load(ctx, URL)
	if err != nil {
		return nil, err
	}
	r.version++
	snapshot.Version = r.version
	snapshot.LoadedAt = clock.Now()
	r.lastURL = URL
	r.active.Store(snapshot)
	return snapshot, nil
}

// Reload rebuilds the snapshot from the last loaded URL
func (r *Registry) Reload(ctx context.Context) (*Snapshot, error) {
	r.mux.Lock()
	URL := r.lastURL
	r.mux.Unlock()
	if URL == "" {
		return nil, ErrNotLoaded
	}
	return r.Load(ctx, URL)
}

// New creates a registry
func New(loader *Loader) *Registry {
	return &Registry{loader: loader}
}
