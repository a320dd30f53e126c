package model

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps catalog model ids (e.g. "chat-model") to provider models.
type Registry struct {
	mu        sync.RWMutex
	models    map[string]Model
	defaultID string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{models: make(map[string]Model)}
}

// Register binds id to m. The first registered id becomes the default.
func (r *Registry) Register(id string, m Model) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[id] = m
	if r.defaultID == "" {
		r.defaultID = id
	}
	return r
}

// SetDefault changes the id used when neither agent nor request name a model.
func (r *Registry) SetDefault(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultID = id
}

// Resolve returns the model for the first non-empty id among ids, falling back
// to the registry default when all are empty. A named but unregistered id is
// an error; it never silently degrades to another model.
func (r *Registry) Resolve(ids ...string) (Model, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id := r.defaultID
	for _, candidate := range ids {
		if candidate != "" {
			id = candidate
			break
		}
	}
	if id == "" {
		return nil, "", fmt.Errorf("%w: no model configured", ErrModelNotFound)
	}
	m, ok := r.models[id]
	if !ok {
		return nil, id, fmt.Errorf("%w: %s", ErrModelNotFound, id)
	}
	return m, id, nil
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.models))
	for id := range r.models {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
