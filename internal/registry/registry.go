// Package registry memoizes token identities for container provider fields.
// One identity exists per (container type, field, kind) triple, stable for
// the lifetime of the process.
package registry

import (
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// Key addresses one token identity.
type Key struct {
	Owner reflect.Type
	Field string

	// Provider distinguishes the provider-identity token from the value
	// token of the same field.
	Provider bool
}

// Registry hands out memoized identities.
type Registry struct {
	mu  sync.Mutex
	ids map[Key]string
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{ids: make(map[Key]string)}
}

// ID returns the identity for k, minting one on first request.
func (r *Registry) ID(k Key) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.ids[k]; ok {
		return id
	}

	id := uuid.NewString()
	r.ids[k] = id
	return id
}
