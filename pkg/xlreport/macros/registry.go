// Package macros holds named functions that report expressions may call.
package macros

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrSealed is returned when registering into a sealed registry.
	ErrSealed = errors.New("macro registry is sealed")
	// ErrInvalidName is returned for an empty macro name.
	ErrInvalidName = errors.New("invalid macro name")
)

// Func is a macro implementation.
type Func func(args ...any) (any, error)

// Registry is a set of named macros. Lookups are case-insensitive. A sealed
// registry is read-only and safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	funcs  map[string]Func
	sealed bool
}

// NewRegistry returns an empty, unsealed registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

// Register adds or replaces a macro.
func (r *Registry) Register(name string, fn Func) error {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || fn == nil {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return fmt.Errorf("register %q: %w", name, ErrSealed)
	}
	r.funcs[key] = fn
	return nil
}

// Lookup finds a macro by name.
func (r *Registry) Lookup(name string) (Func, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[strings.ToLower(strings.TrimSpace(name))]
	return fn, ok
}

// Names lists the registered macro names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Seal makes the registry read-only.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry of built-in macros. It is built
// on first use and sealed.
func Default() *Registry {
	defaultOnce.Do(func() {
		r := NewRegistry()
		for name, fn := range builtins() {
			// names are static and non-empty
			_ = r.Register(name, fn)
		}
		r.Seal()
		defaultRegistry = r
	})
	return defaultRegistry
}
