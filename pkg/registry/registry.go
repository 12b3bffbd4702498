// Package registry provides a minimal dependency-injection container: named
// factories with ordered dependency lists, optional singleton lifetime, and
// cycle detection. It is wired once at startup and frozen afterwards.
package registry

import (
	"sync"

	apperrors "github.com/webnyman/three-legged-Oauth/pkg/errors"
)

// Factory constructs a component from its resolved dependencies, passed in
// the order they were declared at registration.
type Factory func(deps ...any) (any, error)

// Options controls how an entry is registered.
type Options struct {
	// Dependencies lists entry names resolved and passed to the factory,
	// in order.
	Dependencies []string

	// Singleton caches the first constructed instance and returns it on
	// every subsequent Resolve.
	Singleton bool
}

type entry struct {
	name         string
	factory      Factory
	dependencies []string
	singleton    bool
}

// Registry maps component names to factories and resolves dependency graphs.
type Registry struct {
	mu        sync.Mutex
	entries   map[string]*entry
	instances map[string]any
	frozen    bool
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		entries:   make(map[string]*entry),
		instances: make(map[string]any),
	}
}

// Register stores an entry under name. It fails with a ConfigurationError if
// the name is already taken, the factory is nil, or the registry has been
// frozen.
func (r *Registry) Register(name string, factory Factory, opts Options) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return apperrors.NewConfigurationError(name, "registry is frozen")
	}
	if factory == nil {
		return apperrors.NewConfigurationError(name, "factory must not be nil")
	}
	if _, exists := r.entries[name]; exists {
		return apperrors.NewConfigurationError(name, "name already registered")
	}

	r.entries[name] = &entry{
		name:         name,
		factory:      factory,
		dependencies: opts.Dependencies,
		singleton:    opts.Singleton,
	}
	return nil
}

// Freeze makes the registry read-only. Registration after Freeze fails;
// Resolve keeps working.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Resolve returns an instance for name. Singleton entries are constructed at
// most once; other entries get a fresh instance per call. Dependencies are
// resolved depth-first, left to right. Unknown names and dependency cycles
// fail with a ResolutionError.
func (r *Registry) Resolve(name string) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolve(name, make(map[string]bool))
}

// MustResolve is Resolve that panics on error. Intended for startup wiring
// and route handlers resolving entries whose registration already succeeded.
func (r *Registry) MustResolve(name string) any {
	instance, err := r.Resolve(name)
	if err != nil {
		panic(err)
	}
	return instance
}

// resolve walks the dependency graph. inProgress tracks the names on the
// current resolution path so a cycle fails immediately instead of recursing
// until the stack overflows. Caller holds r.mu.
func (r *Registry) resolve(name string, inProgress map[string]bool) (any, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, apperrors.NewResolutionError(name, "not registered")
	}

	if e.singleton {
		if instance, ok := r.instances[name]; ok {
			return instance, nil
		}
	}

	if inProgress[name] {
		return nil, apperrors.NewResolutionError(name, "dependency cycle detected")
	}
	inProgress[name] = true
	defer delete(inProgress, name)

	deps := make([]any, 0, len(e.dependencies))
	for _, depName := range e.dependencies {
		dep, err := r.resolve(depName, inProgress)
		if err != nil {
			return nil, err
		}
		deps = append(deps, dep)
	}

	instance, err := e.factory(deps...)
	if err != nil {
		return nil, apperrors.Wrap(err, "factory for "+name+" failed")
	}

	if e.singleton {
		r.instances[name] = instance
	}
	return instance, nil
}
