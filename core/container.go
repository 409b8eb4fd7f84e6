package core

import (
	"maps"
	"sync"
	"time"
)

// Container maps service names to types and hands out one shared instance per
// type, building it and its constructor dependencies on first use.
//
// All methods are safe for concurrent use. Builds are serialized, so a type is
// constructed at most once even when many goroutines ask for it together.
type Container struct {
	types     *Catalog
	instances *instanceCache
	observer  Observer

	mu          sync.RWMutex
	definitions map[string]TypeID

	// build is held for the whole of an uncached resolution.
	build sync.Mutex
}

// Option configures a Container.
type Option func(*Container)

// WithObserver reports resolutions to o.
func WithObserver(o Observer) Option {
	return func(c *Container) {
		if o != nil {
			c.observer = o
		}
	}
}

// NewContainer returns an empty container that builds types from types.
// A nil catalog is replaced by an empty one.
func NewContainer(types *Catalog, opts ...Option) *Container {
	if types == nil {
		types = NewCatalog()
	}
	c := &Container{
		types:       types,
		instances:   newInstanceCache(),
		observer:    nopObserver{},
		definitions: make(map[string]TypeID),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Types returns the catalog the container builds from.
func (c *Container) Types() *Catalog { return c.types }

// SetDefinition binds name to t, replacing any previous binding.
func (c *Container) SetDefinition(name string, t TypeID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.definitions[name] = t
}

// GetDefinition returns the type bound to name, or a *NotFoundError.
func (c *Container) GetDefinition(name string) (TypeID, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.definitions[name]
	if !ok {
		return "", &NotFoundError{Name: name}
	}
	return t, nil
}

// Definitions returns a snapshot of every name binding.
func (c *Container) Definitions() map[string]TypeID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.definitions)
}

// HasInstance reports whether an instance of t has already been built.
func (c *Container) HasInstance(t TypeID) bool {
	return c.instances.has(t)
}

// Get returns the shared instance for the type bound to name.
//
// Errors are *NotFoundError, *NotInstantiableError, *UnresolvableDefaultError,
// *CyclicDependencyError or *ConstructError. A failed call caches nothing for
// the type that failed. Constructors must not call Get on the same container.
func (c *Container) Get(name string) (any, error) {
	start := time.Now()
	ev := Resolution{Name: name}
	defer func() {
		ev.Duration = time.Since(start)
		c.observer.ObserveResolution(ev)
	}()

	t, err := c.GetDefinition(name)
	if err != nil {
		ev.Err = err
		return nil, err
	}
	ev.Type = t

	if v, ok := c.instances.get(t); ok {
		ev.Cached = true
		return v, nil
	}

	c.build.Lock()
	defer c.build.Unlock()

	r := resolver{types: c.types, instances: c.instances, observer: c.observer}
	v, err := r.resolveService(t)
	if err != nil {
		ev.Err = err
		return nil, err
	}
	// Another caller may have built t while this one waited for the lock.
	ev.Cached = r.built == 0
	return v, nil
}
