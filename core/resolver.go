package core

import (
	"slices"
	"time"
)

// resolver carries the state of one uncached resolution. It is not safe for
// concurrent use; Container.Get holds the build lock while it runs.
type resolver struct {
	types     *Catalog
	instances *instanceCache
	observer  Observer

	// path is the chain of types currently under construction.
	path  []TypeID
	built int
}

func (r *resolver) resolveService(t TypeID) (any, error) {
	if v, ok := r.instances.get(t); ok {
		return v, nil
	}
	if slices.Contains(r.path, t) {
		cycle := append(slices.Clone(r.path), t)
		return nil, &CyclicDependencyError{Path: cycle[slices.Index(cycle, t):]}
	}

	info, ok := r.types.lookup(t)
	if !ok {
		return nil, &NotInstantiableError{Type: t, Reason: "undeclared"}
	}
	if info.Abstract {
		return nil, &NotInstantiableError{Type: t, Reason: "abstract"}
	}

	r.path = append(r.path, t)
	defer func() { r.path = r.path[:len(r.path)-1] }()

	args := make([]any, 0, len(info.Params))
	for _, p := range info.Params {
		v, err := r.resolveParameter(t, p)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	start := time.Now()
	v, err := info.instantiate(args)
	if err != nil {
		return nil, &ConstructError{Type: t, Err: err}
	}
	r.instances.put(t, v)
	r.built++
	r.observer.ObserveBuild(t, time.Since(start))
	return v, nil
}

// resolveParameter prefers a nested service and falls back to the declared
// default only for scalar parameters.
func (r *resolver) resolveParameter(owner TypeID, p Param) (any, error) {
	if p.Kind == ServiceParam {
		return r.resolveService(p.Type)
	}
	if p.HasDefault {
		return p.Default, nil
	}
	return nil, &UnresolvableDefaultError{Type: owner, Param: p.Name}
}
