package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidType   = errors.New("core: type id must not be empty")
	ErrDuplicateType = errors.New("core: type already declared")
	ErrNoConstructor = errors.New("core: concrete type declared without a constructor")
	ErrNotFunc       = errors.New("core: constructor must be a non-variadic function")
	ErrBadReturn     = errors.New("core: constructor must return (T) or (T, error)")
	ErrNotConcrete   = errors.New("core: constructor must return a concrete type")
	ErrInvalidParam  = errors.New("core: invalid parameter option")
	ErrNilValue      = errors.New("core: value must not be nil")
	ErrWrongType     = errors.New("core: resolved instance has the wrong type")
)

// NotFoundError is returned when a service name has no definition.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("service %s is not defined", e.Name)
}

// NotInstantiableError is returned when a type cannot be constructed, either
// because it was declared abstract or because the catalog does not know it.
type NotInstantiableError struct {
	Type   TypeID
	Reason string
}

func (e *NotInstantiableError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s is not instantiable", e.Type)
	}
	return fmt.Sprintf("%s is not instantiable (%s)", e.Type, e.Reason)
}

// UnresolvableDefaultError is returned for a scalar parameter without a default.
type UnresolvableDefaultError struct {
	Type  TypeID
	Param string
}

func (e *UnresolvableDefaultError) Error() string {
	return fmt.Sprintf("could not resolve default value for parameter %q of %s", e.Param, e.Type)
}

// CyclicDependencyError is returned when a type depends on itself, directly or
// transitively. Path starts and ends with the same type.
type CyclicDependencyError struct {
	Path []TypeID
}

func (e *CyclicDependencyError) Error() string {
	parts := make([]string, len(e.Path))
	for i, t := range e.Path {
		parts[i] = string(t)
	}
	return "circular dependency: " + strings.Join(parts, " -> ")
}

// ConstructError wraps a failure returned by a type's constructor.
type ConstructError struct {
	Type TypeID
	Err  error
}

func (e *ConstructError) Error() string {
	return fmt.Sprintf("construct %s: %v", e.Type, e.Err)
}

func (e *ConstructError) Unwrap() error { return e.Err }

// ErrorKind names the class of a resolution error for logs and metrics.
func ErrorKind(err error) string {
	var (
		notFound     *NotFoundError
		notInst      *NotInstantiableError
		noDefault    *UnresolvableDefaultError
		cyclic       *CyclicDependencyError
		construction *ConstructError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &notInst):
		return "not_instantiable"
	case errors.As(err, &noDefault):
		return "unresolvable_default"
	case errors.As(err, &cyclic):
		return "cyclic_dependency"
	case errors.As(err, &construction):
		return "construct"
	default:
		return "other"
	}
}
