package core

import (
	"fmt"
	"reflect"
)

// Register declares v as the instance of T and binds name to it. Modules use
// it to share objects they built themselves.
func Register[T any](c *Container, name string, v T) error {
	if err := Provide(c.Types(), v); err != nil {
		return err
	}
	c.SetDefinition(name, TypeOf[T]())
	return nil
}

// Resolve calls Get and asserts the instance to T.
func Resolve[T any](c *Container, name string) (T, error) {
	var zero T
	raw, err := c.Get(name)
	if err != nil {
		return zero, err
	}
	v, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s is %T, want %v", ErrWrongType, name, raw, reflect.TypeFor[T]())
	}
	return v, nil
}

// MustResolve is Resolve for wiring code where a missing service is a bug.
func MustResolve[T any](c *Container, name string) T {
	v, err := Resolve[T](c, name)
	if err != nil {
		panic(fmt.Errorf("container: %w", err))
	}
	return v
}
