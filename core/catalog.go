package core

import (
	"fmt"
	"reflect"
	"slices"
	"sync"
)

var errorType = reflect.TypeFor[error]()

// Catalog records how each type is built. It is the container's only source
// of constructor information; a type the catalog does not know cannot be
// resolved.
type Catalog struct {
	mu    sync.RWMutex
	types map[TypeID]*TypeInfo
}

func NewCatalog() *Catalog {
	return &Catalog{types: make(map[TypeID]*TypeInfo)}
}

// Declare adds an explicit descriptor. Concrete types must provide New.
func (c *Catalog) Declare(info TypeInfo) error {
	if !info.Abstract && info.New == nil {
		return fmt.Errorf("%w: %s", ErrNoConstructor, info.ID)
	}
	for i, p := range info.Params {
		if p.Kind == ServiceParam && p.Type == "" {
			return fmt.Errorf("%w: parameter %d of %s has no service type", ErrInvalidParam, i, info.ID)
		}
	}
	cp := info.clone()
	return c.add(&cp)
}

// Abstract declares id as a type that can be named but never built.
func (c *Catalog) Abstract(id TypeID) error {
	return c.add(&TypeInfo{ID: id, Abstract: true})
}

// Value declares id as a type whose only instance is v.
func (c *Catalog) Value(id TypeID, v any) error {
	if v == nil {
		return fmt.Errorf("%w: %s", ErrNilValue, id)
	}
	return c.add(&TypeInfo{ID: id, New: func([]any) (any, error) { return v, nil }})
}

// Provide declares v as the instance of its static type T.
func Provide[T any](c *Catalog, v T) error {
	return c.Value(TypeOf[T](), v)
}

// DeclareType declares T without a constructor. Resolving it yields a new zero
// value; for pointer types the pointee is allocated.
func DeclareType[T any](c *Catalog) error {
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Interface {
		return fmt.Errorf("%w: %s", ErrNotConcrete, t)
	}
	return c.add(&TypeInfo{ID: typeID(t), goType: t})
}

// ParamOption adjusts the descriptor derived for a reflected constructor.
type ParamOption func(*paramSettings)

type paramSettings struct {
	defaults map[int]any
	names    map[int]string
}

// Default gives the scalar parameter at index i a default value.
func Default(i int, v any) ParamOption {
	return func(s *paramSettings) { s.defaults[i] = v }
}

// Named sets the display name of the parameter at index i.
func Named(i int, name string) ParamOption {
	return func(s *paramSettings) { s.names[i] = name }
}

// Constructor declares the result type of fn, using fn as its constructor.
//
// fn must return T or (T, error). Parameters of struct, pointer-to-struct or
// interface type become service parameters; everything else is a scalar
// parameter whose default, if any, is supplied with Default.
func (c *Catalog) Constructor(fn any, opts ...ParamOption) error {
	fv := reflect.ValueOf(fn)
	if !fv.IsValid() || fv.Kind() != reflect.Func || fv.Type().IsVariadic() {
		return ErrNotFunc
	}
	ft := fv.Type()

	switch {
	case ft.NumOut() == 1:
	case ft.NumOut() == 2 && ft.Out(1) == errorType:
	default:
		return fmt.Errorf("%w, got %d results", ErrBadReturn, ft.NumOut())
	}
	out := ft.Out(0)
	if out.Kind() == reflect.Interface {
		return fmt.Errorf("%w, got %s", ErrNotConcrete, out)
	}

	settings := paramSettings{defaults: map[int]any{}, names: map[int]string{}}
	for _, o := range opts {
		o(&settings)
	}
	for i := range settings.defaults {
		if i < 0 || i >= ft.NumIn() {
			return fmt.Errorf("%w: default for parameter %d of %s out of range", ErrInvalidParam, i, out)
		}
		if isServiceType(ft.In(i)) {
			return fmt.Errorf("%w: parameter %d of %s is a service parameter", ErrInvalidParam, i, out)
		}
		if d := settings.defaults[i]; d != nil && !acceptsDefault(reflect.TypeOf(d), ft.In(i)) {
			return fmt.Errorf("%w: default %T for parameter %d of %s is not assignable to %s",
				ErrInvalidParam, d, i, out, ft.In(i))
		}
	}
	for i := range settings.names {
		if i < 0 || i >= ft.NumIn() {
			return fmt.Errorf("%w: name for parameter %d of %s out of range", ErrInvalidParam, i, out)
		}
	}

	params := make([]Param, ft.NumIn())
	for i := range params {
		in := ft.In(i)
		name, ok := settings.names[i]
		if !ok {
			name = fmt.Sprintf("arg%d", i)
		}
		switch d, hasDefault := settings.defaults[i]; {
		case isServiceType(in):
			params[i] = Service(name, typeID(in))
		case hasDefault:
			params[i] = ScalarDefault(name, d)
		default:
			params[i] = Scalar(name)
		}
	}

	return c.add(&TypeInfo{
		ID:     typeID(out),
		Params: params,
		New:    reflectConstructor(fv),
		goType: out,
	})
}

// Lookup returns a copy of the descriptor for id.
func (c *Catalog) Lookup(id TypeID) (TypeInfo, bool) {
	ti, ok := c.lookup(id)
	if !ok {
		return TypeInfo{}, false
	}
	return ti.clone(), true
}

// IDs returns every declared TypeID in sorted order.
func (c *Catalog) IDs() []TypeID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]TypeID, 0, len(c.types))
	for id := range c.types {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (c *Catalog) lookup(id TypeID) (*TypeInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ti, ok := c.types[id]
	return ti, ok
}

func (c *Catalog) add(ti *TypeInfo) error {
	if ti.ID == "" {
		return ErrInvalidType
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.types[ti.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateType, ti.ID)
	}
	c.types[ti.ID] = ti
	return nil
}

func isServiceType(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Struct, reflect.Interface:
		return true
	case reflect.Pointer:
		return t.Elem().Kind() == reflect.Struct
	default:
		return false
	}
}

func reflectConstructor(fv reflect.Value) Constructor {
	ft := fv.Type()
	return func(args []any) (any, error) {
		if len(args) != ft.NumIn() {
			return nil, fmt.Errorf("expected %d arguments, got %d", ft.NumIn(), len(args))
		}
		in := make([]reflect.Value, len(args))
		for i, a := range args {
			want := ft.In(i)
			if a == nil {
				in[i] = reflect.Zero(want)
				continue
			}
			v := reflect.ValueOf(a)
			if !acceptsDefault(v.Type(), want) {
				return nil, fmt.Errorf("argument %d: %s is not assignable to %s", i, v.Type(), want)
			}
			if !v.Type().AssignableTo(want) {
				v = v.Convert(want)
			}
			in[i] = v
		}

		results := fv.Call(in)
		if len(results) == 2 && !results[1].IsNil() {
			return nil, results[1].Interface().(error)
		}
		return results[0].Interface(), nil
	}
}

// acceptsDefault reports whether a value of type from can be passed for a
// parameter of type to.
func acceptsDefault(from, to reflect.Type) bool {
	return from.AssignableTo(to) || convertible(from, to)
}

// convertible allows conversions within a kind family only, so an int default
// never turns into a one-rune string.
func convertible(from, to reflect.Type) bool {
	if !from.ConvertibleTo(to) {
		return false
	}
	return from.Kind() == to.Kind() || (isNumeric(from.Kind()) && isNumeric(to.Kind()))
}

func isNumeric(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Float64
}
