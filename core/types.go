package core

import (
	"fmt"
	"reflect"
	"slices"
)

// TypeID identifies a constructible (or abstract) type in a Catalog.
type TypeID string

func (t TypeID) String() string { return string(t) }

// TypeOf returns the TypeID used for Go type T.
func TypeOf[T any]() TypeID { return typeID(reflect.TypeFor[T]()) }

// typeID names t by import path, so same-named types from different packages
// stay distinct: *github.com/acme/app/model.Store.
func typeID(t reflect.Type) TypeID { return TypeID(qualifiedName(t)) }

func qualifiedName(t reflect.Type) string {
	if t.Name() != "" {
		if t.PkgPath() == "" {
			return t.Name()
		}
		return t.PkgPath() + "." + t.Name()
	}
	switch t.Kind() {
	case reflect.Pointer:
		return "*" + qualifiedName(t.Elem())
	case reflect.Slice:
		return "[]" + qualifiedName(t.Elem())
	case reflect.Array:
		return fmt.Sprintf("[%d]%s", t.Len(), qualifiedName(t.Elem()))
	case reflect.Map:
		return "map[" + qualifiedName(t.Key()) + "]" + qualifiedName(t.Elem())
	default:
		return t.String()
	}
}

// ParamKind tells the resolver how to produce a constructor argument.
type ParamKind int

const (
	// ServiceParam arguments are resolved as nested services by type.
	ServiceParam ParamKind = iota
	// ScalarParam arguments can only come from a declared default.
	ScalarParam
)

func (k ParamKind) String() string {
	switch k {
	case ServiceParam:
		return "service"
	case ScalarParam:
		return "scalar"
	default:
		return fmt.Sprintf("ParamKind(%d)", int(k))
	}
}

// Param describes one formal constructor parameter.
type Param struct {
	Name string
	Kind ParamKind
	// Type is the dependency type of a ServiceParam.
	Type       TypeID
	Default    any
	HasDefault bool
}

// Service describes a parameter resolved as the service of type t.
func Service(name string, t TypeID) Param {
	return Param{Name: name, Kind: ServiceParam, Type: t}
}

// Scalar describes a parameter with no default. Resolving it always fails.
func Scalar(name string) Param {
	return Param{Name: name, Kind: ScalarParam}
}

// ScalarDefault describes a parameter satisfied by v.
func ScalarDefault(name string, v any) Param {
	return Param{Name: name, Kind: ScalarParam, Default: v, HasDefault: true}
}

// Constructor builds an instance from arguments ordered like TypeInfo.Params.
type Constructor func(args []any) (any, error)

// TypeInfo is the constructor descriptor of a declared type.
//
// A type that is not Abstract and has no New is allocated as the zero value of
// its Go type, which is only known for types declared with DeclareType.
type TypeInfo struct {
	ID       TypeID
	Abstract bool
	Params   []Param
	New      Constructor

	goType reflect.Type
}

func (ti *TypeInfo) clone() TypeInfo {
	cp := *ti
	cp.Params = slices.Clone(ti.Params)
	return cp
}

func (ti *TypeInfo) instantiate(args []any) (any, error) {
	if ti.New != nil {
		return ti.New(args)
	}
	if ti.goType.Kind() == reflect.Pointer {
		return reflect.New(ti.goType.Elem()).Interface(), nil
	}
	return reflect.New(ti.goType).Elem().Interface(), nil
}
