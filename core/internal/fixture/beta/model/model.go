// Package model is a fixture sharing its package and type names with a
// sibling package.
package model

type Store struct {
	Origin string
}

func New() *Store { return &Store{Origin: "beta"} }
