package types

import (
	"context"
	"reflect"
)

// Signatures represents method signatures
type Signatures []Signature

// Lookup returns a signature by name, nil when not found
func (s Signatures) Lookup(name string) *Signature {
	for i := range s {
		sig := &s[i]
		if sig.Name == name {
			return sig
		}
	}
	return nil
}

// Signature method signature; Args lists json names of Input fields bound to positional arguments
type Signature struct {
	Name        string
	Description string
	Args        []string
	Input       reflect.Type
	Output      reflect.Type
}

// Executable is a function that can be executed
type Executable func(context context.Context, input, output interface{}) error
