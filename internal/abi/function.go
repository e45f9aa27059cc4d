// Package abi encodes calls to, and decodes returns from, contract view
// functions whose arguments are static ABI types.
package abi

import (
	"fmt"
	"strings"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/thep2p/go-eth-outcall/internal/model"
)

// WordSize is the width of one ABI-encoded word.
const WordSize = 32

// SelectorSize is the width of a function selector.
const SelectorSize = 4

// CallData is a function selector followed by the word-aligned encoded arguments.
type CallData []byte

// FunctionSpec describes a contract function by name and ordered parameter types.
type FunctionSpec struct {
	// Name is the function name, e.g. "ownerOf".
	Name string
	// Inputs are the canonical ABI type names of the parameters, e.g. "uint256".
	Inputs []string
	// Outputs are the canonical ABI type names of the return values.
	Outputs []string
	// Mutability is the state mutability; only "view" and "pure" are queryable.
	// An empty value means "view".
	Mutability string
}

// Function is an immutable, validated contract function description.
type Function struct {
	method gethabi.Method
}

// NewFunction validates def and returns the Function it describes.
// Every parameter and return type must be a static ABI type.
func NewFunction(def FunctionSpec) (*Function, error) {
	if def.Name == "" {
		return nil, fmt.Errorf("%w: function name is required", model.ErrEncoding)
	}

	mutability := def.Mutability
	if mutability == "" {
		mutability = "view"
	}
	if mutability != "view" && mutability != "pure" {
		return nil, fmt.Errorf("%w: function %s has mutability %q, only view and pure functions can be queried",
			model.ErrEncoding, def.Name, mutability)
	}

	inputs, err := arguments(def.Inputs)
	if err != nil {
		return nil, fmt.Errorf("inputs of %s: %w", def.Name, err)
	}
	outputs, err := arguments(def.Outputs)
	if err != nil {
		return nil, fmt.Errorf("outputs of %s: %w", def.Name, err)
	}

	return &Function{
		method: gethabi.NewMethod(def.Name, def.Name, gethabi.Function, mutability, true, false, inputs, outputs),
	}, nil
}

// MustNewFunction is like NewFunction but panics on an invalid definition.
// It is intended for package-level function tables.
func MustNewFunction(def FunctionSpec) *Function {
	f, err := NewFunction(def)
	if err != nil {
		panic(fmt.Sprintf("invalid function definition: %v", err))
	}
	return f
}

// Name returns the function name.
func (f *Function) Name() string {
	return f.method.RawName
}

// Signature returns the canonical signature, e.g. "ownerOf(uint256)".
func (f *Function) Signature() string {
	return f.method.Sig
}

// Selector returns the first four bytes of the Keccak-256 hash of the signature.
func (f *Function) Selector() [SelectorSize]byte {
	var sel [SelectorSize]byte
	copy(sel[:], crypto.Keccak256([]byte(f.method.Sig))[:SelectorSize])
	return sel
}

// Inputs returns the canonical input type names.
func (f *Function) Inputs() []string {
	return typeNames(f.method.Inputs)
}

// Outputs returns the canonical output type names.
func (f *Function) Outputs() []string {
	return typeNames(f.method.Outputs)
}

func typeNames(args gethabi.Arguments) []string {
	names := make([]string, len(args))
	for i, arg := range args {
		names[i] = arg.Type.String()
	}
	return names
}

// arguments parses ABI type names into go-ethereum arguments, rejecting dynamic types.
func arguments(types []string) (gethabi.Arguments, error) {
	args := make(gethabi.Arguments, 0, len(types))
	for i, name := range types {
		name = canonicalType(name)
		typ, err := gethabi.NewType(name, "", nil)
		if err != nil {
			return nil, fmt.Errorf("%w: type %q: %v", model.ErrEncoding, name, err)
		}
		if !isStatic(typ) {
			return nil, fmt.Errorf("%w: type %q is not a supported static type", model.ErrEncoding, name)
		}
		args = append(args, gethabi.Argument{Name: fmt.Sprintf("arg%d", i), Type: typ})
	}
	return args, nil
}

// canonicalType expands the uint and int aliases to their 256-bit form so the
// selector is derived from the canonical signature.
func canonicalType(name string) string {
	name = strings.TrimSpace(name)
	switch name {
	case "uint":
		return "uint256"
	case "int":
		return "int256"
	}
	return name
}

func isStatic(typ gethabi.Type) bool {
	switch typ.T {
	case gethabi.UintTy, gethabi.IntTy, gethabi.AddressTy, gethabi.BoolTy, gethabi.FixedBytesTy:
		return true
	default:
		return false
	}
}
