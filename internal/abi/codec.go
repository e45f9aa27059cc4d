package abi

import (
	"fmt"
	"math/big"
	"reflect"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/thep2p/go-eth-outcall/internal/model"
	"github.com/thep2p/go-eth-outcall/internal/utils"
)

var bigIntType = reflect.TypeOf(&big.Int{})

// EncodeCall returns the selector followed by args encoded as left-padded 32-byte words.
//
// Integer arguments may be given as *big.Int or any Go integer type; address
// arguments as common.Address, a hex string or 20 bytes; bytesN arguments as an
// N-byte slice or array. A value that does not fit its declared type fails with
// model.ErrEncoding.
func (f *Function) EncodeCall(args ...any) (CallData, error) {
	inputs := f.method.Inputs
	if len(args) != len(inputs) {
		return nil, fmt.Errorf("%w: %s takes %d arguments, got %d",
			model.ErrEncoding, f.method.Sig, len(inputs), len(args))
	}

	values := make([]any, len(args))
	for i, input := range inputs {
		v, err := coerce(input.Type, args[i])
		if err != nil {
			return nil, fmt.Errorf("%w: %s argument %d (%s): %v",
				model.ErrEncoding, f.method.Sig, i, input.Type.String(), err)
		}
		values[i] = v
	}

	packed, err := inputs.Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("%w: pack %s: %v", model.ErrEncoding, f.method.Sig, err)
	}

	sel := f.Selector()
	data := make(CallData, 0, SelectorSize+len(packed))
	data = append(data, sel[:]...)
	return append(data, packed...), nil
}

// DecodeOutput decodes the first return value from the first word of data.
// data must hold a non-zero number of whole words. Only a single static return
// value is interpreted; additional words are ignored.
func (f *Function) DecodeOutput(data []byte) (any, error) {
	if len(f.method.Outputs) == 0 {
		return nil, fmt.Errorf("%w: %s declares no return values", model.ErrMalformedJSON, f.method.Sig)
	}
	if len(data) == 0 || len(data)%WordSize != 0 {
		return nil, fmt.Errorf("%w: return data of %s is %d bytes, expected a non-zero multiple of %d",
			model.ErrMalformedJSON, f.method.Sig, len(data), WordSize)
	}

	first := gethabi.Arguments{f.method.Outputs[0]}
	values, err := first.Unpack(data[:WordSize])
	if err != nil {
		return nil, fmt.Errorf("%w: unpack %s: %v", model.ErrMalformedJSON, f.method.Sig, err)
	}
	return values[0], nil
}

// DecodeAddress decodes an address-typed first return value. The address is
// the right-most 20 bytes of the first word.
func (f *Function) DecodeAddress(data []byte) (common.Address, error) {
	if len(f.method.Outputs) == 0 || f.method.Outputs[0].Type.T != gethabi.AddressTy {
		return common.Address{}, fmt.Errorf("%w: %s does not return an address", model.ErrMalformedJSON, f.method.Sig)
	}
	v, err := f.DecodeOutput(data)
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := v.(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%w: %s returned %T, expected an address", model.ErrMalformedJSON, f.method.Sig, v)
	}
	return addr, nil
}

// coerce converts v into the Go representation go-ethereum packs for typ,
// enforcing the value range of integer types.
func coerce(typ gethabi.Type, v any) (any, error) {
	switch typ.T {
	case gethabi.UintTy, gethabi.IntTy:
		n, err := toBig(v)
		if err != nil {
			return nil, err
		}
		if err := checkRange(typ, n); err != nil {
			return nil, err
		}
		goType := typ.GetType()
		if goType == bigIntType {
			return n, nil
		}
		rv := reflect.New(goType).Elem()
		if typ.T == gethabi.UintTy {
			rv.SetUint(n.Uint64())
		} else {
			rv.SetInt(n.Int64())
		}
		return rv.Interface(), nil

	case gethabi.AddressTy:
		switch a := v.(type) {
		case common.Address:
			return a, nil
		case *common.Address:
			if a == nil {
				return nil, fmt.Errorf("nil address")
			}
			return *a, nil
		case string:
			return utils.ParseAddress(a)
		case []byte:
			if len(a) != common.AddressLength {
				return nil, fmt.Errorf("address must be %d bytes, got %d", common.AddressLength, len(a))
			}
			return common.BytesToAddress(a), nil
		}
		return nil, fmt.Errorf("unsupported address value of type %T", v)

	case gethabi.BoolTy:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("unsupported bool value of type %T", v)
		}
		return b, nil

	case gethabi.FixedBytesTy:
		rv := reflect.ValueOf(v)
		if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) || rv.Type().Elem().Kind() != reflect.Uint8 {
			return nil, fmt.Errorf("unsupported bytes value of type %T", v)
		}
		if rv.Len() != typ.Size {
			return nil, fmt.Errorf("expected %d bytes, got %d", typ.Size, rv.Len())
		}
		out := reflect.New(typ.GetType()).Elem()
		reflect.Copy(out, rv)
		return out.Interface(), nil
	}
	return nil, fmt.Errorf("unsupported type %s", typ.String())
}

func toBig(v any) (*big.Int, error) {
	switch n := v.(type) {
	case *big.Int:
		if n == nil {
			return nil, fmt.Errorf("nil integer")
		}
		return new(big.Int).Set(n), nil
	case uint:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	case int:
		return big.NewInt(int64(n)), nil
	case int8:
		return big.NewInt(int64(n)), nil
	case int16:
		return big.NewInt(int64(n)), nil
	case int32:
		return big.NewInt(int64(n)), nil
	case int64:
		return big.NewInt(n), nil
	}
	return nil, fmt.Errorf("unsupported integer value of type %T", v)
}

// checkRange fails when n cannot be represented in the integer type typ.
func checkRange(typ gethabi.Type, n *big.Int) error {
	bits := typ.Size
	if typ.T == gethabi.UintTy {
		if n.Sign() < 0 {
			return fmt.Errorf("negative value %s", n)
		}
		if n.BitLen() > bits {
			return fmt.Errorf("value %s overflows %d bits", n, bits)
		}
		return nil
	}

	limit := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
	upper := new(big.Int).Sub(limit, big.NewInt(1))
	lower := new(big.Int).Neg(limit)
	if n.Cmp(lower) < 0 || n.Cmp(upper) > 0 {
		return fmt.Errorf("value %s out of range [%s, %s]", n, lower, upper)
	}
	return nil
}
