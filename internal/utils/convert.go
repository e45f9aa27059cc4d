package utils

import (
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/thep2p/go-eth-outcall/internal/model"
)

// ByteToHex converts a byte slice to a hexadecimal string prefixed with "0x".
func ByteToHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// StripHexPrefix removes a single leading "0x" (or "0X") from s.
// Strings without the prefix are returned unchanged; the remaining digits are not validated.
func StripHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// ParseAddress decodes a 20-byte address from 40 hex digits with an optional "0x" prefix.
// Letter case is ignored; checksums are not enforced.
func ParseAddress(s string) (common.Address, error) {
	digits := StripHexPrefix(s)
	if len(digits) != 2*common.AddressLength {
		return common.Address{}, fmt.Errorf("%w: address %q must have %d hex digits, got %d",
			model.ErrInput, s, 2*common.AddressLength, len(digits))
	}
	b, err := hex.DecodeString(digits)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: address %q: %v", model.ErrInput, s, err)
	}
	return common.BytesToAddress(b), nil
}

// ParseHex decodes hex digits with an optional "0x" prefix.
func ParseHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(StripHexPrefix(s))
	if err != nil {
		return nil, fmt.Errorf("%w: hex %q: %v", model.ErrInput, s, err)
	}
	return b, nil
}
