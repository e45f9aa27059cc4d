package model

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// TokenID is an unsigned token identifier. It unmarshals from a JSON number,
// a decimal string or a 0x-prefixed hexadecimal string. Range checks against
// the uint256 ABI type happen at encoding time.
type TokenID big.Int

// UnmarshalJSON parses a JSON number or string into the TokenID.
func (t *TokenID) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("%w: token id: %v", ErrInput, err)
		}
	}
	n, err := ParseTokenID(raw)
	if err != nil {
		return err
	}
	(*big.Int)(t).Set(n)
	return nil
}

// MarshalJSON renders the TokenID as a decimal string.
func (t *TokenID) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Big().String())
}

// Big returns the TokenID as a big.Int sharing the same storage.
func (t *TokenID) Big() *big.Int {
	return (*big.Int)(t)
}

// ParseTokenID parses a decimal or 0x-prefixed hexadecimal unsigned integer.
func ParseTokenID(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	base := 10
	digits := s
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		digits = s[2:]
	}
	if digits == "" {
		return nil, fmt.Errorf("%w: empty token id", ErrInput)
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("%w: token id %q is not an unsigned integer", ErrInput, s)
	}
	if n.Sign() < 0 {
		return nil, fmt.Errorf("%w: token id %q is negative", ErrInput, s)
	}
	return n, nil
}
