// Package signature verifies recoverable secp256k1 signatures against claimed Ethereum addresses.
package signature

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"
	"github.com/thep2p/go-eth-outcall/internal/model"
	"github.com/thep2p/go-eth-outcall/internal/utils"
)

// Length is the size of an r || s || v signature in bytes.
const Length = crypto.SignatureLength

// HashMode selects how a message is turned into the digest that was signed.
type HashMode int

const (
	// PersonalMessage hashes the EIP-191 prefixed message, as personal_sign does.
	PersonalMessage HashMode = iota
	// Keccak hashes the raw message bytes.
	Keccak
	// Digest treats the message as the hex encoding of the 32-byte digest itself.
	Digest
)

var hashModeNames = map[HashMode]string{
	PersonalMessage: "personal",
	Keccak:          "keccak",
	Digest:          "digest",
}

func (m HashMode) String() string {
	if name, ok := hashModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("HashMode(%d)", int(m))
}

// ParseHashMode returns the mode named "personal", "keccak" or "digest".
func ParseHashMode(s string) (HashMode, error) {
	for mode, name := range hashModeNames {
		if strings.EqualFold(s, name) {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown hash mode %q", model.ErrInput, s)
}

// MalformedPolicy selects what Verify reports for input it cannot parse.
type MalformedPolicy int

const (
	// ReturnFalse reports malformed input as a failed verification.
	ReturnFalse MalformedPolicy = iota
	// ReturnError reports malformed input as an ErrInput error.
	ReturnError
)

// ParseMalformedPolicy returns the policy named "false" or "error".
func ParseMalformedPolicy(s string) (MalformedPolicy, error) {
	switch strings.ToLower(s) {
	case "false":
		return ReturnFalse, nil
	case "error":
		return ReturnError, nil
	default:
		return 0, fmt.Errorf("%w: unknown malformed signature policy %q", model.ErrInput, s)
	}
}

// Verifier checks that a signature over a message was produced by the key behind an address.
// It performs no I/O and holds no mutable state, so it is safe for concurrent use.
type Verifier struct {
	logger zerolog.Logger
	mode   HashMode
	policy MalformedPolicy
}

// Option customizes a Verifier.
type Option func(*Verifier)

// WithHashMode sets how messages are hashed before recovery.
func WithHashMode(mode HashMode) Option {
	return func(v *Verifier) {
		v.mode = mode
	}
}

// WithMalformedPolicy sets how malformed input is reported.
func WithMalformedPolicy(policy MalformedPolicy) Option {
	return func(v *Verifier) {
		v.policy = policy
	}
}

// NewVerifier creates a Verifier hashing personal messages and reporting malformed input as false.
func NewVerifier(logger zerolog.Logger, opts ...Option) *Verifier {
	v := &Verifier{
		logger: logger.With().Str("component", "signature-verifier").Logger(),
		mode:   PersonalMessage,
		policy: ReturnFalse,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Mode returns the configured hash mode.
func (v *Verifier) Mode() HashMode {
	return v.mode
}

// Verify reports whether signature over message recovers to address.
// The address is compared as 20 decoded bytes, so its letter case is irrelevant.
// Malformed input never verifies; it is reported according to the MalformedPolicy.
func (v *Verifier) Verify(address, message, signature string) (bool, error) {
	claimed, err := utils.ParseAddress(address)
	if err != nil {
		return v.malformed(err)
	}
	sig, err := ParseSignature(signature)
	if err != nil {
		return v.malformed(err)
	}
	digest, err := v.Hash(message)
	if err != nil {
		return v.malformed(err)
	}

	recovered, err := Recover(digest, sig)
	if err != nil {
		return v.malformed(err)
	}

	valid := recovered == claimed
	v.logger.Debug().
		Str("claimed", claimed.Hex()).
		Str("recovered", recovered.Hex()).
		Bool("valid", valid).
		Msg("signature verified")
	return valid, nil
}

// Hash returns the digest the configured mode signs for message.
func (v *Verifier) Hash(message string) ([]byte, error) {
	switch v.mode {
	case PersonalMessage:
		return accounts.TextHash([]byte(message)), nil
	case Keccak:
		return crypto.Keccak256([]byte(message)), nil
	case Digest:
		digest, err := utils.ParseHex(message)
		if err != nil {
			return nil, err
		}
		if len(digest) != common.HashLength {
			return nil, fmt.Errorf("%w: digest must be %d bytes, got %d", model.ErrInput, common.HashLength, len(digest))
		}
		return digest, nil
	default:
		return nil, fmt.Errorf("%w: unsupported hash mode %s", model.ErrInput, v.mode)
	}
}

func (v *Verifier) malformed(err error) (bool, error) {
	v.logger.Debug().Err(err).Msg("malformed verification input")
	if v.policy == ReturnError {
		return false, err
	}
	return false, nil
}

// ParseSignature decodes a hex r || s || v signature with an optional "0x" prefix and
// normalizes v to the recovery id 0 or 1. Accepted v values are 0 and 1, 27 and 28,
// and replay-protected values of 35 and above.
func ParseSignature(s string) ([]byte, error) {
	sig, err := utils.ParseHex(s)
	if err != nil {
		return nil, err
	}
	if len(sig) != Length {
		return nil, fmt.Errorf("%w: signature must be %d bytes, got %d", model.ErrInput, Length, len(sig))
	}

	v := sig[crypto.RecoveryIDOffset]
	switch {
	case v <= 1:
	case v == 27 || v == 28:
		v -= 27
	case v >= 35:
		v = (v - 35) % 2
	default:
		return nil, fmt.Errorf("%w: invalid signature recovery value %d", model.ErrInput, v)
	}
	sig[crypto.RecoveryIDOffset] = v
	return sig, nil
}

// Recover returns the address whose key produced sig over digest. The recovery id of sig must be 0 or 1.
func Recover(digest, sig []byte) (common.Address, error) {
	if len(sig) != Length {
		return common.Address{}, fmt.Errorf("%w: signature must be %d bytes, got %d", model.ErrInput, Length, len(sig))
	}
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	if !crypto.ValidateSignatureValues(sig[crypto.RecoveryIDOffset], r, s, false) {
		return common.Address{}, fmt.Errorf("%w: signature values out of range", model.ErrInput)
	}
	pub, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: recover public key: %v", model.ErrInput, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}
