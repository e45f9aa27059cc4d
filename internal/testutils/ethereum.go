package testutils

import (
	"crypto/ecdsa"
	"crypto/rand"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

// PrivateKeyFixture generates a new random private key for use in tests.
// It fails the test immediately if key generation does not succeed.
func PrivateKeyFixture(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	priv, err := crypto.GenerateKey()
	require.NoError(t, err, "failed to generate private key")
	return priv
}

// RandomAddress generates a random Ethereum address for testing.
func RandomAddress(t *testing.T) common.Address {
	t.Helper()

	b := make([]byte, common.AddressLength)
	_, err := rand.Read(b)
	require.NoError(t, err, "failed to generate random bytes for address")

	return common.BytesToAddress(b)
}

// SignPersonalMessage signs message the way wallets implement personal_sign:
// the EIP-191 prefixed Keccak-256 digest is signed and v is 27 or 28.
// It returns the 0x-prefixed 65-byte signature.
func SignPersonalMessage(t *testing.T, priv *ecdsa.PrivateKey, message []byte) string {
	t.Helper()
	sig := SignDigest(t, priv, accounts.TextHash(message))
	sig[64] += 27
	return hexutil.Encode(sig)
}

// SignDigest signs a 32-byte digest and returns r || s || v with v in {0, 1}.
func SignDigest(t *testing.T, priv *ecdsa.PrivateKey, digest []byte) []byte {
	t.Helper()
	sig, err := crypto.Sign(digest, priv)
	require.NoError(t, err, "failed to sign digest")
	return sig
}
