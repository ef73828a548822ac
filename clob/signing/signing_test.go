package signing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/followbot/gofollow/clob/types"
)

// Well-known Hardhat test key.
const testKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func TestPrivateKeyFromHex(t *testing.T) {
	key, err := PrivateKeyFromHex(testKeyHex)
	require.NoError(t, err)
	require.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", GetAddressFromPrivateKey(key).Hex())

	// A 0x prefix is accepted.
	key2, err := PrivateKeyFromHex("0x" + testKeyHex)
	require.NoError(t, err)
	require.Equal(t, GetAddressFromPrivateKey(key), GetAddressFromPrivateKey(key2))

	_, err = PrivateKeyFromHex("not-a-key")
	require.Error(t, err)
}

func TestBuildClobEIP712Signature(t *testing.T) {
	key, err := PrivateKeyFromHex(testKeyHex)
	require.NoError(t, err)

	sig, err := BuildClobEIP712Signature(key, types.ChainPolygon, 1700000000, 0)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(sig, "0x"))
	require.Len(t, sig, 2+65*2, "r(32) + s(32) + v(1) hex encoded")

	// Signing is deterministic for fixed inputs.
	again, err := BuildClobEIP712Signature(key, types.ChainPolygon, 1700000000, 0)
	require.NoError(t, err)
	require.Equal(t, sig, again)

	other, err := BuildClobEIP712Signature(key, types.ChainPolygon, 1700000001, 0)
	require.NoError(t, err)
	require.NotEqual(t, sig, other)
}

func TestBuildPolyHmacSignature(t *testing.T) {
	secret := "c2VjcmV0LXNlZWQtZm9yLXRlc3Rz" // base64("secret-seed-for-tests")
	body := `{"hello":"world"}`

	sig, err := BuildPolyHmacSignature(secret, 1700000000, "POST", "/order", &body)
	require.NoError(t, err)
	require.NotEmpty(t, sig)
	require.NotContains(t, sig, "+")
	require.NotContains(t, sig, "/")

	// Same inputs, same signature; any input change shifts it.
	again, err := BuildPolyHmacSignature(secret, 1700000000, "POST", "/order", &body)
	require.NoError(t, err)
	require.Equal(t, sig, again)

	noBody, err := BuildPolyHmacSignature(secret, 1700000000, "POST", "/order", nil)
	require.NoError(t, err)
	require.NotEqual(t, sig, noBody)
}
