package wallet

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testKeystore returns a file-backed Keystore isolated to a temp directory.
// Using the FileBackend avoids OS keychain prompts in CI.
func testKeystore(t *testing.T) *Keystore {
	t.Helper()
	ring, err := keyring.Open(keyring.Config{
		ServiceName:      "abistudio-test",
		AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
		FileDir:          t.TempDir(),
		FilePasswordFunc: func(string) (string, error) { return "testpass", nil },
	})
	require.NoError(t, err)
	return NewKeystore(ring)
}

// memKeystore returns a Keystore over an in-memory keyring.
func memKeystore(t *testing.T) *Keystore {
	t.Helper()
	t.Setenv(KeyEnvVar, "")
	return NewKeystore(keyring.NewArrayKeyring(nil))
}

// ---------------------------------------------------------------------------
// normaliseHexKey
// ---------------------------------------------------------------------------

func TestNormaliseHexKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"0xabc123", "abc123"},
		{"0Xabc123", "abc123"},
		{"abc123", "abc123"},
		{"  0xabc  ", "abc"},
		{"0x", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normaliseHexKey(tt.in), "input %q", tt.in)
	}
}

// ---------------------------------------------------------------------------
// Keystore: file backend round trip
// ---------------------------------------------------------------------------

func TestKeystoreStoreRetrieveDelete(t *testing.T) {
	t.Setenv(KeyEnvVar, "")
	ks := testKeystore(t)

	ref, err := ks.Store("dev", "0x"+testPrivKeyHex)
	require.NoError(t, err)
	assert.Equal(t, "abistudio.dev", ref)

	got, err := ks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, testPrivKeyHex, got)

	require.NoError(t, ks.Delete(ref))
	_, err = ks.Retrieve(ref)
	assert.Error(t, err)
}

func TestKeystoreRetrieveEnvVarOverride(t *testing.T) {
	t.Setenv(KeyEnvVar, "0x"+testPrivKeyHex)

	ks := &Keystore{ring: nil}
	got, err := ks.Retrieve("abistudio.any-ref")
	require.NoError(t, err)
	assert.Equal(t, testPrivKeyHex, got)
}

func TestKeystoreNilRing(t *testing.T) {
	t.Setenv(KeyEnvVar, "")
	ks := &Keystore{ring: nil}

	_, err := ks.Retrieve("abistudio.x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keystore not available")

	_, err = ks.Store("x", testPrivKeyHex)
	assert.Error(t, err)
	assert.NoError(t, ks.Delete("abistudio.x"))
}

// ---------------------------------------------------------------------------
// KeystoreSource
// ---------------------------------------------------------------------------

func TestKeystoreSourceLoadsKey(t *testing.T) {
	iks := memKeystore(t)
	ref, err := iks.Store("signer", testPrivKeyHex)
	require.NoError(t, err)

	key, err := KeystoreSource(iks, ref)()
	require.NoError(t, err)
	assert.Equal(t, testSignerAddr, addressOf(key).Hex())
}

func TestKeystoreSourceMissingRef(t *testing.T) {
	_, err := KeystoreSource(memKeystore(t), "abistudio.missing")()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieving key")
}

func TestKeystoreSourceBadKey(t *testing.T) {
	iks := memKeystore(t)
	ref, _ := iks.Store("bad", "not-hex")

	_, err := KeystoreSource(iks, ref)()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCredential)
}
