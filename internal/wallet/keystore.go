package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/99designs/keyring"
)

const keychainService = "abistudio"

// KeyEnvVar, when set, supplies the signing key without touching the keychain.
const KeyEnvVar = "ABISTUDIO_KEY"

// KeystoreBackend stores and retrieves hex private keys by reference.
type KeystoreBackend interface {
	Store(name, hexKey string) (string, error)
	Retrieve(ref string) (string, error)
	Delete(ref string) error
}

// Keystore wraps OS keychain access.
type Keystore struct {
	ring keyring.Keyring
}

// DefaultKeystore returns a keystore backed by the OS keychain.
func DefaultKeystore() *Keystore {
	cfg := keyring.Config{
		ServiceName:              keychainService,
		KeychainTrustApplication: true,
	}

	// On Linux without a GUI, fall back to file-based storage.
	if runtime.GOOS == "linux" {
		cfg.AllowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.FileBackend,
		}
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		ring, _ = keyring.Open(keyring.Config{
			ServiceName:     keychainService,
			AllowedBackends: []keyring.BackendType{keyring.FileBackend},
		})
	}

	return &Keystore{ring: ring}
}

// NewKeystore wraps an already-opened keyring.
func NewKeystore(ring keyring.Keyring) *Keystore {
	return &Keystore{ring: ring}
}

// Ref returns the keychain reference used for name.
func Ref(name string) string {
	return keychainService + "." + name
}

// Store saves a private key under name and returns its reference.
func (k *Keystore) Store(name, hexKey string) (string, error) {
	if k.ring == nil {
		return "", fmt.Errorf("keystore not available")
	}
	ref := Ref(name)
	err := k.ring.Set(keyring.Item{
		Key:  ref,
		Data: []byte(normaliseHexKey(hexKey)),
	})
	if err != nil {
		return "", fmt.Errorf("keychain store: %w", err)
	}
	return ref, nil
}

// Retrieve fetches a private key by its reference. ABISTUDIO_KEY takes
// precedence over the keychain.
func (k *Keystore) Retrieve(ref string) (string, error) {
	if env := os.Getenv(KeyEnvVar); env != "" {
		return normaliseHexKey(env), nil
	}
	if k.ring == nil {
		return "", fmt.Errorf("keystore not available")
	}
	item, err := k.ring.Get(ref)
	if err != nil {
		return "", fmt.Errorf("keychain retrieve: %w", err)
	}
	return normaliseHexKey(string(item.Data)), nil
}

// Delete removes a stored key.
func (k *Keystore) Delete(ref string) error {
	if k.ring == nil {
		return nil
	}
	return k.ring.Remove(ref)
}

// KeystoreSource returns a KeySource that loads ref from ks on demand.
func KeystoreSource(ks KeystoreBackend, ref string) KeySource {
	return func() (*ecdsa.PrivateKey, error) {
		hexKey, err := ks.Retrieve(ref)
		if err != nil {
			return nil, fmt.Errorf("retrieving key: %w", err)
		}
		return ParseCredential(hexKey)
	}
}

// normaliseHexKey trims whitespace and a 0x/0X prefix.
func normaliseHexKey(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	return s
}
