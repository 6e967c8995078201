// Package vaultcrypto seals and opens the encrypted seed envelope: Argon2id
// derives a 32-byte AEAD key from the caller's password and a random salt, and
// ChaCha20-Poly1305 wraps the seed under that key. The envelope is versioned so
// a future KDF/AEAD change can migrate old envelopes without breaking them.
package vaultcrypto

import (
	"crypto/rand"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/vaultwallet/keyring/internal/model"
)

const (
	saltSize  = 16
	nonceSize = chacha20poly1305.NonceSize // 12
	keySize   = chacha20poly1305.KeySize   // 32
)

// DefaultKDFParams is the current Argon2id profile: 64 MiB memory, 3 passes,
// single-lane parallelism.
var DefaultKDFParams = model.KDFParams{
	MemoryKiB:   64 * 1024,
	Iterations:  3,
	Parallelism: 1,
}

// Seal encrypts seed under password, drawing a fresh random salt and nonce.
// The returned envelope is always written at the current version; it never
// produces a legacy envelope.
func Seal(password []byte, seed []byte) (*model.EncryptedSeed, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, model.Wrap(model.ErrStorageUnavailable, "failed to draw random salt", err)
	}
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, model.Wrap(model.ErrStorageUnavailable, "failed to draw random nonce", err)
	}

	key := deriveKey(password, salt, DefaultKDFParams)
	defer clear(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, model.Wrap(model.ErrStorageUnavailable, "aead init failed", err)
	}
	ciphertext := aead.Seal(nil, nonce, seed, nil)

	return &model.EncryptedSeed{
		Version:    model.VaultVersionArgon2,
		KDF:        DefaultKDFParams,
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: ciphertext,
	}, nil
}

// Open decrypts envelope under password. An AEAD tag mismatch is reported as
// WrongPassword; there is no separate attempt counter, the only throttle on
// password guessing is Argon2id's own cost. Unrecognized envelope versions
// fail with VaultVersionUnsupported before any KDF work runs.
//
// A v0 (legacy scrypt + AES-GCM) envelope decrypts successfully here, but the
// bytes it yields are a raw private key, not a 64-byte BIP39 seed; the
// Keyring never installs a v0 plaintext directly as its unlocked seed.
// cmd/migrate_vault is the only caller that should use Open on a v0 envelope;
// it re-seals the result at v1 so the running Keyring only ever sees v1.
func Open(password []byte, envelope *model.EncryptedSeed) ([]byte, error) {
	switch envelope.Version {
	case model.VaultVersionArgon2:
		return openArgon2(password, envelope)
	case model.VaultVersionLegacyScrypt:
		return openLegacyV0(password, envelope)
	default:
		return nil, model.New(model.ErrVaultVersionUnsupported, "unknown vault version")
	}
}

func openArgon2(password []byte, envelope *model.EncryptedSeed) ([]byte, error) {
	key := deriveKey(password, envelope.Salt, envelope.KDF)
	defer clear(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, model.Wrap(model.ErrStorageUnavailable, "aead init failed", err)
	}
	seed, err := aead.Open(nil, envelope.Nonce, envelope.Ciphertext, nil)
	if err != nil {
		return nil, model.New(model.ErrWrongPassword, "aead authentication failed")
	}
	return seed, nil
}

func deriveKey(password, salt []byte, params model.KDFParams) []byte {
	return argon2.IDKey(password, salt, params.Iterations, params.MemoryKiB, params.Parallelism, keySize)
}
