package vaultcrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/json"

	"golang.org/x/crypto/scrypt"

	"github.com/vaultwallet/keyring/internal/model"
)

// Legacy v0 envelopes were sealed with scrypt + AES-GCM over a JSON-wrapped
// single private key, not Argon2id + ChaCha20-Poly1305 over a raw BIP39 seed.
// The parameters below match the original format's constants exactly so
// existing v0 ciphertext still opens.
const (
	legacyScryptN      = 1 << 18
	legacyScryptR      = 8
	legacyScryptP      = 1
	legacyScryptKeyLen = 32
)

// legacyWalletData is the plaintext JSON shape a v0 envelope decrypts to: a
// single raw private key plus a creation timestamp, predating this
// implementation's BIP39-seed-rooted wallet model.
type legacyWalletData struct {
	PrivateKey []byte `json:"privateKey"`
	CreatedAt  string `json:"createdAt"`
}

// openLegacyV0 decrypts a v0 envelope and returns the raw private key bytes
// it wrapped. The result is not a 64-byte BIP39 seed (v0 predates mnemonic
// derivation entirely), so callers must route it through a migration step
// (cmd/migrate_vault) rather than installing it directly as a Keyring seed.
func openLegacyV0(password []byte, envelope *model.EncryptedSeed) ([]byte, error) {
	key, err := scrypt.Key(password, envelope.Salt, legacyScryptN, legacyScryptR, legacyScryptP, legacyScryptKeyLen)
	if err != nil {
		return nil, model.Wrap(model.ErrStorageUnavailable, "legacy key derivation failed", err)
	}
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, model.Wrap(model.ErrStorageUnavailable, "legacy cipher init failed", err)
	}
	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, model.Wrap(model.ErrStorageUnavailable, "legacy gcm init failed", err)
	}
	plaintext, err := aesGCM.Open(nil, envelope.Nonce, envelope.Ciphertext, nil)
	if err != nil {
		return nil, model.New(model.ErrWrongPassword, "legacy aead authentication failed")
	}
	defer clear(plaintext)

	var data legacyWalletData
	if err := json.Unmarshal(plaintext, &data); err != nil {
		return nil, model.Wrap(model.ErrVaultVersionUnsupported, "legacy envelope plaintext is not the expected shape", err)
	}
	return data.PrivateKey, nil
}
