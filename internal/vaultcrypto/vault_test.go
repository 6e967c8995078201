package vaultcrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/scrypt"

	"github.com/vaultwallet/keyring/internal/model"
)

func TestSealOpenRoundTrip(t *testing.T) {
	password := []byte("correct horse battery staple")
	seed := make([]byte, 64)
	for i := range seed {
		seed[i] = byte(i)
	}

	envelope, err := Seal(password, seed)
	require.NoError(t, err)
	require.Equal(t, model.VaultVersionArgon2, envelope.Version)

	got, err := Open(password, envelope)
	require.NoError(t, err)
	require.Equal(t, seed, got)
}

func TestOpenRejectsWrongPassword(t *testing.T) {
	seed := []byte("a 64 byte seed padded out-------------------------------------")
	envelope, err := Seal([]byte("right password"), seed)
	require.NoError(t, err)

	_, err = Open([]byte("wrong password"), envelope)
	require.Error(t, err)
	require.Equal(t, model.ErrWrongPassword, model.KindOf(err))
}

func TestOpenRejectsUnknownVersion(t *testing.T) {
	envelope := &model.EncryptedSeed{Version: model.VaultVersion(99)}
	_, err := Open([]byte("pw"), envelope)
	require.Error(t, err)
	require.Equal(t, model.ErrVaultVersionUnsupported, model.KindOf(err))
}

func TestSealUsesDefaultKDFParams(t *testing.T) {
	password := []byte("pw")
	seed := make([]byte, 64)
	envelope, err := Seal(password, seed)
	require.NoError(t, err)
	require.Equal(t, DefaultKDFParams, envelope.KDF)
}

func TestOpenLegacyV0Envelope(t *testing.T) {
	password := []byte("legacy password")
	salt := make([]byte, 16)
	_, err := rand.Read(salt)
	require.NoError(t, err)

	key, err := scrypt.Key(password, salt, legacyScryptN, legacyScryptR, legacyScryptP, legacyScryptKeyLen)
	require.NoError(t, err)

	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	aesGCM, err := cipher.NewGCM(block)
	require.NoError(t, err)

	nonce := make([]byte, aesGCM.NonceSize())
	_, err = rand.Read(nonce)
	require.NoError(t, err)

	plaintext, err := json.Marshal(legacyWalletData{PrivateKey: []byte("a raw secp256k1 private key!!!!"), CreatedAt: "2024-01-01T00:00:00Z"})
	require.NoError(t, err)
	ciphertext := aesGCM.Seal(nil, nonce, plaintext, nil)

	envelope := &model.EncryptedSeed{
		Version:    model.VaultVersionLegacyScrypt,
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: ciphertext,
	}

	got, err := Open(password, envelope)
	require.NoError(t, err)
	require.Equal(t, []byte("a raw secp256k1 private key!!!!"), got)
}

func TestOpenLegacyV0WrongPassword(t *testing.T) {
	salt := make([]byte, 16)
	key, err := scrypt.Key([]byte("right"), salt, legacyScryptN, legacyScryptR, legacyScryptP, legacyScryptKeyLen)
	require.NoError(t, err)
	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	aesGCM, err := cipher.NewGCM(block)
	require.NoError(t, err)
	nonce := make([]byte, aesGCM.NonceSize())
	ciphertext := aesGCM.Seal(nil, nonce, []byte("plaintext"), nil)

	envelope := &model.EncryptedSeed{Version: model.VaultVersionLegacyScrypt, Salt: salt, Nonce: nonce, Ciphertext: ciphertext}
	_, err = Open([]byte("wrong"), envelope)
	require.Error(t, err)
	require.Equal(t, model.ErrWrongPassword, model.KindOf(err))
}
