// Package mnemonic wraps BIP39 entropy<->word-list encoding and seed derivation.
// It never persists a mnemonic; callers own the transient handling (display
// once, zeroize after use).
package mnemonic

import (
	"strings"

	"github.com/tyler-smith/go-bip39"
	"golang.org/x/text/unicode/norm"

	"github.com/vaultwallet/keyring/internal/model"
)

// validWordCounts mirrors BIP39's fixed entropy lengths: 128,160,192,224,256 bits
// encode to 12,15,18,21,24 words respectively.
var validWordCounts = map[int]bool{12: true, 15: true, 18: true, 21: true, 24: true}

// EntropyBitsForWords returns the CSPRNG entropy size go-bip39 expects to produce
// the requested mnemonic word count, or 0 if wordCount is not one of the five
// supported lengths.
func EntropyBitsForWords(wordCount int) int {
	switch wordCount {
	case 12:
		return 128
	case 15:
		return 160
	case 18:
		return 192
	case 21:
		return 224
	case 24:
		return 256
	default:
		return 0
	}
}

// Generate produces a fresh mnemonic of the given word count using a CSPRNG for
// entropy. wordCount must be one of 12,15,18,21,24.
func Generate(wordCount int) (string, error) {
	bits := EntropyBitsForWords(wordCount)
	if bits == 0 {
		return "", model.New(model.ErrMnemonicInvalid, "unsupported word count")
	}
	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", model.Wrap(model.ErrMnemonicInvalid, "entropy generation failed", err)
	}
	words, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", model.Wrap(model.ErrMnemonicInvalid, "mnemonic encoding failed", err)
	}
	return words, nil
}

// canonical renders words in the form BIP39 operates on: NFKD Unicode,
// single-ASCII-space joined. English wordlist entries are NFKD-invariant, but
// imported phrases may arrive in other Unicode forms or with irregular
// whitespace.
func canonical(words string) string {
	return strings.Join(strings.Fields(norm.NFKD.String(words)), " ")
}

// Validate checks word count, wordlist membership, and checksum, in that order,
// returning ErrMnemonicInvalid on any failure.
func Validate(words string) error {
	words = canonical(words)
	if !validWordCounts[len(strings.Fields(words))] {
		return model.New(model.ErrMnemonicInvalid, "word count not in {12,15,18,21,24}")
	}
	if !bip39.IsMnemonicValid(words) {
		return model.New(model.ErrMnemonicInvalid, "unknown word or checksum mismatch")
	}
	return nil
}

// Seed derives the 64-byte BIP39 seed: PBKDF2-HMAC-SHA512 over the NFKD
// mnemonic and the NFKD passphrase prefixed with "mnemonic", 2048 rounds.
// Passphrase defaults to empty. Both inputs are normalized before the KDF
// runs, so a non-ASCII passphrase derives the same seed regardless of which
// Unicode form the caller supplied it in. The caller owns zeroizing the
// returned slice.
func Seed(words, passphrase string) ([]byte, error) {
	words = canonical(words)
	if err := Validate(words); err != nil {
		return nil, err
	}
	return bip39.NewSeed(words, norm.NFKD.String(passphrase)), nil
}
