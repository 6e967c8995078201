package mnemonic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateWordCounts(t *testing.T) {
	for _, wc := range []int{12, 15, 18, 21, 24} {
		words, err := Generate(wc)
		require.NoError(t, err)
		require.Len(t, strings.Fields(words), wc)
		require.NoError(t, Validate(words))
	}
}

func TestGenerateRejectsUnsupportedWordCount(t *testing.T) {
	_, err := Generate(13)
	require.Error(t, err)
}

func TestValidateRejectsBadChecksum(t *testing.T) {
	words := "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon"
	err := Validate(words)
	require.Error(t, err)
}

func TestSeedIsDeterministic(t *testing.T) {
	words := "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	s1, err := Seed(words, "")
	require.NoError(t, err)
	s2, err := Seed(words, "")
	require.NoError(t, err)
	require.Equal(t, s1, s2)
	require.Len(t, s1, 64)
}

func TestSeedNormalizesUnicodeInput(t *testing.T) {
	words := "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

	// NFC and NFD spellings of the same passphrase must derive the same seed.
	nfc := "caf\u00e9"       // e-acute as a single precomposed rune
	nfd := "cafe\u0301"      // e + combining acute accent
	s1, err := Seed(words, nfc)
	require.NoError(t, err)
	s2, err := Seed(words, nfd)
	require.NoError(t, err)
	require.Equal(t, s1, s2)

	// Irregular whitespace in an imported phrase collapses to single spaces.
	s3, err := Seed("  abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon  abandon   about ", "")
	require.NoError(t, err)
	s4, err := Seed(words, "")
	require.NoError(t, err)
	require.Equal(t, s4, s3)
}

func TestSeedDiffersByPassphrase(t *testing.T) {
	words := "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	s1, err := Seed(words, "")
	require.NoError(t, err)
	s2, err := Seed(words, "trezor")
	require.NoError(t, err)
	require.NotEqual(t, s1, s2)
}

func TestSeedRejectsInvalidMnemonic(t *testing.T) {
	_, err := Seed("not a real mnemonic at all", "")
	require.Error(t, err)
}
