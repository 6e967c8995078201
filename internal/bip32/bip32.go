// Package bip32 implements BIP32 hierarchical deterministic key derivation for
// secp256k1, the curve used by the Ethereum chain adapter. Derivation follows
// the master-key/child-key construction from the original BIP32 spec: HMAC-SHA512
// keyed by "Bitcoin seed" for the master, and hardened/non-hardened child
// expansion via raw private key or compressed public key, respectively,
// concatenated with the index.
package bip32

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/vaultwallet/keyring/internal/model"
)

const hardenedOffset uint32 = 0x80000000

// masterKeyHMACKey is the fixed HMAC key used to derive a master extended key
// from a BIP39 seed, per BIP32.
var masterKeyHMACKey = []byte("Bitcoin seed")

// ExtendedKey is a secp256k1 private key plus its chain code, the unit BIP32
// derivation operates on at every depth.
type ExtendedKey struct {
	PrivateKey []byte // 32 bytes
	ChainCode  []byte // 32 bytes
}

// Zero overwrites the key material in place. Callers must call this once an
// ExtendedKey is no longer needed.
func (k *ExtendedKey) Zero() {
	if k == nil {
		return
	}
	clear(k.PrivateKey)
	clear(k.ChainCode)
}

// NewMasterKey derives the root extended key from a BIP39 seed.
func NewMasterKey(seed []byte) (*ExtendedKey, error) {
	mac := hmac.New(sha512.New, masterKeyHMACKey)
	mac.Write(seed)
	sum := mac.Sum(nil)

	il, ir := sum[:32], sum[32:]
	if !validScalar(il) {
		return nil, model.New(model.ErrDerivationOutOfRange, "master key scalar out of range")
	}
	return &ExtendedKey{PrivateKey: il, ChainCode: ir}, nil
}

// DeriveChild derives the child at the given index. index >= hardenedOffset
// (equivalently, the path component carried the hardening marker) selects
// hardened derivation.
func (k *ExtendedKey) DeriveChild(index uint32) (*ExtendedKey, error) {
	var data []byte
	if index >= hardenedOffset {
		data = make([]byte, 0, 1+32+4)
		data = append(data, 0x00)
		data = append(data, k.PrivateKey...)
	} else {
		pub := secp256k1.PrivKeyFromBytes(k.PrivateKey).PubKey()
		data = make([]byte, 0, 33+4)
		data = append(data, pub.SerializeCompressed()...)
	}
	var idxBytes [4]byte
	binary.BigEndian.PutUint32(idxBytes[:], index)
	data = append(data, idxBytes[:]...)

	mac := hmac.New(sha512.New, k.ChainCode)
	mac.Write(data)
	sum := mac.Sum(nil)
	il, ir := sum[:32], sum[32:]

	if !validScalar(il) {
		return nil, model.New(model.ErrDerivationOutOfRange, "child key scalar out of range")
	}

	childScalar, err := addScalars(il, k.PrivateKey)
	if err != nil {
		return nil, err
	}
	return &ExtendedKey{PrivateKey: childScalar, ChainCode: ir}, nil
}

// validScalar reports whether il, read as a big-endian 32-byte integer, is a
// valid secp256k1 private scalar: nonzero and less than the curve order.
func validScalar(il []byte) bool {
	var s secp256k1.ModNScalar
	overflow := s.SetByteSlice(il)
	if overflow {
		return false
	}
	return !s.IsZero()
}

// addScalars computes (il + parent) mod n, returning DerivationOutOfRange if
// the sum is the degenerate zero scalar.
func addScalars(il, parent []byte) ([]byte, error) {
	var a, b secp256k1.ModNScalar
	a.SetByteSlice(il)
	b.SetByteSlice(parent)
	a.Add(&b)
	if a.IsZero() {
		return nil, model.New(model.ErrDerivationOutOfRange, "child scalar sum is zero")
	}
	out := a.Bytes()
	return out[:], nil
}

// PublicKeyCompressed returns the 33-byte compressed secp256k1 public key for k.
func (k *ExtendedKey) PublicKeyCompressed() []byte {
	pub := secp256k1.PrivKeyFromBytes(k.PrivateKey).PubKey()
	return pub.SerializeCompressed()
}

// PublicKeyUncompressed returns the 65-byte uncompressed secp256k1 public key,
// the form the Ethereum address algorithm hashes.
func (k *ExtendedKey) PublicKeyUncompressed() []byte {
	pub := secp256k1.PrivKeyFromBytes(k.PrivateKey).PubKey()
	return pub.SerializeUncompressed()
}

// IsHardenedIndex reports whether index carries the hardening offset.
func IsHardenedIndex(index uint32) bool {
	return index >= hardenedOffset
}

// HardenedOffset exposes the 2^31 hardening constant to callers that build raw
// child indices, such as the chain adapters.
func HardenedOffset() uint32 { return hardenedOffset }
