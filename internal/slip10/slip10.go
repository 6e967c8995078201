// Package slip10 implements SLIP-0010 ed25519 hierarchical deterministic key
// derivation, used by the Solana chain adapter. Unlike secp256k1 BIP32, ed25519
// SLIP-10 supports hardened derivation only: every path component must carry the
// hardening marker.
package slip10

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"

	"github.com/vaultwallet/keyring/internal/model"
)

const hardenedOffset uint32 = 0x80000000

var masterKeyHMACKey = []byte("ed25519 seed")

// Key is an ed25519 SLIP-10 node: a 32-byte seed used as the private key and its
// 32-byte chain code.
type Key struct {
	Key       []byte // 32 bytes
	ChainCode []byte // 32 bytes
}

// Zero overwrites the key material in place.
func (k *Key) Zero() {
	if k == nil {
		return
	}
	clear(k.Key)
	clear(k.ChainCode)
}

// NewMasterKey derives the ed25519 SLIP-10 root node from a BIP39 seed.
func NewMasterKey(seed []byte) *Key {
	mac := hmac.New(sha512.New, masterKeyHMACKey)
	mac.Write(seed)
	sum := mac.Sum(nil)
	return &Key{Key: sum[:32], ChainCode: sum[32:]}
}

// DeriveChild derives the child at index. index must carry the hardening
// offset (>= 2^31); ed25519 SLIP-10 has no non-hardened derivation, and passing
// an unhardened index is ErrDerivationInvalid.
func (k *Key) DeriveChild(index uint32) (*Key, error) {
	if index < hardenedOffset {
		return nil, model.New(model.ErrDerivationInvalid, "ed25519 SLIP-10 supports hardened derivation only")
	}
	data := make([]byte, 0, 1+32+4)
	data = append(data, 0x00)
	data = append(data, k.Key...)
	var idxBytes [4]byte
	binary.BigEndian.PutUint32(idxBytes[:], index)
	data = append(data, idxBytes[:]...)

	mac := hmac.New(sha512.New, k.ChainCode)
	mac.Write(data)
	sum := mac.Sum(nil)
	return &Key{Key: sum[:32], ChainCode: sum[32:]}, nil
}

// IsHardenedIndex reports whether index carries the hardening offset.
func IsHardenedIndex(index uint32) bool {
	return index >= hardenedOffset
}

// HardenedOffset exposes the 2^31 hardening constant to callers that build raw
// child indices, such as the chain adapters.
func HardenedOffset() uint32 { return hardenedOffset }
