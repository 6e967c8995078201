// Package chain defines the adapter interface every supported blockchain
// implements and dispatches to the concrete Solana/Ethereum adapters by
// model.Chain. Adapters never touch persistence, RPC, or the Keyring's seed
// storage directly; they operate purely on the key material handed to them.
package chain

import (
	"github.com/vaultwallet/keyring/internal/model"
)

// Adapter is the five-operation contract every chain implements: derive a
// public key and address from a seed and account index, validate an address
// string, sign a chain-specific transaction request, sign an opaque message,
// and report the chain's canonical default derivation path for an index.
type Adapter interface {
	DeriveAccount(seed []byte, index uint32) (pubKeyHex string, address string, path string, err error)
	ValidateAddress(addr string) error
	SignTransaction(privKey []byte, txRequest any) ([]byte, error)
	SignMessage(privKey []byte, msg []byte) ([]byte, error)
	DefaultPath(index uint32) string
}

// ForChain resolves the adapter for a chain, or nil if unsupported.
func ForChain(c model.Chain) Adapter {
	switch c {
	case model.ChainSolana:
		return Solana{}
	case model.ChainEthereum:
		return Ethereum{}
	default:
		return nil
	}
}
