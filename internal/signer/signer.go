// Package signer is the single dispatcher through which private key bytes
// ever leave the keyring module. It resolves an account's chain and
// derivation path, takes a view of the unlocked seed, invokes the chain
// adapter, and zeroizes every intermediate key before returning.
package signer

import (
	"github.com/vaultwallet/keyring/internal/bip32"
	"github.com/vaultwallet/keyring/internal/chain"
	"github.com/vaultwallet/keyring/internal/derivation"
	"github.com/vaultwallet/keyring/internal/keyring"
	"github.com/vaultwallet/keyring/internal/model"
	"github.com/vaultwallet/keyring/internal/slip10"
)

// Dispatcher signs on behalf of accounts held by a single Keyring.
type Dispatcher struct {
	kr *keyring.Keyring
}

// New constructs a Dispatcher over kr.
func New(kr *keyring.Keyring) *Dispatcher {
	return &Dispatcher{kr: kr}
}

// DeriveAccount derives the public key and address for (chain, index) from
// the live seed without ever returning the private key.
func (d *Dispatcher) DeriveAccount(c model.Chain, index uint32) (model.Account, error) {
	adapter := chain.ForChain(c)
	if adapter == nil {
		return model.Account{}, model.New(model.ErrPathInvalid, "unsupported chain")
	}
	var acct model.Account
	err := d.kr.WithSeed(func(seed []byte) error {
		pub, addr, path, err := adapter.DeriveAccount(seed, index)
		if err != nil {
			return err
		}
		acct = model.Account{Chain: c, DerivationPath: path, DerivationIndex: index, PublicKey: pub, Address: addr}
		return nil
	})
	return acct, err
}

// Sign resolves acct's chain adapter, derives its private key from the live
// seed along the account's recorded derivation path, signs txRequest,
// zeroizes the private key, and returns the signature. Returns WalletLocked
// if the keyring is not Unlocked.
func (d *Dispatcher) Sign(acct model.Account, txRequest any) ([]byte, error) {
	adapter := chain.ForChain(acct.Chain)
	if adapter == nil {
		return nil, model.New(model.ErrPathInvalid, "unsupported chain")
	}
	var sig []byte
	err := d.kr.WithSeed(func(seed []byte) error {
		priv, err := derivePrivateKey(acct.Chain, seed, accountPath(adapter, acct))
		if err != nil {
			return err
		}
		defer clear(priv)
		sig, err = adapter.SignTransaction(priv, txRequest)
		return err
	})
	return sig, err
}

// SignMessage is Sign's counterpart for opaque message signatures (served by
// the POST /sign/message handler).
func (d *Dispatcher) SignMessage(acct model.Account, msg []byte) ([]byte, error) {
	adapter := chain.ForChain(acct.Chain)
	if adapter == nil {
		return nil, model.New(model.ErrPathInvalid, "unsupported chain")
	}
	var sig []byte
	err := d.kr.WithSeed(func(seed []byte) error {
		priv, err := derivePrivateKey(acct.Chain, seed, accountPath(adapter, acct))
		if err != nil {
			return err
		}
		defer clear(priv)
		sig, err = adapter.SignMessage(priv, msg)
		return err
	})
	return sig, err
}

// ValidateAddress dispatches to the chain adapter without touching the seed.
func ValidateAddress(c model.Chain, addr string) error {
	adapter := chain.ForChain(c)
	if adapter == nil {
		return model.New(model.ErrPathInvalid, "unsupported chain")
	}
	return adapter.ValidateAddress(addr)
}

// accountPath is the derivation path signing walks: the path recorded on the
// account row, or the chain's default path for the account's index when the
// row predates path persistence.
func accountPath(adapter chain.Adapter, acct model.Account) string {
	if acct.DerivationPath != "" {
		return acct.DerivationPath
	}
	return adapter.DefaultPath(acct.DerivationIndex)
}

// derivePrivateKey parses path and walks it over the chain's derivation
// scheme, returning the raw private key bytes the adapter expects: a 32-byte
// secp256k1 scalar for Ethereum, a 32-byte ed25519 seed for Solana.
// Intermediate nodes are zeroized as derivation descends. A non-hardened
// component in a Solana path surfaces slip10's DerivationInvalid.
func derivePrivateKey(c model.Chain, seed []byte, path string) ([]byte, error) {
	components, err := derivation.ParsePath(path)
	if err != nil {
		return nil, err
	}
	switch c {
	case model.ChainEthereum:
		master, err := bip32.NewMasterKey(seed)
		if err != nil {
			return nil, err
		}
		defer master.Zero()
		node := master
		for _, comp := range components {
			child, err := node.DeriveChild(comp.RawIndex())
			if node != master {
				node.Zero()
			}
			if err != nil {
				return nil, err
			}
			node = child
		}
		priv := make([]byte, len(node.PrivateKey))
		copy(priv, node.PrivateKey)
		node.Zero()
		return priv, nil
	case model.ChainSolana:
		master := slip10.NewMasterKey(seed)
		defer master.Zero()
		node := master
		for _, comp := range components {
			child, err := node.DeriveChild(comp.RawIndex())
			if node != master {
				node.Zero()
			}
			if err != nil {
				return nil, err
			}
			node = child
		}
		priv := make([]byte, len(node.Key))
		copy(priv, node.Key)
		node.Zero()
		return priv, nil
	default:
		return nil, model.New(model.ErrPathInvalid, "unsupported chain")
	}
}
