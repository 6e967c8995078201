// Package model holds the data types shared across the keyring subsystem and its
// collaborators: chains, accounts, vault metadata, multisig proposals, and the
// tagged error kinds defined in errors.go.
package model

import "time"

// Chain identifies a supported blockchain for derivation, addressing, and signing.
type Chain string

const (
	ChainSolana   Chain = "solana"
	ChainEthereum Chain = "ethereum"
)

func (c Chain) Valid() bool {
	switch c {
	case ChainSolana, ChainEthereum:
		return true
	default:
		return false
	}
}

// Account is a single derived key's public-facing metadata. The private key never
// leaves the keyring/signer boundary; Account carries only what a caller needs to
// address and identify a signer. Uniqueness is (WalletID, Chain, DerivationIndex).
type Account struct {
	ID              string    `json:"id"`
	WalletID        string    `json:"wallet_id"`
	Chain           Chain     `json:"chain"`
	DerivationPath  string    `json:"derivation_path"`
	DerivationIndex uint32    `json:"derivation_index"`
	PublicKey       string    `json:"public_key"`
	Address         string    `json:"address"`
	Name            string    `json:"name,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// VaultVersion tags the on-disk encrypted-seed envelope format, letting the vault
// reject or migrate formats it no longer writes but may still need to read.
type VaultVersion uint8

const (
	VaultVersionLegacyScrypt VaultVersion = 0
	VaultVersionArgon2       VaultVersion = 1
)

// KDFParams records the Argon2id parameters an envelope was sealed with, so a
// password check can be reproduced exactly regardless of later default changes.
type KDFParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
}

// EncryptedSeed is the versioned envelope persisted in place of the raw mnemonic
// seed: an Argon2id-derived key wrapping the seed under ChaCha20-Poly1305.
type EncryptedSeed struct {
	Version    VaultVersion
	KDF        KDFParams
	Salt       []byte
	Nonce      []byte
	Ciphertext []byte
}

// EthereumTxRequest carries the fields needed to build and sign an Ethereum
// transaction. Exactly one of the legacy field (GasPrice) or the EIP-1559 fields
// (MaxFeePerGas/MaxPriorityFeePerGas) must be set; the adapter resolves which
// shape applies and returns ErrTxRequestAmbiguous if both or neither are set.
type EthereumTxRequest struct {
	To                   string
	ValueWei             string
	Nonce                uint64
	GasLimit             uint64
	ChainID              uint64
	Data                 []byte
	GasPrice             *string
	MaxFeePerGas         *string
	MaxPriorityFeePerGas *string
}

// MultisigTxStatus is the state machine a MultisigProposal moves through.
type MultisigTxStatus string

const (
	MultisigPending   MultisigTxStatus = "pending"
	MultisigReady     MultisigTxStatus = "ready"
	MultisigExecuted  MultisigTxStatus = "executed"
	MultisigCancelled MultisigTxStatus = "cancelled"
)

// MultisigGroup is an M-of-N set of owner addresses sharing custody of a chain
// account, enforced entirely off-chain by the coordinator in internal/multisig.
type MultisigGroup struct {
	ID           string
	Chain        Chain
	Owners       []string
	Threshold    int
	GroupAddress string
	CreatedAt    time.Time
}

// MultisigProposal is a single spend proposed against a MultisigGroup, collecting
// owner approvals until it reaches Threshold and becomes executable.
type MultisigProposal struct {
	ID             string
	GroupID        string
	ProposerAddr   string
	To             string
	Amount         string
	Data           []byte
	Nonce          uint64
	Status         MultisigTxStatus
	Approvals      map[string]bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ExecutedAt     *time.Time
	ExecutedTxHash string
}

// ApprovalCount reports how many distinct owners have approved so far.
func (p *MultisigProposal) ApprovalCount() int {
	n := 0
	for _, ok := range p.Approvals {
		if ok {
			n++
		}
	}
	return n
}
