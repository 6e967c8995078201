// Package store defines the narrow persistence contract the keyring core
// depends on. The core is storage-agnostic: swapping Store implementations
// changes nothing about the Keyring or Multisig state machines.
package store

import (
	"context"

	"github.com/vaultwallet/keyring/internal/model"
)

// Store is the full persistence surface the core requires: vault envelope
// CRUD, derived-account bookkeeping, and multisig proposal bookkeeping, plus a
// transaction boundary for the two operations that must be atomic: reset
// (vault delete + cascade) and approval-recording paired with a status
// transition.
type Store interface {
	PutVault(ctx context.Context, walletID string, envelope *model.EncryptedSeed) error
	GetVault(ctx context.Context, walletID string) (*model.EncryptedSeed, error)
	DeleteVault(ctx context.Context, walletID string) error

	InsertAccount(ctx context.Context, walletID string, acct model.Account) error
	ListAccounts(ctx context.Context, walletID string) ([]model.Account, error)
	GetAccount(ctx context.Context, accountID string) (model.Account, error)
	DeleteAccount(ctx context.Context, walletID string, chain model.Chain, index uint32) error

	InsertProposal(ctx context.Context, p *model.MultisigProposal) error
	UpdateProposal(ctx context.Context, p *model.MultisigProposal) error
	ListProposals(ctx context.Context, groupID string) ([]*model.MultisigProposal, error)
	GetProposal(ctx context.Context, proposalID string) (*model.MultisigProposal, error)

	InsertGroup(ctx context.Context, g *model.MultisigGroup) error
	GetGroup(ctx context.Context, groupID string) (*model.MultisigGroup, error)
	ListGroups(ctx context.Context) ([]*model.MultisigGroup, error)

	// WithTx runs fn inside an atomic transaction boundary; a Store
	// implementation that cannot express true transactions (e.g. an
	// in-memory map guarded by a mutex) may satisfy this by holding its own
	// lock for the duration of fn.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

// ErrNotFound is returned by Get/List lookups that find nothing; callers
// distinguish "no wallet yet" (Keyring's Empty state) from a storage failure.
var ErrNotFound = model.New(model.ErrStorageUnavailable, "not found")
