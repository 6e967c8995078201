package store

import (
	"context"
	"sync"

	"github.com/vaultwallet/keyring/internal/model"
)

// MemStore is an in-memory Store guarded by a single mutex, used by tests and
// by cmd/walletd when STORAGE_DRIVER is "memory". WithTx holds the mutex for
// its callback's duration, so no other caller observes the callback's
// intermediate writes; writes made before the callback returns an error are
// not rolled back.
type MemStore struct {
	mu        sync.Mutex
	vaults    map[string]*model.EncryptedSeed
	accounts  map[string][]model.Account
	proposals map[string]*model.MultisigProposal
	groups    map[string]*model.MultisigGroup
}

// NewMemStore constructs an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		vaults:    make(map[string]*model.EncryptedSeed),
		accounts:  make(map[string][]model.Account),
		proposals: make(map[string]*model.MultisigProposal),
		groups:    make(map[string]*model.MultisigGroup),
	}
}

func (s *MemStore) PutVault(_ context.Context, walletID string, envelope *model.EncryptedSeed) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vaults[walletID] = envelope
	return nil
}

func (s *MemStore) GetVault(_ context.Context, walletID string) (*model.EncryptedSeed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vaults[walletID]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (s *MemStore) DeleteVault(_ context.Context, walletID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.vaults, walletID)
	delete(s.accounts, walletID)
	return nil
}

func (s *MemStore) InsertAccount(_ context.Context, walletID string, acct model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[walletID] = append(s.accounts[walletID], acct)
	return nil
}

func (s *MemStore) ListAccounts(_ context.Context, walletID string) ([]model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Account, len(s.accounts[walletID]))
	copy(out, s.accounts[walletID])
	return out, nil
}

func (s *MemStore) GetAccount(_ context.Context, accountID string) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, accts := range s.accounts {
		for _, a := range accts {
			if a.ID == accountID {
				return a, nil
			}
		}
	}
	return model.Account{}, ErrNotFound
}

func (s *MemStore) DeleteAccount(_ context.Context, walletID string, chain model.Chain, index uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	accts := s.accounts[walletID]
	out := accts[:0]
	for _, a := range accts {
		if a.Chain == chain && a.DerivationIndex == index {
			continue
		}
		out = append(out, a)
	}
	s.accounts[walletID] = out
	return nil
}

func (s *MemStore) InsertProposal(_ context.Context, p *model.MultisigProposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proposals[p.ID] = p
	return nil
}

func (s *MemStore) UpdateProposal(_ context.Context, p *model.MultisigProposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proposals[p.ID] = p
	return nil
}

func (s *MemStore) ListProposals(_ context.Context, groupID string) ([]*model.MultisigProposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.MultisigProposal
	for _, p := range s.proposals {
		if p.GroupID == groupID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *MemStore) GetProposal(_ context.Context, proposalID string) (*model.MultisigProposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.proposals[proposalID]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *MemStore) InsertGroup(_ context.Context, g *model.MultisigGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[g.ID] = g
	return nil
}

func (s *MemStore) GetGroup(_ context.Context, groupID string) (*model.MultisigGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[groupID]
	if !ok {
		return nil, ErrNotFound
	}
	return g, nil
}

func (s *MemStore) ListGroups(_ context.Context) ([]*model.MultisigGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.MultisigGroup, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, g)
	}
	return out, nil
}

// WithTx holds the store's mutex for fn's duration. fn receives an
// unlockedMemStore view over s whose methods skip the mutex, since
// sync.Mutex is not reentrant and fn's store calls must not re-lock it.
func (s *MemStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx, &unlockedMemStore{s})
}

// unlockedMemStore wraps MemStore's methods without re-acquiring the mutex,
// for use inside WithTx where the lock is already held.
type unlockedMemStore struct{ s *MemStore }

func (u *unlockedMemStore) PutVault(ctx context.Context, walletID string, envelope *model.EncryptedSeed) error {
	u.s.vaults[walletID] = envelope
	return nil
}
func (u *unlockedMemStore) GetVault(ctx context.Context, walletID string) (*model.EncryptedSeed, error) {
	v, ok := u.s.vaults[walletID]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}
func (u *unlockedMemStore) DeleteVault(ctx context.Context, walletID string) error {
	delete(u.s.vaults, walletID)
	delete(u.s.accounts, walletID)
	return nil
}
func (u *unlockedMemStore) InsertAccount(ctx context.Context, walletID string, acct model.Account) error {
	u.s.accounts[walletID] = append(u.s.accounts[walletID], acct)
	return nil
}
func (u *unlockedMemStore) ListAccounts(ctx context.Context, walletID string) ([]model.Account, error) {
	out := make([]model.Account, len(u.s.accounts[walletID]))
	copy(out, u.s.accounts[walletID])
	return out, nil
}
func (u *unlockedMemStore) GetAccount(ctx context.Context, accountID string) (model.Account, error) {
	for _, accts := range u.s.accounts {
		for _, a := range accts {
			if a.ID == accountID {
				return a, nil
			}
		}
	}
	return model.Account{}, ErrNotFound
}
func (u *unlockedMemStore) DeleteAccount(ctx context.Context, walletID string, chain model.Chain, index uint32) error {
	accts := u.s.accounts[walletID]
	out := accts[:0]
	for _, a := range accts {
		if a.Chain == chain && a.DerivationIndex == index {
			continue
		}
		out = append(out, a)
	}
	u.s.accounts[walletID] = out
	return nil
}
func (u *unlockedMemStore) InsertProposal(ctx context.Context, p *model.MultisigProposal) error {
	u.s.proposals[p.ID] = p
	return nil
}
func (u *unlockedMemStore) UpdateProposal(ctx context.Context, p *model.MultisigProposal) error {
	u.s.proposals[p.ID] = p
	return nil
}
func (u *unlockedMemStore) ListProposals(ctx context.Context, groupID string) ([]*model.MultisigProposal, error) {
	var out []*model.MultisigProposal
	for _, p := range u.s.proposals {
		if p.GroupID == groupID {
			out = append(out, p)
		}
	}
	return out, nil
}
func (u *unlockedMemStore) GetProposal(ctx context.Context, proposalID string) (*model.MultisigProposal, error) {
	p, ok := u.s.proposals[proposalID]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}
func (u *unlockedMemStore) InsertGroup(ctx context.Context, g *model.MultisigGroup) error {
	u.s.groups[g.ID] = g
	return nil
}
func (u *unlockedMemStore) GetGroup(ctx context.Context, groupID string) (*model.MultisigGroup, error) {
	g, ok := u.s.groups[groupID]
	if !ok {
		return nil, ErrNotFound
	}
	return g, nil
}
func (u *unlockedMemStore) ListGroups(ctx context.Context) ([]*model.MultisigGroup, error) {
	out := make([]*model.MultisigGroup, 0, len(u.s.groups))
	for _, g := range u.s.groups {
		out = append(out, g)
	}
	return out, nil
}
func (u *unlockedMemStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return fn(ctx, u)
}
