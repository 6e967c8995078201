package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vaultwallet/keyring/internal/model"
)

func TestMemStoreVaultCRUD(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	_, err := s.GetVault(ctx, "w1")
	require.ErrorIs(t, err, ErrNotFound)

	envelope := &model.EncryptedSeed{Version: model.VaultVersionArgon2}
	require.NoError(t, s.PutVault(ctx, "w1", envelope))

	got, err := s.GetVault(ctx, "w1")
	require.NoError(t, err)
	require.Equal(t, envelope, got)

	require.NoError(t, s.DeleteVault(ctx, "w1"))
	_, err = s.GetVault(ctx, "w1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemStoreAccountCRUD(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	acct := model.Account{ID: "a1", WalletID: "w1", Chain: model.ChainEthereum, DerivationIndex: 0}
	require.NoError(t, s.InsertAccount(ctx, "w1", acct))

	accts, err := s.ListAccounts(ctx, "w1")
	require.NoError(t, err)
	require.Len(t, accts, 1)

	got, err := s.GetAccount(ctx, "a1")
	require.NoError(t, err)
	require.Equal(t, acct, got)

	_, err = s.GetAccount(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.DeleteAccount(ctx, "w1", model.ChainEthereum, 0))
	accts, err = s.ListAccounts(ctx, "w1")
	require.NoError(t, err)
	require.Empty(t, accts)
}

func TestMemStoreGroupAndProposalLifecycle(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	g := &model.MultisigGroup{ID: "g1", Chain: model.ChainEthereum, Owners: []string{"a", "b"}, Threshold: 2}
	require.NoError(t, s.InsertGroup(ctx, g))

	got, err := s.GetGroup(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, g, got)

	groups, err := s.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	p := &model.MultisigProposal{ID: "p1", GroupID: "g1", Status: model.MultisigPending, Approvals: map[string]bool{}}
	require.NoError(t, s.InsertProposal(ctx, p))

	gotP, err := s.GetProposal(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, p, gotP)

	p.Status = model.MultisigReady
	require.NoError(t, s.UpdateProposal(ctx, p))

	proposals, err := s.ListProposals(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, proposals, 1)
	require.Equal(t, model.MultisigReady, proposals[0].Status)
}

func TestMemStoreWithTxAtomicity(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	g := &model.MultisigGroup{ID: "g1", Chain: model.ChainEthereum, Owners: []string{"a"}, Threshold: 1}
	require.NoError(t, s.InsertGroup(ctx, g))
	p := &model.MultisigProposal{ID: "p1", GroupID: "g1", Status: model.MultisigPending, Approvals: map[string]bool{}}
	require.NoError(t, s.InsertProposal(ctx, p))

	err := s.WithTx(ctx, func(ctx context.Context, tx Store) error {
		inner, err := tx.GetProposal(ctx, "p1")
		if err != nil {
			return err
		}
		inner.Status = model.MultisigExecuted
		return tx.UpdateProposal(ctx, inner)
	})
	require.NoError(t, err)

	got, err := s.GetProposal(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, model.MultisigExecuted, got.Status)
}

func TestMemStoreDeleteVaultCascadesAccounts(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	require.NoError(t, s.PutVault(ctx, "w1", &model.EncryptedSeed{Version: model.VaultVersionArgon2}))
	require.NoError(t, s.InsertAccount(ctx, "w1", model.Account{ID: "a1", WalletID: "w1"}))

	require.NoError(t, s.DeleteVault(ctx, "w1"))

	accts, err := s.ListAccounts(ctx, "w1")
	require.NoError(t, err)
	require.Empty(t, accts)
}
