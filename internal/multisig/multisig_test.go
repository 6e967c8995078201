package multisig

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/vaultwallet/keyring/internal/keyring"
	"github.com/vaultwallet/keyring/internal/model"
	"github.com/vaultwallet/keyring/internal/signer"
	"github.com/vaultwallet/keyring/internal/store"
)

// Propose verifies the caller's signature against the owner address, so the
// proposing owner is backed by a real secp256k1 key; the other owners only
// ever approve and can stay fixed well-formed hex addresses.
var (
	aliceKey, _ = crypto.HexToECDSA("b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291")
	addrAlice   = crypto.PubkeyToAddress(aliceKey.PublicKey).Hex()
	addrBob     = "0x" + strings.Repeat("b", 40)
	addrCarol   = "0x" + strings.Repeat("c", 40)
	addrMallory = "0x" + strings.Repeat("d", 40)
)

// signProposal produces the signature Propose expects from addrAlice.
func signProposal(t *testing.T, groupID, to, amount string, data []byte, nonce uint64) []byte {
	t.Helper()
	msg := proposalSigningPayload(groupID, to, amount, data, nonce)
	sig, err := crypto.Sign(crypto.Keccak256(msg), aliceKey)
	require.NoError(t, err)
	return sig
}

// stubBroadcaster records the last broadcast and returns a canned tx hash,
// or an error when failNext is set.
type stubBroadcaster struct {
	failNext  bool
	lastChain model.Chain
	lastRaw   []byte
}

func (b *stubBroadcaster) Broadcast(_ context.Context, chain model.Chain, rawTx []byte) (string, error) {
	b.lastChain = chain
	b.lastRaw = rawTx
	if b.failNext {
		return "", errors.New("rpc rejected transaction")
	}
	return "0xdeadbeef", nil
}

func newCoordinator(t *testing.T) (*Coordinator, *signer.Dispatcher, *keyring.Keyring, *stubBroadcaster) {
	t.Helper()
	st := store.NewMemStore()
	kr := keyring.New(st, "w1", time.Minute)
	_, err := kr.Create(context.Background(), []byte("pw"), 12)
	require.NoError(t, err)
	dispatcher := signer.New(kr)
	bc := &stubBroadcaster{}
	return New(st, dispatcher, bc), dispatcher, kr, bc
}

func TestCreateGroupRejectsBadThreshold(t *testing.T) {
	coord, _, _, _ := newCoordinator(t)
	_, err := coord.CreateGroup(context.Background(), model.ChainEthereum, []string{addrAlice, addrBob}, 0)
	require.Error(t, err)

	_, err = coord.CreateGroup(context.Background(), model.ChainEthereum, []string{addrAlice, addrBob}, 3)
	require.Error(t, err)
}

func TestCreateGroupAddressIsDeterministic(t *testing.T) {
	coord, _, _, _ := newCoordinator(t)
	ctx := context.Background()

	g1, err := coord.CreateGroup(ctx, model.ChainEthereum, []string{addrAlice, addrBob}, 2)
	require.NoError(t, err)
	require.NotEmpty(t, g1.GroupAddress)

	// Owner order must not change the derived handle.
	g2, err := coord.CreateGroup(ctx, model.ChainEthereum, []string{addrBob, addrAlice}, 2)
	require.NoError(t, err)
	require.Equal(t, g1.GroupAddress, g2.GroupAddress)
}

func TestFullProposalLifecycle(t *testing.T) {
	coord, _, _, bc := newCoordinator(t)
	ctx := context.Background()

	owners := []string{addrAlice, addrBob, addrCarol}
	g, err := coord.CreateGroup(ctx, model.ChainEthereum, owners, 2)
	require.NoError(t, err)
	require.Equal(t, 2, g.Threshold)

	to := "0xdead000000000000000000000000000000beef"
	sig := signProposal(t, g.ID, to, "100", nil, 1)
	p, err := coord.Propose(ctx, g.ID, addrAlice, to, "100", nil, 1, sig)
	require.NoError(t, err)
	require.Equal(t, model.MultisigPending, p.Status)

	err = coord.Approve(ctx, p.ID, addrAlice)
	require.NoError(t, err)
	got, err := coord.st.GetProposal(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, model.MultisigPending, got.Status, "one of two approvals should not yet reach threshold")

	err = coord.Approve(ctx, p.ID, addrBob)
	require.NoError(t, err)
	got, err = coord.st.GetProposal(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, model.MultisigReady, got.Status)

	gasPrice := "1000000000"
	signingAccount := model.Account{Chain: model.ChainEthereum, DerivationIndex: 0}
	txHash, err := coord.Execute(ctx, p.ID, signingAccount, &model.EthereumTxRequest{
		To: "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359", ValueWei: "100",
		Nonce: 1, GasLimit: 21000, ChainID: 1, GasPrice: &gasPrice,
	})
	require.NoError(t, err)
	require.Equal(t, "0xdeadbeef", txHash)
	require.Equal(t, model.ChainEthereum, bc.lastChain)

	got, err = coord.st.GetProposal(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, model.MultisigExecuted, got.Status)
	require.Equal(t, "0xdeadbeef", got.ExecutedTxHash)

	err = coord.Approve(ctx, p.ID, addrCarol)
	require.Error(t, err)
	require.Equal(t, model.ErrProposalTerminal, model.KindOf(err))
}

func TestProposeRejectsNonOwner(t *testing.T) {
	coord, _, _, _ := newCoordinator(t)
	ctx := context.Background()
	g, err := coord.CreateGroup(ctx, model.ChainEthereum, []string{addrAlice, addrBob}, 2)
	require.NoError(t, err)

	_, err = coord.Propose(ctx, g.ID, addrMallory, "0xdead000000000000000000000000000000beef", "1", nil, 1, []byte("sig"))
	require.Error(t, err)
	require.Equal(t, model.ErrNotAnOwner, model.KindOf(err))
}

func TestProposeRejectsMissingSignature(t *testing.T) {
	coord, _, _, _ := newCoordinator(t)
	ctx := context.Background()
	g, err := coord.CreateGroup(ctx, model.ChainEthereum, []string{addrAlice, addrBob}, 2)
	require.NoError(t, err)

	_, err = coord.Propose(ctx, g.ID, addrAlice, "0xdead000000000000000000000000000000beef", "1", nil, 1, nil)
	require.Error(t, err)
	require.Equal(t, model.ErrNotAnOwner, model.KindOf(err))
}

func TestProposeRejectsSignatureFromWrongKey(t *testing.T) {
	coord, _, _, _ := newCoordinator(t)
	ctx := context.Background()
	g, err := coord.CreateGroup(ctx, model.ChainEthereum, []string{addrAlice, addrBob}, 2)
	require.NoError(t, err)

	otherKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	msg := proposalSigningPayload(g.ID, "0xdead000000000000000000000000000000beef", "1", nil, 1)
	sig, err := crypto.Sign(crypto.Keccak256(msg), otherKey)
	require.NoError(t, err)

	_, err = coord.Propose(ctx, g.ID, addrAlice, "0xdead000000000000000000000000000000beef", "1", nil, 1, sig)
	require.Error(t, err)
	require.Equal(t, model.ErrNotAnOwner, model.KindOf(err))
}

func TestProposeRejectsMalformedAmount(t *testing.T) {
	coord, _, _, _ := newCoordinator(t)
	ctx := context.Background()
	g, err := coord.CreateGroup(ctx, model.ChainEthereum, []string{addrAlice, addrBob}, 2)
	require.NoError(t, err)

	sig := signProposal(t, g.ID, "0xdead000000000000000000000000000000beef", "not-a-number", nil, 1)
	_, err = coord.Propose(ctx, g.ID, addrAlice, "0xdead000000000000000000000000000000beef", "not-a-number", nil, 1, sig)
	require.Error(t, err)
	require.Equal(t, model.ErrPathInvalid, model.KindOf(err))
}

func TestApproveIsIdempotent(t *testing.T) {
	coord, _, _, _ := newCoordinator(t)
	ctx := context.Background()
	g, err := coord.CreateGroup(ctx, model.ChainEthereum, []string{addrAlice, addrBob, addrCarol}, 2)
	require.NoError(t, err)
	sig := signProposal(t, g.ID, "0xdead000000000000000000000000000000beef", "1", nil, 1)
	p, err := coord.Propose(ctx, g.ID, addrAlice, "0xdead000000000000000000000000000000beef", "1", nil, 1, sig)
	require.NoError(t, err)

	require.NoError(t, coord.Approve(ctx, p.ID, addrAlice))
	require.NoError(t, coord.Approve(ctx, p.ID, addrAlice))

	got, err := coord.st.GetProposal(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.ApprovalCount())
}

func TestApproveRejectsNonOwner(t *testing.T) {
	coord, _, _, _ := newCoordinator(t)
	ctx := context.Background()
	g, err := coord.CreateGroup(ctx, model.ChainEthereum, []string{addrAlice, addrBob}, 2)
	require.NoError(t, err)
	sig := signProposal(t, g.ID, "0xdead000000000000000000000000000000beef", "1", nil, 1)
	p, err := coord.Propose(ctx, g.ID, addrAlice, "0xdead000000000000000000000000000000beef", "1", nil, 1, sig)
	require.NoError(t, err)

	err = coord.Approve(ctx, p.ID, addrMallory)
	require.Error(t, err)
	require.Equal(t, model.ErrNotAnOwner, model.KindOf(err))
}

func TestCancelPreventsFurtherApproval(t *testing.T) {
	coord, _, _, _ := newCoordinator(t)
	ctx := context.Background()
	g, err := coord.CreateGroup(ctx, model.ChainEthereum, []string{addrAlice, addrBob}, 2)
	require.NoError(t, err)
	sig := signProposal(t, g.ID, "0xdead000000000000000000000000000000beef", "1", nil, 1)
	p, err := coord.Propose(ctx, g.ID, addrAlice, "0xdead000000000000000000000000000000beef", "1", nil, 1, sig)
	require.NoError(t, err)

	require.NoError(t, coord.Cancel(ctx, p.ID, addrBob))

	err = coord.Approve(ctx, p.ID, addrAlice)
	require.Error(t, err)
	require.Equal(t, model.ErrProposalTerminal, model.KindOf(err))
}

func TestExecuteLeavesProposalReadyOnBroadcastFailure(t *testing.T) {
	coord, _, _, bc := newCoordinator(t)
	ctx := context.Background()
	g, err := coord.CreateGroup(ctx, model.ChainEthereum, []string{addrAlice, addrBob}, 1)
	require.NoError(t, err)
	sig := signProposal(t, g.ID, "0xdead000000000000000000000000000000beef", "1", nil, 1)
	p, err := coord.Propose(ctx, g.ID, addrAlice, "0xdead000000000000000000000000000000beef", "1", nil, 1, sig)
	require.NoError(t, err)
	require.NoError(t, coord.Approve(ctx, p.ID, addrAlice))

	bc.failNext = true
	gasPrice := "1000000000"
	_, err = coord.Execute(ctx, p.ID, model.Account{Chain: model.ChainEthereum}, &model.EthereumTxRequest{
		To: "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359", ValueWei: "1",
		Nonce: 1, GasLimit: 21000, ChainID: 1, GasPrice: &gasPrice,
	})
	require.Error(t, err)
	require.Equal(t, model.ErrBroadcastFailed, model.KindOf(err))

	got, err := coord.st.GetProposal(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, model.MultisigReady, got.Status, "a failed broadcast must not advance the proposal to Executed")
}

func TestExecuteRejectsProposalNotReady(t *testing.T) {
	coord, _, _, _ := newCoordinator(t)
	ctx := context.Background()
	g, err := coord.CreateGroup(ctx, model.ChainEthereum, []string{addrAlice, addrBob}, 2)
	require.NoError(t, err)
	sig := signProposal(t, g.ID, "0xdead000000000000000000000000000000beef", "1", nil, 1)
	p, err := coord.Propose(ctx, g.ID, addrAlice, "0xdead000000000000000000000000000000beef", "1", nil, 1, sig)
	require.NoError(t, err)

	_, err = coord.Execute(ctx, p.ID, model.Account{Chain: model.ChainEthereum}, nil)
	require.Error(t, err)
	require.Equal(t, model.ErrThresholdNotMet, model.KindOf(err))
}
