// Package multisig implements the M-of-N proposal coordinator: create a
// group, propose a spend, collect owner approvals until threshold, execute
// the combined/simulated signing, or cancel. All gating is off-chain; the
// coordinator never constructs on-chain multisig program state itself.
package multisig

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/mr-tron/base58"

	"github.com/vaultwallet/keyring/internal/common"
	"github.com/vaultwallet/keyring/internal/model"
	"github.com/vaultwallet/keyring/internal/signer"
	"github.com/vaultwallet/keyring/internal/store"
)

// Broadcaster is the outbound collaborator contract for submitting a signed
// payload to a chain and learning whether it was accepted. The coordinator
// never talks to chain RPC itself.
type Broadcaster interface {
	Broadcast(ctx context.Context, chain model.Chain, rawTx []byte) (txHash string, err error)
}

// Coordinator drives the Pending/Ready/Executed/Cancelled state machine over a
// Store and a Dispatcher for the combined-signing execute step.
type Coordinator struct {
	st          store.Store
	dispatcher  *signer.Dispatcher
	broadcaster Broadcaster

	// execLocks serializes execute() per proposal so no two concurrent
	// executions of the same proposal can both succeed.
	execMu    sync.Mutex
	execLocks map[string]*sync.Mutex
}

// New constructs a Coordinator.
func New(st store.Store, dispatcher *signer.Dispatcher, broadcaster Broadcaster) *Coordinator {
	return &Coordinator{st: st, dispatcher: dispatcher, broadcaster: broadcaster, execLocks: make(map[string]*sync.Mutex)}
}

// CreateGroup registers an M-of-N ownership set. threshold must be in
// [1, len(owners)]; k=0 and k>n are rejected at creation.
func (c *Coordinator) CreateGroup(ctx context.Context, chain model.Chain, owners []string, threshold int) (*model.MultisigGroup, error) {
	if threshold <= 0 || threshold > len(owners) {
		return nil, model.New(model.ErrThresholdNotMet, "threshold must be in [1, len(owners)]")
	}
	g := &model.MultisigGroup{
		ID:        uuid.NewString(),
		Chain:     chain,
		Owners:    append([]string(nil), owners...),
		Threshold: threshold,
		CreatedAt: time.Now(),
	}
	g.GroupAddress = deriveGroupAddress(g)
	if err := c.st.InsertGroup(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// deriveGroupAddress computes a deterministic off-chain identifier for the
// group from its chain, threshold, and sorted owner set. No native on-chain
// multisig program account is constructed; this is an off-chain handle only,
// stable across restarts.
func deriveGroupAddress(g *model.MultisigGroup) string {
	owners := append([]string(nil), g.Owners...)
	sort.Strings(owners)
	h := sha256.New()
	h.Write([]byte(string(g.Chain)))
	h.Write([]byte(strconv.Itoa(g.Threshold)))
	h.Write([]byte(strings.Join(owners, ",")))
	return hex.EncodeToString(h.Sum(nil))[:40]
}

// validateBaseUnitAmount rejects a proposal amount that isn't a well-formed
// decimal quantity in the chain's native unit (SOL for Solana, ETH for
// Ethereum), before it's persisted and later handed to the chain adapter at
// execute. Solana amounts are parsed with the same lamports conversion the
// RPC balance endpoint reports through.
func validateBaseUnitAmount(chain model.Chain, amount string) error {
	switch chain {
	case model.ChainSolana:
		if _, err := common.SOLToLamports(amount); err != nil {
			return model.Wrap(model.ErrPathInvalid, "amount must be a valid SOL decimal quantity", err)
		}
	case model.ChainEthereum:
		if _, err := common.ParseUnits(amount, common.EtherDecimals); err != nil {
			return model.Wrap(model.ErrPathInvalid, "amount must be a valid ETH decimal quantity", err)
		}
	}
	return nil
}

// Propose records a new proposal against group in Pending status. The caller
// must hold one of the owner keys: callerSig is the caller's signature over
// (group_id, to, amount, data, nonce), verified against callerAddr's public
// key before anything is recorded.
func (c *Coordinator) Propose(ctx context.Context, groupID, callerAddr, to, amount string, data []byte, nonce uint64, callerSig []byte) (*model.MultisigProposal, error) {
	g, err := c.st.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !isOwner(g, callerAddr) {
		return nil, model.New(model.ErrNotAnOwner, "proposer is not a group owner")
	}
	if err := signer.ValidateAddress(g.Chain, callerAddr); err != nil {
		return nil, err
	}
	if err := validateBaseUnitAmount(g.Chain, amount); err != nil {
		return nil, err
	}

	msg := proposalSigningPayload(groupID, to, amount, data, nonce)
	if err := verifyProposerSignature(g.Chain, callerAddr, msg, callerSig); err != nil {
		return nil, err
	}

	p := &model.MultisigProposal{
		ID:           uuid.NewString(),
		GroupID:      groupID,
		ProposerAddr: callerAddr,
		To:           to,
		Amount:       amount,
		Data:         data,
		Nonce:        nonce,
		Status:       model.MultisigPending,
		Approvals:    make(map[string]bool),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := c.st.InsertProposal(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// proposalSigningPayload renders the canonical bytes a proposer signs to
// authorize a proposal: group_id, to, amount, data, and nonce concatenated
// with "|" separators and a fixed-width big-endian nonce.
func proposalSigningPayload(groupID, to, amount string, data []byte, nonce uint64) []byte {
	buf := []byte(groupID + "|" + to + "|" + amount + "|")
	buf = append(buf, data...)
	var n [8]byte
	for i := 0; i < 8; i++ {
		n[i] = byte(nonce >> (8 * (7 - i)))
	}
	return append(buf, n[:]...)
}

// verifyProposerSignature checks sig over msg against the public key behind
// ownerAddr. A Solana address is the ed25519 public key itself (base58), so
// verification is direct; an Ethereum address is checked by recovering the
// signing public key from the 65-byte [R || S || V] signature over
// keccak256(msg) (the shape chain.Ethereum.SignMessage produces) and
// comparing its address, case-insensitively, with ownerAddr.
func verifyProposerSignature(chain model.Chain, ownerAddr string, msg, sig []byte) error {
	if len(sig) == 0 {
		return model.New(model.ErrNotAnOwner, "missing proposer signature")
	}
	switch chain {
	case model.ChainSolana:
		pub, err := base58.Decode(ownerAddr)
		if err != nil || len(pub) != ed25519.PublicKeySize {
			return model.New(model.ErrAddressMalformed, "owner address is not an ed25519 public key")
		}
		if !ed25519.Verify(ed25519.PublicKey(pub), msg, sig) {
			return model.New(model.ErrNotAnOwner, "proposer signature does not verify")
		}
		return nil
	case model.ChainEthereum:
		if len(sig) != crypto.SignatureLength {
			return model.New(model.ErrNotAnOwner, "proposer signature must be 65 bytes")
		}
		pub, err := crypto.SigToPub(crypto.Keccak256(msg), sig)
		if err != nil {
			return model.Wrap(model.ErrNotAnOwner, "proposer signature recovery failed", err)
		}
		if !strings.EqualFold(crypto.PubkeyToAddress(*pub).Hex(), ownerAddr) {
			return model.New(model.ErrNotAnOwner, "proposer signature does not match owner address")
		}
		return nil
	default:
		return model.New(model.ErrPathInvalid, "unsupported chain")
	}
}

// Approve records owner's approval, idempotently. Reaching len(approvals) >=
// threshold atomically transitions Pending -> Ready under the Store's
// transaction boundary.
func (c *Coordinator) Approve(ctx context.Context, proposalID, owner string) error {
	return c.st.WithTx(ctx, func(ctx context.Context, tx store.Store) error {
		p, err := tx.GetProposal(ctx, proposalID)
		if err != nil {
			return err
		}
		g, err := tx.GetGroup(ctx, p.GroupID)
		if err != nil {
			return err
		}
		if !isOwner(g, owner) {
			return model.New(model.ErrNotAnOwner, "approver is not a group owner")
		}
		if p.Status == model.MultisigExecuted || p.Status == model.MultisigCancelled {
			return model.New(model.ErrProposalTerminal, "proposal is in a terminal state")
		}
		if p.Approvals[owner] {
			return nil // idempotent re-approval
		}
		p.Approvals[owner] = true
		if p.ApprovalCount() >= g.Threshold {
			p.Status = model.MultisigReady
		}
		p.UpdatedAt = time.Now()
		return tx.UpdateProposal(ctx, p)
	})
}

// Cancel marks a non-terminal proposal Cancelled. Any owner may cancel.
func (c *Coordinator) Cancel(ctx context.Context, proposalID, owner string) error {
	return c.st.WithTx(ctx, func(ctx context.Context, tx store.Store) error {
		p, err := tx.GetProposal(ctx, proposalID)
		if err != nil {
			return err
		}
		g, err := tx.GetGroup(ctx, p.GroupID)
		if err != nil {
			return err
		}
		if !isOwner(g, owner) {
			return model.New(model.ErrNotAnOwner, "canceller is not a group owner")
		}
		if p.Status == model.MultisigExecuted || p.Status == model.MultisigCancelled {
			return model.New(model.ErrProposalTerminal, "proposal is in a terminal state")
		}
		p.Status = model.MultisigCancelled
		p.UpdatedAt = time.Now()
		return tx.UpdateProposal(ctx, p)
	})
}

// Execute signs and broadcasts a Ready proposal using the group's signing
// account. The threshold gate is enforced off-chain; neither chain adapter
// constructs native on-chain multisig program state. Execute holds an
// exclusive per-proposal lock so no two concurrent executions of the same
// proposal can both succeed, and only transitions to Executed once the
// broadcaster reports success; broadcast failure leaves the proposal Ready
// with the error surfaced.
func (c *Coordinator) Execute(ctx context.Context, proposalID string, signingAccount model.Account, txRequest any) (txHash string, err error) {
	lock := c.lockFor(proposalID)
	lock.Lock()
	defer lock.Unlock()

	p, err := c.st.GetProposal(ctx, proposalID)
	if err != nil {
		return "", err
	}
	if p.Status != model.MultisigReady {
		return "", model.New(model.ErrThresholdNotMet, "proposal is not Ready")
	}

	sig, err := c.dispatcher.Sign(signingAccount, txRequest)
	if err != nil {
		return "", err
	}

	txHash, err = c.broadcaster.Broadcast(ctx, signingAccount.Chain, sig)
	if err != nil {
		return "", model.Wrap(model.ErrBroadcastFailed, "broadcast rejected", err)
	}

	p.Status = model.MultisigExecuted
	now := time.Now()
	p.ExecutedAt = &now
	p.UpdatedAt = now
	p.ExecutedTxHash = txHash
	if err := c.st.UpdateProposal(ctx, p); err != nil {
		return txHash, err
	}
	return txHash, nil
}

func (c *Coordinator) lockFor(proposalID string) *sync.Mutex {
	c.execMu.Lock()
	defer c.execMu.Unlock()
	l, ok := c.execLocks[proposalID]
	if !ok {
		l = &sync.Mutex{}
		c.execLocks[proposalID] = l
	}
	return l
}

func isOwner(g *model.MultisigGroup, addr string) bool {
	for _, o := range g.Owners {
		if o == addr {
			return true
		}
	}
	return false
}
