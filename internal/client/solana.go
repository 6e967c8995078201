// Package client implements the outbound chain-RPC collaborators: broadcast,
// balance, and nonce/fee queries. The Keyring and its adapters never import
// this package directly; it is wired in by the HTTP layer and the multisig
// coordinator's Broadcaster.
package client

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"

	"github.com/vaultwallet/keyring/internal/common"
	"github.com/vaultwallet/keyring/internal/model"
)

// SolanaClient is a thin wrapper over solana-go's rpc.Client providing the
// balance/blockhash/broadcast operations a Solana transaction needs assembled
// outside the Keyring's narrow contract.
type SolanaClient struct {
	rpc *rpc.Client
	log zerolog.Logger
}

// NewSolanaClient creates a client for rpcURL. No connection is made until the
// first call.
func NewSolanaClient(rpcURL string, log zerolog.Logger) *SolanaClient {
	return &SolanaClient{rpc: rpc.New(rpcURL), log: log.With().Str("component", "solana_client").Logger()}
}

// GetBalanceLamports returns the SOL balance of address in lamports.
func (c *SolanaClient) GetBalanceLamports(ctx context.Context, address string) (uint64, error) {
	pub, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return 0, model.Wrap(model.ErrAddressMalformed, "invalid solana address", err)
	}
	out, err := c.rpc.GetBalance(ctx, pub, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, model.Wrap(model.ErrStorageUnavailable, "get_balance rpc call failed", err)
	}
	c.log.Debug().Str("address", address).Str("sol", common.LamportsToSOL(out.Value)).Msg("balance fetched")
	return out.Value, nil
}

// defaultLamportsPerSignature is Solana's long-standing flat fee rate. A
// precise quote requires pricing an actual message, which the caller does not
// have yet at nonce-fetch time; callers re-derive the real fee once they have
// a constructed message.
const defaultLamportsPerSignature = 5000

// FetchRecentBlockhash is Solana's analogue of fetch_nonce_and_fee: a Solana
// transaction's "nonce" is the recent blockhash it's built against.
func (c *SolanaClient) FetchRecentBlockhash(ctx context.Context) (blockhash string, lamportsPerSignature uint64, err error) {
	out, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", 0, model.Wrap(model.ErrStorageUnavailable, "get_latest_blockhash rpc call failed", err)
	}
	return out.Value.Blockhash.String(), defaultLamportsPerSignature, nil
}

// Broadcast submits a raw signed transaction and returns its signature
// (Solana's tx_hash analogue). Satisfies multisig.Broadcaster for Solana.
func (c *SolanaClient) Broadcast(ctx context.Context, rawTx []byte) (txHash string, err error) {
	sig, err := c.rpc.SendEncodedTransaction(ctx, string(rawTx))
	if err != nil {
		return "", model.Wrap(model.ErrBroadcastFailed, "solana send_transaction rejected", err)
	}
	c.log.Info().Str("tx_hash", sig.String()).Msg("broadcast accepted")
	return sig.String(), nil
}
