package client

import (
	"context"

	"github.com/vaultwallet/keyring/internal/model"
)

// Broadcaster dispatches multisig.Broadcaster's chain-tagged Broadcast call to
// the concrete per-chain RPC client, so the multisig coordinator never needs
// to know which chain clients exist.
type Broadcaster struct {
	Solana   *SolanaClient
	Ethereum *EthereumClient
}

// Broadcast submits rawTx on chain and returns its tx hash.
func (b *Broadcaster) Broadcast(ctx context.Context, chain model.Chain, rawTx []byte) (string, error) {
	switch chain {
	case model.ChainSolana:
		if b.Solana == nil {
			return "", model.New(model.ErrBroadcastFailed, "no solana RPC client configured")
		}
		return b.Solana.Broadcast(ctx, rawTx)
	case model.ChainEthereum:
		if b.Ethereum == nil {
			return "", model.New(model.ErrBroadcastFailed, "no ethereum RPC client configured")
		}
		return b.Ethereum.Broadcast(ctx, rawTx)
	default:
		return "", model.New(model.ErrBroadcastFailed, "unsupported chain")
	}
}
