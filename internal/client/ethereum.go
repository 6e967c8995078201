package client

import (
	"context"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"

	"github.com/vaultwallet/keyring/internal/common"
	"github.com/vaultwallet/keyring/internal/model"
)

// EthereumClient wraps go-ethereum's ethclient to implement the outbound
// fetch_nonce_and_fee/broadcast contract for Ethereum.
type EthereumClient struct {
	eth *ethclient.Client
	log zerolog.Logger
}

// DialEthereum connects to an Ethereum JSON-RPC endpoint.
func DialEthereum(ctx context.Context, rpcURL string, log zerolog.Logger) (*EthereumClient, error) {
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, model.Wrap(model.ErrStorageUnavailable, "ethereum rpc dial failed", err)
	}
	return &EthereumClient{eth: eth, log: log.With().Str("component", "ethereum_client").Logger()}, nil
}

// GetBalanceWei returns address's current ETH balance in wei.
func (c *EthereumClient) GetBalanceWei(ctx context.Context, address string) (*big.Int, error) {
	addr := ethcommon.HexToAddress(address)
	balance, err := c.eth.BalanceAt(ctx, addr, nil)
	if err != nil {
		return nil, model.Wrap(model.ErrStorageUnavailable, "get_balance rpc call failed", err)
	}
	c.log.Debug().Str("address", address).Str("eth", common.FormatWeiBigInt(balance)).Msg("balance fetched")
	return balance, nil
}

// FetchNonceAndFee returns address's next account nonce, the chain's current
// suggested gas tip, and base fee, for assembling an EIP-1559 transaction.
func (c *EthereumClient) FetchNonceAndFee(ctx context.Context, address string) (nonce uint64, tipWei, baseFeeWei *big.Int, err error) {
	addr := ethcommon.HexToAddress(address)
	nonce, err = c.eth.PendingNonceAt(ctx, addr)
	if err != nil {
		return 0, nil, nil, model.Wrap(model.ErrStorageUnavailable, "fetch nonce failed", err)
	}
	tipWei, err = c.eth.SuggestGasTipCap(ctx)
	if err != nil {
		return 0, nil, nil, model.Wrap(model.ErrStorageUnavailable, "fetch gas tip failed", err)
	}
	head, err := c.eth.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, nil, nil, model.Wrap(model.ErrStorageUnavailable, "fetch head header failed", err)
	}
	baseFeeWei = head.BaseFee
	if baseFeeWei == nil {
		baseFeeWei = big.NewInt(0)
	}
	return nonce, tipWei, baseFeeWei, nil
}

// Broadcast submits a raw signed transaction (RLP-encoded) and returns its
// transaction hash. Satisfies multisig.Broadcaster for Ethereum.
func (c *EthereumClient) Broadcast(ctx context.Context, rawTx []byte) (txHash string, err error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(rawTx); err != nil {
		return "", model.Wrap(model.ErrBroadcastFailed, "malformed raw transaction", err)
	}
	if err := c.eth.SendTransaction(ctx, tx); err != nil {
		return "", model.Wrap(model.ErrBroadcastFailed, "ethereum send_transaction rejected", err)
	}
	hash := tx.Hash().Hex()
	c.log.Info().Str("tx_hash", hash).Msg("broadcast accepted")
	return hash, nil
}
