// Command walletd runs the wallet backend's HTTP surface: wallet lifecycle,
// account derivation, per-chain signing, and multi-sig coordination, atop a
// Keyring backed by SQLite or an in-memory store.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/vaultwallet/keyring/internal/api"
	"github.com/vaultwallet/keyring/internal/client"
	"github.com/vaultwallet/keyring/internal/config"
	"github.com/vaultwallet/keyring/internal/handler"
	"github.com/vaultwallet/keyring/internal/keyring"
	"github.com/vaultwallet/keyring/internal/multisig"
	"github.com/vaultwallet/keyring/internal/signer"
	"github.com/vaultwallet/keyring/internal/store"
	"github.com/vaultwallet/keyring/internal/vaultcrypto"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()

	if err := config.Init(); err != nil {
		log.Fatal().Err(err).Msg("config init failed")
	}
	cfg := config.Get()

	vaultcrypto.DefaultKDFParams.MemoryKiB = cfg.Argon2MemoryKiB
	vaultcrypto.DefaultKDFParams.Iterations = cfg.Argon2Iterations
	vaultcrypto.DefaultKDFParams.Parallelism = cfg.Argon2Parallelism

	st, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("store open failed")
	}

	kr := keyring.New(st, cfg.WalletID, time.Duration(cfg.AutoLockMinutes)*time.Minute)
	dispatcher := signer.New(kr)

	broadcaster := &client.Broadcaster{
		Solana: client.NewSolanaClient(cfg.SolanaRPCURL, log),
	}
	if cfg.EthereumRPCURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		ethc, err := client.DialEthereum(ctx, cfg.EthereumRPCURL, log)
		cancel()
		if err != nil {
			log.Warn().Err(err).Msg("ethereum rpc dial failed, ethereum broadcasts unavailable")
		} else {
			broadcaster.Ethereum = ethc
		}
	}

	coord := multisig.New(st, dispatcher, broadcaster)
	h := handler.New(kr, dispatcher, coord, st, broadcaster, log)

	if err := config.PromptForPassword(); err != nil {
		log.Warn().Err(err).Msg("no startup password provided, wallet stays locked until unlocked over HTTP")
	} else if hasWallet, _ := kr.Status(); hasWallet {
		pw, err := config.GetPasswordBytes()
		if err != nil {
			log.Warn().Err(err).Msg("failed to read startup password")
		} else {
			err := kr.Unlock(context.Background(), pw)
			clear(pw)
			if err != nil {
				log.Warn().Err(err).Msg("startup unlock failed, wallet stays locked")
			} else {
				log.Info().Msg("wallet unlocked at startup")
			}
		}
	}

	go autoLockLoop(kr)

	mux := api.SetupRouter(h)
	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Info().Str("addr", addr).Msg("walletd listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StorageDriver {
	case "sqlite":
		return store.Open(cfg.SQLiteDSN)
	case "memory":
		return store.NewMemStore(), nil
	default:
		return nil, errors.Errorf("unknown storage_driver %q: want sqlite or memory", cfg.StorageDriver)
	}
}

// autoLockLoop enforces the auto-lock deadline on a ticker independent of
// request traffic, so a wallet left unlocked with no further calls still
// locks on schedule.
func autoLockLoop(kr *keyring.Keyring) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		kr.AutoLockTick()
	}
}
