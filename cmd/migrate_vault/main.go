// migrate_vault re-encrypts a legacy v0 (scrypt + AES-GCM) wallet envelope to
// the current v1 (Argon2id + ChaCha20-Poly1305) format. v0 predates the
// BIP39-seed-rooted wallet model, so the legacy plaintext (a single raw
// private key) is expanded into a 64-byte seed via SHA-512 before sealing.
// This is a one-way bridge, not a BIP39 derivation; the resulting wallet does not
// have a recoverable mnemonic. Usage:
//
//	go run ./cmd/migrate_vault -wallet <id> -dsn wallet.db
package main

import (
	"context"
	"crypto/sha512"
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/vaultwallet/keyring/internal/model"
	"github.com/vaultwallet/keyring/internal/store"
	"github.com/vaultwallet/keyring/internal/vaultcrypto"
)

func main() {
	walletID := flag.String("wallet", "", "wallet id to migrate")
	dsn := flag.String("dsn", "wallet.db", "sqlite DSN holding the vault")
	flag.Parse()

	if *walletID == "" {
		fmt.Fprintln(os.Stderr, "usage: migrate_vault -wallet <id> [-dsn wallet.db]")
		os.Exit(2)
	}

	if err := run(*walletID, *dsn); err != nil {
		fmt.Fprintln(os.Stderr, "migrate_vault:", err)
		os.Exit(1)
	}
	fmt.Println("migration complete")
}

func run(walletID, dsn string) error {
	st, err := store.Open(dsn)
	if err != nil {
		return err
	}

	ctx := context.Background()
	envelope, err := st.GetVault(ctx, walletID)
	if err != nil {
		return errors.Wrap(err, "load vault")
	}
	if envelope.Version != model.VaultVersionLegacyScrypt {
		return errors.Errorf("vault %q is already version %d, nothing to migrate", walletID, envelope.Version)
	}

	fmt.Fprint(os.Stderr, "Enter current wallet password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return errors.Wrap(err, "read password")
	}
	defer clear(password)

	legacyKey, err := vaultcrypto.Open(password, envelope)
	if err != nil {
		return errors.Wrap(err, "decrypt legacy vault")
	}
	defer clear(legacyKey)

	seed := sha512.Sum512(legacyKey)
	defer clear(seed[:])

	sealed, err := vaultcrypto.Seal(password, seed[:])
	if err != nil {
		return errors.Wrap(err, "reseal vault")
	}
	if err := st.PutVault(ctx, walletID, sealed); err != nil {
		return errors.Wrap(err, "persist migrated vault")
	}
	return nil
}
