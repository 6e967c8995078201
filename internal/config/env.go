// Package config loads process configuration from the environment via
// envconfig and holds the runtime wallet password prompted at startup.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"

	"github.com/vaultwallet/keyring/internal/model"
)

// Config holds the recognized options: auto_lock_minutes and the argon2_*
// KDF parameters are exposed as overrides of vaultcrypto's defaults,
// default_chain selects which chain new accounts default to, and the HTTP/
// storage fields configure the server itself.
type Config struct {
	Port              string `envconfig:"PORT" default:"8080"`
	WalletID          string `envconfig:"WALLET_ID" default:"default"`
	StorageDriver     string `envconfig:"STORAGE_DRIVER" default:"sqlite"`
	SQLiteDSN         string `envconfig:"SQLITE_DSN" default:"wallet.db"`
	AutoLockMinutes   int    `envconfig:"AUTO_LOCK_MINUTES" default:"15"`
	Argon2MemoryKiB   uint32 `envconfig:"ARGON2_MEMORY_KIB" default:"65536"`
	Argon2Iterations  uint32 `envconfig:"ARGON2_ITERATIONS" default:"3"`
	Argon2Parallelism uint8  `envconfig:"ARGON2_PARALLELISM" default:"1"`
	DefaultChain      string `envconfig:"DEFAULT_CHAIN" default:"solana"`
	SolanaRPCURL      string `envconfig:"SOLANA_RPC_URL" default:"https://api.mainnet-beta.solana.com"`
	EthereumRPCURL    string `envconfig:"ETHEREUM_RPC_URL" default:""`
	EthereumChainID   uint64 `envconfig:"ETHEREUM_CHAIN_ID" default:"1"`
}

var (
	cfgMu sync.RWMutex
	cfg   *Config
)

// Init loads configuration from environment variables.
func Init() error {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return model.Wrap(model.ErrConfigOptionUnknown, "failed to process config", err)
	}
	if err := validateChain(c.DefaultChain); err != nil {
		return err
	}
	cfgMu.Lock()
	cfg = c
	cfgMu.Unlock()
	return nil
}

func validateChain(s string) error {
	switch model.Chain(s) {
	case model.ChainSolana, model.ChainEthereum:
		return nil
	default:
		return model.New(model.ErrConfigOptionUnknown, "default_chain must be solana or ethereum")
	}
}

// Get returns the global configuration instance. Panics if Init() was not
// called.
func Get() *Config {
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// runtimeAllowList is the fixed set of option keys a PUT /config call may
// touch after startup; anything else is rejected. envconfig itself only
// governs process-start env parsing and silently ignores keys it doesn't
// recognize, so this allow-list is what enforces rejection for the runtime
// surface.
var runtimeAllowList = map[string]bool{
	"auto_lock_minutes":  true,
	"argon2_memory_kib":  true,
	"argon2_iterations":  true,
	"argon2_parallelism": true,
	"default_chain":      true,
}

// ApplyRuntimeOverrides validates every key in updates against the fixed
// allow-list, unmarshals each recognized value onto a copy of the current
// config, and swaps it in atomically on full success. An unknown key or a
// value that fails to unmarshal leaves the running config untouched and
// returns ConfigOptionUnknown.
func ApplyRuntimeOverrides(updates map[string]json.RawMessage) (*Config, error) {
	for key := range updates {
		if !runtimeAllowList[key] {
			return nil, model.New(model.ErrConfigOptionUnknown, fmt.Sprintf("unknown config option %q", key))
		}
	}

	cfgMu.Lock()
	defer cfgMu.Unlock()
	if cfg == nil {
		return nil, model.New(model.ErrConfigOptionUnknown, "config not initialized")
	}
	next := *cfg

	if raw, ok := updates["auto_lock_minutes"]; ok {
		if err := json.Unmarshal(raw, &next.AutoLockMinutes); err != nil {
			return nil, model.Wrap(model.ErrConfigOptionUnknown, "auto_lock_minutes must be an integer", err)
		}
	}
	if raw, ok := updates["argon2_memory_kib"]; ok {
		if err := json.Unmarshal(raw, &next.Argon2MemoryKiB); err != nil {
			return nil, model.Wrap(model.ErrConfigOptionUnknown, "argon2_memory_kib must be an integer", err)
		}
	}
	if raw, ok := updates["argon2_iterations"]; ok {
		if err := json.Unmarshal(raw, &next.Argon2Iterations); err != nil {
			return nil, model.Wrap(model.ErrConfigOptionUnknown, "argon2_iterations must be an integer", err)
		}
	}
	if raw, ok := updates["argon2_parallelism"]; ok {
		if err := json.Unmarshal(raw, &next.Argon2Parallelism); err != nil {
			return nil, model.Wrap(model.ErrConfigOptionUnknown, "argon2_parallelism must be an integer", err)
		}
	}
	if raw, ok := updates["default_chain"]; ok {
		if err := json.Unmarshal(raw, &next.DefaultChain); err != nil {
			return nil, model.Wrap(model.ErrConfigOptionUnknown, "default_chain must be a string", err)
		}
		if err := validateChain(next.DefaultChain); err != nil {
			return nil, err
		}
	}

	cfg = &next
	return cfg, nil
}

var passwordBytes []byte

// PromptForPassword prompts the user for the wallet password in the terminal,
// hidden from echo, and stores a copy in memory for later unlock/create calls.
func PromptForPassword() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("stdin is not a terminal: run the app interactively to enter password")
	}
	fmt.Fprint(os.Stderr, "Enter wallet password: ")
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return errors.New("password cannot be empty")
	}

	passwordBytes = make([]byte, len(raw))
	copy(passwordBytes, raw)
	clear(raw)
	return nil
}

// GetPasswordBytes returns a defensive copy of the password stored in memory
// from PromptForPassword. Caller must zero the returned slice after use.
func GetPasswordBytes() ([]byte, error) {
	if len(passwordBytes) == 0 {
		return nil, errors.New("password not set: call PromptForPassword at startup")
	}
	out := make([]byte, len(passwordBytes))
	copy(out, passwordBytes)
	return out, nil
}
