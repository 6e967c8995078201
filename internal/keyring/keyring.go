// Package keyring implements the Empty/Locked/Unlocked wallet state machine:
// mnemonic genesis and import, password unlock/lock, auto-lock, and the single
// RWMutex signing and is_unlocked share so neither can observe a state the
// concurrent discipline hasn't synchronized.
package keyring

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/vaultwallet/keyring/internal/mnemonic"
	"github.com/vaultwallet/keyring/internal/model"
	"github.com/vaultwallet/keyring/internal/store"
	"github.com/vaultwallet/keyring/internal/vaultcrypto"
)

// DefaultAutoLockInterval is the default Unlocked deadline window.
const DefaultAutoLockInterval = 15 * time.Minute

// walletState is the keyring's Empty/Locked/Unlocked tag.
type walletState int

const (
	stateEmpty walletState = iota
	stateLocked
	stateUnlocked
)

// cell is the single guarded slot holding the live plaintext seed. It is never
// copied out of the Keyring; every reader obtains its own read view under rw.
type cell struct {
	state    walletState
	seed     []byte // 64 bytes; non-nil only while state == stateUnlocked
	deadline time.Time
}

// Keyring is the password-gated seed custody core. Exactly one plaintext seed
// buffer exists at a time, guarded by rw: Status takes a read view; every
// state transition, and signing (which refreshes the auto-lock deadline),
// takes a write view.
type Keyring struct {
	rw               sync.RWMutex
	c                cell
	walletID         string
	st               store.Store
	autoLockInterval time.Duration
}

// New constructs a Keyring over st, starting Empty unless a vault for
// walletID already exists in st.
func New(st store.Store, walletID string, autoLockInterval time.Duration) *Keyring {
	if autoLockInterval <= 0 {
		autoLockInterval = DefaultAutoLockInterval
	}
	k := &Keyring{st: st, walletID: walletID, autoLockInterval: autoLockInterval}
	if _, err := st.GetVault(context.Background(), walletID); err == nil {
		k.c.state = stateLocked
	}
	return k
}

// WalletID returns the identifier this Keyring was constructed with.
func (k *Keyring) WalletID() string {
	return k.walletID
}

// SetAutoLockInterval updates the auto-lock window applied to future deadline
// refreshes. The live deadline of an already-Unlocked cell is left as-is
// until the next signing/read-of-seed call, which resets it to now + the
// interval in effect at that time.
func (k *Keyring) SetAutoLockInterval(d time.Duration) {
	if d <= 0 {
		d = DefaultAutoLockInterval
	}
	k.rw.Lock()
	defer k.rw.Unlock()
	k.autoLockInterval = d
}

// Status reports whether a wallet exists and whether it is currently
// unlocked. It takes a read view of the same lock signing takes for
// writing, never an unsynchronized peek. A stale Unlocked past its deadline still reads as
// unlocked for this instant; the background ticker or the next WithSeed call
// performs the real transition.
func (k *Keyring) Status() (hasWallet bool, isUnlocked bool) {
	k.rw.RLock()
	defer k.rw.RUnlock()
	return k.c.state != stateEmpty, k.c.state == stateUnlocked
}

// Create generates a fresh mnemonic via CSPRNG, derives its seed, seals it
// under password, persists the envelope, and enters Unlocked. wordCount
// selects the mnemonic length (12,15,18,21,24); 12 if zero.
func (k *Keyring) Create(ctx context.Context, password []byte, wordCount int) (mnemonicWords string, err error) {
	if wordCount == 0 {
		wordCount = 12
	}
	words, err := mnemonic.Generate(wordCount)
	if err != nil {
		return "", err
	}
	if err := k.seal(ctx, words, password); err != nil {
		return "", err
	}
	return words, nil
}

// Import validates an externally-supplied mnemonic, derives its seed, seals
// it under password, persists the envelope, and enters Unlocked.
func (k *Keyring) Import(ctx context.Context, words string, password []byte) error {
	if err := mnemonic.Validate(words); err != nil {
		return err
	}
	return k.seal(ctx, words, password)
}

// seal derives the seed for words, encrypts it under password, persists the
// envelope, and installs the plaintext seed into the Unlocked cell. No
// partial state is visible: the write view is taken only after the envelope
// is persisted, to install the seed, and a seal or persistence failure leaves
// the Keyring's state unchanged.
func (k *Keyring) seal(ctx context.Context, words string, password []byte) error {
	seed, err := mnemonic.Seed(words, "")
	if err != nil {
		return err
	}
	envelope, err := vaultcrypto.Seal(password, seed)
	if err != nil {
		clear(seed)
		return err
	}
	if err := k.st.PutVault(ctx, k.walletID, envelope); err != nil {
		clear(seed)
		return err
	}

	k.rw.Lock()
	defer k.rw.Unlock()
	k.installLocked(seed)
	return nil
}

// Unlock retrieves the persisted envelope and decrypts it under password. On
// success the keyring enters Unlocked with a fresh auto-lock deadline; on
// failure it stays Locked and returns WrongPassword. An aborted/cancelled
// context never installs a half-decrypted seed: the seed is installed under
// the write view only after Open has fully succeeded.
func (k *Keyring) Unlock(ctx context.Context, password []byte) error {
	envelope, err := k.st.GetVault(ctx, k.walletID)
	if err != nil {
		return model.Wrap(model.ErrWalletLocked, "no wallet to unlock", err)
	}
	if envelope.Version != model.VaultVersionArgon2 {
		return model.New(model.ErrVaultVersionUnsupported, "vault must be migrated via cmd/migrate_vault before unlock")
	}
	seed, err := vaultcrypto.Open(password, envelope)
	if err != nil {
		return err
	}

	k.rw.Lock()
	defer k.rw.Unlock()
	k.installLocked(seed)
	return nil
}

// installLocked transitions into Unlocked with seed as the live plaintext.
// Callers must hold rw for writing.
func (k *Keyring) installLocked(seed []byte) {
	k.c.seed = seed
	k.c.state = stateUnlocked
	k.c.deadline = time.Now().Add(k.autoLockInterval)
}

// Lock overwrites the plaintext seed with zeros and transitions to Locked.
func (k *Keyring) Lock() {
	k.rw.Lock()
	defer k.rw.Unlock()
	k.lockLocked()
}

// lockLocked zeroizes the seed and transitions to Locked. Callers must hold
// rw for writing. A no-op from Empty.
func (k *Keyring) lockLocked() {
	if k.c.state == stateEmpty {
		return
	}
	clear(k.c.seed)
	k.c.seed = nil
	k.c.state = stateLocked
	k.c.deadline = time.Time{}
}

// Reset deletes the envelope and all derived account records and transitions
// to Empty, zeroizing any live plaintext seed. The vault delete and account
// cascade run inside one store transaction; a storage failure rolls back and
// leaves the keyring state unchanged.
func (k *Keyring) Reset(ctx context.Context) error {
	k.rw.Lock()
	defer k.rw.Unlock()
	err := k.st.WithTx(ctx, func(ctx context.Context, tx store.Store) error {
		return tx.DeleteVault(ctx, k.walletID)
	})
	if err != nil {
		return err
	}
	clear(k.c.seed)
	k.c.seed = nil
	k.c.state = stateEmpty
	k.c.deadline = time.Time{}
	return nil
}

// AutoLockTick is invoked by a background ticker (see cmd/walletd) to enforce
// the auto-lock deadline without waiting for the next signing call.
func (k *Keyring) AutoLockTick() {
	k.rw.Lock()
	defer k.rw.Unlock()
	if k.c.state == stateUnlocked && time.Now().After(k.c.deadline) {
		k.lockLocked()
	}
}

// WithSeed takes a view of the unlocked seed, resets the auto-lock deadline
// (every signing or read-of-seed operation extends it), and invokes fn with
// the seed. It returns WalletLocked if the keyring is not Unlocked. fn must
// not retain the slice it is given past return.
func (k *Keyring) WithSeed(fn func(seed []byte) error) error {
	k.rw.Lock() // deadline refresh mutates state, so this takes a write view
	defer k.rw.Unlock()
	if k.c.state == stateEmpty {
		return model.New(model.ErrWalletLocked, "no wallet created")
	}
	if k.c.state == stateLocked || time.Now().After(k.c.deadline) {
		if k.c.state == stateUnlocked {
			k.lockLocked()
		}
		return model.New(model.ErrWalletLocked, "wallet is locked")
	}
	k.c.deadline = time.Now().Add(k.autoLockInterval)
	return fn(k.c.seed)
}

// GenerateRandomPassword draws a CSPRNG password, for callers that want to
// rotate or provision a vault without a human-chosen secret.
func GenerateRandomPassword(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, model.Wrap(model.ErrStorageUnavailable, "failed to draw random password", err)
	}
	return buf, nil
}
