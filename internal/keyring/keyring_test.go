package keyring

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vaultwallet/keyring/internal/model"
	"github.com/vaultwallet/keyring/internal/store"
)

func TestNewStartsEmptyWithNoVault(t *testing.T) {
	kr := New(store.NewMemStore(), "w1", time.Minute)
	hasWallet, unlocked := kr.Status()
	require.False(t, hasWallet)
	require.False(t, unlocked)
}

func TestCreateEntersUnlockedAndReturnsMnemonic(t *testing.T) {
	kr := New(store.NewMemStore(), "w1", time.Minute)
	words, err := kr.Create(context.Background(), []byte("pw"), 12)
	require.NoError(t, err)
	require.NotEmpty(t, words)

	hasWallet, unlocked := kr.Status()
	require.True(t, hasWallet)
	require.True(t, unlocked)
}

func TestCreateDefaultsToTwelveWords(t *testing.T) {
	kr := New(store.NewMemStore(), "w1", time.Minute)
	words, err := kr.Create(context.Background(), []byte("pw"), 0)
	require.NoError(t, err)
	require.Len(t, strings.Fields(words), 12)
}

func TestLockThenUnlockRoundTrip(t *testing.T) {
	st := store.NewMemStore()
	kr := New(st, "w1", time.Minute)
	_, err := kr.Create(context.Background(), []byte("pw"), 12)
	require.NoError(t, err)

	kr.Lock()
	_, unlocked := kr.Status()
	require.False(t, unlocked)

	err = kr.Unlock(context.Background(), []byte("pw"))
	require.NoError(t, err)
	_, unlocked = kr.Status()
	require.True(t, unlocked)
}

func TestUnlockWithWrongPasswordFails(t *testing.T) {
	st := store.NewMemStore()
	kr := New(st, "w1", time.Minute)
	_, err := kr.Create(context.Background(), []byte("correct"), 12)
	require.NoError(t, err)
	kr.Lock()

	err = kr.Unlock(context.Background(), []byte("wrong"))
	require.Error(t, err)
	require.Equal(t, model.ErrWrongPassword, model.KindOf(err))
}

func TestUnlockWithNoWalletFails(t *testing.T) {
	kr := New(store.NewMemStore(), "w1", time.Minute)
	err := kr.Unlock(context.Background(), []byte("pw"))
	require.Error(t, err)
}

func TestWithSeedFailsWhenEmpty(t *testing.T) {
	kr := New(store.NewMemStore(), "w1", time.Minute)
	err := kr.WithSeed(func(seed []byte) error { return nil })
	require.Error(t, err)
	require.Equal(t, model.ErrWalletLocked, model.KindOf(err))
}

func TestWithSeedFailsWhenLocked(t *testing.T) {
	kr := New(store.NewMemStore(), "w1", time.Minute)
	_, err := kr.Create(context.Background(), []byte("pw"), 12)
	require.NoError(t, err)
	kr.Lock()

	err = kr.WithSeed(func(seed []byte) error { return nil })
	require.Error(t, err)
	require.Equal(t, model.ErrWalletLocked, model.KindOf(err))
}

func TestAutoLockTickLocksPastDeadline(t *testing.T) {
	kr := New(store.NewMemStore(), "w1", 10*time.Millisecond)
	_, err := kr.Create(context.Background(), []byte("pw"), 12)
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)
	kr.AutoLockTick()

	_, unlocked := kr.Status()
	require.False(t, unlocked)
}

func TestWithSeedExtendsDeadline(t *testing.T) {
	kr := New(store.NewMemStore(), "w1", 50*time.Millisecond)
	_, err := kr.Create(context.Background(), []byte("pw"), 12)
	require.NoError(t, err)

	// Touch the seed partway through the window; this should push the
	// deadline out so the wallet is still unlocked after the original window
	// would have elapsed.
	time.Sleep(30 * time.Millisecond)
	err = kr.WithSeed(func(seed []byte) error { return nil })
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)
	kr.AutoLockTick()
	_, unlocked := kr.Status()
	require.True(t, unlocked)
}

func TestImportRejectsInvalidMnemonic(t *testing.T) {
	kr := New(store.NewMemStore(), "w1", time.Minute)
	err := kr.Import(context.Background(), "not a valid mnemonic phrase at all", []byte("pw"))
	require.Error(t, err)
}

func TestResetReturnsToEmpty(t *testing.T) {
	kr := New(store.NewMemStore(), "w1", time.Minute)
	_, err := kr.Create(context.Background(), []byte("pw"), 12)
	require.NoError(t, err)

	err = kr.Reset(context.Background())
	require.NoError(t, err)

	hasWallet, unlocked := kr.Status()
	require.False(t, hasWallet)
	require.False(t, unlocked)
}

func TestGenerateRandomPassword(t *testing.T) {
	pw, err := GenerateRandomPassword(32)
	require.NoError(t, err)
	require.Len(t, pw, 32)
}
