package config

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vaultwallet/keyring/internal/model"
)

func TestInitAppliesDefaults(t *testing.T) {
	os.Clearenv()
	require.NoError(t, Init())
	c := Get()
	require.Equal(t, "8080", c.Port)
	require.Equal(t, "default", c.WalletID)
	require.Equal(t, "solana", c.DefaultChain)
	require.Equal(t, uint64(1), c.EthereumChainID)
}

func TestInitRejectsUnknownDefaultChain(t *testing.T) {
	os.Clearenv()
	os.Setenv("DEFAULT_CHAIN", "dogecoin")
	defer os.Unsetenv("DEFAULT_CHAIN")

	err := Init()
	require.Error(t, err)
	require.Equal(t, model.ErrConfigOptionUnknown, model.KindOf(err))
}

func TestInitReadsOverrides(t *testing.T) {
	os.Clearenv()
	os.Setenv("PORT", "9090")
	os.Setenv("DEFAULT_CHAIN", "ethereum")
	defer os.Clearenv()

	require.NoError(t, Init())
	c := Get()
	require.Equal(t, "9090", c.Port)
	require.Equal(t, "ethereum", c.DefaultChain)
}

func TestGetPasswordBytesFailsWithoutPrompt(t *testing.T) {
	passwordBytes = nil
	_, err := GetPasswordBytes()
	require.Error(t, err)
}

func TestApplyRuntimeOverridesUpdatesAllowedKey(t *testing.T) {
	os.Clearenv()
	require.NoError(t, Init())

	updated, err := ApplyRuntimeOverrides(map[string]json.RawMessage{
		"auto_lock_minutes": json.RawMessage(`30`),
	})
	require.NoError(t, err)
	require.Equal(t, 30, updated.AutoLockMinutes)
	require.Equal(t, 30, Get().AutoLockMinutes)
}

func TestApplyRuntimeOverridesRejectsUnknownKey(t *testing.T) {
	os.Clearenv()
	require.NoError(t, Init())

	before := Get().AutoLockMinutes
	_, err := ApplyRuntimeOverrides(map[string]json.RawMessage{
		"auto_lock_minutes": json.RawMessage(`99`),
		"not_a_real_option": json.RawMessage(`true`),
	})
	require.Error(t, err)
	require.Equal(t, model.ErrConfigOptionUnknown, model.KindOf(err))
	require.Equal(t, before, Get().AutoLockMinutes, "rejected batch must not apply any key")
}

func TestApplyRuntimeOverridesRejectsBadDefaultChain(t *testing.T) {
	os.Clearenv()
	require.NoError(t, Init())

	_, err := ApplyRuntimeOverrides(map[string]json.RawMessage{
		"default_chain": json.RawMessage(`"dogecoin"`),
	})
	require.Error(t, err)
	require.Equal(t, model.ErrConfigOptionUnknown, model.KindOf(err))
}
