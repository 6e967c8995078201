package chain

import (
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"

	"github.com/vaultwallet/keyring/internal/mnemonic"
	"github.com/vaultwallet/keyring/internal/slip10"
)

func TestSolanaDeriveAccountProducesValidAddress(t *testing.T) {
	seed, err := mnemonic.Seed(testMnemonic, "")
	require.NoError(t, err)

	pubHex, addr, path, err := Solana{}.DeriveAccount(seed, 0)
	require.NoError(t, err)
	require.Equal(t, "m/44'/501'/0'/0'", path)
	require.NotEmpty(t, pubHex)
	require.NoError(t, Solana{}.ValidateAddress(addr))

	raw, err := base58.Decode(addr)
	require.NoError(t, err)
	require.Len(t, raw, 32)
}

func TestSolanaDeriveAccountDiffersByIndex(t *testing.T) {
	seed, err := mnemonic.Seed(testMnemonic, "")
	require.NoError(t, err)

	_, addr0, _, err := Solana{}.DeriveAccount(seed, 0)
	require.NoError(t, err)
	_, addr1, _, err := Solana{}.DeriveAccount(seed, 1)
	require.NoError(t, err)
	require.NotEqual(t, addr0, addr1)
}

func TestSolanaValidateAddressRejectsWrongLength(t *testing.T) {
	short := base58.Encode([]byte("too short"))
	require.Error(t, Solana{}.ValidateAddress(short))
}

func TestSolanaValidateAddressRejectsNonBase58(t *testing.T) {
	require.Error(t, Solana{}.ValidateAddress("not!base58!chars!!!"))
}

func TestSolanaSignMessageAndTransaction(t *testing.T) {
	seed, err := mnemonic.Seed(testMnemonic, "")
	require.NoError(t, err)

	priv, err := deriveSolanaPriv(seed, 0)
	require.NoError(t, err)

	msg := []byte("transfer 1 SOL")
	sig, err := Solana{}.SignMessage(priv, msg)
	require.NoError(t, err)
	require.Len(t, sig, 64)

	sig2, err := Solana{}.SignTransaction(priv, msg)
	require.NoError(t, err)
	require.Equal(t, sig, sig2)

	_, err = Solana{}.SignTransaction(priv, "not bytes")
	require.Error(t, err)
}

// deriveSolanaPriv mirrors signer.derivePrivateKey's Solana branch:
// m/44'/501'/<index>'/0', returning the raw 32-byte ed25519 seed.
func deriveSolanaPriv(seed []byte, index uint32) ([]byte, error) {
	master := slip10.NewMasterKey(seed)
	defer master.Zero()
	node := master
	for _, idx := range []uint32{
		44 + slip10.HardenedOffset(),
		501 + slip10.HardenedOffset(),
		index + slip10.HardenedOffset(),
		0 + slip10.HardenedOffset(),
	} {
		child, err := node.DeriveChild(idx)
		if node != master {
			node.Zero()
		}
		if err != nil {
			return nil, err
		}
		node = child
	}
	priv := make([]byte, len(node.Key))
	copy(priv, node.Key)
	node.Zero()
	return priv, nil
}
