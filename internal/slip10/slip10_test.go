package slip10

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testSeed() []byte {
	seed := make([]byte, 64)
	for i := range seed {
		seed[i] = byte(i * 3)
	}
	return seed
}

func TestNewMasterKeyDeterministic(t *testing.T) {
	seed := testSeed()
	k1 := NewMasterKey(seed)
	k2 := NewMasterKey(seed)
	require.Equal(t, k1.Key, k2.Key)
	require.Equal(t, k1.ChainCode, k2.ChainCode)
	require.Len(t, k1.Key, 32)
}

func TestDeriveChildRejectsUnhardened(t *testing.T) {
	master := NewMasterKey(testSeed())
	_, err := master.DeriveChild(44)
	require.Error(t, err)
}

func TestDeriveChildHardenedIsDeterministic(t *testing.T) {
	master := NewMasterKey(testSeed())
	c1, err := master.DeriveChild(44 + HardenedOffset())
	require.NoError(t, err)
	c2, err := master.DeriveChild(44 + HardenedOffset())
	require.NoError(t, err)
	require.Equal(t, c1.Key, c2.Key)
}

func TestDeriveChildDiffersByIndex(t *testing.T) {
	master := NewMasterKey(testSeed())
	c1, err := master.DeriveChild(0 + HardenedOffset())
	require.NoError(t, err)
	c2, err := master.DeriveChild(1 + HardenedOffset())
	require.NoError(t, err)
	require.NotEqual(t, c1.Key, c2.Key)
}

func TestIsHardenedIndex(t *testing.T) {
	require.True(t, IsHardenedIndex(HardenedOffset()))
	require.False(t, IsHardenedIndex(HardenedOffset()-1))
}

func TestZeroClearsKeyMaterial(t *testing.T) {
	master := NewMasterKey(testSeed())
	master.Zero()
	for _, b := range master.Key {
		require.Equal(t, byte(0), b)
	}
}
