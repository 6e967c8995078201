package chain

import (
	"crypto/ed25519"
	"encoding/hex"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"github.com/vaultwallet/keyring/internal/model"
	"github.com/vaultwallet/keyring/internal/slip10"
)

// Solana implements Adapter for the Solana chain: ed25519 keys, base58
// addresses, and detached signatures over caller-serialized message bytes.
// The adapter never constructs Solana transaction/message structure itself;
// callers assemble the message before handing it over.
type Solana struct{}

// solanaCoinType is SLIP-44 coin type 501, used in the default derivation path.
const solanaCoinType = 501

// DeriveAccount walks m/44'/501'/<index>'/0' over SLIP-10 and returns the
// ed25519 public key (hex) and base58 address.
func (Solana) DeriveAccount(seed []byte, index uint32) (string, string, string, error) {
	path := Solana{}.DefaultPath(index)
	master := slip10.NewMasterKey(seed)
	defer master.Zero()

	node := master
	for _, idx := range []uint32{
		44 + slip10.HardenedOffset(),
		solanaCoinType + slip10.HardenedOffset(),
		index + slip10.HardenedOffset(),
		0 + slip10.HardenedOffset(),
	} {
		child, err := node.DeriveChild(idx)
		if node != master {
			node.Zero()
		}
		if err != nil {
			return "", "", "", err
		}
		node = child
	}
	defer node.Zero()

	priv := ed25519.NewKeyFromSeed(node.Key)
	pub := priv.Public().(ed25519.PublicKey)
	addr := base58.Encode(pub)
	return hex.EncodeToString(pub), addr, path, nil
}

// DefaultPath renders m/44'/501'/<index>'/0'.
func (Solana) DefaultPath(index uint32) string {
	return "m/44'/501'/" + itoa(index) + "'/0'"
}

// ValidateAddress decodes addr from base58 and requires exactly 32 bytes,
// matching solana.PublicKey's fixed width.
func (Solana) ValidateAddress(addr string) error {
	raw, err := base58.Decode(addr)
	if err != nil {
		return model.Wrap(model.ErrAddressMalformed, "not valid base58", err)
	}
	if len(raw) != solana.PublicKeyLength {
		return model.New(model.ErrAddressMalformed, "decoded address is not 32 bytes")
	}
	return nil
}

// SignMessage produces a detached ed25519 signature over msg.
func (Solana) SignMessage(privKey []byte, msg []byte) ([]byte, error) {
	priv := ed25519.NewKeyFromSeed(privKey)
	return ed25519.Sign(priv, msg), nil
}

// SignTransaction signs the already-serialized Solana message bytes carried in
// txRequest; the adapter accepts only raw bytes, never transaction structure.
func (Solana) SignTransaction(privKey []byte, txRequest any) ([]byte, error) {
	msg, ok := txRequest.([]byte)
	if !ok {
		return nil, model.New(model.ErrTxRequestAmbiguous, "solana sign_transaction expects serialized message bytes")
	}
	return Solana{}.SignMessage(privKey, msg)
}

func itoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
