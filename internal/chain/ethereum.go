package chain

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vaultwallet/keyring/internal/bip32"
	"github.com/vaultwallet/keyring/internal/model"
)

// Ethereum implements Adapter for the Ethereum chain: secp256k1 keys, EIP-55
// checksummed addresses, and legacy/EIP-1559 transaction signing.
type Ethereum struct{}

const ethereumCoinType = 60

// DeriveAccount walks m/44'/60'/0'/0/<index> over BIP32 secp256k1 and returns
// the compressed public key (hex) and EIP-55 checksummed address.
func (Ethereum) DeriveAccount(seed []byte, index uint32) (string, string, string, error) {
	path := Ethereum{}.DefaultPath(index)
	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return "", "", "", err
	}
	defer master.Zero()

	node := master
	for _, idx := range []uint32{
		44 + bip32.HardenedOffset(),
		ethereumCoinType + bip32.HardenedOffset(),
		0 + bip32.HardenedOffset(),
		0,
		index,
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

	pubUncompressed := node.PublicKeyUncompressed()
	addr := addressFromUncompressedPubkey(pubUncompressed)
	return hex.EncodeToString(node.PublicKeyCompressed()), addr, path, nil
}

// DefaultPath renders m/44'/60'/0'/0/<index>.
func (Ethereum) DefaultPath(index uint32) string {
	return "m/44'/60'/0'/0/" + itoa(index)
}

// addressFromUncompressedPubkey drops the uncompressed-point prefix byte,
// keccak256-hashes the remaining 64 bytes, keeps the low 20 bytes, and applies
// the EIP-55 checksum.
func addressFromUncompressedPubkey(pub []byte) string {
	hash := crypto.Keccak256(pub[1:])
	addrBytes := hash[12:]
	return toChecksumAddress(addrBytes)
}

// toChecksumAddress implements EIP-55: uppercase hex digit i (0-based, after
// the "0x" prefix) of the lowercase hex address iff bit 4*i counting from the
// left of keccak256(ascii_lower_address) is set; equivalently, iff hex digit i
// of that hash is >= 8.
func toChecksumAddress(addrBytes []byte) string {
	lowerHex := hex.EncodeToString(addrBytes)
	hash := crypto.Keccak256([]byte(lowerHex))
	hashHex := hex.EncodeToString(hash)

	var b strings.Builder
	b.WriteString("0x")
	for i, c := range lowerHex {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
			continue
		}
		nibble := hashHex[i]
		if nibble >= '8' {
			b.WriteRune(c - 'a' + 'A')
		} else {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// ValidateAddress requires "0x" + 40 hex chars. An all-lowercase or
// all-uppercase hex body is accepted unconditionally (no checksum claimed); a
// mixed-case body must match the EIP-55 checksum exactly or is rejected with
// AddressChecksumMismatch.
func (Ethereum) ValidateAddress(addr string) error {
	if !strings.HasPrefix(addr, "0x") || len(addr) != 42 {
		return model.New(model.ErrAddressMalformed, "address must be 0x + 40 hex chars")
	}
	body := addr[2:]
	if _, err := hex.DecodeString(body); err != nil {
		return model.New(model.ErrAddressMalformed, "address body is not hex")
	}
	lower := strings.ToLower(body)
	upper := strings.ToUpper(body)
	if body == lower || body == upper {
		return nil
	}
	addrBytes, _ := hex.DecodeString(lower)
	want := toChecksumAddress(addrBytes)
	if addr != want {
		return model.New(model.ErrAddressChecksumMismatch, "mixed-case address fails EIP-55 checksum")
	}
	return nil
}

// SignMessage signs the keccak256 hash of msg with secp256k1, returning the
// 65-byte [R || S || V] signature with low-s normalization (V in {0,1}).
func (Ethereum) SignMessage(privKey []byte, msg []byte) ([]byte, error) {
	priv, err := crypto.ToECDSA(privKey)
	if err != nil {
		return nil, model.Wrap(model.ErrDerivationInvalid, "invalid secp256k1 private key", err)
	}
	hash := crypto.Keccak256(msg)
	sig, err := crypto.Sign(hash, priv)
	if err != nil {
		return nil, model.Wrap(model.ErrSigningFailed, "secp256k1 signing failed", err)
	}
	return sig, nil
}

// SignTransaction builds a legacy or EIP-1559 RLP signing payload from a
// *model.EthereumTxRequest according to which fee fields are populated,
// keccak256-hashes it, and signs with secp256k1 low-s normalization. Exactly
// one of GasPrice or {MaxFeePerGas, MaxPriorityFeePerGas} must be set.
func (Ethereum) SignTransaction(privKey []byte, txRequest any) ([]byte, error) {
	tx, ok := txRequest.(*model.EthereumTxRequest)
	if !ok {
		return nil, model.New(model.ErrTxRequestAmbiguous, "ethereum sign_transaction expects *model.EthereumTxRequest")
	}

	isLegacy := tx.GasPrice != nil
	isEIP1559 := tx.MaxFeePerGas != nil && tx.MaxPriorityFeePerGas != nil
	anyEIP1559 := tx.MaxFeePerGas != nil || tx.MaxPriorityFeePerGas != nil
	if isLegacy == isEIP1559 || (isLegacy && anyEIP1559) {
		return nil, model.New(model.ErrTxRequestAmbiguous, "exactly one of legacy gas_price or EIP-1559 fee fields must be set")
	}

	to := common.HexToAddress(tx.To)
	value, ok := new(big.Int).SetString(tx.ValueWei, 10)
	if !ok {
		return nil, model.New(model.ErrTxRequestAmbiguous, "value_wei is not a valid integer string")
	}

	// EIP-1559 (type 2) signing payloads are hashed as keccak256(0x02 || rlp(...));
	// legacy (type 0) payloads have no leading type byte.
	const eip1559TxType = 0x02
	var payload []byte
	var err error
	if isLegacy {
		gasPrice, ok := new(big.Int).SetString(*tx.GasPrice, 10)
		if !ok {
			return nil, model.New(model.ErrTxRequestAmbiguous, "gas_price is not a valid integer string")
		}
		payload, err = rlp.EncodeToBytes([]interface{}{
			tx.Nonce, gasPrice, tx.GasLimit, to, value, tx.Data, tx.ChainID, uint(0), uint(0),
		})
	} else {
		maxFee, ok1 := new(big.Int).SetString(*tx.MaxFeePerGas, 10)
		tip, ok2 := new(big.Int).SetString(*tx.MaxPriorityFeePerGas, 10)
		if !ok1 || !ok2 {
			return nil, model.New(model.ErrTxRequestAmbiguous, "fee fields are not valid integer strings")
		}
		var body []byte
		body, err = rlp.EncodeToBytes([]interface{}{
			tx.ChainID, tx.Nonce, tip, maxFee, tx.GasLimit, to, value, tx.Data, []interface{}{},
		})
		if err == nil {
			payload = append([]byte{eip1559TxType}, body...)
		}
	}
	if err != nil {
		return nil, model.Wrap(model.ErrSigningFailed, "rlp encoding failed", err)
	}

	priv, err := crypto.ToECDSA(privKey)
	if err != nil {
		return nil, model.Wrap(model.ErrDerivationInvalid, "invalid secp256k1 private key", err)
	}
	hash := crypto.Keccak256(payload)
	sig, err := crypto.Sign(hash, priv)
	if err != nil {
		return nil, model.Wrap(model.ErrSigningFailed, "secp256k1 signing failed", err)
	}
	return sig, nil
}
