package model

// StatusResponse answers the inbound status() operation.
type StatusResponse struct {
	HasWallet  bool `json:"has_wallet"`
	IsUnlocked bool `json:"is_unlocked"`
}

// CreateWalletRequest is the body of create_wallet(password).
type CreateWalletRequest struct {
	Password  string `json:"password"`
	WordCount int    `json:"word_count,omitempty"`
}

// CreateWalletResponse returns the mnemonic; this response is the only place
// it ever leaves the process.
type CreateWalletResponse struct {
	WalletID      string `json:"wallet_id"`
	MnemonicWords string `json:"mnemonic_words"`
}

// ImportWalletRequest is the body of import_wallet(mnemonic, password).
type ImportWalletRequest struct {
	Mnemonic string `json:"mnemonic"`
	Password string `json:"password"`
}

// ImportWalletResponse is import_wallet's response.
type ImportWalletResponse struct {
	WalletID string `json:"wallet_id"`
}

// UnlockRequest is the body of unlock(password).
type UnlockRequest struct {
	Password string `json:"password"`
}

// CreateAccountRequest is the body of create_account(chain, name?).
type CreateAccountRequest struct {
	Chain Chain  `json:"chain"`
	Name  string `json:"name,omitempty"`
}

// ValidateAddressRequest is the body of validate_address(chain, str).
type ValidateAddressRequest struct {
	Chain   Chain  `json:"chain"`
	Address string `json:"address"`
}

// ValidateAddressResponse is validate_address's response.
type ValidateAddressResponse struct {
	Valid bool `json:"valid"`
}

// CreateAccountResponse returns the derived account's public metadata plus a
// QR-encoded PNG of its address for display at wallet-genesis time.
type CreateAccountResponse struct {
	Account   Account `json:"account"`
	AddressQR []byte  `json:"address_qr_png,omitempty"`
}

// SignTransactionRequest is the body of sign_transaction(account_id, tx_bytes).
// Exactly one of SolanaMessage or Ethereum should be set, matching the
// account's chain.
type SignTransactionRequest struct {
	AccountID      string             `json:"account_id"`
	SolanaMessage  []byte             `json:"solana_message,omitempty"`
	Ethereum       *EthereumTxRequest `json:"ethereum,omitempty"`
}

// SignMessageRequest is the body of sign_message(account_id, msg).
type SignMessageRequest struct {
	AccountID string `json:"account_id"`
	Message   []byte `json:"message"`
}

// SignResponse carries a raw signature back to the caller.
type SignResponse struct {
	Signature []byte `json:"signature"`
}

// CreateGroupRequest is the body of create_group.
type CreateGroupRequest struct {
	Chain     Chain    `json:"chain"`
	Owners    []string `json:"owners"`
	Threshold int      `json:"threshold"`
}

// ProposeRequest is the body of propose. CallerSig is the caller's signature
// over the proposal's canonical payload (group_id, to, amount, data, nonce),
// proving possession of the owner key behind CallerAddr.
type ProposeRequest struct {
	GroupID    string `json:"group_id"`
	CallerAddr string `json:"caller_addr"`
	To         string `json:"to"`
	Amount     string `json:"amount"`
	Data       []byte `json:"data,omitempty"`
	Nonce      uint64 `json:"nonce"`
	CallerSig  []byte `json:"caller_sig"`
}

// ApproveRequest is the shared body of approve and cancel.
type ApproveRequest struct {
	Owner string `json:"owner"`
}

// ExecuteRequest is the body of execute.
type ExecuteRequest struct {
	SigningAccountID string             `json:"signing_account_id"`
	SolanaMessage    []byte             `json:"solana_message,omitempty"`
	Ethereum         *EthereumTxRequest `json:"ethereum,omitempty"`
}

// ExecuteResponse carries the broadcast tx hash back to the caller.
type ExecuteResponse struct {
	TxHash string `json:"tx_hash"`
}

// BalanceResponse answers get_balance(account_id): the raw base-unit amount
// (lamports or wei) plus a human-formatted decimal string.
type BalanceResponse struct {
	Raw       string `json:"raw"`
	Formatted string `json:"formatted"`
}

// FeeEstimateResponse answers fetch_nonce_and_fee(account_id): the fields
// populated depend on the account's chain. Solana fills Blockhash and
// LamportsPerSignature; Ethereum fills Nonce, TipWei, and BaseFeeWei.
type FeeEstimateResponse struct {
	Blockhash            string `json:"blockhash,omitempty"`
	LamportsPerSignature uint64 `json:"lamports_per_signature,omitempty"`
	Nonce                uint64 `json:"nonce,omitempty"`
	TipWei               string `json:"tip_wei,omitempty"`
	BaseFeeWei           string `json:"base_fee_wei,omitempty"`
}
