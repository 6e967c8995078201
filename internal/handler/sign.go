package handler

import (
	"net/http"

	"github.com/vaultwallet/keyring/internal/config"
	"github.com/vaultwallet/keyring/internal/model"
	"github.com/vaultwallet/keyring/internal/signer"
)

// SignTransaction handles POST /sign/transaction. Exactly one of the
// chain-specific request fields must be set, matching the resolved account's
// chain; passing the wrong shape or both/neither fields returns
// TxRequestAmbiguous.
// @Summary      Sign a transaction
// @Tags         signing
// @Accept       json
// @Produce      json
// @Param        request  body      model.SignTransactionRequest  true  "Sign transaction"
// @Success      200      {object}  model.SignResponse
// @Router       /sign/transaction [post]
func (h *Handler) SignTransaction(w http.ResponseWriter, r *http.Request) {
	var req model.SignTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	acct, err := h.st.GetAccount(h.ctx(r), req.AccountID)
	if err != nil {
		writeError(w, err)
		return
	}

	var txRequest any
	switch acct.Chain {
	case model.ChainSolana:
		if req.SolanaMessage == nil || req.Ethereum != nil {
			writeError(w, model.New(model.ErrTxRequestAmbiguous, "expected solana_message only"))
			return
		}
		txRequest = req.SolanaMessage
	case model.ChainEthereum:
		if req.Ethereum == nil || req.SolanaMessage != nil {
			writeError(w, model.New(model.ErrTxRequestAmbiguous, "expected ethereum only"))
			return
		}
		if req.Ethereum.ChainID == 0 {
			req.Ethereum.ChainID = config.Get().EthereumChainID
		}
		txRequest = req.Ethereum
	default:
		writeError(w, model.New(model.ErrPathInvalid, "unsupported chain"))
		return
	}

	sig, err := h.sig.Sign(acct, txRequest)
	if err != nil {
		writeError(w, err)
		return
	}
	h.log.Debug().Str("account_id", acct.ID).Str("chain", string(acct.Chain)).Msg("transaction signed")
	writeJSON(w, http.StatusOK, model.SignResponse{Signature: sig})
}

// SignMessage handles POST /sign/message.
// @Summary      Sign an opaque message
// @Tags         signing
// @Accept       json
// @Produce      json
// @Param        request  body      model.SignMessageRequest  true  "Sign message"
// @Success      200      {object}  model.SignResponse
// @Router       /sign/message [post]
func (h *Handler) SignMessage(w http.ResponseWriter, r *http.Request) {
	var req model.SignMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	acct, err := h.st.GetAccount(h.ctx(r), req.AccountID)
	if err != nil {
		writeError(w, err)
		return
	}
	sig, err := h.sig.SignMessage(acct, req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	h.log.Debug().Str("account_id", acct.ID).Msg("message signed")
	writeJSON(w, http.StatusOK, model.SignResponse{Signature: sig})
}

// ValidateAddress handles POST /validate_address.
// @Summary      Validate an address string for a chain
// @Tags         signing
// @Accept       json
// @Produce      json
// @Param        request  body      model.ValidateAddressRequest  true  "Validate address"
// @Success      200      {object}  model.ValidateAddressResponse
// @Router       /validate_address [post]
func (h *Handler) ValidateAddress(w http.ResponseWriter, r *http.Request) {
	var req model.ValidateAddressRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	err := signer.ValidateAddress(req.Chain, req.Address)
	writeJSON(w, http.StatusOK, model.ValidateAddressResponse{Valid: err == nil})
}
