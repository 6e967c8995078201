package handler

import (
	"net/http"

	"github.com/vaultwallet/keyring/internal/common"
	"github.com/vaultwallet/keyring/internal/model"
)

// Balance handles GET /accounts/{id}/balance, a thin pass-through to the
// chain RPC collaborator; the handler layer exposes it to callers that
// already hold an account_id. The keyring core never queries a chain.
// @Summary      Fetch an account's on-chain balance
// @Tags         accounts
// @Produce      json
// @Param        id  path  string  true  "Account ID"
// @Success      200  {object}  model.BalanceResponse
// @Router       /accounts/{id}/balance [get]
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	acct, err := h.st.GetAccount(h.ctx(r), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	switch acct.Chain {
	case model.ChainSolana:
		if h.bc.Solana == nil {
			writeError(w, model.New(model.ErrStorageUnavailable, "no solana RPC client configured"))
			return
		}
		lamports, err := h.bc.Solana.GetBalanceLamports(h.ctx(r), acct.Address)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, model.BalanceResponse{
			Raw:       itoa64(lamports),
			Formatted: common.LamportsToSOL(lamports),
		})
	case model.ChainEthereum:
		if h.bc.Ethereum == nil {
			writeError(w, model.New(model.ErrStorageUnavailable, "no ethereum RPC client configured"))
			return
		}
		wei, err := h.bc.Ethereum.GetBalanceWei(h.ctx(r), acct.Address)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, model.BalanceResponse{
			Raw:       wei.String(),
			Formatted: common.FormatWeiBigInt(wei),
		})
	default:
		writeError(w, model.New(model.ErrPathInvalid, "unsupported chain"))
	}
}

// FeeEstimate handles GET /accounts/{id}/fee_estimate, the inbound surface
// over the chain clients' nonce/fee queries, used by callers assembling a
// raw transaction before calling sign_transaction.
// @Summary      Fetch the fee/nonce fields needed to assemble a transaction
// @Tags         accounts
// @Produce      json
// @Param        id  path  string  true  "Account ID"
// @Success      200  {object}  model.FeeEstimateResponse
// @Router       /accounts/{id}/fee_estimate [get]
func (h *Handler) FeeEstimate(w http.ResponseWriter, r *http.Request) {
	acct, err := h.st.GetAccount(h.ctx(r), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	switch acct.Chain {
	case model.ChainSolana:
		if h.bc.Solana == nil {
			writeError(w, model.New(model.ErrStorageUnavailable, "no solana RPC client configured"))
			return
		}
		blockhash, lamportsPerSig, err := h.bc.Solana.FetchRecentBlockhash(h.ctx(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, model.FeeEstimateResponse{
			Blockhash:            blockhash,
			LamportsPerSignature: lamportsPerSig,
		})
	case model.ChainEthereum:
		if h.bc.Ethereum == nil {
			writeError(w, model.New(model.ErrStorageUnavailable, "no ethereum RPC client configured"))
			return
		}
		nonce, tip, baseFee, err := h.bc.Ethereum.FetchNonceAndFee(h.ctx(r), acct.Address)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, model.FeeEstimateResponse{
			Nonce:      nonce,
			TipWei:     tip.String(),
			BaseFeeWei: baseFee.String(),
		})
	default:
		writeError(w, model.New(model.ErrPathInvalid, "unsupported chain"))
	}
}

func itoa64(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
