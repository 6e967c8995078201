package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"github.com/vaultwallet/keyring/internal/config"
	"github.com/vaultwallet/keyring/internal/model"
)

// qrPNG renders addr as a 256px PNG QR code.
func qrPNG(addr string) ([]byte, error) {
	qr, err := qrcode.New(addr, qrcode.Medium)
	if err != nil {
		return nil, model.Wrap(model.ErrStorageUnavailable, "failed to create QR code", err)
	}
	return qr.PNG(256)
}

// ListAccounts handles GET /accounts.
// @Summary      List accounts
// @Tags         accounts
// @Produce      json
// @Success      200  {array}  model.Account
// @Router       /accounts [get]
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.st.ListAccounts(h.ctx(r), h.kr.WalletID())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

// CreateAccount handles POST /accounts. It derives the next account for the
// requested chain, persists its public metadata, and returns a QR of its
// address for display at genesis time.
// @Summary      Derive a new account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        request  body      model.CreateAccountRequest  true  "Create account"
// @Success      200      {object}  model.CreateAccountResponse
// @Router       /accounts [post]
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req model.CreateAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Chain == "" {
		req.Chain = model.Chain(config.Get().DefaultChain)
	}
	if !req.Chain.Valid() {
		writeError(w, model.New(model.ErrPathInvalid, "unsupported chain"))
		return
	}

	existing, err := h.st.ListAccounts(h.ctx(r), h.kr.WalletID())
	if err != nil {
		writeError(w, err)
		return
	}
	var nextIndex uint32
	for _, a := range existing {
		if a.Chain == req.Chain && a.DerivationIndex >= nextIndex {
			nextIndex = a.DerivationIndex + 1
		}
	}

	acct, err := h.sig.DeriveAccount(req.Chain, nextIndex)
	if err != nil {
		writeError(w, err)
		return
	}
	now := time.Now()
	acct.ID = uuid.NewString()
	acct.WalletID = h.kr.WalletID()
	acct.Name = req.Name
	acct.CreatedAt = now
	acct.UpdatedAt = now

	if err := h.st.InsertAccount(h.ctx(r), h.kr.WalletID(), acct); err != nil {
		writeError(w, err)
		return
	}

	png, err := qrPNG(acct.Address)
	if err != nil {
		h.log.Warn().Err(err).Str("account_id", acct.ID).Msg("qr generation failed")
		png = nil
	}

	h.log.Info().Str("account_id", acct.ID).Str("chain", string(acct.Chain)).Msg("account created")
	writeJSON(w, http.StatusOK, model.CreateAccountResponse{Account: acct, AddressQR: png})
}

// DeleteAccount handles DELETE /accounts/{id}.
// @Summary      Delete an account
// @Tags         accounts
// @Param        id  path  string  true  "Account ID"
// @Success      204
// @Router       /accounts/{id} [delete]
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	acct, err := h.st.GetAccount(h.ctx(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.st.DeleteAccount(h.ctx(r), acct.WalletID, acct.Chain, acct.DerivationIndex); err != nil {
		writeError(w, err)
		return
	}
	h.log.Info().Str("account_id", id).Msg("account deleted")
	w.WriteHeader(http.StatusNoContent)
}
