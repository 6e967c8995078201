package handler

import (
	"net/http"

	"github.com/vaultwallet/keyring/internal/model"
)

// Status handles GET /status.
// @Summary      Wallet status
// @Description  Reports whether a wallet exists and whether it is unlocked
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.StatusResponse
// @Router       /status [get]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	hasWallet, isUnlocked := h.kr.Status()
	writeJSON(w, http.StatusOK, model.StatusResponse{HasWallet: hasWallet, IsUnlocked: isUnlocked})
}

// CreateWallet handles POST /wallet. The mnemonic is returned exactly once in
// the response body and never logged or persisted in plaintext.
// @Summary      Create wallet
// @Description  Generates a fresh mnemonic, seals it under password, and unlocks
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.CreateWalletRequest  true  "Create wallet"
// @Success      200      {object}  model.CreateWalletResponse
// @Router       /wallet [post]
func (h *Handler) CreateWallet(w http.ResponseWriter, r *http.Request) {
	var req model.CreateWalletRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	password := []byte(req.Password)
	defer clear(password)

	words, err := h.kr.Create(h.ctx(r), password, req.WordCount)
	if err != nil {
		writeError(w, err)
		return
	}
	h.log.Info().Str("wallet_id", h.kr.WalletID()).Msg("wallet created")
	writeJSON(w, http.StatusOK, model.CreateWalletResponse{WalletID: h.kr.WalletID(), MnemonicWords: words})
}

// ImportWallet handles POST /wallet/import.
// @Summary      Import wallet
// @Description  Validates and seals an externally-supplied mnemonic
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.ImportWalletRequest  true  "Import wallet"
// @Success      200      {object}  model.ImportWalletResponse
// @Router       /wallet/import [post]
func (h *Handler) ImportWallet(w http.ResponseWriter, r *http.Request) {
	var req model.ImportWalletRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	password := []byte(req.Password)
	defer clear(password)

	if err := h.kr.Import(h.ctx(r), req.Mnemonic, password); err != nil {
		writeError(w, err)
		return
	}
	h.log.Info().Str("wallet_id", h.kr.WalletID()).Msg("wallet imported")
	writeJSON(w, http.StatusOK, model.ImportWalletResponse{WalletID: h.kr.WalletID()})
}

// Unlock handles POST /wallet/unlock.
// @Summary      Unlock wallet
// @Tags         wallet
// @Accept       json
// @Success      204
// @Router       /wallet/unlock [post]
func (h *Handler) Unlock(w http.ResponseWriter, r *http.Request) {
	var req model.UnlockRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	password := []byte(req.Password)
	defer clear(password)

	if err := h.kr.Unlock(h.ctx(r), password); err != nil {
		writeError(w, err)
		return
	}
	h.log.Info().Str("wallet_id", h.kr.WalletID()).Msg("wallet unlocked")
	w.WriteHeader(http.StatusNoContent)
}

// Lock handles POST /wallet/lock.
// @Summary      Lock wallet
// @Tags         wallet
// @Success      204
// @Router       /wallet/lock [post]
func (h *Handler) Lock(w http.ResponseWriter, r *http.Request) {
	h.kr.Lock()
	h.log.Info().Str("wallet_id", h.kr.WalletID()).Msg("wallet locked")
	w.WriteHeader(http.StatusNoContent)
}

// Reset handles POST /wallet/reset. Destructive: deletes the vault envelope
// and every derived account record.
// @Summary      Reset wallet
// @Description  Deletes the vault and all derived accounts
// @Tags         wallet
// @Success      204
// @Router       /wallet/reset [post]
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.kr.Reset(h.ctx(r)); err != nil {
		writeError(w, err)
		return
	}
	h.log.Warn().Str("wallet_id", h.kr.WalletID()).Msg("wallet reset")
	w.WriteHeader(http.StatusNoContent)
}
