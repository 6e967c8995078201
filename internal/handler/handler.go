// Package handler binds the keyring subsystem's inbound control surface to
// HTTP. Every handler decodes a request DTO from internal/model, calls into
// keyring/signer/multisig/store, and writes back either the response DTO or
// the shared ErrorResponse shape.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/vaultwallet/keyring/internal/client"
	"github.com/vaultwallet/keyring/internal/keyring"
	"github.com/vaultwallet/keyring/internal/model"
	"github.com/vaultwallet/keyring/internal/multisig"
	"github.com/vaultwallet/keyring/internal/signer"
	"github.com/vaultwallet/keyring/internal/store"
)

// Handler holds the wired collaborators every inbound operation dispatches
// to. One Handler serves one Keyring/wallet.
type Handler struct {
	kr    *keyring.Keyring
	sig   *signer.Dispatcher
	coord *multisig.Coordinator
	st    store.Store
	bc    *client.Broadcaster
	log   zerolog.Logger
}

// New constructs a Handler over the given collaborators.
func New(kr *keyring.Keyring, sig *signer.Dispatcher, coord *multisig.Coordinator, st store.Store, bc *client.Broadcaster, log zerolog.Logger) *Handler {
	return &Handler{kr: kr, sig: sig, coord: coord, st: st, bc: bc, log: log}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, err error) {
	kind := model.KindOf(err)
	writeJSON(w, statusForKind(kind), model.ErrorResponse{Error: err.Error(), Code: string(kind)})
}

// statusForKind maps a tagged ErrKind to the HTTP status a caller should see.
// Kinds not recognized here (including "" for an untagged error) fall back to
// 500.
func statusForKind(kind model.ErrKind) int {
	switch kind {
	case model.ErrWalletLocked, model.ErrWrongPassword:
		return http.StatusUnauthorized
	case model.ErrNotAnOwner:
		return http.StatusForbidden
	case model.ErrMnemonicInvalid, model.ErrPathInvalid, model.ErrDerivationInvalid,
		model.ErrDerivationOutOfRange, model.ErrAddressChecksumMismatch, model.ErrAddressMalformed,
		model.ErrTxRequestAmbiguous, model.ErrConfigOptionUnknown:
		return http.StatusBadRequest
	case model.ErrThresholdNotMet, model.ErrProposalTerminal:
		return http.StatusConflict
	case model.ErrSigningFailed:
		return http.StatusInternalServerError
	case model.ErrVaultVersionUnsupported:
		return http.StatusGone
	case model.ErrStorageUnavailable, model.ErrBroadcastFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func (h *Handler) ctx(r *http.Request) context.Context {
	return r.Context()
}
