// Package api wires the handler package's methods onto an http.ServeMux.
package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/vaultwallet/keyring/internal/handler"
)

// SetupRouter mounts every inbound control-surface route onto a fresh
// http.ServeMux, plus the swagger UI.
func SetupRouter(h *handler.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	mux.HandleFunc("GET /status", h.Status)
	mux.HandleFunc("PUT /config", h.UpdateConfig)

	mux.HandleFunc("POST /wallet", h.CreateWallet)
	mux.HandleFunc("POST /wallet/import", h.ImportWallet)
	mux.HandleFunc("POST /wallet/unlock", h.Unlock)
	mux.HandleFunc("POST /wallet/lock", h.Lock)
	mux.HandleFunc("POST /wallet/reset", h.Reset)

	mux.HandleFunc("GET /accounts", h.ListAccounts)
	mux.HandleFunc("POST /accounts", h.CreateAccount)
	mux.HandleFunc("DELETE /accounts/{id}", h.DeleteAccount)
	mux.HandleFunc("GET /accounts/{id}/balance", h.Balance)
	mux.HandleFunc("GET /accounts/{id}/fee_estimate", h.FeeEstimate)

	mux.HandleFunc("POST /sign/transaction", h.SignTransaction)
	mux.HandleFunc("POST /sign/message", h.SignMessage)
	mux.HandleFunc("POST /validate_address", h.ValidateAddress)

	mux.HandleFunc("POST /multisig/groups", h.CreateGroup)
	mux.HandleFunc("GET /multisig/groups", h.ListGroups)
	mux.HandleFunc("GET /multisig/groups/{id}/proposals", h.ListProposals)
	mux.HandleFunc("POST /multisig/propose", h.Propose)
	mux.HandleFunc("POST /multisig/proposals/{id}/approve", h.Approve)
	mux.HandleFunc("POST /multisig/proposals/{id}/cancel", h.Cancel)
	mux.HandleFunc("POST /multisig/proposals/{id}/execute", h.Execute)

	return mux
}
