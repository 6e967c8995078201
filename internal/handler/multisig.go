package handler

import (
	"net/http"

	"github.com/vaultwallet/keyring/internal/config"
	"github.com/vaultwallet/keyring/internal/model"
)

// CreateGroup handles POST /multisig/groups.
// @Summary      Create an M-of-N ownership group
// @Tags         multisig
// @Accept       json
// @Produce      json
// @Param        request  body      model.CreateGroupRequest  true  "Create group"
// @Success      200      {object}  model.MultisigGroup
// @Router       /multisig/groups [post]
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req model.CreateGroupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	g, err := h.coord.CreateGroup(h.ctx(r), req.Chain, req.Owners, req.Threshold)
	if err != nil {
		writeError(w, err)
		return
	}
	h.log.Info().Str("group_id", g.ID).Int("threshold", g.Threshold).Msg("multisig group created")
	writeJSON(w, http.StatusOK, g)
}

// ListGroups handles GET /multisig/groups.
// @Summary      List all multisig groups
// @Tags         multisig
// @Produce      json
// @Success      200  {array}  model.MultisigGroup
// @Router       /multisig/groups [get]
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.st.ListGroups(h.ctx(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// ListProposals handles GET /multisig/groups/{id}/proposals.
// @Summary      List a group's proposals
// @Tags         multisig
// @Produce      json
// @Param        id  path  string  true  "Group ID"
// @Success      200  {array}  model.MultisigProposal
// @Router       /multisig/groups/{id}/proposals [get]
func (h *Handler) ListProposals(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("id")
	proposals, err := h.st.ListProposals(h.ctx(r), groupID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, proposals)
}

// Propose handles POST /multisig/propose.
// @Summary      Propose a spend against a group
// @Tags         multisig
// @Accept       json
// @Produce      json
// @Param        request  body      model.ProposeRequest  true  "Propose"
// @Success      200      {object}  model.MultisigProposal
// @Router       /multisig/propose [post]
func (h *Handler) Propose(w http.ResponseWriter, r *http.Request) {
	var req model.ProposeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.coord.Propose(h.ctx(r), req.GroupID, req.CallerAddr, req.To, req.Amount, req.Data, req.Nonce, req.CallerSig)
	if err != nil {
		writeError(w, err)
		return
	}
	h.log.Info().Str("proposal_id", p.ID).Str("group_id", p.GroupID).Msg("proposal created")
	writeJSON(w, http.StatusOK, p)
}

// Approve handles POST /multisig/proposals/{id}/approve.
// @Summary      Approve a proposal
// @Tags         multisig
// @Accept       json
// @Param        id       path  string                   true  "Proposal ID"
// @Param        request  body  model.ApproveRequest  true  "Approve"
// @Success      204
// @Router       /multisig/proposals/{id}/approve [post]
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req model.ApproveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.coord.Approve(h.ctx(r), id, req.Owner); err != nil {
		writeError(w, err)
		return
	}
	h.log.Info().Str("proposal_id", id).Str("owner", req.Owner).Msg("proposal approved")
	w.WriteHeader(http.StatusNoContent)
}

// Cancel handles POST /multisig/proposals/{id}/cancel.
// @Summary      Cancel a proposal
// @Tags         multisig
// @Accept       json
// @Param        id       path  string                true  "Proposal ID"
// @Param        request  body  model.ApproveRequest  true  "Cancel"
// @Success      204
// @Router       /multisig/proposals/{id}/cancel [post]
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req model.ApproveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.coord.Cancel(h.ctx(r), id, req.Owner); err != nil {
		writeError(w, err)
		return
	}
	h.log.Info().Str("proposal_id", id).Str("owner", req.Owner).Msg("proposal cancelled")
	w.WriteHeader(http.StatusNoContent)
}

// Execute handles POST /multisig/proposals/{id}/execute.
// @Summary      Execute a Ready proposal
// @Tags         multisig
// @Accept       json
// @Produce      json
// @Param        id       path  string                true  "Proposal ID"
// @Param        request  body  model.ExecuteRequest  true  "Execute"
// @Success      200      {object}  model.ExecuteResponse
// @Router       /multisig/proposals/{id}/execute [post]
func (h *Handler) Execute(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req model.ExecuteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	acct, err := h.st.GetAccount(h.ctx(r), req.SigningAccountID)
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

	txHash, err := h.coord.Execute(h.ctx(r), id, acct, txRequest)
	if err != nil {
		writeError(w, err)
		return
	}
	h.log.Info().Str("proposal_id", id).Str("tx_hash", txHash).Msg("proposal executed")
	writeJSON(w, http.StatusOK, model.ExecuteResponse{TxHash: txHash})
}
