package handlers

import (
	"encoding/json"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"github.com/artulabs/swap-router/internal/domain/entities"
	"github.com/artulabs/swap-router/internal/domain/services"
)

// ApproveHandler handles approval requests
type ApproveHandler struct {
	approvals *services.ApprovalService
}

// NewApproveHandler creates a new approve handler
func NewApproveHandler(approvals *services.ApprovalService) *ApproveHandler {
	return &ApproveHandler{approvals: approvals}
}

// ApproveRequest represents an approval request. Venue is optional:
// when absent, the default venue is approved.
type ApproveRequest struct {
	Token  string  `json:"token"`
	Amount string  `json:"amount"`
	Venue  *uint64 `json:"venue,omitempty"`
}

// ApproveResponse represents a committed approval
type ApproveResponse struct {
	Event   string `json:"event"`
	Spender string `json:"spender"`
	Token   string `json:"token"`
	Amount  string `json:"amount"`
	TxHash  string `json:"txHash"`
}

// Approve handles POST /api/v1/approve
func (h *ApproveHandler) Approve(w http.ResponseWriter, r *http.Request) {
	var req ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}

	if !common.IsHexAddress(req.Token) {
		writeError(w, http.StatusBadRequest, "invalid_token", "token is not a valid address")
		return
	}

	amount, ok := new(big.Int).SetString(req.Amount, 10)
	if !ok || amount.Sign() < 0 {
		writeError(w, http.StatusBadRequest, "invalid_amount", "amount must be a non-negative integer")
		return
	}

	token := common.HexToAddress(req.Token)

	var (
		ev  entities.Event
		err error
	)
	if req.Venue == nil {
		ev, err = h.approvals.ApproveDefault(r.Context(), token, amount)
	} else {
		var tag entities.VenueTag
		tag, err = entities.ParseVenueTag(*req.Venue)
		if err == nil {
			ev, err = h.approvals.ApproveForVenue(r.Context(), token, amount, tag)
		}
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ApproveResponse{
		Event:   ev.Name,
		Spender: ev.Spender.Hex(),
		Token:   ev.Token.Hex(),
		Amount:  ev.Amount.String(),
		TxHash:  ev.TxHash.Hex(),
	})
}
