package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/artulabs/swap-router/internal/domain/entities"
	"github.com/artulabs/swap-router/internal/infrastructure/eventlog"
)

// EventHandler exposes the append-only event log
type EventHandler struct {
	recorder eventlog.Recorder
}

// NewEventHandler creates a new event handler
func NewEventHandler(recorder eventlog.Recorder) *EventHandler {
	return &EventHandler{recorder: recorder}
}

// EventResponse is one event log entry
type EventResponse struct {
	Name      string `json:"name"`
	Spender   string `json:"spender,omitempty"`
	Token     string `json:"token,omitempty"`
	Amount    string `json:"amount,omitempty"`
	TokenIn   string `json:"tokenIn,omitempty"`
	TokenOut  string `json:"tokenOut,omitempty"`
	Trader    string `json:"trader,omitempty"`
	TxHash    string `json:"txHash,omitempty"`
	EmittedAt string `json:"emittedAt"`
}

// List handles GET /api/v1/events
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := eventlog.Filter{
		Name:  r.URL.Query().Get("name"),
		Limit: 100,
	}

	if trader := r.URL.Query().Get("trader"); trader != "" {
		if !common.IsHexAddress(trader) {
			writeError(w, http.StatusBadRequest, "invalid_trader", "trader is not a valid address")
			return
		}
		filter.Trader = common.HexToAddress(trader)
	}
	if token := r.URL.Query().Get("token"); token != "" {
		if !common.IsHexAddress(token) {
			writeError(w, http.StatusBadRequest, "invalid_token", "token is not a valid address")
			return
		}
		filter.Token = common.HexToAddress(token)
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		filter.Limit = limit
	}

	events, err := h.recorder.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "event_log_error", err.Error())
		return
	}

	out := make([]EventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, buildEventResponse(ev))
	}
	writeJSON(w, http.StatusOK, out)
}

func buildEventResponse(ev entities.Event) EventResponse {
	resp := EventResponse{
		Name:      ev.Name,
		EmittedAt: ev.EmittedAt.UTC().Format(time.RFC3339),
	}
	if ev.Spender != (common.Address{}) {
		resp.Spender = ev.Spender.Hex()
	}
	if ev.Token != (common.Address{}) {
		resp.Token = ev.Token.Hex()
	}
	if ev.Amount != nil {
		resp.Amount = ev.Amount.String()
	}
	if ev.TokenIn != (common.Address{}) {
		resp.TokenIn = ev.TokenIn.Hex()
	}
	if ev.TokenOut != (common.Address{}) {
		resp.TokenOut = ev.TokenOut.Hex()
	}
	if ev.Trader != (common.Address{}) {
		resp.Trader = ev.Trader.Hex()
	}
	if ev.TxHash != (common.Hash{}) {
		resp.TxHash = ev.TxHash.Hex()
	}
	return resp
}
