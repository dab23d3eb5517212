package handlers

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"github.com/artulabs/swap-router/internal/domain/entities"
	"github.com/artulabs/swap-router/internal/domain/services"
)

// SwapHandler handles swap dispatch requests
type SwapHandler struct {
	swaps *services.SwapService
}

// NewSwapHandler creates a new swap handler
func NewSwapHandler(swaps *services.SwapService) *SwapHandler {
	return &SwapHandler{swaps: swaps}
}

// SwapBody represents a swap request. Venue is required on the
// venue-specific routes and ignored on the generic route.
type SwapBody struct {
	Trader        string  `json:"trader"`
	TokenIn       string  `json:"tokenIn"`
	TokenOut      string  `json:"tokenOut"`
	AmountIn      string  `json:"amountIn"`
	SlippageParam string  `json:"slippageParam"`
	Venue         *uint64 `json:"venue,omitempty"`
}

// SwapResponse represents a settled swap
type SwapResponse struct {
	Venue     string `json:"venue"`
	TokenIn   string `json:"tokenIn"`
	TokenOut  string `json:"tokenOut"`
	Trader    string `json:"trader"`
	AmountOut string `json:"amountOut,omitempty"`
	TxHash    string `json:"txHash"`
}

// Swap handles POST /api/v1/swap (generic workflow path, default venue)
func (h *SwapHandler) Swap(w http.ResponseWriter, r *http.Request) {
	_, req, ok := h.parseBody(w, r)
	if !ok {
		return
	}

	receipt, err := h.swaps.Swap(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, buildSwapResponse(receipt))
}

// SwapV2 handles POST /api/v1/swap/v2
func (h *SwapHandler) SwapV2(w http.ResponseWriter, r *http.Request) {
	h.swapOnFamily(w, r, h.swaps.SwapOnV2)
}

// SwapV3 handles POST /api/v1/swap/v3
func (h *SwapHandler) SwapV3(w http.ResponseWriter, r *http.Request) {
	h.swapOnFamily(w, r, h.swaps.SwapOnV3)
}

// SwapAggregator handles POST /api/v1/swap/aggregator
func (h *SwapHandler) SwapAggregator(w http.ResponseWriter, r *http.Request) {
	h.swapOnFamily(w, r, h.swaps.SwapOnAggregator)
}

func (h *SwapHandler) swapOnFamily(
	w http.ResponseWriter,
	r *http.Request,
	dispatch func(context.Context, entities.VenueTag, entities.SwapRequest) (*entities.SwapReceipt, error),
) {
	body, req, ok := h.parseBody(w, r)
	if !ok {
		return
	}

	if body.Venue == nil {
		writeError(w, http.StatusBadRequest, "missing_venue", "venue tag is required on this route")
		return
	}
	tag, err := entities.ParseVenueTag(*body.Venue)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	receipt, err := dispatch(r.Context(), tag, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, buildSwapResponse(receipt))
}

func (h *SwapHandler) parseBody(w http.ResponseWriter, r *http.Request) (SwapBody, entities.SwapRequest, bool) {
	var body SwapBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return body, entities.SwapRequest{}, false
	}

	if !common.IsHexAddress(body.Trader) {
		writeError(w, http.StatusBadRequest, "invalid_trader", "trader is not a valid address")
		return body, entities.SwapRequest{}, false
	}
	if !common.IsHexAddress(body.TokenIn) {
		writeError(w, http.StatusBadRequest, "invalid_token_in", "tokenIn is not a valid address")
		return body, entities.SwapRequest{}, false
	}
	if !common.IsHexAddress(body.TokenOut) {
		writeError(w, http.StatusBadRequest, "invalid_token_out", "tokenOut is not a valid address")
		return body, entities.SwapRequest{}, false
	}

	amountIn, ok := new(big.Int).SetString(body.AmountIn, 10)
	if !ok || amountIn.Sign() < 0 {
		writeError(w, http.StatusBadRequest, "invalid_amount", "amountIn must be a non-negative integer")
		return body, entities.SwapRequest{}, false
	}

	slippage, ok := new(big.Int).SetString(body.SlippageParam, 10)
	if !ok || slippage.Sign() < 0 {
		writeError(w, http.StatusBadRequest, "invalid_slippage", "slippageParam must be a non-negative integer")
		return body, entities.SwapRequest{}, false
	}

	return body, entities.SwapRequest{
		Trader:        common.HexToAddress(body.Trader),
		TokenIn:       common.HexToAddress(body.TokenIn),
		TokenOut:      common.HexToAddress(body.TokenOut),
		AmountIn:      amountIn,
		SlippageParam: slippage,
	}, true
}

func buildSwapResponse(receipt *entities.SwapReceipt) SwapResponse {
	resp := SwapResponse{
		Venue:    receipt.Venue.String(),
		TokenIn:  receipt.TokenIn.Hex(),
		TokenOut: receipt.TokenOut.Hex(),
		Trader:   receipt.Trader.Hex(),
		TxHash:   receipt.TxHash.Hex(),
	}
	if receipt.AmountOut != nil {
		resp.AmountOut = receipt.AmountOut.String()
	}
	return resp
}
