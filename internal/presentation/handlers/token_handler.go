package handlers

import (
	"context"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
)

// TokenReader reads ERC20 metadata and state on-chain.
type TokenReader interface {
	Owner() common.Address
	Symbol(ctx context.Context, token common.Address) (string, error)
	Decimals(ctx context.Context, token common.Address) (uint8, error)
	BalanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error)
	Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
}

// TokenHandler exposes ERC20 metadata and the operator's balance and
// allowance state for a token.
type TokenHandler struct {
	reader TokenReader
}

// NewTokenHandler creates a new token handler
func NewTokenHandler(reader TokenReader) *TokenHandler {
	return &TokenHandler{reader: reader}
}

// TokenResponse describes one ERC20 token from the operator's view
type TokenResponse struct {
	Token     string `json:"token"`
	Symbol    string `json:"symbol"`
	Decimals  uint8  `json:"decimals"`
	Owner     string `json:"owner"`
	Balance   string `json:"balance"`
	Allowance string `json:"allowance,omitempty"`
}

// Get handles GET /api/v1/tokens/{tokenAddress}
func (h *TokenHandler) Get(w http.ResponseWriter, r *http.Request) {
	tokenAddr := chi.URLParam(r, "tokenAddress")
	if !common.IsHexAddress(tokenAddr) {
		writeError(w, http.StatusBadRequest, "invalid_token", "token is not a valid address")
		return
	}
	token := common.HexToAddress(tokenAddr)
	owner := h.reader.Owner()
	ctx := r.Context()

	symbol, err := h.reader.Symbol(ctx, token)
	if err != nil {
		writeError(w, http.StatusBadGateway, "token_read_failed", err.Error())
		return
	}
	decimals, err := h.reader.Decimals(ctx, token)
	if err != nil {
		writeError(w, http.StatusBadGateway, "token_read_failed", err.Error())
		return
	}
	balance, err := h.reader.BalanceOf(ctx, token, owner)
	if err != nil {
		writeError(w, http.StatusBadGateway, "token_read_failed", err.Error())
		return
	}

	resp := TokenResponse{
		Token:    token.Hex(),
		Symbol:   symbol,
		Decimals: decimals,
		Owner:    owner.Hex(),
		Balance:  balance.String(),
	}

	if spender := r.URL.Query().Get("spender"); spender != "" {
		if !common.IsHexAddress(spender) {
			writeError(w, http.StatusBadRequest, "invalid_spender", "spender is not a valid address")
			return
		}
		allowance, err := h.reader.Allowance(ctx, token, owner, common.HexToAddress(spender))
		if err != nil {
			writeError(w, http.StatusBadGateway, "token_read_failed", err.Error())
			return
		}
		resp.Allowance = allowance.String()
	}

	writeJSON(w, http.StatusOK, resp)
}
