package handlers

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artulabs/swap-router/internal/domain/entities"
)

// stubTokenReader is a TokenReader with canned answers
type stubTokenReader struct{}

func (s *stubTokenReader) Owner() common.Address {
	return common.HexToAddress("0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
}

func (s *stubTokenReader) Symbol(ctx context.Context, token common.Address) (string, error) {
	return "WMATIC", nil
}

func (s *stubTokenReader) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	return 18, nil
}

func (s *stubTokenReader) BalanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	return big.NewInt(1_000_000), nil
}

func (s *stubTokenReader) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	return big.NewInt(500), nil
}

func newTokenRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Get("/api/v1/tokens/{tokenAddress}", NewTokenHandler(&stubTokenReader{}).Get)
	return r
}

func TestTokenHandlerGet(t *testing.T) {
	router := newTokenRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tokens/"+entities.WMATIC.Address.Hex(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp TokenResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "WMATIC", resp.Symbol)
	assert.Equal(t, uint8(18), resp.Decimals)
	assert.Equal(t, "1000000", resp.Balance)
	assert.Empty(t, resp.Allowance)
}

func TestTokenHandlerGetWithSpender(t *testing.T) {
	router := newTokenRouter()

	url := "/api/v1/tokens/" + entities.WMATIC.Address.Hex() + "?spender=0x1b02dA8Cb0d097eB8D57A175b88c7D8b47997506"
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp TokenResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "500", resp.Allowance)
}

func TestTokenHandlerInvalidAddress(t *testing.T) {
	router := newTokenRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tokens/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
