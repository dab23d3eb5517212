package entities

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// SwapRequest carries the parameters of one dispatch call. It is never
// persisted; it exists only for the duration of the call.
type SwapRequest struct {
	Trader   common.Address `json:"trader"`
	TokenIn  common.Address `json:"tokenIn"`
	TokenOut common.Address `json:"tokenOut"`
	AmountIn *big.Int       `json:"amountIn"`
	// SlippageParam is the minimum acceptable output. It is forwarded
	// to the venue unmodified; the venue enforces it.
	SlippageParam *big.Int `json:"slippageParam"`
}

// Validate checks the request shape before dispatch. A zero AmountIn is
// allowed through: the venue decides whether a zero-amount swap is
// meaningful.
func (r SwapRequest) Validate() error {
	if r.Trader == (common.Address{}) {
		return fmt.Errorf("trader address is required")
	}
	if r.TokenIn == (common.Address{}) || r.TokenOut == (common.Address{}) {
		return fmt.Errorf("tokenIn and tokenOut are required")
	}
	if r.TokenIn == r.TokenOut {
		return fmt.Errorf("tokenIn and tokenOut must differ")
	}
	if r.AmountIn == nil || r.AmountIn.Sign() < 0 {
		return fmt.Errorf("amountIn must be a non-negative integer")
	}
	if r.SlippageParam == nil || r.SlippageParam.Sign() < 0 {
		return fmt.Errorf("slippageParam must be a non-negative integer")
	}
	return nil
}

// SwapReceipt is the realized result of a settled swap. AmountOut is
// nil for venues that do not report it.
type SwapReceipt struct {
	Venue     VenueTag       `json:"venue"`
	TokenIn   common.Address `json:"tokenIn"`
	TokenOut  common.Address `json:"tokenOut"`
	Trader    common.Address `json:"trader"`
	AmountOut *big.Int       `json:"amountOut,omitempty"`
	TxHash    common.Hash    `json:"txHash"`
}
