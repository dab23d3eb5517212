package entities

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Event names. The default path emits the bare names; venue-specific
// paths carry the venue identity in the name with an otherwise
// identical payload.
const (
	EventTokensSwapApproved = "TokensSwapApproved"
	EventTokensSwapped      = "TokensSwapped"
)

// ApprovalEventName returns the venue-specific approval event name,
// e.g. "TokensApprovedOnUniswapV2".
func ApprovalEventName(tag VenueTag) string {
	return "TokensApprovedOn" + tag.String()
}

// SwapEventName returns the venue-specific completion event name,
// e.g. "TokensSwappedOnUniswapV3".
func SwapEventName(tag VenueTag) string {
	return "TokensSwappedOn" + tag.String()
}

// Event is one entry in the append-only event log, the system of record
// for approvals and completed swaps. Approval events fill Spender,
// Token and Amount; swap events fill TokenIn, TokenOut and Trader.
type Event struct {
	Name      string         `json:"name"`
	Spender   common.Address `json:"spender,omitempty"`
	Token     common.Address `json:"token,omitempty"`
	Amount    *big.Int       `json:"amount,omitempty"`
	TokenIn   common.Address `json:"tokenIn,omitempty"`
	TokenOut  common.Address `json:"tokenOut,omitempty"`
	Trader    common.Address `json:"trader,omitempty"`
	TxHash    common.Hash    `json:"txHash,omitempty"`
	EmittedAt time.Time      `json:"emittedAt"`
}

// NewApprovalEvent builds an approval event for the given name.
func NewApprovalEvent(name string, spender, token common.Address, amount *big.Int, txHash common.Hash) Event {
	return Event{
		Name:      name,
		Spender:   spender,
		Token:     token,
		Amount:    new(big.Int).Set(amount),
		TxHash:    txHash,
		EmittedAt: time.Now().UTC(),
	}
}

// NewSwapEvent builds a completion event for the given name.
func NewSwapEvent(name string, receipt SwapReceipt) Event {
	return Event{
		Name:      name,
		TokenIn:   receipt.TokenIn,
		TokenOut:  receipt.TokenOut,
		Trader:    receipt.Trader,
		TxHash:    receipt.TxHash,
		EmittedAt: time.Now().UTC(),
	}
}
