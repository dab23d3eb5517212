package eventlog

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/artulabs/swap-router/internal/domain/entities"
)

// Recorder is the append-only event log, the system of record for
// approvals and completed swaps. The core keeps no other history.
type Recorder interface {
	Append(ctx context.Context, ev entities.Event) error
	List(ctx context.Context, f Filter) ([]entities.Event, error)
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Name   string
	Trader common.Address
	Token  common.Address
	Limit  int
}

// Matches reports whether an event passes the filter
func (f Filter) Matches(ev entities.Event) bool {
	if f.Name != "" && ev.Name != f.Name {
		return false
	}
	if f.Trader != (common.Address{}) && ev.Trader != f.Trader {
		return false
	}
	if f.Token != (common.Address{}) && ev.Token != f.Token && ev.TokenIn != f.Token && ev.TokenOut != f.Token {
		return false
	}
	return true
}
