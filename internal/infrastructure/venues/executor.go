package venues

import (
	"context"
	"fmt"
	"strings"

	"github.com/artulabs/swap-router/internal/domain/entities"
)

// Executor performs a swap against one venue family's call interface.
// The atomicity of the external call is a precondition on the venue:
// either the whole call succeeds, or it leaves no side effect. An
// executor therefore either returns a receipt for a settled swap or an
// error with nothing committed.
type Executor interface {
	Swap(ctx context.Context, desc entities.VenueDescriptor, req entities.SwapRequest) (*entities.SwapReceipt, error)

	// Variant returns the call-interface family this executor serves
	Variant() entities.CallVariant
}

// wrapExecutionError classifies a venue failure into the core error
// taxonomy. Token contracts surface allowance and balance refusals as
// revert reasons during gas estimation; everything else is an opaque
// venue execution failure.
func wrapExecutionError(venueName string, err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "insufficient allowance"),
		strings.Contains(msg, "exceeds allowance"):
		return fmt.Errorf("%w: %s: %s", entities.ErrInsufficientAllowance, venueName, err)
	case strings.Contains(msg, "insufficient balance"),
		strings.Contains(msg, "exceeds balance"),
		strings.Contains(msg, "transfer amount exceeds"):
		return fmt.Errorf("%w: %s: %s", entities.ErrInsufficientBalance, venueName, err)
	default:
		return fmt.Errorf("%w: %s: %s", entities.ErrVenueExecutionFailed, venueName, err)
	}
}
