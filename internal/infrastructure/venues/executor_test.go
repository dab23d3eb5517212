package venues

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/artulabs/swap-router/internal/domain/entities"
)

func TestWrapExecutionError(t *testing.T) {
	cases := []struct {
		raw  string
		want error
	}{
		{"execution reverted: ERC20: insufficient allowance", entities.ErrInsufficientAllowance},
		{"execution reverted: TransferHelper: transfer amount exceeds allowance", entities.ErrInsufficientAllowance},
		{"execution reverted: ERC20: transfer amount exceeds balance", entities.ErrInsufficientBalance},
		{"execution reverted: UniswapV2Router: INSUFFICIENT_OUTPUT_AMOUNT", entities.ErrVenueExecutionFailed},
		{"gas estimation failed: out of gas", entities.ErrVenueExecutionFailed},
	}

	for _, tc := range cases {
		err := wrapExecutionError("UniswapV2", errors.New(tc.raw))
		assert.True(t, errors.Is(err, tc.want), "raw %q classified as %v", tc.raw, err)
		assert.Contains(t, err.Error(), "UniswapV2")
	}
}
