package entities

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVenueTag(t *testing.T) {
	wantNames := map[uint64]string{
		0: "Apeswap",
		1: "UniswapV2",
		2: "UniswapV3",
		3: "Sushiswap",
		4: "OneInch",
	}

	for raw, name := range wantNames {
		tag, err := ParseVenueTag(raw)
		require.NoError(t, err)
		assert.True(t, tag.Valid())
		assert.Equal(t, name, tag.String())
	}
}

func TestParseVenueTagOutOfRange(t *testing.T) {
	for _, raw := range []uint64{5, 17, 255, 1 << 32} {
		_, err := ParseVenueTag(raw)
		require.Error(t, err, "tag %d", raw)
		assert.True(t, errors.Is(err, ErrUnknownVenue))
	}
}

func TestVenueTagValid(t *testing.T) {
	assert.True(t, VenueApeswap.Valid())
	assert.True(t, VenueOneInch.Valid())
	assert.False(t, VenueTag(5).Valid())
	assert.Equal(t, "VenueTag(9)", VenueTag(9).String())
}

func TestAllVenueTags(t *testing.T) {
	tags := AllVenueTags()
	require.Len(t, tags, 5)
	for i, tag := range tags {
		assert.Equal(t, VenueTag(i), tag)
	}
}

func TestEventNames(t *testing.T) {
	assert.Equal(t, "TokensApprovedOnUniswapV2", ApprovalEventName(VenueUniswapV2))
	assert.Equal(t, "TokensApprovedOnOneInch", ApprovalEventName(VenueOneInch))
	assert.Equal(t, "TokensSwappedOnUniswapV3", SwapEventName(VenueUniswapV3))
	assert.Equal(t, "TokensSwappedOnApeswap", SwapEventName(VenueApeswap))
}

func TestSwapRequestValidate(t *testing.T) {
	valid := SwapRequest{
		Trader:        common.HexToAddress("0x1111111111111111111111111111111111111111"),
		TokenIn:       WMATIC.Address,
		TokenOut:      DAI.Address,
		AmountIn:      big.NewInt(1000),
		SlippageParam: big.NewInt(990),
	}
	require.NoError(t, valid.Validate())

	zeroAmount := valid
	zeroAmount.AmountIn = big.NewInt(0)
	assert.NoError(t, zeroAmount.Validate(), "zero amountIn passes through")

	noTrader := valid
	noTrader.Trader = common.Address{}
	assert.Error(t, noTrader.Validate())

	samePair := valid
	samePair.TokenOut = samePair.TokenIn
	assert.Error(t, samePair.Validate())

	nilAmount := valid
	nilAmount.AmountIn = nil
	assert.Error(t, nilAmount.Validate())

	negativeSlippage := valid
	negativeSlippage.SlippageParam = big.NewInt(-1)
	assert.Error(t, negativeSlippage.Validate())
}

func TestNewApprovalEventCopiesAmount(t *testing.T) {
	amount := big.NewInt(500)
	ev := NewApprovalEvent(EventTokensSwapApproved, common.Address{1}, WMATIC.Address, amount, common.Hash{2})

	amount.SetInt64(9999)
	assert.Equal(t, "500", ev.Amount.String())
	assert.False(t, ev.EmittedAt.IsZero())
}
