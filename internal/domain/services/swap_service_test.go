package services

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/artulabs/swap-router/internal/domain/entities"
	"github.com/artulabs/swap-router/internal/infrastructure/eventlog"
	"github.com/artulabs/swap-router/internal/infrastructure/venues"
)

// MockExecutor is a mock implementation of venues.Executor for testing
type MockExecutor struct {
	variant   entities.CallVariant
	calls     []entities.VenueDescriptor
	amountOut *big.Int
	err       error
}

func NewMockExecutor(variant entities.CallVariant) *MockExecutor {
	return &MockExecutor{variant: variant}
}

func (m *MockExecutor) SetError(err error) {
	m.err = err
}

func (m *MockExecutor) SetAmountOut(amount *big.Int) {
	m.amountOut = amount
}

func (m *MockExecutor) Variant() entities.CallVariant {
	return m.variant
}

func (m *MockExecutor) Swap(ctx context.Context, desc entities.VenueDescriptor, req entities.SwapRequest) (*entities.SwapReceipt, error) {
	m.calls = append(m.calls, desc)
	if m.err != nil {
		return nil, m.err
	}
	return &entities.SwapReceipt{
		Venue:     desc.Tag,
		TokenIn:   req.TokenIn,
		TokenOut:  req.TokenOut,
		Trader:    req.Trader,
		AmountOut: m.amountOut,
		TxHash:    common.HexToHash("0xbeef"),
	}, nil
}

type swapFixture struct {
	service    *SwapService
	v2         *MockExecutor
	v3         *MockExecutor
	aggregator *MockExecutor
	recorder   *eventlog.MemoryRecorder
}

func newSwapFixture(t *testing.T) *swapFixture {
	t.Helper()
	registry, err := venues.NewRegistry(entities.VenueUniswapV2, nil)
	require.NoError(t, err)

	f := &swapFixture{
		v2:         NewMockExecutor(entities.V2Style),
		v3:         NewMockExecutor(entities.V3Style),
		aggregator: NewMockExecutor(entities.AggregatorStyle),
		recorder:   eventlog.NewMemoryRecorder(),
	}
	f.service = NewSwapService(
		registry,
		[]venues.Executor{f.v2, f.v3, f.aggregator},
		f.recorder,
		nil,
		0,
		zap.NewNop(),
	)
	return f
}

func validRequest() entities.SwapRequest {
	return entities.SwapRequest{
		Trader:        common.HexToAddress("0x1111111111111111111111111111111111111111"),
		TokenIn:       entities.WMATIC.Address,
		TokenOut:      entities.DAI.Address,
		AmountIn:      big.NewInt(1_000_000),
		SlippageParam: big.NewInt(990_000),
	}
}

func TestGenericSwapUsesDefaultVenue(t *testing.T) {
	f := newSwapFixture(t)

	receipt, err := f.service.Swap(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, entities.VenueUniswapV2, receipt.Venue)
	require.Len(t, f.v2.calls, 1)
	assert.Equal(t, venues.UniswapV2RouterAddress, f.v2.calls[0].Spender)

	events, err := f.recorder.List(context.Background(), eventlog.Filter{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, entities.EventTokensSwapped, events[0].Name)
}

func TestSwapOnV2EmitsVenueEvent(t *testing.T) {
	f := newSwapFixture(t)

	receipt, err := f.service.SwapOnV2(context.Background(), entities.VenueSushiswap, validRequest())
	require.NoError(t, err)
	assert.Equal(t, entities.VenueSushiswap, receipt.Venue)

	events, err := f.recorder.List(context.Background(), eventlog.Filter{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "TokensSwappedOnSushiswap", events[0].Name)
}

func TestSwapOnV3EmitsVenueEvent(t *testing.T) {
	f := newSwapFixture(t)

	_, err := f.service.SwapOnV3(context.Background(), entities.VenueUniswapV3, validRequest())
	require.NoError(t, err)

	require.Len(t, f.v3.calls, 1)
	assert.Empty(t, f.v2.calls)

	events, err := f.recorder.List(context.Background(), eventlog.Filter{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "TokensSwappedOnUniswapV3", events[0].Name)
}

func TestSwapOnAggregator(t *testing.T) {
	f := newSwapFixture(t)

	_, err := f.service.SwapOnAggregator(context.Background(), entities.VenueOneInch, validRequest())
	require.NoError(t, err)
	require.Len(t, f.aggregator.calls, 1)

	events, err := f.recorder.List(context.Background(), eventlog.Filter{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "TokensSwappedOnOneInch", events[0].Name)
}

func TestSwapOnV2RejectsWrongFamily(t *testing.T) {
	f := newSwapFixture(t)

	// A v3 venue tag on the v2 entry point must fail before any
	// external call and leave no trace in the event log.
	_, err := f.service.SwapOnV2(context.Background(), entities.VenueUniswapV3, validRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, entities.ErrVenueMismatch))
	assert.True(t, strings.Contains(err.Error(), "Please call a reasonable function"))

	assert.Empty(t, f.v2.calls)
	assert.Empty(t, f.v3.calls)
	assert.Equal(t, 0, f.recorder.Len())
}

func TestSwapOnV3RejectsWrongFamily(t *testing.T) {
	f := newSwapFixture(t)

	for _, tag := range []entities.VenueTag{entities.VenueApeswap, entities.VenueUniswapV2, entities.VenueSushiswap, entities.VenueOneInch} {
		_, err := f.service.SwapOnV3(context.Background(), tag, validRequest())
		require.Error(t, err, "tag %s", tag)
		assert.True(t, errors.Is(err, entities.ErrVenueMismatch))
	}
	assert.Equal(t, 0, f.recorder.Len())
}

func TestSwapOnAggregatorRejectsWrongFamily(t *testing.T) {
	f := newSwapFixture(t)

	_, err := f.service.SwapOnAggregator(context.Background(), entities.VenueUniswapV2, validRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, entities.ErrVenueMismatch))
	assert.Equal(t, 0, f.recorder.Len())
}

func TestSwapUnknownVenue(t *testing.T) {
	f := newSwapFixture(t)

	_, err := f.service.SwapOnV2(context.Background(), entities.VenueTag(9), validRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, entities.ErrUnknownVenue))
	assert.Equal(t, 0, f.recorder.Len())
}

func TestSwapFailureRecordsNothing(t *testing.T) {
	f := newSwapFixture(t)
	f.v2.SetError(entities.ErrVenueExecutionFailed)

	_, err := f.service.Swap(context.Background(), validRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, entities.ErrVenueExecutionFailed))

	// No completion event without a settled swap.
	assert.Equal(t, 0, f.recorder.Len())
}

func TestSwapInvalidRequest(t *testing.T) {
	f := newSwapFixture(t)

	req := validRequest()
	req.TokenOut = req.TokenIn
	_, err := f.service.Swap(context.Background(), req)
	require.Error(t, err)
	assert.Empty(t, f.v2.calls)
}

func TestSwapZeroAmountPassesThrough(t *testing.T) {
	f := newSwapFixture(t)

	req := validRequest()
	req.AmountIn = big.NewInt(0)
	req.SlippageParam = big.NewInt(0)

	_, err := f.service.Swap(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, f.v2.calls, 1)
}

func TestApprovalThenSwapSequence(t *testing.T) {
	registry, err := venues.NewRegistry(entities.VenueUniswapV2, nil)
	require.NoError(t, err)

	recorder := eventlog.NewMemoryRecorder()
	approver := NewMockTokenApprover()
	approvals := NewApprovalService(registry, approver, recorder, zap.NewNop())

	v2 := NewMockExecutor(entities.V2Style)
	swaps := NewSwapService(registry, []venues.Executor{v2}, recorder, nil, 0, zap.NewNop())

	ctx := context.Background()
	_, err = approvals.ApproveForVenue(ctx, entities.WMATIC.Address, big.NewInt(1_000_000), entities.VenueUniswapV2)
	require.NoError(t, err)

	_, err = swaps.SwapOnV2(ctx, entities.VenueUniswapV2, validRequest())
	require.NoError(t, err)

	events, err := recorder.List(ctx, eventlog.Filter{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "TokensApprovedOnUniswapV2", events[0].Name)
	assert.Equal(t, "TokensSwappedOnUniswapV2", events[1].Name)
}
