package services

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/artulabs/swap-router/internal/domain/entities"
	"github.com/artulabs/swap-router/internal/infrastructure/eventlog"
	"github.com/artulabs/swap-router/internal/infrastructure/venues"
)

// MockTokenApprover is a mock implementation of TokenApprover for testing
type MockTokenApprover struct {
	owner      common.Address
	allowances map[common.Address]*big.Int
	approved   []approveCall
	err        error
}

type approveCall struct {
	token   common.Address
	spender common.Address
	amount  *big.Int
}

func NewMockTokenApprover() *MockTokenApprover {
	return &MockTokenApprover{
		owner:      common.HexToAddress("0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"),
		allowances: make(map[common.Address]*big.Int),
	}
}

func (m *MockTokenApprover) SetAllowance(spender common.Address, amount *big.Int) {
	m.allowances[spender] = amount
}

func (m *MockTokenApprover) SetError(err error) {
	m.err = err
}

func (m *MockTokenApprover) Owner() common.Address {
	return m.owner
}

func (m *MockTokenApprover) Approve(ctx context.Context, token, spender common.Address, amount *big.Int) (*types.Receipt, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.approved = append(m.approved, approveCall{token: token, spender: spender, amount: amount})
	return &types.Receipt{
		Status: types.ReceiptStatusSuccessful,
		TxHash: common.HexToHash("0xfeed"),
	}, nil
}

func (m *MockTokenApprover) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	if prior, ok := m.allowances[spender]; ok {
		return prior, nil
	}
	return big.NewInt(0), nil
}

func newApprovalFixture(t *testing.T) (*ApprovalService, *MockTokenApprover, *eventlog.MemoryRecorder) {
	t.Helper()
	registry, err := venues.NewRegistry(entities.VenueUniswapV2, nil)
	require.NoError(t, err)

	approver := NewMockTokenApprover()
	recorder := eventlog.NewMemoryRecorder()
	service := NewApprovalService(registry, approver, recorder, zap.NewNop())
	return service, approver, recorder
}

func TestApproveDefault(t *testing.T) {
	service, approver, recorder := newApprovalFixture(t)

	amount, _ := new(big.Int).SetString("1200000000000000", 10)
	ev, err := service.ApproveDefault(context.Background(), entities.WMATIC.Address, amount)
	require.NoError(t, err)

	assert.Equal(t, entities.EventTokensSwapApproved, ev.Name)
	assert.Equal(t, venues.UniswapV2RouterAddress, ev.Spender)
	assert.Equal(t, entities.WMATIC.Address, ev.Token)
	assert.Equal(t, amount.String(), ev.Amount.String())

	require.Len(t, approver.approved, 1)
	assert.Equal(t, venues.UniswapV2RouterAddress, approver.approved[0].spender)
	assert.Equal(t, 1, recorder.Len())
}

func TestApproveForVenue(t *testing.T) {
	service, approver, recorder := newApprovalFixture(t)

	amount := big.NewInt(5000)
	ev, err := service.ApproveForVenue(context.Background(), entities.WMATIC.Address, amount, entities.VenueSushiswap)
	require.NoError(t, err)

	assert.Equal(t, "TokensApprovedOnSushiswap", ev.Name)
	assert.Equal(t, venues.SushiswapRouterAddress, ev.Spender)

	require.Len(t, approver.approved, 1)
	assert.Equal(t, venues.SushiswapRouterAddress, approver.approved[0].spender)
	assert.Equal(t, 1, recorder.Len())
}

func TestApproveForVenueUnknownTag(t *testing.T) {
	service, approver, recorder := newApprovalFixture(t)

	_, err := service.ApproveForVenue(context.Background(), entities.WMATIC.Address, big.NewInt(1), entities.VenueTag(9))
	require.Error(t, err)
	assert.True(t, errors.Is(err, entities.ErrUnknownVenue))

	assert.Empty(t, approver.approved)
	assert.Equal(t, 0, recorder.Len())
}

func TestApproveFailureRecordsNothing(t *testing.T) {
	service, approver, recorder := newApprovalFixture(t)
	approveErr := errors.New("execution reverted")
	approver.SetError(approveErr)

	_, err := service.ApproveDefault(context.Background(), entities.WMATIC.Address, big.NewInt(100))
	require.Error(t, err)
	assert.True(t, errors.Is(err, approveErr))
	assert.Equal(t, 0, recorder.Len())
}

func TestApproveRejectsNegativeAmount(t *testing.T) {
	service, approver, recorder := newApprovalFixture(t)

	_, err := service.ApproveDefault(context.Background(), entities.WMATIC.Address, big.NewInt(-1))
	assert.Error(t, err)
	assert.Empty(t, approver.approved)
	assert.Equal(t, 0, recorder.Len())
}

func TestApproveOverwritesExistingAllowance(t *testing.T) {
	service, approver, recorder := newApprovalFixture(t)
	approver.SetAllowance(venues.UniswapV2RouterAddress, big.NewInt(777))

	// An existing allowance is overwritten, not accumulated; the call
	// still succeeds and records one event.
	ev, err := service.ApproveDefault(context.Background(), entities.WMATIC.Address, big.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, "100", ev.Amount.String())
	assert.Equal(t, 1, recorder.Len())
}
