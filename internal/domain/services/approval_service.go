package services

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/artulabs/swap-router/internal/domain/entities"
	"github.com/artulabs/swap-router/internal/infrastructure/eventlog"
	"github.com/artulabs/swap-router/internal/infrastructure/venues"
)

// TokenApprover issues ERC20 approvals and reads allowance state.
type TokenApprover interface {
	Approve(ctx context.Context, token, spender common.Address, amount *big.Int) (*types.Receipt, error)
	Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
	Owner() common.Address
}

// ApprovalService authorizes venue spenders to draw tokens from the
// operator account and records every committed approval in the event
// log. Approval is a single external call with no retries; a failure
// propagates unchanged and nothing is recorded.
type ApprovalService struct {
	registry *venues.Registry
	tokens   TokenApprover
	recorder eventlog.Recorder
	logger   *zap.Logger
}

// NewApprovalService creates a new approval service
func NewApprovalService(registry *venues.Registry, tokens TokenApprover, recorder eventlog.Recorder, logger *zap.Logger) *ApprovalService {
	return &ApprovalService{
		registry: registry,
		tokens:   tokens,
		recorder: recorder,
		logger:   logger,
	}
}

// ApproveDefault authorizes the default venue's spender and emits
// TokensSwapApproved. Used by the generic workflow path.
func (s *ApprovalService) ApproveDefault(ctx context.Context, token common.Address, amount *big.Int) (entities.Event, error) {
	desc := s.registry.Default()
	return s.approve(ctx, desc, token, amount, entities.EventTokensSwapApproved)
}

// ApproveForVenue authorizes the spender of the given venue and emits
// the venue-specific approval event, e.g. TokensApprovedOnUniswapV2.
func (s *ApprovalService) ApproveForVenue(ctx context.Context, token common.Address, amount *big.Int, venue entities.VenueTag) (entities.Event, error) {
	desc, err := s.registry.Resolve(venue)
	if err != nil {
		return entities.Event{}, err
	}
	return s.approve(ctx, desc, token, amount, entities.ApprovalEventName(venue))
}

func (s *ApprovalService) approve(ctx context.Context, desc entities.VenueDescriptor, token common.Address, amount *big.Int, eventName string) (entities.Event, error) {
	if amount == nil || amount.Sign() < 0 {
		return entities.Event{}, fmt.Errorf("amount must be a non-negative integer")
	}

	// A fresh approve overwrites any remaining allowance rather than
	// adding to it. Surface what is being replaced.
	if prior, err := s.tokens.Allowance(ctx, token, s.tokens.Owner(), desc.Spender); err == nil && prior.Sign() > 0 {
		s.logger.Warn("overwriting existing allowance",
			zap.String("venue", desc.Name),
			zap.String("token", token.Hex()),
			zap.String("prior", prior.String()),
			zap.String("new", amount.String()),
		)
	}

	receipt, err := s.tokens.Approve(ctx, token, desc.Spender, amount)
	if err != nil {
		return entities.Event{}, fmt.Errorf("approve %s for %s: %w", token.Hex(), desc.Name, err)
	}

	ev := entities.NewApprovalEvent(eventName, desc.Spender, token, amount, receipt.TxHash)
	if err := s.recorder.Append(ctx, ev); err != nil {
		return entities.Event{}, fmt.Errorf("record approval event: %w", err)
	}

	s.logger.Info("approval committed",
		zap.String("event", ev.Name),
		zap.String("venue", desc.Name),
		zap.String("spender", desc.Spender.Hex()),
		zap.String("token", token.Hex()),
		zap.String("amount", amount.String()),
	)
	return ev, nil
}
