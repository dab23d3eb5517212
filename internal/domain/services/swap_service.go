package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"github.com/artulabs/swap-router/internal/domain/entities"
	"github.com/artulabs/swap-router/internal/infrastructure/eventlog"
	"github.com/artulabs/swap-router/internal/infrastructure/venues"
)

// SwapService routes swap requests to external venues. Each venue
// family has its own entry point which re-validates the caller's tag
// against the family it is bound to; a mismatch is rejected before any
// external call and no event is emitted. A settled swap emits exactly
// one completion event; a failed dispatch emits none.
//
// The service is stateless across calls. It assumes the trader has
// already committed a sufficient allowance via the ApprovalService and
// never grants approvals itself.
type SwapService struct {
	registry  *venues.Registry
	executors map[entities.CallVariant]venues.Executor
	recorder  eventlog.Recorder
	prices    *PriceService
	// maxDeviationBps enables the strict pre-dispatch check: a request
	// whose minimum output sits more than this many basis points below
	// the reference-feed expectation is rejected. Zero disables it.
	maxDeviationBps uint64
	logger          *zap.Logger
}

// NewSwapService creates a swap dispatcher from the registry and one
// executor per call variant.
func NewSwapService(
	registry *venues.Registry,
	executors []venues.Executor,
	recorder eventlog.Recorder,
	prices *PriceService,
	maxDeviationBps uint64,
	logger *zap.Logger,
) *SwapService {
	byVariant := make(map[entities.CallVariant]venues.Executor, len(executors))
	for _, ex := range executors {
		byVariant[ex.Variant()] = ex
	}

	return &SwapService{
		registry:        registry,
		executors:       byVariant,
		recorder:        recorder,
		prices:          prices,
		maxDeviationBps: maxDeviationBps,
		logger:          logger,
	}
}

// Swap is the generic workflow path: no tag, always the default venue,
// completion event TokensSwapped.
func (s *SwapService) Swap(ctx context.Context, req entities.SwapRequest) (*entities.SwapReceipt, error) {
	desc := s.registry.Default()
	return s.dispatch(ctx, desc, req, entities.EventTokensSwapped)
}

// SwapOnV2 is the entry point bound to the V2-style venue family
// (Apeswap, UniswapV2, Sushiswap).
func (s *SwapService) SwapOnV2(ctx context.Context, venue entities.VenueTag, req entities.SwapRequest) (*entities.SwapReceipt, error) {
	return s.swapOnFamily(ctx, venue, entities.V2Style, req)
}

// SwapOnV3 is the entry point bound to the V3-style venue family.
func (s *SwapService) SwapOnV3(ctx context.Context, venue entities.VenueTag, req entities.SwapRequest) (*entities.SwapReceipt, error) {
	return s.swapOnFamily(ctx, venue, entities.V3Style, req)
}

// SwapOnAggregator is the entry point bound to the aggregator-style
// venue family.
func (s *SwapService) SwapOnAggregator(ctx context.Context, venue entities.VenueTag, req entities.SwapRequest) (*entities.SwapReceipt, error) {
	return s.swapOnFamily(ctx, venue, entities.AggregatorStyle, req)
}

func (s *SwapService) swapOnFamily(ctx context.Context, venue entities.VenueTag, family entities.CallVariant, req entities.SwapRequest) (*entities.SwapReceipt, error) {
	desc, err := s.registry.Resolve(venue)
	if err != nil {
		return nil, err
	}

	if desc.Variant != family {
		return nil, fmt.Errorf("%w: %s is not a %s venue", entities.ErrVenueMismatch, desc.Name, family)
	}

	return s.dispatch(ctx, desc, req, entities.SwapEventName(venue))
}

func (s *SwapService) dispatch(ctx context.Context, desc entities.VenueDescriptor, req entities.SwapRequest, eventName string) (*entities.SwapReceipt, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := s.sanityCheckSlippage(ctx, req); err != nil {
		return nil, err
	}

	executor, ok := s.executors[desc.Variant]
	if !ok {
		return nil, fmt.Errorf("no executor configured for %s venues", desc.Variant)
	}

	receipt, err := executor.Swap(ctx, desc, req)
	if err != nil {
		s.logger.Warn("swap dispatch failed",
			zap.String("venue", desc.Name),
			zap.String("trader", req.Trader.Hex()),
			zap.Error(err),
		)
		return nil, err
	}

	ev := entities.NewSwapEvent(eventName, *receipt)
	if err := s.recorder.Append(ctx, ev); err != nil {
		return nil, fmt.Errorf("record swap event: %w", err)
	}

	s.logger.Info("swap settled",
		zap.String("event", ev.Name),
		zap.String("venue", desc.Name),
		zap.String("tokenIn", receipt.TokenIn.Hex()),
		zap.String("tokenOut", receipt.TokenOut.Hex()),
		zap.String("trader", receipt.Trader.Hex()),
		zap.String("tx", receipt.TxHash.Hex()),
	)
	return receipt, nil
}

// sanityCheckSlippage rejects a minimum output implausibly far below
// the reference-feed expectation. A stale or missing feed skips the
// check rather than blocking the swap.
func (s *SwapService) sanityCheckSlippage(ctx context.Context, req entities.SwapRequest) error {
	if s.prices == nil || s.maxDeviationBps == 0 || req.AmountIn.Sign() == 0 {
		return nil
	}

	tokenIn := s.prices.LookupToken(req.TokenIn)
	tokenOut := s.prices.LookupToken(req.TokenOut)

	expected, err := s.prices.ExpectedOut(ctx, tokenIn, tokenOut, req.AmountIn)
	if err != nil {
		if errors.Is(err, entities.ErrStalePrice) {
			s.logger.Warn("reference price stale, skipping slippage sanity check", zap.Error(err))
			return nil
		}
		s.logger.Warn("reference price unavailable, skipping slippage sanity check", zap.Error(err))
		return nil
	}
	if expected == nil {
		// Pair not covered by the feed.
		return nil
	}

	floor := new(big.Int).Mul(expected, big.NewInt(10000-int64(s.maxDeviationBps)))
	floor.Div(floor, big.NewInt(10000))

	if req.SlippageParam.Cmp(floor) < 0 {
		return fmt.Errorf("%w: minimum output %s below floor %s (expected %s)",
			entities.ErrSlippageTooLoose, req.SlippageParam, floor, expected)
	}
	return nil
}
