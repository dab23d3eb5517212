package services

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/artulabs/swap-router/internal/domain/entities"
	"github.com/artulabs/swap-router/internal/infrastructure/cache"
	"github.com/artulabs/swap-router/internal/infrastructure/pricefeed"
)

// PriceService reads the external reference feed, caches fresh answers,
// and rejects answers older than the feed's heartbeat. It backs the
// dispatcher's optional slippage sanity check and is never on the
// critical path of a swap unless strict mode is enabled.
type PriceService struct {
	feed      pricefeed.Feed
	cache     cache.Cache
	cacheKey  string
	cacheTTL  time.Duration
	heartbeat time.Duration
	decimals  uint8
	tokens    *entities.TokenRegistry
	logger    *zap.Logger
}

// NewPriceService creates a new price service. heartbeat bounds how old
// a feed answer may be before it is treated as stale.
func NewPriceService(feed pricefeed.Feed, c cache.Cache, heartbeat time.Duration, logger *zap.Logger) *PriceService {
	if heartbeat <= 0 {
		heartbeat = time.Hour
	}
	return &PriceService{
		feed:      feed,
		cache:     c,
		cacheKey:  cache.PriceCacheKey("reference"),
		cacheTTL:  10 * time.Second, // Short TTL for price data
		heartbeat: heartbeat,
		decimals:  8, // Chainlink USD pairs
		tokens:    entities.NewTokenRegistry(),
		logger:    logger,
	}
}

// ReferencePrice returns the latest feed answer and its timestamp.
// Returns ErrStalePrice if the answer is older than the heartbeat.
func (s *PriceService) ReferencePrice(ctx context.Context) (*big.Int, time.Time, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetPrice(ctx, s.cacheKey); err == nil && cached != "" {
			if price, ts, ok := decodeCachedPrice(cached); ok {
				return price, ts, nil
			}
		}
	}

	price, updatedAt, err := s.feed.LatestPrice(ctx)
	if err != nil {
		return nil, time.Time{}, err
	}

	if time.Since(updatedAt) > s.heartbeat {
		return nil, updatedAt, fmt.Errorf("%w: last update %s", entities.ErrStalePrice, updatedAt.Format(time.RFC3339))
	}

	if s.cache != nil {
		_ = s.cache.SetPrice(ctx, s.cacheKey, encodeCachedPrice(price, updatedAt), s.cacheTTL)
	}

	s.logger.Debug("reference price refreshed",
		zap.String("price", price.String()),
		zap.Time("updated_at", updatedAt),
	)
	return price, updatedAt, nil
}

// ExpectedOut estimates the output of swapping amountIn of tokenIn for
// tokenOut at the reference price. Returns nil (no error) when the feed
// does not cover the pair; the sanity check is skipped for such pairs.
func (s *PriceService) ExpectedOut(ctx context.Context, tokenIn, tokenOut entities.Token, amountIn *big.Int) (*big.Int, error) {
	// The reference feed quotes the native wrapped token in USD, so
	// only wrapped-native -> stablecoin swaps can be sanity-checked.
	if tokenIn.Address != entities.WMATIC.Address {
		return nil, nil
	}
	if tokenOut.Address != entities.DAI.Address && tokenOut.Address != entities.USDC.Address {
		return nil, nil
	}

	price, _, err := s.ReferencePrice(ctx)
	if err != nil {
		return nil, err
	}

	// expected = amountIn * price * 10^outDecimals / (10^feedDecimals * 10^inDecimals)
	expected := new(big.Int).Mul(amountIn, price)
	expected.Mul(expected, pow10(int(tokenOut.Decimals)))
	expected.Div(expected, pow10(int(s.decimals)+int(tokenIn.Decimals)))
	return expected, nil
}

// LookupToken resolves an address against the known-token registry,
// falling back to an 18-decimal placeholder for unknown tokens.
func (s *PriceService) LookupToken(addr common.Address) entities.Token {
	token, ok := s.tokens.GetByAddress(addr)
	if ok {
		return token
	}
	return entities.Token{
		Address:  addr,
		Symbol:   "UNKNOWN",
		Decimals: 18,
	}
}

func encodeCachedPrice(price *big.Int, ts time.Time) string {
	return fmt.Sprintf("%s|%d", price.String(), ts.Unix())
}

func decodeCachedPrice(s string) (*big.Int, time.Time, bool) {
	parts := strings.SplitN(s, "|", 2)
	if len(parts) != 2 {
		return nil, time.Time{}, false
	}
	price, ok := new(big.Int).SetString(parts[0], 10)
	if !ok {
		return nil, time.Time{}, false
	}
	unix, ok := new(big.Int).SetString(parts[1], 10)
	if !ok {
		return nil, time.Time{}, false
	}
	return price, time.Unix(unix.Int64(), 0).UTC(), true
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
