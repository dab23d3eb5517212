package pricefeed

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	ethclient "github.com/artulabs/swap-router/internal/infrastructure/ethereum"
)

// Feed is the external reference price source, polled read-only for the
// optional slippage sanity check.
type Feed interface {
	LatestPrice(ctx context.Context) (*big.Int, time.Time, error)
}

// Chainlink aggregator function selectors
var (
	// latestRoundData() returns (uint80,int256,uint256,uint256,uint80)
	latestRoundDataSelector = common.Hex2Bytes("feaf968c")
	// decimals() returns (uint8)
	feedDecimalsSelector = common.Hex2Bytes("313ce567")
)

// DefaultFeedAddress is the Chainlink MATIC/USD aggregator on Polygon.
var DefaultFeedAddress = common.HexToAddress("0xAB594600376Ec9fD91F8e885dADF0CE036862dE0")

// ChainlinkFeed reads a Chainlink-style aggregator contract.
type ChainlinkFeed struct {
	ethClient *ethclient.Client
	address   common.Address
}

// NewChainlinkFeed creates a feed reader for the given aggregator
func NewChainlinkFeed(ethClient *ethclient.Client, address common.Address) *ChainlinkFeed {
	if address == (common.Address{}) {
		address = DefaultFeedAddress
	}
	return &ChainlinkFeed{ethClient: ethClient, address: address}
}

// Address returns the aggregator contract address
func (f *ChainlinkFeed) Address() common.Address {
	return f.address
}

// LatestPrice returns the aggregator's latest answer and its update
// timestamp. The caller decides whether the timestamp is fresh enough.
func (f *ChainlinkFeed) LatestPrice(ctx context.Context) (*big.Int, time.Time, error) {
	result, err := f.ethClient.CallContract(ctx, ethereum.CallMsg{
		To:   &f.address,
		Data: latestRoundDataSelector,
	})
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("latestRoundData call failed: %w", err)
	}

	return decodeRoundData(result)
}

// decodeRoundData unpacks the (roundId, answer, startedAt, updatedAt,
// answeredInRound) tuple. answer is an int256; Chainlink reports errors
// as answer <= 0, which is rejected here.
func decodeRoundData(result []byte) (*big.Int, time.Time, error) {
	if len(result) < 160 {
		return nil, time.Time{}, fmt.Errorf("invalid latestRoundData response length: %d", len(result))
	}

	answer := parseInt256(result[32:64])
	if answer.Sign() <= 0 {
		return nil, time.Time{}, fmt.Errorf("feed answered %s, expected a positive price", answer)
	}
	updatedAt := new(big.Int).SetBytes(result[96:128])

	return answer, time.Unix(updatedAt.Int64(), 0).UTC(), nil
}

var int256Modulus = new(big.Int).Lsh(big.NewInt(1), 256)

// parseInt256 decodes a 32-byte two's-complement word.
func parseInt256(b []byte) *big.Int {
	v := new(big.Int).SetBytes(b)
	if len(b) == 32 && b[0]&0x80 != 0 {
		v.Sub(v, int256Modulus)
	}
	return v
}

// Decimals returns the feed's answer decimals (8 for USD pairs).
func (f *ChainlinkFeed) Decimals(ctx context.Context) (uint8, error) {
	result, err := f.ethClient.CallContract(ctx, ethereum.CallMsg{
		To:   &f.address,
		Data: feedDecimalsSelector,
	})
	if err != nil {
		return 0, fmt.Errorf("decimals call failed: %w", err)
	}
	if len(result) < 32 {
		return 0, fmt.Errorf("invalid decimals response length")
	}
	return uint8(result[31]), nil
}
