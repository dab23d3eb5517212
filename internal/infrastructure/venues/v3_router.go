package venues

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/artulabs/swap-router/internal/domain/entities"
	ethclient "github.com/artulabs/swap-router/internal/infrastructure/ethereum"
)

// V3 router function selectors
var (
	// exactInputSingle((address,address,uint24,address,uint256,uint256,uint256,uint160)) returns (uint256)
	exactInputSingleSelector = common.Hex2Bytes("414bf389")
)

// DefaultV3FeeTier is the 0.30% tier, which typically carries the most
// liquidity.
const DefaultV3FeeTier uint32 = 3000

// V3Executor dispatches single-hop exact-input swaps to the Uniswap V3
// router. The fee tier is fixed per executor; the router enforces
// amountOutMinimum and reverts if the realized output falls short.
type V3Executor struct {
	sender      *ethclient.Sender
	feeTier     uint32
	deadlineTTL time.Duration
}

// NewV3Executor creates a V3-style executor
func NewV3Executor(sender *ethclient.Sender, feeTier uint32, deadlineTTL time.Duration) *V3Executor {
	if feeTier == 0 {
		feeTier = DefaultV3FeeTier
	}
	if deadlineTTL <= 0 {
		deadlineTTL = 5 * time.Minute
	}
	return &V3Executor{sender: sender, feeTier: feeTier, deadlineTTL: deadlineTTL}
}

// Swap calls exactInputSingle on the venue's router.
func (e *V3Executor) Swap(ctx context.Context, desc entities.VenueDescriptor, req entities.SwapRequest) (*entities.SwapReceipt, error) {
	deadline := big.NewInt(time.Now().Add(e.deadlineTTL).Unix())

	// ExactInputSingleParams is a static tuple, encoded inline:
	// tokenIn, tokenOut, fee, recipient, deadline, amountIn,
	// amountOutMinimum, sqrtPriceLimitX96 (0 = no limit).
	data := make([]byte, 4+8*32)
	copy(data[0:4], exactInputSingleSelector)
	copy(data[4+12:36], req.TokenIn.Bytes())
	copy(data[36+12:68], req.TokenOut.Bytes())
	big.NewInt(int64(e.feeTier)).FillBytes(data[68:100])
	copy(data[100+12:132], req.Trader.Bytes())
	deadline.FillBytes(data[132:164])
	req.AmountIn.FillBytes(data[164:196])
	req.SlippageParam.FillBytes(data[196:228])

	receipt, err := e.sender.Send(ctx, desc.Spender, data)
	if err != nil {
		return nil, wrapExecutionError(desc.Name, err)
	}

	return &entities.SwapReceipt{
		Venue:     desc.Tag,
		TokenIn:   req.TokenIn,
		TokenOut:  req.TokenOut,
		Trader:    req.Trader,
		AmountOut: amountOutFromLogs(receipt, req.TokenOut, req.Trader),
		TxHash:    receipt.TxHash,
	}, nil
}

// Variant returns the call-interface family
func (e *V3Executor) Variant() entities.CallVariant {
	return entities.V3Style
}
