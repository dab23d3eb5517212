package venues

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/artulabs/swap-router/internal/domain/entities"
	ethclient "github.com/artulabs/swap-router/internal/infrastructure/ethereum"
)

// V2 router function selectors
var (
	// swapExactTokensForTokens(uint256,uint256,address[],address,uint256) returns (uint256[])
	swapExactTokensSelector = common.Hex2Bytes("38ed1739")
)

// Transfer(address,address,uint256) event topic, used to recover the
// realized output amount from the swap receipt.
var transferTopic = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")

// V2Executor dispatches swaps to Uniswap-V2-style routers (Apeswap,
// Quickswap-style UniswapV2, Sushiswap). The path is always the direct
// [tokenIn, tokenOut] pair; the router enforces the minimum output and
// reverts the whole call if it cannot be met.
type V2Executor struct {
	sender      *ethclient.Sender
	deadlineTTL time.Duration
}

// NewV2Executor creates a V2-style executor
func NewV2Executor(sender *ethclient.Sender, deadlineTTL time.Duration) *V2Executor {
	if deadlineTTL <= 0 {
		deadlineTTL = 5 * time.Minute
	}
	return &V2Executor{sender: sender, deadlineTTL: deadlineTTL}
}

// Swap calls swapExactTokensForTokens on the venue's router. The trader
// must already have approved the router as spender; this path never
// grants approvals itself.
func (e *V2Executor) Swap(ctx context.Context, desc entities.VenueDescriptor, req entities.SwapRequest) (*entities.SwapReceipt, error) {
	deadline := big.NewInt(time.Now().Add(e.deadlineTTL).Unix())

	// Head: amountIn, amountOutMin, path offset, to, deadline.
	// Tail at offset 0xa0: path length + [tokenIn, tokenOut].
	data := make([]byte, 4+8*32)
	copy(data[0:4], swapExactTokensSelector)
	req.AmountIn.FillBytes(data[4:36])
	req.SlippageParam.FillBytes(data[36:68])
	big.NewInt(0xa0).FillBytes(data[68:100])
	copy(data[100+12:132], req.Trader.Bytes())
	deadline.FillBytes(data[132:164])
	big.NewInt(2).FillBytes(data[164:196])
	copy(data[196+12:228], req.TokenIn.Bytes())
	copy(data[228+12:260], req.TokenOut.Bytes())

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
func (e *V2Executor) Variant() entities.CallVariant {
	return entities.V2Style
}

// amountOutFromLogs recovers the realized output from the tokenOut
// Transfer to the trader. Returns nil when the log is absent.
func amountOutFromLogs(receipt *types.Receipt, tokenOut, trader common.Address) *big.Int {
	for i := len(receipt.Logs) - 1; i >= 0; i-- {
		lg := receipt.Logs[i]
		if lg.Address != tokenOut || len(lg.Topics) != 3 || lg.Topics[0] != transferTopic {
			continue
		}
		if common.BytesToAddress(lg.Topics[2].Bytes()) != trader {
			continue
		}
		if len(lg.Data) >= 32 {
			return new(big.Int).SetBytes(lg.Data[0:32])
		}
	}
	return nil
}
