package venues

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/artulabs/swap-router/internal/domain/entities"
	ethclient "github.com/artulabs/swap-router/internal/infrastructure/ethereum"
)

// DefaultAggregatorBaseURL is the 1inch v5 API for Polygon (chain 137).
const DefaultAggregatorBaseURL = "https://api.1inch.io/v5.0/137"

// AggregatorExecutor dispatches swaps through a 1inch-style aggregation
// API: the API builds the router calldata for the best internal route,
// and the executor broadcasts it to the venue's router. The quoted
// output is checked against the request's minimum before anything is
// sent, since the aggregator API takes a slippage percentage rather
// than an absolute bound.
type AggregatorExecutor struct {
	sender  *ethclient.Sender
	baseURL string
	http    *http.Client
}

// NewAggregatorExecutor creates an aggregator-style executor
func NewAggregatorExecutor(sender *ethclient.Sender, baseURL string) *AggregatorExecutor {
	if baseURL == "" {
		baseURL = DefaultAggregatorBaseURL
	}
	return &AggregatorExecutor{
		sender:  sender,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type aggregatorSwapResponse struct {
	ToTokenAmount string `json:"toTokenAmount"`
	Tx            struct {
		To   string `json:"to"`
		Data string `json:"data"`
	} `json:"tx"`
}

type aggregatorErrorResponse struct {
	Description string `json:"description"`
	Message     string `json:"message"`
}

// Swap asks the aggregation API for calldata and broadcasts it.
func (e *AggregatorExecutor) Swap(ctx context.Context, desc entities.VenueDescriptor, req entities.SwapRequest) (*entities.SwapReceipt, error) {
	quote, err := e.fetchSwapTx(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", entities.ErrVenueExecutionFailed, desc.Name, err)
	}

	quoted, ok := new(big.Int).SetString(quote.ToTokenAmount, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %s: invalid quoted amount %q", entities.ErrVenueExecutionFailed, desc.Name, quote.ToTokenAmount)
	}
	if quoted.Cmp(req.SlippageParam) < 0 {
		return nil, fmt.Errorf("%w: %s: quoted output %s below minimum %s",
			entities.ErrVenueExecutionFailed, desc.Name, quoted, req.SlippageParam)
	}

	to := common.HexToAddress(quote.Tx.To)
	if to != desc.Spender {
		return nil, fmt.Errorf("%w: %s: API routed to %s instead of registered spender %s",
			entities.ErrVenueExecutionFailed, desc.Name, to.Hex(), desc.Spender.Hex())
	}

	receipt, err := e.sender.Send(ctx, to, common.FromHex(quote.Tx.Data))
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
func (e *AggregatorExecutor) Variant() entities.CallVariant {
	return entities.AggregatorStyle
}

func (e *AggregatorExecutor) fetchSwapTx(ctx context.Context, req entities.SwapRequest) (*aggregatorSwapResponse, error) {
	q := url.Values{}
	q.Set("fromTokenAddress", req.TokenIn.Hex())
	q.Set("toTokenAddress", req.TokenOut.Hex())
	q.Set("amount", req.AmountIn.String())
	q.Set("fromAddress", e.sender.From().Hex())
	q.Set("destReceiver", req.Trader.Hex())
	q.Set("slippage", "1")
	q.Set("disableEstimate", "true")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/swap?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := e.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("aggregator API unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr aggregatorErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Description != "" {
			return nil, fmt.Errorf("aggregator API: %s", apiErr.Description)
		}
		return nil, fmt.Errorf("aggregator API returned status %d", resp.StatusCode)
	}

	var swapResp aggregatorSwapResponse
	if err := json.NewDecoder(resp.Body).Decode(&swapResp); err != nil {
		return nil, fmt.Errorf("invalid aggregator response: %w", err)
	}
	return &swapResp, nil
}
