package venues

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	ethclient "github.com/artulabs/swap-router/internal/infrastructure/ethereum"
)

// ERC20 function selectors (keccak256 hash of function signature)
var (
	// approve(address,uint256) returns (bool)
	approveSelector = common.Hex2Bytes("095ea7b3")
	// allowance(address,address) returns (uint256)
	allowanceSelector = common.Hex2Bytes("dd62ed3e")
	// balanceOf(address) returns (uint256)
	balanceOfSelector = common.Hex2Bytes("70a08231")
	// symbol() returns (string)
	symbolSelector = common.Hex2Bytes("95d89b41")
	// decimals() returns (uint8)
	decimalsSelector = common.Hex2Bytes("313ce567")
)

// ERC20Client issues approvals and reads allowance/balance state on
// standard token contracts. Approvals use set-semantics: a new approve
// overwrites the previous allowance rather than adding to it.
type ERC20Client struct {
	ethClient *ethclient.Client
	sender    *ethclient.Sender
}

// NewERC20Client creates a new ERC20 client
func NewERC20Client(ethClient *ethclient.Client, sender *ethclient.Sender) *ERC20Client {
	return &ERC20Client{ethClient: ethClient, sender: sender}
}

// Owner returns the account approvals are issued from
func (c *ERC20Client) Owner() common.Address {
	return c.sender.From()
}

// Approve lets spender draw up to amount of token from the sending
// account. The allowance state lives in the token contract; this call
// only triggers the transition.
func (c *ERC20Client) Approve(ctx context.Context, token, spender common.Address, amount *big.Int) (*types.Receipt, error) {
	data := make([]byte, 68)
	copy(data[0:4], approveSelector)
	copy(data[16:36], spender.Bytes())
	amount.FillBytes(data[36:68])

	receipt, err := c.sender.Send(ctx, token, data)
	if err != nil {
		return nil, fmt.Errorf("approve failed: %w", err)
	}
	return receipt, nil
}

// Allowance returns the remaining amount spender may draw from owner
func (c *ERC20Client) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	data := make([]byte, 68)
	copy(data[0:4], allowanceSelector)
	copy(data[16:36], owner.Bytes())
	copy(data[48:68], spender.Bytes())

	result, err := c.ethClient.CallContract(ctx, ethereum.CallMsg{
		To:   &token,
		Data: data,
	})
	if err != nil {
		return nil, fmt.Errorf("allowance call failed: %w", err)
	}
	if len(result) < 32 {
		return nil, fmt.Errorf("invalid allowance response length")
	}

	return new(big.Int).SetBytes(result[0:32]), nil
}

// BalanceOf returns the token balance of owner
func (c *ERC20Client) BalanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	data := make([]byte, 36)
	copy(data[0:4], balanceOfSelector)
	copy(data[16:36], owner.Bytes())

	result, err := c.ethClient.CallContract(ctx, ethereum.CallMsg{
		To:   &token,
		Data: data,
	})
	if err != nil {
		return nil, fmt.Errorf("balanceOf call failed: %w", err)
	}
	if len(result) < 32 {
		return nil, fmt.Errorf("invalid balanceOf response length")
	}

	return new(big.Int).SetBytes(result[0:32]), nil
}

// Symbol returns the token symbol
func (c *ERC20Client) Symbol(ctx context.Context, token common.Address) (string, error) {
	result, err := c.ethClient.CallContract(ctx, ethereum.CallMsg{
		To:   &token,
		Data: symbolSelector,
	})
	if err != nil {
		return "", fmt.Errorf("symbol call failed: %w", err)
	}

	// ABI-encoded string: offset (32) + length (32) + data
	if len(result) < 64 {
		return "", fmt.Errorf("invalid symbol response length")
	}
	strLen := new(big.Int).SetBytes(result[32:64]).Int64()
	if strLen <= 0 || 64+strLen > int64(len(result)) {
		return "", fmt.Errorf("invalid symbol string length")
	}

	return strings.TrimRight(string(result[64:64+strLen]), "\x00"), nil
}

// Decimals returns the token decimals
func (c *ERC20Client) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	result, err := c.ethClient.CallContract(ctx, ethereum.CallMsg{
		To:   &token,
		Data: decimalsSelector,
	})
	if err != nil {
		return 0, fmt.Errorf("decimals call failed: %w", err)
	}
	if len(result) < 32 {
		return 0, fmt.Errorf("invalid decimals response length")
	}

	return uint8(result[31]), nil
}
