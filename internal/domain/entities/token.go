package entities

import "github.com/ethereum/go-ethereum/common"

type Token struct {
	Address  common.Address `json:"address"`
	Symbol   string         `json:"symbol"`
	Name     string         `json:"name"`
	Decimals uint8          `json:"decimals"`
}

// WMATIC is Wrapped Matic on Polygon Mumbai
var WMATIC = Token{
	Address:  common.HexToAddress("0x9c3C9283D3e44854697Cd22D3Faa240Cfb032889"),
	Symbol:   "WMATIC",
	Name:     "Wrapped Matic",
	Decimals: 18,
}

// DAI is Dai Stablecoin on Polygon Mumbai
var DAI = Token{
	Address:  common.HexToAddress("0xcB1e72786A6eb3b44C2a2429e317c8a2462CFeb1"),
	Symbol:   "DAI",
	Name:     "Dai Stablecoin",
	Decimals: 18,
}

// USDC is USD Coin on Polygon Mumbai
var USDC = Token{
	Address:  common.HexToAddress("0x0FA8781a83E46826621b3BC094Ea2A0212e71B23"),
	Symbol:   "USDC",
	Name:     "USD Coin",
	Decimals: 6,
}

// WETH is Wrapped Ether on Polygon Mumbai
var WETH = Token{
	Address:  common.HexToAddress("0xA6FA4fB5f76172d178d61B04b0ecd319C5d1C0aa"),
	Symbol:   "WETH",
	Name:     "Wrapped Ether",
	Decimals: 18,
}

// TokenRegistry holds known tokens indexed by address and symbol. It is
// used to echo symbols back in responses; unknown addresses still swap.
type TokenRegistry struct {
	byAddress map[common.Address]Token
	bySymbol  map[string]Token
}

// NewTokenRegistry creates a registry seeded with the default tokens.
func NewTokenRegistry() *TokenRegistry {
	r := &TokenRegistry{
		byAddress: make(map[common.Address]Token),
		bySymbol:  make(map[string]Token),
	}
	for _, t := range []Token{WMATIC, DAI, USDC, WETH} {
		r.Register(t)
	}
	return r
}

// Register adds a token to the registry.
func (r *TokenRegistry) Register(token Token) {
	r.byAddress[token.Address] = token
	r.bySymbol[token.Symbol] = token
}

// GetByAddress returns a token by its address.
func (r *TokenRegistry) GetByAddress(addr common.Address) (Token, bool) {
	token, ok := r.byAddress[addr]
	return token, ok
}

// GetBySymbol returns a token by its symbol.
func (r *TokenRegistry) GetBySymbol(symbol string) (Token, bool) {
	token, ok := r.bySymbol[symbol]
	return token, ok
}
