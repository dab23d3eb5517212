package venues

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/artulabs/swap-router/internal/domain/entities"
)

// Default venue routers. The UniswapV2 slot points at the Quickswap
// fork router the generic workflow has always targeted.
var (
	ApeswapRouterAddress   = common.HexToAddress("0xC0788A3aD43d79aa53B09c2EaCc313A787d1d607")
	UniswapV2RouterAddress = common.HexToAddress("0xa5E0829CaCEd8fFDD4De3c43696c57F7D7A678ff")
	UniswapV3RouterAddress = common.HexToAddress("0xE592427A0AEce92De3Edee1F18E0157C05861564")
	SushiswapRouterAddress = common.HexToAddress("0x1b02dA8Cb0d097eB8D57A175b88c7D8b47997506")
	OneInchRouterAddress   = common.HexToAddress("0x1111111254fb6c44bAC0beD2854e76F90643097d")
)

// Registry is the fixed mapping from venue tag to descriptor. It is
// fully populated at construction and read-only afterwards, so a tag
// always resolves to the same spender address for the lifetime of the
// process.
type Registry struct {
	descriptors  [5]entities.VenueDescriptor
	defaultVenue entities.VenueTag
}

// NewRegistry builds a registry with the default descriptors, applies
// the optional spender overrides (keyed by venue name), and pins the
// default venue for the generic workflow path.
func NewRegistry(defaultVenue entities.VenueTag, overrides map[string]string) (*Registry, error) {
	if !defaultVenue.Valid() {
		return nil, fmt.Errorf("%w: default venue tag %d", entities.ErrUnknownVenue, uint8(defaultVenue))
	}

	r := &Registry{defaultVenue: defaultVenue}
	r.descriptors = [5]entities.VenueDescriptor{
		{Tag: entities.VenueApeswap, Name: entities.VenueApeswap.String(), Spender: ApeswapRouterAddress, Variant: entities.V2Style},
		{Tag: entities.VenueUniswapV2, Name: entities.VenueUniswapV2.String(), Spender: UniswapV2RouterAddress, Variant: entities.V2Style},
		{Tag: entities.VenueUniswapV3, Name: entities.VenueUniswapV3.String(), Spender: UniswapV3RouterAddress, Variant: entities.V3Style},
		{Tag: entities.VenueSushiswap, Name: entities.VenueSushiswap.String(), Spender: SushiswapRouterAddress, Variant: entities.V2Style},
		{Tag: entities.VenueOneInch, Name: entities.VenueOneInch.String(), Spender: OneInchRouterAddress, Variant: entities.AggregatorStyle},
	}

	for name, addr := range overrides {
		if !common.IsHexAddress(addr) {
			return nil, fmt.Errorf("invalid spender override for %s: %s", name, addr)
		}
		found := false
		for i := range r.descriptors {
			if r.descriptors[i].Name == name {
				r.descriptors[i].Spender = common.HexToAddress(addr)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: override for %q", entities.ErrUnknownVenue, name)
		}
	}

	return r, nil
}

// Resolve returns the descriptor for a tag. It has no side effects and
// always returns the same descriptor for the same tag.
func (r *Registry) Resolve(tag entities.VenueTag) (entities.VenueDescriptor, error) {
	if !tag.Valid() {
		return entities.VenueDescriptor{}, fmt.Errorf("%w: tag %d", entities.ErrUnknownVenue, uint8(tag))
	}
	return r.descriptors[tag], nil
}

// Default returns the descriptor the generic workflow path targets.
func (r *Registry) Default() entities.VenueDescriptor {
	return r.descriptors[r.defaultVenue]
}

// All returns every descriptor in tag order.
func (r *Registry) All() []entities.VenueDescriptor {
	out := make([]entities.VenueDescriptor, len(r.descriptors))
	copy(out, r.descriptors[:])
	return out
}
