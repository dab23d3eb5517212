package entities

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// VenueTag identifies an external AMM venue. Values are a stable wire
// encoding: callers pass the numeric tag, so new venues may only be
// appended, never renumbered.
type VenueTag uint8

const (
	VenueApeswap   VenueTag = 0
	VenueUniswapV2 VenueTag = 1
	VenueUniswapV3 VenueTag = 2
	VenueSushiswap VenueTag = 3
	VenueOneInch   VenueTag = 4
)

// venueCount is the size of the closed enumeration.
const venueCount = 5

// CallVariant groups venues by the external call interface they expose.
type CallVariant string

const (
	V2Style         CallVariant = "v2"
	V3Style         CallVariant = "v3"
	AggregatorStyle CallVariant = "aggregator"
)

// VenueDescriptor binds a venue tag to the spender address callers must
// approve and the call interface the dispatcher uses to reach it.
// Descriptors are fixed at construction and never change afterwards, so
// approval and swap events always reference a stable spender address.
type VenueDescriptor struct {
	Tag     VenueTag       `json:"tag"`
	Name    string         `json:"name"`
	Spender common.Address `json:"spender"`
	Variant CallVariant    `json:"variant"`
}

var venueNames = [venueCount]string{
	VenueApeswap:   "Apeswap",
	VenueUniswapV2: "UniswapV2",
	VenueUniswapV3: "UniswapV3",
	VenueSushiswap: "Sushiswap",
	VenueOneInch:   "OneInch",
}

// Valid reports whether the tag is inside the closed enumeration.
func (t VenueTag) Valid() bool {
	return uint8(t) < venueCount
}

func (t VenueTag) String() string {
	if !t.Valid() {
		return fmt.Sprintf("VenueTag(%d)", uint8(t))
	}
	return venueNames[t]
}

// ParseVenueTag converts untrusted numeric input into a VenueTag. This
// is the only place an out-of-range value can enter the system.
func ParseVenueTag(v uint64) (VenueTag, error) {
	if v >= venueCount {
		return 0, fmt.Errorf("%w: tag %d", ErrUnknownVenue, v)
	}
	return VenueTag(v), nil
}

// AllVenueTags returns every tag in the enumeration, in wire order.
func AllVenueTags() []VenueTag {
	tags := make([]VenueTag, venueCount)
	for i := range tags {
		tags[i] = VenueTag(i)
	}
	return tags
}
