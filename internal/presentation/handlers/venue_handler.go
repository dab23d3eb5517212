package handlers

import (
	"net/http"

	"github.com/artulabs/swap-router/internal/infrastructure/venues"
)

// VenueHandler exposes the venue registry read-only
type VenueHandler struct {
	registry *venues.Registry
}

// NewVenueHandler creates a new venue handler
func NewVenueHandler(registry *venues.Registry) *VenueHandler {
	return &VenueHandler{registry: registry}
}

// VenueInfo describes one registered venue
type VenueInfo struct {
	Tag     uint8  `json:"tag"`
	Name    string `json:"name"`
	Spender string `json:"spender"`
	Variant string `json:"variant"`
	Default bool   `json:"default"`
}

// List handles GET /api/v1/venues
func (h *VenueHandler) List(w http.ResponseWriter, r *http.Request) {
	def := h.registry.Default()

	descriptors := h.registry.All()
	out := make([]VenueInfo, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, VenueInfo{
			Tag:     uint8(d.Tag),
			Name:    d.Name,
			Spender: d.Spender.Hex(),
			Variant: string(d.Variant),
			Default: d.Tag == def.Tag,
		})
	}

	writeJSON(w, http.StatusOK, out)
}
