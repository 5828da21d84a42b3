package allocation

import (
	"github.com/hostelhub/service-booking/internal/domain/inventory"
)

// SelectionPolicy defines the interface for ordering candidate rooms before
// bed selection.
type SelectionPolicy interface {
	// Order returns the rooms in the order they should be scanned for a free
	// bed. Input rooms are already in stable order (room number ascending).
	Order(rooms []*inventory.Room, pref inventory.RoomType) []*inventory.Room
}

// PreferredTypePolicy implements the default selection order: rooms matching
// the requested room type first, then every other room as a fallback, with
// the stable room-number order preserved within each group.
type PreferredTypePolicy struct{}

// NewPreferredTypePolicy creates a new PreferredTypePolicy.
func NewPreferredTypePolicy() *PreferredTypePolicy {
	return &PreferredTypePolicy{}
}

// Order places exact-preference matches ahead of fallback rooms.
func (p *PreferredTypePolicy) Order(rooms []*inventory.Room, pref inventory.RoomType) []*inventory.Room {
	ordered := make([]*inventory.Room, 0, len(rooms))
	for _, r := range rooms {
		if r.RoomType() == pref {
			ordered = append(ordered, r)
		}
	}
	for _, r := range rooms {
		if r.RoomType() != pref {
			ordered = append(ordered, r)
		}
	}
	return ordered
}
