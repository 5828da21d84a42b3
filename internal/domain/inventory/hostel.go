package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/hostelhub/service-booking/internal/domain"
)

// Hostel is the aggregate root owning rooms and, through them, beds.
type Hostel struct {
	id        uuid.UUID
	ownerID   uuid.UUID
	name      string
	city      string
	address   string
	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewHostel creates a hostel with validated fields.
func NewHostel(ownerID uuid.UUID, name, city, address string) (*Hostel, error) {
	if ownerID == uuid.Nil {
		return nil, domain.NewValidationError("owner ID is required")
	}
	if name == "" {
		return nil, domain.NewValidationError("hostel name is required")
	}

	now := time.Now().UTC()
	return &Hostel{
		id:        uuid.New(),
		ownerID:   ownerID,
		name:      name,
		city:      city,
		address:   address,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructHostel rebuilds a Hostel from persistence data (no validation).
func ReconstructHostel(
	id, ownerID uuid.UUID,
	name, city, address string,
	version int64,
	createdAt, updatedAt time.Time,
) *Hostel {
	return &Hostel{
		id:        id,
		ownerID:   ownerID,
		name:      name,
		city:      city,
		address:   address,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (h *Hostel) ID() uuid.UUID        { return h.id }
func (h *Hostel) OwnerID() uuid.UUID   { return h.ownerID }
func (h *Hostel) Name() string         { return h.name }
func (h *Hostel) City() string         { return h.city }
func (h *Hostel) Address() string      { return h.address }
func (h *Hostel) Version() int64       { return h.version }
func (h *Hostel) CreatedAt() time.Time { return h.createdAt }
func (h *Hostel) UpdatedAt() time.Time { return h.updatedAt }

// IsOwnedBy checks if the hostel belongs to the given owner.
func (h *Hostel) IsOwnedBy(ownerID uuid.UUID) bool {
	return h.ownerID == ownerID
}
