package inventory

import (
	"time"

	"github.com/google/uuid"
)

// Bed is the smallest allocatable occupancy unit. A bed is occupied if and
// only if exactly one confirmed booking references it; the occupant back
// reference is for lookup only and never implies ownership of the booking.
type Bed struct {
	id                uuid.UUID
	roomID            uuid.UUID
	number            int
	occupied          bool
	occupantBookingID *uuid.UUID
	updatedAt         time.Time
}

// NewBed creates a free bed within the given room.
func NewBed(roomID uuid.UUID, number int) *Bed {
	return &Bed{
		id:        uuid.New(),
		roomID:    roomID,
		number:    number,
		updatedAt: time.Now().UTC(),
	}
}

// ReconstructBed rebuilds a Bed from persistence data.
func ReconstructBed(
	id, roomID uuid.UUID,
	number int,
	occupied bool,
	occupantBookingID *uuid.UUID,
	updatedAt time.Time,
) *Bed {
	return &Bed{
		id:                id,
		roomID:            roomID,
		number:            number,
		occupied:          occupied,
		occupantBookingID: occupantBookingID,
		updatedAt:         updatedAt,
	}
}

func (b *Bed) ID() uuid.UUID                 { return b.id }
func (b *Bed) RoomID() uuid.UUID             { return b.roomID }
func (b *Bed) Number() int                   { return b.number }
func (b *Bed) Occupied() bool                { return b.occupied }
func (b *Bed) OccupantBookingID() *uuid.UUID { return b.occupantBookingID }
func (b *Bed) UpdatedAt() time.Time          { return b.updatedAt }

// Occupy marks the bed as taken by the given booking. Returns false if the
// bed is already occupied; callers must treat that as a lost race, not a fault.
func (b *Bed) Occupy(bookingID uuid.UUID) bool {
	if b.occupied {
		return false
	}
	b.occupied = true
	b.occupantBookingID = &bookingID
	b.updatedAt = time.Now().UTC()
	return true
}

// Release frees the bed. Idempotent: releasing a free bed is a no-op so that
// retries after partial failures stay safe.
func (b *Bed) Release() bool {
	if !b.occupied {
		return false
	}
	b.occupied = false
	b.occupantBookingID = nil
	b.updatedAt = time.Now().UTC()
	return true
}
