package inventory

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for the bed/room inventory.
//
// OccupyBed and ReleaseBed are conditional read-check-write operations: the
// implementation must flip the occupancy flag and adjust the owning room's
// aggregate count in a single transaction, and must report whether the flag
// actually changed so callers can detect lost races.
type Repository interface {
	// SaveHostel persists a new hostel.
	SaveHostel(ctx context.Context, h *Hostel) error

	// FindHostelByID retrieves a hostel by its unique identifier.
	FindHostelByID(ctx context.Context, id uuid.UUID) (*Hostel, error)

	// ListHostelsByOwner retrieves all hostels belonging to an owner.
	ListHostelsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Hostel, error)

	// SaveRoom persists a new room together with its beds.
	SaveRoom(ctx context.Context, r *Room) error

	// ListRoomsWithBeds retrieves all rooms of a hostel with their beds, in
	// stable order: rooms by room number ascending, beds by bed number ascending.
	ListRoomsWithBeds(ctx context.Context, hostelID uuid.UUID) ([]*Room, error)

	// FindBedByID retrieves a single bed.
	FindBedByID(ctx context.Context, id uuid.UUID) (*Bed, error)

	// OccupyBed atomically marks a free bed as occupied by the given booking
	// and increments the owning room's occupied count. Returns false when the
	// bed was no longer free.
	OccupyBed(ctx context.Context, bedID, bookingID uuid.UUID) (bool, error)

	// ReleaseBed atomically frees an occupied bed and decrements the owning
	// room's occupied count. Returns false when the bed was already free.
	ReleaseBed(ctx context.Context, bedID uuid.UUID) (bool, error)
}
