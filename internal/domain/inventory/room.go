package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/hostelhub/service-booking/internal/domain"
)

// Room owns an ordered collection of beds within a hostel. The occupiedCount
// aggregate must always equal the number of beds with the occupancy flag set.
type Room struct {
	id            uuid.UUID
	hostelID      uuid.UUID
	number        int
	roomType      RoomType
	beds          []*Bed
	occupiedCount int
	createdAt     time.Time
	updatedAt     time.Time
}

// NewRoom creates a room with the given number of free beds, numbered from 1.
func NewRoom(hostelID uuid.UUID, number int, roomType RoomType, bedCount int) (*Room, error) {
	if hostelID == uuid.Nil {
		return nil, domain.NewValidationError("hostel ID is required")
	}
	if number < 1 {
		return nil, domain.NewValidationError("room number must be positive")
	}
	if !roomType.IsValid() {
		return nil, domain.NewValidationError("invalid room type: " + string(roomType))
	}
	if bedCount < 1 {
		return nil, domain.NewValidationError("room must have at least one bed")
	}

	now := time.Now().UTC()
	r := &Room{
		id:        uuid.New(),
		hostelID:  hostelID,
		number:    number,
		roomType:  roomType,
		createdAt: now,
		updatedAt: now,
	}
	for i := 1; i <= bedCount; i++ {
		r.beds = append(r.beds, NewBed(r.id, i))
	}
	return r, nil
}

// ReconstructRoom rebuilds a Room from persistence data. Beds must be supplied
// in stable order (by bed number ascending).
func ReconstructRoom(
	id, hostelID uuid.UUID,
	number int,
	roomType RoomType,
	beds []*Bed,
	occupiedCount int,
	createdAt, updatedAt time.Time,
) *Room {
	return &Room{
		id:            id,
		hostelID:      hostelID,
		number:        number,
		roomType:      roomType,
		beds:          beds,
		occupiedCount: occupiedCount,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

func (r *Room) ID() uuid.UUID        { return r.id }
func (r *Room) HostelID() uuid.UUID  { return r.hostelID }
func (r *Room) Number() int          { return r.number }
func (r *Room) RoomType() RoomType   { return r.roomType }
func (r *Room) Beds() []*Bed         { return r.beds }
func (r *Room) OccupiedCount() int   { return r.occupiedCount }
func (r *Room) CreatedAt() time.Time { return r.createdAt }
func (r *Room) UpdatedAt() time.Time { return r.updatedAt }

// TotalBeds returns the number of beds in the room.
func (r *Room) TotalBeds() int { return len(r.beds) }

// FreeBeds returns the number of currently free beds.
func (r *Room) FreeBeds() int { return len(r.beds) - r.occupiedCount }

// FirstFreeBed returns the lowest-numbered free bed, or nil if the room is full.
func (r *Room) FirstFreeBed() *Bed {
	for _, b := range r.beds {
		if !b.Occupied() {
			return b
		}
	}
	return nil
}

// CheckCount verifies the occupied-count aggregate against the per-bed flags.
func (r *Room) CheckCount() bool {
	n := 0
	for _, b := range r.beds {
		if b.Occupied() {
			n++
		}
	}
	return n == r.occupiedCount
}
