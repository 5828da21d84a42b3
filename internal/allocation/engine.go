package allocation

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hostelhub/service-booking/internal/domain"
	"github.com/hostelhub/service-booking/internal/domain/inventory"
)

// Assignment identifies the room and bed chosen for a booking.
type Assignment struct {
	RoomID     uuid.UUID          `json:"room_id"`
	BedID      uuid.UUID          `json:"bed_id"`
	RoomNumber int                `json:"room_number"`
	BedNumber  int                `json:"bed_number"`
	RoomType   inventory.RoomType `json:"room_type"`
}

// Engine matches bookings to free beds and releases them again. Reserve calls
// against the same hostel are serialized by a per-hostel mutex so that two
// concurrent calls can never select the same bed; the repository's conditional
// occupy is the second line of defence across processes.
type Engine struct {
	repo   inventory.Repository
	policy SelectionPolicy
	logger *zap.Logger

	mu          sync.Mutex
	hostelLocks map[uuid.UUID]*sync.Mutex
}

// NewEngine creates a new allocation Engine.
func NewEngine(repo inventory.Repository, policy SelectionPolicy, logger *zap.Logger) *Engine {
	return &Engine{
		repo:        repo,
		policy:      policy,
		logger:      logger,
		hostelLocks: make(map[uuid.UUID]*sync.Mutex),
	}
}

func (e *Engine) hostelLock(hostelID uuid.UUID) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.hostelLocks[hostelID]
	if !ok {
		l = &sync.Mutex{}
		e.hostelLocks[hostelID] = l
	}
	return l
}

// Reserve selects the first free bed in the hostel, preferring rooms of the
// requested type, in stable order (room number, then bed number), and marks it
// occupied by the booking. Returns NoCapacityError when no bed in the hostel
// is free.
func (e *Engine) Reserve(ctx context.Context, hostelID uuid.UUID, pref inventory.RoomType, bookingID uuid.UUID) (*Assignment, error) {
	lock := e.hostelLock(hostelID)
	lock.Lock()
	defer lock.Unlock()

	rooms, err := e.repo.ListRoomsWithBeds(ctx, hostelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rooms for hostel %s: %w", hostelID, err)
	}

	for _, room := range e.policy.Order(rooms, pref) {
		for _, bed := range room.Beds() {
			if bed.Occupied() {
				continue
			}
			occupied, err := e.repo.OccupyBed(ctx, bed.ID(), bookingID)
			if err != nil {
				return nil, fmt.Errorf("failed to occupy bed %s: %w", bed.ID(), err)
			}
			if !occupied {
				// Lost to a writer outside this process; keep scanning.
				continue
			}

			e.logger.Info("bed reserved",
				zap.String("hostel_id", hostelID.String()),
				zap.String("booking_id", bookingID.String()),
				zap.Int("room_number", room.Number()),
				zap.Int("bed_number", bed.Number()),
			)
			return &Assignment{
				RoomID:     room.ID(),
				BedID:      bed.ID(),
				RoomNumber: room.Number(),
				BedNumber:  bed.Number(),
				RoomType:   room.RoomType(),
			}, nil
		}
	}

	return nil, domain.NewNoCapacityError(hostelID.String())
}

// Release frees the given bed. Idempotent: releasing an already-free bed is a
// no-op, not an error, so retries after partial failures stay safe. Relies on
// the repository's atomic conditional update for serialization.
func (e *Engine) Release(ctx context.Context, bedID uuid.UUID) error {
	released, err := e.repo.ReleaseBed(ctx, bedID)
	if err != nil {
		return fmt.Errorf("failed to release bed %s: %w", bedID, err)
	}
	if released {
		e.logger.Info("bed released", zap.String("bed_id", bedID.String()))
	}
	return nil
}
