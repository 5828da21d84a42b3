package booking

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for booking aggregates.
type Repository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByNumber retrieves a booking by its human-readable booking number.
	FindByNumber(ctx context.Context, number string) (*Booking, error)

	// FindByStudentID retrieves bookings submitted by a student with pagination.
	FindByStudentID(ctx context.Context, studentID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindByHostelID retrieves bookings referencing a hostel with pagination,
	// optionally filtered by status ("" means all).
	FindByHostelID(ctx context.Context, hostelID uuid.UUID, status Status, page, limit int) ([]*Booking, int64, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new booking. Returns a ConflictError on a booking
	// number collision.
	Save(ctx context.Context, b *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	// Returns an InvalidStateError when another transaction got there first.
	Update(ctx context.Context, b *Booking) error
}
