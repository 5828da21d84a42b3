package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/hostelhub/service-booking/internal/domain"
	"github.com/hostelhub/service-booking/internal/domain/inventory"
)

const bookingNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Booking is the aggregate root for the booking domain. It references a hostel
// and, once allocated, a room and bed; it never owns them. Bookings are never
// deleted, only moved to a terminal status.
type Booking struct {
	id            uuid.UUID
	bookingNumber string
	studentID     uuid.UUID
	hostelID      uuid.UUID
	roomTypePref  inventory.RoomType
	stay          StayDetails
	notes         string

	status       Status
	rejectReason string
	cancelNote   string

	allocatedRoomID *uuid.UUID
	allocatedBedID  *uuid.UUID
	advancePaid     bool

	version     int64
	createdAt   time.Time
	approvedAt  *time.Time
	confirmedAt *time.Time
	cancelledAt *time.Time
	updatedAt   time.Time
}

// generateBookingNumber creates a booking number in the format "HB-XXXXXX".
func generateBookingNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		result[i] = bookingNumberChars[n.Int64()]
	}
	return "HB-" + string(result), nil
}

// NewBooking creates a new Booking aggregate with status=pending.
func NewBooking(
	studentID uuid.UUID,
	hostelID uuid.UUID,
	roomTypePref inventory.RoomType,
	stay StayDetails,
	notes string,
) (*Booking, error) {
	if studentID == uuid.Nil {
		return nil, domain.NewValidationError("student ID is required")
	}
	if hostelID == uuid.Nil {
		return nil, domain.NewValidationError("hostel ID is required")
	}
	if !roomTypePref.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid room type preference: %s", roomTypePref))
	}
	if err := stay.Validate(time.Now()); err != nil {
		return nil, err
	}

	bookingNumber, err := generateBookingNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:            uuid.New(),
		bookingNumber: bookingNumber,
		studentID:     studentID,
		hostelID:      hostelID,
		roomTypePref:  roomTypePref,
		stay:          stay,
		notes:         notes,
		status:        StatusPending,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	bookingNumber string,
	studentID uuid.UUID,
	hostelID uuid.UUID,
	roomTypePref inventory.RoomType,
	stay StayDetails,
	notes string,
	status Status,
	rejectReason string,
	cancelNote string,
	allocatedRoomID *uuid.UUID,
	allocatedBedID *uuid.UUID,
	advancePaid bool,
	version int64,
	createdAt time.Time,
	approvedAt *time.Time,
	confirmedAt *time.Time,
	cancelledAt *time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:              id,
		bookingNumber:   bookingNumber,
		studentID:       studentID,
		hostelID:        hostelID,
		roomTypePref:    roomTypePref,
		stay:            stay,
		notes:           notes,
		status:          status,
		rejectReason:    rejectReason,
		cancelNote:      cancelNote,
		allocatedRoomID: allocatedRoomID,
		allocatedBedID:  allocatedBedID,
		advancePaid:     advancePaid,
		version:         version,
		createdAt:       createdAt,
		approvedAt:      approvedAt,
		confirmedAt:     confirmedAt,
		cancelledAt:     cancelledAt,
		updatedAt:       updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// BookingNumber returns the human-readable booking number.
func (b *Booking) BookingNumber() string { return b.bookingNumber }

// StudentID returns the requesting student's user ID.
func (b *Booking) StudentID() uuid.UUID { return b.studentID }

// HostelID returns the referenced hostel's ID.
func (b *Booking) HostelID() uuid.UUID { return b.hostelID }

// RoomTypePref returns the requested room-type preference.
func (b *Booking) RoomTypePref() inventory.RoomType { return b.roomTypePref }

// Stay returns the requested stay details.
func (b *Booking) Stay() StayDetails { return b.stay }

// Notes returns any free-text notes attached to the request.
func (b *Booking) Notes() string { return b.notes }

// Status returns the current booking status.
func (b *Booking) Status() Status { return b.status }

// RejectReason returns the rejection reason, or "" if not rejected.
func (b *Booking) RejectReason() string { return b.rejectReason }

// CancelNote returns the cancellation note, or "" if not cancelled.
func (b *Booking) CancelNote() string { return b.cancelNote }

// AllocatedRoomID returns the allocated room's ID, or nil if unallocated.
func (b *Booking) AllocatedRoomID() *uuid.UUID { return b.allocatedRoomID }

// AllocatedBedID returns the allocated bed's ID, or nil if unallocated.
func (b *Booking) AllocatedBedID() *uuid.UUID { return b.allocatedBedID }

// AdvancePaid returns the advance-payment status snapshot.
func (b *Booking) AdvancePaid() bool { return b.advancePaid }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// ApprovedAt returns the time the booking was approved.
func (b *Booking) ApprovedAt() *time.Time { return b.approvedAt }

// ConfirmedAt returns the time the booking was confirmed.
func (b *Booking) ConfirmedAt() *time.Time { return b.confirmedAt }

// CancelledAt returns the time the booking was cancelled.
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// IsOwnedBy checks if the booking belongs to the given student.
func (b *Booking) IsOwnedBy(studentID uuid.UUID) bool {
	return b.studentID == studentID
}

// HasAllocation returns true if a bed has been allocated to this booking.
func (b *Booking) HasAllocation() bool {
	return b.allocatedBedID != nil
}

// Approve transitions the booking from pending to approved.
func (b *Booking) Approve() error {
	if !b.status.CanTransitionTo(StatusApproved) {
		return domain.NewInvalidStateError(string(b.status), string(StatusApproved))
	}
	now := time.Now().UTC()
	b.status = StatusApproved
	b.approvedAt = &now
	b.updatedAt = now
	return nil
}

// Reject transitions the booking from pending to rejected with the given reason.
func (b *Booking) Reject(reason string) error {
	if reason == "" {
		return domain.NewValidationError("rejection reason is required")
	}
	if !b.status.CanTransitionTo(StatusRejected) {
		return domain.NewInvalidStateError(string(b.status), string(StatusRejected))
	}
	b.status = StatusRejected
	b.rejectReason = reason
	b.updatedAt = time.Now().UTC()
	return nil
}

// MarkAdvancePaid records that the advance payment completed. The snapshot
// never reverts: a completed payment stays completed.
func (b *Booking) MarkAdvancePaid() {
	if b.advancePaid {
		return
	}
	b.advancePaid = true
	b.updatedAt = time.Now().UTC()
}

// AssignBed binds the booking to the given room and bed. Legal only while the
// booking is approved or confirmed.
func (b *Booking) AssignBed(roomID, bedID uuid.UUID) error {
	if b.status != StatusApproved && b.status != StatusConfirmed {
		return domain.NewInvalidStateError(string(b.status), "allocated")
	}
	b.allocatedRoomID = &roomID
	b.allocatedBedID = &bedID
	b.updatedAt = time.Now().UTC()
	return nil
}

// Confirm transitions the booking from approved to confirmed. A recorded
// advance payment and an allocated bed are hard preconditions: confirmed can
// never be reached without both.
func (b *Booking) Confirm() error {
	if !b.status.CanTransitionTo(StatusConfirmed) {
		return domain.NewInvalidStateError(string(b.status), string(StatusConfirmed))
	}
	if !b.advancePaid {
		return domain.NewPreconditionError("advance payment has not completed")
	}
	if b.allocatedBedID == nil {
		return domain.NewPreconditionError("no bed allocated")
	}
	now := time.Now().UTC()
	b.status = StatusConfirmed
	b.confirmedAt = &now
	b.updatedAt = now
	return nil
}

// Cancel transitions the booking to cancelled. The caller must release any
// allocated bed before invoking this; Cancel clears the allocation references.
func (b *Booking) Cancel(note string) error {
	if !b.status.CanBeCancelled() {
		return domain.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	now := time.Now().UTC()
	b.status = StatusCancelled
	b.cancelNote = note
	b.cancelledAt = &now
	b.allocatedRoomID = nil
	b.allocatedBedID = nil
	b.updatedAt = now
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
