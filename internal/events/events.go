package events

import (
	"time"

	"github.com/google/uuid"
)

// Topic names shared with the other services.
const (
	TopicBookingEvents    = "booking.events"
	TopicAllocationEvents = "allocation.events"
	TopicPaymentEvents    = "payment.events"
)

// Event type identifiers carried in the CloudEvent envelope.
const (
	BookingSubmitted = "hostelhub.booking.submitted"
	BookingApproved  = "hostelhub.booking.approved"
	BookingRejected  = "hostelhub.booking.rejected"
	BookingConfirmed = "hostelhub.booking.confirmed"
	BookingCancelled = "hostelhub.booking.cancelled"

	BedAllocated = "hostelhub.allocation.bed_allocated"
	BedReleased  = "hostelhub.allocation.bed_released"

	PaymentAdvanceCompleted = "hostelhub.payment.advance_completed"
)

// BookingSubmittedEvent is published when a student submits a booking request.
type BookingSubmittedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	StudentID     uuid.UUID `json:"student_id"`
	HostelID      uuid.UUID `json:"hostel_id"`
	RoomType      string    `json:"room_type"`
	CheckIn       time.Time `json:"check_in"`
	CheckOut      time.Time `json:"check_out"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingApprovedEvent is published when an owner approves a booking.
type BookingApprovedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	StudentID     uuid.UUID `json:"student_id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingRejectedEvent is published when an owner rejects a booking.
type BookingRejectedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	StudentID     uuid.UUID `json:"student_id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	Reason        string    `json:"reason"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingConfirmedEvent is published when a booking reaches confirmed with a
// bed allocated.
type BookingConfirmedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	StudentID     uuid.UUID `json:"student_id"`
	HostelID      uuid.UUID `json:"hostel_id"`
	RoomID        uuid.UUID `json:"room_id"`
	BedID         uuid.UUID `json:"bed_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingCancelledEvent is published when a booking is cancelled.
type BookingCancelledEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	CancelledBy   uuid.UUID `json:"cancelled_by"`
	Note          string    `json:"note"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BedAllocatedEvent is published when the allocation engine reserves a bed.
type BedAllocatedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	HostelID   uuid.UUID `json:"hostel_id"`
	RoomID     uuid.UUID `json:"room_id"`
	BedID      uuid.UUID `json:"bed_id"`
	RoomNumber int       `json:"room_number"`
	BedNumber  int       `json:"bed_number"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BedReleasedEvent is published when a bed is freed.
type BedReleasedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	BedID      uuid.UUID `json:"bed_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AdvancePaymentCompletedEvent arrives on payment.events when the payment
// service records a completed advance payment for a booking.
type AdvancePaymentCompletedEvent struct {
	PaymentID  uuid.UUID `json:"payment_id"`
	BookingID  uuid.UUID `json:"booking_id"`
	Amount     int64     `json:"amount_cents"`
	Currency   string    `json:"currency"`
	OccurredAt time.Time `json:"occurred_at"`
}
