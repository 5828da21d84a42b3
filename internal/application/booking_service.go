package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hostelhub/service-booking/internal/allocation"
	"github.com/hostelhub/service-booking/internal/auth"
	"github.com/hostelhub/service-booking/internal/domain"
	bookingDomain "github.com/hostelhub/service-booking/internal/domain/booking"
	"github.com/hostelhub/service-booking/internal/domain/inventory"
	"github.com/hostelhub/service-booking/internal/events"
	"github.com/hostelhub/service-booking/internal/kafka"
	"github.com/hostelhub/service-booking/internal/metrics"
	"github.com/hostelhub/service-booking/internal/payment"
)

const eventSource = "service-booking"

// EventPublisher publishes CloudEvents; satisfied by *kafka.Producer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// AvailabilityInvalidator drops cached availability for a hostel after the
// inventory changes.
type AvailabilityInvalidator interface {
	Invalidate(ctx context.Context, hostelID uuid.UUID)
}

// SubmitBookingRequest holds the data needed to submit a booking request.
type SubmitBookingRequest struct {
	HostelID  uuid.UUID `json:"hostel_id" binding:"required"`
	RoomType  string    `json:"room_type" binding:"required"`
	CheckIn   time.Time `json:"check_in" binding:"required"`
	CheckOut  time.Time `json:"check_out" binding:"required"`
	Occupants int       `json:"occupants" binding:"required"`
	Notes     string    `json:"notes"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID              uuid.UUID  `json:"id"`
	BookingNumber   string     `json:"booking_number"`
	StudentID       uuid.UUID  `json:"student_id"`
	HostelID        uuid.UUID  `json:"hostel_id"`
	RoomTypePref    string     `json:"room_type_preference"`
	CheckIn         time.Time  `json:"check_in"`
	CheckOut        time.Time  `json:"check_out"`
	Occupants       int        `json:"occupants"`
	Notes           string     `json:"notes,omitempty"`
	Status          string     `json:"status"`
	RejectReason    string     `json:"reject_reason,omitempty"`
	CancelNote      string     `json:"cancel_note,omitempty"`
	AllocatedRoomID *uuid.UUID `json:"allocated_room_id,omitempty"`
	AllocatedBedID  *uuid.UUID `json:"allocated_bed_id,omitempty"`
	AdvancePaid     bool       `json:"advance_paid"`
	Version         int64      `json:"version"`
	CreatedAt       time.Time  `json:"created_at"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	ConfirmedAt     *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// BookingService orchestrates the booking lifecycle: it enforces legal state
// transitions and actor permissions, and drives the allocation engine and the
// payment status collaborator. It is the only writer of booking status.
type BookingService struct {
	bookings  bookingDomain.Repository
	inventory inventory.Repository
	engine    *allocation.Engine
	payments  payment.StatusChecker
	producer  EventPublisher
	cache     AvailabilityInvalidator
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookings bookingDomain.Repository,
	inv inventory.Repository,
	engine *allocation.Engine,
	payments payment.StatusChecker,
	producer EventPublisher,
	cache AvailabilityInvalidator,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings:  bookings,
		inventory: inv,
		engine:    engine,
		payments:  payments,
		producer:  producer,
		cache:     cache,
		logger:    logger,
	}
}

// Submit creates a new pending booking for the given student. Inventory is
// untouched.
func (s *BookingService) Submit(ctx context.Context, studentID uuid.UUID, req SubmitBookingRequest) (*BookingDTO, error) {
	// The hostel must exist before we accept a request against it.
	if _, err := s.inventory.FindHostelByID(ctx, req.HostelID); err != nil {
		return nil, err
	}

	// Booking numbers are random, so a collision is possible; regenerate and
	// retry a couple of times before giving up.
	var bk *bookingDomain.Booking
	for attempt := 1; ; attempt++ {
		var err error
		bk, err = bookingDomain.NewBooking(
			studentID,
			req.HostelID,
			inventory.RoomType(req.RoomType),
			bookingDomain.StayDetails{
				CheckIn:   req.CheckIn,
				CheckOut:  req.CheckOut,
				Occupants: req.Occupants,
			},
			req.Notes,
		)
		if err != nil {
			return nil, err
		}

		err = s.bookings.Save(ctx, bk)
		if err == nil {
			break
		}
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) && attempt < 3 {
			s.logger.Warn("booking number collision, regenerating",
				zap.String("booking_number", bk.BookingNumber()),
			)
			continue
		}
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}
	metrics.IncBookingTransition(string(bookingDomain.StatusPending))

	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingSubmitted, events.BookingSubmittedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		StudentID:     bk.StudentID(),
		HostelID:      bk.HostelID(),
		RoomType:      string(bk.RoomTypePref()),
		CheckIn:       bk.Stay().CheckIn,
		CheckOut:      bk.Stay().CheckOut,
		OccurredAt:    time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// Approve transitions a pending booking to approved. Only the owner of the
// booking's hostel may approve it.
func (s *BookingService) Approve(ctx context.Context, bookingID, ownerID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.requireHostelOwner(ctx, bk.HostelID(), ownerID); err != nil {
		return nil, err
	}

	if err := bk.Approve(); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}
	metrics.IncBookingTransition(string(bookingDomain.StatusApproved))

	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingApproved, events.BookingApprovedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		StudentID:     bk.StudentID(),
		OwnerID:       ownerID,
		OccurredAt:    time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// Reject transitions a pending booking to rejected with a mandatory reason.
func (s *BookingService) Reject(ctx context.Context, bookingID, ownerID uuid.UUID, reason string) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.requireHostelOwner(ctx, bk.HostelID(), ownerID); err != nil {
		return nil, err
	}

	if err := bk.Reject(reason); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}
	metrics.IncBookingTransition(string(bookingDomain.StatusRejected))

	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingRejected, events.BookingRejectedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		StudentID:     bk.StudentID(),
		OwnerID:       ownerID,
		Reason:        reason,
		OccurredAt:    time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// Confirm transitions an approved booking to confirmed. The advance payment
// must have completed, and a bed is reserved automatically if none is
// allocated yet. All-or-nothing: on NoCapacityError the booking stays
// approved, and a persistence conflict after a fresh reservation releases the
// bed again.
func (s *BookingService) Confirm(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.Status() != bookingDomain.StatusApproved {
		return nil, domain.NewInvalidStateError(string(bk.Status()), string(bookingDomain.StatusConfirmed))
	}

	if err := s.ensureAdvancePaid(ctx, bk); err != nil {
		return nil, err
	}

	var reserved *allocation.Assignment
	if !bk.HasAllocation() {
		asg, err := s.engine.Reserve(ctx, bk.HostelID(), bk.RoomTypePref(), bk.ID())
		if err != nil {
			var noCapacity *domain.NoCapacityError
			if errors.As(err, &noCapacity) {
				metrics.IncAllocationOutcome("no_capacity")
			}
			return nil, err
		}
		metrics.IncAllocationOutcome("reserved")
		reserved = asg
		if err := bk.AssignBed(asg.RoomID, asg.BedID); err != nil {
			s.compensateReservation(ctx, asg.BedID)
			return nil, err
		}
	}

	if err := bk.Confirm(); err != nil {
		if reserved != nil {
			s.compensateReservation(ctx, reserved.BedID)
		}
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		if reserved != nil {
			s.compensateReservation(ctx, reserved.BedID)
		}
		return nil, err
	}
	metrics.IncBookingTransition(string(bookingDomain.StatusConfirmed))
	s.invalidateAvailability(ctx, bk.HostelID())

	if reserved != nil {
		s.publishEvent(ctx, events.TopicAllocationEvents, events.BedAllocated, events.BedAllocatedEvent{
			BookingID:  bk.ID(),
			HostelID:   bk.HostelID(),
			RoomID:     reserved.RoomID,
			BedID:      reserved.BedID,
			RoomNumber: reserved.RoomNumber,
			BedNumber:  reserved.BedNumber,
			OccurredAt: time.Now().UTC(),
		})
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingConfirmed, events.BookingConfirmedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		StudentID:     bk.StudentID(),
		HostelID:      bk.HostelID(),
		RoomID:        *bk.AllocatedRoomID(),
		BedID:         *bk.AllocatedBedID(),
		OccurredAt:    time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// AllocateManually reserves (or confirms the existing reservation of) a bed
// for an approved or confirmed booking whose advance payment has completed.
// Idempotent: a booking that already holds a bed keeps it.
func (s *BookingService) AllocateManually(ctx context.Context, bookingID, ownerID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.requireHostelOwner(ctx, bk.HostelID(), ownerID); err != nil {
		return nil, err
	}
	if bk.Status() != bookingDomain.StatusApproved && bk.Status() != bookingDomain.StatusConfirmed {
		return nil, domain.NewInvalidStateError(string(bk.Status()), "allocated")
	}

	if err := s.ensureAdvancePaid(ctx, bk); err != nil {
		return nil, err
	}

	if bk.HasAllocation() {
		result := toBookingDTO(bk)
		return &result, nil
	}

	asg, err := s.engine.Reserve(ctx, bk.HostelID(), bk.RoomTypePref(), bk.ID())
	if err != nil {
		var noCapacity *domain.NoCapacityError
		if errors.As(err, &noCapacity) {
			metrics.IncAllocationOutcome("no_capacity")
		}
		return nil, err
	}
	metrics.IncAllocationOutcome("reserved")

	if err := bk.AssignBed(asg.RoomID, asg.BedID); err != nil {
		s.compensateReservation(ctx, asg.BedID)
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		s.compensateReservation(ctx, asg.BedID)
		return nil, err
	}
	s.invalidateAvailability(ctx, bk.HostelID())

	s.publishEvent(ctx, events.TopicAllocationEvents, events.BedAllocated, events.BedAllocatedEvent{
		BookingID:  bk.ID(),
		HostelID:   bk.HostelID(),
		RoomID:     asg.RoomID,
		BedID:      asg.BedID,
		RoomNumber: asg.RoomNumber,
		BedNumber:  asg.BedNumber,
		OccurredAt: time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// Cancel terminalizes a booking from pending, approved, or confirmed. Allowed
// for the booking's student, the hostel's owner, and staff/admin actors. Any
// allocated bed is released first; if the release fails, the cancellation
// fails rather than orphaning an occupied bed.
func (s *BookingService) Cancel(ctx context.Context, bookingID, actorID uuid.UUID, actorRole, note string) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.requireCancelActor(ctx, bk, actorID, actorRole); err != nil {
		return nil, err
	}
	if !bk.Status().CanBeCancelled() {
		return nil, domain.NewInvalidStateError(string(bk.Status()), string(bookingDomain.StatusCancelled))
	}

	var releasedBedID *uuid.UUID
	if bk.HasAllocation() {
		bedID := *bk.AllocatedBedID()
		if err := s.engine.Release(ctx, bedID); err != nil {
			return nil, fmt.Errorf("failed to release bed before cancellation: %w", err)
		}
		metrics.IncBedReleased()
		releasedBedID = &bedID
	}

	if err := bk.Cancel(note); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		// The status write lost a race after the bed was freed. Put the bed
		// back so the confirmed booking still holds it.
		if releasedBedID != nil {
			restored, reErr := s.inventory.OccupyBed(ctx, *releasedBedID, bk.ID())
			if reErr != nil {
				s.logger.Error("failed to restore bed after cancellation conflict",
					zap.String("booking_id", bk.ID().String()),
					zap.String("bed_id", releasedBedID.String()),
					zap.Error(reErr),
				)
			} else if !restored {
				// Another booking grabbed the bed in the window; the stored
				// allocation is now stale and needs operator attention.
				s.logger.Error("bed reoccupied by another booking during cancellation rollback",
					zap.String("booking_id", bk.ID().String()),
					zap.String("bed_id", releasedBedID.String()),
				)
			}
		}
		return nil, err
	}
	metrics.IncBookingTransition(string(bookingDomain.StatusCancelled))
	s.invalidateAvailability(ctx, bk.HostelID())

	if releasedBedID != nil {
		s.publishEvent(ctx, events.TopicAllocationEvents, events.BedReleased, events.BedReleasedEvent{
			BookingID:  bk.ID(),
			BedID:      *releasedBedID,
			OccurredAt: time.Now().UTC(),
		})
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingCancelled, events.BookingCancelledEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		CancelledBy:   actorID,
		Note:          note,
		OccurredAt:    time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// RecordAdvancePayment stores the advance-payment completion on the booking
// snapshot and, if the booking is already approved, immediately attempts
// confirmation. A full hostel is not an error here: the booking stays
// approved and the owner can allocate manually later.
func (s *BookingService) RecordAdvancePayment(ctx context.Context, bookingID uuid.UUID) error {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if bk.Status().IsTerminal() {
		s.logger.Warn("ignoring advance payment for terminal booking",
			zap.String("booking_id", bookingID.String()),
			zap.String("status", string(bk.Status())),
		)
		return nil
	}

	if !bk.AdvancePaid() {
		bk.MarkAdvancePaid()
		bk.IncrementVersion()
		if err := s.bookings.Update(ctx, bk); err != nil {
			return err
		}
	}

	if bk.Status() != bookingDomain.StatusApproved {
		return nil
	}

	if _, err := s.Confirm(ctx, bookingID); err != nil {
		var noCapacity *domain.NoCapacityError
		if errors.As(err, &noCapacity) {
			s.logger.Info("no capacity for auto-confirmation, booking stays approved",
				zap.String("booking_id", bookingID.String()),
			)
			return nil
		}
		return err
	}
	return nil
}

// GetBooking retrieves a single booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetStudentBookings retrieves paginated bookings for a specific student.
func (s *BookingService) GetStudentBookings(ctx context.Context, studentID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.bookings.FindByStudentID(ctx, studentID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// GetHostelBookings retrieves paginated bookings for a hostel, restricted to
// its owner, optionally filtered by status.
func (s *BookingService) GetHostelBookings(ctx context.Context, hostelID, ownerID uuid.UUID, status bookingDomain.Status, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	if err := s.requireHostelOwner(ctx, hostelID, ownerID); err != nil {
		return nil, err
	}

	bookings, total, err := s.bookings.FindByHostelID(ctx, hostelID, status, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.bookings.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toBookingDTOs(bookings), total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &BookingStatsDTO{TotalBookings: total, ByStatus: counts}, nil
}

// --- Helpers ---

func (s *BookingService) requireHostelOwner(ctx context.Context, hostelID, ownerID uuid.UUID) error {
	hostel, err := s.inventory.FindHostelByID(ctx, hostelID)
	if err != nil {
		return err
	}
	if !hostel.IsOwnedBy(ownerID) {
		return domain.NewAuthorizationError("actor does not own the referenced hostel")
	}
	return nil
}

func (s *BookingService) requireCancelActor(ctx context.Context, bk *bookingDomain.Booking, actorID uuid.UUID, actorRole string) error {
	if actorRole == auth.RoleStaff || actorRole == auth.RoleAdmin {
		return nil
	}
	if bk.IsOwnedBy(actorID) {
		return nil
	}
	hostel, err := s.inventory.FindHostelByID(ctx, bk.HostelID())
	if err != nil {
		return err
	}
	if !hostel.IsOwnedBy(actorID) {
		return domain.NewAuthorizationError("actor may not act on this booking")
	}
	return nil
}

// ensureAdvancePaid consults the payment collaborator unless the completion
// is already recorded on the booking snapshot.
func (s *BookingService) ensureAdvancePaid(ctx context.Context, bk *bookingDomain.Booking) error {
	if bk.AdvancePaid() {
		return nil
	}
	complete, err := s.payments.IsComplete(ctx, bk.ID())
	if err != nil {
		return fmt.Errorf("failed to check payment status: %w", err)
	}
	if !complete {
		return domain.NewPreconditionError("advance payment has not completed")
	}
	bk.MarkAdvancePaid()
	return nil
}

// compensateReservation frees a bed that was reserved during an operation
// that subsequently failed, keeping confirm/allocate all-or-nothing.
func (s *BookingService) compensateReservation(ctx context.Context, bedID uuid.UUID) {
	if err := s.engine.Release(ctx, bedID); err != nil {
		s.logger.Error("failed to release bed after aborted operation",
			zap.String("bed_id", bedID.String()),
			zap.Error(err),
		)
	}
}

func (s *BookingService) invalidateAvailability(ctx context.Context, hostelID uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, hostelID)
	}
}

func (s *BookingService) publishEvent(ctx context.Context, topic, eventType string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:              bk.ID(),
		BookingNumber:   bk.BookingNumber(),
		StudentID:       bk.StudentID(),
		HostelID:        bk.HostelID(),
		RoomTypePref:    string(bk.RoomTypePref()),
		CheckIn:         bk.Stay().CheckIn,
		CheckOut:        bk.Stay().CheckOut,
		Occupants:       bk.Stay().Occupants,
		Notes:           bk.Notes(),
		Status:          string(bk.Status()),
		RejectReason:    bk.RejectReason(),
		CancelNote:      bk.CancelNote(),
		AllocatedRoomID: bk.AllocatedRoomID(),
		AllocatedBedID:  bk.AllocatedBedID(),
		AdvancePaid:     bk.AdvancePaid(),
		Version:         bk.Version(),
		CreatedAt:       bk.CreatedAt(),
		ApprovedAt:      bk.ApprovedAt(),
		ConfirmedAt:     bk.ConfirmedAt(),
		CancelledAt:     bk.CancelledAt(),
		UpdatedAt:       bk.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}
