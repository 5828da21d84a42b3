package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hostelhub/service-booking/internal/domain"
	bookingDomain "github.com/hostelhub/service-booking/internal/domain/booking"
	"github.com/hostelhub/service-booking/internal/domain/inventory"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BookingNumber   string     `gorm:"uniqueIndex;not null;size:20"`
	StudentID       uuid.UUID  `gorm:"type:uuid;index;not null"`
	HostelID        uuid.UUID  `gorm:"type:uuid;index;not null"`
	RoomTypePref    string     `gorm:"not null;size:20"`
	CheckIn         time.Time  `gorm:"not null"`
	CheckOut        time.Time  `gorm:"not null"`
	Occupants       int        `gorm:"not null;default:1"`
	Notes           string     `gorm:"size:1000"`
	Status          string     `gorm:"not null;size:20;index"`
	RejectReason    string     `gorm:"size:500"`
	CancelNote      string     `gorm:"size:500"`
	AllocatedRoomID *uuid.UUID `gorm:"type:uuid"`
	AllocatedBedID  *uuid.UUID `gorm:"type:uuid;index"`
	AdvancePaid     bool       `gorm:"not null;default:false"`
	Version         int64      `gorm:"not null;default:1"`
	CreatedAt       time.Time  `gorm:"not null"`
	ApprovedAt      *time.Time `gorm:""`
	ConfirmedAt     *time.Time `gorm:""`
	CancelledAt     *time.Time `gorm:""`
	UpdatedAt       time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of booking.Repository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByNumber retrieves a booking by its booking number.
func (r *GormBookingRepository) FindByNumber(ctx context.Context, number string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("booking_number = ?", number).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", number)
		}
		return nil, fmt.Errorf("failed to find booking by number: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByStudentID retrieves bookings for a specific student with pagination.
func (r *GormBookingRepository) FindByStudentID(ctx context.Context, studentID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where("student_id = ?", studentID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count student bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find student bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// FindByHostelID retrieves bookings for a hostel with pagination, optionally
// filtered by status.
func (r *GormBookingRepository) FindByHostelID(ctx context.Context, hostelID uuid.UUID, status bookingDomain.Status, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	query := r.db.WithContext(ctx).Model(&BookingModel{}).Where("hostel_id = ?", hostelID)
	if status != "" {
		query = query.Where("status = ?", string(status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count hostel bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find hostel bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// Save persists a new booking. A unique-index violation, which can only be a
// booking-number collision, surfaces as a ConflictError so the caller can
// regenerate the number and retry.
func (r *GormBookingRepository) Save(ctx context.Context, b *bookingDomain.Booking) error {
	model := toBookingModel(b)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("booking number already exists")
		}
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, b *bookingDomain.Booking) error {
	model := toBookingModel(b)

	// Only update if the stored version matches the version the caller read
	// (IncrementVersion has already been applied on the aggregate).
	expectedVersion := b.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":            model.Status,
			"reject_reason":     model.RejectReason,
			"cancel_note":       model.CancelNote,
			"allocated_room_id": model.AllocatedRoomID,
			"allocated_bed_id":  model.AllocatedBedID,
			"advance_paid":      model.AdvancePaid,
			"version":           model.Version,
			"approved_at":       model.ApprovedAt,
			"confirmed_at":      model.ConfirmedAt,
			"cancelled_at":      model.CancelledAt,
			"updated_at":        model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// The loser of two concurrent transitions: someone else already acted
		// on this booking. Report the status that is actually stored now.
		var current BookingModel
		if err := r.db.WithContext(ctx).Select("status").Where("id = ?", model.ID).First(&current).Error; err != nil {
			return domain.NewInvalidStateError("unknown", model.Status)
		}
		return domain.NewInvalidStateError(current.Status, model.Status)
	}
	return nil
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// --- Conversion Helpers ---

func toBookingModel(b *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:              b.ID(),
		BookingNumber:   b.BookingNumber(),
		StudentID:       b.StudentID(),
		HostelID:        b.HostelID(),
		RoomTypePref:    string(b.RoomTypePref()),
		CheckIn:         b.Stay().CheckIn,
		CheckOut:        b.Stay().CheckOut,
		Occupants:       b.Stay().Occupants,
		Notes:           b.Notes(),
		Status:          string(b.Status()),
		RejectReason:    b.RejectReason(),
		CancelNote:      b.CancelNote(),
		AllocatedRoomID: b.AllocatedRoomID(),
		AllocatedBedID:  b.AllocatedBedID(),
		AdvancePaid:     b.AdvancePaid(),
		Version:         b.Version(),
		CreatedAt:       b.CreatedAt(),
		ApprovedAt:      b.ApprovedAt(),
		ConfirmedAt:     b.ConfirmedAt(),
		CancelledAt:     b.CancelledAt(),
		UpdatedAt:       b.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.BookingNumber,
		m.StudentID,
		m.HostelID,
		inventory.RoomType(m.RoomTypePref),
		bookingDomain.StayDetails{
			CheckIn:   m.CheckIn,
			CheckOut:  m.CheckOut,
			Occupants: m.Occupants,
		},
		m.Notes,
		status,
		m.RejectReason,
		m.CancelNote,
		m.AllocatedRoomID,
		m.AllocatedBedID,
		m.AdvancePaid,
		m.Version,
		m.CreatedAt,
		m.ApprovedAt,
		m.ConfirmedAt,
		m.CancelledAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel, total int64) ([]*bookingDomain.Booking, int64, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		b, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = b
	}
	return bookings, total, nil
}
