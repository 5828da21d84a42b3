package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hostelhub/service-booking/internal/domain"
	"github.com/hostelhub/service-booking/internal/domain/inventory"
)

// HostelModel is the GORM model for the hostels table.
type HostelModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Name      string    `gorm:"not null;size:200"`
	City      string    `gorm:"size:100"`
	Address   string    `gorm:"size:500"`
	Version   int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (HostelModel) TableName() string {
	return "hostels"
}

// RoomModel is the GORM model for the rooms table.
type RoomModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	HostelID      uuid.UUID `gorm:"type:uuid;index:idx_rooms_hostel_number,unique;not null"`
	Number        int       `gorm:"index:idx_rooms_hostel_number,unique;not null"`
	RoomType      string    `gorm:"not null;size:20"`
	OccupiedCount int       `gorm:"not null;default:0"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (RoomModel) TableName() string {
	return "rooms"
}

// BedModel is the GORM model for the beds table.
type BedModel struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	RoomID            uuid.UUID  `gorm:"type:uuid;index:idx_beds_room_number,unique;not null"`
	Number            int        `gorm:"index:idx_beds_room_number,unique;not null"`
	Occupied          bool       `gorm:"not null;default:false"`
	OccupantBookingID *uuid.UUID `gorm:"type:uuid"`
	UpdatedAt         time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BedModel) TableName() string {
	return "beds"
}

// GormInventoryRepository is the GORM-based implementation of inventory.Repository.
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewGormInventoryRepository creates a new GormInventoryRepository.
func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// SaveHostel persists a new hostel.
func (r *GormInventoryRepository) SaveHostel(ctx context.Context, h *inventory.Hostel) error {
	model := &HostelModel{
		ID:        h.ID(),
		OwnerID:   h.OwnerID(),
		Name:      h.Name(),
		City:      h.City(),
		Address:   h.Address(),
		Version:   h.Version(),
		CreatedAt: h.CreatedAt(),
		UpdatedAt: h.UpdatedAt(),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save hostel: %w", err)
	}
	return nil
}

// FindHostelByID retrieves a hostel by its unique identifier.
func (r *GormInventoryRepository) FindHostelByID(ctx context.Context, id uuid.UUID) (*inventory.Hostel, error) {
	var model HostelModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Hostel", id.String())
		}
		return nil, fmt.Errorf("failed to find hostel by ID: %w", err)
	}
	return toDomainHostel(&model), nil
}

// ListHostelsByOwner retrieves all hostels belonging to an owner.
func (r *GormInventoryRepository) ListHostelsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*inventory.Hostel, error) {
	var models []HostelModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list hostels: %w", err)
	}

	hostels := make([]*inventory.Hostel, len(models))
	for i, m := range models {
		hostels[i] = toDomainHostel(&m)
	}
	return hostels, nil
}

// SaveRoom persists a new room together with its beds.
func (r *GormInventoryRepository) SaveRoom(ctx context.Context, room *inventory.Room) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		roomModel := &RoomModel{
			ID:            room.ID(),
			HostelID:      room.HostelID(),
			Number:        room.Number(),
			RoomType:      string(room.RoomType()),
			OccupiedCount: room.OccupiedCount(),
			CreatedAt:     room.CreatedAt(),
			UpdatedAt:     room.UpdatedAt(),
		}
		if err := tx.Create(roomModel).Error; err != nil {
			return fmt.Errorf("failed to save room: %w", err)
		}

		for _, bed := range room.Beds() {
			bedModel := &BedModel{
				ID:                bed.ID(),
				RoomID:            bed.RoomID(),
				Number:            bed.Number(),
				Occupied:          bed.Occupied(),
				OccupantBookingID: bed.OccupantBookingID(),
				UpdatedAt:         bed.UpdatedAt(),
			}
			if err := tx.Create(bedModel).Error; err != nil {
				return fmt.Errorf("failed to save bed: %w", err)
			}
		}
		return nil
	})
}

// ListRoomsWithBeds retrieves all rooms of a hostel with their beds in stable
// order: rooms by room number, beds by bed number.
func (r *GormInventoryRepository) ListRoomsWithBeds(ctx context.Context, hostelID uuid.UUID) ([]*inventory.Room, error) {
	var roomModels []RoomModel
	if err := r.db.WithContext(ctx).
		Where("hostel_id = ?", hostelID).
		Order("number ASC").
		Find(&roomModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	if len(roomModels) == 0 {
		return nil, nil
	}

	roomIDs := make([]uuid.UUID, len(roomModels))
	for i, rm := range roomModels {
		roomIDs[i] = rm.ID
	}

	var bedModels []BedModel
	if err := r.db.WithContext(ctx).
		Where("room_id IN ?", roomIDs).
		Order("number ASC").
		Find(&bedModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list beds: %w", err)
	}

	bedsByRoom := make(map[uuid.UUID][]*inventory.Bed)
	for _, bm := range bedModels {
		bedsByRoom[bm.RoomID] = append(bedsByRoom[bm.RoomID], toDomainBed(&bm))
	}

	rooms := make([]*inventory.Room, len(roomModels))
	for i, rm := range roomModels {
		rooms[i] = inventory.ReconstructRoom(
			rm.ID,
			rm.HostelID,
			rm.Number,
			inventory.RoomType(rm.RoomType),
			bedsByRoom[rm.ID],
			rm.OccupiedCount,
			rm.CreatedAt,
			rm.UpdatedAt,
		)
	}
	return rooms, nil
}

// FindBedByID retrieves a single bed.
func (r *GormInventoryRepository) FindBedByID(ctx context.Context, id uuid.UUID) (*inventory.Bed, error) {
	var model BedModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Bed", id.String())
		}
		return nil, fmt.Errorf("failed to find bed by ID: %w", err)
	}
	return toDomainBed(&model), nil
}

// OccupyBed atomically marks a free bed occupied and increments the owning
// room's aggregate count. The conditional update keeps two writers from ever
// occupying the same bed, regardless of in-process locking.
func (r *GormInventoryRepository) OccupyBed(ctx context.Context, bedID, bookingID uuid.UUID) (bool, error) {
	occupied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bed BedModel
		if err := tx.Where("id = ?", bedID).First(&bed).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewNotFoundError("Bed", bedID.String())
			}
			return fmt.Errorf("failed to load bed: %w", err)
		}

		result := tx.Model(&BedModel{}).
			Where("id = ? AND occupied = ?", bedID, false).
			Updates(map[string]interface{}{
				"occupied":            true,
				"occupant_booking_id": bookingID,
				"updated_at":          time.Now().UTC(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to occupy bed: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			// Already occupied; not an error, the caller scans on.
			return nil
		}

		if err := tx.Model(&RoomModel{}).
			Where("id = ?", bed.RoomID).
			Updates(map[string]interface{}{
				"occupied_count": gorm.Expr("occupied_count + 1"),
				"updated_at":     time.Now().UTC(),
			}).Error; err != nil {
			return fmt.Errorf("failed to increment room count: %w", err)
		}

		occupied = true
		return nil
	})
	return occupied, err
}

// ReleaseBed atomically frees an occupied bed and decrements the owning room's
// aggregate count. Releasing a free bed changes nothing and reports false.
func (r *GormInventoryRepository) ReleaseBed(ctx context.Context, bedID uuid.UUID) (bool, error) {
	released := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bed BedModel
		if err := tx.Where("id = ?", bedID).First(&bed).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewNotFoundError("Bed", bedID.String())
			}
			return fmt.Errorf("failed to load bed: %w", err)
		}

		result := tx.Model(&BedModel{}).
			Where("id = ? AND occupied = ?", bedID, true).
			Updates(map[string]interface{}{
				"occupied":            false,
				"occupant_booking_id": nil,
				"updated_at":          time.Now().UTC(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to release bed: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			// Already free; idempotent no-op.
			return nil
		}

		if err := tx.Model(&RoomModel{}).
			Where("id = ?", bed.RoomID).
			Updates(map[string]interface{}{
				"occupied_count": gorm.Expr("occupied_count - 1"),
				"updated_at":     time.Now().UTC(),
			}).Error; err != nil {
			return fmt.Errorf("failed to decrement room count: %w", err)
		}

		released = true
		return nil
	})
	return released, err
}

// --- Conversion Helpers ---

func toDomainHostel(m *HostelModel) *inventory.Hostel {
	return inventory.ReconstructHostel(
		m.ID,
		m.OwnerID,
		m.Name,
		m.City,
		m.Address,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toDomainBed(m *BedModel) *inventory.Bed {
	return inventory.ReconstructBed(
		m.ID,
		m.RoomID,
		m.Number,
		m.Occupied,
		m.OccupantBookingID,
		m.UpdatedAt,
	)
}
