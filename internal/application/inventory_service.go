package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hostelhub/service-booking/internal/domain"
	"github.com/hostelhub/service-booking/internal/domain/inventory"
)

// AvailabilityCache caches computed availability summaries per hostel.
type AvailabilityCache interface {
	AvailabilityInvalidator
	Get(ctx context.Context, hostelID uuid.UUID) (*AvailabilityDTO, bool)
	Set(ctx context.Context, hostelID uuid.UUID, summary *AvailabilityDTO)
}

// CreateHostelRequest holds the data needed to register a hostel.
type CreateHostelRequest struct {
	Name    string `json:"name" binding:"required"`
	City    string `json:"city"`
	Address string `json:"address"`
}

// AddRoomRequest holds the data needed to add a room with its beds.
type AddRoomRequest struct {
	Number   int    `json:"number" binding:"required"`
	RoomType string `json:"room_type" binding:"required"`
	BedCount int    `json:"bed_count" binding:"required"`
}

// HostelDTO is the response representation of a hostel.
type HostelDTO struct {
	ID      uuid.UUID `json:"id"`
	OwnerID uuid.UUID `json:"owner_id"`
	Name    string    `json:"name"`
	City    string    `json:"city,omitempty"`
	Address string    `json:"address,omitempty"`
}

// RoomDTO is the response representation of a room.
type RoomDTO struct {
	ID            uuid.UUID `json:"id"`
	HostelID      uuid.UUID `json:"hostel_id"`
	Number        int       `json:"number"`
	RoomType      string    `json:"room_type"`
	TotalBeds     int       `json:"total_beds"`
	OccupiedCount int       `json:"occupied_count"`
}

// RoomAvailabilityDTO summarizes capacity per room.
type RoomAvailabilityDTO struct {
	RoomID    uuid.UUID `json:"room_id"`
	Number    int       `json:"number"`
	RoomType  string    `json:"room_type"`
	TotalBeds int       `json:"total_beds"`
	FreeBeds  int       `json:"free_beds"`
}

// AvailabilityDTO summarizes free capacity across a hostel.
type AvailabilityDTO struct {
	HostelID  uuid.UUID             `json:"hostel_id"`
	TotalFree int                   `json:"total_free"`
	ByType    map[string]int        `json:"by_type"`
	Rooms     []RoomAvailabilityDTO `json:"rooms"`
}

// InventoryService manages hostels, rooms and beds, and serves availability
// summaries. It never flips occupancy flags; only the allocation engine does.
type InventoryService struct {
	repo   inventory.Repository
	cache  AvailabilityCache
	logger *zap.Logger
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(repo inventory.Repository, cache AvailabilityCache, logger *zap.Logger) *InventoryService {
	return &InventoryService{repo: repo, cache: cache, logger: logger}
}

// CreateHostel registers a new hostel for the given owner.
func (s *InventoryService) CreateHostel(ctx context.Context, ownerID uuid.UUID, req CreateHostelRequest) (*HostelDTO, error) {
	h, err := inventory.NewHostel(ownerID, req.Name, req.City, req.Address)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveHostel(ctx, h); err != nil {
		return nil, fmt.Errorf("failed to save hostel: %w", err)
	}

	result := toHostelDTO(h)
	return &result, nil
}

// ListOwnerHostels returns all hostels registered by the owner.
func (s *InventoryService) ListOwnerHostels(ctx context.Context, ownerID uuid.UUID) ([]HostelDTO, error) {
	hostels, err := s.repo.ListHostelsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	dtos := make([]HostelDTO, len(hostels))
	for i, h := range hostels {
		dtos[i] = toHostelDTO(h)
	}
	return dtos, nil
}

// AddRoom adds a room with freshly numbered free beds to an owner's hostel.
func (s *InventoryService) AddRoom(ctx context.Context, ownerID, hostelID uuid.UUID, req AddRoomRequest) (*RoomDTO, error) {
	hostel, err := s.repo.FindHostelByID(ctx, hostelID)
	if err != nil {
		return nil, err
	}
	if !hostel.IsOwnedBy(ownerID) {
		return nil, domain.NewAuthorizationError("actor does not own the referenced hostel")
	}

	room, err := inventory.NewRoom(hostelID, req.Number, inventory.RoomType(req.RoomType), req.BedCount)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to save room: %w", err)
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, hostelID)
	}

	return &RoomDTO{
		ID:            room.ID(),
		HostelID:      room.HostelID(),
		Number:        room.Number(),
		RoomType:      string(room.RoomType()),
		TotalBeds:     room.TotalBeds(),
		OccupiedCount: room.OccupiedCount(),
	}, nil
}

// GetAvailability returns the hostel's free-bed summary, served from cache
// when fresh.
func (s *InventoryService) GetAvailability(ctx context.Context, hostelID uuid.UUID) (*AvailabilityDTO, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, hostelID); ok {
			return cached, nil
		}
	}

	if _, err := s.repo.FindHostelByID(ctx, hostelID); err != nil {
		return nil, err
	}
	rooms, err := s.repo.ListRoomsWithBeds(ctx, hostelID)
	if err != nil {
		return nil, err
	}

	summary := &AvailabilityDTO{
		HostelID: hostelID,
		ByType:   make(map[string]int),
	}
	for _, room := range rooms {
		free := room.FreeBeds()
		summary.TotalFree += free
		summary.ByType[string(room.RoomType())] += free
		summary.Rooms = append(summary.Rooms, RoomAvailabilityDTO{
			RoomID:    room.ID(),
			Number:    room.Number(),
			RoomType:  string(room.RoomType()),
			TotalBeds: room.TotalBeds(),
			FreeBeds:  free,
		})
	}

	if s.cache != nil {
		s.cache.Set(ctx, hostelID, summary)
	}
	return summary, nil
}

func toHostelDTO(h *inventory.Hostel) HostelDTO {
	return HostelDTO{
		ID:      h.ID(),
		OwnerID: h.OwnerID(),
		Name:    h.Name(),
		City:    h.City(),
		Address: h.Address(),
	}
}
