package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hostelhub/service-booking/internal/application"
	"github.com/hostelhub/service-booking/internal/auth"
	"github.com/hostelhub/service-booking/internal/middleware"
	"github.com/hostelhub/service-booking/internal/response"
)

// HostelHandler handles HTTP requests for hostel inventory management.
type HostelHandler struct {
	service *application.InventoryService
}

// NewHostelHandler creates a new HostelHandler.
func NewHostelHandler(service *application.InventoryService) *HostelHandler {
	return &HostelHandler{service: service}
}

// RegisterRoutes registers all hostel routes on the given router group.
func (h *HostelHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	hostels := r.Group("/api/v1/hostels")
	hostels.Use(authMW)
	{
		hostels.POST("", middleware.RequireRole(auth.RoleOwner), h.CreateHostel)
		hostels.GET("", middleware.RequireRole(auth.RoleOwner), h.ListMyHostels)
		hostels.POST("/:id/rooms", middleware.RequireRole(auth.RoleOwner), h.AddRoom)
		hostels.GET("/:id/availability", h.GetAvailability)
	}
}

// CreateHostel handles POST /api/v1/hostels.
func (h *HostelHandler) CreateHostel(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateHostelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateHostel(c.Request.Context(), ownerID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListMyHostels handles GET /api/v1/hostels.
func (h *HostelHandler) ListMyHostels(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.ListOwnerHostels(c.Request.Context(), ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// AddRoom handles POST /api/v1/hostels/:id/rooms.
func (h *HostelHandler) AddRoom(c *gin.Context) {
	hostelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid hostel ID")
		return
	}

	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.AddRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.AddRoom(c.Request.Context(), ownerID, hostelID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// GetAvailability handles GET /api/v1/hostels/:id/availability.
func (h *HostelHandler) GetAvailability(c *gin.Context) {
	hostelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid hostel ID")
		return
	}

	result, err := h.service.GetAvailability(c.Request.Context(), hostelID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
