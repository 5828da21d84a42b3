package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/hostelhub/service-booking/internal/application"
	"github.com/hostelhub/service-booking/internal/auth"
	"github.com/hostelhub/service-booking/internal/middleware"
	"github.com/hostelhub/service-booking/internal/response"
)

// AdminHandler handles administrative read endpoints.
type AdminHandler struct {
	service *application.BookingService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service *application.BookingService) *AdminHandler {
	return &AdminHandler{service: service}
}

// RegisterRoutes registers all admin routes on the given router group.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager))
	admin.Use(middleware.RequireRole(auth.RoleStaff, auth.RoleAdmin))
	{
		admin.GET("/bookings", h.ListAllBookings)
		admin.GET("/stats", h.GetStats)
	}
}

// ListAllBookings handles GET /api/v1/admin/bookings.
func (h *AdminHandler) ListAllBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	items, total, err := h.service.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, items, total, page, limit)
}

// GetStats handles GET /api/v1/admin/stats.
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.service.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
