package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hostelhub/service-booking/internal/application"
	"github.com/hostelhub/service-booking/internal/auth"
	"github.com/hostelhub/service-booking/internal/domain/booking"
	"github.com/hostelhub/service-booking/internal/middleware"
	"github.com/hostelhub/service-booking/internal/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW)
	{
		bookings.POST("", middleware.RequireRole(auth.RoleStudent), h.SubmitBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/approve", middleware.RequireRole(auth.RoleOwner), h.ApproveBooking)
		bookings.POST("/:id/reject", middleware.RequireRole(auth.RoleOwner), h.RejectBooking)
		bookings.POST("/:id/confirm", middleware.RequireRole(auth.RoleStaff, auth.RoleAdmin), h.ConfirmBooking)
		bookings.POST("/:id/allocate", middleware.RequireRole(auth.RoleOwner), h.AllocateBooking)
		bookings.POST("/:id/cancel", h.CancelBooking)
	}

	hostels := r.Group("/api/v1/hostels")
	hostels.Use(authMW)
	{
		hostels.GET("/:id/bookings", middleware.RequireRole(auth.RoleOwner), h.ListHostelBookings)
	}
}

// SubmitBooking handles POST /api/v1/bookings.
func (h *BookingHandler) SubmitBooking(c *gin.Context) {
	studentID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.SubmitBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Submit(c.Request.Context(), studentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListBookings handles GET /api/v1/bookings. Students see their own requests.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	page, limit := parsePagination(c)

	result, err := h.service.GetStudentBookings(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// ListHostelBookings handles GET /api/v1/hostels/:id/bookings with an
// optional status filter.
func (h *BookingHandler) ListHostelBookings(c *gin.Context) {
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

	var status booking.Status
	if raw := c.Query("status"); raw != "" {
		status, err = booking.ParseStatus(raw)
		if err != nil {
			response.BadRequest(c, "invalid status filter")
			return
		}
	}

	page, limit := parsePagination(c)

	result, err := h.service.GetHostelBookings(c.Request.Context(), hostelID, ownerID, status, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ApproveBooking handles POST /api/v1/bookings/:id/approve.
func (h *BookingHandler) ApproveBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.Approve(c.Request.Context(), bookingID, ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// RejectBooking handles POST /api/v1/bookings/:id/reject.
func (h *BookingHandler) RejectBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&body)

	result, err := h.service.Reject(c.Request.Context(), bookingID, ownerID, body.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ConfirmBooking handles POST /api/v1/bookings/:id/confirm.
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.service.Confirm(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// AllocateBooking handles POST /api/v1/bookings/:id/allocate.
func (h *BookingHandler) AllocateBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.AllocateManually(c.Request.Context(), bookingID, ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	role, ok := middleware.GetUserRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body struct {
		Note string `json:"note"`
	}
	_ = c.ShouldBindJSON(&body)

	result, err := h.service.Cancel(c.Request.Context(), bookingID, userID, role, body.Note)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}
