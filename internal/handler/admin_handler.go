package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gymclass/service-booking/internal/application"
	"github.com/gymclass/service-booking/internal/platform/auth"
	"github.com/gymclass/service-booking/internal/platform/middleware"
	"github.com/gymclass/service-booking/internal/platform/response"
)

// AdminBookingHandler handles admin HTTP requests for class sessions and bookings.
type AdminBookingHandler struct {
	service *application.BookingService
}

// NewAdminBookingHandler creates a new AdminBookingHandler.
func NewAdminBookingHandler(service *application.BookingService) *AdminBookingHandler {
	return &AdminBookingHandler{service: service}
}

// RegisterRoutes registers admin booking routes.
func (h *AdminBookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, adminRole)
	{
		admin.POST("/classes/:classId/complete", h.CompleteClass)
		admin.POST("/classes/:classId/undo-complete", h.UndoCompleteClass)
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/stats/bookings", h.BookingStats)
	}
}

// CompleteClass handles POST /api/v1/admin/classes/:classId/complete.
func (h *AdminBookingHandler) CompleteClass(c *gin.Context) {
	h.changeSession(c, h.service.CompleteClass)
}

// UndoCompleteClass handles POST /api/v1/admin/classes/:classId/undo-complete.
func (h *AdminBookingHandler) UndoCompleteClass(c *gin.Context) {
	h.changeSession(c, h.service.UndoCompleteClass)
}

func (h *AdminBookingHandler) changeSession(
	c *gin.Context,
	apply func(ctx context.Context, principal auth.Principal, classID uuid.UUID, date string) (*application.ClassSessionResult, error),
) {
	classID, err := uuid.Parse(c.Param("classId"))
	if err != nil {
		response.BadRequest(c, "invalid class ID")
		return
	}

	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.ClassSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := apply(c.Request.Context(), principal, classID, req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListBookings handles GET /api/v1/admin/bookings.
func (h *AdminBookingHandler) ListBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	bookings, total, err := h.service.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, bookings, total, page, limit)
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminBookingHandler) BookingStats(c *gin.Context) {
	stats, err := h.service.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
