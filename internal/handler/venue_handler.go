package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/holidaze/service-booking/internal/application"
	"github.com/holidaze/service-booking/internal/common/auth"
	"github.com/holidaze/service-booking/internal/common/middleware"
	"github.com/holidaze/service-booking/internal/common/response"
)

// VenueHandler handles venue management and availability requests.
type VenueHandler struct {
	venues   *application.VenueService
	bookings *application.BookingService
}

// NewVenueHandler creates a new VenueHandler.
func NewVenueHandler(venues *application.VenueService, bookings *application.BookingService) *VenueHandler {
	RegisterValidators()
	return &VenueHandler{venues: venues, bookings: bookings}
}

// RegisterRoutes registers venue routes. Reads are public; the availability
// check attaches the caller when a token is present.
func (h *VenueHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	managerOnly := middleware.RequireRole(auth.RoleVenueManager)

	venues := r.Group("/api/v1/venues")
	{
		venues.GET("/:id", h.GetVenue)
		venues.GET("/:id/availability", h.GetAvailability)
		venues.GET("/:id/availability/check", middleware.OptionalAuthMiddleware(jwtManager), h.CheckAvailability)

		venues.POST("", authMW, managerOnly, h.CreateVenue)
		venues.GET("/mine", authMW, managerOnly, h.ListMyVenues)
		venues.PUT("/:id", authMW, managerOnly, h.UpdateVenue)
		venues.DELETE("/:id", authMW, managerOnly, h.ArchiveVenue)
		venues.GET("/:id/bookings", authMW, managerOnly, h.ListVenueBookings)
	}
}

// CreateVenue handles POST /api/v1/venues.
func (h *VenueHandler) CreateVenue(c *gin.Context) {
	managerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.CreateVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.venues.CreateVenue(c.Request.Context(), managerID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// GetVenue handles GET /api/v1/venues/:id.
func (h *VenueHandler) GetVenue(c *gin.Context) {
	venueID, ok := venueIDParam(c)
	if !ok {
		return
	}

	result, err := h.venues.GetVenue(c.Request.Context(), venueID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListMyVenues handles GET /api/v1/venues/mine.
func (h *VenueHandler) ListMyVenues(c *gin.Context) {
	managerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := h.venues.GetMyVenues(c.Request.Context(), managerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateVenue handles PUT /api/v1/venues/:id.
func (h *VenueHandler) UpdateVenue(c *gin.Context) {
	venueID, ok := venueIDParam(c)
	if !ok {
		return
	}
	managerID, _ := middleware.GetUserID(c)

	var req application.UpdateVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.venues.UpdateVenue(c.Request.Context(), managerID, venueID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ArchiveVenue handles DELETE /api/v1/venues/:id.
func (h *VenueHandler) ArchiveVenue(c *gin.Context) {
	venueID, ok := venueIDParam(c)
	if !ok {
		return
	}
	managerID, _ := middleware.GetUserID(c)

	if err := h.venues.ArchiveVenue(c.Request.Context(), managerID, venueID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// GetAvailability handles GET /api/v1/venues/:id/availability.
func (h *VenueHandler) GetAvailability(c *gin.Context) {
	venueID, ok := venueIDParam(c)
	if !ok {
		return
	}

	var q application.AvailabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.bookings.GetAvailability(c.Request.Context(), venueID, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CheckAvailability handles GET /api/v1/venues/:id/availability/check. A
// rejected candidate is still a 200; the decision carries the reason.
func (h *VenueHandler) CheckAvailability(c *gin.Context) {
	venueID, ok := venueIDParam(c)
	if !ok {
		return
	}

	var req application.CandidateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	_, authenticated := middleware.GetUserID(c)
	result, err := h.bookings.CheckAvailability(c.Request.Context(), venueID, authenticated, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListVenueBookings handles GET /api/v1/venues/:id/bookings.
func (h *VenueHandler) ListVenueBookings(c *gin.Context) {
	venueID, ok := venueIDParam(c)
	if !ok {
		return
	}
	managerID, _ := middleware.GetUserID(c)
	page, limit := parsePagination(c)

	result, err := h.bookings.GetVenueBookings(c.Request.Context(), venueID, managerID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

func venueIDParam(c *gin.Context) (uuid.UUID, bool) {
	venueID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid venue ID")
		return uuid.Nil, false
	}
	return venueID, true
}
