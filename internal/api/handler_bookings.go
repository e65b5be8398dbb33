package api

import (
	"github.com/gin-gonic/gin"

	"hotel-ops-backend/internal/service"
)

// ListBookings handles GET /api/bookings.
func (h *Handler) ListBookings(c *gin.Context) {
	var filter service.BookingFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		badRequest(c, err)
		return
	}
	replyPaged(c, h.bookings.List(c.Request.Context(), filter))
}

// GetBooking handles GET /api/bookings/:id.
func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	reply(c, h.bookings.GetByID(c.Request.Context(), id))
}

// CreateBooking handles POST /api/bookings.
func (h *Handler) CreateBooking(c *gin.Context) {
	var in service.BookingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	reply(c, h.bookings.Create(c.Request.Context(), in))
}

// UpdateBooking handles PUT /api/bookings/:id.
func (h *Handler) UpdateBooking(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in service.BookingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	reply(c, h.bookings.Update(c.Request.Context(), id, in))
}

// DeleteBooking handles DELETE /api/bookings/:id.
func (h *Handler) DeleteBooking(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	reply(c, h.bookings.Delete(c.Request.Context(), id))
}
