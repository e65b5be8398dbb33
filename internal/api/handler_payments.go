package api

import (
	"github.com/gin-gonic/gin"

	"hotel-ops-backend/internal/service"
)

// ListPayments handles GET /api/payments.
func (h *Handler) ListPayments(c *gin.Context) {
	var filter service.PaymentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		badRequest(c, err)
		return
	}
	replyPaged(c, h.payments.List(c.Request.Context(), filter))
}

// GetPayment handles GET /api/payments/:id.
func (h *Handler) GetPayment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	reply(c, h.payments.GetByID(c.Request.Context(), id))
}

// CreatePayment handles POST /api/payments.
func (h *Handler) CreatePayment(c *gin.Context) {
	var in service.PaymentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	reply(c, h.payments.Create(c.Request.Context(), in))
}

// UpdatePayment handles PUT /api/payments/:id.
func (h *Handler) UpdatePayment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in service.PaymentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	reply(c, h.payments.Update(c.Request.Context(), id, in))
}

// DeletePayment handles DELETE /api/payments/:id.
func (h *Handler) DeletePayment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	reply(c, h.payments.Delete(c.Request.Context(), id))
}
