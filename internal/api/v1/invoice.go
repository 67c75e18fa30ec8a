package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/milkround/milkround/internal/api/dto"
	ierr "github.com/milkround/milkround/internal/errors"
	"github.com/milkround/milkround/internal/logger"
	"github.com/milkround/milkround/internal/service"
	"github.com/milkround/milkround/internal/types"
)

type InvoiceHandler struct {
	service service.BillingService
	log     *logger.Logger
}

func NewInvoiceHandler(service service.BillingService, log *logger.Logger) *InvoiceHandler {
	return &InvoiceHandler{service: service, log: log}
}

// Aggregate folds the recipient's unbilled deliveries into their open
// invoice
func (h *InvoiceHandler) Aggregate(c *gin.Context) {
	var req dto.AggregateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorw("failed to bind json", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetOrCreateOpenInvoice(c.Request.Context(), req.RecipientID)
	if err != nil {
		h.log.Errorw("failed to aggregate open invoice", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// AggregateForPeriod creates a period-scoped invoice
func (h *InvoiceHandler) AggregateForPeriod(c *gin.Context) {
	var req dto.AggregateForPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorw("failed to bind json", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	periodStart, err := types.ParseDate(req.PeriodStart)
	if err != nil {
		c.Error(err)
		return
	}
	periodEnd, err := types.ParseDate(req.PeriodEnd)
	if err != nil {
		c.Error(err)
		return
	}

	resp, err := h.service.AggregateForPeriod(c.Request.Context(), req.RecipientID, periodStart, periodEnd)
	if err != nil {
		h.log.Errorw("failed to aggregate period invoice", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetInvoice returns one invoice with its line items
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Invoice ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.log.Errorw("failed to get invoice", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListInvoices returns invoices matching the query filter
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	var filter types.InvoiceFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListInvoices(c.Request.Context(), &filter)
	if err != nil {
		h.log.Errorw("failed to list invoices", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
