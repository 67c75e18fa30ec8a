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

type DeliveryHandler struct {
	service service.LedgerService
	log     *logger.Logger
}

func NewDeliveryHandler(service service.LedgerService, log *logger.Logger) *DeliveryHandler {
	return &DeliveryHandler{service: service, log: log}
}

// RecordOutcome upserts the delivery outcome for one (recipient, date, kind)
func (h *DeliveryHandler) RecordOutcome(c *gin.Context) {
	var req dto.RecordDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorw("failed to bind json", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.RecordOutcome(c.Request.Context(), &req)
	if err != nil {
		h.log.Errorw("failed to record delivery outcome", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetEntry returns one delivery entry
func (h *DeliveryHandler) GetEntry(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Delivery entry ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetEntry(c.Request.Context(), id)
	if err != nil {
		h.log.Errorw("failed to get delivery entry", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListEntries returns delivery entries matching the query filter
func (h *DeliveryHandler) ListEntries(c *gin.Context) {
	var filter types.DeliveryEntryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListEntries(c.Request.Context(), &filter)
	if err != nil {
		h.log.Errorw("failed to list delivery entries", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
