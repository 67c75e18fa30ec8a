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

type AdjustmentHandler struct {
	service service.AdjustmentService
	log     *logger.Logger
}

func NewAdjustmentHandler(service service.AdjustmentService, log *logger.Logger) *AdjustmentHandler {
	return &AdjustmentHandler{service: service, log: log}
}

// Submit files a new adjustment request
func (h *AdjustmentHandler) Submit(c *gin.Context) {
	var req dto.SubmitAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorw("failed to bind json", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Submit(c.Request.Context(), &req)
	if err != nil {
		h.log.Errorw("failed to submit adjustment request", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Approve finalizes a pending request as approved
func (h *AdjustmentHandler) Approve(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Adjustment request ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Approve(c.Request.Context(), id)
	if err != nil {
		h.log.Errorw("failed to approve adjustment request", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Reject finalizes a pending request as rejected
func (h *AdjustmentHandler) Reject(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Adjustment request ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	var req dto.RejectAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Reject(c.Request.Context(), id, &req)
	if err != nil {
		h.log.Errorw("failed to reject adjustment request", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetRequest returns one adjustment request
func (h *AdjustmentHandler) GetRequest(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Adjustment request ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetRequest(c.Request.Context(), id)
	if err != nil {
		h.log.Errorw("failed to get adjustment request", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListRequests returns adjustment requests matching the query filter
func (h *AdjustmentHandler) ListRequests(c *gin.Context) {
	var filter types.AdjustmentRequestFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListRequests(c.Request.Context(), &filter)
	if err != nil {
		h.log.Errorw("failed to list adjustment requests", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
