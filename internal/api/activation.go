package api

import (
	"net/http"

	"github.com/lolinsolito-lab/VoxLux-sub002/internal/response"
	"github.com/lolinsolito-lab/VoxLux-sub002/pkg/logging"

	"github.com/gin-gonic/gin"
)

// ActivatePurchasesRequest represents the post-signup activation call.
type ActivatePurchasesRequest struct {
	Email  string `json:"email" binding:"required,email"`
	UserID string `json:"userId" binding:"required"`
}

// ActivatePurchases binds pending purchases to a freshly registered user,
// recovering missed webhook deliveries from the gateway when needed
// POST /api/purchases/activate
//
// {activated: 0} is a legitimate response, not an error.
func (h *Handler) ActivatePurchases(c *gin.Context) {
	var req ActivatePurchasesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Envelope(c, http.StatusBadRequest, "email and userId are required")
		return
	}

	result, err := h.activation.Activate(c.Request.Context(), req.Email, req.UserID)
	if err != nil {
		logging.Errorf("Activation failed for %s: %v", req.Email, err)
		response.Envelope(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, result)
}
