package api

import (
	"errors"
	"net/http"

	"github.com/lolinsolito-lab/VoxLux-sub002/internal/response"
	"github.com/lolinsolito-lab/VoxLux-sub002/internal/services"
	"github.com/lolinsolito-lab/VoxLux-sub002/pkg/logging"

	"github.com/gin-gonic/gin"
)

// CreateCheckoutSessionRequest represents a checkout request from the
// landing page.
type CreateCheckoutSessionRequest struct {
	PriceID   string `json:"priceId" binding:"required"`
	CourseID  string `json:"courseId" binding:"required"`
	UserEmail string `json:"userEmail"`
	UpsellIDs []uint `json:"upsellIds"`
	PromoCode string `json:"promoCode"`
	Currency  string `json:"currency"`
}

// CreateCheckoutSession creates a hosted payment session
// POST /api/checkout/session
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	var req CreateCheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Envelope(c, http.StatusBadRequest, "priceId and courseId are required")
		return
	}

	session, err := h.checkout.BuildSession(c.Request.Context(), services.CheckoutRequest{
		PriceID:   req.PriceID,
		CourseID:  req.CourseID,
		UserEmail: req.UserEmail,
		UpsellIDs: req.UpsellIDs,
		PromoCode: req.PromoCode,
		Currency:  req.Currency,
	})
	if err != nil {
		if errors.Is(err, services.ErrMissingCheckoutFields) {
			response.Envelope(c, http.StatusBadRequest, err.Error())
			return
		}
		logging.Errorf("Checkout session creation failed: %v", err)
		response.Envelope(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionId": session.ID,
		"url":       session.URL,
	})
}
