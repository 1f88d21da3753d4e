package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/lolinsolito-lab/VoxLux-sub002/internal/models"
	"github.com/lolinsolito-lab/VoxLux-sub002/internal/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListPromoCodes returns all promo codes
// GET /api/admin/promo-codes
func (h *Handler) ListPromoCodes(c *gin.Context) {
	promos, err := h.store.ListPromoCodes()
	if err != nil {
		response.ErrorJSON(c, http.StatusInternalServerError, "Failed to list promo codes: "+err.Error())
		return
	}
	response.SuccessJSON(c, promos)
}

// CreatePromoCodeRequest represents a new discount definition.
type CreatePromoCodeRequest struct {
	Code            string    `json:"code" binding:"required"`
	DiscountType    string    `json:"discount_type" binding:"required,oneof=percentage fixed"`
	DiscountValue   int64     `json:"discount_value" binding:"required,gt=0"`
	ApplicableTiers string    `json:"applicable_tiers"`
	MaxUses         int64     `json:"max_uses"`
	ValidFrom       time.Time `json:"valid_from"`
	ValidUntil      time.Time `json:"valid_until"`
}

// CreatePromoCode adds a discount definition
// POST /api/admin/promo-codes
func (h *Handler) CreatePromoCode(c *gin.Context) {
	var req CreatePromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	if req.DiscountType == models.DiscountTypePercentage && req.DiscountValue > 100 {
		response.ErrorJSON(c, http.StatusBadRequest, "Percentage discount cannot exceed 100")
		return
	}

	promo := &models.PromoCode{
		Code:            req.Code,
		DiscountType:    req.DiscountType,
		DiscountValue:   req.DiscountValue,
		ApplicableTiers: req.ApplicableTiers,
		MaxUses:         req.MaxUses,
		ValidFrom:       req.ValidFrom,
		ValidUntil:      req.ValidUntil,
		Active:          true,
	}

	if err := h.store.CreatePromoCode(promo); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Failed to create promo code: "+err.Error())
		return
	}

	response.JSON(c, http.StatusCreated, response.Success(promo))
}

// UpdatePromoCodeRequest represents a partial discount update.
type UpdatePromoCodeRequest struct {
	Code            string     `json:"code"`
	DiscountType    string     `json:"discount_type"`
	DiscountValue   *int64     `json:"discount_value"`
	ApplicableTiers *string    `json:"applicable_tiers"`
	MaxUses         *int64     `json:"max_uses"`
	ValidFrom       *time.Time `json:"valid_from"`
	ValidUntil      *time.Time `json:"valid_until"`
	Active          *bool      `json:"active"`
}

// UpdatePromoCode applies a partial update to a discount
// PUT /api/admin/promo-codes/:id
func (h *Handler) UpdatePromoCode(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdatePromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	updates := make(map[string]interface{})
	if req.Code != "" {
		updates["code"] = req.Code
	}
	if req.DiscountType != "" {
		updates["discount_type"] = req.DiscountType
	}
	if req.DiscountValue != nil {
		updates["discount_value"] = *req.DiscountValue
	}
	if req.ApplicableTiers != nil {
		updates["applicable_tiers"] = *req.ApplicableTiers
	}
	if req.MaxUses != nil {
		updates["max_uses"] = *req.MaxUses
	}
	if req.ValidFrom != nil {
		updates["valid_from"] = *req.ValidFrom
	}
	if req.ValidUntil != nil {
		updates["valid_until"] = *req.ValidUntil
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if err := h.store.UpdatePromoCode(id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.ErrorJSON(c, http.StatusNotFound, "Promo code not found")
			return
		}
		response.ErrorJSON(c, http.StatusBadRequest, "Failed to update promo code: "+err.Error())
		return
	}

	response.SuccessJSON(c, nil)
}

// DeletePromoCode removes a discount
// DELETE /api/admin/promo-codes/:id
func (h *Handler) DeletePromoCode(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.store.DeletePromoCode(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.ErrorJSON(c, http.StatusNotFound, "Promo code not found")
			return
		}
		response.ErrorJSON(c, http.StatusBadRequest, "Failed to delete promo code: "+err.Error())
		return
	}

	response.SuccessJSON(c, nil)
}
