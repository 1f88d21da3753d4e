package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/lolinsolito-lab/VoxLux-sub002/internal/database"
	"github.com/lolinsolito-lab/VoxLux-sub002/internal/models"
	"github.com/lolinsolito-lab/VoxLux-sub002/internal/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListBonuses returns the bonus catalog, including hidden entries
// GET /api/admin/bonuses
func (h *Handler) ListBonuses(c *gin.Context) {
	bonuses, err := h.store.ListBonusProducts(true)
	if err != nil {
		response.ErrorJSON(c, http.StatusInternalServerError, "Failed to list bonuses: "+err.Error())
		return
	}
	response.SuccessJSON(c, bonuses)
}

// CreateBonusRequest represents a new catalog entry.
type CreateBonusRequest struct {
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description"`
	DeliveryType    string `json:"delivery_type"`
	ContentURL      string `json:"content_url"`
	Purchasable     bool   `json:"purchasable"`
	PriceCents      int64  `json:"price_cents"`
	StripePriceID   string `json:"stripe_price_id"`
	ApplicableTiers string `json:"applicable_tiers"`
}

// CreateBonus adds a catalog entry
// POST /api/admin/bonuses
func (h *Handler) CreateBonus(c *gin.Context) {
	var req CreateBonusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	if req.DeliveryType == "" {
		req.DeliveryType = models.BonusDeliveryDownload
	}

	bonus := &models.BonusProduct{
		Title:           req.Title,
		Description:     req.Description,
		DeliveryType:    req.DeliveryType,
		ContentURL:      req.ContentURL,
		Purchasable:     req.Purchasable,
		PriceCents:      req.PriceCents,
		StripePriceID:   req.StripePriceID,
		ApplicableTiers: req.ApplicableTiers,
		Active:          true,
	}

	if err := h.store.CreateBonusProduct(bonus); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Failed to create bonus: "+err.Error())
		return
	}

	response.JSON(c, http.StatusCreated, response.Success(bonus))
}

// UpdateBonusRequest represents a partial catalog update.
type UpdateBonusRequest struct {
	Title           string `json:"title"`
	Description     *string `json:"description"`
	DeliveryType    string `json:"delivery_type"`
	ContentURL      *string `json:"content_url"`
	Purchasable     *bool  `json:"purchasable"`
	PriceCents      *int64 `json:"price_cents"`
	StripePriceID   *string `json:"stripe_price_id"`
	ApplicableTiers *string `json:"applicable_tiers"`
	Active          *bool  `json:"active"`
}

// UpdateBonus applies a partial update to a catalog entry
// PUT /api/admin/bonuses/:id
func (h *Handler) UpdateBonus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateBonusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.DeliveryType != "" {
		updates["delivery_type"] = req.DeliveryType
	}
	if req.ContentURL != nil {
		updates["content_url"] = *req.ContentURL
	}
	if req.Purchasable != nil {
		updates["purchasable"] = *req.Purchasable
	}
	if req.PriceCents != nil {
		updates["price_cents"] = *req.PriceCents
	}
	if req.StripePriceID != nil {
		updates["stripe_price_id"] = *req.StripePriceID
	}
	if req.ApplicableTiers != nil {
		updates["applicable_tiers"] = *req.ApplicableTiers
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if err := h.store.UpdateBonusProduct(id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.ErrorJSON(c, http.StatusNotFound, "Bonus not found")
			return
		}
		response.ErrorJSON(c, http.StatusBadRequest, "Failed to update bonus: "+err.Error())
		return
	}

	response.SuccessJSON(c, nil)
}

// DeleteBonus hides a catalog entry (soft delete)
// DELETE /api/admin/bonuses/:id
func (h *Handler) DeleteBonus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.store.DeactivateBonusProduct(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.ErrorJSON(c, http.StatusNotFound, "Bonus not found")
			return
		}
		response.ErrorJSON(c, http.StatusBadRequest, "Failed to delete bonus: "+err.Error())
		return
	}

	response.SuccessJSON(c, nil)
}

// AssignBonusRequest represents a manual grant.
type AssignBonusRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// AssignBonus grants a bonus to a user outside the purchase flow
// POST /api/admin/bonuses/:id/assign
func (h *Handler) AssignBonus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req AssignBonusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "userId is required")
		return
	}

	outcome, err := h.bonuses.AssignGrant(req.UserID, id, "admin")
	if err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Failed to assign bonus: "+err.Error())
		return
	}

	if outcome == database.GrantAlreadyExists {
		response.SuccessJSON(c, gin.H{"granted": false, "reason": "already granted"})
		return
	}
	response.SuccessJSON(c, gin.H{"granted": true})
}

// parseIDParam reads the :id path segment; writes the 400 itself.
func parseIDParam(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return uint(id), true
}
