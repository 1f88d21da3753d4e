package models

import (
	"time"
)

// Discount types
const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

// PromoCode is a discount definition redeemed at checkout time. Validation
// happens in the checkout flow, not in the store itself.
type PromoCode struct {
	BaseModel

	// Code is stored upper-cased; lookups normalize the input so matching is
	// case-insensitive.
	Code string `json:"code" gorm:"not null;size:50;uniqueIndex"`

	DiscountType string `json:"discount_type" gorm:"not null;size:20"`

	// DiscountValue is whole percent for percentage codes and cents for
	// fixed codes.
	DiscountValue int64 `json:"discount_value" gorm:"not null"`

	// ApplicableTiers restricts the code to specific course tiers.
	// Empty means the code applies to all tiers.
	ApplicableTiers string `json:"applicable_tiers" gorm:"size:255"`

	MaxUses   int64 `json:"max_uses"` // 0 = unlimited
	UsedCount int64 `json:"used_count"`

	ValidFrom  time.Time `json:"valid_from"`
	ValidUntil time.Time `json:"valid_until"`

	Active bool `json:"active" gorm:"default:true"`
}

// TableName sets the table name
func (PromoCode) TableName() string {
	return "promo_codes"
}

// Redeemable reports whether the code can be applied to the given tier at
// the given instant: active, inside its validity window, under its usage
// cap, and tier-applicable.
func (p *PromoCode) Redeemable(now time.Time, tier string) bool {
	if !p.Active {
		return false
	}
	if !p.ValidFrom.IsZero() && now.Before(p.ValidFrom) {
		return false
	}
	if !p.ValidUntil.IsZero() && now.After(p.ValidUntil) {
		return false
	}
	if p.MaxUses > 0 && p.UsedCount >= p.MaxUses {
		return false
	}
	if p.ApplicableTiers != "" && !TierListContains(p.ApplicableTiers, tier) {
		return false
	}
	return true
}
