package models

import (
	"time"
)

// Purchase statuses
const (
	PurchaseStatusPendingRegistration = "pending_registration"
	PurchaseStatusActive              = "active"
)

// Purchase records one payment for one course tier.
// Created by the webhook handler (or recovered from the gateway when the
// webhook was lost) with status pending_registration; transitions to active
// exactly once, when a matching user registers.
type Purchase struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Email    string `json:"email" gorm:"not null;size:255;index"` // stored lowercased
	UserID   string `json:"user_id" gorm:"size:36;index"`         // empty until activation
	CourseID string `json:"course_id" gorm:"not null;size:100;index"`

	// PaymentReference is the gateway checkout session id. The unique index
	// is what makes webhook redelivery and concurrent recovery safe.
	PaymentReference string `json:"payment_reference" gorm:"not null;size:100;uniqueIndex"`

	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency" gorm:"size:10"`
	Status      string `json:"status" gorm:"not null;size:30;index"`

	BonusEligible  bool      `json:"bonus_eligible"`
	BonusExpiresAt time.Time `json:"bonus_expires_at"`
	BonusGranted   bool      `json:"bonus_granted"`

	PurchasedAt time.Time  `json:"purchased_at"`
	ActivatedAt *time.Time `json:"activated_at"`
}

// TableName sets the table name
func (Purchase) TableName() string {
	return "purchases"
}

// BonusWindowOpen reports whether the bonus-eligibility window is still open
// at the given instant. The boundary is inclusive: now == BonusExpiresAt
// still counts as eligible.
func (p *Purchase) BonusWindowOpen(now time.Time) bool {
	return !now.After(p.BonusExpiresAt)
}
