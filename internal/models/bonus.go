package models

// Bonus delivery mechanisms
const (
	BonusDeliveryDownload = "download"
	BonusDeliveryUnlock   = "unlock"
)

// BonusProduct is a catalog entry for a downloadable or unlockable asset.
// Admins edit the catalog; rows are soft-deleted via the Active flag and
// never hard-deleted from the primary flow.
type BonusProduct struct {
	BaseModel

	Title        string `json:"title" gorm:"not null;size:255"`
	Description  string `json:"description" gorm:"type:text"`
	DeliveryType string `json:"delivery_type" gorm:"size:20;default:'download'"`
	ContentURL   string `json:"content_url" gorm:"type:varchar(500)"`

	// Purchasable marks bonuses that can also be bought standalone as an
	// upsell, priced through the gateway price id below.
	Purchasable   bool   `json:"purchasable"`
	PriceCents    int64  `json:"price_cents"`
	StripePriceID string `json:"stripe_price_id" gorm:"size:100;index"`

	// ApplicableTiers is a comma-separated list of course tiers whose
	// purchase unlocks this bonus. Empty means no automatic grants.
	ApplicableTiers string `json:"applicable_tiers" gorm:"size:255"`

	Active bool `json:"active" gorm:"default:true;index"`

	// Aggregate counters maintained by the bonus-purchase path.
	SalesCount   int64 `json:"sales_count"`
	RevenueCents int64 `json:"revenue_cents"`
}

// TableName sets the table name
func (BonusProduct) TableName() string {
	return "bonus_products"
}

// AppliesToTier reports whether a course tier unlocks this bonus.
func (b *BonusProduct) AppliesToTier(tier string) bool {
	return TierListContains(b.ApplicableTiers, tier)
}

// BonusGrant associates a user with a bonus product and the purchase that
// unlocked it. At most one grant exists per (user, bonus); the composite
// unique index turns duplicate attempts into no-ops at the store layer.
type BonusGrant struct {
	BaseModel

	UserID  string `json:"user_id" gorm:"not null;size:36;uniqueIndex:idx_user_bonus"`
	BonusID uint   `json:"bonus_id" gorm:"not null;uniqueIndex:idx_user_bonus"`

	// PurchaseID is empty for admin-assigned grants.
	PurchaseID string `json:"purchase_id" gorm:"size:36;index"`

	// GrantedBy is empty for purchase-triggered grants and carries the admin
	// identity for manual assignments.
	GrantedBy string `json:"granted_by" gorm:"size:100"`

	PurchaseAmountCents int64 `json:"purchase_amount_cents"`
}

// TableName sets the table name
func (BonusGrant) TableName() string {
	return "user_bonuses"
}
