package models

// Analytics event types
const (
	EventCoursePurchase    = "course_purchase"
	EventBonusPurchase     = "bonus_purchase"
	EventPurchaseRecovered = "purchase_recovered"
)

// AnalyticsEvent is an append-only sales/funnel record written alongside
// fulfillment. Writes are best-effort and never fail the surrounding flow.
type AnalyticsEvent struct {
	BaseModel

	EventType   string `json:"event_type" gorm:"not null;size:50;index"`
	Email       string `json:"email" gorm:"size:255"`
	CourseID    string `json:"course_id" gorm:"size:100"`
	AmountCents int64  `json:"amount_cents"`
	Metadata    string `json:"metadata" gorm:"type:text"` // JSON string
}

// TableName sets the table name
func (AnalyticsEvent) TableName() string {
	return "analytics_events"
}
