package models

// Ticket statuses
const (
	TicketStatusOpen       = "open"
	TicketStatusInProgress = "in_progress"
	TicketStatusResolved   = "resolved"
	TicketStatusClosed     = "closed"
)

// Message author roles
const (
	MessageAuthorUser  = "user"
	MessageAuthorAdmin = "admin"
)

// SupportTicket is owned by a user and carries a thread of messages.
// Lifecycle: open -> in_progress (on first admin reply) -> resolved/closed
// (explicit admin action).
type SupportTicket struct {
	BaseModel

	UserID  string `json:"user_id" gorm:"not null;size:36;index"`
	Subject string `json:"subject" gorm:"not null;size:255"`
	Status  string `json:"status" gorm:"not null;size:20;default:'open';index"`

	Messages []SupportMessage `json:"messages,omitempty" gorm:"foreignKey:TicketID"`
}

// TableName sets the table name
func (SupportTicket) TableName() string {
	return "support_tickets"
}

// SupportMessage is one entry in a ticket thread, tagged admin or user.
type SupportMessage struct {
	BaseModel

	TicketID   uint   `json:"ticket_id" gorm:"not null;index"`
	AuthorRole string `json:"author_role" gorm:"not null;size:10"`
	AuthorID   string `json:"author_id" gorm:"size:100"`
	Body       string `json:"body" gorm:"not null;type:text"`
}

// TableName sets the table name
func (SupportMessage) TableName() string {
	return "support_messages"
}
