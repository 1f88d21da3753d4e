package database

import (
	"github.com/lolinsolito-lab/VoxLux-sub002/internal/models"

	"gorm.io/gorm"
)

// CreateTicket opens a ticket with its first user message in one
// transaction.
func (s *Store) CreateTicket(ticket *models.SupportTicket, firstMessage string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		ticket.Status = models.TicketStatusOpen
		if err := tx.Create(ticket).Error; err != nil {
			return err
		}
		message := models.SupportMessage{
			TicketID:   ticket.ID,
			AuthorRole: models.MessageAuthorUser,
			AuthorID:   ticket.UserID,
			Body:       firstMessage,
		}
		return tx.Create(&message).Error
	})
}

// GetTicketWithMessages loads a ticket and its thread.
func (s *Store) GetTicketWithMessages(id uint) (*models.SupportTicket, error) {
	var ticket models.SupportTicket
	err := s.db.Preload("Messages", func(db *gorm.DB) *gorm.DB {
		return db.Order("support_messages.created_at ASC")
	}).First(&ticket, id).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// AppendTicketMessage adds a message to a ticket thread. The first admin
// reply moves an open ticket to in_progress.
func (s *Store) AppendTicketMessage(message *models.SupportMessage) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var ticket models.SupportTicket
		if err := tx.First(&ticket, message.TicketID).Error; err != nil {
			return err
		}

		if err := tx.Create(message).Error; err != nil {
			return err
		}

		if message.AuthorRole == models.MessageAuthorAdmin && ticket.Status == models.TicketStatusOpen {
			return tx.Model(&ticket).Update("status", models.TicketStatusInProgress).Error
		}
		return nil
	})
}

// UpdateTicketStatus sets a ticket status (resolved/closed are explicit
// admin actions).
func (s *Store) UpdateTicketStatus(id uint, status string) error {
	result := s.db.Model(&models.SupportTicket{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListTicketsForUser returns a user's tickets, newest first.
func (s *Store) ListTicketsForUser(userID string) ([]models.SupportTicket, error) {
	var tickets []models.SupportTicket
	err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&tickets).Error
	return tickets, err
}
