package api

import (
	"errors"
	"net/http"

	"github.com/lolinsolito-lab/VoxLux-sub002/internal/models"
	"github.com/lolinsolito-lab/VoxLux-sub002/internal/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateSupportTicketRequest opens a ticket with its first message.
type CreateSupportTicketRequest struct {
	UserID  string `json:"userId" binding:"required"`
	Subject string `json:"subject" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// CreateSupportTicket opens a support ticket
// POST /api/support/tickets
func (h *Handler) CreateSupportTicket(c *gin.Context) {
	var req CreateSupportTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	ticket := &models.SupportTicket{
		UserID:  req.UserID,
		Subject: req.Subject,
	}

	if err := h.store.CreateTicket(ticket, req.Message); err != nil {
		response.ErrorJSON(c, http.StatusInternalServerError, "Failed to create ticket: "+err.Error())
		return
	}

	response.JSON(c, http.StatusCreated, response.Success(ticket))
}

// ListSupportTickets lists a user's tickets
// GET /api/support/tickets?userId=...
func (h *Handler) ListSupportTickets(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		response.ErrorJSON(c, http.StatusBadRequest, "userId is required")
		return
	}

	tickets, err := h.store.ListTicketsForUser(userID)
	if err != nil {
		response.ErrorJSON(c, http.StatusInternalServerError, "Failed to list tickets: "+err.Error())
		return
	}
	response.SuccessJSON(c, tickets)
}

// GetSupportTicket returns one ticket with its thread
// GET /api/support/tickets/:id
func (h *Handler) GetSupportTicket(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ticket, err := h.store.GetTicketWithMessages(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.ErrorJSON(c, http.StatusNotFound, "Ticket not found")
			return
		}
		response.ErrorJSON(c, http.StatusInternalServerError, "Failed to load ticket: "+err.Error())
		return
	}
	response.SuccessJSON(c, ticket)
}

// AddSupportMessageRequest appends to a ticket thread.
type AddSupportMessageRequest struct {
	UserID  string `json:"userId" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// AddSupportMessage appends a user message to a ticket
// POST /api/support/tickets/:id/messages
func (h *Handler) AddSupportMessage(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req AddSupportMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "userId and message are required")
		return
	}

	message := &models.SupportMessage{
		TicketID:   id,
		AuthorRole: models.MessageAuthorUser,
		AuthorID:   req.UserID,
		Body:       req.Message,
	}

	if err := h.store.AppendTicketMessage(message); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.ErrorJSON(c, http.StatusNotFound, "Ticket not found")
			return
		}
		response.ErrorJSON(c, http.StatusInternalServerError, "Failed to add message: "+err.Error())
		return
	}

	response.SuccessJSON(c, message)
}

// AddAdminSupportMessageRequest is an admin reply.
type AddAdminSupportMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// AddAdminSupportMessage appends an admin reply; the first one moves an
// open ticket to in_progress
// POST /api/admin/support/tickets/:id/messages
func (h *Handler) AddAdminSupportMessage(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req AddAdminSupportMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "message is required")
		return
	}

	message := &models.SupportMessage{
		TicketID:   id,
		AuthorRole: models.MessageAuthorAdmin,
		AuthorID:   "admin",
		Body:       req.Message,
	}

	if err := h.store.AppendTicketMessage(message); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.ErrorJSON(c, http.StatusNotFound, "Ticket not found")
			return
		}
		response.ErrorJSON(c, http.StatusInternalServerError, "Failed to add message: "+err.Error())
		return
	}

	response.SuccessJSON(c, message)
}

// UpdateSupportTicketStatusRequest closes or resolves a ticket.
type UpdateSupportTicketStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=resolved closed"`
}

// UpdateSupportTicketStatus resolves or closes a ticket (explicit admin
// action)
// POST /api/admin/support/tickets/:id/status
func (h *Handler) UpdateSupportTicketStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateSupportTicketStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "status must be resolved or closed")
		return
	}

	if err := h.store.UpdateTicketStatus(id, req.Status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.ErrorJSON(c, http.StatusNotFound, "Ticket not found")
			return
		}
		response.ErrorJSON(c, http.StatusInternalServerError, "Failed to update ticket: "+err.Error())
		return
	}

	response.SuccessJSON(c, nil)
}
