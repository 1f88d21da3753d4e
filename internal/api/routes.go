package api

import (
	"github.com/lolinsolito-lab/VoxLux-sub002/internal/database"
	"github.com/lolinsolito-lab/VoxLux-sub002/internal/middleware"
	"github.com/lolinsolito-lab/VoxLux-sub002/internal/services"

	"github.com/gin-gonic/gin"
)

// Handler carries the injected dependencies for all routes.
type Handler struct {
	store         *database.Store
	checkout      *services.CheckoutService
	fulfillment   *services.FulfillmentService
	activation    *services.ActivationService
	bonuses       *services.BonusService
	replay        *services.ReplayGuard
	webhookSecret string
	adminToken    string
}

// NewHandler wires the services into one handler set.
func NewHandler(
	store *database.Store,
	checkout *services.CheckoutService,
	fulfillment *services.FulfillmentService,
	activation *services.ActivationService,
	bonuses *services.BonusService,
	replay *services.ReplayGuard,
	webhookSecret string,
	adminToken string,
) *Handler {
	return &Handler{
		store:         store,
		checkout:      checkout,
		fulfillment:   fulfillment,
		activation:    activation,
		bonuses:       bonuses,
		replay:        replay,
		webhookSecret: webhookSecret,
		adminToken:    adminToken,
	}
}

// SetupRoutes sets up all routes
func (h *Handler) SetupRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		// Storefront routes (no authentication; called by the landing page)
		api.POST("/checkout/session", h.CreateCheckoutSession)
		api.POST("/purchases/activate", h.ActivatePurchases)

		// Payment provider webhook (signature-authenticated)
		api.POST("/webhooks/stripe", h.StripeWebhook)

		// Support routes (user-facing)
		support := api.Group("/support")
		{
			support.POST("/tickets", h.CreateSupportTicket)
			support.GET("/tickets", h.ListSupportTickets)
			support.GET("/tickets/:id", h.GetSupportTicket)
			support.POST("/tickets/:id/messages", h.AddSupportMessage)
		}

		// Admin back-office routes
		admin := api.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware(h.adminToken))
		{
			admin.GET("/bonuses", h.ListBonuses)
			admin.POST("/bonuses", h.CreateBonus)
			admin.PUT("/bonuses/:id", h.UpdateBonus)
			admin.DELETE("/bonuses/:id", h.DeleteBonus)
			admin.POST("/bonuses/:id/assign", h.AssignBonus)

			admin.GET("/promo-codes", h.ListPromoCodes)
			admin.POST("/promo-codes", h.CreatePromoCode)
			admin.PUT("/promo-codes/:id", h.UpdatePromoCode)
			admin.DELETE("/promo-codes/:id", h.DeletePromoCode)

			admin.POST("/support/tickets/:id/messages", h.AddAdminSupportMessage)
			admin.POST("/support/tickets/:id/status", h.UpdateSupportTicketStatus)
		}
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "voxlux-api",
		})
	})
}
