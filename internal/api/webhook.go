package api

import (
	"encoding/json"
	"net/http"

	"github.com/lolinsolito-lab/VoxLux-sub002/internal/payments"
	"github.com/lolinsolito-lab/VoxLux-sub002/internal/response"
	"github.com/lolinsolito-lab/VoxLux-sub002/pkg/logging"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"
)

// StripeWebhook ingests payment provider events
// POST /api/webhooks/stripe
//
// The signature MUST verify before anything in the payload is trusted; a
// failure is a terminal 400 so the provider stops retrying a permanently
// invalid delivery. Unknown event types are acknowledged with 200, since a
// non-2xx would make the provider retry events we intentionally ignore.
func (h *Handler) StripeWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		logging.Errorf("Failed to read webhook body: %v", err)
		response.Envelope(c, http.StatusBadRequest, "failed to read request body")
		return
	}

	event, err := webhook.ConstructEvent(body, c.GetHeader("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		logging.Errorf("Webhook signature verification failed: %v", err)
		response.Envelope(c, http.StatusBadRequest, "invalid signature")
		return
	}

	if h.replay.Seen(c.Request.Context(), event.ID) {
		logging.Infof("Duplicate webhook event %s suppressed", event.ID)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			logging.Errorf("Failed to parse checkout session from event %s: %v", event.ID, err)
			response.Envelope(c, http.StatusBadRequest, "invalid event payload")
			return
		}

		completed := payments.NormalizeSession(&sess)

		var fulfillErr error
		switch completed.Kind() {
		case "bonus_purchase":
			fulfillErr = h.fulfillment.HandleBonusPurchase(completed)
		default:
			fulfillErr = h.fulfillment.HandleCoursePurchase(completed)
		}
		if fulfillErr != nil {
			// A 5xx here is deliberate: the provider retries the event and
			// the payment_reference index absorbs the redelivery.
			logging.Errorf("Fulfillment failed for event %s: %v", event.ID, fulfillErr)
			response.Envelope(c, http.StatusInternalServerError, fulfillErr.Error())
			return
		}

	default:
		logging.Infof("Ignoring webhook event %s of type %s", event.ID, event.Type)
	}

	// Recorded only after processing finished: a failed delivery must stay
	// unseen so the provider's retry is fulfilled, not suppressed.
	h.replay.Mark(c.Request.Context(), event.ID)

	c.JSON(http.StatusOK, gin.H{"received": true})
}
