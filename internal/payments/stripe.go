package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lolinsolito-lab/VoxLux-sub002/internal/config"
	"github.com/lolinsolito-lab/VoxLux-sub002/internal/models"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
)

// SessionRequest describes one hosted-checkout request: the primary price,
// optional upsell prices, an optional pre-created coupon and the metadata
// the webhook handler will read back.
type SessionRequest struct {
	PriceID        string
	UpsellPriceIDs []string
	CustomerEmail  string
	CouponID       string
	Metadata       map[string]string
}

// Session is the gateway's answer to a checkout request.
type Session struct {
	ID  string
	URL string
}

// CompletedSession is a normalized view of a finished checkout, used by
// fulfillment and by the reconciliation lookback.
type CompletedSession struct {
	ID            string
	CustomerEmail string
	AmountCents   int64
	Currency      string
	Metadata      map[string]string
	CompletedAt   time.Time
}

// CourseID returns the course tier embedded in the session metadata.
func (s CompletedSession) CourseID() string {
	return s.Metadata["courseId"]
}

// Kind returns the fulfillment branch for the session, defaulting to a
// course purchase when the metadata is silent.
func (s CompletedSession) Kind() string {
	if t := s.Metadata["type"]; t != "" {
		return t
	}
	return "course_purchase"
}

// Client wraps the Stripe API for checkout sessions, one-off coupons and
// the recent-session listing the recovery path relies on.
type Client struct {
	api        *client.API
	successURL string
	cancelURL  string
}

// NewClient creates a Stripe-backed gateway client.
func NewClient(cfg *config.Config) *Client {
	api := &client.API{}
	api.Init(cfg.StripeSecretKey, nil)
	return &Client{
		api:        api,
		successURL: cfg.CheckoutSuccessURL,
		cancelURL:  cfg.CheckoutCancelURL,
	}
}

// CreateCheckoutSession requests a hosted payment session.
func (c *Client) CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error) {
	lineItems := []*stripe.CheckoutSessionLineItemParams{
		{
			Price:    stripe.String(req.PriceID),
			Quantity: stripe.Int64(1),
		},
	}
	for _, priceID := range req.UpsellPriceIDs {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Price:    stripe.String(priceID),
			Quantity: stripe.Int64(1),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(c.successURL),
		CancelURL:  stripe.String(c.cancelURL),
	}
	params.Context = ctx

	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	if req.CouponID != "" {
		params.Discounts = []*stripe.CheckoutSessionDiscountParams{
			{Coupon: stripe.String(req.CouponID)},
		}
	}
	for key, value := range req.Metadata {
		params.AddMetadata(key, value)
	}

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %w", err)
	}

	return &Session{ID: sess.ID, URL: sess.URL}, nil
}

// CreateOneTimeCoupon creates a single-use discount object for a validated
// promo code. Percentage codes map to PercentOff, fixed codes to AmountOff
// in the session currency.
func (c *Client) CreateOneTimeCoupon(ctx context.Context, promo *models.PromoCode, currency string) (string, error) {
	params := &stripe.CouponParams{
		Duration: stripe.String(string(stripe.CouponDurationOnce)),
		Name:     stripe.String(promo.Code),
	}
	params.Context = ctx

	if promo.DiscountType == models.DiscountTypePercentage {
		params.PercentOff = stripe.Float64(float64(promo.DiscountValue))
	} else {
		params.AmountOff = stripe.Int64(promo.DiscountValue)
		params.Currency = stripe.String(currency)
	}

	coupon, err := c.api.Coupons.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe coupon: %w", err)
	}
	return coupon.ID, nil
}

// ListRecentCompletedSessions returns the most recent completed checkout
// sessions, newest first, bounded to limit. This is the recovery lookback:
// a heuristic window, not a guarantee that an old lost webhook is still
// reachable.
func (c *Client) ListRecentCompletedSessions(ctx context.Context, limit int) ([]CompletedSession, error) {
	params := &stripe.CheckoutSessionListParams{}
	params.Context = ctx
	params.Limit = stripe.Int64(int64(limit))

	var sessions []CompletedSession
	iter := c.api.CheckoutSessions.List(params)
	for iter.Next() {
		sess := iter.CheckoutSession()
		if sess.Status != stripe.CheckoutSessionStatusComplete {
			continue
		}
		sessions = append(sessions, normalizeSession(sess))
		if len(sessions) >= limit {
			break
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("stripe session list: %w", err)
	}
	return sessions, nil
}

// NormalizeSession converts a raw Stripe checkout session into the
// gateway-neutral shape used by fulfillment.
func NormalizeSession(sess *stripe.CheckoutSession) CompletedSession {
	return normalizeSession(sess)
}

func normalizeSession(sess *stripe.CheckoutSession) CompletedSession {
	email := sess.CustomerEmail
	if sess.CustomerDetails != nil && sess.CustomerDetails.Email != "" {
		email = sess.CustomerDetails.Email
	}

	return CompletedSession{
		ID:            sess.ID,
		CustomerEmail: strings.ToLower(strings.TrimSpace(email)),
		AmountCents:   sess.AmountTotal,
		Currency:      string(sess.Currency),
		Metadata:      sess.Metadata,
		CompletedAt:   time.Unix(sess.Created, 0),
	}
}
