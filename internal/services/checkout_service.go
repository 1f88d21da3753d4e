package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lolinsolito-lab/VoxLux-sub002/internal/database"
	"github.com/lolinsolito-lab/VoxLux-sub002/internal/models"
	"github.com/lolinsolito-lab/VoxLux-sub002/internal/payments"
	"github.com/lolinsolito-lab/VoxLux-sub002/pkg/logging"

	"gorm.io/gorm"
)

// PaymentGateway is the slice of the payment provider the services need:
// hosted sessions, one-off coupons and the recovery lookback.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req payments.SessionRequest) (*payments.Session, error)
	CreateOneTimeCoupon(ctx context.Context, promo *models.PromoCode, currency string) (string, error)
	ListRecentCompletedSessions(ctx context.Context, limit int) ([]payments.CompletedSession, error)
}

// CheckoutRequest carries the storefront's checkout intent.
type CheckoutRequest struct {
	PriceID   string
	CourseID  string
	UserEmail string
	UpsellIDs []uint
	PromoCode string
	Currency  string
}

// ErrMissingCheckoutFields rejects requests without the required
// identifiers at the boundary.
var ErrMissingCheckoutFields = errors.New("priceId and courseId are required")

// CheckoutService assembles purchase intents and requests hosted sessions.
type CheckoutService struct {
	store   *database.Store
	gateway PaymentGateway
}

// NewCheckoutService creates a checkout service.
func NewCheckoutService(store *database.Store, gateway PaymentGateway) *CheckoutService {
	return &CheckoutService{store: store, gateway: gateway}
}

// BuildSession resolves upsells, applies an optional promo code and
// requests a hosted checkout session. An unusable promo code is ignored
// silently; the session is built without a discount rather than failing
// the checkout.
func (s *CheckoutService) BuildSession(ctx context.Context, req CheckoutRequest) (*payments.Session, error) {
	if req.PriceID == "" || req.CourseID == "" {
		return nil, ErrMissingCheckoutFields
	}

	upsellPrices := s.resolveUpsells(req.UpsellIDs)

	metadata := map[string]string{
		"type":          "course_purchase",
		"courseId":      req.CourseID,
		"bonusEligible": "true",
	}

	couponID := s.applyPromoCode(ctx, req)
	if couponID != "" {
		metadata["promoCode"] = req.PromoCode
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, payments.SessionRequest{
		PriceID:        req.PriceID,
		UpsellPriceIDs: upsellPrices,
		CustomerEmail:  req.UserEmail,
		CouponID:       couponID,
		Metadata:       metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return session, nil
}

// resolveUpsells keeps only catalog entries that are active and carry a
// gateway price id. Unknown ids are skipped, not errored: a stale upsell on
// the landing page must not block the primary purchase.
func (s *CheckoutService) resolveUpsells(ids []uint) []string {
	var prices []string
	for _, id := range ids {
		bonus, err := s.store.GetBonusProduct(id)
		if err != nil {
			logging.Warnf("Skipping unknown upsell %d: %v", id, err)
			continue
		}
		if !bonus.Active || !bonus.Purchasable || bonus.StripePriceID == "" {
			continue
		}
		prices = append(prices, bonus.StripePriceID)
	}
	return prices
}

// applyPromoCode validates and redeems an optional promo code, returning
// the gateway coupon id or empty when no discount applies.
func (s *CheckoutService) applyPromoCode(ctx context.Context, req CheckoutRequest) string {
	if req.PromoCode == "" {
		return ""
	}

	promo, err := s.store.GetPromoCodeByCode(req.PromoCode)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logging.Errorf("Promo code lookup failed for %q: %v", req.PromoCode, err)
		}
		return ""
	}

	if !promo.Redeemable(time.Now(), req.CourseID) {
		logging.Infof("Promo code %q not redeemable for tier %s, building session without discount", promo.Code, req.CourseID)
		return ""
	}

	currency := req.Currency
	if currency == "" {
		currency = "eur"
	}
	couponID, err := s.gateway.CreateOneTimeCoupon(ctx, promo, currency)
	if err != nil {
		logging.Errorf("Failed to create coupon for promo %q, continuing without discount: %v", promo.Code, err)
		return ""
	}

	if err := s.store.IncrementPromoUse(promo.ID); err != nil {
		logging.Errorf("Failed to count promo use for %q: %v", promo.Code, err)
	}
	return couponID
}
