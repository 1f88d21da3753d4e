package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lolinsolito-lab/VoxLux-sub002/internal/database"
	"github.com/lolinsolito-lab/VoxLux-sub002/internal/models"
	"github.com/lolinsolito-lab/VoxLux-sub002/internal/payments"
	"github.com/lolinsolito-lab/VoxLux-sub002/pkg/logging"
)

// FulfillmentService turns completed checkout sessions into purchase rows,
// bonus grants and confirmation emails. Store writes are the required step;
// email sends are best-effort so the webhook response never depends on the
// email provider.
type FulfillmentService struct {
	store       *database.Store
	bonuses     *BonusService
	mailer      Mailer
	bonusWindow time.Duration
}

// NewFulfillmentService creates a fulfillment service.
func NewFulfillmentService(store *database.Store, bonuses *BonusService, mailer Mailer, bonusWindowHours int) *FulfillmentService {
	return &FulfillmentService{
		store:       store,
		bonuses:     bonuses,
		mailer:      mailer,
		bonusWindow: time.Duration(bonusWindowHours) * time.Hour,
	}
}

// HandleCoursePurchase persists a pending purchase for a completed course
// checkout. Redelivery of the same session creates nothing and sends
// nothing.
func (f *FulfillmentService) HandleCoursePurchase(sess payments.CompletedSession) error {
	email := strings.ToLower(strings.TrimSpace(sess.CustomerEmail))
	if email == "" {
		return fmt.Errorf("completed session %s has no buyer email", sess.ID)
	}
	courseID := sess.CourseID()
	if courseID == "" {
		return fmt.Errorf("completed session %s has no courseId metadata", sess.ID)
	}

	now := time.Now()
	purchase := &models.Purchase{
		ID:               uuid.NewString(),
		Email:            email,
		CourseID:         courseID,
		PaymentReference: sess.ID,
		AmountCents:      sess.AmountCents,
		Currency:         sess.Currency,
		Status:           models.PurchaseStatusPendingRegistration,
		BonusEligible:    sess.Metadata["bonusEligible"] != "false",
		BonusExpiresAt:   now.Add(f.bonusWindow),
		PurchasedAt:      now,
	}

	created, err := f.store.CreatePurchaseIfAbsent(purchase)
	if err != nil {
		return fmt.Errorf("failed to persist purchase for session %s: %w", sess.ID, err)
	}
	if !created {
		logging.Infof("Session %s already fulfilled, skipping", sess.ID)
		return nil
	}

	f.recordEvent(models.EventCoursePurchase, sess, courseID)

	if err := f.mailer.SendPurchaseConfirmation(email, courseID, sess.AmountCents, sess.Currency); err != nil {
		logging.Errorf("Purchase confirmation email failed for %s: %v", email, err)
	}

	logging.Infof("Fulfilled course purchase - session: %s, course: %s, email: %s", sess.ID, courseID, email)
	return nil
}

// HandleBonusPurchase fulfills a standalone bonus checkout: grant (when the
// buyer is a known user), sales counters and delivery email.
func (f *FulfillmentService) HandleBonusPurchase(sess payments.CompletedSession) error {
	email := strings.ToLower(strings.TrimSpace(sess.CustomerEmail))

	bonus, err := f.resolveBonus(sess)
	if err != nil {
		return fmt.Errorf("failed to resolve bonus for session %s: %w", sess.ID, err)
	}

	if userID := sess.Metadata["userId"]; userID != "" {
		outcome, err := f.store.CreateBonusGrant(&models.BonusGrant{
			UserID:              userID,
			BonusID:             bonus.ID,
			PurchaseAmountCents: sess.AmountCents,
		})
		if err != nil {
			return fmt.Errorf("failed to grant purchased bonus %d: %w", bonus.ID, err)
		}
		if outcome == database.GrantAlreadyExists {
			logging.Infof("Bonus %d already granted to user %s, session %s is a redelivery", bonus.ID, userID, sess.ID)
			return nil
		}
	} else {
		logging.Warnf("Bonus purchase %s carries no userId metadata, grant deferred to support", sess.ID)
	}

	if err := f.store.IncrementBonusSales(bonus.ID, sess.AmountCents); err != nil {
		logging.Errorf("Failed to update sales counters for bonus %d: %v", bonus.ID, err)
	}

	f.recordEvent(models.EventBonusPurchase, sess, "")

	if email != "" {
		if err := f.mailer.SendBonusDelivery(email, bonus); err != nil {
			logging.Errorf("Bonus delivery email failed for %s: %v", email, err)
		}
	}

	logging.Infof("Fulfilled bonus purchase - session: %s, bonus: %d", sess.ID, bonus.ID)
	return nil
}

// resolveBonus locates the catalog entry for a bonus checkout, preferring
// explicit bonusId metadata over the gateway price id.
func (f *FulfillmentService) resolveBonus(sess payments.CompletedSession) (*models.BonusProduct, error) {
	if raw := sess.Metadata["bonusId"]; raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid bonusId metadata %q", raw)
		}
		return f.store.GetBonusProduct(uint(id))
	}
	if priceID := sess.Metadata["priceId"]; priceID != "" {
		return f.store.GetBonusProductByStripePriceID(priceID)
	}
	return nil, fmt.Errorf("session has neither bonusId nor priceId metadata")
}

// recordEvent appends an analytics row; failures only log.
func (f *FulfillmentService) recordEvent(eventType string, sess payments.CompletedSession, courseID string) {
	meta, _ := json.Marshal(sess.Metadata)
	event := &models.AnalyticsEvent{
		EventType:   eventType,
		Email:       sess.CustomerEmail,
		CourseID:    courseID,
		AmountCents: sess.AmountCents,
		Metadata:    string(meta),
	}
	if err := f.store.RecordAnalyticsEvent(event); err != nil {
		logging.Errorf("Failed to record %s analytics event for session %s: %v", eventType, sess.ID, err)
	}
}
