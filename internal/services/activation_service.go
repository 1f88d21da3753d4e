package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lolinsolito-lab/VoxLux-sub002/internal/database"
	"github.com/lolinsolito-lab/VoxLux-sub002/internal/models"
	"github.com/lolinsolito-lab/VoxLux-sub002/pkg/logging"
)

// ActivationResult is what the activation endpoint returns: how many
// purchases were activated and which ones.
type ActivationResult struct {
	Activated   int      `json:"activated"`
	PurchaseIDs []string `json:"purchaseIds"`
}

// ActivationService activates pending purchases at signup time and
// self-heals missed webhook deliveries by consulting the gateway directly.
type ActivationService struct {
	store    *database.Store
	gateway  PaymentGateway
	bonuses  *BonusService
	mailer   Mailer
	lookback int
	window   time.Duration
}

// NewActivationService creates an activation service. lookback bounds the
// gateway recovery listing; bonusWindowHours sizes the eligibility window
// stamped onto recovered purchases.
func NewActivationService(store *database.Store, gateway PaymentGateway, bonuses *BonusService, mailer Mailer, lookback, bonusWindowHours int) *ActivationService {
	return &ActivationService{
		store:    store,
		gateway:  gateway,
		bonuses:  bonuses,
		mailer:   mailer,
		lookback: lookback,
		window:   time.Duration(bonusWindowHours) * time.Hour,
	}
}

// Activate resolves every pending purchase for the email and binds it to
// the freshly registered user. When the store knows nothing, the gateway's
// recent completed sessions are checked first: a lost webhook must not cost
// the buyer their course.
//
// Zero activations is a legitimate outcome, not an error.
func (a *ActivationService) Activate(ctx context.Context, email, userID string) (*ActivationResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	pending, err := a.store.GetPendingPurchasesByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending purchases: %w", err)
	}

	if len(pending) == 0 {
		// Recovery is best-effort: gateway failures are logged and the
		// call falls through to "nothing to activate".
		if recovered := a.recoverFromGateway(ctx, email); recovered > 0 {
			pending, err = a.store.GetPendingPurchasesByEmail(email)
			if err != nil {
				return nil, fmt.Errorf("failed to reload purchases after recovery: %w", err)
			}
		}
	}

	if len(pending) == 0 {
		return &ActivationResult{Activated: 0, PurchaseIDs: []string{}}, nil
	}

	now := time.Now()
	result := &ActivationResult{PurchaseIDs: []string{}}
	firstCourse := ""

	for i := range pending {
		purchase := &pending[i]

		// (user, course) uniqueness is enforced here, at activation time.
		active, err := a.store.HasActivePurchase(userID, purchase.CourseID)
		if err != nil {
			logging.Errorf("Activation check failed for purchase %s: %v", purchase.ID, err)
			continue
		}
		if active {
			logging.Infof("User %s already owns %s, skipping purchase %s", userID, purchase.CourseID, purchase.ID)
			continue
		}

		// One bad row must not block activation of sibling purchases.
		if err := a.store.ActivatePurchase(purchase.ID, userID, now); err != nil {
			logging.Errorf("Failed to activate purchase %s: %v", purchase.ID, err)
			continue
		}

		result.Activated++
		result.PurchaseIDs = append(result.PurchaseIDs, purchase.ID)
		if firstCourse == "" {
			firstCourse = purchase.CourseID
		}

		if purchase.BonusEligible && !purchase.BonusGranted && purchase.BonusWindowOpen(now) {
			if err := a.bonuses.GrantForPurchase(userID, purchase); err != nil {
				logging.Errorf("Bonus grant failed for purchase %s: %v", purchase.ID, err)
			}
		}
	}

	if result.Activated > 0 {
		// One welcome email per activation batch, referencing the first
		// activated course.
		if err := a.mailer.SendWelcome(email, firstCourse); err != nil {
			logging.Errorf("Welcome email failed for %s: %v", email, err)
		}
	}

	return result, nil
}

// recoverFromGateway lists the most recent completed checkout sessions and
// re-creates purchase rows the webhook should have written. Recovered rows
// default to bonus_eligible=true: the webhook was lost, the purchase was
// not ineligible. Returns how many rows were inserted.
//
// The lookback is a bounded heuristic. A lost webhook older than the most
// recent N sessions is out of reach of this path.
func (a *ActivationService) recoverFromGateway(ctx context.Context, email string) int {
	sessions, err := a.gateway.ListRecentCompletedSessions(ctx, a.lookback)
	if err != nil {
		logging.Errorf("Gateway recovery lookup failed for %s: %v", email, err)
		return 0
	}

	recovered := 0
	for _, sess := range sessions {
		if !strings.EqualFold(sess.CustomerEmail, email) {
			continue
		}
		if sess.Kind() != "course_purchase" {
			continue
		}
		courseID := sess.CourseID()
		if courseID == "" {
			logging.Warnf("Recovered session %s has no courseId metadata, skipping", sess.ID)
			continue
		}

		exists, err := a.store.PurchaseExistsByPaymentReference(sess.ID)
		if err != nil {
			logging.Errorf("Recovery existence check failed for session %s: %v", sess.ID, err)
			continue
		}
		if exists {
			continue
		}

		purchasedAt := sess.CompletedAt
		if purchasedAt.IsZero() {
			purchasedAt = time.Now()
		}

		// The bonus window is anchored at recovery, not at the original
		// session: the webhook loss already cost the buyer time, it must
		// not also consume their eligibility.
		purchase := &models.Purchase{
			ID:               uuid.NewString(),
			Email:            email,
			CourseID:         courseID,
			PaymentReference: sess.ID,
			AmountCents:      sess.AmountCents,
			Currency:         sess.Currency,
			Status:           models.PurchaseStatusPendingRegistration,
			BonusEligible:    true,
			BonusExpiresAt:   time.Now().Add(a.window),
			PurchasedAt:      purchasedAt,
		}

		// A concurrent activation for the same email races to the same
		// insert; the payment_reference index lets exactly one win.
		created, err := a.store.CreatePurchaseIfAbsent(purchase)
		if err != nil {
			logging.Errorf("Failed to recover purchase for session %s: %v", sess.ID, err)
			continue
		}
		if created {
			recovered++
			a.recordRecoveryEvent(purchase)
			logging.Infof("Recovered purchase from gateway - session: %s, course: %s, email: %s",
				sess.ID, courseID, email)
		}
	}

	return recovered
}

func (a *ActivationService) recordRecoveryEvent(purchase *models.Purchase) {
	meta, _ := json.Marshal(map[string]string{"paymentReference": purchase.PaymentReference})
	event := &models.AnalyticsEvent{
		EventType:   models.EventPurchaseRecovered,
		Email:       purchase.Email,
		CourseID:    purchase.CourseID,
		AmountCents: purchase.AmountCents,
		Metadata:    string(meta),
	}
	if err := a.store.RecordAnalyticsEvent(event); err != nil {
		logging.Errorf("Failed to record recovery event for purchase %s: %v", purchase.ID, err)
	}
}
