package api

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lolinsolito-lab/VoxLux-sub002/internal/database"
	"github.com/lolinsolito-lab/VoxLux-sub002/internal/models"
	"github.com/lolinsolito-lab/VoxLux-sub002/internal/payments"
	"github.com/lolinsolito-lab/VoxLux-sub002/internal/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testWebhookSecret = "whsec_test_secret"
	testAdminToken    = "admin-test-token"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// noopGateway satisfies the gateway interface for handler tests that never
// reach the payment provider.
type noopGateway struct{}

func (noopGateway) CreateCheckoutSession(context.Context, payments.SessionRequest) (*payments.Session, error) {
	return &payments.Session{ID: "cs_handler_stub", URL: "https://checkout.stripe.test/cs_handler_stub"}, nil
}

func (noopGateway) CreateOneTimeCoupon(context.Context, *models.PromoCode, string) (string, error) {
	return "coupon_handler_stub", nil
}

func (noopGateway) ListRecentCompletedSessions(context.Context, int) ([]payments.CompletedSession, error) {
	return nil, nil
}

// recordingMailer counts sends without talking to the email provider.
type recordingMailer struct {
	confirmations int
	welcomes      int
	bonusSends    int
}

func (m *recordingMailer) SendPurchaseConfirmation(string, string, int64, string) error {
	m.confirmations++
	return nil
}

func (m *recordingMailer) SendWelcome(string, string) error {
	m.welcomes++
	return nil
}

func (m *recordingMailer) SendBonusDelivery(string, *models.BonusProduct) error {
	m.bonusSends++
	return nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *database.Store, *recordingMailer) {
	t.Helper()
	return newTestRouterWithReplay(t, newTestDB(t), services.NewReplayGuard(nil))
}

func newTestRouterWithReplay(t *testing.T, db *gorm.DB, replay *services.ReplayGuard) (*gin.Engine, *database.Store, *recordingMailer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := database.NewStore(db)
	mailer := &recordingMailer{}
	gateway := noopGateway{}
	bonuses := services.NewBonusService(store)

	handler := NewHandler(
		store,
		services.NewCheckoutService(store, gateway),
		services.NewFulfillmentService(store, bonuses, mailer, 24),
		services.NewActivationService(store, gateway, bonuses, mailer, 5, 24),
		bonuses,
		replay,
		testWebhookSecret,
		testAdminToken,
	)

	router := gin.New()
	handler.SetupRoutes(router)
	return router, store, mailer
}

func checkoutCompletedEvent(eventID, sessionID, email string) []byte {
	payload := map[string]interface{}{
		"id":          eventID,
		"object":      "event",
		"api_version": stripe.APIVersion,
		"type":        "checkout.session.completed",
		"created":     time.Now().Unix(),
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":           sessionID,
				"object":       "checkout.session",
				"amount_total": 49700,
				"currency":     "eur",
				"created":      time.Now().Unix(),
				"status":       "complete",
				"customer_details": map[string]interface{}{
					"email": email,
				},
				"metadata": map[string]string{
					"type":          "course_purchase",
					"courseId":      "matrice-1",
					"bonusEligible": "true",
				},
			},
		},
	}
	body, _ := json.Marshal(payload)
	return body
}

func postSignedWebhook(router *gin.Engine, payload []byte) *httptest.ResponseRecorder {
	ts := time.Now()
	sig := webhook.ComputeSignature(ts, payload, testWebhookSecret)

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(sig)))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestStripeWebhookRejectsInvalidSignature(t *testing.T) {
	router, store, mailer := newTestRouter(t)

	payload := checkoutCompletedEvent("evt_1", "cs_sig_test", "buyer@example.com")
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", "t=12345,v1=deadbeef")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	exists, err := store.PurchaseExistsByPaymentReference("cs_sig_test")
	require.NoError(t, err)
	assert.False(t, exists, "unverified payloads must produce no side effects")
	assert.Zero(t, mailer.confirmations)
}

func TestStripeWebhookRejectsMissingSignature(t *testing.T) {
	router, _, _ := newTestRouter(t)

	payload := checkoutCompletedEvent("evt_2", "cs_nosig", "buyer@example.com")
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewReader(payload))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStripeWebhookFulfillsCoursePurchase(t *testing.T) {
	router, store, mailer := newTestRouter(t)

	w := postSignedWebhook(router, checkoutCompletedEvent("evt_3", "cs_fulfill", "Buyer@Example.com"))
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]bool
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp["received"])

	pending, err := store.GetPendingPurchasesByEmail("buyer@example.com")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "cs_fulfill", pending[0].PaymentReference)
	assert.Equal(t, "matrice-1", pending[0].CourseID)
	assert.Equal(t, int64(49700), pending[0].AmountCents)
	assert.Equal(t, 1, mailer.confirmations)
}

func TestStripeWebhookRedeliveryCreatesOnePurchase(t *testing.T) {
	router, store, mailer := newTestRouter(t)

	payload := checkoutCompletedEvent("evt_4", "cs_redelivered", "buyer@example.com")
	assert.Equal(t, http.StatusOK, postSignedWebhook(router, payload).Code)
	assert.Equal(t, http.StatusOK, postSignedWebhook(router, payload).Code)

	pending, err := store.GetPendingPurchasesByEmail("buyer@example.com")
	require.NoError(t, err)
	assert.Len(t, pending, 1)
	assert.Equal(t, 1, mailer.confirmations)
}

func TestStripeWebhookIgnoresUnknownEventTypes(t *testing.T) {
	router, _, _ := newTestRouter(t)

	payload, _ := json.Marshal(map[string]interface{}{
		"id":          "evt_5",
		"object":      "event",
		"api_version": stripe.APIVersion,
		"type":        "payment_intent.created",
		"created":     time.Now().Unix(),
		"data":        map[string]interface{}{"object": map[string]interface{}{}},
	})

	w := postSignedWebhook(router, payload)
	assert.Equal(t, http.StatusOK, w.Code, "ignored events are acknowledged so the provider stops retrying")
}

func TestStripeWebhookRetryAfterTransientStoreFailure(t *testing.T) {
	srv := miniredis.RunT(t)
	replay := services.NewReplayGuard(redis.NewClient(&redis.Options{Addr: srv.Addr()}))
	db := newTestDB(t)
	router, store, mailer := newTestRouterWithReplay(t, db, replay)

	payload := checkoutCompletedEvent("evt_transient", "cs_transient", "buyer@example.com")

	// First delivery arrives while the store is broken.
	require.NoError(t, db.Migrator().DropTable(&models.Purchase{}))
	assert.Equal(t, http.StatusInternalServerError, postSignedWebhook(router, payload).Code)

	// The provider retries once the store is back; the failed delivery must
	// not have been recorded as seen.
	require.NoError(t, db.AutoMigrate(&models.Purchase{}))
	assert.Equal(t, http.StatusOK, postSignedWebhook(router, payload).Code)

	exists, err := store.PurchaseExistsByPaymentReference("cs_transient")
	require.NoError(t, err)
	assert.True(t, exists, "the retried event must fulfill the purchase")
	assert.Equal(t, 1, mailer.confirmations)

	// A third delivery is a true duplicate and changes nothing.
	assert.Equal(t, http.StatusOK, postSignedWebhook(router, payload).Code)
	pending, err := store.GetPendingPurchasesByEmail("buyer@example.com")
	require.NoError(t, err)
	assert.Len(t, pending, 1)
	assert.Equal(t, 1, mailer.confirmations)
}

func TestStripeWebhookBonusPurchase(t *testing.T) {
	router, store, mailer := newTestRouter(t)

	bonus := &models.BonusProduct{Title: "Pack", Purchasable: true, StripePriceID: "price_pack", Active: true}
	require.NoError(t, store.CreateBonusProduct(bonus))

	payload, _ := json.Marshal(map[string]interface{}{
		"id":          "evt_6",
		"object":      "event",
		"api_version": stripe.APIVersion,
		"type":        "checkout.session.completed",
		"created":     time.Now().Unix(),
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":           "cs_bonus",
				"object":       "checkout.session",
				"amount_total": 4700,
				"currency":     "eur",
				"created":      time.Now().Unix(),
				"status":       "complete",
				"customer_details": map[string]interface{}{
					"email": "buyer@example.com",
				},
				"metadata": map[string]string{
					"type":    "bonus_purchase",
					"priceId": "price_pack",
					"userId":  "user-1",
				},
			},
		},
	})

	w := postSignedWebhook(router, payload)
	assert.Equal(t, http.StatusOK, w.Code)

	grants, err := store.ListGrantsForUser("user-1")
	require.NoError(t, err)
	assert.Len(t, grants, 1)
	assert.Equal(t, 1, mailer.bonusSends)

	updated, err := store.GetBonusProduct(bonus.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.SalesCount)
}
