package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/lolinsolito-lab/VoxLux-sub002/internal/database"
	"github.com/lolinsolito-lab/VoxLux-sub002/internal/models"
	"github.com/lolinsolito-lab/VoxLux-sub002/internal/payments"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestStore opens a private in-memory database per test.
func newTestStore(t *testing.T) *database.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return database.NewStore(db)
}

// stubGateway is an in-memory PaymentGateway.
type stubGateway struct {
	sessions    []payments.CompletedSession
	listErr     error
	listCalls   int
	created     []payments.SessionRequest
	couponID    string
	couponErr   error
	couponCalls []*models.PromoCode
}

func (g *stubGateway) CreateCheckoutSession(_ context.Context, req payments.SessionRequest) (*payments.Session, error) {
	g.created = append(g.created, req)
	return &payments.Session{ID: "cs_test_stub", URL: "https://checkout.stripe.test/cs_test_stub"}, nil
}

func (g *stubGateway) CreateOneTimeCoupon(_ context.Context, promo *models.PromoCode, _ string) (string, error) {
	g.couponCalls = append(g.couponCalls, promo)
	if g.couponErr != nil {
		return "", g.couponErr
	}
	if g.couponID != "" {
		return g.couponID, nil
	}
	return "coupon_stub", nil
}

func (g *stubGateway) ListRecentCompletedSessions(_ context.Context, _ int) ([]payments.CompletedSession, error) {
	g.listCalls++
	if g.listErr != nil {
		return nil, g.listErr
	}
	return g.sessions, nil
}

// stubMailer records sends and can fail on demand.
type stubMailer struct {
	confirmations []string
	welcomes      []string
	welcomeCourse []string
	bonusSends    []string
	err           error
}

func (m *stubMailer) SendPurchaseConfirmation(email, _ string, _ int64, _ string) error {
	m.confirmations = append(m.confirmations, email)
	return m.err
}

func (m *stubMailer) SendWelcome(email, courseID string) error {
	m.welcomes = append(m.welcomes, email)
	m.welcomeCourse = append(m.welcomeCourse, courseID)
	return m.err
}

func (m *stubMailer) SendBonusDelivery(email string, _ *models.BonusProduct) error {
	m.bonusSends = append(m.bonusSends, email)
	return m.err
}
