package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lolinsolito-lab/VoxLux-sub002/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminRequest(router http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAdminAuth(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := adminRequest(router, http.MethodGet, "/api/admin/bonuses", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "missing token")

	w = adminRequest(router, http.MethodGet, "/api/admin/bonuses", "wrong-token", nil)
	assert.Equal(t, http.StatusForbidden, w.Code, "wrong token")

	w = adminRequest(router, http.MethodGet, "/api/admin/bonuses", testAdminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminBonusCatalogRoundTrip(t *testing.T) {
	router, store, _ := newTestRouter(t)

	w := adminRequest(router, http.MethodPost, "/api/admin/bonuses", testAdminToken, gin.H{
		"title":            "Pack Templates",
		"delivery_type":    "download",
		"content_url":      "https://cdn.voxlux.com/pack.zip",
		"purchasable":      true,
		"price_cents":      4700,
		"stripe_price_id":  "price_pack",
		"applicable_tiers": "matrice-1,matrice-2",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	bonuses, err := store.ListBonusProducts(false)
	require.NoError(t, err)
	require.Len(t, bonuses, 1)
	bonus := bonuses[0]
	assert.Equal(t, "Pack Templates", bonus.Title)
	assert.True(t, bonus.Active)

	w = adminRequest(router, http.MethodPut, "/api/admin/bonuses/1", testAdminToken, gin.H{
		"price_cents": 5200,
	})
	require.Equal(t, http.StatusOK, w.Code)

	updated, err := store.GetBonusProduct(bonus.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5200), updated.PriceCents)
	assert.Equal(t, "Pack Templates", updated.Title, "partial update leaves other fields alone")

	w = adminRequest(router, http.MethodDelete, "/api/admin/bonuses/1", testAdminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	visible, err := store.ListBonusProducts(false)
	require.NoError(t, err)
	assert.Empty(t, visible, "deleted bonuses disappear from the storefront view")

	all, err := store.ListBonusProducts(true)
	require.NoError(t, err)
	assert.Len(t, all, 1, "delete is a soft hide, not a row removal")
}

func TestAdminAssignBonus(t *testing.T) {
	router, store, _ := newTestRouter(t)

	bonus := &models.BonusProduct{Title: "Workbook", Active: true}
	require.NoError(t, store.CreateBonusProduct(bonus))

	w := adminRequest(router, http.MethodPost, "/api/admin/bonuses/1/assign", testAdminToken, gin.H{"userId": "user-1"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Granted bool   `json:"granted"`
			Reason  string `json:"reason"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Granted)

	w = adminRequest(router, http.MethodPost, "/api/admin/bonuses/1/assign", testAdminToken, gin.H{"userId": "user-1"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Data.Granted)
	assert.Equal(t, "already granted", resp.Data.Reason)
}

func TestAdminPromoCodeValidation(t *testing.T) {
	router, store, _ := newTestRouter(t)

	w := adminRequest(router, http.MethodPost, "/api/admin/promo-codes", testAdminToken, gin.H{
		"code":           "TOOBIG",
		"discount_type":  "percentage",
		"discount_value": 150,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "percentage discounts above 100 are rejected")

	w = adminRequest(router, http.MethodPost, "/api/admin/promo-codes", testAdminToken, gin.H{
		"code":           "launch20",
		"discount_type":  "percentage",
		"discount_value": 20,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	stored, err := store.GetPromoCodeByCode("LAUNCH20")
	require.NoError(t, err)
	assert.Equal(t, "LAUNCH20", stored.Code)
}

func TestAdminSupportFlow(t *testing.T) {
	router, store, _ := newTestRouter(t)

	ticket := &models.SupportTicket{UserID: "user-1", Subject: "Bonus manquant"}
	require.NoError(t, store.CreateTicket(ticket, "Je ne vois pas mon bonus."))

	w := adminRequest(router, http.MethodPost, "/api/admin/support/tickets/1/messages", testAdminToken, gin.H{
		"message": "On regarde ça.",
	})
	require.Equal(t, http.StatusOK, w.Code)

	loaded, err := store.GetTicketWithMessages(ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusInProgress, loaded.Status)

	w = adminRequest(router, http.MethodPost, "/api/admin/support/tickets/1/status", testAdminToken, gin.H{
		"status": "resolved",
	})
	require.Equal(t, http.StatusOK, w.Code)

	loaded, err = store.GetTicketWithMessages(ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusResolved, loaded.Status)
}
