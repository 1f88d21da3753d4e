package database

import (
	"strings"
	"time"

	"github.com/lolinsolito-lab/VoxLux-sub002/internal/models"

	"gorm.io/gorm/clause"
)

// CreatePurchaseIfAbsent inserts a purchase unless one with the same
// payment reference already exists. Returns whether a row was created.
// The conflict is ignored at the store so webhook redelivery and concurrent
// recovery both collapse into one row.
func (s *Store) CreatePurchaseIfAbsent(purchase *models.Purchase) (bool, error) {
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "payment_reference"}},
		DoNothing: true,
	}).Create(purchase)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetPendingPurchasesByEmail returns purchases awaiting activation for an
// email address. Emails are stored lowercased, so the lookup normalizes too.
func (s *Store) GetPendingPurchasesByEmail(email string) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := s.db.Where("email = ? AND status = ?",
		strings.ToLower(email), models.PurchaseStatusPendingRegistration).
		Order("purchased_at ASC").
		Find(&purchases).Error
	return purchases, err
}

// PurchaseExistsByPaymentReference checks whether a gateway session has
// already been recorded.
func (s *Store) PurchaseExistsByPaymentReference(reference string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Purchase{}).
		Where("payment_reference = ?", reference).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasActivePurchase checks the (user, course) uniqueness enforced at
// activation time.
func (s *Store) HasActivePurchase(userID, courseID string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Purchase{}).
		Where("user_id = ? AND course_id = ? AND status = ?",
			userID, courseID, models.PurchaseStatusActive).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ActivatePurchase flips a pending purchase to active, binds the user and
// stamps the activation time. The status guard makes the transition happen
// at most once.
func (s *Store) ActivatePurchase(purchaseID, userID string, at time.Time) error {
	return s.db.Model(&models.Purchase{}).
		Where("id = ? AND status = ?", purchaseID, models.PurchaseStatusPendingRegistration).
		Updates(map[string]interface{}{
			"status":       models.PurchaseStatusActive,
			"user_id":      userID,
			"activated_at": at,
		}).Error
}

// MarkBonusGranted flags a purchase so its bonus window is never
// re-evaluated.
func (s *Store) MarkBonusGranted(purchaseID string) error {
	return s.db.Model(&models.Purchase{}).
		Where("id = ?", purchaseID).
		Update("bonus_granted", true).Error
}

// GetPurchase returns a purchase by id.
func (s *Store) GetPurchase(purchaseID string) (*models.Purchase, error) {
	var purchase models.Purchase
	if err := s.db.Where("id = ?", purchaseID).First(&purchase).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

// RecordAnalyticsEvent appends a funnel event. Callers treat failures as
// non-fatal.
func (s *Store) RecordAnalyticsEvent(event *models.AnalyticsEvent) error {
	return s.db.Create(event).Error
}
