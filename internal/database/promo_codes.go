package database

import (
	"strings"

	"github.com/lolinsolito-lab/VoxLux-sub002/internal/models"

	"gorm.io/gorm"
)

// GetPromoCodeByCode looks up a code case-insensitively. Codes are stored
// upper-cased, so normalizing the input is enough.
func (s *Store) GetPromoCodeByCode(code string) (*models.PromoCode, error) {
	var promo models.PromoCode
	err := s.db.Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).First(&promo).Error
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

// IncrementPromoUse bumps the usage counter after a successful redemption.
func (s *Store) IncrementPromoUse(id uint) error {
	return s.db.Model(&models.PromoCode{}).
		Where("id = ?", id).
		Update("used_count", gorm.Expr("used_count + 1")).Error
}

// ListPromoCodes returns all codes for the admin screens.
func (s *Store) ListPromoCodes() ([]models.PromoCode, error) {
	var promos []models.PromoCode
	err := s.db.Order("id ASC").Find(&promos).Error
	return promos, err
}

// CreatePromoCode adds a code, normalizing it to upper case.
func (s *Store) CreatePromoCode(promo *models.PromoCode) error {
	promo.Code = strings.ToUpper(strings.TrimSpace(promo.Code))
	return s.db.Create(promo).Error
}

// UpdatePromoCode applies a partial update to a code.
func (s *Store) UpdatePromoCode(id uint, updates map[string]interface{}) error {
	if code, ok := updates["code"].(string); ok {
		updates["code"] = strings.ToUpper(strings.TrimSpace(code))
	}
	result := s.db.Model(&models.PromoCode{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeletePromoCode removes a code for good. Code carries a unique index, so
// a soft delete would block the same code from ever being re-created.
func (s *Store) DeletePromoCode(id uint) error {
	result := s.db.Unscoped().Delete(&models.PromoCode{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
