package database

import (
	"github.com/lolinsolito-lab/VoxLux-sub002/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GrantOutcome is the result of a grant insert. A uniqueness conflict is a
// normal outcome of the idempotent flow, not an error.
type GrantOutcome int

const (
	GrantCreated GrantOutcome = iota
	GrantAlreadyExists
)

// CreateBonusGrant inserts a grant record, ignoring the (user, bonus)
// uniqueness conflict. The conflict surfaces as GrantAlreadyExists so
// callers can distinguish "granted now" from "granted earlier".
func (s *Store) CreateBonusGrant(grant *models.BonusGrant) (GrantOutcome, error) {
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "bonus_id"}},
		DoNothing: true,
	}).Create(grant)
	if result.Error != nil {
		return GrantAlreadyExists, result.Error
	}
	if result.RowsAffected == 0 {
		return GrantAlreadyExists, nil
	}
	return GrantCreated, nil
}

// ActiveBonusesForTier returns visible catalog entries whose applicable-tier
// list contains the course tier. Tier lists are comma-separated, so the
// final match happens in Go to stay portable across drivers.
func (s *Store) ActiveBonusesForTier(tier string) ([]models.BonusProduct, error) {
	var candidates []models.BonusProduct
	if err := s.db.Where("active = ?", true).Find(&candidates).Error; err != nil {
		return nil, err
	}

	var matched []models.BonusProduct
	for i := range candidates {
		if candidates[i].AppliesToTier(tier) {
			matched = append(matched, candidates[i])
		}
	}
	return matched, nil
}

// GetBonusProduct returns a catalog entry by id.
func (s *Store) GetBonusProduct(id uint) (*models.BonusProduct, error) {
	var bonus models.BonusProduct
	if err := s.db.First(&bonus, id).Error; err != nil {
		return nil, err
	}
	return &bonus, nil
}

// GetBonusProductByStripePriceID resolves a bonus from the gateway price id
// carried by a completed checkout session.
func (s *Store) GetBonusProductByStripePriceID(priceID string) (*models.BonusProduct, error) {
	var bonus models.BonusProduct
	err := s.db.Where("stripe_price_id = ? AND active = ?", priceID, true).First(&bonus).Error
	if err != nil {
		return nil, err
	}
	return &bonus, nil
}

// ListBonusProducts returns the catalog, optionally including soft-deleted
// entries for the admin screens.
func (s *Store) ListBonusProducts(includeInactive bool) ([]models.BonusProduct, error) {
	var bonuses []models.BonusProduct
	query := s.db.Order("id ASC")
	if !includeInactive {
		query = query.Where("active = ?", true)
	}
	err := query.Find(&bonuses).Error
	return bonuses, err
}

// CreateBonusProduct adds a catalog entry.
func (s *Store) CreateBonusProduct(bonus *models.BonusProduct) error {
	return s.db.Create(bonus).Error
}

// UpdateBonusProduct applies a partial update to a catalog entry.
func (s *Store) UpdateBonusProduct(id uint, updates map[string]interface{}) error {
	result := s.db.Model(&models.BonusProduct{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeactivateBonusProduct hides a catalog entry. Soft delete only; grants
// referencing it stay intact.
func (s *Store) DeactivateBonusProduct(id uint) error {
	return s.UpdateBonusProduct(id, map[string]interface{}{"active": false})
}

// IncrementBonusSales bumps the aggregate sales counters on a standalone
// bonus purchase.
func (s *Store) IncrementBonusSales(id uint, amountCents int64) error {
	return s.db.Model(&models.BonusProduct{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"sales_count":   gorm.Expr("sales_count + 1"),
			"revenue_cents": gorm.Expr("revenue_cents + ?", amountCents),
		}).Error
}

// ListGrantsForUser returns the bonuses a user has access to.
func (s *Store) ListGrantsForUser(userID string) ([]models.BonusGrant, error) {
	var grants []models.BonusGrant
	err := s.db.Where("user_id = ?", userID).Find(&grants).Error
	return grants, err
}
