package services

import (
	"fmt"

	"github.com/lolinsolito-lab/VoxLux-sub002/internal/database"
	"github.com/lolinsolito-lab/VoxLux-sub002/internal/models"
	"github.com/lolinsolito-lab/VoxLux-sub002/pkg/logging"
)

// BonusService grants catalog bonuses unlocked by a purchase.
type BonusService struct {
	store *database.Store
}

// NewBonusService creates a bonus service.
func NewBonusService(store *database.Store) *BonusService {
	return &BonusService{store: store}
}

// GrantForPurchase inserts a grant for every active bonus matching the
// purchase's tier. A (user, bonus) conflict is the benign already-granted
// outcome; any other insert failure is logged and the loop continues.
// The purchase's bonus_granted flag is set afterwards even when zero
// bonuses matched, so the eligibility window is never re-evaluated.
func (s *BonusService) GrantForPurchase(userID string, purchase *models.Purchase) error {
	bonuses, err := s.store.ActiveBonusesForTier(purchase.CourseID)
	if err != nil {
		return fmt.Errorf("failed to load bonus catalog for tier %s: %w", purchase.CourseID, err)
	}

	for i := range bonuses {
		outcome, err := s.store.CreateBonusGrant(&models.BonusGrant{
			UserID:              userID,
			BonusID:             bonuses[i].ID,
			PurchaseID:          purchase.ID,
			PurchaseAmountCents: purchase.AmountCents,
		})
		if err != nil {
			logging.Errorf("Failed to grant bonus %d to user %s: %v", bonuses[i].ID, userID, err)
			continue
		}
		if outcome == database.GrantAlreadyExists {
			logging.Infof("Bonus %d already granted to user %s", bonuses[i].ID, userID)
			continue
		}
		logging.Infof("Granted bonus %d (%s) to user %s via purchase %s",
			bonuses[i].ID, bonuses[i].Title, userID, purchase.ID)
	}

	if err := s.store.MarkBonusGranted(purchase.ID); err != nil {
		return fmt.Errorf("failed to mark purchase %s bonus_granted: %w", purchase.ID, err)
	}
	return nil
}

// AssignGrant records an admin-assigned grant, outside any purchase.
func (s *BonusService) AssignGrant(userID string, bonusID uint, grantedBy string) (database.GrantOutcome, error) {
	bonus, err := s.store.GetBonusProduct(bonusID)
	if err != nil {
		return database.GrantAlreadyExists, fmt.Errorf("bonus not found: %w", err)
	}

	outcome, err := s.store.CreateBonusGrant(&models.BonusGrant{
		UserID:    userID,
		BonusID:   bonus.ID,
		GrantedBy: grantedBy,
	})
	if err != nil {
		return outcome, fmt.Errorf("failed to assign bonus: %w", err)
	}
	return outcome, nil
}
