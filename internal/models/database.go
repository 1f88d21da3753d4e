package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// BaseModel provides common fields for all database models
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

// TierListContains reports whether a comma-separated tier list contains the
// given course tier. Matching is case-insensitive and whitespace-tolerant.
func TierListContains(list, tier string) bool {
	if list == "" {
		return false
	}
	for _, entry := range strings.Split(list, ",") {
		if strings.EqualFold(strings.TrimSpace(entry), tier) {
			return true
		}
	}
	return false
}
