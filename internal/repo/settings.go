package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/pos_engine/internal/models"
)

type SettingsRepo struct {
	DB *gorm.DB
}

// TaxMode returns the configured tax mode, defaulting to inclusive when no
// settings row exists yet.
func (r *SettingsRepo) TaxMode(ctx context.Context) (string, error) {
	var s models.Settings
	err := r.DB.WithContext(ctx).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "inclusive", nil
	}
	if err != nil {
		return "", err
	}
	return s.TaxMode, nil
}
