package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pos_engine/internal/models"
)

type TabRepo struct {
	DB *gorm.DB
}

func (r *TabRepo) List(ctx context.Context) ([]models.Tab, error) {
	var tabs []models.Tab
	if err := r.DB.WithContext(ctx).Order("created_at").Find(&tabs).Error; err != nil {
		return nil, err
	}
	return tabs, nil
}

func (r *TabRepo) Get(ctx context.Context, id uuid.UUID) (*models.Tab, error) {
	var tab models.Tab
	if err := r.DB.WithContext(ctx).First(&tab, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tab, nil
}

func (r *TabRepo) Create(ctx context.Context, tab *models.Tab) error {
	return r.DB.WithContext(ctx).Create(tab).Error
}

func (r *TabRepo) Save(ctx context.Context, tab *models.Tab) error {
	return r.DB.WithContext(ctx).Save(tab).Error
}

func (r *TabRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Delete(&models.Tab{}, "id = ?", id).Error
}

// Transfer writes both sides of a tab-to-tab move in one transaction so a
// half-applied transfer is never visible.
func (r *TabRepo) Transfer(ctx context.Context, src, dst *models.Tab, createDst bool) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if createDst {
			if err := tx.Create(dst).Error; err != nil {
				return err
			}
		} else if err := tx.Save(dst).Error; err != nil {
			return err
		}
		return tx.Save(src).Error
	})
}
