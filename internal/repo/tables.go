package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pos_engine/internal/models"
)

type TableRepo struct {
	DB *gorm.DB
}

func (r *TableRepo) List(ctx context.Context) ([]models.Table, error) {
	var tables []models.Table
	if err := r.DB.WithContext(ctx).Order("name").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

func (r *TableRepo) Get(ctx context.Context, id uuid.UUID) (*models.Table, error) {
	var table models.Table
	if err := r.DB.WithContext(ctx).First(&table, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *TableRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.DB.WithContext(ctx).
		Model(&models.Table{}).
		Where("id = ?", id).
		Update("status", status).Error
}
