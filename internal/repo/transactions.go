package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/pos_engine/internal/models"
)

type TransactionRepo struct {
	DB *gorm.DB
}

func (r *TransactionRepo) Create(ctx context.Context, t *models.Transaction) error {
	return r.DB.WithContext(ctx).Create(t).Error
}
