package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pos_engine/internal/models"
)

type StockRepo struct {
	DB *gorm.DB
}

func (r *StockRepo) Levels(ctx context.Context) (map[uuid.UUID]float64, error) {
	var items []models.StockItem
	if err := r.DB.WithContext(ctx).Find(&items).Error; err != nil {
		return nil, err
	}
	levels := make(map[uuid.UUID]float64, len(items))
	for _, it := range items {
		levels[it.ID] = it.Quantity
	}
	return levels, nil
}

// DecrementBatch applies an aggregate consumption map in one transaction.
// Levels are clamped at zero and missing stock items are skipped, so an
// inventory data problem never fails the caller.
func (r *StockRepo) DecrementBatch(ctx context.Context, consumption map[uuid.UUID]float64) error {
	if len(consumption) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, qty := range consumption {
			var item models.StockItem
			err := tx.First(&item, "id = ?", id).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			next := item.Quantity - qty
			if next < 0 {
				next = 0
			}
			if err := tx.Model(&item).Update("quantity", next).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
