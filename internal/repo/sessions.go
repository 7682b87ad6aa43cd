package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/pos_engine/internal/models"
)

type SessionRepo struct {
	DB *gorm.DB
}

func (r *SessionRepo) Get(ctx context.Context, userID uuid.UUID) (*models.OrderSession, error) {
	var s models.OrderSession
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// Save upserts the user's session with the given items. An empty item list is
// a meaningful write: it clears any stale session content.
func (r *SessionRepo) Save(ctx context.Context, userID uuid.UUID, items []models.OrderItem) error {
	s := models.OrderSession{
		UserID: userID,
		Items:  items,
		Status: models.SessionActive,
	}
	// Status is deliberately left alone on conflict: settlement and logout own
	// the state machine, a cart write must not resurrect a closed session.
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"items", "updated_at"}),
	}).Create(&s).Error
}

// UpdateStatus advances the session state. Missing sessions are a soft no-op:
// session bookkeeping must never block checkout.
func (r *SessionRepo) UpdateStatus(ctx context.Context, userID uuid.UUID, status string) error {
	updates := map[string]any{"status": status}
	if status == models.SessionPendingLogout {
		now := time.Now().UTC()
		updates["logout_time"] = &now
	}
	err := r.DB.WithContext(ctx).
		Model(&models.OrderSession{}).
		Where("user_id = ?", userID).
		Updates(updates).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

func (r *SessionRepo) Delete(ctx context.Context, userID uuid.UUID) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.OrderSession{}).Error
}
