package tables

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pos_engine/internal/apperr"
	"github.com/Skotchmaster/pos_engine/internal/events"
	"github.com/Skotchmaster/pos_engine/internal/models"
	"github.com/Skotchmaster/pos_engine/internal/repo"
)

// Coordinator links tabs to physical tables and keeps table occupancy in
// sync. Table status is the single source of truth for assignability:
// "available" is the only assignable state, everything else is opaquely
// not-assignable.
type Coordinator struct {
	Tables *repo.TableRepo
	Tabs   *repo.TabRepo
	Bus    *events.Bus
	Log    *slog.Logger
}

func (c *Coordinator) logger() *slog.Logger {
	if c.Log != nil {
		return c.Log
	}
	return slog.Default()
}

func (c *Coordinator) List(ctx context.Context) ([]models.Table, error) {
	return c.Tables.List(ctx)
}

// Assign binds the table to the active tab, creating a tab named after the
// table when none is active.
func (c *Coordinator) Assign(ctx context.Context, tableID uuid.UUID, activeTabID *uuid.UUID, tillID, tillName string) (*models.Tab, error) {
	table, err := c.Tables.Get(ctx, tableID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("table %s: %w", tableID, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	switch table.Status {
	case models.TableAvailable:
	case models.TableOccupied:
		return nil, fmt.Errorf("table %s is occupied: %w", table.Name, apperr.ErrValidation)
	default:
		return nil, fmt.Errorf("table %s is not assignable (%s): %w", table.Name, table.Status, apperr.ErrValidation)
	}

	var tab *models.Tab
	if activeTabID != nil {
		tab, err = c.Tabs.Get(ctx, *activeTabID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("tab %s: %w", *activeTabID, apperr.ErrNotFound)
		}
		if err != nil {
			return nil, err
		}
		tab.TableID = &table.ID
		if err := c.Tabs.Save(ctx, tab); err != nil {
			return nil, err
		}
	} else {
		tab = &models.Tab{
			Name:     table.Name,
			Items:    []models.OrderItem{},
			TillID:   tillID,
			TillName: tillName,
			TableID:  &table.ID,
		}
		if err := c.Tabs.Create(ctx, tab); err != nil {
			return nil, err
		}
	}

	if err := c.Tables.UpdateStatus(ctx, tableID, models.TableOccupied); err != nil {
		return nil, err
	}

	c.publish(tableID, models.TableOccupied)
	return tab, nil
}

// SyncWithActiveTab retargets the tab's table link without re-running
// assignment validation, used when moving a tab between tables.
func (c *Coordinator) SyncWithActiveTab(ctx context.Context, tabID uuid.UUID, tableID *uuid.UUID) error {
	tab, err := c.Tabs.Get(ctx, tabID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("tab %s: %w", tabID, apperr.ErrNotFound)
	}
	if err != nil {
		return err
	}
	tab.TableID = tableID
	return c.Tabs.Save(ctx, tab)
}

// Release puts the table back to available. Releasing a missing or already
// available table is a no-op, so settlement cleanup can call it blindly.
func (c *Coordinator) Release(ctx context.Context, tableID uuid.UUID) {
	err := c.Tables.UpdateStatus(ctx, tableID, models.TableAvailable)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		c.logger().Warn("table release failed", "table_id", tableID, "error", err)
		return
	}
	c.publish(tableID, models.TableAvailable)
}

func (c *Coordinator) publish(tableID uuid.UUID, status string) {
	if c.Bus == nil {
		return
	}
	c.Bus.Publish(events.Event{
		Type:    events.TypeTableChanged,
		Payload: map[string]any{"table_id": tableID.String(), "status": status},
	})
}
