package tables

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pos_engine/internal/apperr"
	"github.com/Skotchmaster/pos_engine/internal/models"
	"github.com/Skotchmaster/pos_engine/internal/repo"
)

func newTestCoordinator(t *testing.T) *Coordinator {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Table{}, &models.Tab{}))

	return &Coordinator{
		Tables: &repo.TableRepo{DB: db},
		Tabs:   &repo.TabRepo{DB: db},
	}
}

func seedTable(t *testing.T, c *Coordinator, name, status string) models.Table {
	t.Helper()
	table := models.Table{ID: uuid.New(), Name: name, Status: status, RoomID: "main"}
	require.NoError(t, c.Tables.DB.Create(&table).Error)
	return table
}

func TestCoordinator_Assign_CreatesTabNamedAfterTable(t *testing.T) {
	t.Parallel()

	c := newTestCoordinator(t)
	ctx := context.Background()
	table := seedTable(t, c, "Table 4", models.TableAvailable)

	tab, err := c.Assign(ctx, table.ID, nil, "till-1", "Bar")
	require.NoError(t, err)
	assert.Equal(t, "Table 4", tab.Name)
	require.NotNil(t, tab.TableID)
	assert.Equal(t, table.ID, *tab.TableID)

	got, err := c.Tables.Get(ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableOccupied, got.Status)
}

func TestCoordinator_Assign_BindsActiveTab(t *testing.T) {
	t.Parallel()

	c := newTestCoordinator(t)
	ctx := context.Background()
	table := seedTable(t, c, "Table 7", models.TableAvailable)

	tab := &models.Tab{Name: "Birthday", Items: []models.OrderItem{}}
	require.NoError(t, c.Tabs.Create(ctx, tab))

	got, err := c.Assign(ctx, table.ID, &tab.ID, "till-1", "Bar")
	require.NoError(t, err)
	assert.Equal(t, tab.ID, got.ID)
	require.NotNil(t, got.TableID)
	assert.Equal(t, table.ID, *got.TableID)
}

func TestCoordinator_Assign_RejectsNonAvailable(t *testing.T) {
	t.Parallel()

	c := newTestCoordinator(t)
	ctx := context.Background()

	occupied := seedTable(t, c, "Busy", models.TableOccupied)
	_, err := c.Assign(ctx, occupied.ID, nil, "till-1", "Bar")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), "occupied")

	reserved := seedTable(t, c, "Held", "reserved")
	_, err = c.Assign(ctx, reserved.ID, nil, "till-1", "Bar")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), "not assignable")
}

func TestCoordinator_Assign_UnknownTable(t *testing.T) {
	t.Parallel()

	c := newTestCoordinator(t)
	_, err := c.Assign(context.Background(), uuid.New(), nil, "till-1", "Bar")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCoordinator_SyncWithActiveTab(t *testing.T) {
	t.Parallel()

	c := newTestCoordinator(t)
	ctx := context.Background()
	table := seedTable(t, c, "Table 2", models.TableAvailable)

	tab := &models.Tab{Name: "Movers", Items: []models.OrderItem{}}
	require.NoError(t, c.Tabs.Create(ctx, tab))

	require.NoError(t, c.SyncWithActiveTab(ctx, tab.ID, &table.ID))
	got, err := c.Tabs.Get(ctx, tab.ID)
	require.NoError(t, err)
	require.NotNil(t, got.TableID)
	assert.Equal(t, table.ID, *got.TableID)

	require.NoError(t, c.SyncWithActiveTab(ctx, tab.ID, nil))
	got, err = c.Tabs.Get(ctx, tab.ID)
	require.NoError(t, err)
	assert.Nil(t, got.TableID)
}

func TestCoordinator_Release_Idempotent(t *testing.T) {
	t.Parallel()

	c := newTestCoordinator(t)
	ctx := context.Background()
	table := seedTable(t, c, "Table 9", models.TableOccupied)

	c.Release(ctx, table.ID)
	got, err := c.Tables.Get(ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableAvailable, got.Status)

	// Releasing again, or releasing a table that never existed, is a no-op.
	c.Release(ctx, table.ID)
	c.Release(ctx, uuid.New())
}
