package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pos_engine/internal/models"
	"github.com/Skotchmaster/pos_engine/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.OrderSession{}))
	return db
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(&repo.SessionRepo{DB: newTestDB(t)}, nil, nil, nil, 10*time.Millisecond)
}

func beer(qty int) models.OrderItem {
	return models.OrderItem{VariantID: "beer", ProductID: "drinks", Name: "Beer", Price: 4.5, Quantity: qty, EffectiveTaxRate: 0.19}
}

func TestStore_AddItemMergesByVariant(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	userID := uuid.New()

	s.AddItem(userID, beer(1))
	items := s.AddItem(userID, beer(2))

	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestStore_DebouncedPersistence(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	userID := uuid.New()

	s.AddItem(userID, beer(1))
	s.AddItem(userID, beer(1))

	require.Eventually(t, func() bool {
		sess, err := s.Repo.Get(context.Background(), userID)
		return err == nil && len(sess.Items) == 1 && sess.Items[0].Quantity == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStore_EmptyCartIsStillWritten(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	userID := uuid.New()

	s.AddItem(userID, beer(1))
	s.Flush(userID)
	s.Clear(userID)
	s.Flush(userID)

	sess, err := s.Repo.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, sess.Items)
}

func TestStore_DecrementRemovesAtZero(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	userID := uuid.New()

	s.AddItem(userID, beer(2))
	items := s.DecrementItem(userID, "beer")
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)

	items = s.DecrementItem(userID, "beer")
	assert.Empty(t, items)
}

func TestStore_LoadRestoresItemsVerbatim(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	userID := uuid.New()

	saved := []models.OrderItem{beer(3)}
	require.NoError(t, s.Repo.Save(context.Background(), userID, saved))

	items := s.Load(context.Background(), userID)
	require.Len(t, items, 1)
	assert.Equal(t, "beer", items[0].VariantID)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestStore_SaveDuringLoadIsQueuedAndReplayed(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	userID := uuid.New()

	// Stale persisted session that the load would normally restore.
	s := NewStore(&repo.SessionRepo{DB: db}, nil, nil, nil, 10*time.Millisecond)
	require.NoError(t, s.Repo.Save(context.Background(), userID, []models.OrderItem{beer(5)}))

	// Hold the first DB read open so a mutation can land mid-load.
	entered := make(chan struct{})
	gate := make(chan struct{})
	var once sync.Once
	require.NoError(t, db.Callback().Query().Before("gorm:query").Register("hold_first_query", func(*gorm.DB) {
		once.Do(func() {
			close(entered)
			<-gate
		})
	}))

	loaded := make(chan []models.OrderItem, 1)
	go func() { loaded <- s.Load(context.Background(), userID) }()

	<-entered
	items := s.AddItem(userID, beer(1))
	require.Len(t, items, 1)
	close(gate)

	// The mutation wins over the loaded snapshot instead of interleaving.
	got := <-loaded
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Quantity)

	// And the queued save is replayed to the DB after the load completes.
	require.Eventually(t, func() bool {
		sess, err := s.Repo.Get(context.Background(), userID)
		return err == nil && len(sess.Items) == 1 && sess.Items[0].Quantity == 1
	}, time.Second, 10*time.Millisecond)
}

func TestStore_LoadFailureDegradesToEmptyCart(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	require.NoError(t, db.Migrator().DropTable(&models.OrderSession{}))
	s := NewStore(&repo.SessionRepo{DB: db}, nil, nil, nil, 10*time.Millisecond)

	items := s.Load(context.Background(), uuid.New())
	assert.Empty(t, items)
}

func TestStore_LoadRepairsBlankNames(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	userID := uuid.New()

	nameless := models.OrderItem{VariantID: "mystery", Quantity: 1, Price: 1}
	require.NoError(t, s.Repo.Save(context.Background(), userID, []models.OrderItem{nameless}))

	items := s.Load(context.Background(), userID)
	require.Len(t, items, 1)
	assert.Equal(t, models.PlaceholderName("mystery"), items[0].Name)
}

func TestStore_UpdateStatusMissingSessionIsNoop(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	// No session exists and no panic/error surfaces.
	s.UpdateStatus(context.Background(), uuid.New(), models.SessionCompleted)
	s.UpdateStatus(context.Background(), uuid.Nil, models.SessionCompleted)
}

func TestStore_LogoutSoftMarksSession(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	userID := uuid.New()

	s.AddItem(userID, beer(1))
	s.Logout(context.Background(), userID)

	sess, err := s.Repo.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionPendingLogout, sess.Status)
	require.NotNil(t, sess.LogoutTime)
	assert.Len(t, sess.Items, 1, "logout keeps the cart for a possible return")
}
