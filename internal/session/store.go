package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/pos_engine/internal/events"
	"github.com/Skotchmaster/pos_engine/internal/models"
	"github.com/Skotchmaster/pos_engine/internal/repo"
)

const (
	// Cache live carts next to the DB row: session:{user_id} -> items JSON.
	keyCart = "session:%s"

	cacheTTL     = 24 * time.Hour
	persistLimit = 2 * time.Second
)

const DefaultFlushDelay = 300 * time.Millisecond

// Store owns the live cart for each operator. Mutations are coalesced by a
// per-user debouncer before being written through to Redis and the DB, so a
// burst of clicks becomes one write. An empty cart is still a meaningful
// write: it clears any stale session content.
type Store struct {
	Repo       *repo.SessionRepo
	Cache      *redis.Client
	Bus        *events.Bus
	Log        *slog.Logger
	FlushDelay time.Duration

	mu    sync.Mutex
	users map[uuid.UUID]*userState
}

type userState struct {
	items       []models.OrderItem
	deb         *Debouncer
	loading     bool
	savePending bool
}

func NewStore(r *repo.SessionRepo, cache *redis.Client, bus *events.Bus, log *slog.Logger, flushDelay time.Duration) *Store {
	if flushDelay <= 0 {
		flushDelay = DefaultFlushDelay
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		Repo:       r,
		Cache:      cache,
		Bus:        bus,
		Log:        log,
		FlushDelay: flushDelay,
		users:      make(map[uuid.UUID]*userState),
	}
}

func (s *Store) state(userID uuid.UUID) *userState {
	st, ok := s.users[userID]
	if !ok {
		st = &userState{deb: NewDebouncer(s.FlushDelay)}
		s.users[userID] = st
	}
	return st
}

// Load restores the operator's session on login. Any persistence error
// degrades to an empty cart; loading never fails the caller. Only one
// load/save cycle runs per user: a save requested while the load is
// outstanding is replayed afterwards instead of interleaving.
func (s *Store) Load(ctx context.Context, userID uuid.UUID) []models.OrderItem {
	s.mu.Lock()
	st := s.state(userID)
	st.loading = true
	s.mu.Unlock()

	items := s.readThrough(ctx, userID)
	// Returning to a parked or pending-logout session reactivates it.
	s.UpdateStatus(ctx, userID, models.SessionActive)

	s.mu.Lock()
	replay := st.savePending
	st.savePending = false
	st.loading = false
	if !replay {
		st.items = models.NormalizeItems(items)
	}
	out := snapshot(st.items)
	s.mu.Unlock()

	if replay {
		s.persist(userID)
	}
	return out
}

func (s *Store) readThrough(ctx context.Context, userID uuid.UUID) []models.OrderItem {
	if s.Cache != nil {
		raw, err := s.Cache.Get(ctx, fmt.Sprintf(keyCart, userID)).Bytes()
		if err == nil {
			var items []models.OrderItem
			if err := json.Unmarshal(raw, &items); err == nil {
				return items
			}
			s.Log.Warn("corrupt session cache entry, falling back to db", "user_id", userID)
		}
	}
	sess, err := s.Repo.Get(ctx, userID)
	if err != nil {
		s.Log.Warn("session load failed, starting with empty cart", "user_id", userID, "error", err)
		return nil
	}
	return sess.Items
}

// Items returns a copy of the user's current cart.
func (s *Store) Items(userID uuid.UUID) []models.OrderItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.state(userID).items)
}

// AddItem merges a line into the cart by variant and schedules a write.
func (s *Store) AddItem(userID uuid.UUID, item models.OrderItem) []models.OrderItem {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	s.mu.Lock()
	st := s.state(userID)
	st.items = models.MergeByVariant(st.items, []models.OrderItem{item})
	out := snapshot(st.items)
	s.mu.Unlock()

	s.scheduleSave(userID)
	s.publishCartChanged(userID)
	return out
}

// DecrementItem lowers a line's quantity by one, removing it at zero.
func (s *Store) DecrementItem(userID uuid.UUID, variantID string) []models.OrderItem {
	s.mu.Lock()
	st := s.state(userID)
	for i := range st.items {
		if st.items[i].VariantID != variantID {
			continue
		}
		st.items[i].Quantity--
		if st.items[i].Quantity <= 0 {
			st.items = append(st.items[:i], st.items[i+1:]...)
		}
		break
	}
	out := snapshot(st.items)
	s.mu.Unlock()

	s.scheduleSave(userID)
	s.publishCartChanged(userID)
	return out
}

// Replace swaps the whole cart, used when a tab is loaded into the session.
func (s *Store) Replace(userID uuid.UUID, items []models.OrderItem) []models.OrderItem {
	s.mu.Lock()
	st := s.state(userID)
	st.items = models.NormalizeItems(snapshot(items))
	out := snapshot(st.items)
	s.mu.Unlock()

	s.scheduleSave(userID)
	s.publishCartChanged(userID)
	return out
}

// Clear empties the cart. The resulting empty write is not skipped.
func (s *Store) Clear(userID uuid.UUID) {
	s.mu.Lock()
	st := s.state(userID)
	had := len(st.items) > 0
	st.items = nil
	s.mu.Unlock()

	if had {
		s.Log.Info("cart cleared", "user_id", userID)
	}
	s.scheduleSave(userID)
	s.publishCartChanged(userID)
}

// Flush forces any pending debounced write through now. Called before
// settlement and on shutdown.
func (s *Store) Flush(userID uuid.UUID) {
	s.mu.Lock()
	deb := s.state(userID).deb
	s.mu.Unlock()
	deb.Flush()
}

// Shutdown flushes every tracked session so no debounced write is lost when
// the process exits.
func (s *Store) Shutdown(ctx context.Context) {
	s.mu.Lock()
	debs := make([]*Debouncer, 0, len(s.users))
	for _, st := range s.users {
		debs = append(debs, st.deb)
	}
	s.mu.Unlock()

	for _, deb := range debs {
		deb.Flush()
	}
}

// UpdateStatus advances the session state machine. Absent sessions and
// persistence errors are soft no-ops: bookkeeping never blocks checkout.
func (s *Store) UpdateStatus(ctx context.Context, userID uuid.UUID, status string) {
	if userID == uuid.Nil {
		return
	}
	if err := s.Repo.UpdateStatus(ctx, userID, status); err != nil {
		s.Log.Warn("session status update failed", "user_id", userID, "status", status, "error", err)
	}
}

// Logout flushes pending writes and soft-marks the session so a return to the
// same session is possible.
func (s *Store) Logout(ctx context.Context, userID uuid.UUID) {
	s.Flush(userID)
	s.UpdateStatus(ctx, userID, models.SessionPendingLogout)
}

func (s *Store) scheduleSave(userID uuid.UUID) {
	s.mu.Lock()
	st := s.state(userID)
	if st.loading {
		st.savePending = true
		s.mu.Unlock()
		return
	}
	deb := st.deb
	s.mu.Unlock()

	deb.Schedule(func() { s.persist(userID) })
}

func (s *Store) persist(userID uuid.UUID) {
	s.mu.Lock()
	items := snapshot(s.state(userID).items)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), persistLimit)
	defer cancel()

	if err := s.Repo.Save(ctx, userID, items); err != nil {
		s.Log.Warn("session save failed", "user_id", userID, "error", err)
	}
	if s.Cache != nil {
		raw, err := json.Marshal(items)
		if err == nil {
			if err := s.Cache.Set(ctx, fmt.Sprintf(keyCart, userID), raw, cacheTTL).Err(); err != nil {
				s.Log.Warn("session cache write failed", "user_id", userID, "error", err)
			}
		}
	}
}

func (s *Store) publishCartChanged(userID uuid.UUID) {
	if s.Bus == nil {
		return
	}
	s.Bus.Publish(events.Event{
		Type:    events.TypeCartChanged,
		Payload: map[string]any{"user_id": userID.String()},
	})
}

func snapshot(items []models.OrderItem) []models.OrderItem {
	out := make([]models.OrderItem, len(items))
	copy(out, items)
	return out
}
