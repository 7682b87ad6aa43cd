package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/pos_engine/internal/activity"
	"github.com/Skotchmaster/pos_engine/internal/apperr"
	"github.com/Skotchmaster/pos_engine/internal/catalog"
	"github.com/Skotchmaster/pos_engine/internal/es"
	"github.com/Skotchmaster/pos_engine/internal/events"
	"github.com/Skotchmaster/pos_engine/internal/hash"
	"github.com/Skotchmaster/pos_engine/internal/identity"
	"github.com/Skotchmaster/pos_engine/internal/models"
	"github.com/Skotchmaster/pos_engine/internal/repo"
	"github.com/Skotchmaster/pos_engine/internal/session"
	"github.com/Skotchmaster/pos_engine/internal/stock"
	"github.com/Skotchmaster/pos_engine/internal/tables"
	"github.com/Skotchmaster/pos_engine/internal/taxes"
)

const cleanupTimeout = 2 * time.Second

// Service finalizes payment for a cart. Steps 1-5 (name repair, tax,
// discount authorization, final total, transaction persist) run sequentially
// and any failure surfaces to the operator with nothing after it executed.
// Everything past the recorded transaction is cleanup: best-effort,
// idempotent, logged on failure but never a settlement failure — the
// business has been paid.
type Service struct {
	Transactions *repo.TransactionRepo
	Stock        *repo.StockRepo
	Settings     *repo.SettingsRepo
	Tabs         *repo.TabRepo
	Tables       *tables.Coordinator
	Sessions     *session.Store
	Catalog      catalog.Provider
	Indexer      *es.Indexer
	Activity     *activity.Logger
	Bus          *events.Bus
	Log          *slog.Logger

	// bcrypt hash of the manager override PIN; empty disables overrides.
	ManagerPINHash string
}

type Request struct {
	Operator       identity.Operator
	Items          []models.OrderItem
	PaymentMethod  string
	Tip            float64
	Discount       float64
	DiscountReason string
	OverridePIN    string
	TabID          *uuid.UUID
	TableID        *uuid.UUID
	TillID         string
	TillName       string
}

func (s *Service) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}

func (s *Service) Settle(ctx context.Context, req Request) (*models.Transaction, error) {
	s.Sessions.Flush(req.Operator.ID)
	items := req.Items
	if len(items) == 0 {
		items = s.Sessions.Items(req.Operator.ID)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no items to settle: %w", apperr.ErrValidation)
	}

	// Step 1: never settle with an empty display name.
	items = models.NormalizeItems(items)

	// Step 2: tax.
	modeStr, err := s.Settings.TaxMode(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tax settings: %w", apperr.ErrTransient)
	}
	totals, err := taxes.ComputeTotals(items, taxes.Mode(modeStr), req.Tip)
	if err != nil {
		return nil, err
	}

	// Step 3: discount authorization, before any mutation.
	if err := s.authorizeDiscount(req, totals.Total); err != nil {
		return nil, err
	}

	// Step 4: final total. Informational status only, same code path.
	final := totals.Total - req.Discount
	status := models.TransactionCompleted
	if final <= 1e-9 {
		final = 0
		status = models.TransactionComplimentary
	}

	// Step 5: the immutable record, snapshot serialized here and never
	// re-derived.
	t := &models.Transaction{
		Items:          items,
		Subtotal:       round2(totals.Subtotal),
		Tax:            round2(totals.Tax),
		Tip:            round2(req.Tip),
		Discount:       round2(req.Discount),
		DiscountReason: req.DiscountReason,
		Total:          round2(final),
		PaymentMethod:  req.PaymentMethod,
		Status:         status,
		UserID:         req.Operator.ID,
		TillID:         req.TillID,
		TableID:        req.TableID,
	}
	if err := s.Transactions.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("record transaction: %w", err)
	}

	// Steps 6-10.
	s.cleanup(req, t, items)
	return t, nil
}

func (s *Service) authorizeDiscount(req Request, preDiscountTotal float64) error {
	if req.Discount < 0 {
		return fmt.Errorf("discount must not be negative: %w", apperr.ErrValidation)
	}
	if req.Discount > preDiscountTotal+1e-9 {
		return fmt.Errorf("discount exceeds total: %w", apperr.ErrValidation)
	}
	if req.Discount == 0 || req.Operator.IsAdmin() {
		return nil
	}
	if req.OverridePIN != "" && s.ManagerPINHash != "" && hash.CheckPIN(s.ManagerPINHash, req.OverridePIN) {
		s.logger().Info("discount authorized by manager override", "user_id", req.Operator.ID)
		return nil
	}
	return fmt.Errorf("admin privileges required: %w", apperr.ErrAuthorization)
}

// cleanup runs the post-payment steps. Each is independent and idempotent; a
// timeout or failure here is an operational warning, not a payment failure.
func (s *Service) cleanup(req Request, t *models.Transaction, items []models.OrderItem) {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	log := s.logger()

	// Step 6: stock decrement.
	if s.Catalog != nil && s.Stock != nil {
		if err := s.decrementStock(ctx, items); err != nil {
			log.Warn("stock decrement failed after settlement", "transaction_id", t.ID, "error", err)
		}
	}

	if s.Indexer != nil {
		if err := s.Indexer.IndexTransaction(ctx, t); err != nil {
			log.Warn("transaction indexing failed", "transaction_id", t.ID, "error", err)
		}
	}

	// Step 7: tab cleanup.
	if req.TabID != nil {
		if err := s.Tabs.Delete(ctx, *req.TabID); err != nil {
			log.Warn("tab delete failed after settlement", "tab_id", *req.TabID, "error", err)
		}
	}

	// Step 8: session done.
	s.Sessions.UpdateStatus(ctx, req.Operator.ID, models.SessionCompleted)

	// Step 9: table back to available.
	if req.TableID != nil && s.Tables != nil {
		s.Tables.Release(ctx, *req.TableID)
	}

	// Step 10: clear the cart.
	s.Sessions.Clear(req.Operator.ID)
	s.Sessions.Flush(req.Operator.ID)

	s.Activity.Record("order_completed", map[string]any{
		"transaction_id": t.ID.String(),
		"total":          t.Total,
		"status":         t.Status,
		"payment_method": t.PaymentMethod,
	}, req.Operator.ID, req.Operator.Name)

	if s.Bus != nil {
		s.Bus.Publish(events.Event{
			Type:    events.TypeOrderCompleted,
			Payload: map[string]any{"transaction_id": t.ID.String(), "total": t.Total},
		})
	}
}

func (s *Service) decrementStock(ctx context.Context, items []models.OrderItem) error {
	snap, err := s.Catalog.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("catalog snapshot: %w", err)
	}
	levels, err := s.Stock.Levels(ctx)
	if err != nil {
		return fmt.Errorf("stock levels: %w", err)
	}
	consumption := stock.ComputeConsumption(items, snap.ConsumptionIndex(), levels, s.Log)
	return s.Stock.DecrementBatch(ctx, consumption)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
