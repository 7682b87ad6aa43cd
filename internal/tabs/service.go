package tabs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pos_engine/internal/activity"
	"github.com/Skotchmaster/pos_engine/internal/apperr"
	"github.com/Skotchmaster/pos_engine/internal/events"
	"github.com/Skotchmaster/pos_engine/internal/models"
	"github.com/Skotchmaster/pos_engine/internal/repo"
	"github.com/Skotchmaster/pos_engine/internal/session"
)

// Service parks carts onto named, resumable tabs and moves lines between
// them. Tabs follow last-write-wins; only the two-tab transfer is written as
// one transaction.
type Service struct {
	Repo     *repo.TabRepo
	Sessions *session.Store
	Bus      *events.Bus
	Activity *activity.Logger
	Log      *slog.Logger
}

func (s *Service) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}

func (s *Service) List(ctx context.Context) ([]models.Tab, error) {
	tabs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tabs {
		tabs[i].Items = models.NormalizeItems(tabs[i].Items)
	}
	return tabs, nil
}

func (s *Service) Create(ctx context.Context, name, tillID, tillName string, tableID *uuid.UUID) (*models.Tab, error) {
	if name == "" {
		return nil, fmt.Errorf("tab name is required: %w", apperr.ErrValidation)
	}
	tab := &models.Tab{
		Name:     name,
		Items:    []models.OrderItem{},
		TillID:   tillID,
		TillName: tillName,
		TableID:  tableID,
	}
	if err := s.Repo.Create(ctx, tab); err != nil {
		return nil, err
	}
	s.publish(events.TypeTabSaved, tab.ID)
	return tab, nil
}

// AddCurrentOrder merges the operator's cart into the tab by variant, clears
// the cart and parks the session.
func (s *Service) AddCurrentOrder(ctx context.Context, tabID, userID uuid.UUID, userName string) (*models.Tab, error) {
	tab, err := s.get(ctx, tabID)
	if err != nil {
		return nil, err
	}

	s.Sessions.Flush(userID)
	items := s.Sessions.Items(userID)
	if len(items) > 0 {
		tab.Items = models.MergeByVariant(tab.Items, items)
		if err := s.Repo.Save(ctx, tab); err != nil {
			return nil, err
		}
		s.Sessions.Clear(userID)
		s.Sessions.Flush(userID)
	}
	s.Sessions.UpdateStatus(ctx, userID, models.SessionAssignTab)

	s.Activity.Record("tab_park", map[string]any{"tab_id": tab.ID.String(), "lines": len(items)}, userID, userName)
	s.publish(events.TypeTabSaved, tab.ID)
	return tab, nil
}

// LoadIntoCart replaces the active cart with the tab's items.
func (s *Service) LoadIntoCart(ctx context.Context, tabID, userID uuid.UUID) ([]models.OrderItem, error) {
	tab, err := s.get(ctx, tabID)
	if err != nil {
		return nil, err
	}
	return s.Sessions.Replace(userID, tab.Items), nil
}

// SaveFromCart overwrites the tab's item list with the cart and clears the
// cart; the tab stays open.
func (s *Service) SaveFromCart(ctx context.Context, tabID, userID uuid.UUID) (*models.Tab, error) {
	tab, err := s.get(ctx, tabID)
	if err != nil {
		return nil, err
	}

	s.Sessions.Flush(userID)
	tab.Items = models.NormalizeItems(s.Sessions.Items(userID))
	if err := s.Repo.Save(ctx, tab); err != nil {
		return nil, err
	}

	s.Sessions.Clear(userID)
	s.Sessions.Flush(userID)
	s.publish(events.TypeTabSaved, tab.ID)
	return tab, nil
}

// Close deletes the tab only when it holds no items; otherwise it is a no-op.
func (s *Service) Close(ctx context.Context, tabID uuid.UUID) error {
	tab, err := s.get(ctx, tabID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(tab.Items) > 0 {
		s.logger().Info("close skipped, tab still holds items", "tab_id", tabID, "lines", len(tab.Items))
		return nil
	}
	if err := s.Repo.Delete(ctx, tabID); err != nil {
		return err
	}
	s.publish(events.TypeTabDeleted, tabID)
	return nil
}

// TransferRequest moves lines from a source tab to an existing tab or a new
// one named NewName.
type TransferRequest struct {
	SourceTabID uuid.UUID
	DestTabID   *uuid.UUID
	NewName     string
	Items       []models.OrderItem
}

// Transfer decrements the moved quantities from the source, credits them to
// the destination with fresh line identities, and persists both tabs in a
// single transaction.
func (s *Service) Transfer(ctx context.Context, req TransferRequest) (*models.Tab, *models.Tab, error) {
	if len(req.Items) == 0 {
		return nil, nil, fmt.Errorf("nothing to transfer: %w", apperr.ErrValidation)
	}
	src, err := s.get(ctx, req.SourceTabID)
	if err != nil {
		return nil, nil, err
	}

	for _, mv := range req.Items {
		if mv.Quantity < 1 {
			return nil, nil, fmt.Errorf("variant %s: transfer quantity must be at least 1: %w", mv.VariantID, apperr.ErrValidation)
		}
		if have := models.SumQuantity(src.Items, mv.VariantID); have < mv.Quantity {
			return nil, nil, fmt.Errorf("variant %s: only %d on tab, cannot move %d: %w", mv.VariantID, have, mv.Quantity, apperr.ErrValidation)
		}
	}

	var dst *models.Tab
	createDst := false
	switch {
	case req.DestTabID != nil:
		if *req.DestTabID == req.SourceTabID {
			return nil, nil, fmt.Errorf("source and destination tab are the same: %w", apperr.ErrValidation)
		}
		dst, err = s.get(ctx, *req.DestTabID)
		if err != nil {
			return nil, nil, err
		}
	case req.NewName != "":
		dst = &models.Tab{
			ID:       uuid.New(),
			Name:     req.NewName,
			Items:    []models.OrderItem{},
			TillID:   src.TillID,
			TillName: src.TillName,
		}
		createDst = true
	default:
		return nil, nil, fmt.Errorf("transfer needs a destination tab or a new name: %w", apperr.ErrValidation)
	}

	for _, mv := range req.Items {
		// The request only picks what and how much; price, name and tax rate
		// come from the source line so a transfer never changes tab value.
		line, ok := findLine(src.Items, mv.VariantID)
		if !ok {
			return nil, nil, fmt.Errorf("variant %s: not on tab: %w", mv.VariantID, apperr.ErrValidation)
		}
		src.Items = subtractQuantity(src.Items, mv.VariantID, mv.Quantity)

		moved := line
		moved.Quantity = mv.Quantity
		dst.Items = models.MergeByVariant(dst.Items, []models.OrderItem{moved})
	}

	if err := s.Repo.Transfer(ctx, src, dst, createDst); err != nil {
		return nil, nil, err
	}

	s.publish(events.TypeTabSaved, src.ID)
	s.publish(events.TypeTabSaved, dst.ID)
	return src, dst, nil
}

func (s *Service) get(ctx context.Context, tabID uuid.UUID) (*models.Tab, error) {
	tab, err := s.Repo.Get(ctx, tabID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("tab %s: %w", tabID, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	tab.Items = models.NormalizeItems(tab.Items)
	return tab, nil
}

func findLine(items []models.OrderItem, variantID string) (models.OrderItem, bool) {
	for _, it := range items {
		if it.VariantID == variantID {
			return it, true
		}
	}
	return models.OrderItem{}, false
}

func subtractQuantity(items []models.OrderItem, variantID string, qty int) []models.OrderItem {
	out := items[:0]
	for _, it := range items {
		if it.VariantID == variantID && qty > 0 {
			take := it.Quantity
			if take > qty {
				take = qty
			}
			it.Quantity -= take
			qty -= take
			if it.Quantity <= 0 {
				continue
			}
		}
		out = append(out, it)
	}
	return out
}

func (s *Service) publish(eventType string, tabID uuid.UUID) {
	if s.Bus == nil {
		return
	}
	s.Bus.Publish(events.Event{Type: eventType, Payload: map[string]any{"tab_id": tabID.String()}})
}
