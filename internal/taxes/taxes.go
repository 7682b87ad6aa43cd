package taxes

import (
	"fmt"
	"math"

	"github.com/Skotchmaster/pos_engine/internal/apperr"
	"github.com/Skotchmaster/pos_engine/internal/models"
)

type Mode string

const (
	ModeInclusive Mode = "inclusive"
	ModeExclusive Mode = "exclusive"
	ModeNone      Mode = "none"
)

type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// ComputeTotals derives subtotal, tax and total for a set of order lines.
// Inclusive mode extracts the tax already contained in the price, exclusive
// mode adds it on top, none skips tax entirely. Pure, no I/O.
func ComputeTotals(items []models.OrderItem, mode Mode, tip float64) (Totals, error) {
	switch mode {
	case ModeInclusive, ModeExclusive, ModeNone:
	default:
		return Totals{}, fmt.Errorf("unknown tax mode %q: %w", mode, apperr.ErrValidation)
	}
	if tip < 0 || math.IsNaN(tip) || math.IsInf(tip, 0) {
		return Totals{}, fmt.Errorf("tip must be a non-negative number: %w", apperr.ErrValidation)
	}

	var t Totals
	for _, it := range items {
		if err := validateItem(it); err != nil {
			return Totals{}, err
		}
		lineTotal := it.Price * float64(it.Quantity)
		switch mode {
		case ModeInclusive:
			lineSubtotal := lineTotal / (1 + it.EffectiveTaxRate)
			t.Subtotal += lineSubtotal
			t.Tax += lineTotal - lineSubtotal
		case ModeExclusive:
			t.Subtotal += lineTotal
			t.Tax += lineTotal * it.EffectiveTaxRate
		case ModeNone:
			t.Subtotal += lineTotal
		}
	}
	t.Total = t.Subtotal + t.Tax + tip
	return t, nil
}

func validateItem(it models.OrderItem) error {
	if it.Price < 0 || math.IsNaN(it.Price) || math.IsInf(it.Price, 0) {
		return fmt.Errorf("item %s: price must be a non-negative number: %w", it.VariantID, apperr.ErrValidation)
	}
	if it.Quantity < 1 {
		return fmt.Errorf("item %s: quantity must be at least 1: %w", it.VariantID, apperr.ErrValidation)
	}
	if it.EffectiveTaxRate < 0 || it.EffectiveTaxRate >= 1 || math.IsNaN(it.EffectiveTaxRate) {
		return fmt.Errorf("item %s: tax rate must be a fraction in [0,1): %w", it.VariantID, apperr.ErrValidation)
	}
	return nil
}
