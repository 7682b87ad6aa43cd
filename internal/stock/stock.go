package stock

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/Skotchmaster/pos_engine/internal/models"
)

// ComputeMakable reports, per variant, whether every declared consumption
// entry can currently be fulfilled. Fail closed: one malformed or dangling
// reference makes the whole variant unmakable, and the offending reference is
// named in a warning. A variant with no entries is always makable.
func ComputeMakable(consumptionByVariant map[string][]Consumption, levels map[uuid.UUID]float64, log *slog.Logger) map[string]bool {
	if log == nil {
		log = slog.Default()
	}
	makable := make(map[string]bool, len(consumptionByVariant))
	for variantID, entries := range consumptionByVariant {
		ok := true
		for _, e := range entries {
			if !e.Ref.Resolved {
				log.Warn("variant references malformed stock item", "variant_id", variantID, "ref", e.Ref.Raw)
				ok = false
				continue
			}
			level, exists := levels[e.Ref.ID]
			if !exists {
				log.Warn("variant references missing stock item", "variant_id", variantID, "stock_item_id", e.Ref.ID)
				ok = false
				continue
			}
			if level < e.Quantity {
				ok = false
			}
		}
		makable[variantID] = ok
	}
	return makable
}

// ComputeConsumption aggregates the stock draw-down for a set of order lines.
// Malformed or dangling references are skipped with a warning rather than
// failing the caller: settlement must never break on catalog data quality.
func ComputeConsumption(items []models.OrderItem, consumptionByVariant map[string][]Consumption, levels map[uuid.UUID]float64, log *slog.Logger) map[uuid.UUID]float64 {
	if log == nil {
		log = slog.Default()
	}
	out := make(map[uuid.UUID]float64)
	for _, it := range items {
		for _, e := range consumptionByVariant[it.VariantID] {
			if !e.Ref.Resolved {
				log.Warn("skipping malformed stock reference", "variant_id", it.VariantID, "ref", e.Ref.Raw)
				continue
			}
			if _, exists := levels[e.Ref.ID]; !exists {
				log.Warn("skipping dangling stock reference", "variant_id", it.VariantID, "stock_item_id", e.Ref.ID)
				continue
			}
			out[e.Ref.ID] += e.Quantity * float64(it.Quantity)
		}
	}
	return out
}
