package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// Provider supplies the read-only catalog snapshot. The catalog itself is
// maintained by the admin side, outside this engine.
type Provider interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// Static serves a fixed snapshot, used in tests and for file-backed catalogs.
type Static struct {
	Data Snapshot
}

func (s Static) Snapshot(ctx context.Context) (Snapshot, error) {
	return s.Data, nil
}

type fileVariant struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Price            float64          `json:"price"`
	EffectiveTaxRate float64          `json:"effective_tax_rate"`
	Consumption      []RawConsumption `json:"consumption"`
}

type fileProduct struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Variants []fileVariant `json:"variants"`
}

// LoadFile reads a catalog export from disk, resolving every stock reference
// exactly once.
func LoadFile(path string) (Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	var products []fileProduct
	if err := json.Unmarshal(raw, &products); err != nil {
		return Snapshot{}, fmt.Errorf("catalog: parse %s: %w", path, err)
	}

	var snap Snapshot
	for _, fp := range products {
		p := Product{ID: fp.ID, Name: fp.Name}
		for _, fv := range fp.Variants {
			p.Variants = append(p.Variants, NewVariant(fv.ID, fv.Name, fv.Price, fv.EffectiveTaxRate, fv.Consumption))
		}
		snap.Products = append(snap.Products, p)
	}
	return snap, nil
}
