package catalog

import (
	"github.com/Skotchmaster/pos_engine/internal/stock"
)

// RawConsumption is the stock linkage exactly as the catalog collaborator
// stores it: an untrusted string id plus a per-unit quantity.
type RawConsumption struct {
	StockItemID string  `json:"stock_item_id"`
	Quantity    float64 `json:"quantity"`
}

type Variant struct {
	ID               string              `json:"id"`
	Name             string              `json:"name"`
	Price            float64             `json:"price"`
	EffectiveTaxRate float64             `json:"effective_tax_rate"`
	Consumption      []stock.Consumption `json:"-"`
}

type Product struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Variants []Variant `json:"variants"`
}

// Snapshot is a read-only view of the catalog with stock references resolved
// once at load time.
type Snapshot struct {
	Products []Product
}

// NewVariant builds a variant, parsing each raw stock reference exactly once.
func NewVariant(id, name string, price, taxRate float64, raw []RawConsumption) Variant {
	v := Variant{ID: id, Name: name, Price: price, EffectiveTaxRate: taxRate}
	for _, rc := range raw {
		v.Consumption = append(v.Consumption, stock.Consumption{
			Ref:      stock.ParseRef(rc.StockItemID),
			Quantity: rc.Quantity,
		})
	}
	return v
}

// ConsumptionIndex maps variant id to its declared stock draw-down.
func (s Snapshot) ConsumptionIndex() map[string][]stock.Consumption {
	idx := make(map[string][]stock.Consumption)
	for _, p := range s.Products {
		for _, v := range p.Variants {
			idx[v.ID] = v.Consumption
		}
	}
	return idx
}

func (s Snapshot) FindVariant(variantID string) (Product, Variant, bool) {
	for _, p := range s.Products {
		for _, v := range p.Variants {
			if v.ID == variantID {
				return p, v, true
			}
		}
	}
	return Product{}, Variant{}, false
}
