package stock

import "github.com/google/uuid"

// Ref is a stock-item reference parsed once at catalog-load time. Either it
// resolved to a stock item id or it carries the raw value for warning logs;
// downstream code never re-validates string shape.
type Ref struct {
	ID       uuid.UUID
	Raw      string
	Resolved bool
}

func ParseRef(raw string) Ref {
	id, err := uuid.Parse(raw)
	if err != nil {
		return Ref{Raw: raw}
	}
	return Ref{ID: id, Raw: raw, Resolved: true}
}

// Consumption declares how much of a stock item one unit of a variant draws.
type Consumption struct {
	Ref      Ref
	Quantity float64
}
