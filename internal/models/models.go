package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SessionActive        = "active"
	SessionPendingLogout = "pending_logout"
	SessionCompleted     = "completed"
	SessionAssignTab     = "assign-tab"
)

const (
	TableAvailable = "available"
	TableOccupied  = "occupied"
)

const (
	TransactionCompleted     = "completed"
	TransactionComplimentary = "complimentary"
)

type OrderItem struct {
	ID               uuid.UUID `json:"id"`
	VariantID        string    `json:"variant_id"`
	ProductID        string    `json:"product_id"`
	Name             string    `json:"name"`
	Price            float64   `json:"price"`
	Quantity         int       `json:"quantity"`
	EffectiveTaxRate float64   `json:"effective_tax_rate"`
}

type OrderSession struct {
	ID         uuid.UUID   `gorm:"primaryKey"                json:"id"`
	UserID     uuid.UUID   `gorm:"uniqueIndex;not null"      json:"user_id"`
	Items      []OrderItem `gorm:"serializer:json"           json:"items"`
	Status     string      `gorm:"not null;default:active"   json:"status"`
	LogoutTime *time.Time  `json:"logout_time"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

type Tab struct {
	ID        uuid.UUID   `gorm:"primaryKey"      json:"id"`
	Name      string      `gorm:"not null"        json:"name"`
	Items     []OrderItem `gorm:"serializer:json" json:"items"`
	TillID    string      `gorm:"index"           json:"till_id"`
	TillName  string      `json:"till_name"`
	TableID   *uuid.UUID  `gorm:"index"           json:"table_id"`
	CreatedAt time.Time   `json:"created_at"`
}

type Table struct {
	ID     uuid.UUID `gorm:"primaryKey"                 json:"id"`
	Name   string    `gorm:"not null"                   json:"name"`
	Status string    `gorm:"not null;default:available" json:"status"`
	RoomID string    `gorm:"index"                      json:"room_id"`
}

type StockItem struct {
	ID       uuid.UUID `gorm:"primaryKey"            json:"id"`
	Name     string    `json:"name"`
	Quantity float64   `gorm:"check:quantity >= 0"   json:"quantity"`
}

// Transaction is immutable once written: the item snapshot is serialized at
// settlement time and never re-derived from the catalog.
type Transaction struct {
	ID             uuid.UUID   `gorm:"primaryKey"      json:"id"`
	Items          []OrderItem `gorm:"serializer:json" json:"items"`
	Subtotal       float64     `json:"subtotal"`
	Tax            float64     `json:"tax"`
	Tip            float64     `json:"tip"`
	Discount       float64     `json:"discount"`
	DiscountReason string      `json:"discount_reason"`
	Total          float64     `json:"total"`
	PaymentMethod  string      `json:"payment_method"`
	Status         string      `gorm:"not null"        json:"status"`
	UserID         uuid.UUID   `gorm:"index"           json:"user_id"`
	TillID         string      `gorm:"index"           json:"till_id"`
	TableID        *uuid.UUID  `json:"table_id"`
	CreatedAt      time.Time   `json:"created_at"`
}

type Settings struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	TaxMode string `gorm:"not null;default:inclusive" json:"tax_mode"`
}

func (s *OrderSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (t *Tab) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (OrderSession) TableName() string { return "order_sessions" }
func (Tab) TableName() string          { return "tabs" }
func (Table) TableName() string        { return "tables" }
func (StockItem) TableName() string    { return "stock_items" }
func (Transaction) TableName() string  { return "transactions" }
func (Settings) TableName() string     { return "settings" }

// PlaceholderName is the display name given to items that arrive without one.
func PlaceholderName(variantID string) string {
	return fmt.Sprintf("Item %s", variantID)
}

// NormalizeItems repairs blank item names in place and returns the slice.
// Applied at every boundary where items enter or leave the cart, so an
// OrderItem leaving this engine always has a non-blank name.
func NormalizeItems(items []OrderItem) []OrderItem {
	for i := range items {
		if strings.TrimSpace(items[i].Name) == "" {
			items[i].Name = PlaceholderName(items[i].VariantID)
		}
	}
	return items
}

// MergeByVariant merges src lines into dst: lines sharing a variant get their
// quantities added, unknown variants are appended with a fresh identity so no
// two containers ever share an item id.
func MergeByVariant(dst, src []OrderItem) []OrderItem {
	for _, in := range src {
		merged := false
		for i := range dst {
			if dst[i].VariantID == in.VariantID {
				dst[i].Quantity += in.Quantity
				merged = true
				break
			}
		}
		if !merged {
			in.ID = uuid.New()
			dst = append(dst, in)
		}
	}
	return NormalizeItems(dst)
}

// SumQuantity returns the total unit count for a variant across the item set.
func SumQuantity(items []OrderItem, variantID string) int {
	n := 0
	for _, it := range items {
		if it.VariantID == variantID {
			n += it.Quantity
		}
	}
	return n
}
