package models

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultLowStockThreshold is the stock level under which a bike counts as low stock.
const DefaultLowStockThreshold = 5

// MaxStock is the largest stock quantity a bike may hold. It matches the
// INTEGER stock column of the postgres store.
const MaxStock = math.MaxInt32

// BikeType enumerates the bike categories carried by the store.
type BikeType string

const (
	BikeTypeMountain BikeType = "Mountain"
	BikeTypeRoad     BikeType = "Road"
	BikeTypeHybrid   BikeType = "Hybrid"
	BikeTypeElectric BikeType = "Electric"
	BikeTypeBMX      BikeType = "BMX"
	BikeTypeCruiser  BikeType = "Cruiser"
)

// BikeTypes lists every supported type in display order.
var BikeTypes = []BikeType{
	BikeTypeMountain,
	BikeTypeRoad,
	BikeTypeHybrid,
	BikeTypeElectric,
	BikeTypeBMX,
	BikeTypeCruiser,
}

// Valid reports whether t is one of BikeTypes.
func (t BikeType) Valid() bool {
	for _, known := range BikeTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Label is the long display name, e.g. "Mountain Bike".
func (t BikeType) Label() string {
	return string(t) + " Bike"
}

// Bike is a sellable bike variant. Brand, model and color identify it.
type Bike struct {
	ID            string          `json:"id" bson:"_id"`
	Brand         string          `json:"brand" bson:"brand" binding:"required,max=50"`
	Model         string          `json:"model" bson:"model" binding:"required,max=100"`
	Type          BikeType        `json:"type" bson:"type" binding:"biketype"`
	Price         decimal.Decimal `json:"price" bson:"price" binding:"gte=0.01,lte=99999999.99"`
	StockQuantity int             `json:"stock_quantity" bson:"stock_quantity" binding:"gte=0,lte=2147483647"`
	Color         string          `json:"color" bson:"color" binding:"max=30"`
	Description   string          `json:"description" bson:"description"`
	SupplierID    string          `json:"supplier_id,omitempty" bson:"supplier_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" bson:"updated_at"`
}

func (b Bike) String() string {
	return fmt.Sprintf("%s %s (%s)", b.Brand, b.Model, b.Color)
}

// IsLowStock is true when fewer than DefaultLowStockThreshold units remain.
func (b Bike) IsLowStock() bool {
	return b.StockQuantity < DefaultLowStockThreshold
}

// IsInStock is true when at least one unit is available.
func (b Bike) IsInStock() bool {
	return b.StockQuantity > 0
}

// SameVariant compares the (brand, model, color) identity.
func (b Bike) SameVariant(other Bike) bool {
	return b.Brand == other.Brand && b.Model == other.Model && b.Color == other.Color
}

// Normalize trims text fields and fills defaults.
func (b *Bike) Normalize() {
	b.Brand = strings.TrimSpace(b.Brand)
	b.Model = strings.TrimSpace(b.Model)
	b.Color = strings.TrimSpace(b.Color)
	b.Description = strings.TrimSpace(b.Description)
	b.SupplierID = strings.TrimSpace(b.SupplierID)
	if b.Type == "" {
		b.Type = BikeTypeMountain
	}
	if b.Color == "" {
		b.Color = "Black"
	}
	b.Price = b.Price.Round(2)
}

// Validate checks field level rules. Uniqueness is enforced by the store.
func (b Bike) Validate() error {
	return checkFields(b)
}

// CheckRestock rejects a restock that would push the stock past MaxStock.
func (b Bike) CheckRestock(quantity int) error {
	if quantity < 1 {
		return Invalid("quantity", "must be at least 1")
	}
	if quantity > MaxStock-b.StockQuantity {
		return Invalid("quantity", "stock cannot exceed %d units, at most %d more can be added", MaxStock, MaxStock-b.StockQuantity)
	}
	return nil
}

// ApplySale checks the requested quantity against the stock on hand, defaults
// the sale price to the current bike price and decrements the stock. On error
// neither the bike nor the sale is modified.
func (b *Bike) ApplySale(s *Sale) error {
	if s.Quantity > b.StockQuantity {
		return &InsufficientStockError{BikeID: b.ID, Requested: s.Quantity, Available: b.StockQuantity}
	}
	if s.SalePrice.IsZero() {
		s.SalePrice = b.Price
	}
	b.StockQuantity -= s.Quantity
	return nil
}

// BikeFilter narrows bike listings.
type BikeFilter struct {
	Search      string
	Type        BikeType
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	InStockOnly bool
	SupplierID  string
}

// Match reports whether b satisfies every populated criterion.
func (f BikeFilter) Match(b Bike) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(b.Brand), needle) &&
			!strings.Contains(strings.ToLower(b.Model), needle) &&
			!strings.Contains(strings.ToLower(string(b.Type)), needle) {
			return false
		}
	}
	if f.Type != "" && b.Type != f.Type {
		return false
	}
	if f.MinPrice != nil && b.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && b.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.InStockOnly && b.StockQuantity <= 0 {
		return false
	}
	if f.SupplierID != "" && b.SupplierID != f.SupplierID {
		return false
	}
	return true
}
