package models

import "time"

// StockStatus labels a bike's stock level relative to its inventory settings.
type StockStatus string

const (
	StockOutOfStock  StockStatus = "Out of Stock"
	StockLow         StockStatus = "Low Stock"
	StockOverstocked StockStatus = "Overstocked"
	StockNormal      StockStatus = "Normal"
)

// Default inventory thresholds applied when a bike has no explicit settings.
const (
	DefaultMinimumStock = 5
	DefaultMaximumStock = 50
	DefaultReorderPoint = 10
)

// Inventory holds per-bike stock thresholds.
type Inventory struct {
	BikeID        string     `json:"bike_id" bson:"_id"`
	MinimumStock  int        `json:"minimum_stock" bson:"minimum_stock" binding:"gte=0"`
	MaximumStock  int        `json:"maximum_stock" bson:"maximum_stock" binding:"gte=1"`
	ReorderPoint  int        `json:"reorder_point" bson:"reorder_point" binding:"gte=0"`
	LastRestocked *time.Time `json:"last_restocked,omitempty" bson:"last_restocked,omitempty"`
	Notes         string     `json:"notes" bson:"notes"`
}

// DefaultInventory returns the settings a bike gets on first access.
func DefaultInventory(bikeID string) Inventory {
	return Inventory{
		BikeID:       bikeID,
		MinimumStock: DefaultMinimumStock,
		MaximumStock: DefaultMaximumStock,
		ReorderPoint: DefaultReorderPoint,
	}
}

// Validate checks the field rules, then how the thresholds relate.
func (i Inventory) Validate() error {
	if err := checkFields(i); err != nil {
		return err
	}
	switch {
	case i.MinimumStock >= i.MaximumStock:
		return Invalid("maximum_stock", "maximum stock must be greater than minimum stock")
	case i.ReorderPoint < i.MinimumStock:
		return Invalid("reorder_point", "reorder point should not be less than minimum stock")
	case i.ReorderPoint >= i.MaximumStock:
		return Invalid("reorder_point", "reorder point should be less than maximum stock")
	}
	return nil
}

// NeedsReorder is true once stock has fallen to the reorder point.
func (i Inventory) NeedsReorder(stock int) bool {
	return stock <= i.ReorderPoint
}

// Status classifies stock against the thresholds.
func (i Inventory) Status(stock int) StockStatus {
	switch {
	case stock == 0:
		return StockOutOfStock
	case stock <= i.ReorderPoint:
		return StockLow
	case stock >= i.MaximumStock:
		return StockOverstocked
	default:
		return StockNormal
	}
}

// InventoryView is a bike's inventory settings together with its live stock.
type InventoryView struct {
	Inventory
	Bike         Bike        `json:"bike"`
	CurrentStock int         `json:"current_stock"`
	Status       StockStatus `json:"stock_status"`
	NeedsReorder bool        `json:"needs_reorder"`
}

// NewInventoryView derives status fields from the bike's stock.
func NewInventoryView(inv Inventory, bike Bike) InventoryView {
	return InventoryView{
		Inventory:    inv,
		Bike:         bike,
		CurrentStock: bike.StockQuantity,
		Status:       inv.Status(bike.StockQuantity),
		NeedsReorder: inv.NeedsReorder(bike.StockQuantity),
	}
}
