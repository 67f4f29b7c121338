package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Accepted bike and sale price range. MaxPrice is the largest NUMERIC(10,2)
// value.
var (
	MinPrice = decimal.New(1, -2)
	MaxPrice = decimal.RequireFromString("99999999.99")
)

// Sale records a completed transaction. Only Notes may change after creation.
type Sale struct {
	ID         string          `json:"id" bson:"_id"`
	CustomerID string          `json:"customer_id" bson:"customer_id"`
	BikeID     string          `json:"bike_id" bson:"bike_id"`
	Quantity   int             `json:"quantity" bson:"quantity"`
	SalePrice  decimal.Decimal `json:"sale_price" bson:"sale_price"`
	SaleDate   time.Time       `json:"sale_date" bson:"sale_date"`
	Notes      string          `json:"notes" bson:"notes"`
}

// TotalAmount is quantity times unit sale price.
func (s Sale) TotalAmount() decimal.Decimal {
	return s.SalePrice.Mul(decimal.NewFromInt(int64(s.Quantity)))
}

// SaleRequest is the input of the sale recording operation. A nil UnitPrice
// means the bike's current price is used.
type SaleRequest struct {
	BikeID     string           `json:"bike_id" binding:"required,notblank"`
	CustomerID string           `json:"customer_id" binding:"required,notblank"`
	Quantity   int              `json:"quantity" binding:"gte=1,lte=2147483647"`
	UnitPrice  *decimal.Decimal `json:"sale_price,omitempty" binding:"omitempty,gte=0.01,lte=99999999.99"`
	Notes      string           `json:"notes"`
}

// Validate checks the preconditions that do not need the store.
func (r SaleRequest) Validate() error {
	return checkFields(r)
}

// SaleFilter narrows sale listings.
type SaleFilter struct {
	CustomerID string
	BikeID     string
	Limit      int
}

// Match reports whether s satisfies every populated criterion. Limit is
// applied by the caller.
func (f SaleFilter) Match(s Sale) bool {
	if f.CustomerID != "" && s.CustomerID != f.CustomerID {
		return false
	}
	if f.BikeID != "" && s.BikeID != f.BikeID {
		return false
	}
	return true
}

// SaleDetail is a sale joined with its bike and customer for display.
type SaleDetail struct {
	Sale
	TotalAmount decimal.Decimal `json:"total_amount"`
	Bike        *Bike           `json:"bike,omitempty"`
	Customer    *Customer       `json:"customer,omitempty"`
}

// NewSaleDetail fills TotalAmount from the sale.
func NewSaleDetail(s Sale, bike *Bike, customer *Customer) SaleDetail {
	return SaleDetail{Sale: s, TotalAmount: s.TotalAmount(), Bike: bike, Customer: customer}
}
