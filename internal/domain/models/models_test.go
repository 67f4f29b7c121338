package models

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBikeApplySale(t *testing.T) {
	bike := Bike{ID: "b1", Price: decimal.RequireFromString("1500.00"), StockQuantity: 10}
	sale := Sale{Quantity: 3}

	require.NoError(t, bike.ApplySale(&sale))
	assert.Equal(t, 7, bike.StockQuantity)
	assert.True(t, sale.SalePrice.Equal(bike.Price), "sale price defaults to bike price")
}

func TestBikeApplySaleKeepsExplicitPrice(t *testing.T) {
	bike := Bike{ID: "b1", Price: decimal.RequireFromString("1500.00"), StockQuantity: 10}
	sale := Sale{Quantity: 1, SalePrice: decimal.RequireFromString("1200.00")}

	require.NoError(t, bike.ApplySale(&sale))
	assert.Equal(t, "1200", sale.SalePrice.String())
}

func TestBikeApplySaleInsufficientStock(t *testing.T) {
	bike := Bike{ID: "b1", Price: decimal.NewFromInt(100), StockQuantity: 2}
	sale := Sale{Quantity: 5}

	err := bike.ApplySale(&sale)
	require.Error(t, err)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 5, stockErr.Requested)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, "insufficient stock. available: 2", err.Error())

	assert.Equal(t, 2, bike.StockQuantity)
	assert.True(t, sale.SalePrice.IsZero())
}

func TestBikeApplySaleExactStock(t *testing.T) {
	bike := Bike{ID: "b1", Price: decimal.NewFromInt(100), StockQuantity: 4}
	sale := Sale{Quantity: 4}

	require.NoError(t, bike.ApplySale(&sale))
	assert.Zero(t, bike.StockQuantity)
	assert.False(t, bike.IsInStock())
}

// maxStock is a variable so that maxStock+1 is not a constant overflow on
// 32-bit platforms.
var maxStock = MaxStock

func TestBikeNormalizeAndValidate(t *testing.T) {
	bike := Bike{Brand: "  Trek ", Model: "Marlin 7", Price: decimal.RequireFromString("499.999")}
	bike.Normalize()

	assert.Equal(t, "Trek", bike.Brand)
	assert.Equal(t, BikeTypeMountain, bike.Type)
	assert.Equal(t, "Black", bike.Color)
	assert.Equal(t, "500", bike.Price.String())
	require.NoError(t, bike.Validate())

	tests := []struct {
		name  string
		mut   func(*Bike)
		field string
	}{
		{"empty brand", func(b *Bike) { b.Brand = "" }, "brand"},
		{"empty model", func(b *Bike) { b.Model = "" }, "model"},
		{"unknown type", func(b *Bike) { b.Type = "Tandem" }, "type"},
		{"zero price", func(b *Bike) { b.Price = decimal.Zero }, "price"},
		{"negative stock", func(b *Bike) { b.StockQuantity = -1 }, "stock_quantity"},
		{"stock over cap", func(b *Bike) { b.StockQuantity = maxStock + 1 }, "stock_quantity"},
		{"price over cap", func(b *Bike) { b.Price = decimal.RequireFromString("100000000.00") }, "price"},
		{"long brand", func(b *Bike) { b.Brand = strings.Repeat("x", 51) }, "brand"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := bike
			tt.mut(&b)
			err := b.Validate()

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestBikeValidateBounds(t *testing.T) {
	bike := Bike{Brand: "Trek", Model: "Marlin 7", Type: BikeTypeMountain, Price: MaxPrice, StockQuantity: MaxStock}
	require.NoError(t, bike.Validate())

	bike.Price = MinPrice
	require.NoError(t, bike.Validate())

	bike.Type = "Tandem"
	var vErr *ValidationError
	require.ErrorAs(t, bike.Validate(), &vErr)
	assert.Equal(t, "type", vErr.Field)
	assert.Equal(t, `unsupported bike type "Tandem"`, vErr.Message)
}

func TestBikeCheckRestock(t *testing.T) {
	bike := Bike{ID: "b1", StockQuantity: 10}

	require.NoError(t, bike.CheckRestock(MaxStock-10))
	assert.ErrorIs(t, bike.CheckRestock(0), ErrInvalidInput)

	err := bike.CheckRestock(MaxStock - 9)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "quantity", vErr.Field)
	assert.Equal(t, 10, bike.StockQuantity)
}

func TestBikeFilterMatch(t *testing.T) {
	bike := Bike{Brand: "Giant", Model: "Talon 3", Type: BikeTypeMountain, Price: decimal.NewFromInt(420), StockQuantity: 0, SupplierID: "s1"}
	low := decimal.NewFromInt(400)
	high := decimal.NewFromInt(410)

	assert.True(t, BikeFilter{}.Match(bike))
	assert.True(t, BikeFilter{Search: "tal"}.Match(bike))
	assert.True(t, BikeFilter{Search: "mountain"}.Match(bike))
	assert.False(t, BikeFilter{Search: "trek"}.Match(bike))
	assert.False(t, BikeFilter{Type: BikeTypeRoad}.Match(bike))
	assert.True(t, BikeFilter{MinPrice: &low}.Match(bike))
	assert.False(t, BikeFilter{MaxPrice: &high}.Match(bike))
	assert.False(t, BikeFilter{InStockOnly: true}.Match(bike))
	assert.False(t, BikeFilter{SupplierID: "s2"}.Match(bike))
}

func TestSaleRequestValidate(t *testing.T) {
	zero := decimal.Zero
	tooHigh := decimal.RequireFromString("100000000")
	tests := []struct {
		name  string
		req   SaleRequest
		field string
	}{
		{"missing bike", SaleRequest{CustomerID: "c", Quantity: 1}, "bike_id"},
		{"missing customer", SaleRequest{BikeID: "b", Quantity: 1}, "customer_id"},
		{"zero quantity", SaleRequest{BikeID: "b", CustomerID: "c"}, "quantity"},
		{"zero price", SaleRequest{BikeID: "b", CustomerID: "c", Quantity: 1, UnitPrice: &zero}, "sale_price"},
		{"price over cap", SaleRequest{BikeID: "b", CustomerID: "c", Quantity: 1, UnitPrice: &tooHigh}, "sale_price"},
		{"blank bike", SaleRequest{BikeID: "  ", CustomerID: "c", Quantity: 1}, "bike_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var vErr *ValidationError
			require.ErrorAs(t, tt.req.Validate(), &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}

	assert.NoError(t, SaleRequest{BikeID: "b", CustomerID: "c", Quantity: 2}.Validate())
}

func TestSaleDetailTotal(t *testing.T) {
	sale := Sale{Quantity: 2, SalePrice: decimal.RequireFromString("450.50")}
	detail := NewSaleDetail(sale, nil, nil)

	assert.Equal(t, "901", detail.TotalAmount.String())
}

func TestInventoryValidate(t *testing.T) {
	require.NoError(t, DefaultInventory("b1").Validate())

	tests := []struct {
		name string
		inv  Inventory
	}{
		{"negative minimum", Inventory{MinimumStock: -1, MaximumStock: 10, ReorderPoint: 2}},
		{"maximum below one", Inventory{MinimumStock: 0, MaximumStock: 0, ReorderPoint: 0}},
		{"minimum not below maximum", Inventory{MinimumStock: 10, MaximumStock: 10, ReorderPoint: 10}},
		{"reorder below minimum", Inventory{MinimumStock: 5, MaximumStock: 50, ReorderPoint: 4}},
		{"reorder at maximum", Inventory{MinimumStock: 5, MaximumStock: 50, ReorderPoint: 50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.inv.Validate(), ErrInvalidInput)
		})
	}
}

func TestInventoryStatus(t *testing.T) {
	inv := DefaultInventory("b1")

	assert.Equal(t, StockOutOfStock, inv.Status(0))
	assert.Equal(t, StockLow, inv.Status(10))
	assert.Equal(t, StockNormal, inv.Status(11))
	assert.Equal(t, StockOverstocked, inv.Status(50))

	assert.True(t, inv.NeedsReorder(10))
	assert.False(t, inv.NeedsReorder(11))

	view := NewInventoryView(inv, Bike{ID: "b1", StockQuantity: 3})
	assert.Equal(t, 3, view.CurrentStock)
	assert.Equal(t, StockLow, view.Status)
	assert.True(t, view.NeedsReorder)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page := Paginate(items, 2, 2)
	assert.Equal(t, []int{3, 4}, page.Results)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 5, page.TotalCount)

	last := Paginate(items, 99, 2)
	assert.Equal(t, 3, last.Page)
	assert.Equal(t, []int{5}, last.Results)

	first := Paginate(items, -1, 2)
	assert.Equal(t, 1, first.Page)

	empty := Paginate([]int{}, 1, 20)
	assert.Equal(t, 1, empty.TotalPages)
	assert.Empty(t, empty.Results)
}

func TestCustomerValidate(t *testing.T) {
	c := Customer{Name: " Priya ", Email: " Priya@Email.com ", Phone: "+91-9876543211"}
	c.Normalize()

	assert.Equal(t, "priya@email.com", c.Email)
	require.NoError(t, c.Validate())

	c.Email = "not-an-email"
	assert.ErrorIs(t, c.Validate(), ErrInvalidInput)

	c.Email = "priya@email.com"
	c.Phone = "+91-98765432110000"
	assert.ErrorIs(t, c.Validate(), ErrInvalidInput)
}

func TestSupplierValidate(t *testing.T) {
	supplier := Supplier{Name: "Scott Sports SA", ContactPerson: "David Kumar", Email: "david@scott-sports.com", Phone: "+1-555-0105"}
	require.NoError(t, supplier.Validate())

	tests := []struct {
		name  string
		mut   func(*Supplier)
		field string
		msg   string
	}{
		{"missing contact", func(s *Supplier) { s.ContactPerson = "" }, "contact_person", "must not be empty"},
		{"bad email", func(s *Supplier) { s.Email = "david at scott" }, "email", "enter a valid email address"},
		{"long phone", func(s *Supplier) { s.Phone = "+41-26-460-16-16-00" }, "phone", "must be at most 15 characters"},
		{"long name", func(s *Supplier) { s.Name = strings.Repeat("n", 101) }, "name", "must be at most 100 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sp := supplier
			tt.mut(&sp)

			var vErr *ValidationError
			require.ErrorAs(t, sp.Validate(), &vErr)
			assert.Equal(t, tt.field, vErr.Field)
			assert.Equal(t, tt.msg, vErr.Message)
		})
	}
}

func TestFieldErrorPassesOtherErrors(t *testing.T) {
	plain := errors.New("boom")
	assert.Same(t, plain, FieldError(plain))
	assert.NoError(t, FieldError(nil))
}

func TestSortSalesNewestFirst(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	sales := []Sale{
		{ID: "old", SaleDate: base},
		{ID: "new", SaleDate: base.Add(48 * time.Hour)},
		{ID: "mid", SaleDate: base.Add(24 * time.Hour)},
	}
	SortSales(sales)

	assert.Equal(t, "new", sales[0].ID)
	assert.Equal(t, "mid", sales[1].ID)
	assert.Equal(t, "old", sales[2].ID)
}

func TestErrorHelpers(t *testing.T) {
	assert.True(t, errors.Is(NotFound("bike", "b1"), ErrNotFound))
	assert.Equal(t, "bike b1: not found", NotFound("bike", "b1").Error())
	assert.True(t, errors.Is(Conflict("email %s taken", "a@b.c"), ErrConflict))
}
