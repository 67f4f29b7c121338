package catalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mamadbah2/bikestore/internal/domain/models"
	"github.com/mamadbah2/bikestore/internal/repository/memory"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return NewService(store, zaptest.NewLogger(t)), store
}

func trekSupplier() models.Supplier {
	return models.Supplier{Name: "Trek Bicycle Corporation", ContactPerson: "John Smith", Email: "JOHN@trek.com", Phone: "+1-555-0101"}
}

func TestCreateBikeAssignsIdentityAndDefaults(t *testing.T) {
	svc, _ := newTestService(t)

	bike, err := svc.CreateBike(context.Background(), models.Bike{Brand: " Trek ", Model: "Marlin 7", Price: decimal.NewFromInt(580), StockQuantity: 20})
	require.NoError(t, err)

	assert.NotEmpty(t, bike.ID)
	assert.Equal(t, "Trek", bike.Brand)
	assert.Equal(t, models.BikeTypeMountain, bike.Type)
	assert.Equal(t, "Black", bike.Color)
	assert.False(t, bike.CreatedAt.IsZero())
}

func TestCreateBikeRejectsDuplicateVariant(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	bike := models.Bike{Brand: "Trek", Model: "Marlin 7", Color: "Orange", Price: decimal.NewFromInt(580)}

	_, err := svc.CreateBike(ctx, bike)
	require.NoError(t, err)

	_, err = svc.CreateBike(ctx, bike)
	assert.ErrorIs(t, err, models.ErrConflict)

	_, err = svc.CreateBike(ctx, models.Bike{Brand: "Trek", Model: "Marlin 7", Price: decimal.Zero})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestGetBikeSummary(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	bike, err := svc.CreateBike(ctx, models.Bike{Brand: "Haro", Model: "Downtown 20.5", Type: models.BikeTypeBMX, Price: decimal.NewFromInt(420), StockQuantity: 12})
	require.NoError(t, err)
	require.NoError(t, store.CreateCustomer(ctx, &models.Customer{ID: "c1", Name: "Kavya Iyer", Email: "kavya.iyer@email.com"}))

	for i := 0; i < 7; i++ {
		_, err := store.RecordSale(ctx, &models.Sale{
			ID: fmt.Sprintf("sale-%d", i), BikeID: bike.ID, CustomerID: "c1", Quantity: 1,
			SaleDate: time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}

	summary, err := svc.GetBike(ctx, bike.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, summary.TotalSold)
	assert.Equal(t, 5, summary.StockQuantity)
	assert.False(t, summary.IsLowStock)
	assert.True(t, summary.IsInStock)
	require.Len(t, summary.RecentSales, 5)
	assert.Equal(t, "sale-6", summary.RecentSales[0].ID)
	require.NotNil(t, summary.RecentSales[0].Customer)

	_, err = svc.GetBike(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateBikeKeepsCreatedAt(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	bike, err := svc.CreateBike(ctx, models.Bike{Brand: "Giant", Model: "Talon 3", Price: decimal.NewFromInt(420), StockQuantity: 3})
	require.NoError(t, err)

	svc.now = func() time.Time { return bike.CreatedAt.Add(time.Hour) }
	updated, err := svc.UpdateBike(ctx, bike.ID, models.Bike{Brand: "Giant", Model: "Talon 3", Price: decimal.NewFromInt(399), StockQuantity: 4, Color: "Yellow"})
	require.NoError(t, err)

	assert.Equal(t, bike.ID, updated.ID)
	assert.True(t, bike.CreatedAt.Equal(updated.CreatedAt))
	assert.Equal(t, "399", updated.Price.String())
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	_, err = svc.UpdateBike(ctx, "missing", *updated)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListBikesPaginatesAndFilters(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 14; i++ {
		_, err := svc.CreateBike(ctx, models.Bike{
			Brand: "Trek", Model: fmt.Sprintf("Model %02d", i), Type: models.BikeTypeRoad,
			Price: decimal.NewFromInt(int64(100 * (i + 1))), StockQuantity: i % 2,
		})
		require.NoError(t, err)
	}

	page, err := svc.ListBikes(ctx, models.BikeFilter{}, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Results, 2)
	assert.Equal(t, "Model 12", page.Results[0].Model)

	inStock, err := svc.ListBikes(ctx, models.BikeFilter{InStockOnly: true}, 1)
	require.NoError(t, err)
	assert.Equal(t, 7, inStock.TotalCount)

	_, err = svc.ListBikes(ctx, models.BikeFilter{Type: "Tandem"}, 1)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestBikePrice(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	bike, err := svc.CreateBike(ctx, models.Bike{Brand: "GT", Model: "Performer 21", Price: decimal.RequireFromString("350.00"), StockQuantity: 8})
	require.NoError(t, err)

	lookup, err := svc.BikePrice(ctx, bike.ID)
	require.NoError(t, err)
	assert.True(t, lookup.Success)
	assert.Equal(t, "350", lookup.Price.String())
	assert.Equal(t, 8, *lookup.Stock)

	missing, err := svc.BikePrice(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, missing.Success)
	assert.Nil(t, missing.Price)
}

func TestSupplierLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	supplier, err := svc.CreateSupplier(ctx, trekSupplier())
	require.NoError(t, err)
	assert.Equal(t, "john@trek.com", supplier.Email)

	bike, err := svc.CreateBike(ctx, models.Bike{Brand: "Trek", Model: "FX 3 Disc", Price: decimal.NewFromInt(720), SupplierID: supplier.ID})
	require.NoError(t, err)

	summary, err := svc.GetSupplier(ctx, supplier.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.BikeCount)

	changes := trekSupplier()
	changes.ContactPerson = "Jane Doe"
	updated, err := svc.UpdateSupplier(ctx, supplier.ID, changes)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", updated.ContactPerson)

	require.NoError(t, svc.DeleteSupplier(ctx, supplier.ID))
	kept, err := svc.GetBike(ctx, bike.ID)
	require.NoError(t, err)
	assert.Empty(t, kept.SupplierID)

	page, err := svc.ListSuppliers(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, page.TotalCount)

	_, err = svc.CreateSupplier(ctx, models.Supplier{Name: "No Contact", Email: "x@y.com"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}
