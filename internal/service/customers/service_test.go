package customers

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

func TestCreateCustomerNormalizesAndRejectsDuplicateEmail(t *testing.T) {
	svc := NewService(memory.NewStore(), zaptest.NewLogger(t))
	ctx := context.Background()

	customer, err := svc.Create(ctx, models.Customer{Name: "Amit Patel", Email: " Amit.Patel@Email.com ", Phone: "+91-9876543212"})
	require.NoError(t, err)
	assert.Equal(t, "amit.patel@email.com", customer.Email)
	assert.NotEmpty(t, customer.ID)

	_, err = svc.Create(ctx, models.Customer{Name: "Someone Else", Email: "amit.patel@email.com"})
	assert.ErrorIs(t, err, models.ErrConflict)

	_, err = svc.Create(ctx, models.Customer{Name: "", Email: "x@email.com"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestGetCustomerSummary(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store, zaptest.NewLogger(t))
	ctx := context.Background()

	customer, err := svc.Create(ctx, models.Customer{Name: "Sneha Reddy", Email: "sneha.reddy@email.com"})
	require.NoError(t, err)
	require.NoError(t, store.CreateBike(ctx, &models.Bike{ID: "b1", Brand: "Trek", Model: "FX 3 Disc", Price: decimal.RequireFromString("720.00"), StockQuantity: 20}))

	for i := 0; i < 12; i++ {
		_, err := store.RecordSale(ctx, &models.Sale{
			ID: fmt.Sprintf("sale-%d", i), BikeID: "b1", CustomerID: customer.ID, Quantity: 1,
			SaleDate: time.Date(2024, 2, 1+i, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}

	summary, err := svc.Get(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, summary.PurchaseCount)
	assert.Equal(t, 12, summary.TotalBikes)
	assert.Equal(t, "8640", summary.TotalPurchases.String())
	require.Len(t, summary.RecentSales, 10)
	assert.Equal(t, "sale-11", summary.RecentSales[0].ID)
	require.NotNil(t, summary.RecentSales[0].Bike)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListCustomersSearchAndTotals(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store, zaptest.NewLogger(t))
	ctx := context.Background()

	rohan, err := svc.Create(ctx, models.Customer{Name: "Rohan Desai", Email: "rohan.desai@email.com", Phone: "+91-9876543224"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, models.Customer{Name: "Pooja Agarwal", Email: "pooja.agarwal@email.com", Phone: "+91-9876543223"})
	require.NoError(t, err)

	require.NoError(t, store.CreateBike(ctx, &models.Bike{ID: "b1", Brand: "Giant", Model: "ARX 20", Price: decimal.NewFromInt(220), StockQuantity: 5}))
	_, err = store.RecordSale(ctx, &models.Sale{ID: "s1", BikeID: "b1", CustomerID: rohan.ID, Quantity: 2, SaleDate: time.Now()})
	require.NoError(t, err)

	all, err := svc.List(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, all.Results, 2)
	assert.Equal(t, "Pooja Agarwal", all.Results[0].Name)
	assert.Equal(t, "440", all.Results[1].TotalPurchases.String())

	byPhone, err := svc.List(ctx, "9876543224", 1)
	require.NoError(t, err)
	require.Len(t, byPhone.Results, 1)
	assert.Equal(t, rohan.ID, byPhone.Results[0].ID)

	none, err := svc.List(ctx, "nobody", 1)
	require.NoError(t, err)
	assert.Empty(t, none.Results)
}

func TestUpdateAndDeleteCustomer(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store, zaptest.NewLogger(t))
	ctx := context.Background()

	customer, err := svc.Create(ctx, models.Customer{Name: "Vikram Singh", Email: "vikram.singh@email.com"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, customer.ID, models.Customer{Name: "Vikram Singh", Email: "vikram@email.com", Address: "New Delhi"})
	require.NoError(t, err)
	assert.Equal(t, "vikram@email.com", updated.Email)
	assert.True(t, customer.CreatedAt.Equal(updated.CreatedAt))

	require.NoError(t, svc.Delete(ctx, customer.ID))
	assert.ErrorIs(t, svc.Delete(ctx, customer.ID), models.ErrNotFound)
}
