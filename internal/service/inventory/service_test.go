package inventory

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mamadbah2/bikestore/internal/domain/models"
	"github.com/mamadbah2/bikestore/internal/repository/memory"
)

func newTestService(t *testing.T, stocks map[string]int) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	for id, stock := range stocks {
		require.NoError(t, store.CreateBike(context.Background(), &models.Bike{
			ID: id, Brand: "Giant", Model: "Model " + id, Color: "Blue",
			Price: decimal.NewFromInt(500), StockQuantity: stock,
		}))
	}
	return NewService(store, zaptest.NewLogger(t)), store
}

func TestGetCreatesDefaults(t *testing.T) {
	svc, store := newTestService(t, map[string]int{"b1": 12})
	ctx := context.Background()

	view, err := svc.Get(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultMinimumStock, view.MinimumStock)
	assert.Equal(t, models.DefaultMaximumStock, view.MaximumStock)
	assert.Equal(t, models.DefaultReorderPoint, view.ReorderPoint)
	assert.Equal(t, models.StockNormal, view.Status)

	stored, err := store.GetInventory(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "b1", stored.BikeID)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateValidatesAndKeepsLastRestocked(t *testing.T) {
	svc, _ := newTestService(t, map[string]int{"b1": 4})
	ctx := context.Background()
	at := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return at }

	_, err := svc.Restock(ctx, "b1", 6)
	require.NoError(t, err)

	view, err := svc.Update(ctx, "b1", Settings{MinimumStock: 2, MaximumStock: 30, ReorderPoint: 8, Notes: " seasonal "})
	require.NoError(t, err)
	assert.Equal(t, 8, view.ReorderPoint)
	assert.Equal(t, "seasonal", view.Notes)
	require.NotNil(t, view.LastRestocked)
	assert.True(t, at.Equal(*view.LastRestocked))

	_, err = svc.Update(ctx, "b1", Settings{MinimumStock: 10, MaximumStock: 5, ReorderPoint: 7})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestRestock(t *testing.T) {
	svc, _ := newTestService(t, map[string]int{"b1": 3})
	ctx := context.Background()

	view, err := svc.Restock(ctx, "b1", 10)
	require.NoError(t, err)
	assert.Equal(t, 13, view.CurrentStock)
	assert.Equal(t, 13, view.Bike.StockQuantity)
	assert.NotNil(t, view.LastRestocked)

	_, err = svc.Restock(ctx, "b1", 0)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svc.Restock(ctx, "missing", 1)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRestockRejectsStockOverflow(t *testing.T) {
	svc, store := newTestService(t, map[string]int{"b1": 3})
	ctx := context.Background()

	_, err := svc.Restock(ctx, "b1", math.MaxInt)
	var vErr *models.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "quantity", vErr.Field)

	_, err = svc.Restock(ctx, "b1", models.MaxStock-2)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "quantity", vErr.Field)

	bike, err := store.GetBike(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, 3, bike.StockQuantity)

	view, err := svc.Restock(ctx, "b1", models.MaxStock-3)
	require.NoError(t, err)
	assert.Equal(t, models.MaxStock, view.CurrentStock)
}

func TestReorderListLowestStockFirst(t *testing.T) {
	svc, _ := newTestService(t, map[string]int{"a": 9, "b": 0, "c": 25, "d": 4})
	ctx := context.Background()

	_, err := svc.Update(ctx, "c", Settings{MinimumStock: 5, MaximumStock: 60, ReorderPoint: 30})
	require.NoError(t, err)

	list, err := svc.ReorderList(ctx)
	require.NoError(t, err)
	require.Len(t, list, 4)

	ids := make([]string, 0, len(list))
	for _, view := range list {
		ids = append(ids, view.Bike.ID)
		assert.True(t, view.NeedsReorder)
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids)
	assert.Equal(t, models.StockOutOfStock, list[0].Status)
}
