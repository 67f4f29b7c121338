package sales

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mamadbah2/bikestore/internal/domain/models"
	"github.com/mamadbah2/bikestore/internal/platform/events"
	"github.com/mamadbah2/bikestore/internal/repository/memory"
	"github.com/mamadbah2/bikestore/pkg/clients/notify"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []events.SaleRecorded
	err    error
}

func (p *fakePublisher) PublishSale(_ context.Context, event events.SaleRecorded) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

type fakeLedger struct {
	sales []models.Sale
	err   error
}

func (l *fakeLedger) AppendSale(_ context.Context, sale models.Sale, _ models.Bike, _ models.Customer) error {
	l.sales = append(l.sales, sale)
	return l.err
}

type fakeNotifier struct {
	messages []notify.Message
}

func (n *fakeNotifier) Notify(_ context.Context, msg notify.Message) error {
	n.messages = append(n.messages, msg)
	return nil
}

type fixture struct {
	svc       *Service
	store     *memory.Store
	publisher *fakePublisher
	ledger    *fakeLedger
	notifier  *fakeNotifier
}

func newFixture(t *testing.T, stock int) fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.CreateBike(ctx, &models.Bike{
		ID: "b1", Brand: "Giant", Model: "Escape 3", Color: "Silver", Type: models.BikeTypeHybrid,
		Price: decimal.RequireFromString("380.00"), StockQuantity: stock,
	}))
	require.NoError(t, store.CreateCustomer(ctx, &models.Customer{ID: "c1", Name: "Meera Nair", Email: "meera.nair@email.com"}))

	f := fixture{
		store:     store,
		publisher: &fakePublisher{},
		ledger:    &fakeLedger{},
		notifier:  &fakeNotifier{},
	}
	f.svc = NewService(store, Dependencies{
		Publisher:         f.publisher,
		Ledger:            f.ledger,
		Notifier:          f.notifier,
		LowStockThreshold: 5,
	}, zaptest.NewLogger(t))
	f.svc.now = func() time.Time { return time.Date(2024, 4, 2, 15, 30, 0, 0, time.UTC) }
	return f
}

func TestRecordSaleDefaultsPriceAndDecrements(t *testing.T) {
	f := newFixture(t, 10)

	detail, err := f.svc.RecordSale(context.Background(), models.SaleRequest{BikeID: "b1", CustomerID: "c1", Quantity: 3})
	require.NoError(t, err)

	assert.NotEmpty(t, detail.ID)
	assert.Equal(t, "380", detail.SalePrice.String())
	assert.Equal(t, "1140", detail.TotalAmount.String())
	require.NotNil(t, detail.Bike)
	assert.Equal(t, 7, detail.Bike.StockQuantity)
	require.NotNil(t, detail.Customer)
	assert.Equal(t, "Meera Nair", detail.Customer.Name)
	assert.True(t, detail.SaleDate.Equal(time.Date(2024, 4, 2, 15, 30, 0, 0, time.UTC)))

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, 7, f.publisher.events[0].RemainingStock)
	require.Len(t, f.ledger.sales, 1)
	assert.Empty(t, f.notifier.messages, "stock stays above threshold")
}

func TestRecordSaleExplicitPriceIsRounded(t *testing.T) {
	f := newFixture(t, 10)
	price := decimal.RequireFromString("349.995")

	detail, err := f.svc.RecordSale(context.Background(), models.SaleRequest{BikeID: "b1", CustomerID: "c1", Quantity: 1, UnitPrice: &price})
	require.NoError(t, err)
	assert.Equal(t, "350", detail.SalePrice.String())
}

func TestRecordSaleInsufficientStock(t *testing.T) {
	f := newFixture(t, 2)

	_, err := f.svc.RecordSale(context.Background(), models.SaleRequest{BikeID: "b1", CustomerID: "c1", Quantity: 5})

	var stockErr *models.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 2, stockErr.Available)

	bike, err := f.store.GetBike(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, 2, bike.StockQuantity)

	assert.Empty(t, f.publisher.events)
	assert.Empty(t, f.ledger.sales)
	assert.Empty(t, f.notifier.messages)
}

func TestRecordSaleValidation(t *testing.T) {
	f := newFixture(t, 2)

	_, err := f.svc.RecordSale(context.Background(), models.SaleRequest{BikeID: "b1", CustomerID: "c1", Quantity: 0})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = f.svc.RecordSale(context.Background(), models.SaleRequest{BikeID: "missing", CustomerID: "c1", Quantity: 1})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRecordSaleLowStockAlertOnCrossingOnly(t *testing.T) {
	f := newFixture(t, 6)
	ctx := context.Background()

	_, err := f.svc.RecordSale(ctx, models.SaleRequest{BikeID: "b1", CustomerID: "c1", Quantity: 1})
	require.NoError(t, err)
	assert.Empty(t, f.notifier.messages, "5 left is not below the threshold")

	_, err = f.svc.RecordSale(ctx, models.SaleRequest{BikeID: "b1", CustomerID: "c1", Quantity: 1})
	require.NoError(t, err)
	require.Len(t, f.notifier.messages, 1)
	assert.Equal(t, notify.LevelWarning, f.notifier.messages[0].Level)
	assert.Contains(t, f.notifier.messages[0].Text, "Giant Escape 3 (Silver)")

	_, err = f.svc.RecordSale(ctx, models.SaleRequest{BikeID: "b1", CustomerID: "c1", Quantity: 1})
	require.NoError(t, err)
	assert.Len(t, f.notifier.messages, 1, "already below threshold")
}

func TestRecordSaleSideEffectFailuresDoNotFailSale(t *testing.T) {
	f := newFixture(t, 10)
	f.publisher.err = errors.New("broker down")
	f.ledger.err = errors.New("quota exceeded")

	detail, err := f.svc.RecordSale(context.Background(), models.SaleRequest{BikeID: "b1", CustomerID: "c1", Quantity: 1})
	require.NoError(t, err)

	stored, err := f.store.GetSale(context.Background(), detail.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Quantity)
}

func TestListSalesAndRevenue(t *testing.T) {
	f := newFixture(t, 30)
	ctx := context.Background()

	for i := 0; i < 22; i++ {
		_, err := f.svc.RecordSale(ctx, models.SaleRequest{BikeID: "b1", CustomerID: "c1", Quantity: 1})
		require.NoError(t, err)
	}

	page, err := f.svc.ListSales(ctx, models.SaleFilter{CustomerID: "c1"}, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Results, 2)
	assert.Equal(t, 22, page.TotalCount)

	recent, err := f.svc.RecentSales(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, recent, 5)

	total, err := f.svc.TotalRevenue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "8360", total.String())
}

func TestUpdateNotes(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()

	detail, err := f.svc.RecordSale(ctx, models.SaleRequest{BikeID: "b1", CustomerID: "c1", Quantity: 1})
	require.NoError(t, err)

	sale, err := f.svc.UpdateNotes(ctx, detail.ID, "  delivered  ")
	require.NoError(t, err)
	assert.Equal(t, "delivered", sale.Notes)
	assert.Equal(t, 1, sale.Quantity)

	_, err = f.svc.UpdateNotes(ctx, "missing", "x")
	assert.ErrorIs(t, err, models.ErrNotFound)

	got, err := f.svc.GetSale(ctx, detail.ID)
	require.NoError(t, err)
	assert.Equal(t, "delivered", got.Notes)
}
