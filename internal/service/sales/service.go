package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/mamadbah2/bikestore/internal/domain/models"
	"github.com/mamadbah2/bikestore/internal/platform/events"
	"github.com/mamadbah2/bikestore/internal/repository"
	"github.com/mamadbah2/bikestore/pkg/clients/notify"
)

// PageSize is the sale listing page size.
const PageSize = 20

const tracerName = "github.com/mamadbah2/bikestore/internal/service/sales"

// Store is the persistence the sales service needs.
type Store interface {
	repository.SaleRepository
	repository.BikeRepository
	repository.CustomerRepository
}

// Ledger mirrors committed sales to an external sheet.
type Ledger interface {
	AppendSale(ctx context.Context, sale models.Sale, bike models.Bike, customer models.Customer) error
}

// Dependencies are the optional post-commit collaborators. Nil members are
// replaced with no-op implementations.
type Dependencies struct {
	Publisher         events.Publisher
	Ledger            Ledger
	Notifier          notify.Notifier
	LowStockThreshold int
}

// Service records and queries sales.
type Service struct {
	store     Store
	publisher events.Publisher
	ledger    Ledger
	notifier  notify.Notifier
	threshold int
	tracer    trace.Tracer
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires a new sales service instance.
func NewService(store Store, deps Dependencies, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Publisher == nil {
		deps.Publisher = events.Nop{}
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}
	if deps.LowStockThreshold <= 0 {
		deps.LowStockThreshold = models.DefaultLowStockThreshold
	}

	return &Service{
		store:     store,
		publisher: deps.Publisher,
		ledger:    deps.Ledger,
		notifier:  deps.Notifier,
		threshold: deps.LowStockThreshold,
		tracer:    otel.Tracer(tracerName),
		logger:    logger,
		now:       time.Now,
	}
}

// RecordSale checks the requested quantity against the bike's stock, creates
// the sale and decrements the stock as one atomic unit. The unit price
// defaults to the bike's current price. When the quantity exceeds the stock
// a *models.InsufficientStockError is returned and nothing is written.
func (s *Service) RecordSale(ctx context.Context, req models.SaleRequest) (*models.SaleDetail, error) {
	ctx, span := s.tracer.Start(ctx, "sales.RecordSale", trace.WithAttributes(
		attribute.String("bike.id", req.BikeID),
		attribute.String("customer.id", req.CustomerID),
		attribute.Int("sale.quantity", req.Quantity),
	))
	defer span.End()

	if err := req.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	sale := models.Sale{
		ID:         uuid.NewString(),
		BikeID:     strings.TrimSpace(req.BikeID),
		CustomerID: strings.TrimSpace(req.CustomerID),
		Quantity:   req.Quantity,
		SaleDate:   s.now().UTC(),
		Notes:      strings.TrimSpace(req.Notes),
	}
	if req.UnitPrice != nil {
		sale.SalePrice = req.UnitPrice.Round(2)
	}

	bike, err := s.store.RecordSale(ctx, &sale)
	if err != nil {
		var stockErr *models.InsufficientStockError
		if errors.As(err, &stockErr) {
			span.SetAttributes(attribute.Int("bike.stock_available", stockErr.Available))
			s.logger.Warn("sale rejected: insufficient stock",
				zap.String("bike_id", sale.BikeID),
				zap.Int("requested", stockErr.Requested),
				zap.Int("available", stockErr.Available))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("sale.id", sale.ID),
		attribute.String("sale.total", sale.TotalAmount().StringFixed(2)),
		attribute.Int("bike.stock_remaining", bike.StockQuantity),
	)
	s.logger.Info("sale recorded",
		zap.String("sale_id", sale.ID),
		zap.String("bike_id", sale.BikeID),
		zap.String("customer_id", sale.CustomerID),
		zap.Int("quantity", sale.Quantity),
		zap.String("total", sale.TotalAmount().StringFixed(2)),
		zap.Int("stock_remaining", bike.StockQuantity))

	customer, err := s.store.GetCustomer(ctx, sale.CustomerID)
	if err != nil {
		s.logger.Warn("customer lookup after sale failed", zap.String("sale_id", sale.ID), zap.Error(err))
		customer = nil
	}

	s.afterCommit(ctx, sale, *bike, customer)

	detail := models.NewSaleDetail(sale, bike, customer)
	return &detail, nil
}

// afterCommit runs the side effects of a committed sale. Failures are logged only.
func (s *Service) afterCommit(ctx context.Context, sale models.Sale, bike models.Bike, customer *models.Customer) {
	if err := s.publisher.PublishSale(ctx, events.NewSaleRecorded(sale, bike)); err != nil {
		s.logger.Error("failed to publish sale event", zap.String("sale_id", sale.ID), zap.Error(err))
	}

	if s.ledger != nil && customer != nil {
		if err := s.ledger.AppendSale(ctx, sale, bike, *customer); err != nil {
			s.logger.Error("failed to export sale to ledger", zap.String("sale_id", sale.ID), zap.Error(err))
		}
	}

	before := bike.StockQuantity + sale.Quantity
	if before >= s.threshold && bike.StockQuantity < s.threshold {
		msg := notify.Message{
			Title: "Low stock",
			Text:  fmt.Sprintf("%s is low on stock: %d left after sale %s.", bike, bike.StockQuantity, sale.ID),
			Level: notify.LevelWarning,
			Fields: map[string]any{
				"bike_id": bike.ID,
				"stock":   bike.StockQuantity,
			},
		}
		if err := s.notifier.Notify(ctx, msg); err != nil {
			s.logger.Error("failed to send low stock alert", zap.String("bike_id", bike.ID), zap.Error(err))
		}
	}
}

// GetSale returns the sale joined with its bike and customer.
func (s *Service) GetSale(ctx context.Context, id string) (*models.SaleDetail, error) {
	sale, err := s.store.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}
	detail, err := s.detail(ctx, *sale, map[string]*models.Bike{}, map[string]*models.Customer{})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListSales returns one page of sales, newest first.
func (s *Service) ListSales(ctx context.Context, filter models.SaleFilter, page int) (models.Page[models.SaleDetail], error) {
	filter.Limit = 0
	sales, err := s.store.ListSales(ctx, filter)
	if err != nil {
		return models.Page[models.SaleDetail]{}, err
	}

	paged := models.Paginate(sales, page, PageSize)
	out := models.Page[models.SaleDetail]{
		Results:    make([]models.SaleDetail, 0, len(paged.Results)),
		Page:       paged.Page,
		PageSize:   paged.PageSize,
		TotalPages: paged.TotalPages,
		TotalCount: paged.TotalCount,
	}

	bikes := map[string]*models.Bike{}
	customers := map[string]*models.Customer{}
	for _, sale := range paged.Results {
		detail, err := s.detail(ctx, sale, bikes, customers)
		if err != nil {
			return models.Page[models.SaleDetail]{}, err
		}
		out.Results = append(out.Results, detail)
	}
	return out, nil
}

// RecentSales returns the latest limit sales with their bike and customer.
func (s *Service) RecentSales(ctx context.Context, limit int) ([]models.SaleDetail, error) {
	sales, err := s.store.ListSales(ctx, models.SaleFilter{Limit: limit})
	if err != nil {
		return nil, err
	}

	bikes := map[string]*models.Bike{}
	customers := map[string]*models.Customer{}
	out := make([]models.SaleDetail, 0, len(sales))
	for _, sale := range sales {
		detail, err := s.detail(ctx, sale, bikes, customers)
		if err != nil {
			return nil, err
		}
		out = append(out, detail)
	}
	return out, nil
}

// detail joins a sale with its bike and customer, memoizing lookups in the given maps.
func (s *Service) detail(ctx context.Context, sale models.Sale, bikes map[string]*models.Bike, customers map[string]*models.Customer) (models.SaleDetail, error) {
	bike, ok := bikes[sale.BikeID]
	if !ok {
		var err error
		bike, err = s.store.GetBike(ctx, sale.BikeID)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return models.SaleDetail{}, err
		}
		bikes[sale.BikeID] = bike
	}

	customer, ok := customers[sale.CustomerID]
	if !ok {
		var err error
		customer, err = s.store.GetCustomer(ctx, sale.CustomerID)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return models.SaleDetail{}, err
		}
		customers[sale.CustomerID] = customer
	}

	return models.NewSaleDetail(sale, bike, customer), nil
}

// UpdateNotes changes the only mutable field of a sale.
func (s *Service) UpdateNotes(ctx context.Context, id, notes string) (*models.Sale, error) {
	sale, err := s.store.UpdateSaleNotes(ctx, id, strings.TrimSpace(notes))
	if err != nil {
		return nil, err
	}
	s.logger.Info("sale notes updated", zap.String("sale_id", id))
	return sale, nil
}

// TotalRevenue sums quantity × sale_price over all sales.
func (s *Service) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	sales, err := s.store.ListSales(ctx, models.SaleFilter{})
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, sale := range sales {
		total = total.Add(sale.TotalAmount())
	}
	return total, nil
}
