package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/bikestore/internal/domain/models"
	"github.com/mamadbah2/bikestore/internal/repository"
)

const (
	// BikePageSize is the bike listing page size.
	BikePageSize = 12
	// SupplierPageSize is the supplier listing page size.
	SupplierPageSize = 20

	recentSalesLimit = 5
)

// Store is the persistence the catalog needs.
type Store interface {
	repository.BikeRepository
	repository.SupplierRepository
	repository.CustomerRepository
	repository.SaleRepository
}

// Service manages bikes and suppliers.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new catalog service instance.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// CreateBike validates and stores a new bike. ID and timestamps are assigned here.
func (s *Service) CreateBike(ctx context.Context, bike models.Bike) (*models.Bike, error) {
	bike.Normalize()
	if err := bike.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	bike.ID = uuid.NewString()
	bike.CreatedAt = now
	bike.UpdatedAt = now

	if err := s.store.CreateBike(ctx, &bike); err != nil {
		return nil, err
	}

	s.logger.Info("bike created", zap.String("bike_id", bike.ID), zap.Stringer("bike", bike))
	return &bike, nil
}

// GetBike returns the bike with its total units sold and most recent sales.
func (s *Service) GetBike(ctx context.Context, id string) (*models.BikeSummary, error) {
	bike, err := s.store.GetBike(ctx, id)
	if err != nil {
		return nil, err
	}

	sales, err := s.store.ListSales(ctx, models.SaleFilter{BikeID: id})
	if err != nil {
		return nil, fmt.Errorf("load sales of bike %s: %w", id, err)
	}

	summary := &models.BikeSummary{
		Bike:       *bike,
		IsLowStock: bike.IsLowStock(),
		IsInStock:  bike.IsInStock(),
	}
	for i, sale := range sales {
		summary.TotalSold += sale.Quantity
		if i < recentSalesLimit {
			customer, err := s.lookupCustomer(ctx, sale.CustomerID)
			if err != nil {
				return nil, err
			}
			summary.RecentSales = append(summary.RecentSales, models.NewSaleDetail(sale, nil, customer))
		}
	}
	return summary, nil
}

func (s *Service) lookupCustomer(ctx context.Context, id string) (*models.Customer, error) {
	customer, err := s.store.GetCustomer(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	return customer, err
}

// UpdateBike replaces the editable fields of an existing bike.
func (s *Service) UpdateBike(ctx context.Context, id string, changes models.Bike) (*models.Bike, error) {
	current, err := s.store.GetBike(ctx, id)
	if err != nil {
		return nil, err
	}

	changes.Normalize()
	changes.ID = current.ID
	changes.CreatedAt = current.CreatedAt
	changes.UpdatedAt = s.now().UTC()
	if err := changes.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.UpdateBike(ctx, &changes); err != nil {
		return nil, err
	}

	s.logger.Info("bike updated", zap.String("bike_id", id))
	return &changes, nil
}

// DeleteBike removes a bike with its sales and inventory settings.
func (s *Service) DeleteBike(ctx context.Context, id string) error {
	if err := s.store.DeleteBike(ctx, id); err != nil {
		return err
	}
	s.logger.Info("bike deleted", zap.String("bike_id", id))
	return nil
}

// ListBikes returns one page of bikes matching filter.
func (s *Service) ListBikes(ctx context.Context, filter models.BikeFilter, page int) (models.Page[models.Bike], error) {
	filter.Search = strings.TrimSpace(filter.Search)
	if filter.Type != "" && !filter.Type.Valid() {
		return models.Page[models.Bike]{}, models.Invalid("type", "unsupported bike type %q", filter.Type)
	}

	bikes, err := s.store.ListBikes(ctx, filter)
	if err != nil {
		return models.Page[models.Bike]{}, err
	}
	return models.Paginate(bikes, page, BikePageSize), nil
}

// PriceLookup answers the sale form's price prefill request.
type PriceLookup struct {
	Success bool             `json:"success"`
	Price   *decimal.Decimal `json:"price,omitempty"`
	Stock   *int             `json:"stock,omitempty"`
}

// BikePrice returns the current price and stock; an unknown bike yields
// Success=false rather than an error.
func (s *Service) BikePrice(ctx context.Context, id string) (PriceLookup, error) {
	bike, err := s.store.GetBike(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return PriceLookup{Success: false}, nil
	}
	if err != nil {
		return PriceLookup{}, err
	}

	price := bike.Price
	stock := bike.StockQuantity
	return PriceLookup{Success: true, Price: &price, Stock: &stock}, nil
}

// CreateSupplier validates and stores a new supplier.
func (s *Service) CreateSupplier(ctx context.Context, supplier models.Supplier) (*models.Supplier, error) {
	supplier.Normalize()
	if err := supplier.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	supplier.ID = uuid.NewString()
	supplier.CreatedAt = now
	supplier.UpdatedAt = now

	if err := s.store.CreateSupplier(ctx, &supplier); err != nil {
		return nil, err
	}

	s.logger.Info("supplier created", zap.String("supplier_id", supplier.ID))
	return &supplier, nil
}

// GetSupplier returns the supplier with the bikes it provides.
func (s *Service) GetSupplier(ctx context.Context, id string) (*models.SupplierSummary, error) {
	supplier, err := s.store.GetSupplier(ctx, id)
	if err != nil {
		return nil, err
	}

	bikes, err := s.store.ListBikes(ctx, models.BikeFilter{SupplierID: id})
	if err != nil {
		return nil, fmt.Errorf("load bikes of supplier %s: %w", id, err)
	}

	return &models.SupplierSummary{Supplier: *supplier, BikeCount: len(bikes), Bikes: bikes}, nil
}

// UpdateSupplier replaces the editable fields of an existing supplier.
func (s *Service) UpdateSupplier(ctx context.Context, id string, changes models.Supplier) (*models.Supplier, error) {
	current, err := s.store.GetSupplier(ctx, id)
	if err != nil {
		return nil, err
	}

	changes.Normalize()
	if err := changes.Validate(); err != nil {
		return nil, err
	}
	changes.ID = current.ID
	changes.CreatedAt = current.CreatedAt
	changes.UpdatedAt = s.now().UTC()

	if err := s.store.UpdateSupplier(ctx, &changes); err != nil {
		return nil, err
	}
	return &changes, nil
}

// DeleteSupplier removes a supplier. Its bikes are kept without supplier.
func (s *Service) DeleteSupplier(ctx context.Context, id string) error {
	if err := s.store.DeleteSupplier(ctx, id); err != nil {
		return err
	}
	s.logger.Info("supplier deleted", zap.String("supplier_id", id))
	return nil
}

// ListSuppliers returns one page of suppliers ordered by name.
func (s *Service) ListSuppliers(ctx context.Context, page int) (models.Page[models.Supplier], error) {
	suppliers, err := s.store.ListSuppliers(ctx)
	if err != nil {
		return models.Page[models.Supplier]{}, err
	}
	return models.Paginate(suppliers, page, SupplierPageSize), nil
}
