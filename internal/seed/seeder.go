// Package seed loads a demonstration catalog, customer list and sales history.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/bikestore/internal/domain/models"
	"github.com/mamadbah2/bikestore/internal/repository"
	"github.com/mamadbah2/bikestore/internal/service/catalog"
	"github.com/mamadbah2/bikestore/internal/service/customers"
	"github.com/mamadbah2/bikestore/internal/service/sales"
)

// MaxSales bounds the number of sample sales recorded per run.
const MaxSales = 20

// Summary counts what a run created.
type Summary struct {
	Suppliers int
	Bikes     int
	Customers int
	Sales     int
}

// Seeder writes sample data through the same services the API uses, so
// validation and the atomic sale path apply.
type Seeder struct {
	store     repository.Store
	catalog   *catalog.Service
	customers *customers.Service
	sales     *sales.Service
	rnd       *rand.Rand
	logger    *zap.Logger
}

// NewSeeder builds a Seeder. rnd drives supplier assignment and sale picks.
func NewSeeder(store repository.Store, catalogSvc *catalog.Service, customerSvc *customers.Service, salesSvc *sales.Service, rnd *rand.Rand, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(1))
	}
	return &Seeder{
		store:     store,
		catalog:   catalogSvc,
		customers: customerSvc,
		sales:     salesSvc,
		rnd:       rnd,
		logger:    logger,
	}
}

// Clear removes every customer, bike and supplier. Deleting customers and
// bikes cascades to their sales and inventory settings.
func (s *Seeder) Clear(ctx context.Context) error {
	customerList, err := s.store.ListCustomers(ctx, "")
	if err != nil {
		return fmt.Errorf("list customers: %w", err)
	}
	for _, c := range customerList {
		if err := s.store.DeleteCustomer(ctx, c.ID); err != nil && !errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("delete customer %s: %w", c.ID, err)
		}
	}

	bikes, err := s.store.ListBikes(ctx, models.BikeFilter{})
	if err != nil {
		return fmt.Errorf("list bikes: %w", err)
	}
	for _, b := range bikes {
		if err := s.store.DeleteBike(ctx, b.ID); err != nil && !errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("delete bike %s: %w", b.ID, err)
		}
	}

	suppliers, err := s.store.ListSuppliers(ctx)
	if err != nil {
		return fmt.Errorf("list suppliers: %w", err)
	}
	for _, sp := range suppliers {
		if err := s.store.DeleteSupplier(ctx, sp.ID); err != nil && !errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("delete supplier %s: %w", sp.ID, err)
		}
	}

	s.logger.Info("cleared existing data",
		zap.Int("customers", len(customerList)),
		zap.Int("bikes", len(bikes)),
		zap.Int("suppliers", len(suppliers)),
	)
	return nil
}

// Run loads the sample data. Records that already exist are reused, so
// running twice does not duplicate the catalog.
func (s *Seeder) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	suppliers, created, err := s.seedSuppliers(ctx)
	if err != nil {
		return summary, err
	}
	summary.Suppliers = created

	bikes, created, err := s.seedBikes(ctx, suppliers)
	if err != nil {
		return summary, err
	}
	summary.Bikes = created

	customerList, created, err := s.seedCustomers(ctx)
	if err != nil {
		return summary, err
	}
	summary.Customers = created

	summary.Sales, err = s.seedSales(ctx, bikes, customerList)
	if err != nil {
		return summary, err
	}

	s.logger.Info("sample data loaded",
		zap.Int("suppliers", summary.Suppliers),
		zap.Int("bikes", summary.Bikes),
		zap.Int("customers", summary.Customers),
		zap.Int("sales", summary.Sales),
	)
	return summary, nil
}

func (s *Seeder) seedSuppliers(ctx context.Context) ([]models.Supplier, int, error) {
	existing, err := s.store.ListSuppliers(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list suppliers: %w", err)
	}
	byName := make(map[string]models.Supplier, len(existing))
	for _, sp := range existing {
		byName[sp.Name] = sp
	}

	out := make([]models.Supplier, 0, len(sampleSuppliers))
	created := 0
	for _, sample := range sampleSuppliers {
		if sp, ok := byName[sample.Name]; ok {
			out = append(out, sp)
			continue
		}
		sp, err := s.catalog.CreateSupplier(ctx, sample)
		if err != nil {
			return nil, created, fmt.Errorf("create supplier %q: %w", sample.Name, err)
		}
		created++
		out = append(out, *sp)
	}
	return out, created, nil
}

func (s *Seeder) seedBikes(ctx context.Context, suppliers []models.Supplier) ([]models.Bike, int, error) {
	out := make([]models.Bike, 0, len(sampleBikes))
	created := 0
	for _, sample := range sampleBikes {
		if len(suppliers) > 0 {
			sample.SupplierID = suppliers[s.rnd.Intn(len(suppliers))].ID
		}
		b, err := s.catalog.CreateBike(ctx, sample)
		if errors.Is(err, models.ErrConflict) {
			found, lookupErr := s.findBike(ctx, sample)
			if lookupErr != nil {
				return nil, created, lookupErr
			}
			out = append(out, *found)
			continue
		}
		if err != nil {
			return nil, created, fmt.Errorf("create bike %s %s: %w", sample.Brand, sample.Model, err)
		}
		created++
		out = append(out, *b)
	}
	return out, created, nil
}

func (s *Seeder) findBike(ctx context.Context, sample models.Bike) (*models.Bike, error) {
	bikes, err := s.store.ListBikes(ctx, models.BikeFilter{Search: sample.Model})
	if err != nil {
		return nil, fmt.Errorf("list bikes: %w", err)
	}
	for i := range bikes {
		if bikes[i].SameVariant(sample) {
			return &bikes[i], nil
		}
	}
	return nil, models.NotFound("bike", sample.String())
}

func (s *Seeder) seedCustomers(ctx context.Context) ([]models.Customer, int, error) {
	out := make([]models.Customer, 0, len(sampleCustomers))
	created := 0
	for _, sample := range sampleCustomers {
		c, err := s.customers.Create(ctx, sample)
		if errors.Is(err, models.ErrConflict) {
			matches, lookupErr := s.store.ListCustomers(ctx, sample.Email)
			if lookupErr != nil {
				return nil, created, fmt.Errorf("list customers: %w", lookupErr)
			}
			for _, m := range matches {
				if m.Email == sample.Email {
					out = append(out, m)
					break
				}
			}
			continue
		}
		if err != nil {
			return nil, created, fmt.Errorf("create customer %q: %w", sample.Email, err)
		}
		created++
		out = append(out, *c)
	}
	return out, created, nil
}

// seedSales records single-unit sales at 85-100% of list price against bikes
// with at least two units on hand.
func (s *Seeder) seedSales(ctx context.Context, bikes []models.Bike, customerList []models.Customer) (int, error) {
	if len(customerList) == 0 {
		return 0, nil
	}

	candidates := make([]models.Bike, 0, len(bikes))
	for _, b := range bikes {
		if b.StockQuantity >= 2 {
			candidates = append(candidates, b)
		}
	}
	s.rnd.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })

	recorded := 0
	for _, b := range candidates {
		if recorded == MaxSales {
			break
		}
		customer := customerList[s.rnd.Intn(len(customerList))]
		factor := decimal.NewFromFloat(0.85 + s.rnd.Float64()*0.15)
		price := b.Price.Mul(factor).Round(2)

		_, err := s.sales.RecordSale(ctx, models.SaleRequest{
			BikeID:     b.ID,
			CustomerID: customer.ID,
			Quantity:   1,
			UnitPrice:  &price,
			Notes:      "Sample sale",
		})
		var stockErr *models.InsufficientStockError
		if errors.As(err, &stockErr) {
			s.logger.Warn("skipping sample sale", zap.String("bike_id", b.ID), zap.Error(err))
			continue
		}
		if err != nil {
			return recorded, fmt.Errorf("record sample sale for bike %s: %w", b.ID, err)
		}
		recorded++
	}
	return recorded, nil
}
