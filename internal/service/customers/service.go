package customers

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
	// PageSize is the customer listing page size.
	PageSize = 20

	recentSalesLimit = 10
)

// Store is the persistence the customer service needs.
type Store interface {
	repository.CustomerRepository
	repository.SaleRepository
	repository.BikeRepository
}

// Service manages customer records and their purchase history.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new customer service instance.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// Create validates and stores a new customer. Emails are unique.
func (s *Service) Create(ctx context.Context, customer models.Customer) (*models.Customer, error) {
	customer.Normalize()
	if err := customer.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	customer.ID = uuid.NewString()
	customer.CreatedAt = now
	customer.UpdatedAt = now

	if err := s.store.CreateCustomer(ctx, &customer); err != nil {
		return nil, err
	}

	s.logger.Info("customer created", zap.String("customer_id", customer.ID))
	return &customer, nil
}

// Get returns the customer with totals and up to ten recent sales.
func (s *Service) Get(ctx context.Context, id string) (*models.CustomerSummary, error) {
	customer, err := s.store.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	sales, err := s.store.ListSales(ctx, models.SaleFilter{CustomerID: id})
	if err != nil {
		return nil, fmt.Errorf("load sales of customer %s: %w", id, err)
	}

	summary := summarize(*customer, sales)
	for i, sale := range sales {
		if i == recentSalesLimit {
			break
		}
		bike, err := s.store.GetBike(ctx, sale.BikeID)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		summary.RecentSales = append(summary.RecentSales, models.NewSaleDetail(sale, bike, nil))
	}
	return &summary, nil
}

func summarize(customer models.Customer, sales []models.Sale) models.CustomerSummary {
	summary := models.CustomerSummary{Customer: customer, TotalPurchases: decimal.Zero}
	for _, sale := range sales {
		summary.TotalPurchases = summary.TotalPurchases.Add(sale.TotalAmount())
		summary.PurchaseCount++
		summary.TotalBikes += sale.Quantity
	}
	return summary
}

// Update replaces the editable fields of an existing customer.
func (s *Service) Update(ctx context.Context, id string, changes models.Customer) (*models.Customer, error) {
	current, err := s.store.GetCustomer(ctx, id)
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

	if err := s.store.UpdateCustomer(ctx, &changes); err != nil {
		return nil, err
	}
	return &changes, nil
}

// Delete removes the customer and their sales.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteCustomer(ctx, id); err != nil {
		return err
	}
	s.logger.Info("customer deleted", zap.String("customer_id", id))
	return nil
}

// List returns one page of customers matching search, each with purchase totals.
func (s *Service) List(ctx context.Context, search string, page int) (models.Page[models.CustomerSummary], error) {
	customers, err := s.store.ListCustomers(ctx, strings.TrimSpace(search))
	if err != nil {
		return models.Page[models.CustomerSummary]{}, err
	}

	paged := models.Paginate(customers, page, PageSize)
	out := models.Page[models.CustomerSummary]{
		Results:    make([]models.CustomerSummary, 0, len(paged.Results)),
		Page:       paged.Page,
		PageSize:   paged.PageSize,
		TotalPages: paged.TotalPages,
		TotalCount: paged.TotalCount,
	}
	if len(paged.Results) == 0 {
		return out, nil
	}

	sales, err := s.store.ListSales(ctx, models.SaleFilter{})
	if err != nil {
		return models.Page[models.CustomerSummary]{}, fmt.Errorf("load sales: %w", err)
	}
	byCustomer := make(map[string][]models.Sale)
	for _, sale := range sales {
		byCustomer[sale.CustomerID] = append(byCustomer[sale.CustomerID], sale)
	}

	for _, customer := range paged.Results {
		out.Results = append(out.Results, summarize(customer, byCustomer[customer.ID]))
	}
	return out, nil
}
