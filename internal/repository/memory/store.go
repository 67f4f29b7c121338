package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mamadbah2/bikestore/internal/domain/models"
)

// ErrEmptyID is returned when trying to store a record without an ID.
var ErrEmptyID = errors.New("empty record ID")

// Store is an in-memory implementation of repository.Store. A single mutex
// guards all maps, so RecordSale's check and decrement are atomic.
type Store struct {
	mu          sync.RWMutex
	bikes       map[string]models.Bike
	suppliers   map[string]models.Supplier
	customers   map[string]models.Customer
	sales       map[string]models.Sale
	inventories map[string]models.Inventory
	reports     []models.DailyReport
}

// NewStore instantiates an empty Store.
func NewStore() *Store {
	return &Store{
		bikes:       map[string]models.Bike{},
		suppliers:   map[string]models.Supplier{},
		customers:   map[string]models.Customer{},
		sales:       map[string]models.Sale{},
		inventories: map[string]models.Inventory{},
	}
}

// Close is a no-op.
func (s *Store) Close(context.Context) error { return nil }

func (s *Store) CreateBike(_ context.Context, bike *models.Bike) error {
	if bike.ID == "" {
		return ErrEmptyID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkBikeRefs(*bike); err != nil {
		return err
	}
	s.bikes[bike.ID] = *bike
	return nil
}

func (s *Store) GetBike(_ context.Context, id string) (*models.Bike, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bike, ok := s.bikes[id]
	if !ok {
		return nil, models.NotFound("bike", id)
	}
	return &bike, nil
}

func (s *Store) UpdateBike(_ context.Context, bike *models.Bike) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bikes[bike.ID]; !ok {
		return models.NotFound("bike", bike.ID)
	}
	if err := s.checkBikeRefs(*bike); err != nil {
		return err
	}
	s.bikes[bike.ID] = *bike
	return nil
}

func (s *Store) DeleteBike(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bikes[id]; !ok {
		return models.NotFound("bike", id)
	}
	delete(s.bikes, id)
	delete(s.inventories, id)
	for saleID, sale := range s.sales {
		if sale.BikeID == id {
			delete(s.sales, saleID)
		}
	}
	return nil
}

func (s *Store) ListBikes(_ context.Context, filter models.BikeFilter) ([]models.Bike, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bikes := make([]models.Bike, 0, len(s.bikes))
	for _, bike := range s.bikes {
		if filter.Match(bike) {
			bikes = append(bikes, bike)
		}
	}
	models.SortBikes(bikes)
	return bikes, nil
}

// checkBikeRefs enforces variant uniqueness and the supplier reference.
// Callers hold the write lock.
func (s *Store) checkBikeRefs(bike models.Bike) error {
	for id, existing := range s.bikes {
		if id != bike.ID && existing.SameVariant(bike) {
			return models.Conflict("bike %s already exists", bike)
		}
	}
	if bike.SupplierID != "" {
		if _, ok := s.suppliers[bike.SupplierID]; !ok {
			return models.NotFound("supplier", bike.SupplierID)
		}
	}
	return nil
}

func (s *Store) CreateSupplier(_ context.Context, supplier *models.Supplier) error {
	if supplier.ID == "" {
		return ErrEmptyID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.suppliers[supplier.ID] = *supplier
	return nil
}

func (s *Store) GetSupplier(_ context.Context, id string) (*models.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	supplier, ok := s.suppliers[id]
	if !ok {
		return nil, models.NotFound("supplier", id)
	}
	return &supplier, nil
}

func (s *Store) UpdateSupplier(_ context.Context, supplier *models.Supplier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.suppliers[supplier.ID]; !ok {
		return models.NotFound("supplier", supplier.ID)
	}
	s.suppliers[supplier.ID] = *supplier
	return nil
}

func (s *Store) DeleteSupplier(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.suppliers[id]; !ok {
		return models.NotFound("supplier", id)
	}
	delete(s.suppliers, id)
	for bikeID, bike := range s.bikes {
		if bike.SupplierID == id {
			bike.SupplierID = ""
			s.bikes[bikeID] = bike
		}
	}
	return nil
}

func (s *Store) ListSuppliers(context.Context) ([]models.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	suppliers := make([]models.Supplier, 0, len(s.suppliers))
	for _, supplier := range s.suppliers {
		suppliers = append(suppliers, supplier)
	}
	models.SortSuppliers(suppliers)
	return suppliers, nil
}

func (s *Store) CreateCustomer(_ context.Context, customer *models.Customer) error {
	if customer.ID == "" {
		return ErrEmptyID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkEmail(*customer); err != nil {
		return err
	}
	s.customers[customer.ID] = *customer
	return nil
}

func (s *Store) GetCustomer(_ context.Context, id string) (*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customer, ok := s.customers[id]
	if !ok {
		return nil, models.NotFound("customer", id)
	}
	return &customer, nil
}

func (s *Store) UpdateCustomer(_ context.Context, customer *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[customer.ID]; !ok {
		return models.NotFound("customer", customer.ID)
	}
	if err := s.checkEmail(*customer); err != nil {
		return err
	}
	s.customers[customer.ID] = *customer
	return nil
}

func (s *Store) DeleteCustomer(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[id]; !ok {
		return models.NotFound("customer", id)
	}
	delete(s.customers, id)
	for saleID, sale := range s.sales {
		if sale.CustomerID == id {
			delete(s.sales, saleID)
		}
	}
	return nil
}

func (s *Store) ListCustomers(_ context.Context, search string) ([]models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customers := make([]models.Customer, 0, len(s.customers))
	for _, customer := range s.customers {
		if customer.Matches(search) {
			customers = append(customers, customer)
		}
	}
	models.SortCustomers(customers)
	return customers, nil
}

func (s *Store) checkEmail(customer models.Customer) error {
	for id, existing := range s.customers {
		if id != customer.ID && existing.Email == customer.Email {
			return models.Conflict("a customer with email %s already exists", customer.Email)
		}
	}
	return nil
}

func (s *Store) RecordSale(_ context.Context, sale *models.Sale) (*models.Bike, error) {
	if sale.ID == "" {
		return nil, ErrEmptyID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	bike, ok := s.bikes[sale.BikeID]
	if !ok {
		return nil, models.NotFound("bike", sale.BikeID)
	}
	if _, ok := s.customers[sale.CustomerID]; !ok {
		return nil, models.NotFound("customer", sale.CustomerID)
	}
	if err := bike.ApplySale(sale); err != nil {
		return nil, err
	}
	bike.UpdatedAt = sale.SaleDate

	s.sales[sale.ID] = *sale
	s.bikes[bike.ID] = bike
	return &bike, nil
}

func (s *Store) GetSale(_ context.Context, id string) (*models.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, ok := s.sales[id]
	if !ok {
		return nil, models.NotFound("sale", id)
	}
	return &sale, nil
}

func (s *Store) ListSales(_ context.Context, filter models.SaleFilter) ([]models.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sales := make([]models.Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		if filter.Match(sale) {
			sales = append(sales, sale)
		}
	}
	models.SortSales(sales)
	if filter.Limit > 0 && len(sales) > filter.Limit {
		sales = sales[:filter.Limit]
	}
	return sales, nil
}

func (s *Store) UpdateSaleNotes(_ context.Context, id, notes string) (*models.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sale, ok := s.sales[id]
	if !ok {
		return nil, models.NotFound("sale", id)
	}
	sale.Notes = notes
	s.sales[id] = sale
	return &sale, nil
}

func (s *Store) GetInventory(_ context.Context, bikeID string) (*models.Inventory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inventory, ok := s.inventories[bikeID]
	if !ok {
		return nil, models.NotFound("inventory", bikeID)
	}
	return &inventory, nil
}

func (s *Store) SaveInventory(_ context.Context, inventory *models.Inventory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bikes[inventory.BikeID]; !ok {
		return models.NotFound("bike", inventory.BikeID)
	}
	s.inventories[inventory.BikeID] = *inventory
	return nil
}

func (s *Store) ListInventories(context.Context) ([]models.Inventory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inventories := make([]models.Inventory, 0, len(s.inventories))
	for _, inventory := range s.inventories {
		inventories = append(inventories, inventory)
	}
	return inventories, nil
}

func (s *Store) Restock(_ context.Context, bikeID string, quantity int, at time.Time) (*models.Bike, *models.Inventory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bike, ok := s.bikes[bikeID]
	if !ok {
		return nil, nil, models.NotFound("bike", bikeID)
	}
	if err := bike.CheckRestock(quantity); err != nil {
		return nil, nil, err
	}
	inventory, ok := s.inventories[bikeID]
	if !ok {
		inventory = models.DefaultInventory(bikeID)
	}

	bike.StockQuantity += quantity
	bike.UpdatedAt = at
	stamp := at
	inventory.LastRestocked = &stamp

	s.bikes[bikeID] = bike
	s.inventories[bikeID] = inventory
	return &bike, &inventory, nil
}

func (s *Store) SaveDailyReport(_ context.Context, report models.DailyReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports = append(s.reports, report)
	return nil
}

// DailyReports returns the archived snapshots in insertion order.
func (s *Store) DailyReports() []models.DailyReport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.DailyReport, len(s.reports))
	copy(out, s.reports)
	return out
}
