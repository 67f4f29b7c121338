package repository

import (
	"context"
	"time"

	"github.com/mamadbah2/bikestore/internal/domain/models"
)

// BikeRepository persists the bike catalog. Implementations reject a second
// bike with the same (brand, model, color) with models.ErrConflict.
type BikeRepository interface {
	CreateBike(ctx context.Context, bike *models.Bike) error
	GetBike(ctx context.Context, id string) (*models.Bike, error)
	UpdateBike(ctx context.Context, bike *models.Bike) error
	// DeleteBike removes the bike together with its sales and inventory settings.
	DeleteBike(ctx context.Context, id string) error
	ListBikes(ctx context.Context, filter models.BikeFilter) ([]models.Bike, error)
}

// SupplierRepository persists suppliers.
type SupplierRepository interface {
	CreateSupplier(ctx context.Context, supplier *models.Supplier) error
	GetSupplier(ctx context.Context, id string) (*models.Supplier, error)
	UpdateSupplier(ctx context.Context, supplier *models.Supplier) error
	// DeleteSupplier removes the supplier and clears it from its bikes.
	DeleteSupplier(ctx context.Context, id string) error
	ListSuppliers(ctx context.Context) ([]models.Supplier, error)
}

// CustomerRepository persists customers. Emails are unique.
type CustomerRepository interface {
	CreateCustomer(ctx context.Context, customer *models.Customer) error
	GetCustomer(ctx context.Context, id string) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, customer *models.Customer) error
	// DeleteCustomer removes the customer and their sales.
	DeleteCustomer(ctx context.Context, id string) error
	ListCustomers(ctx context.Context, search string) ([]models.Customer, error)
}

// SaleRepository persists sales.
type SaleRepository interface {
	// RecordSale validates stock, inserts the sale and decrements the bike's
	// stock as one atomic unit. The sale price is defaulted from the bike when
	// zero. It returns the bike as it is after the decrement. On
	// *models.InsufficientStockError nothing is written.
	RecordSale(ctx context.Context, sale *models.Sale) (*models.Bike, error)
	GetSale(ctx context.Context, id string) (*models.Sale, error)
	ListSales(ctx context.Context, filter models.SaleFilter) ([]models.Sale, error)
	UpdateSaleNotes(ctx context.Context, id, notes string) (*models.Sale, error)
}

// InventoryRepository persists per-bike stock thresholds.
type InventoryRepository interface {
	GetInventory(ctx context.Context, bikeID string) (*models.Inventory, error)
	SaveInventory(ctx context.Context, inventory *models.Inventory) error
	ListInventories(ctx context.Context) ([]models.Inventory, error)
	// Restock adds quantity to the bike's stock and stamps last_restocked,
	// creating default settings when the bike has none.
	Restock(ctx context.Context, bikeID string, quantity int, at time.Time) (*models.Bike, *models.Inventory, error)
}

// ReportRepository archives scheduled report snapshots.
type ReportRepository interface {
	SaveDailyReport(ctx context.Context, report models.DailyReport) error
}

// Store is the full persistence surface used by the services.
type Store interface {
	BikeRepository
	SupplierRepository
	CustomerRepository
	SaleRepository
	InventoryRepository
	ReportRepository
	Close(ctx context.Context) error
}
