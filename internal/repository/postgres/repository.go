package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/bikestore/internal/domain/models"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"

	bikeColumns      = "id, brand, model, type, price::text, stock_quantity, color, description, supplier_id, created_at, updated_at"
	supplierColumns  = "id, name, contact_person, email, phone, address, created_at, updated_at"
	customerColumns  = "id, name, email, phone, address, created_at, updated_at"
	saleColumns      = "id, customer_id, bike_id, quantity, sale_price::text, sale_date, notes"
	inventoryColumns = "bike_id, minimum_stock, maximum_stock, reorder_point, last_restocked, notes"
)

// dbPool is the subset of *pgxpool.Pool the repository uses.
type dbPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Close()
}

// Repository implements repository.Store on PostgreSQL through a pgx pool.
type Repository struct {
	pool   dbPool
	logger *zap.Logger
}

// NewRepository connects to url, pings the server and applies the schema.
func NewRepository(ctx context.Context, url string, logger *zap.Logger) (*Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pool, err := pgxpool.Connect(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	repo := newRepository(pool, logger)
	if err := repo.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return repo, nil
}

func newRepository(pool dbPool, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{pool: pool, logger: logger}
}

// inTx runs fn in a transaction that is committed when fn returns nil and
// rolled back otherwise.
func (r *Repository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			r.logger.Warn("failed to roll back transaction", zap.Error(rbErr))
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *Repository) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	r.logger.Debug("postgres schema applied", zap.Int("statements", len(schema)))
	return nil
}

// Close releases the pool.
func (r *Repository) Close(context.Context) error {
	r.pool.Close()
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func scanBike(row scanner) (*models.Bike, error) {
	var (
		b          models.Bike
		bikeType   string
		price      string
		supplierID *string
	)
	err := row.Scan(&b.ID, &b.Brand, &b.Model, &bikeType, &price, &b.StockQuantity,
		&b.Color, &b.Description, &supplierID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.Type = models.BikeType(bikeType)
	if supplierID != nil {
		b.SupplierID = *supplierID
	}
	if b.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("parse price of bike %s: %w", b.ID, err)
	}
	return &b, nil
}

func scanSupplier(row scanner) (*models.Supplier, error) {
	var s models.Supplier
	err := row.Scan(&s.ID, &s.Name, &s.ContactPerson, &s.Email, &s.Phone, &s.Address, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanCustomer(row scanner) (*models.Customer, error) {
	var c models.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanSale(row scanner) (*models.Sale, error) {
	var (
		s     models.Sale
		price string
	)
	if err := row.Scan(&s.ID, &s.CustomerID, &s.BikeID, &s.Quantity, &price, &s.SaleDate, &s.Notes); err != nil {
		return nil, err
	}
	var err error
	if s.SalePrice, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("parse price of sale %s: %w", s.ID, err)
	}
	return &s, nil
}

func scanInventory(row scanner) (*models.Inventory, error) {
	var i models.Inventory
	err := row.Scan(&i.BikeID, &i.MinimumStock, &i.MaximumStock, &i.ReorderPoint, &i.LastRestocked, &i.Notes)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func collect[T any](rows pgx.Rows, scan func(scanner) (*T, error)) ([]T, error) {
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// notFound converts pgx.ErrNoRows into models.ErrNotFound.
func notFound(err error, entity, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return models.NotFound(entity, id)
	}
	return fmt.Errorf("load %s %s: %w", entity, id, err)
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(search string) string {
	return "%" + likeEscaper.Replace(search) + "%"
}

func (r *Repository) bikeWriteError(err error, bike *models.Bike) error {
	switch pgCode(err) {
	case uniqueViolation:
		return models.Conflict("bike %s already exists", bike)
	case foreignKeyViolation:
		return models.NotFound("supplier", bike.SupplierID)
	}
	return fmt.Errorf("write bike %s: %w", bike.ID, err)
}

func (r *Repository) CreateBike(ctx context.Context, bike *models.Bike) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO bikes (id, brand, model, type, price, stock_quantity, color, description, supplier_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9, $10, $11)`,
		bike.ID, bike.Brand, bike.Model, string(bike.Type), bike.Price.String(), bike.StockQuantity,
		bike.Color, bike.Description, nullable(bike.SupplierID), bike.CreatedAt, bike.UpdatedAt)
	if err != nil {
		return r.bikeWriteError(err, bike)
	}
	return nil
}

func (r *Repository) GetBike(ctx context.Context, id string) (*models.Bike, error) {
	return getBike(ctx, r.pool, id, "")
}

func getBike(ctx context.Context, q querier, id, suffix string) (*models.Bike, error) {
	bike, err := scanBike(q.QueryRow(ctx, `SELECT `+bikeColumns+` FROM bikes WHERE id = $1`+suffix, id))
	if err != nil {
		return nil, notFound(err, "bike", id)
	}
	return bike, nil
}

func (r *Repository) UpdateBike(ctx context.Context, bike *models.Bike) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE bikes SET brand = $2, model = $3, type = $4, price = $5::numeric, stock_quantity = $6,
		 color = $7, description = $8, supplier_id = $9, updated_at = $10
		 WHERE id = $1`,
		bike.ID, bike.Brand, bike.Model, string(bike.Type), bike.Price.String(), bike.StockQuantity,
		bike.Color, bike.Description, nullable(bike.SupplierID), bike.UpdatedAt)
	if err != nil {
		return r.bikeWriteError(err, bike)
	}
	if tag.RowsAffected() == 0 {
		return models.NotFound("bike", bike.ID)
	}
	return nil
}

// DeleteBike relies on ON DELETE CASCADE for sales and inventory settings.
func (r *Repository) DeleteBike(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM bikes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete bike %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.NotFound("bike", id)
	}
	return nil
}

func (r *Repository) ListBikes(ctx context.Context, filter models.BikeFilter) ([]models.Bike, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := arg(likePattern(filter.Search))
		conds = append(conds, fmt.Sprintf("(brand ILIKE %[1]s OR model ILIKE %[1]s OR type ILIKE %[1]s)", p))
	}
	if filter.Type != "" {
		conds = append(conds, "type = "+arg(string(filter.Type)))
	}
	if filter.MinPrice != nil {
		conds = append(conds, "price >= "+arg(filter.MinPrice.String())+"::numeric")
	}
	if filter.MaxPrice != nil {
		conds = append(conds, "price <= "+arg(filter.MaxPrice.String())+"::numeric")
	}
	if filter.InStockOnly {
		conds = append(conds, "stock_quantity > 0")
	}
	if filter.SupplierID != "" {
		conds = append(conds, "supplier_id = "+arg(filter.SupplierID))
	}

	query := `SELECT ` + bikeColumns + ` FROM bikes`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY lower(brand), lower(model)"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bikes: %w", err)
	}
	return collect(rows, scanBike)
}

func (r *Repository) CreateSupplier(ctx context.Context, supplier *models.Supplier) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO suppliers (`+supplierColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		supplier.ID, supplier.Name, supplier.ContactPerson, supplier.Email, supplier.Phone,
		supplier.Address, supplier.CreatedAt, supplier.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert supplier: %w", err)
	}
	return nil
}

func (r *Repository) GetSupplier(ctx context.Context, id string) (*models.Supplier, error) {
	supplier, err := scanSupplier(r.pool.QueryRow(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "supplier", id)
	}
	return supplier, nil
}

func (r *Repository) UpdateSupplier(ctx context.Context, supplier *models.Supplier) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE suppliers SET name = $2, contact_person = $3, email = $4, phone = $5, address = $6, updated_at = $7
		 WHERE id = $1`,
		supplier.ID, supplier.Name, supplier.ContactPerson, supplier.Email, supplier.Phone,
		supplier.Address, supplier.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update supplier %s: %w", supplier.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return models.NotFound("supplier", supplier.ID)
	}
	return nil
}

// DeleteSupplier relies on ON DELETE SET NULL to detach the bikes.
func (r *Repository) DeleteSupplier(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete supplier %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.NotFound("supplier", id)
	}
	return nil
}

func (r *Repository) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+supplierColumns+` FROM suppliers ORDER BY lower(name)`)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return collect(rows, scanSupplier)
}

func (r *Repository) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO customers (`+customerColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		customer.ID, customer.Name, customer.Email, customer.Phone, customer.Address,
		customer.CreatedAt, customer.UpdatedAt)
	if err != nil {
		if pgCode(err) == uniqueViolation {
			return models.Conflict("a customer with email %s already exists", customer.Email)
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

func (r *Repository) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	customer, err := scanCustomer(r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "customer", id)
	}
	return customer, nil
}

func (r *Repository) UpdateCustomer(ctx context.Context, customer *models.Customer) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE customers SET name = $2, email = $3, phone = $4, address = $5, updated_at = $6 WHERE id = $1`,
		customer.ID, customer.Name, customer.Email, customer.Phone, customer.Address, customer.UpdatedAt)
	if err != nil {
		if pgCode(err) == uniqueViolation {
			return models.Conflict("a customer with email %s already exists", customer.Email)
		}
		return fmt.Errorf("update customer %s: %w", customer.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return models.NotFound("customer", customer.ID)
	}
	return nil
}

// DeleteCustomer relies on ON DELETE CASCADE for the customer's sales.
func (r *Repository) DeleteCustomer(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.NotFound("customer", id)
	}
	return nil
}

func (r *Repository) ListCustomers(ctx context.Context, search string) ([]models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers`
	var args []interface{}
	if search != "" {
		query += ` WHERE name ILIKE $1 OR email ILIKE $1 OR phone ILIKE $1`
		args = append(args, likePattern(search))
	}
	query += ` ORDER BY lower(name)`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return collect(rows, scanCustomer)
}

// RecordSale locks the bike row, decrements the stock and inserts the sale
// in one transaction.
func (r *Repository) RecordSale(ctx context.Context, sale *models.Sale) (*models.Bike, error) {
	var (
		recorded models.Sale
		bike     *models.Bike
	)

	err := r.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		bike, err = getBike(ctx, tx, sale.BikeID, " FOR UPDATE")
		if err != nil {
			return err
		}

		var exists bool
		err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, sale.CustomerID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check customer %s: %w", sale.CustomerID, err)
		}
		if !exists {
			return models.NotFound("customer", sale.CustomerID)
		}

		recorded = *sale
		if err := bike.ApplySale(&recorded); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx,
			`UPDATE bikes SET stock_quantity = stock_quantity - $1, updated_at = $2
			 WHERE id = $3 AND stock_quantity >= $1`,
			recorded.Quantity, recorded.SaleDate, bike.ID)
		if err != nil {
			return fmt.Errorf("decrement stock of bike %s: %w", bike.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return &models.InsufficientStockError{
				BikeID:    bike.ID,
				Requested: recorded.Quantity,
				Available: bike.StockQuantity + recorded.Quantity,
			}
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO sales (id, customer_id, bike_id, quantity, sale_price, sale_date, notes)
			 VALUES ($1, $2, $3, $4, $5::numeric, $6, $7)`,
			recorded.ID, recorded.CustomerID, recorded.BikeID, recorded.Quantity,
			recorded.SalePrice.String(), recorded.SaleDate, recorded.Notes)
		if err != nil {
			return fmt.Errorf("insert sale: %w", err)
		}
		bike.UpdatedAt = recorded.SaleDate
		return nil
	})
	if err != nil {
		return nil, err
	}

	*sale = recorded
	return bike, nil
}

func (r *Repository) GetSale(ctx context.Context, id string) (*models.Sale, error) {
	sale, err := scanSale(r.pool.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "sale", id)
	}
	return sale, nil
}

func (r *Repository) ListSales(ctx context.Context, filter models.SaleFilter) ([]models.Sale, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.CustomerID != "" {
		args = append(args, filter.CustomerID)
		conds = append(conds, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if filter.BikeID != "" {
		args = append(args, filter.BikeID)
		conds = append(conds, fmt.Sprintf("bike_id = $%d", len(args)))
	}

	query := `SELECT ` + saleColumns + ` FROM sales`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY sale_date DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return collect(rows, scanSale)
}

func (r *Repository) UpdateSaleNotes(ctx context.Context, id, notes string) (*models.Sale, error) {
	sale, err := scanSale(r.pool.QueryRow(ctx,
		`UPDATE sales SET notes = $2 WHERE id = $1 RETURNING `+saleColumns, id, notes))
	if err != nil {
		return nil, notFound(err, "sale", id)
	}
	return sale, nil
}

func (r *Repository) GetInventory(ctx context.Context, bikeID string) (*models.Inventory, error) {
	inventory, err := scanInventory(r.pool.QueryRow(ctx,
		`SELECT `+inventoryColumns+` FROM inventories WHERE bike_id = $1`, bikeID))
	if err != nil {
		return nil, notFound(err, "inventory", bikeID)
	}
	return inventory, nil
}

func (r *Repository) SaveInventory(ctx context.Context, inventory *models.Inventory) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO inventories (`+inventoryColumns+`) VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (bike_id) DO UPDATE SET
			minimum_stock = EXCLUDED.minimum_stock,
			maximum_stock = EXCLUDED.maximum_stock,
			reorder_point = EXCLUDED.reorder_point,
			last_restocked = EXCLUDED.last_restocked,
			notes = EXCLUDED.notes`,
		inventory.BikeID, inventory.MinimumStock, inventory.MaximumStock, inventory.ReorderPoint,
		inventory.LastRestocked, inventory.Notes)
	if err != nil {
		if pgCode(err) == foreignKeyViolation {
			return models.NotFound("bike", inventory.BikeID)
		}
		return fmt.Errorf("save inventory of bike %s: %w", inventory.BikeID, err)
	}
	return nil
}

func (r *Repository) ListInventories(ctx context.Context) ([]models.Inventory, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+inventoryColumns+` FROM inventories`)
	if err != nil {
		return nil, fmt.Errorf("list inventories: %w", err)
	}
	return collect(rows, scanInventory)
}

func (r *Repository) Restock(ctx context.Context, bikeID string, quantity int, at time.Time) (*models.Bike, *models.Inventory, error) {
	var (
		bike      *models.Bike
		inventory *models.Inventory
	)

	err := r.inTx(ctx, func(tx pgx.Tx) error {
		current, err := getBike(ctx, tx, bikeID, " FOR UPDATE")
		if err != nil {
			return err
		}
		if err := current.CheckRestock(quantity); err != nil {
			return err
		}

		bike, err = scanBike(tx.QueryRow(ctx,
			`UPDATE bikes SET stock_quantity = stock_quantity + $2, updated_at = $3
			 WHERE id = $1 RETURNING `+bikeColumns,
			bikeID, quantity, at))
		if err != nil {
			return fmt.Errorf("restock bike %s: %w", bikeID, err)
		}

		defaults := models.DefaultInventory(bikeID)
		inventory, err = scanInventory(tx.QueryRow(ctx,
			`INSERT INTO inventories (`+inventoryColumns+`) VALUES ($1, $2, $3, $4, $5, '')
			 ON CONFLICT (bike_id) DO UPDATE SET last_restocked = EXCLUDED.last_restocked
			 RETURNING `+inventoryColumns,
			bikeID, defaults.MinimumStock, defaults.MaximumStock, defaults.ReorderPoint, at))
		if err != nil {
			return fmt.Errorf("stamp restock of bike %s: %w", bikeID, err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return bike, inventory, nil
}

func (r *Repository) SaveDailyReport(ctx context.Context, report models.DailyReport) error {
	lowStock := report.LowStockBikes
	if lowStock == nil {
		lowStock = []string{}
	}
	reorder := report.ReorderBikes
	if reorder == nil {
		reorder = []string{}
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO daily_reports
			(report_date, sales_count, units_sold, revenue, total_revenue, low_stock_bikes, reorder_bikes, created_at)
		 VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6, $7, $8)`,
		report.Date, report.SalesCount, report.UnitsSold, report.Revenue.String(),
		report.TotalRevenue.String(), lowStock, reorder, report.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert daily report: %w", err)
	}
	return nil
}
