package postgres

// schema is applied on startup. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS suppliers (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL,
		contact_person TEXT NOT NULL,
		email          TEXT NOT NULL,
		phone          TEXT NOT NULL DEFAULT '',
		address        TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMPTZ NOT NULL,
		updated_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS bikes (
		id             TEXT PRIMARY KEY,
		brand          TEXT NOT NULL,
		model          TEXT NOT NULL,
		type           TEXT NOT NULL,
		price          NUMERIC(10,2) NOT NULL CHECK (price >= 0.01),
		stock_quantity INTEGER NOT NULL CHECK (stock_quantity >= 0),
		color          TEXT NOT NULL,
		description    TEXT NOT NULL DEFAULT '',
		supplier_id    TEXT REFERENCES suppliers(id) ON DELETE SET NULL,
		created_at     TIMESTAMPTZ NOT NULL,
		updated_at     TIMESTAMPTZ NOT NULL,
		UNIQUE (brand, model, color)
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		email      TEXT NOT NULL UNIQUE,
		phone      TEXT NOT NULL DEFAULT '',
		address    TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id          TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
		bike_id     TEXT NOT NULL REFERENCES bikes(id) ON DELETE CASCADE,
		quantity    INTEGER NOT NULL CHECK (quantity > 0),
		sale_price  NUMERIC(10,2) NOT NULL,
		sale_date   TIMESTAMPTZ NOT NULL,
		notes       TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS sales_sale_date_idx ON sales (sale_date DESC)`,
	`CREATE TABLE IF NOT EXISTS inventories (
		bike_id        TEXT PRIMARY KEY REFERENCES bikes(id) ON DELETE CASCADE,
		minimum_stock  INTEGER NOT NULL,
		maximum_stock  INTEGER NOT NULL,
		reorder_point  INTEGER NOT NULL,
		last_restocked TIMESTAMPTZ,
		notes          TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS daily_reports (
		id              BIGSERIAL PRIMARY KEY,
		report_date     TIMESTAMPTZ NOT NULL,
		sales_count     INTEGER NOT NULL,
		units_sold      INTEGER NOT NULL,
		revenue         NUMERIC(12,2) NOT NULL,
		total_revenue   NUMERIC(14,2) NOT NULL,
		low_stock_bikes TEXT[] NOT NULL DEFAULT '{}',
		reorder_bikes   TEXT[] NOT NULL DEFAULT '{}',
		created_at      TIMESTAMPTZ NOT NULL
	)`,
}
