package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// schema sets up the database. It runs on startup so tables always exist.
// Decimal values are stored as TEXT to keep them exact.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    role TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS bills (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    bill_no INTEGER NOT NULL,
    customer_name TEXT NOT NULL,
    customer_name_fold TEXT NOT NULL DEFAULT '',
    customer_email TEXT NOT NULL DEFAULT '',
    date INTEGER NOT NULL,
    grand_total TEXT NOT NULL,
    amount_in_words TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    UNIQUE (owner_id, bill_no)
);

CREATE TABLE IF NOT EXISTS line_items (
    id TEXT PRIMARY KEY,
    bill_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    particular TEXT NOT NULL,
    qty TEXT NOT NULL,
    rate TEXT NOT NULL,
    amount TEXT NOT NULL,
    FOREIGN KEY (bill_id) REFERENCES bills(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS business_profiles (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL UNIQUE,
    business_name TEXT NOT NULL DEFAULT '',
    owner_name TEXT NOT NULL DEFAULT '',
    business_type TEXT NOT NULL,
    gst_number TEXT NOT NULL DEFAULT '',
    pan_number TEXT NOT NULL DEFAULT '',
    address TEXT NOT NULL DEFAULT '{}',
    contact TEXT NOT NULL DEFAULT '{}',
    bank TEXT NOT NULL DEFAULT '{}',
    invoice_settings TEXT NOT NULL DEFAULT '{}',
    logo_url TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS customers (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    name TEXT NOT NULL,
    phone TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL DEFAULT '',
    address TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_line_items_bill_id ON line_items(bill_id);
CREATE INDEX IF NOT EXISTS idx_customers_owner_id ON customers(owner_id);
`

// runMigrations executes the schema setup and upgrades older databases.
func runMigrations(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return err
	}
	return addCustomerNameFold(ctx, db)
}

// addCustomerNameFold adds bills.customer_name_fold to databases created
// before it existed and fills it from customer_name.
func addCustomerNameFold(ctx context.Context, db *sql.DB) error {
	var n int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM pragma_table_info('bills') WHERE name = 'customer_name_fold'",
	).Scan(&n)
	if err != nil {
		return fmt.Errorf("failed to inspect bills table: %w", err)
	}
	if n > 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "ALTER TABLE bills ADD COLUMN customer_name_fold TEXT NOT NULL DEFAULT ''"); err != nil {
		return fmt.Errorf("failed to add customer_name_fold: %w", err)
	}

	rows, err := tx.QueryContext(ctx, "SELECT id, customer_name FROM bills")
	if err != nil {
		return fmt.Errorf("failed to read bills: %w", err)
	}
	names := map[string]string{}
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan bill: %w", err)
		}
		names[id] = name
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read bills: %w", err)
	}

	for id, name := range names {
		if _, err := tx.ExecContext(ctx, "UPDATE bills SET customer_name_fold = ? WHERE id = ?", foldName(name), id); err != nil {
			return fmt.Errorf("failed to fill customer_name_fold: %w", err)
		}
	}
	return tx.Commit()
}
