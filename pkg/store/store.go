// Package store persists extracted records to SQLite with keyed upserts.
//
// Every write is insert-or-update on the record's natural key, so
// re-extracting a document overwrites mutable columns without duplicating
// rows. The store also keeps the processed-message bookkeeping the caller
// uses to compute the delta of unhandled mail between runs.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ordersift/ordersift/pkg/extract"
)

// Schema creates the four core relations plus bookkeeping tables.
const Schema = `
CREATE TABLE IF NOT EXISTS customers (
	name TEXT PRIMARY KEY,
	address TEXT NOT NULL DEFAULT '',
	phone_number TEXT NOT NULL DEFAULT '',
	email_address TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS products (
	item_code TEXT PRIMARY KEY,
	description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS orders (
	po_number TEXT PRIMARY KEY,
	customer_name TEXT,
	sold_on TEXT NOT NULL DEFAULT '',
	must_ship_by TEXT NOT NULL DEFAULT '',
	ship_method TEXT NOT NULL DEFAULT '',
	delivery_type TEXT NOT NULL DEFAULT '',
	payment_method TEXT NOT NULL DEFAULT '',
	FOREIGN KEY (customer_name) REFERENCES customers(name)
);

CREATE TABLE IF NOT EXISTS order_items (
	po_number TEXT NOT NULL,
	item_code TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	price REAL NOT NULL,
	PRIMARY KEY (po_number, item_code),
	FOREIGN KEY (po_number) REFERENCES orders(po_number),
	FOREIGN KEY (item_code) REFERENCES products(item_code)
);

CREATE TABLE IF NOT EXISTS processed_messages (
	message_id TEXT PRIMARY KEY,
	processed_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at INTEGER NOT NULL,
	finished_at INTEGER,
	processed INTEGER NOT NULL DEFAULT 0,
	failed INTEGER NOT NULL DEFAULT 0
);
`

// Store wraps an injected SQLite handle. There is no package-level
// connection: callers open one Store and pass it down.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema. Production-safe pragmas are applied via EXEC so they work
// regardless of driver DSN handling.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("store: mkdir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if path == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %s: %w", p, err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	return &Store{db: db}, nil
}

// OpenMemory opens an in-memory store for tests and dry runs.
func OpenMemory() (*Store, error) {
	return Open(":memory:")
}

// DB exposes the underlying handle for read-only consumers (export).
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRecord upserts one record tuple in a single transaction. Later saves
// of the same natural keys win on mutable columns; keys are never
// duplicated.
func (s *Store) SaveRecord(ctx context.Context, rec *extract.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	if rec.Customer.Name != "" {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO customers (name, address, phone_number, email_address)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET
				address = excluded.address,
				phone_number = excluded.phone_number,
				email_address = excluded.email_address`,
			rec.Customer.Name, rec.Customer.Address,
			rec.Customer.PhoneNumber, rec.Customer.EmailAddress)
		if err != nil {
			return fmt.Errorf("store: upsert customer: %w", err)
		}
	}

	// orders.customer_name comes from the order section and can name a
	// customer the customer section never described. Seed the referenced
	// row so the foreign key holds without clobbering real customer data.
	// An absent name is stored as NULL, never as an empty-name customer.
	var orderCustomer any
	if rec.Order.CustomerName != "" {
		orderCustomer = rec.Order.CustomerName
		_, err = tx.ExecContext(ctx, `
			INSERT INTO customers (name) VALUES (?)
			ON CONFLICT(name) DO NOTHING`,
			rec.Order.CustomerName)
		if err != nil {
			return fmt.Errorf("store: seed customer: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (po_number, customer_name, sold_on, must_ship_by,
			ship_method, delivery_type, payment_method)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(po_number) DO UPDATE SET
			customer_name = excluded.customer_name,
			sold_on = excluded.sold_on,
			must_ship_by = excluded.must_ship_by,
			ship_method = excluded.ship_method,
			delivery_type = excluded.delivery_type,
			payment_method = excluded.payment_method`,
		rec.Order.PONumber, orderCustomer, rec.Order.SoldOn,
		rec.Order.MustShipBy, rec.Order.ShipMethod, rec.Order.DeliveryType,
		rec.Order.PaymentMethod)
	if err != nil {
		return fmt.Errorf("store: upsert order: %w", err)
	}

	for _, p := range rec.Products {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO products (item_code, description)
			VALUES (?, ?)
			ON CONFLICT(item_code) DO UPDATE SET
				description = excluded.description`,
			p.ItemCode, p.Description)
		if err != nil {
			return fmt.Errorf("store: upsert product %s: %w", p.ItemCode, err)
		}
	}

	for _, it := range rec.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (po_number, item_code, quantity, price)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(po_number, item_code) DO UPDATE SET
				quantity = excluded.quantity,
				price = excluded.price`,
			it.PONumber, it.ItemCode, it.Quantity, it.Price)
		if err != nil {
			return fmt.Errorf("store: upsert order item %s/%s: %w",
				it.PONumber, it.ItemCode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

// MarkProcessed records that a message's extraction succeeded and was
// persisted. Failed messages are deliberately never marked, so the next
// run retries them.
func (s *Store) MarkProcessed(ctx context.Context, messageID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO processed_messages (message_id, processed_at)
		VALUES (?, ?)
		ON CONFLICT(message_id) DO NOTHING`,
		messageID, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("store: mark processed: %w", err)
	}
	return nil
}

// Unprocessed filters the given message ids down to those not yet marked
// processed, preserving input order.
func (s *Store) Unprocessed(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT message_id FROM processed_messages`)
	if err != nil {
		return nil, fmt.Errorf("store: query processed: %w", err)
	}
	defer rows.Close()

	done := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("store: scan processed: %w", err)
		}
		done[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate processed: %w", err)
	}

	var out []string
	for _, id := range ids {
		if !done[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

// StartRun opens a new extraction-run row and returns its id.
func (s *Store) StartRun(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (started_at) VALUES (?)`, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("store: start run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: run id: %w", err)
	}
	return id, nil
}

// FinishRun closes a run row with its counters.
func (s *Store) FinishRun(ctx context.Context, runID int64, processed, failed int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE runs SET finished_at = ?, processed = ?, failed = ?
		WHERE id = ?`,
		time.Now().Unix(), processed, failed, runID)
	if err != nil {
		return fmt.Errorf("store: finish run: %w", err)
	}
	return nil
}
