/*
Package sqlite provides SQLite-backed persistence for the Modelo 210 service.

PURPOSE:
  Stores every record the tax workflow needs: clients, properties, co-owner
  shares, rental contracts and payments, acquisition documents, expenses,
  declarations, negative-income records and compensations. In production the
  same patterns apply to PostgreSQL - only minor SQL dialect differences.

MONEY:
  All monetary columns are TEXT holding fixed 2-decimal strings, parsed into
  shopspring decimals on read. The construction percentage is stored with
  4 decimals. Money never round-trips through float64.

DELETION SEMANTICS:
  Clients, properties and co-owner shares are soft-deleted (active flag);
  list queries filter on it. Declarations are immutable: no UPDATE or DELETE
  statements exist for them. Acquisition documents are the only hard-deleted
  records, matching the source workflow where an unvalidated document can be
  discarded.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/crm210.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - modelo210: the pure calculation engine these records feed
  - api: HTTP handlers wiring store and engine together
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// Sentinel errors the HTTP layer maps onto status codes.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a unique column (NIE, email, cadastral
	// reference) already holds the value.
	ErrDuplicate = errors.New("record violates a uniqueness constraint")

	// ErrOwnershipExceeded is returned when co-owner percentages would sum
	// past 100 for a property.
	ErrOwnershipExceeded = errors.New("co-owner percentages exceed 100")

	// ErrCompensationExceedsPending is returned when a compensation is larger
	// than the negative-income record's remaining pending amount.
	ErrCompensationExceedsPending = errors.New("compensation exceeds pending negative income")
)

// IsNotFound reports whether the error is a missing-record error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicate reports whether the error is a uniqueness violation.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// Store implements persistence over SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Clients (non-resident property owners)
	CREATE TABLE IF NOT EXISTS clients (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		nie TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		surname TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		phone TEXT NOT NULL,
		foreign_city TEXT,
		foreign_address TEXT,
		notes TEXT,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_clients_nie ON clients(nie);
	CREATE INDEX IF NOT EXISTS idx_clients_name ON clients(name);

	-- Properties
	CREATE TABLE IF NOT EXISTS properties (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		client_id INTEGER NOT NULL REFERENCES clients(id),
		cadastral_reference TEXT NOT NULL UNIQUE,
		address TEXT NOT NULL,
		province TEXT,
		municipality TEXT,
		type TEXT NOT NULL,
		declaration_kind TEXT NOT NULL DEFAULT 'imputacion',
		purchase_date TEXT NOT NULL,
		purchase_price TEXT NOT NULL,
		cadastral_total TEXT,
		cadastral_land TEXT,
		cadastral_construction TEXT,
		total_acquisition_value TEXT,
		construction_pct TEXT,
		amortizable_value TEXT,
		annual_amortization TEXT,
		notes TEXT,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_properties_client ON properties(client_id);
	CREATE INDEX IF NOT EXISTS idx_properties_kind ON properties(declaration_kind);

	-- Co-owner shares
	CREATE TABLE IF NOT EXISTS co_owners (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		property_id INTEGER NOT NULL REFERENCES properties(id),
		client_id INTEGER NOT NULL REFERENCES clients(id),
		percentage TEXT NOT NULL,
		start_date TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE INDEX IF NOT EXISTS idx_co_owners_property ON co_owners(property_id);

	-- Rental contracts
	CREATE TABLE IF NOT EXISTS contracts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		property_id INTEGER NOT NULL REFERENCES properties(id),
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		monthly_rent TEXT NOT NULL,
		tenant_name TEXT NOT NULL,
		tenant_surname TEXT,
		status TEXT NOT NULL DEFAULT 'activo',
		cancel_reason TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_contracts_property ON contracts(property_id);
	CREATE INDEX IF NOT EXISTS idx_contracts_status ON contracts(status);

	-- Rental payments
	CREATE TABLE IF NOT EXISTS payments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		contract_id INTEGER NOT NULL REFERENCES contracts(id),
		amount TEXT NOT NULL,
		payment_date TEXT NOT NULL,
		fiscal_year INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payments_contract_year
		ON payments(contract_id, fiscal_year);

	-- Acquisition documents (cost components of buying the property)
	CREATE TABLE IF NOT EXISTS acquisition_documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		property_id INTEGER NOT NULL REFERENCES properties(id),
		type TEXT NOT NULL,
		amount TEXT NOT NULL,
		document_date TEXT NOT NULL,
		validated BOOLEAN NOT NULL DEFAULT FALSE,
		validated_at TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_documents_property
		ON acquisition_documents(property_id);

	-- Property expenses
	CREATE TABLE IF NOT EXISTS expenses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		property_id INTEGER NOT NULL REFERENCES properties(id),
		type TEXT NOT NULL,
		description TEXT,
		amount TEXT NOT NULL,
		expense_date TEXT NOT NULL,
		validated BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_expenses_property ON expenses(property_id);

	-- Declarations (immutable; no UPDATE/DELETE statements exist for this table)
	CREATE TABLE IF NOT EXISTS declarations (
		id TEXT PRIMARY KEY,
		property_id INTEGER NOT NULL REFERENCES properties(id),
		client_id INTEGER NOT NULL REFERENCES clients(id),
		year INTEGER NOT NULL,
		kind TEXT NOT NULL,
		declared_days INTEGER NOT NULL,
		cadastral_base TEXT,
		applied_pct TEXT,
		imputed_income TEXT,
		rental_income TEXT,
		deductible_expenses TEXT,
		amortization TEXT,
		taxable_base TEXT NOT NULL,
		tax_rate_pct TEXT NOT NULL,
		tax_due TEXT NOT NULL,
		ownership_pct TEXT NOT NULL,
		formula TEXT,
		status TEXT NOT NULL DEFAULT 'calculada',
		calculated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_declarations_client_year
		ON declarations(client_id, year);
	CREATE INDEX IF NOT EXISTS idx_declarations_property_year
		ON declarations(property_id, year);

	-- Negative-income records (carry-forward losses)
	CREATE TABLE IF NOT EXISTS negative_income (
		id TEXT PRIMARY KEY,
		client_id INTEGER NOT NULL REFERENCES clients(id),
		property_id INTEGER NOT NULL REFERENCES properties(id),
		origin_year INTEGER NOT NULL,
		amount TEXT NOT NULL,
		compensated TEXT NOT NULL DEFAULT '0.00',
		concept TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pendiente',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_negative_income_client
		ON negative_income(client_id, status);

	-- Compensations (negative-income record applied against a declaration)
	CREATE TABLE IF NOT EXISTS compensations (
		id TEXT PRIMARY KEY,
		negative_income_id TEXT NOT NULL REFERENCES negative_income(id),
		declaration_id TEXT NOT NULL REFERENCES declarations(id),
		year INTEGER NOT NULL,
		amount TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_compensations_record
		ON compensations(negative_income_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"compensations", "negative_income", "declarations", "expenses",
		"acquisition_documents", "payments", "contracts", "co_owners",
		"properties", "clients",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

const (
	dateLayout = "2006-01-02"
)

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// money serializes a decimal as a fixed 2-decimal TEXT column, with NULL for
// zero-value optional columns.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func nullMoney(d decimal.Decimal) sql.NullString {
	if d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.StringFixed(2), Valid: true}
}

// parseMoney reads a TEXT money column back into a decimal; NULL and empty
// read as zero.
func parseMoney(s sql.NullString) decimal.Decimal {
	if !s.Valid || s.String == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseDate(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
}

func nullDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(dateLayout), Valid: true}
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func parseStamp(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
