package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/earnmomey786-cloud/crm210/modelo210"
)

// =============================================================================
// RENTAL CONTRACTS
// =============================================================================

// Contract is a stored rental contract. The embedded engine record carries
// the fields the day calculators consume.
type Contract struct {
	modelo210.RentalContract

	CancelReason string
	CreatedAt    time.Time
}

const contractColumns = `id, property_id, start_date, end_date, monthly_rent,
	tenant_name, tenant_surname, status, cancel_reason, created_at`

// CreateContract inserts a contract and returns it with its assigned ID.
func (s *Store) CreateContract(ctx context.Context, c Contract) (*Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.Status == "" {
		c.Status = modelo210.ContractActive
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO contracts (property_id, start_date, end_date, monthly_rent,
			tenant_name, tenant_surname, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.PropertyID, c.Start.Format(dateLayout), c.End.Format(dateLayout),
		money(c.MonthlyRent), c.TenantName, nullString(c.TenantSurname),
		string(c.Status), nowStamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create contract: %w", err)
	}

	c.ID, _ = res.LastInsertId()
	return &c, nil
}

// GetContract retrieves a contract by ID.
func (s *Store) GetContract(ctx context.Context, id int64) (*Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := scanContract(s.db.QueryRowContext(ctx,
		"SELECT "+contractColumns+" FROM contracts WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan contract: %w", err)
	}
	return &c, nil
}

// ListContractsByProperty returns a property's contracts, newest start first.
// Cancelled contracts are excluded unless includeCancelled is set.
func (s *Store) ListContractsByProperty(ctx context.Context, propertyID int64, includeCancelled bool) ([]Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + contractColumns + " FROM contracts WHERE property_id = ?"
	if !includeCancelled {
		query += " AND status != 'cancelado'"
	}
	query += " ORDER BY start_date DESC"

	rows, err := s.db.QueryContext(ctx, query, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contracts: %w", err)
	}
	defer rows.Close()

	var contracts []Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

// UpdateContract overwrites a contract's mutable fields.
func (s *Store) UpdateContract(ctx context.Context, c Contract) (*Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE contracts
		SET start_date = ?, end_date = ?, monthly_rent = ?,
			tenant_name = ?, tenant_surname = ?, status = ?
		WHERE id = ?`,
		c.Start.Format(dateLayout), c.End.Format(dateLayout),
		money(c.MonthlyRent), c.TenantName, nullString(c.TenantSurname),
		string(c.Status), c.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update contract: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	return s.getContractLocked(ctx, c.ID)
}

// CancelContract marks a contract cancelled with a reason. Cancelled
// contracts never participate in day calculations again.
func (s *Store) CancelContract(ctx context.Context, id int64, reason string) (*Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE contracts SET status = 'cancelado', cancel_reason = ?
		WHERE id = ?`, reason, id)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel contract: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	return s.getContractLocked(ctx, id)
}

func (s *Store) getContractLocked(ctx context.Context, id int64) (*Contract, error) {
	c, err := scanContract(s.db.QueryRowContext(ctx,
		"SELECT "+contractColumns+" FROM contracts WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan contract: %w", err)
	}
	return &c, nil
}

func scanContract(row rowScanner) (Contract, error) {
	var (
		c                     Contract
		start, end, rent      string
		surname, cancelReason sql.NullString
		status, createdAt     string
	)
	err := row.Scan(&c.ID, &c.PropertyID, &start, &end, &rent,
		&c.TenantName, &surname, &status, &cancelReason, &createdAt)
	if err != nil {
		return c, err
	}

	c.Start = parseDate(start)
	c.End = parseDate(end)
	c.MonthlyRent = parseMoney(sql.NullString{String: rent, Valid: true})
	c.TenantSurname = surname.String
	c.Status = modelo210.ContractStatus(status)
	c.CancelReason = cancelReason.String
	c.CreatedAt = parseStamp(createdAt)
	return c, nil
}

// EngineContracts strips store records down to the engine's contract input.
func EngineContracts(contracts []Contract) []modelo210.RentalContract {
	out := make([]modelo210.RentalContract, len(contracts))
	for i, c := range contracts {
		out[i] = c.RentalContract
	}
	return out
}

// =============================================================================
// RENTAL PAYMENTS
// =============================================================================

// Payment is one received rent payment, tagged with the fiscal year it
// belongs to (which can differ from the payment date's year).
type Payment struct {
	ID          int64
	ContractID  int64
	Amount      decimal.Decimal
	PaymentDate time.Time
	FiscalYear  int
	CreatedAt   time.Time
}

// CreatePayment inserts a payment and returns it with its assigned ID.
func (s *Store) CreatePayment(ctx context.Context, p Payment) (*Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (contract_id, amount, payment_date, fiscal_year, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		p.ContractID, money(p.Amount), p.PaymentDate.Format(dateLayout),
		p.FiscalYear, nowStamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	p.ID, _ = res.LastInsertId()
	return &p, nil
}

// ListPaymentsByContract returns a contract's payments, newest first,
// optionally filtered to one fiscal year (zero means all).
func (s *Store) ListPaymentsByContract(ctx context.Context, contractID int64, fiscalYear int) ([]Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, contract_id, amount, payment_date, fiscal_year, created_at
		FROM payments WHERE contract_id = ?`
	args := []any{contractID}
	if fiscalYear != 0 {
		query += " AND fiscal_year = ?"
		args = append(args, fiscalYear)
	}
	query += " ORDER BY payment_date DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		var (
			p             Payment
			amount, pDate string
			createdAt     string
		)
		if err := rows.Scan(&p.ID, &p.ContractID, &amount, &pDate,
			&p.FiscalYear, &createdAt); err != nil {
			return nil, err
		}
		p.Amount = parseMoney(sql.NullString{String: amount, Valid: true})
		p.PaymentDate = parseDate(pDate)
		p.CreatedAt = parseStamp(createdAt)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
