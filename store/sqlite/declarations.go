package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/earnmomey786-cloud/crm210/modelo210"
)

// =============================================================================
// DECLARATIONS - immutable once created
// =============================================================================

// Declaration is one computed Modelo 210 row for a single owner and year.
// Rows are never updated or deleted; a recalculation creates a new row.
type Declaration struct {
	ID         string
	PropertyID int64
	ClientID   int64
	Year       int
	Kind       modelo210.DeclarationKind

	DeclaredDays int

	// Imputation fields (zero for pure rental declarations).
	CadastralBase decimal.Decimal
	AppliedPct    decimal.Decimal
	ImputedIncome decimal.Decimal

	// Rental fields (zero for pure imputation declarations).
	RentalIncome       decimal.Decimal
	DeductibleExpenses decimal.Decimal
	Amortization       decimal.Decimal

	TaxableBase  decimal.Decimal
	TaxRatePct   decimal.Decimal
	TaxDue       decimal.Decimal
	OwnershipPct decimal.Decimal
	Formula      string
	Status       string
	CalculatedAt time.Time
}

// DeclarationWithProperty pairs a declaration with its property's address for
// client-level listings.
type DeclarationWithProperty struct {
	Declaration
	PropertyAddress string
}

const declarationColumns = `id, property_id, client_id, year, kind,
	declared_days, cadastral_base, applied_pct, imputed_income, rental_income,
	deductible_expenses, amortization, taxable_base, tax_rate_pct, tax_due,
	ownership_pct, formula, status, calculated_at`

// CreateDeclaration inserts a declaration, assigning it a UUID.
func (s *Store) CreateDeclaration(ctx context.Context, d Declaration) (*Declaration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d.ID = uuid.NewString()
	if d.Status == "" {
		d.Status = "calculada"
	}
	d.CalculatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO declarations (id, property_id, client_id, year, kind,
			declared_days, cadastral_base, applied_pct, imputed_income,
			rental_income, deductible_expenses, amortization, taxable_base,
			tax_rate_pct, tax_due, ownership_pct, formula, status, calculated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.PropertyID, d.ClientID, d.Year, string(d.Kind),
		d.DeclaredDays, nullMoney(d.CadastralBase),
		nullString(zeroAsEmpty(d.AppliedPct, 4)), nullMoney(d.ImputedIncome),
		nullMoney(d.RentalIncome), nullMoney(d.DeductibleExpenses),
		nullMoney(d.Amortization), money(d.TaxableBase),
		d.TaxRatePct.StringFixed(2), money(d.TaxDue),
		d.OwnershipPct.StringFixed(2), nullString(d.Formula), d.Status,
		d.CalculatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create declaration: %w", err)
	}
	return &d, nil
}

// GetDeclaration retrieves a declaration by ID.
func (s *Store) GetDeclaration(ctx context.Context, id string) (*Declaration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := scanDeclaration(s.db.QueryRowContext(ctx,
		"SELECT "+declarationColumns+" FROM declarations WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan declaration: %w", err)
	}
	return &d, nil
}

// ListDeclarationsByClient returns a client's declarations with property
// addresses, newest calculation first, optionally filtered to one year
// (zero means all).
func (s *Store) ListDeclarationsByClient(ctx context.Context, clientID int64, year int) ([]DeclarationWithProperty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT d.id, d.property_id, d.client_id, d.year, d.kind,
			d.declared_days, d.cadastral_base, d.applied_pct, d.imputed_income,
			d.rental_income, d.deductible_expenses, d.amortization,
			d.taxable_base, d.tax_rate_pct, d.tax_due, d.ownership_pct,
			d.formula, d.status, d.calculated_at, p.address
		FROM declarations d
		INNER JOIN properties p ON p.id = d.property_id
		WHERE d.client_id = ?`
	args := []any{clientID}
	if year != 0 {
		query += " AND d.year = ?"
		args = append(args, year)
	}
	query += " ORDER BY d.calculated_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query declarations: %w", err)
	}
	defer rows.Close()

	var declarations []DeclarationWithProperty
	for rows.Next() {
		var (
			dwp     DeclarationWithProperty
			address string
		)
		d, err := scanDeclarationFrom(rows, &address)
		if err != nil {
			return nil, err
		}
		dwp.Declaration = d
		dwp.PropertyAddress = address
		declarations = append(declarations, dwp)
	}
	return declarations, rows.Err()
}

// ListDeclarationsByProperty returns a property's declarations, newest
// calculation first, optionally filtered to one year (zero means all).
func (s *Store) ListDeclarationsByProperty(ctx context.Context, propertyID int64, year int) ([]Declaration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + declarationColumns + " FROM declarations WHERE property_id = ?"
	args := []any{propertyID}
	if year != 0 {
		query += " AND year = ?"
		args = append(args, year)
	}
	query += " ORDER BY calculated_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query declarations: %w", err)
	}
	defer rows.Close()

	var declarations []Declaration
	for rows.Next() {
		d, err := scanDeclaration(rows)
		if err != nil {
			return nil, err
		}
		declarations = append(declarations, d)
	}
	return declarations, rows.Err()
}

func scanDeclaration(row rowScanner) (Declaration, error) {
	return scanDeclarationFrom(row, nil)
}

// scanDeclarationFrom scans the declaration columns, plus a trailing address
// column when extra is non-nil.
func scanDeclarationFrom(row rowScanner, extra *string) (Declaration, error) {
	var (
		d                               Declaration
		kind                            string
		cadBase, appliedPct, imputed    sql.NullString
		rental, deductible, amort       sql.NullString
		taxBase, ratePct, taxDue, owner string
		formula                         sql.NullString
		calculatedAt                    string
	)

	dest := []any{&d.ID, &d.PropertyID, &d.ClientID, &d.Year, &kind,
		&d.DeclaredDays, &cadBase, &appliedPct, &imputed, &rental,
		&deductible, &amort, &taxBase, &ratePct, &taxDue, &owner,
		&formula, &d.Status, &calculatedAt}
	if extra != nil {
		dest = append(dest, extra)
	}
	if err := row.Scan(dest...); err != nil {
		return d, err
	}

	d.Kind = modelo210.DeclarationKind(kind)
	d.CadastralBase = parseMoney(cadBase)
	d.AppliedPct = parseMoney(appliedPct)
	d.ImputedIncome = parseMoney(imputed)
	d.RentalIncome = parseMoney(rental)
	d.DeductibleExpenses = parseMoney(deductible)
	d.Amortization = parseMoney(amort)
	d.TaxableBase = parseMoney(sql.NullString{String: taxBase, Valid: true})
	d.TaxRatePct = parseMoney(sql.NullString{String: ratePct, Valid: true})
	d.TaxDue = parseMoney(sql.NullString{String: taxDue, Valid: true})
	d.OwnershipPct = parseMoney(sql.NullString{String: owner, Valid: true})
	d.Formula = formula.String
	d.CalculatedAt = parseStamp(calculatedAt)
	return d, nil
}

func zeroAsEmpty(d decimal.Decimal, places int32) string {
	if d.IsZero() {
		return ""
	}
	return d.StringFixed(places)
}

// =============================================================================
// NEGATIVE INCOME
// =============================================================================

const negativeIncomeColumns = `id, client_id, property_id, origin_year,
	amount, compensated, concept, status`

// CreateNegativeIncome stores a new carry-forward record, assigning it a UUID.
func (s *Store) CreateNegativeIncome(ctx context.Context, r modelo210.NegativeIncomeRecord) (*modelo210.NegativeIncomeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = uuid.NewString()
	if r.Status == "" {
		r.Status = modelo210.NegativePending
	}
	if r.Compensated.IsZero() {
		r.Compensated = decimal.Zero
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO negative_income (id, client_id, property_id, origin_year,
			amount, compensated, concept, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ClientID, r.PropertyID, r.OriginYear,
		money(r.Amount), money(r.Compensated), string(r.Concept),
		string(r.Status), nowStamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create negative income record: %w", err)
	}
	return &r, nil
}

// GetNegativeIncome retrieves a negative-income record by ID.
func (s *Store) GetNegativeIncome(ctx context.Context, id string) (*modelo210.NegativeIncomeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, err := scanNegativeIncome(s.db.QueryRowContext(ctx,
		"SELECT "+negativeIncomeColumns+" FROM negative_income WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan negative income record: %w", err)
	}
	return &r, nil
}

// ListPendingNegativeIncome returns a client's pending records, oldest
// origin year first so compensations consume the closest-to-expiry first.
func (s *Store) ListPendingNegativeIncome(ctx context.Context, clientID int64) ([]modelo210.NegativeIncomeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+negativeIncomeColumns+` FROM negative_income
		WHERE client_id = ? AND status = 'pendiente'
		ORDER BY origin_year ASC`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query negative income records: %w", err)
	}
	defer rows.Close()

	var records []modelo210.NegativeIncomeRecord
	for rows.Next() {
		r, err := scanNegativeIncome(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// ExpireNegativeIncome marks every pending record whose 4-year window has
// passed by the given fiscal year as expired. Returns how many were flipped.
func (s *Store) ExpireNegativeIncome(ctx context.Context, year int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE negative_income SET status = 'expirada'
		WHERE status = 'pendiente' AND origin_year + ? < ?`,
		modelo210.CarryForwardYears, year)
	if err != nil {
		return 0, fmt.Errorf("failed to expire negative income records: %w", err)
	}
	return res.RowsAffected()
}

func scanNegativeIncome(row rowScanner) (modelo210.NegativeIncomeRecord, error) {
	var (
		r                            modelo210.NegativeIncomeRecord
		amount, compensated          string
		concept, status              string
	)
	err := row.Scan(&r.ID, &r.ClientID, &r.PropertyID, &r.OriginYear,
		&amount, &compensated, &concept, &status)
	if err != nil {
		return r, err
	}

	r.Amount = parseMoney(sql.NullString{String: amount, Valid: true})
	r.Compensated = parseMoney(sql.NullString{String: compensated, Valid: true})
	r.Concept = modelo210.NegativeIncomeConcept(concept)
	r.Status = modelo210.NegativeIncomeStatus(status)
	return r, nil
}

// =============================================================================
// COMPENSATIONS
// =============================================================================

// Compensation links a negative-income record to the declaration it was
// applied against.
type Compensation struct {
	ID               string
	NegativeIncomeID string
	DeclarationID    string
	Year             int
	Amount           decimal.Decimal
	CreatedAt        time.Time
}

// ApplyCompensation records a compensation and updates the negative-income
// record's compensated amount in one transaction. When the record is fully
// consumed its status flips to compensada.
func (s *Store) ApplyCompensation(ctx context.Context, c Compensation) (*Compensation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var amount, compensated, status string
	err = tx.QueryRowContext(ctx,
		"SELECT amount, compensated, status FROM negative_income WHERE id = ?",
		c.NegativeIncomeID,
	).Scan(&amount, &compensated, &status)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load negative income record: %w", err)
	}

	total := parseMoney(sql.NullString{String: amount, Valid: true})
	used := parseMoney(sql.NullString{String: compensated, Valid: true})
	pending := total.Sub(used)
	if c.Amount.GreaterThan(pending) {
		return nil, fmt.Errorf("pending is %s: %w", pending.StringFixed(2), ErrCompensationExceedsPending)
	}

	newUsed := used.Add(c.Amount)
	newStatus := status
	if newUsed.GreaterThanOrEqual(total) {
		newStatus = string(modelo210.NegativeCompensated)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE negative_income SET compensated = ?, status = ?
		WHERE id = ?`,
		money(newUsed), newStatus, c.NegativeIncomeID)
	if err != nil {
		return nil, fmt.Errorf("failed to update negative income record: %w", err)
	}

	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO compensations (id, negative_income_id, declaration_id,
			year, amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.NegativeIncomeID, c.DeclarationID, c.Year,
		money(c.Amount), c.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create compensation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCompensations returns a negative-income record's compensations,
// oldest first.
func (s *Store) ListCompensations(ctx context.Context, negativeIncomeID string) ([]Compensation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, negative_income_id, declaration_id, year, amount, created_at
		FROM compensations
		WHERE negative_income_id = ?
		ORDER BY created_at ASC`, negativeIncomeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query compensations: %w", err)
	}
	defer rows.Close()

	var compensations []Compensation
	for rows.Next() {
		var (
			c         Compensation
			amount    string
			createdAt string
		)
		if err := rows.Scan(&c.ID, &c.NegativeIncomeID, &c.DeclarationID,
			&c.Year, &amount, &createdAt); err != nil {
			return nil, err
		}
		c.Amount = parseMoney(sql.NullString{String: amount, Valid: true})
		c.CreatedAt = parseStamp(createdAt)
		compensations = append(compensations, c)
	}
	return compensations, rows.Err()
}
