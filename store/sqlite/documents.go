package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/earnmomey786-cloud/crm210/modelo210"
)

// =============================================================================
// ACQUISITION DOCUMENTS
// =============================================================================

// Document is a stored acquisition cost component.
type Document struct {
	modelo210.AcquisitionDocument

	ValidatedAt *time.Time
	CreatedAt   time.Time
}

const documentColumns = `id, property_id, type, amount, document_date,
	validated, validated_at, created_at`

// CreateDocuments inserts a batch of acquisition documents for a property,
// atomically. Batch-registered documents are validated on entry.
func (s *Store) CreateDocuments(ctx context.Context, propertyID int64, docs []Document) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	created := make([]Document, 0, len(docs))
	for _, d := range docs {
		d.PropertyID = propertyID
		d.Validated = true
		d.ValidatedAt = &now

		res, err := tx.ExecContext(ctx, `
			INSERT INTO acquisition_documents (property_id, type, amount,
				document_date, validated, validated_at, created_at)
			VALUES (?, ?, ?, ?, TRUE, ?, ?)`,
			d.PropertyID, string(d.Type), money(d.Amount),
			d.Date.Format(dateLayout), now.Format(time.RFC3339), nowStamp(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create document: %w", err)
		}
		d.ID, _ = res.LastInsertId()
		created = append(created, d)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return created, nil
}

// GetDocument retrieves an acquisition document by ID.
func (s *Store) GetDocument(ctx context.Context, id int64) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := scanDocument(s.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM acquisition_documents WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}
	return &d, nil
}

// ListDocumentsByProperty returns a property's acquisition documents, newest
// document date first, optionally restricted to validated ones.
func (s *Store) ListDocumentsByProperty(ctx context.Context, propertyID int64, validatedOnly bool) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + documentColumns + " FROM acquisition_documents WHERE property_id = ?"
	if validatedOnly {
		query += " AND validated = TRUE"
	}
	query += " ORDER BY document_date DESC"

	rows, err := s.db.QueryContext(ctx, query, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// UpdateDocument overwrites a document's type, amount and date.
func (s *Store) UpdateDocument(ctx context.Context, d Document) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE acquisition_documents
		SET type = ?, amount = ?, document_date = ?
		WHERE id = ?`,
		string(d.Type), money(d.Amount), d.Date.Format(dateLayout), d.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	return s.getDocumentLocked(ctx, d.ID)
}

// ValidateDocument marks a document validated, stamping the validation time.
func (s *Store) ValidateDocument(ctx context.Context, id int64) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE acquisition_documents SET validated = TRUE, validated_at = ?
		WHERE id = ?`, nowStamp(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to validate document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	return s.getDocumentLocked(ctx, id)
}

// DeleteDocument hard-deletes a document.
func (s *Store) DeleteDocument(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"DELETE FROM acquisition_documents WHERE id = ?", id)
	return err
}

func (s *Store) getDocumentLocked(ctx context.Context, id int64) (*Document, error) {
	d, err := scanDocument(s.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM acquisition_documents WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}
	return &d, nil
}

func scanDocument(row rowScanner) (Document, error) {
	var (
		d                 Document
		docType, amount   string
		docDate           string
		validatedAt       sql.NullString
		createdAt         string
	)
	err := row.Scan(&d.ID, &d.PropertyID, &docType, &amount, &docDate,
		&d.Validated, &validatedAt, &createdAt)
	if err != nil {
		return d, err
	}

	d.Type = modelo210.DocumentType(docType)
	d.Amount = parseMoney(sql.NullString{String: amount, Valid: true})
	d.Date = parseDate(docDate)
	if validatedAt.Valid {
		t := parseStamp(validatedAt.String)
		d.ValidatedAt = &t
	}
	d.CreatedAt = parseStamp(createdAt)
	return d, nil
}

// EngineDocuments strips store records down to the engine's document input.
func EngineDocuments(docs []Document) []modelo210.AcquisitionDocument {
	out := make([]modelo210.AcquisitionDocument, len(docs))
	for i, d := range docs {
		out[i] = d.AcquisitionDocument
	}
	return out
}

// =============================================================================
// EXPENSES
// =============================================================================

// ExpenseRecord is a stored property expense.
type ExpenseRecord struct {
	modelo210.Expense

	CreatedAt time.Time
}

const expenseColumns = `id, property_id, type, description, amount,
	expense_date, validated, created_at`

// CreateExpense inserts an expense and returns it with its assigned ID.
func (s *Store) CreateExpense(ctx context.Context, e ExpenseRecord) (*ExpenseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (property_id, type, description, amount,
			expense_date, validated, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.PropertyID, string(e.Type), nullString(e.Description),
		money(e.Amount), e.Date.Format(dateLayout), e.Validated, nowStamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	e.ID, _ = res.LastInsertId()
	return &e, nil
}

// ListExpensesByProperty returns a property's expenses, newest first,
// optionally filtered to one year (zero means all).
func (s *Store) ListExpensesByProperty(ctx context.Context, propertyID int64, year int) ([]ExpenseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + expenseColumns + " FROM expenses WHERE property_id = ?"
	args := []any{propertyID}
	if year != 0 {
		query += " AND strftime('%Y', expense_date) = ?"
		args = append(args, fmt.Sprintf("%d", year))
	}
	query += " ORDER BY expense_date DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []ExpenseRecord
	for rows.Next() {
		var (
			e                ExpenseRecord
			expType, amount  string
			description      sql.NullString
			expDate          string
			createdAt        string
		)
		if err := rows.Scan(&e.ID, &e.PropertyID, &expType, &description,
			&amount, &expDate, &e.Validated, &createdAt); err != nil {
			return nil, err
		}
		e.Type = modelo210.ExpenseType(expType)
		e.Description = description.String
		e.Amount = parseMoney(sql.NullString{String: amount, Valid: true})
		e.Date = parseDate(expDate)
		e.CreatedAt = parseStamp(createdAt)
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// EngineExpenses strips store records down to the engine's expense input.
func EngineExpenses(expenses []ExpenseRecord) []modelo210.Expense {
	out := make([]modelo210.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = e.Expense
	}
	return out
}
