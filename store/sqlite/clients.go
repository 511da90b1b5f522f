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
// CLIENTS
// =============================================================================

// Client is a non-resident property owner.
type Client struct {
	ID             int64
	NIE            string
	Name           string
	Surname        string
	Email          string
	Phone          string
	ForeignCity    string
	ForeignAddress string
	Notes          string
	Active         bool
	CreatedAt      time.Time
}

const clientColumns = `id, nie, name, surname, email, phone, foreign_city,
	foreign_address, notes, active, created_at`

// CreateClient inserts a client and returns it with its assigned ID.
func (s *Store) CreateClient(ctx context.Context, c Client) (*Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO clients (nie, name, surname, email, phone, foreign_city,
			foreign_address, notes, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, TRUE, ?)`,
		c.NIE, c.Name, c.Surname, c.Email, c.Phone,
		nullString(c.ForeignCity), nullString(c.ForeignAddress),
		nullString(c.Notes), nowStamp(),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, fmt.Errorf("NIE or email already registered: %w", ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	c.ID, _ = res.LastInsertId()
	c.Active = true
	return &c, nil
}

// GetClient retrieves a client by ID.
func (s *Store) GetClient(ctx context.Context, id int64) (*Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.scanClientRow(s.db.QueryRowContext(ctx,
		"SELECT "+clientColumns+" FROM clients WHERE id = ?", id))
}

// ListClients returns all active clients ordered by surname.
func (s *Store) ListClients(ctx context.Context) ([]Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryClients(ctx,
		"SELECT "+clientColumns+" FROM clients WHERE active = TRUE ORDER BY surname, name")
}

// SearchClients returns active clients whose NIE, name or surname contains
// the query, case-insensitive.
func (s *Store) SearchClients(ctx context.Context, query string) ([]Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pattern := "%" + query + "%"
	return s.queryClients(ctx, `
		SELECT `+clientColumns+` FROM clients
		WHERE active = TRUE
		  AND (nie LIKE ? COLLATE NOCASE
			OR name LIKE ? COLLATE NOCASE
			OR surname LIKE ? COLLATE NOCASE)
		ORDER BY surname, name`,
		pattern, pattern, pattern)
}

// UpdateClient overwrites a client's mutable fields.
func (s *Store) UpdateClient(ctx context.Context, c Client) (*Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE clients
		SET nie = ?, name = ?, surname = ?, email = ?, phone = ?,
			foreign_city = ?, foreign_address = ?, notes = ?
		WHERE id = ?`,
		c.NIE, c.Name, c.Surname, c.Email, c.Phone,
		nullString(c.ForeignCity), nullString(c.ForeignAddress),
		nullString(c.Notes), c.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, fmt.Errorf("NIE or email already registered: %w", ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	return s.scanClientRow(s.db.QueryRowContext(ctx,
		"SELECT "+clientColumns+" FROM clients WHERE id = ?", c.ID))
}

// DeleteClient soft-deletes a client.
func (s *Store) DeleteClient(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"UPDATE clients SET active = FALSE WHERE id = ?", id)
	return err
}

func (s *Store) queryClients(ctx context.Context, query string, args ...any) ([]Client, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (Client, error) {
	var (
		c                           Client
		city, address, notes        sql.NullString
		createdAt                   string
	)
	err := row.Scan(&c.ID, &c.NIE, &c.Name, &c.Surname, &c.Email, &c.Phone,
		&city, &address, &notes, &c.Active, &createdAt)
	if err != nil {
		return c, err
	}
	c.ForeignCity = city.String
	c.ForeignAddress = address.String
	c.Notes = notes.String
	c.CreatedAt = parseStamp(createdAt)
	return c, nil
}

func (s *Store) scanClientRow(row *sql.Row) (*Client, error) {
	c, err := scanClient(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan client: %w", err)
	}
	return &c, nil
}

// =============================================================================
// PROPERTIES
// =============================================================================

// Property is a stored property. The embedded engine record carries the
// calculation-relevant fields; the rest is registry data.
type Property struct {
	modelo210.Property

	Province     string
	Municipality string
	Notes        string
	Active       bool
	CreatedAt    time.Time
}

const propertyColumns = `id, client_id, cadastral_reference, address, province,
	municipality, type, declaration_kind, purchase_date, purchase_price,
	cadastral_total, cadastral_land, cadastral_construction,
	total_acquisition_value, construction_pct, amortizable_value,
	annual_amortization, notes, active, created_at`

// CreateProperty inserts a property and returns it with its assigned ID.
func (s *Store) CreateProperty(ctx context.Context, p Property) (*Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO properties (client_id, cadastral_reference, address,
			province, municipality, type, declaration_kind, purchase_date,
			purchase_price, cadastral_total, cadastral_land,
			cadastral_construction, notes, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, TRUE, ?)`,
		p.ClientID, p.CadastralReference, p.Address,
		nullString(p.Province), nullString(p.Municipality),
		string(p.Type), string(p.DeclarationKind),
		p.PurchaseDate.Format(dateLayout), money(p.PurchasePrice),
		nullMoney(p.CadastralTotal), nullMoney(p.CadastralLand),
		nullMoney(p.CadastralConstruction), nullString(p.Notes), nowStamp(),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, fmt.Errorf("cadastral reference already registered: %w", ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create property: %w", err)
	}

	p.ID, _ = res.LastInsertId()
	p.Active = true
	return &p, nil
}

// GetProperty retrieves a property by ID.
func (s *Store) GetProperty(ctx context.Context, id int64) (*Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := scanProperty(s.db.QueryRowContext(ctx,
		"SELECT "+propertyColumns+" FROM properties WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan property: %w", err)
	}
	return &p, nil
}

// ListPropertiesByClient returns a client's active properties.
func (s *Store) ListPropertiesByClient(ctx context.Context, clientID int64) ([]Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+propertyColumns+" FROM properties WHERE client_id = ? AND active = TRUE ORDER BY id",
		clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	defer rows.Close()

	var properties []Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, p)
	}
	return properties, rows.Err()
}

// UpdateProperty overwrites a property's registry fields. Derived
// amortization fields are only written through UpdatePropertyAmortization.
func (s *Store) UpdateProperty(ctx context.Context, p Property) (*Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE properties
		SET cadastral_reference = ?, address = ?, province = ?,
			municipality = ?, type = ?, declaration_kind = ?,
			purchase_date = ?, purchase_price = ?, cadastral_total = ?,
			cadastral_land = ?, cadastral_construction = ?, notes = ?
		WHERE id = ?`,
		p.CadastralReference, p.Address,
		nullString(p.Province), nullString(p.Municipality),
		string(p.Type), string(p.DeclarationKind),
		p.PurchaseDate.Format(dateLayout), money(p.PurchasePrice),
		nullMoney(p.CadastralTotal), nullMoney(p.CadastralLand),
		nullMoney(p.CadastralConstruction), nullString(p.Notes), p.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, fmt.Errorf("cadastral reference already registered: %w", ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to update property: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	return s.getPropertyLocked(ctx, p.ID)
}

// UpdatePropertyAmortization persists the derived fields of an
// amortizable-value calculation back onto the property.
func (s *Store) UpdatePropertyAmortization(ctx context.Context, id int64,
	totalAcquisition, constructionPct, amortizable, annual decimal.Decimal) (*Property, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE properties
		SET total_acquisition_value = ?, construction_pct = ?,
			amortizable_value = ?, annual_amortization = ?
		WHERE id = ?`,
		totalAcquisition.StringFixed(2), constructionPct.StringFixed(4),
		amortizable.StringFixed(2), annual.StringFixed(2), id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update amortization fields: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	return s.getPropertyLocked(ctx, id)
}

// DeleteProperty soft-deletes a property.
func (s *Store) DeleteProperty(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"UPDATE properties SET active = FALSE WHERE id = ?", id)
	return err
}

func (s *Store) getPropertyLocked(ctx context.Context, id int64) (*Property, error) {
	p, err := scanProperty(s.db.QueryRowContext(ctx,
		"SELECT "+propertyColumns+" FROM properties WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan property: %w", err)
	}
	return &p, nil
}

func scanProperty(row rowScanner) (Property, error) {
	var (
		p                            Property
		province, municipality       sql.NullString
		propType, kind, purchaseDate string
		purchasePrice                string
		cadTotal, cadLand, cadConstr sql.NullString
		totalAcq, constrPct          sql.NullString
		amortizable, annual          sql.NullString
		notes                        sql.NullString
		createdAt                    string
	)
	err := row.Scan(&p.ID, &p.ClientID, &p.CadastralReference, &p.Address,
		&province, &municipality, &propType, &kind, &purchaseDate,
		&purchasePrice, &cadTotal, &cadLand, &cadConstr,
		&totalAcq, &constrPct, &amortizable, &annual,
		&notes, &p.Active, &createdAt)
	if err != nil {
		return p, err
	}

	p.Province = province.String
	p.Municipality = municipality.String
	p.Type = modelo210.PropertyType(propType)
	p.DeclarationKind = modelo210.DeclarationKind(kind)
	p.PurchaseDate = parseDate(purchaseDate)
	p.PurchasePrice = parseMoney(sql.NullString{String: purchasePrice, Valid: true})
	p.CadastralTotal = parseMoney(cadTotal)
	p.CadastralLand = parseMoney(cadLand)
	p.CadastralConstruction = parseMoney(cadConstr)
	p.TotalAcquisitionValue = parseMoney(totalAcq)
	p.ConstructionPct = parseMoney(constrPct)
	p.AmortizableValue = parseMoney(amortizable)
	p.AnnualAmortization = parseMoney(annual)
	p.Notes = notes.String
	p.CreatedAt = parseStamp(createdAt)
	return p, nil
}

// =============================================================================
// CO-OWNERS
// =============================================================================

// CoOwner is a stored co-owner share, joined with the client's display name
// on read.
type CoOwner struct {
	ID         int64
	PropertyID int64
	ClientID   int64
	ClientName string
	Percentage decimal.Decimal
	StartDate  time.Time
	Active     bool
}

// Share converts the record into the engine's co-owner input.
func (c CoOwner) Share() modelo210.CoOwnerShare {
	return modelo210.CoOwnerShare{
		ClientID:   c.ClientID,
		Name:       c.ClientName,
		Percentage: c.Percentage,
	}
}

// CreateCoOwners adds co-owner shares to a property. The new shares plus the
// already active ones must not sum past 100 percent.
func (s *Store) CreateCoOwners(ctx context.Context, propertyID int64, shares []CoOwner) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var existing sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT SUM(CAST(percentage AS REAL)) FROM co_owners
		WHERE property_id = ? AND active = TRUE`, propertyID).Scan(&existing)
	if err != nil {
		return fmt.Errorf("failed to sum co-owner shares: %w", err)
	}

	total := parseMoney(existing)
	for _, share := range shares {
		total = total.Add(share.Percentage)
	}
	if total.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("shares sum to %s%%: %w", total.StringFixed(2), ErrOwnershipExceeded)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, share := range shares {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO co_owners (property_id, client_id, percentage, start_date, active)
			VALUES (?, ?, ?, ?, TRUE)`,
			propertyID, share.ClientID, share.Percentage.StringFixed(2),
			share.StartDate.Format(dateLayout),
		)
		if err != nil {
			return fmt.Errorf("failed to create co-owner: %w", err)
		}
	}

	return tx.Commit()
}

// ListCoOwners returns a property's active co-owner shares with client names.
func (s *Store) ListCoOwners(ctx context.Context, propertyID int64) ([]CoOwner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT co.id, co.property_id, co.client_id,
			c.name || ' ' || c.surname, co.percentage, co.start_date, co.active
		FROM co_owners co
		INNER JOIN clients c ON c.id = co.client_id
		WHERE co.property_id = ? AND co.active = TRUE
		ORDER BY co.id`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query co-owners: %w", err)
	}
	defer rows.Close()

	var owners []CoOwner
	for rows.Next() {
		var (
			o         CoOwner
			pct       string
			startDate string
		)
		if err := rows.Scan(&o.ID, &o.PropertyID, &o.ClientID, &o.ClientName,
			&pct, &startDate, &o.Active); err != nil {
			return nil, err
		}
		o.Percentage = parseMoney(sql.NullString{String: pct, Valid: true})
		o.StartDate = parseDate(startDate)
		owners = append(owners, o)
	}
	return owners, rows.Err()
}

// DeleteCoOwner soft-deletes one client's share on a property.
func (s *Store) DeleteCoOwner(ctx context.Context, propertyID, clientID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		UPDATE co_owners SET active = FALSE
		WHERE property_id = ? AND client_id = ?`, propertyID, clientID)
	return err
}
