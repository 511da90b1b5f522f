/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

CONVENTIONS:
  - Monetary values travel as fixed 2-decimal strings ("1650.00"), never
    floats: the engine computes in decimal and the API must not lose that
  - Percentages travel as strings too (ownership "50.00", applied pct "1.1")
  - Dates are "2006-01-02", timestamps RFC3339
  - Enum fields carry the persisted Spanish codes (declaration kinds,
    contract statuses, document and expense types)

VALIDATION:
  Validation is done in handlers and the calculation engine, not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - modelo210/types.go: Engine input records and enum codes
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/earnmomey786-cloud/crm210/modelo210"
	"github.com/earnmomey786-cloud/crm210/store/sqlite"
)

// =============================================================================
// CLIENTS
// =============================================================================

// ClientDTO represents a client in API responses.
type ClientDTO struct {
	ID             int64  `json:"id"`
	NIE            string `json:"nie"`
	Name           string `json:"name"`
	Surname        string `json:"surname"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	ForeignCity    string `json:"foreign_city,omitempty"`
	ForeignAddress string `json:"foreign_address,omitempty"`
	Notes          string `json:"notes,omitempty"`
	Active         bool   `json:"active"`
	CreatedAt      string `json:"created_at,omitempty"`
}

// ClientRequest is the request body to create or update a client.
type ClientRequest struct {
	NIE            string `json:"nie"`
	Name           string `json:"name"`
	Surname        string `json:"surname"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	ForeignCity    string `json:"foreign_city"`
	ForeignAddress string `json:"foreign_address"`
	Notes          string `json:"notes"`
}

// =============================================================================
// PROPERTIES AND CO-OWNERS
// =============================================================================

// PropertyDTO represents a property in API responses. Derived amortization
// fields are empty strings until an amortizable-value calculation has been
// persisted for the property.
type PropertyDTO struct {
	ID                 int64  `json:"id"`
	ClientID           int64  `json:"client_id"`
	CadastralReference string `json:"cadastral_reference"`
	Address            string `json:"address"`
	Province           string `json:"province,omitempty"`
	Municipality       string `json:"municipality,omitempty"`
	Type               string `json:"type"`
	DeclarationKind    string `json:"declaration_kind"`
	PurchaseDate       string `json:"purchase_date,omitempty"`
	PurchasePrice      string `json:"purchase_price,omitempty"`

	CadastralTotal        string `json:"cadastral_total,omitempty"`
	CadastralLand         string `json:"cadastral_land,omitempty"`
	CadastralConstruction string `json:"cadastral_construction,omitempty"`

	TotalAcquisitionValue string `json:"total_acquisition_value,omitempty"`
	ConstructionPct       string `json:"construction_pct,omitempty"`
	AmortizableValue      string `json:"amortizable_value,omitempty"`
	AnnualAmortization    string `json:"annual_amortization,omitempty"`

	Notes     string `json:"notes,omitempty"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at,omitempty"`
}

// PropertyRequest is the request body to create or update a property.
type PropertyRequest struct {
	CadastralReference string `json:"cadastral_reference"`
	Address            string `json:"address"`
	Province           string `json:"province"`
	Municipality       string `json:"municipality"`
	Type               string `json:"type"`
	DeclarationKind    string `json:"declaration_kind"`
	PurchaseDate       string `json:"purchase_date"`
	PurchasePrice      string `json:"purchase_price"`

	CadastralTotal        string `json:"cadastral_total"`
	CadastralLand         string `json:"cadastral_land"`
	CadastralConstruction string `json:"cadastral_construction"`

	Notes string `json:"notes"`
}

// CoOwnerDTO represents one co-owner share on a property.
type CoOwnerDTO struct {
	ID         int64  `json:"id"`
	PropertyID int64  `json:"property_id"`
	ClientID   int64  `json:"client_id"`
	ClientName string `json:"client_name,omitempty"`
	Percentage string `json:"percentage"`
	StartDate  string `json:"start_date,omitempty"`
}

// CoOwnerShareRequest is one share in a co-owner registration.
type CoOwnerShareRequest struct {
	ClientID   int64  `json:"client_id"`
	Percentage string `json:"percentage"`
	StartDate  string `json:"start_date"`
}

// CreateCoOwnersRequest registers one or more co-owner shares at once so the
// 100% ceiling is validated over the whole batch.
type CreateCoOwnersRequest struct {
	Shares []CoOwnerShareRequest `json:"shares"`
}

// =============================================================================
// CONTRACTS AND PAYMENTS
// =============================================================================

// ContractDTO represents a rental contract in API responses.
type ContractDTO struct {
	ID            int64  `json:"id"`
	PropertyID    int64  `json:"property_id"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	MonthlyRent   string `json:"monthly_rent"`
	TenantName    string `json:"tenant_name"`
	TenantSurname string `json:"tenant_surname,omitempty"`
	Status        string `json:"status"`
	CancelReason  string `json:"cancel_reason,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// ContractRequest is the request body to create or update a contract.
type ContractRequest struct {
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	MonthlyRent   string `json:"monthly_rent"`
	TenantName    string `json:"tenant_name"`
	TenantSurname string `json:"tenant_surname"`
	Status        string `json:"status"`
}

// CancelContractRequest carries the reason a contract is cancelled.
type CancelContractRequest struct {
	Reason string `json:"reason"`
}

// PaymentDTO represents one rent payment.
type PaymentDTO struct {
	ID          int64  `json:"id"`
	ContractID  int64  `json:"contract_id"`
	Amount      string `json:"amount"`
	PaymentDate string `json:"payment_date"`
	FiscalYear  int    `json:"fiscal_year"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// PaymentRequest is the request body to register a rent payment. FiscalYear
// is the year the rent accrues to, which can differ from the payment date.
type PaymentRequest struct {
	Amount      string `json:"amount"`
	PaymentDate string `json:"payment_date"`
	FiscalYear  int    `json:"fiscal_year"`
}

// =============================================================================
// DOCUMENTS AND EXPENSES
// =============================================================================

// DocumentDTO represents an acquisition document.
type DocumentDTO struct {
	ID          int64  `json:"id"`
	PropertyID  int64  `json:"property_id"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Date        string `json:"date,omitempty"`
	Validated   bool   `json:"validated"`
	ValidatedAt string `json:"validated_at,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// DocumentRequest is one document in a batch registration or an update.
type DocumentRequest struct {
	Type   string `json:"type"`
	Amount string `json:"amount"`
	Date   string `json:"date"`
}

// CreateDocumentsRequest registers a batch of acquisition documents.
type CreateDocumentsRequest struct {
	Documents []DocumentRequest `json:"documents"`
}

// ExpenseDTO represents one property expense.
type ExpenseDTO struct {
	ID          int64  `json:"id"`
	PropertyID  int64  `json:"property_id"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Validated   bool   `json:"validated"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// ExpenseRequest is the request body to register an expense.
type ExpenseRequest struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Validated   bool   `json:"validated"`
}

// =============================================================================
// CALCULATIONS
// =============================================================================

// RentalDaysDTO is the rented-day breakdown for a property and year.
type RentalDaysDTO struct {
	PropertyID        int64             `json:"property_id"`
	Year              int               `json:"year"`
	YearDays          int               `json:"year_days"`
	Contracts         []ContractDaysDTO `json:"contracts"`
	ContractCount     int               `json:"contract_count"`
	TotalRentedDays   int               `json:"total_rented_days"`
	TotalUnrentedDays int               `json:"total_unrented_days"`
	OccupancyPct      string            `json:"occupancy_pct"`
	EstimatedIncome   string            `json:"estimated_income"`
}

// ContractDaysDTO is one contract's contribution to the rented days.
type ContractDaysDTO struct {
	ContractID      int64  `json:"contract_id"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	EffectiveStart  string `json:"effective_start"`
	EffectiveEnd    string `json:"effective_end"`
	Days            int    `json:"days"`
	MonthlyRent     string `json:"monthly_rent"`
	EstimatedIncome string `json:"estimated_income"`
	Tenant          string `json:"tenant"`
	Status          string `json:"status"`
}

// AmortizableValueDTO is the amortizable-value calculation result. The same
// values are persisted onto the property when the calculation succeeds.
type AmortizableValueDTO struct {
	PropertyID            int64             `json:"property_id"`
	Address               string            `json:"address"`
	TotalAcquisitionValue string            `json:"total_acquisition_value"`
	Breakdown             map[string]string `json:"breakdown"`
	CadastralTotal        string            `json:"cadastral_total"`
	CadastralLand         string            `json:"cadastral_land"`
	CadastralConstruction string            `json:"cadastral_construction"`
	ConstructionPct       string            `json:"construction_pct"`
	AmortizableValue      string            `json:"amortizable_value"`
	AnnualAmortization    string            `json:"annual_amortization"`
	Formula               string            `json:"formula"`
}

// YearRequest carries the fiscal year for a calculation endpoint.
type YearRequest struct {
	Year int `json:"year"`
}

// AmortizationDTO is the prorated amortization for a year, split by owner.
type AmortizationDTO struct {
	PropertyID           int64                    `json:"property_id"`
	Address              string                   `json:"address"`
	Year                 int                      `json:"year"`
	RentedDays           int                      `json:"rented_days"`
	UnrentedDays         int                      `json:"unrented_days"`
	AnnualAmortization   string                   `json:"annual_amortization"`
	ProratedAmortization string                   `json:"prorated_amortization"`
	CoOwners             []CoOwnerAmortizationDTO `json:"co_owners"`
	Formula              string                   `json:"formula"`
}

// CoOwnerAmortizationDTO is one owner's share of the prorated amortization.
type CoOwnerAmortizationDTO struct {
	ClientID     int64  `json:"client_id"`
	Name         string `json:"name"`
	Percentage   string `json:"percentage"`
	Amortization string `json:"amortization"`
}

// DeductibleExpensesDTO is the deductible-expense classification for a year.
type DeductibleExpensesDTO struct {
	PropertyID   int64 `json:"property_id"`
	Year         int   `json:"year"`
	RentedDays   int   `json:"rented_days"`
	UnrentedDays int   `json:"unrented_days"`

	Proportional         map[string]ProportionalExpenseDTO `json:"proportional"`
	ProportionalSubtotal string                            `json:"proportional_subtotal"`
	FullyDeductible      map[string]string                 `json:"fully_deductible"`
	FullSubtotal         string                            `json:"full_subtotal"`

	Total   string `json:"total"`
	Formula string `json:"formula"`
}

// ProportionalExpenseDTO is one expense type prorated by rented days.
type ProportionalExpenseDTO struct {
	Total      string `json:"total"`
	Deductible string `json:"deductible"`
}

// RentalResultDTO is the persisted outcome of a rental-year calculation:
// the net result, the declaration written for it and, when the year closed
// negative, the carry-forward record created.
type RentalResultDTO struct {
	PropertyID         int64  `json:"property_id"`
	Year               int    `json:"year"`
	RentalIncome       string `json:"rental_income"`
	DeductibleExpenses string `json:"deductible_expenses"`
	Amortization       string `json:"amortization"`

	Repairs          string `json:"repairs"`
	MortgageInterest string `json:"mortgage_interest"`
	OtherExpenses    string `json:"other_expenses"`

	PreLimitResult    string `json:"pre_limit_result"`
	HasNegativeIncome bool   `json:"has_negative_income"`
	NegativeIncome    string `json:"negative_income,omitempty"`
	Concept           string `json:"concept,omitempty"`
	ExpiryYear        int    `json:"expiry_year,omitempty"`

	TaxableBase string `json:"taxable_base"`
	TaxRatePct  string `json:"tax_rate_pct"`
	TaxDue      string `json:"tax_due"`
	Note        string `json:"note,omitempty"`

	DeclarationID    string `json:"declaration_id"`
	NegativeIncomeID string `json:"negative_income_id,omitempty"`
}

// ImputationRequest is the request body for an imputation calculation.
// AppliedPct overrides the purchase-age heuristic when set; it must be
// "1.1" or "2.0".
type ImputationRequest struct {
	Year       int    `json:"year"`
	Days       int    `json:"days,omitempty"`
	AppliedPct string `json:"applied_pct,omitempty"`
}

// ImputationDTO is one owner's imputed-income calculation.
type ImputationDTO struct {
	PropertyID int64 `json:"property_id"`
	ClientID   int64 `json:"client_id,omitempty"`
	Year       int   `json:"year"`
	Days       int   `json:"days"`

	CadastralTotal     string `json:"cadastral_total"`
	ImputationPct      string `json:"imputation_pct"`
	OwnershipPct       string `json:"ownership_pct"`
	FullImputedIncome  string `json:"full_imputed_income"`
	OwnerImputedIncome string `json:"owner_imputed_income"`
	TaxableBase        string `json:"taxable_base"`
	TaxRatePct         string `json:"tax_rate_pct"`
	TaxDue             string `json:"tax_due"`
	Formula            string `json:"formula"`

	DeclarationID string `json:"declaration_id,omitempty"`
}

// ImputationCalculateDTO is the persisted result of an imputation run: one
// declaration per owner, plus the aggregate tax due.
type ImputationCalculateDTO struct {
	PropertyID   int64           `json:"property_id"`
	Year         int             `json:"year"`
	Declarations []ImputationDTO `json:"declarations"`
	TotalTaxDue  string          `json:"total_tax_due"`
}

// =============================================================================
// DECLARATIONS AND NEGATIVE INCOME
// =============================================================================

// DeclarationDTO represents a stored declaration. Monetary fields that do
// not apply to the declaration kind are omitted.
type DeclarationDTO struct {
	ID         string `json:"id"`
	PropertyID int64  `json:"property_id"`
	ClientID   int64  `json:"client_id"`
	Year       int    `json:"year"`
	Kind       string `json:"kind"`

	PropertyAddress string `json:"property_address,omitempty"`
	DeclaredDays    int    `json:"declared_days"`

	CadastralBase string `json:"cadastral_base,omitempty"`
	AppliedPct    string `json:"applied_pct,omitempty"`
	ImputedIncome string `json:"imputed_income,omitempty"`

	RentalIncome       string `json:"rental_income,omitempty"`
	DeductibleExpenses string `json:"deductible_expenses,omitempty"`
	Amortization       string `json:"amortization,omitempty"`

	TaxableBase  string `json:"taxable_base"`
	TaxRatePct   string `json:"tax_rate_pct"`
	TaxDue       string `json:"tax_due"`
	OwnershipPct string `json:"ownership_pct"`
	Formula      string `json:"formula,omitempty"`
	Status       string `json:"status"`
	CalculatedAt string `json:"calculated_at,omitempty"`
}

// ClientDeclarationsDTO lists a client's declarations with the total tax
// due across them.
type ClientDeclarationsDTO struct {
	ClientID     int64            `json:"client_id"`
	Year         int              `json:"year,omitempty"`
	Declarations []DeclarationDTO `json:"declarations"`
	TotalTaxDue  string           `json:"total_tax_due"`
}

// NegativeIncomeDTO represents a carry-forward negative income record.
type NegativeIncomeDTO struct {
	ID          string `json:"id"`
	ClientID    int64  `json:"client_id"`
	PropertyID  int64  `json:"property_id"`
	OriginYear  int    `json:"origin_year"`
	Amount      string `json:"amount"`
	Compensated string `json:"compensated"`
	Pending     string `json:"pending"`
	Concept     string `json:"concept"`
	Status      string `json:"status"`
	ExpiryYear  int    `json:"expiry_year"`
}

// CompensateRequest applies part of a pending negative income against a
// declaration's taxable base.
type CompensateRequest struct {
	DeclarationID string `json:"declaration_id"`
	Year          int    `json:"year"`
	Amount        string `json:"amount,omitempty"`
}

// CompensationDTO is the outcome of a compensation: the row recorded and
// the record's state after it.
type CompensationDTO struct {
	ID               string `json:"id"`
	NegativeIncomeID string `json:"negative_income_id"`
	DeclarationID    string `json:"declaration_id"`
	Year             int    `json:"year"`
	Amount           string `json:"amount"`
	RemainingPending string `json:"remaining_pending"`
	Status           string `json:"status"`
	CreatedAt        string `json:"created_at,omitempty"`
}

// ExpiryResultDTO reports a negative-income expiry run.
type ExpiryResultDTO struct {
	Year    int   `json:"year"`
	Expired int64 `json:"expired"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toClientDTO(c sqlite.Client) ClientDTO {
	return ClientDTO{
		ID:             c.ID,
		NIE:            c.NIE,
		Name:           c.Name,
		Surname:        c.Surname,
		Email:          c.Email,
		Phone:          c.Phone,
		ForeignCity:    c.ForeignCity,
		ForeignAddress: c.ForeignAddress,
		Notes:          c.Notes,
		Active:         c.Active,
		CreatedAt:      stamp(c.CreatedAt),
	}
}

func toClientDTOs(clients []sqlite.Client) []ClientDTO {
	dtos := make([]ClientDTO, len(clients))
	for i, c := range clients {
		dtos[i] = toClientDTO(c)
	}
	return dtos
}

func toPropertyDTO(p sqlite.Property) PropertyDTO {
	return PropertyDTO{
		ID:                 p.ID,
		ClientID:           p.ClientID,
		CadastralReference: p.CadastralReference,
		Address:            p.Address,
		Province:           p.Province,
		Municipality:       p.Municipality,
		Type:               string(p.Type),
		DeclarationKind:    string(p.DeclarationKind),
		PurchaseDate:       day(p.PurchaseDate),
		PurchasePrice:      moneyStr(p.PurchasePrice),

		CadastralTotal:        moneyStr(p.CadastralTotal),
		CadastralLand:         moneyStr(p.CadastralLand),
		CadastralConstruction: moneyStr(p.CadastralConstruction),

		TotalAcquisitionValue: moneyStr(p.TotalAcquisitionValue),
		ConstructionPct:       pctStr(p.ConstructionPct, 4),
		AmortizableValue:      moneyStr(p.AmortizableValue),
		AnnualAmortization:    moneyStr(p.AnnualAmortization),

		Notes:     p.Notes,
		Active:    p.Active,
		CreatedAt: stamp(p.CreatedAt),
	}
}

func toPropertyDTOs(props []sqlite.Property) []PropertyDTO {
	dtos := make([]PropertyDTO, len(props))
	for i, p := range props {
		dtos[i] = toPropertyDTO(p)
	}
	return dtos
}

func toCoOwnerDTO(o sqlite.CoOwner) CoOwnerDTO {
	return CoOwnerDTO{
		ID:         o.ID,
		PropertyID: o.PropertyID,
		ClientID:   o.ClientID,
		ClientName: o.ClientName,
		Percentage: o.Percentage.StringFixed(2),
		StartDate:  day(o.StartDate),
	}
}

func toContractDTO(c sqlite.Contract) ContractDTO {
	return ContractDTO{
		ID:            c.ID,
		PropertyID:    c.PropertyID,
		StartDate:     day(c.Start),
		EndDate:       day(c.End),
		MonthlyRent:   c.MonthlyRent.StringFixed(2),
		TenantName:    c.TenantName,
		TenantSurname: c.TenantSurname,
		Status:        string(c.Status),
		CancelReason:  c.CancelReason,
		CreatedAt:     stamp(c.CreatedAt),
	}
}

func toPaymentDTO(p sqlite.Payment) PaymentDTO {
	return PaymentDTO{
		ID:          p.ID,
		ContractID:  p.ContractID,
		Amount:      p.Amount.StringFixed(2),
		PaymentDate: day(p.PaymentDate),
		FiscalYear:  p.FiscalYear,
		CreatedAt:   stamp(p.CreatedAt),
	}
}

func toDocumentDTO(d sqlite.Document) DocumentDTO {
	dto := DocumentDTO{
		ID:         d.ID,
		PropertyID: d.PropertyID,
		Type:       string(d.Type),
		Amount:     d.Amount.StringFixed(2),
		Date:       day(d.Date),
		Validated:  d.Validated,
		CreatedAt:  stamp(d.CreatedAt),
	}
	if d.ValidatedAt != nil {
		dto.ValidatedAt = stamp(*d.ValidatedAt)
	}
	return dto
}

func toExpenseDTO(e sqlite.ExpenseRecord) ExpenseDTO {
	return ExpenseDTO{
		ID:          e.ID,
		PropertyID:  e.PropertyID,
		Type:        string(e.Type),
		Description: e.Description,
		Amount:      e.Amount.StringFixed(2),
		Date:        day(e.Date),
		Validated:   e.Validated,
		CreatedAt:   stamp(e.CreatedAt),
	}
}

func toRentalDaysDTO(r *modelo210.RentalDaysResult) RentalDaysDTO {
	contracts := make([]ContractDaysDTO, len(r.Contracts))
	for i, c := range r.Contracts {
		contracts[i] = ContractDaysDTO{
			ContractID:      c.ContractID,
			StartDate:       day(c.Start),
			EndDate:         day(c.End),
			EffectiveStart:  day(c.EffectiveStart),
			EffectiveEnd:    day(c.EffectiveEnd),
			Days:            c.Days,
			MonthlyRent:     c.MonthlyRent.StringFixed(2),
			EstimatedIncome: c.EstimatedIncome.StringFixed(2),
			Tenant:          c.Tenant,
			Status:          string(c.Status),
		}
	}
	return RentalDaysDTO{
		PropertyID:        r.PropertyID,
		Year:              r.Year,
		YearDays:          r.YearDays,
		Contracts:         contracts,
		ContractCount:     r.ContractCount,
		TotalRentedDays:   r.TotalRentedDays,
		TotalUnrentedDays: r.TotalUnrentedDays,
		OccupancyPct:      r.OccupancyPct.StringFixed(2),
		EstimatedIncome:   r.EstimatedIncome.StringFixed(2),
	}
}

func toAmortizableValueDTO(r *modelo210.AmortizableValueResult) AmortizableValueDTO {
	breakdown := make(map[string]string, len(r.Breakdown))
	for docType, amount := range r.Breakdown {
		breakdown[string(docType)] = amount.StringFixed(2)
	}
	return AmortizableValueDTO{
		PropertyID:            r.PropertyID,
		Address:               r.Address,
		TotalAcquisitionValue: r.TotalAcquisitionValue.StringFixed(2),
		Breakdown:             breakdown,
		CadastralTotal:        r.Cadastral.Total.StringFixed(2),
		CadastralLand:         r.Cadastral.Land.StringFixed(2),
		CadastralConstruction: r.Cadastral.Construction.StringFixed(2),
		ConstructionPct:       r.Cadastral.ConstructionPct.StringFixed(4),
		AmortizableValue:      r.AmortizableValue.StringFixed(2),
		AnnualAmortization:    r.AnnualAmortization.StringFixed(2),
		Formula:               r.Formula,
	}
}

func toAmortizationDTO(r *modelo210.AmortizationResult) AmortizationDTO {
	coOwners := make([]CoOwnerAmortizationDTO, len(r.CoOwners))
	for i, o := range r.CoOwners {
		coOwners[i] = CoOwnerAmortizationDTO{
			ClientID:     o.ClientID,
			Name:         o.Name,
			Percentage:   o.Percentage.StringFixed(2),
			Amortization: o.Amortization.StringFixed(2),
		}
	}
	return AmortizationDTO{
		PropertyID:           r.PropertyID,
		Address:              r.Address,
		Year:                 r.Year,
		RentedDays:           r.RentedDays,
		UnrentedDays:         r.UnrentedDays,
		AnnualAmortization:   r.AnnualAmortization.StringFixed(2),
		ProratedAmortization: r.ProratedAmortization.StringFixed(2),
		CoOwners:             coOwners,
		Formula:              r.Formula,
	}
}

func toDeductibleExpensesDTO(r *modelo210.DeductibleExpensesResult) DeductibleExpensesDTO {
	proportional := make(map[string]ProportionalExpenseDTO, len(r.Proportional))
	for expType, e := range r.Proportional {
		proportional[string(expType)] = ProportionalExpenseDTO{
			Total:      e.Total.StringFixed(2),
			Deductible: e.Deductible.StringFixed(2),
		}
	}
	full := make(map[string]string, len(r.FullyDeductible))
	for expType, amount := range r.FullyDeductible {
		full[string(expType)] = amount.StringFixed(2)
	}
	return DeductibleExpensesDTO{
		PropertyID:           r.PropertyID,
		Year:                 r.Year,
		RentedDays:           r.RentedDays,
		UnrentedDays:         r.UnrentedDays,
		Proportional:         proportional,
		ProportionalSubtotal: r.ProportionalSubtotal.StringFixed(2),
		FullyDeductible:      full,
		FullSubtotal:         r.FullSubtotal.StringFixed(2),
		Total:                r.Total.StringFixed(2),
		Formula:              r.Formula,
	}
}

func toImputationDTO(propertyID, clientID int64, r *modelo210.ImputationResult) ImputationDTO {
	return ImputationDTO{
		PropertyID:         propertyID,
		ClientID:           clientID,
		Year:               r.Year,
		Days:               r.Days,
		CadastralTotal:     r.CadastralTotal.StringFixed(2),
		ImputationPct:      r.ImputationPct.String(),
		OwnershipPct:       r.OwnershipPct.StringFixed(2),
		FullImputedIncome:  r.FullImputedIncome.StringFixed(2),
		OwnerImputedIncome: r.OwnerImputedIncome.StringFixed(2),
		TaxableBase:        r.TaxableBase.StringFixed(2),
		TaxRatePct:         r.TaxRatePct.StringFixed(0),
		TaxDue:             r.TaxDue.StringFixed(2),
		Formula:            r.Formula,
	}
}

func toDeclarationDTO(d sqlite.Declaration, address string) DeclarationDTO {
	return DeclarationDTO{
		ID:         d.ID,
		PropertyID: d.PropertyID,
		ClientID:   d.ClientID,
		Year:       d.Year,
		Kind:       string(d.Kind),

		PropertyAddress: address,
		DeclaredDays:    d.DeclaredDays,

		CadastralBase: moneyStr(d.CadastralBase),
		AppliedPct:    pctStr(d.AppliedPct, 2),
		ImputedIncome: moneyStr(d.ImputedIncome),

		RentalIncome:       moneyStr(d.RentalIncome),
		DeductibleExpenses: moneyStr(d.DeductibleExpenses),
		Amortization:       moneyStr(d.Amortization),

		TaxableBase:  d.TaxableBase.StringFixed(2),
		TaxRatePct:   d.TaxRatePct.StringFixed(0),
		TaxDue:       d.TaxDue.StringFixed(2),
		OwnershipPct: d.OwnershipPct.StringFixed(2),
		Formula:      d.Formula,
		Status:       d.Status,
		CalculatedAt: stamp(d.CalculatedAt),
	}
}

func toNegativeIncomeDTO(r modelo210.NegativeIncomeRecord) NegativeIncomeDTO {
	return NegativeIncomeDTO{
		ID:          r.ID,
		ClientID:    r.ClientID,
		PropertyID:  r.PropertyID,
		OriginYear:  r.OriginYear,
		Amount:      r.Amount.StringFixed(2),
		Compensated: r.Compensated.StringFixed(2),
		Pending:     r.Pending().StringFixed(2),
		Concept:     string(r.Concept),
		Status:      string(r.Status),
		ExpiryYear:  r.ExpiryYear(),
	}
}

// day formats a date column value, empty for the zero time.
func day(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// stamp formats a timestamp, empty for the zero time.
func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// moneyStr formats a monetary value, empty for zero so optional fields can
// be omitted from JSON.
func moneyStr(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.StringFixed(2)
}

// pctStr formats a percentage or ratio with the given precision, empty for
// zero.
func pctStr(d decimal.Decimal, places int32) string {
	if d.IsZero() {
		return ""
	}
	return d.StringFixed(places)
}
