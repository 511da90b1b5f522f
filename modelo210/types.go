/*
Package modelo210 implements the tax calculation engine for Spanish
non-resident property tax declarations (Modelo 210, IRNR).

PURPOSE:
  This package contains the pure, deterministic financial computations that
  turn property, ownership, contract and expense data into declared tax
  amounts: income imputation for non-rented properties, amortizable-value and
  depreciation calculation, rental-day proration across contracts, and the
  deductible-expense / negative-income rules of Spanish tax law.

KEY CONCEPTS IN THIS FILE (types.go):
  - Property, RentalContract, AcquisitionDocument, Expense, CoOwnerShare:
    plain input records supplied by the persistence layer
  - Typed enums whose string values are the persisted codes (Spanish,
    matching the Modelo 210 vocabulary used in declarations)
  - Decimal helpers: all money is decimal.Decimal, rounded half-up to
    2 decimals at each derived step

DESIGN PRINCIPLES:
  1. Purity: every calculator is a function of its explicit inputs; no
     storage, no I/O, no hidden clock except documented year defaults
  2. Precision: decimal arithmetic end to end, never float64 money
  3. Fail fast: invalid or inconsistent input is rejected before any
     computation; there is no partial result
  4. Auditability: every result carries a human-readable formula string

SEE ALSO:
  - rental.go: rented-day calculation and contract overlap detection
  - amortization.go: amortizable value and yearly proration
  - expenses.go: deductible-expense classification
  - negative.go: negative-income (renta negativa) resolution
  - imputation.go: Modelo 210 imputación for own-use properties
*/
package modelo210

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ENUMS - string values are the persisted codes
// =============================================================================

// DeclarationKind is the tax regime a property declares under.
type DeclarationKind string

const (
	DeclarationImputation DeclarationKind = "imputacion"
	DeclarationRental     DeclarationKind = "alquiler"
	DeclarationMixed      DeclarationKind = "mixta"
)

// ContractStatus is the lifecycle state of a rental contract. Cancelled
// contracts never participate in day calculations.
type ContractStatus string

const (
	ContractActive    ContractStatus = "activo"
	ContractFinished  ContractStatus = "finalizado"
	ContractCancelled ContractStatus = "cancelado"
	ContractRenewed   ContractStatus = "renovado"
)

// CountsTowardDays reports whether a contract in this status is included in
// rented-day calculations.
func (s ContractStatus) CountsTowardDays() bool {
	return s == ContractActive || s == ContractFinished || s == ContractRenewed
}

// DocumentType classifies an acquisition document.
type DocumentType string

const (
	DocPurchasePrice     DocumentType = "precio_compra"
	DocNotaryFees        DocumentType = "gastos_notario"
	DocRegistryFees      DocumentType = "gastos_registro"
	DocTransferTax       DocumentType = "itp"
	DocPurchaseVAT       DocumentType = "iva_compra"
	DocPurchaseAgency    DocumentType = "gastos_biuro_compra"
	DocRealEstateAgency  DocumentType = "gastos_agencia"
	DocImprovement       DocumentType = "mejora"
)

// DocumentTypes lists every acquisition document type in breakdown order.
var DocumentTypes = []DocumentType{
	DocPurchasePrice,
	DocNotaryFees,
	DocRegistryFees,
	DocTransferTax,
	DocPurchaseVAT,
	DocPurchaseAgency,
	DocRealEstateAgency,
	DocImprovement,
}

// ExpenseType classifies a property expense for deductibility.
type ExpenseType string

const (
	ExpensePropertyTax      ExpenseType = "ibi"
	ExpenseCommunityFees    ExpenseType = "comunidad"
	ExpenseInsurance        ExpenseType = "seguro"
	ExpenseMortgageInterest ExpenseType = "intereses_hipoteca"
	ExpenseUtilities        ExpenseType = "suministros"
	ExpenseUpkeep           ExpenseType = "conservacion"
	ExpenseRepairs          ExpenseType = "reparacion"
	ExpenseManagementFees   ExpenseType = "biuro"
	ExpenseAgencyFees       ExpenseType = "agencia"
	ExpenseLegalFees        ExpenseType = "abogado"
	ExpenseAdvertising      ExpenseType = "publicidad"
	ExpenseOther            ExpenseType = "otro"
)

// PropertyType is the physical kind of property being declared.
type PropertyType string

const (
	PropertyDwelling PropertyType = "vivienda"
	PropertyGarage   PropertyType = "garaje"
	PropertyPremises PropertyType = "local"
	PropertyOffice   PropertyType = "oficina"
	PropertyLand     PropertyType = "terreno"
	PropertyOtherUse PropertyType = "otro"
)

// NegativeIncomeConcept tags which qualifying expense categories produced a
// carry-forward eligible negative income.
type NegativeIncomeConcept string

const (
	ConceptRepairs  NegativeIncomeConcept = "reparaciones"
	ConceptInterest NegativeIncomeConcept = "intereses"
	ConceptMixed    NegativeIncomeConcept = "mixto"
)

// =============================================================================
// INPUT RECORDS - plain data supplied by the persistence layer
// =============================================================================

// Property carries the calculation-relevant fields of a property. Monetary
// fields that are unknown are zero; calculators validate what they need.
type Property struct {
	ID                   int64
	ClientID             int64
	CadastralReference   string
	Address              string
	Type                 PropertyType
	DeclarationKind      DeclarationKind
	PurchaseDate         time.Time
	PurchasePrice        decimal.Decimal
	CadastralTotal       decimal.Decimal
	CadastralLand        decimal.Decimal
	CadastralConstruction decimal.Decimal

	// Derived fields, populated by a prior CalcAmortizableValue run and
	// persisted back onto the property.
	TotalAcquisitionValue decimal.Decimal
	ConstructionPct       decimal.Decimal
	AmortizableValue      decimal.Decimal
	AnnualAmortization    decimal.Decimal
}

// RentalContract is one rental agreement on a property. Start and End are
// inclusive dates at day granularity.
type RentalContract struct {
	ID            int64
	PropertyID    int64
	Start         time.Time
	End           time.Time
	MonthlyRent   decimal.Decimal
	TenantName    string
	TenantSurname string
	Status        ContractStatus
}

// Tenant returns the tenant's display name.
func (c RentalContract) Tenant() string {
	if c.TenantSurname == "" {
		return c.TenantName
	}
	return c.TenantName + " " + c.TenantSurname
}

// AcquisitionDocument is one cost component of acquiring a property.
type AcquisitionDocument struct {
	ID         int64
	PropertyID int64
	Type       DocumentType
	Amount     decimal.Decimal
	Date       time.Time
	Validated  bool
}

// Expense is one registered property expense.
type Expense struct {
	ID          int64
	PropertyID  int64
	Type        ExpenseType
	Description string
	Amount      decimal.Decimal
	Date        time.Time
	Validated   bool
}

// CoOwnerShare is one co-owner's stake in a property.
type CoOwnerShare struct {
	ClientID   int64
	Name       string
	Percentage decimal.Decimal // 0 < pct <= 100
}

// =============================================================================
// DECIMAL HELPERS
// =============================================================================

var (
	hundred        = decimal.NewFromInt(100)
	fixedYearDays  = decimal.NewFromInt(365) // fixed denominator for proration
	amortRate      = decimal.NewFromFloat(0.03)
	avgDaysPerMonth = decimal.NewFromFloat(30.44)

	// TaxRate is the fixed non-resident EU rate (19%).
	TaxRate = decimal.NewFromFloat(0.19)
)

// Round2 rounds a monetary value half-up to 2 decimals. Derived values are
// rounded at each step, not deferred to the end, so that results match the
// audit formula strings exactly.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Round4 rounds a ratio (e.g. construction percentage) to 4 decimals.
func Round4(d decimal.Decimal) decimal.Decimal {
	return d.Round(4)
}

// MustDecimal parses a decimal string, returning zero on failure. Only for
// trusted constants and tests; boundary input goes through strict parsing.
func MustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// =============================================================================
// CALENDAR HELPERS
// =============================================================================

// YearBounds returns January 1 and December 31 of the year, UTC midnight.
func YearBounds(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	return start, end
}

// DaysInYear returns 365 or 366.
func DaysInYear(year int) int {
	start, end := YearBounds(year)
	return daysInclusive(start, end)
}

// daysInclusive counts days between two dates counting both endpoints.
func daysInclusive(from, to time.Time) int {
	return int(to.Sub(from).Hours()/24) + 1
}

func dayDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func maxDate(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
