/*
negative.go - Negative-income (renta negativa) resolution and carry-forward

When a property's rental result for a year is negative, only the portion
attributable to repairs and mortgage interest may be carried forward and
compensated against future declarations, for up to 4 years after the origin
year. Losses caused by any other expense type can only bring the taxable
base down to zero; they are never compensable. The taxable base itself is
floored at zero in every case.
*/
package modelo210

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// NegativeIncomeStatus is the lifecycle state of a carried-forward negative
// income record.
type NegativeIncomeStatus string

const (
	NegativePending     NegativeIncomeStatus = "pendiente"
	NegativeCompensated NegativeIncomeStatus = "compensada"
	NegativeExpired     NegativeIncomeStatus = "expirada"
)

// CarryForwardYears is how long a negative income stays compensable.
const CarryForwardYears = 4

// NegativeIncomeInput is the data needed to resolve a year's rental result.
type NegativeIncomeInput struct {
	PropertyID         int64
	Year               int
	RentalIncome       decimal.Decimal
	DeductibleExpenses decimal.Decimal
	Amortization       decimal.Decimal
	Expenses           []Expense       // raw list, reclassified here
	TaxRate            decimal.Decimal // zero means the default 19%
}

// NegativeIncomeResult is the resolved rental result for a year.
type NegativeIncomeResult struct {
	PropertyID         int64
	Year               int
	RentalIncome       decimal.Decimal
	DeductibleExpenses decimal.Decimal
	Amortization       decimal.Decimal

	// Expense totals by negative-income eligibility.
	Repairs          decimal.Decimal
	MortgageInterest decimal.Decimal
	OtherExpenses    decimal.Decimal

	PreLimitResult    decimal.Decimal
	HasNegativeIncome bool
	NegativeIncome    decimal.Decimal
	Concept           NegativeIncomeConcept
	ExpiryYear        int // origin year + 4 when a negative income exists

	TaxableBase decimal.Decimal
	TaxRate     decimal.Decimal
	TaxDue      decimal.Decimal
	Note        string
}

// ResolveNegativeIncome determines whether the net rental result for a year
// is negative and how much of it, if any, is carry-forward compensable.
//
// The compensable portion is capped at min(|pre-limit result|, repairs +
// mortgage interest). The taxable base is floored at zero regardless; a loss
// arising purely from non-qualifying expenses zeroes the base but creates no
// negative income record.
func ResolveNegativeIncome(input NegativeIncomeInput) *NegativeIncomeResult {
	rate := input.TaxRate
	if rate.IsZero() {
		rate = TaxRate
	}

	repairs := decimal.Zero
	interest := decimal.Zero
	other := decimal.Zero
	for _, e := range input.Expenses {
		switch e.Type {
		case ExpenseRepairs:
			repairs = repairs.Add(e.Amount)
		case ExpenseMortgageInterest:
			interest = interest.Add(e.Amount)
		default:
			other = other.Add(e.Amount)
		}
	}

	preLimit := input.RentalIncome.Sub(input.DeductibleExpenses).Sub(input.Amortization)

	result := &NegativeIncomeResult{
		PropertyID:         input.PropertyID,
		Year:               input.Year,
		RentalIncome:       input.RentalIncome,
		DeductibleExpenses: input.DeductibleExpenses,
		Amortization:       input.Amortization,
		Repairs:            repairs,
		MortgageInterest:   interest,
		OtherExpenses:      other,
		PreLimitResult:     Round2(preLimit),
		NegativeIncome:     decimal.Zero,
		TaxableBase:        decimal.Zero,
		TaxRate:            rate,
	}

	switch {
	case preLimit.IsNegative():
		qualifying := repairs.Add(interest)
		compensable := decimal.Min(preLimit.Abs(), qualifying)

		if compensable.IsPositive() {
			result.HasNegativeIncome = true
			result.NegativeIncome = Round2(compensable)
			result.ExpiryYear = input.Year + CarryForwardYears

			switch {
			case repairs.IsPositive() && interest.IsPositive():
				result.Concept = ConceptMixed
			case repairs.IsPositive():
				result.Concept = ConceptRepairs
			default:
				result.Concept = ConceptInterest
			}

			result.Note = fmt.Sprintf("Negative income of %s€, compensable until %d.",
				result.NegativeIncome.StringFixed(2), result.ExpiryYear)
		} else if qualifying.IsPositive() {
			result.Note = "Zero result. Ordinary expenses offset the income."
		} else {
			result.Note = "Zero result. Only ordinary expenses (no compensable negative income)."
		}

	default:
		result.TaxableBase = Round2(preLimit)
		result.Note = "Positive result. No negative income."
	}

	result.TaxDue = Round2(result.TaxableBase.Mul(rate))
	return result
}

// MaxCompensation returns how much of a pending negative income may be
// applied against a declaration's taxable base: the lesser of the two.
func MaxCompensation(pending, taxableBase decimal.Decimal) decimal.Decimal {
	return decimal.Min(pending, taxableBase)
}

// =============================================================================
// NEGATIVE INCOME RECORD - derived fields computed on read
// =============================================================================

// NegativeIncomeRecord is a carried-forward negative income awaiting
// compensation. Pending amount and expiry year are derivations, not stored
// state.
type NegativeIncomeRecord struct {
	ID          string
	ClientID    int64
	PropertyID  int64
	OriginYear  int
	Amount      decimal.Decimal
	Compensated decimal.Decimal
	Concept     NegativeIncomeConcept
	Status      NegativeIncomeStatus
}

// Pending returns the amount still available for compensation.
func (r NegativeIncomeRecord) Pending() decimal.Decimal {
	return r.Amount.Sub(r.Compensated)
}

// ExpiryYear returns the last fiscal year the record can be compensated in.
func (r NegativeIncomeRecord) ExpiryYear() int {
	return r.OriginYear + CarryForwardYears
}

// ExpiredBy reports whether the record is past its window in the given year.
func (r NegativeIncomeRecord) ExpiredBy(year int) bool {
	return year > r.ExpiryYear()
}
