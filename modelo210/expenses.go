/*
expenses.go - Deductible-expense classification for rented properties

Spanish tax rules for rental expense deduction:

  1. PROPORTIONAL expenses are prorated by rented days:
     IBI, community fees, insurance, mortgage interest, utilities, upkeep.
     Deductible = amount × (rented days / 365)
  2. FULLY DEDUCTIBLE expenses are deducted in full, no proration:
     repairs, management agency, real-estate agency, legal fees, advertising,
     other.
  3. Only repairs and mortgage interest may generate carry-forward
     compensable negative income (see negative.go); the rest can at most
     bring the taxable base to zero.

The classification is a pure function of the expense type and is fixed, not
configurable.
*/
package modelo210

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// IsProportional reports whether an expense type is prorated by rented days.
func IsProportional(t ExpenseType) bool {
	switch t {
	case ExpensePropertyTax, ExpenseCommunityFees, ExpenseInsurance,
		ExpenseMortgageInterest, ExpenseUtilities, ExpenseUpkeep:
		return true
	}
	return false
}

// GeneratesNegativeIncome reports whether an expense type may produce a
// carry-forward compensable negative income.
func GeneratesNegativeIncome(t ExpenseType) bool {
	return t == ExpenseRepairs || t == ExpenseMortgageInterest
}

// ExpenseTypeName returns a human-readable label for an expense type.
func ExpenseTypeName(t ExpenseType) string {
	switch t {
	case ExpensePropertyTax:
		return "IBI (property tax)"
	case ExpenseCommunityFees:
		return "Community fees"
	case ExpenseInsurance:
		return "Insurance"
	case ExpenseMortgageInterest:
		return "Mortgage interest"
	case ExpenseUtilities:
		return "Utilities"
	case ExpenseUpkeep:
		return "Upkeep"
	case ExpenseRepairs:
		return "Repairs"
	case ExpenseManagementFees:
		return "Management agency"
	case ExpenseAgencyFees:
		return "Real-estate agency"
	case ExpenseLegalFees:
		return "Legal services"
	case ExpenseAdvertising:
		return "Advertising"
	case ExpenseOther:
		return "Other expenses"
	}
	return string(t)
}

// ProportionalExpense is the total and prorated deductible amount for one
// proportional expense type.
type ProportionalExpense struct {
	Total      decimal.Decimal
	Deductible decimal.Decimal
}

// DeductibleExpensesResult is the per-year expense breakdown for a property.
type DeductibleExpensesResult struct {
	PropertyID   int64
	Year         int
	RentedDays   int
	UnrentedDays int

	Proportional         map[ExpenseType]ProportionalExpense
	ProportionalSubtotal decimal.Decimal
	FullyDeductible      map[ExpenseType]decimal.Decimal
	FullSubtotal         decimal.Decimal

	Total   decimal.Decimal
	Formula string
}

// CalcDeductibleExpenses classifies a property's expenses for a fiscal year
// into proportional and fully-deductible buckets and computes the total
// deductible amount. The proration denominator is a fixed 365 days.
func CalcDeductibleExpenses(expenses []Expense, rentedDays int, year int) *DeductibleExpensesResult {
	rented := decimal.NewFromInt(int64(rentedDays))

	proportional := make(map[ExpenseType]ProportionalExpense)
	full := make(map[ExpenseType]decimal.Decimal)
	propSubtotal := decimal.Zero
	fullSubtotal := decimal.Zero

	var propertyID int64
	for _, e := range expenses {
		if propertyID == 0 {
			propertyID = e.PropertyID
		}

		if IsProportional(e.Type) {
			deductible := e.Amount.Mul(rented).Div(fixedYearDays)
			entry := proportional[e.Type]
			entry.Total = entry.Total.Add(e.Amount)
			entry.Deductible = entry.Deductible.Add(deductible)
			proportional[e.Type] = entry
			propSubtotal = propSubtotal.Add(deductible)
		} else {
			full[e.Type] = full[e.Type].Add(e.Amount)
			fullSubtotal = fullSubtotal.Add(e.Amount)
		}
	}

	for t, entry := range proportional {
		entry.Total = Round2(entry.Total)
		entry.Deductible = Round2(entry.Deductible)
		proportional[t] = entry
	}
	for t, amount := range full {
		full[t] = Round2(amount)
	}

	propSubtotal = Round2(propSubtotal)
	fullSubtotal = Round2(fullSubtotal)
	total := Round2(propSubtotal.Add(fullSubtotal))

	formula := fmt.Sprintf("Proportional: %s€ × (%d/365) | 100%%: %s€",
		propSubtotal.StringFixed(2), rentedDays, fullSubtotal.StringFixed(2))

	return &DeductibleExpensesResult{
		PropertyID:           propertyID,
		Year:                 year,
		RentedDays:           rentedDays,
		UnrentedDays:         int(fixedYearDays.IntPart()) - rentedDays,
		Proportional:         proportional,
		ProportionalSubtotal: propSubtotal,
		FullyDeductible:      full,
		FullSubtotal:         fullSubtotal,
		Total:                total,
		Formula:              formula,
	}
}
