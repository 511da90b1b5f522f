package modelo210_test

import (
	"testing"

	"github.com/earnmomey786-cloud/crm210/modelo210"
)

func expense(t modelo210.ExpenseType, amount string) modelo210.Expense {
	return modelo210.Expense{PropertyID: 1, Type: t, Amount: dec(amount), Validated: true}
}

// =============================================================================
// CLASSIFICATION TABLE
// =============================================================================

func TestClassification_Proportional(t *testing.T) {
	proportional := []modelo210.ExpenseType{
		modelo210.ExpensePropertyTax,
		modelo210.ExpenseCommunityFees,
		modelo210.ExpenseInsurance,
		modelo210.ExpenseMortgageInterest,
		modelo210.ExpenseUtilities,
		modelo210.ExpenseUpkeep,
	}
	for _, typ := range proportional {
		if !modelo210.IsProportional(typ) {
			t.Errorf("%s should be proportional", typ)
		}
	}

	fully := []modelo210.ExpenseType{
		modelo210.ExpenseRepairs,
		modelo210.ExpenseManagementFees,
		modelo210.ExpenseAgencyFees,
		modelo210.ExpenseLegalFees,
		modelo210.ExpenseAdvertising,
		modelo210.ExpenseOther,
	}
	for _, typ := range fully {
		if modelo210.IsProportional(typ) {
			t.Errorf("%s should be fully deductible", typ)
		}
	}
}

func TestClassification_NegativeIncomeEligibility(t *testing.T) {
	// Only repairs and mortgage interest may generate negative income.
	for _, typ := range []modelo210.ExpenseType{modelo210.ExpenseRepairs, modelo210.ExpenseMortgageInterest} {
		if !modelo210.GeneratesNegativeIncome(typ) {
			t.Errorf("%s should generate negative income", typ)
		}
	}
	for _, typ := range []modelo210.ExpenseType{
		modelo210.ExpensePropertyTax, modelo210.ExpenseCommunityFees,
		modelo210.ExpenseInsurance, modelo210.ExpenseUtilities,
		modelo210.ExpenseUpkeep, modelo210.ExpenseManagementFees,
		modelo210.ExpenseAgencyFees, modelo210.ExpenseLegalFees,
		modelo210.ExpenseAdvertising, modelo210.ExpenseOther,
	} {
		if modelo210.GeneratesNegativeIncome(typ) {
			t.Errorf("%s should not generate negative income", typ)
		}
	}
}

// =============================================================================
// DEDUCTIBLE EXPENSES
// =============================================================================

func TestCalcDeductibleExpenses_ProportionalProrated(t *testing.T) {
	// GIVEN: IBI of 400 and a property rented 180 days
	// WHEN: Classifying expenses
	// THEN: Deductible = 400 x (180/365) = 197.26

	expenses := []modelo210.Expense{expense(modelo210.ExpensePropertyTax, "400.00")}

	result := modelo210.CalcDeductibleExpenses(expenses, 180, 2024)

	entry := result.Proportional[modelo210.ExpensePropertyTax]
	if !entry.Total.Equal(dec("400.00")) {
		t.Errorf("expected total 400, got %v", entry.Total)
	}
	if !entry.Deductible.Equal(dec("197.26")) {
		t.Errorf("expected deductible 197.26, got %v", entry.Deductible)
	}
	if !result.Total.Equal(dec("197.26")) {
		t.Errorf("expected grand total 197.26, got %v", result.Total)
	}
}

func TestCalcDeductibleExpenses_FullyDeductibleNotProrated(t *testing.T) {
	// GIVEN: Repairs of 1500 and a property rented only 90 days
	// WHEN: Classifying expenses
	// THEN: Full amount is deductible, no proration

	expenses := []modelo210.Expense{expense(modelo210.ExpenseRepairs, "1500.00")}

	result := modelo210.CalcDeductibleExpenses(expenses, 90, 2023)

	if !result.FullyDeductible[modelo210.ExpenseRepairs].Equal(dec("1500.00")) {
		t.Errorf("expected repairs 1500, got %v", result.FullyDeductible[modelo210.ExpenseRepairs])
	}
	if !result.FullSubtotal.Equal(dec("1500.00")) {
		t.Errorf("expected subtotal 1500, got %v", result.FullSubtotal)
	}
	if !result.Total.Equal(dec("1500.00")) {
		t.Errorf("expected total 1500, got %v", result.Total)
	}
}

func TestCalcDeductibleExpenses_MixedBucketsAndGrouping(t *testing.T) {
	// GIVEN: Two IBI receipts, community fees, repairs and legal fees,
	//        rented the full (fixed) year
	// WHEN: Classifying
	// THEN: Same-type expenses group; buckets subtotal separately

	expenses := []modelo210.Expense{
		expense(modelo210.ExpensePropertyTax, "200.00"),
		expense(modelo210.ExpensePropertyTax, "200.00"),
		expense(modelo210.ExpenseCommunityFees, "600.00"),
		expense(modelo210.ExpenseRepairs, "800.00"),
		expense(modelo210.ExpenseLegalFees, "250.00"),
	}

	result := modelo210.CalcDeductibleExpenses(expenses, 365, 2023)

	if !result.Proportional[modelo210.ExpensePropertyTax].Total.Equal(dec("400.00")) {
		t.Errorf("expected grouped IBI total 400, got %v", result.Proportional[modelo210.ExpensePropertyTax].Total)
	}
	// Full 365/365 proration: deductible == total
	if !result.ProportionalSubtotal.Equal(dec("1000.00")) {
		t.Errorf("expected proportional subtotal 1000, got %v", result.ProportionalSubtotal)
	}
	if !result.FullSubtotal.Equal(dec("1050.00")) {
		t.Errorf("expected fully-deductible subtotal 1050, got %v", result.FullSubtotal)
	}
	if !result.Total.Equal(dec("2050.00")) {
		t.Errorf("expected total 2050, got %v", result.Total)
	}
}

func TestCalcDeductibleExpenses_NoExpenses_ZeroResult(t *testing.T) {
	// Empty input is a valid zero result.
	result := modelo210.CalcDeductibleExpenses(nil, 100, 2024)

	if !result.Total.IsZero() {
		t.Errorf("expected zero total, got %v", result.Total)
	}
	if result.UnrentedDays != 265 {
		t.Errorf("expected 265 unrented days, got %d", result.UnrentedDays)
	}
}
