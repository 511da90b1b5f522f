package modelo210_test

import (
	"testing"

	"github.com/earnmomey786-cloud/crm210/modelo210"
)

func resolve(income, deductible, amortization string, expenses []modelo210.Expense, year int) *modelo210.NegativeIncomeResult {
	return modelo210.ResolveNegativeIncome(modelo210.NegativeIncomeInput{
		PropertyID:         1,
		Year:               year,
		RentalIncome:       dec(income),
		DeductibleExpenses: dec(deductible),
		Amortization:       dec(amortization),
		Expenses:           expenses,
	})
}

// =============================================================================
// NEGATIVE-INCOME RESOLUTION
// =============================================================================

func TestResolveNegativeIncome_PositiveResult(t *testing.T) {
	// GIVEN: Income 12000, expenses 3000, amortization 2000
	// WHEN: Resolving
	// THEN: Taxable base 7000, tax 1330, no negative income

	result := resolve("12000.00", "3000.00", "2000.00", nil, 2024)

	if result.HasNegativeIncome {
		t.Error("expected no negative income")
	}
	if !result.TaxableBase.Equal(dec("7000.00")) {
		t.Errorf("expected base 7000, got %v", result.TaxableBase)
	}
	if !result.TaxDue.Equal(dec("1330.00")) {
		t.Errorf("expected tax 1330, got %v", result.TaxDue)
	}
}

func TestResolveNegativeIncome_FromRepairs(t *testing.T) {
	// GIVEN: Income 1000, deductible 1800 (repairs 1500, other 300)
	// WHEN: Resolving
	// THEN: Pre-limit -800; repairs cover it; negative income 800,
	//       concept repairs, base floored at 0

	expenses := []modelo210.Expense{
		expense(modelo210.ExpenseRepairs, "1500.00"),
		expense(modelo210.ExpenseLegalFees, "300.00"),
	}

	result := resolve("1000.00", "1800.00", "0", expenses, 2024)

	if !result.PreLimitResult.Equal(dec("-800.00")) {
		t.Fatalf("expected pre-limit -800, got %v", result.PreLimitResult)
	}
	if !result.HasNegativeIncome {
		t.Fatal("expected negative income")
	}
	if !result.NegativeIncome.Equal(dec("800.00")) {
		t.Errorf("expected negative income 800, got %v", result.NegativeIncome)
	}
	if result.Concept != modelo210.ConceptRepairs {
		t.Errorf("expected concept repairs, got %s", result.Concept)
	}
	if !result.TaxableBase.IsZero() {
		t.Errorf("expected base 0, got %v", result.TaxableBase)
	}
	if result.ExpiryYear != 2028 {
		t.Errorf("expected expiry year 2028, got %d", result.ExpiryYear)
	}
}

func TestResolveNegativeIncome_CappedAtQualifyingExpenses(t *testing.T) {
	// GIVEN: Loss of 2000 but only 500 of repairs
	// WHEN: Resolving
	// THEN: Compensable portion capped at 500; base still 0

	expenses := []modelo210.Expense{
		expense(modelo210.ExpenseRepairs, "500.00"),
		expense(modelo210.ExpenseCommunityFees, "2500.00"),
	}

	result := resolve("1000.00", "3000.00", "0", expenses, 2023)

	if !result.NegativeIncome.Equal(dec("500.00")) {
		t.Errorf("expected negative income capped at 500, got %v", result.NegativeIncome)
	}
	if !result.TaxableBase.IsZero() {
		t.Errorf("expected base 0, got %v", result.TaxableBase)
	}
}

func TestResolveNegativeIncome_OnlyOrdinaryExpenses_NoRecord(t *testing.T) {
	// GIVEN: A loss arising purely from non-qualifying expenses
	// WHEN: Resolving
	// THEN: Base floored at 0, but NO negative income is created

	expenses := []modelo210.Expense{
		expense(modelo210.ExpenseCommunityFees, "1200.00"),
		expense(modelo210.ExpenseInsurance, "400.00"),
	}

	result := resolve("1000.00", "1600.00", "0", expenses, 2024)

	if result.HasNegativeIncome {
		t.Error("expected no negative income from ordinary expenses")
	}
	if !result.TaxableBase.IsZero() {
		t.Errorf("expected base 0, got %v", result.TaxableBase)
	}
	if !result.TaxDue.IsZero() {
		t.Errorf("expected zero tax, got %v", result.TaxDue)
	}
}

func TestResolveNegativeIncome_ConceptTags(t *testing.T) {
	// Interest only → "intereses"; repairs and interest → "mixto".
	interestOnly := resolve("500.00", "1500.00", "0",
		[]modelo210.Expense{expense(modelo210.ExpenseMortgageInterest, "1500.00")}, 2024)
	if interestOnly.Concept != modelo210.ConceptInterest {
		t.Errorf("expected concept intereses, got %s", interestOnly.Concept)
	}

	mixed := resolve("500.00", "1500.00", "0", []modelo210.Expense{
		expense(modelo210.ExpenseMortgageInterest, "700.00"),
		expense(modelo210.ExpenseRepairs, "800.00"),
	}, 2024)
	if mixed.Concept != modelo210.ConceptMixed {
		t.Errorf("expected concept mixto, got %s", mixed.Concept)
	}
}

func TestResolveNegativeIncome_AmortizationCountsTowardLoss(t *testing.T) {
	// GIVEN: Income 2000, expenses 1500 (repairs), amortization 1000
	// WHEN: Resolving
	// THEN: Pre-limit -500, compensable via repairs

	expenses := []modelo210.Expense{expense(modelo210.ExpenseRepairs, "1500.00")}

	result := resolve("2000.00", "1500.00", "1000.00", expenses, 2024)

	if !result.PreLimitResult.Equal(dec("-500.00")) {
		t.Fatalf("expected pre-limit -500, got %v", result.PreLimitResult)
	}
	if !result.NegativeIncome.Equal(dec("500.00")) {
		t.Errorf("expected negative income 500, got %v", result.NegativeIncome)
	}
}

// =============================================================================
// COMPENSATION
// =============================================================================

func TestMaxCompensation(t *testing.T) {
	// The applicable amount is the lesser of pending and the target base.
	if got := modelo210.MaxCompensation(dec("800.00"), dec("1200.00")); !got.Equal(dec("800.00")) {
		t.Errorf("expected 800, got %v", got)
	}
	if got := modelo210.MaxCompensation(dec("800.00"), dec("300.00")); !got.Equal(dec("300.00")) {
		t.Errorf("expected 300, got %v", got)
	}
}

func TestNegativeIncomeRecord_DerivedFields(t *testing.T) {
	record := modelo210.NegativeIncomeRecord{
		OriginYear:  2022,
		Amount:      dec("800.00"),
		Compensated: dec("300.00"),
		Status:      modelo210.NegativePending,
	}

	if !record.Pending().Equal(dec("500.00")) {
		t.Errorf("expected pending 500, got %v", record.Pending())
	}
	if record.ExpiryYear() != 2026 {
		t.Errorf("expected expiry 2026, got %d", record.ExpiryYear())
	}
	if record.ExpiredBy(2026) {
		t.Error("record should still be usable in its expiry year")
	}
	if !record.ExpiredBy(2027) {
		t.Error("record should be expired after its expiry year")
	}
}
