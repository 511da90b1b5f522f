package modelo210_test

import (
	"errors"
	"testing"
	"time"

	"github.com/earnmomey786-cloud/crm210/modelo210"
	"github.com/shopspring/decimal"
)

func pinnedNow() time.Time {
	return time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// STANDARD SCENARIOS
// =============================================================================

func TestCalcImputation_StandardCase(t *testing.T) {
	// GIVEN: Cadastral 150000, bought 2020-01-15 (age < 10 → 1.1%),
	//        sole owner, full year 2024
	// WHEN: Calculating the imputación
	// THEN: Income 150000 x 1.1% x (365/365) = 1650.00; tax 313.50

	result, err := modelo210.CalcImputation(modelo210.ImputationInput{
		CadastralTotal: "150000.00",
		PurchaseDate:   "2020-01-15",
		PropertyType:   modelo210.PropertyDwelling,
		Year:           2024,
		Now:            pinnedNow(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.ImputationPct.Equal(dec("1.1")) {
		t.Errorf("expected 1.1%%, got %v", result.ImputationPct)
	}
	if !result.OwnerImputedIncome.Equal(dec("1650.00")) {
		t.Errorf("expected imputed income 1650.00, got %v", result.OwnerImputedIncome)
	}
	if !result.TaxableBase.Equal(dec("1650.00")) {
		t.Errorf("expected base 1650.00, got %v", result.TaxableBase)
	}
	if !result.TaxDue.Equal(dec("313.50")) {
		t.Errorf("expected tax 313.50, got %v", result.TaxDue)
	}
	if result.Days != 365 || result.Year != 2024 {
		t.Errorf("expected defaults days=365 year=2024, got %d/%d", result.Days, result.Year)
	}
}

func TestCalcImputation_OldCadastral_PartialDays_CoOwner(t *testing.T) {
	// GIVEN: Cadastral 200000, bought 2005-01-01 (age > 10 → 2.0%),
	//        50% owner, 180 days
	// WHEN: Calculating
	// THEN: Full income 200000 x 2% x (180/365) = 1972.60;
	//       owner share 986.30; tax 187.40

	ownership := dec("50")
	result, err := modelo210.CalcImputation(modelo210.ImputationInput{
		CadastralTotal: "200000.00",
		PurchaseDate:   "2005-01-01",
		PropertyType:   modelo210.PropertyDwelling,
		OwnershipPct:   ownership,
		Year:           2024,
		Days:           180,
		Now:            pinnedNow(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.ImputationPct.Equal(dec("2")) {
		t.Errorf("expected 2.0%%, got %v", result.ImputationPct)
	}
	if !result.FullImputedIncome.Equal(dec("1972.60")) {
		t.Errorf("expected full income 1972.60, got %v", result.FullImputedIncome)
	}
	if !result.OwnerImputedIncome.Equal(dec("986.30")) {
		t.Errorf("expected owner income 986.30, got %v", result.OwnerImputedIncome)
	}
	if !result.TaxDue.Equal(dec("187.40")) {
		t.Errorf("expected tax 187.40, got %v", result.TaxDue)
	}
}

func TestCalcImputation_ManualPercentage(t *testing.T) {
	// GIVEN: A manually applied 2.0% on a recent purchase
	// WHEN: Calculating
	// THEN: Manual percentage wins over the age heuristic

	applied := dec("2.0")
	result, err := modelo210.CalcImputation(modelo210.ImputationInput{
		CadastralTotal: "100000.00",
		PurchaseDate:   "2022-03-01",
		PropertyType:   modelo210.PropertyDwelling,
		Year:           2024,
		AppliedPct:     &applied,
		Now:            pinnedNow(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.ImputationPct.Equal(dec("2.0")) {
		t.Errorf("expected manual 2.0%%, got %v", result.ImputationPct)
	}
	// 100000 x 2% = 2000; tax 380
	if !result.TaxDue.Equal(dec("380.00")) {
		t.Errorf("expected tax 380.00, got %v", result.TaxDue)
	}
}

func TestCalcImputation_AgeBoundary(t *testing.T) {
	// Strictly under 10 years → 1.1%; at/over 10 years → 2.0%.
	just, err := modelo210.CalcImputation(modelo210.ImputationInput{
		CadastralTotal: "100000.00",
		PurchaseDate:   "2014-07-02", // one day under 10 x 365.25-day years
		Year:           2024,
		Now:            pinnedNow(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !just.ImputationPct.Equal(dec("1.1")) {
		t.Errorf("expected 1.1%% just under boundary, got %v", just.ImputationPct)
	}

	over, err := modelo210.CalcImputation(modelo210.ImputationInput{
		CadastralTotal: "100000.00",
		PurchaseDate:   "2014-06-20",
		Year:           2024,
		Now:            pinnedNow(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !over.ImputationPct.Equal(dec("2")) {
		t.Errorf("expected 2.0%% past boundary, got %v", over.ImputationPct)
	}
}

func TestCalcImputation_FormulaString(t *testing.T) {
	result, err := modelo210.CalcImputation(modelo210.ImputationInput{
		CadastralTotal: "150000.00",
		PurchaseDate:   "2020-01-15",
		Year:           2024,
		Now:            pinnedNow(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "150.000,00 € × 1.1% × (365/365) × 100.00% = 1.650,00 € → 1.650,00 € × 19% = 313,50 €"
	if result.Formula != want {
		t.Errorf("formula mismatch:\n got:  %s\n want: %s", result.Formula, want)
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestCalcImputation_Validation(t *testing.T) {
	now := pinnedNow()
	base := func() modelo210.ImputationInput {
		return modelo210.ImputationInput{
			CadastralTotal: "150000.00",
			PurchaseDate:   "2020-01-15",
			Year:           2024,
			Now:            now,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*modelo210.ImputationInput)
		wantErr error
	}{
		{"missing cadastral", func(in *modelo210.ImputationInput) { in.CadastralTotal = "" }, modelo210.ErrCadastralValueMissing},
		{"zero cadastral", func(in *modelo210.ImputationInput) { in.CadastralTotal = "0" }, modelo210.ErrCadastralValueMissing},
		{"negative cadastral", func(in *modelo210.ImputationInput) { in.CadastralTotal = "-5" }, modelo210.ErrCadastralValueMissing},
		{"missing purchase date", func(in *modelo210.ImputationInput) { in.PurchaseDate = " " }, modelo210.ErrPurchaseDateMissing},
		{"bad purchase date", func(in *modelo210.ImputationInput) { in.PurchaseDate = "15/01/2020" }, modelo210.ErrPurchaseDateMissing},
		{"ownership over 100", func(in *modelo210.ImputationInput) { in.OwnershipPct = dec("100.01") }, modelo210.ErrInvalidOwnershipPct},
		{"ownership negative", func(in *modelo210.ImputationInput) { in.OwnershipPct = dec("-1") }, modelo210.ErrInvalidOwnershipPct},
		{"days too high", func(in *modelo210.ImputationInput) { in.Days = 366 }, modelo210.ErrInvalidDays},
		{"days negative", func(in *modelo210.ImputationInput) { in.Days = -3 }, modelo210.ErrInvalidDays},
		{"bad manual pct", func(in *modelo210.ImputationInput) { p := dec("1.5"); in.AppliedPct = &p }, modelo210.ErrInvalidImputationPct},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := base()
			tc.mutate(&input)

			_, err := modelo210.CalcImputation(input)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if !modelo210.IsClientError(err) {
				t.Errorf("validation error should be a client error: %v", err)
			}
		})
	}
}

// =============================================================================
// FORMATTING
// =============================================================================

func TestFormatEuros(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1650", "1.650,00 €"},
		{"150000", "150.000,00 €"},
		{"313.5", "313,50 €"},
		{"0", "0,00 €"},
		{"-986.30", "-986,30 €"},
		{"1234567.89", "1.234.567,89 €"},
	}
	for _, c := range cases {
		if got := modelo210.FormatEuros(decimal.RequireFromString(c.in)); got != c.want {
			t.Errorf("FormatEuros(%s) = %q, want %q", c.in, got, c.want)
		}
	}
}
