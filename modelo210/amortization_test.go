package modelo210_test

import (
	"errors"
	"testing"
	"time"

	"github.com/earnmomey786-cloud/crm210/modelo210"
)

func amortizableProperty() modelo210.Property {
	return modelo210.Property{
		ID:                    1,
		Address:               "Calle Mayor 12, Alicante",
		PurchasePrice:         dec("100000.00"),
		CadastralTotal:        dec("80000.00"),
		CadastralLand:         dec("24000.00"),
		CadastralConstruction: dec("56000.00"),
	}
}

func doc(t modelo210.DocumentType, amount string) modelo210.AcquisitionDocument {
	return modelo210.AcquisitionDocument{PropertyID: 1, Type: t, Amount: dec(amount), Validated: true}
}

// =============================================================================
// AMORTIZABLE VALUE
// =============================================================================

func TestCalcAmortizableValue_NoDocuments_FallsBackToPurchasePrice(t *testing.T) {
	// GIVEN: Property bought for 100000, no acquisition documents,
	//        cadastral 80000 total / 24000 land / 56000 construction
	// WHEN: Calculating the amortizable value
	// THEN: Purchase price is the sole component; construction pct 70%;
	//       amortizable 70000, annual amortization 2100

	result, err := modelo210.CalcAmortizableValue(amortizableProperty(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.TotalAcquisitionValue.Equal(dec("100000.00")) {
		t.Errorf("expected acquisition value 100000, got %v", result.TotalAcquisitionValue)
	}
	if !result.Breakdown[modelo210.DocPurchasePrice].Equal(dec("100000.00")) {
		t.Errorf("expected purchase price in breakdown, got %v", result.Breakdown[modelo210.DocPurchasePrice])
	}
	if !result.Cadastral.ConstructionPct.Equal(dec("0.7")) {
		t.Errorf("expected construction pct 0.7, got %v", result.Cadastral.ConstructionPct)
	}
	if !result.AmortizableValue.Equal(dec("70000.00")) {
		t.Errorf("expected amortizable value 70000, got %v", result.AmortizableValue)
	}
	if !result.AnnualAmortization.Equal(dec("2100.00")) {
		t.Errorf("expected annual amortization 2100, got %v", result.AnnualAmortization)
	}
}

func TestCalcAmortizableValue_SumsDocumentsByType(t *testing.T) {
	// GIVEN: Purchase price plus notary, ITP and improvement documents
	// WHEN: Calculating the amortizable value
	// THEN: All documents sum into the acquisition value before the split

	docs := []modelo210.AcquisitionDocument{
		doc(modelo210.DocPurchasePrice, "100000.00"),
		doc(modelo210.DocNotaryFees, "1200.00"),
		doc(modelo210.DocTransferTax, "8000.00"),
		doc(modelo210.DocImprovement, "4800.00"),
		doc(modelo210.DocImprovement, "1000.00"),
	}

	result, err := modelo210.CalcAmortizableValue(amortizableProperty(), docs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.TotalAcquisitionValue.Equal(dec("115000.00")) {
		t.Errorf("expected acquisition value 115000, got %v", result.TotalAcquisitionValue)
	}
	if !result.Breakdown[modelo210.DocImprovement].Equal(dec("5800.00")) {
		t.Errorf("expected improvements grouped to 5800, got %v", result.Breakdown[modelo210.DocImprovement])
	}
	// 115000 x 0.70 = 80500; 80500 x 3% = 2415
	if !result.AmortizableValue.Equal(dec("80500.00")) {
		t.Errorf("expected amortizable value 80500, got %v", result.AmortizableValue)
	}
	if !result.AnnualAmortization.Equal(dec("2415.00")) {
		t.Errorf("expected annual amortization 2415, got %v", result.AnnualAmortization)
	}
}

func TestCalcAmortizableValue_MissingCadastral_Fails(t *testing.T) {
	// GIVEN: Property without cadastral values
	// WHEN: Calculating the amortizable value
	// THEN: Fails; construction share cannot be derived

	p := amortizableProperty()
	p.CadastralTotal = dec("0")

	_, err := modelo210.CalcAmortizableValue(p, nil)
	if !errors.Is(err, modelo210.ErrCadastralValueMissing) {
		t.Fatalf("expected ErrCadastralValueMissing, got %v", err)
	}
}

func TestCalcAmortizableValue_SplitMismatch_Fails(t *testing.T) {
	// GIVEN: land + construction != total by more than 0.01
	// WHEN: Calculating the amortizable value
	// THEN: Fails naming the actual amounts

	p := amortizableProperty()
	p.CadastralLand = dec("20000.00") // 20000 + 56000 != 80000

	_, err := modelo210.CalcAmortizableValue(p, nil)
	if !errors.Is(err, modelo210.ErrCadastralSplitMismatch) {
		t.Fatalf("expected ErrCadastralSplitMismatch, got %v", err)
	}

	var mismatch *modelo210.CadastralMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected *CadastralMismatchError, got %T", err)
	}
	if !mismatch.Total.Equal(dec("80000.00")) {
		t.Errorf("expected total 80000 in error, got %v", mismatch.Total)
	}
}

func TestCalcAmortizableValue_SplitWithinTolerance_Succeeds(t *testing.T) {
	// GIVEN: land + construction off by exactly 0.01
	// WHEN: Calculating the amortizable value
	// THEN: Accepted (tolerance is inclusive)

	p := amortizableProperty()
	p.CadastralLand = dec("24000.01")

	if _, err := modelo210.CalcAmortizableValue(p, nil); err != nil {
		t.Fatalf("expected success within tolerance, got %v", err)
	}
}

// =============================================================================
// YEARLY AMORTIZATION ALLOCATION
// =============================================================================

func TestCalcAmortization_RequiresAmortizableValueFirst(t *testing.T) {
	// GIVEN: Property whose annual amortization was never calculated
	// WHEN: Requesting yearly amortization
	// THEN: Distinct precondition error

	p := amortizableProperty() // AnnualAmortization zero

	_, err := modelo210.CalcAmortization(p, 180, nil, 2024)
	if !errors.Is(err, modelo210.ErrAmortizationNotCalculated) {
		t.Fatalf("expected ErrAmortizationNotCalculated, got %v", err)
	}
}

func TestCalcAmortization_ProratesByRentedDays(t *testing.T) {
	// GIVEN: Annual amortization 2100, rented 180 days
	// WHEN: Calculating the 2024 amortization
	// THEN: 2100 x (180/365) = 1035.62, fixed 365 denominator even in a leap year

	p := amortizableProperty()
	p.AnnualAmortization = dec("2100.00")

	result, err := modelo210.CalcAmortization(p, 180, nil, 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.ProratedAmortization.Equal(dec("1035.62")) {
		t.Errorf("expected prorated amortization 1035.62, got %v", result.ProratedAmortization)
	}
	if result.UnrentedDays != 185 {
		t.Errorf("expected 185 unrented days, got %d", result.UnrentedDays)
	}
}

func TestCalcAmortization_CoOwnerSplit_Conserved(t *testing.T) {
	// GIVEN: Prorated amortization split 60/40 between two co-owners
	// WHEN: Allocating
	// THEN: Shares sum to the prorated total within co-owner count x 0.01

	p := amortizableProperty()
	p.AnnualAmortization = dec("2100.00")

	coOwners := []modelo210.CoOwnerShare{
		{ClientID: 10, Name: "Jan Kowalski", Percentage: dec("60")},
		{ClientID: 11, Name: "Ewa Kowalska", Percentage: dec("40")},
	}

	result, err := modelo210.CalcAmortization(p, 365, coOwners, 2023)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Full year: prorated == annual
	if !result.ProratedAmortization.Equal(dec("2100.00")) {
		t.Fatalf("expected prorated 2100, got %v", result.ProratedAmortization)
	}
	if !result.CoOwners[0].Amortization.Equal(dec("1260.00")) {
		t.Errorf("expected 60%% share 1260, got %v", result.CoOwners[0].Amortization)
	}
	if !result.CoOwners[1].Amortization.Equal(dec("840.00")) {
		t.Errorf("expected 40%% share 840, got %v", result.CoOwners[1].Amortization)
	}

	sum := result.CoOwners[0].Amortization.Add(result.CoOwners[1].Amortization)
	tolerance := dec("0.02") // 2 co-owners x 0.01
	if sum.Sub(result.ProratedAmortization).Abs().GreaterThan(tolerance) {
		t.Errorf("allocation not conserved: shares sum %v vs prorated %v", sum, result.ProratedAmortization)
	}
}

func TestCalcAmortization_FormulaString(t *testing.T) {
	// GIVEN: Annual amortization 2100, 180 rented days
	// WHEN: Calculating
	// THEN: Formula reproduces the proration chain

	p := amortizableProperty()
	p.AnnualAmortization = dec("2100.00")

	result, err := modelo210.CalcAmortization(p, 180, nil, 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "2100.00€ × (180/365) = 1035.62€"
	if result.Formula != want {
		t.Errorf("formula mismatch:\n got:  %s\n want: %s", result.Formula, want)
	}
}

func TestCalcAmortizableValue_Idempotent(t *testing.T) {
	// Same inputs, same outputs, twice.
	docs := []modelo210.AcquisitionDocument{
		doc(modelo210.DocPurchasePrice, "250000.00"),
		doc(modelo210.DocNotaryFees, "1500.00"),
	}
	p := amortizableProperty()
	p.PurchaseDate = time.Date(2018, time.May, 2, 0, 0, 0, 0, time.UTC)

	first, err := modelo210.CalcAmortizableValue(p, docs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := modelo210.CalcAmortizableValue(p, docs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !first.AmortizableValue.Equal(second.AmortizableValue) || first.Formula != second.Formula {
		t.Error("expected identical results for identical inputs")
	}
}
