package modelo210_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/earnmomey786-cloud/crm210/modelo210"
	"github.com/shopspring/decimal"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal {
	return modelo210.MustDecimal(s)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func contract(id int64, start, end time.Time, rent string, tenant string, status modelo210.ContractStatus) modelo210.RentalContract {
	return modelo210.RentalContract{
		ID:          id,
		PropertyID:  1,
		Start:       start,
		End:         end,
		MonthlyRent: dec(rent),
		TenantName:  tenant,
		Status:      status,
	}
}

// =============================================================================
// RENTED-DAY CALCULATION
// =============================================================================

func TestCalcRentalDays_NoContracts_ZeroResult(t *testing.T) {
	// GIVEN: A property with no contracts
	// WHEN: Calculating rented days for 2024
	// THEN: Valid zero result, not an error

	result, err := modelo210.CalcRentalDays(nil, 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.YearDays != 366 {
		t.Errorf("expected 366 days in 2024, got %d", result.YearDays)
	}
	if result.TotalRentedDays != 0 {
		t.Errorf("expected 0 rented days, got %d", result.TotalRentedDays)
	}
	if result.TotalUnrentedDays != 366 {
		t.Errorf("expected 366 unrented days, got %d", result.TotalUnrentedDays)
	}
	if !result.OccupancyPct.IsZero() {
		t.Errorf("expected zero occupancy, got %v", result.OccupancyPct)
	}
}

func TestCalcRentalDays_FullYearContract(t *testing.T) {
	// GIVEN: One active contract covering all of 2023
	// WHEN: Calculating rented days
	// THEN: 365 rented days, 100% occupancy, income = rent x (365/30.44)

	contracts := []modelo210.RentalContract{
		contract(1, date(2023, time.January, 1), date(2023, time.December, 31), "1000.00", "Anna Kowalska", modelo210.ContractActive),
	}

	result, err := modelo210.CalcRentalDays(contracts, 2023)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TotalRentedDays != 365 {
		t.Errorf("expected 365 rented days, got %d", result.TotalRentedDays)
	}
	if !result.OccupancyPct.Equal(dec("100")) {
		t.Errorf("expected 100%% occupancy, got %v", result.OccupancyPct)
	}
	// 1000 x (365 / 30.44) = 11990.80
	if !result.EstimatedIncome.Equal(dec("11990.80")) {
		t.Errorf("expected estimated income 11990.80, got %v", result.EstimatedIncome)
	}
}

func TestCalcRentalDays_ContractClippedToYear(t *testing.T) {
	// GIVEN: A contract spanning Oct 2023 - Mar 2024
	// WHEN: Calculating rented days for 2024
	// THEN: Only Jan 1 - Mar 31 counts (91 days, inclusive)

	contracts := []modelo210.RentalContract{
		contract(7, date(2023, time.October, 1), date(2024, time.March, 31), "800.00", "Piotr Nowak", modelo210.ContractFinished),
	}

	result, err := modelo210.CalcRentalDays(contracts, 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TotalRentedDays != 91 {
		t.Errorf("expected 91 rented days, got %d", result.TotalRentedDays)
	}
	cd := result.Contracts[0]
	if !cd.EffectiveStart.Equal(date(2024, time.January, 1)) {
		t.Errorf("expected effective start Jan 1, got %v", cd.EffectiveStart)
	}
	if !cd.EffectiveEnd.Equal(date(2024, time.March, 31)) {
		t.Errorf("expected effective end Mar 31, got %v", cd.EffectiveEnd)
	}
}

func TestCalcRentalDays_CancelledContractIgnored(t *testing.T) {
	// GIVEN: A cancelled contract covering the full year
	// WHEN: Calculating rented days
	// THEN: Zero days; cancelled contracts never count

	contracts := []modelo210.RentalContract{
		contract(2, date(2024, time.January, 1), date(2024, time.December, 31), "900.00", "Maria", modelo210.ContractCancelled),
	}

	result, err := modelo210.CalcRentalDays(contracts, 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalRentedDays != 0 {
		t.Errorf("expected 0 rented days, got %d", result.TotalRentedDays)
	}
}

func TestCalcRentalDays_DaySumInvariant(t *testing.T) {
	// GIVEN: Two back-to-back contracts in 2024
	// WHEN: Calculating rented days
	// THEN: rented + unrented == days in year

	contracts := []modelo210.RentalContract{
		contract(1, date(2024, time.January, 1), date(2024, time.June, 30), "1000.00", "A", modelo210.ContractFinished),
		contract(2, date(2024, time.August, 1), date(2024, time.December, 31), "1100.00", "B", modelo210.ContractActive),
	}

	result, err := modelo210.CalcRentalDays(contracts, 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TotalRentedDays+result.TotalUnrentedDays != result.YearDays {
		t.Errorf("day-sum invariant violated: %d + %d != %d",
			result.TotalRentedDays, result.TotalUnrentedDays, result.YearDays)
	}
	// Jan-Jun 2024 = 182 days (leap year), Aug-Dec = 153 days
	if result.TotalRentedDays != 335 {
		t.Errorf("expected 335 rented days, got %d", result.TotalRentedDays)
	}
}

// =============================================================================
// OVERLAP DETECTION
// =============================================================================

func TestCalcRentalDays_OverlappingContracts_Rejected(t *testing.T) {
	// GIVEN: Contract 1 [Jan 1 - Jun 30] and contract 2 [May 1 - Dec 31]
	// WHEN: Calculating rented days
	// THEN: Fails citing both contracts; no days computed

	contracts := []modelo210.RentalContract{
		contract(1, date(2024, time.January, 1), date(2024, time.June, 30), "1000.00", "Anna Kowalska", modelo210.ContractActive),
		contract(2, date(2024, time.May, 1), date(2024, time.December, 31), "1200.00", "Piotr Nowak", modelo210.ContractActive),
	}

	result, err := modelo210.CalcRentalDays(contracts, 2024)
	if result != nil {
		t.Fatal("expected nil result on overlap")
	}
	if !errors.Is(err, modelo210.ErrOverlappingContracts) {
		t.Fatalf("expected ErrOverlappingContracts, got %v", err)
	}

	var overlapErr *modelo210.OverlapError
	if !errors.As(err, &overlapErr) {
		t.Fatalf("expected *OverlapError, got %T", err)
	}
	if len(overlapErr.Pairs) != 1 {
		t.Fatalf("expected 1 overlapping pair, got %d", len(overlapErr.Pairs))
	}

	msg := err.Error()
	for _, want := range []string{"#1", "#2", "Anna Kowalska", "Piotr Nowak", "2024-05-01"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error message missing %q: %s", want, msg)
		}
	}
}

func TestDetectOverlaps_AdjacentContracts_NoOverlap(t *testing.T) {
	// GIVEN: One contract ending Jun 30 and another starting Jul 1
	// WHEN: Detecting overlaps
	// THEN: None found (inclusive ranges that touch on consecutive days are fine)

	contracts := []modelo210.RentalContract{
		contract(1, date(2024, time.January, 1), date(2024, time.June, 30), "1000.00", "A", modelo210.ContractFinished),
		contract(2, date(2024, time.July, 1), date(2024, time.December, 31), "1000.00", "B", modelo210.ContractActive),
	}

	if pairs := modelo210.DetectOverlaps(contracts); len(pairs) != 0 {
		t.Errorf("expected no overlaps, got %d", len(pairs))
	}
}

func TestDetectOverlaps_SingleSharedDay_IsOverlap(t *testing.T) {
	// GIVEN: Contracts sharing exactly one day (Jun 30)
	// WHEN: Detecting overlaps
	// THEN: Reported as overlapping (endpoints are inclusive)

	contracts := []modelo210.RentalContract{
		contract(1, date(2024, time.January, 1), date(2024, time.June, 30), "1000.00", "A", modelo210.ContractFinished),
		contract(2, date(2024, time.June, 30), date(2024, time.December, 31), "1000.00", "B", modelo210.ContractActive),
	}

	if pairs := modelo210.DetectOverlaps(contracts); len(pairs) != 1 {
		t.Errorf("expected 1 overlap, got %d", len(pairs))
	}
}

func TestDetectOverlaps_CancelledContractsExcluded(t *testing.T) {
	// GIVEN: A cancelled contract overlapping an active one
	// WHEN: Detecting overlaps
	// THEN: No overlap; cancelled contracts do not participate

	contracts := []modelo210.RentalContract{
		contract(1, date(2024, time.January, 1), date(2024, time.December, 31), "1000.00", "A", modelo210.ContractCancelled),
		contract(2, date(2024, time.March, 1), date(2024, time.August, 31), "1000.00", "B", modelo210.ContractActive),
	}

	if pairs := modelo210.DetectOverlaps(contracts); len(pairs) != 0 {
		t.Errorf("expected no overlaps, got %d", len(pairs))
	}
}

func TestCalcRentalDays_Idempotent(t *testing.T) {
	// GIVEN: The same contract list and year
	// WHEN: Calculating twice
	// THEN: Results are identical

	contracts := []modelo210.RentalContract{
		contract(1, date(2023, time.February, 15), date(2023, time.November, 30), "950.50", "C", modelo210.ContractRenewed),
	}

	first, err := modelo210.CalcRentalDays(contracts, 2023)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := modelo210.CalcRentalDays(contracts, 2023)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.TotalRentedDays != second.TotalRentedDays ||
		!first.EstimatedIncome.Equal(second.EstimatedIncome) ||
		!first.OccupancyPct.Equal(second.OccupancyPct) {
		t.Error("expected identical results for identical inputs")
	}
}
