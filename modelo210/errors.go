/*
errors.go - Centralized error types for the calculation engine

ERROR CATEGORIES:
  1. Input validation errors - missing/invalid values supplied by the caller
  2. Data-consistency errors - upstream data entry problems (overlapping
     contracts, cadastral split mismatch); reported with enough detail for a
     human to fix the source records, never auto-corrected
  3. Precondition errors - calculations requested out of order

USAGE:
  The HTTP layer maps these with the helpers at the bottom:

    if modelo210.IsClientError(err) { // 400
    ...

SEE ALSO:
  - rental.go: OverlapError, ErrDaysExceedYear
  - amortization.go: CadastralMismatchError, ErrAmortizationNotCalculated
  - imputation.go: validation sentinels
*/
package modelo210

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrOverlappingContracts is returned when two non-cancelled contracts on
	// the same property overlap. Day counts are never computed past this.
	ErrOverlappingContracts = errors.New("overlapping rental contracts")

	// ErrDaysExceedYear is returned when summed rented days exceed the year
	// length. Unreachable if the overlap check passed; kept as a defensive
	// invariant against clipping bugs.
	ErrDaysExceedYear = errors.New("rented days exceed days in year")

	// ErrCadastralValueMissing is returned when a calculation needs cadastral
	// values and the total is absent or not positive.
	ErrCadastralValueMissing = errors.New("cadastral value missing or not positive")

	// ErrCadastralSplitMismatch is returned when land + construction does not
	// equal the cadastral total within 0.01.
	ErrCadastralSplitMismatch = errors.New("cadastral land + construction does not match total")

	// ErrAmortizationNotCalculated is returned when yearly amortization is
	// requested before the amortizable value has been calculated.
	ErrAmortizationNotCalculated = errors.New("property has no annual amortization: calculate the amortizable value first")

	// ErrPurchaseDateMissing is returned when the purchase date is absent.
	ErrPurchaseDateMissing = errors.New("purchase date is required")

	// ErrInvalidOwnershipPct is returned for ownership percentages outside (0, 100].
	ErrInvalidOwnershipPct = errors.New("ownership percentage must be in (0, 100]")

	// ErrInvalidDays is returned for declared days outside [1, 365].
	ErrInvalidDays = errors.New("days must be between 1 and 365")

	// ErrInvalidImputationPct is returned when a manually supplied imputation
	// percentage is not exactly 1.1 or 2.0.
	ErrInvalidImputationPct = errors.New("applied imputation percentage must be 1.1 or 2.0")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// OverlapError reports every overlapping contract pair found on a property,
// naming both contracts so the source records can be fixed.
type OverlapError struct {
	Pairs []OverlapPair
}

// OverlapPair is one pair of contracts whose date ranges intersect.
type OverlapPair struct {
	First  RentalContract
	Second RentalContract
}

func (p OverlapPair) String() string {
	return fmt.Sprintf("contract #%d (%s, %s - %s) overlaps contract #%d (%s, %s - %s)",
		p.First.ID, p.First.Tenant(), p.First.Start.Format("2006-01-02"), p.First.End.Format("2006-01-02"),
		p.Second.ID, p.Second.Tenant(), p.Second.Start.Format("2006-01-02"), p.Second.End.Format("2006-01-02"))
}

func (e *OverlapError) Error() string {
	msg := fmt.Sprintf("%d overlapping contract pair(s): ", len(e.Pairs))
	for i, p := range e.Pairs {
		if i > 0 {
			msg += "; "
		}
		msg += p.String()
	}
	return msg
}

func (e *OverlapError) Unwrap() error { return ErrOverlappingContracts }

// CadastralMismatchError reports the actual amounts of a failed
// land + construction == total check.
type CadastralMismatchError struct {
	Land         decimal.Decimal
	Construction decimal.Decimal
	Total        decimal.Decimal
}

func (e *CadastralMismatchError) Error() string {
	return fmt.Sprintf("cadastral land (%s) + construction (%s) = %s, expected total %s",
		e.Land.StringFixed(2), e.Construction.StringFixed(2),
		e.Land.Add(e.Construction).StringFixed(2), e.Total.StringFixed(2))
}

func (e *CadastralMismatchError) Unwrap() error { return ErrCadastralSplitMismatch }

// ValidationError wraps a field-level input validation failure.
type ValidationError struct {
	Field  string
	Reason string
	cause  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.cause }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether the error is due to invalid or inconsistent
// caller input (HTTP 400) rather than an engine defect.
func IsClientError(err error) bool {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return true
	}
	return errors.Is(err, ErrOverlappingContracts) ||
		errors.Is(err, ErrCadastralValueMissing) ||
		errors.Is(err, ErrCadastralSplitMismatch) ||
		errors.Is(err, ErrAmortizationNotCalculated) ||
		errors.Is(err, ErrPurchaseDateMissing) ||
		errors.Is(err, ErrInvalidOwnershipPct) ||
		errors.Is(err, ErrInvalidDays) ||
		errors.Is(err, ErrInvalidImputationPct)
}
