/*
rental.go - Rented-day calculation for a property and fiscal year

This is the base input for proportional amortization and expense proration:
amortization and proportional expenses are deducted only for the fraction of
the year the property was actually rented.

ALGORITHM:
  1. Detect overlapping contracts FIRST; any overlap aborts the calculation
     (overlaps are a data entry error, never silently resolved)
  2. Filter contracts to countable statuses intersecting the year
  3. Clip each contract to [Jan 1, Dec 31], count days inclusive of both ends
  4. Defensive check: summed days must not exceed the year length
  5. Estimate per-contract income as monthly rent x (days / 30.44)
*/
package modelo210

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ContractDays is one contract's effective interval and income within a year.
type ContractDays struct {
	ContractID     int64
	Start          time.Time
	End            time.Time
	EffectiveStart time.Time
	EffectiveEnd   time.Time
	Days           int
	MonthlyRent    decimal.Decimal
	EstimatedIncome decimal.Decimal
	Tenant         string
	Status         ContractStatus
}

// RentalDaysResult is the per-year rented-day breakdown for a property.
type RentalDaysResult struct {
	PropertyID        int64
	Year              int
	YearDays          int
	Contracts         []ContractDays
	ContractCount     int
	TotalRentedDays   int
	TotalUnrentedDays int
	OccupancyPct      decimal.Decimal
	EstimatedIncome   decimal.Decimal
}

// CalcRentalDays computes how many days a property was rented in a fiscal
// year, with a per-contract breakdown. Contracts with overlapping date ranges
// make the calculation fail before any day is counted. No contracts in the
// year is a valid zero result, not an error.
func CalcRentalDays(contracts []RentalContract, year int) (*RentalDaysResult, error) {
	if pairs := DetectOverlaps(contracts); len(pairs) > 0 {
		return nil, &OverlapError{Pairs: pairs}
	}

	yearStart, yearEnd := YearBounds(year)
	yearDays := daysInclusive(yearStart, yearEnd)

	var propertyID int64
	if len(contracts) > 0 {
		propertyID = contracts[0].PropertyID
	}

	result := &RentalDaysResult{
		PropertyID:        propertyID,
		Year:              year,
		YearDays:          yearDays,
		TotalUnrentedDays: yearDays,
		OccupancyPct:      decimal.Zero,
		EstimatedIncome:   decimal.Zero,
	}

	totalRented := 0
	totalIncome := decimal.Zero

	for _, c := range contracts {
		if !c.Status.CountsTowardDays() {
			continue
		}
		start := dayDate(c.Start)
		end := dayDate(c.End)
		if start.After(yearEnd) || end.Before(yearStart) {
			continue
		}

		effStart := maxDate(start, yearStart)
		effEnd := minDate(end, yearEnd)
		days := daysInclusive(effStart, effEnd)
		totalRented += days

		// Estimated income for the clipped interval, using the average month
		// length of 30.44 days.
		months := decimal.NewFromInt(int64(days)).Div(avgDaysPerMonth)
		income := Round2(c.MonthlyRent.Mul(months))
		totalIncome = totalIncome.Add(income)

		result.Contracts = append(result.Contracts, ContractDays{
			ContractID:      c.ID,
			Start:           start,
			End:             end,
			EffectiveStart:  effStart,
			EffectiveEnd:    effEnd,
			Days:            days,
			MonthlyRent:     c.MonthlyRent,
			EstimatedIncome: income,
			Tenant:          c.Tenant(),
			Status:          c.Status,
		})
	}

	if totalRented > yearDays {
		return nil, ErrDaysExceedYear
	}

	result.ContractCount = len(result.Contracts)
	result.TotalRentedDays = totalRented
	result.TotalUnrentedDays = yearDays - totalRented
	if totalRented > 0 {
		occupancy := decimal.NewFromInt(int64(totalRented)).
			Div(decimal.NewFromInt(int64(yearDays))).
			Mul(hundred)
		result.OccupancyPct = Round2(occupancy)
	}
	result.EstimatedIncome = Round2(totalIncome)

	return result, nil
}

// DetectOverlaps returns every pair of countable contracts whose inclusive
// date ranges intersect. Cancelled contracts are ignored.
func DetectOverlaps(contracts []RentalContract) []OverlapPair {
	valid := make([]RentalContract, 0, len(contracts))
	for _, c := range contracts {
		if c.Status.CountsTowardDays() {
			valid = append(valid, c)
		}
	}

	sort.Slice(valid, func(i, j int) bool {
		return valid[i].Start.Before(valid[j].Start)
	})

	var pairs []OverlapPair
	for i := 0; i < len(valid); i++ {
		for j := i + 1; j < len(valid); j++ {
			a, b := valid[i], valid[j]
			if !dayDate(a.End).Before(dayDate(b.Start)) && !dayDate(a.Start).After(dayDate(b.End)) {
				pairs = append(pairs, OverlapPair{First: a, Second: b})
			}
		}
	}
	return pairs
}
