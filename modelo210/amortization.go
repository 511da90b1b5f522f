/*
amortization.go - Amortizable value and yearly amortization proration

Under Spanish tax law only the construction share of the acquisition cost
depreciates, at 3% per year. The construction share comes from the cadastral
land/construction split on the IBI receipt, so cadastral values are mandatory
here. Yearly amortization is prorated by rented days and split across
co-owners by ownership percentage.

The yearly proration uses a fixed 365-day denominator even in leap years.
*/
package modelo210

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CadastralValues is the land/construction breakdown of a cadastral value.
type CadastralValues struct {
	Total           decimal.Decimal
	Land            decimal.Decimal
	Construction    decimal.Decimal
	ConstructionPct decimal.Decimal // ratio, 4 decimals
}

// AmortizableValueResult is the outcome of the amortizable-value calculation.
type AmortizableValueResult struct {
	PropertyID            int64
	Address               string
	TotalAcquisitionValue decimal.Decimal
	Breakdown             map[DocumentType]decimal.Decimal
	Cadastral             CadastralValues
	AmortizableValue      decimal.Decimal
	AnnualAmortization    decimal.Decimal
	Formula               string
}

// CoOwnerAmortization is one co-owner's share of a year's amortization.
type CoOwnerAmortization struct {
	ClientID     int64
	Name         string
	Percentage   decimal.Decimal
	Amortization decimal.Decimal
}

// AmortizationResult is the prorated amortization for one year.
type AmortizationResult struct {
	PropertyID             int64
	Address                string
	Year                   int
	RentedDays             int
	UnrentedDays           int
	AnnualAmortization     decimal.Decimal
	ProratedAmortization   decimal.Decimal
	CoOwners               []CoOwnerAmortization
	Formula                string
}

// CalcAmortizableValue computes the depreciable base of a property from its
// validated acquisition documents and cadastral split.
//
// With zero documents the property's raw purchase price stands in as the sole
// purchase-price component; this is the degenerate case, not an error.
// Missing cadastral values or a land+construction sum that does not match the
// total (tolerance 0.01) fail the calculation.
func CalcAmortizableValue(p Property, docs []AcquisitionDocument) (*AmortizableValueResult, error) {
	breakdown := make(map[DocumentType]decimal.Decimal, len(DocumentTypes))
	for _, t := range DocumentTypes {
		breakdown[t] = decimal.Zero
	}

	total := decimal.Zero
	for _, doc := range docs {
		breakdown[doc.Type] = breakdown[doc.Type].Add(doc.Amount)
		total = total.Add(doc.Amount)
	}

	// No documents: fall back to the purchase price from the property record.
	if total.IsZero() {
		total = p.PurchasePrice
		breakdown[DocPurchasePrice] = p.PurchasePrice
	}

	if !p.CadastralTotal.IsPositive() {
		return nil, ErrCadastralValueMissing
	}

	split := p.CadastralLand.Add(p.CadastralConstruction)
	if split.Sub(p.CadastralTotal).Abs().GreaterThan(decimal.NewFromFloat(0.01)) {
		return nil, &CadastralMismatchError{
			Land:         p.CadastralLand,
			Construction: p.CadastralConstruction,
			Total:        p.CadastralTotal,
		}
	}

	constructionPct := p.CadastralConstruction.Div(p.CadastralTotal)

	// Only the construction portion depreciates, never the land.
	amortizable := Round2(total.Mul(constructionPct))
	annual := Round2(amortizable.Mul(amortRate))

	formula := fmt.Sprintf("%s€ × %s%% = %s€ → %s€ × 3%% = %s€/year",
		total.StringFixed(2),
		constructionPct.Mul(hundred).StringFixed(2),
		amortizable.StringFixed(2),
		amortizable.StringFixed(2),
		annual.StringFixed(2))

	return &AmortizableValueResult{
		PropertyID:            p.ID,
		Address:               p.Address,
		TotalAcquisitionValue: total,
		Breakdown:             breakdown,
		Cadastral: CadastralValues{
			Total:           p.CadastralTotal,
			Land:            p.CadastralLand,
			Construction:    p.CadastralConstruction,
			ConstructionPct: Round4(constructionPct),
		},
		AmortizableValue:   amortizable,
		AnnualAmortization: annual,
		Formula:            formula,
	}, nil
}

// CalcAmortization prorates a property's annual amortization by rented days
// and splits the result across co-owners by ownership percentage. The
// property must already have its annual amortization calculated.
func CalcAmortization(p Property, rentedDays int, coOwners []CoOwnerShare, year int) (*AmortizationResult, error) {
	if p.AnnualAmortization.IsZero() {
		return nil, ErrAmortizationNotCalculated
	}

	rented := decimal.NewFromInt(int64(rentedDays))
	prorated := Round2(p.AnnualAmortization.Mul(rented).Div(fixedYearDays))
	unrented := int(fixedYearDays.IntPart()) - rentedDays

	shares := make([]CoOwnerAmortization, len(coOwners))
	for i, co := range coOwners {
		shares[i] = CoOwnerAmortization{
			ClientID:     co.ClientID,
			Name:         co.Name,
			Percentage:   co.Percentage,
			Amortization: Round2(prorated.Mul(co.Percentage.Div(hundred))),
		}
	}

	formula := fmt.Sprintf("%s€ × (%d/365) = %s€",
		p.AnnualAmortization.StringFixed(2), rentedDays, prorated.StringFixed(2))

	return &AmortizationResult{
		PropertyID:           p.ID,
		Address:              p.Address,
		Year:                 year,
		RentedDays:           rentedDays,
		UnrentedDays:         unrented,
		AnnualAmortization:   p.AnnualAmortization,
		ProratedAmortization: prorated,
		CoOwners:             shares,
		Formula:              formula,
	}, nil
}
