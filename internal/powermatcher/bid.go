// Package powermatcher implements the market-clearing core of a
// PowerMatcher-style energy market: the bid-curve algebra and the
// auctioneer that aggregates bids into a single equilibrium price.
package powermatcher

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Price and Quantity are exact decimal values. All comparisons and
// arithmetic on the curve algebra go through decimal.Decimal so that
// equilibrium discovery never depends on binary floating point rounding.
type Price = decimal.Decimal
type Quantity = decimal.Decimal

// Bid is an immutable, piecewise-constant, monotonically non-increasing
// function of price to quantity. Positive quantity means consumption,
// negative means production.
//
// quantities has exactly one more element than prices: quantities[0] is
// the plateau for p < prices[0], quantities[i] is the plateau for
// prices[i-1] <= p < prices[i], and quantities[len(quantities)-1] is the
// plateau for p >= prices[len(prices)-1]. A break price belongs to the
// plateau above it.
type Bid struct {
	minPrice, maxPrice Price
	prices             []Price
	quantities         []Quantity
}

// NewBid validates and constructs a bid curve against the given price
// band. Violations are reported in the order: count mismatch, out-of-band
// price, non-increasing prices, non-strictly-decreasing quantities.
func NewBid(minPrice, maxPrice Price, quantities []Quantity, prices []Price) (Bid, error) {
	if err := validateCurve(minPrice, maxPrice, quantities, prices); err != nil {
		return Bid{}, err
	}
	return Bid{
		minPrice:   minPrice,
		maxPrice:   maxPrice,
		prices:     clonePrices(prices),
		quantities: clonePrices(quantities),
	}, nil
}

// ScalarBid builds the single-plateau curve Q(p) = q for all p in the band.
func ScalarBid(minPrice, maxPrice Price, q Quantity) Bid {
	return Bid{
		minPrice:   minPrice,
		maxPrice:   maxPrice,
		prices:     nil,
		quantities: []Quantity{q},
	}
}

// ZeroBid is the scalar-0 curve over the given band — the additive identity.
func ZeroBid(minPrice, maxPrice Price) Bid {
	return ScalarBid(minPrice, maxPrice, decimal.Zero)
}

func clonePrices(ps []Price) []Price {
	if ps == nil {
		return nil
	}
	out := make([]Price, len(ps))
	copy(out, ps)
	return out
}

func validateCurve(minPrice, maxPrice Price, quantities []Quantity, prices []Price) error {
	if len(quantities) != len(prices)+1 {
		return fmt.Errorf("%w: need one more quantity than price, got %d quantities and %d prices",
			ErrInvalidBid, len(quantities), len(prices))
	}

	for i, p := range prices {
		if p.LessThanOrEqual(minPrice) || p.GreaterThan(maxPrice) {
			return fmt.Errorf("%w: price %s at index %d outside band (%s, %s]",
				ErrInvalidBid, p, i, minPrice, maxPrice)
		}
	}

	for i := 0; i < len(prices)-1; i++ {
		if prices[i].GreaterThanOrEqual(prices[i+1]) {
			return fmt.Errorf("%w: prices must be strictly increasing, %s at index %d is not less than %s at index %d",
				ErrInvalidBid, prices[i], i, prices[i+1], i+1)
		}
	}

	for i := 0; i < len(quantities)-1; i++ {
		if quantities[i].LessThanOrEqual(quantities[i+1]) {
			return fmt.Errorf("%w: quantities must be strictly decreasing, %s at index %d is not greater than %s at index %d",
				ErrInvalidBid, quantities[i], i, quantities[i+1], i+1)
		}
	}

	return nil
}

// Equal reports whether two bids have identical price and quantity sequences.
func (b Bid) Equal(other Bid) bool {
	if len(b.prices) != len(other.prices) || len(b.quantities) != len(other.quantities) {
		return false
	}
	for i := range b.prices {
		if !b.prices[i].Equal(other.prices[i]) {
			return false
		}
	}
	for i := range b.quantities {
		if !b.quantities[i].Equal(other.quantities[i]) {
			return false
		}
	}
	return true
}

// Add computes the pointwise sum of two bid curves by merging their break
// price sequences. Equal break prices from both sides collapse into a
// single break price in the result.
func (b Bid) Add(other Bid) (Bid, error) {
	quantity := b.quantities[0].Add(other.quantities[0])

	newPrices := make([]Price, 0, len(b.prices)+len(other.prices))
	newQuantities := make([]Quantity, 1, len(b.prices)+len(other.prices)+1)
	newQuantities[0] = quantity

	i, j := 0, 0
	for i < len(b.prices) || j < len(other.prices) {
		switch {
		case j >= len(other.prices) || (i < len(b.prices) && b.prices[i].LessThan(other.prices[j])):
			quantity = quantity.Sub(b.quantities[i].Sub(b.quantities[i+1]))
			newPrices = append(newPrices, b.prices[i])
			i++
		case i >= len(b.prices) || other.prices[j].LessThan(b.prices[i]):
			quantity = quantity.Sub(other.quantities[j].Sub(other.quantities[j+1]))
			newPrices = append(newPrices, other.prices[j])
			j++
		default:
			quantity = quantity.Sub(b.quantities[i].Sub(b.quantities[i+1]))
			quantity = quantity.Sub(other.quantities[j].Sub(other.quantities[j+1]))
			newPrices = append(newPrices, b.prices[i])
			i++
			j++
		}
		newQuantities = append(newQuantities, quantity)
	}

	return NewBid(b.minPrice, b.maxPrice, newQuantities, newPrices)
}

// EquilibriumPrice returns the lowest price at which the curve crosses or
// touches zero from above — the price that clears the market.
func (b Bid) EquilibriumPrice() Price {
	if len(b.prices) == 0 {
		switch {
		case b.quantities[0].IsNegative():
			return b.minPrice
		case b.quantities[0].IsPositive():
			return b.maxPrice
		default:
			return b.minPrice
		}
	}

	if b.quantities[0].LessThanOrEqual(decimal.Zero) {
		return b.minPrice
	}
	if b.quantities[len(b.quantities)-1].IsPositive() {
		return b.maxPrice
	}

	for k := 1; k < len(b.quantities); k++ {
		if b.quantities[k].LessThanOrEqual(decimal.Zero) {
			return b.prices[k-1]
		}
	}
	// Unreachable: the qn > 0 check above guarantees some plateau is <= 0.
	return b.maxPrice
}

// FindQuantity returns the plateau active at price p, saturating to the
// first or last plateau for prices outside the band.
func (b Bid) FindQuantity(p Price) Quantity {
	for i, bp := range b.prices {
		if p.LessThan(bp) {
			return b.quantities[i]
		}
	}
	return b.quantities[len(b.quantities)-1]
}

// String renders the bid as "q0@min_price q1@p1 q2@p2 ...".
func (b Bid) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s@%s", b.quantities[0].StringFixed(2), b.minPrice.StringFixed(2))
	for i, p := range b.prices {
		fmt.Fprintf(&sb, " %s@%s", b.quantities[i+1].StringFixed(2), p.StringFixed(2))
	}
	return sb.String()
}

// Prices returns a copy of the break-price sequence.
func (b Bid) Prices() []Price { return clonePrices(b.prices) }

// Quantities returns a copy of the plateau-quantity sequence.
func (b Bid) Quantities() []Quantity { return clonePrices(b.quantities) }
