package agent

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"powermatcher/internal/powermatcher"
	"powermatcher/internal/telemetry"
)

// ImbalanceAgent bids a fixed three-step curve: consume at low price,
// idle in the middle, produce at high price. Its bid never changes after
// construction. Grounded on agents.py's ImbalanceAgent.
type ImbalanceAgent struct {
	*Base
	productionPrice  decimal.Decimal
	consumptionPrice decimal.Decimal
	productionPower  decimal.Decimal
	consumptionPower decimal.Decimal
}

// ImbalanceOption overrides one of ImbalanceAgent's four defaulted
// parameters at construction time.
type ImbalanceOption func(*imbalanceParams)

type imbalanceParams struct {
	productionPrice  *decimal.Decimal
	consumptionPrice *decimal.Decimal
	productionPower  decimal.Decimal
	consumptionPower decimal.Decimal
}

// WithProductionPrice overrides the price above which the agent produces
// (default: 90% of the auctioneer's price band).
func WithProductionPrice(p decimal.Decimal) ImbalanceOption {
	return func(ip *imbalanceParams) { ip.productionPrice = &p }
}

// WithConsumptionPrice overrides the price below which the agent consumes
// (default: 10% of the auctioneer's price band).
func WithConsumptionPrice(p decimal.Decimal) ImbalanceOption {
	return func(ip *imbalanceParams) { ip.consumptionPrice = &p }
}

// WithProductionPower overrides the magnitude produced above the
// production price (default 5000W).
func WithProductionPower(p decimal.Decimal) ImbalanceOption {
	return func(ip *imbalanceParams) { ip.productionPower = p }
}

// WithConsumptionPower overrides the magnitude consumed below the
// consumption price (default 5000W).
func WithConsumptionPower(p decimal.Decimal) ImbalanceOption {
	return func(ip *imbalanceParams) { ip.consumptionPower = p }
}

// NewImbalanceAgent constructs and registers an ImbalanceAgent.
func NewImbalanceAgent(auctioneer *powermatcher.Auctioneer, id string, sink telemetry.Sink, opts ...ImbalanceOption) (*ImbalanceAgent, error) {
	if id == "" {
		id = "ImbalanceAgent-" + uuid.NewString()
	}

	band := auctioneer.MaxPrice().Sub(auctioneer.MinPrice())
	params := imbalanceParams{
		productionPower:  decimal.NewFromInt(5000),
		consumptionPower: decimal.NewFromInt(5000),
	}
	for _, opt := range opts {
		opt(&params)
	}

	consumptionPrice := auctioneer.MinPrice().Add(decimal.NewFromFloat(0.1).Mul(band))
	if params.consumptionPrice != nil {
		consumptionPrice = *params.consumptionPrice
	}
	productionPrice := auctioneer.MinPrice().Add(decimal.NewFromFloat(0.9).Mul(band))
	if params.productionPrice != nil {
		productionPrice = *params.productionPrice
	}

	quantities := []decimal.Decimal{params.consumptionPower, decimal.Zero, params.productionPower.Neg()}
	prices := []decimal.Decimal{consumptionPrice, productionPrice}
	initial, err := powermatcher.NewBid(auctioneer.MinPrice(), auctioneer.MaxPrice(), quantities, prices)
	if err != nil {
		return nil, err
	}

	a := &ImbalanceAgent{
		productionPrice:  productionPrice,
		consumptionPrice: consumptionPrice,
		productionPower:  params.productionPower,
		consumptionPower:  params.consumptionPower,
	}
	a.Base = NewBase(auctioneer, id, initial, sink, nil)
	if err := a.Base.SetHook(a); err != nil {
		return nil, err
	}
	return a, nil
}

// HandleStateUpdate recomputes runlevel against the (unchanging) bid.
// Not strictly necessary, since a state update alone never shifts this
// agent's own power, but agents.py keeps the call for symmetry with the
// other device agents and so do we.
func (a *ImbalanceAgent) HandleStateUpdate(snap Snapshot) {
	a.beginTick(snap)
	a.DoRunlevelUpdate()
}
