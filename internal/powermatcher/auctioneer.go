package powermatcher

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"powermatcher/internal/telemetry"
)

var decimalTwo = decimal.NewFromInt(2)

// PriceListener is notified whenever the auctioneer's equilibrium price
// changes. agent.Base implements this to recompute its runlevel; per the
// cycle-avoidance rule, a price notification must never itself trigger a
// new bid submission.
type PriceListener interface {
	AgentID() string
	OnPriceUpdate()
}

// Auctioneer aggregates registered agents' bids into a market curve and
// publishes the resulting equilibrium price. The zero value is not
// usable; construct with NewAuctioneer.
type Auctioneer struct {
	ID       string
	minPrice Price
	maxPrice Price

	sink telemetry.Sink

	order     []string // registration order, for deterministic fan-out
	bids      map[string]Bid
	listeners map[string]PriceListener
	price     Price
}

// NewAuctioneer creates an auctioneer over the closed band [minPrice,
// maxPrice]. If id is empty a uuid is generated, mirroring Auctioneer.id
// in powermatcher.py. sink receives auctioneer_prices samples on every
// price change; pass telemetry.NullSink{} to disable.
func NewAuctioneer(id string, minPrice, maxPrice Price, sink telemetry.Sink) *Auctioneer {
	if id == "" {
		id = uuid.NewString()
	}
	if sink == nil {
		sink = telemetry.NullSink{}
	}
	return &Auctioneer{
		ID:       id,
		minPrice: minPrice,
		maxPrice: maxPrice,
		sink:      sink,
		bids:      make(map[string]Bid),
		listeners: make(map[string]PriceListener),
		price:     minPrice.Add(maxPrice).Div(decimalTwo),
	}
}

// MinPrice returns the lower bound of the auctioneer's price band.
func (a *Auctioneer) MinPrice() Price { return a.minPrice }

// MaxPrice returns the upper bound of the auctioneer's price band.
func (a *Auctioneer) MaxPrice() Price { return a.maxPrice }

// Price returns the current cached equilibrium price.
func (a *Auctioneer) Price() Price { return a.price }

// Register adds an agent to the registry, records its initial bid, and
// immediately notifies the agent of the current price. The listener is
// retained for the lifetime of the registration so later SubmitBid calls
// can fan out price updates without the caller re-supplying it.
func (a *Auctioneer) Register(id string, initialBid Bid, listener PriceListener) error {
	if _, exists := a.bids[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateAgent, id)
	}
	a.order = append(a.order, id)
	a.bids[id] = initialBid
	a.listeners[id] = listener
	listener.OnPriceUpdate()
	return nil
}

// Unregister removes an agent from the registry.
func (a *Auctioneer) Unregister(id string) error {
	if _, exists := a.bids[id]; !exists {
		return fmt.Errorf("%w: %s", ErrUnknownAgent, id)
	}
	delete(a.bids, id)
	delete(a.listeners, id)
	for i, existing := range a.order {
		if existing == id {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	return nil
}

// SubmitBid replaces the agent's last bid, recomputes the aggregate, and —
// if the equilibrium price changed — updates the cached price, emits a
// telemetry sample, and fans out a price-update notification to every
// registered agent in registration order.
func (a *Auctioneer) SubmitBid(id string, bid Bid) error {
	if _, exists := a.bids[id]; !exists {
		return fmt.Errorf("%w: %s", ErrUnknownAgent, id)
	}
	a.bids[id] = bid

	aggregate, err := a.Aggregate()
	if err != nil {
		return err
	}
	newPrice := aggregate.EquilibriumPrice()

	if newPrice.Equal(a.price) {
		return nil
	}
	a.price = newPrice

	a.sink.Write(context.Background(), telemetry.Sample{
		Measurement: "auctioneer_prices",
		Tags:        map[string]string{"auctioneer_id": a.ID},
		Fields:      map[string]float64{"price": priceFloat(newPrice)},
		Time:        time.Now(),
	})

	for _, agentID := range a.order {
		if listener, ok := a.listeners[agentID]; ok {
			listener.OnPriceUpdate()
		}
	}
	return nil
}

// Aggregate sums every currently registered bid, starting from the zero
// curve over the auctioneer's band.
func (a *Auctioneer) Aggregate() (Bid, error) {
	sum := ZeroBid(a.minPrice, a.maxPrice)
	for _, id := range a.order {
		bid := a.bids[id]
		var err error
		sum, err = sum.Add(bid)
		if err != nil {
			return Bid{}, fmt.Errorf("aggregating bid from %s: %w", id, err)
		}
	}
	return sum, nil
}

func priceFloat(p Price) float64 {
	f, _ := p.Float64()
	return f
}
