package agent

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"powermatcher/internal/logx"
	"powermatcher/internal/powermatcher"
	"powermatcher/internal/telemetry"
)

// LoadAgent bids a roughly constant consumption load, perturbed by
// uniform noise on every tick. Grounded on agents.py's LoadAgent.
type LoadAgent struct {
	*Base
	load        decimal.Decimal
	noiseFactor decimal.Decimal
}

// NewLoadAgent constructs and registers a LoadAgent. load is the nominal
// consumption in watts; noiseFactor is the fractional noise amplitude
// mixed on top of it (0.1 matches agents.py's default).
func NewLoadAgent(auctioneer *powermatcher.Auctioneer, id string, load, noiseFactor decimal.Decimal, sink telemetry.Sink, rnd RandSource) (*LoadAgent, error) {
	if id == "" {
		id = "LoadAgent-" + uuid.NewString()
	}
	initial := powermatcher.ScalarBid(auctioneer.MinPrice(), auctioneer.MaxPrice(), decimal.Zero)

	a := &LoadAgent{load: load, noiseFactor: noiseFactor}
	a.Base = NewBase(auctioneer, id, initial, sink, rnd)
	if err := a.Base.SetHook(a); err != nil {
		return nil, err
	}
	return a, nil
}

// HandleStateUpdate recomputes the bid from load and fresh noise, then
// resubmits it and recomputes runlevel — mirroring LoadAgent's two
// separate calls in agents.py rather than folding them into one.
func (a *LoadAgent) HandleStateUpdate(snap Snapshot) {
	a.beginTick(snap)

	noise := decimal.NewFromFloat(1).Add(a.noiseFactor.Mul(decimal.NewFromFloat(a.Rand().Float64())))
	newPower := a.load.Mul(noise)

	bid := powermatcher.ScalarBid(a.Auctioneer().MinPrice(), a.Auctioneer().MaxPrice(), newPower)
	if err := a.DoBidUpdate(bid); err != nil {
		logx.Errorf("load agent %s: submitting bid: %v", a.AgentID(), err)
	}
	a.DoRunlevelUpdate()
}
