package agent

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"powermatcher/internal/logx"
	"powermatcher/internal/powermatcher"
	"powermatcher/internal/telemetry"
)

// PVAgent bids a production curve shaped like a sine arc over daylight
// hours, perturbed by uniform noise. Grounded on agents.py's PVAgent.
type PVAgent struct {
	*Base
	peakPower   decimal.Decimal
	noiseFactor decimal.Decimal
}

// NewPVAgent constructs and registers a PVAgent. peakPower is the panel's
// rated output in watts (production bids are negative power).
func NewPVAgent(auctioneer *powermatcher.Auctioneer, id string, peakPower, noiseFactor decimal.Decimal, sink telemetry.Sink, rnd RandSource) (*PVAgent, error) {
	if id == "" {
		id = "PVAgent-" + uuid.NewString()
	}
	initial := powermatcher.ScalarBid(auctioneer.MinPrice(), auctioneer.MaxPrice(), decimal.Zero)

	a := &PVAgent{peakPower: peakPower, noiseFactor: noiseFactor}
	a.Base = NewBase(auctioneer, id, initial, sink, rnd)
	if err := a.Base.SetHook(a); err != nil {
		return nil, err
	}
	return a, nil
}

// HandleStateUpdate recomputes production from the simulated time of day.
// dayPeriod runs from 0 to 2π over one simulated day; shifting by -π/2
// puts the sine's peak at local noon and its trough (clamped to zero) at
// night, the same shape agents.py's PVAgent produces.
func (a *PVAgent) HandleStateUpdate(snap Snapshot) {
	a.beginTick(snap)

	midnight := time.Date(snap.CurrentTime.Year(), snap.CurrentTime.Month(), snap.CurrentTime.Day(), 0, 0, 0, 0, snap.CurrentTime.Location())
	secondsSinceMidnight := snap.CurrentTime.Sub(midnight).Seconds()
	dayPeriod := secondsSinceMidnight * 2 * math.Pi / (24 * 3600)

	sunFraction := math.Max(math.Sin(dayPeriod-math.Pi/2), 0)
	noise := decimal.NewFromFloat(1).Add(a.noiseFactor.Mul(decimal.NewFromFloat(a.Rand().Float64())))
	newPower := a.peakPower.Neg().Mul(decimal.NewFromFloat(sunFraction)).Mul(noise)

	bid := powermatcher.ScalarBid(a.Auctioneer().MinPrice(), a.Auctioneer().MaxPrice(), newPower)
	if err := a.DoBidUpdate(bid); err != nil {
		logx.Errorf("pv agent %s: submitting bid: %v", a.AgentID(), err)
	}
	a.DoRunlevelUpdate()
}
