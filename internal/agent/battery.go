package agent

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"powermatcher/internal/logx"
	"powermatcher/internal/powermatcher"
	"powermatcher/internal/telemetry"
)

// ChargeState reports what a BatteryAgent is currently doing, derived
// from the sign of its current power. Grounded on agents.py's ChargeState
// enum.
type ChargeState int

const (
	Idle ChargeState = iota
	Charging
	Discharging
)

func (c ChargeState) String() string {
	switch c {
	case Charging:
		return "charging"
	case Discharging:
		return "discharging"
	default:
		return "idle"
	}
}

// BatteryAgent bids a ten-step ladder shaped by its own state of charge:
// steep toward charging when nearly empty, steep toward discharging when
// nearly full, and a full-range ladder at 50%. Grounded on agents.py's
// BatteryAgent and BatteryAgent.calculate_bid.
type BatteryAgent struct {
	*Base

	capacityWh         decimal.Decimal // usable energy capacity, in watt-hours
	maxChargePower     decimal.Decimal
	maxDischargePower  decimal.Decimal
	biddingLadderSteps int

	soc         float64 // state of charge, 0..1
	chargeState ChargeState
}

// BatteryOption overrides one of BatteryAgent's defaulted parameters.
type BatteryOption func(*batteryParams)

type batteryParams struct {
	soc                float64
	capacityWh         decimal.Decimal
	maxChargePower     decimal.Decimal
	maxDischargePower  decimal.Decimal
	biddingLadderSteps int
}

// WithInitialSoC sets the starting state of charge (default 0.5).
func WithInitialSoC(soc float64) BatteryOption {
	return func(p *batteryParams) { p.soc = soc }
}

// WithMaxChargePower overrides the maximum charge rate (default 4000W).
func WithMaxChargePower(w decimal.Decimal) BatteryOption {
	return func(p *batteryParams) { p.maxChargePower = w }
}

// WithMaxDischargePower overrides the maximum discharge rate (default 3000W).
func WithMaxDischargePower(w decimal.Decimal) BatteryOption {
	return func(p *batteryParams) { p.maxDischargePower = w }
}

// WithBiddingLadderSteps overrides the number of intermediate ladder
// steps between the charge and discharge extremes (default 10).
func WithBiddingLadderSteps(n int) BatteryOption {
	return func(p *batteryParams) { p.biddingLadderSteps = n }
}

// NewBatteryAgent constructs and registers a BatteryAgent. capacityWh is
// the usable energy capacity in watt-hours (50000 for a 50kWh battery).
func NewBatteryAgent(auctioneer *powermatcher.Auctioneer, id string, capacityWh decimal.Decimal, sink telemetry.Sink, rnd RandSource, opts ...BatteryOption) (*BatteryAgent, error) {
	if id == "" {
		id = "BatteryAgent-" + uuid.NewString()
	}
	if sink == nil {
		sink = telemetry.NullSink{}
	}

	params := batteryParams{
		soc:                0.5,
		capacityWh:         capacityWh,
		maxChargePower:     decimal.NewFromInt(4000),
		maxDischargePower:  decimal.NewFromInt(3000),
		biddingLadderSteps: 10,
	}
	for _, opt := range opts {
		opt(&params)
	}

	a := &BatteryAgent{
		capacityWh:         params.capacityWh,
		maxChargePower:     params.maxChargePower,
		maxDischargePower:  params.maxDischargePower,
		biddingLadderSteps: params.biddingLadderSteps,
		chargeState:        Idle,
	}

	initial := powermatcher.ScalarBid(auctioneer.MinPrice(), auctioneer.MaxPrice(), decimal.Zero)
	a.Base = NewBase(auctioneer, id, initial, sink, rnd)
	if err := a.Base.SetHook(a); err != nil {
		return nil, err
	}

	// Mirrors BatteryAgent.__init__'s post-super() soc assignment: the
	// zero bid registered above stands until the first HandleStateUpdate
	// computes a real ladder against this starting state of charge.
	a.setSoC(clampSoC(params.soc))

	return a, nil
}

// SoC returns the current state of charge, in [0, 1].
func (a *BatteryAgent) SoC() float64 { return a.soc }

// ChargeState returns what the battery is currently doing.
func (a *BatteryAgent) ChargeState() ChargeState { return a.chargeState }

func clampSoC(soc float64) float64 {
	if soc < 0 {
		return 0
	}
	if soc > 1 {
		return 1
	}
	return soc
}

// setSoC applies the edge-triggered telemetry pattern from
// BatteryAgent.soc's property setter in agents.py: measurement
// deviceagent_soc, field "power" — the original reuses the power field
// name for the soc value, and this mirrors that wire shape exactly.
func (a *BatteryAgent) setSoC(soc float64) {
	soc = clampSoC(soc)
	if soc == a.soc {
		return
	}
	a.soc = soc

	ts := a.now
	if ts.IsZero() {
		ts = time.Now()
	}
	a.sink.Write(context.Background(), telemetry.Sample{
		Measurement: "deviceagent_soc",
		Tags: map[string]string{
			"agent_id":      a.AgentID(),
			"auctioneer_id": a.Auctioneer().ID,
		},
		Fields: map[string]float64{"power": soc},
		Time:   ts,
	})
}

// HandleStateUpdate integrates current power into state of charge over
// the elapsed interval, then recomputes the bidding ladder and resubmits.
func (a *BatteryAgent) HandleStateUpdate(snap Snapshot) {
	a.beginTick(snap)

	capacityJoules := a.capacityWh.Mul(decimal.NewFromInt(3600))
	powerFloat, _ := a.CurrentPower().Float64()
	capacityFloat, _ := capacityJoules.Float64()
	if capacityFloat != 0 {
		a.setSoC(a.soc + powerFloat*snap.Interval.Seconds()/capacityFloat)
	}

	bid, err := a.calculateBid()
	if err != nil {
		logx.Errorf("battery agent %s: calculating bid: %v", a.AgentID(), err)
		return
	}
	if err := a.DoBidUpdate(bid); err != nil {
		logx.Errorf("battery agent %s: submitting bid: %v", a.AgentID(), err)
	}
	logx.Debugf("battery agent %s: soc=%.4f bid=%s", a.AgentID(), a.soc, bid)

	a.DoRunlevelUpdate()
}

// DoRunlevelUpdate extends Base.DoRunlevelUpdate with charge-state
// tracking, mirroring BatteryAgent.do_runlevel_update's super() call
// followed by the charge_state assignment.
func (a *BatteryAgent) DoRunlevelUpdate() {
	a.Base.DoRunlevelUpdate()

	switch {
	case a.CurrentPower().IsPositive():
		a.chargeState = Charging
	case a.CurrentPower().IsNegative():
		a.chargeState = Discharging
	default:
		a.chargeState = Idle
	}
}

// calculateBid builds the bidding ladder for the current state of
// charge, implementing the four branches from
// BatteryAgent.calculate_bid: pinned-charge at soc<=0, pinned-discharge
// at soc>=1, a charge-leaning ladder below 50%, and a discharge-leaning
// ladder above it.
func (a *BatteryAgent) calculateBid() (powermatcher.Bid, error) {
	minBand := a.Auctioneer().MinPrice()
	maxBand := a.Auctioneer().MaxPrice()

	if a.soc <= 0 {
		if a.Auctioneer().Price().Equal(maxBand) {
			return powermatcher.ScalarBid(minBand, maxBand, decimal.Zero), nil
		}
		return powermatcher.ScalarBid(minBand, maxBand, a.maxChargePower), nil
	}
	if a.soc >= 1 {
		if a.Auctioneer().Price().Equal(minBand) {
			return powermatcher.ScalarBid(minBand, maxBand, decimal.Zero), nil
		}
		return powermatcher.ScalarBid(minBand, maxBand, a.maxDischargePower.Neg()), nil
	}

	var ladderMin, ladderMax decimal.Decimal
	if a.soc <= 0.5 {
		// Bid leans toward charging: the ladder spans [ladderMin, maxBand],
		// which narrows toward maxBand as soc approaches 0 and widens to the
		// full band at 0.5, so a near-empty battery bids to charge at almost
		// every price.
		ladderMin = maxBand.Sub(maxBand.Sub(minBand).Mul(decimal.NewFromFloat(a.soc / 0.5)))
		ladderMax = maxBand
	} else {
		// Bid leans toward discharging: shrink the band from the bottom as
		// soc approaches 1.
		ladderMin = minBand
		ladderMax = minBand.Add(maxBand.Sub(minBand).Mul(decimal.NewFromFloat(2 * (1 - a.soc))))
	}

	steps := a.biddingLadderSteps
	chargeStep := a.maxChargePower.Add(a.maxDischargePower).Div(decimal.NewFromInt(int64(steps + 1)))
	quantities := make([]decimal.Decimal, steps+1)
	for n := 0; n <= steps; n++ {
		quantities[n] = a.maxChargePower.Sub(decimal.NewFromInt(int64(n)).Mul(chargeStep))
	}

	priceStep := ladderMax.Sub(ladderMin).Div(decimal.NewFromInt(int64(steps + 1)))
	prices := make([]decimal.Decimal, steps)
	for n := 1; n <= steps; n++ {
		prices[n-1] = ladderMin.Add(decimal.NewFromInt(int64(n)).Mul(priceStep))
	}

	return powermatcher.NewBid(minBand, maxBand, quantities, prices)
}
