// Package agent implements the device agents that bid into a
// powermatcher.Auctioneer: a shared Base handling bid resubmission,
// runlevel tracking, and edge-triggered telemetry, plus the four device
// behaviors from agents.py (load, PV, imbalance, battery).
package agent

import (
	"context"
	"math/rand"
	"time"

	"powermatcher/internal/powermatcher"
	"powermatcher/internal/telemetry"
)

// Snapshot is the simulated-time context handed to every agent on each
// environment tick. pythonmatcher reaches a module-level `environment`
// singleton for this; passing it explicitly here is the interface-based
// substitute the redesign calls for, so agents stay unit-testable without
// a running driver.
type Snapshot struct {
	CurrentTime time.Time
	Interval    time.Duration
}

// StateUpdater is implemented by every device agent. The simulation
// driver calls HandleStateUpdate once per tick, in auctioneer
// registration order, mirroring environment.py's main loop.
type StateUpdater interface {
	AgentID() string
	HandleStateUpdate(snap Snapshot)
}

// RandSource supplies the uniform noise LoadAgent and PVAgent mix into
// their bids. Defaults to the math/rand global source; tests inject a
// fixed source for deterministic bid assertions.
type RandSource interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// RunlevelHook lets a concrete agent extend Base.DoRunlevelUpdate, the Go
// substitute for overriding a virtual method: BatteryAgent needs to update
// its charge state on every runlevel change the way
// BatteryAgent.do_runlevel_update does in agents.py. Concrete agents call
// SetHook(self) once, after construction.
type RunlevelHook interface {
	DoRunlevelUpdate()
}

// Base implements the bookkeeping every device agent shares: resubmitting
// a changed bid, recomputing runlevel from the current price, and
// edge-triggered power telemetry. Concrete agents embed Base and
// implement StateUpdater themselves.
type Base struct {
	id         string
	auctioneer *powermatcher.Auctioneer
	sink       telemetry.Sink
	rand       RandSource
	hook       RunlevelHook

	lastBid      powermatcher.Bid
	currentPower powermatcher.Quantity
	now          time.Time
}

// NewBase constructs a device agent's shared state without registering it
// with its auctioneer. If sink is nil telemetry is discarded; if rnd is
// nil the math/rand global source is used. The caller must call SetHook,
// which performs the registration, once construction of the concrete
// agent is complete.
func NewBase(auctioneer *powermatcher.Auctioneer, id string, initialBid powermatcher.Bid, sink telemetry.Sink, rnd RandSource) *Base {
	if sink == nil {
		sink = telemetry.NullSink{}
	}
	if rnd == nil {
		rnd = globalRand{}
	}
	return &Base{
		id:         id,
		auctioneer: auctioneer,
		sink:       sink,
		rand:       rnd,
		lastBid:    initialBid,
	}
}

// SetHook installs the concrete agent as the runlevel-update delegate and
// performs the auctioneer registration that NewBase defers. Must be
// called exactly once, after the concrete agent value is fully built.
func (b *Base) SetHook(hook RunlevelHook) error {
	b.hook = hook
	return b.auctioneer.Register(b.id, b.lastBid, b)
}

// AgentID implements powermatcher.PriceListener and agent.StateUpdater.
func (b *Base) AgentID() string { return b.id }

// Auctioneer returns the market this agent bids into.
func (b *Base) Auctioneer() *powermatcher.Auctioneer { return b.auctioneer }

// CurrentPower returns the last power level this agent settled at.
// Positive is consumption, negative is production.
func (b *Base) CurrentPower() powermatcher.Quantity { return b.currentPower }

// LastBid returns the most recently submitted bid curve.
func (b *Base) LastBid() powermatcher.Bid { return b.lastBid }

// Rand returns the injected noise source.
func (b *Base) Rand() RandSource { return b.rand }

// beginTick records the simulated time for this tick, used to timestamp
// any telemetry emitted before the next tick begins.
func (b *Base) beginTick(snap Snapshot) { b.now = snap.CurrentTime }

// OnPriceUpdate implements powermatcher.PriceListener. Per the
// cycle-avoidance rule, this only recomputes runlevel — it must never
// submit a new bid.
func (b *Base) OnPriceUpdate() {
	b.hook.DoRunlevelUpdate()
}

// DoBidUpdate replaces the agent's bid with the auctioneer if it differs
// from the last submitted curve, then recomputes runlevel against it.
// Mirrors BaseAgent.do_bid_update in agents.py.
func (b *Base) DoBidUpdate(bid powermatcher.Bid) error {
	if bid.Equal(b.lastBid) {
		return nil
	}
	b.lastBid = bid
	err := b.auctioneer.SubmitBid(b.id, bid)
	b.hook.DoRunlevelUpdate()
	return err
}

// DoRunlevelUpdate sets current power to whatever the last bid demands at
// the auctioneer's current price. Concrete agents that need additional
// bookkeeping on a runlevel change (BatteryAgent's charge state) call this
// first, via Base.DoRunlevelUpdate(), and then do their own update.
func (b *Base) DoRunlevelUpdate() {
	b.setCurrentPower(b.lastBid.FindQuantity(b.auctioneer.Price()))
}

// setCurrentPower applies the edge-triggered telemetry pattern from
// BaseAgent.current_power in powermatcher.py: only agents that actually
// change power level emit a sample.
func (b *Base) setCurrentPower(p powermatcher.Quantity) {
	if p.Equal(b.currentPower) {
		return
	}
	b.currentPower = p
	f, _ := p.Float64()

	ts := b.now
	if ts.IsZero() {
		ts = time.Now()
	}
	b.sink.Write(context.Background(), telemetry.Sample{
		Measurement: "deviceagent_power",
		Tags: map[string]string{
			"deviceagent_id": b.id,
			"auctioneer_id":  b.auctioneer.ID,
		},
		Fields: map[string]float64{"power": f},
		Time:   ts,
	})
}
