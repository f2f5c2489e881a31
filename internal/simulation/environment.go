// Package simulation implements the driver that advances simulated time
// and calls every registered agent's HandleStateUpdate once per tick,
// the Go analogue of environment.py's SimulationEnvironment.
package simulation

import (
	"context"
	"time"

	"powermatcher/internal/agent"
	"powermatcher/internal/logx"
)

// AuctioneerGroup is the set of agents bidding into one auctioneer. The
// simulation driver only needs the agent list in registration order; it
// has no reason to depend on powermatcher.Auctioneer directly.
type AuctioneerGroup struct {
	ID     string
	Agents []agent.StateUpdater
}

// Environment advances simulated time from StartTime to StopTime in
// fixed Interval steps, driving every registered group's agents each
// tick. Unlike environment.py's module-level singleton, Environment is
// an explicit, constructible value with no package-global state.
type Environment struct {
	StartTime time.Time
	StopTime  time.Time
	Interval  time.Duration

	groups []*AuctioneerGroup
}

// NewEnvironment constructs a driver over [startTime, stopTime] stepping
// by interval. A zero interval is rejected by Run rather than looping
// forever.
func NewEnvironment(startTime, stopTime time.Time, interval time.Duration) *Environment {
	return &Environment{StartTime: startTime, StopTime: stopTime, Interval: interval}
}

// RegisterAuctioneer adds a group of agents to be driven each tick, in
// the order auctioneers were registered — mirroring
// SimulationEnvironment.register_auctioneer.
func (e *Environment) RegisterAuctioneer(group *AuctioneerGroup) {
	e.groups = append(e.groups, group)
}

// UnregisterAuctioneer removes a previously registered group by ID.
func (e *Environment) UnregisterAuctioneer(id string) {
	for i, g := range e.groups {
		if g.ID == id {
			e.groups = append(e.groups[:i], e.groups[i+1:]...)
			return
		}
	}
}

// Run advances simulated time until StopTime is reached or ctx is
// canceled, calling HandleStateUpdate on every agent of every registered
// group, in registration order, on each tick — the same nested loop as
// SimulationEnvironment.start.
func (e *Environment) Run(ctx context.Context) error {
	if e.Interval <= 0 {
		return errZeroInterval
	}

	current := e.StartTime
	for !current.After(e.StopTime) {
		select {
		case <-ctx.Done():
			logx.Infof("simulation: stopped at %s: %v", current, ctx.Err())
			return ctx.Err()
		default:
		}

		snap := agent.Snapshot{CurrentTime: current, Interval: e.Interval}
		for _, group := range e.groups {
			for _, a := range group.Agents {
				a.HandleStateUpdate(snap)
			}
		}

		current = current.Add(e.Interval)
	}

	logx.Infof("simulation: completed at %s", current)
	return nil
}
