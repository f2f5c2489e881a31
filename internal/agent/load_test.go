package agent

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powermatcher/internal/powermatcher"
)

type fixedRand struct{ v float64 }

func (f fixedRand) Float64() float64 { return f.v }

func newTestAuctioneer() *powermatcher.Auctioneer {
	return powermatcher.NewAuctioneer("test", decimal.Zero, decimal.NewFromInt(1000), nil)
}

func TestLoadAgent_BidsLoadWithNoise(t *testing.T) {
	a := newTestAuctioneer()

	agent, err := NewLoadAgent(a, "", decimal.NewFromInt(1000), decimal.NewFromFloat(0.1), nil, fixedRand{v: 0.5})
	require.NoError(t, err)

	agent.HandleStateUpdate(Snapshot{CurrentTime: time.Now(), Interval: time.Minute})

	// 1000 * (1 + 0.1*0.5) = 1050
	want := decimal.NewFromFloat(1050)
	got := agent.LastBid().FindQuantity(decimal.NewFromInt(500))
	assert.True(t, got.Equal(want), "got %s want %s", got, want)
}

func TestLoadAgent_DefaultIDIsPrefixed(t *testing.T) {
	a := newTestAuctioneer()
	agent, err := NewLoadAgent(a, "", decimal.NewFromInt(1000), decimal.NewFromFloat(0.1), nil, fixedRand{v: 0})
	require.NoError(t, err)
	assert.Contains(t, agent.AgentID(), "LoadAgent-")
}
