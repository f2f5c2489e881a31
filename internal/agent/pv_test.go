package agent

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPVAgent_ZeroAtMidnight(t *testing.T) {
	a := newTestAuctioneer()
	pv, err := NewPVAgent(a, "", decimal.NewFromInt(3000), decimal.Zero, nil, fixedRand{v: 0})
	require.NoError(t, err)

	midnight := time.Date(2026, 6, 21, 0, 0, 0, 0, time.UTC)
	pv.HandleStateUpdate(Snapshot{CurrentTime: midnight, Interval: time.Minute})

	got := pv.LastBid().FindQuantity(decimal.NewFromInt(500))
	assert.True(t, got.Equal(decimal.Zero), "got %s", got)
}

func TestPVAgent_ProducesAtNoon(t *testing.T) {
	a := newTestAuctioneer()
	pv, err := NewPVAgent(a, "", decimal.NewFromInt(3000), decimal.Zero, nil, fixedRand{v: 0})
	require.NoError(t, err)

	noon := time.Date(2026, 6, 21, 12, 0, 0, 0, time.UTC)
	pv.HandleStateUpdate(Snapshot{CurrentTime: noon, Interval: time.Minute})

	got := pv.LastBid().FindQuantity(decimal.NewFromInt(500))
	assert.True(t, got.Equal(decimal.NewFromInt(-3000)), "got %s", got)
}
