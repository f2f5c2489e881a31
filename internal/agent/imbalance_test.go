package agent

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImbalanceAgent_DefaultLadder(t *testing.T) {
	a := newTestAuctioneer() // band [0, 1000]
	imb, err := NewImbalanceAgent(a, "", nil)
	require.NoError(t, err)

	bid := imb.LastBid()
	// Below 10% of band (100): consumes at consumptionPower.
	assert.True(t, bid.FindQuantity(decimal.NewFromInt(50)).Equal(decimal.NewFromInt(5000)))
	// Between 10% and 90%: idle.
	assert.True(t, bid.FindQuantity(decimal.NewFromInt(500)).Equal(decimal.Zero))
	// Above 90% of band (900): produces.
	assert.True(t, bid.FindQuantity(decimal.NewFromInt(950)).Equal(decimal.NewFromInt(-5000)))
}

func TestImbalanceAgent_OverridesApply(t *testing.T) {
	a := newTestAuctioneer()
	imb, err := NewImbalanceAgent(a, "", nil,
		WithConsumptionPower(decimal.NewFromInt(2000)),
		WithProductionPower(decimal.NewFromInt(3000)),
	)
	require.NoError(t, err)

	bid := imb.LastBid()
	assert.True(t, bid.FindQuantity(decimal.NewFromInt(50)).Equal(decimal.NewFromInt(2000)))
	assert.True(t, bid.FindQuantity(decimal.NewFromInt(950)).Equal(decimal.NewFromInt(-3000)))
}
