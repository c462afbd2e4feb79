package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_SeedingCreatesSymmetricLevels(t *testing.T) {
	e := New(DefaultSeedParams(), true)
	e.Seed("AAPL", 150, DefaultSeedParams())

	result := e.TryMatch(Order{OrderID: "o1", Symbol: "AAPL", Side: Buy, Qty: 100, Type: Market})
	require.True(t, result.Matched)
	assert.InDelta(t, 150.075, result.FillPrice, 1e-9)
	assert.Equal(t, 100.0, result.FillQty)
	assert.Equal(t, 0.0, result.RemainingQty)
}

func TestEngine_AutoSeedOnFirstOrder(t *testing.T) {
	e := New(DefaultSeedParams(), true)
	e.UpdateReferencePrice("TSLA", 200)

	result := e.TryMatch(Order{OrderID: "o1", Symbol: "TSLA", Side: Buy, Qty: 250, Type: Market})
	require.True(t, result.Matched)
	assert.Equal(t, 250.0, result.FillQty)
	assert.Equal(t, 0.0, result.RemainingQty)
}

func TestEngine_PartialFillWalksLevels(t *testing.T) {
	e := New(SeedParams{}, true)
	e.Seed("TSLA", 200, SeedParams{SpreadBps: 10, Depth: 2, QtyPerLevel: 100})

	result := e.TryMatch(Order{OrderID: "o1", Symbol: "TSLA", Side: Buy, Qty: 250, Type: Market})
	require.True(t, result.Matched)
	require.Len(t, result.Fills, 2)
	assert.Equal(t, 100.0, result.Fills[0].Qty)
	assert.Equal(t, 100.0, result.Fills[1].Qty)
	assert.Equal(t, 200.0, result.FillQty)
	assert.Equal(t, 50.0, result.RemainingQty)
}

func TestEngine_MarketOrderNoMatchWithoutReferencePrice(t *testing.T) {
	e := New(DefaultSeedParams(), true)

	result := e.TryMatch(Order{OrderID: "o1", Symbol: "GOOG", Side: Buy, Qty: 10, Type: Market})
	assert.False(t, result.Matched)
	assert.Equal(t, 10.0, result.RemainingQty)
}

func TestEngine_MarketOrderLegacyFallbackUsesLimitPriceHint(t *testing.T) {
	e := New(DefaultSeedParams(), true)

	result := e.TryMatch(Order{OrderID: "o1", Symbol: "GOOG", Side: Buy, Qty: 10, Type: Market, LimitPrice: 123.45})
	require.True(t, result.Matched)
	assert.Equal(t, 123.45, result.FillPrice)
	assert.Equal(t, 10.0, result.FillQty)
	assert.Equal(t, 0.0, result.RemainingQty)
}

func TestEngine_RestingLimitInsertsRemainder(t *testing.T) {
	e := New(DefaultSeedParams(), true)
	e.Seed("AAPL", 150, DefaultSeedParams())

	result := e.TryMatch(Order{OrderID: "o1", ClOrdID: "c1", Symbol: "AAPL", Side: Buy, Qty: 50, Type: Limit, LimitPrice: 140})
	assert.False(t, result.Matched)
	assert.Equal(t, 50.0, result.RemainingQty)

	ok := e.Cancel("AAPL", "o1")
	assert.True(t, ok)
}

func TestEngine_LimitNeverCrossesWorseThanLimitPrice(t *testing.T) {
	e := New(DefaultSeedParams(), true)
	e.Seed("AAPL", 150, DefaultSeedParams())

	result := e.TryMatch(Order{OrderID: "o1", Symbol: "AAPL", Side: Buy, Qty: 10000, Type: Limit, LimitPrice: 150.08})
	for _, f := range result.Fills {
		assert.LessOrEqual(t, f.Price, 150.08)
	}
}

func TestEngine_CancelUnknownSymbolReturnsFalse(t *testing.T) {
	e := New(DefaultSeedParams(), true)
	assert.False(t, e.Cancel("NOPE", "o1"))
}

func TestEngine_AutoSeedDisabledRequiresExplicitSeed(t *testing.T) {
	e := New(DefaultSeedParams(), false)
	e.UpdateReferencePrice("AAPL", 150)

	result := e.TryMatch(Order{OrderID: "o1", Symbol: "AAPL", Side: Buy, Qty: 10, Type: Market})
	assert.False(t, result.Matched)
}
