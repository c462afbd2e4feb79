package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBook_BestPriceOrdering(t *testing.T) {
	b := New("AAPL")

	b.Add(Buy, &Entry{OrderID: "o1", Price: 100.0, RemainingQty: 10, OriginalQty: 10})
	b.Add(Buy, &Entry{OrderID: "o2", Price: 101.0, RemainingQty: 5, OriginalQty: 5})
	b.Add(Buy, &Entry{OrderID: "o3", Price: 99.5, RemainingQty: 5, OriginalQty: 5})

	price, ok := b.BestBid()
	require.True(t, ok)
	assert.Equal(t, 101.0, price)

	b.Add(Sell, &Entry{OrderID: "o4", Price: 105.0, RemainingQty: 10, OriginalQty: 10})
	b.Add(Sell, &Entry{OrderID: "o5", Price: 103.0, RemainingQty: 5, OriginalQty: 5})

	price, ok = b.BestAsk()
	require.True(t, ok)
	assert.Equal(t, 103.0, price)
}

func TestBook_FIFOWithinLevel(t *testing.T) {
	b := New("AAPL")

	b.Add(Buy, &Entry{OrderID: "first", Price: 100.0, RemainingQty: 10, OriginalQty: 10})
	b.Add(Buy, &Entry{OrderID: "second", Price: 100.0, RemainingQty: 10, OriginalQty: 10})
	b.Add(Buy, &Entry{OrderID: "third", Price: 100.0, RemainingQty: 10, OriginalQty: 10})

	fills := b.ConsumeBids(15, 0, false)
	require.Len(t, fills, 2)
	assert.Equal(t, "first", fills[0].OrderID)
	assert.Equal(t, 10.0, fills[0].Qty)
	assert.Equal(t, "second", fills[1].OrderID)
	assert.Equal(t, 5.0, fills[1].Qty)

	entry, ok := b.Get("second")
	require.True(t, ok)
	assert.Equal(t, 5.0, entry.RemainingQty)

	_, ok = b.Get("first")
	assert.False(t, ok)
}

func TestBook_CancelRemovesOrderAndEmptyLevel(t *testing.T) {
	b := New("AAPL")

	b.Add(Sell, &Entry{OrderID: "o1", Price: 50.0, RemainingQty: 3, OriginalQty: 3})

	ok := b.Cancel("o1")
	assert.True(t, ok)

	_, ok = b.BestAsk()
	assert.False(t, ok)

	ok = b.Cancel("o1")
	assert.False(t, ok)

	ok = b.Cancel("does-not-exist")
	assert.False(t, ok)
}

func TestBook_ConsumeRespectsLimitPrice(t *testing.T) {
	b := New("AAPL")

	b.Add(Sell, &Entry{OrderID: "cheap", Price: 100.0, RemainingQty: 5, OriginalQty: 5})
	b.Add(Sell, &Entry{OrderID: "expensive", Price: 110.0, RemainingQty: 5, OriginalQty: 5})

	fills := b.ConsumeAsks(10, 105.0, true)
	require.Len(t, fills, 1)
	assert.Equal(t, "cheap", fills[0].OrderID)
	assert.Equal(t, 5.0, fills[0].Qty)

	_, stillThere := b.Get("expensive")
	assert.True(t, stillThere)
}

func TestBook_NeverLeavesCrossedBookObservable(t *testing.T) {
	b := New("AAPL")

	b.Add(Buy, &Entry{OrderID: "bid1", Price: 100.0, RemainingQty: 10, OriginalQty: 10})
	b.Add(Sell, &Entry{OrderID: "ask1", Price: 101.0, RemainingQty: 10, OriginalQty: 10})

	bid, bidOK := b.BestBid()
	ask, askOK := b.BestAsk()
	require.True(t, bidOK)
	require.True(t, askOK)
	assert.Less(t, bid, ask)
}

func TestBook_DepthAggregatesPerLevel(t *testing.T) {
	b := New("AAPL")

	b.Add(Buy, &Entry{OrderID: "o1", Price: 100.0, RemainingQty: 5, OriginalQty: 5})
	b.Add(Buy, &Entry{OrderID: "o2", Price: 100.0, RemainingQty: 7, OriginalQty: 7})
	b.Add(Buy, &Entry{OrderID: "o3", Price: 99.0, RemainingQty: 3, OriginalQty: 3})

	levels := b.Depth(Buy, 10)
	require.Len(t, levels, 2)
	assert.Equal(t, 100.0, levels[0].Price)
	assert.Equal(t, 12.0, levels[0].Qty)
	assert.Equal(t, 2, levels[0].OrderCount)
	assert.Equal(t, 99.0, levels[1].Price)
}
