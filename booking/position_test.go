package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPosition_BuyThenSellAtSamePriceFlattensWithNoPnL(t *testing.T) {
	p := &Position{Symbol: "X"}
	p.ApplyFill(Buy, 100, 10)
	p.ApplyFill(Sell, 100, 10)

	assert.Equal(t, 0.0, p.Quantity)
	assert.Equal(t, 0.0, p.AvgPrice)
	assert.Equal(t, 0.0, p.CostBasis)
	assert.Equal(t, 0.0, p.RealizedPnL)
}

func TestPosition_BuyThenSellAtProfit(t *testing.T) {
	p := &Position{Symbol: "X"}
	p.ApplyFill(Buy, 100, 10)
	p.ApplyFill(Sell, 100, 12)

	assert.Equal(t, 200.0, p.RealizedPnL)
	assert.Equal(t, 0.0, p.Quantity)
}

func TestPosition_SellThenBuyAtProfit(t *testing.T) {
	p := &Position{Symbol: "X"}
	p.ApplyFill(Sell, 100, 12)
	p.ApplyFill(Buy, 100, 10)

	assert.Equal(t, 200.0, p.RealizedPnL)
	assert.Equal(t, 0.0, p.Quantity)
}

func TestPosition_TwoBuysAverage(t *testing.T) {
	p := &Position{Symbol: "X"}
	p.ApplyFill(Buy, 100, 10)
	p.ApplyFill(Buy, 50, 16)

	assert.Equal(t, 150.0, p.Quantity)
	assert.InDelta(t, (100*10.0+50*16.0)/150.0, p.AvgPrice, 1e-9)
	assert.InDelta(t, p.Quantity*p.AvgPrice, p.CostBasis, 1e-9)
}

func TestPosition_FlipLongToShort(t *testing.T) {
	p := &Position{Symbol: "X"}
	p.ApplyFill(Buy, 100, 10)
	p.ApplyFill(Sell, 150, 12)

	assert.Equal(t, 200.0, p.RealizedPnL)
	assert.Equal(t, -50.0, p.Quantity)
	assert.Equal(t, 12.0, p.AvgPrice)
	assert.Equal(t, 50.0*12.0, p.CostBasis)
}

func TestPosition_FlipShortToLong(t *testing.T) {
	p := &Position{Symbol: "X"}
	p.ApplyFill(Sell, 100, 10)
	p.ApplyFill(Buy, 150, 8)

	assert.Equal(t, 200.0, p.RealizedPnL)
	assert.Equal(t, 50.0, p.Quantity)
	assert.Equal(t, 8.0, p.AvgPrice)
}

func TestPosition_CostBasisInvariantHeldThroughoutAdds(t *testing.T) {
	p := &Position{Symbol: "X"}
	p.ApplyFill(Sell, 30, 5)
	p.ApplyFill(Sell, 20, 6)

	assert.Equal(t, -50.0, p.Quantity)
	assert.InDelta(t, -p.Quantity*p.AvgPrice, p.CostBasis, 1e-9)
}

func TestBookKeeper_BooksTradeAndTracksPosition(t *testing.T) {
	k := NewBookKeeper()
	k.BookTrade(Trade{TradeID: "T-00001", Symbol: "X", Side: Buy, Quantity: 100, Price: 10})
	k.BookTrade(Trade{TradeID: "T-00002", Symbol: "X", Side: Sell, Quantity: 150, Price: 12})

	pos, ok := k.GetPosition("X")
	assert.True(t, ok)
	assert.Equal(t, 200.0, pos.RealizedPnL)
	assert.Equal(t, -50.0, pos.Quantity)

	assert.Equal(t, 2, k.TradeCount())
	assert.Len(t, k.GetTrades(), 2)

	_, ok = k.GetPosition("UNKNOWN")
	assert.False(t, ok)
}
