// Package matching implements the per-symbol matching engine: it routes
// incoming orders to a market-order walk, a marketable-limit cross, or
// resting-limit insertion, and can lazily seed synthetic liquidity
// around a reference price when a symbol has no book yet.
package matching

import (
	"fmt"

	"github.com/tradecore/tradecore/book"
)

// Side mirrors book.Side so callers outside the book package don't
// need to import it just to describe an order.
type Side = book.Side

const (
	Buy  = book.Buy
	Sell = book.Sell
)

// OrderType distinguishes a market order, which consumes liquidity
// unconditionally, from a limit order, which crosses only within its
// limit price and rests any unfilled remainder.
type OrderType int8

const (
	Market OrderType = iota
	Limit
)

// Order is what the engine needs to attempt a match. LimitPrice is
// meaningful only when Type == Limit, except for the market-order
// fallback described in TryMatch.
type Order struct {
	OrderID    string
	ClOrdID    string
	Symbol     string
	Side       Side
	Qty        float64
	Type       OrderType
	LimitPrice float64
}

// MatchResult reports the outcome of TryMatch.
type MatchResult struct {
	Matched      bool
	FillPrice    float64
	FillQty      float64
	RemainingQty float64
	Fills        []book.Fill
}

// SeedParams configures synthetic liquidity seeding. Zero or negative
// fields are replaced: by New with the values from DefaultSeedParams,
// and by Seed with the engine's own seed parameters.
type SeedParams struct {
	SpreadBps   float64
	Depth       int
	QtyPerLevel float64
}

// DefaultSeedParams matches the engine's out-of-the-box seeding
// behavior: a 10bps spread, 5 levels deep, 1000 units per level.
func DefaultSeedParams() SeedParams {
	return SeedParams{SpreadBps: 10, Depth: 5, QtyPerLevel: 1000}
}

// Engine holds one book per symbol plus a table of reference prices
// used to auto-seed a symbol's book the first time an order for it
// arrives.
type Engine struct {
	books      map[string]*book.Book
	refPrices  map[string]float64
	seedParams SeedParams
	autoSeed   bool
}

// New creates a matching engine. autoSeed controls whether a
// registered reference price automatically seeds a symbol's book the
// first time it is needed; disabling it requires an explicit Seed call
// before orders on that symbol can match.
func New(seedParams SeedParams, autoSeed bool) *Engine {
	if seedParams.SpreadBps <= 0 {
		seedParams.SpreadBps = DefaultSeedParams().SpreadBps
	}
	if seedParams.Depth <= 0 {
		seedParams.Depth = DefaultSeedParams().Depth
	}
	if seedParams.QtyPerLevel <= 0 {
		seedParams.QtyPerLevel = DefaultSeedParams().QtyPerLevel
	}
	return &Engine{
		books:      make(map[string]*book.Book),
		refPrices:  make(map[string]float64),
		seedParams: seedParams,
		autoSeed:   autoSeed,
	}
}

// bookFor returns the book for symbol, creating it (and auto-seeding it
// if configured) on first access.
func (e *Engine) bookFor(symbol string) *book.Book {
	b, ok := e.books[symbol]
	if ok {
		return b
	}

	b = book.New(symbol)
	e.books[symbol] = b

	if e.autoSeed {
		if ref, ok := e.refPrices[symbol]; ok {
			e.seedBook(b, ref, e.seedParams)
		}
	}

	return b
}

// UpdateReferencePrice stores the last-known market price hint for
// symbol. It does not touch an existing book.
func (e *Engine) UpdateReferencePrice(symbol string, price float64) {
	e.refPrices[symbol] = price
}

// ReferencePrice returns the stored reference price hint for symbol,
// if any.
func (e *Engine) ReferencePrice(symbol string) (float64, bool) {
	p, ok := e.refPrices[symbol]
	return p, ok
}

// Seed seeds synthetic liquidity into symbol's book around refPrice,
// creating the book if it does not exist yet. Calling Seed directly
// bypasses the autoSeed toggle, so it also works when auto-seeding is
// disabled.
func (e *Engine) Seed(symbol string, refPrice float64, params SeedParams) {
	if params.SpreadBps <= 0 {
		params.SpreadBps = e.seedParams.SpreadBps
	}
	if params.Depth <= 0 {
		params.Depth = e.seedParams.Depth
	}
	if params.QtyPerLevel <= 0 {
		params.QtyPerLevel = e.seedParams.QtyPerLevel
	}

	b, ok := e.books[symbol]
	if !ok {
		b = book.New(symbol)
		e.books[symbol] = b
	}
	e.seedBook(b, refPrice, params)
}

// seedBook lays synthetic bid/ask levels into b around refPrice.
// half_spread = refPrice * spreadBps / 20000 (spreadBps is the full
// bid-ask spread; dividing by 20000 instead of 10000 yields the half).
func (e *Engine) seedBook(b *book.Book, refPrice float64, params SeedParams) {
	halfSpread := refPrice * params.SpreadBps / 20000
	tick := halfSpread
	if tick <= 0 {
		tick = 0.01
	}

	for i := 0; i < params.Depth; i++ {
		bidPrice := refPrice - halfSpread - float64(i)*tick
		askPrice := refPrice + halfSpread + float64(i)*tick

		b.Add(book.Buy, &book.Entry{
			OrderID:      fmt.Sprintf("SEED-B-%s-%d", b.Symbol, i),
			Price:        bidPrice,
			RemainingQty: params.QtyPerLevel,
			OriginalQty:  params.QtyPerLevel,
		})
		b.Add(book.Sell, &book.Entry{
			OrderID:      fmt.Sprintf("SEED-A-%s-%d", b.Symbol, i),
			Price:        askPrice,
			RemainingQty: params.QtyPerLevel,
			OriginalQty:  params.QtyPerLevel,
		})
	}
}

// Cancel forwards to the book's cancel for symbol. Returns false if
// the symbol has no book yet or the order id is unknown.
func (e *Engine) Cancel(symbol, orderID string) bool {
	b, ok := e.books[symbol]
	if !ok {
		return false
	}
	return b.Cancel(orderID)
}

// TryMatch routes order to a market walk, a marketable-limit cross, or
// resting-limit insertion, per the order's type and side. A market
// order that finds no liquidity but carries a positive LimitPrice is
// filled in full at LimitPrice (the legacy fallback).
func (e *Engine) TryMatch(order Order) MatchResult {
	b := e.bookFor(order.Symbol)

	if order.Type == Market {
		return e.matchMarket(b, order)
	}
	return e.matchLimit(b, order)
}

func (e *Engine) matchMarket(b *book.Book, order Order) MatchResult {
	var fills []book.Fill
	if order.Side == Buy {
		fills = b.ConsumeAsks(order.Qty, 0, false)
	} else {
		fills = b.ConsumeBids(order.Qty, 0, false)
	}

	if len(fills) == 0 && order.LimitPrice > 0 {
		// Legacy MVP fallback: no book liquidity, but the caller
		// supplied a price to fill at synthetically.
		fill := book.Fill{OrderID: "", ClOrdID: "", Price: order.LimitPrice, Qty: order.Qty}
		return MatchResult{
			Matched:      true,
			FillPrice:    fill.Price,
			FillQty:      fill.Qty,
			RemainingQty: 0,
			Fills:        []book.Fill{fill},
		}
	}

	return aggregateResult(fills, order.Qty)
}

func (e *Engine) matchLimit(b *book.Book, order Order) MatchResult {
	var fills []book.Fill
	remaining := order.Qty

	if order.Side == Buy {
		for remaining > 0 {
			askPrice, ok := b.BestAsk()
			if !ok || askPrice > order.LimitPrice {
				break
			}
			taken := b.ConsumeAsks(remaining, order.LimitPrice, true)
			if len(taken) == 0 {
				break
			}
			fills = append(fills, taken...)
			remaining -= sumQty(taken)
		}
	} else {
		for remaining > 0 {
			bidPrice, ok := b.BestBid()
			if !ok || bidPrice < order.LimitPrice {
				break
			}
			taken := b.ConsumeBids(remaining, order.LimitPrice, true)
			if len(taken) == 0 {
				break
			}
			fills = append(fills, taken...)
			remaining -= sumQty(taken)
		}
	}

	if remaining > 0 {
		b.Add(order.Side, &book.Entry{
			OrderID:      order.OrderID,
			ClOrdID:      order.ClOrdID,
			Price:        order.LimitPrice,
			RemainingQty: remaining,
			OriginalQty:  order.Qty,
		})
	}

	result := aggregateResult(fills, order.Qty)
	result.RemainingQty = remaining
	return result
}

func sumQty(fills []book.Fill) float64 {
	var total float64
	for _, f := range fills {
		total += f.Qty
	}
	return total
}

func aggregateResult(fills []book.Fill, orderQty float64) MatchResult {
	if len(fills) == 0 {
		return MatchResult{Matched: false, RemainingQty: orderQty}
	}

	var fillQty, notional float64
	for _, f := range fills {
		fillQty += f.Qty
		notional += f.Qty * f.Price
	}

	return MatchResult{
		Matched:      true,
		FillPrice:    notional / fillQty,
		FillQty:      fillQty,
		RemainingQty: orderQty - fillQty,
		Fills:        fills,
	}
}
