package book

import "sync/atomic"

// Book is a single symbol's limit order book: two price-ordered sides
// each holding FIFO queues per price level, plus a shared index for
// O(1) cancel by order id.
type Book struct {
	Symbol string

	bids *levelQueue
	asks *levelQueue

	index map[string]*Entry

	seq uint64
}

// New creates an empty order book for symbol.
func New(symbol string) *Book {
	return &Book{
		Symbol: symbol,
		bids:   newLevelQueue(Buy),
		asks:   newLevelQueue(Sell),
		index:  make(map[string]*Entry),
	}
}

// nextSequence returns a monotonically increasing sequence number used
// to break ties between entries at the same price in insertion order.
func (b *Book) nextSequence() uint64 {
	return atomic.AddUint64(&b.seq, 1)
}

func (b *Book) sideFor(side Side) *levelQueue {
	if side == Buy {
		return b.bids
	}
	return b.asks
}

// Add rests entry on the given side of the book. entry.Sequence is
// assigned here; callers do not set it.
func (b *Book) Add(side Side, entry *Entry) {
	entry.Sequence = b.nextSequence()
	b.sideFor(side).insert(entry)
	b.index[entry.OrderID] = entry
}

// Cancel removes a resting order by id. Reports whether an order was
// found and removed.
func (b *Book) Cancel(orderID string) bool {
	entry, ok := b.index[orderID]
	if !ok {
		return false
	}
	b.sideFor(entry.side).remove(entry)
	delete(b.index, orderID)
	return true
}

// Get returns the resting entry for orderID, if any.
func (b *Book) Get(orderID string) (*Entry, bool) {
	entry, ok := b.index[orderID]
	return entry, ok
}

// BestBid returns the highest resting bid price, and whether one exists.
func (b *Book) BestBid() (float64, bool) {
	return b.bids.bestPrice()
}

// BestAsk returns the lowest resting ask price, and whether one exists.
func (b *Book) BestAsk() (float64, bool) {
	return b.asks.bestPrice()
}

// Depth returns up to n price levels on the given side, best first.
func (b *Book) Depth(side Side, n int) []DepthLevel {
	return b.sideFor(side).depth(n)
}

// ConsumeBids walks the bid side from the best (highest) price down,
// consuming up to qty in price-time priority, and returns the fills
// produced. Fully consumed entries are removed from the book; a
// partially consumed entry at the front of its level is reduced in
// place and left resting. limit, if limited is true, bounds how far down
// the book consumption may walk: bid prices below limit are not
// touched.
func (b *Book) ConsumeBids(qty float64, limit float64, limited bool) []Fill {
	return b.consume(b.bids, qty, limit, limited, func(p, l float64) bool { return p >= l })
}

// ConsumeAsks walks the ask side from the best (lowest) price up,
// consuming up to qty in price-time priority, and returns the fills
// produced. limit, if ok is true, bounds how far up the book
// consumption may walk: ask prices above limit are not touched.
func (b *Book) ConsumeAsks(qty float64, limit float64, limited bool) []Fill {
	return b.consume(b.asks, qty, limit, limited, func(p, l float64) bool { return p <= l })
}

func (b *Book) consume(q *levelQueue, qty, limit float64, limited bool, withinLimit func(price, limit float64) bool) []Fill {
	var fills []Fill
	remaining := qty

	for remaining > 0 {
		entry := q.front()
		if entry == nil {
			break
		}
		if limited && !withinLimit(entry.Price, limit) {
			break
		}

		take := entry.RemainingQty
		if take > remaining {
			take = remaining
		}

		fills = append(fills, Fill{
			OrderID: entry.OrderID,
			ClOrdID: entry.ClOrdID,
			Price:   entry.Price,
			Qty:     take,
		})

		if take >= entry.RemainingQty {
			q.remove(entry)
			delete(b.index, entry.OrderID)
		} else {
			q.reduce(entry, take)
		}

		remaining -= take
	}

	return fills
}
