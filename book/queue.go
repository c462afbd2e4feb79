package book

import "github.com/huandu/skiplist"

// priceLevel holds the FIFO queue of entries resting at one price.
// Invariant: all entries share price; the level is removed once its
// queue is empty.
type priceLevel struct {
	price float64
	head  *Entry
	tail  *Entry
	count int
	qty   float64
}

// levelQueue is one side (bid or ask) of a Book: price levels ordered
// by the side's priority (descending for bids, ascending for asks),
// each holding a FIFO queue of entries.
type levelQueue struct {
	side     Side
	levels   *skiplist.SkipList
	byPrice  map[float64]*skiplist.Element
	orderCnt int
}

func newLevelQueue(side Side) *levelQueue {
	var cmp skiplist.GreaterThanFunc
	if side == Buy {
		// Bids: descending price, so the skip list's "greater" ordering
		// (which determines front()) puts the highest price first.
		cmp = func(lhs, rhs any) int {
			a, b := lhs.(float64), rhs.(float64)
			switch {
			case a > b:
				return -1
			case a < b:
				return 1
			default:
				return 0
			}
		}
	} else {
		cmp = func(lhs, rhs any) int {
			a, b := lhs.(float64), rhs.(float64)
			switch {
			case a < b:
				return -1
			case a > b:
				return 1
			default:
				return 0
			}
		}
	}

	return &levelQueue{
		side:    side,
		levels:  skiplist.New(cmp),
		byPrice: make(map[float64]*skiplist.Element),
	}
}

// insert appends entry to the tail of its price level's FIFO queue,
// creating the level if it does not yet exist.
func (q *levelQueue) insert(entry *Entry) {
	entry.side = q.side

	el, ok := q.byPrice[entry.Price]
	if !ok {
		lvl := &priceLevel{price: entry.Price}
		el = q.levels.Set(entry.Price, lvl)
		q.byPrice[entry.Price] = el
	}

	lvl := el.Value.(*priceLevel)
	entry.prev = lvl.tail
	entry.next = nil
	if lvl.tail != nil {
		lvl.tail.next = entry
	} else {
		lvl.head = entry
	}
	lvl.tail = entry
	lvl.count++
	lvl.qty += entry.RemainingQty
	q.orderCnt++
}

// remove detaches entry from its price level's FIFO queue and deletes
// the level if it becomes empty.
func (q *levelQueue) remove(entry *Entry) {
	el, ok := q.byPrice[entry.Price]
	if !ok {
		return
	}
	lvl := el.Value.(*priceLevel)

	if entry.prev != nil {
		entry.prev.next = entry.next
	} else {
		lvl.head = entry.next
	}
	if entry.next != nil {
		entry.next.prev = entry.prev
	} else {
		lvl.tail = entry.prev
	}
	entry.next = nil
	entry.prev = nil

	lvl.count--
	lvl.qty -= entry.RemainingQty
	q.orderCnt--

	if lvl.count == 0 {
		q.levels.RemoveElement(el)
		delete(q.byPrice, entry.Price)
	}
}

// front returns the entry at the head of the best price level, without
// removing it. Returns nil if the side is empty.
func (q *levelQueue) front() *Entry {
	el := q.levels.Front()
	if el == nil {
		return nil
	}
	return el.Value.(*priceLevel).head
}

// bestPrice returns the price of the best level, and whether one exists.
func (q *levelQueue) bestPrice() (float64, bool) {
	el := q.levels.Front()
	if el == nil {
		return 0, false
	}
	return el.Value.(*priceLevel).price, true
}

// reduce shrinks entry's remaining quantity in place (partial consume).
func (q *levelQueue) reduce(entry *Entry, by float64) {
	el, ok := q.byPrice[entry.Price]
	if !ok {
		return
	}
	lvl := el.Value.(*priceLevel)
	lvl.qty -= by
	entry.RemainingQty -= by
}

// depth returns up to n price levels in side priority order.
func (q *levelQueue) depth(n int) []DepthLevel {
	out := make([]DepthLevel, 0, n)
	el := q.levels.Front()
	for i := 0; i < n && el != nil; i++ {
		lvl := el.Value.(*priceLevel)
		out = append(out, DepthLevel{Price: lvl.price, Qty: lvl.qty, OrderCount: lvl.count})
		el = el.Next()
	}
	return out
}
