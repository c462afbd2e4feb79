package booking

import "time"

// Trade is an immutable booking record of one fill.
type Trade struct {
	TradeID    string
	OrderID    string
	ClOrdID    string
	Symbol     string
	Side       Side
	Quantity   float64
	Price      float64
	Commission float64
	Timestamp  time.Time
	StrategyID string
}

// BookKeeper holds the append-only trade log and the per-symbol
// position map. It owns no identifiers of its own — trade_id is minted
// by the caller (the lifecycle manager) before BookTrade is called.
type BookKeeper struct {
	trades    []Trade
	positions map[string]*Position
}

// NewBookKeeper creates an empty book keeper.
func NewBookKeeper() *BookKeeper {
	return &BookKeeper{
		positions: make(map[string]*Position),
	}
}

// BookTrade appends trade to the log and applies it to trade.Symbol's
// position, creating the position if this is the symbol's first trade.
func (k *BookKeeper) BookTrade(trade Trade) {
	k.trades = append(k.trades, trade)

	pos, ok := k.positions[trade.Symbol]
	if !ok {
		pos = &Position{Symbol: trade.Symbol}
		k.positions[trade.Symbol] = pos
	}
	pos.ApplyFill(trade.Side, trade.Quantity, trade.Price)
}

// GetPosition returns a snapshot of symbol's position, if it has one.
func (k *BookKeeper) GetPosition(symbol string) (Position, bool) {
	pos, ok := k.positions[symbol]
	if !ok {
		return Position{}, false
	}
	return *pos, true
}

// GetAllPositions returns a snapshot of every tracked position.
func (k *BookKeeper) GetAllPositions() []Position {
	out := make([]Position, 0, len(k.positions))
	for _, pos := range k.positions {
		out = append(out, *pos)
	}
	return out
}

// GetTrades returns the full trade log, in booking order.
func (k *BookKeeper) GetTrades() []Trade {
	return k.trades
}

// TradeCount returns the number of trades booked so far.
func (k *BookKeeper) TradeCount() int {
	return len(k.trades)
}
