// Package booking implements the book keeper: an append-only trade
// log and per-symbol position tracking with signed quantity, weighted
// average price, and realized PnL.
package booking

// Side mirrors the buy/sell distinction used to apply a fill to a
// position.
type Side int8

const (
	Buy  Side = 1
	Sell Side = 2
)

// Position tracks one symbol's open exposure. Quantity is signed:
// positive is long, negative is short, zero is flat. AvgPrice and
// CostBasis are defined only while Quantity != 0; both are exactly
// zero when flat.
type Position struct {
	Symbol      string
	Quantity    float64
	AvgPrice    float64
	CostBasis   float64
	RealizedPnL float64
}

// ApplyFill updates the position for one fill of qty shares/contracts
// at price, on the given side. qty and price must both be positive;
// the side determines the sign of the adjustment.
//
// The long/short crossover cases (closing through zero into the
// opposite sign) realize PnL on the portion that closed the existing
// position, then restate the average price for whatever remains open.
func (p *Position) ApplyFill(side Side, qty, price float64) {
	if side == Buy {
		p.applyBuy(qty, price)
	} else {
		p.applySell(qty, price)
	}
}

func (p *Position) applyBuy(qty, price float64) {
	q := p.Quantity

	if q >= 0 {
		p.CostBasis += qty * price
		p.Quantity += qty
		if p.Quantity > 0 {
			p.AvgPrice = p.CostBasis / p.Quantity
		}
		return
	}

	// Closing (or flipping through) a short position.
	closed := qty
	if closed > -p.Quantity {
		closed = -p.Quantity
	}
	p.RealizedPnL += closed * (p.AvgPrice - price)
	p.Quantity += qty

	switch {
	case p.Quantity > 0:
		p.AvgPrice = price
		p.CostBasis = p.Quantity * price
	case p.Quantity == 0:
		p.AvgPrice = 0
		p.CostBasis = 0
	default:
		p.CostBasis = -p.Quantity * p.AvgPrice
	}
}

func (p *Position) applySell(qty, price float64) {
	q := p.Quantity

	if q > 0 {
		closed := qty
		if closed > p.Quantity {
			closed = p.Quantity
		}
		p.RealizedPnL += closed * (price - p.AvgPrice)
		p.Quantity -= qty

		switch {
		case p.Quantity < 0:
			p.AvgPrice = price
			p.CostBasis = -p.Quantity * price
		case p.Quantity == 0:
			p.AvgPrice = 0
			p.CostBasis = 0
		default:
			p.CostBasis = p.Quantity * p.AvgPrice
		}
		return
	}

	// Adding to (or opening) a short position.
	p.CostBasis += qty * price
	p.Quantity -= qty
	if p.Quantity < 0 {
		p.AvgPrice = p.CostBasis / -p.Quantity
	}
}
