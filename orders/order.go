// Package orders implements the order lifecycle manager: request
// validation, identifier assignment, fill emission, and the order
// status state machine.
package orders

import "github.com/tradecore/tradecore/matching"

// Status is a position in the order status state machine:
//
//	pending -> accepted -> {filled | partially_filled | rejected | cancelled}
//	partially_filled -> {filled | cancelled}
//
// filled, rejected, and cancelled are terminal.
type Status string

const (
	StatusPending          Status = "pending"
	StatusAccepted         Status = "accepted"
	StatusPartiallyFilled  Status = "partially_filled"
	StatusFilled           Status = "filled"
	StatusRejected         Status = "rejected"
	StatusCancelled        Status = "cancelled"
)

// IsTerminal reports whether no further status transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusFilled || s == StatusRejected || s == StatusCancelled
}

// Order is the lifecycle manager's record of a client order, kept for
// the lifetime of the process once accepted.
type Order struct {
	OrderID     string
	ClOrdID     string
	Symbol      string
	Side        matching.Side
	Quantity    float64
	Type        matching.OrderType
	LimitPrice  float64
	TimeInForce int8
	StrategyID  string
	Status      Status
	CumQty      float64
	LeavesQty   float64
	AvgPx       float64
}
