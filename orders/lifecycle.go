package orders

import (
	"fmt"
	"time"

	"github.com/tradecore/tradecore/booking"
	"github.com/tradecore/tradecore/errs"
	"github.com/tradecore/tradecore/events"
	"github.com/tradecore/tradecore/matching"
	"github.com/tradecore/tradecore/protocol"
)

// Clock returns the current time; tests substitute a fixed clock.
type Clock func() time.Time

// Manager is the order lifecycle manager: it validates requests, mints
// identifiers, drives the matching engine, books resulting trades, and
// produces the response envelopes for each request.
type Manager struct {
	matcher *matching.Engine
	keeper  *booking.BookKeeper
	observer events.Observer
	clock   Clock

	commissionRate float64
	commissionMin  float64

	orderSeq uint64
	fillSeq  uint64
	tradeSeq uint64

	orders     map[string]*Order
	clOrdIndex map[string]string
}

// Config carries the lifecycle manager's constructor parameters.
type Config struct {
	CommissionRate float64
	CommissionMin  float64
	Observer       events.Observer
	Clock          Clock
}

// DefaultCommissionRate is 10 bps, the engine's out-of-the-box
// commission rate when none is configured.
const DefaultCommissionRate = 0.001

// New creates a lifecycle manager wired to matcher and keeper.
func New(matcher *matching.Engine, keeper *booking.BookKeeper, cfg Config) *Manager {
	if cfg.CommissionRate == 0 {
		cfg.CommissionRate = DefaultCommissionRate
	}
	if cfg.Observer == nil {
		cfg.Observer = events.Discard{}
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Manager{
		matcher:        matcher,
		keeper:         keeper,
		observer:       cfg.Observer,
		clock:          cfg.Clock,
		commissionRate: cfg.CommissionRate,
		commissionMin:  cfg.CommissionMin,
		orders:         make(map[string]*Order),
		clOrdIndex:     make(map[string]string),
	}
}

func (m *Manager) nextOrderID() string {
	m.orderSeq++
	return fmt.Sprintf("TC-%05d", m.orderSeq)
}

func (m *Manager) nextFillID() string {
	m.fillSeq++
	return fmt.Sprintf("F-%05d", m.fillSeq)
}

func (m *Manager) nextTradeID() string {
	m.tradeSeq++
	return fmt.Sprintf("T-%05d", m.tradeSeq)
}

// GetOrder returns the lifecycle manager's record for orderID, if any.
func (m *Manager) GetOrder(orderID string) (*Order, bool) {
	o, ok := m.orders[orderID]
	return o, ok
}

// HandleNewOrder implements handle_new_order: validates the request,
// drives the match, books any resulting trades, and returns the
// response envelopes to send back to target (the requesting client).
func (m *Manager) HandleNewOrder(req protocol.Envelope, target string) []protocol.Envelope {
	now := m.clock()

	if req.NewOrderSingle == nil {
		return []protocol.Envelope{
			protocol.BuildReject(target, now, req.MsgSeqNum, errs.RejectText(errs.ErrWrongBody, "")),
		}
	}
	body := req.NewOrderSingle

	if (body.Side != protocol.SideBuy && body.Side != protocol.SideSell) ||
		(body.OrdType != protocol.OrdTypeMarket && body.OrdType != protocol.OrdTypeLimit) {
		m.observer.Observe(events.Event{Kind: events.OrderRejected, Symbol: body.Instrument.Symbol, ClOrdID: body.ClOrdID, Reason: "parse error", Timestamp: now})
		return []protocol.Envelope{
			protocol.BuildReject(target, now, req.MsgSeqNum, errs.RejectText(errs.ErrParseError, "unrecognized side or ord_type")),
		}
	}

	order := &Order{
		ClOrdID:     body.ClOrdID,
		Symbol:      body.Instrument.Symbol,
		Side:        toMatchingSide(body.Side),
		Quantity:    body.OrderQty,
		Type:        toMatchingType(body.OrdType),
		LimitPrice:  body.Price,
		TimeInForce: int8(body.TimeInForce),
		StrategyID:  body.Text,
		Status:      StatusPending,
	}

	order.OrderID = m.nextOrderID()

	if err := m.validate(order); err != nil {
		m.emitReject(order, "")
		return []protocol.Envelope{
			protocol.BuildReject(target, now, req.MsgSeqNum, errs.RejectText(errs.ErrValidation, err.Error())),
		}
	}

	order.Status = StatusAccepted
	order.LeavesQty = order.Quantity
	m.observer.Observe(events.Event{Kind: events.OrderAccepted, Symbol: order.Symbol, OrderID: order.OrderID, ClOrdID: order.ClOrdID, Qty: order.Quantity, Timestamp: now})

	if body.HasMarketPrice {
		// market_price is a reference-price hint, not a fill price: it
		// lets the engine auto-seed a symbol's book the first time an
		// order for it arrives, rather than rejecting for no market.
		m.matcher.UpdateReferencePrice(order.Symbol, body.MarketPrice)
	}

	matchOrder := matching.Order{
		OrderID:    order.OrderID,
		ClOrdID:    order.ClOrdID,
		Symbol:     order.Symbol,
		Side:       order.Side,
		Qty:        order.Quantity,
		Type:       order.Type,
		LimitPrice: order.LimitPrice,
	}

	result := m.matcher.TryMatch(matchOrder)

	m.orders[order.OrderID] = order
	m.clOrdIndex[order.ClOrdID] = order.OrderID

	if len(result.Fills) > 0 {
		return m.emitFills(order, body.Instrument, result, target, now)
	}

	if order.Type == matching.Limit && result.RemainingQty > 0 {
		order.Status = StatusAccepted
		order.LeavesQty = result.RemainingQty
		return []protocol.Envelope{
			protocol.BuildExecutionReport(target, now, protocol.ExecutionReport{
				OrderID:      order.OrderID,
				ClOrdID:      order.ClOrdID,
				ExecID:       protocol.NextExecID(),
				ExecType:     protocol.ExecNew,
				OrdStatus:    protocol.OrdStatusNew,
				Instrument:   body.Instrument,
				Side:         body.Side,
				OrderQty:     order.Quantity,
				LeavesQty:    order.Quantity,
				CumQty:       0,
				TransactTime: protocol.SendingTime(now),
			}),
		}
	}

	order.Status = StatusRejected
	m.emitReject(order, "no match")
	return []protocol.Envelope{
		protocol.BuildReject(target, now, req.MsgSeqNum, errs.RejectText(errs.ErrNoMatch, "")),
	}
}

func (m *Manager) emitFills(order *Order, instrument protocol.Instrument, result matching.MatchResult, target string, now time.Time) []protocol.Envelope {
	reports := make([]protocol.Envelope, 0, len(result.Fills))

	var cumQty, notional float64
	for _, fill := range result.Fills {
		cumQty += fill.Qty
		notional += fill.Qty * fill.Price
		leavesQty := order.Quantity - cumQty

		commission := m.commission(fill.Qty * fill.Price)
		tradeID := m.nextTradeID()
		m.nextFillID()

		m.keeper.BookTrade(booking.Trade{
			TradeID:    tradeID,
			OrderID:    order.OrderID,
			ClOrdID:    order.ClOrdID,
			Symbol:     order.Symbol,
			Side:       toBookingSide(order.Side),
			Quantity:   fill.Qty,
			Price:      fill.Price,
			Commission: commission,
			Timestamp:  now,
			StrategyID: order.StrategyID,
		})

		execType := protocol.ExecPartialFill
		ordStatus := protocol.OrdStatusPartiallyFilled
		if leavesQty <= 0 {
			execType = protocol.ExecFill
			ordStatus = protocol.OrdStatusFilled
		}

		reports = append(reports, protocol.BuildExecutionReport(target, now, protocol.ExecutionReport{
			OrderID:      order.OrderID,
			ClOrdID:      order.ClOrdID,
			ExecID:       protocol.NextExecID(),
			ExecType:     execType,
			OrdStatus:    ordStatus,
			Instrument:   instrument,
			Side:         toProtocolSide(order.Side),
			OrderQty:     order.Quantity,
			LastPx:       fill.Price,
			LastQty:      fill.Qty,
			LeavesQty:    leavesQty,
			CumQty:       cumQty,
			AvgPx:        notional / cumQty,
			Commission:   commission,
			TransactTime: protocol.SendingTime(now),
		}))

		eventKind := events.OrderPartiallyFilled
		if leavesQty <= 0 {
			eventKind = events.OrderFilled
		}
		m.observer.Observe(events.Event{Kind: eventKind, Symbol: order.Symbol, OrderID: order.OrderID, ClOrdID: order.ClOrdID, Qty: fill.Qty, Price: fill.Price, Timestamp: now})
	}

	order.CumQty = cumQty
	order.LeavesQty = order.Quantity - cumQty
	order.AvgPx = notional / cumQty
	if order.LeavesQty <= 0 {
		order.Status = StatusFilled
	} else {
		order.Status = StatusPartiallyFilled
	}

	return reports
}

func (m *Manager) commission(notional float64) float64 {
	c := notional * m.commissionRate
	if c < m.commissionMin {
		return m.commissionMin
	}
	return c
}

func (m *Manager) emitReject(order *Order, reason string) {
	m.observer.Observe(events.Event{Kind: events.OrderRejected, Symbol: order.Symbol, ClOrdID: order.ClOrdID, Reason: reason, Timestamp: m.clock()})
}

func (m *Manager) validate(order *Order) error {
	if order.ClOrdID == "" {
		return fmt.Errorf("cl_ord_id must not be empty")
	}
	if order.Symbol == "" {
		return fmt.Errorf("symbol must not be empty")
	}
	if order.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	if order.Type == matching.Limit && order.LimitPrice <= 0 {
		return fmt.Errorf("limit_price must be positive for a limit order")
	}
	return nil
}

// HandleCancelRequest implements handle_cancel_request: resolves the
// order by its client id, rejects if it is unknown or already
// terminal, forwards the cancel to the matching engine, and marks the
// order cancelled regardless of whether the engine still held it (a
// cancel that loses a race with a completed fill is accepted, not
// rejected, so the client's view stays idempotent).
func (m *Manager) HandleCancelRequest(req protocol.Envelope, target string) []protocol.Envelope {
	now := m.clock()

	if req.OrderCancelRequest == nil {
		return []protocol.Envelope{
			protocol.BuildReject(target, now, req.MsgSeqNum, errs.RejectText(errs.ErrWrongBody, "")),
		}
	}
	body := req.OrderCancelRequest

	orderID, ok := m.clOrdIndex[body.OrigClOrdID]
	if !ok {
		return []protocol.Envelope{
			protocol.BuildReject(target, now, req.MsgSeqNum, errs.RejectText(errs.ErrUnknownOrder, body.OrigClOrdID)),
		}
	}

	order := m.orders[orderID]
	if order.Status != StatusAccepted && order.Status != StatusPartiallyFilled {
		return []protocol.Envelope{
			protocol.BuildReject(target, now, req.MsgSeqNum, errs.RejectText(errs.ErrNotCancelable, string(order.Status))),
		}
	}

	m.matcher.Cancel(order.Symbol, order.OrderID)

	order.Status = StatusCancelled
	m.observer.Observe(events.Event{Kind: events.OrderCancelled, Symbol: order.Symbol, OrderID: order.OrderID, ClOrdID: order.ClOrdID, Timestamp: now})

	return []protocol.Envelope{
		protocol.BuildExecutionReport(target, now, protocol.ExecutionReport{
			OrderID:      order.OrderID,
			ClOrdID:      order.ClOrdID,
			ExecID:       protocol.NextExecID(),
			ExecType:     protocol.ExecCancelled,
			OrdStatus:    protocol.OrdStatusCancelled,
			Instrument:   body.Instrument,
			Side:         toProtocolSide(order.Side),
			OrderQty:     order.Quantity,
			LeavesQty:    order.LeavesQty,
			CumQty:       order.CumQty,
			TransactTime: protocol.SendingTime(now),
		}),
	}
}

// HandlePositionRequest answers a position query, scoped to one symbol
// if the request names one, or covering every tracked symbol otherwise.
func (m *Manager) HandlePositionRequest(req protocol.Envelope, target string) []protocol.Envelope {
	now := m.clock()
	body := req.PositionRequest

	var positions []booking.Position
	if body != nil && body.Symbol != "" {
		if pos, ok := m.keeper.GetPosition(body.Symbol); ok {
			positions = []booking.Position{pos}
		}
	} else {
		positions = m.keeper.GetAllPositions()
	}

	entries := make([]protocol.PositionEntry, 0, len(positions))
	for _, pos := range positions {
		entry := protocol.PositionEntry{
			Instrument:  protocol.Instrument{Symbol: pos.Symbol},
			AvgPrice:    pos.AvgPrice,
			RealizedPnL: pos.RealizedPnL,
		}
		if pos.Quantity >= 0 {
			entry.LongQty = pos.Quantity
		} else {
			entry.ShortQty = -pos.Quantity
		}
		entries = append(entries, entry)
	}

	return []protocol.Envelope{protocol.BuildPositionReport(target, now, entries)}
}

func toMatchingSide(s protocol.Side) matching.Side {
	if s == protocol.SideBuy {
		return matching.Buy
	}
	return matching.Sell
}

func toProtocolSide(s matching.Side) protocol.Side {
	if s == matching.Buy {
		return protocol.SideBuy
	}
	return protocol.SideSell
}

func toBookingSide(s matching.Side) booking.Side {
	if s == matching.Buy {
		return booking.Buy
	}
	return booking.Sell
}

func toMatchingType(t protocol.OrdType) matching.OrderType {
	if t == protocol.OrdTypeLimit {
		return matching.Limit
	}
	return matching.Market
}
