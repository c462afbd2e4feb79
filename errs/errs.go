// Package errs holds the sentinel errors raised across the order
// lifecycle, following the error taxonomy of rejectable conditions:
// each sentinel corresponds to one reject reason the lifecycle manager
// can surface to a client.
package errs

import "errors"

var (
	// ErrWrongBody is raised when handle_new_order is invoked with an
	// envelope whose body is not a new-order-single.
	ErrWrongBody = errors.New("envelope body is not a new order single")

	// ErrParseError is raised when a decoded new-order-single carries a
	// side or ord_type outside the wire enum, i.e. the envelope decoded
	// but the body itself is structurally unusable.
	ErrParseError = errors.New("parse error")

	// ErrValidation is raised when an order field violates a
	// constraint (empty id, non-positive quantity, missing limit price).
	ErrValidation = errors.New("validation error")

	// ErrNoMatch is raised when a market order has no book liquidity
	// and no legacy fallback price to fill at.
	ErrNoMatch = errors.New("no market price available")

	// ErrUnknownOrder is raised when a cancel request references an
	// unknown cl_ord_id.
	ErrUnknownOrder = errors.New("unknown order")

	// ErrNotCancelable is raised when a cancel request targets an
	// order whose status is already terminal.
	ErrNotCancelable = errors.New("order is not cancelable")
)

// RejectText builds the text field of a reject response for err, with
// detail appended where the error needs more context than the
// sentinel alone provides (e.g. an echoed id or field name).
func RejectText(err error, detail string) string {
	switch {
	case err == nil:
		return detail
	case detail == "":
		return err.Error()
	default:
		return err.Error() + ": " + detail
	}
}
