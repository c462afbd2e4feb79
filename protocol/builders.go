package protocol

import (
	"time"

	"github.com/rs/xid"
)

// sendingTimeFormat is the wire's UTC timestamp format.
const sendingTimeFormat = "20060102-15:04:05.000"

// SendingTime stamps now as a wire-format UTC timestamp string.
func SendingTime(now time.Time) string {
	return now.UTC().Format(sendingTimeFormat)
}

// NextMsgSeqNum mints an opaque, unique message sequence number. The
// wire format only requires these be unique strings, not a dense
// integer counter, so an xid is used — the same opaque-id approach the
// rest of the wire layer uses for exec_id and connection ids.
func NextMsgSeqNum() string {
	return xid.New().String()
}

// NextExecID mints an opaque execution id.
func NextExecID() string {
	return xid.New().String()
}

// envelope builds the common envelope header for a response addressed
// back to target, the client that sent the original request.
func envelope(target string, now time.Time) Envelope {
	return Envelope{
		SenderCompID: EngineCompID,
		TargetCompID: target,
		MsgSeqNum:    NextMsgSeqNum(),
		SendingTime:  SendingTime(now),
	}
}

// BuildExecutionReport wraps an ExecutionReport body in a response
// envelope addressed to target.
func BuildExecutionReport(target string, now time.Time, body ExecutionReport) Envelope {
	env := envelope(target, now)
	env.ExecutionReport = &body
	return env
}

// BuildReject wraps a Reject body in a response envelope addressed to
// target.
func BuildReject(target string, now time.Time, refMsgSeqNum, text string) Envelope {
	env := envelope(target, now)
	env.Reject = &Reject{RefMsgSeqNum: refMsgSeqNum, Text: text}
	return env
}

// BuildPositionReport wraps a PositionReport body in a response
// envelope addressed to target.
func BuildPositionReport(target string, now time.Time, entries []PositionEntry) Envelope {
	env := envelope(target, now)
	env.PositionReport = &PositionReport{Positions: entries}
	return env
}
