package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// bodyTag identifies which oneof body field an encoded envelope
// carries, so Unmarshal knows which struct to decode into.
type bodyTag byte

const (
	tagNone               bodyTag = 0
	tagNewOrderSingle     bodyTag = 1
	tagOrderCancelRequest bodyTag = 2
	tagExecutionReport    bodyTag = 3
	tagReject             bodyTag = 4
	tagHeartbeat          bodyTag = 5
	tagPositionRequest    bodyTag = 6
	tagPositionReport     bodyTag = 7
)

// Serializer encodes and decodes envelopes for the wire. The lifecycle
// manager and transport layer depend only on this interface, not on
// the concrete codec.
type Serializer interface {
	Marshal(env Envelope) ([]byte, error)
	Unmarshal(data []byte) (Envelope, error)
}

// BinaryCodec is a length-delimited binary encoding of Envelope: a
// small TLV scheme over the header fields and whichever one body field
// is set. It stands in for generated protobuf bindings, for which this
// repository has no .proto toolchain available.
type BinaryCodec struct{}

// Marshal encodes env into its binary wire form.
func (BinaryCodec) Marshal(env Envelope) ([]byte, error) {
	var buf bytes.Buffer

	writeString(&buf, env.SenderCompID)
	writeString(&buf, env.TargetCompID)
	writeString(&buf, env.MsgSeqNum)
	writeString(&buf, env.SendingTime)

	switch {
	case env.NewOrderSingle != nil:
		buf.WriteByte(byte(tagNewOrderSingle))
		writeNewOrderSingle(&buf, env.NewOrderSingle)
	case env.OrderCancelRequest != nil:
		buf.WriteByte(byte(tagOrderCancelRequest))
		writeOrderCancelRequest(&buf, env.OrderCancelRequest)
	case env.ExecutionReport != nil:
		buf.WriteByte(byte(tagExecutionReport))
		writeExecutionReport(&buf, env.ExecutionReport)
	case env.Reject != nil:
		buf.WriteByte(byte(tagReject))
		writeReject(&buf, env.Reject)
	case env.Heartbeat != nil:
		buf.WriteByte(byte(tagHeartbeat))
	case env.PositionRequest != nil:
		buf.WriteByte(byte(tagPositionRequest))
		writeString(&buf, env.PositionRequest.Symbol)
	case env.PositionReport != nil:
		buf.WriteByte(byte(tagPositionReport))
		writePositionReport(&buf, env.PositionReport)
	default:
		buf.WriteByte(byte(tagNone))
	}

	framed := make([]byte, 4+buf.Len())
	binary.BigEndian.PutUint32(framed, uint32(buf.Len()))
	copy(framed[4:], buf.Bytes())
	return framed, nil
}

// Unmarshal decodes a single length-delimited frame into an Envelope.
// The length prefix written by Marshal is consumed here too, so data
// is expected to be exactly one frame (header + body), not including
// the transport-level client identity framing.
func (BinaryCodec) Unmarshal(data []byte) (Envelope, error) {
	if len(data) < 4 {
		return Envelope{}, fmt.Errorf("protocol: frame too short")
	}
	n := binary.BigEndian.Uint32(data[:4])
	if int(n) != len(data)-4 {
		return Envelope{}, fmt.Errorf("protocol: frame length mismatch: header says %d, have %d", n, len(data)-4)
	}

	r := bytes.NewReader(data[4:])

	var env Envelope
	var err error
	if env.SenderCompID, err = readString(r); err != nil {
		return Envelope{}, err
	}
	if env.TargetCompID, err = readString(r); err != nil {
		return Envelope{}, err
	}
	if env.MsgSeqNum, err = readString(r); err != nil {
		return Envelope{}, err
	}
	if env.SendingTime, err = readString(r); err != nil {
		return Envelope{}, err
	}

	tagByte, err := r.ReadByte()
	if err != nil {
		return Envelope{}, err
	}

	switch bodyTag(tagByte) {
	case tagNone:
	case tagNewOrderSingle:
		env.NewOrderSingle, err = readNewOrderSingle(r)
	case tagOrderCancelRequest:
		env.OrderCancelRequest, err = readOrderCancelRequest(r)
	case tagExecutionReport:
		env.ExecutionReport, err = readExecutionReport(r)
	case tagReject:
		env.Reject, err = readReject(r)
	case tagHeartbeat:
		env.Heartbeat = &Heartbeat{}
	case tagPositionRequest:
		var sym string
		sym, err = readString(r)
		env.PositionRequest = &PositionRequest{Symbol: sym}
	case tagPositionReport:
		env.PositionReport, err = readPositionReport(r)
	default:
		return Envelope{}, fmt.Errorf("protocol: unknown body tag %d", tagByte)
	}
	if err != nil {
		return Envelope{}, err
	}

	return env, nil
}

func writeString(buf *bytes.Buffer, s string) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(s)))
	buf.Write(lenBuf[:])
	buf.WriteString(s)
}

func readString(r *bytes.Reader) (string, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func writeFloat(buf *bytes.Buffer, f float64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(f))
	buf.Write(b[:])
}

func readFloat(r *bytes.Reader) (float64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b[:])), nil
}

func writeByte(buf *bytes.Buffer, b byte) {
	buf.WriteByte(b)
}

func readByte(r *bytes.Reader) (byte, error) {
	return r.ReadByte()
}

func writeBool(buf *bytes.Buffer, b bool) {
	if b {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
}

func readBool(r *bytes.Reader) (bool, error) {
	b, err := r.ReadByte()
	return b != 0, err
}

func writeInstrument(buf *bytes.Buffer, i Instrument) {
	writeString(buf, i.Symbol)
	writeString(buf, i.SecurityType)
}

func readInstrument(r *bytes.Reader) (Instrument, error) {
	sym, err := readString(r)
	if err != nil {
		return Instrument{}, err
	}
	secType, err := readString(r)
	if err != nil {
		return Instrument{}, err
	}
	return Instrument{Symbol: sym, SecurityType: secType}, nil
}

func writeNewOrderSingle(buf *bytes.Buffer, n *NewOrderSingle) {
	writeString(buf, n.ClOrdID)
	writeInstrument(buf, n.Instrument)
	writeByte(buf, byte(n.Side))
	writeFloat(buf, n.OrderQty)
	writeByte(buf, byte(n.OrdType))
	writeFloat(buf, n.Price)
	writeByte(buf, byte(n.TimeInForce))
	writeString(buf, n.Text)
	writeBool(buf, n.HasMarketPrice)
	writeFloat(buf, n.MarketPrice)
}

func readNewOrderSingle(r *bytes.Reader) (*NewOrderSingle, error) {
	n := &NewOrderSingle{}
	var err error
	if n.ClOrdID, err = readString(r); err != nil {
		return nil, err
	}
	if n.Instrument, err = readInstrument(r); err != nil {
		return nil, err
	}
	b, err := readByte(r)
	if err != nil {
		return nil, err
	}
	n.Side = Side(b)
	if n.OrderQty, err = readFloat(r); err != nil {
		return nil, err
	}
	if b, err = readByte(r); err != nil {
		return nil, err
	}
	n.OrdType = OrdType(b)
	if n.Price, err = readFloat(r); err != nil {
		return nil, err
	}
	if b, err = readByte(r); err != nil {
		return nil, err
	}
	n.TimeInForce = TimeInForce(b)
	if n.Text, err = readString(r); err != nil {
		return nil, err
	}
	if n.HasMarketPrice, err = readBool(r); err != nil {
		return nil, err
	}
	if n.MarketPrice, err = readFloat(r); err != nil {
		return nil, err
	}
	return n, nil
}

func writeOrderCancelRequest(buf *bytes.Buffer, c *OrderCancelRequest) {
	writeString(buf, c.OrigClOrdID)
	writeInstrument(buf, c.Instrument)
}

func readOrderCancelRequest(r *bytes.Reader) (*OrderCancelRequest, error) {
	c := &OrderCancelRequest{}
	var err error
	if c.OrigClOrdID, err = readString(r); err != nil {
		return nil, err
	}
	if c.Instrument, err = readInstrument(r); err != nil {
		return nil, err
	}
	return c, nil
}

func writeExecutionReport(buf *bytes.Buffer, e *ExecutionReport) {
	writeString(buf, e.OrderID)
	writeString(buf, e.ClOrdID)
	writeString(buf, e.ExecID)
	writeByte(buf, byte(e.ExecType))
	writeByte(buf, byte(e.OrdStatus))
	writeInstrument(buf, e.Instrument)
	writeByte(buf, byte(e.Side))
	writeFloat(buf, e.OrderQty)
	writeFloat(buf, e.LastPx)
	writeFloat(buf, e.LastQty)
	writeFloat(buf, e.LeavesQty)
	writeFloat(buf, e.CumQty)
	writeFloat(buf, e.AvgPx)
	writeFloat(buf, e.Commission)
	writeString(buf, e.TransactTime)
}

func readExecutionReport(r *bytes.Reader) (*ExecutionReport, error) {
	e := &ExecutionReport{}
	var err error
	if e.OrderID, err = readString(r); err != nil {
		return nil, err
	}
	if e.ClOrdID, err = readString(r); err != nil {
		return nil, err
	}
	if e.ExecID, err = readString(r); err != nil {
		return nil, err
	}
	b, err := readByte(r)
	if err != nil {
		return nil, err
	}
	e.ExecType = ExecType(b)
	if b, err = readByte(r); err != nil {
		return nil, err
	}
	e.OrdStatus = OrdStatus(b)
	if e.Instrument, err = readInstrument(r); err != nil {
		return nil, err
	}
	if b, err = readByte(r); err != nil {
		return nil, err
	}
	e.Side = Side(b)
	if e.OrderQty, err = readFloat(r); err != nil {
		return nil, err
	}
	if e.LastPx, err = readFloat(r); err != nil {
		return nil, err
	}
	if e.LastQty, err = readFloat(r); err != nil {
		return nil, err
	}
	if e.LeavesQty, err = readFloat(r); err != nil {
		return nil, err
	}
	if e.CumQty, err = readFloat(r); err != nil {
		return nil, err
	}
	if e.AvgPx, err = readFloat(r); err != nil {
		return nil, err
	}
	if e.Commission, err = readFloat(r); err != nil {
		return nil, err
	}
	if e.TransactTime, err = readString(r); err != nil {
		return nil, err
	}
	return e, nil
}

func writeReject(buf *bytes.Buffer, rj *Reject) {
	writeString(buf, rj.RefMsgSeqNum)
	writeString(buf, rj.Text)
}

func readReject(r *bytes.Reader) (*Reject, error) {
	rj := &Reject{}
	var err error
	if rj.RefMsgSeqNum, err = readString(r); err != nil {
		return nil, err
	}
	if rj.Text, err = readString(r); err != nil {
		return nil, err
	}
	return rj, nil
}

func writePositionReport(buf *bytes.Buffer, p *PositionReport) {
	var countBuf [4]byte
	binary.BigEndian.PutUint32(countBuf[:], uint32(len(p.Positions)))
	buf.Write(countBuf[:])
	for _, entry := range p.Positions {
		writeInstrument(buf, entry.Instrument)
		writeFloat(buf, entry.LongQty)
		writeFloat(buf, entry.ShortQty)
		writeFloat(buf, entry.AvgPrice)
		writeFloat(buf, entry.RealizedPnL)
	}
}

func readPositionReport(r *bytes.Reader) (*PositionReport, error) {
	var countBuf [4]byte
	if _, err := io.ReadFull(r, countBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(countBuf[:])
	entries := make([]PositionEntry, 0, n)
	for i := uint32(0); i < n; i++ {
		inst, err := readInstrument(r)
		if err != nil {
			return nil, err
		}
		var entry PositionEntry
		entry.Instrument = inst
		if entry.LongQty, err = readFloat(r); err != nil {
			return nil, err
		}
		if entry.ShortQty, err = readFloat(r); err != nil {
			return nil, err
		}
		if entry.AvgPrice, err = readFloat(r); err != nil {
			return nil, err
		}
		if entry.RealizedPnL, err = readFloat(r); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return &PositionReport{Positions: entries}, nil
}
