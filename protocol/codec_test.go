package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinaryCodec_RoundTripsNewOrderSingle(t *testing.T) {
	env := Envelope{
		SenderCompID: "CLIENT1",
		TargetCompID: EngineCompID,
		MsgSeqNum:    "abc123",
		SendingTime:  SendingTime(time.Now()),
		NewOrderSingle: &NewOrderSingle{
			ClOrdID:    "c-1",
			Instrument: Instrument{Symbol: "AAPL", SecurityType: "CS"},
			Side:       SideBuy,
			OrderQty:   100,
			OrdType:    OrdTypeLimit,
			Price:      150.25,
			TimeInForce: TIFDay,
			Text:        "strategy-A",
		},
	}

	codec := BinaryCodec{}
	data, err := codec.Marshal(env)
	require.NoError(t, err)

	decoded, err := codec.Unmarshal(data)
	require.NoError(t, err)

	require.NotNil(t, decoded.NewOrderSingle)
	assert.Equal(t, env.NewOrderSingle.ClOrdID, decoded.NewOrderSingle.ClOrdID)
	assert.Equal(t, env.NewOrderSingle.Instrument, decoded.NewOrderSingle.Instrument)
	assert.Equal(t, env.NewOrderSingle.Price, decoded.NewOrderSingle.Price)
	assert.Equal(t, env.SenderCompID, decoded.SenderCompID)
	assert.Equal(t, env.TargetCompID, decoded.TargetCompID)
}

func TestBinaryCodec_RoundTripsExecutionReport(t *testing.T) {
	env := BuildExecutionReport("CLIENT1", time.Now(), ExecutionReport{
		OrderID:      "TC-00001",
		ClOrdID:      "c-1",
		ExecID:       NextExecID(),
		ExecType:     ExecFill,
		OrdStatus:    OrdStatusFilled,
		Instrument:   Instrument{Symbol: "AAPL"},
		Side:         SideBuy,
		OrderQty:     100,
		LastPx:       150.075,
		LastQty:      100,
		LeavesQty:    0,
		CumQty:       100,
		AvgPx:        150.075,
		Commission:   0.15,
		TransactTime: SendingTime(time.Now()),
	})

	codec := BinaryCodec{}
	data, err := codec.Marshal(env)
	require.NoError(t, err)

	decoded, err := codec.Unmarshal(data)
	require.NoError(t, err)
	require.NotNil(t, decoded.ExecutionReport)
	assert.Equal(t, env.ExecutionReport.LastPx, decoded.ExecutionReport.LastPx)
	assert.Equal(t, env.ExecutionReport.ExecType, decoded.ExecutionReport.ExecType)
}

func TestBinaryCodec_RoundTripsHeartbeatAndReject(t *testing.T) {
	codec := BinaryCodec{}

	hbEnv := Envelope{SenderCompID: "CLIENT1", Heartbeat: &Heartbeat{}}
	data, err := codec.Marshal(hbEnv)
	require.NoError(t, err)
	decoded, err := codec.Unmarshal(data)
	require.NoError(t, err)
	assert.NotNil(t, decoded.Heartbeat)

	rejEnv := BuildReject("CLIENT1", time.Now(), "seq-1", "quantity must be positive")
	data, err = codec.Marshal(rejEnv)
	require.NoError(t, err)
	decoded, err = codec.Unmarshal(data)
	require.NoError(t, err)
	require.NotNil(t, decoded.Reject)
	assert.Equal(t, "quantity must be positive", decoded.Reject.Text)
}

func TestBinaryCodec_RejectsTruncatedFrame(t *testing.T) {
	codec := BinaryCodec{}
	_, err := codec.Unmarshal([]byte{0, 0, 0, 10})
	assert.Error(t, err)
}
