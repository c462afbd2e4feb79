package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestRouter_RecvAndSendRoundTrip(t *testing.T) {
	router := NewRouter(":0")
	server := httptest.NewServer(router.Handler())
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte("hello")))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	frame, err := router.Recv(ctx)
	require.NoError(t, err)
	require.Equal(t, "hello", string(frame.Payload))
	require.NotEmpty(t, frame.ClientID)

	err = router.Send(ctx, Frame{ClientID: frame.ClientID, Payload: []byte("world")})
	require.NoError(t, err)

	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, "world", string(payload))
}

func TestRouter_SendToUnknownClientErrors(t *testing.T) {
	router := NewRouter(":0")
	err := router.Send(context.Background(), Frame{ClientID: "ghost", Payload: []byte("x")})
	require.Error(t, err)
}

func TestRouter_RecvRespectsContextCancellation(t *testing.T) {
	router := NewRouter(":0")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := router.Recv(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
