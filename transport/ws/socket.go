// Package ws implements the ROUTER-style transport boundary over
// WebSocket connections: each connection is a "client identity" in
// ZeroMQ ROUTER terms, and inbound frames are funneled into a single
// channel so the engine can process requests strictly serially.
package ws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/xid"
)

// Frame is one logical message, addressed to or from a client
// identity — the Go-native analogue of ZeroMQ ROUTER's
// [identity, empty, payload] framing.
type Frame struct {
	ClientID string
	Payload  []byte
}

// Socket is the boundary interface the core's transport-facing code
// depends on. The core never imports gorilla/websocket directly.
type Socket interface {
	Recv(ctx context.Context) (Frame, error)
	Send(ctx context.Context, frame Frame) error
	Close() error
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Router is a Socket implementation backed by an HTTP server accepting
// WebSocket upgrades. Each accepted connection is registered under a
// generated client id; Recv funnels frames from every connection's
// read loop into one channel, and Send looks up the destination
// connection by client id.
type Router struct {
	mu    sync.RWMutex
	conns map[string]*websocket.Conn

	inbox  chan Frame
	errs   chan error
	server *http.Server
}

// NewRouter creates a Router that will listen on bind once Serve is
// called.
func NewRouter(bind string) *Router {
	r := &Router{
		conns: make(map[string]*websocket.Conn),
		inbox: make(chan Frame, 256),
		errs:  make(chan error, 1),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", r.handleUpgrade)
	r.server = &http.Server{Addr: bind, Handler: mux}
	return r
}

// Handler exposes the router's HTTP handler directly, for embedding
// in a test server or a caller's own http.Server.
func (r *Router) Handler() http.Handler {
	return r.server.Handler
}

// Serve starts accepting WebSocket connections. It blocks until the
// listener stops (normally via Close), so callers run it in their
// own goroutine.
func (r *Router) Serve() error {
	err := r.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (r *Router) handleUpgrade(w http.ResponseWriter, req *http.Request) {
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}

	clientID := xid.New().String()
	r.mu.Lock()
	r.conns[clientID] = conn
	r.mu.Unlock()

	go r.readLoop(clientID, conn)
}

func (r *Router) readLoop(clientID string, conn *websocket.Conn) {
	defer func() {
		r.mu.Lock()
		delete(r.conns, clientID)
		r.mu.Unlock()
		conn.Close()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		r.inbox <- Frame{ClientID: clientID, Payload: payload}
	}
}

// Recv returns the next inbound frame from any connected client,
// blocking until one arrives or ctx is cancelled.
func (r *Router) Recv(ctx context.Context) (Frame, error) {
	select {
	case f := <-r.inbox:
		return f, nil
	case err := <-r.errs:
		return Frame{}, err
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	}
}

// Send writes frame.Payload back to the connection registered under
// frame.ClientID. Returns an error if that client is no longer
// connected.
func (r *Router) Send(ctx context.Context, frame Frame) error {
	r.mu.RLock()
	conn, ok := r.conns[frame.ClientID]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("ws: client %q is not connected", frame.ClientID)
	}
	return conn.WriteMessage(websocket.BinaryMessage, frame.Payload)
}

// Close stops accepting new connections and closes every open one.
func (r *Router) Close() error {
	err := r.server.Close()

	r.mu.Lock()
	for id, conn := range r.conns {
		conn.Close()
		delete(r.conns, id)
	}
	r.mu.Unlock()

	return err
}
