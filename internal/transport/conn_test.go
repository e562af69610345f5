package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/runeboard/runeboard-client/internal/game/grid"
	"github.com/runeboard/runeboard-client/internal/protocol"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// fakeRoom is a match room that records what the client sends and lets the
// test push frames back.
type fakeRoom struct {
	t        *testing.T
	server   *httptest.Server
	received chan map[string]any
	push     chan string
	closeNow chan struct{}
}

func newFakeRoom(t *testing.T) *fakeRoom {
	t.Helper()
	r := &fakeRoom{
		t:        t,
		received: make(chan map[string]any, 16),
		push:     make(chan string, 16),
		closeNow: make(chan struct{}),
	}
	r.server = httptest.NewServer(http.HandlerFunc(r.serve))
	t.Cleanup(r.server.Close)
	return r
}

func (r *fakeRoom) url() string {
	return "ws" + strings.TrimPrefix(r.server.URL, "http") + "/game/default"
}

func (r *fakeRoom) serve(w http.ResponseWriter, req *http.Request) {
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	go func() {
		for {
			var msg map[string]any
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			r.received <- msg
		}
	}()

	for {
		select {
		case frame := <-r.push:
			if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				return
			}
		case <-r.closeNow:
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
			conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			return
		}
	}
}

func (r *fakeRoom) next() map[string]any {
	r.t.Helper()
	select {
	case msg := <-r.received:
		return msg
	case <-time.After(5 * time.Second):
		r.t.Fatal("timed out waiting for client frame")
		return nil
	}
}

func recvFrame(t *testing.T, c *Conn) []byte {
	t.Helper()
	select {
	case f, ok := <-c.Frames():
		require.True(t, ok, "frames closed")
		return f
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for server frame")
		return nil
	}
}

func runConn(t *testing.T, c *Conn) <-chan error {
	t.Helper()
	errCh := make(chan error, 1)
	go func() { errCh <- c.Run(context.Background()) }()
	return errCh
}

func waitErr(t *testing.T, errCh <-chan error) error {
	t.Helper()
	select {
	case err := <-errCh:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
		return nil
	}
}

func TestDialSendsHelloAndPumps(t *testing.T) {
	room := newFakeRoom(t)
	c, err := Dial(context.Background(), room.url(), "alice", Options{}, zaptest.NewLogger(t))
	require.NoError(t, err)
	errCh := runConn(t, c)

	assert.Equal(t, map[string]any{"username": "alice"}, room.next())

	require.NoError(t, c.Send(context.Background(), protocol.Move(grid.SeatOne, grid.Pos{X: 5, Y: 2}, grid.Pos{X: 4, Y: 2})))
	msg := room.next()
	assert.Equal(t, "move", msg["type"])
	assert.Equal(t, []any{float64(5), float64(2)}, msg["from"])

	room.push <- `{"type":"init","user_assignments":{"alice":"1"}}`
	room.push <- `{"turn":"1"}`
	var first map[string]any
	require.NoError(t, json.Unmarshal(recvFrame(t, c), &first))
	assert.Equal(t, "init", first["type"])
	assert.JSONEq(t, `{"turn":"1"}`, string(recvFrame(t, c)))

	require.NoError(t, c.Close())
	assert.NoError(t, waitErr(t, errCh))
	assert.ErrorIs(t, c.Send(context.Background(), protocol.EndTurn(grid.SeatOne)), ErrClosed)

	_, ok := <-c.Frames()
	assert.False(t, ok)
}

func TestServerCloseEndsRun(t *testing.T) {
	room := newFakeRoom(t)
	c, err := Dial(context.Background(), room.url(), "bob", Options{}, zaptest.NewLogger(t))
	require.NoError(t, err)
	errCh := runConn(t, c)
	room.next()

	close(room.closeNow)
	assert.ErrorIs(t, waitErr(t, errCh), ErrClosed)
}

func TestContextCancelEndsRun(t *testing.T) {
	room := newFakeRoom(t)
	c, err := Dial(context.Background(), room.url(), "bob", Options{}, zaptest.NewLogger(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- c.Run(ctx) }()
	room.next()

	cancel()
	assert.NoError(t, waitErr(t, errCh))
}

func TestReadLimit(t *testing.T) {
	room := newFakeRoom(t)
	c, err := Dial(context.Background(), room.url(), "bob", Options{ReadLimit: 64}, zaptest.NewLogger(t))
	require.NoError(t, err)
	errCh := runConn(t, c)
	room.next()

	room.push <- `{"info":"` + strings.Repeat("x", 256) + `"}`
	err = waitErr(t, errCh)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrClosed)
}

func TestSendRespectsContext(t *testing.T) {
	room := newFakeRoom(t)
	c, err := Dial(context.Background(), room.url(), "bob", Options{OutboxSize: 1}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer c.Close()

	// no writer is running, so the second send cannot be queued
	require.NoError(t, c.Send(context.Background(), protocol.EndTurn(grid.SeatOne)))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.Send(ctx, protocol.EndTurn(grid.SeatOne)), context.DeadlineExceeded)
}

func TestDialFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := Dial(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http"), "bob", Options{}, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
