// Package replayroom serves a recorded match journal over the websocket
// protocol, so a client can be driven through a past match without a live
// game server. Actions sent by the client are recorded, not executed.
package replayroom

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/runeboard/runeboard-client/internal/game"
	"github.com/runeboard/runeboard-client/internal/protocol"
)

const (
	writeWait = 5 * time.Second
	helloWait = 10 * time.Second
)

// Received is one action a client sent to the room.
type Received struct {
	Username string
	Action   protocol.Outbound
}

// Room replays one journal to every client that connects.
type Room struct {
	journal  *game.Journal
	pace     time.Duration
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu       sync.Mutex
	received []Received
	clients  int
}

// New creates a room for j that pauses pace between frames.
func New(j *game.Journal, pace time.Duration, logger *zap.Logger) *Room {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Room{
		journal: j,
		pace:    pace,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.With(zap.String("journal", j.SessionID)),
	}
}

// Received returns the actions clients have sent so far.
func (r *Room) Received() []Received {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Received(nil), r.received...)
}

// Clients returns the number of connected clients.
func (r *Room) Clients() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clients
}

// ServeHTTP upgrades the request, waits for the hello and then streams the
// journal while recording whatever the client sends.
func (r *Room) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Warn("upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(helloWait))
	var hello protocol.Hello
	if err := conn.ReadJSON(&hello); err != nil || hello.Username == "" {
		r.logger.Warn("client did not say hello", zap.Error(err))
		return
	}
	conn.SetReadDeadline(time.Time{})

	r.mu.Lock()
	r.clients++
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.clients--
		r.mu.Unlock()
	}()

	logger := r.logger.With(zap.String("username", hello.Username))
	logger.Info("client joined")

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.stream(conn, hello.Username, logger)
	}()
	r.readPump(conn, hello.Username, logger)
	<-done
	logger.Info("client left")
}

func (r *Room) readPump(conn *websocket.Conn, username string, logger *zap.Logger) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var action protocol.Outbound
		if err := json.Unmarshal(data, &action); err != nil {
			logger.Warn("undecodable client frame", zap.Error(err))
			continue
		}
		r.mu.Lock()
		r.received = append(r.received, Received{Username: username, Action: action})
		r.mu.Unlock()
		logger.Info("client action", zap.String("type", action.Type))
	}
}

// stream writes every journal frame. It stops early once the read side has
// failed, which shows up as a write error.
func (r *Room) stream(conn *websocket.Conn, username string, logger *zap.Logger) {
	for i, e := range r.journal.Entries() {
		if i > 0 && r.pace > 0 {
			time.Sleep(r.pace)
		}
		frame := e.Frame
		if e.Type == protocol.TypeInit && username != r.journal.Username {
			reseated, err := reseat(frame, r.journal.Username, username)
			if err != nil {
				logger.Warn("init frame left as recorded", zap.Error(err))
			} else {
				frame = reseated
			}
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			logger.Debug("stream stopped", zap.Uint64("seq", e.Seq), zap.Error(err))
			return
		}
	}
	logger.Info("journal streamed", zap.Int("frames", r.journal.Size()))
}

// reseat gives username the seat the recorded player held in an init frame.
func reseat(frame []byte, recorded, username string) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(frame, &fields); err != nil {
		return nil, fmt.Errorf("decode init: %w", err)
	}
	var assignments map[string]json.RawMessage
	if err := json.Unmarshal(fields["user_assignments"], &assignments); err != nil {
		return nil, fmt.Errorf("decode user_assignments: %w", err)
	}
	seat, ok := assignments[recorded]
	if !ok {
		return nil, fmt.Errorf("no seat recorded for %q", recorded)
	}
	assignments[username] = seat
	raw, err := json.Marshal(assignments)
	if err != nil {
		return nil, err
	}
	fields["user_assignments"] = raw
	return json.Marshal(fields)
}
