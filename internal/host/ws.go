package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/corbenferris/figjam-plantuml/internal/events"
	"github.com/corbenferris/figjam-plantuml/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// channel writes events to one websocket. A gorilla connection supports a
// single concurrent writer, and sessions emit from timer goroutines.
type channel struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

// Emit implements events.Emitter.
func (c *channel) Emit(name string, payload any) error {
	ev, err := events.New(name, payload)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return websocket.ErrCloseSent
	}
	return c.conn.WriteJSON(ev)
}

// close sends a normal closure frame and drops the connection.
func (c *channel) close(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	c.conn.Close()
}

// NodeEvent is the payload published on the server bus: the session
// payload tagged with the node it belongs to.
type NodeEvent struct {
	Node    string `json:"node"`
	Payload any    `json:"payload,omitempty"`
}

func withNode(id string, payload any) NodeEvent {
	return NodeEvent{Node: id, Payload: payload}
}

// persisting stores every committed state into the node's slot before the
// view learns about it.
func (s *Server) persisting(ctx context.Context, id string, ch *channel) events.Emitter {
	return events.EmitterFunc(func(name string, payload any) error {
		if name == events.UpdateUML {
			state, ok := payload.(session.State)
			if !ok {
				return fmt.Errorf("unexpected %s payload %T", name, payload)
			}
			if err := s.nodes.Put(ctx, id, state); err != nil {
				reply(ch, s.logger.With("node", id), events.Error, events.ErrorPayload{Message: "saving diagram failed", Stack: err.Error()})
				return fmt.Errorf("persisting node %s: %w", id, err)
			}
		}
		if err := ch.Emit(name, payload); err != nil {
			return err
		}
		if err := s.bus.Emit(name, withNode(id, payload)); err != nil {
			s.logger.Debug("publishing session event", "event", name, "error", err)
		}
		return nil
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	node, ok := lookupNode(w, r, s.nodes)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	logger := s.logger.With("node", id)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade", "error", err)
		return
	}
	ch := &channel{conn: conn}
	defer ch.close("")

	ctx := r.Context()
	sess := s.newSession(node.State, s.persisting(ctx, id, ch))
	defer sess.Close()

	logger.Info("editor session opened")
	defer logger.Info("editor session closed")

	reply(ch, logger, events.Preview, events.PreviewPayload{URL: sess.PreviewURL()})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read", "error", err)
			}
			return
		}

		var ev events.Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			reply(ch, logger, events.Error, events.ErrorPayload{Message: "invalid message format"})
			continue
		}

		switch ev.Name {
		case events.Input:
			var p events.InputPayload
			if err := ev.Decode(&p); err != nil {
				reply(ch, logger, events.Error, events.ErrorPayload{Message: err.Error()})
				continue
			}
			sess.Input(p.Text)
		case events.Submit:
			// A started fetch outlives the socket; the closed session drops its result.
			go s.submit(context.WithoutCancel(ctx), sess, ch, logger)
		case events.Cancel:
			sess.Cancel()
			ch.close("cancelled")
			return
		case events.ResizeWindow:
			var size events.WindowSize
			if err := ev.Decode(&size); err != nil {
				reply(ch, logger, events.Error, events.ErrorPayload{Message: err.Error()})
				continue
			}
			reply(ch, logger, events.ResizeWindow, size.Clamp())
		default:
			reply(ch, logger, events.Error, events.ErrorPayload{Message: "unknown event: " + ev.Name})
		}
	}
}

// reply answers the view directly. A failed write means the socket is
// going away, which the read loop notices on its own.
func reply(ch *channel, logger *slog.Logger, name string, payload any) {
	if err := ch.Emit(name, payload); err != nil {
		logger.Debug("replying on websocket", "event", name, "error", err)
	}
}

// submit runs one submission. A committed diagram ends the editing pass and
// closes the view.
func (s *Server) submit(ctx context.Context, sess *session.Session, ch *channel, logger *slog.Logger) {
	err := sess.Submit(ctx)
	switch {
	case err == nil:
		ch.close("committed")
	case errors.Is(err, session.ErrBusy):
		logger.Debug("submit ignored while busy")
	case errors.Is(err, session.ErrClosed):
		logger.Debug("submit result discarded")
	}
}
