package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ujjwalpathaak/ai-code-editor/internal/relay"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait     = 10 * time.Second
	sendQueueSize = 64
)

var (
	ErrClosed    = errors.New("relay connection closed")
	ErrQueueFull = errors.New("relay send queue full")
)

// RelayConn is a participant's websocket connection to the broadcast relay
type RelayConn struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// DialRelay connects to the relay endpoint of the server at baseURL
func DialRelay(ctx context.Context, baseURL string, header http.Header) (*RelayConn, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u = u.JoinPath("ws")

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", u, err)
	}

	return &RelayConn{
		conn: conn,
		send: make(chan []byte, sendQueueSize),
		done: make(chan struct{}),
	}, nil
}

// SendCodeUpdate queues the buffer for the relay without blocking
func (r *RelayConn) SendCodeUpdate(code string) error {
	msg, err := json.Marshal(relay.Event{Event: relay.EventCodeUpdate, Data: code})
	if err != nil {
		return err
	}

	select {
	case <-r.done:
		return ErrClosed
	default:
	}

	select {
	case r.send <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run pumps messages until ctx is done or the connection drops, passing
// every received code update to onUpdate. It must be called once.
func (r *RelayConn) Run(ctx context.Context, onUpdate func(code string)) error {
	defer close(r.done)

	stop := context.AfterFunc(ctx, func() {
		r.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		r.conn.Close()
	})
	defer stop()

	go r.writeLoop()

	for {
		_, raw, err := r.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("relay read: %w", err)
		}

		var event relay.Event
		if err := json.Unmarshal(raw, &event); err != nil {
			log.Warn().Err(err).Msg("ignoring malformed relay frame")
			continue
		}
		if event.Event == relay.EventCodeUpdate {
			onUpdate(event.Data)
		}
	}
}

// Close drops the connection; Run returns shortly after
func (r *RelayConn) Close() error {
	return r.conn.Close()
}

func (r *RelayConn) writeLoop() {
	for {
		select {
		case msg := <-r.send:
			r.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := r.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Debug().Err(err).Msg("relay write failed")
				r.conn.Close()
				return
			}
		case <-r.done:
			return
		}
	}
}
