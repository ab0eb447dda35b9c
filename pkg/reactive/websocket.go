package reactive

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// WSMessage is one frame read from a websocket connection
type WSMessage struct {
	Type int
	Data []byte
}

// FromWebSocket emits the messages read from conn. A normal or going-away
// close frame completes the stream. Any other close frame is delivered as an
// error wrapping ErrClosed, and other read errors as they are. Unsubscribing
// closes the connection.
//
// A connection supports a single reader, so subscribe at most once.
func FromWebSocket(conn *websocket.Conn, opts ...Option) Observable[WSMessage] {
	cfg := newOptions(opts)
	return New(func(dst *Subscriber[WSMessage]) TeardownFunc {
		clock := cfg.clock()
		go func() {
			for {
				mt, data, err := conn.ReadMessage()
				if err != nil {
					var closeErr *websocket.CloseError
					switch {
					case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
						clock.Post(dst.Complete)
					case errors.As(err, &closeErr):
						clock.Post(func() { dst.Error(fmt.Errorf("%w: %v", ErrClosed, closeErr)) })
					default:
						clock.Post(func() { dst.Error(err) })
					}
					return
				}
				msg := WSMessage{Type: mt, Data: data}
				clock.Post(func() { dst.Next(msg) })
			}
		}()
		return func() {
			_ = conn.Close()
		}
	})
}

// WebSocketWriter serializes writes to one connection
type WebSocketWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func NewWebSocketWriter(conn *websocket.Conn) *WebSocketWriter {
	return &WebSocketWriter{conn: conn}
}

func (w *WebSocketWriter) WriteJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteJSON(v)
}

// SendWebSocket writes every value to w as JSON and forwards it once written
func SendWebSocket[T any](w *WebSocketWriter, opts ...Option) Operator[T, T] {
	return ConcatMap(func(v T) Observable[T] {
		return FromFunc(func(context.Context) (T, error) {
			return v, w.WriteJSON(v)
		}, opts...)
	})
}
