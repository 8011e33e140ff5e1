package lobby

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Levyks/muuzika-server/internal/v1/logging"
)

const (
	outboundQueueSize = 32
	writeWait         = 10 * time.Second
)

// ConnectionHandle owns one outbound sink. Two handles are equal iff their
// Id fields are equal; callers must never compare by socket identity, so
// a reconnect race can tell "the connection I am tearing down" from "a
// newer one that already replaced me".
type ConnectionHandle struct {
	Id string

	outbound chan []byte
	done     chan struct{}
}

// NewConnectionHandle mints a handle with a fresh opaque id and spawns its
// outbound drainer, which serializes writes to conn and insulates callers
// from per-write blocking.
func NewConnectionHandle(conn *websocket.Conn) *ConnectionHandle {
	h := &ConnectionHandle{
		Id:       uuid.New().String(),
		outbound: make(chan []byte, outboundQueueSize),
		done:     make(chan struct{}),
	}
	go h.drain(conn)
	return h
}

func (h *ConnectionHandle) drain(conn *websocket.Conn) {
	defer conn.Close()

	for {
		select {
		case frame, ok := <-h.outbound:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				logging.Warn(context.Background(), "connection write failed", zap.Error(err))
				return
			}
		case <-h.done:
			// Flush whatever was already queued before close was
			// requested; SendAndClose relies on this to deliver its
			// message ahead of the close frame.
			for {
				select {
				case frame := <-h.outbound:
					_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
					_ = conn.WriteMessage(websocket.TextMessage, frame)
				default:
					_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
			}
		}
	}
}

// Equal reports identity equality by opaque id.
func (h *ConnectionHandle) Equal(other *ConnectionHandle) bool {
	if h == nil || other == nil {
		return h == other
	}
	return h.Id == other.Id
}

// SendRaw enqueues a pre-serialized text frame. A false return means the
// outbound queue was full and the handle has been closed; the connection
// must be treated as dead, but the caller does not need to close it itself.
func (h *ConnectionHandle) SendRaw(frame []byte) bool {
	select {
	case h.outbound <- frame:
		return true
	default:
		h.Close()
		return false
	}
}

// Send serializes message to JSON. If ack is non-empty and the serialized
// value is a JSON object, the key "ack" is inserted before emitting; for a
// non-object value the ack is silently dropped.
func (h *ConnectionHandle) Send(message ServerMessage, ack string) bool {
	frame, err := marshalWithAck(message, ack)
	if err != nil {
		h.Close()
		return false
	}
	return h.SendRaw(frame)
}

func marshalWithAck(message ServerMessage, ack string) ([]byte, error) {
	raw, err := json.Marshal(message)
	if err != nil {
		return nil, err
	}
	if ack == "" {
		return raw, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		// not a JSON object; ack is silently dropped
		return raw, nil
	}
	ackValue, err := json.Marshal(ack)
	if err != nil {
		return raw, nil
	}
	obj["ack"] = ackValue
	return json.Marshal(obj)
}

// SendAndClose is a best-effort send followed by a close frame.
func (h *ConnectionHandle) SendAndClose(message ServerMessage) {
	h.Send(message, "")
	h.Close()
}

// Close enqueues a close frame for the drainer to flush.
func (h *ConnectionHandle) Close() {
	select {
	case <-h.done:
	default:
		close(h.done)
	}
}
