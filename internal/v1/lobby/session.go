package lobby

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Levyks/muuzika-server/internal/v1/logging"
	"github.com/Levyks/muuzika-server/internal/v1/metrics"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS handles a single accepted WebSocket upgrade end to end: mint a
// ConnectionHandle, authenticate the token, deliver the sync snapshot,
// drain inbound frames through the domain handler, and tear the seat down
// on stream end.
func (l *Lobby) ServeWS(c *gin.Context) {
	token := c.Query("token")
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		extracted, extractErr := ExtractToken(authHeader)
		if extractErr != nil {
			c.JSON(extractErr.Status(), NewErrorResponse(extractErr))
			return
		}
		token = extracted
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Warn(c.Request.Context(), "websocket upgrade failed", zap.Error(err))
		return
	}

	handle := NewConnectionHandle(conn)

	room, sync, connectErr := l.ConnectPlayer(token, handle)
	if connectErr != nil {
		handle.SendAndClose(ErrorMessage(connectErr))
		metrics.WebsocketEvents.WithLabelValues("connect", "error").Inc()
		return
	}
	metrics.WebsocketEvents.WithLabelValues("connect", "success").Inc()
	metrics.ActiveWebSocketConnections.Inc()
	defer metrics.ActiveWebSocketConnections.Dec()

	handle.Send(SyncMessage(sync), "")

	username := sync.You
	l.readLoop(conn, handle, room, username)

	l.DisconnectPlayer(room, username, handle)
}

func (l *Lobby) readLoop(conn *websocket.Conn, handle *ConnectionHandle, room *Room, username Username) {
	for {
		msgType, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		l.handleFrame(raw, handle, room, username)
	}
}

func (l *Lobby) handleFrame(raw []byte, handle *ConnectionHandle, room *Room, username Username) {
	start := time.Now()

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		handle.Send(ErrorMessage(newError(KindUnknown, "malformed frame: "+err.Error(), nil)), "")
		metrics.WebsocketEvents.WithLabelValues("frame", "parse_error").Inc()
		return
	}

	var ack string
	if rawAck, ok := envelope["ack"]; ok {
		_ = json.Unmarshal(rawAck, &ack)
	}

	var cmd ClientCommand
	if err := json.Unmarshal(raw, &cmd); err != nil {
		handle.Send(ErrorMessage(newError(KindUnknown, "malformed command: "+err.Error(), nil)), ack)
		metrics.WebsocketEvents.WithLabelValues("frame", "parse_error").Inc()
		return
	}

	reply := l.Handle(cmd, username, room)
	handle.Send(reply, ack)

	metrics.WebsocketEvents.WithLabelValues(cmd.Type, "handled").Inc()
	metrics.MessageProcessingDuration.WithLabelValues(cmd.Type).Observe(time.Since(start).Seconds())

	logging.Debug(context.Background(), "handled client command",
		zap.String("room_code", room.Code), zap.String("username", username), zap.String("type", cmd.Type))
}
