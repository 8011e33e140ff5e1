package lobby

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Levyks/muuzika-server/internal/v1/logging"
	"github.com/Levyks/muuzika-server/internal/v1/metrics"
)

const defaultCleanupGracePeriod = 10 * time.Second

// Lobby orchestrates room creation, joining, connecting, and the
// disconnect/cleanup timers that reclaim abandoned seats and rooms. It is
// the one place that is allowed to hold both a Registry reference and the
// CodePool: the canonical lock order is Registry -> Room -> CodePool, and
// CodePool is never held while acquiring a Room lock.
type Lobby struct {
	registry    *Registry
	codePool    *CodePool
	tokens      *TokenCodec
	handler     Handler
	gracePeriod time.Duration
}

// NewLobby wires a Lobby around the given code width, secret, and domain
// handler. handler may be nil, in which case every client command is
// answered with an Unknown error.
func NewLobby(codeWidth int, jwtSecret string, handler Handler, gracePeriod time.Duration) *Lobby {
	if gracePeriod <= 0 {
		gracePeriod = defaultCleanupGracePeriod
	}
	if handler == nil {
		handler = HandlerFunc(func(cmd ClientCommand, username Username, room *Room) ServerMessage {
			return ErrorMessage(newError(KindUnknown, "no handler installed", nil))
		})
	}
	return &Lobby{
		registry:    NewRegistry(),
		codePool:    NewCodePool(codeWidth),
		tokens:      NewTokenCodec(jwtSecret),
		handler:     handler,
		gracePeriod: gracePeriod,
	}
}

func nowMillis() uint64 {
	return uint64(time.Now().UnixMilli())
}

// CreateRoom pops a code, seats username as leader, and returns the code
// and a token bound to that seat.
func (l *Lobby) CreateRoom(username Username) (RoomCode, string, *Error) {
	code, ok := l.codePool.Pop()
	if !ok {
		return "", "", errOutOfRoomCodes()
	}

	token, err := l.createRoomWithCode(username, code)
	if err != nil {
		l.codePool.Push(code)
		return "", "", err
	}

	metrics.ActiveRooms.Inc()
	return code, token, nil
}

func (l *Lobby) createRoomWithCode(username Username, code RoomCode) (string, *Error) {
	leader := NewPlayer(username, nowMillis())
	token, err := l.tokens.Encode(leader.CreatedAt, code, username)
	if err != nil {
		return "", newError(KindUnknown, err.Error(), nil)
	}

	room := NewRoom(code, leader)
	l.registry.Insert(room)

	l.schedulePlayerCleanup(room, username)

	return token, nil
}

// JoinRoom seats a new player in an existing room.
func (l *Lobby) JoinRoom(code RoomCode, username Username) (RoomCode, string, *Error) {
	room, ok := l.registry.Get(code)
	if !ok {
		return "", "", errRoomNotFound(code)
	}

	room.mu.Lock()
	if _, exists := room.players[username]; exists {
		room.mu.Unlock()
		return "", "", errUsernameTaken(code, username)
	}

	player := NewPlayer(username, nowMillis())
	token, err := l.tokens.Encode(player.CreatedAt, code, username)
	if err != nil {
		room.mu.Unlock()
		return "", "", newError(KindUnknown, err.Error(), nil)
	}

	room.players[username] = player
	room.sendLocked(PlayerJoinedMessage(username), "")

	if room.cleanupCancel != nil {
		close(room.cleanupCancel)
		room.cleanupCancel = nil
	}
	room.mu.Unlock()

	l.schedulePlayerCleanup(room, username)

	return code, token, nil
}

// ConnectPlayer verifies token, installs newConn as the seat's live
// connection (dispossessing any prior one), and returns the room plus a
// sync snapshot to deliver on the new connection.
func (l *Lobby) ConnectPlayer(token string, newConn *ConnectionHandle) (*Room, SyncSnapshot, *Error) {
	claims, decodeErr := l.tokens.Decode(token)
	if decodeErr != nil {
		return nil, SyncSnapshot{}, errInvalidToken(decodeErr)
	}

	room, ok := l.registry.Get(claims.RoomCode)
	if !ok {
		return nil, SyncSnapshot{}, errRoomNotFound(claims.RoomCode)
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	player, err := room.getPlayerLocked(claims.Username)
	if err != nil {
		return nil, SyncSnapshot{}, err
	}

	if claims.Iat != player.CreatedAt {
		return nil, SyncSnapshot{}, errUsernameTaken(claims.RoomCode, claims.Username)
	}

	if player.Conn != nil {
		player.Conn.SendAndClose(ErrorMessage(errConnectedInAnotherDevice()))
	}

	player.Conn = newConn
	cancel := player.cleanupCancel
	player.cleanupCancel = nil

	room.sendLocked(PlayerConnectedMessage(claims.Username), claims.Username)

	logging.Info(context.Background(), "player connected",
		zap.String("room_code", claims.RoomCode), zap.String("username", claims.Username))

	if cancel != nil {
		close(cancel)
	}

	return room, SyncSnapshot{You: claims.Username, Room: room.viewLocked()}, nil
}

// DisconnectPlayer clears the seat's connection if closingConn is still
// the one installed, then arms the player cleanup grace timer. If a newer
// connection has already superseded closingConn, this is a no-op: it
// would otherwise tear down state owned by the new connection.
func (l *Lobby) DisconnectPlayer(room *Room, username Username, closingConn *ConnectionHandle) {
	room.mu.Lock()
	player, err := room.getPlayerLocked(username)
	if err != nil {
		room.mu.Unlock()
		return
	}

	if player.Conn != nil && !player.Conn.Equal(closingConn) {
		room.mu.Unlock()
		return
	}

	player.Conn = nil
	room.sendLocked(PlayerDisconnectedMessage(username), "")
	room.mu.Unlock()

	l.schedulePlayerCleanup(room, username)
}

// schedulePlayerCleanup arms a grace timer for username, replacing any
// previously armed one. The timer is a detached task racing a one-shot
// cancellation signal against a sleep; on timeout it re-validates the
// precondition under the Room lock before acting.
func (l *Lobby) schedulePlayerCleanup(room *Room, username Username) {
	room.mu.Lock()
	player, err := room.getPlayerLocked(username)
	if err != nil {
		room.mu.Unlock()
		return
	}

	if player.cleanupCancel != nil {
		close(player.cleanupCancel)
	}

	cancel := make(chan struct{})
	player.cleanupCancel = cancel
	room.mu.Unlock()

	go l.awaitPlayerCleanup(room, username, cancel)
}

func (l *Lobby) awaitPlayerCleanup(room *Room, username Username, cancel chan struct{}) {
	timer := time.NewTimer(l.gracePeriod)
	defer timer.Stop()

	select {
	case <-cancel:
		return
	case <-timer.C:
		l.doPlayerCleanup(room, username)
	}
}

func (l *Lobby) doPlayerCleanup(room *Room, username Username) {
	room.mu.Lock()
	player, ok := room.players[username]
	if !ok {
		room.mu.Unlock()
		return
	}
	if player.Conn != nil {
		room.mu.Unlock()
		return
	}

	delete(room.players, username)
	room.sendLocked(PlayerLeftMessage(username), "")
	empty := len(room.players) == 0
	room.mu.Unlock()

	logging.Info(context.Background(), "player reaped",
		zap.String("room_code", room.Code), zap.String("username", username))

	if empty {
		l.scheduleRoomCleanup(room)
	}
}

func (l *Lobby) scheduleRoomCleanup(room *Room) {
	room.mu.Lock()
	if room.cleanupCancel != nil {
		close(room.cleanupCancel)
	}
	cancel := make(chan struct{})
	room.cleanupCancel = cancel
	room.mu.Unlock()

	go l.awaitRoomCleanup(room, cancel)
}

func (l *Lobby) awaitRoomCleanup(room *Room, cancel chan struct{}) {
	timer := time.NewTimer(l.gracePeriod)
	defer timer.Stop()

	select {
	case <-cancel:
		return
	case <-timer.C:
		l.doRoomCleanup(room)
	}
}

func (l *Lobby) doRoomCleanup(room *Room) {
	if !l.registry.RemoveEmpty(room) {
		return
	}

	l.codePool.Push(room.Code)
	metrics.ActiveRooms.Dec()

	logging.Info(context.Background(), "room reaped", zap.String("room_code", room.Code))
}

// Handle dispatches a parsed client command through the installed domain
// handler.
func (l *Lobby) Handle(cmd ClientCommand, username Username, room *Room) ServerMessage {
	return l.handler.Handle(cmd, username, room)
}
