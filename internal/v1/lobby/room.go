package lobby

import (
	"encoding/json"
	"sync"
)

// Room holds the players of one session, its leader, and the fan-out bus
// between them. All mutation goes through the Room's own exclusive lock;
// the Registry lock that hands out a reference to it is released before
// this one is taken, except in Registry.RemoveEmpty, which holds both in
// Registry -> Room order.
type Room struct {
	Code   RoomCode
	Leader Username

	mu      sync.Mutex
	players map[Username]*Player

	// cleanupCancel is non-nil iff a room-destruction timer is armed.
	cleanupCancel chan struct{}
}

// NewRoom constructs a Room with a single leader player already seated.
func NewRoom(code RoomCode, leader *Player) *Room {
	return &Room{
		Code:    code,
		Leader:  leader.Username,
		players: map[Username]*Player{leader.Username: leader},
	}
}

// GetPlayer returns the player seated under username.
func (r *Room) GetPlayer(username Username) (*Player, *Error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getPlayerLocked(username)
}

func (r *Room) getPlayerLocked(username Username) (*Player, *Error) {
	player, ok := r.players[username]
	if !ok {
		return nil, errPlayerNotInRoom(r.Code, username)
	}
	return player, nil
}

// HasPlayer reports whether username currently occupies a seat.
func (r *Room) HasPlayer(username Username) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.players[username]
	return ok
}

// PlayerCount reports how many seats are currently occupied.
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// Send fans message out to every online player. Serialization happens
// once; the frame is cloned (shared, since frames are immutable once
// built) per recipient. A per-recipient send failure closes that
// connection but never aborts the fan-out to others.
func (r *Room) Send(message ServerMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sendLocked(message, "")
}

// SendExcept is Send, skipping the seat named except.
func (r *Room) SendExcept(message ServerMessage, except Username) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sendLocked(message, except)
}

func (r *Room) sendLocked(message ServerMessage, except Username) {
	frame, err := json.Marshal(message)
	if err != nil {
		return
	}
	for username, player := range r.players {
		if username == except || player.Conn == nil {
			continue
		}
		if !player.Conn.SendRaw(frame) {
			player.Conn = nil
		}
	}
}

// viewLocked snapshots the Room into its wire projection. Caller must hold mu.
func (r *Room) viewLocked() RoomView {
	players := make([]PlayerView, 0, len(r.players))
	for _, player := range r.players {
		players = append(players, PlayerView{
			Username: player.Username,
			Score:    player.Score,
			IsOnline: player.IsOnline(),
		})
	}
	return RoomView{Code: r.Code, Leader: r.Leader, Players: players}
}
