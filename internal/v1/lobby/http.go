package lobby

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Levyks/muuzika-server/internal/v1/metrics"
)

// CreateOrJoinRoomRequest is the body of both POST /rooms and
// POST /rooms/{code}.
type CreateOrJoinRoomRequest struct {
	Username Username `json:"username" binding:"required"`
}

// RoomJoinedResponse is the 201 body for both create and join.
type RoomJoinedResponse struct {
	RoomCode RoomCode `json:"roomCode"`
	Token    string   `json:"token"`
}

// RegisterRoutes wires the three HTTP Edge endpoints onto r.
func (l *Lobby) RegisterRoutes(r gin.IRouter) {
	r.POST("/rooms", l.handleCreateRoom)
	r.POST("/rooms/:code", l.handleJoinRoom)
	r.GET("/ws", l.ServeWS)
}

func (l *Lobby) handleCreateRoom(c *gin.Context) {
	var req CreateOrJoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		observeHTTP("create_room", http.StatusBadRequest)
		c.JSON(http.StatusBadRequest, NewErrorResponse(newError(KindUnknown, err.Error(), nil)))
		return
	}

	code, token, lobbyErr := l.CreateRoom(req.Username)
	if lobbyErr != nil {
		observeHTTP("create_room", lobbyErr.Status())
		c.JSON(lobbyErr.Status(), NewErrorResponse(lobbyErr))
		return
	}

	observeHTTP("create_room", http.StatusCreated)
	c.JSON(http.StatusCreated, RoomJoinedResponse{RoomCode: code, Token: token})
}

func (l *Lobby) handleJoinRoom(c *gin.Context) {
	code := c.Param("code")

	var req CreateOrJoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		observeHTTP("join_room", http.StatusBadRequest)
		c.JSON(http.StatusBadRequest, NewErrorResponse(newError(KindUnknown, err.Error(), nil)))
		return
	}

	roomCode, token, lobbyErr := l.JoinRoom(code, req.Username)
	if lobbyErr != nil {
		observeHTTP("join_room", lobbyErr.Status())
		c.JSON(lobbyErr.Status(), NewErrorResponse(lobbyErr))
		return
	}

	observeHTTP("join_room", http.StatusCreated)
	c.JSON(http.StatusCreated, RoomJoinedResponse{RoomCode: roomCode, Token: token})
}

func observeHTTP(route string, status int) {
	metrics.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
