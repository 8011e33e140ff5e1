package lobby

import (
	"net/http"
	"time"
)

// Kind discriminates the error taxonomy surfaced over HTTP and over the
// transport's error frames.
type Kind string

const (
	KindRoomNotFound               Kind = "RoomNotFound"
	KindOutOfRoomCodes             Kind = "OutOfRoomCodes"
	KindUsernameTaken              Kind = "UsernameTaken"
	KindPlayerNotInRoom            Kind = "PlayerNotInRoom"
	KindInvalidAuthorizationHeader Kind = "InvalidAuthorizationHeader"
	KindInvalidToken               Kind = "InvalidToken"
	KindConnectedInAnotherDevice   Kind = "ConnectedInAnotherDevice"
	KindUnknown                    Kind = "Unknown"
)

var statusByKind = map[Kind]int{
	KindRoomNotFound:               http.StatusNotFound,
	KindOutOfRoomCodes:             http.StatusServiceUnavailable,
	KindUsernameTaken:              http.StatusConflict,
	KindPlayerNotInRoom:            http.StatusNotFound,
	KindInvalidAuthorizationHeader: http.StatusBadRequest,
	KindInvalidToken:               http.StatusUnauthorized,
	KindConnectedInAnotherDevice:   http.StatusInternalServerError,
	KindUnknown:                    http.StatusInternalServerError,
}

// Error is the core's single error type; every orchestration function
// returns one of these (or nil) rather than a bare error string.
type Error struct {
	Kind    Kind
	Message string
	Data    map[string]any
}

func (e *Error) Error() string {
	return e.Message
}

// Status maps the error's Kind to the HTTP status code it surfaces as.
func (e *Error) Status() int {
	if status, ok := statusByKind[e.Kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func newError(kind Kind, message string, data map[string]any) *Error {
	return &Error{Kind: kind, Message: message, Data: data}
}

func errRoomNotFound(code RoomCode) *Error {
	return newError(KindRoomNotFound, "room not found", map[string]any{"roomCode": code})
}

func errOutOfRoomCodes() *Error {
	return newError(KindOutOfRoomCodes, "out of room codes", nil)
}

func errUsernameTaken(code RoomCode, username Username) *Error {
	return newError(KindUsernameTaken, "username taken", map[string]any{
		"roomCode": code,
		"username": username,
	})
}

func errPlayerNotInRoom(code RoomCode, username Username) *Error {
	return newError(KindPlayerNotInRoom, "player not in room", map[string]any{
		"roomCode": code,
		"username": username,
	})
}

func errInvalidAuthorizationHeader(expectedPrefix string) *Error {
	return newError(KindInvalidAuthorizationHeader, "missing or malformed authorization header", map[string]any{
		"expectedPrefix": expectedPrefix,
	})
}

func errInvalidToken(cause error) *Error {
	msg := "invalid token"
	if cause != nil {
		msg = "invalid token: " + cause.Error()
	}
	return newError(KindInvalidToken, msg, nil)
}

func errConnectedInAnotherDevice() *Error {
	return newError(KindConnectedInAnotherDevice, "connected in another device", nil)
}

// ErrorResponse is the wire shape for both the HTTP error body and the
// close-frame error payload carried over the transport.
type ErrorResponse struct {
	Code      int            `json:"code"`
	Timestamp string         `json:"timestamp"`
	ErrorKind Kind           `json:"error"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data"`
}

// NewErrorResponse builds the wire error body for err, coercing any
// non-*Error into the Unknown kind at 500.
func NewErrorResponse(err error) ErrorResponse {
	lobbyErr, ok := err.(*Error)
	if !ok {
		lobbyErr = newError(KindUnknown, err.Error(), nil)
	}
	return ErrorResponse{
		Code:      lobbyErr.Status(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		ErrorKind: lobbyErr.Kind,
		Message:   lobbyErr.Message,
		Data:      lobbyErr.Data,
	}
}
