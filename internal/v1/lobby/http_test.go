package lobby

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(l *Lobby) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	l.RegisterRoutes(r)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHTTP_CreateRoom_Success(t *testing.T) {
	l := newTestLobby(4, 0)
	r := newTestRouter(l)

	rec := doJSON(t, r, http.MethodPost, "/rooms", CreateOrJoinRoomRequest{Username: "alice"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp RoomJoinedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.RoomCode, 4)
	assert.NotEmpty(t, resp.Token)
}

func TestHTTP_JoinRoom_UsernameTaken(t *testing.T) {
	l := newTestLobby(4, 0)
	r := newTestRouter(l)

	createRec := doJSON(t, r, http.MethodPost, "/rooms", CreateOrJoinRoomRequest{Username: "alice"})
	var created RoomJoinedResponse
	require.NoError(t, json.Unmarshal(createRec.Body.Bytes(), &created))

	joinRec := doJSON(t, r, http.MethodPost, "/rooms/"+created.RoomCode, CreateOrJoinRoomRequest{Username: "alice"})
	assert.Equal(t, http.StatusConflict, joinRec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(joinRec.Body.Bytes(), &errResp))
	assert.Equal(t, KindUsernameTaken, errResp.ErrorKind)
	assert.Equal(t, "alice", errResp.Data["username"])
}

func TestHTTP_JoinRoom_NotFound(t *testing.T) {
	l := newTestLobby(4, 0)
	r := newTestRouter(l)

	rec := doJSON(t, r, http.MethodPost, "/rooms/9999", CreateOrJoinRoomRequest{Username: "alice"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHTTP_CreateRoom_MissingUsername(t *testing.T) {
	l := newTestLobby(4, 0)
	r := newTestRouter(l)

	rec := doJSON(t, r, http.MethodPost, "/rooms", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
