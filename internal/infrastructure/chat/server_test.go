package chat

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"roomcast/internal/core/domain"
	"roomcast/internal/core/services"
	"roomcast/internal/infrastructure/repositories/memory"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type chatHarness struct {
	server   *httptest.Server
	auth     services.AuthService
	chatRepo *memory.MemoryChatRepository
}

func newChatHarness(t *testing.T) *chatHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	codec := services.NewTokenCodecFromKeys(priv, pub)

	hasher := services.NewPasswordHasher(1)
	t.Cleanup(hasher.Close)

	logger := zap.NewNop().Sugar()
	auth := services.NewAuthService(
		memory.NewMemoryCredentialsRepository(),
		memory.NewMemoryTokenRepository(),
		codec, hasher,
		10*time.Minute, time.Hour, time.Hour, logger)

	chatRepo := memory.NewMemoryChatRepository()
	chatService := services.NewChatService(chatRepo, logger)

	registry := NewRegistry(64, nil)
	server := NewServer(registry, auth, chatService, SessionConfig{
		BufferSize:      16,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		PingInterval:    time.Second,
		MaxMessageBytes: 4096,
	}, nil, logger)

	router := gin.New()
	router.GET("/ws/:room", server.HandleConnection)

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	return &chatHarness{server: ts, auth: auth, chatRepo: chatRepo}
}

func (h *chatHarness) signupToken(t *testing.T, email string) (domain.UserID, string) {
	t.Helper()
	user, pair, err := h.auth.Signup(context.Background(), domain.NewUser{
		Name:     "user " + email,
		Email:    email,
		Password: "secret123",
		Code:     "ABC123",
	})
	require.NoError(t, err)
	return user.ID, pair.AccessToken
}

func (h *chatHarness) dial(t *testing.T, roomID domain.RoomID, token string) *websocket.Conn {
	t.Helper()
	url := fmt.Sprintf("%s/ws/%s?token=%s",
		strings.Replace(h.server.URL, "http", "ws", 1), roomID, token)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) domain.ServerEvent {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	ev, err := domain.DecodeServerEvent(data)
	require.NoError(t, err)
	return ev
}

func sendJoin(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	frame, err := json.Marshal(map[string]any{
		"Join": map[string]any{"join_at": time.Now().UTC().Format(time.RFC3339)},
	})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))
}

func TestConnectRejectsBadRoomID(t *testing.T) {
	h := newChatHarness(t)
	_, token := h.signupToken(t, "alice@example.com")

	resp, err := http.Get(h.server.URL + "/ws/not-a-uuid?token=" + token)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestConnectRejectsBadToken(t *testing.T) {
	h := newChatHarness(t)

	resp, err := http.Get(h.server.URL + "/ws/" + domain.NewRoomID().String() + "?token=garbage")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestJoinIsAcknowledgedAndBroadcast(t *testing.T) {
	h := newChatHarness(t)
	roomID := domain.NewRoomID()

	aliceID, aliceToken := h.signupToken(t, "alice@example.com")
	bobID, bobToken := h.signupToken(t, "bob@example.com")

	alice := h.dial(t, roomID, aliceToken)
	sendJoin(t, alice)

	ack, ok := readEvent(t, alice).(domain.JoinResponse)
	require.True(t, ok)
	assert.Equal(t, aliceID, ack.UserID)

	// Alice sees her own join announcement too.
	announce, ok := readEvent(t, alice).(domain.UserJoinResponse)
	require.True(t, ok)
	assert.Equal(t, aliceID, announce.UserID)

	bob := h.dial(t, roomID, bobToken)
	sendJoin(t, bob)

	announce, ok = readEvent(t, alice).(domain.UserJoinResponse)
	require.True(t, ok)
	assert.Equal(t, bobID, announce.UserID)
}

func TestSendMessageIsPersistedAndFannedOut(t *testing.T) {
	h := newChatHarness(t)
	roomID := domain.NewRoomID()

	aliceID, aliceToken := h.signupToken(t, "alice@example.com")
	_, bobToken := h.signupToken(t, "bob@example.com")

	alice := h.dial(t, roomID, aliceToken)
	bob := h.dial(t, roomID, bobToken)
	sendJoin(t, alice)
	readEvent(t, alice) // Join ack
	readEvent(t, alice) // own UserJoin
	readEvent(t, bob)   // alice's UserJoin

	frame, err := json.Marshal(map[string]string{"SendMessage": "hello room"})
	require.NoError(t, err)
	require.NoError(t, alice.WriteMessage(websocket.TextMessage, frame))

	for _, conn := range []*websocket.Conn{alice, bob} {
		received, ok := readEvent(t, conn).(domain.ReceivedMessage)
		require.True(t, ok)
		assert.Equal(t, aliceID, received.UserID)
		assert.Equal(t, roomID, received.RoomID)
		assert.Equal(t, "hello room", string(received.Content))
		assert.False(t, received.CreatedAt.IsZero())
	}

	messages, err := h.chatRepo.GetMessagesByRoom(context.Background(), roomID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "hello room", string(messages[0].Content))
}

func TestInvalidFrameGetsErrMessage(t *testing.T) {
	h := newChatHarness(t)
	roomID := domain.NewRoomID()

	_, token := h.signupToken(t, "alice@example.com")
	conn := h.dial(t, roomID, token)

	frame, err := json.Marshal(map[string]string{"SendMessage": "   "})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))

	errEvent, ok := readEvent(t, conn).(domain.ErrMessage)
	require.True(t, ok)
	assert.NotEmpty(t, errEvent.Message)
}

func TestUnparseableFrameIsDropped(t *testing.T) {
	h := newChatHarness(t)
	roomID := domain.NewRoomID()

	_, token := h.signupToken(t, "alice@example.com")
	conn := h.dial(t, roomID, token)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"Shout":"hi"}`)))

	// The session stays up and the next valid frame is handled normally.
	sendJoin(t, conn)

	join, ok := readEvent(t, conn).(domain.JoinResponse)
	require.True(t, ok)
	assert.NotEqual(t, domain.UserID{}, join.UserID)
}

func TestRoomsDoNotCrosstalk(t *testing.T) {
	h := newChatHarness(t)

	_, aliceToken := h.signupToken(t, "alice@example.com")
	_, bobToken := h.signupToken(t, "bob@example.com")

	alice := h.dial(t, domain.NewRoomID(), aliceToken)
	bob := h.dial(t, domain.NewRoomID(), bobToken)
	sendJoin(t, alice)
	readEvent(t, alice)
	readEvent(t, alice)

	frame, err := json.Marshal(map[string]string{"SendMessage": "private"})
	require.NoError(t, err)
	require.NoError(t, alice.WriteMessage(websocket.TextMessage, frame))
	readEvent(t, alice)

	bob.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err = bob.ReadMessage()
	assert.Error(t, err)
}
