package http

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"roomcast/internal/core/services"
	"roomcast/internal/infrastructure/middleware"
	"roomcast/internal/infrastructure/repositories/memory"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) *gin.Engine {
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
	chat := services.NewChatService(memory.NewMemoryChatRepository(), logger)

	router := gin.New()
	router.Use(middleware.ErrorHandlerMiddleware(logger))
	NewAuthHandler(auth, nil).SetupRoutes(router)
	NewChatHandler(chat, auth).SetupRoutes(router)
	return router
}

func doJSON(router *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func signup(t *testing.T, router *gin.Engine, email string) (userID string, pair services.TokenPair) {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/signup", map[string]string{
		"name":     "alice",
		"email":    email,
		"password": "secret123",
		"code":     "ABC123",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		User struct {
			UserID string `json:"user_id"`
			Email  string `json:"email"`
		} `json:"user"`
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, email, resp.User.Email)
	return resp.User.UserID, services.TokenPair{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}
}

func TestSignupThenLogin(t *testing.T) {
	router := newTestRouter(t)
	signup(t, router, "alice@example.com")

	w := doJSON(router, http.MethodPost, "/login", map[string]string{
		"email":    "alice@example.com",
		"password": "secret123",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var pair services.TokenPair
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pair))
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	router := newTestRouter(t)
	signup(t, router, "alice@example.com")

	unknownEmail := doJSON(router, http.MethodPost, "/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "secret123",
	}, nil)
	wrongPassword := doJSON(router, http.MethodPost, "/login", map[string]string{
		"email":    "alice@example.com",
		"password": "not-the-password",
	}, nil)

	assert.Equal(t, http.StatusForbidden, unknownEmail.Code)
	assert.Equal(t, http.StatusForbidden, wrongPassword.Code)
	assert.JSONEq(t, unknownEmail.Body.String(), wrongPassword.Body.String())
}

func TestSignupDuplicateEmail(t *testing.T) {
	router := newTestRouter(t)
	signup(t, router, "alice@example.com")

	w := doJSON(router, http.MethodPost, "/signup", map[string]string{
		"name":     "second alice",
		"email":    "alice@example.com",
		"password": "different1",
		"code":     "XYZ789",
	}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSignupRejectsInvalidInput(t *testing.T) {
	router := newTestRouter(t)

	cases := []map[string]string{
		{"name": "alice", "email": "not-an-email", "password": "secret123", "code": "ABC123"},
		{"name": "<alice>", "email": "alice@example.com", "password": "secret123", "code": "ABC123"},
		{"name": "alice", "email": "alice@example.com", "password": "short", "code": "ABC123"},
	}
	for _, body := range cases {
		w := doJSON(router, http.MethodPost, "/signup", body, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %v", body)
	}
}

func TestRefreshRotation(t *testing.T) {
	router := newTestRouter(t)
	_, pair := signup(t, router, "alice@example.com")

	first := doJSON(router, http.MethodGet, "/refresh", nil, map[string]string{
		"Authorization": "Bearer " + pair.RefreshToken,
	})
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())

	// The consumed refresh token must not work a second time.
	replay := doJSON(router, http.MethodGet, "/refresh", nil, map[string]string{
		"Authorization": "Bearer " + pair.RefreshToken,
	})
	assert.Equal(t, http.StatusForbidden, replay.Code)

	// The newly issued refresh token works.
	var rotated services.TokenPair
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &rotated))
	second := doJSON(router, http.MethodGet, "/refresh", nil, map[string]string{
		"Authorization": "Bearer " + rotated.RefreshToken,
	})
	assert.Equal(t, http.StatusOK, second.Code)
}

func TestLogoutInvalidatesRefresh(t *testing.T) {
	router := newTestRouter(t)
	_, pair := signup(t, router, "alice@example.com")

	w := doJSON(router, http.MethodGet, "/logout", nil, map[string]string{
		"Authorization": "Bearer " + pair.AccessToken,
	})
	require.Equal(t, http.StatusNoContent, w.Code)

	refresh := doJSON(router, http.MethodGet, "/refresh", nil, map[string]string{
		"Authorization": "Bearer " + pair.RefreshToken,
	})
	assert.Equal(t, http.StatusForbidden, refresh.Code)
}

func TestLogoutRequiresToken(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/logout", nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRoomEndpoints(t *testing.T) {
	router := newTestRouter(t)
	_, alice := signup(t, router, "alice@example.com")
	_, bob := signup(t, router, "bob@example.com")

	created := doJSON(router, http.MethodPost, "/rooms", map[string]string{
		"name": "general",
		"code": "G-001",
	}, map[string]string{"Authorization": "Bearer " + alice.AccessToken})
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())

	var room struct {
		RoomID string `json:"room_id"`
		Name   string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &room))
	assert.Equal(t, "general", room.Name)

	listed := doJSON(router, http.MethodGet, "/rooms", nil,
		map[string]string{"Authorization": "Bearer " + alice.AccessToken})
	require.Equal(t, http.StatusOK, listed.Code)
	assert.Contains(t, listed.Body.String(), room.RoomID)

	// History is member-only; bob gets 404 for alice's room.
	history := doJSON(router, http.MethodGet, "/rooms/"+room.RoomID+"/messages", nil,
		map[string]string{"Authorization": "Bearer " + bob.AccessToken})
	assert.Equal(t, http.StatusNotFound, history.Code)

	own := doJSON(router, http.MethodGet, "/rooms/"+room.RoomID+"/messages", nil,
		map[string]string{"Authorization": "Bearer " + alice.AccessToken})
	assert.Equal(t, http.StatusOK, own.Code)
	assert.JSONEq(t, "[]", own.Body.String())
}
