package http

import (
	"net/http"

	"roomcast/internal/core/domain"
	"roomcast/internal/core/ports"
	"roomcast/internal/core/services"
	"roomcast/internal/infrastructure/middleware"
	"roomcast/pkg/errors"

	"github.com/gin-gonic/gin"
)

// ChatHandler exposes the room CRUD surface. The live message plane is the
// websocket endpoint; these routes cover room setup and history.
type ChatHandler struct {
	chatService ports.ChatService
	authService services.AuthService
}

func NewChatHandler(chatService ports.ChatService, authService services.AuthService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		authService: authService,
	}
}

func (h *ChatHandler) SetupRoutes(router *gin.Engine) {
	rooms := router.Group("/rooms", middleware.AuthMiddleware(h.authService))
	{
		rooms.POST("", h.CreateRoom)
		rooms.GET("", h.ListUserRooms)
		rooms.GET("/:room/messages", h.ListMessages)
		rooms.GET("/:room/users", h.ListUsers)
	}
}

type CreateRoomRequest struct {
	Name string `json:"name" binding:"required,max=1024"`
	Code string `json:"code" binding:"required,max=32"`
}

func (h *ChatHandler) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewValidationError("invalid request format"))
		return
	}

	room, err := h.chatService.CreateRoom(c.Request.Context(), contextUserID(c), req.Name, req.Code)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, room)
}

func (h *ChatHandler) ListUserRooms(c *gin.Context) {
	rooms, err := h.chatService.GetUserRooms(c.Request.Context(), contextUserID(c))
	if err != nil {
		c.Error(err)
		return
	}

	if rooms == nil {
		rooms = []domain.Room{}
	}
	c.JSON(http.StatusOK, rooms)
}

func (h *ChatHandler) ListMessages(c *gin.Context) {
	roomID, err := domain.ParseRoomID(c.Param("room"))
	if err != nil {
		c.Error(errors.NewNotFoundError("room"))
		return
	}

	// Only members may read history.
	if _, err := h.chatService.GetMembership(c.Request.Context(), roomID, contextUserID(c)); err != nil {
		c.Error(err)
		return
	}

	messages, err := h.chatService.GetMessagesByRoom(c.Request.Context(), roomID)
	if err != nil {
		c.Error(err)
		return
	}

	if messages == nil {
		messages = []domain.Message{}
	}
	c.JSON(http.StatusOK, messages)
}

func (h *ChatHandler) ListUsers(c *gin.Context) {
	roomID, err := domain.ParseRoomID(c.Param("room"))
	if err != nil {
		c.Error(errors.NewNotFoundError("room"))
		return
	}

	users, err := h.chatService.GetUsers(c.Request.Context(), roomID)
	if err != nil {
		c.Error(err)
		return
	}

	if users == nil {
		users = []domain.User{}
	}
	c.JSON(http.StatusOK, users)
}

func contextUserID(c *gin.Context) domain.UserID {
	id, _ := c.MustGet(middleware.ContextUserIDKey).(domain.UserID)
	return id
}
