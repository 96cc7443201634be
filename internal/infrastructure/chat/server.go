package chat

import (
	"net/http"

	"roomcast/internal/core/domain"
	"roomcast/internal/core/ports"
	"roomcast/internal/core/services"
	"roomcast/internal/infrastructure/monitoring"
	"roomcast/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Should be configured properly for production
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Server upgrades authenticated websocket requests and hands the connection
// to a Session bound to the requested room.
type Server struct {
	registry *Registry
	auth     services.AuthService
	chat     ports.ChatService

	sessionCfg SessionConfig

	metrics *monitoring.PrometheusCollector
	logger  *zap.SugaredLogger
}

func NewServer(
	registry *Registry,
	auth services.AuthService,
	chat ports.ChatService,
	sessionCfg SessionConfig,
	metrics *monitoring.PrometheusCollector,
	logger *zap.SugaredLogger,
) *Server {
	return &Server{
		registry:   registry,
		auth:       auth,
		chat:       chat,
		sessionCfg: sessionCfg,
		metrics:    metrics,
		logger:     logger,
	}
}

// HandleConnection serves GET /ws/:room?token=... . The room id and the
// token are checked before the upgrade; both failure modes answer 404 so
// the endpoint does not reveal which check failed.
func (s *Server) HandleConnection(c *gin.Context) {
	roomID, err := domain.ParseRoomID(c.Param("room"))
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	claims, err := s.auth.ValidateToken(c.Query("token"))
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	// Subscribe before the upgrade completes so the client cannot observe
	// an accepted connection that misses frames published right after.
	room := s.registry.Get(roomID)
	sub := room.Subscribe()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		sub.Close()
		s.logger.Errorw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, span := tracing.TraceSessionEvent(c.Request.Context(), "session", roomID.String(), userID.String())
	defer span.End()

	session := NewSession(conn, userID, room, sub, s.chat, s.sessionCfg, s.metrics, s.logger)
	session.Run(ctx)
}
