package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"roomcast/internal/core/domain"
	"roomcast/internal/core/ports"
	"roomcast/internal/infrastructure/monitoring"
	apperrors "roomcast/pkg/errors"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// SessionConfig carries the per-connection tuning knobs.
type SessionConfig struct {
	BufferSize      int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	PingInterval    time.Duration
	MaxMessageBytes int64
}

// Session drives one websocket connection: a reader that decodes and
// dispatches client events, a relay that moves room frames into the
// outbound buffer, and a writer that owns all writes to the socket.
// The three goroutines live and die together.
type Session struct {
	conn   *websocket.Conn
	userID domain.UserID
	room   *Room
	sub    *Subscriber
	chat   ports.ChatService

	outbound chan []byte
	cfg      SessionConfig

	metrics *monitoring.PrometheusCollector
	logger  *zap.SugaredLogger
}

func NewSession(
	conn *websocket.Conn,
	userID domain.UserID,
	room *Room,
	sub *Subscriber,
	chat ports.ChatService,
	cfg SessionConfig,
	metrics *monitoring.PrometheusCollector,
	logger *zap.SugaredLogger,
) *Session {
	if cfg.BufferSize < 1 {
		cfg.BufferSize = 1
	}
	return &Session{
		conn:     conn,
		userID:   userID,
		room:     room,
		sub:      sub,
		chat:     chat,
		outbound: make(chan []byte, cfg.BufferSize),
		cfg:      cfg,
		metrics:  metrics,
		logger:   logger.With("user_id", userID, "room_id", room.ID()),
	}
}

// Run blocks until the connection ends. The first goroutine to exit, for
// any reason, cancels the rest.
func (s *Session) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.metrics.RecordSessionStarted()
	defer s.metrics.RecordSessionEnded()
	defer s.sub.Close()

	// The reader blocks inside ReadMessage; closing the socket is the only
	// way to unblock it once the session is cancelled.
	go func() {
		<-ctx.Done()
		s.conn.Close()
	}()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		defer cancel()
		s.readLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		defer cancel()
		s.relayLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		defer cancel()
		s.writeLoop(ctx)
	}()
	wg.Wait()

	s.logger.Infow("session closed")
}

func (s *Session) readLoop(ctx context.Context) {
	s.conn.SetReadLimit(s.cfg.MaxMessageBytes)
	s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && ctx.Err() == nil {
				s.logger.Warnw("read failed", "error", err)
			}
			return
		}

		event, err := domain.DecodeClientEvent(data)
		if err != nil {
			// Content validation failures are reported back; frames that
			// do not parse at all are logged and dropped.
			if domain.IsValidationError(err) {
				s.enqueueOwn(domain.ErrMessage{Message: clientFacingMessage(err)})
			} else {
				s.logger.Warnw("discarding malformed frame", "error", err)
			}
			continue
		}

		s.dispatch(ctx, event)
	}
}

// dispatch applies one client event. The switch is exhaustive over the
// client event variants.
func (s *Session) dispatch(ctx context.Context, event domain.ClientEvent) {
	switch ev := event.(type) {
	case domain.JoinRequest:
		s.enqueueOwn(domain.JoinResponse{UserID: s.userID})
		if err := s.room.Publish(domain.UserJoinResponse{UserID: s.userID}); err != nil {
			s.logger.Errorw("join broadcast failed", "error", err)
		}
		s.logger.Infow("user joined room", "join_at", ev.JoinAt)

	case domain.SendMessage:
		message, err := s.chat.CreateMessage(ctx, s.userID, s.room.ID(), ev.Content)
		if err != nil {
			s.logger.Errorw("message persist failed", "error", err)
			s.enqueueOwn(domain.ErrMessage{Message: clientFacingMessage(err)})
			return
		}
		if err := s.room.Publish(domain.ReceivedMessage(*message)); err != nil {
			s.logger.Errorw("message broadcast failed", "error", err)
			return
		}
		s.metrics.RecordMessageBroadcast()

	default:
		s.logger.Errorw("unhandled client event", "type", fmt.Sprintf("%T", event))
	}
}

func (s *Session) relayLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame := <-s.sub.Frames():
			s.enqueueFrame(frame)
		}
	}
}

func (s *Session) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case frame := <-s.outbound:
			s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				if ctx.Err() == nil {
					s.logger.Warnw("write failed", "error", err)
				}
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// enqueueOwn encodes an event destined only for this connection.
func (s *Session) enqueueOwn(ev domain.ServerEvent) {
	frame, err := domain.EncodeServerEvent(ev)
	if err != nil {
		s.logger.Errorw("encode failed", "error", err)
		return
	}
	s.enqueueFrame(frame)
}

// enqueueFrame applies the same drop-oldest policy as the room buffer.
func (s *Session) enqueueFrame(frame []byte) {
	select {
	case s.outbound <- frame:
		return
	default:
	}

	select {
	case <-s.outbound:
		s.metrics.RecordFrameDropped("session")
	default:
	}
	select {
	case s.outbound <- frame:
	default:
		s.metrics.RecordFrameDropped("session")
	}
}

// clientFacingMessage keeps storage detail out of frames sent to clients.
func clientFacingMessage(err error) string {
	if appErr := apperrors.GetAppError(err); appErr != nil {
		return appErr.Message
	}
	return err.Error()
}
