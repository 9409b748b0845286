package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"streamdash/internal/core/domain"
	"streamdash/internal/core/services"

	"github.com/google/uuid"
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

// Config tunes websocket keepalive and buffering.
type Config struct {
	RequireAuth  bool
	PingInterval time.Duration
	PongTimeout  time.Duration
	WriteTimeout time.Duration
	SendBuffer   int
}

// WebSocketServer upgrades dashboard connections and pumps bus frames out to
// them. Every connection is attached to the channel and user mutation topics
// on connect; telemetry topics are joined on demand via subscribe events.
type WebSocketServer struct {
	bus  *EventBus
	subs *SubscriptionManager
	auth services.AuthService
	cfg  Config

	logger *zap.SugaredLogger
}

// clientMessage is what the dashboard sends: an event name, nothing more.
type clientMessage struct {
	Event string `json:"event"`
}

func NewWebSocketServer(
	bus *EventBus,
	subs *SubscriptionManager,
	auth services.AuthService,
	cfg Config,
	logger *zap.SugaredLogger,
) *WebSocketServer {
	return &WebSocketServer{
		bus:    bus,
		subs:   subs,
		auth:   auth,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *WebSocketServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.cfg.RequireAuth {
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		if _, err := s.auth.ValidateToken(token); err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorw("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	connID := ConnID(uuid.NewString())
	sink := make(chan Frame, s.cfg.SendBuffer)

	s.bus.Attach(connID, sink)
	s.bus.Subscribe(connID, domain.TopicChannel)
	s.bus.Subscribe(connID, domain.TopicUser)
	defer s.subs.OnDisconnect(connID)

	s.logger.Infow("Client connected", "conn_id", connID, "remote", r.RemoteAddr)

	conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
		return nil
	})

	pingTicker := time.NewTicker(s.cfg.PingInterval)
	defer pingTicker.Stop()

	messageChan := make(chan clientMessage, 10)
	errorChan := make(chan error, 1)

	// Closed when the write pump returns, so the reader never blocks on a
	// send nobody will receive.
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				errorChan <- err
				return
			}
			conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))

			var msg clientMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				s.logger.Debugw("Ignoring malformed client message", "conn_id", connID, "error", err)
				continue
			}
			select {
			case messageChan <- msg:
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case frame := <-sink:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.WriteJSON(frame); err != nil {
				s.logger.Infow("Write failed, closing connection", "conn_id", connID, "error", err)
				return
			}

		case msg := <-messageChan:
			s.handleClientEvent(connID, msg.Event)

		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.logger.Infow("Ping failed, closing connection", "conn_id", connID, "error", err)
				return
			}

		case err := <-errorChan:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Infow("Read error", "conn_id", connID, "error", err)
			} else {
				s.logger.Infow("Client disconnected", "conn_id", connID)
			}
			return
		}
	}
}

func (s *WebSocketServer) handleClientEvent(id ConnID, event string) {
	switch event {
	case "subscribe:stats":
		s.subs.JoinTopic(id, domain.TopicStats)
	case "subscribe:channels":
		s.subs.JoinTopic(id, domain.TopicChannelFeed)
	case "unsubscribe:stats":
		s.subs.LeaveTopic(id, domain.TopicStats)
	case "unsubscribe:channels":
		s.subs.LeaveTopic(id, domain.TopicChannelFeed)
	default:
		s.logger.Debugw("Unknown client event", "conn_id", id, "event", event)
	}
}
