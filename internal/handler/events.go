package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sakhrdev1-ctrl/Mangsales/internal/security/auth"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/security/middleware"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/service"
)

const (
	eventsPingInterval = 15 * time.Second
	eventsWriteTimeout = 5 * time.Second
	eventsPongTimeout  = 2 * eventsPingInterval
)

// EventsHandler streams store change notifications over a WebSocket
type EventsHandler struct {
	store          *service.Store
	logger         *slog.Logger
	allowedOrigins []string
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(store *service.Store, allowedOrigins []string, logger *slog.Logger) *EventsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventsHandler{
		store:          store,
		logger:         logger,
		allowedOrigins: allowedOrigins,
	}
}

func (h *EventsHandler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// non-browser clients send no origin
				return true
			}
			for _, allowed := range h.allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			h.logger.Warn("websocket origin rejected", slog.String("origin", origin))
			return false
		},
	}
}

// sessionLive reports whether the login the stream was opened under is still the current session
func (h *EventsHandler) sessionLive(claims *auth.Claims) bool {
	if claims == nil {
		return false
	}
	user, sessionID, ok := h.store.CurrentSession()
	return ok && user.ID == claims.UserID && sessionID == claims.SessionID
}

func (h *EventsHandler) closeEnded(ws *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "session ended")
	_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(eventsWriteTimeout))
}

// ServeHTTP handles GET /ws/events. The stream closes once its session ends.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	// subscribe before the handshake completes so no event after it is missed
	events, cancel := h.store.Subscribe()
	defer cancel()

	upgrader := h.upgrader()
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer ws.Close()

	// the read pump notices the client going away and handles pongs
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		_ = ws.SetReadDeadline(time.Now().Add(eventsPongTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(eventsPongTimeout))
		})
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.logger.Debug("websocket read ended", slog.String("error", err.Error()))
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(eventsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			_ = ws.SetWriteDeadline(time.Now().Add(eventsWriteTimeout))
			if err := ws.WriteJSON(ev); err != nil {
				h.logger.Debug("event stream ended", slog.String("reason", err.Error()))
				return
			}
			if ev.Kind == service.EventSession && !h.sessionLive(claims) {
				h.logger.Debug("event stream closed, session ended")
				h.closeEnded(ws)
				return
			}
		case <-ticker.C:
			// session events can be dropped for a slow subscriber
			if !h.sessionLive(claims) {
				h.closeEnded(ws)
				return
			}
			if err := ws.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(eventsWriteTimeout)); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}
