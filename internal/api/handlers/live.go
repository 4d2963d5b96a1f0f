package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/gamedash/internal/aggregate"
	"github.com/wonny/gamedash/internal/contracts"
	"github.com/wonny/gamedash/internal/dashboard"
	"github.com/wonny/gamedash/pkg/logger"
)

const (
	// Ping/Pong settings
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second

	maxMessageBytes = 64 << 10
)

// LiveHandler is the live dashboard: every selection a client sends is
// answered with the recomputed view
type LiveHandler struct {
	service  *aggregate.Service
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewLiveHandler creates a new live dashboard handler
func NewLiveHandler(service *aggregate.Service, log *logger.Logger) *LiveHandler {
	return &LiveHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		logger: log,
	}
}

// Serve upgrades the connection, sends the default view, then answers each selection
// GET /ws
func (h *LiveHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMessageBytes)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	done := make(chan struct{})
	defer close(done)
	go h.pingLoop(conn, done)

	h.logger.WithField("remote", r.RemoteAddr).Debug("Live dashboard client connected")

	if err := h.reply(r.Context(), conn, contracts.DefaultSelection()); err != nil {
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.WithError(err).Warn("Live dashboard connection closed unexpectedly")
			}
			return
		}

		var sel contracts.FilterSelection
		if err := json.Unmarshal(data, &sel); err != nil {
			if h.writeError(conn, "invalid selection: "+err.Error()) != nil {
				return
			}
			continue
		}

		if err := h.reply(r.Context(), conn, sel.WithDefaults()); err != nil {
			return
		}
	}
}

// reply sends the view for sel, or an error message the client can show
func (h *LiveHandler) reply(ctx context.Context, conn *websocket.Conn, sel contracts.FilterSelection) error {
	result, err := h.service.Aggregate(ctx, sel)
	if err != nil {
		return h.writeError(conn, err.Error())
	}

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(dashboard.BuildView(result))
}

func (h *LiveHandler) writeError(conn *websocket.Conn, message string) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(map[string]string{"error": message})
}

// pingLoop sends periodic pings to keep the connection alive
func (h *LiveHandler) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait)); err != nil {
				h.logger.WithError(err).Debug("Failed to send ping")
				return
			}
		}
	}
}
