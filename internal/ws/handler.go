package ws

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/cantorhq/cantor/internal/api/middleware"
	"github.com/cantorhq/cantor/internal/model"
	"github.com/cantorhq/cantor/internal/services/auth"
)

// Handler upgrades HTTP requests to websocket connections and seats the
// resulting client in its room.
type Handler struct {
	hub         *Hub
	coord       Coordinator
	authService *auth.Service
	upgrader    websocket.Upgrader
	logger      *slog.Logger
}

// NewHandler creates a new websocket handler
func NewHandler(hub *Hub, coord Coordinator, authService *auth.Service, logger *slog.Logger) *Handler {
	return &Handler{
		hub:         hub,
		coord:       coord,
		authService: authService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin checking is left to the reverse proxy in front of us.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.With("component", "ws"),
	}
}

// ServeHTTP handles GET /ws/{key}. Authentication runs before the upgrade
// so a bad token costs a plain 401 rather than a torn-down socket.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := model.RoomKey(mux.Vars(r)["key"])

	token := middleware.ExtractToken(r)
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	account, err := h.authService.GetAccount(r.Context(), token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", "error", err)
		return
	}

	connID := model.ConnID(uuid.NewString())
	client := NewClient(connID, conn, h.hub, h.coord, h.logger)
	h.hub.Register(client)
	client.Start()

	h.coord.HandleConnect(connID, key, account.ID, account.DisplayName, account.Balance)

	h.logger.Info("Websocket connected",
		"conn_id", connID,
		"room_key", key,
		"player_id", account.ID)
}
