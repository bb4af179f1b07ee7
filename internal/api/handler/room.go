package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cantorhq/cantor/internal/api/middleware"
	"github.com/cantorhq/cantor/internal/api/request"
	"github.com/cantorhq/cantor/internal/api/response"
	"github.com/cantorhq/cantor/internal/coordinator"
	"github.com/cantorhq/cantor/internal/model"
)

// RoomHandler handles room-related endpoints. Play happens over the
// websocket; these endpoints only create rooms and read snapshots.
type RoomHandler struct {
	coord *coordinator.Coordinator
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(coord *coordinator.Coordinator) *RoomHandler {
	return &RoomHandler{coord: coord}
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())

	var req request.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Mode == "" {
		WriteError(w, NewInvalidRequestError("mode is required"))
		return
	}

	key, err := h.coord.CreateRoom(r.Context(), model.GameMode(req.Mode), account.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.RoomCreated{
		Key:  string(key),
		Mode: req.Mode,
	})
}

// Get handles GET /api/v1/rooms/{key}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := model.RoomKey(mux.Vars(r)["key"])

	snapshot, err := h.coord.Snapshot(r.Context(), key)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, snapshot)
}
