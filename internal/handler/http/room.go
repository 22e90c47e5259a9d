package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gunagantinikhil/code-cast1/internal/service"
)

// RoomHandler exposes read-only room state.
type RoomHandler struct {
	syncService *service.SyncService
}

// NewRoomHandler creates a RoomHandler.
func NewRoomHandler(syncService *service.SyncService) *RoomHandler {
	if syncService == nil {
		panic("SyncService cannot be nil for RoomHandler")
	}
	return &RoomHandler{syncService: syncService}
}

// ListRooms handles GET /api/rooms.
func (h *RoomHandler) ListRooms(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, gin.H{"rooms": h.syncService.ListRooms()})
}

// GetRoom handles GET /api/rooms/:roomId. Unknown rooms report empty state.
func (h *RoomHandler) GetRoom(c *gin.Context) {
	roomID := c.Param("roomId")
	if roomID == "" {
		ErrorResponse(c, http.StatusBadRequest, "Invalid room ID")
		return
	}
	SuccessResponse(c, http.StatusOK, h.syncService.RoomView(roomID))
}
