package game

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// The origin middleware in front of the router already filters origins, so
// the upgrader accepts whatever reaches it.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler serves the per-game websocket endpoints out of a Registry.
type Handler struct {
	registry *Registry
}

func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

// RegisterRoutes mounts GET /ws/:game on the router. The game segment
// selects the engine; roomId and playerId are required query parameters.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/ws/:game", h.ConnectHandler)
}

func (h *Handler) ConnectHandler(ctx *gin.Context) {
	eng, ok := h.registry.Get(ctx.Param("game"))
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "unknown game"})
		return
	}

	roomID := ctx.Query("roomId")
	playerID := ctx.Query("playerId")
	if roomID == "" || playerID == "" {
		ctx.String(http.StatusBadRequest, "Missing roomId or playerId")
		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		// Upgrade has already written its own error response.
		return
	}

	eng.AcceptConnection(roomID, playerID, NewWebsocketConn(conn))
}
