package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"merac_backend/internal/logger"
	"merac_backend/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// cookie-сессия уже проверена в middleware, origin не режем
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WS подписывает пользователя на платежные события
func (h *Handler) WS(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("ws: upgrade failed", "user_id", userID, "error", err)
		return
	}

	ws.NewClient(h.Hub, conn, userID)
	logger.Info("ws: client connected", "user_id", userID)
}
