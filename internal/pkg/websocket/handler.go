package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/yigit/unicampus/internal/pkg/auth"
)

// TokenValidator validates access tokens presented on the upgrade request
type TokenValidator interface {
	ValidateAndExtractClaims(tokenString string) (*auth.Claims, error)
}

// Handler for WebSocket connections
type Handler struct {
	hub       *Hub
	validator TokenValidator
	upgrader  websocket.Upgrader
	logger    zerolog.Logger
}

// NewHandler creates a new WebSocket handler. An empty origin list accepts any origin.
func NewHandler(hub *Hub, validator TokenValidator, allowedOrigins []string, logger zerolog.Logger) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &Handler{
		hub:       hub,
		validator: validator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || allowed["*"] || origin == "" || allowed[origin]
			},
		},
		logger: logger,
	}
}

// HandleConnection godoc
// @Summary Subscribe to live notifications
// @Description Upgrades to a WebSocket that receives the caller's notifications as they are created
// @Tags notifications
// @Param token query string false "Access token, when the Authorization header cannot be set"
// @Success 101 {string} string "Switching Protocols"
// @Failure 401 {object} dto.APIResponse
// @Router /ws/notifications [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	raw := c.Query("token")
	if raw == "" {
		raw = c.GetHeader("Authorization")
	}

	token, err := auth.ExtractBearerToken(raw)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Missing access token"})
		return
	}

	claims, err := h.validator.ValidateAndExtractClaims(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired access token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Int64("userID", claims.UserID).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		send:   make(chan []byte, 64),
		userID: claims.UserID,
		logger: h.logger,
	}
	select {
	case h.hub.register <- client:
	case <-h.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
