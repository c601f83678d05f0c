package websocket

import (
	"net/http"
	"strings"

	"cinetrack/internal/logging"
	"cinetrack/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// TokenValidator resolves an access token to its claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (*service.Claims, error)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// origins are enforced by the CORS layer in front of the API
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler upgrades an authenticated request to a live feed socket. Browsers
// cannot set headers on the upgrade, so the token may come from ?token=.
func WSHandler(hub *Hub, tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		claims, err := tokens.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade has already written the HTTP error
			logging.Warn().Err(err).Msg("feed upgrade failed")
			return
		}

		client := NewClient(uuid.NewString(), claims.UserID, claims.Username, conn, hub)
		if !hub.register(client) {
			_ = conn.Close()
			return
		}

		go client.WritePump()
		go client.ReadPump()
	}
}
