package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"codeberg.org/kartuli/server/api/rest/actor"
	"codeberg.org/kartuli/server/internal/errors"
	"codeberg.org/kartuli/server/internal/logger"
	ws "codeberg.org/kartuli/server/internal/websocket"
)

func newUpgrader(allowedOrigins []string, production bool) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     ws.CheckOrigin(allowedOrigins, production),
	}
}

// copies the token query parameter into the Authorization header so the
// regular auth middleware can validate it
func queryToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		var params ConnectParams
		if err := c.ShouldBindQuery(&params); err == nil && params.Token != "" && c.GetHeader("Authorization") == "" {
			c.Request.Header.Set("Authorization", "Bearer "+params.Token)
		}

		c.Next()
	}
}

// ChatSocketHandler godoc
// @Summary Chat over a websocket
// @Description Upgrades to a websocket carrying chat, image and usage messages for the caller.
// @Description Signed-in users pass their JWT as the token query parameter; guests use the cookie.
// @Tags chat
// @Param token query string false "JWT bearer token"
// @Success 101 {string} string "Switching Protocols"
// @Failure 401 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Router /api/v1/ws/chat [get]
func ChatSocketHandler(hub *ws.Hub, resolver *actor.Resolver, upgrader *websocket.Upgrader) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, ok := resolver.MustResolve(c)
		if !ok {
			return
		}

		ipAddress := c.ClientIP()

		if canAccept, reason := hub.CanAcceptConnection(a.Key(), ipAddress); !canAccept {
			errors.TooManyRequests(c, reason)
			return
		}

		clientID, err := ws.GenerateClientID()
		if err != nil {
			errors.InternalError(c, "failed to generate client ID", err)
			return
		}

		// a freshly issued guest cookie has to ride on the upgrade response
		var responseHeader http.Header
		if cookies := c.Writer.Header().Values("Set-Cookie"); len(cookies) > 0 {
			responseHeader = http.Header{"Set-Cookie": cookies}
			c.Writer.Header().Del("Set-Cookie")
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, responseHeader)
		if err != nil {
			logger.ErrorErr(err, "failed to upgrade connection",
				"actor", a.Key(),
				"ip", ipAddress,
			)

			return
		}

		client := ws.NewClient(clientID, a, ipAddress, conn, hub)
		if !hub.Add(client) {
			logger.Warn("websocket hub stopped, dropping connection",
				"client_id", clientID,
				"actor", a.Key(),
			)

			conn.Close() //nolint:errcheck,gosec // G104: hub is gone
			return
		}

		go client.WritePump()
		go client.ReadPump()

		logger.Info("websocket connection established",
			"client_id", clientID,
			"actor", a.Key(),
			"ip", ipAddress,
		)
	}
}
