package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	Service = "kartuli"
	Version = "1.0.0"

	checkTimeout = 2 * time.Second
)

// Handler godoc
// @Summary Health check
// @Description Reports service status and the reachability of its dependencies
// @Tags health
// @Produce json
// @Success 200 {object} Response
// @Failure 503 {object} Response
// @Router /health [get]
func Handler(deps map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
		defer cancel()

		resp := Response{
			Status:  "healthy",
			Service: Service,
			Version: Version,
		}

		status := http.StatusOK

		if len(deps) > 0 {
			resp.Checks = make(map[string]string, len(deps))
		}

		for name, dep := range deps {
			if err := dep.Ping(ctx); err != nil {
				resp.Checks[name] = "unreachable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}

			resp.Checks[name] = "ok"
		}

		c.JSON(status, resp)
	}
}

// responds with pong for testing
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{Message: "pong"})
}
