package health

import (
	"context"
	"net/http"
	"time"

	"codeberg.org/finpal/server/internal/logger"
	"github.com/gin-gonic/gin"
)

// checks that a backing store answers
type Pinger func(ctx context.Context) error

// returns the server health status
func Handler(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Status:  "healthy",
		Service: "finpal",
		Version: "1.0.0",
	})
}

// responds with pong for testing
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{Message: "pong"})
}

// reports whether the usage store is reachable
func ReadyHandler(store string, ping Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if ping != nil {
			if err := ping(ctx); err != nil {
				logger.ErrorErr(err, "usage store not ready", "store", store)
				c.JSON(http.StatusServiceUnavailable, ReadyResponse{
					Status: "unavailable",
					Store:  store,
					Error:  "usage store unreachable",
				})
				return
			}
		}

		c.JSON(http.StatusOK, ReadyResponse{Status: "ready", Store: store})
	}
}
