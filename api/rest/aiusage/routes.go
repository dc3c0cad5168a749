package aiusage

import (
	"codeberg.org/finpal/server/internal/aiusage"
	"codeberg.org/finpal/server/internal/auth"
	"codeberg.org/finpal/server/internal/throttle"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(rg *gin.RouterGroup, limiter *aiusage.Limiter, jwtSecret string, burst *throttle.Throttle) {
	usage := rg.Group("/ai-usage")
	usage.Use(auth.AuthMiddleware(jwtSecret)) // all usage routes require authentication

	usage.GET("", GetStatus(limiter))
	usage.POST("/check", CheckUsage(limiter))
	usage.POST("/increment", burst.Middleware(), IncrementUsage(limiter))
}
