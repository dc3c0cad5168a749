package main

import (
	"codeberg.org/finpal/server/internal/aiusage"
	"codeberg.org/finpal/server/internal/config"
	"codeberg.org/finpal/server/internal/retention"
	"codeberg.org/finpal/server/internal/storage"
	"codeberg.org/finpal/server/internal/throttle"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// holds all dependencies and state for the API server
type Server struct {
	config    *config.Config
	store     *storage.Client
	limiter   *aiusage.Limiter
	throttle  *throttle.Throttle
	retention *retention.Scheduler
	registry  *prometheus.Registry
	router    *gin.Engine
}
