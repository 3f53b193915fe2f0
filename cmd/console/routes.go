package main

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"voicera-console/internal/httpapi"
	"voicera-console/internal/metrics"
	"voicera-console/internal/proxy"
	"voicera-console/pkg/utils"
)

// deps are the optional stores the health check probes.
type deps struct {
	db  *sql.DB
	rdb *redis.Client
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h *httpapi.Handlers, px *proxy.Handler, m *metrics.Metrics, d deps) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/readyz", func(c *gin.Context) {
		checks := gin.H{}
		ready := true
		if d.db != nil {
			if err := utils.HealthCheck(c.Request.Context(), d.db, 2*time.Second); err != nil {
				checks["postgres"], ready = err.Error(), false
			} else {
				checks["postgres"] = "ok"
			}
		}
		if d.rdb != nil {
			if err := d.rdb.Ping(c.Request.Context()).Err(); err != nil {
				checks["redis"], ready = err.Error(), false
			} else {
				checks["redis"] = "ok"
			}
		}
		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"ready": ready, "checks": checks})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	// Same-origin passthrough to the backend for browser pages.
	px.Register(r)

	// Console API
	h.Register(r)
}
