package admin

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"uptime":    time.Since(s.appeared).String(),
			"component": "assetlink-admin",
			"version":   "0.1.0",
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"state":         s.client.State().String(),
			"connected":     s.client.Connected(),
			"authenticated": s.client.Authenticated(),
		})
	})

	s.router.GET("/events", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"events": s.client.Events().History(),
		})
	})
}
