// Package admin serves the local observability surface: client state
// and the protocol event history, for consumption by presentation
// code. It is the only outward-facing API toward a UI layer.
package admin

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/assetlink/assetlink/internal/client"
	"github.com/assetlink/assetlink/internal/observability"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type Server struct {
	addr     string
	client   *client.Client
	router   *gin.Engine
	appeared time.Time
	httpSrv  *http.Server
}

func New(addr string, c *client.Client, corsOrigins []string) *Server {
	observability.RegisterMetrics()
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(corsOrigins),
		AllowMethods: []string{"GET"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		addr:     addr,
		client:   c,
		router:   r,
		appeared: time.Now(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

// Serve blocks until the listener fails or Shutdown is called.
func (s *Server) Serve() error {
	s.httpSrv = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Info().Str("addr", s.addr).Msg("admin surface listening")
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		out = append(out, origin)
	}
	if len(out) == 0 {
		out = []string{"http://localhost:3000"}
	}
	return out
}
