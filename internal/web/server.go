package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/csheth/expertdesk/internal/answer"
	"github.com/csheth/expertdesk/internal/logger"
)

// Config wires the generator and logging into the web form.
type Config struct {
	Generator  *answer.Generator
	ClientName string
	Logger     *logger.Logger
}

type Server struct {
	Engine   *gin.Engine
	log      *logger.Logger
	shutdown time.Duration
}

func NewServer(cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		Engine:   NewRouter(NewHandler(cfg.Generator, cfg.ClientName, log), log),
		log:      log,
		shutdown: 5 * time.Second,
	}
}

// NewRouter mounts the form routes on a fresh engine.
func NewRouter(h *Handler, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log))
	router.SetHTMLTemplate(pageTemplate)

	router.GET("/healthz", h.Health)
	router.GET("/", h.Index)
	router.POST("/topic", h.SelectTopic)
	router.POST("/ask", h.Ask)
	return router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Engine}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("web form listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
	defer cancel()
	s.log.Info("web form shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if log == nil {
			return
		}
		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
