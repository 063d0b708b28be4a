// Minimal /healthz and /status HTTP surface — the machine-readable sibling
// of the CLI `status` command (spec.md §6). Not part of the core; the
// core never depends on this package.
//
// Grounded on the teacher's gin.New()+Recovery()+request-logging
// middleware shape (cmd/trading/app/app.go).
package main

import (
	"context"
	"net/http"
	"time"

	"indicatorworker/internal/completeness"
	"indicatorworker/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// httpServer wraps the health/status surface's http.Server with the same
// start/stop shape as cmd/trading/app/app.go's App.Run: ListenAndServe in a
// goroutine reporting to an error channel, and a graceful Shutdown with a
// bounded timeout.
type httpServer struct {
	addr    string
	handler http.Handler
	srv     *http.Server
}

func (s *httpServer) start() <-chan error {
	s.srv = &http.Server{
		Addr:         s.addr,
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errs <- err
			return
		}
		errs <- nil
	}()
	return errs
}

func (s *httpServer) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.srv.Close()
	}
}

type statusSource struct {
	startedAt time.Time
	cache     *completeness.Cache
}

func newRouter(src *statusSource) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLoggerMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/status", func(c *gin.Context) {
		stats := src.cache.Stats()
		c.JSON(http.StatusOK, gin.H{
			"uptime_seconds": time.Since(src.startedAt).Seconds(),
			"cache": gin.H{
				"total":      stats.Total,
				"complete":   stats.Complete,
				"incomplete": stats.Incomplete,
				"bytes_used": stats.BytesUsed,
			},
		})
	})

	return router
}

// requestLoggerMiddleware stamps every request with a correlation ID (the
// teacher's repositories generate a uuid.New().String() surrogate ID per
// row; here the same call generates one per request instead) so a
// request's log line can be grepped out of a busy worker's output.
func requestLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		requestID := uuid.New().String()
		c.Writer.Header().Set("X-Request-Id", requestID)
		c.Next()
		log.Stage("http", "request handled", log.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
		})
	}
}
