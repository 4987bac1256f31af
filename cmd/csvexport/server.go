package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/friendsoftheweb/utils/csvhttp"
)

const shutdownTimeout = 10 * time.Second

type exportQuery struct {
	Limit int `form:"limit" binding:"min=0"`
}

func newRouter(e *exporter, cfg *Config, gatherer prometheus.Gatherer) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(e.logger))

	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	router.GET("/export.csv", e.handleExport(cfg.Filename, cfg.Limit))

	return router
}

// handleExport serves an export. The limit query parameter overrides the configured number of users.
func (e *exporter) handleExport(filename string, defaultLimit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := exportQuery{Limit: defaultLimit}
		if err := c.ShouldBindQuery(&q); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		x := e.newExport(c.Request.Context(), modeServe, q.Limit)
		c.Header("X-Export-Id", x.id)

		err := csvhttp.Write(c, csvhttp.Config{Filename: filename, Options: x.opts}, x.src)
		if errors.Is(err, context.Canceled) {
			x.logger.Info("Client went away")
		}
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Int("size", c.Writer.Size()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		logger.Debug("Request", fields...)
	}
}

// serve runs the HTTP server on ln until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, ln net.Listener, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Listening", zap.String("address", ln.Addr().String()))

		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
