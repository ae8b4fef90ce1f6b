// Package main hosts the chart UI: an HTTP server that runs the render
// pipeline on every request and serves the page that draws the result.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "embed"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trading-backtester/services/clickhouse"
	"trading-backtester/services/config"
	"trading-backtester/services/dataset"
	"trading-backtester/services/pipeline"
	"trading-backtester/services/series"
)

//go:embed index.html
var indexHTML []byte

type server struct {
	pipeline *pipeline.Pipeline
	config   *config.Config
	logger   *zap.Logger
}

func newServer(cfg *config.Config, logger *zap.Logger) (*server, error) {
	store := dataset.NewStore(cfg.Cache.Expiration, cfg.Cache.Cleanup, logger)

	var bars pipeline.SeriesSource
	if cfg.ClickHouse.Enabled {
		src, err := clickhouse.NewSource(cfg.ClickHouse, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create clickhouse source: %w", err)
		}
		bars = src
	}

	return &server{
		pipeline: pipeline.New(store, bars, logger),
		config:   cfg,
		logger:   logger,
	}, nil
}

func (s *server) setupRoutes(r *gin.Engine) {
	r.GET("/", s.handleIndex)

	api := r.Group("/api/v1")
	{
		api.GET("/chart", s.handleChart)
		api.GET("/defaults", s.handleDefaults)
		api.POST("/cache/flush", s.handleCacheFlush)
		api.GET("/health", s.handleHealth)
	}
}

func (s *server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

// handleDefaults tells the UI what to prefill before the first render.
func (s *server) handleDefaults(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"csv_path":      s.config.Data.CSVPath,
		"granularity":   s.config.Data.Granularity,
		"granularities": series.Granularities,
	})
}

func (s *server) handleChart(c *gin.Context) {
	req := pipeline.Request{
		CSVPath: c.DefaultQuery("path", s.config.Data.CSVPath),
		Symbol:  c.Query("symbol"),
	}

	g, err := series.ParseGranularity(c.DefaultQuery("granularity", s.config.Data.Granularity))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Granularity = g

	if req.Symbol != "" {
		from, to, err := parseRange(c.Query("from"), c.Query("to"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req.From, req.To = from, to
	}

	res, err := s.pipeline.Render(c.Request.Context(), req)
	if err != nil {
		apiErr, status := pipeline.Classify(err)
		c.JSON(status, gin.H{"error": apiErr})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *server) handleCacheFlush(c *gin.Context) {
	s.pipeline.FlushCache()
	c.JSON(http.StatusOK, gin.H{"status": "flushed"})
}

func (s *server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}

func parseRange(fromStr, toStr string) (time.Time, time.Time, error) {
	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("bad 'from' date: %w", err)
	}
	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("bad 'to' date: %w", err)
	}
	return from, to, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting chart server",
		zap.String("environment", cfg.Environment),
		zap.String("default_csv", cfg.Data.CSVPath),
	)

	srv, err := newServer(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create server", zap.Error(err))
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	srv.setupRoutes(router)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.Int("port", cfg.Server.HTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to serve HTTP", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}
	logger.Info("Server stopped")
}
