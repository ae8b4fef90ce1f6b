// Package main is a standalone settings widget panel: it collects a
// ticker and a year count and acknowledges them. It shares nothing with
// the chart server.
package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	_ "embed"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed index.html
var indexHTML []byte

const (
	defaultTicker = "AAPL"
	defaultYears  = 5
	minYears      = 1
	maxYears      = 20
)

type settingsRequest struct {
	Ticker string `json:"ticker"`
	Years  int    `json:"years"`
}

func validate(req settingsRequest) error {
	if strings.TrimSpace(req.Ticker) == "" {
		return errors.New("ticker must not be empty")
	}
	if req.Years < minYears || req.Years > maxYears {
		return fmt.Errorf("years must be between %d and %d", minYears, maxYears)
	}
	return nil
}

func acknowledgement(req settingsRequest) string {
	return fmt.Sprintf("Settings confirmed: ticker %s, history %d years.",
		strings.TrimSpace(req.Ticker), req.Years)
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	port := os.Getenv("SETTINGS_PORT")
	if port == "" {
		port = "8090"
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
	})

	router.GET("/api/v1/defaults", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ticker":    defaultTicker,
			"years":     defaultYears,
			"min_years": minYears,
			"max_years": maxYears,
		})
	})

	router.POST("/api/v1/settings", func(c *gin.Context) {
		var req settingsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := validate(req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Info("settings confirmed",
			zap.String("ticker", req.Ticker),
			zap.Int("years", req.Years),
		)
		c.JSON(http.StatusOK, gin.H{"message": acknowledgement(req)})
	})

	logger.Info("Starting settings panel", zap.String("port", port))
	if err := router.Run(":" + port); err != nil {
		logger.Fatal("Failed to serve HTTP", zap.Error(err))
	}
}
