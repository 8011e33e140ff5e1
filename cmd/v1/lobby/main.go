package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Levyks/muuzika-server/internal/v1/config"
	"github.com/Levyks/muuzika-server/internal/v1/lobby"
	"github.com/Levyks/muuzika-server/internal/v1/logging"
	"github.com/Levyks/muuzika-server/internal/v1/middleware"
)

const maxBodyBytes = 16 * 1024 // 16 KiB

func main() {
	// Load .env file for local development. Try multiple paths to handle
	// different ways of running the app.
	envPaths := []string{".env", "../../../.env", "../../.env"}
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			break
		}
	}

	cfg, err := config.ValidateEnv()
	if err != nil {
		// Absence of JWT_SECRET (or any other invalid required var) is a
		// fatal startup error.
		panic(err)
	}

	if err := logging.Initialize(cfg.LogLevel == "debug"); err != nil {
		panic(err)
	}

	l := lobby.NewLobby(cfg.RoomCodeLength, cfg.JWTSecret, lobby.ExampleHandler, 10*time.Second)

	router := gin.Default()
	router.Use(middleware.CorrelationID())
	router.Use(gin.Recovery())
	router.Use(limitRequestBody(maxBodyBytes))

	corsConfig := cors.DefaultConfig()
	if cfg.AllowedOrigins != "" {
		corsConfig.AllowOrigins = splitOrigins(cfg.AllowedOrigins)
	} else {
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	l.RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	srv := &http.Server{
		Addr:    "0.0.0.0:3030",
		Handler: router,
	}

	go func() {
		logging.Info(context.Background(), "lobby server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatal(context.Background(), "failed to run server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info(context.Background(), "shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error(context.Background(), "server forced to shutdown", zap.Error(err))
	}

	logging.Info(context.Background(), "server exiting")
}

func limitRequestBody(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

func splitOrigins(raw string) []string {
	var origins []string
	start := 0
	for i := 0; i <= len(raw); i++ {
		if i == len(raw) || raw[i] == ',' {
			if i > start {
				origins = append(origins, raw[start:i])
			}
			start = i + 1
		}
	}
	return origins
}
