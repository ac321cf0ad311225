// Package main is the entry point for the Luban orchestrator: a single
// binary running the reducer loop, the effect dispatcher, and the HTTP/WS
// gateway that fronts them.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kandev/luban/internal/auth"
	"github.com/kandev/luban/internal/common/config"
	"github.com/kandev/luban/internal/common/logger"
	"github.com/kandev/luban/internal/gateway/httpapi"
	gatewayws "github.com/kandev/luban/internal/gateway/websocket"
	"github.com/kandev/luban/internal/orchestrator"
	"github.com/kandev/luban/internal/orchestrator/persistence"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(logger.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputPath: cfg.Logging.OutputPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetDefault(log)

	log.Info("starting luban", zap.String("luban_root", cfg.Roots.LubanRoot))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbPath := filepath.Join(cfg.Roots.LubanRoot, "luban.db")
	store, err := persistence.Open(dbPath)
	if err != nil {
		log.Fatal("failed to open persistence store", zap.Error(err), zap.String("db_path", dbPath))
	}
	defer store.Close()
	log.Info("opened persistence store", zap.String("db_path", dbPath))

	loop := orchestrator.New(cfg.Roots, store, log)
	go loop.Run(ctx)

	authState := auth.NewState(cfg.Auth, os.Getenv("LUBAN_BOOTSTRAP_TOKEN"))
	if authState.Enabled() {
		log.Info("auth enabled", zap.String("cookie", authState.CookieName()))
	} else {
		log.Warn("auth disabled: LUBAN_BOOTSTRAP_TOKEN is not set, every request is authorized")
	}

	gateway := gatewayws.NewGateway(loop, log)
	go gateway.Hub.Run(ctx)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "luban"})
	})
	authState.SetupRoutes(router)

	protected := router.Group("/", authState.RequireSession())
	protected.GET("/api/app", func(c *gin.Context) {
		snapshot := loop.CurrentState().ToPersisted()
		c.JSON(http.StatusOK, snapshot)
	})
	gateway.SetupRoutes(protected)
	httpapi.NewAttachmentsHandler(cfg.Roots, loop, log).SetupRoutes(protected)

	addr := cfg.Server.Addr
	if addr == "" {
		addr = config.DefaultServerAddr
	}
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	go func() {
		log.Info("listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown error", zap.Error(err))
	}

	log.Info("stopped")
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version, Sec-WebSocket-Protocol")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
