package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gamenight/internal/app"
	"gamenight/internal/auth"
	"gamenight/internal/collection"
	"gamenight/internal/games"
	"gamenight/internal/nights"
	synchub "gamenight/internal/sync"
	"gamenight/pkg/utils"
)

func main() {
	configPath := flag.String("config", "gamenight.yaml", "path to YAML config")
	flag.Parse()

	cfg, err := utils.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := utils.NewLogger(cfg.Dev())
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}
	defer a.Close()

	if !cfg.Dev() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	// Start TCP sync first (so binding errors show up early)
	tcpSrv := synchub.NewServer(cfg.Server.TCPAddr, a.Hub, logger.Named("tcp"))
	if err := tcpSrv.Listen(); err != nil {
		logger.Fatal("tcp listen failed", zap.String("addr", cfg.Server.TCPAddr), zap.Error(err))
	}
	router.GET("/ws", synchub.WSHandler(a.Hub))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "store": cfg.Store.Backend})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := a.Hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := a.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":      "not_ready",
				"store_error": err.Error(),
				"tcp_clients": stats.TCPClients,
				"ws_clients":  stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"store":       "ok",
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})))

	// Collections and games (public)
	collection.NewHandler(a.Collections, a.Games).RegisterRoutes(router.Group("/collections"))
	games.NewHandler(a.Games).RegisterRoutes(router.Group("/games"))
	nights.NewHandler(a.Nights).RegisterRoutes(router.Group("/nights"))

	// Accounts
	tokenSvc := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.JWTDuration)
	accounts := auth.NewHandler(auth.NewAccounts(auth.NewRepo(a.Store), tokenSvc, a.Collections))
	accounts.RegisterRoutes(router.Group("/auth"))
	accounts.RegisterUserRoutes(router.Group("/users"))

	httpSrv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := tcpSrv.Run(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("HTTP API server listening", zap.String("addr", cfg.Server.HTTPAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	logger.Info("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown error", zap.Error(err))
	}
	if err := tcpSrv.Close(); err != nil {
		logger.Warn("tcp shutdown error", zap.Error(err))
	}

	wg.Wait()
	logger.Info("servers stopped")
}
