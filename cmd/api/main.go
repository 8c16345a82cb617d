package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	deliveryhttp "chain-registry/internal/adapter/delivery/http"
	handlerhttp "chain-registry/internal/adapter/handler/http"
	"chain-registry/internal/adapter/rpc"
	"chain-registry/internal/adapter/storage/memory"
	"chain-registry/internal/application"
	"chain-registry/internal/bridge"
	"chain-registry/internal/config"
	"chain-registry/internal/logger"
	"chain-registry/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// --- Configuration ---
	cfgPath := "configs"
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration from %s: %v", cfgPath, err)
	}

	// --- Logger ---
	appLogger, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to setup logger: %v", err)
	}
	defer appLogger.Sync()
	appLogger.Info("Logger initialized", zap.Any("config", cfg.Logger))

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Catalog ---
	sources, err := application.SourcesFromConfig(*cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Invalid catalog configuration", zap.Error(err))
	}
	reg, err := application.LoadRegistry(rootCtx, appLogger, sources)
	if err != nil {
		appLogger.Fatal("Failed to load chain registry", zap.Error(err))
	}

	// --- Dependency Injection (Manual) ---
	appLogger.Info("Initializing dependencies...")
	cacheRepo := memory.NewCacheRepository(*cfg, appLogger)
	rpcChecker := rpc.NewChecker(appLogger)
	collector := metrics.NewCollector("")

	chainService := application.NewChainService(rootCtx, reg, cacheRepo, rpcChecker, collector, appLogger, *cfg)
	go chainService.StartBackgroundChecker()

	chainHandler := handlerhttp.NewChainHandler(chainService, appLogger)
	bridgeSession := bridge.NewSession(reg, cfg.Bridge, appLogger)
	bridgeHandler := handlerhttp.NewBridgeHandler(bridgeSession, appLogger)

	// --- HTTP Router & Server ---
	appLogger.Info("Setting up HTTP router...")
	r := router.New()
	deliveryhttp.RegisterRoutes(r, chainHandler, bridgeHandler, collector.Registry(), appLogger)

	server := &fasthttp.Server{
		Handler: deliveryhttp.Handler(r, appLogger),
		Name:    cfg.App.Name,
	}

	serverAddr := ":" + cfg.Server.Port
	serveErr := make(chan error, 1)
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("address", serverAddr), zap.String("version", cfg.App.Version))
		serveErr <- server.ListenAndServe(serverAddr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	case <-rootCtx.Done():
		appLogger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		appLogger.Error("Server shutdown failed", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
