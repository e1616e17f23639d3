package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/celerix-dev/mediaid/internal/agent"
	"github.com/celerix-dev/mediaid/internal/api"
	"github.com/celerix-dev/mediaid/internal/config"
	"github.com/celerix-dev/mediaid/internal/server"
	"github.com/celerix-dev/mediaid/internal/vault"
	"github.com/celerix-dev/mediaid/pkg/sdk"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		// No logger yet; the bootstrap logger reports config problems.
		zap.NewExample().Fatal("load config", zap.Error(err))
	}

	logger := newLogger(cfg.Debug)
	defer logger.Sync()

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if !cfg.HasAgentCredentials() {
		logger.Warn("MISTRAL_API_KEY or MISTRAL_AGENT_ID is not set; chat replies will report connection errors")
	}

	// 2. Storage
	var vaultKey []byte
	if cfg.VaultKey != "" {
		vaultKey, err = vault.ParseKey(cfg.VaultKey)
		if err != nil {
			logger.Fatal("invalid MEDIAID_VAULT_KEY", zap.Error(err))
		}
	}

	ctx := context.Background()
	store, err := sdk.OpenStore(ctx, sdk.StoreOptions{
		Backend:  cfg.Storage,
		Path:     cfg.DBPath,
		VaultKey: vaultKey,
	})
	if err != nil {
		logger.Fatal("open record store", zap.Error(err))
	}
	logger.Info("record store ready",
		zap.String("backend", cfg.Storage),
		zap.String("path", cfg.DBPath),
		zap.Bool("sealed", vaultKey != nil),
	)

	// 3. Agent proxy and handlers
	proxy := agent.New(agent.Config{
		APIKey:   cfg.Mistral.APIKey,
		AgentID:  cfg.Mistral.AgentID,
		Endpoint: cfg.Mistral.Endpoint,
	}, nil, logger.Named("agent"))

	h := &api.Handler{Store: store, Agent: proxy, Logger: logger.Named("api")}
	router, err := server.NewRouter(h, logger.Named("http"))
	if err != nil {
		logger.Fatal("build router", zap.Error(err))
	}

	// 4. Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("shutdown signal received, draining requests")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := router.Stop(shutdownCtx); err != nil {
			logger.Error("http shutdown", zap.Error(err))
		}
	}()

	// 5. Serve until stopped
	if err := router.Listen(cfg.HTTPAddr); err != nil {
		store.Close()
		logger.Fatal("http server failed", zap.Error(err))
	}

	if err := store.Close(); err != nil {
		logger.Error("close record store", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

func newLogger(debug bool) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewExample()
	}
	return logger
}
