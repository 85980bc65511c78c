package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"fusion-arena/internal/api"
	"fusion-arena/internal/config"
	"fusion-arena/internal/content"
	"fusion-arena/internal/game"
	"fusion-arena/internal/logger"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load .env file from parent directory
	envMsg := "💡 No .env file found, using environment variables only"
	if err := godotenv.Load("../.env"); err == nil {
		envMsg = "✅ Loaded environment from ../.env"
	} else if err := godotenv.Load(".env"); err == nil {
		envMsg = "✅ Loaded environment from .env"
	}

	logger.Init()
	log := logger.For("main")
	log.Info(envMsg)

	log.Info("🎮 ================================")
	log.Info("🎮  FUSION ARENA - COMBAT SERVER")
	log.Info("🎮 ================================")

	// Load centralized configuration (SSOT - Single Source of Truth)
	appConfig := config.Load()

	catalog, err := content.Load(appConfig.Content.Dir)
	if err != nil {
		log.WithError(err).Fatal("❌ Failed to load content")
	}

	engine, err := game.NewEngine(appConfig, catalog)
	if err != nil {
		log.WithError(err).Fatal("❌ Failed to create combat engine")
	}
	engine.SetTickObserver(api.NewTickObserver())

	log.WithFields(logrus.Fields{
		"tps":        appConfig.Combat.TickRate,
		"max_alive":  appConfig.Waves.MaxAlive,
		"infinite":   appConfig.Waves.Infinite,
		"auto_start": appConfig.Waves.AutoStart,
		"attacks":    len(catalog.Attacks),
		"waves":      len(catalog.Waves),
	}).Info("🎮 Config loaded")

	// Start event log
	if path := appConfig.Server.EventLogPath; path != "" {
		if err := engine.StartEventLog(path); err != nil {
			log.WithError(err).Warn("⚠️ Event log disabled")
		} else {
			log.WithField("path", path).Info("📝 Event log started")
		}
	}

	// Start debug server
	if appConfig.Server.DebugServer {
		if err := api.StartDebugServer(api.DefaultObservabilityConfig()); err != nil {
			log.WithError(err).Warn("⚠️ Debug server disabled")
		}
	}

	server := api.NewServer(engine, appConfig.Server)

	engine.Start()
	log.Info("✅ Combat engine started")

	go func() {
		addr := ":" + strconv.Itoa(appConfig.Server.Port)
		log.Infof("🌐 API server on http://localhost%s", addr)
		log.Infof("📡 WebSocket: ws://localhost%s/ws", addr)

		if err := server.Start(addr); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Info("✅ Server ready! Press Ctrl+C to stop.")
	<-quit

	log.Info("🛑 Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		log.WithError(err).Warn("⚠️ HTTP shutdown incomplete")
	}
	engine.Stop()
	engine.StopEventLog()
	log.Info("👋 Goodbye!")
}
