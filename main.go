package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"learnlink_backend/internal/app"
	"learnlink_backend/pkg/logger"

	"go.uber.org/zap"
)

// @title LearnLink API
// @version 1.0
// @description Role-based educational resource sharing portal.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	configPath := os.Getenv("LEARNLINK_CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs"
	}

	application, err := app.New(configPath)
	if err != nil {
		logger.Log.Fatal("startup failed", zap.Error(err))
	}

	go func() {
		if err := application.Run(); err != nil {
			logger.Log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := application.Shutdown(ctx); err != nil {
		logger.Log.Error("shutdown failed", zap.Error(err))
	}
	logger.Log.Info("server stopped")
}
