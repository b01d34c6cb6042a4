package main

import (
	"context"
	"log"

	"pigeon/internal/app"
	"pigeon/internal/config"
	"pigeon/internal/logger"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

// The dispatcher runs alongside the handler for the lifetime of the
// execution environment. Lambda freezes it between invocations, so queued
// events and ticks are processed while requests are being served.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := app.InitLogger(cfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	client, err := app.NewClient(ctx, cfg)
	if err != nil {
		logger.GetLogger().Fatal("failed to build bot", zap.Error(err))
	}

	go func() {
		if err := client.RunDispatcher(ctx); err != nil {
			logger.GetLogger().Fatal("dispatcher stopped", zap.Error(err))
		}
	}()

	lambda.Start(newHandler(client.Handler()))
}
