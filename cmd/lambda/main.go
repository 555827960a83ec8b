package main

import (
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spacesedan/sentichat/config"
	"github.com/spacesedan/sentichat/internal/app"
	"github.com/spacesedan/sentichat/internal/gateway"
	"github.com/spacesedan/sentichat/internal/logging"
)

var handler *gateway.Handler

// init runs once per Lambda cold start
func init() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("[Lambda] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(cfg.LogLevel)

	a, err := app.New(cfg)
	if err != nil {
		slog.Error("[Lambda] Failed to initialize", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handler, err = gateway.NewHandler(a.Responder, gateway.WithFlusher(a))
	if err != nil {
		slog.Error("[Lambda] Failed to create handler", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("[Lambda] Initialization complete", slog.String("environment", env))
}

func main() {
	lambda.Start(handler.Handle)
}
