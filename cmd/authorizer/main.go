package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/workforce-ai/corsgate/internal/authorizer"
	"github.com/workforce-ai/corsgate/internal/bootstrap"
	"github.com/workforce-ai/corsgate/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := bootstrap.NewLogger(cfg.Server.LogLevel).With(slog.String("service", "corsgate-authorizer"))
	slog.SetDefault(logger)

	// The Redis tier is skipped here: a warm Lambda already keeps the
	// token in memory and most functions have no VPC route to Redis.
	verifier, err := bootstrap.NewVerifier(context.Background(), cfg, nil)
	if err != nil {
		slog.Error("failed to build verifier", "error", err)
		os.Exit(1)
	}

	lambda.Start(authorizer.New(verifier, cfg.Auth.Header, logger).Handle)
}
