// Package bootstrap builds the pieces shared by the HTTP server and the
// Lambda authorizer from configuration.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/redis/go-redis/v9"
	"github.com/workforce-ai/corsgate/internal/config"
	"github.com/workforce-ai/corsgate/internal/tokensource"
	"github.com/workforce-ai/corsgate/pkg/auth"
)

// StaticPrincipal names callers holding the shared token.
const StaticPrincipal = "shared-token"

// NewLogger returns a JSON logger at the configured level.
func NewLogger(level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: l}))
}

// NewRedis returns a client when REDIS_ADDR is set, nil otherwise.
func NewRedis(cfg config.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewVerifier builds the verifier selected by AUTH_MODE. In static mode
// the expected token comes from AUTH_TOKEN or, when a parameter name is
// configured, from SSM Parameter Store. rdb may be nil.
func NewVerifier(ctx context.Context, cfg *config.Config, rdb *redis.Client) (auth.Verifier, error) {
	if cfg.Auth.Mode == config.AuthModeJWT {
		return auth.NewJWTVerifier(cfg.JWT.Secret, cfg.JWT.Issuer), nil
	}

	opts := tokensource.StackOptions{
		Redis:          rdb,
		RedisKeyPrefix: cfg.Redis.KeyPrefix,
		CacheTTL:       cfg.Auth.CacheTTL,
		MaxRetries:     cfg.Auth.FetchRetries,
		RetryBaseWait:  cfg.Auth.RetryBaseWait,
	}
	if cfg.Auth.TokenParameter != "" || cfg.Auth.PreviousTokenParameter != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		opts.SSM = ssm.NewFromConfig(awsCfg)
	}

	sources := []tokensource.Source{
		tokensource.NewStack(cfg.Auth.Token, cfg.Auth.TokenParameter, opts),
	}
	if cfg.Auth.PreviousTokenParameter != "" {
		sources = append(sources, tokensource.NewStack("", cfg.Auth.PreviousTokenParameter, opts))
	}
	return auth.NewStaticVerifier(StaticPrincipal, sources...), nil
}
