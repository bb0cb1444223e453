package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/verdigris-dev/atrium/backend/internal/content/lifecycle"
	"github.com/verdigris-dev/atrium/backend/internal/platform/logger"
)

type Config struct {
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	JWKSEndpoint  string `mapstructure:"JWKS_ENDPOINT"` // Generic JWKS endpoint for JWT validation
	JWTIssuer     string `mapstructure:"JWT_ISSUER"`    // Expected JWT issuer for validation
	ServerAddress string `mapstructure:"SERVER_ADDRESS"`
	Environment   string `mapstructure:"ENVIRONMENT"`
	LogLevel      string `mapstructure:"LOG_LEVEL"` // Logging level (debug, info, warn, error)

	// Global moderation switches; each one opens a transition family.
	ArticleAudit  bool `mapstructure:"POLICY_ARTICLE_AUDIT"`
	ArticleCancel bool `mapstructure:"POLICY_ARTICLE_CANCEL"`
	CommentAudit  bool `mapstructure:"POLICY_COMMENT_AUDIT"`
	CommentCancel bool `mapstructure:"POLICY_COMMENT_CANCEL"`
	PhotoAudit    bool `mapstructure:"POLICY_PHOTO_AUDIT"`
	PhotoCancel   bool `mapstructure:"POLICY_PHOTO_CANCEL"`
}

func LoadConfig(bootstrapLogger *logger.BootstrapLogger) (Config, error) {
	ctx := context.Background()

	// Load .env file if it exists (godotenv will find it automatically)
	// It's okay if the file doesn't exist - we'll use environment variables
	if err := godotenv.Load(); err != nil {
		bootstrapLogger.Info(ctx, "no .env file found, using environment variables only")
	} else {
		bootstrapLogger.Info(ctx, "loaded .env file")
	}

	// Create a new Viper instance
	v := viper.New()

	// Set default values
	v.SetDefault("DATABASE_URL", "postgresql://localhost:5432/atrium?sslmode=disable")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("SERVER_ADDRESS", ":8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("POLICY_ARTICLE_AUDIT", true)
	v.SetDefault("POLICY_ARTICLE_CANCEL", true)
	v.SetDefault("POLICY_COMMENT_AUDIT", true)
	v.SetDefault("POLICY_COMMENT_CANCEL", true)
	v.SetDefault("POLICY_PHOTO_AUDIT", true)
	v.SetDefault("POLICY_PHOTO_CANCEL", true)

	// Enable automatic environment variable reading
	// Viper will now see all environment variables, including those loaded by godotenv
	v.AutomaticEnv()

	// Replace dots with underscores in environment variable names
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Unmarshal the configuration into our struct
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		bootstrapLogger.Error(ctx, "failed to unmarshal configuration", "error", err)
		return Config{}, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	bootstrapLogger.Info(ctx, "configuration loaded",
		"environment", config.Environment,
		"log_level", config.LogLevel,
		"server_address", config.ServerAddress,
	)

	// Validate required configuration
	if config.JWKSEndpoint == "" {
		err := errors.New("JWKS_ENDPOINT is required")
		bootstrapLogger.Error(ctx, "configuration validation failed", "error", err)
		return Config{}, err
	}
	if config.JWTIssuer == "" {
		err := errors.New("JWT_ISSUER is required")
		bootstrapLogger.Error(ctx, "configuration validation failed", "error", err)
		return Config{}, err
	}

	bootstrapLogger.Info(ctx, "configuration validated successfully")
	return config, nil
}

// PolicyConfig derives the lifecycle policy switches from config, once.
func (c Config) PolicyConfig() *lifecycle.PolicyConfig {
	return &lifecycle.PolicyConfig{
		ArticleAudit:  c.ArticleAudit,
		ArticleCancel: c.ArticleCancel,
		CommentAudit:  c.CommentAudit,
		CommentCancel: c.CommentCancel,
		PhotoAudit:    c.PhotoAudit,
		PhotoCancel:   c.PhotoCancel,
	}
}
