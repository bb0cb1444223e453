//go:build wireinject
// +build wireinject

package server

import (
	"context"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"github.com/verdigris-dev/atrium/backend/internal/adapters/auth"
	"github.com/verdigris-dev/atrium/backend/internal/adapters/postgres"
	"github.com/verdigris-dev/atrium/backend/internal/adapters/rediscache"
	"github.com/verdigris-dev/atrium/backend/internal/adapters/rest"
	articlesApp "github.com/verdigris-dev/atrium/backend/internal/articles/application"
	articlesPorts "github.com/verdigris-dev/atrium/backend/internal/articles/ports"
	authzApp "github.com/verdigris-dev/atrium/backend/internal/authz/application"
	authzSeeder "github.com/verdigris-dev/atrium/backend/internal/authz/seeder"
	commentsApp "github.com/verdigris-dev/atrium/backend/internal/comments/application"
	commentsPorts "github.com/verdigris-dev/atrium/backend/internal/comments/ports"
	"github.com/verdigris-dev/atrium/backend/internal/content/lifecycle"
	photosApp "github.com/verdigris-dev/atrium/backend/internal/photos/application"
	photosPorts "github.com/verdigris-dev/atrium/backend/internal/photos/ports"
	"github.com/verdigris-dev/atrium/backend/internal/platform/cache"
	"github.com/verdigris-dev/atrium/backend/internal/platform/eventbus"
	"github.com/verdigris-dev/atrium/backend/internal/platform/logger"
	platformPostgres "github.com/verdigris-dev/atrium/backend/internal/platform/postgres"
	"github.com/verdigris-dev/atrium/backend/internal/platform/seeder"
	sectionsApp "github.com/verdigris-dev/atrium/backend/internal/sections/application"
)

// InitializeApp creates a fully configured App with all dependencies
func InitializeApp(ctx context.Context) (*App, func(), error) {
	wire.Build(
		// Bootstrap phase
		logger.NewBootstrapLogger,
		LoadConfig,

		// Logger configuration
		provideLoggerConfig,

		// Main logger
		logger.NewConfiguredLogger,
		wire.Bind(new(logger.Logger), new(*logger.SlogAdapter)),

		// Database and cache
		ConnectDatabase,
		platformPostgres.NewTransactionManager,
		provideRedis,

		// Repository providers (includes interface binding)
		postgres.ProviderSet,
		rediscache.ProviderSet,

		// Platform services
		eventbus.ProviderSet,
		providePolicyConfig,

		// Application services
		authzApp.ProviderSet,
		sectionsApp.ProviderSet,
		articlesApp.ProviderSet,
		commentsApp.ProviderSet,
		photosApp.ProviderSet,
		wire.Bind(new(articlesPorts.SectionSource), new(*sectionsApp.SectionsService)),
		wire.Bind(new(commentsPorts.SectionSource), new(*sectionsApp.SectionsService)),
		wire.Bind(new(photosPorts.SectionSource), new(*sectionsApp.SectionsService)),

		// REST handlers
		rest.ProviderSet,
		NewHandlers,
		provideVersion, // Provide version string for HealthHandler

		// Auth middleware
		provideJWTMiddleware,
		auth.ProviderSet,

		// Seeders
		provideSeeders,
		seeder.NewOrchestrator,

		// HTTP Server
		NewHTTPServer,

		// App
		NewSubscribers,
		NewApp,
	)

	return nil, nil, nil
}

// provideJWTMiddleware creates JWT middleware from config
func provideJWTMiddleware(ctx context.Context, config Config) (*auth.JWTMiddleware, error) {
	return auth.NewJWTMiddleware(ctx, config.JWKSEndpoint, config.JWTIssuer)
}

// provideRedis creates the shared Redis client with a cleanup function
func provideRedis(ctx context.Context, config Config) (*redis.Client, func(), error) {
	client, err := cache.New(ctx, config.RedisAddr)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// provideVersion provides the application version
func provideVersion() string {
	return "1.0.0"
}

// provideLoggerConfig creates logger config from server config
func provideLoggerConfig(config Config) logger.Config {
	return logger.Config{
		Environment: config.Environment,
		LogLevel:    config.LogLevel,
	}
}

// providePolicyConfig derives the lifecycle policy switches from config
func providePolicyConfig(config Config) *lifecycle.PolicyConfig {
	return config.PolicyConfig()
}

// provideSeeders lists the data seeders in run order
func provideSeeders() []seeder.Seeder {
	return []seeder.Seeder{
		authzSeeder.NewAuthzSeeder(),
	}
}
