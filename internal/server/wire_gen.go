// Code generated by Wire. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package server

import (
	"context"
	"github.com/redis/go-redis/v9"
	"github.com/verdigris-dev/atrium/backend/internal/adapters/auth"
	"github.com/verdigris-dev/atrium/backend/internal/adapters/postgres"
	"github.com/verdigris-dev/atrium/backend/internal/adapters/rediscache"
	"github.com/verdigris-dev/atrium/backend/internal/adapters/rest"
	application3 "github.com/verdigris-dev/atrium/backend/internal/articles/application"
	"github.com/verdigris-dev/atrium/backend/internal/authz/application"
	seeder2 "github.com/verdigris-dev/atrium/backend/internal/authz/seeder"
	application4 "github.com/verdigris-dev/atrium/backend/internal/comments/application"
	"github.com/verdigris-dev/atrium/backend/internal/content/lifecycle"
	application5 "github.com/verdigris-dev/atrium/backend/internal/photos/application"
	"github.com/verdigris-dev/atrium/backend/internal/platform/cache"
	"github.com/verdigris-dev/atrium/backend/internal/platform/eventbus"
	"github.com/verdigris-dev/atrium/backend/internal/platform/logger"
	postgres2 "github.com/verdigris-dev/atrium/backend/internal/platform/postgres"
	"github.com/verdigris-dev/atrium/backend/internal/platform/seeder"
	application2 "github.com/verdigris-dev/atrium/backend/internal/sections/application"
)

// Injectors from wire.go:

// InitializeApp creates a fully configured App with all dependencies
func InitializeApp(ctx context.Context) (*App, func(), error) {
	bootstrapLogger := logger.NewBootstrapLogger()
	config, err := LoadConfig(bootstrapLogger)
	if err != nil {
		return nil, nil, err
	}
	loggerConfig := provideLoggerConfig(config)
	slogAdapter := logger.NewConfiguredLogger(loggerConfig)
	baseHandler := rest.NewBaseHandler(slogAdapter)
	string2 := provideVersion()
	pool, cleanup, err := ConnectDatabase(ctx, config, slogAdapter)
	if err != nil {
		return nil, nil, err
	}
	client, cleanup2, err := provideRedis(ctx, config)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	healthHandler := rest.NewHealthHandler(baseHandler, string2, pool, client)
	roleRepository := postgres.NewRoleRepository(pool)
	permissionResolver := application.NewPermissionResolver()
	roleService := application.NewRoleService(roleRepository, permissionResolver, slogAdapter)
	rolesHandler := rest.NewRolesHandler(baseHandler, roleService)
	transactionManager := postgres2.NewTransactionManager(pool)
	sectionRepository := postgres.NewSectionRepository(pool, transactionManager)
	managerCache := rediscache.NewManagerCache(client)
	delegationResolver := application2.NewDelegationResolver(sectionRepository, managerCache, slogAdapter)
	sectionsService := application2.NewSectionsService(sectionRepository, delegationResolver, permissionResolver, slogAdapter)
	sectionsHandler := rest.NewSectionsHandler(baseHandler, sectionsService)
	articleRepository := postgres.NewArticleRepository(pool)
	policyConfig := providePolicyConfig(config)
	counterStore := rediscache.NewCounterStore(client)
	bus := eventbus.NewBus(slogAdapter)
	articlesService := application3.NewArticlesService(articleRepository, sectionsService, permissionResolver, delegationResolver, policyConfig, counterStore, bus, slogAdapter)
	articlesHandler := rest.NewArticlesHandler(baseHandler, articlesService)
	commentRepository := postgres.NewCommentRepository(pool)
	articleSourceAdapter := application4.NewArticleSourceAdapter(articleRepository)
	commentsService := application4.NewCommentsService(commentRepository, articleSourceAdapter, sectionsService, permissionResolver, delegationResolver, policyConfig, bus, slogAdapter)
	commentsHandler := rest.NewCommentsHandler(baseHandler, commentsService)
	photoRepository := postgres.NewPhotoRepository(pool)
	albumRepository := postgres.NewAlbumRepository(pool)
	photosService := application5.NewPhotosService(photoRepository, albumRepository, sectionsService, permissionResolver, delegationResolver, policyConfig, counterStore, bus, slogAdapter)
	photosHandler := rest.NewPhotosHandler(baseHandler, photosService)
	handlers := NewHandlers(healthHandler, rolesHandler, sectionsHandler, articlesHandler, commentsHandler, photosHandler)
	jwtMiddleware, err := provideJWTMiddleware(ctx, config)
	if err != nil {
		cleanup2()
		cleanup()
		return nil, nil, err
	}
	actorMiddleware := auth.NewActorMiddleware(roleRepository, slogAdapter)
	server := NewHTTPServer(config, handlers, jwtMiddleware, actorMiddleware, slogAdapter)
	v := provideSeeders()
	orchestrator := seeder.NewOrchestrator(slogAdapter, pool, v)
	commentCounter := application3.NewCommentCounter(bus, counterStore, slogAdapter)
	albumCounter := application5.NewAlbumCounter(bus, counterStore, slogAdapter)
	subscribers := NewSubscribers(commentCounter, albumCounter)
	app := NewApp(server, config, orchestrator, subscribers)
	return app, func() {
		cleanup2()
		cleanup()
	}, nil
}

// wire.go:

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
	return []seeder.Seeder{seeder2.NewAuthzSeeder()}
}
