package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	articlesapp "github.com/verdigris-dev/atrium/backend/internal/articles/application"
	photosapp "github.com/verdigris-dev/atrium/backend/internal/photos/application"
	"github.com/verdigris-dev/atrium/backend/internal/platform/seeder"
)

// Subscribers holds the event-bus consumers. They register themselves in
// their constructors; the struct exists so the injector builds them.
type Subscribers struct {
	CommentCounter *articlesapp.CommentCounter
	AlbumCounter   *photosapp.AlbumCounter
}

// NewSubscribers collects the event subscribers.
func NewSubscribers(commentCounter *articlesapp.CommentCounter, albumCounter *photosapp.AlbumCounter) Subscribers {
	return Subscribers{
		CommentCounter: commentCounter,
		AlbumCounter:   albumCounter,
	}
}

type App struct {
	server      *http.Server
	config      Config
	seeders     *seeder.Orchestrator
	subscribers Subscribers
}

func NewApp(server *http.Server, config Config, seeders *seeder.Orchestrator, subscribers Subscribers) *App {
	return &App{
		server:      server,
		config:      config,
		seeders:     seeders,
		subscribers: subscribers,
	}
}

// Run seeds baseline data, starts the server and handles graceful shutdown
func (a *App) Run() error {
	ctx := context.Background()

	if err := a.seeders.RunAll(ctx); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
		log.Println("Shutting down server...")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to gracefully shutdown server: %w", err)
		}
	}

	log.Println("Server stopped")
	return nil
}
