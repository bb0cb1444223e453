package main

import (
	"context"
	"log"

	"github.com/verdigris-dev/atrium/backend/internal/server"
)

func main() {
	ctx := context.Background()

	app, cleanup, err := server.InitializeApp(ctx)
	if err != nil {
		log.Fatalf("failed to initialize app: %v", err)
	}
	defer cleanup()

	if err := app.Run(); err != nil {
		log.Fatalf("failed to run app: %v", err)
	}
}
