// Command earthfeed performs one scrape run over the configured feeds.
//
// Configuration comes from ~/.earthfeed/config.yaml (or EARTHFEED_CONFIG),
// then EARTHFEED_* environment variables, optionally from a .env file in the
// working directory.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/pevans/earthfeed/app"
	"github.com/pevans/earthfeed/config"
	"github.com/pevans/earthfeed/logging"
)

func main() {
	// A missing .env is fine
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Failures are logged here, once, whichever step produced them
	log := logging.Stderr("info")
	if err := run(ctx); err != nil {
		log.Error("scrape run failed", "error", err)
		fmt.Printf("failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(os.Getenv("EARTHFEED_CONFIG"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	a, err := app.Build(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.Run(ctx)
	if err != nil {
		return err
	}

	if result.ArtifactKey == "" {
		fmt.Println("completed: no new articles")
	} else {
		fmt.Printf("completed: %d articles written to %s\n", len(result.Articles), result.ArtifactKey)
	}
	return nil
}
