// Lambda: scrape-news-articles
//
// Runs one scrape pass per invocation and answers with a status/body pair.
// Configuration is read the same way as the earthfeed command; the bucket
// defaults to state-of-the-earth and logs are JSON.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	_ "time/tzdata"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/pevans/earthfeed/app"
	"github.com/pevans/earthfeed/config"
	"github.com/pevans/earthfeed/logging"
)

// Response is the Lambda result.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// runFunc performs one scrape run.
type runFunc func(ctx context.Context) error

// respond maps the outcome of run to a Response. Failures, panics
// included, are logged once and reported in the body rather than as an
// invocation error.
func respond(ctx context.Context, log *logging.Logger, run runFunc) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("scrape run panicked", "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			resp = Response{StatusCode: 500, Body: fmt.Sprintf("Error: panic: %v", r)}
		}
	}()

	if err := run(ctx); err != nil {
		log.Error("scrape run failed", "error", err)
		return Response{StatusCode: 500, Body: fmt.Sprintf("Error: %v", err)}
	}
	return Response{StatusCode: 200, Body: "Success"}
}

func scrapeOnce(ctx context.Context) error {
	cfg, err := config.Load(os.Getenv("EARTHFEED_CONFIG"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if os.Getenv("EARTHFEED_LOG_FORMAT") == "" {
		cfg.LogFormat = "json"
	}

	a, err := app.Build(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	_, err = a.Run(ctx)
	return err
}

// Handler is the Lambda entry point.
func Handler(ctx context.Context, _ any) (Response, error) {
	log := logging.NewJSON(os.Stderr, os.Getenv("EARTHFEED_LOG_LEVEL"))
	return respond(ctx, log, scrapeOnce), nil
}

func main() {
	lambda.Start(Handler)
}
