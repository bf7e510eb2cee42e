package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "bouncer",
		Usage:   "content governance daemon (checks posts at the door)",
		Version: versioninfo.Short(),
	}

	app.Commands = []*cli.Command{
		runCmd,
	}

	return app.Run(args)
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "run the service",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "bind",
			Usage:   "IP or address, and port, to listen on for HTTP APIs",
			Value:   ":8300",
			EnvVars: []string{"BOUNCER_BIND"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics APIs",
			Value:   ":8301",
			EnvVars: []string{"BOUNCER_METRICS_LISTEN"},
		},
		&cli.StringFlag{
			Name:    "database-url",
			Usage:   "database connection for report persistence; empty keeps reports in memory",
			Value:   "sqlite://data/bouncer/reports.db",
			EnvVars: []string{"DATABASE_URL"},
		},
		&cli.IntFlag{
			Name:    "max-db-connections",
			EnvVars: []string{"MAX_DB_CONNECTIONS"},
			Value:   40,
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "redis connection for shared rate counters; empty keeps counters in memory",
			EnvVars: []string{"REDIS_URL"},
		},
		&cli.StringFlag{
			Name:    "content-field",
			Usage:   "request field which carries the post text",
			Value:   "content",
			EnvVars: []string{"BOUNCER_CONTENT_FIELD"},
		},
		&cli.IntFlag{
			Name:    "max-post-length",
			Usage:   "maximum post length, in characters",
			Value:   2000,
			EnvVars: []string{"BOUNCER_MAX_POST_LENGTH"},
		},
		&cli.IntFlag{
			Name:    "hourly-post-limit",
			Usage:   "max accepted posts per author per rolling hour",
			Value:   30,
			EnvVars: []string{"BOUNCER_HOURLY_POST_LIMIT"},
		},
		&cli.Float64Flag{
			Name:    "flag-confidence-threshold",
			Usage:   "scorer confidence above which allowed content is still flagged for review",
			Value:   0.4,
			EnvVars: []string{"BOUNCER_FLAG_CONFIDENCE_THRESHOLD"},
		},
		&cli.StringFlag{
			Name:    "scorer-host",
			Usage:   "base URL of the external moderation scoring service; empty uses the in-process keyword scorer",
			EnvVars: []string{"BOUNCER_SCORER_HOST"},
		},
		&cli.StringFlag{
			Name:    "scorer-api-token",
			EnvVars: []string{"BOUNCER_SCORER_API_TOKEN"},
		},
		&cli.IntFlag{
			Name:    "scorer-rate-limit",
			Usage:   "max requests per second to the scoring service",
			Value:   20,
			EnvVars: []string{"BOUNCER_SCORER_RATE_LIMIT"},
		},
		&cli.StringFlag{
			Name:    "word-sets-json",
			Usage:   "JSON file of banned/suspect word sets for the keyword scorer",
			EnvVars: []string{"BOUNCER_WORD_SETS_JSON"},
		},
		&cli.StringFlag{
			Name:    "jwt-secret",
			Usage:   "HMAC secret for verifying platform session tokens",
			EnvVars: []string{"BOUNCER_JWT_SECRET"},
		},
	},
	Action: func(cctx *cli.Context) error {
		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
		slog.SetDefault(logger)

		// Enable OTLP HTTP exporter
		// For relevant environment variables:
		// https://pkg.go.dev/go.opentelemetry.io/otel/exporters/otlp/otlptrace#readme-environment-variables
		// At a minimum, you need to set
		// OTEL_EXPORTER_OTLP_ENDPOINT=http://localhost:4318
		if ep := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); ep != "" {
			logger.Info("setting up trace exporter", "endpoint", ep)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			exp, err := otlptracehttp.New(ctx)
			if err != nil {
				return fmt.Errorf("failed to create trace exporter: %w", err)
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				if err := exp.Shutdown(ctx); err != nil {
					logger.Error("failed to shutdown trace exporter", "error", err)
				}
			}()

			tp := tracesdk.NewTracerProvider(
				tracesdk.WithBatcher(exp),
				tracesdk.WithResource(resource.NewWithAttributes(
					semconv.SchemaURL,
					semconv.ServiceNameKey.String("bouncer"),
					attribute.String("env", os.Getenv("ENVIRONMENT")),         // DataDog
					attribute.String("environment", os.Getenv("ENVIRONMENT")), // Others
					attribute.Int64("ID", 1),
				)),
			)
			otel.SetTracerProvider(tp)
		}

		srv, err := NewServer(Config{
			Logger:           logger,
			DatabaseURL:      cctx.String("database-url"),
			MaxDBConnections: cctx.Int("max-db-connections"),
			RedisURL:         cctx.String("redis-url"),
			ContentField:     cctx.String("content-field"),
			MaxPostLength:    cctx.Int("max-post-length"),
			HourlyPostLimit:  cctx.Int("hourly-post-limit"),
			FlagThreshold:    cctx.Float64("flag-confidence-threshold"),
			ScorerHost:       cctx.String("scorer-host"),
			ScorerAPIToken:   cctx.String("scorer-api-token"),
			ScorerRateLimit:  cctx.Int("scorer-rate-limit"),
			WordSetsJSONFile: cctx.String("word-sets-json"),
			JWTSecret:        cctx.String("jwt-secret"),
		})
		if err != nil {
			return err
		}

		go func() {
			if err := srv.RunMetrics(cctx.String("metrics-listen")); err != nil {
				logger.Error("failed to start metrics endpoint", "error", err)
				panic(fmt.Errorf("failed to start metrics endpoint: %w", err))
			}
		}()

		if err := srv.RunAPI(cctx.String("bind")); err != nil {
			return fmt.Errorf("failed to run governance service: %w", err)
		}
		return nil
	},
}
