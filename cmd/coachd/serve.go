package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/jonwraymond/coachkit/auth"
	"github.com/jonwraymond/coachkit/cache"
	"github.com/jonwraymond/coachkit/config"
	"github.com/jonwraymond/coachkit/engine"
	"github.com/jonwraymond/coachkit/generate"
	"github.com/jonwraymond/coachkit/health"
	"github.com/jonwraymond/coachkit/observe"
	"github.com/jonwraymond/coachkit/quota"
	"github.com/jonwraymond/coachkit/ratelimit"
	"github.com/jonwraymond/coachkit/server"
	"github.com/jonwraymond/coachkit/store/sqlite"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the coaching API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			obs, err := observe.NewObserver(ctx, cfg.ObserveSettings("coachd", version))
			if err != nil {
				return fmt.Errorf("init telemetry: %w", err)
			}
			defer func() { _ = obs.Shutdown(context.Background()) }()
			logger := obs.Logger()

			metrics, err := observe.NewMetrics(obs.Meter())
			if err != nil {
				return fmt.Errorf("init metrics: %w", err)
			}

			store, err := sqlite.New(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("init store: %w", err)
			}
			defer func() { _ = store.Close() }()

			responses := cache.NewLRU(cfg.Cache.Capacity)
			limiter := ratelimit.NewSlidingWindow(ratelimit.Config{
				MaxCalls: cfg.RateLimit.MaxCalls,
				Period:   cfg.RateLimit.Period,
			})
			quotas := quota.NewManager(store)

			var upstream generate.Generator
			if cfg.Upstream.APIKey == "" {
				logger.Warn(ctx, "no upstream API key, using mock generator")
				upstream = generate.NewMockGenerator()
			} else {
				upstream = generate.NewOpenAIClient(generate.OpenAIConfig{
					APIKey:  cfg.Upstream.APIKey,
					BaseURL: cfg.Upstream.BaseURL,
					Model:   cfg.Upstream.Model,
				})
			}
			circuit := generate.NewCircuitGenerator(upstream, generate.CircuitConfig{
				MaxFailures:  cfg.Upstream.MaxFailures,
				ResetTimeout: cfg.Upstream.ResetAfter,
				OnStateChange: func(from, to generate.State) {
					logger.Warn(context.Background(), "generation circuit state changed",
						observe.Field{Key: "from", Value: from.String()},
						observe.Field{Key: "to", Value: to.String()},
					)
				},
			})

			coordinator, err := engine.NewCoordinator(limiter, responses, quotas, circuit,
				engine.WithStore(store),
				engine.WithLogger(logger),
				engine.WithMetrics(metrics),
				engine.WithTracer(observe.NewTracer(obs.Tracer())),
				engine.WithGenerationTimeout(cfg.Upstream.Timeout),
			)
			if err != nil {
				return fmt.Errorf("init coordinator: %w", err)
			}

			agg := health.NewAggregator(0)
			agg.Register("database", health.NewDatabaseChecker(store))
			agg.Register("generator", health.NewGeneratorChecker(circuit))
			agg.Register("response_cache", health.NewCacheChecker(responses))

			resolver := auth.NewResolver(auth.ResolverConfig{
				Key:    []byte(cfg.Auth.Secret),
				Issuer: cfg.Auth.Issuer,
			})

			opts := []server.Option{
				server.WithLogger(logger),
				server.WithHistory(store),
				server.WithQuotaStatus(quotas),
				server.WithHealth(agg),
			}
			if cfg.Observe.Metrics.Enabled && cfg.Observe.Metrics.Exporter == "prometheus" {
				opts = append(opts, server.WithMetricsHandler(promhttp.Handler()))
			}
			srv := server.New(coordinator, resolver, opts...)

			logger.Info(ctx, "coachd listening",
				observe.Field{Key: "addr", Value: cfg.Listen},
				observe.Field{Key: "db", Value: cfg.DBPath},
			)
			if err := srv.ListenAndServe(ctx, cfg.Listen); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "coachd.yaml", "path to config file")
	return cmd
}
