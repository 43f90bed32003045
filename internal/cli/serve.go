package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/texscale/texscale/internal/server"
	"github.com/texscale/texscale/pkg/cache"
	"github.com/texscale/texscale/pkg/config"
	"github.com/texscale/texscale/pkg/pipeline"
	"github.com/texscale/texscale/pkg/report"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	cfg := c.Config.Server

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the fit pipeline over HTTP",
		Long: `Serve the fit pipeline over HTTP.

Endpoints:
  GET  /healthz          liveness probe
  POST /v1/scan          scan a UDIM pattern
  POST /v1/fit           run the full fit pipeline
  GET  /v1/reports       list persisted reports
  GET  /v1/reports/{id}  fetch a persisted report

With --redis the scan/plan cache is shared across replicas; without it
a local file cache is used. With --mongo fit results are archived as
reports; without it the report endpoints are disabled.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	cmd.Flags().StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "redis address for a shared cache")
	cmd.Flags().StringVar(&cfg.MongoURI, "mongo", cfg.MongoURI, "mongodb URI for report archiving")
	cmd.Flags().StringVar(&cfg.MongoDB, "mongo-db", cfg.MongoDB, "mongodb database name")
	cmd.Flags().StringVar(&cfg.CacheScope, "cache-scope", cfg.CacheScope, "namespace for cache keys on a shared cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.ServerConfig) error {
	srvCache, err := c.serverCache(ctx, cfg.RedisAddr)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	var keyer cache.Keyer
	if cfg.CacheScope != "" {
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), cfg.CacheScope)
	}
	runner := pipeline.NewRunner(srvCache, keyer, c.Logger)
	if ttl := c.Config.CacheTTLDuration(); ttl > 0 {
		runner.ScanTTL = ttl
	}
	defer runner.Close()

	var store report.Store
	if cfg.MongoURI != "" {
		store, err = report.NewMongoStore(ctx, report.MongoConfig{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDB,
		})
		if err != nil {
			return fmt.Errorf("connect report store: %w", err)
		}
		defer store.Close(context.Background())
		c.Logger.Info("report archiving enabled", "db", cfg.MongoDB)
	}

	srv := server.New(server.Config{Addr: cfg.Addr}, runner, store, c.Logger)
	return srv.ListenAndServe(ctx)
}

// serverCache picks the cache backend for the server: shared Redis when
// configured, otherwise the local file cache.
func (c *CLI) serverCache(ctx context.Context, redisAddr string) (cache.Cache, error) {
	if redisAddr != "" {
		c.Logger.Info("using redis cache", "addr", redisAddr)
		return cache.NewRedisCache(ctx, cache.RedisConfig{Addr: redisAddr})
	}
	return newCache(false)
}
