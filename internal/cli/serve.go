package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foldline/storypress/internal/server"
	"github.com/foldline/storypress/pkg/cache"
	"github.com/foldline/storypress/pkg/pipeline"
	"github.com/foldline/storypress/pkg/store"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		backend    string
		mongoURI   string
		mongoDB    string
		cacheKind  string
		redisAddr  string
		cacheScope string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the preview HTTP API",
		Long: `Run the preview HTTP API.

The server exposes stored books over HTTP: layouts, spreads, preview PNGs,
and inpainting masks. By default books live in memory and vanish on exit;
with --store mongo they persist in MongoDB.

The cache backend is selectable: file reuses the CLI's on-disk cache,
memory keeps entries in-process, redis shares them across replicas, and
none disables caching. When replicas share a Redis instance, --cache-scope
keeps each deployment's entries separate.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), serveConfig{
				addr:       addr,
				backend:    backend,
				mongoURI:   mongoURI,
				mongoDB:    mongoDB,
				cacheKind:  cacheKind,
				redisAddr:  redisAddr,
				cacheScope: cacheScope,
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8480", "listen address")
	cmd.Flags().StringVar(&backend, "store", "memory", "store backend: memory, mongo")
	cmd.Flags().StringVar(&mongoURI, "mongo-uri", "mongodb://localhost:27017", "MongoDB connection URI")
	cmd.Flags().StringVar(&mongoDB, "mongo-db", appName, "MongoDB database name")
	cmd.Flags().StringVar(&cacheKind, "cache", "file", "cache backend: file, memory, redis, none")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", "localhost:6379", "Redis address for --cache redis")
	cmd.Flags().StringVar(&cacheScope, "cache-scope", "", "prefix isolating this deployment's cache entries")

	return cmd
}

type serveConfig struct {
	addr       string
	backend    string
	mongoURI   string
	mongoDB    string
	cacheKind  string
	redisAddr  string
	cacheScope string
}

// runServe wires the store and runner and serves until interrupted.
func (c *CLI) runServe(ctx context.Context, cfg serveConfig) error {
	st, err := c.newStore(ctx, cfg.backend, cfg.mongoURI, cfg.mongoDB)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	cch, err := newServeCache(ctx, cfg.cacheKind, cfg.redisAddr)
	if err != nil {
		return err
	}
	defer cch.Close()

	runner := pipeline.NewRunner(cch, newServeKeyer(cfg.cacheScope), c.Logger)

	srv := server.New(st, runner, c.Logger)
	printInfo("Serving previews on %s (store: %s, cache: %s)", cfg.addr, cfg.backend, cfg.cacheKind)
	return srv.ListenAndServe(ctx, server.Config{Addr: cfg.addr})
}

// newStore creates the requested store backend.
func (c *CLI) newStore(ctx context.Context, backend, mongoURI, mongoDB string) (store.Store, error) {
	switch backend {
	case "memory":
		return store.NewMemoryStore(c.Logger), nil
	case "mongo":
		return store.NewMongoStore(ctx, store.MongoConfig{URI: mongoURI, Database: mongoDB}, c.Logger)
	default:
		return nil, fmt.Errorf("unknown store backend %q (must be memory or mongo)", backend)
	}
}

// newServeCache creates the requested cache backend for the server.
// Unlike the CLI's best-effort file cache, a backend the operator asked for
// that cannot be reached is an error, not a silent downgrade.
func newServeCache(ctx context.Context, kind, redisAddr string) (cache.Cache, error) {
	switch kind {
	case "file":
		dir, err := cacheDir()
		if err != nil {
			return nil, fmt.Errorf("resolve cache dir: %w", err)
		}
		return cache.NewFileCache(dir)
	case "memory":
		return cache.NewMemoryCache(), nil
	case "redis":
		return cache.NewRedisCache(ctx, cache.RedisConfig{Addr: redisAddr})
	case "none":
		return cache.NewNullCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q (must be file, memory, redis, or none)", kind)
	}
}

// newServeKeyer scopes cache keys when deployments share a backend.
func newServeKeyer(scope string) cache.Keyer {
	if scope == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, scope+":")
}
