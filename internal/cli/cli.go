// Package cli implements the critpath command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/matzehuels/critpath/pkg/buildinfo"
	"github.com/matzehuels/critpath/pkg/cache"
	"github.com/matzehuels/critpath/pkg/config"
	"github.com/matzehuels/critpath/pkg/cpm"
	"github.com/matzehuels/critpath/pkg/lock"
	"github.com/matzehuels/critpath/pkg/pipeline"
	"github.com/matzehuels/critpath/pkg/store"
	mongostore "github.com/matzehuels/critpath/pkg/store/mongo"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "critpath"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	noCache    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Critical path scheduling for construction projects",
		Long: `critpath computes early and late dates, float and critical paths for a
project's task network, detects dependency cycles, and optionally writes the
adjusted dates back to the project store.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/critpath/config.toml)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the preview cache")

	root.AddCommand(c.validateCommand())
	root.AddCommand(c.applyCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Backend Factory
// =============================================================================

// backend bundles everything a run needs: the repositories, the project to
// schedule and the optional Redis connection shared by lock and cache.
type backend struct {
	cfg       *config.Config
	store     store.Store
	projectID string
	redis     redis.UniversalClient

	// cacheOwnsRedis is set once a RedisCache wraps the client; closing
	// the runner's cache then closes the client.
	cacheOwnsRedis bool
}

// openBackend resolves the project source. A file argument serves that
// project file directly; otherwise --project selects a project from the
// configured storage backend.
func (c *CLI) openBackend(ctx context.Context, args []string, projectID string) (*backend, error) {
	if len(args) == 0 && projectID == "" {
		return nil, fmt.Errorf("a project file or --project is required")
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	b := &backend{cfg: cfg, projectID: projectID}

	if len(args) == 1 {
		b.store, b.projectID, err = store.OpenProjectFile(args[0])
	} else {
		b.store, err = openStore(ctx, cfg.Storage)
	}
	if err != nil {
		return nil, err
	}
	b.connectRedis()
	return b, nil
}

// openConfigured opens the configured storage backend without selecting a
// project, for commands that serve many.
func (c *CLI) openConfigured(ctx context.Context) (*backend, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	s, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	b := &backend{cfg: cfg, store: s}
	b.connectRedis()
	return b, nil
}

func (b *backend) connectRedis() {
	if b.cfg.Redis.Addr == "" {
		return
	}
	b.redis = redis.NewClient(&redis.Options{
		Addr:     b.cfg.Redis.Addr,
		Password: b.cfg.Redis.Password,
		DB:       b.cfg.Redis.DB,
	})
}

func openStore(ctx context.Context, cfg config.StorageConfig) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendMongo:
		return mongostore.Open(ctx, mongostore.Config{URI: cfg.MongoURI, Database: cfg.Database})
	default:
		return store.NewFileStore(cfg.Dir)
	}
}

// newRunner creates a pipeline runner over the backend. With Redis
// configured, runs take a distributed lock and share the preview cache.
func (c *CLI) newRunner(b *backend) (*pipeline.Runner, error) {
	opts := pipeline.Options{
		Logger:   c.Logger,
		CacheTTL: b.cfg.Schedule.CacheTTL,
		Schedule: cpm.Options{Epsilon: b.cfg.Schedule.EpsilonDays},
	}
	if b.redis != nil {
		opts.Locker = lock.NewRedis(b.redis)
	}

	var err error
	if opts.Cache, err = c.newCache(b); err != nil {
		return nil, err
	}
	return pipeline.NewRunner(b.store, b.store, opts), nil
}

func (c *CLI) newCache(b *backend) (cache.Cache, error) {
	switch {
	case c.noCache:
		return cache.NewNullCache(), nil
	case b.redis != nil:
		b.cacheOwnsRedis = true
		return cache.NewRedisCache(b.redis), nil
	}
	dir, err := cache.DefaultDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// Close releases the store, and the Redis client unless the runner's cache
// owns it.
func (b *backend) Close() {
	_ = b.store.Close()
	if b.redis != nil && !b.cacheOwnsRedis {
		_ = b.redis.Close()
	}
}
