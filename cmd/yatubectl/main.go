package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yatube/yatube/internal/authoring"
	"github.com/yatube/yatube/internal/cache"
	"github.com/yatube/yatube/internal/db"
	"github.com/yatube/yatube/pkg/config"
	"github.com/yatube/yatube/pkg/logging"
)

// app holds what every subcommand needs, opened once in the root pre-run.
type app struct {
	cfg      *config.Config
	database *db.DB
	service  *authoring.Service
}

func (a *app) open(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.cfg = cfg

	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		return err
	}
	a.database = database
	a.service = authoring.NewService(db.NewRepository(database.DB))
	return nil
}

func (a *app) close(*cobra.Command, []string) error {
	_ = logging.GetLogger().Sync()
	if a.database != nil {
		return a.database.Close()
	}
	return nil
}

// pageCache opens the configured cache backend without the breaker; admin
// commands should fail loudly when Redis is down.
func (a *app) pageCache() (*cache.PageCache, error) {
	if a.cfg.Cache.Backend != "redis" {
		return nil, fmt.Errorf("cache_backend is %q: an in-process cache lives only inside the server, use POST /api/v1/admin/cache/invalidate", a.cfg.Cache.Backend)
	}
	store, err := cache.NewRedis(&a.cfg.Redis, a.cfg.Cache.Prefix)
	if err != nil {
		return nil, err
	}
	return cache.NewPageCache(store, a.cfg.Cache.TTL), nil
}

func newRootCmd(ctx context.Context) *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:                "yatubectl",
		Short:              "Yatube administration",
		SilenceUsage:       true,
		PersistentPreRunE:  a.open,
		PersistentPostRunE: a.close,
	}

	root.AddCommand(migrateCmd(ctx, a))
	root.AddCommand(groupCmd(ctx, a))
	root.AddCommand(userCmd(ctx, a))
	root.AddCommand(cacheCmd(ctx, a))
	root.AddCommand(tokenCmd(a))
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(ctx).ExecuteContext(ctx); err != nil {
		logging.GetLogger().Debug("Command failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
