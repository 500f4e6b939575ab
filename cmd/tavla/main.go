package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/hylla/tavla/internal/adapters/storage/redis"
	"github.com/hylla/tavla/internal/adapters/storage/sqlite"
	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/config"
	"github.com/hylla/tavla/internal/domain"
	"github.com/hylla/tavla/internal/platform"
	"github.com/hylla/tavla/internal/tui"
	"github.com/spf13/cobra"
)

// version is stamped at build time.
var version = "dev"

type program interface {
	Run() (tea.Model, error)
}

var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

func main() {
	root := newRootCommand(os.Stdout, os.Stderr)
	if err := fang.Execute(context.Background(), root, fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	dbPath     string
	appName    string
	actorID    string
	devMode    bool

	stdout io.Writer
	stderr io.Writer
}

// newRootCommand builds the command tree. Running it without a subcommand opens the board TUI.
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	opts := &rootOptions{stdout: stdout, stderr: stderr}

	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("TAVLA_DEV_MODE"); ok {
		defaultDevMode = envDev
	}
	defaultApp := platform.DefaultAppName
	if envApp := strings.TrimSpace(os.Getenv("TAVLA_APP_NAME")); envApp != "" {
		defaultApp = envApp
	}

	cmd := &cobra.Command{
		Use:           "tavla",
		Short:         "A single-board kanban for the terminal",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config TOML (env TAVLA_CONFIG)")
	flags.StringVar(&opts.dbPath, "db", "", "path to sqlite database (env TAVLA_DB_PATH)")
	flags.StringVar(&opts.appName, "app", defaultApp, "application name for config/data path resolution")
	flags.BoolVar(&opts.devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")
	flags.StringVar(&opts.actorID, "actor", "", "actor id recorded on change events")

	cmd.AddCommand(
		newServeCommand(opts),
		newPathsCommand(opts),
		newShowCommand(opts),
		newExportCommand(opts),
		newImportCommand(opts),
		newTaskCommand(opts),
		newColumnCommand(opts),
		newLogCommand(opts),
	)
	return cmd
}

// boardStore is what both storage backends provide.
type boardStore interface {
	app.BoardStore
	app.ChangeRecorder
	Ping(context.Context) error
	Close() error
}

// appRuntime is the wired service plus the resources it owns.
type appRuntime struct {
	cfg        config.Config
	paths      platform.Paths
	configPath string
	logger     *runtimeLogger
	store      boardStore
	svc        *app.Service
}

// openRuntime resolves paths and config, opens the configured store and builds the service.
func openRuntime(ctx context.Context, opts *rootOptions, command string) (*appRuntime, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: opts.appName,
		DevMode: opts.devMode,
	})
	if err != nil {
		return nil, err
	}

	configPath := strings.TrimSpace(opts.configPath)
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("TAVLA_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	dbPath := strings.TrimSpace(opts.dbPath)
	dbOverridden := dbPath != ""
	if !dbOverridden {
		if envPath := strings.TrimSpace(os.Getenv("TAVLA_DB_PATH")); envPath != "" {
			dbPath = envPath
			dbOverridden = true
		} else {
			dbPath = paths.DBPath
		}
	}

	cfg, err := config.Load(configPath, config.Default(dbPath))
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
	}

	logger, err := newRuntimeLogger(opts.stderr, opts.appName, opts.devMode, cfg.Logging, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	if command == "tui" {
		// Runtime logs stay in the dev-file sink while the board owns the terminal.
		logger.SetConsoleEnabled(false)
	}
	logger.Debug("startup configuration resolved", "app", opts.appName, "dev_mode", opts.devMode, "command", command)
	logger.Debug("configuration loaded", "config_path", configPath, "backend", cfg.StorageBackendName(), "log_level", cfg.Logging.Level)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Debug("dev file logging enabled", "path", devPath)
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	boardOpts, err := boardOptions(cfg.Board)
	if err != nil {
		_ = store.Close()
		_ = logger.Close()
		return nil, err
	}
	seeds := make([]domain.SeedColumn, 0, len(cfg.Board.DefaultColumns))
	for _, column := range cfg.Board.DefaultColumns {
		seeds = append(seeds, domain.SeedColumn{ID: column.ID, Name: column.Name})
	}

	svc := app.NewService(store, time.Now, logger, app.ServiceConfig{
		StorageKey:     cfg.Storage.Key,
		Board:          boardOpts,
		DefaultColumns: seeds,
	})
	if err := svc.Load(ctx); err != nil {
		logger.Error("board load failed", "storage_key", svc.StorageKey(), "err", err)
		_ = store.Close()
		_ = logger.Close()
		return nil, fmt.Errorf("load board: %w", err)
	}
	logger.Debug("application service initialized", "storage_key", svc.StorageKey(), "session_id", svc.SessionID())

	return &appRuntime{
		cfg:        cfg,
		paths:      paths,
		configPath: configPath,
		logger:     logger,
		store:      store,
		svc:        svc,
	}, nil
}

// Close releases the store and the dev log sink.
func (r *appRuntime) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			r.logger.Warn("store close failed", "err", err)
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	if err := r.logger.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close runtime log sink: %w", err))
	}
	return errors.Join(errs...)
}

// openStore opens the backend named by storage.backend.
func openStore(ctx context.Context, cfg config.Config, logger *runtimeLogger) (boardStore, error) {
	switch backend := cfg.StorageBackendName(); backend {
	case config.StorageBackendSQLite, "":
		logger.Debug("opening sqlite repository", "db_path", cfg.Database.Path)
		repo, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			logger.Error("sqlite open failed", "db_path", cfg.Database.Path, "err", err)
			return nil, fmt.Errorf("open sqlite repository: %w", err)
		}
		return repo, nil
	case config.StorageBackendRedis:
		logger.Debug("opening redis store", "url", cfg.Redis.URL, "prefix", cfg.Redis.Prefix)
		store, err := redis.Open(ctx, redis.Options{
			URL:         cfg.Redis.URL,
			Prefix:      cfg.Redis.Prefix,
			ChangeLimit: cfg.Redis.ChangeLimit,
		})
		if err != nil {
			logger.Error("redis open failed", "err", err)
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", backend)
	}
}

// boardOptions maps the [board] config section onto domain policies.
func boardOptions(cfg config.BoardConfig) (domain.BoardOptions, error) {
	counter, err := domain.ParseColumnCounterPolicy(cfg.ColumnCounter)
	if err != nil {
		return domain.BoardOptions{}, fmt.Errorf("board.column_counter: %w", err)
	}
	drop, err := domain.ParseDropTargetPolicy(cfg.DropTarget)
	if err != nil {
		return domain.BoardOptions{}, fmt.Errorf("board.drop_target: %w", err)
	}
	return domain.BoardOptions{
		TaskColumnID:  strings.TrimSpace(cfg.TaskColumn),
		ColumnCounter: counter,
		DropTarget:    drop,
	}, nil
}

// withRuntime opens the runtime for one command, runs fn and closes it.
func withRuntime(ctx context.Context, opts *rootOptions, command string, fn func(context.Context, *appRuntime) error) (err error) {
	rt, err := openRuntime(ctx, opts, command)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rt.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	ctx = app.WithMutationActor(ctx, app.MutationActor{ActorID: opts.actorID, Surface: app.SurfaceCLI})
	rt.logger.Info("command flow start", "command", command)
	if err := fn(ctx, rt); err != nil {
		rt.logger.Error("command flow failed", "command", command, "err", err)
		return err
	}
	rt.logger.Debug("command flow complete", "command", command)
	return nil
}

func runTUI(ctx context.Context, opts *rootOptions) error {
	return withRuntime(ctx, opts, "tui", func(_ context.Context, rt *appRuntime) error {
		m := tui.NewModel(
			rt.svc,
			tui.WithKeyConfig(tui.KeyConfig{
				ActivityLog: rt.cfg.Keys.ActivityLog,
				Preview:     rt.cfg.Keys.Preview,
				Yank:        rt.cfg.Keys.Yank,
			}),
			tui.WithActorID(opts.actorID),
		)
		rt.logger.Info("starting tui program loop")
		if _, err := programFactory(m).Run(); err != nil {
			return fmt.Errorf("run tui program: %w", err)
		}
		return nil
	})
}

// parseBoolEnv returns the parsed value and whether the variable was set to a valid bool.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
