package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/mocks-server/main/pkg/admin"
	"github.com/mocks-server/main/pkg/alerts"
	"github.com/mocks-server/main/pkg/cliconfig"
	"github.com/mocks-server/main/pkg/config"
	"github.com/mocks-server/main/pkg/engine"
	"github.com/mocks-server/main/pkg/handlers"
	"github.com/mocks-server/main/pkg/logging"
	"github.com/mocks-server/main/pkg/openapi"
)

// shutdownTimeout is the maximum time to wait for graceful shutdown.
const shutdownTimeout = 10 * time.Second

// app wires the mock manager to its definition sources and servers.
type app struct {
	cfg    *cliconfig.Config
	log    *slog.Logger
	alerts *alerts.Alerts
	mm     *engine.MockManager

	files   *config.FilesLoader
	openapi *openapi.Loader

	server *engine.Server
	admin  *admin.API
}

// newLogger builds the logger of a validated configuration.
func newLogger(cfg *cliconfig.Config, w io.Writer) *slog.Logger {
	level, _ := logging.ParseLevel(cfg.Log.Level)
	format, _ := logging.ParseFormat(cfg.Log.Format)
	return logging.New(logging.Config{Level: level, Format: format, Output: w})
}

// newApp creates the mock manager and one loader per enabled definition source.
func newApp(cfg *cliconfig.Config, log *slog.Logger) (*app, error) {
	root := alerts.New("", logging.Component(log, "alerts"))
	mm := engine.NewMockManager(
		engine.WithLogger(logging.Component(log, "mock")),
		engine.WithAlerts(root),
		engine.WithSelectedCollection(cfg.Mock.Collections.Selected),
		engine.WithDelay(cfg.Mock.Routes.Delay),
		engine.WithFilesPath(cfg.Files.Path),
	)

	a := &app{cfg: cfg, log: log, alerts: root, mm: mm}

	if cfg.Files.Enabled {
		loadRoutes, loadCollections := mm.CreateLoaders()
		a.files = config.NewFilesLoader(cfg.Files.Path, loadRoutes, loadCollections,
			config.WithFilesLogger(logging.Component(log, "files")),
			config.WithFilesAlerts(root),
		)
	}
	if cfg.OpenAPI.Enabled {
		loadRoutes, loadCollections := mm.CreateLoaders()
		a.openapi = openapi.NewLoader(cfg.Files.Path, loadRoutes, loadCollections,
			openapi.WithLogger(logging.Component(log, "openapi")),
			openapi.WithAlerts(root),
			openapi.WithCollection(cfg.OpenAPI.Collection.ID, cfg.OpenAPI.Collection.From),
		)
	}

	if err := mm.Init(handlers.DefaultRegistry()); err != nil {
		return nil, err
	}
	return a, nil
}

// load reads every enabled definition source once.
func (a *app) load(ctx context.Context) error {
	if a.files != nil {
		if err := a.files.Load(); err != nil {
			return err
		}
	}
	if a.openapi != nil {
		if err := a.openapi.Load(ctx); err != nil {
			return err
		}
	}
	return nil
}

// reload reads again the sources owning the changed files.
func (a *app) reload(ctx context.Context, changed []string) error {
	var filesChanged, openapiChanged bool
	for _, file := range changed {
		if strings.HasPrefix(file, openapi.Dir+"/") {
			openapiChanged = true
		} else {
			filesChanged = true
		}
	}
	a.log.Info("mocks folder changed, reloading", "files", changed)

	var errs []error
	if filesChanged && a.files != nil {
		errs = append(errs, a.files.Load())
	}
	if openapiChanged && a.openapi != nil {
		errs = append(errs, a.openapi.Load(ctx))
	}
	return errors.Join(errs...)
}

// watchPatterns are the files of a mocks folder that trigger a reload.
func watchPatterns() []string {
	return []string{
		config.RoutesPattern,
		"collections.{json,yaml,yml}",
		openapi.Dir + "/" + openapi.Pattern,
	}
}

// startApp scaffolds the mocks folder if needed, loads the definitions and
// starts the servers and the watcher. The watcher stops with ctx.
func startApp(ctx context.Context, cfg *cliconfig.Config, log *slog.Logger, version string) (*app, error) {
	if cfg.Files.Enabled {
		created, err := config.Scaffold(cfg.Files.Path)
		if err != nil {
			return nil, err
		}
		if created {
			log.Info("mocks folder created", "path", cfg.Files.Path)
		}
	}

	a, err := newApp(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := a.load(ctx); err != nil {
		return nil, err
	}

	a.server = engine.NewServer(a.mm, engine.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		CORS:         cfg.Server.CORS,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, engine.WithServerLogger(logging.Component(log, "server")))
	if err := a.server.Start(); err != nil {
		return nil, err
	}

	if cfg.Admin.Enabled {
		a.admin = admin.NewAPI(a.mm,
			admin.WithLogger(logging.Component(log, "admin")),
			admin.WithVersion(version),
			admin.WithAlerts(a.alerts),
		)
		if err := a.admin.Start(net.JoinHostPort(cfg.Admin.Host, strconv.Itoa(cfg.Admin.Port))); err != nil {
			a.shutdown()
			return nil, err
		}
	}

	if cfg.Files.Enabled && cfg.Files.Watch {
		w, err := config.NewWatcher(config.WatcherConfig{
			BaseDir:  cfg.Files.Path,
			Patterns: watchPatterns(),
			Debounce: cfg.Files.Debounce,
			OnChange: a.reload,
			Logger:   logging.Component(log, "watcher"),
		})
		if err != nil {
			a.shutdown()
			return nil, fmt.Errorf("failed to watch mocks folder: %w", err)
		}
		go func() {
			if err := w.Run(ctx); err != nil {
				log.Error("watcher stopped", "error", err)
			}
		}()
	}

	return a, nil
}

// shutdown stops the servers gracefully.
func (a *app) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.admin != nil {
		if err := a.admin.Stop(ctx); err != nil {
			a.log.Warn("error stopping admin API", "error", err)
		}
	}
	if a.server != nil {
		if err := a.server.Stop(ctx); err != nil {
			a.log.Warn("error stopping mock server", "error", err)
		}
	}
}
