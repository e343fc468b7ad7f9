package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/myrjola/skillplan/internal/envstruct"
	"github.com/myrjola/skillplan/internal/errors"
	"github.com/myrjola/skillplan/internal/flightrecorder"
	"github.com/myrjola/skillplan/internal/logging"
	"github.com/myrjola/skillplan/internal/program"
	"github.com/myrjola/skillplan/internal/skills"
	"github.com/myrjola/skillplan/internal/sqlite"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	templateFS     fs.FS
	programService *program.Service
	markdown       goldmark.Markdown
	// flightRecorder captures a trace when a request times out. Nil when tracing is disabled.
	flightRecorder *flightrecorder.Recorder
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"SKILLPLAN_ADDR" envDefault:"localhost:8081"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"SKILLPLAN_SQLITE_URL" envDefault:"./skillplan.sqlite3"`
	// TemplatePath is the path to the directory containing the HTML templates.
	TemplatePath string `env:"SKILLPLAN_TEMPLATE_PATH" envDefault:""`
	// CatalogPath optionally replaces the embedded skill catalog with a YAML file.
	CatalogPath string `env:"SKILLPLAN_CATALOG_PATH" envDefault:""`
	// SessionLifetime is how long a visitor's saved programs are remembered.
	SessionLifetime time.Duration `env:"SKILLPLAN_SESSION_LIFETIME" envDefault:"720h"`
	// TracesDirectory enables the flight recorder. Timed out requests dump an execution trace there.
	TracesDirectory string `env:"SKILLPLAN_TRACES_DIRECTORY" envDefault:""`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	var htmlTemplatePath string
	if htmlTemplatePath, err = resolveAndVerifyTemplatePath(cfg.TemplatePath); err != nil {
		return errors.Wrap(err, "resolve template path")
	}

	catalog, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return errors.Wrap(err, "load skill catalog", slog.String("path", cfg.CatalogPath))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "loaded skill catalog", slog.Int("skills", len(catalog.Skills())))

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "close db", errors.SlogError(closeErr))
		}
	}()
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	recorder, err := startFlightRecorder(ctx, logger, cfg.TracesDirectory)
	if err != nil {
		return errors.Wrap(err, "start flight recorder", slog.String("dir", cfg.TracesDirectory))
	}
	if recorder != nil {
		defer recorder.Stop(ctx)
	}

	app := application{
		logger:         logger,
		sessionManager: initializeSessionManager(db, cfg.SessionLifetime),
		templateFS:     os.DirFS(htmlTemplatePath),
		programService: program.NewService(db, logger, catalog),
		markdown:       goldmark.New(goldmark.WithExtensions(extension.GFM)),
		flightRecorder: recorder,
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func loadCatalog(path string) (*skills.Catalog, error) {
	if path == "" {
		return skills.Default() //nolint:wrapcheck // wrapped by the caller.
	}
	return skills.LoadFile(path) //nolint:wrapcheck // wrapped by the caller.
}

func startFlightRecorder(ctx context.Context, logger *slog.Logger, dir string) (*flightrecorder.Recorder, error) {
	if dir == "" {
		return nil, nil //nolint:nilnil // tracing is disabled.
	}
	recorder, err := flightrecorder.New(flightrecorder.Config{
		Logger:          logger,
		TracesDirectory: dir,
		MinAge:          0,
		MaxBytes:        0,
		Cooldown:        0,
	})
	if err != nil {
		return nil, fmt.Errorf("new flight recorder: %w", err)
	}
	if err = recorder.Start(ctx); err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	return recorder, nil
}

func initializeSessionManager(dbs *sqlite.Database, lifetime time.Duration) *scs.SessionManager {
	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite, 24*time.Hour) //nolint:mnd // day
	sessionManager.Lifetime = lifetime
	sessionManager.Cookie.Name = "skillplan_session"
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.Secure = true
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	return sessionManager
}

func main() {
	ctx := context.Background()
	logger := logging.New(os.Stdout, slog.LevelDebug)
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
