package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/controller/factory"
	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/router"
	"github.com/garyjia/billed/internal/config"
	"github.com/garyjia/billed/internal/infrastructure/export"
	"github.com/garyjia/billed/internal/infrastructure/persistence/disk"
	"github.com/garyjia/billed/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/billed/internal/infrastructure/store"
	httpshell "github.com/garyjia/billed/internal/interfaces/http"
	"github.com/garyjia/billed/internal/interfaces/ui"
	"github.com/garyjia/billed/internal/session"
	"github.com/garyjia/billed/internal/view"
	"github.com/garyjia/billed/pkg/database"
	"github.com/garyjia/billed/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Billed client shell",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Backend))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage, closeStorage, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize session storage", zap.Error(err))
	}
	defer closeStorage()

	// A nil store runs the client without a backend
	var backend port.Store
	if cfg.API.URL != "" {
		client, err := store.New(cfg.API.URL, storage,
			store.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
			store.WithLogger(logger.Named("store")),
		)
		if err != nil {
			logger.Fatal("Failed to initialize store client", zap.Error(err))
		}
		backend = client
	}

	views, err := view.New(logger.Named("view"))
	if err != nil {
		logger.Fatal("Failed to parse templates", zap.Error(err))
	}

	origin := fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)
	doc := ui.MustNewDocument(ui.DefaultShell)
	history := ui.NewHistory(origin, "/")
	loop := &ui.EventLoop{}

	r := router.New(router.Deps{
		Document:    doc,
		History:     history,
		Storage:     storage,
		Store:       backend,
		Views:       views,
		Controllers: factory.New(),
		Modal:       ui.ClassModal{},
		Loop:        loop,
		Logger:      logger.Named("router"),
	})
	route := r.Initialize(ctx)
	logger.Info("Client initialized", zap.String("route", route.String()))

	server := httpshell.NewServer(httpshell.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Development:  cfg.Server.Development,
	}, httpshell.Shell{
		Document: doc,
		History:  history,
		Router:   r,
		Storage:  storage,
		Store:    backend,
		Exporter: export.NewSectionExporter(logger.Named("export")),
		Loop:     loop,
	}, utils.NewKVLogger(logger.Named("http")))

	// Blocks until SIGINT/SIGTERM, then shuts down gracefully
	if err := server.Start(ctx); err != nil {
		logger.Error("Server exited with error", zap.Error(err))
		return
	}

	logger.Info("Server exited successfully")
}

// openStorage builds the configured session storage and its cleanup
func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (port.Storage, func(), error) {
	switch cfg.Storage.Backend {
	case config.StorageSQLite:
		db, err := database.New(database.Config{
			Path:            cfg.Database.Path,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := sqlite.Migrate(ctx, db, logger); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return sqlite.NewStorage(db, logger.Named("session")), func() { db.Close() }, nil
	case config.StorageDisk:
		s, err := disk.New(cfg.Storage.Path, logger.Named("session"))
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	default:
		return session.NewMemoryStorage(), func() {}, nil
	}
}
