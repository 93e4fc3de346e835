package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"snipdrop/internal/config"
	"snipdrop/internal/database"
	"snipdrop/internal/database/migration"
	handlers "snipdrop/internal/http/handler"
	"snipdrop/internal/http/middleware"
	"snipdrop/internal/otel"
	"snipdrop/internal/service"
	"snipdrop/internal/storage"
	"snipdrop/internal/store"
	"snipdrop/internal/store/blob"
	"snipdrop/internal/store/memory"
	"snipdrop/internal/store/postgres"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx := context.Background()

	shutdownTracing, err := otel.Init(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(ctx)

	st, db, backend, err := selectStore(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize %s backend: %v", backend, err)
	}
	if db != nil {
		defer db.Close()
	}
	log.Printf(`{"level":"info","msg":"storage_backend_selected","backend":%q}`, backend)

	objects, err := selectByteStorage(cfg)
	if err != nil {
		log.Fatalf("failed to initialize byte storage: %v", err)
	}

	snippetSvc := service.NewSnippetService(st)
	fileSvc := service.NewFileService(st, objects)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	registry := prometheus.NewRegistry()
	promMW, err := middleware.NewPrometheusMiddleware(registry)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMW.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, db, snippetSvc, fileSvc)

	addr := ":" + cfg.Port
	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

// selectStore picks exactly one persistence backend for the life of the
// process: an explicit STORAGE_BACKEND override, otherwise by configured
// credentials (postgres, then blob, then the volatile fallback). Callers of
// the returned store never branch on the backend type again.
func selectStore(ctx context.Context, cfg *config.AppConfig) (store.Store, *sql.DB, string, error) {
	backend := cfg.StorageBackend
	if backend == "" {
		switch {
		case cfg.Database.Configured():
			backend = "postgres"
		case cfg.MinIO.Configured():
			backend = "blob"
		default:
			backend = "memory"
		}
	}

	switch backend {
	case "postgres":
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, nil, backend, err
		}
		if err := migration.EnsureMigrated(ctx, db, cfg.Database.Host); err != nil {
			db.Close()
			return nil, nil, backend, err
		}
		return postgres.New(db), db, backend, nil
	case "blob":
		st, err := blob.New(cfg.MinIO)
		return st, nil, backend, err
	case "memory":
		return memory.New(), nil, backend, nil
	default:
		return nil, nil, backend, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// selectByteStorage wires file bytes to the object store when configured,
// else to the local filesystem fallback.
func selectByteStorage(cfg *config.AppConfig) (storage.Storage, error) {
	if cfg.MinIO.Configured() {
		return storage.NewMinIO(cfg.MinIO)
	}
	return storage.NewLocal(cfg.UploadDir)
}
