package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/AnshRaj112/emotional-diary-backend/internal/config"
	"github.com/AnshRaj112/emotional-diary-backend/internal/database"
	"github.com/AnshRaj112/emotional-diary-backend/internal/handlers"
	"github.com/AnshRaj112/emotional-diary-backend/internal/logger"
	"github.com/AnshRaj112/emotional-diary-backend/internal/metrics"
	"github.com/AnshRaj112/emotional-diary-backend/internal/middleware"
	"github.com/AnshRaj112/emotional-diary-backend/internal/routes"
	"github.com/AnshRaj112/emotional-diary-backend/internal/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()

	zl, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync()

	if err := cfg.Validate(); err != nil {
		zl.Fatal("Invalid configuration", zap.Error(err))
	}

	store, closeStore, err := openStore(cfg, zl)
	if err != nil {
		zl.Fatal("Failed to open post store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer closeStore()

	// Redis only caches background images; the API works without it.
	var cache *services.CacheService
	if cfg.RedisURI != "" {
		client, err := database.ConnectRedis(cfg.RedisURI, zl)
		if err != nil {
			zl.Warn("Redis unavailable, background images will not be cached", zap.Error(err))
		} else {
			defer database.DisconnectRedis(client)
			cache = services.NewCacheService(client)
		}
	}

	var uploader services.ImageUploader
	if cfg.CloudinaryConfigured() {
		cld, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.UploadFolder)
		if err != nil {
			zl.Warn("Failed to initialize Cloudinary, uploads disabled", zap.Error(err))
		} else {
			uploader = cld
			zl.Info("Cloudinary service initialized")
		}
	} else {
		zl.Warn("Cloudinary credentials not found, uploads disabled")
	}

	admin := services.NewAdminGate(cfg.AdminPassword, cfg.AdminPasswordHash)
	if !admin.Configured() {
		zl.Warn("No admin secret configured, admin deletes will always be rejected")
	}
	if config.ImageAPIKey() == "" {
		zl.Warn(config.ImageAPIKeyEnv + " not set, background image requests will fail until it is")
	}

	collector := metrics.NewCollector("diary")
	h := handlers.New(
		services.NewPostService(store, admin),
		services.NewBackgroundImageService(config.ImageAPIKey, cache, cfg.ImageCacheTTL, zl),
		uploader,
		collector,
		zl,
	)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg.AllowedHost) {
			r.Use(mw)
		}
		zl.Info("Production security enabled", zap.String("allowed_host", cfg.AllowedHost))
	}
	r.Use(middleware.RequestLogger(zl))
	r.Use(middleware.Metrics(collector))

	routes.SetupRoutes(r, h, collector.Handler())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("Emotional diary backend running", zap.String("port", cfg.Port), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("Graceful shutdown failed", zap.Error(err))
	}
}

// openStore connects the configured post store and returns a func that
// releases it.
func openStore(cfg *config.Config, zl *zap.Logger) (services.PostStore, func(), error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		zl.Info("Connecting to PostgreSQL", zap.String("uri", logger.MaskURI(cfg.PostgresURI)))
		db, err := database.ConnectPostgres(cfg.PostgresURI, zl)
		if err != nil {
			return nil, nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := database.InitPostgresTables(ctx, db); err != nil {
			database.DisconnectPostgres(db)
			return nil, nil, err
		}
		zl.Info("PostgreSQL tables initialized")
		return services.NewPostgresPostStore(db), func() { database.DisconnectPostgres(db) }, nil

	case config.StoreMemory:
		zl.Warn("Using in-memory post store, posts are lost on restart")
		return services.NewInMemoryPostStore(), func() {}, nil

	default:
		zl.Info("Connecting to MongoDB", zap.String("uri", logger.MaskURI(cfg.MongoURI)))
		db, err := database.Connect(cfg.MongoURI, cfg.MongoDatabase, zl)
		if err != nil {
			return nil, nil, err
		}
		store := services.NewMongoPostStore(db)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.EnsureIndexes(ctx); err != nil {
			zl.Warn("Failed to ensure post indexes", zap.Error(err))
		}
		return store, func() { database.Disconnect(db) }, nil
	}
}
