package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/princinho/knowledgebase/auth"
	"github.com/princinho/knowledgebase/config"
	"github.com/princinho/knowledgebase/controllers"
	"github.com/princinho/knowledgebase/database"
	"github.com/princinho/knowledgebase/metrics"
	"github.com/princinho/knowledgebase/middleware"
	"github.com/princinho/knowledgebase/services"
	"github.com/princinho/knowledgebase/storage"
	"github.com/princinho/knowledgebase/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level()}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	stores, closeStores, err := database.Open(ctx, database.Options{
		Driver:  cfg.DatabaseDriver,
		URI:     cfg.MongoURI,
		Name:    cfg.DatabaseName,
		Timeout: cfg.StoreTimeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStores(context.Background()); err != nil {
			logger.Warn("closing store", "error", err)
		}
	}()
	logger.Info("store ready", "driver", stores.Kind)

	hasher, err := auth.NewHasher(cfg.BcryptCost, cfg.HashMaxConcurrency)
	if err != nil {
		return err
	}
	issuer := auth.NewIssuer(stores.Users, hasher, auth.IssuerConfig{
		AccessSecret:  []byte(cfg.JWTSecret),
		RefreshSecret: []byte(cfg.JWTRefreshSecret),
		AccessTTL:     cfg.AccessTTL(),
		RefreshTTL:    cfg.RefreshTTL(),
		Issuer:        cfg.TokenIssuer,
	})

	objects, closeObjects, err := openObjectStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeObjects()
	if objects == nil {
		logger.Info("attachments disabled, no STORAGE_PROVIDER set")
	}

	m := metrics.New()
	users := services.NewUserService(stores.Users, hasher, logger)

	// seeding admin user
	if cfg.AdminEmail != "" {
		created, err := users.Bootstrap(ctx, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
		logger.Info("admin bootstrap", "email", cfg.AdminEmail, "created", created)
	}

	app := &controllers.App{
		Issuer: issuer,
		Users:  users,
		Articles: services.NewArticleService(stores.Articles, logger, services.ArticleOptions{
			Objects:        objects,
			Files:          storage.NewFileValidator(cfg.AllowedFileExtensions, cfg.AllowedFileMimeTypes, cfg.MaxUploadSizeMB),
			MaxAttachments: cfg.MaxArticleAttachments,
		}),
		Products: services.NewProductService(stores.Products, logger),
		Search:   services.NewSearchService(stores.Articles, stores.Kind, m),
		Log:      logger,
		Metrics:  m,
		Limits: utils.PageLimits{
			Default: cfg.DefaultReadQueryLimit,
			Max:     cfg.ReadQueryMaxLimit,
		},
		Cookies: controllers.CookieConfig{
			Secure: cfg.CookieSecure,
			Domain: cfg.CookieDomain,
		},
		MaxUploadBytes: cfg.MaxUploadBytes(),
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()

	allowedOrigins := map[string]bool{}
	for _, origin := range cfg.AllowedOrigins {
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}
	logger.Info("cors", "origins", cfg.AllowedOrigins)
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowedOrigins[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Metrics(m))
	r.Use(gin.Recovery())
	app.Register(r)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openObjectStore returns a nil store when attachments are not configured.
func openObjectStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, func(), error) {
	noop := func() {}
	switch cfg.Storage() {
	case config.StorageR2:
		r2, err := storage.NewR2(ctx, storage.R2Config{
			Bucket:          cfg.R2.Bucket,
			AccessKeyID:     cfg.R2.AccessKeyID,
			SecretAccessKey: cfg.R2.SecretAccessKey,
			Endpoint:        cfg.R2.Endpoint,
			PublicDomain:    cfg.R2.PublicDomain,
		})
		if err != nil {
			return nil, noop, err
		}
		return r2, noop, nil
	case config.StorageGCS:
		gcs, err := storage.NewGCS(ctx, cfg.GCSBucket, cfg.CredentialsFile)
		if err != nil {
			return nil, noop, err
		}
		return gcs, func() { _ = gcs.Close() }, nil
	}
	return nil, noop, nil
}
