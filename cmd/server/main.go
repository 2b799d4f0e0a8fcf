package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"subvention/internal/config"
	"subvention/internal/db"
	"subvention/internal/jobs"
	"subvention/internal/metrics"
	"subvention/internal/middleware"
	"subvention/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	if cfg.IsDev() {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	} else {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	}

	// Initialize database
	database, err := db.New(ctx, cfg.DatabaseURL,
		db.WithTxTimeout(cfg.TxTimeout),
		db.WithTxMaxRetries(cfg.TxMaxRetries),
	)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")

	if cfg.IsDev() && cfg.SeedDevData {
		if err := database.SeedDevAnnouncements(ctx); err != nil {
			log.Printf("Warning: Failed to seed announcements: %v", err)
		}
	}

	metrics.Init(database)

	// Apply exclusion keywords from config.yaml
	yamlCfg, err := config.LoadYAMLConfig()
	if err != nil {
		log.Fatalf("Failed to load YAML config: %v", err)
	}
	if n, err := jobs.BootstrapKeywords(ctx, database, yamlCfg.BootstrapKeywords()); err != nil {
		log.Fatalf("Failed to apply bootstrap keywords: %v", err)
	} else if n > 0 {
		log.Printf("Applied %d bootstrap exclusion keywords", n)
	}

	var verifier middleware.TokenVerifier
	if cfg.IsAuthEnabled() {
		verifier, err = middleware.NewOIDCVerifier(ctx, cfg.OIDCIssuer, cfg.OIDCClientID)
		if err != nil {
			log.Fatalf("Failed to initialize OIDC verifier: %v", err)
		}
	} else {
		log.Println("OIDC authentication is disabled. Set OIDC_ISSUER to protect mutating routes.")
	}

	srv := server.New(cfg)
	srv.RegisterRoutes(database, verifier)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Server started on %s", cfg.ServerAddr)
		return srv.Start()
	})

	if cfg.ReconcileInterval > 0 {
		reconciler := jobs.NewCounterReconciler(database, cfg.ReconcileInterval)
		g.Go(func() error {
			reconciler.Start(gctx)
			return nil
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down server...")
		return srv.Shutdown()
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server exited")
}
