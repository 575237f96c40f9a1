package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pet-adoption/internal/adapters/auth/jwtauth"
	"pet-adoption/internal/adapters/storage/sqlstore"
	"pet-adoption/internal/platform/config"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/ports/auth"
	"pet-adoption/internal/router"
)

// @title Pet Adoption API
// @version 1.0
// @description Catálogo de mascotas, solicitudes de adopción, cuentas y perfiles.
// @BasePath /
// @securityDefinitions.apikey TokenAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})
	if zl, ok := log.(*logger.ZapLogger); ok {
		defer func() { _ = zl.Sync() }()
	}

	opts := router.Options{
		MediaRoot: cfg.MediaDir,
		MediaURL:  cfg.MediaURL,
		Logger:    log,
	}

	// Storage: sin DSN se usan repos in-memory
	if cfg.DBDSN != "" {
		store, err := sqlstore.Open(cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer store.Close()

		if cfg.DBAutoMigrate {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			err := store.Migrate(ctx)
			cancel()
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		}
		opts.Store = store
		log.Info("storage ready", map[string]any{"driver": store.Dialect()})
	} else {
		log.Warn("DB_DSN empty, using in-memory storage", nil)
	}

	// Auth: sin JWT_SECRET queda modo dev (X-Debug-User-ID)
	if cfg.DevAuth() {
		log.Warn("JWT_SECRET empty, dev auth mode enabled", nil)
	} else {
		mgr, err := jwtauth.NewManager(jwtauth.Config{
			Secret: cfg.JWTSecret,
			Issuer: cfg.JWTIssuer,
			TTL:    cfg.JWTTTL,
		})
		if err != nil {
			return fmt.Errorf("jwt: %w", err)
		}
		var tokens auth.TokenService = mgr
		opts.AuthVerifier = tokens
		opts.Tokens = tokens
	}

	if cfg.AdminUsername != "" {
		opts.Superuser = &router.Superuser{
			Username: cfg.AdminUsername,
			Password: cfg.AdminPassword,
			Email:    cfg.AdminEmail,
		}
	}

	h, err := router.NewRouter(opts)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      h,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr})
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

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
