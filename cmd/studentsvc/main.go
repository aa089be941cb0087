// Command studentsvc runs the student records HTTP service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/doanvh/studentsvc/internal/auth"
	authjwt "github.com/doanvh/studentsvc/internal/auth/jwt"
	"github.com/doanvh/studentsvc/internal/config"
	"github.com/doanvh/studentsvc/internal/health"
	"github.com/doanvh/studentsvc/internal/observability"
	"github.com/doanvh/studentsvc/internal/ratelimit"
	"github.com/doanvh/studentsvc/internal/server"
	"github.com/doanvh/studentsvc/internal/storage/sqlite"
	"github.com/doanvh/studentsvc/internal/student"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "studentsvc: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	metrics := observability.NewMetrics("student")

	store, err := sqlite.New(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()

	logger.Info("storage ready",
		observability.String("path", cfg.Storage.Path),
	)

	signer, err := authjwt.NewSigner(authjwt.Config{
		Secret: cfg.Auth.JWTSecret,
		Issuer: cfg.Auth.Issuer,
		TTL:    cfg.Auth.TokenTTL.Duration(),
	})
	if err != nil {
		return fmt.Errorf("failed to create token signer: %w", err)
	}

	validator, err := authjwt.NewValidator(authjwt.Config{
		Secret: cfg.Auth.JWTSecret,
		Issuer: cfg.Auth.Issuer,
	})
	if err != nil {
		return fmt.Errorf("failed to create token validator: %w", err)
	}

	users := make([]auth.User, 0, len(cfg.Auth.Users))
	for _, u := range cfg.Auth.Users {
		users = append(users, auth.User{
			Username:     u.Username,
			PasswordHash: u.PasswordHash,
			Roles:        u.Roles,
		})
	}
	verifier := auth.NewStaticVerifier(users)

	var limiter *ratelimit.Service
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.Window.Duration(),
			ratelimit.WithLogger(logger),
			ratelimit.WithTTL(cfg.RateLimit.TTL.Duration()),
		)
		limiter.StartAutoCleanup()
		defer limiter.Close()
	}

	healthHandler := health.NewHandler(logger)
	healthHandler.Register(health.NewCheckFunc("storage", store.Ping))

	students := student.NewService(store, logger)

	srv := server.New(cfg.Server, server.Deps{
		Students:  students,
		Verifier:  verifier,
		Signer:    signer,
		Validator: validator,
		Metrics:   metrics,
		Limiter:   limiter,
		Health:    healthHandler,
		Logger:    logger,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(context.Background())
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("received shutdown signal",
			observability.String("signal", sig.String()),
		)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}
