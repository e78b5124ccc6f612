// Copyright 2026 The Keygate Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

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

	"golang.org/x/sync/errgroup"

	_ "github.com/keygate/keygate/docs"
	"github.com/keygate/keygate/internal/audit"
	"github.com/keygate/keygate/internal/config"
	"github.com/keygate/keygate/internal/identity"
	"github.com/keygate/keygate/internal/observability/logger"
	"github.com/keygate/keygate/internal/observability/metrics"
	"github.com/keygate/keygate/internal/observability/tracing"
	"github.com/keygate/keygate/internal/store/memory"
	"github.com/keygate/keygate/internal/store/postgres"
	transportHTTP "github.com/keygate/keygate/internal/transport/http"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.InitLogger(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})
	slog.Info("starting keygate identity service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize tracer
	tracer, err := tracing.New(ctx, tracing.Config{
		Enabled:        cfg.Observability.TracingEnabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		SamplingRate:   1.0,
	})
	if err != nil {
		slog.Error("failed to initialize tracer", logger.Error(err))
	}
	defer tracer.Shutdown(context.Background())

	// Initialize meter
	_, err = metrics.New(ctx, metrics.Config{
		Enabled: cfg.Observability.TracingEnabled,
	}, cfg.Observability.ServiceName)
	if err != nil {
		slog.Error("failed to initialize meter", logger.Error(err))
	}

	// Initialize repositories
	repos, closeStore, err := buildRepositories(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize store", logger.Error(err))
		os.Exit(1)
	}
	defer closeStore()

	// Initialize helpers
	auditLogger := audit.NewSlogLogger()
	passwordHasher := identity.NewPasswordHasher(
		cfg.Security.Argon2Memory,
		cfg.Security.Argon2Iterations,
		cfg.Security.Argon2Parallelism,
		cfg.Security.Argon2SaltLength,
		cfg.Security.Argon2KeyLength,
	)

	// Ensure the built-in roles, and the bootstrap admin when the
	// environment names one, exist before the core resolves them.
	if err := identity.Bootstrap(ctx, repos, passwordHasher, auditLogger, identity.BootstrapConfig{
		AdminRoleName:        cfg.Identity.AdminRoleName,
		ServiceAdminRoleName: cfg.Identity.ServiceAdminRoleName,
	}); err != nil {
		slog.Error("bootstrap failed", logger.Error(err))
		os.Exit(1)
	}

	identityService, err := identity.NewService(ctx, repos, passwordHasher, auditLogger, identity.Config{
		AdminRoleName:        cfg.Identity.AdminRoleName,
		ServiceAdminRoleName: cfg.Identity.ServiceAdminRoleName,
		TokenTTL:             cfg.Identity.TokenTTL,
		PageLimitDefault:     cfg.Identity.PageLimitDefault,
		PageLimitMax:         cfg.Identity.PageLimitMax,
	})
	if err != nil {
		slog.Error("failed to initialize identity service", logger.Error(err))
		os.Exit(1)
	}

	// Rate limiter for the authentication endpoint
	rateLimiter := transportHTTP.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	handler := transportHTTP.NewHandler(identityService)

	adminServer := &http.Server{
		Addr:         cfg.Server.AdminBind,
		Handler:      transportHTTP.NewAdminRouter(handler, rateLimiter),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	serviceServer := &http.Server{
		Addr:         cfg.Server.ServiceBind,
		Handler:      transportHTTP.NewServiceRouter(handler, rateLimiter),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("admin endpoint listening", logger.Component("server"), logger.String("addr", adminServer.Addr))
		if err := adminServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("admin endpoint: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		slog.Info("service endpoint listening", logger.Component("server"), logger.String("addr", serviceServer.Addr))
		if err := serviceServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("service endpoint: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := adminServer.Shutdown(shutdownCtx)
		if serr := serviceServer.Shutdown(shutdownCtx); err == nil {
			err = serr
		}
		return err
	})

	if err := g.Wait(); err != nil {
		slog.Error("server error", logger.Error(err))
		os.Exit(1)
	}
	slog.Info("stopped")
}

// buildRepositories wires the identity core to the store selected by
// KEYGATE_STORE. The returned close function releases the backing store.
func buildRepositories(ctx context.Context, cfg *config.Config) (identity.Repositories, func(), error) {
	if cfg.Store == config.StoreMemory {
		slog.Warn("using in-memory store; all state is lost on restart")
		store := memory.New()
		return identity.Repositories{
			Users:       store.Users(),
			Tenants:     store.Tenants(),
			Roles:       store.Roles(),
			Services:    store.Services(),
			Templates:   store.EndpointTemplates(),
			Tokens:      store.Tokens(),
			Credentials: store.Credentials(),
		}, func() {}, nil
	}

	db, err := postgres.New(ctx, postgres.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return identity.Repositories{}, nil, fmt.Errorf("connect to database: %w", err)
	}
	slog.Info("connected to database")

	return identity.Repositories{
		Users:       postgres.NewUserRepository(db),
		Tenants:     postgres.NewTenantRepository(db),
		Roles:       postgres.NewRoleRepository(db),
		Services:    postgres.NewServiceRepository(db),
		Templates:   postgres.NewEndpointTemplateRepository(db),
		Tokens:      postgres.NewTokenRepository(db),
		Credentials: postgres.NewCredentialRepository(db),
	}, db.Close, nil
}
