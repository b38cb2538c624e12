package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	gatewayloopback "rechnungswerk/ms_einvoice_core/internal/adapters/gateway/loopback"
	gatewaypeppol "rechnungswerk/ms_einvoice_core/internal/adapters/gateway/peppol"
	healthhandler "rechnungswerk/ms_einvoice_core/internal/adapters/http/health"
	invoicehandler "rechnungswerk/ms_einvoice_core/internal/adapters/http/invoice"
	invoicepostgres "rechnungswerk/ms_einvoice_core/internal/adapters/invoice/postgres"
	invoiceredis "rechnungswerk/ms_einvoice_core/internal/adapters/invoice/redis"
	apphealth "rechnungswerk/ms_einvoice_core/internal/application/health"
	"rechnungswerk/ms_einvoice_core/internal/application/lifecycle"
	coreinvoice "rechnungswerk/ms_einvoice_core/internal/core/invoice"
	"rechnungswerk/ms_einvoice_core/internal/core/issuer"
	"rechnungswerk/ms_einvoice_core/internal/infrastructure/config"
	"rechnungswerk/ms_einvoice_core/internal/infrastructure/database"
	httpinfra "rechnungswerk/ms_einvoice_core/internal/infrastructure/http"
	"rechnungswerk/ms_einvoice_core/internal/infrastructure/http/middleware"
	"rechnungswerk/ms_einvoice_core/internal/infrastructure/http/server"
	"rechnungswerk/ms_einvoice_core/internal/infrastructure/logger"
	"rechnungswerk/ms_einvoice_core/internal/infrastructure/redis"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "service stopped: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.App.Name, cfg.Log.Level, cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Invoice store
	var repo coreinvoice.Repository
	var checks []apphealth.Check

	switch cfg.Store.Backend {
	case "postgres":
		pool, err := database.NewPool(ctx, database.Config{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			Database:        cfg.Database.Database,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			SSLMode:         cfg.Database.SSLMode,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()

		if err := database.RunMigrations(ctx, pool, log); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}

		repo = invoicepostgres.NewRepository(pool)
		checks = append(checks, apphealth.Check{Name: "postgres", Probe: func(ctx context.Context) error {
			return pool.Ping(ctx)
		}})
		log.Info("invoice store configured", "backend", "postgres", "database", cfg.Database.Database)

	case "redis":
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer client.Close()

		repo = invoiceredis.NewRepository(client)
		checks = append(checks, apphealth.Check{Name: "redis", Probe: client.Health})
		log.Info("invoice store configured", "backend", "redis")

	default:
		return fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}

	// Issuer profile
	issuerProvider := issuer.StaticProvider{Config: issuer.Config{
		Name:    cfg.Issuer.Name,
		Address: cfg.Issuer.Address,
		TaxID:   cfg.Issuer.TaxID,
		Email:   cfg.Issuer.Email,
	}}

	// Submission gateway
	var gateway coreinvoice.SubmissionGateway
	switch cfg.Gateway.Mode {
	case "http":
		httpClient := httpinfra.NewClient(&httpinfra.ClientConfig{
			Timeout: cfg.Gateway.APITimeout,
			Logger:  log,
		})
		auth := gatewaypeppol.NewAuthManager(
			cfg.Gateway.BaseURL,
			cfg.Gateway.Username,
			cfg.Gateway.Password,
			cfg.Gateway.TokenTTL,
			httpClient,
			log,
		)
		gateway = gatewaypeppol.NewClient(cfg.Gateway.BaseURL, auth, httpClient, issuerProvider, log)
		log.Info("submission gateway configured", "mode", "http", "baseURL", cfg.Gateway.BaseURL)

	case "loopback":
		gateway = gatewayloopback.New(log)
		log.Warn("submission gateway configured in loopback mode, invoices are not delivered externally")

	default:
		return fmt.Errorf("unsupported gateway mode %q", cfg.Gateway.Mode)
	}

	service := lifecycle.NewService(repo, gateway, cfg.Store.Namespace, cfg.Submission.Timeout, log)

	// Authentication
	authenticator, err := middleware.NewJWTAuthenticator(cfg.Auth, log)
	if err != nil {
		return fmt.Errorf("create authenticator: %w", err)
	}
	defer authenticator.Close()

	healthService := apphealth.NewService(apphealth.Metadata{
		Service:     cfg.App.Name,
		Version:     cfg.App.Version,
		Environment: cfg.App.Environment,
	}, checks...)

	srv, err := server.New(server.Options{
		Config:        cfg,
		Logger:        log,
		Authenticator: authenticator,
		Invoices:      invoicehandler.NewHandler(service, issuerProvider, log),
		Health:        healthhandler.NewHandler(healthService),
	})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	log.Info("starting HTTP server", "port", cfg.HTTP.Port)
	return srv.Run(ctx)
}
