package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	healthhandler "rechnungswerk/ms_einvoice_core/internal/adapters/http/health"
	invoicehandler "rechnungswerk/ms_einvoice_core/internal/adapters/http/invoice"
	"rechnungswerk/ms_einvoice_core/internal/infrastructure/config"
	"rechnungswerk/ms_einvoice_core/internal/infrastructure/http/middleware"
)

// Options carries the collaborators needed to assemble the HTTP server.
type Options struct {
	Config        config.AppConfig
	Logger        *slog.Logger
	Authenticator *middleware.JWTAuthenticator
	Invoices      *invoicehandler.Handler
	Health        *healthhandler.Handler
}

// Server hosts the REST API.
type Server struct {
	log             *slog.Logger
	httpServer      *http.Server
	shutdownTimeout time.Duration
}

// New assembles the router and wraps it in an http.Server.
func New(opts Options) (*Server, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Invoices == nil {
		return nil, errors.New("invoice handler is required")
	}
	if opts.Health == nil {
		return nil, errors.New("health handler is required")
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(middleware.RequestTimeout(opts.Config.HTTP.RequestTimeout))
	if opts.Authenticator != nil {
		r.Use(opts.Authenticator.Middleware)
	}

	r.Get("/health", opts.Health.Status)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/invoices", func(r chi.Router) {
		r.Post("/", opts.Invoices.CreateInvoice)
		r.Get("/", opts.Invoices.ListInvoices)
		r.Get("/{id}", opts.Invoices.GetInvoice)
		r.Get("/{id}/xrechnung", opts.Invoices.DownloadXRechnung)
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Config.HTTP.Port),
		Handler:      r,
		ReadTimeout:  opts.Config.HTTP.ReadTimeout,
		WriteTimeout: opts.Config.HTTP.WriteTimeout,
		IdleTimeout:  opts.Config.HTTP.IdleTimeout,
	}

	return &Server{
		log:             opts.Logger,
		httpServer:      srv,
		shutdownTimeout: opts.Config.HTTP.ShutdownTimeout,
	}, nil
}

// Handler exposes the assembled router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run starts the server and blocks until the context is cancelled or the
// listener fails. Shutdown respects the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server started", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.log.Info("HTTP server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
