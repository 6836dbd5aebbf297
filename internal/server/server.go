// Package server assembles the bistro HTTP surface: the Connect services,
// Prometheus metrics and a health check behind a chi router.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/bistro/internal/auth"
	"github.com/mmynk/bistro/internal/cart"
	"github.com/mmynk/bistro/internal/catalog"
	"github.com/mmynk/bistro/internal/events"
	"github.com/mmynk/bistro/internal/lifecycle"
	"github.com/mmynk/bistro/internal/metrics"
	intmw "github.com/mmynk/bistro/internal/middleware"
	"github.com/mmynk/bistro/internal/pricing"
	"github.com/mmynk/bistro/internal/service"
	"github.com/mmynk/bistro/internal/storage"
	"github.com/mmynk/bistro/pkg/api"
)

// Options configures New.
type Options struct {
	Store   storage.Store
	Pricing pricing.Config
	JWT     *auth.JWTManager
	Logger  *slog.Logger

	// Registry receives the server's collectors and backs /metrics.
	// Nil uses a fresh registry.
	Registry *prometheus.Registry

	// CORSOrigin is sent as Access-Control-Allow-Origin. Empty disables CORS headers.
	CORSOrigin string

	// BcryptCost overrides the password hashing cost. Zero keeps the default.
	BcryptCost int
}

// Server owns the event bus and the assembled HTTP handler.
type Server struct {
	bus     *events.Bus
	handler http.Handler
	logger  *slog.Logger
}

// New wires every component over opts.Store.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	bus := events.NewBus(logger)
	m := metrics.New(reg)
	bus.Handle(m.Observe)
	bus.Handle(notifyCustomer(logger))

	authenticator := auth.NewPasswordAuthenticator(opts.Store)
	if opts.BcryptCost > 0 {
		authenticator = authenticator.WithCost(opts.BcryptCost)
	}
	menu := catalog.New(opts.Store, bus, logger)
	engine := lifecycle.NewEngine(opts.Store, opts.Store, opts.Pricing, bus, logger)
	sessions := cart.NewSessions()

	interceptors := connect.WithInterceptors(
		m.Interceptor(),
		intmw.NewAuthInterceptor(opts.JWT, opts.Store, logger),
		intmw.LoggingInterceptor(logger),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors(opts.CORSOrigin))

	r.Mount(api.NewAuthServiceHandler(service.NewAuthService(authenticator, opts.JWT, opts.Store, logger), interceptors))
	r.Mount(api.NewMenuServiceHandler(service.NewMenuService(menu, logger), interceptors))
	r.Mount(api.NewCartServiceHandler(service.NewCartService(sessions, menu, opts.Pricing, logger), interceptors))
	r.Mount(api.NewOrderServiceHandler(service.NewOrderService(engine, sessions, bus, logger), interceptors))

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})

	return &Server{bus: bus, handler: r, logger: logger}
}

// Handler returns the router wrapped for HTTP/2 without TLS.
func (s *Server) Handler() http.Handler {
	return h2c.NewHandler(s.handler, &http2.Server{})
}

// Close stops event delivery to subscribers.
func (s *Server) Close() {
	s.bus.Close()
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests
// for up to shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Watch streams end once the bus closes.
	srv.RegisterOnShutdown(s.Close)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Connect server starting", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("Shutting down", "timeout", shutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// notifyCustomer logs the customer-facing status notification for each
// order status change.
func notifyCustomer(logger *slog.Logger) func(events.Event) {
	return func(e events.Event) {
		ev, ok := e.(events.OrderStatusChanged)
		if !ok {
			return
		}
		logger.Info("Customer notified",
			"order_id", ev.Order.ID,
			"user_id", ev.Order.UserID,
			"from", ev.From,
			"to", ev.To,
		)
	}
}

// cors adds CORS headers for browser clients, exposing the headers Connect
// and the cart session need.
func cors(origin string) func(http.Handler) http.Handler {
	allowHeaders := strings.Join([]string{
		"Content-Type",
		"Connect-Protocol-Version",
		"Connect-Timeout-Ms",
		api.AuthorizationHeader,
		api.CartSessionHeader,
	}, ", ")
	return func(next http.Handler) http.Handler {
		if origin == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", allowHeaders)
			w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
