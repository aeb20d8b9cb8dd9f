// Package httpapi exposes the dashboard's REST surface.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"

	"github.com/mealmarkt/ops-manager/internal/analytics"
	"github.com/mealmarkt/ops-manager/internal/campaign"
	"github.com/mealmarkt/ops-manager/internal/dependency"
	syncsrv "github.com/mealmarkt/ops-manager/internal/sync"
)

// Config is the configuration for the http server
type Config struct {
	Port           string        `mapstructure:"port"`
	Address        string        `mapstructure:"address"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	MasterPassword string        `mapstructure:"master_password"`
	JWTTTL         time.Duration `mapstructure:"jwt_ttl"`
}

// Server is the http server
type Server struct {
	hs        *http.Server
	c         *Config
	ja        *jwtauth.JWTAuth
	rep       dependency.Repository
	analytics *analytics.Service
	campaigns *campaign.Service
	sync      *syncsrv.Service
	done      chan struct{}
}

// New creates a new server. Credentials are validated here so a
// misconfigured process never starts serving.
func New(c *Config, rep dependency.Repository, as *analytics.Service, cs *campaign.Service, ss *syncsrv.Service) (*Server, error) {
	if c.JWTSecret == "" || c.MasterPassword == "" {
		return nil, fmt.Errorf("incomplete http config: jwt_secret and master_password are required")
	}
	if c.JWTTTL == 0 {
		c.JWTTTL = 24 * time.Hour
	}
	return &Server{
		c:         c,
		ja:        jwtauth.New("HS256", []byte(c.JWTSecret), nil),
		rep:       rep,
		analytics: as,
		campaigns: cs,
		sync:      ss,
		done:      make(chan struct{}),
	}, nil
}

// Done returns a channel that is closed when the server exits
func (s *Server) Done() <-chan struct{} {
	return s.done
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.c.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodOptions,
			http.MethodDelete,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Post("/api/auth/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(s.ja))
		r.Use(jwtauth.Authenticator)

		r.Get("/api/merchants", s.handleListMerchants)
		r.Get("/api/merchants/map", s.handleMerchantMap)

		r.Post("/api/sync-orders", s.handleSyncOrders)

		r.Get("/api/merchant-overrides", s.handleListOverrides)
		r.Post("/api/merchant-overrides", s.handleAddOverride)
		r.Delete("/api/merchant-overrides/{id}", s.handleDeleteOverride)

		r.Get("/api/orders", s.handleListOrders)
		r.Get("/api/clients", s.handleListClients)

		r.Get("/api/segments", s.handleListSegments)
		r.Post("/api/segments", s.handleAddSegment)
		r.Get("/api/segments/{id}", s.handleGetSegment)
		r.Put("/api/segments/{id}", s.handleUpdateSegment)
		r.Delete("/api/segments/{id}", s.handleDeleteSegment)
		r.Post("/api/segments/{id}/refresh-count", s.handleRefreshSegmentCount)
		r.Put("/api/segments/{id}/members", s.handleSetSegmentMembers)

		r.Get("/api/templates", s.handleListTemplates)
		r.Post("/api/templates", s.handleAddTemplate)
		r.Delete("/api/templates/{id}", s.handleDeleteTemplate)

		r.Get("/api/campaigns", s.handleListCampaigns)
		r.Post("/api/campaigns", s.handleAddCampaign)
		r.Post("/api/campaigns/{id}/send", s.handleSendCampaign)

		r.Get("/api/revenue-entries", s.handleListRevenueEntries)
		r.Post("/api/revenue-entries", s.handleAddRevenueEntry)
		r.Delete("/api/revenue-entries/{id}", s.handleDeleteRevenueEntry)

		r.Get("/api/analytics/kpis", s.handleGetKPIs)
		r.Get("/api/analytics/kpis/export", s.handleExportKPIs)
		r.Get("/api/analytics/top-chefs", s.handleTopChefs)
	})

	return r
}

// Start starts the http server
func (s *Server) Start(ctx context.Context) error {
	s.hs = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", s.c.Address, s.c.Port),
		Handler:           s.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		defer close(s.done)
		slog.Default().InfoContext(ctx, "http server listening", slog.String("addr", s.hs.Addr))
		if err := s.hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Default().ErrorContext(ctx, "http server exited",
				slog.String("err", err.Error()),
			)
		}
	}()
	return nil
}

// Stop shuts the server down gracefully
func (s *Server) Stop(ctx context.Context) error {
	if s.hs == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.hs.Shutdown(shutdownCtx)
}
