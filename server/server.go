// Package server assembles the router and the http.Server around it.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/puoklam/intersection-backend/api"
	authapi "github.com/puoklam/intersection-backend/api/auth"
	"github.com/puoklam/intersection-backend/api/friend"
	"github.com/puoklam/intersection-backend/api/post"
	"github.com/puoklam/intersection-backend/api/user"
	"github.com/puoklam/intersection-backend/auth"
	"github.com/puoklam/intersection-backend/db"
	"github.com/puoklam/intersection-backend/events"
	"github.com/puoklam/intersection-backend/middleware"
	"github.com/puoklam/intersection-backend/notify"
	"github.com/puoklam/intersection-backend/ws"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

const healthTimeout = 2 * time.Second

// Deps is everything the handlers need, built once in main.
type Deps struct {
	Logger         zerolog.Logger
	Store          *db.Store
	Tokens         *auth.Tokens
	Bus            events.Bus
	Hub            *ws.Hub
	Notifier       notify.Notifier
	Registry       *prometheus.Registry
	AllowedOrigins []string
	LoginRateLimit int
}

func SetupMiddlewares(r *chi.Mux, d Deps) {
	r.Use(
		chimw.RequestID,
		chimw.RealIP,
		hlog.NewHandler(d.Logger),
		hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
			hlog.FromRequest(r).Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("req_id", chimw.GetReqID(r.Context())).
				Int("status", status).
				Int("size", size).
				Dur("duration", duration).
				Msg("request")
		}),
		chimw.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins:   d.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
		}),
		middleware.NewMetrics(d.Registry).Handler,
		chimw.StripSlashes,
	)
}

func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()
	SetupMiddlewares(r, d)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		api.WriteJSON(w, http.StatusOK, api.MessageBody{Message: "Welcome to the Intersection backend!"})
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := d.Store.Ping(ctx); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Msg("health check")
			api.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))

	authapi.NewHandlers(d.Logger, d.Store, d.Tokens, d.LoginRateLimit).SetupRoutes(r)
	user.NewHandlers(d.Logger, d.Store, d.Tokens, d.Bus).SetupRoutes(r)
	post.NewHandlers(d.Logger, d.Store, d.Hub).SetupRoutes(r)
	friend.NewHandlers(d.Logger, d.Store, d.Tokens, d.Bus, d.Notifier).SetupRoutes(r)
	return r
}

func New(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
