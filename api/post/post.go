package post

import (
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/puoklam/intersection-backend/api"
	"github.com/puoklam/intersection-backend/db"
	"github.com/puoklam/intersection-backend/ws"
	"github.com/rs/zerolog"
)

const defaultLimit = 100

type Handlers struct {
	logger zerolog.Logger
	store  *db.Store
	hub    *ws.Hub
}

func (h *Handlers) listPosts(w http.ResponseWriter, r *http.Request) {
	skip, err := api.QueryInt(r, "skip", 0, 0, math.MaxInt32)
	if err != nil {
		api.WriteDecodeError(w, err)
		return
	}
	limit, err := api.QueryInt(r, "limit", defaultLimit, 0, math.MaxInt32)
	if err != nil {
		api.WriteDecodeError(w, err)
		return
	}
	posts, err := h.store.ListPosts(r.Context(), skip, limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("list posts")
		api.InternalError(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, posts)
}

func (h *Handlers) stream(w http.ResponseWriter, r *http.Request) {
	h.hub.ServeWS(w, r)
}

func (h *Handlers) SetupRoutes(r *chi.Mux) {
	r.Route("/posts", func(r chi.Router) {
		r.Get("/", h.listPosts)
		r.Get("/stream", h.stream)
	})
}

func NewHandlers(logger zerolog.Logger, store *db.Store, hub *ws.Hub) *Handlers {
	return &Handlers{logger, store, hub}
}
