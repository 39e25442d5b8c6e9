package user

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/puoklam/intersection-backend/api"
	"github.com/puoklam/intersection-backend/auth"
	"github.com/puoklam/intersection-backend/db"
	"github.com/puoklam/intersection-backend/db/model"
	"github.com/puoklam/intersection-backend/events"
	"github.com/puoklam/intersection-backend/middleware"
	"github.com/puoklam/intersection-backend/recommend"
	"github.com/rs/zerolog"
)

const maxRecommendations = 100

type Handlers struct {
	logger zerolog.Logger
	store  *db.Store
	tokens *auth.Tokens
	bus    events.Bus
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var body InCreateUser
	if err := api.Decode(r, &body); err != nil {
		api.WriteDecodeError(w, err)
		return
	}
	hash, err := auth.HashPassword(*body.Password)
	if err != nil {
		h.logger.Error().Err(err).Msg("hash password")
		api.InternalError(w)
		return
	}
	u := &model.User{
		Email:          *body.Email,
		HashedPassword: hash,
		Name:           *body.Name,
		BirthYear:      *body.BirthYear,
		Gender:         body.Gender,
		Region:         *body.Region,
		SchoolName:     *body.SchoolName,
		SchoolType:     *body.SchoolType,
		AdmissionYear:  *body.AdmissionYear,
		IsActive:       true,
	}
	if err := h.store.CreateUser(r.Context(), u); err != nil {
		if errors.Is(err, db.ErrEmailTaken) {
			api.WriteError(w, http.StatusBadRequest, "email already registered")
			return
		}
		h.logger.Error().Err(err).Msg("create user")
		api.InternalError(w)
		return
	}
	h.publish(r, events.New(events.UserRegistered, u.ID))
	api.WriteJSON(w, http.StatusOK, u)
}

func (h *Handlers) me(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, middleware.UserFrom(r.Context()))
}

func (h *Handlers) upsertDetails(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFrom(r.Context())
	var body InUpsertDetail
	if err := api.Decode(r, &body); err != nil {
		api.WriteDecodeError(w, err)
		return
	}
	d, err := h.store.UpsertDetail(r.Context(), u.ID, &model.UserDetail{
		TransferHistory: body.TransferHistory,
		ClassInfo:       body.ClassInfo,
		ClubName:        body.ClubName,
		Nickname:        body.Nickname,
		MemoryKeywords:  body.MemoryKeywords,
	})
	if err != nil {
		h.logger.Error().Err(err).Uint("user_id", u.ID).Msg("upsert detail")
		api.InternalError(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, d)
}

func (h *Handlers) createPost(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFrom(r.Context())
	var body InCreatePost
	if err := api.Decode(r, &body); err != nil {
		api.WriteDecodeError(w, err)
		return
	}
	p := &model.Post{Title: *body.Title, Content: *body.Content, OwnerID: u.ID}
	if err := h.store.CreatePost(r.Context(), p); err != nil {
		h.logger.Error().Err(err).Uint("user_id", u.ID).Msg("create post")
		api.InternalError(w)
		return
	}
	e := events.New(events.PostCreated, u.ID)
	e.Post = p
	h.publish(r, e)
	api.WriteJSON(w, http.StatusOK, p)
}

func (h *Handlers) recommended(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFrom(r.Context())
	limit, err := api.QueryInt(r, "limit", recommend.DefaultLimit, 1, maxRecommendations)
	if err != nil {
		api.WriteDecodeError(w, err)
		return
	}
	candidates, err := h.store.Candidates(r.Context(), u.ID)
	if err != nil {
		h.logger.Error().Err(err).Msg("list candidates")
		api.InternalError(w)
		return
	}
	users := recommend.Users(recommend.Rank(u, candidates, limit))
	if err := h.store.LoadDetails(r.Context(), users); err != nil {
		h.logger.Error().Err(err).Msg("load details")
		api.InternalError(w)
		return
	}
	h.logger.Debug().Uint("user_id", u.ID).Int("candidates", len(candidates)).Int("returned", len(users)).Msg("recommended")
	api.WriteJSON(w, http.StatusOK, users)
}

// publish never fails the request; the write has already been committed.
func (h *Handlers) publish(r *http.Request, e events.Event) {
	if err := h.bus.Publish(r.Context(), e); err != nil {
		h.logger.Warn().Err(err).Str("event", string(e.Type)).Msg("publish")
	}
}

func (h *Handlers) SetupRoutes(r *chi.Mux) {
	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.register)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticator(h.tokens, h.store, h.logger))
			r.With(middleware.NoCache).Get("/me", h.me)
			r.Post("/me/details", h.upsertDetails)
			r.Post("/me/posts", h.createPost)
			r.With(middleware.NoCache).Get("/me/recommended", h.recommended)
		})
	})
}

func NewHandlers(logger zerolog.Logger, store *db.Store, tokens *auth.Tokens, bus events.Bus) *Handlers {
	return &Handlers{logger, store, tokens, bus}
}
