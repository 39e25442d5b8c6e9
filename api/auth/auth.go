package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/puoklam/intersection-backend/api"
	"github.com/puoklam/intersection-backend/auth"
	"github.com/puoklam/intersection-backend/db"
	"github.com/puoklam/intersection-backend/middleware"
	"github.com/rs/zerolog"
)

type LoginRequest struct {
	Email    *string `json:"email" validate:"required"`
	Password *string `json:"password" validate:"required"`
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type Handlers struct {
	logger    zerolog.Logger
	store     *db.Store
	tokens    *auth.Tokens
	rateLimit int
}

func (h *Handlers) token(w http.ResponseWriter, r *http.Request) {
	var body LoginRequest
	if err := api.Decode(r, &body); err != nil {
		api.WriteDecodeError(w, err)
		return
	}

	c := r.Context()
	u, err := h.store.UserByEmail(c, *body.Email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			api.Unauthorized(w, "unknown email")
			return
		}
		h.logger.Error().Err(err).Msg("lookup user")
		api.InternalError(w)
		return
	}
	ok, err := auth.VerifyPassword(*body.Password, u.HashedPassword)
	if err != nil {
		h.logger.Error().Err(err).Uint("user_id", u.ID).Msg("verify password")
	}
	if !ok {
		api.Unauthorized(w, "incorrect password")
		return
	}

	accessToken, err := h.tokens.Issue(u.Email)
	if err != nil {
		h.logger.Error().Err(err).Msg("issue token")
		api.InternalError(w)
		return
	}
	if pt := middleware.PushTokenFrom(c); pt != "" {
		if err := h.store.SaveDevice(c, u.ID, pt); err != nil {
			h.logger.Warn().Err(err).Uint("user_id", u.ID).Msg("register device")
		}
	}
	api.WriteJSON(w, http.StatusOK, Token{AccessToken: accessToken, TokenType: auth.TokenType})
}

func (h *Handlers) SetupRoutes(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		if h.rateLimit > 0 {
			r.Use(httprate.LimitByIP(h.rateLimit, time.Minute))
		}
		r.With(middleware.WithExpoPushToken).Post("/token", h.token)
	})
}

// NewHandlers serves POST /token. rateLimit caps login attempts per client
// IP per minute; zero disables the limit.
func NewHandlers(logger zerolog.Logger, store *db.Store, tokens *auth.Tokens, rateLimit int) *Handlers {
	return &Handlers{logger, store, tokens, rateLimit}
}
