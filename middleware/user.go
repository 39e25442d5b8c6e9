package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/puoklam/intersection-backend/api"
	"github.com/puoklam/intersection-backend/db"
	"github.com/puoklam/intersection-backend/db/model"
	"github.com/rs/zerolog"
)

type UserByID interface {
	UserByID(ctx context.Context, id uint) (*model.User, error)
}

// WithTarget loads the user named by the {targetUserID} path parameter.
func WithTarget(users UserByID, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			id, err := strconv.ParseUint(chi.URLParam(r, "targetUserID"), 10, 0)
			if err != nil || id == 0 {
				api.WriteError(w, http.StatusUnprocessableEntity, "target_user_id: must be a positive integer")
				return
			}
			u, err := users.UserByID(r.Context(), uint(id))
			if err != nil {
				if errors.Is(err, db.ErrNotFound) {
					api.WriteError(w, http.StatusNotFound, "user not found")
				} else {
					logger.Error().Err(err).Uint64("target", id).Msg("load target user")
					api.InternalError(w)
				}
				return
			}
			ctx := context.WithValue(r.Context(), targetKey, u)
			h.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(fn)
	}
}
