package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/puoklam/intersection-backend/api"
	"github.com/puoklam/intersection-backend/db"
	"github.com/puoklam/intersection-backend/db/model"
	"github.com/rs/zerolog"
)

const credentialsDetail = "could not validate credentials"

type TokenVerifier interface {
	Verify(raw string) (string, error)
}

type UserByEmail interface {
	UserByEmail(ctx context.Context, email string) (*model.User, error)
}

// Authenticator resolves "Authorization: Bearer <token>" to a user and
// stores it in the request context.
func Authenticator(tokens TokenVerifier, users UserByEmail, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearer(r.Header.Get("Authorization"))
			if !ok {
				api.Unauthorized(w, "not authenticated")
				return
			}
			email, err := tokens.Verify(raw)
			if err != nil {
				api.Unauthorized(w, credentialsDetail)
				return
			}
			u, err := users.UserByEmail(r.Context(), email)
			if err != nil {
				if errors.Is(err, db.ErrNotFound) {
					api.Unauthorized(w, credentialsDetail)
				} else {
					logger.Error().Err(err).Msg("load authenticated user")
					api.InternalError(w)
				}
				return
			}
			h.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		}
		return http.HandlerFunc(fn)
	}
}

func bearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
