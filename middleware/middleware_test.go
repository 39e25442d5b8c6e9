package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/puoklam/intersection-backend/auth"
	"github.com/puoklam/intersection-backend/db"
	"github.com/puoklam/intersection-backend/db/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeTokens map[string]string

func (f fakeTokens) Verify(raw string) (string, error) {
	if email, ok := f[raw]; ok {
		return email, nil
	}
	return "", auth.ErrInvalidCredentials
}

type fakeUsers map[string]*model.User

func (f fakeUsers) UserByEmail(_ context.Context, email string) (*model.User, error) {
	if u, ok := f[email]; ok {
		return u, nil
	}
	return nil, db.ErrNotFound
}

func (f fakeUsers) UserByID(_ context.Context, id uint) (*model.User, error) {
	for _, u := range f {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, db.ErrNotFound
}

func mkUser(id uint, email string) *model.User {
	u := &model.User{Email: email}
	u.ID = id
	return u
}

var (
	kim  = mkUser(1, "kim@example.com")
	lee  = mkUser(2, "lee@example.com")
	gone = "gone@example.com"
)

func TestAuthenticator(t *testing.T) {
	tokens := fakeTokens{"good": kim.Email, "orphan": gone}
	users := fakeUsers{kim.Email: kim}
	h := Authenticator(tokens, users, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(UserFrom(r.Context()).Email))
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer good", http.StatusOK},
		{"lowercase scheme", "bearer good", http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"invalid token", "Bearer bad", http.StatusUnauthorized},
		{"unknown user", "Bearer orphan", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)
			require.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				require.Equal(t, kim.Email, w.Body.String())
			} else {
				require.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestWithTarget(t *testing.T) {
	users := fakeUsers{kim.Email: kim, lee.Email: lee}
	r := chi.NewRouter()
	r.Use(func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.ServeHTTP(w, r.WithContext(WithUser(r.Context(), kim)))
		})
	})
	r.With(WithTarget(users, zerolog.Nop())).Post("/friends/{targetUserID}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(TargetFrom(r.Context()).Email))
	})

	tests := []struct {
		path   string
		status int
		email  string
	}{
		{"/friends/2", http.StatusOK, lee.Email},
		{"/friends/1", http.StatusOK, kim.Email},
		{"/friends/99", http.StatusNotFound, ""},
		{"/friends/abc", http.StatusUnprocessableEntity, ""},
		{"/friends/0", http.StatusUnprocessableEntity, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, tt.path, nil))
			require.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				require.Equal(t, tt.email, w.Body.String())
			}
		})
	}
}

func TestWithExpoPushToken(t *testing.T) {
	var got string
	h := WithExpoPushToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = PushTokenFrom(r.Context())
	}))

	r := httptest.NewRequest(http.MethodPost, "/token", nil)
	r.Header.Set("X-Expo-Push-Token", "ExponentPushToken[x]")
	h.ServeHTTP(httptest.NewRecorder(), r)
	require.Equal(t, "ExponentPushToken[x]", got)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/token", nil))
	require.Empty(t, got)
}

func TestNoCache(t *testing.T) {
	w := httptest.NewRecorder()
	NoCache(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.True(t, strings.Contains(w.Header().Get("Cache-Control"), "no-store"))
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	r := chi.NewRouter()
	r.Use(m.Handler)
	r.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, p := range []string{"/users/1", "/users/2", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}
	require.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/users/{id}", "418")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))
}
