package friend

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/puoklam/intersection-backend/api"
	"github.com/puoklam/intersection-backend/auth"
	"github.com/puoklam/intersection-backend/db"
	"github.com/puoklam/intersection-backend/db/model"
	"github.com/puoklam/intersection-backend/events"
	"github.com/puoklam/intersection-backend/middleware"
	"github.com/puoklam/intersection-backend/notify"
	"github.com/rs/zerolog"
)

const notifyTimeout = 5 * time.Second

type Handlers struct {
	logger   zerolog.Logger
	store    *db.Store
	tokens   *auth.Tokens
	bus      events.Bus
	notifier notify.Notifier
}

func (h *Handlers) addFriend(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFrom(r.Context())
	target := middleware.TargetFrom(r.Context())

	if _, err := h.store.AddFriend(r.Context(), u.ID, target.ID); err != nil {
		h.logger.Error().Err(err).Uint("user_id", u.ID).Uint("target_id", target.ID).Msg("add friend")
		api.InternalError(w)
		return
	}

	e := events.New(events.FriendAdded, u.ID)
	e.TargetID = target.ID
	if err := h.bus.Publish(r.Context(), e); err != nil {
		h.logger.Warn().Err(err).Msg("publish friend.added")
	}
	h.postAdd(r.Context(), u, target)

	api.WriteJSON(w, http.StatusOK, api.MessageBody{Message: "friend added"})
}

// postAdd tells the target's devices about the new edge. Failures are
// only logged.
func (h *Handlers) postAdd(ctx context.Context, u, target *model.User) {
	tokens, err := h.store.DeviceTokens(ctx, target.ID)
	if err != nil {
		h.logger.Warn().Err(err).Uint("user_id", target.ID).Msg("load device tokens")
		return
	}
	if len(tokens) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()
	err = h.notifier.Notify(ctx, tokens, notify.Message{
		Title: "New friend",
		Body:  fmt.Sprintf("%s added you as a friend", u.Name),
		Data:  map[string]string{"type": string(events.FriendAdded), "user_id": strconv.FormatUint(uint64(u.ID), 10)},
	})
	if err != nil {
		h.logger.Warn().Err(err).Uint("user_id", target.ID).Msg("push notification")
	}
}

func (h *Handlers) listFriends(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFrom(r.Context())
	friends, err := h.store.ListFriends(r.Context(), u.ID)
	if err != nil {
		h.logger.Error().Err(err).Uint("user_id", u.ID).Msg("list friends")
		api.InternalError(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, friends)
}

func (h *Handlers) SetupRoutes(r *chi.Mux) {
	r.Route("/friends", func(r chi.Router) {
		r.Use(middleware.Authenticator(h.tokens, h.store, h.logger))
		r.With(middleware.NoCache).Get("/me", h.listFriends)
		r.With(middleware.WithTarget(h.store, h.logger)).Post("/{targetUserID}", h.addFriend)
	})
}

func NewHandlers(logger zerolog.Logger, store *db.Store, tokens *auth.Tokens, bus events.Bus, notifier notify.Notifier) *Handlers {
	return &Handlers{logger, store, tokens, bus, notifier}
}
