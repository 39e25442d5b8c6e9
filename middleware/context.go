package middleware

import (
	"context"

	"github.com/puoklam/intersection-backend/db/model"
)

type ctxKey string

const (
	userKey      ctxKey = "user"
	targetKey    ctxKey = "target"
	pushTokenKey ctxKey = "expoPushToken"
)

// UserFrom returns the authenticated user; nil outside Authenticator.
func UserFrom(ctx context.Context) *model.User {
	u, _ := ctx.Value(userKey).(*model.User)
	return u
}

// TargetFrom returns the user loaded by WithTarget.
func TargetFrom(ctx context.Context) *model.User {
	u, _ := ctx.Value(targetKey).(*model.User)
	return u
}

func PushTokenFrom(ctx context.Context) string {
	t, _ := ctx.Value(pushTokenKey).(string)
	return t
}

func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}
