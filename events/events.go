// Package events carries domain events from the API to feed subscribers,
// through NSQ when configured and in-process otherwise.
package events

import (
	"context"
	"time"

	"github.com/puoklam/intersection-backend/db/model"
)

type Type string

const (
	UserRegistered Type = "user.registered"
	PostCreated    Type = "post.created"
	FriendAdded    Type = "friend.added"
)

type Event struct {
	Type     Type        `json:"type"`
	UserID   uint        `json:"user_id"`
	TargetID uint        `json:"target_id,omitempty"`
	Post     *model.Post `json:"post,omitempty"`
	At       time.Time   `json:"at"`
}

func New(t Type, userID uint) Event {
	return Event{Type: t, UserID: userID, At: time.Now().UTC()}
}

// Handler consumes delivered events. It must not block for long.
type Handler func(Event)

type Bus interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Local hands events straight to its handlers on the publishing goroutine.
type Local struct {
	handlers []Handler
}

func NewLocal(handlers ...Handler) *Local {
	return &Local{handlers}
}

func (l *Local) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, h := range l.handlers {
		h(e)
	}
	return nil
}

func (l *Local) Close() error { return nil }
