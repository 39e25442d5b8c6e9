// Package notify sends push notifications to a user's registered devices.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
	"github.com/rs/zerolog"
)

type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

type Notifier interface {
	Notify(ctx context.Context, tokens []string, msg Message) error
}

// Nop is used when push is disabled.
type Nop struct{}

func (Nop) Notify(context.Context, []string, Message) error { return nil }

type Expo struct {
	client *expo.PushClient
	logger zerolog.Logger
}

// NewExpo talks to the Expo push service. host overrides the default
// https://exp.host and is empty in production.
func NewExpo(host string, httpClient *http.Client, logger zerolog.Logger) *Expo {
	return &Expo{
		client: expo.NewPushClient(&expo.ClientConfig{Host: host, HTTPClient: httpClient}),
		logger: logger.With().Str("component", "expo").Logger(),
	}
}

// Notify sends one message per valid token. Tokens not in Expo format are
// skipped.
func (e *Expo) Notify(ctx context.Context, tokens []string, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	messages := make([]expo.PushMessage, 0, len(tokens))
	for _, t := range tokens {
		to, err := expo.NewExponentPushToken(t)
		if err != nil {
			e.logger.Debug().Err(err).Msg("skipping push token")
			continue
		}
		messages = append(messages, expo.PushMessage{
			To:       []expo.ExponentPushToken{to},
			Title:    msg.Title,
			Body:     msg.Body,
			Data:     msg.Data,
			Sound:    "default",
			Priority: expo.DefaultPriority,
		})
	}
	if len(messages) == 0 {
		return nil
	}
	responses, err := e.client.PublishMultiple(messages)
	if err != nil {
		return fmt.Errorf("notify: publish: %w", err)
	}
	var errs []error
	for _, r := range responses {
		if err := r.ValidateResponse(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
