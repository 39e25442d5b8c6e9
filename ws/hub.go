// Package ws fans newly created posts out to websocket feed subscribers.
package ws

import (
	"context"
	"sync/atomic"

	"github.com/goccy/go-json"
	"github.com/puoklam/intersection-backend/events"
	"github.com/rs/zerolog"
)

// Hub owns the set of connected clients. Only Run touches the set.
type Hub struct {
	logger     zerolog.Logger
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	count      int64
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		logger:     logger.With().Str("component", "ws").Logger(),
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
	}
}

// Count reports the number of connected clients.
func (h *Hub) Count() int {
	return int(atomic.LoadInt64(&h.count))
}

// Run serves registrations and broadcasts until ctx is done, then closes
// every client.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for c := range h.clients {
			h.drop(c)
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			atomic.AddInt64(&h.count, 1)
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// slow consumer
					h.logger.Debug().Str("remote", c.remote).Msg("dropping slow client")
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
	atomic.AddInt64(&h.count, -1)
}

// Broadcast queues msg for every client. It returns false once the hub
// has stopped.
func (h *Hub) Broadcast(msg []byte) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.broadcast <- msg:
		return true
	case <-h.done:
		return false
	}
}

// FeedHandler forwards post.created events to the hub.
func FeedHandler(h *Hub) events.Handler {
	return func(e events.Event) {
		if e.Type != events.PostCreated || e.Post == nil {
			return
		}
		msg, err := json.Marshal(e.Post)
		if err != nil {
			h.logger.Error().Err(err).Msg("encode post")
			return
		}
		h.Broadcast(msg)
	}
}
