package events

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/nsqio/go-nsq"
	"github.com/rs/zerolog"
)

type NSQConfig struct {
	NSQDAddr    string
	LookupdAddr string
	Topic       string
	Channel     string
}

// NSQ publishes to one topic and consumes it back on a per-instance
// channel, so every server instance sees every event.
type NSQ struct {
	topic    string
	producer *nsq.Producer
	consumer *nsq.Consumer
	logger   zerolog.Logger
}

func NewNSQ(cfg NSQConfig, logger zerolog.Logger, handlers ...Handler) (*NSQ, error) {
	if !nsq.IsValidTopicName(cfg.Topic) {
		return nil, fmt.Errorf("events: invalid topic %q", cfg.Topic)
	}
	if !nsq.IsValidChannelName(cfg.Channel) {
		return nil, fmt.Errorf("events: invalid channel %q", cfg.Channel)
	}
	logger = logger.With().Str("component", "nsq").Str("topic", cfg.Topic).Logger()

	producer, err := nsq.NewProducer(cfg.NSQDAddr, nsq.NewConfig())
	if err != nil {
		return nil, fmt.Errorf("events: producer: %w", err)
	}
	producer.SetLogger(nsqLogger{logger}, nsq.LogLevelWarning)
	if err := producer.Ping(); err != nil {
		producer.Stop()
		return nil, fmt.Errorf("events: ping nsqd: %w", err)
	}

	consumer, err := nsq.NewConsumer(cfg.Topic, cfg.Channel, nsq.NewConfig())
	if err != nil {
		producer.Stop()
		return nil, fmt.Errorf("events: consumer: %w", err)
	}
	consumer.SetLogger(nsqLogger{logger}, nsq.LogLevelWarning)
	consumer.AddHandler(handleMessage(logger, handlers))
	if cfg.LookupdAddr != "" {
		err = consumer.ConnectToNSQLookupd(cfg.LookupdAddr)
	} else {
		err = consumer.ConnectToNSQD(cfg.NSQDAddr)
	}
	if err != nil {
		consumer.Stop()
		producer.Stop()
		return nil, fmt.Errorf("events: connect consumer: %w", err)
	}

	return &NSQ{topic: cfg.Topic, producer: producer, consumer: consumer, logger: logger}, nil
}

// handleMessage never asks for a requeue: a body that cannot be decoded
// will not decode on the next attempt either.
func handleMessage(logger zerolog.Logger, handlers []Handler) nsq.Handler {
	return nsq.HandlerFunc(func(m *nsq.Message) error {
		var e Event
		if err := json.Unmarshal(m.Body, &e); err != nil {
			logger.Warn().Err(err).Msg("dropping undecodable event")
			return nil
		}
		for _, h := range handlers {
			h(e)
		}
		return nil
	})
}

func (n *NSQ) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("events: encode: %w", err)
	}
	if err := n.producer.Publish(n.topic, body); err != nil {
		return fmt.Errorf("events: publish %s: %w", e.Type, err)
	}
	return nil
}

func (n *NSQ) Close() error {
	n.consumer.Stop()
	<-n.consumer.StopChan
	n.producer.Stop()
	return nil
}

type nsqLogger struct {
	l zerolog.Logger
}

func (n nsqLogger) Output(_ int, s string) error {
	// go-nsq prefixes lines with the level, e.g. "WRN    1 [feed/srv1] ..."
	switch {
	case strings.HasPrefix(s, "ERR"):
		n.l.Error().Msg(s)
	case strings.HasPrefix(s, "WRN"):
		n.l.Warn().Msg(s)
	default:
		n.l.Debug().Msg(s)
	}
	return nil
}

var _ Bus = (*NSQ)(nil)
var _ Bus = (*Local)(nil)
