// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package invalidation

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/northstar/internal/cache"
	"github.com/tomtom215/northstar/internal/config"
	"github.com/tomtom215/northstar/internal/logging"
	"github.com/tomtom215/northstar/internal/metrics"
)

// Subscriber consumes refresh events and invalidates the result cache.
// It implements suture.Service; each Serve call opens its own NATS
// connection so a restart after a broker outage starts clean.
type Subscriber struct {
	cfg    config.InvalidationConfig
	url    string
	origin string
	cache  cache.Invalidator
	logger watermill.LoggerAdapter

	subscribed atomic.Bool
	lastEvent  atomic.Int64 // unix nanos of the last applied event
}

// NewSubscriber builds the service. Events stamped with origin are skipped:
// the replica that published them has already cleared its cache.
func NewSubscriber(cfg *config.InvalidationConfig, url, origin string, inv cache.Invalidator, logger watermill.LoggerAdapter) *Subscriber {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Subscriber{
		cfg:    *cfg,
		url:    url,
		origin: origin,
		cache:  inv,
		logger: logger,
	}
}

// Serve subscribes and applies events until ctx is canceled.
func (s *Subscriber) Serve(ctx context.Context) error {
	sub, err := s.connect()
	if err != nil {
		return err
	}
	defer func() {
		s.subscribed.Store(false)
		if cerr := sub.Close(); cerr != nil {
			logging.Warn().Err(cerr).Msg("Failed to close refresh subscriber")
		}
	}()

	messages, err := sub.Subscribe(ctx, s.cfg.Subject)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", s.cfg.Subject, err)
	}
	s.subscribed.Store(true)
	logging.Info().Str("subject", s.cfg.Subject).Msg("Listening for warehouse refresh events")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("refresh subscription on %s closed", s.cfg.Subject)
			}
			s.handle(msg)
		}
	}
}

// handle applies one message. Malformed payloads are acked and dropped:
// redelivering them cannot make them valid.
func (s *Subscriber) handle(msg *message.Message) {
	defer msg.Ack()

	ev, err := Unmarshal(msg.Payload)
	if err != nil {
		metrics.RecordRefreshEvent("consumed", err)
		logging.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping malformed refresh event")
		return
	}

	if s.origin != "" && ev.Origin == s.origin {
		return
	}

	removed := Apply(s.cache, ev)
	s.lastEvent.Store(time.Now().UnixNano())
	metrics.RecordRefreshEvent("consumed", nil)

	logging.Info().
		Strs("tables", ev.Tables).
		Str("source", ev.Source).
		Str("request_id", ev.RequestID).
		Time("refreshed_at", ev.RefreshedAt).
		Int("removed", removed).
		Msg("Applied warehouse refresh event")
}

func (s *Subscriber) connect() (message.Subscriber, error) {
	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(s.cfg.MaxReconnects),
		natsgo.ReconnectWait(s.cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				s.logger.Error("NATS subscriber disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			s.logger.Info("NATS subscriber reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
	}

	// Without a queue group every replica receives every event.
	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              s.url,
		QueueGroupPrefix: s.cfg.QueueGroup,
		SubscribersCount: 1,
		CloseTimeout:     s.cfg.CloseTimeout,
		AckWaitTimeout:   5 * time.Second,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream:        wmNats.JetStreamConfig{Disabled: true},
	}, s.logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill subscriber: %w", err)
	}
	return sub, nil
}

// Subscribed reports whether the service currently holds a subscription.
func (s *Subscriber) Subscribed() bool {
	return s.subscribed.Load()
}

// LastEventAt returns when the last event was applied, zero if none yet.
func (s *Subscriber) LastEventAt() time.Time {
	n := s.lastEvent.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

func (s *Subscriber) String() string {
	return "refresh-subscriber:" + s.cfg.Subject
}
