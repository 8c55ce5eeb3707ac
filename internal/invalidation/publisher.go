// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package invalidation

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/northstar/internal/config"
	"github.com/tomtom215/northstar/internal/metrics"
)

// Publisher announces refresh events to every replica over core NATS.
type Publisher struct {
	publisher message.Publisher
	subject   string
	origin    string
	mu        sync.RWMutex
	closed    bool
}

// NewPublisher connects a watermill NATS publisher. origin is stamped on
// every event so the local subscriber can recognise its own broadcasts.
func NewPublisher(cfg *config.InvalidationConfig, url, origin string, logger watermill.LoggerAdapter) (*Publisher, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS publisher disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS publisher reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	return &Publisher{
		publisher: pub,
		subject:   cfg.Subject,
		origin:    origin,
	}, nil
}

// Broadcast publishes ev. Origin is filled in when empty.
func (p *Publisher) Broadcast(ctx context.Context, ev RefreshEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return fmt.Errorf("publisher is closed")
	}

	if ev.Origin == "" {
		ev.Origin = p.origin
	}
	data, err := Marshal(&ev)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)
	msg.Metadata.Set("source", ev.Source)
	if ev.RequestID != "" {
		msg.Metadata.Set("request_id", ev.RequestID)
	}

	err = p.publisher.Publish(p.subject, msg)
	metrics.RecordRefreshEvent("published", err)
	if err != nil {
		return fmt.Errorf("publish refresh event: %w", err)
	}
	return nil
}

// Close releases the NATS connection. It is safe to call more than once.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}
