// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package invalidation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Source values carried on RefreshEvent.Source.
const (
	SourcePipeline = "pipeline"
	SourceManual   = "manual"
)

// RefreshEvent announces that warehouse tables were rebuilt.
//
// An empty Tables list means "everything changed" and clears the whole cache.
type RefreshEvent struct {
	Tables      []string  `json:"tables"`
	RefreshedAt time.Time `json:"refreshed_at"`
	Source      string    `json:"source,omitempty"`
	// Origin identifies the replica that published the event so a
	// subscriber can skip its own broadcasts.
	Origin    string `json:"origin,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrInvalidEvent is returned for payloads that cannot be applied.
var ErrInvalidEvent = errors.New("invalid refresh event")

// Validate checks that the event is usable.
func (e *RefreshEvent) Validate() error {
	if e.RefreshedAt.IsZero() {
		return fmt.Errorf("%w: refreshed_at is required", ErrInvalidEvent)
	}
	for _, t := range e.Tables {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("%w: empty table name", ErrInvalidEvent)
		}
	}
	return nil
}

// Marshal validates and encodes the event for the wire.
func Marshal(e *RefreshEvent) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal refresh event: %w", err)
	}
	return data, nil
}

// Unmarshal decodes and validates a wire payload.
func Unmarshal(data []byte) (*RefreshEvent, error) {
	var e RefreshEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
