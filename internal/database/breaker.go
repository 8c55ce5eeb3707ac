// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package database

import (
	"errors"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/northstar/internal/config"
	"github.com/tomtom215/northstar/internal/logging"
	"github.com/tomtom215/northstar/internal/metrics"
)

const breakerName = "warehouse"

// queryBreaker guards warehouse reads. When the warehouse keeps failing the
// breaker opens and reads fail fast as *ConnectionError instead of queueing
// behind a dead connection. Nothing is retried.
type queryBreaker struct {
	cb *gobreaker.CircuitBreaker[any]
}

// newQueryBreaker returns nil when the breaker is disabled.
func newQueryBreaker(cfg config.BreakerConfig) *queryBreaker {
	if !cfg.Enabled {
		return nil
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if cfg.ConsecutiveFails > 0 && counts.ConsecutiveFailures >= cfg.ConsecutiveFails {
				logging.Warn().Uint32("consecutive_failures", counts.ConsecutiveFailures).Msg("[CIRCUIT BREAKER] Opening circuit")
				return true
			}
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= cfg.FailureRatio
			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		// Only connection-level failures count against the warehouse. A bad
		// filter or an empty result says nothing about its health.
		IsSuccessful: func(err error) bool {
			var ce *ConnectionError
			return err == nil || !errors.As(err, &ce)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()

			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &queryBreaker{cb: cb}
}

// execute runs fn through the breaker. A rejected call is returned as the
// raw gobreaker error; classifyError turns it into a *ConnectionError.
func (b *queryBreaker) execute(fn func() error) error {
	if b == nil {
		return fn()
	}

	_, err := b.cb.Execute(func() (any, error) {
		return nil, fn()
	})

	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(0)
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
		logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		counts := b.cb.Counts()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(float64(counts.ConsecutiveFailures))
	}
	return err
}

// State returns the breaker state name, or "disabled".
func (b *queryBreaker) State() string {
	if b == nil {
		return "disabled"
	}
	return stateToString(b.cb.State())
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
