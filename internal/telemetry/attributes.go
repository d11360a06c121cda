// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the engine.
const (
	// Instance attributes
	InstanceIDKey = "event.instance_id"
	EventNameKey  = "event.name"
	EventKeyKey   = "event.key"
	VariantKey    = "event.variant"

	// Phase attributes
	PhaseKey   = "event.phase"
	ReasonKey  = "event.reason"
	MembersKey = "event.members"

	// Settlement attributes
	GameIDKey    = "event.game_id"
	FinishersKey = "event.finishers"
	WonKey       = "event.won"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// InstanceAttributes identifies an instance on every span it opens.
func InstanceAttributes(instanceID, event, key, variant string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 4)
	attrs = append(attrs, attribute.String(InstanceIDKey, instanceID))
	if event != "" {
		attrs = append(attrs, attribute.String(EventNameKey, event))
	}
	if key != "" {
		attrs = append(attrs, attribute.String(EventKeyKey, key))
	}
	if variant != "" {
		attrs = append(attrs, attribute.String(VariantKey, variant))
	}
	return attrs
}

// PhaseAttributes describes a phase span.
func PhaseAttributes(phase, reason string, members int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(PhaseKey, phase),
		attribute.Int(MembersKey, members),
	}
	if reason != "" {
		attrs = append(attrs, attribute.String(ReasonKey, reason))
	}
	return attrs
}

// SettlementAttributes describes the reward settlement of one run.
func SettlementAttributes(gameID string, finishers int, won bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(GameIDKey, gameID),
		attribute.Int(FinishersKey, finishers),
		attribute.Bool(WonKey, won),
	}
}

// ErrorAttributes marks a span as failed with the given class.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
