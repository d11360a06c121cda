// SPDX-License-Identifier: MIT

package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestInstanceAttributes(t *testing.T) {
	attrs := InstanceAttributes("i-1", "blood_castle", "map11/lvl2/shared", "objective_capture")
	assert.Len(t, attrs, 4)
	verifyAttribute(t, attrs, InstanceIDKey, "i-1")
	verifyAttribute(t, attrs, EventKeyKey, "map11/lvl2/shared")

	attrs = InstanceAttributes("i-2", "", "", "")
	assert.Len(t, attrs, 1)
}

func TestPhaseAttributes(t *testing.T) {
	attrs := PhaseAttributes("PLAYING", "", 4)
	assert.Len(t, attrs, 2)
	verifyIntAttribute(t, attrs, MembersKey, 4)

	attrs = PhaseAttributes("WIND_DOWN", "R_WON", 3)
	verifyAttribute(t, attrs, ReasonKey, "R_WON")
}

func TestSettlementAttributes(t *testing.T) {
	attrs := SettlementAttributes("g-1", 5, true)
	verifyAttribute(t, attrs, GameIDKey, "g-1")
	verifyIntAttribute(t, attrs, FinishersKey, 5)
	verifyBoolAttribute(t, attrs, WonKey, true)
}

func TestErrorAttributes(t *testing.T) {
	attrs := ErrorAttributes("hook_failure")
	assert.Len(t, attrs, 2)
	verifyBoolAttribute(t, attrs, ErrorKey, true)
	verifyAttribute(t, attrs, ErrorTypeKey, "hook_failure")
}

func find(t *testing.T, attrs []attribute.KeyValue, key string) attribute.Value {
	t.Helper()
	for _, attr := range attrs {
		if string(attr.Key) == key {
			return attr.Value
		}
	}
	t.Fatalf("attribute %s not found", key)
	return attribute.Value{}
}

func verifyAttribute(t *testing.T, attrs []attribute.KeyValue, key, expected string) {
	t.Helper()
	assert.Equal(t, expected, find(t, attrs, key).AsString())
}

func verifyIntAttribute(t *testing.T, attrs []attribute.KeyValue, key string, expected int) {
	t.Helper()
	assert.Equal(t, int64(expected), find(t, attrs, key).AsInt64())
}

func verifyBoolAttribute(t *testing.T, attrs []attribute.KeyValue, key string, expected bool) {
	t.Helper()
	assert.Equal(t, expected, find(t, attrs, key).AsBool())
}
