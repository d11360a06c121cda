// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestNewProvider_DisabledInstallsNoop(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{ServiceName: "eventd", ExporterType: ExporterGRPC})
	require.NoError(t, err)
	assert.False(t, p.Enabled())
	assert.NoError(t, p.Shutdown(context.Background()))

	_, span := otel.Tracer("test").Start(context.Background(), "noop")
	defer span.End()
	assert.False(t, span.IsRecording())
}

func TestNewProvider_UnsupportedExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Enabled: true, ExporterType: "zipkin"})
	require.ErrorIs(t, err, ErrUnsupportedExporter)
	assert.Contains(t, err.Error(), `"zipkin"`)
}

func TestNewProvider_Exporters(t *testing.T) {
	for _, exp := range []string{ExporterGRPC, ExporterHTTP} {
		t.Run(exp, func(t *testing.T) {
			// Exporters connect lazily, so an unreachable endpoint is fine.
			p, err := NewProvider(context.Background(), Config{
				Enabled:        true,
				ServiceName:    "eventd-test",
				ServiceVersion: "dev",
				ExporterType:   exp,
				Endpoint:       "127.0.0.1:1",
				SamplingRate:   1,
			})
			require.NoError(t, err)
			assert.True(t, p.Enabled())

			_, span := Tracer(EngineTracer).Start(context.Background(), "event.phase.OPEN")
			assert.True(t, span.IsRecording())
			span.End()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_ = p.Shutdown(ctx)
		})
	}
	otel.SetTracerProvider(noop.NewTracerProvider())
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{rate: 1.5, want: "AlwaysOnSampler"},
		{rate: 1, want: "AlwaysOnSampler"},
		{rate: 0, want: "AlwaysOffSampler"},
		{rate: -1, want: "AlwaysOffSampler"},
		{rate: 0.25, want: "TraceIDRatioBased"},
	}
	for _, tt := range tests {
		desc := sampler(tt.rate).Description()
		assert.True(t, strings.HasPrefix(desc, "ParentBased{root:"+tt.want), "rate %v: %s", tt.rate, desc)
	}
}
