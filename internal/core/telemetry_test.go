// AngelaMos | 2026
// telemetry_test.go

package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/finyara/leadflow/internal/config"
)

func TestDisabledTelemetryIsInert(t *testing.T) {
	tel, err := NewTelemetry(context.Background(),
		config.OtelConfig{Enabled: true},
		config.AppConfig{Name: "Leadflow"},
	)
	require.NoError(t, err)
	require.False(t, tel.Enabled())
	require.NoError(t, tel.Shutdown(context.Background()))

	ctx, span := StartSpan(context.Background(), "lead.assign")
	defer span.End()
	require.Empty(t, TraceIDFromContext(ctx))
}

func TestServiceAttributes(t *testing.T) {
	app := config.AppConfig{Name: "Leadflow", Version: "1.2.0", Environment: "staging"}

	attrs := attribute.NewSet(serviceAttributes(config.OtelConfig{}, app)...)
	name, ok := attrs.Value("service.name")
	require.True(t, ok)
	require.Equal(t, "Leadflow", name.AsString())

	env, ok := attrs.Value("deployment.environment")
	require.True(t, ok)
	require.Equal(t, "staging", env.AsString())

	attrs = attribute.NewSet(serviceAttributes(config.OtelConfig{ServiceName: "leadflow-api"}, app)...)
	name, _ = attrs.Value("service.name")
	require.Equal(t, "leadflow-api", name.AsString())
}

func TestSamplerBounds(t *testing.T) {
	root := sdktrace.SamplingParameters{
		ParentContext: context.Background(),
		TraceID:       trace.TraceID{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 1},
		Name:          "lead.assign",
	}

	require.Equal(t, sdktrace.RecordAndSample, sampler(1).ShouldSample(root).Decision)
	require.Equal(t, sdktrace.RecordAndSample, sampler(2).ShouldSample(root).Decision)
	require.Equal(t, sdktrace.Drop, sampler(0).ShouldSample(root).Decision)
	require.Equal(t, sdktrace.Drop, sampler(-1).ShouldSample(root).Decision)
}
