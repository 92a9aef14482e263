package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextCarriers(t *testing.T) {
	ctx := context.Background()
	base := zap.NewNop()

	ctx, _ = WithRequestID(ctx, base, "req-1")
	ctx, _ = WithSchoolID(ctx, base, "school-1")
	ctx, _ = WithUserID(ctx, base, "user-1")
	ctx = WithRole(ctx, "ACCOUNTANT")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "school-1", GetSchoolID(ctx))
	assert.Equal(t, "user-1", GetUserID(ctx))
	assert.Equal(t, "ACCOUNTANT", GetRole(ctx))
}

func TestContextCarriersEmpty(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetSchoolID(ctx))
	assert.Empty(t, GetUserID(ctx))
	assert.Empty(t, GetRole(ctx))
}

func TestFromContextFallsBackToNop(t *testing.T) {
	l := FromContext(context.Background())
	require.NotNil(t, l)
}

func TestContextLoggerEnrichment(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	ctx := context.Background()
	ctx, _ = WithRequestID(ctx, base, "req-9")
	ctx, _ = WithSchoolID(ctx, base, "school-9")

	WithLogger(ctx, base).Info("payment recorded")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-9", fields["request_id"])
	assert.Equal(t, "school-9", fields["school_id"])
}

func TestContextLoggerFromContext(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	ctx := WithContext(context.Background(), base)
	L(ctx).Info("hello")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "hello", logs.All()[0].Message)
}
