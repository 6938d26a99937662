package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	l, err := New("debug", "console")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(-1))

	l, err = New("not-a-level", "")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(-1), "unknown level falls back to info")
}

func TestNewReplacesGlobalLogger(t *testing.T) {
	previous := zap.L()
	defer zap.ReplaceGlobals(previous)

	zap.ReplaceGlobals(zap.NewNop())
	_, err := New("info", "json")
	require.NoError(t, err)
	assert.True(t, zap.L().Core().Enabled(zap.InfoLevel))
}

func TestWithContext(t *testing.T) {
	fields := withContext(context.Background(), nil)
	assert.Empty(t, fields)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	fields = withContext(ctx, []zap.Field{StringField("a", "b")})
	require.Len(t, fields, 2)
	assert.Equal(t, "request_id", fields[1].Key)
	assert.Equal(t, "req-1", fields[1].String)
}
