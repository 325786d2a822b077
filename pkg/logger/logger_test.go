package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_ServiceFieldAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("identity", "info", &buf)

	l.Debug("should be filtered")
	l.Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "identity", entry["service"])
	assert.Equal(t, "hello", entry["msg"])
}

func TestCorrelationID_RoundTrip(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "corr-123")
	assert.Equal(t, "corr-123", CorrelationIDFromContext(ctx))
	assert.Equal(t, "", CorrelationIDFromContext(context.Background()))
}

func TestAccountID_RoundTrip(t *testing.T) {
	ctx := WithAccountID(context.Background(), "acc-9")
	assert.Equal(t, "acc-9", AccountIDFromContext(ctx))
}

func TestWithContext_EnrichesFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithWriter("identity", "info", &buf)

	ctx := WithCorrelationID(context.Background(), "corr-7")
	ctx = WithAccountID(ctx, "acc-7")

	WithContext(ctx, base).Info("enriched")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "corr-7", entry["correlation_id"])
	assert.Equal(t, "acc-7", entry["account_id"])
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	var buf bytes.Buffer
	l := NewWithWriter("identity", "info", &buf)
	ctx := NewContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
}
