package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	payload := map[string]string{"account_id": "a1b2", "email": "dev@clienthub.io"}
	ev, err := NewEvent("identity.account.logged_in", "a1b2", "account", "identity-service", payload)
	require.NoError(t, err)

	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, "identity.account.logged_in", ev.EventType)
	assert.Equal(t, "a1b2", ev.AggregateID)
	assert.Equal(t, "account", ev.AggregateType)
	assert.Equal(t, 1, ev.Version)
	assert.Equal(t, "identity-service", ev.Source)
	assert.False(t, ev.Timestamp.IsZero())

	var decoded map[string]string
	require.NoError(t, ev.UnmarshalData(&decoded))
	assert.Equal(t, payload, decoded)
}

func TestEventRoundTrip(t *testing.T) {
	ev, err := NewEvent("identity.account.password_changed", "acc-9", "account", "identity-service", nil)
	require.NoError(t, err)
	ev.WithCorrelationID("corr-123").WithMetadata("ip", "10.0.0.1")

	data, err := ev.Marshal()
	require.NoError(t, err)

	got, err := UnmarshalEvent(data)
	require.NoError(t, err)

	assert.Equal(t, ev.EventID, got.EventID)
	assert.Equal(t, "corr-123", got.CorrelationID)
	assert.Equal(t, "10.0.0.1", got.Metadata["ip"])
}
