package addb

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/pior/addb/resp"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCircuitBreakerConfig(t *testing.T) {
	factory := NewCircuitBreakerConfig(1, time.Minute, time.Minute)

	cb := factory(NewNode("10.0.0.1:6379"), discardLogger)
	require.NotNil(t, cb)
	assert.Equal(t, "10.0.0.1:6379", cb.Name())
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_TripsOnFailureRatio(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	cb := NewCircuitBreakerConfig(1, time.Minute, time.Minute)(NewNode("n0"), logger)

	fail := func() (*resp.Response, error) { return nil, errors.New("connection reset") }
	ok := func() (*resp.Response, error) { return okResponse(), nil }

	_, _ = cb.Execute(ok)
	_, _ = cb.Execute(fail)
	assert.Equal(t, gobreaker.StateClosed, cb.State(), "1 failure out of 2 requests")

	_, _ = cb.Execute(fail)
	_, _ = cb.Execute(fail)
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	assert.Contains(t, logs.String(), "circuit breaker state changed")
	assert.Contains(t, logs.String(), "node=n0")
	assert.Contains(t, logs.String(), "to=open")
}

func TestCircuitBreaker_IgnoresCancellation(t *testing.T) {
	cb := NewCircuitBreakerConfig(1, time.Minute, time.Minute)(NewNode("n0"), discardLogger)

	for range 5 {
		_, err := cb.Execute(func() (*resp.Response, error) { return nil, context.Canceled })
		require.ErrorIs(t, err, context.Canceled)
	}

	assert.Equal(t, gobreaker.StateClosed, cb.State())
	assert.Equal(t, uint32(0), cb.Counts().TotalFailures)
}
