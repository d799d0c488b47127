package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type probe bool

func (p probe) IsHealthy(context.Context) bool { return bool(p) }

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestCompositeHealthChecker(t *testing.T) {
	c := NewCompositeHealthChecker("1.0.0")
	status := c.Check(context.Background())
	assert.True(t, status.Healthy)
	assert.Equal(t, "No health checks registered", status.Message)

	c.AddCheck("backend", NewBackendCheck(probe(true)))
	c.AddCheck("redis", NewPingCheck(pinger{}))
	status = c.Check(context.Background())
	assert.True(t, status.Healthy)
	assert.Len(t, status.Checks, 2)
	assert.Equal(t, "1.0.0", status.Version)

	c.AddCheck("backend", NewBackendCheck(probe(false)))
	c.AddCheck("postgres", NewPingCheck(pinger{err: errors.New("refused")}))
	status = c.Check(context.Background())
	assert.False(t, status.Healthy)
	assert.Equal(t, "Some checks failed: backend, postgres", status.Message)
	require.Contains(t, status.Checks, "backend")
	assert.Equal(t, ErrBackendUnreachable.Error(), status.Checks["backend"].Message)
}

func TestCompositeHealthChecker_Timeout(t *testing.T) {
	c := NewCompositeHealthChecker("")
	c.SetTimeout(10 * time.Millisecond)
	c.AddCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	status := c.Check(context.Background())
	assert.False(t, status.Healthy)
	assert.Contains(t, status.Checks["slow"].Message, "deadline exceeded")
}
