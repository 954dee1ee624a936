package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientWithConfig(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClientWithConfig(context.Background(), Config{
		URL:          "redis://" + mr.Addr() + "/2",
		PoolSize:     3,
		DialTimeout:  time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	opts := client.Options()
	assert.Equal(t, 3, opts.PoolSize)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, time.Second, opts.DialTimeout)
	assert.Equal(t, 2*time.Second, opts.ReadTimeout)
	assert.Equal(t, 3*time.Second, opts.WriteTimeout)
}

func TestNewClientErrors(t *testing.T) {
	stopped, err := miniredis.Run()
	require.NoError(t, err)
	stoppedURL := "redis://" + stopped.Addr()
	stopped.Close()

	tests := []struct {
		name string
		url  string
	}{
		{"unparsable url", "://bad-url"},
		{"wrong scheme", "http://localhost:6379"},
		{"server down", stoppedURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(context.Background(), tt.url)
			assert.Error(t, err)
		})
	}
}
