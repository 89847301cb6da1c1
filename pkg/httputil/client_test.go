package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/bullscan/pkg/config"
	"github.com/wonny/bullscan/pkg/logger"
)

func testClient(maxRetries int) *Client {
	cfg := config.MarketDataConfig{
		Timeout:    2 * time.Second,
		MaxRetries: maxRetries,
		RPS:        1000,
		UserAgent:  "bullscan-test",
	}
	return New(cfg, logger.Nop()).WithRetry(maxRetries, 5*time.Millisecond)
}

func TestGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "bullscan-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	var out struct {
		Status string `json:"status"`
	}
	require.NoError(t, testClient(0).GetJSON(context.Background(), server.URL, &out))
	assert.Equal(t, "ok", out.Status)
}

func TestRetryOn5xx(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`ok`))
	}))
	defer server.Close()

	body, err := testClient(3).GetBytes(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestNoRetryOn4xx(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		http.Error(w, "no such symbol", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := testClient(3).GetBytes(context.Background(), server.URL)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestCircuitOpensAfterConsecutiveFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := testClient(0)
	for i := 0; i < 5; i++ {
		_, err := client.GetBytes(context.Background(), server.URL)
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrCircuitOpen))
	}

	_, err := client.GetBytes(context.Background(), server.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCircuitOpen))
}

func TestContextCancelStopsRetry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := testClient(10).WithRetry(10, time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.GetBytes(ctx, server.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestIsRetryableStatus(t *testing.T) {
	assert.False(t, IsRetryableStatus(200))
	assert.False(t, IsRetryableStatus(404))
	assert.True(t, IsRetryableStatus(429))
	assert.True(t, IsRetryableStatus(503))
}
