package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// killConnServer counts requests and drops the TCP connection without
// answering, the failure mode where a retry would re-send the request after
// the server may already have acted on it.
func killConnServer(t *testing.T, attempts *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		hj, ok := w.(http.Hijacker)
		require.True(t, ok, "test server must support hijacking")
		conn, _, err := hj.Hijack()
		require.NoError(t, err)
		conn.Close()
	}))
}

func TestSubmitClientSendsExactlyOnce(t *testing.T) {
	var attempts atomic.Int64
	srv := killConnServer(t, &attempts)
	defer srv.Close()

	c := NewSubmitClient(srv.URL)
	_, err := c.DoRequest(context.Background(), http.MethodPost, "/order",
		&RequestOptions{Data: map[string]string{"id": "1"}}, nil)

	require.Error(t, err)
	require.Equal(t, int64(1), attempts.Load(), "a failed submission must not be re-sent")
}

func TestCheckResponseNonSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid order"}`))
	}))
	defer srv.Close()

	c := NewSubmitClient(srv.URL)
	resp, err := c.DoRequest(context.Background(), http.MethodGet, "/order", nil, nil)
	require.NoError(t, err)

	err = CheckResponse(resp, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "http 400")
	require.Contains(t, err.Error(), "invalid order")
}
