package metrics

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerServesMetricsAndHealth(t *testing.T) {
	// Reserve a free port for the server to bind.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	m := New()
	m.IncScans("completed")

	server := NewServer(addr, m, nil)
	server.Start()
	defer func() {
		assert.NoError(t, server.Stop())
	}()

	client := &http.Client{Timeout: 2 * time.Second}
	waitForServer(t, client, addr)

	t.Run("healthz", func(t *testing.T) {
		resp, err := client.Get(fmt.Sprintf("http://%s/healthz", addr))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("metrics", func(t *testing.T) {
		resp, err := client.Get(fmt.Sprintf("http://%s/metrics", addr))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "portsweep_scan_total")
	})
}

func waitForServer(t *testing.T, client *http.Client, addr string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := client.Get(fmt.Sprintf("http://%s/healthz", addr))
		if err == nil {
			resp.Body.Close()
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("metrics server did not become ready")
}
