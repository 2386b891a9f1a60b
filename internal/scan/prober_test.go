package scan

import (
	"context"
	goerrors "errors"
	"net"
	"net/netip"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsResourceExhausted(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "EMFILE via OpError",
			err:  &net.OpError{Op: "dial", Err: os.NewSyscallError("socket", syscall.EMFILE)},
			want: true,
		},
		{
			name: "ENFILE via OpError",
			err:  &net.OpError{Op: "dial", Err: os.NewSyscallError("socket", syscall.ENFILE)},
			want: true,
		},
		{
			name: "bare EMFILE",
			err:  syscall.EMFILE,
			want: true,
		},
		{
			name: "text-only variant",
			err:  goerrors.New("dial tcp: too many open files"),
			want: true,
		},
		{
			name: "connection refused",
			err:  &net.OpError{Op: "dial", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)},
			want: false,
		},
		{
			name: "host unreachable",
			err:  &net.OpError{Op: "dial", Err: os.NewSyscallError("connect", syscall.EHOSTUNREACH)},
			want: false,
		},
		{
			name: "deadline exceeded",
			err:  context.DeadlineExceeded,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isResourceExhausted(tt.err))
		})
	}
}

func TestIsTimeout(t *testing.T) {
	assert.True(t, isTimeout(context.DeadlineExceeded))
	assert.False(t, isTimeout(goerrors.New("nope")))
	assert.False(t, isTimeout(syscall.ECONNREFUSED))
}

// TestProbeAgainstRealListener drives the production dialer against a local
// TCP listener to verify the open/closed classification end to end.
func TestProbeAgainstRealListener(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	addr := listener.Addr().(*net.TCPAddr)
	port := uint16(addr.Port)
	if addr.Port == 65535 {
		t.Skip("ephemeral port at top of range, [port, port+1) cannot be expressed")
	}

	cfg := Config{
		Host:      netip.MustParseAddr("127.0.0.1"),
		StartPort: port,
		EndPort:   port + 1,
		BatchSize: 1,
		Timeout:   2 * time.Second,
		Quiet:     true,
	}

	t.Run("listening port reports open", func(t *testing.T) {
		scanner, err := New(cfg)
		require.NoError(t, err)

		result, err := scanner.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []uint16{port}, result.OpenPorts)
	})

	t.Run("closed port reports nothing", func(t *testing.T) {
		// Grab a free port and release it so the subsequent connect
		// is refused.
		probe, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		closedPort := uint16(probe.Addr().(*net.TCPAddr).Port)
		require.NoError(t, probe.Close())
		if closedPort == 65535 {
			t.Skip("ephemeral port at top of range, [port, port+1) cannot be expressed")
		}

		closedCfg := cfg
		closedCfg.StartPort = closedPort
		closedCfg.EndPort = closedPort + 1

		scanner, err := New(closedCfg)
		require.NoError(t, err)

		result, err := scanner.Run(context.Background())
		require.NoError(t, err)
		assert.Empty(t, result.OpenPorts)
	})
}
