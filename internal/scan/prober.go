package scan

import (
	"context"
	goerrors "errors"
	"net"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mwestin/portsweep/internal/errors"
	"github.com/mwestin/portsweep/internal/metrics"
)

// Dialer abstracts the TCP connect primitive so tests can substitute an
// instrumented fake. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// outcome is the resolution of a single port probe. Exactly one of open or
// fatal is meaningful: recoverable failures (refused, unreachable, timed out)
// are folded into a closed result with open=false and fatal=nil.
type outcome struct {
	port  uint16
	open  bool
	fatal error
}

// probe attempts one connection to (host, port), bounded by timeout. A
// successful connection is closed immediately without exchanging data. Local
// descriptor exhaustion is the only failure that escapes as an error; every
// other failure resolves to a closed port.
func (s *Scanner) probe(ctx context.Context, port uint16) outcome {
	addr := net.JoinHostPort(s.cfg.Host.String(), strconv.Itoa(int(port)))

	dialCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	metrics.IncInFlightProbes()
	conn, err := s.dialer.DialContext(dialCtx, "tcp", addr)
	metrics.DecInFlightProbes()

	if err == nil {
		// No data is sent or read; the connect itself is the probe.
		_ = conn.Close()
		metrics.IncOpenPorts()
		if !s.cfg.Quiet && s.reporter != nil {
			s.reporter.PortOpen(port)
		}
		s.logger.Debug("port open", "port", port)
		return outcome{port: port, open: true}
	}

	if isResourceExhausted(err) {
		metrics.IncProbeErrors(string(errors.CodeResourceExhausted))
		return outcome{port: port, fatal: errors.ErrResourceExhausted(s.cfg.BatchSize, err)}
	}

	if isTimeout(err) {
		metrics.IncProbeErrors(string(errors.CodeTimeout))
	} else {
		metrics.IncProbeErrors(string(errors.CodeConnectFailed))
	}
	return outcome{port: port}
}

// isTimeout reports whether the dial failed because the per-probe timeout
// elapsed before the connection settled.
func isTimeout(err error) bool {
	var ne net.Error
	if goerrors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return goerrors.Is(err, context.DeadlineExceeded)
}

// isResourceExhausted reports whether the dial failed because the operating
// system refused to create a new socket or descriptor. This failure class is
// process-fatal and must never be folded into a closed-port result.
func isResourceExhausted(err error) bool {
	if goerrors.Is(err, syscall.EMFILE) || goerrors.Is(err, syscall.ENFILE) {
		return true
	}
	// Some platforms surface the condition only as text.
	return strings.Contains(err.Error(), "too many open files")
}

// defaultDialer returns the production TCP dialer. KeepAlive is disabled
// because connections are closed the instant they are established.
func defaultDialer(timeout time.Duration) *net.Dialer {
	return &net.Dialer{
		Timeout:   timeout,
		KeepAlive: -1,
	}
}
