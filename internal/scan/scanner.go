package scan

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mwestin/portsweep/internal/errors"
	"github.com/mwestin/portsweep/internal/logging"
	"github.com/mwestin/portsweep/internal/metrics"
)

// Scanner orchestrates a batched TCP connect scan of a single host.
type Scanner struct {
	cfg      Config
	dialer   Dialer
	reporter Reporter
	logger   *logging.Logger
	id       string
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithDialer replaces the TCP connect primitive. Used by tests.
func WithDialer(d Dialer) Option {
	return func(s *Scanner) { s.dialer = d }
}

// WithReporter sets the sink for per-port open notifications.
func WithReporter(r Reporter) Option {
	return func(s *Scanner) { s.reporter = r }
}

// WithLogger sets the logger used by the scanner.
func WithLogger(l *logging.Logger) Option {
	return func(s *Scanner) { s.logger = l }
}

// New creates a Scanner for the given configuration.
func New(cfg Config, opts ...Option) (*Scanner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Scanner{
		cfg: cfg,
		id:  uuid.New().String(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.dialer == nil {
		s.dialer = defaultDialer(cfg.Timeout)
	}
	if s.logger == nil {
		s.logger = logging.Default()
	}
	s.logger = s.logger.WithScanID(s.id).WithHost(cfg.Host.String())

	return s, nil
}

// ID returns the unique identifier of this scan run.
func (s *Scanner) ID() string {
	return s.id
}

// Run scans the configured port range and returns the accumulated result.
//
// Batches are processed strictly in order: every probe of batch N completes
// before any probe of batch N+1 starts, so the number of in-flight connection
// attempts never exceeds the batch size. Open ports from earlier batches
// precede those from later batches in the result.
//
// If a probe reports descriptor exhaustion the remaining probes of the batch
// are canceled, no further batches start, and Run returns the typed fatal
// error together with the ports found so far. Context cancellation is
// observed between batches and by in-flight dials.
func (s *Scanner) Run(ctx context.Context) (*Result, error) {
	result := &Result{
		ScanID:    s.id,
		Host:      s.cfg.Host,
		StartTime: time.Now(),
	}

	s.logger.Info("scan started",
		"start_port", s.cfg.StartPort,
		"end_port", s.cfg.EndPort,
		"batch_size", s.cfg.BatchSize,
		"timeout", s.cfg.Timeout)

	defer func() {
		result.Complete()
		metrics.ObserveScanDuration(result.Duration)
	}()

	b := newBatcher(s.cfg.StartPort, s.cfg.EndPort, s.cfg.BatchSize)
	for b.more() {
		if err := ctx.Err(); err != nil {
			metrics.IncScans("canceled")
			return result, errors.WrapScanErrorWithTarget(errors.CodeCanceled,
				"scan canceled", s.cfg.Host.String(), err)
		}

		batch := b.nextBatch()
		open, err := s.scanBatch(ctx, batch)
		result.PortsProbed += len(batch)
		result.OpenPorts = append(result.OpenPorts, open...)

		if err != nil {
			s.logger.Error("scan aborted", "error", err, "ports_probed", result.PortsProbed)
			metrics.IncScans("aborted")
			return result, err
		}
	}

	s.logger.Info("scan finished",
		"open_ports", len(result.OpenPorts),
		"ports_probed", result.PortsProbed)
	metrics.IncScans("completed")
	return result, nil
}

// scanBatch probes every port of the batch concurrently and returns the open
// ports in completion order. The first fatal probe cancels the rest of the
// batch and is returned after all in-flight probes have settled.
func (s *Scanner) scanBatch(ctx context.Context, batch []uint16) ([]uint16, error) {
	start := time.Now()
	found := make(chan uint16, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	for _, port := range batch {
		port := port
		g.Go(func() error {
			out := s.probe(gctx, port)
			if out.fatal != nil {
				return out.fatal
			}
			if out.open {
				found <- out.port
			}
			return nil
		})
	}

	err := g.Wait()
	close(found)
	metrics.ObserveBatchDuration(time.Since(start))
	metrics.AddPortsProbed(len(batch))

	open := make([]uint16, 0, len(batch))
	for p := range found {
		open = append(open, p)
	}
	return open, err
}
