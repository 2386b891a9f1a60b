// Package scan implements the concurrent TCP connect scan engine for
// portsweep. The engine splits a port range into fixed-size batches, probes
// every port of a batch concurrently with a per-probe timeout, and collects
// the open ports in batch order. A batch never starts before the previous one
// has fully drained, which bounds the number of in-flight connection attempts
// by the batch size.
package scan

import (
	"fmt"
	"net/netip"
	"time"
)

// Config represents the configuration for a port scan. It is constructed once
// before scanning begins and is read-only for the lifetime of a scan.
type Config struct {
	// Host is the numeric address to scan. Hostname resolution happens in
	// the CLI layer before a Config is built.
	Host netip.Addr
	// StartPort and EndPort bound the scanned range [StartPort, EndPort).
	StartPort uint16
	EndPort   uint16
	// BatchSize is the upper bound on concurrently in-flight connection
	// attempts.
	BatchSize int
	// Timeout is the maximum time allowed for a single connection attempt
	// before the port is treated as closed.
	Timeout time.Duration
	// Quiet suppresses per-port open notifications to the reporter.
	Quiet bool
	// IPv6 records which address family is in use. It does not alter the
	// scan algorithm, only how the address was constructed upstream.
	IPv6 bool
}

// Validate checks if the scan configuration is valid.
func (c *Config) Validate() error {
	if !c.Host.IsValid() {
		return &ConfigValidationError{Field: "host", Reason: "host address is required"}
	}
	if c.StartPort > c.EndPort {
		return &ConfigValidationError{
			Field:  "ports",
			Reason: fmt.Sprintf("start port %d is greater than end port %d", c.StartPort, c.EndPort),
		}
	}
	if c.BatchSize <= 0 {
		return &ConfigValidationError{Field: "batch_size", Reason: "batch size must be positive"}
	}
	if c.Timeout <= 0 {
		return &ConfigValidationError{Field: "timeout", Reason: "timeout must be positive"}
	}
	return nil
}

// PortCount returns the number of ports in the configured range.
func (c *Config) PortCount() int {
	return int(c.EndPort) - int(c.StartPort)
}

// ConfigValidationError reports an invalid scan configuration field.
type ConfigValidationError struct {
	Field  string
	Reason string
}

func (e *ConfigValidationError) Error() string {
	return fmt.Sprintf("invalid scan config: %s: %s", e.Field, e.Reason)
}

// Result contains the outcome of a scan run.
type Result struct {
	// ScanID identifies the run in logs and metrics.
	ScanID string
	// Host is the scanned address.
	Host netip.Addr
	// OpenPorts holds the ports confirmed open. Ports found in an earlier
	// batch always precede ports found in a later batch; within one batch
	// the order reflects probe completion.
	OpenPorts []uint16
	// PortsProbed is the number of connection attempts issued.
	PortsProbed int
	// StartTime and EndTime bound the run.
	StartTime time.Time
	EndTime   time.Time
	// Duration is how long the run took.
	Duration time.Duration
}

// Complete marks the result as complete and calculates the duration.
func (r *Result) Complete() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}
