package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mwestin/portsweep/internal/config"
	"github.com/mwestin/portsweep/internal/errors"
	"github.com/mwestin/portsweep/internal/logging"
	"github.com/mwestin/portsweep/internal/metrics"
	"github.com/mwestin/portsweep/internal/netutil"
	"github.com/mwestin/portsweep/internal/output"
	"github.com/mwestin/portsweep/internal/scan"
)

const (
	// The engine scans the half-open range [start, end), so the largest
	// inclusive end port a user can request is 65534.
	maxEndPort = 65534

	exitFatal = 2
)

var (
	scanPorts       string
	scanBatchSize   int
	scanTimeout     time.Duration
	scanQuiet       bool
	scanIPv6        bool
	scanJSONPath    string
	scanNoColor     bool
	scanMetricsAddr string
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <host>",
	Short: "Scan a host for open TCP ports",
	Long: `Scan a single host across a port range, reporting which ports accept
a TCP connection within the configured timeout.

Ports are probed in concurrent batches. A new batch never starts before the
previous one fully drains, so the number of in-flight connection attempts is
bounded by the batch size. If the system runs out of socket descriptors the
scan aborts with a suggestion to lower the batch size.`,
	Example: `  portsweep scan 192.168.1.10
  portsweep scan 10.0.0.5 --ports 1-65534 --batch-size 1000
  portsweep scan example.com --ports 20-25 --timeout 500ms
  portsweep scan ::1 --ports 8000-9000 --quiet --json result.json`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	registerScanFlags(scanCmd)
}

// registerScanFlags defines the scan flags. The watch command shares them.
func registerScanFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&scanPorts, "ports", "p", "", "Inclusive port range to scan (e.g. '80' or '1-1024')")
	cmd.Flags().IntVarP(&scanBatchSize, "batch-size", "b", 0, "Maximum concurrent connection attempts")
	cmd.Flags().DurationVarP(&scanTimeout, "timeout", "t", 0, "Per-port connection timeout")
	cmd.Flags().BoolVarP(&scanQuiet, "quiet", "q", false, "Suppress per-port open notifications")
	cmd.Flags().BoolVarP(&scanIPv6, "ipv6", "6", false, "Prefer IPv6 when resolving hostnames")
	cmd.Flags().StringVar(&scanJSONPath, "json", "", "Write the scan result to a JSON file")
	cmd.Flags().BoolVar(&scanNoColor, "no-color", false, "Disable colorized output")
	cmd.Flags().StringVar(&scanMetricsAddr, "metrics-addr", "", "Expose Prometheus metrics on this address during the scan")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := executeScan(ctx, cmd, args[0])
	if result != nil && scanJSONPath != "" {
		if saveErr := output.SaveJSON(result, scanJSONPath); saveErr != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to save results: %v\n", saveErr)
		}
	}
	if err != nil {
		if errors.IsFatal(err) {
			// The partial result covers the batches that completed
			// before the abort; show it so the work is not lost.
			if result != nil && !scanQuiet {
				output.PrintSummary(os.Stdout, result, scanNoColor)
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitFatal)
		}
		return err
	}

	output.PrintSummary(os.Stdout, result, scanNoColor)
	return nil
}

// executeScan resolves the target, assembles the scan configuration from
// config file plus flag overrides, and runs the engine.
func executeScan(ctx context.Context, cmd *cobra.Command, target string) (*scan.Result, error) {
	cfg, err := loadScanConfig(cmd)
	if err != nil {
		return nil, err
	}

	addr, err := netutil.Resolve(ctx, target, cfg.Scanning.IPv6)
	if err != nil {
		return nil, err
	}

	scanCfg := scan.Config{
		Host:      addr,
		StartPort: cfg.Scanning.StartPort,
		EndPort:   cfg.Scanning.EndPort,
		BatchSize: cfg.Scanning.BatchSize,
		Timeout:   cfg.Scanning.Timeout,
		Quiet:     cfg.Scanning.Quiet,
		IPv6:      addr.Is6(),
	}

	reporter := output.NewConsoleReporter(os.Stdout, scanNoColor)
	scanner, err := scan.New(scanCfg,
		scan.WithReporter(reporter),
		scan.WithLogger(logging.Default().WithComponent("scan")))
	if err != nil {
		return nil, err
	}

	if addrStr := metricsAddress(cfg); addrStr != "" {
		server := metrics.NewServer(addrStr, metrics.Default(), logging.Default())
		server.Start()
		defer func() {
			if stopErr := server.Stop(); stopErr != nil {
				logging.Warn("failed to stop metrics server", "error", stopErr)
			}
		}()
	}

	return scanner.Run(ctx)
}

// loadScanConfig merges the config file with flag overrides.
func loadScanConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFilePath())
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("batch-size") {
		cfg.Scanning.BatchSize = scanBatchSize
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Scanning.Timeout = scanTimeout
	}
	if cmd.Flags().Changed("quiet") {
		cfg.Scanning.Quiet = scanQuiet
	}
	if cmd.Flags().Changed("ipv6") {
		cfg.Scanning.IPv6 = scanIPv6
	}
	if cmd.Flags().Changed("ports") {
		start, end, err := parsePortRange(scanPorts)
		if err != nil {
			return nil, err
		}
		cfg.Scanning.StartPort = start
		cfg.Scanning.EndPort = end
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// metricsAddress picks the metrics listen address: flag first, then config.
func metricsAddress(cfg *config.Config) string {
	if scanMetricsAddr != "" {
		return scanMetricsAddr
	}
	return cfg.MetricsAddress()
}

func configFilePath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return "config.yaml"
}

// parsePortRange parses an inclusive port specification ("80" or "1-1024")
// into the engine's half-open [start, end) bounds.
func parsePortRange(spec string) (start, end uint16, err error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0, 0, fmt.Errorf("empty port specification")
	}

	var lo, hi int
	if strings.Contains(spec, "-") {
		parts := strings.SplitN(spec, "-", 2)
		lo, err = strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return 0, 0, fmt.Errorf("invalid start port: %s", parts[0])
		}
		hi, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return 0, 0, fmt.Errorf("invalid end port: %s", parts[1])
		}
	} else {
		lo, err = strconv.Atoi(spec)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid port: %s", spec)
		}
		hi = lo
	}

	if lo < 1 || hi < 1 || lo > maxEndPort || hi > maxEndPort {
		return 0, 0, fmt.Errorf("ports must be in 1..%d", maxEndPort)
	}
	if lo > hi {
		return 0, 0, fmt.Errorf("start port %d is greater than end port %d", lo, hi)
	}

	return uint16(lo), uint16(hi + 1), nil
}
