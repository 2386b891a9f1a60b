package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/mwestin/portsweep/internal/logging"
	"github.com/mwestin/portsweep/internal/output"
)

var watchSchedule string

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <host>",
	Short: "Rescan a host on a schedule",
	Long: `Run the same scan repeatedly on a cron schedule, printing a fresh
summary after every run. Useful for keeping an eye on a host whose exposed
ports are expected to stay stable.

The schedule accepts standard cron expressions plus the @every, @hourly and
@daily shorthands.`,
	Example: `  portsweep watch 192.168.1.10 --schedule "@every 5m"
  portsweep watch example.com --ports 1-1024 --schedule "0 * * * *"`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	registerScanFlags(watchCmd)
	watchCmd.Flags().StringVar(&watchSchedule, "schedule", "@hourly", "Cron schedule for rescans")
}

func runWatch(cmd *cobra.Command, args []string) error {
	target := args[0]
	logger := logging.Default().WithComponent("watch")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runOnce := func() {
		result, err := executeScan(ctx, cmd, target)
		if err != nil {
			logger.Error("scheduled scan failed", "host", target, "error", err)
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		output.PrintSummary(os.Stdout, result, scanNoColor)
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(watchSchedule, runOnce); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", watchSchedule, err)
	}

	// First run happens immediately; the schedule covers the rescans.
	runOnce()

	scheduler.Start()
	logger.Info("watch started", "host", target, "schedule", watchSchedule)

	<-ctx.Done()
	logger.Info("watch stopping")

	stopCtx := scheduler.Stop()
	<-stopCtx.Done()
	return nil
}
