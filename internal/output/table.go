package output

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/mwestin/portsweep/internal/scan"
)

// PrintSummary renders the final scan result as a table followed by a short
// status line.
func PrintSummary(w io.Writer, result *scan.Result, noColor bool) {
	table := tablewriter.NewWriter(w)
	table.Header("Port", "State")

	// Present ports sorted for readability; discovery order is only
	// meaningful while the scan is running.
	ports := make([]uint16, len(result.OpenPorts))
	copy(ports, result.OpenPorts)
	sort.Slice(ports, func(i, j int) bool { return ports[i] < ports[j] })

	for _, p := range ports {
		_ = table.Append([]string{fmt.Sprintf("%d", p), "open"})
	}
	_ = table.Render()

	line := fmt.Sprintf("%d open ports on %s (%d probed in %s)",
		len(result.OpenPorts), result.Host, result.PortsProbed,
		result.Duration.Round(time.Millisecond))
	if noColor {
		fmt.Fprintln(w, line)
		return
	}
	color.New(color.FgGreen).Fprintln(w, line)
}
