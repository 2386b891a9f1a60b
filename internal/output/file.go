package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mwestin/portsweep/internal/scan"
)

const reportDirPerm = 0o755

// Report is the JSON document written by SaveJSON.
type Report struct {
	ScanID      string    `json:"scan_id"`
	Host        string    `json:"host"`
	OpenPorts   []uint16  `json:"open_ports"`
	PortsProbed int       `json:"ports_probed"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	DurationMS  int64     `json:"duration_ms"`
}

// SaveJSON writes the scan result to path as JSON. The write is atomic: data
// goes to a temp file in the same directory which is then renamed into place.
func SaveJSON(result *scan.Result, path string) error {
	report := Report{
		ScanID:      result.ScanID,
		Host:        result.Host.String(),
		OpenPorts:   result.OpenPorts,
		PortsProbed: result.PortsProbed,
		StartTime:   result.StartTime,
		EndTime:     result.EndTime,
		DurationMS:  result.Duration.Milliseconds(),
	}
	if report.OpenPorts == nil {
		report.OpenPorts = []uint16{}
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	return writeAtomic(path, append(data, '\n'))
}

// writeAtomic writes data to path via a temp file and rename, so a crashed
// run never leaves a half-written report behind.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, reportDirPerm); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	tmp, err := os.CreateTemp(dir, "portsweep-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
