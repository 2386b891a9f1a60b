package output

import (
	"bytes"
	"encoding/json"
	"net/netip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwestin/portsweep/internal/scan"
)

func testResult() *scan.Result {
	r := &scan.Result{
		ScanID:      "test-scan",
		Host:        netip.MustParseAddr("127.0.0.1"),
		OpenPorts:   []uint16{443, 22, 80},
		PortsProbed: 1000,
		StartTime:   time.Now().Add(-2 * time.Second),
	}
	r.Complete()
	return r
}

func TestConsoleReporter(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewConsoleReporter(&buf, true)

	reporter.PortOpen(22)
	reporter.PortOpen(8080)

	assert.Equal(t, "Open 22\nOpen 8080\n", buf.String())
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, testResult(), true)

	out := buf.String()
	assert.Contains(t, out, "22")
	assert.Contains(t, out, "80")
	assert.Contains(t, out, "443")
	assert.Contains(t, out, "3 open ports on 127.0.0.1")
	assert.Contains(t, out, "1000 probed")
}

func TestPrintSummaryNoOpenPorts(t *testing.T) {
	result := testResult()
	result.OpenPorts = nil

	var buf bytes.Buffer
	PrintSummary(&buf, result, true)
	assert.Contains(t, buf.String(), "0 open ports")
}

func TestSaveJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "out.json")
	result := testResult()

	require.NoError(t, SaveJSON(result, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var report Report
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, "test-scan", report.ScanID)
	assert.Equal(t, "127.0.0.1", report.Host)
	assert.Equal(t, []uint16{443, 22, 80}, report.OpenPorts)
	assert.Equal(t, 1000, report.PortsProbed)
	assert.Positive(t, report.DurationMS)
}

func TestSaveJSONEmptyResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	result := testResult()
	result.OpenPorts = nil

	require.NoError(t, SaveJSON(result, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"open_ports": []`, "null would break downstream consumers")
}

func TestWriteAtomicOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, writeAtomic(path, []byte("first")))
	require.NoError(t, writeAtomic(path, []byte("second")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}
