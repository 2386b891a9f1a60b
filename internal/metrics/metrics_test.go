package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorsRegister(t *testing.T) {
	m := New()
	require.NotNil(t, m.Registry())

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	// Go and process collectors report immediately.
	assert.NotEmpty(t, families)
}

func TestRecordingUpdatesRegistry(t *testing.T) {
	m := New()

	m.IncScans("completed")
	m.ObserveScanDuration(2 * time.Second)
	m.ObserveBatchDuration(100 * time.Millisecond)
	m.AddPortsProbed(500)
	m.IncOpenPorts()
	m.IncProbeErrors("TIMEOUT")
	m.IncInFlightProbes()
	m.IncInFlightProbes()
	m.DecInFlightProbes()

	names := gatherNames(t, m)
	assert.Contains(t, names, "portsweep_scan_total")
	assert.Contains(t, names, "portsweep_scan_duration_seconds")
	assert.Contains(t, names, "portsweep_scan_batch_duration_seconds")
	assert.Contains(t, names, "portsweep_probe_ports_total")
	assert.Contains(t, names, "portsweep_probe_open_ports_total")
	assert.Contains(t, names, "portsweep_probe_errors_total")
	assert.Contains(t, names, "portsweep_probe_in_flight")
}

func gatherNames(t *testing.T, m *Metrics) map[string]bool {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	return names
}

func TestPackageLevelHelpers(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	m := New()
	SetDefault(m)

	IncScans("aborted")
	AddPortsProbed(10)
	IncOpenPorts()
	IncProbeErrors("CONNECT_FAILED")
	IncInFlightProbes()
	DecInFlightProbes()
	ObserveScanDuration(time.Second)
	ObserveBatchDuration(time.Millisecond)

	names := gatherNames(t, m)
	assert.Contains(t, names, "portsweep_scan_total")
}

func TestMetricsEndpoint(t *testing.T) {
	m := New()
	m.IncScans("completed")

	handler := promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{})
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "portsweep_scan_total")
}
