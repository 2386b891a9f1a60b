package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePortRange(t *testing.T) {
	tests := []struct {
		name      string
		spec      string
		wantStart uint16
		wantEnd   uint16
		wantErr   bool
	}{
		{"single port", "80", 80, 81, false},
		{"simple range", "1-1024", 1, 1025, false},
		{"range with spaces", " 20 - 25 ", 20, 26, false},
		{"top of range", "65000-65534", 65000, 65535, false},
		{"empty spec", "", 0, 0, true},
		{"zero port", "0", 0, 0, true},
		{"port too high", "65535", 0, 0, true},
		{"end above limit", "1-65535", 0, 0, true},
		{"inverted range", "100-50", 0, 0, true},
		{"garbage start", "abc-100", 0, 0, true},
		{"garbage end", "100-xyz", 0, 0, true},
		{"negative port", "-5", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := parsePortRange(tt.spec)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestScanCommandRegistration(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"scan"})
	require.NoError(t, err)
	assert.Equal(t, "scan <host>", cmd.Use)

	for _, flag := range []string{"ports", "batch-size", "timeout", "quiet", "ipv6", "json", "no-color", "metrics-addr"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %s missing", flag)
	}
}

func TestWatchCommandRegistration(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"watch"})
	require.NoError(t, err)
	assert.Equal(t, "watch <host>", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("schedule"))
	assert.NotNil(t, cmd.Flags().Lookup("ports"), "watch shares the scan flags")
}
