package errors

import (
	goerrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanError(t *testing.T) {
	t.Run("formats message with target", func(t *testing.T) {
		err := NewScanErrorWithTarget(CodeTimeout, "Connection attempt timed out", "10.0.0.5:80")
		assert.Equal(t, "[TIMEOUT] Connection attempt timed out (target: 10.0.0.5:80)", err.Error())
	})

	t.Run("formats message without target", func(t *testing.T) {
		err := NewScanError(CodeResourceExhausted, "out of descriptors")
		assert.Equal(t, "[RESOURCE_EXHAUSTED] out of descriptors", err.Error())
	})

	t.Run("unwraps cause", func(t *testing.T) {
		cause := goerrors.New("boom")
		err := WrapScanError(CodeConnectFailed, "failed", cause)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("accumulates context", func(t *testing.T) {
		err := NewScanError(CodeValidation, "bad").
			WithContext("field", "batch_size").
			WithContext("value", 0)
		assert.Equal(t, "batch_size", err.Context["field"])
		assert.Equal(t, 0, err.Context["value"])
	})
}

func TestCodeHelpers(t *testing.T) {
	scanErr := NewScanError(CodeTimeout, "timed out")
	cfgErr := NewConfigFieldError(CodeValidation, "bad value", "timeout", -1)
	plain := goerrors.New("plain")

	assert.True(t, IsCode(scanErr, CodeTimeout))
	assert.False(t, IsCode(scanErr, CodeCanceled))
	assert.True(t, IsCode(cfgErr, CodeValidation))
	assert.False(t, IsCode(plain, CodeTimeout))

	assert.Equal(t, CodeTimeout, GetCode(scanErr))
	assert.Equal(t, CodeValidation, GetCode(cfgErr))
	assert.Equal(t, CodeUnknown, GetCode(plain))
}

func TestFatalVsRecoverable(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		fatal       bool
		recoverable bool
	}{
		{"timeout", NewScanError(CodeTimeout, "t"), false, true},
		{"connect failed", NewScanError(CodeConnectFailed, "c"), false, true},
		{"host unreachable", NewScanError(CodeHostUnreachable, "h"), false, true},
		{"resource exhausted", NewScanError(CodeResourceExhausted, "r"), true, false},
		{"configuration", NewConfigError(CodeConfiguration, "c"), true, false},
		{"plain error", goerrors.New("x"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fatal, IsFatal(tt.err))
			assert.Equal(t, tt.recoverable, IsRecoverable(tt.err))
		})
	}
}

func TestErrResourceExhausted(t *testing.T) {
	cause := goerrors.New("socket: too many open files")
	err := ErrResourceExhausted(5000, cause)

	require.True(t, IsCode(err, CodeResourceExhausted))
	assert.Contains(t, err.Error(), "5000")
	assert.Contains(t, err.Error(), "--batch-size 2500")
	assert.ErrorIs(t, err, cause)

	t.Run("suggestion never drops below one", func(t *testing.T) {
		err := ErrResourceExhausted(1, cause)
		assert.Contains(t, err.Error(), "--batch-size 1")
	})
}
