package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/gpsearch/pkg/errors"
)

// TestLoggerInterface tests the TestLogger implementation of Logger
func TestLoggerInterface(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelDebug)

	testLogger.Debug("debug message", "key1", "value1", "number", 42)
	testLogger.Info("info message", OperationKey, OperationSearch)
	testLogger.Warn("warning message", ErrorCodeKey, ErrorSingularMatrix)
	testLogger.Error("error message", fmt.Errorf("test error"), TrialKey, 3)

	require.NotEmpty(t, buffer.String())

	for _, msg := range []string{"debug message", "info message", "warning message", "error message"} {
		assert.True(t, testLogger.ContainsMessage(msg), "missing %q", msg)
	}
	assert.True(t, testLogger.ContainsField("key1", "value1"))
	assert.True(t, testLogger.ContainsField("number", 42.0))
	assert.True(t, testLogger.ContainsField(ErrAttrKey, "test error"))
	assert.True(t, testLogger.ContainsField(TrialKey, 3.0))
}

func TestLoggerWith(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelDebug)

	trialLogger := testLogger.With(
		TrialKey, 2,
		LengthScaleKey, 1.0,
		SigmaKey, 10.0,
	)
	trialLogger.Info("trial finished", MetricValueKey, 0.25)

	entries := testLogger.EntriesWithMessage("trial finished")
	require.Len(t, entries, 1)
	assert.Equal(t, 2.0, entries[0][TrialKey])
	assert.Equal(t, 1.0, entries[0][LengthScaleKey])
	assert.Equal(t, 10.0, entries[0][SigmaKey])
	assert.Equal(t, 0.25, entries[0][MetricValueKey])
}

func TestLoggerEnabled(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)
	ctx := context.Background()

	assert.True(t, testLogger.Enabled(ctx, LevelInfo))
	assert.True(t, testLogger.Enabled(ctx, LevelError))
	assert.False(t, testLogger.Enabled(ctx, LevelDebug))

	testLogger.Debug("this should not appear")
	testLogger.Info("this should appear")

	assert.False(t, testLogger.ContainsMessage("this should not appear"))
	assert.True(t, testLogger.ContainsMessage("this should appear"))
}

func TestTestLoggerInfiniteValues(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)

	testLogger.Info("trial failed", MetricValueKey, math.Inf(1))

	entries, err := testLogger.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "+Inf", entries[0][MetricValueKey])
}

func TestLoggerProviderIntegration(t *testing.T) {
	provider, buffer := NewTestLoggerProvider(LevelDebug)

	provider.GetLogger().Info("provider test message")
	provider.GetLoggerWithName("search").Info("named logger message")

	lines := buffer.String()
	assert.Contains(t, lines, "provider test message")
	assert.Contains(t, lines, "named logger message")
	assert.Contains(t, lines, `"ml.component":"search"`)
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelInfo).With(ComponentKey, "gp")

	logger.Debug("hidden")
	logger.Info("fit finished", SamplesKey, 3, ConditionKey, 12.5)

	line := strings.TrimSpace(buf.String())
	require.NotEmpty(t, line)
	assert.NotContains(t, line, "hidden")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "fit finished", entry["message"])
	assert.Equal(t, "gp", entry[ComponentKey])
	assert.Equal(t, 3.0, entry[SamplesKey])
	assert.Equal(t, 12.5, entry[ConditionKey])

	assert.False(t, logger.Enabled(context.Background(), LevelDebug))
	assert.True(t, logger.Enabled(context.Background(), LevelWarn))
}

func TestZerologLoggerErrorFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelDebug)

	err := errors.NewSingularMatrixError("gp.Fit", 3, 0, 1e12)
	logger.Error("trial failed", err, TrialKey, 5)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Contains(t, entry[ErrAttrKey], "not positive definite")
	assert.Equal(t, 5.0, entry[TrialKey])

	detail, ok := entry["error_detail"].(map[string]interface{})
	require.True(t, ok, "structured error detail missing: %v", entry)
	assert.Equal(t, "SingularMatrixError", detail["type"])
}

func TestSetupLoggerRoutesWarnings(t *testing.T) {
	previous := GetLogger()
	defer SetLogger(previous)
	defer errors.SetZerologWarnFunc(nil)

	var buf bytes.Buffer
	SetupLogger("warn", &buf, false)

	GetLoggerWithName("search").Info("dropped at warn level")
	errors.Warn(errors.NewTrialFailedWarning(1, "lscale=0.1 sigma=0.1", errors.ErrSingularMatrix))

	out := buf.String()
	assert.NotContains(t, out, "dropped at warn level")
	assert.Contains(t, out, `"type":"TrialFailedWarning"`)
	assert.Contains(t, out, `"trial":1`)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Panics(t, func() { ToLogLevel(tt.in) })
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, ToLogLevel(tt.in))
		})
	}
}

func TestConcurrentLogging(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)

	const goroutines, perGoroutine = 4, 5
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			l := testLogger.With(WorkersKey, id)
			for j := 0; j < perGoroutine; j++ {
				l.Info("trial finished", TrialKey, id*perGoroutine+j)
			}
		}(i)
	}
	wg.Wait()

	entries, err := testLogger.GetLogEntries()
	require.NoError(t, err)
	assert.Len(t, entries, goroutines*perGoroutine)
}

func BenchmarkZerologLogger(b *testing.B) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelInfo).With(ComponentKey, "benchmark")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("trial finished",
			TrialKey, i,
			LengthScaleKey, 1.0,
			MetricValueKey, 0.5,
		)
		buf.Reset()
	}
}
