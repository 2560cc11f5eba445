package logging

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWithPath_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "entitydeck.log")
	result := NewLoggerWithPath(Config{Level: "debug", Format: FormatJSON, Output: OutputFile, File: path})
	t.Cleanup(func() { _ = result.Close() })

	require.True(t, result.UsingFile)
	assert.False(t, result.FallbackUsed)
	assert.Equal(t, path, result.FilePath)

	result.Logger.Debug().Str("panel_id", "p1").Msg("page applied")
	require.NoError(t, result.Close())
	require.NoError(t, result.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"panel_id":"p1"`)
	assert.Contains(t, string(data), `"message":"page applied"`)
}

func TestNewLoggerWithPath_Fallback(t *testing.T) {
	var buf bytes.Buffer
	result := NewLoggerWithPath(Config{Output: OutputFile, File: "", Fallback: &buf})

	assert.False(t, result.UsingFile)
	assert.True(t, result.FallbackUsed)
	assert.NotEmpty(t, result.FallbackReason)

	result.Logger.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.NoError(t, result.Close())
}

func TestNewLoggerWithPath_Discard(t *testing.T) {
	result := NewLoggerWithPath(Config{Output: OutputDiscard, Level: "warn"})
	assert.Equal(t, zerolog.WarnLevel, result.Logger.GetLevel())
	assert.False(t, result.UsingFile)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}

func TestComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	l := ComponentLogger(zerolog.New(&buf), "fetch")
	l.Info().Msg("x")
	assert.Contains(t, buf.String(), `"component":"fetch"`)
}

func TestTraceID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, TraceIDFromContext(ctx))

	id := GetOrGenerateTraceID(ctx)
	assert.Len(t, id, 26)

	ctx = ContextWithTraceID(ctx, id)
	assert.Equal(t, id, GetOrGenerateTraceID(ctx))

	var buf bytes.Buffer
	ctx = zerolog.New(&buf).WithContext(ctx)
	FromContext(ctx).Info().Msg("traced")
	assert.Contains(t, buf.String(), `"trace_id":"`+id+`"`)
}

func TestPrintMessages(t *testing.T) {
	var buf bytes.Buffer
	PrintLogPathMessage(&buf, "/tmp/x.log")
	PrintFallbackWarning(&buf, "permission denied")
	assert.Contains(t, buf.String(), "Logging to /tmp/x.log")
	assert.Contains(t, buf.String(), "permission denied")
}
