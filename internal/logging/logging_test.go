package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		level     string
		expect    slog.Level
		expectErr bool
	}{
		{level: "", expect: slog.LevelInfo},
		{level: "DEBUG", expect: slog.LevelDebug},
		{level: "warn", expect: slog.LevelWarn},
		{level: "error", expect: slog.LevelError},
		{level: "trace", expect: slog.LevelInfo, expectErr: true},
	}
	for _, tc := range testCases {
		actual, err := ParseLevel(tc.level)
		if tc.expectErr {
			assert.Error(t, err, tc.level)
		} else {
			assert.NoError(t, err, tc.level)
		}
		assert.Equal(t, tc.expect, actual, tc.level)
	}
}

func TestNew_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{Level: "warn", Format: FormatJSON}, buf)
	logger.Info("dropped")
	logger.Warn("kill failed", slog.Int("pid", 3), ErrAttr(errors.New("not found")))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	record := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(lines[0], &record))
	assert.Equal(t, "kill failed", record["msg"])
	assert.Equal(t, "procsim", record["module"])
	assert.EqualValues(t, 3, record["pid"])
	assert.Equal(t, "not found", record["error"])
}

func TestNew_Text(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(DefaultConfig(), buf)
	logger.Debug("hidden")
	logger.Info("scheduler started")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=\"scheduler started\"")
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, Config{Level: "loud"}.Validate())
	assert.Error(t, Config{Format: "xml"}.Validate())
}
