// ABOUTME: Tests for logger construction.
package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "debug", JSON: true, Output: &buf})
	l.Debug("hello", "key", "value")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "value", line["key"])
}

func TestNewUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "chatty", Output: &buf})
	l.Debug("hidden")
	assert.Empty(t, buf.String())
	l.Info("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestBadgerLoggerRoutesLevels(t *testing.T) {
	var buf bytes.Buffer
	b := BadgerLogger{L: New(Options{Level: "warn", Output: &buf})}
	b.Infof("compaction %d\n", 1)
	assert.Empty(t, buf.String())
	b.Warningf("slow write %s", "x")
	assert.Contains(t, buf.String(), "slow write x")
}
