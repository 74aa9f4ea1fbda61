package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevelAndFormat(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel(" DEBUG "))
	assert.Equal(t, WarnLevel, ParseLevel("warning"))
	assert.Equal(t, InfoLevel, ParseLevel("verbose"))
	assert.Equal(t, FormatText, ParseFormat("Text"))
	assert.Equal(t, FormatJSON, ParseFormat(""))
}

func TestOutputSurvivesReconfigure(t *testing.T) {
	t.Cleanup(func() { Configure(Config{Level: InfoLevel, Format: FormatText, Output: os.Stdout}) })

	var buf bytes.Buffer
	SetOutput(&buf)
	Configure(Config{Level: InfoLevel, Format: FormatJSON})

	l := WithFields(map[string]interface{}{"kind": "inactive_member", "subject": "faculty/f1"})
	l.Warn().Msg("Violation found")
	c := Component("audit")
	c.Debug().Msg("suppressed at info")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line), buf.String())
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "inactive_member", line["kind"])
	assert.Equal(t, "faculty/f1", line["subject"])
	assert.Equal(t, "Violation found", line["message"])
}
