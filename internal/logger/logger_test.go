package logger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, DEBUG, lvl)

	lvl, err = ParseLevel(" Warning ")
	require.NoError(t, err)
	assert.Equal(t, WARN, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, INFO, lvl)

	_, err = ParseLevel("chatty")
	assert.Error(t, err)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetWriter(&buf)
	old := GetLevel()
	defer SetLevel(old)

	SetLevel(WARN)
	Info("hidden")
	Warn("shown", 3, errors.New("boom"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] logger_test.go:")
	assert.Contains(t, out, "shown 3 boom")
}

func TestObjectsAreDumpedAsJSON(t *testing.T) {
	var buf bytes.Buffer
	SetWriter(&buf)
	old := GetLevel()
	defer SetLevel(old)
	SetLevel(DEBUG)

	Debug("row", map[string]int{"played": 32})

	out := buf.String()
	assert.Contains(t, out, "[Object of type map[string]int]")
	assert.Contains(t, out, `"played": 32`)
}
