package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_ProductionIsJSONAtInfo(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter("prod", &buf)

	l.Debug().Msg("hidden")
	require.Zero(t, buf.Len())

	l.Info().Str("k", "v").Msg("shown")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "shown", line["message"])
	require.Equal(t, "v", line["k"])
}

func TestNew_DevLogsDebugToConsole(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter("dev", &buf)
	l.Debug().Msg("visible")
	require.Contains(t, buf.String(), "visible")
	require.False(t, json.Valid(buf.Bytes()))
}
