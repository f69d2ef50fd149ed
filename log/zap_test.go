package log

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LevelFilter(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(buf, InfoLevel)
	l.Debug("hidden")
	l.Info("visible", String("color", "red"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"visible"`)
	assert.Contains(t, out, `"color":"red"`)
}

func TestLogger_Named(t *testing.T) {
	buf := &bytes.Buffer{}
	New(buf, DebugLevel).Named("race").Debug("tick", Int("tick", 3))
	assert.Contains(t, buf.String(), `"logger":"race"`)
	assert.Contains(t, buf.String(), `"tick":3`)
}

func TestLogger_WithFilter(t *testing.T) {
	buf := &bytes.Buffer{}
	base := New(buf, DebugLevel)
	l, err := base.WithFilter("debug:race info:*")
	require.NoError(t, err)

	l.Named("race").Debug("from race")
	l.Named("betting").Debug("from betting")
	l.Named("betting").Info("betting info")

	out := buf.String()
	assert.Contains(t, out, "from race")
	assert.NotContains(t, out, "from betting")
	assert.Contains(t, out, "betting info")
}

func TestLogger_WithFilterEmpty(t *testing.T) {
	l := Nop()
	got, err := l.WithFilter("")
	require.NoError(t, err)
	assert.Same(t, l, got)
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, WarnLevel, lvl)

	_, err = ParseLevel("chatty")
	assert.Error(t, err)
}

func TestContext(t *testing.T) {
	assert.Same(t, Default(), GetFromContext(context.Background()))
	l := Nop()
	ctx := AddToContext(context.Background(), l)
	assert.Same(t, l, GetFromContext(ctx))
}
